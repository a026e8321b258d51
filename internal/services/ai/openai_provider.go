// File: internal/services/ai/openai_provider.go
package ai

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"personachat/internal/domain"
)

// wireSystemRole is the provider alias the system role is relabeled to on the
// wire. Transcripts keep the logical "system" role everywhere else.
const wireSystemRole = "developer"

type OpenAIProvider struct {
	config *Config
	client *openai.Client
}

func NewOpenAIProvider(config *Config) (*OpenAIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}, nil
}

// Complete sends the transcript and extracts the first choice's text.
// An empty reply is a hard failure for the call.
func (p *OpenAIProvider) Complete(ctx context.Context, turns []domain.Turn) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, turn := range turns {
		role := turn.Role
		if role == domain.RoleSystem {
			role = wireSystemRole
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.config.ChatModel,
		Messages:    messages,
		Temperature: p.config.Temperature,
		TopP:        p.config.TopP,
	})
	if err != nil {
		return "", NewProviderError("completion", "failed to create completion", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &AIError{
			Type:      ErrTypeProvider,
			Operation: "completion",
			Message:   "empty completion response",
		}
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ModerateContent screens persona content. API failures leave the verdict
// pending instead of blocking or approving anything.
func (p *OpenAIProvider) ModerateContent(ctx context.Context, input string) ModerationVerdict {
	resp, err := p.client.Moderations(ctx, openai.ModerationRequest{
		Model: p.config.ModerationModel,
		Input: input,
	})
	if err != nil || len(resp.Results) == 0 {
		return ModerationVerdict{Reason: "Moderation unavailable — retrying"}
	}

	result := resp.Results[0]
	if result.Flagged {
		reason := "Flagged by moderation"
		if cats := flaggedCategories(result.Categories); len(cats) > 0 {
			reason = "Flagged: " + strings.Join(cats, ", ")
		}
		return ModerationVerdict{
			Approved: boolPtr(false),
			Rejected: boolPtr(true),
			Reason:   reason,
		}
	}

	return ModerationVerdict{Approved: boolPtr(true), Rejected: boolPtr(false)}
}

func flaggedCategories(c openai.ResultCategories) []string {
	var cats []string
	add := func(flagged bool, name string) {
		if flagged {
			cats = append(cats, name)
		}
	}
	add(c.Hate, "hate")
	add(c.HateThreatening, "hate/threatening")
	add(c.Harassment, "harassment")
	add(c.HarassmentThreatening, "harassment/threatening")
	add(c.SelfHarm, "self-harm")
	add(c.SelfHarmIntent, "self-harm/intent")
	add(c.SelfHarmInstructions, "self-harm/instructions")
	add(c.Sexual, "sexual")
	add(c.SexualMinors, "sexual/minors")
	add(c.Violence, "violence")
	add(c.ViolenceGraphic, "violence/graphic")
	return cats
}

func boolPtr(v bool) *bool { return &v }
