// File: internal/services/marketplace/service.go

// Package marketplace manages persona bots: creation with share codes,
// automated content moderation, the public listing, and owner CRUD. Bots
// enter the marketplace only after moderation approves them.
package marketplace

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"personachat/internal/domain"
	"personachat/internal/repository/bot"
	"personachat/internal/services"
	"personachat/internal/services/ai"
)

// CreateBotInput carries the creator-supplied bot fields.
type CreateBotInput struct {
	RobloxUserID    int64
	RobloxUsername  string
	RobloxAvatarURL string
	Name            string
	Description     string
	SystemPrompt    string
	IsPublic        bool
}

// UpdateBotInput carries updatable bot fields. Nil pointers leave the field
// unchanged.
type UpdateBotInput struct {
	Name         *string
	Description  *string
	SystemPrompt *string
	IsPublic     *bool
}

// Service owns bot lifecycle and marketplace reads.
type Service struct {
	config    *Config
	bots      bot.BotRepository
	moderator ai.ContentModerator
	logger    services.Logger
	now       func() time.Time
}

// NewService wires the marketplace service.
func NewService(config *Config, bots bot.BotRepository, moderator ai.ContentModerator, logger services.Logger) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid marketplace config: %w", err)
	}
	if bots == nil {
		return nil, fmt.Errorf("bot repository is required")
	}
	if moderator == nil {
		return nil, fmt.Errorf("content moderator is required")
	}
	if logger == nil {
		logger = &services.NoOpLogger{}
	}
	return &Service{
		config:    config,
		bots:      bots,
		moderator: moderator,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// CreateBot validates input, assigns a share code, runs content moderation
// and persists the bot. A moderation outage leaves the bot pending rather
// than blocking creation.
func (s *Service) CreateBot(ctx context.Context, creatorID uint, input CreateBotInput) (*domain.Bot, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("bot name is required")
	}
	prompt := strings.TrimSpace(input.SystemPrompt)
	if prompt == "" {
		return nil, fmt.Errorf("system prompt is required")
	}

	code, err := s.generateShareCode(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	b := &domain.Bot{
		ID:              uuid.NewString(),
		CreatorID:       creatorID,
		ShareCode:       code,
		RobloxUserID:    input.RobloxUserID,
		RobloxUsername:  strings.TrimSpace(input.RobloxUsername),
		RobloxAvatarURL: strings.TrimSpace(input.RobloxAvatarURL),
		Name:            name,
		Description:     strings.TrimSpace(input.Description),
		SystemPrompt:    prompt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.moderate(ctx, b)

	// Going public requires an approved verdict; creation with a pending or
	// rejected bot silently keeps the listing private.
	if input.IsPublic && b.IsApproved() {
		b.IsPublic = true
	}

	created, err := s.bots.Create(ctx, b)
	if err != nil {
		return nil, err
	}
	s.logger.Info("bot created", "bot_id", created.ID, "share_code", created.ShareCode)
	return created, nil
}

// UpdateBot applies owner edits. Content edits reset moderation and run the
// check again; making a bot public requires a standing approval.
func (s *Service) UpdateBot(ctx context.Context, creatorID uint, botID string, input UpdateBotInput) (*domain.Bot, error) {
	b, err := s.ownedBot(ctx, creatorID, botID)
	if err != nil {
		return nil, err
	}

	contentChanged := false
	if input.Name != nil && strings.TrimSpace(*input.Name) != "" && *input.Name != b.Name {
		b.Name = strings.TrimSpace(*input.Name)
		contentChanged = true
	}
	if input.Description != nil && *input.Description != b.Description {
		b.Description = strings.TrimSpace(*input.Description)
		contentChanged = true
	}
	if input.SystemPrompt != nil && strings.TrimSpace(*input.SystemPrompt) != "" && *input.SystemPrompt != b.SystemPrompt {
		b.SystemPrompt = strings.TrimSpace(*input.SystemPrompt)
		contentChanged = true
	}

	if contentChanged {
		b.Approved = nil
		b.Rejected = nil
		b.RejectionReason = ""
		b.ModeratedAt = nil
		b.IsPublic = false
		s.moderate(ctx, b)
	}

	if input.IsPublic != nil {
		if *input.IsPublic && !b.IsApproved() {
			return nil, ErrNotApproved
		}
		b.IsPublic = *input.IsPublic
	}

	b.UpdatedAt = s.now()
	if err := s.bots.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// DeleteBot removes an owned bot.
func (s *Service) DeleteBot(ctx context.Context, creatorID uint, botID string) error {
	return s.bots.Delete(ctx, botID, creatorID)
}

// OwnerBots lists a creator's bots. Bots still pending get one moderation
// retry on each listing so an outage-era bot eventually resolves.
func (s *Service) OwnerBots(ctx context.Context, creatorID uint) ([]domain.Bot, error) {
	list, err := s.bots.FindByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if !list[i].IsPending() {
			continue
		}
		s.moderate(ctx, &list[i])
		if list[i].IsPending() {
			continue
		}
		list[i].UpdatedAt = s.now()
		if err := s.bots.Update(ctx, &list[i]); err != nil {
			s.logger.Error("pending bot update failed", "bot_id", list[i].ID, "error", err)
		}
	}
	return list, nil
}

// GetBot returns one bot. The system prompt is the creator's asset: anyone
// else gets the bot with the prompt stripped.
func (s *Service) GetBot(ctx context.Context, botID string, requesterID uint) (*domain.Bot, error) {
	b, err := s.bots.FindByID(ctx, botID)
	if err != nil {
		return nil, err
	}
	if b.CreatorID != requesterID {
		redacted := *b
		redacted.SystemPrompt = ""
		return &redacted, nil
	}
	return b, nil
}

// GetBotForChat returns one bot with its prompt intact, for opening a chat.
func (s *Service) GetBotForChat(ctx context.Context, botID string) (*domain.Bot, error) {
	return s.bots.FindByID(ctx, botID)
}

// GetByShareCode resolves a share code to its bot, prompt stripped for
// non-creators.
func (s *Service) GetByShareCode(ctx context.Context, code string, requesterID uint) (*domain.Bot, error) {
	b, err := s.bots.FindByShareCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if b.CreatorID != requesterID {
		redacted := *b
		redacted.SystemPrompt = ""
		return &redacted, nil
	}
	return b, nil
}

// Marketplace lists approved public bots, most chatted first.
func (s *Service) Marketplace(ctx context.Context) ([]domain.Bot, error) {
	list, err := s.bots.FindPublicApproved(ctx, s.config.MarketplaceLimit)
	if err != nil {
		return nil, err
	}
	stripPrompts(list)
	return list, nil
}

// Search finds approved public bots by name, Roblox username or description.
func (s *Service) Search(ctx context.Context, query string) ([]domain.Bot, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Bot{}, nil
	}
	list, err := s.bots.SearchPublic(ctx, query, s.config.SearchLimit)
	if err != nil {
		return nil, err
	}
	stripPrompts(list)
	return list, nil
}

// RecordChat bumps the bot's chat counter when a new chat opens.
func (s *Service) RecordChat(ctx context.Context, botID string) error {
	return s.bots.IncrementChatCount(ctx, botID)
}

// StatusFor builds the owner-facing moderation status for a bot.
func (s *Service) StatusFor(b *domain.Bot) ModerationStatus {
	return BuildStatus(b, s.now(), s.config.StuckThreshold)
}

// moderate screens the bot's creator-authored text and stamps the verdict.
// A pending verdict leaves the tri-state untouched.
func (s *Service) moderate(ctx context.Context, b *domain.Bot) {
	content := strings.Join([]string{b.Name, b.Description, b.SystemPrompt}, "\n")
	verdict := s.moderator.ModerateContent(ctx, content)
	if verdict.Approved == nil && verdict.Rejected == nil {
		b.RejectionReason = verdict.Reason
		return
	}
	now := s.now()
	b.Approved = verdict.Approved
	b.Rejected = verdict.Rejected
	b.RejectionReason = verdict.Reason
	b.ModeratedAt = &now
	if b.IsRejected() {
		b.IsPublic = false
		s.logger.Warn("bot rejected by moderation", "bot_id", b.ID, "reason", verdict.Reason)
	}
}

func (s *Service) ownedBot(ctx context.Context, creatorID uint, botID string) (*domain.Bot, error) {
	b, err := s.bots.FindByID(ctx, botID)
	if err != nil {
		return nil, err
	}
	if b.CreatorID != creatorID {
		return nil, bot.ErrUnauthorizedAccess
	}
	return b, nil
}

func stripPrompts(list []domain.Bot) {
	for i := range list {
		list[i].SystemPrompt = ""
	}
}
