// File: internal/services/convo/controller.go

// Package convo runs the tool-calling conversation loop: one user turn moves
// through moderation, a first completion, directive dispatch, an optional
// single re-entry completion, and chunked delivery. Nothing in this package
// lets an error escape as anything but an in-voice apology message.
package convo

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"personachat/internal/domain"
	"personachat/internal/repository/state"
	"personachat/internal/services"
	"personachat/internal/services/ai"
	"personachat/internal/services/directive"
	"personachat/internal/services/geo"
	"personachat/internal/services/moderation"
	"personachat/internal/services/tools"
)

// Controller orchestrates user turns across all live sessions.
type Controller struct {
	config   *Config
	store    state.Store
	provider ai.CompletionProvider
	executor *tools.Executor
	gate     *moderation.Gate
	locator  geo.Locator
	logger   services.Logger

	mu       sync.Mutex
	sessions map[uint]*session

	// Injected pacing so tests run without real sleeps.
	sleep  func(time.Duration)
	jitter func(time.Duration) time.Duration
	now    func() time.Time
}

// NewController wires the conversation loop. All dependencies are required.
func NewController(
	config *Config,
	store state.Store,
	provider ai.CompletionProvider,
	executor *tools.Executor,
	gate *moderation.Gate,
	locator geo.Locator,
	logger services.Logger,
) (*Controller, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid convo config: %w", err)
	}
	if store == nil {
		return nil, fmt.Errorf("state store is required")
	}
	if provider == nil {
		return nil, fmt.Errorf("completion provider is required")
	}
	if executor == nil {
		return nil, fmt.Errorf("tool executor is required")
	}
	if gate == nil {
		return nil, fmt.Errorf("moderation gate is required")
	}
	if logger == nil {
		logger = &services.NoOpLogger{}
	}

	return &Controller{
		config:   config,
		store:    store,
		provider: provider,
		executor: executor,
		gate:     gate,
		locator:  locator,
		logger:   logger,
		sessions: map[uint]*session{},
		sleep:    time.Sleep,
		jitter: func(window time.Duration) time.Duration {
			if window <= 0 {
				return 0
			}
			return time.Duration(rand.Int63n(int64(window)))
		},
		now: time.Now,
	}, nil
}

// SendMessage runs one full user turn and returns every user-visible message
// it produced (moderation warnings, delivered chunks, or the apology on an
// upstream failure). It rejects with ErrBusy while a turn is in flight and
// with SuspendedError while the profile is suspended; in the suspended case
// the transcript is untouched and no model call is made.
func (c *Controller) SendMessage(ctx context.Context, userID uint, chatID, text string) ([]domain.DisplayMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("message text is required")
	}

	sess, err := c.getSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !sess.tryAcquire() {
		return nil, ErrBusy
	}
	defer sess.release()

	sess.turnMu.Lock()
	defer sess.turnMu.Unlock()

	now := c.now()

	wasSuspended := sess.profile.Suspended
	if active, remaining := sess.profile.SuspensionActive(now); active {
		return nil, &SuspendedError{Remaining: remaining}
	} else if wasSuspended {
		// Suspension just expired; persist the cleared state.
		c.saveProfile(ctx, sess)
	}

	chat, ok := sess.chats[chatID]
	if !ok {
		return nil, ErrChatNotFound
	}

	if result := c.gate.Check(sess.profile, text, now); result.Blocked {
		c.saveProfile(ctx, sess)
		warning := domain.DisplayMessage{
			Type:      domain.MessageReceived,
			Text:      result.Message,
			Timestamp: now,
		}
		chat.Messages = append(chat.Messages, warning)
		c.saveChats(ctx, sess)
		return []domain.DisplayMessage{warning}, nil
	}

	sess.profile.MessageCount++
	c.saveProfile(ctx, sess)

	readAt := now
	chat.Messages = append(chat.Messages, domain.DisplayMessage{
		Type:      domain.MessageSent,
		Text:      text,
		Timestamp: now,
		ReadAt:    &readAt,
	})
	chat.Conversation = append(chat.Conversation, domain.Turn{Role: domain.RoleUser, Content: text})
	chat.UpdatedAt = now
	c.saveChats(ctx, sess)

	reply, err := c.provider.Complete(ctx, c.buildWireTurns(sess, chat))
	if err != nil {
		c.logger.Error("first completion failed", "chat_id", chatID, "error", err)
		return []domain.DisplayMessage{c.apologize(ctx, sess, chat)}, nil
	}

	delivered, err := c.processAssistant(ctx, sess, chat, reply, false)
	if err != nil {
		c.logger.Error("turn aborted", "chat_id", chatID, "error", err)
		return []domain.DisplayMessage{c.apologize(ctx, sess, chat)}, nil
	}
	return delivered, nil
}

// processAssistant handles one piece of raw assistant output. When the text
// carries tool calls and directive processing is enabled, every call is
// executed in source order, the results are fed back, and exactly one more
// completion runs with directives disabled; tool syntax in that second reply
// stays literal text on display.
func (c *Controller) processAssistant(ctx context.Context, sess *session, chat *domain.Chat, text string, skipTools bool) ([]domain.DisplayMessage, error) {
	parsed := directive.Parse(text)

	if len(parsed.ToolCalls) > 0 && !skipTools {
		env := sess.env()
		results := make([]tools.Result, 0, len(parsed.ToolCalls))
		for _, call := range parsed.ToolCalls {
			results = append(results, c.executor.Execute(ctx, call.Name, call.Params, env))
		}

		chat.Conversation = append(chat.Conversation,
			domain.Turn{Role: domain.RoleAssistant, Content: text},
			domain.Turn{Role: domain.RoleUser, Content: "Tool results: " + formatToolResults(results)},
		)
		c.saveChats(ctx, sess)

		followup, err := c.provider.Complete(ctx, c.buildWireTurns(sess, chat))
		if err != nil {
			return nil, err
		}
		return c.processAssistant(ctx, sess, chat, followup, true)
	}

	for _, cmd := range parsed.Commands {
		c.runInternalCommand(ctx, sess, chat, cmd)
	}

	if parsed.Reaction != "" {
		if last := chat.LastSentMessage(); last != nil {
			last.Reaction = parsed.Reaction
		}
	}

	chat.Conversation = append(chat.Conversation, domain.Turn{Role: domain.RoleAssistant, Content: text})

	var delivered []domain.DisplayMessage
	if parsed.CleanText != "" {
		chunks := ChunkMessage(parsed.CleanText, c.config.ChunkLimit)
		for i, chunk := range chunks {
			if strings.TrimSpace(chunk) == "" {
				continue
			}
			msg := domain.DisplayMessage{
				Type:      domain.MessageReceived,
				Text:      chunk,
				Timestamp: c.now(),
			}
			chat.Messages = append(chat.Messages, msg)
			delivered = append(delivered, msg)
			chat.UpdatedAt = c.now()
			// Persist per chunk: already-delivered chunks survive a crash
			// mid-delivery.
			c.saveChats(ctx, sess)
			if i < len(chunks)-1 {
				c.sleep(c.config.ChunkDelayBase + c.jitter(c.config.ChunkDelayJitter))
			}
		}
	}

	chat.UpdatedAt = c.now()
	c.saveChats(ctx, sess)
	return delivered, nil
}

// runInternalCommand executes one memory-mutating directive. These never
// produce user-visible output directly.
func (c *Controller) runInternalCommand(ctx context.Context, sess *session, chat *domain.Chat, cmd directive.Call) {
	switch strings.ToLower(cmd.Name) {
	case "remember":
		if fact := cmd.Params["fact"]; fact != "" {
			sess.profile.Remember(fact)
			c.saveProfile(ctx, sess)
			c.logger.Info("remembered fact", "fact", fact)
		}
	case "mood":
		if mood := cmd.Params["mood"]; mood != "" {
			sess.profile.Mood = mood
			c.saveProfile(ctx, sess)
			c.logger.Info("mood updated", "mood", mood)
		}
	case "note":
		if note := cmd.Params["note"]; note != "" {
			chat.AddNote(note, c.now())
			c.saveChats(ctx, sess)
			c.logger.Info("chat note saved", "note", note)
		}
	case "checknotes":
		// Notes are already injected into every completion's system content;
		// this command is diagnostic only.
		if len(chat.Notes) > 0 {
			texts := make([]string, len(chat.Notes))
			for i, n := range chat.Notes {
				texts[i] = n.Text
			}
			c.logger.Info("chat notes", "notes", strings.Join(texts, ", "))
		} else {
			c.logger.Info("no chat notes yet")
		}
	case "asklocation":
		// Fire-and-forget: the flow waits for the current turn's writer lock,
		// so it runs only after this turn's response is fully delivered.
		go c.runLocationFlow(sess, chat.ID)
	default:
		c.logger.Warn("unknown internal command", "command", cmd.Name)
	}
}

// runLocationFlow is the detached asklocation side flow: resolve location,
// note the outcome in the transcript, auto-fetch weather on grant and run one
// directive-free completion whose output is delivered normally. It has its
// own error boundary; failures are logged, never surfaced as raw errors.
func (c *Controller) runLocationFlow(sess *session, chatID string) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("location flow panicked", "error", r)
		}
	}()

	ctx := context.Background()

	var loc *geo.Location
	var err error
	if c.locator != nil {
		loc, err = c.locator.Locate(ctx)
	} else {
		err = geo.ErrDenied
	}

	sess.turnMu.Lock()
	defer sess.turnMu.Unlock()

	chat, ok := sess.chats[chatID]
	if !ok {
		return
	}

	if err != nil || loc == nil {
		c.logger.Info("location denied", "error", err)
		chat.Conversation = append(chat.Conversation,
			domain.Turn{Role: domain.RoleSystem, Content: "User denied location access"})

		deny := domain.DisplayMessage{
			Type:      domain.MessageReceived,
			Text:      c.config.LocationDeniedMessage,
			Timestamp: c.now(),
		}
		chat.Messages = append(chat.Messages, deny)
		chat.Conversation = append(chat.Conversation,
			domain.Turn{Role: domain.RoleAssistant, Content: deny.Text})
		chat.UpdatedAt = c.now()
		c.saveChats(ctx, sess)
		return
	}

	sess.location = loc
	chat.Conversation = append(chat.Conversation, domain.Turn{
		Role: domain.RoleSystem,
		Content: fmt.Sprintf(
			"User's location: %s, %s. Now automatically proceed with their weather/time request using this location.",
			loc.City, loc.Country),
	})
	c.saveChats(ctx, sess)

	weather := c.executor.Execute(ctx, "weather", map[string]string{"city": loc.City}, sess.env())
	payload, merr := json.Marshal(weather.Result)
	if merr != nil {
		payload = []byte(fmt.Sprintf("%v", weather.Result))
	}
	chat.Conversation = append(chat.Conversation, domain.Turn{
		Role:    domain.RoleUser,
		Content: fmt.Sprintf("[Auto-fetched weather for %s]: %s", loc.City, payload),
	})
	c.saveChats(ctx, sess)

	reply, err := c.provider.Complete(ctx, c.buildWireTurns(sess, chat))
	if err != nil {
		c.logger.Error("location flow completion failed", "error", err)
		return
	}
	if _, err := c.processAssistant(ctx, sess, chat, reply, true); err != nil {
		c.logger.Error("location flow delivery failed", "error", err)
	}
}

// buildWireTurns copies the transcript and injects remembered facts, the
// user's name, a non-neutral mood and per-chat notes into the persona's
// system turn. The transcript itself is never mutated by injection.
func (c *Controller) buildWireTurns(sess *session, chat *domain.Chat) []domain.Turn {
	turns := make([]domain.Turn, len(chat.Conversation))
	copy(turns, chat.Conversation)

	if len(turns) == 0 || turns[0].Role != domain.RoleSystem {
		return turns
	}

	content := turns[0].Content
	profile := sess.profile
	if len(profile.Facts) > 0 {
		content += "\n\nUSER CONTEXT (remembered facts about this user): " + strings.Join(profile.Facts, ", ")
	}
	if profile.Name != "" {
		content += "\nUser's name: " + profile.Name
	}
	if profile.Mood != "" && profile.Mood != "neutral" {
		content += "\nCurrent mood seems: " + profile.Mood
	}
	if len(chat.Notes) > 0 {
		texts := make([]string, len(chat.Notes))
		for i, n := range chat.Notes {
			texts[i] = n.Text
		}
		content += "\n\nCHAT NOTES (things noted in this specific conversation): " + strings.Join(texts, "; ")
	}
	turns[0].Content = content
	return turns
}

// apologize appends the fixed in-voice failure message so an aborted turn
// leaves a visible trace instead of a raw error or a silent no-op.
func (c *Controller) apologize(ctx context.Context, sess *session, chat *domain.Chat) domain.DisplayMessage {
	msg := domain.DisplayMessage{
		Type:      domain.MessageReceived,
		Text:      c.config.ApologyMessage,
		Timestamp: c.now(),
	}
	chat.Messages = append(chat.Messages, msg)
	chat.Conversation = append(chat.Conversation,
		domain.Turn{Role: domain.RoleAssistant, Content: msg.Text})
	chat.UpdatedAt = c.now()
	c.saveChats(ctx, sess)
	return msg
}

func (c *Controller) saveProfile(ctx context.Context, sess *session) {
	if err := c.store.SaveProfile(ctx, sess.userID, sess.profile); err != nil {
		c.logger.Error("profile save failed", "user_id", sess.userID, "error", err)
	}
}

func (c *Controller) saveChats(ctx context.Context, sess *session) {
	if err := c.store.SaveChats(ctx, sess.userID, sess.chats); err != nil {
		c.logger.Error("chat save failed", "user_id", sess.userID, "error", err)
	}
}

// formatToolResults renders every tool result as one synthetic user turn:
// "tool1: {...} | tool2: {...}".
func formatToolResults(results []tools.Result) string {
	parts := make([]string, len(results))
	for i, r := range results {
		payload, err := json.Marshal(r.Result)
		if err != nil {
			payload = []byte(fmt.Sprintf("%v", r.Result))
		}
		parts[i] = fmt.Sprintf("%s: %s", r.Tool, payload)
	}
	return strings.Join(parts, " | ")
}
