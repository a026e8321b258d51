// File: internal/services/convo/chats.go
package convo

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"personachat/internal/domain"
)

// Chats returns snapshots of the user's chats sorted by most recent
// activity. Snapshots are deep copies built under the session lock; the live
// chat objects never leave it.
func (c *Controller) Chats(ctx context.Context, userID uint) ([]*domain.Chat, error) {
	sess, err := c.getSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	sess.turnMu.Lock()
	defer sess.turnMu.Unlock()

	chats := make([]*domain.Chat, 0, len(sess.chats))
	for _, chat := range sess.chats {
		chats = append(chats, chat.Clone())
	}
	sort.Slice(chats, func(i, j int) bool {
		return chats[i].UpdatedAt.After(chats[j].UpdatedAt)
	})
	return chats, nil
}

// Chat returns a snapshot of one chat by ID.
func (c *Controller) Chat(ctx context.Context, userID uint, chatID string) (*domain.Chat, error) {
	sess, err := c.getSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	sess.turnMu.Lock()
	defer sess.turnMu.Unlock()

	chat, ok := sess.chats[chatID]
	if !ok {
		return nil, ErrChatNotFound
	}
	return chat.Clone(), nil
}

// CreateChat opens a chat with a bot, seeding the transcript with the bot's
// persona prompt. A user gets at most one chat per bot: an existing chat is
// returned with existing=true and nothing new is created.
func (c *Controller) CreateChat(ctx context.Context, userID uint, bot *domain.Bot) (*domain.Chat, bool, error) {
	sess, err := c.getSession(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	sess.turnMu.Lock()
	defer sess.turnMu.Unlock()

	for _, chat := range sess.chats {
		if chat.BotID == bot.ID {
			return chat.Clone(), true, nil
		}
	}

	now := c.now()
	chat := &domain.Chat{
		ID:    uuid.NewString(),
		BotID: bot.ID,
		Conversation: []domain.Turn{
			{Role: domain.RoleSystem, Content: bot.SystemPrompt},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	sess.chats[chat.ID] = chat
	c.saveChats(ctx, sess)

	c.logger.Info("chat created", "user_id", userID, "bot_id", bot.ID)
	return chat.Clone(), false, nil
}

// DeleteChat removes one chat. Deleting a missing chat is an error so the
// caller can distinguish it from a successful delete.
func (c *Controller) DeleteChat(ctx context.Context, userID uint, chatID string) error {
	sess, err := c.getSession(ctx, userID)
	if err != nil {
		return err
	}

	sess.turnMu.Lock()
	defer sess.turnMu.Unlock()

	if _, ok := sess.chats[chatID]; !ok {
		return ErrChatNotFound
	}
	delete(sess.chats, chatID)
	c.saveChats(ctx, sess)
	return nil
}

// DeleteChatsForBot removes every chat the user has with one bot. It is used
// when a bot is deleted so its chats do not outlive it.
func (c *Controller) DeleteChatsForBot(ctx context.Context, userID uint, botID string) error {
	sess, err := c.getSession(ctx, userID)
	if err != nil {
		return err
	}

	sess.turnMu.Lock()
	defer sess.turnMu.Unlock()

	removed := false
	for id, chat := range sess.chats {
		if chat.BotID == botID {
			delete(sess.chats, id)
			removed = true
		}
	}
	if removed {
		c.saveChats(ctx, sess)
	}
	return nil
}

// Profile returns a snapshot of the user's profile, clearing an expired
// suspension on read.
func (c *Controller) Profile(ctx context.Context, userID uint) (*domain.UserProfile, error) {
	sess, err := c.getSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	sess.turnMu.Lock()
	defer sess.turnMu.Unlock()

	wasSuspended := sess.profile.Suspended
	if active, _ := sess.profile.SuspensionActive(c.now()); !active && wasSuspended {
		c.saveProfile(ctx, sess)
	}
	return sess.profile.Clone(), nil
}
