// File: internal/domain/chat.go
package domain

import "time"

// Message directions for DisplayMessage.Type.
const (
	MessageSent     = "sent"
	MessageReceived = "received"
)

// Conversation roles for Turn.Role. The persona's system turn is always the
// first entry of a chat's Conversation when present.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MaxChatNotes caps the per-chat note list; the oldest notes are dropped first.
const MaxChatNotes = 15

// Chat represents a single conversation thread between a user and a bot persona.
//
// Messages is the user-visible bubble list and never contains directive
// syntax. Conversation is the model-facing transcript and keeps assistant
// turns raw, directives included.
type Chat struct {
	ID           string           `json:"id"`
	BotID        string           `json:"bot_id"`
	Messages     []DisplayMessage `json:"messages"`
	Conversation []Turn           `json:"conversation"`
	Notes        []Note           `json:"notes,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// DisplayMessage is one user-visible chat bubble.
type DisplayMessage struct {
	Type      string     `json:"type"` // "sent" or "received"
	Text      string     `json:"text,omitempty"`
	ImageURL  string     `json:"image_url,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	ReplyTo   string     `json:"reply_to,omitempty"`
	Reaction  string     `json:"reaction,omitempty"`
}

// Turn is one role-tagged entry of the model-facing transcript.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Note is a free-text observation the assistant saved about this chat.
type Note struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// AddNote appends a note and drops the oldest entries past MaxChatNotes.
func (c *Chat) AddNote(text string, now time.Time) {
	c.Notes = append(c.Notes, Note{Text: text, Timestamp: now})
	if len(c.Notes) > MaxChatNotes {
		c.Notes = c.Notes[len(c.Notes)-MaxChatNotes:]
	}
}

// Clone returns a deep copy of the chat. Accessors hand clones to callers so
// encoding or inspecting a chat never races the session's writer.
func (c *Chat) Clone() *Chat {
	clone := *c
	clone.Messages = make([]DisplayMessage, len(c.Messages))
	copy(clone.Messages, c.Messages)
	for i := range clone.Messages {
		if readAt := clone.Messages[i].ReadAt; readAt != nil {
			t := *readAt
			clone.Messages[i].ReadAt = &t
		}
	}
	clone.Conversation = make([]Turn, len(c.Conversation))
	copy(clone.Conversation, c.Conversation)
	clone.Notes = make([]Note, len(c.Notes))
	copy(clone.Notes, c.Notes)
	return &clone
}

// LastSentMessage returns the most recent bubble if it was sent by the user,
// or nil. Reactions extracted from assistant output are applied retroactively
// to this message.
func (c *Chat) LastSentMessage() *DisplayMessage {
	if len(c.Messages) == 0 {
		return nil
	}
	last := &c.Messages[len(c.Messages)-1]
	if last.Type != MessageSent {
		return nil
	}
	return last
}
