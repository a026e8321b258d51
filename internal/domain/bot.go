// File: internal/domain/bot.go
package domain

import "time"

// Bot is a configured AI persona built from a Roblox profile. Moderation is
// tri-state: Approved/Rejected both nil means the bot is still pending review.
type Bot struct {
	ID              string `json:"id" gorm:"primarykey"`
	CreatorID       uint   `json:"creator_id" gorm:"not null;index"`
	ShareCode       string `json:"share_code" gorm:"uniqueIndex"`
	RobloxUserID    int64  `json:"roblox_user_id"`
	RobloxUsername  string `json:"roblox_username"`
	RobloxAvatarURL string `json:"roblox_avatar_url"`
	Name            string `json:"name" gorm:"not null"`
	Description     string `json:"description"`
	SystemPrompt    string `json:"system_prompt,omitempty"`
	IsPublic        bool   `json:"is_public"`
	Approved        *bool  `json:"approved"`
	Rejected        *bool  `json:"rejected"`
	RejectionReason string `json:"rejection_reason,omitempty"`
	ModeratedAt     *time.Time `json:"moderated_at,omitempty"`
	ChatCount       int64      `json:"chat_count"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsPending reports whether the bot has not been moderated yet.
func (b *Bot) IsPending() bool {
	return b.Approved == nil && b.Rejected == nil
}

// IsApproved reports whether moderation approved the bot.
func (b *Bot) IsApproved() bool {
	return b.Approved != nil && *b.Approved
}

// IsRejected reports whether moderation rejected the bot.
func (b *Bot) IsRejected() bool {
	return b.Rejected != nil && *b.Rejected
}
