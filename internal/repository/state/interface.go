// File: internal/repository/state/interface.go

// Package state is the persistence boundary for per-user conversation state:
// chats and the user profile are written as JSON blobs to a key-value durable
// store under fixed key prefixes. No schema migration logic lives here.
package state

import (
	"context"

	"personachat/internal/domain"
)

// Store loads and saves per-user conversation state. A missing profile loads
// as a fresh default; missing chats load as an empty map.
type Store interface {
	LoadProfile(ctx context.Context, userID uint) (*domain.UserProfile, error)
	SaveProfile(ctx context.Context, userID uint, profile *domain.UserProfile) error
	LoadChats(ctx context.Context, userID uint) (map[string]*domain.Chat, error)
	SaveChats(ctx context.Context, userID uint, chats map[string]*domain.Chat) error
}
