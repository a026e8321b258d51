// File: internal/repository/state/gorm_state_store.go
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"personachat/internal/domain"
)

// Key prefixes for the blob store. These are fixed contract strings; changing
// them orphans existing state.
const (
	profileKeyPrefix = "personachat_user_profile"
	chatsKeyPrefix   = "personachat_chats"
)

// StateBlob is one JSON blob row in the key-value table.
type StateBlob struct {
	Key       string `gorm:"primarykey"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

type gormStateStore struct {
	db *gorm.DB
}

// NewStateStore creates a gorm-backed blob store.
func NewStateStore(db *gorm.DB) Store {
	return &gormStateStore{db: db}
}

func (s *gormStateStore) LoadProfile(ctx context.Context, userID uint) (*domain.UserProfile, error) {
	profile := domain.NewUserProfile()
	found, err := s.load(ctx, profileKey(userID), profile)
	if err != nil {
		return nil, err
	}
	if !found {
		return domain.NewUserProfile(), nil
	}
	// Suspension is lazily cleared at load time as well as before each send.
	if active, _ := profile.SuspensionActive(time.Now()); !active && profile.SuspendedUntil != nil {
		profile.SuspendedUntil = nil
	}
	return profile, nil
}

func (s *gormStateStore) SaveProfile(ctx context.Context, userID uint, profile *domain.UserProfile) error {
	return s.save(ctx, profileKey(userID), profile)
}

func (s *gormStateStore) LoadChats(ctx context.Context, userID uint) (map[string]*domain.Chat, error) {
	chats := map[string]*domain.Chat{}
	if _, err := s.load(ctx, chatsKey(userID), &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (s *gormStateStore) SaveChats(ctx context.Context, userID uint, chats map[string]*domain.Chat) error {
	return s.save(ctx, chatsKey(userID), chats)
}

func (s *gormStateStore) load(ctx context.Context, key string, out interface{}) (bool, error) {
	var blob StateBlob
	err := s.db.WithContext(ctx).First(&blob, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		log.Printf("[StateStore] Database error loading %q: %v", key, err)
		return false, errors.New("database error loading state")
	}
	if err := json.Unmarshal(blob.Value, out); err != nil {
		log.Printf("[StateStore] Corrupt blob for %q: %v", key, err)
		return false, errors.New("corrupt state blob")
	}
	return true, nil
}

func (s *gormStateStore) save(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal state for %q: %w", key, err)
	}

	blob := StateBlob{Key: key, Value: data}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&blob).Error
	if err != nil {
		log.Printf("[StateStore] Database error saving %q: %v", key, err)
		return errors.New("database error saving state")
	}
	return nil
}

func profileKey(userID uint) string { return fmt.Sprintf("%s:%d", profileKeyPrefix, userID) }
func chatsKey(userID uint) string   { return fmt.Sprintf("%s:%d", chatsKeyPrefix, userID) }
