// File: internal/repository/bot/bot_repository.go
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"personachat/internal/domain"
)

var ErrBotNotFound = errors.New("bot not found")
var ErrUnauthorizedAccess = errors.New("unauthorized access to bot")

type gormBotRepository struct {
	db *gorm.DB
}

func NewBotRepository(db *gorm.DB) BotRepository {
	return &gormBotRepository{db: db}
}

func (r *gormBotRepository) Create(ctx context.Context, bot *domain.Bot) (*domain.Bot, error) {
	if err := r.validateBotInput(bot); err != nil {
		log.Printf("[BotRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(bot).Error; err != nil {
		log.Printf("[BotRepository] Database error during bot creation for user ID %d: %v", bot.CreatorID, err)
		return nil, errors.New("database error creating bot")
	}
	return bot, nil
}

func (r *gormBotRepository) FindByID(ctx context.Context, id string) (*domain.Bot, error) {
	if id == "" {
		return nil, errors.New("invalid bot ID")
	}

	var bot domain.Bot
	err := r.db.WithContext(ctx).First(&bot, "id = ?", id).Error
	return r.handleFindError(err, &bot, "FindByID")
}

func (r *gormBotRepository) FindByShareCode(ctx context.Context, code string) (*domain.Bot, error) {
	if code == "" {
		return nil, errors.New("invalid share code")
	}

	var bot domain.Bot
	err := r.db.WithContext(ctx).First(&bot, "share_code = ?", strings.ToUpper(code)).Error
	return r.handleFindError(err, &bot, "FindByShareCode")
}

func (r *gormBotRepository) FindByCreator(ctx context.Context, creatorID uint) ([]domain.Bot, error) {
	if creatorID == 0 {
		return nil, errors.New("invalid user ID")
	}

	var bots []domain.Bot
	err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&bots).Error
	if err != nil {
		log.Printf("[BotRepository] Database error finding bots for user ID %d: %v", creatorID, err)
		return nil, errors.New("database error fetching bots")
	}
	return bots, nil
}

func (r *gormBotRepository) FindPublicApproved(ctx context.Context, limit int) ([]domain.Bot, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var bots []domain.Bot
	err := r.db.WithContext(ctx).
		Where("approved = ? AND is_public = ?", true, true).
		Order("chat_count DESC").
		Limit(limit).
		Find(&bots).Error
	if err != nil {
		log.Printf("[BotRepository] Database error fetching marketplace bots: %v", err)
		return nil, errors.New("database error fetching marketplace bots")
	}
	return bots, nil
}

func (r *gormBotRepository) SearchPublic(ctx context.Context, query string, limit int) ([]domain.Bot, error) {
	if err := r.validateSearchPattern(query); err != nil {
		return nil, fmt.Errorf("invalid search pattern: %w", err)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	pattern := fmt.Sprintf("%%%s%%", query)
	var bots []domain.Bot
	err := r.db.WithContext(ctx).
		Where("approved = ? AND is_public = ?", true, true).
		Where("name LIKE ? OR roblox_username LIKE ? OR description LIKE ?", pattern, pattern, pattern).
		Order("chat_count DESC").
		Limit(limit).
		Find(&bots).Error
	if err != nil {
		log.Printf("[BotRepository] Database error searching marketplace: %v", err)
		return nil, errors.New("database error searching marketplace")
	}
	return bots, nil
}

func (r *gormBotRepository) Update(ctx context.Context, bot *domain.Bot) error {
	if bot == nil || bot.ID == "" {
		return errors.New("invalid bot")
	}

	if err := r.db.WithContext(ctx).Save(bot).Error; err != nil {
		log.Printf("[BotRepository] Database error updating bot %s: %v", bot.ID, err)
		return errors.New("database error updating bot")
	}
	return nil
}

func (r *gormBotRepository) Delete(ctx context.Context, id string, creatorID uint) error {
	if id == "" || creatorID == 0 {
		return errors.New("invalid bot ID or user ID")
	}

	result := r.db.WithContext(ctx).
		Where("id = ? AND creator_id = ?", id, creatorID).
		Delete(&domain.Bot{})
	if result.Error != nil {
		log.Printf("[BotRepository] Database error deleting bot %s for user ID %d: %v", id, creatorID, result.Error)
		return errors.New("database error deleting bot")
	}
	if result.RowsAffected == 0 {
		return ErrUnauthorizedAccess
	}
	return nil
}

func (r *gormBotRepository) IncrementChatCount(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("invalid bot ID")
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Bot{}).
		Where("id = ?", id).
		Update("chat_count", gorm.Expr("chat_count + 1"))
	if result.Error != nil {
		log.Printf("[BotRepository] Database error incrementing chat count for bot %s: %v", id, result.Error)
		return errors.New("database error incrementing chat count")
	}
	if result.RowsAffected == 0 {
		return ErrBotNotFound
	}
	return nil
}

func (r *gormBotRepository) ShareCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Bot{}).Where("share_code = ?", code).Count(&count).Error
	if err != nil {
		log.Printf("[BotRepository] Database error checking share code %q: %v", code, err)
		return false, errors.New("database error checking share code")
	}
	return count > 0, nil
}

// ===== VALIDATION HELPERS =====

func (r *gormBotRepository) validateBotInput(bot *domain.Bot) error {
	if bot == nil {
		return errors.New("bot cannot be nil")
	}
	if bot.CreatorID == 0 {
		return errors.New("creator ID is required")
	}
	if strings.TrimSpace(bot.Name) == "" {
		return errors.New("bot name is required")
	}
	if len(bot.Name) > 100 {
		return errors.New("bot name must be 100 characters or less")
	}
	if strings.TrimSpace(bot.SystemPrompt) == "" {
		return errors.New("system prompt is required")
	}
	return nil
}

func (r *gormBotRepository) validateSearchPattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return errors.New("search pattern is required")
	}
	if len(pattern) > 100 {
		return errors.New("search pattern too long")
	}
	// Prevent wildcard injection in LIKE queries
	if strings.ContainsAny(pattern, `%_\`) {
		return errors.New("invalid characters in search pattern")
	}
	return nil
}

func (r *gormBotRepository) handleFindError(err error, bot *domain.Bot, operation string) (*domain.Bot, error) {
	if err == nil {
		return bot, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBotNotFound
	}
	log.Printf("[BotRepository] %s database error: %v", operation, err)
	return nil, errors.New("database query failed")
}
