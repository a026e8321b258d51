package bot

import (
	"context"

	"personachat/internal/domain"
)

// BotRepository handles persona data operations.
type BotRepository interface {
	Create(ctx context.Context, bot *domain.Bot) (*domain.Bot, error)
	FindByID(ctx context.Context, id string) (*domain.Bot, error)
	FindByShareCode(ctx context.Context, code string) (*domain.Bot, error)
	FindByCreator(ctx context.Context, creatorID uint) ([]domain.Bot, error)
	FindPublicApproved(ctx context.Context, limit int) ([]domain.Bot, error)
	SearchPublic(ctx context.Context, query string, limit int) ([]domain.Bot, error)
	Update(ctx context.Context, bot *domain.Bot) error
	Delete(ctx context.Context, id string, creatorID uint) error
	IncrementChatCount(ctx context.Context, id string) error
	ShareCodeExists(ctx context.Context, code string) (bool, error)
}
