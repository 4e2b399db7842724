package repositories

import (
	"context"

	"github.com/sah-lishi/backend-journey/internal/models"
)

// UserRepository defines the data access contract for users.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByLogin(ctx context.Context, identifier string) (models.User, error)
	WatchHistory(ctx context.Context, userID string) ([]models.WatchEntry, error)
	SetRefreshToken(ctx context.Context, userID, token string) error
	SwapRefreshToken(ctx context.Context, userID, current, next string) error
	ClearRefreshToken(ctx context.Context, userID string) error
}
