package repositories

import (
	"context"

	"github.com/sah-lishi/backend-journey/internal/models"
)

// EngagementRepository defines data access for likes and subscriptions.
// Toggles report whether the relation exists once they return.
type EngagementRepository interface {
	ToggleLike(ctx context.Context, actorID string, kind models.Target, targetID string) (bool, error)
	ToggleSubscription(ctx context.Context, subscriberID, channelID string) (bool, error)
	ListSubscribers(ctx context.Context, channelID string) ([]models.Subscription, error)
	ListSubscriptions(ctx context.Context, subscriberID string) ([]models.Subscription, error)
	ListLikedVideos(ctx context.Context, userID string) ([]models.Video, error)
}
