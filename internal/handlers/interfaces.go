package handlers

import (
	"context"

	"github.com/sah-lishi/backend-journey/internal/auth"
	"github.com/sah-lishi/backend-journey/internal/engagement"
	"github.com/sah-lishi/backend-journey/internal/feed"
	"github.com/sah-lishi/backend-journey/internal/models"
	"github.com/sah-lishi/backend-journey/internal/videos"
)

// UserStore captures the persistence operations required by the user handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByLogin(ctx context.Context, identifier string) (models.User, error)
	WatchHistory(ctx context.Context, userID string) ([]models.WatchEntry, error)
}

// SessionManager runs the credential lifecycle.
type SessionManager interface {
	Login(ctx context.Context, identifier, secret string) (auth.LoginResult, error)
	Logout(ctx context.Context, userID string) error
	Refresh(ctx context.Context, carried string) (models.SessionTokens, error)
}

// PasswordHasher hashes secrets before they are stored.
type PasswordHasher interface {
	Hash(secret string) (string, error)
}

// ContentStore uploads local files and deletes stored blobs.
type ContentStore interface {
	Upload(ctx context.Context, localPath string) (*models.Asset, error)
	Delete(ctx context.Context, publicID, kind string) error
}

// Engagement toggles and lists likes and subscriptions.
type Engagement interface {
	Toggle(ctx context.Context, actorID string, kind models.Target, targetID string) (engagement.State, error)
	ToggleSubscription(ctx context.Context, subscriberID, channelID string) (engagement.State, error)
	ListSubscribers(ctx context.Context, channelID string) ([]models.Subscription, error)
	ListSubscriptions(ctx context.Context, subscriberID string) ([]models.Subscription, error)
	ListLikedVideos(ctx context.Context, userID string) ([]models.Video, error)
}

// FeedLister pages through published videos.
type FeedLister interface {
	ListVideos(ctx context.Context, q feed.Query) (feed.Page, error)
}

// VideoCatalog runs the video use cases.
type VideoCatalog interface {
	Publish(ctx context.Context, in videos.PublishInput) (models.Video, error)
	Get(ctx context.Context, viewerID, id string) (models.Video, error)
	Update(ctx context.Context, actorID, id string, in videos.UpdateInput) (models.Video, error)
	Delete(ctx context.Context, actorID, id string) (models.Video, error)
	TogglePublish(ctx context.Context, actorID, id string) (models.Video, error)
}

// VideoLookup resolves a video by id.
type VideoLookup interface {
	FindByID(ctx context.Context, id string) (models.Video, error)
}

// HealthChecker reports whether a backing service is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
