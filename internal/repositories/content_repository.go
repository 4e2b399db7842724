package repositories

import (
	"context"

	"github.com/sah-lishi/backend-journey/internal/models"
)

// CommentRepository persists comments on videos.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListByVideo(ctx context.Context, videoID string, page, limit int) ([]models.Comment, error)
	UpdateContent(ctx context.Context, id, content string) (models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// TweetRepository persists short posts.
type TweetRepository interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	ListByOwner(ctx context.Context, ownerID string, page, limit int) ([]models.Tweet, error)
	UpdateContent(ctx context.Context, id, content string) (models.Tweet, error)
	Delete(ctx context.Context, id string) error
}

// PlaylistRepository persists playlists and their membership.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist, videoIDs []string) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	ListByOwner(ctx context.Context, ownerID string, page, limit int) ([]models.Playlist, error)
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
	Update(ctx context.Context, id string, name, description *string) (models.Playlist, error)
	Delete(ctx context.Context, id string) error
}
