package repositories

import (
	"context"

	"github.com/sah-lishi/backend-journey/internal/feed"
	"github.com/sah-lishi/backend-journey/internal/models"
)

// VideoRepository exposes data access for videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	ListVideos(ctx context.Context, plan feed.Plan) ([]models.Video, error)
	Update(ctx context.Context, id string, update models.VideoUpdate) (models.Video, error)
	TogglePublish(ctx context.Context, id string) (models.Video, error)
	Delete(ctx context.Context, id string) (models.Video, error)
	RecordView(ctx context.Context, userID, videoID string) (bool, error)
}
