package feed

import (
	"context"

	"github.com/sah-lishi/backend-journey/internal/apperr"
	"github.com/sah-lishi/backend-journey/internal/logging"
	"github.com/sah-lishi/backend-journey/internal/models"
)

// Store executes a Plan against the videos table.
type Store interface {
	ListVideos(ctx context.Context, plan Plan) ([]models.Video, error)
}

// Page is one window of a listing.
type Page struct {
	Items []models.Video `json:"docs"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// Service serves video listings.
type Service struct {
	store Store
}

// NewService constructs a Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListVideos builds q and runs it. An empty window is a successful result.
func (s *Service) ListVideos(ctx context.Context, q Query) (Page, error) {
	ctx, span := logging.StartSpan(ctx, "feed.list_videos")
	defer span.End()

	plan, err := Build(q)
	if err != nil {
		span.Fail(err)
		return Page{}, err
	}

	items, err := s.store.ListVideos(ctx, plan)
	if err != nil {
		span.Fail(err)
		return Page{}, apperr.Internal("unable to fetch videos", err)
	}
	if items == nil {
		items = []models.Video{}
	}

	return Page{Items: items, Page: plan.Page, Limit: plan.Limit}, nil
}
