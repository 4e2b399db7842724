// Package videos implements the video use cases: publishing media,
// ownership-checked edits, view recording and the read-through cache.
package videos

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/sah-lishi/backend-journey/internal/apperr"
	"github.com/sah-lishi/backend-journey/internal/logging"
	"github.com/sah-lishi/backend-journey/internal/models"
	"github.com/sah-lishi/backend-journey/internal/repositories"
)

// Store is the persistence the catalog needs.
type Store interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, id string, update models.VideoUpdate) (models.Video, error)
	TogglePublish(ctx context.Context, id string) (models.Video, error)
	Delete(ctx context.Context, id string) (models.Video, error)
	RecordView(ctx context.Context, userID, videoID string) (bool, error)
}

// ContentStore uploads local files and deletes stored blobs.
type ContentStore interface {
	Upload(ctx context.Context, localPath string) (*models.Asset, error)
	AssetDeleter
}

// Prober reads a media file's duration in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Reaper accepts blobs for asynchronous deletion.
type Reaper interface {
	Enqueue(ctx context.Context, asset models.Asset) error
}

// CacheRecorder observes cache lookups.
type CacheRecorder interface {
	ObserveCache(hit bool)
}

type nopCacheRecorder struct{}

func (nopCacheRecorder) ObserveCache(bool) {}

// PublishInput carries a new video. The paths name local temp files which
// the catalog consumes.
type PublishInput struct {
	OwnerID       string
	Title         string
	Description   string
	VideoPath     string
	ThumbnailPath string
}

// UpdateInput carries the editable fields; nil or empty fields are untouched.
type UpdateInput struct {
	Title         *string
	Description   *string
	ThumbnailPath string
}

// CatalogDeps groups the catalog's collaborators. Cache, Prober, Reaper and
// Recorder are optional.
type CatalogDeps struct {
	Store    Store
	Content  ContentStore
	Prober   Prober
	Cache    Cache
	Reaper   Reaper
	Recorder CacheRecorder
}

// Catalog coordinates video persistence, blob storage and caching.
type Catalog struct {
	store    Store
	content  ContentStore
	prober   Prober
	cache    Cache
	reaper   Reaper
	recorder CacheRecorder
	now      func() time.Time
}

// NewCatalog wires a catalog.
func NewCatalog(deps CatalogDeps) *Catalog {
	c := &Catalog{
		store:    deps.Store,
		content:  deps.Content,
		prober:   deps.Prober,
		cache:    deps.Cache,
		reaper:   deps.Reaper,
		recorder: deps.Recorder,
		now:      time.Now,
	}
	if c.cache == nil {
		c.cache = NopCache{}
	}
	if c.recorder == nil {
		c.recorder = nopCacheRecorder{}
	}
	return c
}

// Publish uploads the media and thumbnail and stores a published video.
// Both uploads must succeed; a blob uploaded before a later failure is
// deleted again.
func (c *Catalog) Publish(ctx context.Context, in PublishInput) (models.Video, error) {
	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		discard(in.VideoPath, in.ThumbnailPath)
		return models.Video{}, apperr.InvalidArgument("title is required")
	case strings.TrimSpace(in.VideoPath) == "":
		discard(in.ThumbnailPath)
		return models.Video{}, apperr.InvalidArgument("video file is required")
	case strings.TrimSpace(in.ThumbnailPath) == "":
		discard(in.VideoPath)
		return models.Video{}, apperr.InvalidArgument("thumbnail is required")
	}

	ctx, span := logging.StartSpan(ctx, "videos.publish")
	defer span.End()
	logger := logging.FromContext(ctx)

	// The upload consumes the temp file, so probe first.
	duration := c.probe(ctx, in.VideoPath)

	media, err := c.content.Upload(ctx, in.VideoPath)
	if err != nil || media == nil {
		discard(in.ThumbnailPath)
		span.Fail(err)
		return models.Video{}, apperr.Internal("video file upload failed", err)
	}

	thumb, err := c.content.Upload(ctx, in.ThumbnailPath)
	if err != nil || thumb == nil {
		c.deleteNow(ctx, *media)
		span.Fail(err)
		return models.Video{}, apperr.Internal("thumbnail upload failed", err)
	}

	now := c.now().UTC()
	video := models.Video{
		ID:                models.NewID(),
		OwnerID:           in.OwnerID,
		VideoFile:         media.URL,
		VideoPublicID:     media.PublicID,
		Thumbnail:         thumb.URL,
		ThumbnailPublicID: thumb.PublicID,
		Title:             title,
		Description:       strings.TrimSpace(in.Description),
		Duration:          duration,
		IsPublished:       true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := c.store.Create(ctx, video); err != nil {
		c.deleteNow(ctx, *media)
		c.deleteNow(ctx, *thumb)
		span.Fail(err)
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Video{}, apperr.Unauthorized("owner no longer exists")
		}
		return models.Video{}, apperr.Internal("store video", err)
	}

	logger.Info("video published", "videoId", video.ID, "ownerId", video.OwnerID, "duration", duration)
	return video, nil
}

func (c *Catalog) probe(ctx context.Context, path string) float64 {
	if c.prober == nil {
		return 0
	}
	seconds, err := c.prober.Duration(ctx, path)
	if err != nil {
		logging.FromContext(ctx).Warn("probe video duration", "error", err)
		return 0
	}
	return seconds
}

// Get returns a video. Unpublished videos are visible to their owner only.
// When viewerID is set the view is recorded at most once per viewer.
func (c *Catalog) Get(ctx context.Context, viewerID, id string) (models.Video, error) {
	if !models.ValidID(id) {
		return models.Video{}, apperr.InvalidArgument("invalid video id")
	}

	video, err := c.load(ctx, id)
	if err != nil {
		return models.Video{}, err
	}
	if !video.IsPublished && video.OwnerID != viewerID {
		return models.Video{}, apperr.NotFound("video not found")
	}

	if viewerID != "" {
		counted, err := c.store.RecordView(ctx, viewerID, id)
		switch {
		case err != nil:
			logging.FromContext(ctx).Warn("record video view", "videoId", id, "userId", viewerID, "error", err)
		case counted:
			video.Views++
			c.cache.Invalidate(ctx, id)
		}
	}
	return video, nil
}

// load reads through the cache.
func (c *Catalog) load(ctx context.Context, id string) (models.Video, error) {
	if video, ok := c.cache.Get(ctx, id); ok {
		c.recorder.ObserveCache(true)
		return video, nil
	}
	c.recorder.ObserveCache(false)

	video, err := c.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Video{}, apperr.NotFound("video not found")
		}
		return models.Video{}, apperr.Internal("load video", err)
	}
	c.cache.Set(ctx, video)
	return video, nil
}

// owned loads id from the store and checks that actorID owns it.
func (c *Catalog) owned(ctx context.Context, actorID, id string) (models.Video, error) {
	if !models.ValidID(id) {
		return models.Video{}, apperr.InvalidArgument("invalid video id")
	}
	video, err := c.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Video{}, apperr.NotFound("video not found")
		}
		return models.Video{}, apperr.Internal("load video", err)
	}
	if video.OwnerID != actorID {
		return models.Video{}, apperr.Forbidden("only the owner can modify this video")
	}
	return video, nil
}

// Update edits title, description or thumbnail. A replaced thumbnail blob
// is reaped once the row points at the new one.
func (c *Catalog) Update(ctx context.Context, actorID, id string, in UpdateInput) (models.Video, error) {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		discard(in.ThumbnailPath)
		return models.Video{}, apperr.InvalidArgument("title cannot be empty")
	}
	if in.Title == nil && in.Description == nil && strings.TrimSpace(in.ThumbnailPath) == "" {
		return models.Video{}, apperr.InvalidArgument("nothing to update")
	}

	current, err := c.owned(ctx, actorID, id)
	if err != nil {
		discard(in.ThumbnailPath)
		return models.Video{}, err
	}

	update := models.VideoUpdate{Description: in.Description}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		update.Title = &title
	}

	var thumb *models.Asset
	if strings.TrimSpace(in.ThumbnailPath) != "" {
		thumb, err = c.content.Upload(ctx, in.ThumbnailPath)
		if err != nil || thumb == nil {
			return models.Video{}, apperr.Internal("thumbnail upload failed", err)
		}
		update.Thumbnail = &thumb.URL
		update.ThumbnailPublicID = &thumb.PublicID
	}

	updated, err := c.store.Update(ctx, id, update)
	if err != nil {
		if thumb != nil {
			c.enqueue(ctx, *thumb)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Video{}, apperr.NotFound("video not found")
		}
		return models.Video{}, apperr.Internal("update video", err)
	}
	c.cache.Invalidate(ctx, id)

	if thumb != nil {
		c.enqueue(ctx, models.Asset{URL: current.Thumbnail, PublicID: current.ThumbnailPublicID, Kind: models.AssetKindImage})
	}
	return updated, nil
}

// Delete removes the video and schedules its blobs for deletion.
func (c *Catalog) Delete(ctx context.Context, actorID, id string) (models.Video, error) {
	if _, err := c.owned(ctx, actorID, id); err != nil {
		return models.Video{}, err
	}

	deleted, err := c.store.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Video{}, apperr.NotFound("video not found")
		}
		return models.Video{}, apperr.Internal("delete video", err)
	}
	c.cache.Invalidate(ctx, id)

	c.enqueue(ctx, models.Asset{URL: deleted.VideoFile, PublicID: deleted.VideoPublicID, Kind: models.AssetKindVideo})
	c.enqueue(ctx, models.Asset{URL: deleted.Thumbnail, PublicID: deleted.ThumbnailPublicID, Kind: models.AssetKindImage})

	logging.FromContext(ctx).Info("video deleted", "videoId", id, "ownerId", actorID)
	return deleted, nil
}

// TogglePublish flips the publication flag of an owned video.
func (c *Catalog) TogglePublish(ctx context.Context, actorID, id string) (models.Video, error) {
	if _, err := c.owned(ctx, actorID, id); err != nil {
		return models.Video{}, err
	}

	video, err := c.store.TogglePublish(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Video{}, apperr.NotFound("video not found")
		}
		return models.Video{}, apperr.Internal("toggle publish", err)
	}
	c.cache.Invalidate(ctx, id)
	return video, nil
}

func (c *Catalog) enqueue(ctx context.Context, asset models.Asset) {
	if asset.PublicID == "" {
		return
	}
	if c.reaper == nil {
		c.deleteNow(ctx, asset)
		return
	}
	if err := c.reaper.Enqueue(ctx, asset); err != nil {
		logging.FromContext(ctx).Warn("queue asset deletion", "publicId", asset.PublicID, "error", err)
		c.deleteNow(ctx, asset)
	}
}

func (c *Catalog) deleteNow(ctx context.Context, asset models.Asset) {
	if err := c.content.Delete(ctx, asset.PublicID, asset.Kind); err != nil {
		logging.FromContext(ctx).Warn("delete asset", "publicId", asset.PublicID, "error", err)
	}
}

// discard removes temp files the catalog will not hand to the content store.
func discard(paths ...string) {
	for _, p := range paths {
		if strings.TrimSpace(p) != "" {
			_ = os.Remove(p)
		}
	}
}
