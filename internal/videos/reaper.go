package videos

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sah-lishi/backend-journey/internal/models"
)

// AssetDeleter removes a stored blob.
type AssetDeleter interface {
	Delete(ctx context.Context, publicID, kind string) error
}

// ReaperConfig controls the concurrency characteristics of the reaper.
type ReaperConfig struct {
	QueueSize int
	Workers   int
	Timeout   time.Duration
}

// AssetReaper deletes blobs that no longer back a video. Deletion happens
// off the request path; failures are logged and leave an orphaned blob.
type AssetReaper struct {
	deleter AssetDeleter
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	jobs   chan models.Asset
	wg     sync.WaitGroup
	once   sync.Once
}

// NewAssetReaper starts cfg.Workers goroutines draining the queue.
func NewAssetReaper(deleter AssetDeleter, cfg ReaperConfig, logger *slog.Logger) *AssetReaper {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &AssetReaper{
		deleter: deleter,
		logger:  logger,
		timeout: cfg.Timeout,
		jobs:    make(chan models.Asset, cfg.QueueSize),
	}

	r.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go r.worker()
	}
	return r
}

// Enqueue schedules deletion of asset. Assets without a public id are ignored.
func (r *AssetReaper) Enqueue(ctx context.Context, asset models.Asset) error {
	if asset.PublicID == "" {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrReaperClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case r.jobs <- asset:
		return nil
	}
}

// Shutdown stops accepting work and waits for queued deletions to finish.
func (r *AssetReaper) Shutdown(ctx context.Context) error {
	r.once.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.jobs)
		r.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (r *AssetReaper) worker() {
	defer r.wg.Done()
	for asset := range r.jobs {
		r.reap(asset)
	}
}

func (r *AssetReaper) reap(asset models.Asset) {
	if r.deleter == nil {
		r.logger.Error("asset reaper has no content store", "publicId", asset.PublicID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.deleter.Delete(ctx, asset.PublicID, asset.Kind); err != nil {
		r.logger.Error("delete orphaned asset", "publicId", asset.PublicID, "kind", asset.Kind, "error", err)
		return
	}
	r.logger.Debug("orphaned asset deleted", "publicId", asset.PublicID, "kind", asset.Kind)
}
