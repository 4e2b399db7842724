package videos

import (
	"context"
	"sync"
	"time"

	"github.com/sah-lishi/backend-journey/internal/models"
)

// Cache holds videos by id. Implementations treat their own failures as
// misses; the database stays authoritative.
type Cache interface {
	Get(ctx context.Context, id string) (models.Video, bool)
	Set(ctx context.Context, video models.Video)
	Invalidate(ctx context.Context, id string)
}

type cacheEntry struct {
	video   models.Video
	expires time.Time
}

// MemoryCache is a process-local TTL cache used when no redis is configured.
type MemoryCache struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.RWMutex
	items map[string]cacheEntry
}

// NewMemoryCache returns a cache whose entries live for ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &MemoryCache{ttl: ttl, now: time.Now, items: make(map[string]cacheEntry)}
}

// Get returns an unexpired entry.
func (c *MemoryCache) Get(_ context.Context, id string) (models.Video, bool) {
	c.mu.RLock()
	entry, ok := c.items[id]
	c.mu.RUnlock()
	if !ok {
		return models.Video{}, false
	}
	if !c.now().Before(entry.expires) {
		c.mu.Lock()
		if current, still := c.items[id]; still && current.expires.Equal(entry.expires) {
			delete(c.items, id)
		}
		c.mu.Unlock()
		return models.Video{}, false
	}
	return entry.video, true
}

// Set stores video until the TTL elapses.
func (c *MemoryCache) Set(_ context.Context, video models.Video) {
	c.mu.Lock()
	c.items[video.ID] = cacheEntry{video: video, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate drops id.
func (c *MemoryCache) Invalidate(_ context.Context, id string) {
	c.mu.Lock()
	delete(c.items, id)
	c.mu.Unlock()
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (models.Video, bool) { return models.Video{}, false }
func (NopCache) Set(context.Context, models.Video)                 {}
func (NopCache) Invalidate(context.Context, string)                {}
