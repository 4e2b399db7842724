package videos

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sah-lishi/backend-journey/internal/logging"
	"github.com/sah-lishi/backend-journey/internal/models"
)

const redisKeyPrefix = "vidtube:video:"

// RedisCache is a cache-aside layer over redis. Entries are JSON encoded.
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisCache wraps client. The caller owns the client's lifecycle.
func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl}
}

// cachedVideo carries the fields models.Video hides from API responses.
type cachedVideo struct {
	models.Video
	VideoPublicID     string `json:"videoPublicId"`
	ThumbnailPublicID string `json:"thumbnailPublicId"`
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, id string) (models.Video, bool) {
	data, err := c.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.FromContext(ctx).Warn("video cache read failed", "videoId", id, "error", err)
		}
		return models.Video{}, false
	}

	var cached cachedVideo
	if err := json.Unmarshal(data, &cached); err != nil {
		logging.FromContext(ctx).Warn("video cache entry corrupt", "videoId", id, "error", err)
		c.Invalidate(ctx, id)
		return models.Video{}, false
	}
	video := cached.Video
	video.VideoPublicID = cached.VideoPublicID
	video.ThumbnailPublicID = cached.ThumbnailPublicID
	return video, true
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, video models.Video) {
	data, err := json.Marshal(cachedVideo{
		Video:             video,
		VideoPublicID:     video.VideoPublicID,
		ThumbnailPublicID: video.ThumbnailPublicID,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("video cache encode failed", "videoId", video.ID, "error", err)
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+video.ID, data, c.ttl).Err(); err != nil {
		logging.FromContext(ctx).Warn("video cache write failed", "videoId", video.ID, "error", err)
	}
}

// Invalidate implements Cache.
func (c *RedisCache) Invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		logging.FromContext(ctx).Warn("video cache invalidate failed", "videoId", id, "error", err)
	}
}

// ConnectRedis parses url and pings the server.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
