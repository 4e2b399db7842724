package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sah-lishi/backend-journey/internal/auth"
	"github.com/sah-lishi/backend-journey/internal/config"
	"github.com/sah-lishi/backend-journey/internal/db"
	"github.com/sah-lishi/backend-journey/internal/engagement"
	"github.com/sah-lishi/backend-journey/internal/feed"
	"github.com/sah-lishi/backend-journey/internal/handlers"
	"github.com/sah-lishi/backend-journey/internal/metrics"
	"github.com/sah-lishi/backend-journey/internal/middleware"
	"github.com/sah-lishi/backend-journey/internal/repositories"
	"github.com/sah-lishi/backend-journey/internal/storage"
	"github.com/sah-lishi/backend-journey/internal/videos"
)

// Compile-time checks that the concrete implementations satisfy the
// interfaces their consumers declare.
var (
	_ auth.IdentityStore              = (*repositories.PostgresUserRepository)(nil)
	_ handlers.UserStore              = (*repositories.PostgresUserRepository)(nil)
	_ engagement.Store                = (*repositories.PostgresEngagementRepository)(nil)
	_ feed.Store                      = (*repositories.PostgresVideoRepository)(nil)
	_ videos.Store                    = (*repositories.PostgresVideoRepository)(nil)
	_ handlers.VideoLookup            = (*repositories.PostgresVideoRepository)(nil)
	_ repositories.CommentRepository  = (*repositories.PostgresCommentRepository)(nil)
	_ repositories.TweetRepository    = (*repositories.PostgresTweetRepository)(nil)
	_ repositories.PlaylistRepository = (*repositories.PostgresPlaylistRepository)(nil)
	_ videos.ContentStore             = (*storage.S3ContentStore)(nil)
	_ handlers.ContentStore           = (*storage.S3ContentStore)(nil)
	_ handlers.SessionManager         = (*auth.Manager)(nil)
	_ middleware.Authenticator        = (*auth.Manager)(nil)
	_ handlers.Engagement             = (*engagement.Engine)(nil)
	_ handlers.FeedLister             = (*feed.Service)(nil)
	_ handlers.VideoCatalog           = (*videos.Catalog)(nil)
	_ videos.Reaper                   = (*videos.AssetReaper)(nil)
	_ videos.Cache                    = (*videos.RedisCache)(nil)
	_ engagement.Recorder             = (*metrics.Metrics)(nil)
	_ videos.CacheRecorder            = (*metrics.Metrics)(nil)
)

// pinger is implemented by *pgxpool.Pool.
type pinger interface {
	Ping(ctx context.Context) error
}

// cleanupFunc releases what buildDependencies started, bounded by ctx.
type cleanupFunc func(ctx context.Context) error

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger, m *metrics.Metrics) (handlers.Dependencies, cleanupFunc, error) {
	if logger == nil {
		logger = slog.Default()
	}

	issuer, err := auth.NewTokenIssuer(auth.TokenConfig{
		Issuer:        cfg.Tokens.Issuer,
		AccessSecret:  []byte(cfg.Tokens.AccessSecret),
		AccessTTL:     cfg.Tokens.AccessTTL,
		RefreshSecret: []byte(cfg.Tokens.RefreshSecret),
		RefreshTTL:    cfg.Tokens.RefreshTTL,
	})
	if err != nil {
		return handlers.Dependencies{}, nil, fmt.Errorf("configure tokens: %w", err)
	}

	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return handlers.Dependencies{}, nil, fmt.Errorf("configure trusted proxies: %w", err)
	}

	content, err := storage.NewS3ContentStore(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, nil, fmt.Errorf("configure content store: %w", err)
	}

	health := map[string]handlers.HealthChecker{}
	if p, ok := pool.(pinger); ok {
		health["database"] = p
	}

	var (
		cache       videos.Cache = videos.NewMemoryCache(cfg.VideoCacheTTL)
		redisClient *redis.Client
	)
	if cfg.RedisURL != "" {
		redisClient, err = videos.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return handlers.Dependencies{}, nil, fmt.Errorf("connect redis: %w", err)
		}
		cache = videos.NewRedisCache(redisClient, cfg.VideoCacheTTL)
		health["cache"] = handlers.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
		logger.Info("video cache backed by redis")
	}

	var (
		engagementRecorder engagement.Recorder
		cacheRecorder      videos.CacheRecorder
	)
	if m != nil {
		engagementRecorder, cacheRecorder = m, m
	}

	hasher := auth.BcryptHasher{}
	userRepo := repositories.NewPostgresUserRepository(pool)
	videoRepo := repositories.NewPostgresVideoRepository(pool)
	sessions := auth.NewManager(userRepo, hasher, issuer)

	reaper := videos.NewAssetReaper(content, videos.ReaperConfig{
		QueueSize: cfg.ReaperQueueSize,
		Workers:   cfg.ReaperWorkers,
	}, logger.With("component", "asset_reaper"))

	catalog := videos.NewCatalog(videos.CatalogDeps{
		Store:    videoRepo,
		Content:  content,
		Prober:   videos.NewDurationProber(cfg.FFProbePath, cfg.FFProbeTimeout),
		Cache:    cache,
		Reaper:   reaper,
		Recorder: cacheRecorder,
	})

	deps := handlers.Dependencies{
		Users:          userRepo,
		Sessions:       sessions,
		Authenticator:  sessions,
		Hasher:         hasher,
		Content:        content,
		Engagement:     engagement.NewEngine(repositories.NewPostgresEngagementRepository(pool), engagementRecorder),
		Feed:           feed.NewService(videoRepo),
		Catalog:        catalog,
		Videos:         videoRepo,
		Comments:       repositories.NewPostgresCommentRepository(pool),
		Tweets:         repositories.NewPostgresTweetRepository(pool),
		Playlists:      repositories.NewPostgresPlaylistRepository(pool),
		Health:         health,
		AuthLimiter:    middleware.NewIPRateLimiter(cfg.LoginRate, time.Minute, cfg.LoginBurst, cfg.LoginTTL),
		TrustedProxies: proxies,
		Cookies: handlers.CookiePolicy{
			Secure:   cfg.Cookies.Secure,
			SameSite: handlers.ParseSameSite(cfg.Cookies.SameSite),
		},
		UploadDir: cfg.UploadDir,
	}

	cleanup := func(ctx context.Context) error {
		var errs []error
		if err := reaper.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("drain asset reaper: %w", err))
		}
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close redis: %w", err))
			}
		}
		return errors.Join(errs...)
	}

	return deps, cleanup, nil
}
