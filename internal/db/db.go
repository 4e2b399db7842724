// Package db opens the PostgreSQL connection pool.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool abstracts the pgx connection pool to make testing easier.
type Pool interface {
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
	Close()
}

// Options tunes pool sizing and the connect retry loop. Zero values take
// the defaults below.
type Options struct {
	MaxConns      int32
	MinConns      int32
	Attempts      int
	RetryInterval time.Duration
}

const (
	defaultMaxConns      = 10
	defaultMinConns      = 2
	defaultAttempts      = 5
	defaultRetryInterval = 2 * time.Second
)

// Connect parses databaseURL, sizes the pool and pings until the database
// answers or the attempts run out.
func Connect(ctx context.Context, databaseURL string, opts Options) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = orDefault(opts.MaxConns, defaultMaxConns)
	cfg.MinConns = orDefault(opts.MinConns, defaultMinConns)
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute
	cfg.HealthCheckPeriod = time.Minute

	attempts := orDefault(opts.Attempts, defaultAttempts)
	interval := orDefault(opts.RetryInterval, defaultRetryInterval)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		lastErr = err

		slog.Warn("database connection attempt failed", "attempt", attempt, "of", attempts, "error", err)
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect database: %w", ctx.Err())
		case <-time.After(interval):
		}
	}

	return nil, fmt.Errorf("database connection failed after %d attempts: %w", attempts, lastErr)
}

func orDefault[T int | int32 | time.Duration](v, def T) T {
	if v <= 0 {
		return def
	}
	return v
}
