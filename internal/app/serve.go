package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sah-lishi/backend-journey/internal/config"
	"github.com/sah-lishi/backend-journey/internal/db"
	"github.com/sah-lishi/backend-journey/internal/handlers"
	"github.com/sah-lishi/backend-journey/internal/httpserver"
	"github.com/sah-lishi/backend-journey/internal/logging"
	"github.com/sah-lishi/backend-journey/internal/metrics"
	"github.com/sah-lishi/backend-journey/internal/middleware"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	pool, err := db.Connect(ctx, cfg.DatabaseURL, db.Options{})
	if err != nil {
		return err
	}
	defer pool.Close()

	m := metrics.New(pool)
	deps, cleanup, err := buildDependencies(ctx, pool, cfg, logger, m)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps)
	mux.Handle("GET /metrics", m.Handler())

	handler := middleware.Chain(m.Middleware(mux),
		middleware.RequestLogger(logger),
		middleware.CORS(cfg.CORSOrigin),
	)

	srv := httpserver.New(cfg.AppPort, handler)

	logger.Info("starting http server", "port", cfg.AppPort, "env", cfg.Environment)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalCh)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()

	// In-flight requests may still enqueue deletions, so the server stops
	// before the reaper drains.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", "error", err)
		runErr = errors.Join(runErr, err)
	}
	if err := cleanup(shutdownCtx); err != nil {
		logger.Error("release dependencies", "error", err)
		runErr = errors.Join(runErr, err)
	}

	logger.Info("shutdown complete")
	return runErr
}
