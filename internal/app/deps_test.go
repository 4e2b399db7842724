package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sah-lishi/backend-journey/internal/config"
	"github.com/sah-lishi/backend-journey/internal/handlers"
	"github.com/sah-lishi/backend-journey/internal/logging"
	"github.com/sah-lishi/backend-journey/internal/metrics"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Close() {}

func testConfig() config.Config {
	return config.Config{
		Tokens: config.TokenConfig{
			Issuer:        "vidtube-test",
			AccessSecret:  "access-secret",
			AccessTTL:     time.Minute,
			RefreshSecret: "refresh-secret",
			RefreshTTL:    time.Hour,
		},
		VideoCacheTTL:  time.Minute,
		FFProbePath:    "ffprobe",
		FFProbeTimeout: time.Second,
		ObjectStore:    config.ObjectStoreConfig{Bucket: "test-bucket", Endpoint: "http://localhost:9000", Region: "us-east-1"},
		LoginRate:      10,
		LoginBurst:     5,
		LoginTTL:       time.Minute,
		ReaperWorkers:  1,
		UploadDir:      "",
	}
}

func build(t *testing.T, cfg config.Config) handlers.Dependencies {
	t.Helper()
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	deps, cleanup, err := buildDependencies(context.Background(), fakePool{}, cfg, logging.Discard(), metrics.New(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleanup == nil {
		t.Fatal("expected cleanup function")
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := cleanup(ctx); err != nil {
			t.Errorf("cleanup: %v", err)
		}
	})
	return deps
}

func TestBuildDependencies(t *testing.T) {
	deps := build(t, testConfig())

	checks := map[string]bool{
		"users":         deps.Users != nil,
		"sessions":      deps.Sessions != nil,
		"authenticator": deps.Authenticator != nil,
		"hasher":        deps.Hasher != nil,
		"content":       deps.Content != nil,
		"engagement":    deps.Engagement != nil,
		"feed":          deps.Feed != nil,
		"catalog":       deps.Catalog != nil,
		"videos":        deps.Videos != nil,
		"comments":      deps.Comments != nil,
		"tweets":        deps.Tweets != nil,
		"playlists":     deps.Playlists != nil,
		"limiter":       deps.AuthLimiter != nil,
	}
	for name, ok := range checks {
		if !ok {
			t.Fatalf("expected %s to be configured", name)
		}
	}
	if deps.Cookies.SameSite != http.SameSiteNoneMode {
		t.Fatalf("expected SameSite=None by default, got %v", deps.Cookies.SameSite)
	}
	if _, ok := deps.Health["cache"]; ok {
		t.Fatal("expected no cache health check without redis")
	}
}

func TestBuildDependenciesRejectsMissingSecrets(t *testing.T) {
	cfg := testConfig()
	cfg.Tokens.AccessSecret = ""

	if _, _, err := buildDependencies(context.Background(), fakePool{}, cfg, logging.Discard(), nil); err == nil {
		t.Fatal("expected an error without token secrets")
	}
}

func TestBuildDependenciesTrustedProxies(t *testing.T) {
	cfg := testConfig()
	cfg.TrustedProxies = "10.0.0.0/8, 192.0.2.10"

	deps := build(t, cfg)
	if len(deps.TrustedProxies) != 2 {
		t.Fatalf("expected two trusted proxies, got %v", deps.TrustedProxies)
	}

	cfg.TrustedProxies = "not-a-proxy"
	if _, _, err := buildDependencies(context.Background(), fakePool{}, cfg, logging.Discard(), nil); err == nil {
		t.Fatal("expected an error for an invalid trusted proxy")
	}
}

func TestBuildDependenciesWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisURL = "redis://" + mr.Addr()

	deps := build(t, cfg)
	if _, ok := deps.Health["cache"]; !ok {
		t.Fatal("expected a cache health check")
	}

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["cache"] != "up" {
		t.Fatalf("expected the cache to be up, got %v", body)
	}

	mr.Close()
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d after redis stops, got %d", http.StatusServiceUnavailable, rec.Code)
	}
}

func TestBuildDependenciesFailsOnUnreachableRedis(t *testing.T) {
	cfg := testConfig()
	cfg.RedisURL = "redis://127.0.0.1:1"
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	if _, _, err := buildDependencies(context.Background(), fakePool{}, cfg, logging.Discard(), nil); err == nil {
		t.Fatal("expected an error for an unreachable redis")
	}
}
