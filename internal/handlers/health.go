package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/sah-lishi/backend-journey/internal/logging"
)

const healthTimeout = 2 * time.Second

// HealthHandler responds with service health information.
type HealthHandler struct {
	Checks map[string]HealthChecker
}

// Handle implements GET /healthz.
func (h HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	names := make([]string, 0, len(h.Checks))
	for name := range h.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	payload := map[string]string{"status": "ok"}
	for _, name := range names {
		if err := h.Checks[name].Ping(ctx); err != nil {
			logging.FromContext(r.Context()).Error("health check failed", "check", name, "error", err)
			payload[name] = "down"
			payload["status"] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		payload[name] = "up"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// PingFunc adapts a function to HealthChecker.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }
