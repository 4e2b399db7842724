package httpserver

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sah-lishi/backend-journey/internal/apperr"
	"github.com/sah-lishi/backend-journey/internal/logging"
)

// Envelope wraps every successful response body.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// ErrorEnvelope wraps every failed response body.
type ErrorEnvelope struct {
	StatusCode int      `json:"statusCode"`
	Success    bool     `json:"success"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
}

// Respond writes data inside a success envelope.
func Respond(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	writeJSON(ctx, w, status, Envelope{StatusCode: status, Data: data, Message: message, Success: true})
}

// Fail maps err onto its status and writes an error envelope. Causes of
// internal errors are logged, never sent.
func Fail(ctx context.Context, w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()

	logger := logging.FromContext(ctx)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request returned client error", "status", status, "kind", kind.String(), "error", err)
	}

	writeJSON(ctx, w, status, ErrorEnvelope{
		StatusCode: status,
		Success:    false,
		Message:    apperr.PublicMessage(err),
		Errors:     apperr.DetailsOf(err),
	})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
	}
}
