package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/sah-lishi/backend-journey/internal/apperr"
	"github.com/sah-lishi/backend-journey/internal/auth"
	"github.com/sah-lishi/backend-journey/internal/feed"
	"github.com/sah-lishi/backend-journey/internal/models"
	"github.com/sah-lishi/backend-journey/internal/repositories"
)

const maxJSONBody = 1 << 20

// decodeJSON reads a JSON object into dest. An empty body leaves dest untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	if r.Body == nil {
		return nil
	}
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := decoder.Decode(dest); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Wrap(apperr.KindInvalidArgument, "invalid request body", err)
	}
	return nil
}

// pathID returns the named path value when it is a well-formed id.
func pathID(r *http.Request, name, label string) (string, error) {
	id := strings.TrimSpace(r.PathValue(name))
	if !models.ValidID(id) {
		return "", apperr.InvalidArgument("invalid " + label + " id")
	}
	return id, nil
}

// requireUser returns the authenticated identity.
func requireUser(r *http.Request) (string, error) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return "", apperr.Unauthorized("unauthorized request")
	}
	return id, nil
}

func pageParams(r *http.Request) (int, int) {
	q := r.URL.Query()
	return feed.ParsePage(q.Get("page"), q.Get("limit"))
}

// storeError translates repository sentinels for thin handlers.
func storeError(err error, notFound, action string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, repositories.ErrConflict):
		return apperr.Wrap(apperr.KindConflict, "resource already exists", err)
	default:
		return apperr.Internal(action, err)
	}
}

func requiredText(value, field string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperr.InvalidArgument(field + " is required")
	}
	return value, nil
}
