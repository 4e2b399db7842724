// Package apperr defines the error taxonomy shared by services and HTTP handlers.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

// Kinds, each mapped to one HTTP status by HTTPStatus.
const (
	KindInternal Kind = iota
	KindInvalidArgument
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
)

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// HTTPStatus returns the status code reported for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a kind, a client-safe message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an error of the given kind around a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// InvalidArgument reports malformed or missing caller input.
func InvalidArgument(message string) *Error { return New(KindInvalidArgument, message) }

// Unauthorized reports a missing or rejected credential.
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }

// Forbidden reports an authenticated caller acting on someone else's resource.
func Forbidden(message string) *Error { return New(KindForbidden, message) }

// NotFound reports a missing resource.
func NotFound(message string) *Error { return New(KindNotFound, message) }

// Conflict reports a uniqueness clash such as a taken username.
func Conflict(message string) *Error { return New(KindConflict, message) }

// RateLimited reports a caller over its request budget.
func RateLimited(message string) *Error { return New(KindRateLimited, message) }

// Internal wraps a collaborator failure. The cause is never shown to clients.
func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// KindOf reports the kind of err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the provided kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// PublicMessage returns the message that may be shown to clients.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return http.StatusText(http.StatusInternalServerError)
}

// DetailsOf returns field-level details attached to err, if any.
func DetailsOf(err error) []string {
	var e *Error
	if errors.As(err, &e) && len(e.Details) > 0 {
		return append([]string(nil), e.Details...)
	}
	return []string{}
}
