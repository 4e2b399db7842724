package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sah-lishi/backend-journey/internal/apperr"
	"github.com/sah-lishi/backend-journey/internal/auth"
	"github.com/sah-lishi/backend-journey/internal/httpserver"
	"github.com/sah-lishi/backend-journey/internal/logging"
)

// Cookie names shared with the session handlers.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// Authenticator resolves an access token to an identity id.
type Authenticator interface {
	Authenticate(accessToken string) (string, error)
}

// AccessToken returns the token carried by the accessToken cookie or the
// Authorization bearer header, in that order.
func AccessToken(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && strings.TrimSpace(c.Value) != "" {
		return strings.TrimSpace(c.Value)
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

// RequireAuth rejects requests without a valid access token.
func RequireAuth(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := AccessToken(r)
			if token == "" {
				httpserver.Fail(r.Context(), w, apperr.Unauthorized("unauthorized request"))
				return
			}
			userID, err := a.Authenticate(token)
			if err != nil {
				httpserver.Fail(r.Context(), w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r, userID)))
		})
	}
}

// OptionalAuth attaches the identity when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := AccessToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			userID, err := a.Authenticate(token)
			if err != nil {
				logging.FromContext(r.Context()).Debug("ignoring invalid access token", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r, userID)))
		})
	}
}

func withIdentity(r *http.Request, userID string) context.Context {
	ctx := auth.WithUserID(r.Context(), userID)
	logger := logging.FromContext(ctx).With("userId", userID)
	return logging.WithLogger(ctx, logger)
}
