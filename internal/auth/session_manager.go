package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/sah-lishi/backend-journey/internal/apperr"
	"github.com/sah-lishi/backend-journey/internal/logging"
	"github.com/sah-lishi/backend-journey/internal/models"
	"github.com/sah-lishi/backend-journey/internal/repositories"
)

var (
	// ErrMissingRefreshToken indicates no rotation token was carried by the request.
	ErrMissingRefreshToken = errors.New("refresh token missing")
	// ErrRefreshTokenReused indicates a verified rotation token that is no longer the
	// identity's current value.
	ErrRefreshTokenReused = errors.New("refresh token expired or used")
)

// IdentityStore persists identities and their single active rotation token.
type IdentityStore interface {
	FindByLogin(ctx context.Context, identifier string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	SetRefreshToken(ctx context.Context, userID, token string) error
	SwapRefreshToken(ctx context.Context, userID, current, next string) error
	ClearRefreshToken(ctx context.Context, userID string) error
}

// CredentialVerifier checks a submitted secret against a stored hash.
type CredentialVerifier interface {
	Compare(hash, secret string) error
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User   models.User          `json:"user"`
	Tokens models.SessionTokens `json:"tokens"`
}

// Manager runs login, logout and refresh-token rotation. Each identity holds
// at most one active rotation token.
type Manager struct {
	users    IdentityStore
	verifier CredentialVerifier
	issuer   *TokenIssuer
}

// NewManager constructs a Manager.
func NewManager(users IdentityStore, verifier CredentialVerifier, issuer *TokenIssuer) *Manager {
	if users == nil || verifier == nil || issuer == nil {
		panic("auth: identity store, verifier and issuer must not be nil")
	}
	return &Manager{users: users, verifier: verifier, issuer: issuer}
}

// Login verifies the secret for the identity matching identifier (username or
// email) and starts a new session, replacing any previous one.
func (m *Manager) Login(ctx context.Context, identifier, secret string) (LoginResult, error) {
	ctx, span := logging.StartSpan(ctx, "auth.login")
	defer span.End()

	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if identifier == "" {
		return LoginResult{}, apperr.InvalidArgument("username or email is required")
	}
	if secret == "" {
		return LoginResult{}, apperr.InvalidArgument("password is required")
	}

	user, err := m.users.FindByLogin(ctx, identifier)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return LoginResult{}, apperr.NotFound("user does not exist")
		}
		return LoginResult{}, apperr.Internal("unable to look up user", err)
	}

	if err := m.verifier.Compare(user.Password, secret); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logging.FromContext(ctx).Warn("login password mismatch", "userId", user.ID)
			return LoginResult{}, apperr.Wrap(apperr.KindUnauthorized, "invalid user credentials", err)
		}
		return LoginResult{}, apperr.Internal("unable to verify credentials", err)
	}

	tokens, err := m.issuer.Issue(user)
	if err != nil {
		return LoginResult{}, apperr.Internal("unable to generate access and refresh token", err)
	}

	if err := m.users.SetRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return LoginResult{}, apperr.Internal("unable to generate access and refresh token", err)
	}

	return LoginResult{User: user.Sanitized(), Tokens: tokens}, nil
}

// Logout clears the identity's rotation token. It is idempotent.
func (m *Manager) Logout(ctx context.Context, userID string) error {
	if userID == "" {
		return apperr.Unauthorized("unauthorized request")
	}
	if err := m.users.ClearRefreshToken(ctx, userID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return apperr.Internal("unable to log out", err)
	}
	return nil
}

// Refresh exchanges the carried rotation token for a new pair. A token that
// verifies but is not the identity's current value is treated as replayed:
// the session is revoked and the call fails.
func (m *Manager) Refresh(ctx context.Context, carried string) (models.SessionTokens, error) {
	ctx, span := logging.StartSpan(ctx, "auth.refresh")
	defer span.End()
	logger := logging.FromContext(ctx)

	carried = strings.TrimSpace(carried)
	if carried == "" {
		return models.SessionTokens{}, apperr.Wrap(apperr.KindUnauthorized, "unauthorized request", ErrMissingRefreshToken)
	}

	claims, err := m.issuer.ParseRefresh(carried)
	if err != nil {
		return models.SessionTokens{}, apperr.Wrap(apperr.KindUnauthorized, "invalid refresh token", err)
	}

	user, err := m.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.SessionTokens{}, apperr.Wrap(apperr.KindUnauthorized, "invalid refresh token", err)
		}
		return models.SessionTokens{}, apperr.Internal("unable to refresh session", err)
	}

	if user.RefreshToken == "" || user.RefreshToken != carried {
		logger.Warn("refresh token replay detected", "userId", user.ID, "hadSession", user.RefreshToken != "")
		m.revoke(ctx, user.ID)
		return models.SessionTokens{}, apperr.Wrap(apperr.KindUnauthorized, ErrRefreshTokenReused.Error(), ErrRefreshTokenReused)
	}

	tokens, err := m.issuer.Issue(user)
	if err != nil {
		return models.SessionTokens{}, apperr.Internal("unable to refresh session", err)
	}

	if err := m.users.SwapRefreshToken(ctx, user.ID, carried, tokens.RefreshToken); err != nil {
		if errors.Is(err, repositories.ErrStaleValue) || errors.Is(err, repositories.ErrNotFound) {
			// Another refresh consumed the same token first.
			logger.Warn("concurrent refresh token reuse", "userId", user.ID)
			m.revoke(ctx, user.ID)
			return models.SessionTokens{}, apperr.Wrap(apperr.KindUnauthorized, ErrRefreshTokenReused.Error(), ErrRefreshTokenReused)
		}
		return models.SessionTokens{}, apperr.Internal("unable to refresh session", err)
	}

	return tokens, nil
}

// Authenticate verifies an access token and returns the identity it names.
func (m *Manager) Authenticate(accessToken string) (string, error) {
	claims, err := m.issuer.ParseAccess(strings.TrimSpace(accessToken))
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnauthorized, "invalid access token", err)
	}
	return claims.UserID, nil
}

func (m *Manager) revoke(ctx context.Context, userID string) {
	if err := m.users.ClearRefreshToken(ctx, userID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		logging.FromContext(ctx).Error("revoke session after replay", "userId", userID, "error", err)
	}
}
