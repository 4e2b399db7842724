package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sah-lishi/backend-journey/internal/models"
)

// ErrTokenInvalid indicates a token failed signature, expiry or claim checks.
var ErrTokenInvalid = errors.New("token invalid")

const defaultLeeway = 30 * time.Second

// TokenConfig configures the TokenIssuer.
type TokenConfig struct {
	Issuer        string
	AccessSecret  []byte
	AccessTTL     time.Duration
	RefreshSecret []byte
	RefreshTTL    time.Duration
	Leeway        time.Duration
}

// Claims are carried by both access and refresh tokens. Username and Email
// are only populated on access tokens.
type Claims struct {
	UserID   string `json:"uid"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access and refresh tokens.
type TokenIssuer struct {
	config TokenConfig
	now    func() time.Time
}

// NewTokenIssuer validates cfg and returns an issuer.
func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("auth: token secrets are required")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("auth: token ttls must be positive")
	}
	if cfg.Leeway == 0 {
		cfg.Leeway = defaultLeeway
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("auth: invalid leeway")
	}
	return &TokenIssuer{config: cfg, now: time.Now}, nil
}

// Issue creates a fresh access and refresh token pair bound to user.
func (t *TokenIssuer) Issue(user models.User) (models.SessionTokens, error) {
	if user.ID == "" {
		return models.SessionTokens{}, errors.New("auth: user id must be provided")
	}

	now := t.now().UTC()
	accessExp := now.Add(t.config.AccessTTL)
	refreshExp := now.Add(t.config.RefreshTTL)

	access, err := t.sign(t.config.AccessSecret, Claims{
		UserID:           user.ID,
		Username:         user.Username,
		Email:            user.Email,
		RegisteredClaims: t.registered(user.ID, now, accessExp),
	})
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := t.sign(t.config.RefreshSecret, Claims{
		UserID:           user.ID,
		RegisteredClaims: t.registered(user.ID, now, refreshExp),
	})
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return models.SessionTokens{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// ParseAccess verifies an access token.
func (t *TokenIssuer) ParseAccess(token string) (*Claims, error) {
	return t.parse(token, t.config.AccessSecret)
}

// ParseRefresh verifies a refresh token.
func (t *TokenIssuer) ParseRefresh(token string) (*Claims, error) {
	return t.parse(token, t.config.RefreshSecret)
}

func (t *TokenIssuer) registered(subject string, now, expires time.Time) jwt.RegisteredClaims {
	// jti keeps tokens minted within the same second distinct.
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Issuer:    t.config.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
}

func (t *TokenIssuer) sign(secret []byte, claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (t *TokenIssuer) parse(token string, secret []byte) (*Claims, error) {
	if token == "" {
		return nil, ErrTokenInvalid
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(t.config.Leeway),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(t.now),
	}
	if t.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.config.Issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid || claims.UserID == "" || claims.Subject != claims.UserID {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
