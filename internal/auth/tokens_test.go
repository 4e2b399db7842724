package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sah-lishi/backend-journey/internal/models"
)

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(TokenConfig{
		Issuer:        "vidtube-test",
		AccessSecret:  []byte("access-secret"),
		AccessTTL:     time.Minute,
		RefreshSecret: []byte("refresh-secret"),
		RefreshTTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	return issuer
}

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := newTestIssuer(t)
	user := models.User{ID: models.NewID(), Username: "alice", Email: "a@x.io"}

	tokens, err := issuer.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	access, err := issuer.ParseAccess(tokens.AccessToken)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if access.UserID != user.ID || access.Username != "alice" || access.Email != "a@x.io" {
		t.Fatalf("unexpected access claims %+v", access)
	}

	refresh, err := issuer.ParseRefresh(tokens.RefreshToken)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if refresh.UserID != user.ID || refresh.Username != "" {
		t.Fatalf("unexpected refresh claims %+v", refresh)
	}

	if !tokens.RefreshExpiresAt.After(tokens.AccessExpiresAt) {
		t.Fatal("refresh token must outlive the access token")
	}
}

func TestTokenIssuerKeepsAudiencesApart(t *testing.T) {
	issuer := newTestIssuer(t)
	tokens, err := issuer.Issue(models.User{ID: models.NewID()})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := issuer.ParseAccess(tokens.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("refresh token must not verify as access token, got %v", err)
	}
	if _, err := issuer.ParseRefresh(tokens.AccessToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("access token must not verify as refresh token, got %v", err)
	}
}

func TestTokenIssuerIssuesDistinctTokens(t *testing.T) {
	issuer := newTestIssuer(t)
	fixed := time.Now()
	issuer.now = func() time.Time { return fixed }
	user := models.User{ID: models.NewID()}

	first, err := issuer.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	second, err := issuer.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if first.RefreshToken == second.RefreshToken {
		t.Fatal("tokens minted at the same instant must differ")
	}
}

func TestTokenIssuerRejectsExpiredAndForeignTokens(t *testing.T) {
	issuer := newTestIssuer(t)
	user := models.User{ID: models.NewID()}

	past := time.Now().Add(-2 * time.Hour)
	issuer.now = func() time.Time { return past }
	stale, err := issuer.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	issuer.now = time.Now

	if _, err := issuer.ParseRefresh(stale.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected expired refresh token to fail, got %v", err)
	}

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    "vidtube-test",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := foreign.SignedString([]byte("someone-elses-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := issuer.ParseRefresh(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected foreign signature to fail, got %v", err)
	}

	if _, err := issuer.ParseAccess(""); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected empty token to fail, got %v", err)
	}
	if _, err := issuer.ParseAccess("not.a.jwt"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected malformed token to fail, got %v", err)
	}
}

func TestNewTokenIssuerValidation(t *testing.T) {
	if _, err := NewTokenIssuer(TokenConfig{AccessTTL: time.Minute, RefreshTTL: time.Hour}); err == nil {
		t.Fatal("expected error for missing secrets")
	}
	if _, err := NewTokenIssuer(TokenConfig{AccessSecret: []byte("a"), RefreshSecret: []byte("b")}); err == nil {
		t.Fatal("expected error for missing ttls")
	}
	if _, err := newTestIssuer(t).Issue(models.User{}); err == nil {
		t.Fatal("expected error for empty user id")
	}
}
