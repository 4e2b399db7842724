package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/sah-lishi/backend-journey/internal/middleware"
	"github.com/sah-lishi/backend-journey/internal/models"
)

// CookiePolicy controls the attributes of the credential cookies.
type CookiePolicy struct {
	Secure   bool
	SameSite http.SameSite
}

// ParseSameSite maps a config value onto http.SameSite, defaulting to None
// so cross-site frontends can send credentials.
func ParseSameSite(value string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	default:
		return http.SameSiteNoneMode
	}
}

func (p CookiePolicy) sameSite() http.SameSite {
	if p.SameSite == 0 {
		return http.SameSiteNoneMode
	}
	return p.SameSite
}

func (p CookiePolicy) set(w http.ResponseWriter, name, value string, expires time.Time) {
	maxAge := int(time.Until(expires).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires.UTC(),
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.sameSite(),
	})
}

func (p CookiePolicy) clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.sameSite(),
	})
}

// SetSession writes both credential cookies.
func (p CookiePolicy) SetSession(w http.ResponseWriter, tokens models.SessionTokens) {
	p.set(w, middleware.AccessTokenCookie, tokens.AccessToken, tokens.AccessExpiresAt)
	p.set(w, middleware.RefreshTokenCookie, tokens.RefreshToken, tokens.RefreshExpiresAt)
}

// ClearSession expires both credential cookies.
func (p CookiePolicy) ClearSession(w http.ResponseWriter) {
	p.clear(w, middleware.AccessTokenCookie)
	p.clear(w, middleware.RefreshTokenCookie)
}
