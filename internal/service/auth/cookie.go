package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Dinesh751/hms-auth-service/internal/apperrors"
)

const (
	defaultCookieName = "refresh_token"
	defaultCookiePath = "/api/auth/v1"
)

type CookieConfig struct {
	// Cookie name and path, defaults applied if empty
	Name string
	Path string

	// Optional cookie domain
	Domain string

	// Secure flag, off for plain http deployments
	Secure bool

	// SameSite attribute: strict, lax or none. Strict if unset or invalid.
	SameSite string
}

// CookieTransport carries the refresh token in a hardened cookie.
// HttpOnly is always set, it is not configurable.
type CookieTransport struct {
	name     string
	path     string
	domain   string
	secure   bool
	sameSite http.SameSite
	maxAge   time.Duration
}

func NewCookieTransport(cfg CookieConfig, refreshTTL time.Duration) *CookieTransport {
	if cfg.Name == "" {
		cfg.Name = defaultCookieName
	}
	if cfg.Path == "" {
		cfg.Path = defaultCookiePath
	}

	return &CookieTransport{
		name:     cfg.Name,
		path:     cfg.Path,
		domain:   cfg.Domain,
		secure:   cfg.Secure,
		sameSite: parseSameSite(cfg.SameSite),
		maxAge:   refreshTTL,
	}
}

func (t *CookieTransport) Name() string {
	return t.name
}

// Write sets the refresh cookie with max age equal to the refresh TTL.
// The cookie is emitted twice: once through http.SetCookie and once as an
// explicitly built Set-Cookie header carrying the SameSite attribute, for
// transports that do not serialize SameSite natively. Both copies carry
// identical name, value, path and max age.
func (t *CookieTransport) Write(w http.ResponseWriter, refreshToken string) {
	maxAge := int(t.maxAge.Seconds())
	http.SetCookie(w, t.cookie(refreshToken, maxAge))
	w.Header().Add("Set-Cookie", t.headerString(refreshToken, maxAge))
}

// Clear overwrites the cookie with an empty value and max age zero, forcing
// immediate deletion on the client
func (t *CookieTransport) Clear(w http.ResponseWriter) {
	// http.Cookie serializes Max-Age=0 only for negative MaxAge
	http.SetCookie(w, t.cookie("", -1))
	w.Header().Add("Set-Cookie", t.headerString("", 0))
}

// Read returns the refresh token value from the first request cookie with
// the configured name. When duplicate names are present the first in source
// order wins; the order itself is not guaranteed.
func (t *CookieTransport) Read(r *http.Request) (string, error) {
	for _, cookie := range r.Cookies() {
		if cookie.Name == t.name && cookie.Value != "" {
			return cookie.Value, nil
		}
	}

	return "", apperrors.ErrRefreshTokenNotFound
}

func (t *CookieTransport) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     t.name,
		Value:    value,
		Path:     t.path,
		Domain:   t.domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: t.sameSite,
	}
}

// headerString builds the authoritative Set-Cookie header by hand
func (t *CookieTransport) headerString(value string, maxAge int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s=%s; Path=%s; Max-Age=%d; HttpOnly", t.name, value, t.path, maxAge)

	if t.secure {
		b.WriteString("; Secure")
	}
	if t.domain != "" {
		fmt.Fprintf(&b, "; Domain=%s", t.domain)
	}

	switch t.sameSite {
	case http.SameSiteLaxMode:
		b.WriteString("; SameSite=Lax")
	case http.SameSiteNoneMode:
		b.WriteString("; SameSite=None")
	default:
		b.WriteString("; SameSite=Strict")
	}

	return b.String()
}

func parseSameSite(value string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}
