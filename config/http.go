package config

import (
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// HTTPConfig contains HTTP server and session cookie configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the base URL of the application (e.g., "https://app.example.com").
	// Used for generating absolute URLs in SSO redirects.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// CookieName is the name of the session cookie.
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"ongeza_session"`

	// SessionTTL is the fallback session lifetime used when the platform
	// access token carries no expiry claim.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"30m"`

	// SessionRecoveryWindow is how long a session record outlives its
	// token pair so the stored refresh token can drive PIN recovery.
	SessionRecoveryWindow time.Duration `env:"SESSION_RECOVERY_WINDOW" envDefault:"24h"`

	// ReadHeaderTimeout bounds how long the server waits for request headers.
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"10s"`

	// ShutdownTimeout bounds graceful shutdown on SIGTERM.
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	h.BaseURL = strings.TrimRight(strings.TrimSpace(h.BaseURL), "/")
	h.CookieDomain = strings.TrimSpace(strings.TrimPrefix(h.CookieDomain, "."))

	// Refuse cookie domains that are bare public suffixes (e.g. "co.ke"):
	// browsers reject them and the cookie would silently never be set.
	if h.CookieDomain != "" {
		if suffix, _ := publicsuffix.PublicSuffix(h.CookieDomain); suffix == h.CookieDomain {
			h.CookieDomain = ""
		}
	}

	if h.CookieName == "" {
		h.CookieName = "ongeza_session"
	}
	if h.SessionTTL < time.Minute {
		h.SessionTTL = 30 * time.Minute
	}
	if h.SessionRecoveryWindow <= 0 {
		h.SessionRecoveryWindow = 24 * time.Hour
	}
	if h.ReadHeaderTimeout <= 0 {
		h.ReadHeaderTimeout = 10 * time.Second
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 15 * time.Second
	}
}
