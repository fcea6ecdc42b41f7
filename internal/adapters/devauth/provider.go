package devauth

// Package devauth provides a simple, config-driven AuthProvider for
// local development. It short-circuits the SSO flow by redirecting back
// to our own callback with locally generated state and nonce.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/pesaflow/ongeza-ui-api/internal/adapters/platform"
	"github.com/pesaflow/ongeza-ui-api/internal/ports"
)

// Config controls the dev auth provider behavior.
// All fields are required except Groups, which may be empty.
type Config struct {
	UserID          string
	Email           string
	Groups          []string
	SessionDuration time.Duration // default 8h when zero
}

// Provider implements ports.AuthProvider for local development.
// Exchange ignores the code and returns the configured identity.
type Provider struct {
	identity        ports.Identity
	sessionDuration time.Duration
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	dur := cfg.SessionDuration
	if dur == 0 {
		dur = 8 * time.Hour
	}
	expiresAt := time.Now().Add(dur)
	token, err := platform.TestToken(expiresAt)
	if err != nil {
		return nil, fmt.Errorf("dev auth: mint token: %w", err)
	}
	return &Provider{
		identity: ports.Identity{
			UserID:    cfg.UserID,
			FirstName: "Dev",
			LastName:  "Operator",
			Email:     cfg.Email,
			Groups:    append([]string(nil), cfg.Groups...),
			RawToken:  token,
			ExpiresAt: expiresAt.Unix(),
		},
		sessionDuration: dur,
	}, nil
}

// Begin returns a local callback URL and cryptographically secure state and nonce.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	// The standard handler expects GET /auth/sso/callback?code=...&state=...
	authURL := "/auth/sso/callback?code=dev&state=" + state
	return authURL, state, nonce, nil
}

// Exchange ignores the provided code/state/nonce (validation handled by
// the handler) and returns the dev identity.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (ports.Identity, error) {
	// Refresh expiry on each exchange for convenience
	if time.Until(time.Unix(p.identity.ExpiresAt, 0)) < 5*time.Minute {
		expiresAt := time.Now().Add(p.sessionDuration)
		token, err := platform.TestToken(expiresAt)
		if err != nil {
			return ports.Identity{}, fmt.Errorf("dev auth: mint token: %w", err)
		}
		p.identity.RawToken = token
		p.identity.ExpiresAt = expiresAt.Unix()
	}
	return p.identity, nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	bLen := (n*3 + 3) / 4
	b := make([]byte, bLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	for len(s) < n {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:n], nil
}
