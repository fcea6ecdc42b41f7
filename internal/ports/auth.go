package ports

// Package ports defines interfaces (hexagonal ports) for the UI API.
// Implementations live in internal/adapters and internal/data;
// orchestration in internal/service.

import (
	"context"

	domainauth "github.com/pesaflow/ongeza-ui-api/internal/domain/auth"
)

// BeginInput carries inputs for initiating an SSO auth flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the SSO code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// Identity represents the principal returned by the SSO IdP for platform
// operators. Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID    string
	FirstName string
	LastName  string
	Email     string
	Groups    []string
	RawToken  string // ID token, kept as the session bearer credential
	ExpiresAt int64  // unix seconds, absolute expiry from the IdP token
}

// AuthProvider initiates and completes an SSO flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an
	// opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce.
	Exchange(ctx context.Context, in ExchangeInput) (Identity, error)
}

// RoleMapper maps IdP groups to a platform role. ok is false when none
// of the groups grant access.
type RoleMapper interface {
	Map(groups []string) (role domainauth.Role, ok bool)
}
