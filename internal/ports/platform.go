package ports

import (
	"context"
	"time"

	domainauth "github.com/pesaflow/ongeza-ui-api/internal/domain/auth"
)

// Credentials carries a password login attempt.
type Credentials struct {
	Email    string
	Password string
}

// LoginResult is the outcome of a successful backend authentication
// step. When TwoFARequired is set, the token pair is absent and the
// caller must complete the challenge before a session can be created.
type LoginResult struct {
	AccessToken   string
	RefreshToken  string
	ExpiresAt     time.Time
	Profile       domainauth.AuthenticatedUser
	TwoFARequired bool
	ChallengeID   string
}

// PlatformAPI is the remote PesaFlow REST backend. All business data and
// authorization decisions are sourced from it; this service consumes the
// five profile contract fields and treats everything else as opaque.
//
// Any call made with an expired or revoked access token fails with an
// error matching platform.ErrSessionExpired.
type PlatformAPI interface {
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
	VerifyTwoFA(ctx context.Context, challengeID, code string) (*LoginResult, error)

	// RegisterTwoFAPhone registers a phone number for 2FA delivery.
	RegisterTwoFAPhone(ctx context.Context, accessToken, phone string) error

	// FetchProfile returns the current user profile for a valid token.
	FetchProfile(ctx context.Context, accessToken string) (domainauth.AuthenticatedUser, error)

	// SetupPIN creates a quick-access PIN for the user.
	SetupPIN(ctx context.Context, refreshToken, pin string) (*LoginResult, error)

	// VerifyPIN re-authenticates with the quick-access PIN, minting a
	// fresh token pair.
	VerifyPIN(ctx context.Context, refreshToken, pin string) (*LoginResult, error)

	// FetchNotifications returns the raw notifications payload for the
	// user. The shape is owned by the backend; callers extract what they
	// need with configured expressions.
	FetchNotifications(ctx context.Context, accessToken string) (map[string]any, error)
}

// AuditEvent records one auth lifecycle event in the UI API's own trail.
type AuditEvent struct {
	ID         string
	UserID     string
	Email      string
	Kind       AuditKind
	Path       string
	OccurredAt time.Time
	Detail     map[string]any
}

// AuditKind enumerates recorded auth lifecycle events.
type AuditKind string

const (
	AuditLogin          AuditKind = "login"
	AuditLoginFailed    AuditKind = "login_failed"
	AuditLogout         AuditKind = "logout"
	AuditSessionExpired AuditKind = "session_expired"
	AuditPINRecovery    AuditKind = "pin_recovery"
	AuditSSOLogin       AuditKind = "sso_login"
)

// AuditRepository persists auth lifecycle events.
type AuditRepository interface {
	Record(ctx context.Context, event AuditEvent) error
	ListRecent(ctx context.Context, limit int) ([]AuditEvent, error)
}
