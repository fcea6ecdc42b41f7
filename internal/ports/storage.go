package ports

import (
	"context"
	"errors"
	"time"

	domainauth "github.com/pesaflow/ongeza-ui-api/internal/domain/auth"
)

// ErrSessionNotFound is returned by SessionStore.Get when no record
// exists for the given ID.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists and retrieves user sessions. All session
// mutation flows through Save; feature code never writes session fields
// directly.
//
// A record lives until its RecoveryDeadline, not its token expiry:
// lapsed-but-recoverable sessions are returned by Get so the stored
// refresh token can drive PIN recovery.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// Badge identifies a dismissible reminder nudge in the shell.
type Badge string

const (
	// BadgePINSetup nudges users without a quick-access PIN.
	BadgePINSetup Badge = "pin_setup"
	// BadgeTwoFASetup nudges users who have not registered a 2FA phone.
	BadgeTwoFASetup Badge = "two_fa_setup"
)

// EphemeralStore holds short-lived, per-session UI state: the one-time
// post-recovery redirect hint and badge dismissal flags. Entries expire
// with the tab session; they are never migrated or backed up.
type EphemeralStore interface {
	// SetRedirectHint stores the path to return the user to after PIN
	// recovery, under the session's fixed hint key.
	SetRedirectHint(ctx context.Context, sessionID, path string) error

	// TakeRedirectHint returns and clears the stored hint. Returns ""
	// when no hint is set.
	TakeRedirectHint(ctx context.Context, sessionID string) (string, error)

	// DismissBadge suppresses a reminder badge for the rest of the
	// tab session.
	DismissBadge(ctx context.Context, sessionID string, badge Badge) error

	// BadgeDismissed reports whether a badge has been dismissed.
	BadgeDismissed(ctx context.Context, sessionID string, badge Badge) (bool, error)

	// ClearSession removes all ephemeral state for a session.
	ClearSession(ctx context.Context, sessionID string) error
}

// NotificationSnapshot is the extracted view of one poll of a user's
// notification feed.
type NotificationSnapshot struct {
	UnreadCount int       `json:"unread_count"`
	LatestID    string    `json:"latest_id"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// NotificationCache stores the most recent snapshot per session. Reads
// between polls are served from here; the platform is never hit on the
// request path.
type NotificationCache interface {
	Put(ctx context.Context, sessionID string, snap NotificationSnapshot) error

	// Get returns the cached snapshot, or ok=false when none is cached
	// or it has expired.
	Get(ctx context.Context, sessionID string) (snap NotificationSnapshot, ok bool, err error)

	Delete(ctx context.Context, sessionID string) error
}
