package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pesaflow/ongeza-ui-api/internal/adapters/platform"
	domainaccess "github.com/pesaflow/ongeza-ui-api/internal/domain/access"
	domainauth "github.com/pesaflow/ongeza-ui-api/internal/domain/auth"
	apperrors "github.com/pesaflow/ongeza-ui-api/internal/errors"
	"github.com/pesaflow/ongeza-ui-api/internal/ports"
)

// SessionTracker is notified when sessions start and end, so background
// workers can follow the active session set. Implementations must be
// cheap and non-blocking.
type SessionTracker interface {
	Track(sess domainauth.Session)
	Forget(sessionID string)
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Platform  ports.PlatformAPI
	Sessions  ports.SessionStore
	Ephemeral ports.EphemeralStore
	Provider  ports.AuthProvider
	Roles     ports.RoleMapper
	Audit     ports.AuditRepository
	Tracker   SessionTracker
	Logger    *slog.Logger

	// SessionTTL is the fallback lifetime when the platform token carries
	// no expiry.
	SessionTTL time.Duration

	// RecoveryWindow is how long after the token pair expires the session
	// record stays around for PIN recovery. The stored refresh token must
	// outlive the access token or the recovery flow has nothing to
	// re-authenticate with.
	RecoveryWindow time.Duration

	// OperatorPermissions are granted to operators signed on through SSO.
	OperatorPermissions []string
}

// AuthService owns the session lifecycle. Every session mutation flows
// through one of its narrow methods; nothing else writes sessions.
type AuthService struct {
	platform  ports.PlatformAPI
	sessions  ports.SessionStore
	ephemeral ports.EphemeralStore
	provider  ports.AuthProvider
	roles     ports.RoleMapper
	audit     ports.AuditRepository
	tracker   SessionTracker
	logger    *slog.Logger

	sessionTTL     time.Duration
	recoveryWindow time.Duration
	operatorPerms  []string
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	window := opts.RecoveryWindow
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &AuthService{
		platform:       opts.Platform,
		sessions:       opts.Sessions,
		ephemeral:      opts.Ephemeral,
		provider:       opts.Provider,
		roles:          opts.Roles,
		audit:          opts.Audit,
		tracker:        opts.Tracker,
		logger:         logger,
		sessionTTL:     ttl,
		recoveryWindow: window,
		operatorPerms:  opts.OperatorPermissions,
	}
}

// LoginOutcome is the result of a credential login attempt. When
// TwoFARequired is set there is no session yet; the caller must complete
// the challenge via VerifyTwoFA.
type LoginOutcome struct {
	Session       *domainauth.Session
	TwoFARequired bool
	ChallengeID   string
}

// Login authenticates credentials against the platform and, unless a 2FA
// challenge intervenes, mints a session.
func (s *AuthService) Login(ctx context.Context, creds ports.Credentials) (*LoginOutcome, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, apperrors.Validation("email and password are required")
	}

	result, err := s.platform.Login(ctx, creds)
	if err != nil {
		if platform.IsInvalidCredentials(err) {
			s.recordAudit(ctx, ports.AuditEvent{
				Email: creds.Email,
				Kind:  ports.AuditLoginFailed,
			})
			return nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("platform login: %w", err)
	}

	if result.TwoFARequired {
		return &LoginOutcome{TwoFARequired: true, ChallengeID: result.ChallengeID}, nil
	}

	sess, err := s.createSession(ctx, result)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, ports.AuditEvent{
		UserID: sess.User.ID,
		Email:  sess.User.Email,
		Kind:   ports.AuditLogin,
	})
	return &LoginOutcome{Session: sess}, nil
}

// VerifyTwoFA completes a pending 2FA challenge and mints the session
// that Login withheld.
func (s *AuthService) VerifyTwoFA(ctx context.Context, challengeID, code string) (*domainauth.Session, error) {
	if challengeID == "" || code == "" {
		return nil, apperrors.Validation("challenge ID and code are required")
	}

	result, err := s.platform.VerifyTwoFA(ctx, challengeID, code)
	if err != nil {
		if platform.IsInvalidCredentials(err) {
			return nil, apperrors.Unauthorized("invalid verification code")
		}
		return nil, fmt.Errorf("verify 2fa: %w", err)
	}

	sess, err := s.createSession(ctx, result)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, ports.AuditEvent{
		UserID: sess.User.ID,
		Email:  sess.User.Email,
		Kind:   ports.AuditLogin,
		Detail: map[string]any{"two_fa": true},
	})
	return sess, nil
}

// GetSession retrieves a session by ID. A session whose token pair has
// lapsed but whose recovery window is still open is returned alongside a
// session-expired error, so callers can drive PIN recovery off the kept
// record; the record itself is destroyed only once the window closes.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, apperrors.Validation("session ID is required")
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return nil, apperrors.Unauthorized("session not found")
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	now := time.Now()
	if sess.Lapsed(now) {
		if !sess.Recoverable(now) {
			if deleteErr := s.destroySession(ctx, sessionID); deleteErr != nil {
				return nil, errors.Join(apperrors.SessionExpired("session expired"), deleteErr)
			}
			return nil, apperrors.SessionExpired("session expired")
		}
		return &sess, apperrors.SessionExpired("session tokens lapsed")
	}

	return &sess, nil
}

// Logout removes a session and all its ephemeral state.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil // nothing to log out
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err == nil {
		s.recordAudit(ctx, ports.AuditEvent{
			UserID: sess.User.ID,
			Email:  sess.User.Email,
			Kind:   ports.AuditLogout,
		})
	}

	return s.destroySession(ctx, sessionID)
}

// UpdateTwoFASetupStatus registers a 2FA phone with the platform and
// flips the session's setup-required flag. This is the only session field
// mutated outside a full profile replacement.
func (s *AuthService) UpdateTwoFASetupStatus(ctx context.Context, sessionID, phone string) (*domainauth.Session, error) {
	if phone == "" {
		return nil, apperrors.Validation("phone number is required")
	}

	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.platform.RegisterTwoFAPhone(ctx, sess.AccessToken, phone); err != nil {
		return nil, fmt.Errorf("register 2fa phone: %w", err)
	}

	sess.User.TwoFASetupRequired = false
	if err := s.sessions.Save(ctx, *sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// RefreshProfile re-fetches the platform profile and replaces the
// session's user wholesale.
func (s *AuthService) RefreshProfile(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	user, err := s.platform.FetchProfile(ctx, sess.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	sess.User = user
	if err := s.sessions.Save(ctx, *sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// PrepareRecovery stores the one-time redirect hint for a session whose
// platform tokens lapsed mid-use, and returns the recovery route the
// client should send the user to.
func (s *AuthService) PrepareRecovery(ctx context.Context, sessionID, from string) (string, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return "", apperrors.Unauthorized("no session to recover")
		}
		return "", fmt.Errorf("get session: %w", err)
	}

	if from != "" {
		if err := s.ephemeral.SetRedirectHint(ctx, sessionID, from); err != nil {
			return "", fmt.Errorf("store redirect hint: %w", err)
		}
	}

	s.recordAudit(ctx, ports.AuditEvent{
		UserID: sess.User.ID,
		Email:  sess.User.Email,
		Kind:   ports.AuditSessionExpired,
		Path:   from,
		Detail: map[string]any{"pin_set": sess.User.PINSet},
	})

	if sess.User.PINSet {
		return domainaccess.PathVerifyPIN, nil
	}
	return domainaccess.PathSetupPIN, nil
}

// VerifyPIN re-authenticates a lapsed session with the quick-access PIN,
// installing the fresh token pair, and returns the path to resume at.
// The redirect hint is consumed exactly once; absent a hint the user
// lands on the dashboard.
func (s *AuthService) VerifyPIN(ctx context.Context, sessionID, pin string) (*domainauth.Session, string, error) {
	if pin == "" {
		return nil, "", apperrors.Validation("PIN is required")
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return nil, "", apperrors.Unauthorized("no session to recover")
		}
		return nil, "", fmt.Errorf("get session: %w", err)
	}

	result, err := s.platform.VerifyPIN(ctx, sess.RefreshToken, pin)
	if err != nil {
		if platform.IsInvalidCredentials(err) {
			return nil, "", apperrors.Unauthorized("incorrect PIN")
		}
		return nil, "", fmt.Errorf("verify pin: %w", err)
	}

	updated, err := s.renewSession(ctx, sess.ID, result)
	if err != nil {
		return nil, "", err
	}

	target, err := s.takeRecoveryTarget(ctx, sess.ID)
	if err != nil {
		return nil, "", err
	}

	s.recordAudit(ctx, ports.AuditEvent{
		UserID: updated.User.ID,
		Email:  updated.User.Email,
		Kind:   ports.AuditPINRecovery,
		Path:   target,
	})
	return updated, target, nil
}

// SetupPIN creates a quick-access PIN for a user who never set one, then
// completes the same recovery handoff as VerifyPIN.
func (s *AuthService) SetupPIN(ctx context.Context, sessionID, pin string) (*domainauth.Session, string, error) {
	if pin == "" {
		return nil, "", apperrors.Validation("PIN is required")
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return nil, "", apperrors.Unauthorized("no session to recover")
		}
		return nil, "", fmt.Errorf("get session: %w", err)
	}

	result, err := s.platform.SetupPIN(ctx, sess.RefreshToken, pin)
	if err != nil {
		return nil, "", fmt.Errorf("setup pin: %w", err)
	}

	updated, err := s.renewSession(ctx, sess.ID, result)
	if err != nil {
		return nil, "", err
	}

	target, err := s.takeRecoveryTarget(ctx, sess.ID)
	if err != nil {
		return nil, "", err
	}

	s.recordAudit(ctx, ports.AuditEvent{
		UserID: updated.User.ID,
		Email:  updated.User.Email,
		Kind:   ports.AuditPINRecovery,
		Path:   target,
		Detail: map[string]any{"first_setup": true},
	})
	return updated, target, nil
}

// BeginSSOResult contains the provider handoff for an operator sign-on.
type BeginSSOResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginSSOLogin initiates the operator SSO flow.
func (s *AuthService) BeginSSOLogin(ctx context.Context, redirectURL string) (*BeginSSOResult, error) {
	if s.provider == nil {
		return nil, apperrors.NotFound("operator sign-on is not configured")
	}
	if redirectURL == "" {
		return nil, apperrors.Validation("redirect URL is required")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin sso flow: %w", err)
	}
	return &BeginSSOResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteSSOInput groups parameters for completing an operator sign-on.
type CompleteSSOInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteSSOLogin exchanges the IdP code, maps groups to the operator
// role, and mints an operator session. Identities whose groups grant no
// role are refused.
func (s *AuthService) CompleteSSOLogin(ctx context.Context, input CompleteSSOInput) (*domainauth.Session, error) {
	if s.provider == nil {
		return nil, apperrors.NotFound("operator sign-on is not configured")
	}
	if input.Code == "" || input.State == "" || input.Nonce == "" {
		return nil, apperrors.Validation("code, state, and nonce are required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	role, ok := s.roles.Map(identity.Groups)
	if !ok {
		s.recordAudit(ctx, ports.AuditEvent{
			UserID: identity.UserID,
			Email:  identity.Email,
			Kind:   ports.AuditLoginFailed,
			Detail: map[string]any{"sso": true},
		})
		return nil, apperrors.Unauthorized("identity is not a platform operator")
	}

	expiresAt := time.Unix(identity.ExpiresAt, 0)
	if identity.ExpiresAt <= 0 {
		expiresAt = time.Now().Add(s.sessionTTL)
	}

	// Operators carry no onboarding or PIN surface; the profile is
	// synthesized complete so the route gate never diverts them.
	sess := domainauth.Session{
		ID:          uuid.New().String(),
		AccessToken: identity.RawToken,
		User: domainauth.AuthenticatedUser{
			ID:               identity.UserID,
			FirstName:        identity.FirstName,
			LastName:         identity.LastName,
			Email:            identity.Email,
			Role:             role,
			OnboardingStatus: domainauth.OnboardingComplete,
			PINSet:           true,
			Permissions:      s.operatorPerms,
		},
		ExpiresAt: expiresAt,
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	if s.tracker != nil {
		s.tracker.Track(sess)
	}

	s.recordAudit(ctx, ports.AuditEvent{
		UserID: sess.User.ID,
		Email:  sess.User.Email,
		Kind:   ports.AuditSSOLogin,
	})
	return &sess, nil
}

// createSession builds and persists a session from a completed platform
// authentication.
func (s *AuthService) createSession(ctx context.Context, result *ports.LoginResult) (*domainauth.Session, error) {
	expiresAt := result.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(s.sessionTTL)
	}

	sess := domainauth.Session{
		ID:               uuid.New().String(),
		AccessToken:      result.AccessToken,
		RefreshToken:     result.RefreshToken,
		User:             result.Profile,
		ExpiresAt:        expiresAt,
		RecoverableUntil: expiresAt.Add(s.recoveryWindow),
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	if s.tracker != nil {
		s.tracker.Track(sess)
	}
	return &sess, nil
}

// renewSession installs a fresh token pair and profile onto an existing
// session, keeping its ID and cookie intact.
func (s *AuthService) renewSession(ctx context.Context, sessionID string, result *ports.LoginResult) (*domainauth.Session, error) {
	expiresAt := result.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(s.sessionTTL)
	}

	sess := domainauth.Session{
		ID:               sessionID,
		AccessToken:      result.AccessToken,
		RefreshToken:     result.RefreshToken,
		User:             result.Profile,
		ExpiresAt:        expiresAt,
		RecoverableUntil: expiresAt.Add(s.recoveryWindow),
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	if s.tracker != nil {
		s.tracker.Track(sess)
	}
	return &sess, nil
}

func (s *AuthService) takeRecoveryTarget(ctx context.Context, sessionID string) (string, error) {
	hint, err := s.ephemeral.TakeRedirectHint(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("take redirect hint: %w", err)
	}
	if hint == "" {
		return domainaccess.PathDashboard, nil
	}
	return hint, nil
}

func (s *AuthService) destroySession(ctx context.Context, sessionID string) error {
	if s.tracker != nil {
		s.tracker.Forget(sessionID)
	}
	if err := s.ephemeral.ClearSession(ctx, sessionID); err != nil {
		s.logger.Warn("clear ephemeral state", "session_id", sessionID, "error", err)
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// recordAudit fills in defaults and writes the event, logging rather than
// failing the caller when the trail is unavailable.
func (s *AuthService) recordAudit(ctx context.Context, event ports.AuditEvent) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, event); err != nil {
		s.logger.Warn("record audit event", "kind", string(event.Kind), "error", err)
	}
}
