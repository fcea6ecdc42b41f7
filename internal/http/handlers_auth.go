package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	domainauth "github.com/pesaflow/ongeza-ui-api/internal/domain/auth"
	apperrors "github.com/pesaflow/ongeza-ui-api/internal/errors"
	"github.com/pesaflow/ongeza-ui-api/internal/ports"
	"github.com/pesaflow/ongeza-ui-api/internal/service"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// AuthAPI is the slice of the auth service the handlers depend on.
type AuthAPI interface {
	Login(ctx context.Context, creds ports.Credentials) (*service.LoginOutcome, error)
	VerifyTwoFA(ctx context.Context, challengeID, code string) (*domainauth.Session, error)
	UpdateTwoFASetupStatus(ctx context.Context, sessionID, phone string) (*domainauth.Session, error)
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
	VerifyPIN(ctx context.Context, sessionID, pin string) (*domainauth.Session, string, error)
	SetupPIN(ctx context.Context, sessionID, pin string) (*domainauth.Session, string, error)
	PrepareRecovery(ctx context.Context, sessionID, from string) (string, error)
	RefreshProfile(ctx context.Context, sessionID string) (*domainauth.Session, error)
	BeginSSOLogin(ctx context.Context, redirectURL string) (*service.BeginSSOResult, error)
	CompleteSSOLogin(ctx context.Context, input service.CompleteSSOInput) (*domainauth.Session, error)
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc     AuthAPI
	Cookies CookieConfig
	Logger  *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles credential sign-in.
// POST /api/auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if !decodeValid(w, r, &payload) {
		return
	}

	outcome, err := h.Svc.Login(r.Context(), ports.Credentials{
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	if outcome.TwoFARequired {
		WriteJSON(w, http.StatusOK, map[string]any{
			"two_fa_required": true,
			"challenge_id":    outcome.ChallengeID,
		})
		return
	}

	h.Cookies.SetSession(w, r, outcome.Session)
	writeSessionUser(w, outcome.Session)
}

type twoFAPayload struct {
	ChallengeID string `json:"challenge_id" validate:"required"`
	Code        string `json:"code" validate:"required"`
}

// VerifyTwoFA completes a login that required a second factor.
// POST /api/auth/2fa/verify.
func (h *AuthHandlers) VerifyTwoFA(w http.ResponseWriter, r *http.Request) {
	var payload twoFAPayload
	if !decodeValid(w, r, &payload) {
		return
	}

	session, err := h.Svc.VerifyTwoFA(r.Context(), payload.ChallengeID, payload.Code)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	h.Cookies.SetSession(w, r, session)
	writeSessionUser(w, session)
}

type twoFAPhonePayload struct {
	Phone string `json:"phone" validate:"required,e164"`
}

// RegisterTwoFAPhone records the member's 2FA phone number and clears the
// setup-required flag.
// POST /api/auth/2fa/phone.
func (h *AuthHandlers) RegisterTwoFAPhone(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	var payload twoFAPhonePayload
	if !decodeValid(w, r, &payload) {
		return
	}

	updated, err := h.Svc.UpdateTwoFASetupStatus(r.Context(), session.ID, payload.Phone)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	writeSessionUser(w, updated)
}

// Logout destroys the server-side session and expires the cookie.
// POST /api/auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.Cookies.Name); err == nil {
		if logoutErr := h.Svc.Logout(r.Context(), cookie.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", slog.Any("error", logoutErr))
		}
	}
	h.Cookies.ClearSession(w, r)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// Status returns the current authentication status. The route runs
// behind OptionalSession, so anonymous callers get a 200 rather than the
// 401 RequireSession would produce.
// GET /api/auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	if session == nil {
		// A cookie that did not resolve is dead weight; expire it so the
		// browser stops presenting it.
		if _, err := r.Cookie(h.Cookies.Name); err == nil {
			h.Cookies.ClearSession(w, r)
		}
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	writeSessionUser(w, session)
}

type pinPayload struct {
	PIN string `json:"pin" validate:"required,numeric,min=4,max=6"`
}

// VerifyPIN re-authenticates an expired session with the member's PIN and
// returns the route to resume at.
// POST /api/auth/pin/verify.
func (h *AuthHandlers) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	h.pinRecovery(w, r, h.Svc.VerifyPIN)
}

// SetupPIN sets a transaction PIN for the first time and completes the
// recovery flow the same way VerifyPIN does.
// POST /api/auth/pin/setup.
func (h *AuthHandlers) SetupPIN(w http.ResponseWriter, r *http.Request) {
	h.pinRecovery(w, r, h.Svc.SetupPIN)
}

func (h *AuthHandlers) pinRecovery(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, sessionID, pin string) (*domainauth.Session, string, error),
) {
	cookie, err := r.Cookie(h.Cookies.Name)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("no session to recover"),
		})
		return
	}

	var payload pinPayload
	if !decodeValid(w, r, &payload) {
		return
	}

	session, target, err := op(r.Context(), cookie.Value, payload.PIN)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	h.Cookies.SetSession(w, r, session)
	WriteJSON(w, http.StatusOK, map[string]any{
		"route": target,
		"user":  session.User,
	})
}

// decodeValid decodes the JSON body into dst and validates it, writing
// the error response itself when either step fails.
func decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !DecodeJSON(w, r, dst) {
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			WriteError(w, ErrorParams{
				Code:    http.StatusBadRequest,
				ErrCode: "invalid_payload",
				Err:     apperrors.ValidationField(fieldErrs[0].Field(), "failed validation"),
			})
			return false
		}
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_payload",
			Err:     err,
		})
		return false
	}
	return true
}

func writeSessionUser(w http.ResponseWriter, session *domainauth.Session) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          session.User,
		"expires_at":    session.ExpiresAt,
	})
}
