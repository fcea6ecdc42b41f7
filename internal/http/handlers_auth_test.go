package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/pesaflow/ongeza-ui-api/internal/domain/auth"
	apperrors "github.com/pesaflow/ongeza-ui-api/internal/errors"
	"github.com/pesaflow/ongeza-ui-api/internal/ports"
	"github.com/pesaflow/ongeza-ui-api/internal/service"
)

// stubAuth is a test double for the auth service. Unset funcs fall back
// to a signed-in saver.
type stubAuth struct {
	loginFunc           func(ctx context.Context, creds ports.Credentials) (*service.LoginOutcome, error)
	verifyTwoFAFunc     func(ctx context.Context, challengeID, code string) (*domainauth.Session, error)
	getSessionFunc      func(ctx context.Context, sessionID string) (*domainauth.Session, error)
	logoutFunc          func(ctx context.Context, sessionID string) error
	verifyPINFunc       func(ctx context.Context, sessionID, pin string) (*domainauth.Session, string, error)
	setupPINFunc        func(ctx context.Context, sessionID, pin string) (*domainauth.Session, string, error)
	prepareRecoveryFunc func(ctx context.Context, sessionID, from string) (string, error)
	refreshProfileFunc  func(ctx context.Context, sessionID string) (*domainauth.Session, error)
	updateTwoFAFunc     func(ctx context.Context, sessionID, phone string) (*domainauth.Session, error)
	beginSSOFunc        func(ctx context.Context, redirectURL string) (*service.BeginSSOResult, error)
	completeSSOFunc     func(ctx context.Context, input service.CompleteSSOInput) (*domainauth.Session, error)
}

func testSession(id string) *domainauth.Session {
	return &domainauth.Session{
		ID:           id,
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		User: domainauth.AuthenticatedUser{
			ID:               "user-1",
			FirstName:        "Amina",
			LastName:         "Odhiambo",
			Email:            "amina@example.com",
			Role:             domainauth.RoleSaver,
			OnboardingStatus: domainauth.OnboardingComplete,
			PINSet:           true,
		},
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func (m *stubAuth) Login(ctx context.Context, creds ports.Credentials) (*service.LoginOutcome, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, creds)
	}
	return &service.LoginOutcome{Session: testSession("sess-1")}, nil
}

func (m *stubAuth) VerifyTwoFA(ctx context.Context, challengeID, code string) (*domainauth.Session, error) {
	if m.verifyTwoFAFunc != nil {
		return m.verifyTwoFAFunc(ctx, challengeID, code)
	}
	return testSession("sess-1"), nil
}

func (m *stubAuth) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if m.getSessionFunc != nil {
		return m.getSessionFunc(ctx, sessionID)
	}
	return testSession(sessionID), nil
}

func (m *stubAuth) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFunc != nil {
		return m.logoutFunc(ctx, sessionID)
	}
	return nil
}

func (m *stubAuth) VerifyPIN(ctx context.Context, sessionID, pin string) (*domainauth.Session, string, error) {
	if m.verifyPINFunc != nil {
		return m.verifyPINFunc(ctx, sessionID, pin)
	}
	return testSession(sessionID), "/dashboard", nil
}

func (m *stubAuth) SetupPIN(ctx context.Context, sessionID, pin string) (*domainauth.Session, string, error) {
	if m.setupPINFunc != nil {
		return m.setupPINFunc(ctx, sessionID, pin)
	}
	return testSession(sessionID), "/dashboard", nil
}

func (m *stubAuth) PrepareRecovery(ctx context.Context, sessionID, from string) (string, error) {
	if m.prepareRecoveryFunc != nil {
		return m.prepareRecoveryFunc(ctx, sessionID, from)
	}
	return "/verify-pin", nil
}

func (m *stubAuth) RefreshProfile(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if m.refreshProfileFunc != nil {
		return m.refreshProfileFunc(ctx, sessionID)
	}
	return testSession(sessionID), nil
}

func (m *stubAuth) UpdateTwoFASetupStatus(ctx context.Context, sessionID, phone string) (*domainauth.Session, error) {
	if m.updateTwoFAFunc != nil {
		return m.updateTwoFAFunc(ctx, sessionID, phone)
	}
	return testSession(sessionID), nil
}

func (m *stubAuth) BeginSSOLogin(ctx context.Context, redirectURL string) (*service.BeginSSOResult, error) {
	if m.beginSSOFunc != nil {
		return m.beginSSOFunc(ctx, redirectURL)
	}
	return &service.BeginSSOResult{
		AuthURL: "https://idp.example.com/auth?state=test-state",
		State:   "test-state",
		Nonce:   "test-nonce",
	}, nil
}

func (m *stubAuth) CompleteSSOLogin(ctx context.Context, input service.CompleteSSOInput) (*domainauth.Session, error) {
	if m.completeSSOFunc != nil {
		return m.completeSSOFunc(ctx, input)
	}
	return testSession("sso-sess"), nil
}

func newAuthHandlers(svc AuthAPI) *AuthHandlers {
	return &AuthHandlers{Svc: svc, Cookies: CookieConfig{Name: "ongeza_session"}}
}

func sessionCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "ongeza_session" {
			return c
		}
	}
	return nil
}

func TestAuthHandlers_Login_Success(t *testing.T) {
	h := newAuthHandlers(&stubAuth{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"amina@example.com","password":"secret"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookieFrom(t, rec)
	require.NotNil(t, cookie)
	assert.Equal(t, "sess-1", cookie.Value)
	assert.True(t, cookie.HttpOnly)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["authenticated"])

	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "amina@example.com", user["email"])
}

func TestAuthHandlers_Login_TwoFARequired(t *testing.T) {
	h := newAuthHandlers(&stubAuth{
		loginFunc: func(_ context.Context, _ ports.Credentials) (*service.LoginOutcome, error) {
			return &service.LoginOutcome{TwoFARequired: true, ChallengeID: "chal-9"}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"amina@example.com","password":"secret"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, sessionCookieFrom(t, rec))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["two_fa_required"])
	assert.Equal(t, "chal-9", body["challenge_id"])
}

func TestAuthHandlers_Login_InvalidCredentials(t *testing.T) {
	h := newAuthHandlers(&stubAuth{
		loginFunc: func(_ context.Context, _ ports.Credentials) (*service.LoginOutcome, error) {
			return nil, apperrors.Unauthorized("email or password is incorrect")
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"amina@example.com","password":"wrong"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, sessionCookieFrom(t, rec))
}

func TestAuthHandlers_Login_RejectsMalformedPayload(t *testing.T) {
	h := newAuthHandlers(&stubAuth{})

	tests := []struct {
		name string
		body string
	}{
		{name: "missing email", body: `{"password":"secret"}`},
		{name: "not an email", body: `{"email":"nope","password":"secret"}`},
		{name: "unknown field", body: `{"email":"a@b.com","password":"x","extra":1}`},
		{name: "not json", body: `email=a@b.com`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.Login(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAuthHandlers_VerifyTwoFA_SetsSessionCookie(t *testing.T) {
	h := newAuthHandlers(&stubAuth{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/2fa/verify",
		strings.NewReader(`{"challenge_id":"chal-9","code":"123456"}`))
	rec := httptest.NewRecorder()
	h.VerifyTwoFA(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookieFrom(t, rec)
	require.NotNil(t, cookie)
	assert.Equal(t, "sess-1", cookie.Value)
}

func TestAuthHandlers_Logout_ClearsCookie(t *testing.T) {
	var loggedOut string
	h := newAuthHandlers(&stubAuth{
		logoutFunc: func(_ context.Context, sessionID string) error {
			loggedOut = sessionID
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "ongeza_session", Value: "sess-1"})
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sess-1", loggedOut)

	cookie := sessionCookieFrom(t, rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestAuthHandlers_Status_Anonymous(t *testing.T) {
	h := newAuthHandlers(&stubAuth{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	rec := httptest.NewRecorder()
	h.Status(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["authenticated"])
}

func TestAuthHandlers_Status_AuthenticatedViaOptionalSession(t *testing.T) {
	h := newAuthHandlers(&stubAuth{})
	handler := OptionalSession(h.Svc, h.Cookies.Name)(http.HandlerFunc(h.Status))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: "ongeza_session", Value: "sess-1"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["authenticated"])
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "amina@example.com", user["email"])
}

func TestAuthHandlers_Status_ClearsUnresolvableCookie(t *testing.T) {
	svc := &stubAuth{
		getSessionFunc: func(_ context.Context, sessionID string) (*domainauth.Session, error) {
			return nil, apperrors.Unauthorized("session not found")
		},
	}
	h := newAuthHandlers(svc)
	handler := OptionalSession(svc, h.Cookies.Name)(http.HandlerFunc(h.Status))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: "ongeza_session", Value: "gone"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["authenticated"])

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "ongeza_session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestAuthHandlers_VerifyPIN_ReturnsRecoveryRoute(t *testing.T) {
	h := newAuthHandlers(&stubAuth{
		verifyPINFunc: func(_ context.Context, sessionID, pin string) (*domainauth.Session, string, error) {
			assert.Equal(t, "sess-1", sessionID)
			assert.Equal(t, "1234", pin)
			return testSession(sessionID), "/goals", nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/pin/verify",
		strings.NewReader(`{"pin":"1234"}`))
	req.AddCookie(&http.Cookie{Name: "ongeza_session", Value: "sess-1"})
	rec := httptest.NewRecorder()
	h.VerifyPIN(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "/goals", body["route"])

	// Recovery re-mints tokens under the same ID; the cookie is refreshed.
	require.NotNil(t, sessionCookieFrom(t, rec))
}

func TestAuthHandlers_VerifyPIN_WithoutSession(t *testing.T) {
	h := newAuthHandlers(&stubAuth{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/pin/verify",
		strings.NewReader(`{"pin":"1234"}`))
	rec := httptest.NewRecorder()
	h.VerifyPIN(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandlers_VerifyPIN_IncorrectPIN(t *testing.T) {
	h := newAuthHandlers(&stubAuth{
		verifyPINFunc: func(_ context.Context, _, _ string) (*domainauth.Session, string, error) {
			return nil, "", apperrors.Unauthorized("PIN is incorrect")
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/pin/verify",
		strings.NewReader(`{"pin":"9999"}`))
	req.AddCookie(&http.Cookie{Name: "ongeza_session", Value: "sess-1"})
	rec := httptest.NewRecorder()
	h.VerifyPIN(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, sessionCookieFrom(t, rec))
}

func TestAuthHandlers_RegisterTwoFAPhone(t *testing.T) {
	h := newAuthHandlers(&stubAuth{
		updateTwoFAFunc: func(_ context.Context, sessionID, phone string) (*domainauth.Session, error) {
			assert.Equal(t, "sess-1", sessionID)
			assert.Equal(t, "+254712345678", phone)
			sess := testSession(sessionID)
			sess.User.TwoFASetupRequired = false
			return sess, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/2fa/phone",
		strings.NewReader(`{"phone":"+254712345678"}`))
	req = req.WithContext(SetSessionInContext(req.Context(), testSession("sess-1")))
	rec := httptest.NewRecorder()
	h.RegisterTwoFAPhone(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthHandlers_SSOLogin_RedirectsToProvider(t *testing.T) {
	h := newAuthHandlers(&stubAuth{})

	req := httptest.NewRequest(http.MethodGet, "/auth/sso/login?redirect_uri=/reports", nil)
	rec := httptest.NewRecorder()
	h.SSOLogin(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "idp.example.com")

	names := make(map[string]string)
	for _, c := range rec.Result().Cookies() {
		names[c.Name] = c.Value
	}
	assert.Equal(t, "test-state", names["oauth_state"])
	assert.Equal(t, "test-nonce", names["oauth_nonce"])
	assert.Equal(t, "/reports", names["post_login_redirect"])
}

func TestAuthHandlers_SSOCallback_CompletesLogin(t *testing.T) {
	h := newAuthHandlers(&stubAuth{
		completeSSOFunc: func(_ context.Context, input service.CompleteSSOInput) (*domainauth.Session, error) {
			assert.Equal(t, "code-1", input.Code)
			assert.Equal(t, "test-state", input.State)
			assert.Equal(t, "test-nonce", input.Nonce)
			return testSession("sso-sess"), nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/sso/callback?code=code-1&state=test-state", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "test-state"})
	req.AddCookie(&http.Cookie{Name: "oauth_nonce", Value: "test-nonce"})
	req.AddCookie(&http.Cookie{Name: "post_login_redirect", Value: "/reports"})
	rec := httptest.NewRecorder()
	h.SSOCallback(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/reports", rec.Header().Get("Location"))

	cookie := sessionCookieFrom(t, rec)
	require.NotNil(t, cookie)
	assert.Equal(t, "sso-sess", cookie.Value)
}

func TestAuthHandlers_SSOCallback_StateMismatch(t *testing.T) {
	h := newAuthHandlers(&stubAuth{})

	req := httptest.NewRequest(http.MethodGet, "/auth/sso/callback?code=code-1&state=evil", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "test-state"})
	rec := httptest.NewRecorder()
	h.SSOCallback(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, sessionCookieFrom(t, rec))
}
