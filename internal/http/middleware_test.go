package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/pesaflow/ongeza-ui-api/internal/domain/auth"
	apperrors "github.com/pesaflow/ongeza-ui-api/internal/errors"
)

func TestRequireSession_RejectsAnonymous(t *testing.T) {
	mw := RequireSession(&stubAuth{}, "ongeza_session")
	called := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/navigation", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestRequireSession_PlacesSessionInContext(t *testing.T) {
	mw := RequireSession(&stubAuth{}, "ongeza_session")

	var got *domainauth.Session
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetUserSessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/navigation", nil)
	req.AddCookie(&http.Cookie{Name: "ongeza_session", Value: "sess-7"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.NotNil(t, got)
	assert.Equal(t, "sess-7", got.ID)
}

func TestRequireSession_LapsedSessionGetsRecoverySignal(t *testing.T) {
	svc := &stubAuth{
		getSessionFunc: func(_ context.Context, sessionID string) (*domainauth.Session, error) {
			sess := testSession(sessionID)
			sess.User.PINSet = false
			return sess, apperrors.SessionExpired("session tokens lapsed")
		},
	}
	mw := RequireSession(svc, "ongeza_session")
	called := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/navigation", nil)
	req.AddCookie(&http.Cookie{Name: "ongeza_session", Value: "sess-7"})
	req.Header.Set("X-Current-Route", "/goals")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)

	var payload sessionExpiredPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "session_expired", payload.Error)
	assert.False(t, payload.PINSet, "client must offer Setup PIN, not Verify PIN")
	assert.Equal(t, "/goals", payload.From)
}

func TestOptionalSession_SkipsLapsedSession(t *testing.T) {
	svc := &stubAuth{
		getSessionFunc: func(_ context.Context, sessionID string) (*domainauth.Session, error) {
			return testSession(sessionID), apperrors.SessionExpired("session tokens lapsed")
		},
	}
	mw := OptionalSession(svc, "ongeza_session")

	var got *domainauth.Session
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetSessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: "ongeza_session", Value: "sess-7"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, got)
}

func TestOptionalSession_PlacesLiveSession(t *testing.T) {
	mw := OptionalSession(&stubAuth{}, "ongeza_session")

	var got *domainauth.Session
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetSessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: "ongeza_session", Value: "sess-7"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.NotNil(t, got)
	assert.Equal(t, "sess-7", got.ID)
}

func TestRequireSession_RejectsStaleCookie(t *testing.T) {
	svc := &stubAuth{
		getSessionFunc: func(_ context.Context, sessionID string) (*domainauth.Session, error) {
			return nil, apperrors.NotFound("session not found")
		},
	}
	mw := RequireSession(svc, "ongeza_session")
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/navigation", nil)
	req.AddCookie(&http.Cookie{Name: "ongeza_session", Value: "gone"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimit_BurstThenRejects(t *testing.T) {
	mw := RateLimit(0.0001, 2)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d within burst", i)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimit_IsolatesClients(t *testing.T) {
	mw := RateLimit(0.0001, 1)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	second := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	second.RemoteAddr = "10.0.0.2:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecover_TurnsPanicInto500(t *testing.T) {
	mw := Recover(testLogger())
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
