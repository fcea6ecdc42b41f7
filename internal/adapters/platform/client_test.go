package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainauth "github.com/pesaflow/ongeza-ui-api/internal/domain/auth"
	"github.com/pesaflow/ongeza-ui-api/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL})
	require.NoError(t, err)
	return client, server
}

func profileJSON() map[string]any {
	return map[string]any{
		"id":                    "user-1",
		"first_name":            "Baraka",
		"last_name":             "Mwangi",
		"email":                 "baraka@example.com",
		"role":                  "SAVER",
		"onboarding_status":     "ONBOARDED",
		"pin_set":               true,
		"two_fa_setup_required": false,
		"is_solo":               false,
		"permissions":           []string{"VIEW_REPORTS"},
	}
}

func TestClient_LoginSuccess(t *testing.T) {
	exp := time.Now().Add(45 * time.Minute)
	token, err := TestToken(exp)
	require.NoError(t, err)

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "baraka@example.com", body["email"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"access_token":  token,
			"refresh_token": "refresh-1",
			"user":          profileJSON(),
		})
	})

	result, err := client.Login(context.Background(), ports.Credentials{
		Email:    "baraka@example.com",
		Password: "hunter2",
	})
	require.NoError(t, err)

	assert.Equal(t, token, result.AccessToken)
	assert.Equal(t, "refresh-1", result.RefreshToken)
	assert.False(t, result.TwoFARequired)
	assert.Equal(t, domainauth.RoleSaver, result.Profile.Role)
	assert.WithinDuration(t, exp, result.ExpiresAt, 2*time.Second)
}

func TestClient_LoginTwoFARequired(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"two_fa_required": true,
			"challenge_id":    "chal-9",
		})
	})

	result, err := client.Login(context.Background(), ports.Credentials{Email: "a@b.c", Password: "x"})
	require.NoError(t, err)
	assert.True(t, result.TwoFARequired)
	assert.Equal(t, "chal-9", result.ChallengeID)
	assert.Empty(t, result.AccessToken)
}

func TestClient_LoginInvalidCredentials(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
			"error":   "invalid_credentials",
			"message": "wrong email or password",
		})
	})

	_, err := client.Login(context.Background(), ports.Credentials{Email: "a@b.c", Password: "bad"})
	require.Error(t, err)
	assert.True(t, IsInvalidCredentials(err))
}

func TestClient_UnauthorizedMapsToSessionExpired(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer stale-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.FetchProfile(context.Background(), "stale-token")
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, err = client.FetchNotifications(context.Background(), "stale-token")
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestClient_ProfileRejectsUnknownStatus(t *testing.T) {
	// The closed enumeration is enforced at the decode boundary: an
	// unrecognized backend status must surface as an error rather than
	// flow into the gating table.
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		payload := profileJSON()
		payload["onboarding_status"] = "SOMETHING_NEW"
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload) //nolint:errcheck
	})

	_, err := client.FetchProfile(context.Background(), "token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown onboarding status")
}

func TestClient_VerifyPINMintsFreshTokens(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/auth/pin/verify", r.URL.Path)
		assert.Equal(t, "Bearer refresh-1", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"access_token":  "new-access",
			"refresh_token": "new-refresh",
			"user":          profileJSON(),
		})
	})

	result, err := client.VerifyPIN(context.Background(), "refresh-1", "1234")
	require.NoError(t, err)
	assert.Equal(t, "new-access", result.AccessToken)
	assert.Equal(t, "new-refresh", result.RefreshToken)
}

func TestClient_RegisterTwoFAPhone(t *testing.T) {
	var gotPhone string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotPhone = body["phone"]
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.RegisterTwoFAPhone(context.Background(), "token", "+254700000001")
	require.NoError(t, err)
	assert.Equal(t, "+254700000001", gotPhone)
}

func TestClient_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		//nolint:errcheck // failures are the point here
		client.FetchProfile(ctx, "token")
	}

	_, err := client.FetchProfile(ctx, "token")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		_, err := client.FetchProfile(ctx, "token")
		assert.ErrorIs(t, err, ErrSessionExpired)
	}
}

func TestTokenExpiry_Fallback(t *testing.T) {
	now := time.Now()

	assert.WithinDuration(t, now.Add(defaultSessionTTL), tokenExpiry("", now), time.Second)
	assert.WithinDuration(t, now.Add(defaultSessionTTL), tokenExpiry("not-a-jwt", now), time.Second)

	past, err := TestToken(now.Add(-time.Hour))
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(defaultSessionTTL), tokenExpiry(past, now), time.Second)
}
