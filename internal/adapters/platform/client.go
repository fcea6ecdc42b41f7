package platform

// Package platform is the authenticated HTTP client for the PesaFlow
// REST backend. Every call attaches the bearer token, runs through a
// circuit breaker, and maps 401-class responses to ErrSessionExpired so
// the HTTP layer can drive the session-expiry recovery flow.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/pesaflow/ongeza-ui-api/internal/domain/auth"
	"github.com/pesaflow/ongeza-ui-api/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
)

var (
	breakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ongeza_platform_breaker_state",
			Help: "Circuit breaker state for the platform backend (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ongeza_platform_request_duration_seconds",
			Help:    "Duration of platform backend requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "status"},
	)
)

func init() {
	prometheus.MustRegister(breakerState, requestDuration)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Config holds configuration for the platform client.
type Config struct {
	// BaseURL is the backend root, e.g. "https://api.pesaflow.example".
	BaseURL string

	// Timeout bounds each request. Zero means 15s.
	Timeout time.Duration

	// BreakerName labels the circuit breaker in metrics and logs.
	BreakerName string

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Client implements ports.PlatformAPI over HTTP JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	logger     *slog.Logger
	now        func() time.Time
}

var _ ports.PlatformAPI = (*Client)(nil)

// NewClient creates a platform backend client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("platform base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parse platform base URL: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	name := cfg.BreakerName
	if name == "" {
		name = "platform"
	}

	settings := gobreaker.Settings{
		Name:     name,
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			breakerState.WithLabelValues(name).Set(stateToFloat(to))
			logger.Warn("platform breaker state change",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		breaker:    gobreaker.NewCircuitBreaker[*http.Response](settings),
		logger:     logger,
		now:        time.Now,
	}, nil
}

// request groups the parameters for one backend call.
type request struct {
	method      string
	path        string
	bearerToken string
	body        any
}

// errServerError marks 5xx responses so the breaker counts them as
// failures; 4xx responses (including 401) leave the breaker closed
// because the backend itself is healthy.
var errServerError = errors.New("platform server error")

// do executes a request through the breaker. A 401 response is surfaced
// as ErrSessionExpired.
func (c *Client) do(ctx context.Context, req request, out any) error {
	start := c.now()
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, sendErr := c.send(ctx, req)
		if sendErr != nil {
			return nil, sendErr
		}
		if resp.StatusCode >= 500 {
			return resp, errServerError
		}
		return resp, nil
	})
	status := "error"
	if resp != nil {
		status = fmt.Sprintf("%d", resp.StatusCode)
	}
	requestDuration.WithLabelValues(req.path, status).Observe(c.now().Sub(start).Seconds())

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}
		if errors.Is(err, errServerError) && resp != nil {
			defer resp.Body.Close()
			return decodeAPIError(resp)
		}
		return fmt.Errorf("platform request %s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck // draining for connection reuse
		return ErrSessionExpired
	}
	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck // draining for connection reuse
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode platform response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, req request) (*http.Response, error) {
	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.bearerToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.bearerToken)
	}

	return c.httpClient.Do(httpReq)
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		apiErr.Code = payload.Error
		apiErr.Message = payload.Message
	}
	return apiErr
}

// profilePayload mirrors the backend's user profile JSON. Only the
// contract fields are decoded; everything else is opaque.
type profilePayload struct {
	ID                 string   `json:"id"`
	FirstName          string   `json:"first_name"`
	LastName           string   `json:"last_name"`
	Email              string   `json:"email"`
	Role               string   `json:"role"`
	OnboardingStatus   string   `json:"onboarding_status"`
	PINSet             bool     `json:"pin_set"`
	TwoFASetupRequired bool     `json:"two_fa_setup_required"`
	IsSolo             bool     `json:"is_solo"`
	Permissions        []string `json:"permissions"`
}

// toUser validates the closed enumerations. An unrecognized role or
// onboarding status is a hard decode error, never a pass-through.
func (p profilePayload) toUser() (domainauth.AuthenticatedUser, error) {
	role, err := domainauth.ParseRole(p.Role)
	if err != nil {
		return domainauth.AuthenticatedUser{}, fmt.Errorf("profile: %w", err)
	}
	status, err := domainauth.ParseOnboardingStatus(p.OnboardingStatus)
	if err != nil {
		return domainauth.AuthenticatedUser{}, fmt.Errorf("profile: %w", err)
	}
	return domainauth.AuthenticatedUser{
		ID:                 p.ID,
		FirstName:          p.FirstName,
		LastName:           p.LastName,
		Email:              p.Email,
		Role:               role,
		OnboardingStatus:   status,
		PINSet:             p.PINSet,
		TwoFASetupRequired: p.TwoFASetupRequired,
		IsSolo:             p.IsSolo,
		Permissions:        p.Permissions,
	}, nil
}

type authPayload struct {
	AccessToken   string          `json:"access_token"`
	RefreshToken  string          `json:"refresh_token"`
	TwoFARequired bool            `json:"two_fa_required"`
	ChallengeID   string          `json:"challenge_id"`
	User          *profilePayload `json:"user"`
}

func (c *Client) toLoginResult(payload authPayload) (*ports.LoginResult, error) {
	result := &ports.LoginResult{
		AccessToken:   payload.AccessToken,
		RefreshToken:  payload.RefreshToken,
		TwoFARequired: payload.TwoFARequired,
		ChallengeID:   payload.ChallengeID,
	}
	if payload.TwoFARequired {
		return result, nil
	}
	if payload.User == nil {
		return nil, errors.New("platform login response missing user profile")
	}
	user, err := payload.User.toUser()
	if err != nil {
		return nil, err
	}
	result.Profile = user
	result.ExpiresAt = tokenExpiry(payload.AccessToken, c.now())
	return result, nil
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, creds ports.Credentials) (*ports.LoginResult, error) {
	var payload authPayload
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/v1/auth/login",
		body: map[string]string{
			"email":    creds.Email,
			"password": creds.Password,
		},
	}, &payload)
	if err != nil {
		return nil, err
	}
	return c.toLoginResult(payload)
}

// VerifyTwoFA completes a pending 2FA challenge.
func (c *Client) VerifyTwoFA(ctx context.Context, challengeID, code string) (*ports.LoginResult, error) {
	var payload authPayload
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/v1/auth/2fa/verify",
		body: map[string]string{
			"challenge_id": challengeID,
			"code":         code,
		},
	}, &payload)
	if err != nil {
		return nil, err
	}
	return c.toLoginResult(payload)
}

// RegisterTwoFAPhone registers a phone number for 2FA delivery.
func (c *Client) RegisterTwoFAPhone(ctx context.Context, accessToken, phone string) error {
	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/v1/auth/2fa/phone",
		bearerToken: accessToken,
		body:        map[string]string{"phone": phone},
	}, nil)
}

// FetchProfile returns the current user profile.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (domainauth.AuthenticatedUser, error) {
	var payload profilePayload
	err := c.do(ctx, request{
		method:      http.MethodGet,
		path:        "/v1/users/me",
		bearerToken: accessToken,
	}, &payload)
	if err != nil {
		return domainauth.AuthenticatedUser{}, err
	}
	return payload.toUser()
}

// SetupPIN creates a quick-access PIN, minting a fresh token pair.
func (c *Client) SetupPIN(ctx context.Context, refreshToken, pin string) (*ports.LoginResult, error) {
	var payload authPayload
	err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/v1/auth/pin/setup",
		bearerToken: refreshToken,
		body:        map[string]string{"pin": pin},
	}, &payload)
	if err != nil {
		return nil, err
	}
	return c.toLoginResult(payload)
}

// VerifyPIN re-authenticates with the quick-access PIN.
func (c *Client) VerifyPIN(ctx context.Context, refreshToken, pin string) (*ports.LoginResult, error) {
	var payload authPayload
	err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/v1/auth/pin/verify",
		bearerToken: refreshToken,
		body:        map[string]string{"pin": pin},
	}, &payload)
	if err != nil {
		return nil, err
	}
	return c.toLoginResult(payload)
}

// FetchNotifications returns the raw notifications payload.
func (c *Client) FetchNotifications(ctx context.Context, accessToken string) (map[string]any, error) {
	var payload map[string]any
	err := c.do(ctx, request{
		method:      http.MethodGet,
		path:        "/v1/notifications",
		bearerToken: accessToken,
	}, &payload)
	if err != nil {
		return nil, err
	}
	return payload, nil
}
