package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/pesaflow/ongeza-ui-api/internal/domain/auth"
	"github.com/pesaflow/ongeza-ui-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider   = (*MockAuthProvider)(nil)
	_ ports.SessionStore   = (*MemorySessionStore)(nil)
	_ ports.EphemeralStore = (*MemoryEphemeralStore)(nil)
	_ ports.RoleMapper     = (OperatorRoleMapper{})
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (ports.Identity, error)

	// Deterministic values for predictable testing
	AuthURL         string
	StatePrefix     string
	NoncePrefix     string
	DefaultIdentity ports.Identity

	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultIdentity: ports.Identity{
			UserID:    "mock-operator-1",
			FirstName: "Mock",
			LastName:  "Operator",
			Email:     "mock.operator@example.com",
			Groups:    []string{"platform-operators"},
			RawToken:  "mock-id-token",
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.callCount++
	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}

	state := fmt.Sprintf("%s-%d", m.StatePrefix, m.callCount)
	nonce := fmt.Sprintf("%s-%d", m.NoncePrefix, m.callCount)
	return authURL, state, nonce, nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (ports.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	identity := m.DefaultIdentity
	identity.ExpiresAt = time.Now().Add(time.Hour).Unix()
	return identity, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session

	SaveErr error
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	if time.Now().After(sess.RecoveryDeadline()) {
		return errors.New("session recovery window has passed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

// Get mirrors the production store: lapsed-but-recoverable records are
// returned; records past their recovery deadline are destroyed on first
// touch, the way the Redis TTL would have evicted them.
func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	if time.Now().After(sess.RecoveryDeadline()) {
		delete(m.sessions, id)
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// MemoryEphemeralStore is an in-memory ephemeral store for unit tests.
type MemoryEphemeralStore struct {
	mu        sync.Mutex
	hints     map[string]string
	dismissed map[string]map[ports.Badge]bool
}

// NewMemoryEphemeralStore creates a new in-memory ephemeral store.
func NewMemoryEphemeralStore() *MemoryEphemeralStore {
	return &MemoryEphemeralStore{
		hints:     make(map[string]string),
		dismissed: make(map[string]map[ports.Badge]bool),
	}
}

func (m *MemoryEphemeralStore) SetRedirectHint(_ context.Context, sessionID, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hints[sessionID] = path
	return nil
}

func (m *MemoryEphemeralStore) TakeRedirectHint(_ context.Context, sessionID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hint := m.hints[sessionID]
	delete(m.hints, sessionID)
	return hint, nil
}

func (m *MemoryEphemeralStore) DismissBadge(_ context.Context, sessionID string, badge ports.Badge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dismissed[sessionID] == nil {
		m.dismissed[sessionID] = make(map[ports.Badge]bool)
	}
	m.dismissed[sessionID][badge] = true
	return nil
}

func (m *MemoryEphemeralStore) BadgeDismissed(_ context.Context, sessionID string, badge ports.Badge) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dismissed[sessionID][badge], nil
}

func (m *MemoryEphemeralStore) ClearSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.hints, sessionID)
	delete(m.dismissed, sessionID)
	return nil
}

// ErrNotFound is returned by mocks when an entity is not present. The
// session store uses the ports sentinel so services can match on it.
var ErrNotFound = ports.ErrSessionNotFound

// OperatorRoleMapper maps groups by simple string membership.
type OperatorRoleMapper struct {
	OperatorGroup string
}

func (m OperatorRoleMapper) Map(groups []string) (domainauth.Role, bool) {
	for _, g := range groups {
		if m.OperatorGroup != "" && g == m.OperatorGroup {
			return domainauth.RolePlatformAdmin, true
		}
	}
	return "", false
}
