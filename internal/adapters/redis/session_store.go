package redis

// Package redis provides Redis-based adapters for the Ongeza UI API.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/pesaflow/ongeza-ui-api/internal/domain/auth"
	"github.com/pesaflow/ongeza-ui-api/internal/ports"
)

// SessionStore is a Redis-based session store for production use.
// The key TTL is sized to the session's RecoveryDeadline, not its token
// expiry: the record must outlive the access token so the stored refresh
// token is still available for PIN recovery after the tokens lapse.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
}

// NewSessionStore creates a new Redis-based session store.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: "ongeza:session:",
	}
}

// NewSessionStoreWithPrefix creates a Redis session store with a custom key prefix.
func NewSessionStoreWithPrefix(client redis.UniversalClient, prefix string) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: prefix,
	}
}

func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	if !sess.User.OnboardingStatus.Valid() {
		// The decode boundary rejects unknown statuses; refusing to
		// persist one keeps the gating table's closed-world assumption.
		return fmt.Errorf("refusing to save session with onboarding status %q", sess.User.OnboardingStatus)
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	key := s.prefix + sess.ID
	ttl := time.Until(sess.RecoveryDeadline())
	if ttl <= 0 {
		return errors.New("session recovery window has passed")
	}

	return s.client.Set(ctx, key, data, ttl).Err()
}

// Get returns the session record, including lapsed-but-recoverable ones.
// Records past their recovery deadline are destroyed on first touch.
func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}

	key := s.prefix + id
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Session{}, ErrNotFound
		}
		return domainauth.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess domainauth.Session
	if unmarshalErr := json.Unmarshal([]byte(data), &sess); unmarshalErr != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", unmarshalErr)
	}

	// Redis TTL should have evicted a dead record already; re-check so a
	// clock-skewed write cannot resurrect one.
	if time.Now().After(sess.RecoveryDeadline()) {
		if deleteErr := s.Delete(ctx, id); deleteErr != nil {
			return domainauth.Session{}, fmt.Errorf("cleanup dead session: %w", deleteErr)
		}
		return domainauth.Session{}, ErrNotFound
	}

	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil // Nothing to delete
	}

	key := s.prefix + id
	return s.client.Del(ctx, key).Err()
}

// ErrNotFound is returned when a session is not found.
var ErrNotFound = ports.ErrSessionNotFound
