package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pesaflow/ongeza-ui-api/internal/ports"
	"github.com/redis/go-redis/v9"
)

// redirectHintField is the fixed key under which the one-time
// post-recovery redirect target is stored.
const redirectHintField = "postRecoveryRedirect"

// DefaultEphemeralTTL approximates a browser tab session. Dismissal
// flags and redirect hints are not meant to survive longer.
const DefaultEphemeralTTL = 12 * time.Hour

// EphemeralStore keeps per-session transient UI state in Redis: the
// one-time redirect hint used by the session-expiry recovery flow and
// the reminder-badge dismissal flags.
type EphemeralStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewEphemeralStore creates an EphemeralStore with the default TTL.
func NewEphemeralStore(client redis.UniversalClient) *EphemeralStore {
	return &EphemeralStore{
		client: client,
		prefix: "ongeza:ephemeral:",
		ttl:    DefaultEphemeralTTL,
	}
}

// NewEphemeralStoreWithTTL creates an EphemeralStore with a custom TTL.
func NewEphemeralStoreWithTTL(client redis.UniversalClient, ttl time.Duration) *EphemeralStore {
	store := NewEphemeralStore(client)
	if ttl > 0 {
		store.ttl = ttl
	}
	return store
}

var _ ports.EphemeralStore = (*EphemeralStore)(nil)

func (s *EphemeralStore) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *EphemeralStore) SetRedirectHint(ctx context.Context, sessionID, path string) error {
	if sessionID == "" {
		return errors.New("session ID cannot be empty")
	}
	key := s.key(sessionID)
	if err := s.client.HSet(ctx, key, redirectHintField, path).Err(); err != nil {
		return fmt.Errorf("set redirect hint: %w", err)
	}
	return s.client.Expire(ctx, key, s.ttl).Err()
}

func (s *EphemeralStore) TakeRedirectHint(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", nil
	}
	key := s.key(sessionID)
	path, err := s.client.HGet(ctx, key, redirectHintField).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("get redirect hint: %w", err)
	}
	if delErr := s.client.HDel(ctx, key, redirectHintField).Err(); delErr != nil {
		return "", fmt.Errorf("clear redirect hint: %w", delErr)
	}
	return path, nil
}

func (s *EphemeralStore) DismissBadge(ctx context.Context, sessionID string, badge ports.Badge) error {
	if sessionID == "" {
		return errors.New("session ID cannot be empty")
	}
	key := s.key(sessionID)
	if err := s.client.HSet(ctx, key, badgeField(badge), "1").Err(); err != nil {
		return fmt.Errorf("dismiss badge: %w", err)
	}
	return s.client.Expire(ctx, key, s.ttl).Err()
}

func (s *EphemeralStore) BadgeDismissed(ctx context.Context, sessionID string, badge ports.Badge) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	dismissed, err := s.client.HGet(ctx, s.key(sessionID), badgeField(badge)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("get badge flag: %w", err)
	}
	return dismissed == "1", nil
}

func (s *EphemeralStore) ClearSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.client.Del(ctx, s.key(sessionID)).Err()
}

func badgeField(badge ports.Badge) string {
	return "badge:" + string(badge)
}
