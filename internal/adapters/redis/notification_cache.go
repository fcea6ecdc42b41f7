package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pesaflow/ongeza-ui-api/internal/ports"
)

// DefaultNotificationTTL bounds how long a stale snapshot can be served
// after the poller stops refreshing it.
const DefaultNotificationTTL = 5 * time.Minute

// NotificationCache stores the latest polled notification snapshot per
// session. A missing or expired entry is not an error; the shell renders
// without a badge count until the next poll lands.
type NotificationCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewNotificationCache creates a Redis-backed notification cache.
func NewNotificationCache(client redis.UniversalClient, ttl time.Duration) *NotificationCache {
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	return &NotificationCache{
		client: client,
		prefix: "ongeza:notifications:",
		ttl:    ttl,
	}
}

func (c *NotificationCache) Put(ctx context.Context, sessionID string, snap ports.NotificationSnapshot) error {
	if sessionID == "" {
		return errors.New("session ID cannot be empty")
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	return c.client.Set(ctx, c.prefix+sessionID, data, c.ttl).Err()
}

func (c *NotificationCache) Get(ctx context.Context, sessionID string) (ports.NotificationSnapshot, bool, error) {
	if sessionID == "" {
		return ports.NotificationSnapshot{}, false, nil
	}

	data, err := c.client.Get(ctx, c.prefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ports.NotificationSnapshot{}, false, nil
		}
		return ports.NotificationSnapshot{}, false, fmt.Errorf("redis get: %w", err)
	}

	var snap ports.NotificationSnapshot
	if unmarshalErr := json.Unmarshal([]byte(data), &snap); unmarshalErr != nil {
		return ports.NotificationSnapshot{}, false, fmt.Errorf("unmarshal snapshot: %w", unmarshalErr)
	}
	return snap, true, nil
}

func (c *NotificationCache) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return c.client.Del(ctx, c.prefix+sessionID).Err()
}
