package redis

import (
	"context"
	"testing"
	"time"

	"github.com/pesaflow/ongeza-ui-api/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationCache_PutGet(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	cache := NewNotificationCache(client, time.Minute)
	ctx := context.Background()

	snap := ports.NotificationSnapshot{
		UnreadCount: 3,
		LatestID:    "notif-42",
		FetchedAt:   time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, cache.Put(ctx, "sess-1", snap))

	got, ok, err := cache.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, got.UnreadCount)
	assert.Equal(t, "notif-42", got.LatestID)
	assert.Equal(t, snap.FetchedAt, got.FetchedAt)
}

func TestNotificationCache_MissIsNotAnError(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	cache := NewNotificationCache(client, time.Minute)

	_, ok, err := cache.Get(context.Background(), "unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNotificationCache_Delete(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	cache := NewNotificationCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "sess-1", ports.NotificationSnapshot{UnreadCount: 1}))
	require.NoError(t, cache.Delete(ctx, "sess-1"))

	_, ok, err := cache.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, ok)
}
