package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/pesaflow/ongeza-ui-api/internal/adapters/platform"
	domainauth "github.com/pesaflow/ongeza-ui-api/internal/domain/auth"
	"github.com/pesaflow/ongeza-ui-api/internal/mocks"
	"github.com/pesaflow/ongeza-ui-api/internal/ports"
)

// memoryNotificationCache is an in-memory ports.NotificationCache for tests.
type memoryNotificationCache struct {
	mu    sync.Mutex
	snaps map[string]ports.NotificationSnapshot
}

func newMemoryNotificationCache() *memoryNotificationCache {
	return &memoryNotificationCache{snaps: make(map[string]ports.NotificationSnapshot)}
}

func (c *memoryNotificationCache) Put(_ context.Context, sessionID string, snap ports.NotificationSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snaps[sessionID] = snap
	return nil
}

func (c *memoryNotificationCache) Get(_ context.Context, sessionID string) (ports.NotificationSnapshot, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.snaps[sessionID]
	return snap, ok, nil
}

func (c *memoryNotificationCache) Delete(_ context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.snaps, sessionID)
	return nil
}

func newNotificationFixture(t *testing.T) (*NotificationService, *mocks.MockPlatformAPI, *memoryNotificationCache) {
	t.Helper()
	ctrl := gomock.NewController(t)
	api := mocks.NewMockPlatformAPI(ctrl)
	cache := newMemoryNotificationCache()

	svc, err := NewNotificationService(NotificationServiceOptions{
		Platform:        api,
		Cache:           cache,
		UnreadCountExpr: "length(items[?!read])",
		LatestIDExpr:    "items[0].id",
	})
	require.NoError(t, err)
	return svc, api, cache
}

func trackedTestSession(id string) domainauth.Session {
	return domainauth.Session{
		ID:          id,
		AccessToken: "access-" + id,
		User:        saverProfile(),
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

func feedPayload() map[string]any {
	return map[string]any{
		"items": []any{
			map[string]any{"id": "notif-3", "read": false},
			map[string]any{"id": "notif-2", "read": false},
			map[string]any{"id": "notif-1", "read": true},
		},
	}
}

func TestNewNotificationService_RejectsBadExpression(t *testing.T) {
	_, err := NewNotificationService(NotificationServiceOptions{
		UnreadCountExpr: "items[?",
		LatestIDExpr:    "items[0].id",
	})
	require.Error(t, err)
}

func TestNotificationService_PollExtractsSnapshot(t *testing.T) {
	svc, api, cache := newNotificationFixture(t)
	svc.Track(trackedTestSession("sess-1"))

	api.EXPECT().
		FetchNotifications(gomock.Any(), "access-sess-1").
		Return(feedPayload(), nil)

	svc.pollAll(context.Background())

	snap, ok, err := cache.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, snap.UnreadCount)
	assert.Equal(t, "notif-3", snap.LatestID)
	assert.False(t, snap.FetchedAt.IsZero())
}

func TestNotificationService_ExpiredSessionIsDropped(t *testing.T) {
	svc, api, cache := newNotificationFixture(t)
	svc.Track(trackedTestSession("sess-1"))
	require.NoError(t, cache.Put(context.Background(), "sess-1", ports.NotificationSnapshot{UnreadCount: 9}))

	api.EXPECT().
		FetchNotifications(gomock.Any(), "access-sess-1").
		Return(nil, platform.ErrSessionExpired)

	svc.pollAll(context.Background())

	_, ok, err := cache.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.False(t, ok, "stale snapshot is dropped with the session")

	// Next tick makes no platform call for the dropped session.
	svc.pollAll(context.Background())
}

func TestNotificationService_ForgetStopsPolling(t *testing.T) {
	svc, _, _ := newNotificationFixture(t)
	svc.Track(trackedTestSession("sess-1"))
	svc.Forget("sess-1")

	// No FetchNotifications expectation: a call would fail the controller.
	svc.pollAll(context.Background())
}

func TestNotificationService_PollErrorKeepsSession(t *testing.T) {
	svc, api, cache := newNotificationFixture(t)
	svc.Track(trackedTestSession("sess-1"))

	api.EXPECT().
		FetchNotifications(gomock.Any(), "access-sess-1").
		Return(nil, platform.ErrBackendUnavailable)
	svc.pollAll(context.Background())

	// The session survives the outage and the next poll succeeds.
	api.EXPECT().
		FetchNotifications(gomock.Any(), "access-sess-1").
		Return(feedPayload(), nil)
	svc.pollAll(context.Background())

	snap, ok, err := cache.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, snap.UnreadCount)
}

func TestNotificationService_TrackReplacesToken(t *testing.T) {
	svc, api, _ := newNotificationFixture(t)
	svc.Track(trackedTestSession("sess-1"))

	// Re-track after recovery installed a fresh token pair.
	renewed := trackedTestSession("sess-1")
	renewed.AccessToken = "access-renewed"
	svc.Track(renewed)

	api.EXPECT().
		FetchNotifications(gomock.Any(), "access-renewed").
		Return(feedPayload(), nil)

	svc.pollAll(context.Background())
}

func TestNotificationService_RunStopsOnCancel(t *testing.T) {
	svc, _, _ := newNotificationFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop on cancel")
	}
}
