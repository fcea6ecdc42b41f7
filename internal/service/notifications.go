package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/pesaflow/ongeza-ui-api/internal/adapters/platform"
	domainauth "github.com/pesaflow/ongeza-ui-api/internal/domain/auth"
	"github.com/pesaflow/ongeza-ui-api/internal/ports"
)

var (
	notifyPollDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ongeza_notification_poll_duration_seconds",
		Help:    "Duration of one notification poll across all tracked sessions.",
		Buckets: prometheus.DefBuckets,
	})
	notifyActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ongeza_notification_active_sessions",
		Help: "Number of sessions the notification poller is tracking.",
	})
	notifyPollErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ongeza_notification_poll_errors_total",
		Help: "Total notification poll failures, excluding expired sessions.",
	})
)

func init() {
	prometheus.MustRegister(notifyPollDuration, notifyActiveSessions, notifyPollErrors)
}

// NotificationServiceOptions groups dependencies for NotificationService.
type NotificationServiceOptions struct {
	Platform ports.PlatformAPI
	Cache    ports.NotificationCache
	Logger   *slog.Logger

	// Interval is the poll cadence. Defaults to one minute.
	Interval time.Duration

	// Concurrency caps simultaneous platform fetches per tick.
	Concurrency int

	// UnreadCountExpr and LatestIDExpr are JMESPath expressions applied
	// to the raw notifications payload.
	UnreadCountExpr string
	LatestIDExpr    string
}

// trackedSession is one session the poller follows. cancel aborts the
// in-flight fetch when a newer one starts; generation orders writes so a
// slow response never clobbers a newer snapshot.
type trackedSession struct {
	accessToken string
	cancel      context.CancelFunc
	generation  uint64
}

// NotificationService polls the platform notification feed for every
// active session on a fixed cadence and caches an extracted snapshot.
// The request path only ever reads the cache.
type NotificationService struct {
	platform ports.PlatformAPI
	cache    ports.NotificationCache
	logger   *slog.Logger

	interval    time.Duration
	concurrency int

	unreadExpr string
	latestExpr string

	mu       sync.Mutex
	sessions map[string]*trackedSession
}

// NewNotificationService constructs the poller, compiling the extraction
// expressions up front so a bad expression fails at startup.
func NewNotificationService(opts NotificationServiceOptions) (*NotificationService, error) {
	if _, err := jmespath.Compile(opts.UnreadCountExpr); err != nil {
		return nil, fmt.Errorf("compile unread count expression: %w", err)
	}
	if _, err := jmespath.Compile(opts.LatestIDExpr); err != nil {
		return nil, fmt.Errorf("compile latest ID expression: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 8
	}

	return &NotificationService{
		platform:    opts.Platform,
		cache:       opts.Cache,
		logger:      logger,
		interval:    interval,
		concurrency: concurrency,
		unreadExpr:  opts.UnreadCountExpr,
		latestExpr:  opts.LatestIDExpr,
		sessions:    make(map[string]*trackedSession),
	}, nil
}

// Track registers a session for polling. Implements SessionTracker.
func (s *NotificationService) Track(sess domainauth.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sessions[sess.ID]; ok && existing.cancel != nil {
		existing.cancel()
	}
	s.sessions[sess.ID] = &trackedSession{accessToken: sess.AccessToken}
	notifyActiveSessions.Set(float64(len(s.sessions)))
}

// Forget stops polling a session. Implements SessionTracker.
func (s *NotificationService) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sessions[sessionID]; ok {
		if existing.cancel != nil {
			existing.cancel()
		}
		delete(s.sessions, sessionID)
	}
	notifyActiveSessions.Set(float64(len(s.sessions)))
}

// Snapshot returns the cached view for a session, if any.
func (s *NotificationService) Snapshot(ctx context.Context, sessionID string) (ports.NotificationSnapshot, bool, error) {
	return s.cache.Get(ctx, sessionID)
}

// Run polls on the configured cadence until ctx is cancelled.
func (s *NotificationService) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("notification poller started", "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("notification poller stopped")
			return ctx.Err()
		case <-ticker.C:
			s.pollAll(ctx)
		}
	}
}

// pollAll fetches every tracked session's feed, bounded by the
// concurrency cap. Failures are per-session; one bad feed never stalls
// the rest.
func (s *NotificationService) pollAll(ctx context.Context) {
	start := time.Now()
	defer func() { notifyPollDuration.Observe(time.Since(start).Seconds()) }()

	s.mu.Lock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			s.pollSession(ctx, id)
			return nil
		})
	}
	_ = g.Wait()
}

// pollSession fetches one session's feed. A fetch still in flight from
// the previous tick is cancelled first; only the newest fetch may write
// its snapshot.
func (s *NotificationService) pollSession(ctx context.Context, sessionID string) {
	s.mu.Lock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return
	}
	if entry.cancel != nil {
		entry.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	entry.cancel = cancel
	entry.generation++
	generation := entry.generation
	token := entry.accessToken
	s.mu.Unlock()

	defer cancel()

	payload, err := s.platform.FetchNotifications(fetchCtx, token)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			// Superseded by a newer fetch or shutdown.
		case errors.Is(err, platform.ErrSessionExpired):
			s.logger.Info("session tokens lapsed, dropping from poller", "session_id", sessionID)
			s.Forget(sessionID)
			if cacheErr := s.cache.Delete(context.WithoutCancel(ctx), sessionID); cacheErr != nil {
				s.logger.Warn("drop stale snapshot", "session_id", sessionID, "error", cacheErr)
			}
		default:
			notifyPollErrors.Inc()
			s.logger.Warn("notification poll failed", "session_id", sessionID, "error", err)
		}
		return
	}

	snap, err := s.extract(payload)
	if err != nil {
		notifyPollErrors.Inc()
		s.logger.Warn("notification extraction failed", "session_id", sessionID, "error", err)
		return
	}

	s.mu.Lock()
	current, ok := s.sessions[sessionID]
	stale := !ok || current.generation != generation
	s.mu.Unlock()
	if stale {
		return
	}

	if err := s.cache.Put(ctx, sessionID, snap); err != nil {
		s.logger.Warn("cache notification snapshot", "session_id", sessionID, "error", err)
	}
}

// extract applies the configured expressions to the raw payload.
func (s *NotificationService) extract(payload map[string]any) (ports.NotificationSnapshot, error) {
	snap := ports.NotificationSnapshot{FetchedAt: time.Now().UTC()}

	unread, err := jmespath.Search(s.unreadExpr, payload)
	if err != nil {
		return snap, fmt.Errorf("extract unread count: %w", err)
	}
	if n, ok := unread.(float64); ok {
		snap.UnreadCount = int(n)
	}

	latest, err := jmespath.Search(s.latestExpr, payload)
	if err != nil {
		return snap, fmt.Errorf("extract latest ID: %w", err)
	}
	if id, ok := latest.(string); ok {
		snap.LatestID = id
	}

	return snap, nil
}
