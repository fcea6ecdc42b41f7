package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	domainauth "github.com/pesaflow/ongeza-ui-api/internal/domain/auth"
	apperrors "github.com/pesaflow/ongeza-ui-api/internal/errors"
)

var requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "ongeza_http_request_duration_seconds",
	Help:    "Duration of HTTP requests.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "status"})

func init() {
	prometheus.MustRegister(requestDuration)
}

// AuthSessionResolver is the slice of the auth service the middleware
// needs to resolve cookies into sessions.
type AuthSessionResolver interface {
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
}

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
			requestDuration.WithLabelValues(r.Method, strconv.Itoa(ww.status)).
				Observe(time.Since(start).Seconds())
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession returns a middleware for API routes that resolves the
// session cookie and rejects anonymous callers with a 401. A session
// whose tokens lapsed but whose record survives for PIN recovery gets
// the typed session-expired payload instead of a plain 401, so the shell
// can open the recovery prompt with the right pin_set choice.
func RequireSession(auth AuthSessionResolver, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := sessionFromRequest(r, auth, cookieName)
			if err != nil {
				if apperrors.IsSessionExpired(err) && session != nil {
					WriteSessionExpired(w, session.User.PINSet, currentRoute(r))
					return
				}
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errors.New("authentication required"),
				})
				return
			}

			ctx := SetSessionInContext(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalSession resolves the session cookie when present and continues
// either way. Only sessions with live tokens are placed in the context.
func OptionalSession(auth AuthSessionResolver, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session, err := sessionFromRequest(r, auth, cookieName); err == nil {
				r = r.WithContext(SetSessionInContext(r.Context(), session))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// sessionFromRequest retrieves and validates a session from the request.
// A session-expired error comes back with the lapsed session still
// attached, mirroring the resolver contract, so callers can drive
// recovery off the kept record.
func sessionFromRequest(r *http.Request, auth AuthSessionResolver, cookieName string) (*domainauth.Session, error) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return nil, err
	}
	return auth.GetSession(r.Context(), cookie.Value)
}

// RateLimit caps requests per client IP using a token bucket, for
// credential endpoints that must not be brute-forced.
func RateLimit(perSecond float64, burst int) func(http.Handler) http.Handler {
	limiters := &clientLimiters{
		limit: rate.Limit(perSecond),
		burst: burst,
		seen:  make(map[string]*clientLimiter),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.allow(clientIP(r)) {
				WriteError(w, ErrorParams{
					Code:    http.StatusTooManyRequests,
					ErrCode: "rate_limited",
					Err:     errors.New("too many attempts, slow down"),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type clientLimiters struct {
	mu    sync.Mutex
	limit rate.Limit
	burst int
	seen  map[string]*clientLimiter
}

// staleAfter bounds the limiter map: entries idle beyond this are evicted
// on the next pass.
const staleAfter = 10 * time.Minute

func (c *clientLimiters) allow(ip string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entry, ok := c.seen[ip]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.seen[ip] = entry
		c.evictStale(now)
	}
	entry.lastSeen = now
	return entry.limiter.Allow()
}

func (c *clientLimiters) evictStale(now time.Time) {
	for ip, entry := range c.seen {
		if now.Sub(entry.lastSeen) > staleAfter {
			delete(c.seen, ip)
		}
	}
}

// isAPIRequest reports whether a request targets the JSON API rather than
// a page.
func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}
