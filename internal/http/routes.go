package httpx

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth          AuthAPI
	Navigation    NavigationAPI
	Notifications NotificationAPI

	CookieName   string
	CookieDomain string

	// Token-bucket settings for the credential endpoints. Zero values
	// fall back to defaults.
	LoginRateLimit float64
	LoginRateBurst int

	IsDev  bool
	Logger *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cookies := CookieConfig{Name: services.CookieName, Domain: services.CookieDomain}

	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{Svc: services.Auth, Cookies: cookies, Logger: logger}
	sessionHandlers := &SessionHandlers{Svc: services.Auth, Cookies: cookies, Logger: logger}
	navHandlers := &NavigationHandlers{Svc: services.Navigation, Logger: logger}
	notifHandlers := &NotificationHandlers{Svc: services.Notifications, Logger: logger}
	pageHandlers := &PageHandlers{IsDev: services.IsDev, Logger: logger}

	withSession := RequireSession(services.Auth, cookies.Name)
	maybeSession := OptionalSession(services.Auth, cookies.Name)
	limited := loginRateLimiter(services)

	registerAuthRoutes(mux, authHandlers, limited, maybeSession)
	registerMemberAuthRoutes(mux, authHandlers, withSession)
	registerSessionRoutes(mux, sessionHandlers, withSession)
	registerShellRoutes(mux, navHandlers, notifHandlers, withSession)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("GET /static/", staticHandler(services.IsDev))

	// Every remaining GET is a page navigation and goes through the
	// route gate before the shell renders.
	gate := NewGate(services.Auth, cookies, logger)
	mux.Handle("GET /", gate.Wrap(http.HandlerFunc(pageHandlers.Shell)))

	return mux
}

func loginRateLimiter(services RouterServices) func(http.Handler) http.Handler {
	perSecond := services.LoginRateLimit
	if perSecond <= 0 {
		perSecond = 2
	}
	burst := services.LoginRateBurst
	if burst <= 0 {
		burst = 5
	}
	return RateLimit(perSecond, burst)
}

func registerAuthRoutes(
	mux *http.ServeMux,
	h *AuthHandlers,
	limited func(http.Handler) http.Handler,
	maybeSession func(http.Handler) http.Handler,
) {
	mux.Handle("POST /api/auth/login", limited(http.HandlerFunc(h.Login)))
	mux.Handle("POST /api/auth/2fa/verify", limited(http.HandlerFunc(h.VerifyTwoFA)))
	mux.Handle("POST /api/auth/pin/verify", limited(http.HandlerFunc(h.VerifyPIN)))
	mux.Handle("POST /api/auth/pin/setup", limited(http.HandlerFunc(h.SetupPIN)))
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.Handle("GET /api/auth/status", maybeSession(http.HandlerFunc(h.Status)))

	mux.HandleFunc("GET /auth/sso/login", h.SSOLogin)
	mux.HandleFunc("GET /auth/sso/callback", h.SSOCallback)
}

func registerSessionRoutes(
	mux *http.ServeMux,
	h *SessionHandlers,
	withSession func(http.Handler) http.Handler,
) {
	mux.HandleFunc("POST /api/session/recovery", h.PrepareRecovery)
	mux.Handle("POST /api/session/refresh-profile", withSession(http.HandlerFunc(h.RefreshProfile)))
}

func registerShellRoutes(
	mux *http.ServeMux,
	nav *NavigationHandlers,
	notif *NotificationHandlers,
	withSession func(http.Handler) http.Handler,
) {
	mux.Handle("GET /api/navigation", withSession(http.HandlerFunc(nav.Shell)))
	mux.Handle("POST /api/navigation/badges/dismiss", withSession(http.HandlerFunc(nav.DismissBadge)))
	mux.Handle("GET /api/notifications", withSession(http.HandlerFunc(notif.Snapshot)))
}

// RegisterTwoFAPhone needs a resolved session, so it is wired separately
// from the unauthenticated credential routes.
func registerMemberAuthRoutes(
	mux *http.ServeMux,
	h *AuthHandlers,
	withSession func(http.Handler) http.Handler,
) {
	mux.Handle("POST /api/auth/2fa/phone", withSession(http.HandlerFunc(h.RegisterTwoFAPhone)))
}

// staticHandler serves frontend assets from disk. Hashed bundles are
// long-cached; everything else is revalidated.
func staticHandler(isDev bool) http.Handler {
	fileServer := http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static")))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isDev {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}
		fileServer.ServeHTTP(w, r)
	})
}
