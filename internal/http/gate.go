package httpx

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pesaflow/ongeza-ui-api/internal/domain/access"
	domainauth "github.com/pesaflow/ongeza-ui-api/internal/domain/auth"
	apperrors "github.com/pesaflow/ongeza-ui-api/internal/errors"
)

var gateDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "ongeza_route_gate_decisions_total",
	Help: "Route gate decisions by outcome.",
}, []string{"decision"})

func init() {
	prometheus.MustRegister(gateDecisions)
}

// Gate wraps page routes with the access rules: each navigation either
// renders or is redirected. Sessions that fail to decode are treated as
// anonymous and the stale cookie is cleared.
type Gate struct {
	auth    AuthSessionResolver
	cookies CookieConfig
	logger  *slog.Logger
}

func NewGate(auth AuthSessionResolver, cookies CookieConfig, logger *slog.Logger) *Gate {
	return &Gate{auth: auth, cookies: cookies, logger: logger}
}

// Wrap gates a page handler. The resolved session, when any, is placed in
// the request context before the handler runs.
func (g *Gate) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := g.resolve(w, r)

		var user *domainauth.AuthenticatedUser
		if session != nil {
			user = &session.User
		}

		decision := access.Decide(user, r.URL.Path)
		gateDecisions.WithLabelValues(decision.String()).Inc()

		if decision == access.Render {
			if session != nil {
				r = r.WithContext(SetSessionInContext(r.Context(), session))
			}
			next.ServeHTTP(w, r)
			return
		}

		g.logger.Debug("route gate redirect",
			slog.String("path", r.URL.Path),
			slog.String("decision", decision.String()))
		http.Redirect(w, r, decision.Target(), http.StatusSeeOther)
	})
}

// resolve turns the session cookie into a session, or nil for anonymous.
// A lapsed session still inside its recovery window counts as signed in
// for page gating: the shell renders and its first API call returns the
// typed session-expired payload that opens the recovery prompt. A cookie
// that no longer maps to any record is expired on the response so the
// browser stops presenting it.
func (g *Gate) resolve(w http.ResponseWriter, r *http.Request) *domainauth.Session {
	cookie, err := r.Cookie(g.cookies.Name)
	if err != nil {
		return nil
	}

	session, err := g.auth.GetSession(r.Context(), cookie.Value)
	if err != nil {
		if apperrors.IsSessionExpired(err) && session != nil {
			return session
		}
		g.logger.Debug("discarding unresolvable session cookie", slog.Any("error", err))
		g.cookies.ClearSession(w, r)
		return nil
	}
	return session
}
