package httpx

import (
	"net/http"
	"time"

	domainauth "github.com/pesaflow/ongeza-ui-api/internal/domain/auth"
)

// CookieConfig carries the session cookie name and the domain it is
// scoped to. The zero Domain scopes cookies to the serving host.
type CookieConfig struct {
	Name   string
	Domain string
}

// SetSession writes the session cookie, expiring alongside the session.
func (c CookieConfig) SetSession(w http.ResponseWriter, r *http.Request, s *domainauth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    s.ID,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
	})
}

// ClearSession expires the session cookie on the client. Attributes
// mirror SetSession so deletion matches across browsers.
func (c CookieConfig) ClearSession(w http.ResponseWriter, r *http.Request) {
	c.clear(w, r, c.Name)
}

func (c CookieConfig) clear(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// setTransient writes a short-lived cookie used by the SSO handshake.
func (c CookieConfig) setTransient(w http.ResponseWriter, r *http.Request, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})
}
