package httpx

import (
	"errors"
	"net/http"

	"github.com/pesaflow/ongeza-ui-api/internal/service"
)

// SSOLogin starts the operator single sign-on flow.
// GET /auth/sso/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) SSOLogin(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	result, err := h.Svc.BeginSSOLogin(r.Context(), redirectURI)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	h.Cookies.setTransient(w, r, "oauth_state", result.State)
	h.Cookies.setTransient(w, r, "oauth_nonce", result.Nonce)
	h.Cookies.setTransient(w, r, "post_login_redirect", redirectURI)

	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// SSOCallback completes the operator single sign-on flow.
// GET /auth/sso/callback?code=<code>&state=<state>.
func (h *AuthHandlers) SSOCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_params",
			Err:     errors.New("code and state are required"),
		})
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nonceCookie, err := r.Cookie("oauth_nonce")
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Err:     errors.New("missing nonce parameter"),
		})
		return
	}

	session, err := h.Svc.CompleteSSOLogin(r.Context(), service.CompleteSSOInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	h.Cookies.SetSession(w, r, session)
	h.Cookies.clear(w, r, "oauth_state")
	h.Cookies.clear(w, r, "oauth_nonce")

	http.Redirect(w, r, h.takePostLoginRedirect(w, r), http.StatusFound)
}

// takePostLoginRedirect returns the destination stashed before the SSO
// round trip and clears its cookie.
func (h *AuthHandlers) takePostLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	redirectURI := "/"
	if cookie, err := r.Cookie("post_login_redirect"); err == nil {
		redirectURI = safeRedirectPath(cookie.Value)
		h.Cookies.clear(w, r, "post_login_redirect")
	}
	return redirectURI
}
