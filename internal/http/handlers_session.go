package httpx

import (
	"errors"
	"log/slog"
	"net/http"
)

// SessionHandlers covers session maintenance: expiry recovery preparation
// and on-demand profile refresh.
type SessionHandlers struct {
	Svc     AuthAPI
	Cookies CookieConfig
	Logger  *slog.Logger
}

type recoveryPayload struct {
	From string `json:"from"`
}

// PrepareRecovery stashes where the member was when their session lapsed
// and answers with the recovery route to send them to.
// POST /api/session/recovery.
func (h *SessionHandlers) PrepareRecovery(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(h.Cookies.Name)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("no session to recover"),
		})
		return
	}

	var payload recoveryPayload
	if !DecodeJSON(w, r, &payload) {
		return
	}

	// An absent origin means no hint is stored and recovery lands on the
	// default route, so only sanitize when one was sent.
	from := payload.From
	if from != "" {
		from = safeRedirectPath(from)
	}

	route, err := h.Svc.PrepareRecovery(r.Context(), cookie.Value, from)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"route": route})
}

// RefreshProfile re-fetches the member profile from the platform and
// returns the updated session user.
// POST /api/session/refresh-profile.
func (h *SessionHandlers) RefreshProfile(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	updated, err := h.Svc.RefreshProfile(r.Context(), session.ID)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	writeSessionUser(w, updated)
}
