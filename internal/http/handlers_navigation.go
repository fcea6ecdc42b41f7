package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	domainauth "github.com/pesaflow/ongeza-ui-api/internal/domain/auth"
	"github.com/pesaflow/ongeza-ui-api/internal/ports"
	"github.com/pesaflow/ongeza-ui-api/internal/service"
)

// NavigationAPI is the slice of the navigation service the handlers use.
type NavigationAPI interface {
	ShellFor(ctx context.Context, sess domainauth.Session) (*service.ShellNavigation, error)
	DismissBadge(ctx context.Context, sessionID string, badge ports.Badge) error
}

// NavigationHandlers serves the shell menu and reminder badges.
type NavigationHandlers struct {
	Svc    NavigationAPI
	Logger *slog.Logger
}

// Shell returns the menu tree and active reminder badges for the session.
// GET /api/navigation.
func (h *NavigationHandlers) Shell(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	shell, err := h.Svc.ShellFor(r.Context(), *session)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, shell)
}

type dismissPayload struct {
	Badge string `json:"badge" validate:"required,oneof=pin_setup two_fa_setup"`
}

// DismissBadge suppresses a reminder badge for the rest of the session.
// POST /api/navigation/badges/dismiss.
func (h *NavigationHandlers) DismissBadge(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	var payload dismissPayload
	if !decodeValid(w, r, &payload) {
		return
	}

	if err := h.Svc.DismissBadge(r.Context(), session.ID, ports.Badge(payload.Badge)); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}
