package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pesaflow/ongeza-ui-api/internal/ports"
)

// NotificationAPI exposes the cached notification snapshot.
type NotificationAPI interface {
	Snapshot(ctx context.Context, sessionID string) (ports.NotificationSnapshot, bool, error)
}

// NotificationHandlers serves the unread-count snapshot the poller keeps
// warm. Handlers never call the platform feed directly.
type NotificationHandlers struct {
	Svc    NotificationAPI
	Logger *slog.Logger
}

// Snapshot returns the latest cached notification state for the session.
// GET /api/notifications.
func (h *NotificationHandlers) Snapshot(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	snap, found, err := h.Svc.Snapshot(r.Context(), session.ID)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	if !found {
		// The first poll for this session has not landed yet.
		WriteJSON(w, http.StatusOK, map[string]any{"ready": false})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"ready":        true,
		"unread_count": snap.UnreadCount,
		"latest_id":    snap.LatestID,
		"fetched_at":   snap.FetchedAt,
	})
}
