package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pesaflow/ongeza-ui-api/internal/adapters/platform"
	apperrors "github.com/pesaflow/ongeza-ui-api/internal/errors"
)

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}

	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	WriteJSON(w, p.Code, map[string]string{"error": p.ErrCode, "message": p.Err.Error()})
}

// sessionExpiredPayload is the fixed 401 body emitted when the platform
// rejects a session's tokens mid-use. The client reads pin_set to choose
// between the Verify PIN and Setup PIN prompts, and echoes from back on
// the recovery call.
type sessionExpiredPayload struct {
	Error  string `json:"error"`
	PINSet bool   `json:"pin_set"`
	From   string `json:"from,omitempty"`
}

// WriteSessionExpired emits the typed session-expired signal.
func WriteSessionExpired(w http.ResponseWriter, pinSet bool, from string) {
	WriteJSON(w, http.StatusUnauthorized, sessionExpiredPayload{
		Error:  "session_expired",
		PINSet: pinSet,
		From:   from,
	})
}

// WriteServiceError maps service-layer errors onto HTTP responses. The
// session-expired case is special: it carries the recovery payload rather
// than a plain error body.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, platform.ErrSessionExpired) || apperrors.IsSessionExpired(err) {
		pinSet := false
		if sess, ok := GetUserSessionFromContext(r.Context()); ok {
			pinSet = sess.User.PINSet
		}
		WriteSessionExpired(w, pinSet, currentRoute(r))
		return
	}

	switch {
	case apperrors.IsValidation(err):
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: string(apperrors.GetCode(err)), Err: err})
	case apperrors.IsUnauthorized(err):
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: string(apperrors.GetCode(err)), Err: err})
	case apperrors.IsNotFound(err):
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: string(apperrors.GetCode(err)), Err: err})
	case apperrors.IsConflict(err):
		WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: string(apperrors.GetCode(err)), Err: err})
	case errors.Is(err, platform.ErrBackendUnavailable), apperrors.IsUpstream(err):
		WriteError(w, ErrorParams{Code: http.StatusBadGateway, ErrCode: "backend_unavailable", Err: err})
	default:
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal", Err: err})
	}
}

// currentRoute is the page the client was on when the request fired, used
// as the post-recovery return target. The SPA shell sends it explicitly;
// absent that we fall back to the request path.
func currentRoute(r *http.Request) string {
	if from := r.Header.Get("X-Current-Route"); from != "" {
		return safeRedirectPath(from)
	}
	return safeRedirectPath(r.URL.Path)
}
