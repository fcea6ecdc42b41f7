package httpx

import (
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
)

// shellTemplate is the single-page shell served for every page route. The
// frontend bundle hydrates it; the embedded bootstrap state saves the
// first round trip for the authenticated user.
var shellTemplate = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Ongeza</title>
<link rel="stylesheet" href="/static/css/app.css">
</head>
<body>
<div id="root"></div>
<script id="bootstrap-state" type="application/json">{{.State}}</script>
<script src="/static/js/app.js" defer></script>
</body>
</html>
`))

type shellData struct {
	State template.JS
}

// PageHandlers renders the application shell for page routes that the
// gate has decided to render.
type PageHandlers struct {
	IsDev  bool
	Logger *slog.Logger
}

// Shell serves the HTML shell. Requests into the API namespace falling
// through to the catch-all get a JSON 404 instead of a page.
func (h *PageHandlers) Shell(w http.ResponseWriter, r *http.Request) {
	if isAPIRequest(r) {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "not_found",
			Err:     errors.New("no such endpoint"),
		})
		return
	}

	state := h.bootstrapState(r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := shellTemplate.Execute(w, shellData{State: template.JS(state)}); err != nil {
		h.Logger.Error("render shell", slog.Any("error", err))
	}
}

// bootstrapState serializes the signed-in user for first paint. Anonymous
// visitors get an empty object.
func (h *PageHandlers) bootstrapState(r *http.Request) []byte {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		return []byte("{}")
	}

	state, err := json.Marshal(map[string]any{
		"user":       session.User,
		"expires_at": session.ExpiresAt,
	})
	if err != nil {
		h.Logger.Warn("marshal bootstrap state", slog.Any("error", err))
		return []byte("{}")
	}
	return state
}
