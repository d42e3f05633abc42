package analytics

import (
	"net/http"

	"go.uber.org/zap"

	"taskflow-backend/internal/apperr"
	"taskflow-backend/internal/httpx"
)

// clientEvents are the events the frontend may report on its own.
var clientEvents = map[string]bool{
	"app_opened":       true,
	"dashboard_viewed": true,
	"ai_panel_opened":  true,
}

// ClientEventHandler accepts POST /analytics/events from an authenticated
// client. Unknown event names are rejected; props are kept to scalars.
func ClientEventHandler(rec *Recorder, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserIDFromContext(r.Context()); !ok {
			httpx.Error(w, r, log, apperr.ErrUnauthorized)
			return
		}

		var body struct {
			EventName  string         `json:"event_name"`
			ColdStart  bool           `json:"cold_start"`
			From       string         `json:"from"` // push/deeplink/icon/unknown
			Properties map[string]any `json:"properties"`
		}
		if err := httpx.Decode(w, r, &body); err != nil {
			httpx.Error(w, r, log, err)
			return
		}
		if !clientEvents[body.EventName] {
			httpx.Error(w, r, log, apperr.Invalid("unknown event_name"))
			return
		}

		props := map[string]any{}
		for k, v := range body.Properties {
			switch v.(type) {
			case string, float64, bool, nil:
				props[k] = v
			}
		}
		props["cold_start"] = body.ColdStart
		if body.From != "" {
			props["from"] = body.From
		}

		rec.Track(r, "", body.EventName, props)
		httpx.WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true})
	}
}
