package dashboard

import (
	"net/http"

	"go.uber.org/zap"

	"taskflow-backend/internal/auth"
	"taskflow-backend/internal/httpx"
)

// StatsHandler handles GET /dashboard/stats.
func StatsHandler(agg *Aggregator, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			httpx.Error(w, r, log, auth.ErrInvalidToken)
			return
		}
		s, err := agg.Stats(r.Context(), uid)
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, s)
	}
}
