package ai

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"taskflow-backend/internal/analytics"
	"taskflow-backend/internal/auth"
	"taskflow-backend/internal/httpx"
)

type Handler struct {
	svc    *Service
	events *analytics.Recorder
	log    *zap.SugaredLogger
}

func NewHandler(svc *Service, events *analytics.Recorder, log *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, events: events, log: log}
}

// AnalyzePriority handles POST /ai/analyze-priority.
func (h *Handler) AnalyzePriority(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.Error(w, r, h.log, auth.ErrInvalidToken)
		return
	}

	var body AnalyzeRequest
	if err := httpx.Decode(w, r, &body); err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}

	s, err := h.svc.SuggestPriority(r.Context(), body)
	h.track(r, uid, "ai_priority_requested", err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s)
}

// TaskSummary handles GET /ai/task-summary.
func (h *Handler) TaskSummary(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.Error(w, r, h.log, auth.ErrInvalidToken)
		return
	}

	s, err := h.svc.Summarize(r.Context(), uid)
	h.track(r, uid, "ai_summary_requested", err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrUnavailable) {
		h.log.Warnw("advisory call failed", "path", r.URL.Path, "err", err)
	}
	httpx.Error(w, r, h.log, err)
}

func (h *Handler) track(r *http.Request, uid, name string, err error) {
	outcome := "ok"
	switch {
	case errors.Is(err, ErrNotConfigured):
		outcome = "not_configured"
	case errors.Is(err, ErrUnavailable):
		outcome = "unavailable"
	case err != nil:
		outcome = "rejected"
	}
	h.events.Track(r, uid, name, map[string]any{"outcome": outcome})
}
