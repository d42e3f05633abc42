package tasks

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"taskflow-backend/internal/analytics"
	"taskflow-backend/internal/auth"
	"taskflow-backend/internal/httpx"
)

type Handler struct {
	svc    *Service
	events *analytics.Recorder
	log    *zap.SugaredLogger

	// maskForeign reports another account's task as not found instead of
	// forbidden, so task ids of other users cannot be probed.
	maskForeign bool
}

func NewHandler(svc *Service, events *analytics.Recorder, log *zap.SugaredLogger, maskForeign bool) *Handler {
	return &Handler{svc: svc, events: events, log: log, maskForeign: maskForeign}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrTaskForbidden) {
		uid, _ := auth.UserIDFromContext(r.Context())
		h.log.Infow("foreign task access", "user_id", uid, "task_id", r.PathValue("id"), "method", r.Method)
		if h.maskForeign {
			err = ErrTaskNotFound
		}
	}
	httpx.Error(w, r, h.log, err)
}

// List handles GET /tasks.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.fail(w, r, auth.ErrInvalidToken)
		return
	}
	ts, err := h.svc.List(r.Context(), uid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ts)
}

// Get handles GET /tasks/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.fail(w, r, auth.ErrInvalidToken)
		return
	}
	t, err := h.svc.Get(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

// Create handles POST /tasks.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.fail(w, r, auth.ErrInvalidToken)
		return
	}

	var body CreateInput
	if err := httpx.Decode(w, r, &body); err != nil {
		h.fail(w, r, err)
		return
	}

	t, err := h.svc.Create(r.Context(), uid, body)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	// analytics: task_created (lengths only, never the text)
	h.events.Track(r, uid, "task_created", map[string]any{
		"task_id":      t.ID,
		"title_len":    len(t.Title),
		"has_deadline": t.DueDate != nil,
		"priority":     t.Priority,
		"status":       t.Status,
	})

	httpx.WriteJSON(w, http.StatusOK, t)
}

// Update handles PUT /tasks/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.fail(w, r, auth.ErrInvalidToken)
		return
	}

	var body Patch
	if err := httpx.Decode(w, r, &body); err != nil {
		h.fail(w, r, err)
		return
	}

	after, before, err := h.svc.Update(r.Context(), uid, r.PathValue("id"), body)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if !body.Empty() {
		h.trackUpdate(r, uid, before, after)
	}

	httpx.WriteJSON(w, http.StatusOK, after)
}

func (h *Handler) trackUpdate(r *http.Request, uid string, before, after Task) {
	h.events.Track(r, uid, "task_updated", map[string]any{
		"task_id":          after.ID,
		"priority_before":  before.Priority,
		"priority_after":   after.Priority,
		"due_date_changed": !sameDue(before.DueDate, after.DueDate),
	})

	if before.Status == after.Status {
		return
	}
	switch {
	case after.Status == StatusCompleted:
		h.events.Track(r, uid, "task_completed", map[string]any{
			"task_id":                after.ID,
			"priority_at_completion": after.Priority,
			"time_since_created_sec": int(after.UpdatedAt.Sub(after.CreatedAt) / time.Second),
		})
	case before.Status == StatusCompleted:
		h.events.Track(r, uid, "task_uncompleted", map[string]any{
			"task_id":                  after.ID,
			"status_after":             after.Status,
			"time_since_completed_sec": int(after.UpdatedAt.Sub(before.UpdatedAt) / time.Second),
		})
	}
}

// Delete handles DELETE /tasks/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.fail(w, r, auth.ErrInvalidToken)
		return
	}
	id := r.PathValue("id")
	if err := h.svc.Delete(r.Context(), uid, id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.events.Track(r, uid, "task_deleted", map[string]any{"task_id": id})
	w.WriteHeader(http.StatusNoContent)
}

func sameDue(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
