package auth

import (
	"net/http"

	"go.uber.org/zap"

	"taskflow-backend/internal/analytics"
	"taskflow-backend/internal/apperr"
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

type registerResponse struct {
	Session
	User Account `json:"user"`
}

// Register handles POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body RegisterInput
	if err := httpx.Decode(w, r, &body); err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}

	sess, acc, err := h.svc.Register(r.Context(), body)
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}

	h.log.Infow("account registered", "user_id", acc.ID)
	h.events.Track(r, acc.ID, "account_registered", nil)

	httpx.WriteJSON(w, http.StatusOK, registerResponse{Session: sess, User: acc})
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := httpx.Decode(w, r, &body); err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	if body.Email == "" || body.Password == "" {
		httpx.Error(w, r, h.log, apperr.Invalid("email and password are required"))
		return
	}

	sess, err := h.svc.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sess)
}

// Me handles GET /auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	acc, ok := AccountFromContext(r.Context())
	if !ok {
		httpx.Error(w, r, h.log, ErrInvalidToken)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, acc)
}
