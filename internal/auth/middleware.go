package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"taskflow-backend/internal/analytics"
	"taskflow-backend/internal/httpx"
)

type ctxKey string

const accountKey ctxKey = "account"

// Authenticator resolves a bearer token; *Service implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Account, error)
}

type Middleware struct {
	auth Authenticator
	log  *zap.SugaredLogger
}

func NewMiddleware(a Authenticator, log *zap.SugaredLogger) Middleware {
	return Middleware{auth: a, log: log}
}

// Wrap rejects requests without a valid bearer token. Every failure cause
// gets the same 401 body; only the log line differs.
func (m Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			m.reject(w, r, "missing bearer token", ErrInvalidToken)
			return
		}

		acc, err := m.auth.Authenticate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, ErrTokenExpired):
				m.reject(w, r, "token expired", err)
			case errors.Is(err, ErrAccountNotFound):
				m.reject(w, r, "token bound to missing account", err)
			case errors.Is(err, ErrInvalidToken):
				m.reject(w, r, "invalid token", err)
			default:
				httpx.Error(w, r, m.log, err)
			}
			return
		}

		ctx := WithAccount(r.Context(), acc)
		ctx = analytics.WithUserID(ctx, acc.ID)

		next(w, r.WithContext(ctx))
	}
}

func (m Middleware) reject(w http.ResponseWriter, r *http.Request, reason string, err error) {
	m.log.Debugw("authentication failed", "reason", reason, "path", r.URL.Path)
	httpx.Error(w, r, m.log, err)
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func WithAccount(ctx context.Context, a Account) context.Context {
	return context.WithValue(ctx, accountKey, a)
}

func AccountFromContext(ctx context.Context) (Account, bool) {
	a, ok := ctx.Value(accountKey).(Account)
	return a, ok
}

// UserIDFromContext returns the authenticated account id.
func UserIDFromContext(ctx context.Context) (string, bool) {
	a, ok := AccountFromContext(ctx)
	return a.ID, ok
}
