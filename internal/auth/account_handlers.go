package auth

import (
	"net/http"

	"taskflow-backend/internal/httpx"
)

// LogoutHandler acknowledges a logout. Tokens are stateless, so the server
// has nothing to revoke; the client drops its token.
func LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}
