// Package router mounts every HTTP route on a stdlib ServeMux and wraps it in
// the middleware chain.
package router

import (
	"net/http"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"taskflow-backend/internal/ai"
	"taskflow-backend/internal/analytics"
	"taskflow-backend/internal/auth"
	"taskflow-backend/internal/dashboard"
	"taskflow-backend/internal/tasks"
)

type Deps struct {
	Log    *zap.SugaredLogger
	Auth   *auth.Service
	Tasks  *tasks.Service
	Stats  *dashboard.Aggregator
	AI     *ai.Service
	Events *analytics.Recorder

	CORSOrigins      []string
	MaskForeignTasks bool
}

// prefixes are the mount points; clients use either.
var prefixes = []string{"/api", ""}

// RegisterRoutes builds the full handler: request id, recovery, access log,
// security headers, CORS, then the mux.
func RegisterRoutes(d Deps) http.Handler {
	mux := http.NewServeMux()

	authMW := auth.NewMiddleware(d.Auth, d.Log)
	authH := auth.NewHandler(d.Auth, d.Events, d.Log)
	taskH := tasks.NewHandler(d.Tasks, d.Events, d.Log, d.MaskForeignTasks)
	aiH := ai.NewHandler(d.AI, d.Events, d.Log)

	health := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}

	for _, p := range prefixes {
		mux.HandleFunc("GET "+p+"/health", health)

		// auth
		mux.HandleFunc("POST "+p+"/auth/register", authH.Register)
		mux.HandleFunc("POST "+p+"/auth/login", authH.Login)
		mux.HandleFunc("GET "+p+"/auth/me", authMW.Wrap(authH.Me))
		mux.HandleFunc("POST "+p+"/auth/logout", authMW.Wrap(auth.LogoutHandler()))

		// tasks
		mux.HandleFunc("GET "+p+"/tasks", authMW.Wrap(taskH.List))
		mux.HandleFunc("POST "+p+"/tasks", authMW.Wrap(taskH.Create))
		mux.HandleFunc("GET "+p+"/tasks/{id}", authMW.Wrap(taskH.Get))
		mux.HandleFunc("PUT "+p+"/tasks/{id}", authMW.Wrap(taskH.Update))
		mux.HandleFunc("DELETE "+p+"/tasks/{id}", authMW.Wrap(taskH.Delete))

		// dashboard
		mux.HandleFunc("GET "+p+"/dashboard/stats", authMW.Wrap(dashboard.StatsHandler(d.Stats, d.Log)))

		// ai
		mux.HandleFunc("POST "+p+"/ai/analyze-priority", authMW.Wrap(aiH.AnalyzePriority))
		mux.HandleFunc("GET "+p+"/ai/task-summary", authMW.Wrap(aiH.TaskSummary))

		// analytics
		mux.HandleFunc("POST "+p+"/analytics/events", authMW.Wrap(analytics.ClientEventHandler(d.Events, d.Log)))
	}

	var handler http.Handler = mux
	handler = newCORS(d.CORSOrigins).Handler(handler)
	handler = SecurityHeadersMiddleware()(handler)
	handler = LoggingMiddleware(d.Log)(handler)
	handler = RecoveryMiddleware(d.Log)(handler)
	handler = RequestIDMiddleware()(handler)
	return handler
}

func newCORS(origins []string) *cors.Cors {
	wildcard := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}
	if wildcard {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Authorization", "Content-Type", "Accept-Language",
			"X-Platform", "X-Session-Id", "X-App-Version", "X-Device-Locale",
			"Idempotency-Key", "X-Source-Event-Key", "X-Request-Id",
		},
		ExposedHeaders: []string{"X-Request-Id"},
		// credentials cannot be combined with a wildcard origin
		AllowCredentials: !wildcard,
	})
}
