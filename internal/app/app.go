// Package app wires configuration, storage and services into one HTTP
// handler.
package app

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"taskflow-backend/internal/ai"
	"taskflow-backend/internal/analytics"
	"taskflow-backend/internal/auth"
	"taskflow-backend/internal/config"
	"taskflow-backend/internal/dashboard"
	"taskflow-backend/internal/db"
	"taskflow-backend/internal/router"
	"taskflow-backend/internal/storage/memory"
	"taskflow-backend/internal/storage/mongostore"
	"taskflow-backend/internal/storage/sqlstore"
	"taskflow-backend/internal/tasks"
)

// Store is what the services persist through. Each backend under
// internal/storage implements it.
type Store interface {
	auth.Store
	tasks.Store
}

// Backend is an open store and the func that releases it. Events is nil
// when product events should only go to the log.
type Backend struct {
	Kind   db.Kind
	Store  Store
	Events analytics.Sink
	Close  func() error
}

// OpenStore connects to the store named by cfg.DatabaseURL. With migrate set
// it also creates tables or indexes.
func OpenStore(ctx context.Context, cfg *config.Config, migrate bool) (*Backend, error) {
	kind, err := db.KindOf(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	dbCfg := db.Config{URL: cfg.DatabaseURL, Name: cfg.DBName, MaxConns: cfg.DBMaxConns}

	switch kind {
	case db.KindMemory:
		return &Backend{Kind: kind, Store: memory.New(), Close: func() error { return nil }}, nil

	case db.KindPostgres, db.KindSQLite:
		conn, err := db.Connect(dbCfg)
		if err != nil {
			return nil, err
		}
		s := sqlstore.New(conn)
		if migrate {
			if err := s.EnsureSchema(ctx); err != nil {
				conn.Close()
				return nil, err
			}
		}
		return &Backend{Kind: kind, Store: s, Events: s, Close: conn.Close}, nil

	case db.KindMongo:
		mdb, err := db.ConnectMongo(ctx, dbCfg)
		if err != nil {
			return nil, err
		}
		s := mongostore.New(mdb)
		if migrate {
			if err := s.EnsureIndexes(ctx); err != nil {
				_ = mdb.Client().Disconnect(context.Background())
				return nil, err
			}
		}
		return &Backend{
			Kind:   kind,
			Store:  s,
			Events: s,
			Close:  func() error { return mdb.Client().Disconnect(context.Background()) },
		}, nil
	}
	return nil, fmt.Errorf("%w: %s", db.ErrUnknownScheme, kind)
}

// NewAdvisor picks the advisory provider from cfg.
func NewAdvisor(cfg *config.Config) ai.Advisor {
	switch {
	case cfg.AIProvider == "heuristic":
		return ai.NewHeuristic()
	case cfg.OpenAIKey != "":
		return ai.New(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIURL, cfg.AITimeout)
	default:
		return ai.Disabled{}
	}
}

// NewHandler builds the services over b and returns the routed handler.
func NewHandler(cfg *config.Config, log *zap.SugaredLogger, b *Backend) http.Handler {
	store := b.Store
	var events analytics.Sink = analytics.LogSink{Log: log}
	if b.Events != nil {
		events = b.Events
	}

	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		log.Warnw("bcrypt cost out of range, using default", "cost", cost)
		cost = bcrypt.DefaultCost
	}

	authSvc := auth.NewService(store, &auth.BcryptHasher{Cost: cost},
		auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL))
	taskSvc := tasks.NewService(store)

	return router.RegisterRoutes(router.Deps{
		Log:              log,
		Auth:             authSvc,
		Tasks:            taskSvc,
		Stats:            dashboard.NewAggregator(store),
		AI:               ai.NewService(NewAdvisor(cfg), taskSvc),
		Events:           analytics.NewRecorder(events, log),
		CORSOrigins:      cfg.CORSOrigins,
		MaskForeignTasks: cfg.MaskForeignTasks,
	})
}
