// Package db opens the database named by DATABASE_URL. The scheme picks the
// backend: postgres (lib/pq), sqlite (go-sqlite3) or mongodb (mongo-driver).
package db

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Kind string

const (
	KindMemory   Kind = "memory"
	KindPostgres Kind = "postgres"
	KindSQLite   Kind = "sqlite"
	KindMongo    Kind = "mongo"
)

var ErrUnknownScheme = errors.New("unsupported database url scheme")

type Config struct {
	URL      string
	Name     string // mongo database name
	MaxConns int
	Timeout  time.Duration
}

// KindOf reports which backend a URL selects.
func KindOf(rawURL string) (Kind, error) {
	scheme, _, ok := strings.Cut(rawURL, "://")
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownScheme, rawURL)
	}
	switch strings.ToLower(scheme) {
	case "memory":
		return KindMemory, nil
	case "postgres", "postgresql":
		return KindPostgres, nil
	case "sqlite", "sqlite3", "file":
		return KindSQLite, nil
	case "mongodb", "mongodb+srv":
		return KindMongo, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
}

// sqliteDSN turns sqlite://path?opts into a go-sqlite3 DSN with foreign keys
// enabled. sqlite://:memory: yields a private in-memory database.
func sqliteDSN(rawURL string) string {
	_, rest, _ := strings.Cut(rawURL, "://")
	path, query, _ := strings.Cut(rest, "?")
	vals, _ := url.ParseQuery(query)
	if vals.Get("_foreign_keys") == "" && vals.Get("_fk") == "" {
		vals.Set("_foreign_keys", "on")
	}
	if path == "" {
		path = ":memory:"
	}
	return "file:" + path + "?" + vals.Encode()
}

// Connect opens a SQL database and verifies it with a ping.
func Connect(cfg Config) (*sqlx.DB, error) {
	kind, err := KindOf(cfg.URL)
	if err != nil {
		return nil, err
	}

	var driver, dsn string
	switch kind {
	case KindPostgres:
		driver, dsn = "postgres", cfg.URL
	case KindSQLite:
		driver, dsn = "sqlite3", sqliteDSN(cfg.URL)
	default:
		return nil, fmt.Errorf("connect: %s is not a sql backend", kind)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	maxConns := cfg.MaxConns
	if kind == KindSQLite {
		// one writer; also keeps a :memory: database on a single connection
		maxConns = 1
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(maxConns)
	}
	if kind == KindPostgres {
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout(cfg))
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

// ConnectMongo opens a client, pings the primary and returns the named
// database.
func ConnectMongo(ctx context.Context, cfg Config) (*mongo.Database, error) {
	opts := options.Client().ApplyURI(cfg.URL).SetTimeout(timeout(cfg))
	if cfg.MaxConns > 0 {
		opts.SetMaxPoolSize(uint64(cfg.MaxConns))
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout(cfg))
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	name := cfg.Name
	if name == "" {
		name = "taskflow"
	}
	return client.Database(name), nil
}

func timeout(cfg Config) time.Duration {
	if cfg.Timeout > 0 {
		return cfg.Timeout
	}
	return 5 * time.Second
}
