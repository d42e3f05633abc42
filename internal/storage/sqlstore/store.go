// Package sqlstore implements the account, task and event stores on sqlx.
// It runs on PostgreSQL (lib/pq) and SQLite (go-sqlite3); queries are
// written with '?' and rebound for the driver.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"taskflow-backend/internal/analytics"
	"taskflow-backend/internal/auth"
	"taskflow-backend/internal/ids"
	"taskflow-backend/internal/tasks"
)

type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates tables and indexes if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := postgresSchema
	if s.db.DriverName() == "sqlite3" {
		stmts = sqliteSchema
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *Store) q(query string) string {
	return s.db.Rebind(query)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// ----------------------
//        ACCOUNTS
// ----------------------

type accountRow struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	FullName     string    `db:"full_name"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r accountRow) account() auth.Account {
	return auth.Account{
		ID:           r.ID,
		Email:        r.Email,
		FullName:     r.FullName,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

const accountCols = `id, email, full_name, password_hash, created_at`

func (s *Store) CreateAccount(ctx context.Context, a auth.Account) error {
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO accounts (`+accountCols+`) VALUES (?, ?, ?, ?, ?)`),
		a.ID, a.Email, a.FullName, a.PasswordHash, a.CreatedAt,
	)
	if isUniqueViolation(err) {
		return auth.ErrEmailTaken
	}
	return err
}

func (s *Store) AccountByEmail(ctx context.Context, email string) (auth.Account, error) {
	return s.getAccount(ctx, `SELECT `+accountCols+` FROM accounts WHERE email = ?`, email)
}

func (s *Store) AccountByID(ctx context.Context, id string) (auth.Account, error) {
	return s.getAccount(ctx, `SELECT `+accountCols+` FROM accounts WHERE id = ?`, id)
}

func (s *Store) getAccount(ctx context.Context, query string, arg any) (auth.Account, error) {
	var row accountRow
	if err := s.db.GetContext(ctx, &row, s.q(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.Account{}, auth.ErrAccountNotFound
		}
		return auth.Account{}, err
	}
	return row.account(), nil
}

// DeleteAccount removes an account and, by cascade, its tasks.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, s.q(`DELETE FROM accounts WHERE id = ?`), id)
	return err
}

// ----------------------
//         TASKS
// ----------------------

const taskCols = `id, user_id, title, description, priority, status, due_date, created_at, updated_at`

func normalize(t tasks.Task) tasks.Task {
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	if t.DueDate != nil {
		d := t.DueDate.UTC()
		t.DueDate = &d
	}
	return t
}

func (s *Store) InsertTask(ctx context.Context, t tasks.Task) error {
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO tasks (`+taskCols+`, seq) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		t.ID, t.UserID, t.Title, t.Description, string(t.Priority), string(t.Status), t.DueDate, t.CreatedAt, t.UpdatedAt,
		ids.NewSequence(),
	)
	return err
}

func (s *Store) TaskByID(ctx context.Context, id string) (tasks.Task, error) {
	var t tasks.Task
	if err := s.db.GetContext(ctx, &t, s.q(`SELECT `+taskCols+` FROM tasks WHERE id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tasks.Task{}, tasks.ErrTaskNotFound
		}
		return tasks.Task{}, err
	}
	return normalize(t), nil
}

func (s *Store) TasksByOwner(ctx context.Context, ownerID string) ([]tasks.Task, error) {
	var ts []tasks.Task
	err := s.db.SelectContext(ctx, &ts,
		s.q(`SELECT `+taskCols+` FROM tasks WHERE user_id = ? ORDER BY created_at, seq`), ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]tasks.Task, 0, len(ts))
	for _, t := range ts {
		out = append(out, normalize(t))
	}
	return out, nil
}

func (s *Store) CountByStatus(ctx context.Context, ownerID string) (map[tasks.Status]int, error) {
	var rows []struct {
		Status string `db:"status"`
		N      int    `db:"n"`
	}
	err := s.db.SelectContext(ctx, &rows,
		s.q(`SELECT status, COUNT(*) AS n FROM tasks WHERE user_id = ? GROUP BY status`), ownerID)
	if err != nil {
		return nil, err
	}
	counts := make(map[tasks.Status]int, len(rows))
	for _, r := range rows {
		counts[tasks.Status(r.Status)] = r.N
	}
	return counts, nil
}

// UpdateTask applies c in a single UPDATE ... RETURNING statement.
func (s *Store) UpdateTask(ctx context.Context, ownerID, id string, c tasks.Changes, now time.Time) (tasks.Task, error) {
	var (
		sets []string
		args []any
	)
	if c.Title != nil {
		sets, args = append(sets, "title = ?"), append(args, *c.Title)
	}
	if c.Description != nil {
		sets, args = append(sets, "description = ?"), append(args, *c.Description)
	}
	if c.Priority != nil {
		sets, args = append(sets, "priority = ?"), append(args, string(*c.Priority))
	}
	if c.Status != nil {
		sets, args = append(sets, "status = ?"), append(args, string(*c.Status))
	}
	switch {
	case c.ClearDueDate:
		sets = append(sets, "due_date = NULL")
	case c.DueDate != nil:
		sets, args = append(sets, "due_date = ?"), append(args, *c.DueDate)
	}
	sets, args = append(sets, "updated_at = ?"), append(args, now)
	args = append(args, id, ownerID)

	query := `UPDATE tasks SET ` + strings.Join(sets, ", ") +
		` WHERE id = ? AND user_id = ? RETURNING ` + taskCols

	var t tasks.Task
	if err := s.db.GetContext(ctx, &t, s.q(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tasks.Task{}, tasks.ErrTaskNotFound
		}
		return tasks.Task{}, err
	}
	return normalize(t), nil
}

func (s *Store) DeleteTask(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM tasks WHERE id = ? AND user_id = ?`), id, ownerID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return tasks.ErrTaskNotFound
	}
	return nil
}

// ----------------------
//        EVENTS
// ----------------------

func nullIfEmpty(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// WriteEvent inserts one analytics event; a repeated source_event_key is a
// no-op.
func (s *Store) WriteEvent(ctx context.Context, e analytics.Event) error {
	props, err := json.Marshal(e.Properties)
	if err != nil {
		return fmt.Errorf("encode properties: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO analytics_events (
			id, event_name, event_time,
			user_id, session_id,
			platform, app_version, device_locale,
			source_event_key, properties
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_event_key) DO NOTHING
	`),
		e.ID, e.Name, e.Time,
		e.UserID, nullIfEmpty(e.SessionID),
		e.Platform, nullIfEmpty(e.AppVersion), nullIfEmpty(e.DeviceLocale),
		nullIfEmpty(e.SourceEventKey), string(props),
	)
	return err
}

// CountEvents returns how many events with the given name are stored.
func (s *Store) CountEvents(ctx context.Context, name string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.q(`SELECT COUNT(*) FROM analytics_events WHERE event_name = ?`), name)
	return n, err
}
