package tasks

import (
	"context"
	"time"

	"taskflow-backend/internal/apperr"
)

var (
	ErrTaskNotFound  = apperr.New(apperr.ErrNotFound, "Task not found")
	ErrTaskForbidden = apperr.New(apperr.ErrForbidden, "Task belongs to another account")
)

// Store persists tasks. UpdateTask and DeleteTask match on both id and owner
// and must apply as one atomic step; they return ErrTaskNotFound when no
// task matches. CountByStatus must come from a single read.
type Store interface {
	InsertTask(ctx context.Context, t Task) error
	TaskByID(ctx context.Context, id string) (Task, error)
	TasksByOwner(ctx context.Context, ownerID string) ([]Task, error)
	CountByStatus(ctx context.Context, ownerID string) (map[Status]int, error)
	UpdateTask(ctx context.Context, ownerID, id string, c Changes, now time.Time) (Task, error)
	DeleteTask(ctx context.Context, ownerID, id string) error
}
