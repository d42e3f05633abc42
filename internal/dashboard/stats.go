// Package dashboard computes the per-account task counters shown on the
// dashboard. Counts are recomputed on every call and never cached.
package dashboard

import (
	"context"
	"fmt"

	"taskflow-backend/internal/tasks"
)

type Snapshot struct {
	TotalTasks      int `json:"total_tasks"`
	PendingTasks    int `json:"pending_tasks"`
	InProgressTasks int `json:"in_progress_tasks"`
	CompletedTasks  int `json:"completed_tasks"`
}

// Counter is the slice of tasks.Store the aggregator needs.
type Counter interface {
	CountByStatus(ctx context.Context, ownerID string) (map[tasks.Status]int, error)
}

type Aggregator struct {
	store Counter
}

func NewAggregator(store Counter) *Aggregator {
	return &Aggregator{store: store}
}

// Stats reads the owner's counts in one store call. Total is the sum of the
// buckets, so each task is counted exactly once.
func (a *Aggregator) Stats(ctx context.Context, ownerID string) (Snapshot, error) {
	counts, err := a.store.CountByStatus(ctx, ownerID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("count tasks: %w", err)
	}
	s := Snapshot{
		PendingTasks:    counts[tasks.StatusPending],
		InProgressTasks: counts[tasks.StatusInProgress],
		CompletedTasks:  counts[tasks.StatusCompleted],
	}
	s.TotalTasks = s.PendingTasks + s.InProgressTasks + s.CompletedTasks
	return s, nil
}
