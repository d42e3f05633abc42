package tasks

import (
	"encoding/json"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task is owned by exactly one account; UserID never changes.
type Task struct {
	ID          string     `json:"id" db:"id"`
	UserID      string     `json:"user_id" db:"user_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Priority    Priority   `json:"priority" db:"priority"`
	Status      Status     `json:"status" db:"status"`
	DueDate     *time.Time `json:"due_date" db:"due_date"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// CreateInput is the POST /tasks body. Empty priority and status take the
// defaults.
type CreateInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
	DueDate     *string  `json:"due_date"`
}

// Field records whether a JSON member was present, and whether it was null.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if string(b) == "null" {
		f.Null = true
		return nil
	}
	return json.Unmarshal(b, &f.Value)
}

// Patch is the PUT /tasks/{id} body. Absent members keep their value.
type Patch struct {
	Title       Field[string]   `json:"title"`
	Description Field[string]   `json:"description"`
	Priority    Field[Priority] `json:"priority"`
	Status      Field[Status]   `json:"status"`
	DueDate     Field[string]   `json:"due_date"`
}

// Empty reports whether no member was sent at all.
func (p Patch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Priority.Set && !p.Status.Set && !p.DueDate.Set
}

// Changes is a validated Patch, ready for a store.
type Changes struct {
	Title        *string
	Description  *string
	Priority     *Priority
	Status       *Status
	DueDate      *time.Time
	ClearDueDate bool
}

func (c Changes) Empty() bool {
	return c.Title == nil && c.Description == nil && c.Priority == nil &&
		c.Status == nil && c.DueDate == nil && !c.ClearDueDate
}

// Apply writes the changes onto t and stamps UpdatedAt.
func (c Changes) Apply(t *Task, now time.Time) {
	if c.Title != nil {
		t.Title = *c.Title
	}
	if c.Description != nil {
		t.Description = *c.Description
	}
	if c.Priority != nil {
		t.Priority = *c.Priority
	}
	if c.Status != nil {
		t.Status = *c.Status
	}
	if c.DueDate != nil {
		d := *c.DueDate
		t.DueDate = &d
	}
	if c.ClearDueDate {
		t.DueDate = nil
	}
	t.UpdatedAt = now
}
