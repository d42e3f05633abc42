package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"taskflow-backend/internal/apperr"
	"taskflow-backend/internal/ids"
)

const (
	maxTitleRunes       = 200
	maxDescriptionRunes = 5000
)

// Service applies task validation and the ownership rule on top of a Store.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// Create validates in, applies defaults and stores a new task for ownerID.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (Task, error) {
	title, err := cleanTitle(in.Title)
	if err != nil {
		return Task{}, err
	}
	desc, err := cleanDescription(in.Description)
	if err != nil {
		return Task{}, err
	}

	prio := in.Priority
	if prio == "" {
		prio = PriorityMedium
	}
	if !prio.Valid() {
		return Task{}, apperr.Invalid("priority must be one of low, medium, high")
	}
	status := in.Status
	if status == "" {
		status = StatusPending
	}
	if !status.Valid() {
		return Task{}, apperr.Invalid("status must be one of pending, in_progress, completed")
	}

	var due *time.Time
	if in.DueDate != nil && strings.TrimSpace(*in.DueDate) != "" {
		d, err := ParseDueDate(*in.DueDate)
		if err != nil {
			return Task{}, err
		}
		due = &d
	}

	now := s.stamp()
	t := Task{
		ID:          ids.NewRecordID(),
		UserID:      ownerID,
		Title:       title,
		Description: desc,
		Priority:    prio,
		Status:      status,
		DueDate:     due,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.InsertTask(ctx, t); err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

// List returns the owner's tasks in insertion order.
func (s *Service) List(ctx context.Context, ownerID string) ([]Task, error) {
	ts, err := s.store.TasksByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if ts == nil {
		ts = []Task{}
	}
	return ts, nil
}

// Get returns one task if ownerID owns it.
func (s *Service) Get(ctx context.Context, ownerID, id string) (Task, error) {
	return s.owned(ctx, ownerID, id)
}

// Update applies p to the task and returns the task after and before the
// change. An empty patch returns the task unchanged.
func (s *Service) Update(ctx context.Context, ownerID, id string, p Patch) (after, before Task, err error) {
	c, err := p.validate()
	if err != nil {
		return Task{}, Task{}, err
	}
	before, err = s.owned(ctx, ownerID, id)
	if err != nil {
		return Task{}, Task{}, err
	}
	if c.Empty() {
		return before, before, nil
	}

	after, err = s.store.UpdateTask(ctx, ownerID, id, c, s.stamp())
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return Task{}, Task{}, ErrTaskNotFound
		}
		return Task{}, Task{}, fmt.Errorf("update task: %w", err)
	}
	return after, before, nil
}

// Delete removes the task permanently. A missing task is ErrTaskNotFound.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.store.DeleteTask(ctx, ownerID, id); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (s *Service) owned(ctx context.Context, ownerID, id string) (Task, error) {
	if strings.TrimSpace(id) == "" {
		return Task{}, ErrTaskNotFound
	}
	t, err := s.store.TaskByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return Task{}, ErrTaskNotFound
		}
		return Task{}, fmt.Errorf("load task: %w", err)
	}
	if t.UserID != ownerID {
		return Task{}, ErrTaskForbidden
	}
	return t, nil
}

func (p Patch) validate() (Changes, error) {
	var c Changes

	if p.Title.Set {
		if p.Title.Null {
			return Changes{}, apperr.Invalid("title cannot be null")
		}
		title, err := cleanTitle(p.Title.Value)
		if err != nil {
			return Changes{}, err
		}
		c.Title = &title
	}
	if p.Description.Set {
		desc, err := cleanDescription(p.Description.Value)
		if err != nil {
			return Changes{}, err
		}
		c.Description = &desc
	}
	if p.Priority.Set {
		if p.Priority.Null || !p.Priority.Value.Valid() {
			return Changes{}, apperr.Invalid("priority must be one of low, medium, high")
		}
		v := p.Priority.Value
		c.Priority = &v
	}
	if p.Status.Set {
		if p.Status.Null || !p.Status.Value.Valid() {
			return Changes{}, apperr.Invalid("status must be one of pending, in_progress, completed")
		}
		v := p.Status.Value
		c.Status = &v
	}
	if p.DueDate.Set {
		if p.DueDate.Null || strings.TrimSpace(p.DueDate.Value) == "" {
			c.ClearDueDate = true
		} else {
			d, err := ParseDueDate(p.DueDate.Value)
			if err != nil {
				return Changes{}, err
			}
			c.DueDate = &d
		}
	}
	return c, nil
}

func cleanTitle(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperr.Invalid("title is required")
	}
	if utf8.RuneCountInString(s) > maxTitleRunes {
		return "", apperr.Invalid("title must be at most 200 characters")
	}
	return s, nil
}

func cleanDescription(s string) (string, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxDescriptionRunes {
		return "", apperr.Invalid("description must be at most 5000 characters")
	}
	return s, nil
}
