// Package memory is an in-process store for development and tests. Every
// operation runs under one mutex, so each mutation is atomic and every read
// sees a single consistent state.
package memory

import (
	"context"
	"sync"
	"time"

	"taskflow-backend/internal/analytics"
	"taskflow-backend/internal/auth"
	"taskflow-backend/internal/tasks"
)

type Store struct {
	mu sync.RWMutex

	accounts map[string]auth.Account // by id
	byEmail  map[string]string       // email -> id

	tasks map[string]tasks.Task
	order []string // task ids in insertion order

	events    []analytics.Event
	eventKeys map[string]bool
}

func New() *Store {
	return &Store{
		accounts:  map[string]auth.Account{},
		byEmail:   map[string]string{},
		tasks:     map[string]tasks.Task{},
		eventKeys: map[string]bool{},
	}
}

func (s *Store) CreateAccount(_ context.Context, a auth.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[a.Email]; ok {
		return auth.ErrEmailTaken
	}
	s.accounts[a.ID] = a
	s.byEmail[a.Email] = a.ID
	return nil
}

func (s *Store) AccountByEmail(_ context.Context, email string) (auth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return auth.Account{}, auth.ErrAccountNotFound
	}
	return s.accounts[id], nil
}

func (s *Store) AccountByID(_ context.Context, id string) (auth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return auth.Account{}, auth.ErrAccountNotFound
	}
	return a, nil
}

// DeleteAccount removes an account; its tokens stop authenticating.
func (s *Store) DeleteAccount(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[id]; ok {
		delete(s.byEmail, a.Email)
		delete(s.accounts, id)
	}
}

func (s *Store) InsertTask(_ context.Context, t tasks.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = copyTask(t)
	s.order = append(s.order, t.ID)
	return nil
}

func (s *Store) TaskByID(_ context.Context, id string) (tasks.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return tasks.Task{}, tasks.ErrTaskNotFound
	}
	return copyTask(t), nil
}

func (s *Store) TasksByOwner(_ context.Context, ownerID string) ([]tasks.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []tasks.Task{}
	for _, id := range s.order {
		if t := s.tasks[id]; t.UserID == ownerID {
			out = append(out, copyTask(t))
		}
	}
	return out, nil
}

func (s *Store) CountByStatus(_ context.Context, ownerID string) (map[tasks.Status]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := map[tasks.Status]int{}
	for _, t := range s.tasks {
		if t.UserID == ownerID {
			counts[t.Status]++
		}
	}
	return counts, nil
}

func (s *Store) UpdateTask(_ context.Context, ownerID, id string, c tasks.Changes, now time.Time) (tasks.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.UserID != ownerID {
		return tasks.Task{}, tasks.ErrTaskNotFound
	}
	c.Apply(&t, now)
	s.tasks[id] = t
	return copyTask(t), nil
}

func (s *Store) DeleteTask(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.UserID != ownerID {
		return tasks.ErrTaskNotFound
	}
	delete(s.tasks, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) WriteEvent(_ context.Context, e analytics.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.SourceEventKey != "" {
		if s.eventKeys[e.SourceEventKey] {
			return nil
		}
		s.eventKeys[e.SourceEventKey] = true
	}
	s.events = append(s.events, e)
	return nil
}

// Events returns a copy of the recorded analytics events.
func (s *Store) Events() []analytics.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]analytics.Event(nil), s.events...)
}

// copyTask detaches the DueDate pointer so callers never share state with
// the store.
func copyTask(t tasks.Task) tasks.Task {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}
