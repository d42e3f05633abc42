package ai

import (
	"context"
	"errors"
	"testing"

	"taskflow-backend/internal/apperr"
	"taskflow-backend/internal/tasks"
)

// MockAdvisor records what reaches the provider.
type MockAdvisor struct {
	SuggestFunc   func(ctx context.Context, in SuggestInput) (Suggestion, error)
	SummarizeFunc func(ctx context.Context, ts []tasks.Task) (Summary, error)
}

func (m *MockAdvisor) SuggestPriority(ctx context.Context, in SuggestInput) (Suggestion, error) {
	return m.SuggestFunc(ctx, in)
}

func (m *MockAdvisor) Summarize(ctx context.Context, ts []tasks.Task) (Summary, error) {
	return m.SummarizeFunc(ctx, ts)
}

type listerFunc func(ctx context.Context, ownerID string) ([]tasks.Task, error)

func (f listerFunc) List(ctx context.Context, ownerID string) ([]tasks.Task, error) {
	return f(ctx, ownerID)
}

func TestServiceNotConfigured(t *testing.T) {
	svc := NewService(nil, nil)
	if svc.Configured() {
		t.Fatal("nil advisor should be unconfigured")
	}
	if _, err := svc.SuggestPriority(context.Background(), AnalyzeRequest{Title: ""}); !errors.Is(err, apperr.ErrNotConfigured) {
		t.Errorf("suggest err = %v", err)
	}
	if _, err := svc.Summarize(context.Background(), "u1"); !errors.Is(err, apperr.ErrNotConfigured) {
		t.Errorf("summarize err = %v", err)
	}
}

func TestServiceSuggestValidates(t *testing.T) {
	called := false
	svc := NewService(&MockAdvisor{SuggestFunc: func(_ context.Context, in SuggestInput) (Suggestion, error) {
		called = true
		if in.DueDate == nil {
			t.Error("due date not parsed")
		}
		return Suggestion{SuggestedPriority: tasks.PriorityLow, UrgencyScore: 1, Reasoning: "r"}, nil
	}}, nil)

	if _, err := svc.SuggestPriority(context.Background(), AnalyzeRequest{Title: "  "}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("blank title err = %v", err)
	}
	bad := "soon"
	if _, err := svc.SuggestPriority(context.Background(), AnalyzeRequest{Title: "x", DueDate: &bad}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("bad due err = %v", err)
	}
	if called {
		t.Fatal("advisor called with invalid input")
	}

	due := "2025-09-01"
	if _, err := svc.SuggestPriority(context.Background(), AnalyzeRequest{Title: "x", DueDate: &due}); err != nil || !called {
		t.Errorf("err = %v, called = %v", err, called)
	}
}

func TestServiceSummarizeUsesOwnerTasks(t *testing.T) {
	lister := listerFunc(func(_ context.Context, ownerID string) ([]tasks.Task, error) {
		if ownerID != "u1" {
			t.Errorf("owner = %s", ownerID)
		}
		return []tasks.Task{{ID: "t1"}}, nil
	})
	svc := NewService(&MockAdvisor{SummarizeFunc: func(_ context.Context, ts []tasks.Task) (Summary, error) {
		if len(ts) != 1 {
			t.Errorf("tasks = %v", ts)
		}
		return Summary{}, ErrUnavailable
	}}, lister)

	if _, err := svc.Summarize(context.Background(), "u1"); !errors.Is(err, apperr.ErrUnavailable) {
		t.Errorf("err = %v", err)
	}
}
