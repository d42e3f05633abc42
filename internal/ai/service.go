package ai

import (
	"context"
	"fmt"
	"strings"

	"taskflow-backend/internal/apperr"
	"taskflow-backend/internal/tasks"
)

// TaskLister is the read-only view of the task store the summary needs.
type TaskLister interface {
	List(ctx context.Context, ownerID string) ([]tasks.Task, error)
}

// Service puts the advisory capability behind input validation and the
// account's task list. It never writes tasks.
type Service struct {
	advisor    Advisor
	tasks      TaskLister
	configured bool
}

func NewService(advisor Advisor, lister TaskLister) *Service {
	if advisor == nil {
		advisor = Disabled{}
	}
	_, disabled := advisor.(Disabled)
	return &Service{advisor: advisor, tasks: lister, configured: !disabled}
}

// Configured reports whether a provider is available.
func (s *Service) Configured() bool { return s.configured }

// AnalyzeRequest is the POST /ai/analyze-priority body.
type AnalyzeRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
}

func (s *Service) SuggestPriority(ctx context.Context, req AnalyzeRequest) (Suggestion, error) {
	if !s.configured {
		return Suggestion{}, ErrNotConfigured
	}
	in := SuggestInput{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
	}
	if in.Title == "" {
		return Suggestion{}, apperr.Invalid("title is required")
	}
	if req.DueDate != nil && strings.TrimSpace(*req.DueDate) != "" {
		d, err := tasks.ParseDueDate(*req.DueDate)
		if err != nil {
			return Suggestion{}, err
		}
		in.DueDate = &d
	}
	return s.advisor.SuggestPriority(ctx, in)
}

// Summarize reads ownerID's current tasks and asks the advisor about them.
func (s *Service) Summarize(ctx context.Context, ownerID string) (Summary, error) {
	if !s.configured {
		return Summary{}, ErrNotConfigured
	}
	ts, err := s.tasks.List(ctx, ownerID)
	if err != nil {
		return Summary{}, fmt.Errorf("load tasks for summary: %w", err)
	}
	return s.advisor.Summarize(ctx, ts)
}
