package ai

import (
	"context"
	"math"
	"strings"
	"time"

	"taskflow-backend/internal/apperr"
	"taskflow-backend/internal/tasks"
)

var (
	ErrNotConfigured = apperr.New(apperr.ErrNotConfigured, "AI advisory is not configured")
	ErrUnavailable   = apperr.New(apperr.ErrUnavailable, "AI advisory is temporarily unavailable")
)

// SuggestInput is what the provider sees when asked for a priority.
type SuggestInput struct {
	Title       string
	Description string
	DueDate     *time.Time
}

type Suggestion struct {
	SuggestedPriority tasks.Priority `json:"suggested_priority"`
	UrgencyScore      int            `json:"urgency_score"`
	Reasoning         string         `json:"reasoning"`
}

type Summary struct {
	Summary         string   `json:"summary"`
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
}

// Advisor is the optional advisory capability. Implementations must return
// ErrUnavailable (wrapped) for any provider failure and never block past
// their configured timeout.
type Advisor interface {
	SuggestPriority(ctx context.Context, in SuggestInput) (Suggestion, error)
	Summarize(ctx context.Context, ts []tasks.Task) (Summary, error)
}

// Disabled is the advisor used when no provider credential is configured.
type Disabled struct{}

func (Disabled) SuggestPriority(context.Context, SuggestInput) (Suggestion, error) {
	return Suggestion{}, ErrNotConfigured
}

func (Disabled) Summarize(context.Context, []tasks.Task) (Summary, error) {
	return Summary{}, ErrNotConfigured
}

const (
	maxReasoningRunes = 500
	maxListItems      = 5
)

// rawSuggestion mirrors the provider's JSON before contract checks.
type rawSuggestion struct {
	SuggestedPriority string   `json:"suggested_priority"`
	UrgencyScore      *float64 `json:"urgency_score"`
	Reasoning         string   `json:"reasoning"`
}

// toSuggestion enforces the contract: a known priority, a score on the 0..10
// scale and a non-empty reasoning.
func (r rawSuggestion) toSuggestion() (Suggestion, bool) {
	p := tasks.Priority(strings.ToLower(strings.TrimSpace(r.SuggestedPriority)))
	if !p.Valid() || r.UrgencyScore == nil {
		return Suggestion{}, false
	}
	score := *r.UrgencyScore
	if math.IsNaN(score) || score < 0 || score > 10 {
		return Suggestion{}, false
	}
	reason := strings.TrimSpace(r.Reasoning)
	if reason == "" {
		return Suggestion{}, false
	}
	return Suggestion{
		SuggestedPriority: p,
		UrgencyScore:      int(math.Round(score)),
		Reasoning:         truncateRunes(reason, maxReasoningRunes),
	}, true
}

type rawSummary struct {
	Summary         string   `json:"summary"`
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
}

func (r rawSummary) toSummary() (Summary, bool) {
	s := strings.TrimSpace(r.Summary)
	if s == "" {
		return Summary{}, false
	}
	return Summary{
		Summary:         s,
		Insights:        cleanList(r.Insights),
		Recommendations: cleanList(r.Recommendations),
	}, true
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, truncateRunes(s, maxReasoningRunes))
		}
		if len(out) == maxListItems {
			break
		}
	}
	return out
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// emptySummary is returned without calling a provider when there is
// nothing to summarize.
func emptySummary() Summary {
	return Summary{Summary: "No tasks to summarize", Insights: []string{}, Recommendations: []string{}}
}
