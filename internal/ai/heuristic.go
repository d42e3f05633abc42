package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskflow-backend/internal/tasks"
)

var (
	highUrgencyWords = []string{"urgent", "asap", "today", "now", "immediately", "critical", "deadline", "bug", "prod", "exam", "submit"}
	mediumWords      = []string{"soon", "important", "review", "prepare", "meeting", "follow up", "todo"}
	lowUrgencyWords  = []string{"optional", "someday", "later", "idea", "backlog", "nice to have"}
)

// Heuristic is a local, deterministic advisor. It needs no credential and
// never fails.
type Heuristic struct {
	now func() time.Time
}

func NewHeuristic() *Heuristic {
	return &Heuristic{now: time.Now}
}

func (h *Heuristic) SuggestPriority(_ context.Context, in SuggestInput) (Suggestion, error) {
	score := 5
	var reasons []string

	if in.DueDate != nil {
		hours := in.DueDate.Sub(h.now()).Hours()
		switch {
		case hours <= 0:
			score += 3
			reasons = append(reasons, "Past due")
		case hours <= 3:
			score = max(score, 8)
			reasons = append(reasons, "Due within 3 hours")
		case hours <= 24:
			score += 4
			reasons = append(reasons, "Due within 24 hours")
		case hours <= 72:
			score += 2
			reasons = append(reasons, "Due in 1-3 days")
		case hours <= 168:
			score++
			reasons = append(reasons, "Due this week")
		default:
			score--
			reasons = append(reasons, "Due later than a week")
		}
	}

	text := strings.ToLower(in.Title + " " + in.Description)
	if containsAny(text, highUrgencyWords) {
		score += 3
		reasons = append(reasons, "High-urgency keywords detected")
	}
	if containsAny(text, mediumWords) {
		score++
		reasons = append(reasons, "Important keywords detected")
	}
	if containsAny(text, lowUrgencyWords) {
		score -= 2
		reasons = append(reasons, "Low-urgency keywords detected")
	}

	if len(strings.Fields(in.Description)) >= 40 {
		score++
		reasons = append(reasons, "Longer description suggests more complexity")
	}

	score = min(10, max(1, score))

	prio := tasks.PriorityLow
	switch {
	case score >= 8:
		prio = tasks.PriorityHigh
	case score >= 5:
		prio = tasks.PriorityMedium
	}

	reasoning := "Heuristic analysis completed"
	if len(reasons) > 0 {
		reasoning = strings.Join(reasons, "; ")
	}
	return Suggestion{SuggestedPriority: prio, UrgencyScore: score, Reasoning: reasoning}, nil
}

func (h *Heuristic) Summarize(_ context.Context, ts []tasks.Task) (Summary, error) {
	if len(ts) == 0 {
		return emptySummary(), nil
	}

	now := h.now()
	var open, done, overdue, highOpen, dueSoon int
	for _, t := range ts {
		if t.Status == tasks.StatusCompleted {
			done++
			continue
		}
		open++
		if t.Priority == tasks.PriorityHigh {
			highOpen++
		}
		if t.DueDate != nil {
			switch d := t.DueDate.Sub(now); {
			case d < 0:
				overdue++
			case d <= 48*time.Hour:
				dueSoon++
			}
		}
	}

	s := Summary{
		Summary:         fmt.Sprintf("You have %d tasks: %d open and %d completed.", len(ts), open, done),
		Insights:        []string{},
		Recommendations: []string{},
	}
	s.Insights = append(s.Insights, fmt.Sprintf("%d%% of your tasks are completed.", done*100/len(ts)))
	if overdue > 0 {
		s.Insights = append(s.Insights, fmt.Sprintf("%d open tasks are past their due date.", overdue))
		s.Recommendations = append(s.Recommendations, "Finish or reschedule overdue tasks before starting new work.")
	}
	if dueSoon > 0 {
		s.Insights = append(s.Insights, fmt.Sprintf("%d open tasks are due within two days.", dueSoon))
	}
	if highOpen > 0 {
		s.Recommendations = append(s.Recommendations, fmt.Sprintf("Start with your %d high-priority open tasks.", highOpen))
	}
	if open == 0 {
		s.Recommendations = append(s.Recommendations, "Everything is done. Plan your next tasks.")
	}
	return s, nil
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
