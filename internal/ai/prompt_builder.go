package ai

import (
	"strings"
	"time"

	"taskflow-backend/internal/tasks"
)

// maxSummaryTasks caps how many tasks are sent to the provider.
const maxSummaryTasks = 100

// BuildPriorityPrompt formats one task for the priority prompt.
func BuildPriorityPrompt(in SuggestInput, now time.Time) string {
	var b strings.Builder

	b.WriteString("now: ")
	b.WriteString(now.UTC().Format(time.RFC3339))
	b.WriteString("\n")

	b.WriteString("title: ")
	b.WriteString(in.Title)
	b.WriteString("\n")

	if in.Description != "" {
		b.WriteString("description: ")
		b.WriteString(in.Description)
		b.WriteString("\n")
	}

	if in.DueDate != nil {
		b.WriteString("due_date: ")
		b.WriteString(in.DueDate.UTC().Format(time.RFC3339))
		b.WriteString("\n")
	} else {
		b.WriteString("due_date: none\n")
	}

	return b.String()
}

// BuildSummaryPrompt formats a task list for the summary prompt.
func BuildSummaryPrompt(ts []tasks.Task, now time.Time) string {
	var b strings.Builder

	b.WriteString("now: ")
	b.WriteString(now.UTC().Format(time.RFC3339))
	b.WriteString("\n")
	b.WriteString("tasks:\n")

	for i, t := range ts {
		if i == maxSummaryTasks {
			b.WriteString("(remaining tasks omitted)\n")
			break
		}
		b.WriteString("- ")
		b.WriteString(t.Title)
		b.WriteString(" (priority: ")
		b.WriteString(string(t.Priority))
		b.WriteString(", status: ")
		b.WriteString(string(t.Status))
		b.WriteString(", due: ")
		if t.DueDate != nil {
			b.WriteString(t.DueDate.UTC().Format(time.RFC3339))
		} else {
			b.WriteString("none")
		}
		b.WriteString(")")
		if t.Description != "" {
			b.WriteString(": ")
			b.WriteString(strings.ReplaceAll(t.Description, "\n", " "))
		}
		b.WriteString("\n")
	}

	return b.String()
}
