package tasks

import (
	"strings"
	"time"

	"taskflow-backend/internal/apperr"
)

// Layouts without a zone are what <input type="datetime-local"> and
// <input type="date"> send; they are read as UTC.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDueDate parses a client timestamp and normalizes it to UTC with
// millisecond precision, the finest every backend can round-trip.
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Millisecond), nil
		}
	}
	return time.Time{}, apperr.Invalid("due_date must be an RFC 3339 timestamp")
}
