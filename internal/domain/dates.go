package domain

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseFilterTime parses a user-supplied date filter value, such as the
// published_after query parameter. It accepts any layout dateparse recognizes
// plus a few relative tokens.
func ParseFilterTime(value string, ref time.Time, loc *time.Location) (time.Time, bool) {
	token := strings.ToLower(strings.TrimSpace(value))
	if token == "" {
		return time.Time{}, false
	}

	if resolved, ok := resolveRelative(token, ref, loc); ok {
		return resolved, true
	}

	t, err := dateparse.ParseIn(token, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func resolveRelative(token string, ref time.Time, loc *time.Location) (time.Time, bool) {
	ref = dateOnly(ref.In(loc))

	switch token {
	case "today":
		return ref, true
	case "yesterday":
		return ref.AddDate(0, 0, -1), true
	case "tomorrow":
		return ref.AddDate(0, 0, 1), true
	}
	return time.Time{}, false
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
