package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseFilterTime(t *testing.T) {
	loc := time.UTC
	ref := time.Date(2026, 3, 14, 15, 30, 0, 0, loc)

	tests := map[string]struct {
		value    string
		expected time.Time
		ok       bool
	}{
		"iso-date":   {"2026-01-02", time.Date(2026, 1, 2, 0, 0, 0, 0, loc), true},
		"us-date":    {"Jan 2, 2026", time.Date(2026, 1, 2, 0, 0, 0, 0, loc), true},
		"today":      {"today", time.Date(2026, 3, 14, 0, 0, 0, 0, loc), true},
		"yesterday":  {"yesterday", time.Date(2026, 3, 13, 0, 0, 0, 0, loc), true},
		"tomorrow":   {"Tomorrow", time.Date(2026, 3, 15, 0, 0, 0, 0, loc), true},
		"empty":      {"", time.Time{}, false},
		"whitespace": {"   ", time.Time{}, false},
		"garbage":    {"not a date", time.Time{}, false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := ParseFilterTime(tt.value, ref, loc)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}
