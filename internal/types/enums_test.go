package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthOf(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want MonthKey
	}{
		{"mid month", time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC), "2026-08"},
		{"first instant of month", time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), "2026-09"},
		{"last instant of month", time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC), "2026-08"},
		{"non-UTC zone normalizes", time.Date(2026, 8, 31, 23, 30, 0, 0, time.FixedZone("EST", -5*3600)), "2026-09"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MonthOf(tt.in))
		})
	}
}
