package scheduling_test

import (
	"testing"
	"time"

	"spacebook/internal/scheduling"

	"github.com/stretchr/testify/assert"
)

var day = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func span(startHour, startMinute, endHour, endMinute int) scheduling.Interval {
	return scheduling.NewInterval(at(startHour, startMinute), at(endHour, endMinute))
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     scheduling.Interval
		expected bool
	}{
		{"identical", span(9, 0, 10, 0), span(9, 0, 10, 0), true},
		{"partial overlap", span(9, 0, 10, 0), span(9, 30, 10, 30), true},
		{"contained", span(8, 0, 12, 0), span(9, 0, 9, 15), true},
		{"touching end to start", span(9, 0, 10, 0), span(10, 0, 11, 0), false},
		{"touching start to end", span(10, 0, 11, 0), span(9, 0, 10, 0), false},
		{"disjoint", span(9, 0, 10, 0), span(13, 0, 14, 0), false},
		{"degenerate inside", span(9, 0, 10, 0), span(9, 30, 9, 30), false},
		{"inverted", span(9, 0, 10, 0), span(10, 0, 9, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, scheduling.Overlaps(tt.a, tt.b))
			assert.Equal(t, tt.expected, scheduling.Overlaps(tt.b, tt.a), "overlap must be symmetric")
		})
	}
}

func TestFindConflict(t *testing.T) {
	existing := []scheduling.Interval{span(8, 0, 9, 0), span(9, 0, 10, 0), span(11, 0, 12, 0)}

	assert.Equal(t, 1, scheduling.FindConflict(span(9, 30, 10, 30), existing))
	assert.Equal(t, -1, scheduling.FindConflict(span(10, 0, 11, 0), existing))
	assert.Equal(t, -1, scheduling.FindConflict(span(10, 0, 11, 0), nil))
	assert.True(t, scheduling.AnyOverlap(span(7, 0, 8, 1), existing))
}

func TestInterval(t *testing.T) {
	interval := span(9, 0, 10, 0)

	assert.False(t, interval.IsDegenerate())
	assert.True(t, span(9, 0, 9, 0).IsDegenerate())
	assert.True(t, interval.Contains(at(9, 0)))
	assert.False(t, interval.Contains(at(10, 0)))
}
