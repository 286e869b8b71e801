package scheduling

import (
	"time"
)

// Interval is a half-open [Start, End) range of wall-clock time.
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

// IsDegenerate reports whether the interval is empty or inverted.
func (i Interval) IsDegenerate() bool {
	return !i.Start.Before(i.End)
}

func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// Overlaps reports whether a and b share any instant. Touching boundaries
// (a.End == b.Start) do not overlap and degenerate intervals overlap nothing.
// Every conflict check in the service goes through this function.
func Overlaps(a, b Interval) bool {
	if a.IsDegenerate() || b.IsDegenerate() {
		return false
	}

	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}

	end := a.End
	if b.End.Before(end) {
		end = b.End
	}

	return start.Before(end)
}

// FindConflict returns the index of the first existing interval overlapping
// candidate, or -1.
func FindConflict(candidate Interval, existing []Interval) int {
	for idx, other := range existing {
		if Overlaps(candidate, other) {
			return idx
		}
	}

	return -1
}

// AnyOverlap reports whether candidate overlaps any of existing.
func AnyOverlap(candidate Interval, existing []Interval) bool {
	return FindConflict(candidate, existing) >= 0
}
