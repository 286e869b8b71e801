package recurrence

import (
	"errors"
	"time"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// HardCap bounds every expansion regardless of configuration.
const HardCap = 366

var (
	ErrUnbounded          = errors.New("recurrence rule needs count or until")
	ErrInvalidFrequency   = errors.New("recurrence frequency must be daily, weekly or monthly")
	ErrInvalidInterval    = errors.New("recurrence interval must be at least 1")
	ErrInvalidCount       = errors.New("recurrence count must be at least 1")
	ErrUntilBeforeSeed    = errors.New("recurrence until must not be before the first date")
	ErrNoOccurrences      = errors.New("recurrence rule produces no occurrences")
	ErrTooManyOccurrences = errors.New("recurrence rule produces too many occurrences")
)

// Rule describes how a booking repeats. Count includes the seed date and Until
// is inclusive. Weekdays only applies to weekly rules.
type Rule struct {
	Frequency Frequency
	Interval  int
	Count     int
	Until     *time.Time
	Weekdays  []time.Weekday
}

func (r Rule) Validate() error {
	switch r.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
	default:
		return ErrInvalidFrequency
	}

	if r.Interval < 1 {
		return ErrInvalidInterval
	}

	if r.Count < 0 {
		return ErrInvalidCount
	}

	if r.Count == 0 && r.Until == nil {
		return ErrUnbounded
	}

	return nil
}

func (r Rule) interval() int {
	return max(r.Interval, 1)
}
