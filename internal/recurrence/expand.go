package recurrence

import (
	"slices"
	"time"

	"spacebook/shared/failure"
)

// Expand lists the dates rule produces starting at seed, in ascending order.
//
// The seed itself is always the first occurrence. limit is the configured
// ceiling; values outside (0, HardCap] fall back to HardCap. Expansion is pure:
// the same inputs always yield the same dates, so a failed request can simply be
// retried. Errors are returned as bad request failures.
func Expand(seed time.Time, rule Rule, limit int) ([]time.Time, error) {
	if err := rule.Validate(); err != nil {
		return nil, failure.BadRequest(err) // nolint:wrapcheck
	}

	if limit <= 0 || limit > HardCap {
		limit = HardCap
	}

	seed = dateOf(seed)

	var until time.Time
	if rule.Until != nil {
		until = time.Date(rule.Until.Year(), rule.Until.Month(), rule.Until.Day(), 0, 0, 0, 0, seed.Location())
		if until.Before(seed) {
			return nil, failure.BadRequest(ErrUntilBeforeSeed) // nolint:wrapcheck
		}
	}

	next := generator(seed, rule)
	dates := make([]time.Time, 0, min(limit, max(rule.Count, 1)))

	for {
		date, ok := next()
		if !ok {
			break
		}

		if !until.IsZero() && date.After(until) {
			break
		}

		if rule.Count > 0 && len(dates) == rule.Count {
			break
		}

		if len(dates) == limit {
			return nil, failure.BadRequest(ErrTooManyOccurrences) // nolint:wrapcheck
		}

		dates = append(dates, date)
	}

	if len(dates) == 0 {
		return nil, failure.BadRequest(ErrNoOccurrences) // nolint:wrapcheck
	}

	return dates, nil
}

// generator yields candidate dates in ascending order. It never terminates on
// its own; Expand stops it through count, until or the ceiling.
func generator(seed time.Time, rule Rule) func() (time.Time, bool) {
	step := rule.interval()

	switch rule.Frequency {
	case FrequencyWeekly:
		if len(rule.Weekdays) > 0 {
			return weekdays(seed, step, rule.Weekdays)
		}

		return fixed(seed, 7*step)
	case FrequencyMonthly:
		return monthly(seed, step)
	default:
		return fixed(seed, step)
	}
}

func fixed(seed time.Time, days int) func() (time.Time, bool) {
	n := 0

	return func() (time.Time, bool) {
		date := seed.AddDate(0, 0, days*n)
		n++

		return date, true
	}
}

// monthly skips months that do not contain the seed's day of month instead of
// letting time.Date roll the date into the following month.
func monthly(seed time.Time, step int) func() (time.Time, bool) {
	n := 0

	return func() (time.Time, bool) {
		for attempts := 0; attempts < 12*HardCap; attempts++ {
			first := time.Date(seed.Year(), seed.Month()+time.Month(n*step), 1, 0, 0, 0, 0, seed.Location())
			n++

			date := first.AddDate(0, 0, seed.Day()-1)
			if date.Month() == first.Month() {
				return date, true
			}
		}

		return time.Time{}, false
	}
}

// weekdays emits the selected weekdays of every step-th week, weeks starting
// on Monday, beginning with the seed's week and skipping days before the seed.
func weekdays(seed time.Time, step int, days []time.Weekday) func() (time.Time, bool) {
	offsets := make([]int, 0, len(days))
	for _, day := range days {
		offset := mondayOffset(day)
		if !slices.Contains(offsets, offset) {
			offsets = append(offsets, offset)
		}
	}

	slices.Sort(offsets)

	monday := seed.AddDate(0, 0, -mondayOffset(seed.Weekday()))
	emittedSeed := false
	week, idx := 0, 0

	return func() (time.Time, bool) {
		if !emittedSeed {
			emittedSeed = true

			return seed, true
		}

		for {
			if idx == len(offsets) {
				idx = 0
				week++
			}

			date := monday.AddDate(0, 0, week*7*step+offsets[idx])
			idx++

			if date.After(seed) {
				return date, true
			}
		}
	}
}

func mondayOffset(day time.Weekday) int {
	return (int(day) + 6) % 7
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
