package scheduling

import (
	"fmt"
	"time"
)

type SlotName string

const (
	SlotFirstHalf  SlotName = "first_half"
	SlotSecondHalf SlotName = "second_half"
	SlotFullDay    SlotName = "full_day"
)

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

// On places the clock on the civil date of day, in day's location.
func (c Clock) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, day.Location())
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// StandardSlot is a fixed named window offered as a booking shortcut. A slot
// with Parts takes its flags from those slots instead of being computed alone.
type StandardSlot struct {
	Name  SlotName
	Start Clock
	End   Clock
	Parts []SlotName
}

func (s StandardSlot) On(day time.Time) Interval {
	return NewInterval(s.Start.On(day), s.End.On(day))
}

// StandardSlots lists the slots in display order. Derived slots come after their parts.
var StandardSlots = []StandardSlot{
	{Name: SlotFirstHalf, Start: Clock{Hour: 8}, End: Clock{Hour: 12}},
	{Name: SlotSecondHalf, Start: Clock{Hour: 13}, End: Clock{Hour: 17}},
	{Name: SlotFullDay, Start: Clock{Hour: 8}, End: Clock{Hour: 17}, Parts: []SlotName{SlotFirstHalf, SlotSecondHalf}},
}

type SlotStatus struct {
	IsBooked bool `json:"is_booked"`
	IsPassed bool `json:"is_passed"`
}

// Free reports whether the slot can still be offered.
func (s SlotStatus) Free() bool {
	return !s.IsBooked && !s.IsPassed
}

// ResolveSlots computes the status of every standard slot on day.
//
// A slot is booked when any interval in booked overlaps it and passed once now
// reaches its end. A derived slot only ORs the flags of its parts, so it can
// never disagree with them.
func ResolveSlots(day time.Time, booked []Interval, now time.Time) map[SlotName]SlotStatus {
	statuses := make(map[SlotName]SlotStatus, len(StandardSlots))

	for _, slot := range StandardSlots {
		window := slot.On(day)

		if len(slot.Parts) == 0 {
			statuses[slot.Name] = SlotStatus{
				IsBooked: AnyOverlap(window, booked),
				IsPassed: !now.Before(window.End),
			}

			continue
		}

		var status SlotStatus

		for _, part := range slot.Parts {
			status.IsBooked = status.IsBooked || statuses[part].IsBooked
			status.IsPassed = status.IsPassed || statuses[part].IsPassed
		}

		statuses[slot.Name] = status
	}

	return statuses
}
