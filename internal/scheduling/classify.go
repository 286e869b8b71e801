package scheduling

import (
	"slices"
	"time"

	resourceModel "spacebook/internal/domains/resource/model"
	"spacebook/shared/principal"
)

type Status string

const (
	StatusAvailable   Status = "available"
	StatusPartial     Status = "partial"
	StatusUnavailable Status = "unavailable"
	StatusRestricted  Status = "restricted"
)

// Classify summarizes a resource on day for p.
//
// booked holds the active bookings of the resource on day. own holds p's
// active bookings on other resources that day; any slot they overlap is
// unavailable to p even if the resource itself is free there. The result
// depends only on the arguments.
func Classify(resource resourceModel.Resource, p principal.Principal, day time.Time, booked, own []Interval, now time.Time) Status {
	if !Bookable(resource, p) {
		return StatusRestricted
	}

	statuses := ResolveSlots(day, slices.Concat(booked, own), now)

	free := 0

	for _, slot := range StandardSlots {
		if statuses[slot.Name].Free() {
			free++
		}
	}

	switch free {
	case len(StandardSlots):
		return StatusAvailable
	case 0:
		return StatusUnavailable
	default:
		return StatusPartial
	}
}
