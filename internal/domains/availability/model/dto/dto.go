package dto

import (
	"fmt"
	"time"

	bookingModel "spacebook/internal/domains/booking/model"
	"spacebook/internal/scheduling"
	"spacebook/shared/constant"
	"spacebook/shared/timezone"
)

// BookedSlot is an active booking as shown on the availability view.
type BookedSlot struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	Title     string `json:"title"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status"`
}

func (b *BookedSlot) FromModel(m bookingModel.Booking) {
	b.ID = m.ID
	b.UserID = m.UserID
	b.UserName = m.UserName
	b.Title = m.Title
	b.StartTime = clock(m.StartTime)
	b.EndTime = clock(m.EndTime)
	b.Status = m.Status
}

// Interval places the slot on day.
func (b BookedSlot) Interval(day time.Time) (scheduling.Interval, error) {
	start, err := timezone.Combine(day, b.StartTime)
	if err != nil {
		return scheduling.Interval{}, fmt.Errorf("booked slot %s: %w", b.ID, err)
	}

	end, err := timezone.Combine(day, b.EndTime)
	if err != nil {
		return scheduling.Interval{}, fmt.Errorf("booked slot %s: %w", b.ID, err)
	}

	return scheduling.NewInterval(start, end), nil
}

func BookedSlotsFromModels(models []bookingModel.Booking) []BookedSlot {
	slots := make([]BookedSlot, len(models))
	for i, m := range models {
		slots[i].FromModel(m)
	}

	return slots
}

func clock(value string) string {
	if len(value) > len(constant.ClockFormat) {
		return value[:len(constant.ClockFormat)]
	}

	return value
}

type AvailabilityResponse struct {
	ResourceID           string                                        `json:"resource_id"`
	Date                 string                                        `json:"date"`
	BookedSlots          []BookedSlot                                  `json:"booked_slots"`
	StandardSlotStatuses map[scheduling.SlotName]scheduling.SlotStatus `json:"standard_slot_statuses"`
	CanBook              bool                                          `json:"can_book"`
}

type StatusResponse struct {
	ResourceID string            `json:"resource_id"`
	Name       string            `json:"name,omitempty"`
	Date       string            `json:"date"`
	Status     scheduling.Status `json:"status"`
}

type StatusesResponse struct {
	Date     string           `json:"date"`
	Statuses []StatusResponse `json:"statuses"`
}
