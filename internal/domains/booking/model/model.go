package model

import (
	"fmt"
	"time"

	"spacebook/internal/scheduling"
	"spacebook/shared/model"
	"spacebook/shared/timezone"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID           = "id"
	FieldResourceID   = "resource_id"
	FieldUserID       = "user_id"
	FieldUserName     = "user_name"
	FieldBookingDate  = "booking_date"
	FieldStartTime    = "start_time"
	FieldEndTime      = "end_time"
	FieldTitle        = "title"
	FieldRecurrenceID = "recurrence_id"
	FieldStatus       = "status"
	FieldCheckedInAt  = "checked_in_at"
)

const (
	StatusConfirmed = "confirmed"
	StatusCheckedIn = "checked_in"
	StatusCancelled = "cancelled"
	StatusReleased  = "released"
)

// ActiveStatuses are the statuses that occupy their interval.
var ActiveStatuses = []string{StatusConfirmed, StatusCheckedIn}

const (
	SkipReasonConflict = "conflict"
	SkipReasonPast     = "past"
)

type Booking struct {
	ID           string     `db:"id"`
	ResourceID   string     `db:"resource_id"`
	UserID       string     `db:"user_id"`
	UserName     string     `db:"user_name"`
	BookingDate  time.Time  `db:"booking_date"`
	StartTime    string     `db:"start_time"`
	EndTime      string     `db:"end_time"`
	Title        string     `db:"title"`
	RecurrenceID *string    `db:"recurrence_id"`
	Status       string     `db:"status"`
	CheckedInAt  *time.Time `db:"checked_in_at"`
	model.Metadata
}

func (b Booking) IsActive() bool {
	return b.Status == StatusConfirmed || b.Status == StatusCheckedIn
}

// Day returns the booking date as local midnight in the app timezone.
func (b Booking) Day() time.Time {
	return time.Date(b.BookingDate.Year(), b.BookingDate.Month(), b.BookingDate.Day(), 0, 0, 0, 0, timezone.GetLocation())
}

func (b Booking) Interval() (scheduling.Interval, error) {
	start, err := timezone.Combine(b.Day(), b.StartTime)
	if err != nil {
		return scheduling.Interval{}, fmt.Errorf("booking %s: %w", b.ID, err)
	}

	end, err := timezone.Combine(b.Day(), b.EndTime)
	if err != nil {
		return scheduling.Interval{}, fmt.Errorf("booking %s: %w", b.ID, err)
	}

	return scheduling.NewInterval(start, end), nil
}

// Intervals converts bookings to intervals, failing on the first unparsable row.
func Intervals(bookings []Booking) ([]scheduling.Interval, error) {
	intervals := make([]scheduling.Interval, 0, len(bookings))

	for _, booking := range bookings {
		interval, err := booking.Interval()
		if err != nil {
			return nil, err
		}

		intervals = append(intervals, interval)
	}

	return intervals, nil
}

// Skipped reports an occurrence that was not created.
type Skipped struct {
	Date   time.Time
	Reason string
}
