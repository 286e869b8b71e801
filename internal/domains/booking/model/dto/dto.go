package dto

import (
	"errors"
	"fmt"
	"time"

	"spacebook/config"
	"spacebook/internal/domains/booking/model"
	"spacebook/internal/recurrence"
	"spacebook/shared"
	"spacebook/shared/constant"
	gDto "spacebook/shared/dto"
	gModel "spacebook/shared/model"
	"spacebook/shared/principal"
	"spacebook/shared/timezone"

	"github.com/google/uuid"
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

type RecurrenceRuleRequest struct {
	Frequency string   `json:"frequency" validate:"required,oneof=daily weekly monthly"`
	Interval  int      `json:"interval"  validate:"omitempty,min=1"`
	Count     int      `json:"count"     validate:"omitempty,min=1"`
	Until     string   `json:"until"     validate:"omitempty,date"`
	Weekdays  []string `json:"weekdays"  validate:"omitempty,dive,oneof=sunday monday tuesday wednesday thursday friday saturday"`
}

func (r RecurrenceRuleRequest) ToRule() (recurrence.Rule, error) {
	rule := recurrence.Rule{
		Frequency: recurrence.Frequency(r.Frequency),
		Interval:  max(r.Interval, 1),
		Count:     r.Count,
	}

	if r.Until != constant.Empty {
		until, err := timezone.ParseDate(r.Until)
		if err != nil {
			return rule, fmt.Errorf("invalid until: %w", err)
		}

		rule.Until = &until
	}

	for _, name := range r.Weekdays {
		day, ok := weekdays[name]
		if !ok {
			return rule, fmt.Errorf("invalid weekday %q", name)
		}

		rule.Weekdays = append(rule.Weekdays, day)
	}

	return rule, nil
}

// Validate is invoked by the "rule" validation tag.
func (r RecurrenceRuleRequest) Validate(cfg *config.Config) error {
	rule, err := r.ToRule()
	if err != nil {
		return err
	}

	if err = rule.Validate(); err != nil {
		return err //nolint:wrapcheck
	}

	if len(rule.Weekdays) > 0 && rule.Frequency != recurrence.FrequencyWeekly {
		return errors.New("weekdays only apply to weekly rules")
	}

	if cfg != nil && cfg.Booking.MaxOccurrences > 0 && rule.Count > cfg.Booking.MaxOccurrences {
		return recurrence.ErrTooManyOccurrences
	}

	return nil
}

type CreateBookingRequest struct {
	ResourceID     string                 `json:"resource_id"     validate:"required,uuid"`
	Date           string                 `json:"date"            validate:"required,date"`
	StartTime      string                 `json:"start_time"      validate:"required,clock"`
	EndTime        string                 `json:"end_time"        validate:"required,clock"`
	Title          string                 `json:"title"           validate:"required,max=200"`
	RecurrenceRule *RecurrenceRuleRequest `json:"recurrence_rule" validate:"omitempty,rule"`
}

// Window parses the request's first occurrence. start must be before end.
func (c *CreateBookingRequest) Window() (day, start, end time.Time, err error) {
	day, err = timezone.ParseDate(c.Date)
	if err != nil {
		return day, start, end, fmt.Errorf("invalid date: %w", err)
	}

	start, err = timezone.Combine(day, c.StartTime)
	if err != nil {
		return day, start, end, fmt.Errorf("invalid start_time: %w", err)
	}

	end, err = timezone.Combine(day, c.EndTime)
	if err != nil {
		return day, start, end, fmt.Errorf("invalid end_time: %w", err)
	}

	if !start.Before(end) {
		return day, start, end, errors.New("start_time must be before end_time")
	}

	return day, start, end, nil
}

// ToModel builds the occurrence of the request on day.
func (c *CreateBookingRequest) ToModel(p principal.Principal, day time.Time, recurrenceID *string) model.Booking {
	now := timezone.Now()
	user := p.Email
	if user == constant.Empty {
		user = p.ID
	}

	return model.Booking{
		ID:           uuid.NewString(),
		ResourceID:   c.ResourceID,
		UserID:       p.ID,
		UserName:     p.Name,
		BookingDate:  day,
		StartTime:    c.StartTime,
		EndTime:      c.EndTime,
		Title:        c.Title,
		RecurrenceID: recurrenceID,
		Status:       model.StatusConfirmed,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type BookingResponse struct {
	ID           string  `json:"id"`
	ResourceID   string  `json:"resource_id"`
	UserID       string  `json:"user_id"`
	UserName     string  `json:"user_name"`
	Date         string  `json:"date"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	Title        string  `json:"title"`
	RecurrenceID *string `json:"recurrence_id"`
	Status       string  `json:"status"`
	CheckedInAt  *string `json:"checked_in_at"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(m model.Booking) {
	r.ID = m.ID
	r.ResourceID = m.ResourceID
	r.UserID = m.UserID
	r.UserName = m.UserName
	r.Date = m.Day().Format(constant.DateOnlyFormat)
	r.StartTime = clock(m.StartTime)
	r.EndTime = clock(m.EndTime)
	r.Title = m.Title
	r.RecurrenceID = m.RecurrenceID
	r.Status = m.Status

	if m.CheckedInAt != nil {
		checkedIn := timezone.Format(*m.CheckedInAt, constant.DateFormat)
		r.CheckedInAt = &checkedIn
	}

	r.Metadata.FromModel(m.Metadata)
}

// clock trims the seconds postgres adds to TIME values.
func clock(value string) string {
	if len(value) > len(constant.ClockFormat) {
		return value[:len(constant.ClockFormat)]
	}

	return value
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

type SkippedResponse struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// CreateBookingResponse always carries both lists, even when one is empty.
type CreateBookingResponse struct {
	Created []BookingResponse `json:"created"`
	Skipped []SkippedResponse `json:"skipped"`
}

func (r *CreateBookingResponse) FromModels(created []model.Booking, skipped []model.Skipped) {
	r.Created = make([]BookingResponse, len(created))
	for i, mod := range created {
		r.Created[i].FromModel(mod)
	}

	r.Skipped = make([]SkippedResponse, len(skipped))
	for i, skip := range skipped {
		r.Skipped[i] = SkippedResponse{Date: skip.Date.Format(constant.DateOnlyFormat), Reason: skip.Reason}
	}
}

// Any reports whether at least one occurrence was committed.
func (r *CreateBookingResponse) Any() bool {
	return len(r.Created) > 0
}
