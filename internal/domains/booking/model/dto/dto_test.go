package dto_test

import (
	"strings"
	"testing"
	"time"

	"spacebook/internal/domains/booking/model"
	"spacebook/internal/domains/booking/model/dto"
	"spacebook/internal/recurrence"
	"spacebook/shared/constant"
	"spacebook/shared/principal"
	"spacebook/shared/timezone"
	"spacebook/shared/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() dto.CreateBookingRequest {
	return dto.CreateBookingRequest{
		ResourceID: "0b0f5c1e-6a43-4a53-9d6b-2f0e1c3d4b5a",
		Date:       "2025-03-03",
		StartTime:  "09:00",
		EndTime:    "10:30",
		Title:      "Planning",
	}
}

func TestCreateBookingRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *dto.CreateBookingRequest)
		wantErr string // "*" accepts any error
	}{
		{name: "valid", mutate: func(_ *dto.CreateBookingRequest) {}},
		{name: "missing title", mutate: func(r *dto.CreateBookingRequest) { r.Title = "" }, wantErr: "title"},
		{name: "bad resource id", mutate: func(r *dto.CreateBookingRequest) { r.ResourceID = "room-1" }, wantErr: "resource_id"},
		{name: "bad date", mutate: func(r *dto.CreateBookingRequest) { r.Date = "2025-02-30" }, wantErr: "date"},
		{name: "bad clock", mutate: func(r *dto.CreateBookingRequest) { r.StartTime = "9am" }, wantErr: "start_time"},
		{
			name: "valid weekly rule",
			mutate: func(r *dto.CreateBookingRequest) {
				r.RecurrenceRule = &dto.RecurrenceRuleRequest{Frequency: "weekly", Count: 4, Weekdays: []string{"monday", "thursday"}}
			},
		},
		{
			name: "rule without bound",
			mutate: func(r *dto.CreateBookingRequest) {
				r.RecurrenceRule = &dto.RecurrenceRuleRequest{Frequency: "daily"}
			},
			wantErr: "recurrence_rule",
		},
		{
			name: "weekdays on monthly rule",
			mutate: func(r *dto.CreateBookingRequest) {
				r.RecurrenceRule = &dto.RecurrenceRuleRequest{Frequency: "monthly", Count: 2, Weekdays: []string{"monday"}}
			},
			wantErr: "recurrence_rule",
		},
		{
			name: "unknown frequency",
			mutate: func(r *dto.CreateBookingRequest) {
				r.RecurrenceRule = &dto.RecurrenceRuleRequest{Frequency: "hourly", Count: 2}
			},
			wantErr: "*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := validator.ValidateStruct(&req)

			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)

			if tt.wantErr != "*" {
				assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
			}
		})
	}
}

func TestCreateBookingRequest_Window(t *testing.T) {
	req := validRequest()

	day, start, end, err := req.Window()

	require.NoError(t, err)
	assert.Equal(t, "2025-03-03", day.Format(constant.DateOnlyFormat))
	assert.Equal(t, 90*time.Minute, end.Sub(start))
	assert.Equal(t, timezone.GetLocation(), start.Location())

	req.EndTime = "09:00"
	_, _, _, err = req.Window()
	assert.Error(t, err)
}

func TestRecurrenceRuleRequest_ToRule(t *testing.T) {
	rule, err := dto.RecurrenceRuleRequest{
		Frequency: "weekly",
		Until:     "2025-04-01",
		Weekdays:  []string{"friday", "monday"},
	}.ToRule()

	require.NoError(t, err)
	assert.Equal(t, recurrence.FrequencyWeekly, rule.Frequency)
	assert.Equal(t, 1, rule.Interval)
	assert.Equal(t, []time.Weekday{time.Friday, time.Monday}, rule.Weekdays)
	require.NotNil(t, rule.Until)
	assert.Equal(t, "2025-04-01", rule.Until.Format(constant.DateOnlyFormat))
}

func TestCreateBookingResponse_FromModels(t *testing.T) {
	req := validRequest()
	day, _, _, err := req.Window()
	require.NoError(t, err)

	p := principal.New("u-1", "Ada", "ada@example.com", constant.RoleUser, nil)
	booking := req.ToModel(p, day, nil)
	booking.StartTime = "09:00:00"

	var res dto.CreateBookingResponse
	res.FromModels([]model.Booking{booking}, nil)

	assert.True(t, res.Any())
	assert.Equal(t, "09:00", res.Created[0].StartTime)
	assert.Equal(t, "ada@example.com", res.Created[0].CreatedBy)
	assert.NotNil(t, res.Skipped)
	assert.Empty(t, res.Skipped)
}
