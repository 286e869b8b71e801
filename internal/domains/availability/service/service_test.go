package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"spacebook/config"
	otelMocks "spacebook/infras/otel/mocks"
	"spacebook/internal/domains/availability/model/dto"
	"spacebook/internal/domains/availability/service"
	bookingMocks "spacebook/internal/domains/booking/mocks"
	bookingModel "spacebook/internal/domains/booking/model"
	resourceMocks "spacebook/internal/domains/resource/mocks"
	resourceModel "spacebook/internal/domains/resource/model"
	"spacebook/internal/scheduling"
	cacheMocks "spacebook/shared/cache/mocks"
	"spacebook/shared/constant"
	gDto "spacebook/shared/dto"
	"spacebook/shared/failure"
	"spacebook/shared/principal"
	"spacebook/shared/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	roomA  = "a0000000-0000-4000-8000-000000000001"
	roomB  = "b0000000-0000-4000-8000-000000000002"
	userID = "c0000000-0000-4000-8000-000000000003"
	date   = "2025-03-03"
)

var errCacheMiss = errors.New("redis: nil")

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 3, hour, minute, 0, 0, timezone.GetLocation())
}

func asUser() context.Context {
	return principal.WithContext(context.Background(), principal.New(userID, "Ada", "ada@example.com", constant.RoleUser, nil))
}

func asAdmin() context.Context {
	return principal.WithContext(context.Background(), principal.New(userID, "Ada", "ada@example.com", constant.RoleAdmin, nil))
}

func room(id string, status string) resourceModel.Resource {
	return resourceModel.Resource{ID: id, Name: "Room " + id[:1], Status: status}
}

func booking(resourceID, owner, start, end string) bookingModel.Booking {
	return bookingModel.Booking{
		ID:          resourceID[:1] + "-" + start,
		ResourceID:  resourceID,
		UserID:      owner,
		BookingDate: at(0, 0),
		StartTime:   start + ":00",
		EndTime:     end + ":00",
		Status:      bookingModel.StatusConfirmed,
	}
}

type fixture struct {
	resources *resourceMocks.MockResource
	bookings  *bookingMocks.MockBooking
	cache     *cacheMocks.MockRedisCache
}

func newFixture(t *testing.T, now time.Time) (fixture, service.Availability) {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Booking.AvailabilityTTL = 30

	f := fixture{
		resources: resourceMocks.NewMockResource(ctrl),
		bookings:  bookingMocks.NewMockBooking(ctrl),
		cache:     cacheMocks.NewMockRedisCache(ctrl),
	}

	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	svc := service.NewWithClock(f.resources, f.bookings, cfg, f.cache, otelMocks.NewOtel(), func() time.Time { return now })

	return f, svc
}

func TestAvailabilityService_Resolve(t *testing.T) {
	t.Run("cache miss loads bookings and marks elapsed slots", func(t *testing.T) {
		f, svc := newFixture(t, at(12, 30))

		f.resources.EXPECT().Get(gomock.Any(), gomock.Any()).Return(room(roomA, resourceModel.StatusPublished), nil)
		f.cache.EXPECT().Get(gomock.Any(), "availability:"+roomA+":"+date, gomock.Any()).Return(errCacheMiss)
		f.bookings.EXPECT().ListActiveOnDate(gomock.Any(), at(0, 0), roomA).
			Return([]bookingModel.Booking{booking(roomA, "someone", "14:00", "15:00")}, nil)

		res, err := svc.Resolve(asUser(), roomA, date)

		require.NoError(t, err)
		assert.Equal(t, date, res.Date)
		assert.True(t, res.CanBook)
		require.Len(t, res.BookedSlots, 1)
		assert.Equal(t, "14:00", res.BookedSlots[0].StartTime)
		assert.Equal(t, map[scheduling.SlotName]scheduling.SlotStatus{
			scheduling.SlotFirstHalf:  {IsPassed: true},
			scheduling.SlotSecondHalf: {IsBooked: true},
			scheduling.SlotFullDay:    {IsBooked: true, IsPassed: true},
		}, res.StandardSlotStatuses)
	})

	t.Run("cache hit skips the database", func(t *testing.T) {
		f, svc := newFixture(t, at(7, 0))

		f.resources.EXPECT().Get(gomock.Any(), gomock.Any()).Return(room(roomA, resourceModel.StatusPublished), nil)
		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, value any) error {
				slots, ok := value.(*[]dto.BookedSlot)
				require.True(t, ok)

				*slots = []dto.BookedSlot{{ID: "x", StartTime: "08:00", EndTime: "09:00"}}

				return nil
			})

		res, err := svc.Resolve(asUser(), roomA, date)

		require.NoError(t, err)
		assert.True(t, res.StandardSlotStatuses[scheduling.SlotFirstHalf].IsBooked)
		assert.False(t, res.StandardSlotStatuses[scheduling.SlotSecondHalf].IsBooked)
	})

	t.Run("malformed date", func(t *testing.T) {
		_, svc := newFixture(t, at(7, 0))

		_, err := svc.Resolve(asUser(), roomA, "2025/03/03")

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("unknown resource", func(t *testing.T) {
		f, svc := newFixture(t, at(7, 0))

		f.resources.EXPECT().Get(gomock.Any(), gomock.Any()).Return(resourceModel.Resource{}, nil)

		_, err := svc.Resolve(asUser(), roomA, date)

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("draft hidden from users", func(t *testing.T) {
		f, svc := newFixture(t, at(7, 0))

		f.resources.EXPECT().Get(gomock.Any(), gomock.Any()).Return(room(roomA, resourceModel.StatusDraft), nil)

		_, err := svc.Resolve(asUser(), roomA, date)

		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("repository error", func(t *testing.T) {
		f, svc := newFixture(t, at(7, 0))

		f.resources.EXPECT().Get(gomock.Any(), gomock.Any()).Return(room(roomA, resourceModel.StatusPublished), nil)
		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errCacheMiss)
		f.bookings.EXPECT().ListActiveOnDate(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

		_, err := svc.Resolve(asUser(), roomA, date)

		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	})
}

func TestAvailabilityService_Classify(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		admin    bool
		resource resourceModel.Resource
		booked   []bookingModel.Booking
		own      []bookingModel.Booking
		expected scheduling.Status
	}{
		{
			name:     "free",
			now:      at(7, 0),
			resource: room(roomA, resourceModel.StatusPublished),
			expected: scheduling.StatusAvailable,
		},
		{
			name:     "morning taken",
			now:      at(7, 0),
			resource: room(roomA, resourceModel.StatusPublished),
			booked:   []bookingModel.Booking{booking(roomA, "someone", "09:00", "10:00")},
			expected: scheduling.StatusPartial,
		},
		{
			name:     "own booking elsewhere in the afternoon",
			now:      at(7, 0),
			resource: room(roomA, resourceModel.StatusPublished),
			own:      []bookingModel.Booking{booking(roomB, userID, "13:00", "14:00")},
			expected: scheduling.StatusPartial,
		},
		{
			name:     "own booking on the same resource only counts once",
			now:      at(7, 0),
			resource: room(roomA, resourceModel.StatusPublished),
			booked:   []bookingModel.Booking{booking(roomA, userID, "13:00", "14:00")},
			own:      []bookingModel.Booking{booking(roomA, userID, "13:00", "14:00")},
			expected: scheduling.StatusPartial,
		},
		{
			name:     "elapsed day",
			now:      at(18, 0),
			resource: room(roomA, resourceModel.StatusPublished),
			expected: scheduling.StatusUnavailable,
		},
		{
			name: "admin only",
			now:  at(7, 0),
			resource: func() resourceModel.Resource {
				r := room(roomA, resourceModel.StatusPublished)
				restriction := resourceModel.RestrictionAdminOnly
				r.BookingRestriction = &restriction

				return r
			}(),
			expected: scheduling.StatusRestricted,
		},
		{
			name:     "draft is restricted for users",
			now:      at(7, 0),
			resource: room(roomA, resourceModel.StatusDraft),
			expected: scheduling.StatusRestricted,
		},
		{
			name:     "archived is restricted for admins",
			now:      at(7, 0),
			admin:    true,
			resource: room(roomA, resourceModel.StatusArchived),
			expected: scheduling.StatusRestricted,
		},
		{
			name:     "draft is classified for admins",
			now:      at(7, 0),
			admin:    true,
			resource: room(roomA, resourceModel.StatusDraft),
			expected: scheduling.StatusAvailable,
		},
		{
			name:     "lunch gap booking keeps the day available",
			now:      at(7, 0),
			resource: room(roomA, resourceModel.StatusPublished),
			booked:   []bookingModel.Booking{booking(roomA, "someone", "12:00", "13:00")},
			expected: scheduling.StatusAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, svc := newFixture(t, tt.now)

			ctx := asUser()
			if tt.admin {
				ctx = asAdmin()
			}

			f.resources.EXPECT().Get(gomock.Any(), gomock.Any()).Return(tt.resource, nil)

			if tt.expected != scheduling.StatusRestricted {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errCacheMiss)
				f.bookings.EXPECT().ListActiveOnDate(gomock.Any(), gomock.Any(), roomA).Return(tt.booked, nil)
				f.bookings.EXPECT().ListActiveForUser(gomock.Any(), userID, at(0, 0)).Return(tt.own, nil)
			}

			res, err := svc.Classify(ctx, roomA, date)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, res.Status)
			assert.Equal(t, roomA, res.ResourceID)
		})
	}

	t.Run("unknown resource", func(t *testing.T) {
		f, svc := newFixture(t, at(7, 0))

		f.resources.EXPECT().Get(gomock.Any(), gomock.Any()).Return(resourceModel.Resource{}, nil)

		_, err := svc.Classify(asUser(), roomA, date)

		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("anonymous", func(t *testing.T) {
		_, svc := newFixture(t, at(7, 0))

		_, err := svc.Classify(context.Background(), roomA, date)

		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})
}

func TestAvailabilityService_ClassifyMany(t *testing.T) {
	t.Run("one query for every resource", func(t *testing.T) {
		f, svc := newFixture(t, at(7, 0))
		floor := "f0000000-0000-4000-8000-000000000009"

		f.resources.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]resourceModel.Resource, error) {
				where, args := filter.GetWhereClause()

				assert.Contains(t, where, "resources.floor_map_id = :floor_map_id")
				assert.Equal(t, resourceModel.StatusPublished, args["status"])

				return []resourceModel.Resource{room(roomA, resourceModel.StatusPublished), room(roomB, resourceModel.StatusPublished)}, nil
			})
		f.bookings.EXPECT().ListActiveOnDate(gomock.Any(), at(0, 0), roomA, roomB).
			Return([]bookingModel.Booking{
				booking(roomB, "someone", "08:00", "12:00"),
				booking(roomB, "someone", "13:00", "17:00"),
			}, nil)
		f.bookings.EXPECT().ListActiveForUser(gomock.Any(), userID, gomock.Any()).Return(nil, nil)

		res, err := svc.ClassifyMany(asUser(), date, &floor)

		require.NoError(t, err)
		require.Len(t, res.Statuses, 2)
		assert.Equal(t, scheduling.StatusAvailable, res.Statuses[0].Status)
		assert.Equal(t, scheduling.StatusUnavailable, res.Statuses[1].Status)
	})

	t.Run("admins also see drafts", func(t *testing.T) {
		f, svc := newFixture(t, at(7, 0))

		f.resources.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]resourceModel.Resource, error) {
				where, _ := filter.GetWhereClause()
				assert.Contains(t, where, "resources.status != :status")

				return []resourceModel.Resource{room(roomA, resourceModel.StatusDraft)}, nil
			})
		f.bookings.EXPECT().ListActiveOnDate(gomock.Any(), gomock.Any(), roomA).Return(nil, nil)
		f.bookings.EXPECT().ListActiveForUser(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

		res, err := svc.ClassifyMany(asAdmin(), date, nil)

		require.NoError(t, err)
		require.Len(t, res.Statuses, 1)
		assert.Equal(t, scheduling.StatusAvailable, res.Statuses[0].Status)
	})

	t.Run("no resources", func(t *testing.T) {
		f, svc := newFixture(t, at(7, 0))

		f.resources.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]resourceModel.Resource{}, nil)

		res, err := svc.ClassifyMany(asUser(), date, nil)

		require.NoError(t, err)
		assert.NotNil(t, res.Statuses)
		assert.Empty(t, res.Statuses)
	})
}
