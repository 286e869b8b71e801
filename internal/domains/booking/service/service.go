package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spacebook/config"
	"spacebook/infras/otel"
	availabilityModel "spacebook/internal/domains/availability/model"
	"spacebook/internal/domains/booking/model"
	"spacebook/internal/domains/booking/model/dto"
	"spacebook/internal/domains/booking/repository"
	resourceModel "spacebook/internal/domains/resource/model"
	resourceRepo "spacebook/internal/domains/resource/repository"
	"spacebook/internal/recurrence"
	"spacebook/internal/scheduling"
	"spacebook/shared"
	"spacebook/shared/cache"
	"spacebook/shared/constant"
	gDto "spacebook/shared/dto"
	"spacebook/shared/failure"
	"spacebook/shared/principal"
	"spacebook/shared/timezone"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetAllBooking = "booking:gets"
	cacheCountBooking  = "booking:count"
)

var sortableColumns = []string{model.FieldBookingDate, model.FieldStartTime, model.FieldStatus, constant.FieldCreatedAt}

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.CreateBookingResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	Mine(ctx context.Context, params gDto.QueryParams) (dto.GetBookingsResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	Cancel(ctx context.Context, id string) error
	CheckIn(ctx context.Context, id string) error
	ReleaseNoShows(ctx context.Context) (int, error)
}

type serviceImpl struct {
	repo         repository.Booking
	resourceRepo resourceRepo.Resource
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
	now          func() time.Time
}

func New(repo repository.Booking, resourceRepo resourceRepo.Resource, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Booking {
	return NewWithClock(repo, resourceRepo, cfg, cache, otel, timezone.Now)
}

// NewWithClock is New with an explicit source of the current time.
func NewWithClock(repo repository.Booking, resourceRepo resourceRepo.Resource, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, now func() time.Time) Booking {
	return &serviceImpl{
		repo:         repo,
		resourceRepo: resourceRepo,
		cfg:          cfg,
		cache:        cache,
		otel:         otel,
		now:          now,
	}
}

// Create books req for the caller, once or for every occurrence of its
// recurrence rule.
//
// Request level problems fail the whole request before anything is written.
// Per occurrence problems never fail it: an occurrence that overlaps an active
// booking, or that has already ended, is reported in Skipped while the others
// are committed. Each occurrence is checked and inserted under the lock of its
// (resource, date) pair.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.CreateBookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	p, ok := principal.FromContext(ctx)
	if !ok {
		return res, failure.Unauthorized("authentication required") // nolint:wrapcheck
	}

	day, _, _, err := req.Window()
	if err != nil {
		return res, failure.BadRequest(err) // nolint:wrapcheck
	}

	resource, err := s.resourceRepo.Get(ctx, shared.FilterByID(req.ResourceID, resourceModel.FieldID, resourceModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("resource_id", req.ResourceID).Msg("failed to get resource")

		return res, fmt.Errorf("failed to get resource: %w", err)
	}

	if resource.ID == constant.Empty {
		return res, failure.BadRequestFromString("resource does not exist") // nolint:wrapcheck
	}

	if !scheduling.Bookable(resource, p) {
		if !scheduling.Open(resource, p) {
			return res, failure.BadRequestFromString("resource is not open for booking") // nolint:wrapcheck
		}

		return res, failure.Forbidden("you are not allowed to book this resource") // nolint:wrapcheck
	}

	dates, recurrenceID, err := s.occurrences(day, req.RecurrenceRule)
	if err != nil {
		return res, err
	}

	// A started request is carried through even if the caller goes away.
	ctx = context.WithoutCancel(ctx)
	now := s.now()

	var (
		created []model.Booking
		skipped []model.Skipped
	)

	for _, date := range dates {
		booking := req.ToModel(p, date, recurrenceID)

		reason, err := s.commit(ctx, booking, now)
		if err != nil {
			s.invalidate(ctx, req.ResourceID, created)

			return res, err
		}

		if reason != constant.Empty {
			log.Info().Str("resource_id", req.ResourceID).Time("date", date).Str("reason", reason).Msg("booking occurrence skipped")

			skipped = append(skipped, model.Skipped{Date: date, Reason: reason})

			continue
		}

		created = append(created, booking)
	}

	s.invalidate(ctx, req.ResourceID, created)

	res.FromModels(created, skipped)

	return res, nil
}

func (s *serviceImpl) occurrences(day time.Time, rule *dto.RecurrenceRuleRequest) ([]time.Time, *string, error) {
	if rule == nil {
		return []time.Time{day}, nil, nil
	}

	parsed, err := rule.ToRule()
	if err != nil {
		return nil, nil, failure.BadRequest(err) // nolint:wrapcheck
	}

	dates, err := recurrence.Expand(day, parsed, s.cfg.Booking.MaxOccurrences)
	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	recurrenceID := uuid.NewString()

	return dates, &recurrenceID, nil
}

// commit inserts booking unless it has ended or conflicts, in which case the
// skip reason is returned.
func (s *serviceImpl) commit(ctx context.Context, booking model.Booking, now time.Time) (string, error) {
	interval, err := booking.Interval()
	if err != nil {
		return constant.Empty, failure.BadRequest(err) // nolint:wrapcheck
	}

	if !now.Before(interval.End) {
		return model.SkipReasonPast, nil
	}

	reason := constant.Empty

	err = s.repo.WithinDateLock(ctx, booking.ResourceID, booking.Day(), func(store repository.DateStore) error {
		existing, err := store.ListActive(ctx)
		if err != nil {
			return fmt.Errorf("failed to list bookings: %w", err)
		}

		intervals, err := model.Intervals(existing)
		if err != nil {
			return err
		}

		if idx := scheduling.FindConflict(interval, intervals); idx >= 0 {
			log.Debug().Str("booking_id", existing[idx].ID).Msg("occurrence overlaps an active booking")

			reason = model.SkipReasonConflict

			return nil
		}

		return store.Insert(ctx, booking)
	})
	if isExclusionViolation(err) {
		return model.SkipReasonConflict, nil
	}

	if err != nil {
		log.Error().Err(err).Str("resource_id", booking.ResourceID).Msg("failed to create booking")

		return constant.Empty, fmt.Errorf("failed to create booking: %w", err)
	}

	return reason, nil
}

// isExclusionViolation reports whether the database rejected an overlapping
// active booking.
func isExclusionViolation(err error) bool {
	var pqErr *pq.Error

	return errors.As(err, &pqErr) && string(pqErr.Code) == constant.PqErrorCodeExclusionViolation
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	params.Sanitize(sortableColumns...)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, params, filter)
	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.count(ctx, params, filter)
	if err != nil {
		return res, err
	}

	bookings, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(bookings, total, params.Limit)

	go func() {
		if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) count(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, params, filter)
	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	go func() {
		if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking count to cache")
		}
	}()

	return res, nil
}

// Mine lists the caller's bookings, newest date first unless asked otherwise.
func (s *serviceImpl) Mine(ctx context.Context, params gDto.QueryParams) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Mine")
	defer scope.End()
	defer scope.TraceIfError(err)

	p, ok := principal.FromContext(ctx)
	if !ok {
		return res, failure.Unauthorized("authentication required") // nolint:wrapcheck
	}

	filter := gDto.FilterGroup{}.And(gDto.Filter{
		Field:    model.FieldUserID,
		Value:    p.ID,
		Operator: gDto.FilterOperatorEq,
		Table:    model.TableName,
	})

	return s.GetAll(ctx, params, filter)
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.findOwned(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(booking)

	return res, nil
}

// findOwned loads a booking the caller may act on: their own, or any for admins.
func (s *serviceImpl) findOwned(ctx context.Context, id string) (model.Booking, error) {
	p, ok := principal.FromContext(ctx)
	if !ok {
		return model.Booking{}, failure.Unauthorized("authentication required") // nolint:wrapcheck
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	if !p.IsAdmin && booking.UserID != p.ID {
		return booking, failure.Forbidden("booking belongs to another user") // nolint:wrapcheck
	}

	return booking, nil
}

// Cancel frees the booking's interval. Cancelling twice is a no-op.
func (s *serviceImpl) Cancel(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Cancel")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.findOwned(ctx, id)
	if err != nil {
		return err
	}

	if booking.Status == model.StatusCancelled {
		return nil
	}

	if !booking.IsActive() {
		return failure.BadRequestFromString("booking is no longer active") // nolint:wrapcheck
	}

	fields := shared.TransformFields(struct {
		Status string `db:"status"`
	}{Status: model.StatusCancelled}, principal.Username(ctx))

	return s.transition(ctx, booking, fields)
}

// CheckIn confirms attendance from CHECK_IN_GRACE_MINUTES before the start
// until the end of the booking.
func (s *serviceImpl) CheckIn(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.CheckIn")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.findOwned(ctx, id)
	if err != nil {
		return err
	}

	if booking.Status == model.StatusCheckedIn {
		return nil
	}

	if booking.Status != model.StatusConfirmed {
		return failure.BadRequestFromString("booking is no longer active") // nolint:wrapcheck
	}

	interval, err := booking.Interval()
	if err != nil {
		return fmt.Errorf("failed to read booking interval: %w", err)
	}

	now := s.now()
	opens := interval.Start.Add(-s.gracePeriod())

	if now.Before(opens) || !now.Before(interval.End) {
		return failure.BadRequestFromString(fmt.Sprintf(
			"check-in is open from %s until %s",
			timezone.Format(opens, constant.ClockFormat),
			timezone.Format(interval.End, constant.ClockFormat),
		)) // nolint:wrapcheck
	}

	fields := shared.TransformFields(struct {
		Status      string    `db:"status"`
		CheckedInAt time.Time `db:"checked_in_at"`
	}{Status: model.StatusCheckedIn, CheckedInAt: now}, principal.Username(ctx))

	return s.transition(ctx, booking, fields)
}

// transition applies fields only while the booking still has the status it
// was read with, so concurrent cancel and check-in cannot both win.
func (s *serviceImpl) transition(ctx context.Context, booking model.Booking, fields map[string]any) error {
	filter := shared.FilterByID(booking.ID, model.FieldID, model.TableName).And(gDto.Filter{
		Field:    model.FieldStatus,
		ArgName:  "current_status",
		Value:    booking.Status,
		Operator: gDto.FilterOperatorEq,
		Table:    model.TableName,
	})

	affected, err := s.repo.UpdateAffected(ctx, fields, filter)
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to update booking")

		return fmt.Errorf("failed to update booking: %w", err)
	}

	if affected == 0 {
		return failure.Conflict("booking was modified concurrently, retry") // nolint:wrapcheck
	}

	s.invalidate(ctx, booking.ResourceID, []model.Booking{booking})

	return nil
}

// ReleaseNoShows releases confirmed bookings nobody checked into within the
// grace period after their start. It returns how many were released.
func (s *serviceImpl) ReleaseNoShows(ctx context.Context) (released int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.ReleaseNoShows")
	defer scope.End()
	defer scope.TraceIfError(err)

	now := timezone.ToAppTime(s.now())

	bookings, err := s.repo.ReleaseNoShows(ctx, now.Add(-s.gracePeriod()), now)
	if err != nil {
		log.Error().Err(err).Msg("failed to release no-show bookings")

		return 0, fmt.Errorf("failed to release no-show bookings: %w", err)
	}

	byResource := map[string][]model.Booking{}
	for _, booking := range bookings {
		byResource[booking.ResourceID] = append(byResource[booking.ResourceID], booking)
	}

	for resourceID, group := range byResource {
		s.invalidate(ctx, resourceID, group)
	}

	return len(bookings), nil
}

func (s *serviceImpl) gracePeriod() time.Duration {
	return time.Duration(s.cfg.Booking.CheckInGraceMinutes) * time.Minute
}

// invalidate drops the availability snapshots touched by bookings and the
// cached booking lists.
func (s *serviceImpl) invalidate(ctx context.Context, resourceID string, bookings []model.Booking) {
	if len(bookings) == 0 {
		return
	}

	keys := make([]string, 0, len(bookings))
	for _, booking := range bookings {
		keys = append(keys, availabilityModel.CacheKey(resourceID, booking.Day().Format(constant.DateOnlyFormat)))
	}

	go func() {
		c := context.WithoutCancel(ctx)

		for _, key := range keys {
			if err := s.cache.Delete(c, key); err != nil {
				log.Error().Err(err).Str("cacheKey", key).Msg("failed to delete availability cache")
			}
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)
	}()
}
