package service

import (
	"context"
	"fmt"
	"time"

	"spacebook/config"
	"spacebook/infras/otel"
	"spacebook/internal/domains/availability/model"
	"spacebook/internal/domains/availability/model/dto"
	bookingModel "spacebook/internal/domains/booking/model"
	bookingRepo "spacebook/internal/domains/booking/repository"
	resourceModel "spacebook/internal/domains/resource/model"
	resourceRepo "spacebook/internal/domains/resource/repository"
	"spacebook/internal/scheduling"
	"spacebook/shared"
	"spacebook/shared/cache"
	"spacebook/shared/constant"
	gDto "spacebook/shared/dto"
	"spacebook/shared/failure"
	"spacebook/shared/principal"
	"spacebook/shared/timezone"

	"github.com/rs/zerolog/log"
)

type Availability interface {
	Resolve(ctx context.Context, resourceID, date string) (dto.AvailabilityResponse, error)
	Classify(ctx context.Context, resourceID, date string) (dto.StatusResponse, error)
	ClassifyMany(ctx context.Context, date string, floorMapID *string) (dto.StatusesResponse, error)
}

type serviceImpl struct {
	resourceRepo resourceRepo.Resource
	bookingRepo  bookingRepo.Booking
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
	now          func() time.Time
}

func New(resourceRepo resourceRepo.Resource, bookingRepo bookingRepo.Booking, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Availability {
	return NewWithClock(resourceRepo, bookingRepo, cfg, cache, otel, timezone.Now)
}

func NewWithClock(resourceRepo resourceRepo.Resource, bookingRepo bookingRepo.Booking, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, now func() time.Time) Availability {
	return &serviceImpl{
		resourceRepo: resourceRepo,
		bookingRepo:  bookingRepo,
		cfg:          cfg,
		cache:        cache,
		otel:         otel,
		now:          now,
	}
}

// Resolve lists the active bookings of a resource on date together with the
// status of every standard slot.
func (s *serviceImpl) Resolve(ctx context.Context, resourceID, date string) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.Resolve")
	defer scope.End()
	defer scope.TraceIfError(err)

	p, _ := principal.FromContext(ctx)

	day, err := parseDate(date)
	if err != nil {
		return res, err
	}

	resource, err := s.visibleResource(ctx, resourceID, p)
	if err != nil {
		return res, err
	}

	booked, err := s.bookedSlots(ctx, resourceID, day)
	if err != nil {
		return res, err
	}

	intervals, err := intervalsOf(booked, day)
	if err != nil {
		return res, err
	}

	res = dto.AvailabilityResponse{
		ResourceID:           resource.ID,
		Date:                 day.Format(constant.DateOnlyFormat),
		BookedSlots:          booked,
		StandardSlotStatuses: scheduling.ResolveSlots(day, intervals, s.now()),
		CanBook:              scheduling.Bookable(resource, p),
	}

	return res, nil
}

// Classify summarizes a resource on date for the caller. The result depends on
// who asks and is never cached.
func (s *serviceImpl) Classify(ctx context.Context, resourceID, date string) (res dto.StatusResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.Classify")
	defer scope.End()
	defer scope.TraceIfError(err)

	p, ok := principal.FromContext(ctx)
	if !ok {
		return res, failure.Unauthorized("authentication required") // nolint:wrapcheck
	}

	day, err := parseDate(date)
	if err != nil {
		return res, err
	}

	resource, err := s.existingResource(ctx, resourceID)
	if err != nil {
		return res, err
	}

	res = dto.StatusResponse{
		ResourceID: resource.ID,
		Name:       resource.Name,
		Date:       day.Format(constant.DateOnlyFormat),
		Status:     scheduling.StatusRestricted,
	}

	if !scheduling.Bookable(resource, p) {
		return res, nil
	}

	booked, err := s.bookedSlots(ctx, resourceID, day)
	if err != nil {
		return res, err
	}

	intervals, err := intervalsOf(booked, day)
	if err != nil {
		return res, err
	}

	own, err := s.ownBookings(ctx, p, day)
	if err != nil {
		return res, err
	}

	ownIntervals, err := bookingModel.Intervals(elsewhere(own, resourceID))
	if err != nil {
		return res, fmt.Errorf("failed to read own bookings: %w", err)
	}

	res.Status = scheduling.Classify(resource, p, day, intervals, ownIntervals, s.now())

	return res, nil
}

// ClassifyMany classifies every visible resource, optionally of one floor map,
// with a single bookings query and a single own-bookings lookup.
func (s *serviceImpl) ClassifyMany(ctx context.Context, date string, floorMapID *string) (res dto.StatusesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.ClassifyMany")
	defer scope.End()
	defer scope.TraceIfError(err)

	p, ok := principal.FromContext(ctx)
	if !ok {
		return res, failure.Unauthorized("authentication required") // nolint:wrapcheck
	}

	day, err := parseDate(date)
	if err != nil {
		return res, err
	}

	resources, err := s.resourceRepo.GetAll(ctx, gDto.QueryParams{SortBy: resourceModel.FieldName, SortDir: "ASC"}, visibleFilter(p, floorMapID))
	if err != nil {
		log.Error().Err(err).Msg("failed to get resources")

		return res, fmt.Errorf("failed to get resources: %w", err)
	}

	res = dto.StatusesResponse{Date: day.Format(constant.DateOnlyFormat), Statuses: []dto.StatusResponse{}}
	if len(resources) == 0 {
		return res, nil
	}

	ids := make([]string, len(resources))
	for i, resource := range resources {
		ids[i] = resource.ID
	}

	bookings, err := s.bookingRepo.ListActiveOnDate(ctx, day, ids...)
	if err != nil {
		log.Error().Err(err).Msg("failed to list bookings")

		return res, fmt.Errorf("failed to list bookings: %w", err)
	}

	byResource := map[string][]bookingModel.Booking{}
	for _, booking := range bookings {
		byResource[booking.ResourceID] = append(byResource[booking.ResourceID], booking)
	}

	own, err := s.ownBookings(ctx, p, day)
	if err != nil {
		return res, err
	}

	now := s.now()

	for _, resource := range resources {
		intervals, err := bookingModel.Intervals(byResource[resource.ID])
		if err != nil {
			return res, fmt.Errorf("failed to read bookings: %w", err)
		}

		ownIntervals, err := bookingModel.Intervals(elsewhere(own, resource.ID))
		if err != nil {
			return res, fmt.Errorf("failed to read own bookings: %w", err)
		}

		res.Statuses = append(res.Statuses, dto.StatusResponse{
			ResourceID: resource.ID,
			Name:       resource.Name,
			Date:       res.Date,
			Status:     scheduling.Classify(resource, p, day, intervals, ownIntervals, now),
		})
	}

	return res, nil
}

func parseDate(date string) (time.Time, error) {
	day, err := timezone.ParseDate(date)
	if err != nil {
		return day, failure.BadRequestFromString("date must be formatted as YYYY-MM-DD") // nolint:wrapcheck
	}

	return day, nil
}

func (s *serviceImpl) existingResource(ctx context.Context, id string) (resourceModel.Resource, error) {
	resource, err := s.resourceRepo.Get(ctx, shared.FilterByID(id, resourceModel.FieldID, resourceModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("resource_id", id).Msg("failed to get resource")

		return resource, fmt.Errorf("failed to get resource: %w", err)
	}

	if resource.ID == constant.Empty {
		return resourceModel.Resource{}, failure.NotFound("resource not found") // nolint:wrapcheck
	}

	return resource, nil
}

// visibleResource hides unpublished resources from non-admins.
func (s *serviceImpl) visibleResource(ctx context.Context, id string, p principal.Principal) (resourceModel.Resource, error) {
	resource, err := s.existingResource(ctx, id)
	if err != nil {
		return resource, err
	}

	if !p.IsAdmin && !resource.IsPublished() {
		return resourceModel.Resource{}, failure.NotFound("resource not found") // nolint:wrapcheck
	}

	return resource, nil
}

func visibleFilter(p principal.Principal, floorMapID *string) gDto.FilterGroup {
	status := gDto.Filter{Field: resourceModel.FieldStatus, Value: resourceModel.StatusArchived, Operator: gDto.FilterOperatorNotEq, Table: resourceModel.TableName}
	if !p.IsAdmin {
		status = gDto.Filter{Field: resourceModel.FieldStatus, Value: resourceModel.StatusPublished, Operator: gDto.FilterOperatorEq, Table: resourceModel.TableName}
	}

	filter := gDto.FilterGroup{}.And(status)
	if floorMapID != nil {
		filter = filter.And(gDto.Filter{Field: resourceModel.FieldFloorMapID, Value: *floorMapID, Operator: gDto.FilterOperatorEq, Table: resourceModel.TableName})
	}

	return filter
}

// bookedSlots serves the active bookings of a resource on day from the
// snapshot cache, loading and saving it on a miss.
func (s *serviceImpl) bookedSlots(ctx context.Context, resourceID string, day time.Time) ([]dto.BookedSlot, error) {
	cacheKey := model.CacheKey(resourceID, day.Format(constant.DateOnlyFormat))

	var slots []dto.BookedSlot
	if err := s.cache.Get(ctx, cacheKey, &slots); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for availability")

		return slots, nil
	}

	bookings, err := s.bookingRepo.ListActiveOnDate(ctx, day, resourceID)
	if err != nil {
		log.Error().Err(err).Str("resource_id", resourceID).Msg("failed to list bookings")

		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	slots = dto.BookedSlotsFromModels(bookings)

	go func() {
		if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, slots, s.cfg.Booking.AvailabilityTTL); err != nil {
			log.Error().Err(err).Msg("failed to save availability to cache")
		}
	}()

	return slots, nil
}

func (s *serviceImpl) ownBookings(ctx context.Context, p principal.Principal, day time.Time) ([]bookingModel.Booking, error) {
	own, err := s.bookingRepo.ListActiveForUser(ctx, p.ID, day)
	if err != nil {
		log.Error().Err(err).Str("user_id", p.ID).Msg("failed to list own bookings")

		return nil, fmt.Errorf("failed to list own bookings: %w", err)
	}

	return own, nil
}

// elsewhere drops bookings on resourceID; those already count as booked there.
func elsewhere(bookings []bookingModel.Booking, resourceID string) []bookingModel.Booking {
	filtered := make([]bookingModel.Booking, 0, len(bookings))

	for _, booking := range bookings {
		if booking.ResourceID != resourceID {
			filtered = append(filtered, booking)
		}
	}

	return filtered
}

func intervalsOf(slots []dto.BookedSlot, day time.Time) ([]scheduling.Interval, error) {
	intervals := make([]scheduling.Interval, 0, len(slots))

	for _, slot := range slots {
		interval, err := slot.Interval(day)
		if err != nil {
			return nil, fmt.Errorf("failed to read booked slot: %w", err)
		}

		intervals = append(intervals, interval)
	}

	return intervals, nil
}
