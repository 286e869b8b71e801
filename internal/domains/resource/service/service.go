package service

import (
	"context"
	"fmt"
	"maps"

	"spacebook/config"
	"spacebook/infras/otel"
	availabilityModel "spacebook/internal/domains/availability/model"
	"spacebook/internal/domains/resource/model"
	"spacebook/internal/domains/resource/model/dto"
	"spacebook/internal/domains/resource/repository"
	roleService "spacebook/internal/domains/role/service"
	"spacebook/shared"
	"spacebook/shared/cache"
	"spacebook/shared/constant"
	gDto "spacebook/shared/dto"
	"spacebook/shared/failure"
	"spacebook/shared/principal"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetResource    = "resource:get"
	cacheGetAllResource = "resource:gets"
	cacheCountResource  = "resource:count"
)

var sortableColumns = []string{model.FieldName, model.FieldCapacity, model.FieldStatus, constant.FieldCreatedAt}

type Resource interface {
	Create(ctx context.Context, req dto.CreateResourceRequest) (dto.ResourceResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetResourcesResponse, error)
	Get(ctx context.Context, id string) (dto.ResourceResponse, error)
	Update(ctx context.Context, req dto.UpdateResourceRequest, id string) error
	Publish(ctx context.Context, id string) error
	Archive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo  repository.Resource
	roles roleService.Role
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Resource, roles roleService.Role, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Resource {
	return &serviceImpl{
		repo:  repo,
		roles: roles,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateResourceRequest) (res dto.ResourceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = s.roles.EnsureExist(ctx, req.Roles); err != nil {
		return res, err
	}

	resource := req.ToModel(principal.Username(ctx))
	if err = s.repo.Insert(ctx, resource); err != nil {
		log.Error().Err(err).Msg("failed to create resource")

		return res, fmt.Errorf("failed to create resource: %w", err)
	}

	s.invalidateLists(ctx)

	res.FromModel(resource)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetResourcesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	params.Sanitize(sortableColumns...)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllResource, params, filter)
	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for resources")

		return res, nil
	}

	total, err := s.count(ctx, params, filter)
	if err != nil {
		return res, err
	}

	resources, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get resources")

		return res, fmt.Errorf("failed to get resources: %w", err)
	}

	res.FromModels(resources, total, params.Limit)

	go func() {
		if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save resources to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) count(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountResource, params, filter)
	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count resources")

		return res, fmt.Errorf("failed to count resources: %w", err)
	}

	go func() {
		if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save resource count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ResourceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetResource, id)
	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	resource, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(resource)

	go func() {
		if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save resource to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Resource, error) {
	resource, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("resource_id", id).Msg("failed to get resource")

		return resource, fmt.Errorf("failed to get resource: %w", err)
	}

	if resource.ID == constant.Empty {
		return resource, failure.NotFound("resource not found") // nolint:wrapcheck
	}

	return resource, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateResourceRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	resource, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if resource.Status == model.StatusArchived {
		return failure.BadRequestFromString("archived resources cannot be modified") // nolint:wrapcheck
	}

	if err = s.roles.EnsureExist(ctx, req.Roles); err != nil {
		return err
	}

	fields := shared.TransformFields(req, principal.Username(ctx))
	maps.Copy(fields, req.CoordinateFields())

	return s.update(ctx, id, fields)
}

// Publish makes a draft bookable by non-admins.
func (s *serviceImpl) Publish(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.Publish")
	defer scope.End()
	defer scope.TraceIfError(err)

	return s.transition(ctx, id, model.StatusPublished, model.StatusDraft)
}

// Archive withdraws a resource from booking. Existing bookings are kept.
func (s *serviceImpl) Archive(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.Archive")
	defer scope.End()
	defer scope.TraceIfError(err)

	return s.transition(ctx, id, model.StatusArchived, model.StatusDraft, model.StatusPublished)
}

func (s *serviceImpl) transition(ctx context.Context, id, target string, from ...string) error {
	resource, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if resource.Status == target {
		return nil
	}

	allowed := false

	for _, status := range from {
		if resource.Status == status {
			allowed = true

			break
		}
	}

	if !allowed {
		return failure.BadRequestFromString(fmt.Sprintf("resource cannot move from %s to %s", resource.Status, target)) // nolint:wrapcheck
	}

	fields := shared.TransformFields(struct {
		Status string `db:"status"`
	}{Status: target}, principal.Username(ctx))

	return s.update(ctx, id, fields)
}

func (s *serviceImpl) update(ctx context.Context, id string, fields map[string]any) error {
	if err := s.repo.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Str("resource_id", id).Msg("failed to update resource")

		return fmt.Errorf("failed to update resource: %w", err)
	}

	s.invalidateResource(ctx, id)

	return nil
}

// Delete removes a resource that was never published.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".resource.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	resource, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if resource.Status != model.StatusDraft {
		return failure.BadRequestFromString("only draft resources can be deleted, archive it instead") // nolint:wrapcheck
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Str("resource_id", id).Msg("failed to delete resource")

		return fmt.Errorf("failed to delete resource: %w", err)
	}

	s.invalidateResource(ctx, id)

	return nil
}

func (s *serviceImpl) invalidateLists(ctx context.Context) {
	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllResource)
		shared.InvalidateCaches(c, s.cache, cacheCountResource)
	}()
}

func (s *serviceImpl) invalidateResource(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetResource, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete resource cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllResource)
		shared.InvalidateCaches(c, s.cache, cacheCountResource)
		shared.InvalidateCaches(c, s.cache, availabilityModel.ResourceCachePrefix(id))
	}()
}
