package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"slices"

	"spacebook/config"
	"spacebook/infras/otel"
	"spacebook/internal/domains/role/model"
	"spacebook/internal/domains/role/model/dto"
	"spacebook/internal/domains/role/repository"
	"spacebook/shared"
	"spacebook/shared/cache"
	"spacebook/shared/constant"
	gDto "spacebook/shared/dto"
	"spacebook/shared/failure"
	"spacebook/shared/principal"

	"github.com/rs/zerolog/log"
)

const cacheGetAllRole = "role:gets"

type Role interface {
	Create(ctx context.Context, req dto.CreateRoleRequest) (dto.RoleResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams) (dto.GetRolesResponse, error)
	EnsureExist(ctx context.Context, ids []string) error
}

type serviceImpl struct {
	repo  repository.Role
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Role, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Role {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateRoleRequest) (res dto.RoleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".role.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	exist, err := s.repo.Exist(ctx, gDto.FilterGroup{}.And(gDto.Filter{
		Field:    model.FieldName,
		Value:    req.Name,
		Operator: gDto.FilterOperatorEq,
	}))
	if err != nil {
		log.Error().Err(err).Msg("failed to check role name")

		return res, fmt.Errorf("failed to check role name: %w", err)
	}

	if exist {
		return res, failure.Conflict("role name already exists") // nolint:wrapcheck
	}

	role := req.ToModel(principal.Username(ctx))
	if err = s.repo.Insert(ctx, role); err != nil {
		log.Error().Err(err).Msg("failed to create role")

		return res, fmt.Errorf("failed to create role: %w", err)
	}

	go func() {
		shared.InvalidateCaches(context.WithoutCancel(ctx), s.cache, cacheGetAllRole)
	}()

	res.FromModel(role)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams) (res dto.GetRolesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".role.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	params.Sanitize(model.FieldName, constant.FieldCreatedAt)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllRole, params, gDto.FilterGroup{})
	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	total, err := s.repo.Count(ctx, gDto.FilterGroup{})
	if err != nil {
		log.Error().Err(err).Msg("failed to count roles")

		return res, fmt.Errorf("failed to count roles: %w", err)
	}

	roles, err := s.repo.GetAll(ctx, params, gDto.FilterGroup{})
	if err != nil {
		log.Error().Err(err).Msg("failed to get roles")

		return res, fmt.Errorf("failed to get roles: %w", err)
	}

	res.FromModels(roles, total, params.Limit)

	go func() {
		if err := s.cache.Save(context.WithoutCancel(ctx), cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save roles to cache")
		}
	}()

	return res, nil
}

// EnsureExist fails with a 400 when any id is not a known role. A lookup
// miss is a validation problem for the caller, not a missing endpoint.
func (s *serviceImpl) EnsureExist(ctx context.Context, ids []string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".role.EnsureExist")
	defer scope.End()
	defer scope.TraceIfError(err)

	unique := slices.Compact(slices.Sorted(slices.Values(ids)))
	if len(unique) == 0 {
		return nil
	}

	count, err := s.repo.Count(ctx, gDto.FilterGroup{}.And(gDto.Filter{
		Field:    model.FieldID,
		Value:    unique,
		Operator: gDto.FilterOperatorIn,
		Table:    model.TableName,
	}))
	if err != nil {
		log.Error().Err(err).Msg("failed to count roles")

		return fmt.Errorf("failed to look up roles: %w", err)
	}

	if count != len(unique) {
		return failure.BadRequestFromString("role does not exist") // nolint:wrapcheck
	}

	return nil
}
