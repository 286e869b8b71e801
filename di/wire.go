//go:build wireinject
// +build wireinject

package di

import (
	"spacebook/config"
	"spacebook/infras/jwt"
	"spacebook/infras/otel"
	"spacebook/infras/postgres"
	"spacebook/infras/redis"
	"spacebook/internal/jobs"
	"spacebook/permissions"
	"spacebook/shared/cache"
	"spacebook/transport/http"
	"spacebook/transport/http/middleware"
	"spacebook/transport/http/router"

	"github.com/google/wire"

	authService "spacebook/internal/domains/auth/service"
	availabilityService "spacebook/internal/domains/availability/service"
	bookingRepository "spacebook/internal/domains/booking/repository"
	bookingService "spacebook/internal/domains/booking/service"
	resourceRepository "spacebook/internal/domains/resource/repository"
	resourceService "spacebook/internal/domains/resource/service"
	roleRepository "spacebook/internal/domains/role/repository"
	roleService "spacebook/internal/domains/role/service"
	userRepository "spacebook/internal/domains/user/repository"
	userService "spacebook/internal/domains/user/service"
	authHandler "spacebook/internal/handlers/auth"
	availabilityHandler "spacebook/internal/handlers/availability"
	bookingHandler "spacebook/internal/handlers/booking"
	resourceHandler "spacebook/internal/handlers/resource"
	roleHandler "spacebook/internal/handlers/role"
	userHandler "spacebook/internal/handlers/user"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var userDomain = wire.NewSet(
	userRepository.New,
	userService.New,
)

var roleDomain = wire.NewSet(
	roleRepository.New,
	roleService.New,
)

var authDomain = wire.NewSet(
	authService.New,
)

var resourceDomain = wire.NewSet(
	resourceRepository.New,
	resourceService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
	availabilityService.New,
)

var domains = wire.NewSet(
	userDomain,
	roleDomain,
	authDomain,
	resourceDomain,
	bookingDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	userHandler.New,
	roleHandler.New,
	resourceHandler.New,
	availabilityHandler.New,
	bookingHandler.New,
	router.New,
)

var background = wire.NewSet(
	jobs.New,
)

func InitializeService() *App {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		background,
		http.New,
		wire.Struct(new(App), "*"),
	)

	return &App{}
}
