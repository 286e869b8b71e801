package router

import (
	"spacebook/internal/handlers/auth"
	"spacebook/internal/handlers/availability"
	"spacebook/internal/handlers/booking"
	"spacebook/internal/handlers/resource"
	"spacebook/internal/handlers/role"
	"spacebook/internal/handlers/user"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Auth         auth.Handler
	User         user.Handler
	Role         role.Handler
	Resource     resource.Handler
	Availability availability.Handler
	Booking      booking.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Auth.Router(routerGroup)
		r.DomainHandlers.User.Router(routerGroup)
		r.DomainHandlers.Role.Router(routerGroup)
		routerGroup.Route("/resources", func(resources chi.Router) {
			r.DomainHandlers.Resource.Router(resources)
			r.DomainHandlers.Availability.Router(resources)
		})
		r.DomainHandlers.Booking.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
