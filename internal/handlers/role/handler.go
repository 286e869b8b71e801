package role

import (
	"net/http"

	"spacebook/infras/otel"
	"spacebook/internal/domains/role/model/dto"
	"spacebook/internal/domains/role/service"
	"spacebook/shared/constant"
	gDto "spacebook/shared/dto"
	"spacebook/shared/validator"
	"spacebook/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Role
	otel    otel.Otel
}

func New(service service.Role, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/roles", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateRole)
		routerGroup.Get("/", handler.GetRoles)
	})
}

// CreateRole adds a role to the catalog.
// @Summary Create a role
// @Tags Role
// @Accept json
// @Produce json
// @Param request body dto.CreateRoleRequest true "Create Role Request"
// @Success 201 {object} response.Data[dto.RoleResponse]
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/roles [post]
// @Security BearerAuth
func (handler *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateRole")
	defer scope.End()

	req := dto.CreateRoleRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	role, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create role")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusCreated, role)
}

// GetRoles lists the role catalog.
// @Summary Get all roles
// @Tags Role
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetRolesResponse]
// @Failure 500 {object} response.Error
// @Router /v1/roles [get]
// @Security BearerAuth
func (handler *Handler) GetRoles(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRoles")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	roles, err := handler.service.GetAll(ctx, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get roles")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, roles)
}
