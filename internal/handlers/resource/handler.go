package resource

import (
	"context"
	"net/http"

	"spacebook/infras/otel"
	"spacebook/internal/domains/resource/model"
	"spacebook/internal/domains/resource/model/dto"
	"spacebook/internal/domains/resource/service"
	"spacebook/shared/constant"
	gDto "spacebook/shared/dto"
	"spacebook/shared/failure"
	"spacebook/shared/validator"
	"spacebook/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Resource
	otel    otel.Otel
}

func New(service service.Resource, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

// Router registers the admin lifecycle routes on the /resources group.
func (handler *Handler) Router(routerGroup chi.Router) {
	routerGroup.Post("/", handler.CreateResource)
	routerGroup.Get("/", handler.GetResources)
	routerGroup.Get("/{id}", handler.GetResourceByID)
	routerGroup.Patch("/{id}", handler.UpdateResource)
	routerGroup.Post("/{id}/publish", handler.PublishResource)
	routerGroup.Post("/{id}/archive", handler.ArchiveResource)
	routerGroup.Delete("/{id}", handler.DeleteResource)
}

// CreateResource registers a new resource as a draft.
// @Summary Create a resource
// @Tags Resource
// @Accept json
// @Produce json
// @Param request body dto.CreateResourceRequest true "Create Resource Request"
// @Success 201 {object} response.Data[dto.ResourceResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/resources [post]
// @Security BearerAuth
func (handler *Handler) CreateResource(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateResource")
	defer scope.End()

	req := dto.CreateResourceRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	resource, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create resource")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Resource created successfully")

	response.WithJSON(writer, http.StatusCreated, resource)
}

// GetResources lists resources in every lifecycle state.
// @Summary Get all resources
// @Tags Resource
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param name query string false "Filter by name"
// @Param status query string false "Filter by status (draft, published, archived)"
// @Param floor_map_id query string false "Filter by floor map"
// @Success 200 {object} response.Data[dto.GetResourcesResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/resources [get]
// @Security BearerAuth
func (handler *Handler) GetResources(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetResources")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup, err := filterFromQuery(r)
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	resources, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get resources")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, resources)
}

// GetResourceByID retrieves a resource by its ID.
// @Summary Get a resource by ID
// @Tags Resource
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Data[dto.ResourceResponse]
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/resources/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetResourceByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetResourceByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	resource, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("resource_id", id).Msg("failed to get resource")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, resource)
}

// UpdateResource changes the attributes that are present in the body.
// @Summary Update a resource
// @Tags Resource
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param request body dto.UpdateResourceRequest true "Update Resource Request"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/resources/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateResource(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateResource")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateResourceRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("resource_id", id).Msg("failed to update resource")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Resource updated successfully")
}

// PublishResource makes a draft bookable.
// @Summary Publish a resource
// @Tags Resource
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/resources/{id}/publish [post]
// @Security BearerAuth
func (handler *Handler) PublishResource(w http.ResponseWriter, r *http.Request) {
	handler.lifecycle(w, r, ".PublishResource", handler.service.Publish, "Resource published successfully")
}

// ArchiveResource withdraws a resource from booking.
// @Summary Archive a resource
// @Tags Resource
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/resources/{id}/archive [post]
// @Security BearerAuth
func (handler *Handler) ArchiveResource(w http.ResponseWriter, r *http.Request) {
	handler.lifecycle(w, r, ".ArchiveResource", handler.service.Archive, "Resource archived successfully")
}

// DeleteResource removes a draft.
// @Summary Delete a draft resource
// @Tags Resource
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/resources/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	handler.lifecycle(w, r, ".DeleteResource", handler.service.Delete, "Resource deleted successfully")
}

func (handler *Handler) lifecycle(w http.ResponseWriter, r *http.Request, span string, action func(ctx context.Context, id string) error, message string) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+span)
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := action(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("resource_id", id).Msg("failed to change resource")

		response.WithError(w, err)

		return
	}

	scope.AddEvent(message)

	response.WithMessage(w, http.StatusOK, message)
}

var statuses = map[string]bool{
	model.StatusDraft:     true,
	model.StatusPublished: true,
	model.StatusArchived:  true,
}

func filterFromQuery(r *http.Request) (gDto.FilterGroup, error) {
	query := r.URL.Query()
	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd, Filters: []any{}}

	if name := query.Get(model.FieldName); name != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldName,
			Operator: gDto.FilterOperatorLike,
			Value:    name,
			Table:    model.TableName,
		})
	}

	if status := query.Get(model.FieldStatus); status != "" {
		if !statuses[status] {
			return filterGroup, failure.BadRequestFromString("status must be one of draft published archived") // nolint:wrapcheck
		}

		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldStatus,
			Operator: gDto.FilterOperatorEq,
			Value:    status,
			Table:    model.TableName,
		})
	}

	if floorMapID := query.Get(constant.RequestParamFloorMapID); floorMapID != "" {
		if err := validator.ValidateVar(floorMapID, "uuid"); err != nil {
			return filterGroup, failure.BadRequestFromString("floor_map_id must be a valid id") // nolint:wrapcheck
		}

		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldFloorMapID,
			Operator: gDto.FilterOperatorEq,
			Value:    floorMapID,
			Table:    model.TableName,
		})
	}

	return filterGroup, nil
}
