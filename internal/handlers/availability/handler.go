package availability

import (
	"net/http"

	"spacebook/infras/otel"
	"spacebook/internal/domains/availability/service"
	"spacebook/shared/constant"
	"spacebook/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Availability
	otel    otel.Otel
}

func New(service service.Availability, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

// Router registers the read side on the /resources group.
func (handler *Handler) Router(routerGroup chi.Router) {
	routerGroup.Get("/statuses", handler.GetStatuses)
	routerGroup.Get("/{id}/availability", handler.GetAvailability)
	routerGroup.Get("/{id}/status", handler.GetStatus)
}

// GetAvailability returns the booked slots of a resource for one date.
// @Summary Get resource availability
// @Description Booked slots, standard slot statuses and whether the caller may book.
// @Tags Availability
// @Produce json
// @Param id path string true "Resource ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Data[dto.AvailabilityResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/resources/{id}/availability [get]
// @Security BearerAuth
func (handler *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAvailability")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	date := r.URL.Query().Get(constant.RequestParamDate)

	res, err := handler.service.Resolve(ctx, id, date)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("resource_id", id).Str("date", date).Msg("failed to resolve availability")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetStatus classifies one resource for the caller.
// @Summary Get resource status
// @Tags Availability
// @Produce json
// @Param id path string true "Resource ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Data[dto.StatusResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/resources/{id}/status [get]
// @Security BearerAuth
func (handler *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetStatus")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	date := r.URL.Query().Get(constant.RequestParamDate)

	res, err := handler.service.Classify(ctx, id, date)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("resource_id", id).Str("date", date).Msg("failed to classify resource")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetStatuses classifies every visible resource, optionally on one floor map.
// @Summary Get resource statuses
// @Tags Availability
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param floor_map_id query string false "Floor map ID"
// @Success 200 {object} response.Data[dto.StatusesResponse]
// @Failure 400 {object} response.Error
// @Router /v1/resources/statuses [get]
// @Security BearerAuth
func (handler *Handler) GetStatuses(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetStatuses")
	defer scope.End()

	query := r.URL.Query()
	date := query.Get(constant.RequestParamDate)

	var floorMapID *string
	if value := query.Get(constant.RequestParamFloorMapID); value != "" {
		floorMapID = &value
	}

	res, err := handler.service.ClassifyMany(ctx, date, floorMapID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("date", date).Msg("failed to classify resources")

		response.WithError(w, err)

		return
	}

	scope.SetAttribute("resource.count", len(res.Statuses))

	response.WithJSON(w, http.StatusOK, res)
}
