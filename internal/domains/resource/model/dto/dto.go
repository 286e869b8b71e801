package dto

import (
	"spacebook/internal/domains/resource/model"
	"spacebook/shared"
	gDto "spacebook/shared/dto"
	gModel "spacebook/shared/model"
	"spacebook/shared/timezone"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type MapCoordinates struct {
	X      *float64 `json:"x"      validate:"required"`
	Y      *float64 `json:"y"      validate:"required"`
	Width  *float64 `json:"width"  validate:"required,gt=0"`
	Height *float64 `json:"height" validate:"required,gt=0"`
}

func (m *MapCoordinates) toModel() model.MapCoordinates {
	if m == nil {
		return model.MapCoordinates{}
	}

	return model.MapCoordinates{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
}

func mapCoordinatesFromModel(m model.MapCoordinates) *MapCoordinates {
	if m.X == nil || m.Y == nil || m.Width == nil || m.Height == nil {
		return nil
	}

	return &MapCoordinates{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
}

type CreateResourceRequest struct {
	Name               string          `json:"name"                validate:"required,max=100"`
	Capacity           int             `json:"capacity"            validate:"omitempty,min=0"`
	BookingRestriction *string         `json:"booking_restriction" validate:"omitempty,oneof=all_users admin_only"`
	AllowedUserIDs     []string        `json:"allowed_user_ids"    validate:"omitempty,dive,uuid"`
	Roles              []string        `json:"roles"               validate:"omitempty,dive,uuid"`
	FloorMapID         *string         `json:"floor_map_id"        validate:"omitempty,uuid"`
	MapCoordinates     *MapCoordinates `json:"map_coordinates"     validate:"omitempty"`
}

// ToModel always yields a draft; publishing is a separate admin action.
func (c *CreateResourceRequest) ToModel(user string) model.Resource {
	now := timezone.Now()

	return model.Resource{
		ID:                 uuid.NewString(),
		Name:               c.Name,
		Capacity:           c.Capacity,
		Status:             model.StatusDraft,
		BookingRestriction: c.BookingRestriction,
		AllowedUserIDs:     pq.StringArray(nonNil(c.AllowedUserIDs)),
		Roles:              pq.StringArray(nonNil(c.Roles)),
		FloorMapID:         c.FloorMapID,
		MapCoordinates:     c.MapCoordinates.toModel(),
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

// UpdateResourceRequest only touches fields that are present. Sending an
// empty list clears allowed_user_ids or roles.
type UpdateResourceRequest struct {
	Name               *string         `db:"name"                json:"name"                validate:"omitempty,max=100"`
	Capacity           *int            `db:"capacity"            json:"capacity"            validate:"omitempty,min=0"`
	BookingRestriction *string         `db:"booking_restriction" json:"booking_restriction" validate:"omitempty,oneof=all_users admin_only"`
	AllowedUserIDs     pq.StringArray  `db:"allowed_user_ids"    json:"allowed_user_ids"    validate:"omitempty,dive,uuid"`
	Roles              pq.StringArray  `db:"roles"               json:"roles"               validate:"omitempty,dive,uuid"`
	FloorMapID         *string         `db:"floor_map_id"        json:"floor_map_id"        validate:"omitempty,uuid"`
	MapCoordinates     *MapCoordinates `db:"-"                   json:"map_coordinates"     validate:"omitempty"`
}

// CoordinateFields returns the column updates for a new map rectangle.
func (u *UpdateResourceRequest) CoordinateFields() map[string]any {
	if u.MapCoordinates == nil {
		return nil
	}

	return map[string]any{
		"map_x":      *u.MapCoordinates.X,
		"map_y":      *u.MapCoordinates.Y,
		"map_width":  *u.MapCoordinates.Width,
		"map_height": *u.MapCoordinates.Height,
	}
}

type ResourceResponse struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Capacity           int             `json:"capacity"`
	Status             string          `json:"status"`
	BookingRestriction string          `json:"booking_restriction"`
	AllowedUserIDs     []string        `json:"allowed_user_ids"`
	Roles              []string        `json:"roles"`
	FloorMapID         *string         `json:"floor_map_id"`
	MapCoordinates     *MapCoordinates `json:"map_coordinates"`
	gDto.Metadata
}

func (r *ResourceResponse) FromModel(model model.Resource) {
	r.ID = model.ID
	r.Name = model.Name
	r.Capacity = model.Capacity
	r.Status = model.Status
	r.BookingRestriction = model.Restriction()
	r.AllowedUserIDs = nonNil(model.AllowedUserIDs)
	r.Roles = nonNil(model.Roles)
	r.FloorMapID = model.FloorMapID
	r.MapCoordinates = mapCoordinatesFromModel(model.MapCoordinates)
	r.Metadata.FromModel(model.Metadata)
}

type GetResourcesResponse struct {
	Resources []ResourceResponse `json:"resources"`
	TotalPage int                `json:"total_page"`
	TotalData int                `json:"total_data"`
}

func (r *GetResourcesResponse) FromModels(models []model.Resource, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Resources = make([]ResourceResponse, len(models))
	for i, mod := range models {
		r.Resources[i].FromModel(mod)
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}

	return values
}
