package model

import (
	"spacebook/shared/model"

	"github.com/lib/pq"
)

const (
	TableName  = "resources"
	EntityName = "resource"

	FieldID                 = "id"
	FieldName               = "name"
	FieldCapacity           = "capacity"
	FieldStatus             = "status"
	FieldBookingRestriction = "booking_restriction"
	FieldAllowedUserIDs     = "allowed_user_ids"
	FieldRoles              = "roles"
	FieldFloorMapID         = "floor_map_id"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

const (
	RestrictionAllUsers  = "all_users"
	RestrictionAdminOnly = "admin_only"
)

// MapCoordinates is the rectangle drawn on a floor map. It belongs to map
// placement and is carried through untouched.
type MapCoordinates struct {
	X      *float64 `db:"map_x"`
	Y      *float64 `db:"map_y"`
	Width  *float64 `db:"map_width"`
	Height *float64 `db:"map_height"`
}

// Resource is the single canonical bookable thing (room, desk). Optional
// attributes are nil or empty rather than absent.
type Resource struct {
	ID                 string         `db:"id"`
	Name               string         `db:"name"`
	Capacity           int            `db:"capacity"`
	Status             string         `db:"status"`
	BookingRestriction *string        `db:"booking_restriction"`
	AllowedUserIDs     pq.StringArray `db:"allowed_user_ids"`
	Roles              pq.StringArray `db:"roles"`
	FloorMapID         *string        `db:"floor_map_id"`
	MapCoordinates
	model.Metadata
}

func (r Resource) IsPublished() bool {
	return r.Status == StatusPublished
}

func (r Resource) IsAdminOnly() bool {
	return r.BookingRestriction != nil && *r.BookingRestriction == RestrictionAdminOnly
}

// Restriction reports the effective restriction, treating NULL as all_users.
func (r Resource) Restriction() string {
	if r.BookingRestriction == nil || *r.BookingRestriction == "" {
		return RestrictionAllUsers
	}

	return *r.BookingRestriction
}
