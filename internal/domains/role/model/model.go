package model

import "spacebook/shared/model"

const (
	TableName  = "roles"
	EntityName = "role"

	FieldID   = "id"
	FieldName = "name"
)

// Role groups principals for resource access rules.
type Role struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	model.Metadata
}
