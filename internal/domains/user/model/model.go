package model

import (
	"time"

	"spacebook/shared/model"

	"github.com/lib/pq"
)

const (
	TableName  = "users"
	EntityName = "user"

	FieldID        = "id"
	FieldEmail     = "email"
	FieldPassword  = "password"
	FieldLevel     = "level"
	FieldFullName  = "full_name"
	FieldRoles     = "roles"
	FieldLastLogin = "last_login"
	FieldActive    = "active"
)

// User is an account. Level is the system role (user, admin, superadmin);
// Roles are the catalog role ids consulted by resource access rules.
type User struct {
	ID        string         `db:"id"`
	Email     string         `db:"email"`
	Password  string         `db:"password"`
	Level     string         `db:"level"`
	FullName  *string        `db:"full_name"`
	Roles     pq.StringArray `db:"roles"`
	LastLogin *time.Time     `db:"last_login"`
	Active    bool           `db:"active"`
	model.Metadata
}

// DisplayName falls back to the email when no full name was given.
func (u User) DisplayName() string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}

	return u.Email
}
