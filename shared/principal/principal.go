// Package principal describes the authenticated actor attempting an operation.
// It is produced once per request by the auth middleware and never mutated
// by the booking core.
package principal

import (
	"context"
	"slices"

	"spacebook/shared/constant"
)

type Principal struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Level   string   `json:"level"`
	IsAdmin bool     `json:"is_admin"`
	Roles   []string `json:"roles"`
}

// New derives the admin flag from the account level.
func New(id, name, email, level string, roles []string) Principal {
	return Principal{
		ID:      id,
		Name:    name,
		Email:   email,
		Level:   level,
		IsAdmin: level == constant.RoleAdmin || level == constant.RoleSuperAdmin,
		Roles:   slices.Clone(roles),
	}
}

// System is used by background jobs.
func System() Principal {
	return Principal{
		ID:      constant.ContextSystem,
		Name:    constant.ContextSystem,
		Level:   constant.RoleSuperAdmin,
		IsAdmin: true,
	}
}

func (p Principal) IsZero() bool {
	return p.ID == ""
}

func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

func WithContext(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, constant.ContextKeyPrincipal, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(constant.ContextKeyPrincipal).(Principal)

	return p, ok && !p.IsZero()
}

// Username returns the name stamped into created_by/modified_by columns.
func Username(ctx context.Context) string {
	if p, ok := FromContext(ctx); ok {
		if p.Email != "" {
			return p.Email
		}

		return p.ID
	}

	return constant.ContextGuest
}
