package dto

import (
	"time"

	"spacebook/internal/domains/user/model"
	"spacebook/shared"
	gDto "spacebook/shared/dto"
	"spacebook/shared/principal"
	"spacebook/shared/timezone"
)

type UserResponse struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	Level     string   `json:"level"`
	FullName  *string  `json:"full_name,omitempty"`
	Roles     []string `json:"roles"`
	LastLogin *string  `json:"last_login,omitempty"`
	Active    bool     `json:"active"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(model model.User) {
	r.ID = model.ID
	r.Email = model.Email
	r.Level = model.Level
	r.FullName = model.FullName
	r.Active = model.Active

	r.Roles = make([]string, len(model.Roles))
	copy(r.Roles, model.Roles)

	if model.LastLogin != nil {
		lastLogin := timezone.Format(*model.LastLogin, time.RFC3339)
		r.LastLogin = &lastLogin
	}

	r.Metadata.FromModel(model.Metadata)
}

type UpdateUserRequest struct {
	Level    *string `db:"level"     json:"level,omitempty"     validate:"omitempty,oneof=user admin superadmin"`
	FullName *string `db:"full_name" json:"full_name,omitempty" validate:"omitempty,max=150"`
	Active   *bool   `db:"active"    json:"active,omitempty"`
}

func (r UpdateUserRequest) IsEmpty() bool {
	return r.Level == nil && r.FullName == nil && r.Active == nil
}

type AssignRolesRequest struct {
	Roles []string `json:"roles" validate:"required,dive,uuid"`
}

type GetUsersResponse struct {
	Users     []UserResponse `json:"users"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetUsersResponse) FromModels(models []model.User, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Users = make([]UserResponse, len(models))
	for i, mod := range models {
		r.Users[i].FromModel(mod)
	}
}

// ToPrincipal builds the actor for an authenticated request.
func ToPrincipal(user model.User) principal.Principal {
	return principal.New(user.ID, user.DisplayName(), user.Email, user.Level, user.Roles)
}
