package dto

import (
	"spacebook/internal/domains/role/model"
	"spacebook/shared"
	gDto "spacebook/shared/dto"
	gModel "spacebook/shared/model"
	"spacebook/shared/timezone"

	"github.com/google/uuid"
)

type CreateRoleRequest struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description" validate:"omitempty,max=255"`
}

func (c *CreateRoleRequest) ToModel(user string) model.Role {
	now := timezone.Now()

	return model.Role{
		ID:          uuid.NewString(),
		Name:        c.Name,
		Description: c.Description,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type RoleResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	gDto.Metadata
}

func (r *RoleResponse) FromModel(model model.Role) {
	r.ID = model.ID
	r.Name = model.Name
	r.Description = model.Description
	r.Metadata.FromModel(model.Metadata)
}

type GetRolesResponse struct {
	Roles     []RoleResponse `json:"roles"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRolesResponse) FromModels(models []model.Role, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Roles = make([]RoleResponse, len(models))
	for i, mod := range models {
		r.Roles[i].FromModel(mod)
	}
}
