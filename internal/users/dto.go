package users

import "github.com/tenaris-admin/tenaris-admin/internal/shared"

type CreateUserRequest struct {
	Name          string         `json:"name" validate:"required,max=200"`
	Email         string         `json:"email" validate:"required,email"`
	Password      string         `json:"password" validate:"required,min=8"`
	Role          string         `json:"role" validate:"required"`
	ClientID      string         `json:"clientId" validate:"required,uuid4"`
	Assignments   []shared.Grant `json:"assignments" validate:"omitempty,dive"`
	CostCenterIDs []string       `json:"costCenterIds" validate:"omitempty,dive,uuid4"`
	SourceIDs     []string       `json:"sourceIds" validate:"omitempty,dive,uuid4"`
}

type UpdateUserRequest struct {
	Name          *string        `json:"name,omitempty" validate:"omitempty,max=200"`
	Email         *string        `json:"email,omitempty" validate:"omitempty,email"`
	Password      *string        `json:"password,omitempty" validate:"omitempty,min=8"`
	Role          *string        `json:"role,omitempty"`
	Assignments   []shared.Grant `json:"assignments,omitempty" validate:"omitempty,dive"`
	CostCenterIDs []string       `json:"costCenterIds,omitempty" validate:"omitempty,dive,uuid4"`
	SourceIDs     []string       `json:"sourceIds,omitempty" validate:"omitempty,dive,uuid4"`
	Version       *int           `json:"version" validate:"required"`
}
