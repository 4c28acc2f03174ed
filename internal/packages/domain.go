package packages

import "github.com/tenaris-admin/tenaris-admin/internal/entity"

// Package is a platform-level product bundle a client subscribes to.
type Package struct {
	entity.Base
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	MaxUsers    int     `json:"maxUsers"`
	MaxSources  int     `json:"maxSources"`
}

type CreatePackageRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	MaxUsers    int     `json:"maxUsers" validate:"gte=0"`
	MaxSources  int     `json:"maxSources" validate:"gte=0"`
}

type UpdatePackageRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	MaxUsers    *int    `json:"maxUsers,omitempty" validate:"omitempty,gte=0"`
	MaxSources  *int    `json:"maxSources,omitempty" validate:"omitempty,gte=0"`
	Version     *int    `json:"version" validate:"required"`
}
