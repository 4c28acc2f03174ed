package sources

import "github.com/tenaris-admin/tenaris-admin/internal/entity"

// Source is a data origin registered by a client tenant.
type Source struct {
	entity.Base
	Name     string  `json:"name"`
	Code     string  `json:"code"`
	URL      *string `json:"url,omitempty"`
	ClientID string  `json:"clientId"`
}

type CreateSourceRequest struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Code     string  `json:"code" validate:"required,max=50"`
	URL      *string `json:"url,omitempty" validate:"omitempty,url"`
	ClientID string  `json:"clientId" validate:"required,uuid4"`
}

type UpdateSourceRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Code    *string `json:"code,omitempty" validate:"omitempty,max=50"`
	URL     *string `json:"url,omitempty" validate:"omitempty,url"`
	Version *int    `json:"version" validate:"required"`
}

type StatusRequest struct {
	Active  bool `json:"active"`
	Version *int `json:"version" validate:"required"`
}
