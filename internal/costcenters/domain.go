package costcenters

import "github.com/tenaris-admin/tenaris-admin/internal/entity"

// CostCenter is a budgeting bucket owned by a client tenant.
type CostCenter struct {
	entity.Base
	Name     string `json:"name"`
	Code     string `json:"code"`
	ClientID string `json:"clientId"`
}

type CreateCostCenterRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Code     string `json:"code" validate:"required,max=50"`
	ClientID string `json:"clientId" validate:"required,uuid4"`
}

type UpdateCostCenterRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Code    *string `json:"code,omitempty" validate:"omitempty,max=50"`
	Version *int    `json:"version" validate:"required"`
}
