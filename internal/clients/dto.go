package clients

// OwnerRequest describes the administrative user created together with a
// client so the tenant is usable immediately.
type OwnerRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// CostCenterSeed describes a cost center created together with a client.
type CostCenterSeed struct {
	Name string `json:"name" validate:"required,max=200"`
	Code string `json:"code" validate:"required,max=50"`
}

type CreateClientRequest struct {
	CNPJ        string           `json:"cnpj" validate:"required,min=11,max=14,numeric"`
	Name        string           `json:"name" validate:"required,max=200"`
	Email       *string          `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string          `json:"phone,omitempty" validate:"omitempty,max=50"`
	PackageID   string           `json:"packageId" validate:"required,uuid4"`
	Owner       *OwnerRequest    `json:"owner,omitempty"`
	CostCenters []CostCenterSeed `json:"costCenters,omitempty" validate:"omitempty,dive"`
}

type UpdateClientRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	PackageID *string `json:"packageId,omitempty" validate:"omitempty,uuid4"`
	Version   *int    `json:"version" validate:"required"`
}

type StatusRequest struct {
	Active  bool `json:"active"`
	Version *int `json:"version" validate:"required"`
}
