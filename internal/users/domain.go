package users

import (
	"github.com/tenaris-admin/tenaris-admin/internal/entity"
	"github.com/tenaris-admin/tenaris-admin/internal/shared"
)

// User is an account scoped to a client tenant. Grants, cost centers and
// sources are owned join rows: every update replaces them wholesale.
type User struct {
	entity.Base
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	PasswordHash  string         `json:"-"`
	Role          string         `json:"role"`
	ClientID      string         `json:"clientId"`
	Grants        []shared.Grant `json:"assignments"`
	CostCenterIDs []string       `json:"costCenterIds"`
	SourceIDs     []string       `json:"sourceIds"`
}
