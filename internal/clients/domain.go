package clients

import (
	"time"

	"github.com/tenaris-admin/tenaris-admin/internal/entity"
)

// Client is a tenant of the platform.
type Client struct {
	entity.Base
	CNPJ      string  `json:"cnpj"`
	Name      string  `json:"name"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	PackageID string  `json:"packageId"`
}

// HistoryEntry records a lifecycle change of a client (creation, update,
// activation toggles, deletion). History rows are append-only.
type HistoryEntry struct {
	ID         string        `json:"id"`
	ClientID   string        `json:"clientId"`
	ActorID    string        `json:"actorId"`
	Action     string        `json:"action"`
	FromStatus entity.Status `json:"fromStatus,omitempty"`
	ToStatus   entity.Status `json:"toStatus,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// History actions.
const (
	HistoryCreated     = "CREATED"
	HistoryUpdated     = "UPDATED"
	HistoryActivated   = "ACTIVATED"
	HistoryDeactivated = "DEACTIVATED"
	HistoryDeleted     = "DELETED"
)
