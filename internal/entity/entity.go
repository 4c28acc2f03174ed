// Package entity provides the pieces every business entity shares: the
// status lifecycle, the optimistic version check, soft deletion and the
// filtered-listing query builder. Module repositories compose these helpers
// with their own SQL instead of inheriting from a base type.
package entity

import "time"

// Status is the lifecycle state carried by every business entity.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusPending  Status = "PENDING"
)

// Base carries the columns shared by every versioned table.
type Base struct {
	ID        string     `json:"id"`
	Version   int        `json:"version"`
	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}
