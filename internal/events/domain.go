package events

import (
	"context"
	"time"

	"github.com/tenaris-admin/tenaris-admin/internal/entity"
)

// Event is an audit record of a mutation performed through the API. Events
// are append-only: they are created by the system, never updated, and soft
// deletion does not apply to them beyond the uniform column layout.
type Event struct {
	ID        string         `json:"id"`
	Version   int            `json:"version"`
	Status    entity.Status  `json:"status"`
	ActorID   string         `json:"actorId"`
	ClientID  string         `json:"clientId,omitempty"`
	Action    string         `json:"action"`
	Entity    string         `json:"entity"`
	EntityID  string         `json:"entityId"`
	Meta      map[string]any `json:"meta,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Recorder persists audit events. Services depend on this interface so the
// HTTP process can swap in the asynq-backed recorder that defers the write
// to the worker.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}
