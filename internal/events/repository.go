package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tenaris-admin/tenaris-admin/internal/entity"
	"github.com/tenaris-admin/tenaris-admin/internal/platform/db"
	"github.com/tenaris-admin/tenaris-admin/internal/shared"
)

// Repository provides PostgreSQL backed persistence for audit events.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var eventSearchable = []string{"action", "entity", "entity_id"}

var eventSortable = map[string]string{
	"createdAt": "created_at",
	"action":    "action",
	"entity":    "entity",
}

// Insert appends an event. The id and version are assigned here so callers
// only describe what happened.
func (r *Repository) Insert(ctx context.Context, event Event) (string, error) {
	q := db.Querier(ctx, r.pool)
	id := uuid.NewString()
	meta, err := json.Marshal(event.Meta)
	if err != nil {
		return "", shared.NewInternal(shared.KeyInternal, fmt.Errorf("events: encode meta: %w", err))
	}
	_, err = q.Exec(ctx, `
		INSERT INTO events (id, version, status, actor_id, client_id, action, entity, entity_id, meta, created_at, updated_at)
		VALUES ($1, 1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, NOW(), NOW())`,
		id, entity.StatusActive, event.ActorID, event.ClientID, event.Action, event.Entity, event.EntityID, meta)
	if err != nil {
		return "", shared.NewInternal(shared.KeyInternal, fmt.Errorf("events: insert: %w", err))
	}
	return id, nil
}

// Get fetches one event by id.
func (r *Repository) Get(ctx context.Context, id string) (Event, error) {
	q := db.Querier(ctx, r.pool)
	row := q.QueryRow(ctx, `
		SELECT id, version, status, actor_id, COALESCE(client_id, ''), action, entity, entity_id, meta, created_at
		FROM events WHERE id = $1 AND deleted_at IS NULL`, id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, shared.NewNotFound(shared.KeyNotFound)
		}
		return Event{}, shared.NewInternal(shared.KeyInternal, fmt.Errorf("events: get: %w", err))
	}
	return event, nil
}

// List returns a page of events matching the query.
func (r *Repository) List(ctx context.Context, lq entity.ListQuery) ([]Event, int, error) {
	q := db.Querier(ctx, r.pool)
	where, args, tail := lq.Clauses(eventSearchable, eventSortable)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM events %s`, where)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, shared.NewInternal(shared.KeyInternal, fmt.Errorf("events: count: %w", err))
	}

	query := fmt.Sprintf(`
		SELECT id, version, status, actor_id, COALESCE(client_id, ''), action, entity, entity_id, meta, created_at
		FROM events %s %s`, where, tail)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, shared.NewInternal(shared.KeyInternal, fmt.Errorf("events: list: %w", err))
	}
	defer rows.Close()

	var results []Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, 0, shared.NewInternal(shared.KeyInternal, fmt.Errorf("events: scan: %w", err))
		}
		results = append(results, event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shared.NewInternal(shared.KeyInternal, fmt.Errorf("events: rows: %w", err))
	}
	return results, total, nil
}

func scanEvent(row pgx.Row) (Event, error) {
	var event Event
	var meta []byte
	err := row.Scan(
		&event.ID, &event.Version, &event.Status, &event.ActorID, &event.ClientID,
		&event.Action, &event.Entity, &event.EntityID, &meta, &event.CreatedAt,
	)
	if err != nil {
		return Event{}, err
	}
	if len(meta) > 0 {
		_ = json.Unmarshal(meta, &event.Meta)
	}
	return event, nil
}
