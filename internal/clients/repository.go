package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tenaris-admin/tenaris-admin/internal/entity"
	"github.com/tenaris-admin/tenaris-admin/internal/platform/db"
	"github.com/tenaris-admin/tenaris-admin/internal/shared"
)

// Repository is the persistence surface for clients. The concrete type
// resolves its query surface per call, so methods transparently join a
// transaction carried by the context.
type Repository interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
	Get(ctx context.Context, id string) (Client, error)
	ExistsCNPJ(ctx context.Context, cnpj string) (bool, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, lq entity.ListQuery) ([]Client, int, error)
	Create(ctx context.Context, client Client) error
	Update(ctx context.Context, client Client) error
	CheckVersion(ctx context.Context, id string, version *int) error
	SoftDelete(ctx context.Context, id string, version int) error
	SetStatus(ctx context.Context, id string, version int, status entity.Status) error
	InsertHistory(ctx context.Context, entry HistoryEntry) error
	ListHistory(ctx context.Context, clientID string) ([]HistoryEntry, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

var clientSearchable = []string{"name", "cnpj", "email"}

var clientSortable = map[string]string{
	"name":      "name",
	"cnpj":      "cnpj",
	"status":    "status",
	"createdAt": "created_at",
}

func (r *repository) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.InTx(ctx, r.pool, fn)
}

func (r *repository) Get(ctx context.Context, id string) (Client, error) {
	q := db.Querier(ctx, r.pool)
	row := q.QueryRow(ctx, `
		SELECT id, version, status, cnpj, name, email, phone, package_id, created_at, updated_at, deleted_at
		FROM clients WHERE id = $1`, id)
	client, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, shared.NewNotFound(shared.KeyNotFound)
		}
		return Client{}, shared.NewInternal(shared.KeyInternal, fmt.Errorf("clients: get: %w", err))
	}
	return client, nil
}

func (r *repository) ExistsCNPJ(ctx context.Context, cnpj string) (bool, error) {
	q := db.Querier(ctx, r.pool)
	var count int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM clients WHERE cnpj = $1 AND deleted_at IS NULL`, cnpj).Scan(&count)
	if err != nil {
		return false, shared.NewInternal(shared.KeyInternal, fmt.Errorf("clients: exists cnpj: %w", err))
	}
	return count > 0, nil
}

func (r *repository) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := entity.Exists(ctx, db.Querier(ctx, r.pool), "clients", id)
	if err != nil {
		return false, shared.NewInternal(shared.KeyInternal, err)
	}
	return ok, nil
}

func (r *repository) List(ctx context.Context, lq entity.ListQuery) ([]Client, int, error) {
	q := db.Querier(ctx, r.pool)
	where, args, tail := lq.Clauses(clientSearchable, clientSortable)

	var total int
	if err := q.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM clients %s`, where), args...).Scan(&total); err != nil {
		return nil, 0, shared.NewInternal(shared.KeyInternal, fmt.Errorf("clients: count: %w", err))
	}

	rows, err := q.Query(ctx, fmt.Sprintf(`
		SELECT id, version, status, cnpj, name, email, phone, package_id, created_at, updated_at, deleted_at
		FROM clients %s %s`, where, tail), args...)
	if err != nil {
		return nil, 0, shared.NewInternal(shared.KeyInternal, fmt.Errorf("clients: list: %w", err))
	}
	defer rows.Close()

	var results []Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, 0, shared.NewInternal(shared.KeyInternal, fmt.Errorf("clients: scan: %w", err))
		}
		results = append(results, client)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shared.NewInternal(shared.KeyInternal, fmt.Errorf("clients: rows: %w", err))
	}
	return results, total, nil
}

func (r *repository) Create(ctx context.Context, client Client) error {
	q := db.Querier(ctx, r.pool)
	_, err := q.Exec(ctx, `
		INSERT INTO clients (id, version, status, cnpj, name, email, phone, package_id, created_at, updated_at)
		VALUES ($1, 1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`,
		client.ID, client.Status, client.CNPJ, client.Name, client.Email, client.Phone, client.PackageID)
	if err != nil {
		return shared.NewInternal(shared.KeyInternal, fmt.Errorf("clients: create: %w", err))
	}
	return nil
}

// Update mutates the row guarded by the versioned WHERE clause and bumps the
// version. Zero rows affected means a concurrent writer claimed the version
// first.
func (r *repository) Update(ctx context.Context, client Client) error {
	q := db.Querier(ctx, r.pool)
	tag, err := q.Exec(ctx, `
		UPDATE clients
		SET name = $3, email = $4, phone = $5, package_id = $6, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND version = $2 AND deleted_at IS NULL`,
		client.ID, client.Version, client.Name, client.Email, client.Phone, client.PackageID)
	if err != nil {
		return shared.NewInternal(shared.KeyInternal, fmt.Errorf("clients: update: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return shared.NewConflict(shared.KeyVersionConflict)
	}
	return nil
}

func (r *repository) CheckVersion(ctx context.Context, id string, version *int) error {
	return entity.CheckVersion(ctx, db.Querier(ctx, r.pool), "clients", id, version)
}

func (r *repository) SoftDelete(ctx context.Context, id string, version int) error {
	return entity.SoftDelete(ctx, db.Querier(ctx, r.pool), "clients", id, version)
}

func (r *repository) SetStatus(ctx context.Context, id string, version int, status entity.Status) error {
	return entity.SetStatus(ctx, db.Querier(ctx, r.pool), "clients", id, version, status)
}

func (r *repository) InsertHistory(ctx context.Context, entry HistoryEntry) error {
	q := db.Querier(ctx, r.pool)
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	_, err := q.Exec(ctx, `
		INSERT INTO client_history (id, client_id, actor_id, action, from_status, to_status, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NOW())`,
		entry.ID, entry.ClientID, entry.ActorID, entry.Action, string(entry.FromStatus), string(entry.ToStatus))
	if err != nil {
		return shared.NewInternal(shared.KeyInternal, fmt.Errorf("clients: insert history: %w", err))
	}
	return nil
}

func (r *repository) ListHistory(ctx context.Context, clientID string) ([]HistoryEntry, error) {
	q := db.Querier(ctx, r.pool)
	rows, err := q.Query(ctx, `
		SELECT id, client_id, actor_id, action, COALESCE(from_status, ''), COALESCE(to_status, ''), created_at
		FROM client_history WHERE client_id = $1 ORDER BY created_at DESC`, clientID)
	if err != nil {
		return nil, shared.NewInternal(shared.KeyInternal, fmt.Errorf("clients: list history: %w", err))
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		if err := rows.Scan(&entry.ID, &entry.ClientID, &entry.ActorID, &entry.Action,
			&entry.FromStatus, &entry.ToStatus, &entry.CreatedAt); err != nil {
			return nil, shared.NewInternal(shared.KeyInternal, fmt.Errorf("clients: scan history: %w", err))
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.NewInternal(shared.KeyInternal, fmt.Errorf("clients: history rows: %w", err))
	}
	return entries, nil
}

func scanClient(row pgx.Row) (Client, error) {
	var client Client
	err := row.Scan(
		&client.ID, &client.Version, &client.Status, &client.CNPJ, &client.Name,
		&client.Email, &client.Phone, &client.PackageID,
		&client.CreatedAt, &client.UpdatedAt, &client.DeletedAt,
	)
	return client, err
}
