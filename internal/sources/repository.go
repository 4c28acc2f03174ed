package sources

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tenaris-admin/tenaris-admin/internal/entity"
	"github.com/tenaris-admin/tenaris-admin/internal/platform/db"
	"github.com/tenaris-admin/tenaris-admin/internal/shared"
)

// Repository is the persistence surface for sources.
type Repository interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
	Get(ctx context.Context, id string) (Source, error)
	ExistsCode(ctx context.Context, clientID, code string) (bool, error)
	List(ctx context.Context, lq entity.ListQuery) ([]Source, int, error)
	Create(ctx context.Context, source Source) error
	Update(ctx context.Context, source Source) error
	CheckVersion(ctx context.Context, id string, version *int) error
	SoftDelete(ctx context.Context, id string, version int) error
	SetStatus(ctx context.Context, id string, version int, status entity.Status) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

var sourceSearchable = []string{"name", "code"}

var sourceSortable = map[string]string{
	"name":      "name",
	"code":      "code",
	"status":    "status",
	"createdAt": "created_at",
}

func (r *repository) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.InTx(ctx, r.pool, fn)
}

func (r *repository) Get(ctx context.Context, id string) (Source, error) {
	q := db.Querier(ctx, r.pool)
	row := q.QueryRow(ctx, `
		SELECT id, version, status, name, code, url, client_id, created_at, updated_at, deleted_at
		FROM sources WHERE id = $1`, id)
	source, err := scanSource(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Source{}, shared.NewNotFound(shared.KeyNotFound)
		}
		return Source{}, shared.NewInternal(shared.KeyInternal, fmt.Errorf("sources: get: %w", err))
	}
	return source, nil
}

func (r *repository) ExistsCode(ctx context.Context, clientID, code string) (bool, error) {
	q := db.Querier(ctx, r.pool)
	var count int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM sources WHERE client_id = $1 AND code = $2 AND deleted_at IS NULL`,
		clientID, code).Scan(&count)
	if err != nil {
		return false, shared.NewInternal(shared.KeyInternal, fmt.Errorf("sources: exists code: %w", err))
	}
	return count > 0, nil
}

func (r *repository) List(ctx context.Context, lq entity.ListQuery) ([]Source, int, error) {
	q := db.Querier(ctx, r.pool)
	where, args, tail := lq.Clauses(sourceSearchable, sourceSortable)

	var total int
	if err := q.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM sources %s`, where), args...).Scan(&total); err != nil {
		return nil, 0, shared.NewInternal(shared.KeyInternal, fmt.Errorf("sources: count: %w", err))
	}

	rows, err := q.Query(ctx, fmt.Sprintf(`
		SELECT id, version, status, name, code, url, client_id, created_at, updated_at, deleted_at
		FROM sources %s %s`, where, tail), args...)
	if err != nil {
		return nil, 0, shared.NewInternal(shared.KeyInternal, fmt.Errorf("sources: list: %w", err))
	}
	defer rows.Close()

	var results []Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, 0, shared.NewInternal(shared.KeyInternal, fmt.Errorf("sources: scan: %w", err))
		}
		results = append(results, source)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shared.NewInternal(shared.KeyInternal, fmt.Errorf("sources: rows: %w", err))
	}
	return results, total, nil
}

func (r *repository) Create(ctx context.Context, source Source) error {
	q := db.Querier(ctx, r.pool)
	_, err := q.Exec(ctx, `
		INSERT INTO sources (id, version, status, name, code, url, client_id, created_at, updated_at)
		VALUES ($1, 1, $2, $3, $4, $5, $6, NOW(), NOW())`,
		source.ID, source.Status, source.Name, source.Code, source.URL, source.ClientID)
	if err != nil {
		return shared.NewInternal(shared.KeyInternal, fmt.Errorf("sources: create: %w", err))
	}
	return nil
}

func (r *repository) Update(ctx context.Context, source Source) error {
	q := db.Querier(ctx, r.pool)
	tag, err := q.Exec(ctx, `
		UPDATE sources
		SET name = $3, code = $4, url = $5, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND version = $2 AND deleted_at IS NULL`,
		source.ID, source.Version, source.Name, source.Code, source.URL)
	if err != nil {
		return shared.NewInternal(shared.KeyInternal, fmt.Errorf("sources: update: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return shared.NewConflict(shared.KeyVersionConflict)
	}
	return nil
}

func (r *repository) CheckVersion(ctx context.Context, id string, version *int) error {
	return entity.CheckVersion(ctx, db.Querier(ctx, r.pool), "sources", id, version)
}

func (r *repository) SoftDelete(ctx context.Context, id string, version int) error {
	return entity.SoftDelete(ctx, db.Querier(ctx, r.pool), "sources", id, version)
}

func (r *repository) SetStatus(ctx context.Context, id string, version int, status entity.Status) error {
	return entity.SetStatus(ctx, db.Querier(ctx, r.pool), "sources", id, version, status)
}

func scanSource(row pgx.Row) (Source, error) {
	var source Source
	err := row.Scan(
		&source.ID, &source.Version, &source.Status, &source.Name, &source.Code,
		&source.URL, &source.ClientID,
		&source.CreatedAt, &source.UpdatedAt, &source.DeletedAt,
	)
	return source, err
}
