package packages

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

// Repository is the persistence surface for packages.
type Repository interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
	Get(ctx context.Context, id string) (Package, error)
	List(ctx context.Context, lq entity.ListQuery) ([]Package, int, error)
	Create(ctx context.Context, pkg Package) error
	Update(ctx context.Context, pkg Package) error
	CheckVersion(ctx context.Context, id string, version *int) error
	SoftDelete(ctx context.Context, id string, version int) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

var packageSearchable = []string{"name", "description"}

var packageSortable = map[string]string{
	"name":      "name",
	"status":    "status",
	"createdAt": "created_at",
}

func (r *repository) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.InTx(ctx, r.pool, fn)
}

func (r *repository) Get(ctx context.Context, id string) (Package, error) {
	q := db.Querier(ctx, r.pool)
	row := q.QueryRow(ctx, `
		SELECT id, version, status, name, description, max_users, max_sources, created_at, updated_at, deleted_at
		FROM packages WHERE id = $1`, id)
	pkg, err := scanPackage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Package{}, shared.NewNotFound(shared.KeyNotFound)
		}
		return Package{}, shared.NewInternal(shared.KeyInternal, fmt.Errorf("packages: get: %w", err))
	}
	return pkg, nil
}

func (r *repository) List(ctx context.Context, lq entity.ListQuery) ([]Package, int, error) {
	q := db.Querier(ctx, r.pool)
	where, args, tail := lq.Clauses(packageSearchable, packageSortable)

	var total int
	if err := q.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM packages %s`, where), args...).Scan(&total); err != nil {
		return nil, 0, shared.NewInternal(shared.KeyInternal, fmt.Errorf("packages: count: %w", err))
	}

	rows, err := q.Query(ctx, fmt.Sprintf(`
		SELECT id, version, status, name, description, max_users, max_sources, created_at, updated_at, deleted_at
		FROM packages %s %s`, where, tail), args...)
	if err != nil {
		return nil, 0, shared.NewInternal(shared.KeyInternal, fmt.Errorf("packages: list: %w", err))
	}
	defer rows.Close()

	var results []Package
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, 0, shared.NewInternal(shared.KeyInternal, fmt.Errorf("packages: scan: %w", err))
		}
		results = append(results, pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shared.NewInternal(shared.KeyInternal, fmt.Errorf("packages: rows: %w", err))
	}
	return results, total, nil
}

func (r *repository) Create(ctx context.Context, pkg Package) error {
	q := db.Querier(ctx, r.pool)
	_, err := q.Exec(ctx, `
		INSERT INTO packages (id, version, status, name, description, max_users, max_sources, created_at, updated_at)
		VALUES ($1, 1, $2, $3, $4, $5, $6, NOW(), NOW())`,
		pkg.ID, pkg.Status, pkg.Name, pkg.Description, pkg.MaxUsers, pkg.MaxSources)
	if err != nil {
		return shared.NewInternal(shared.KeyInternal, fmt.Errorf("packages: create: %w", err))
	}
	return nil
}

func (r *repository) Update(ctx context.Context, pkg Package) error {
	q := db.Querier(ctx, r.pool)
	tag, err := q.Exec(ctx, `
		UPDATE packages
		SET name = $3, description = $4, max_users = $5, max_sources = $6, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND version = $2 AND deleted_at IS NULL`,
		pkg.ID, pkg.Version, pkg.Name, pkg.Description, pkg.MaxUsers, pkg.MaxSources)
	if err != nil {
		return shared.NewInternal(shared.KeyInternal, fmt.Errorf("packages: update: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return shared.NewConflict(shared.KeyVersionConflict)
	}
	return nil
}

func (r *repository) CheckVersion(ctx context.Context, id string, version *int) error {
	return entity.CheckVersion(ctx, db.Querier(ctx, r.pool), "packages", id, version)
}

func (r *repository) SoftDelete(ctx context.Context, id string, version int) error {
	return entity.SoftDelete(ctx, db.Querier(ctx, r.pool), "packages", id, version)
}

func scanPackage(row pgx.Row) (Package, error) {
	var pkg Package
	err := row.Scan(
		&pkg.ID, &pkg.Version, &pkg.Status, &pkg.Name, &pkg.Description,
		&pkg.MaxUsers, &pkg.MaxSources,
		&pkg.CreatedAt, &pkg.UpdatedAt, &pkg.DeletedAt,
	)
	return pkg, err
}
