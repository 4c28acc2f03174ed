package costcenters

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

// Repository is the persistence surface for cost centers.
type Repository interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
	Get(ctx context.Context, id string) (CostCenter, error)
	ExistsCode(ctx context.Context, clientID, code string) (bool, error)
	List(ctx context.Context, lq entity.ListQuery) ([]CostCenter, int, error)
	Create(ctx context.Context, cc CostCenter) error
	Update(ctx context.Context, cc CostCenter) error
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

var costCenterSearchable = []string{"name", "code"}

var costCenterSortable = map[string]string{
	"name":      "name",
	"code":      "code",
	"status":    "status",
	"createdAt": "created_at",
}

func (r *repository) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.InTx(ctx, r.pool, fn)
}

func (r *repository) Get(ctx context.Context, id string) (CostCenter, error) {
	q := db.Querier(ctx, r.pool)
	row := q.QueryRow(ctx, `
		SELECT id, version, status, name, code, client_id, created_at, updated_at, deleted_at
		FROM cost_centers WHERE id = $1`, id)
	cc, err := scanCostCenter(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CostCenter{}, shared.NewNotFound(shared.KeyNotFound)
		}
		return CostCenter{}, shared.NewInternal(shared.KeyInternal, fmt.Errorf("costcenters: get: %w", err))
	}
	return cc, nil
}

func (r *repository) ExistsCode(ctx context.Context, clientID, code string) (bool, error) {
	q := db.Querier(ctx, r.pool)
	var count int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM cost_centers WHERE client_id = $1 AND code = $2 AND deleted_at IS NULL`,
		clientID, code).Scan(&count)
	if err != nil {
		return false, shared.NewInternal(shared.KeyInternal, fmt.Errorf("costcenters: exists code: %w", err))
	}
	return count > 0, nil
}

func (r *repository) List(ctx context.Context, lq entity.ListQuery) ([]CostCenter, int, error) {
	q := db.Querier(ctx, r.pool)
	where, args, tail := lq.Clauses(costCenterSearchable, costCenterSortable)

	var total int
	if err := q.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM cost_centers %s`, where), args...).Scan(&total); err != nil {
		return nil, 0, shared.NewInternal(shared.KeyInternal, fmt.Errorf("costcenters: count: %w", err))
	}

	rows, err := q.Query(ctx, fmt.Sprintf(`
		SELECT id, version, status, name, code, client_id, created_at, updated_at, deleted_at
		FROM cost_centers %s %s`, where, tail), args...)
	if err != nil {
		return nil, 0, shared.NewInternal(shared.KeyInternal, fmt.Errorf("costcenters: list: %w", err))
	}
	defer rows.Close()

	var results []CostCenter
	for rows.Next() {
		cc, err := scanCostCenter(rows)
		if err != nil {
			return nil, 0, shared.NewInternal(shared.KeyInternal, fmt.Errorf("costcenters: scan: %w", err))
		}
		results = append(results, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shared.NewInternal(shared.KeyInternal, fmt.Errorf("costcenters: rows: %w", err))
	}
	return results, total, nil
}

func (r *repository) Create(ctx context.Context, cc CostCenter) error {
	q := db.Querier(ctx, r.pool)
	_, err := q.Exec(ctx, `
		INSERT INTO cost_centers (id, version, status, name, code, client_id, created_at, updated_at)
		VALUES ($1, 1, $2, $3, $4, $5, NOW(), NOW())`,
		cc.ID, cc.Status, cc.Name, cc.Code, cc.ClientID)
	if err != nil {
		return shared.NewInternal(shared.KeyInternal, fmt.Errorf("costcenters: create: %w", err))
	}
	return nil
}

func (r *repository) Update(ctx context.Context, cc CostCenter) error {
	q := db.Querier(ctx, r.pool)
	tag, err := q.Exec(ctx, `
		UPDATE cost_centers
		SET name = $3, code = $4, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND version = $2 AND deleted_at IS NULL`,
		cc.ID, cc.Version, cc.Name, cc.Code)
	if err != nil {
		return shared.NewInternal(shared.KeyInternal, fmt.Errorf("costcenters: update: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return shared.NewConflict(shared.KeyVersionConflict)
	}
	return nil
}

func (r *repository) CheckVersion(ctx context.Context, id string, version *int) error {
	return entity.CheckVersion(ctx, db.Querier(ctx, r.pool), "cost_centers", id, version)
}

func (r *repository) SoftDelete(ctx context.Context, id string, version int) error {
	return entity.SoftDelete(ctx, db.Querier(ctx, r.pool), "cost_centers", id, version)
}

func scanCostCenter(row pgx.Row) (CostCenter, error) {
	var cc CostCenter
	err := row.Scan(
		&cc.ID, &cc.Version, &cc.Status, &cc.Name, &cc.Code, &cc.ClientID,
		&cc.CreatedAt, &cc.UpdatedAt, &cc.DeletedAt,
	)
	return cc, err
}
