package users

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

// Repository is the persistence surface for users and their owned join
// tables.
type Repository interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
	Get(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	ExistsEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, lq entity.ListQuery) ([]User, int, error)
	Create(ctx context.Context, user User) error
	Update(ctx context.Context, user User) error
	CheckVersion(ctx context.Context, id string, version *int) error
	SoftDelete(ctx context.Context, id string, version int) error
	ReplaceGrants(ctx context.Context, userID string, grants []shared.Grant) error
	ReplaceCostCenters(ctx context.Context, userID string, costCenterIDs []string) error
	ReplaceSources(ctx context.Context, userID string, sourceIDs []string) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

var userSearchable = []string{"name", "email"}

var userSortable = map[string]string{
	"name":      "name",
	"email":     "email",
	"role":      "role",
	"status":    "status",
	"createdAt": "created_at",
}

const userColumns = `id, version, status, name, email, password_hash, role, client_id, created_at, updated_at, deleted_at`

func (r *repository) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.InTx(ctx, r.pool, fn)
}

func (r *repository) Get(ctx context.Context, id string) (User, error) {
	q := db.Querier(ctx, r.pool)
	row := q.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns), id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.NewNotFound(shared.KeyNotFound)
		}
		return User{}, shared.NewInternal(shared.KeyInternal, fmt.Errorf("users: get: %w", err))
	}
	if err := r.loadJoins(ctx, q, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (User, error) {
	q := db.Querier(ctx, r.pool)
	row := q.QueryRow(ctx, fmt.Sprintf(
		`SELECT %s FROM users WHERE email = $1 AND deleted_at IS NULL`, userColumns), email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.NewNotFound(shared.KeyNotFound)
		}
		return User{}, shared.NewInternal(shared.KeyInternal, fmt.Errorf("users: get by email: %w", err))
	}
	if err := r.loadJoins(ctx, q, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (r *repository) ExistsEmail(ctx context.Context, email string) (bool, error) {
	q := db.Querier(ctx, r.pool)
	var count int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE email = $1 AND deleted_at IS NULL`, email).Scan(&count)
	if err != nil {
		return false, shared.NewInternal(shared.KeyInternal, fmt.Errorf("users: exists email: %w", err))
	}
	return count > 0, nil
}

func (r *repository) List(ctx context.Context, lq entity.ListQuery) ([]User, int, error) {
	q := db.Querier(ctx, r.pool)
	where, args, tail := lq.Clauses(userSearchable, userSortable)

	var total int
	if err := q.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM users %s`, where), args...).Scan(&total); err != nil {
		return nil, 0, shared.NewInternal(shared.KeyInternal, fmt.Errorf("users: count: %w", err))
	}

	rows, err := q.Query(ctx, fmt.Sprintf(`SELECT %s FROM users %s %s`, userColumns, where, tail), args...)
	if err != nil {
		return nil, 0, shared.NewInternal(shared.KeyInternal, fmt.Errorf("users: list: %w", err))
	}
	defer rows.Close()

	var results []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, shared.NewInternal(shared.KeyInternal, fmt.Errorf("users: scan: %w", err))
		}
		results = append(results, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shared.NewInternal(shared.KeyInternal, fmt.Errorf("users: rows: %w", err))
	}

	for i := range results {
		if err := r.loadJoins(ctx, q, &results[i]); err != nil {
			return nil, 0, err
		}
	}
	return results, total, nil
}

func (r *repository) Create(ctx context.Context, user User) error {
	q := db.Querier(ctx, r.pool)
	_, err := q.Exec(ctx, `
		INSERT INTO users (id, version, status, name, email, password_hash, role, client_id, created_at, updated_at)
		VALUES ($1, 1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`,
		user.ID, user.Status, user.Name, user.Email, user.PasswordHash, user.Role, user.ClientID)
	if err != nil {
		return shared.NewInternal(shared.KeyInternal, fmt.Errorf("users: create: %w", err))
	}
	return nil
}

func (r *repository) Update(ctx context.Context, user User) error {
	q := db.Querier(ctx, r.pool)
	tag, err := q.Exec(ctx, `
		UPDATE users
		SET name = $3, email = $4, password_hash = $5, role = $6, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND version = $2 AND deleted_at IS NULL`,
		user.ID, user.Version, user.Name, user.Email, user.PasswordHash, user.Role)
	if err != nil {
		return shared.NewInternal(shared.KeyInternal, fmt.Errorf("users: update: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return shared.NewConflict(shared.KeyVersionConflict)
	}
	return nil
}

func (r *repository) CheckVersion(ctx context.Context, id string, version *int) error {
	return entity.CheckVersion(ctx, db.Querier(ctx, r.pool), "users", id, version)
}

func (r *repository) SoftDelete(ctx context.Context, id string, version int) error {
	return entity.SoftDelete(ctx, db.Querier(ctx, r.pool), "users", id, version)
}

// ReplaceGrants deletes every assignment row of the user and recreates the
// new set. No incremental diffing: the full replace keeps the semantics of
// the join table trivially predictable.
func (r *repository) ReplaceGrants(ctx context.Context, userID string, grants []shared.Grant) error {
	q := db.Querier(ctx, r.pool)
	if _, err := q.Exec(ctx, `DELETE FROM user_assignments WHERE user_id = $1`, userID); err != nil {
		return shared.NewInternal(shared.KeyInternal, fmt.Errorf("users: clear assignments: %w", err))
	}
	for _, grant := range grants {
		grant = grant.Normalize()
		_, err := q.Exec(ctx, `
			INSERT INTO user_assignments (user_id, assignment, can_create, can_read, can_update, can_delete)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			userID, grant.Assignment, grant.Create, grant.Read, grant.Update, grant.Delete)
		if err != nil {
			return shared.NewInternal(shared.KeyInternal, fmt.Errorf("users: insert assignment: %w", err))
		}
	}
	return nil
}

func (r *repository) ReplaceCostCenters(ctx context.Context, userID string, costCenterIDs []string) error {
	q := db.Querier(ctx, r.pool)
	if _, err := q.Exec(ctx, `DELETE FROM user_cost_centers WHERE user_id = $1`, userID); err != nil {
		return shared.NewInternal(shared.KeyInternal, fmt.Errorf("users: clear cost centers: %w", err))
	}
	for _, id := range costCenterIDs {
		if _, err := q.Exec(ctx,
			`INSERT INTO user_cost_centers (user_id, cost_center_id) VALUES ($1, $2)`, userID, id); err != nil {
			return shared.NewInternal(shared.KeyInternal, fmt.Errorf("users: insert cost center: %w", err))
		}
	}
	return nil
}

func (r *repository) ReplaceSources(ctx context.Context, userID string, sourceIDs []string) error {
	q := db.Querier(ctx, r.pool)
	if _, err := q.Exec(ctx, `DELETE FROM user_sources WHERE user_id = $1`, userID); err != nil {
		return shared.NewInternal(shared.KeyInternal, fmt.Errorf("users: clear sources: %w", err))
	}
	for _, id := range sourceIDs {
		if _, err := q.Exec(ctx,
			`INSERT INTO user_sources (user_id, source_id) VALUES ($1, $2)`, userID, id); err != nil {
			return shared.NewInternal(shared.KeyInternal, fmt.Errorf("users: insert source: %w", err))
		}
	}
	return nil
}

func (r *repository) loadJoins(ctx context.Context, q db.DBTX, user *User) error {
	rows, err := q.Query(ctx, `
		SELECT assignment, can_create, can_read, can_update, can_delete
		FROM user_assignments WHERE user_id = $1 ORDER BY assignment`, user.ID)
	if err != nil {
		return shared.NewInternal(shared.KeyInternal, fmt.Errorf("users: load assignments: %w", err))
	}
	defer rows.Close()
	user.Grants = nil
	for rows.Next() {
		var g shared.Grant
		if err := rows.Scan(&g.Assignment, &g.Create, &g.Read, &g.Update, &g.Delete); err != nil {
			return shared.NewInternal(shared.KeyInternal, fmt.Errorf("users: scan assignment: %w", err))
		}
		user.Grants = append(user.Grants, g)
	}
	if err := rows.Err(); err != nil {
		return shared.NewInternal(shared.KeyInternal, fmt.Errorf("users: assignment rows: %w", err))
	}

	user.CostCenterIDs, err = scanIDs(ctx, q,
		`SELECT cost_center_id FROM user_cost_centers WHERE user_id = $1 ORDER BY cost_center_id`, user.ID)
	if err != nil {
		return err
	}
	user.SourceIDs, err = scanIDs(ctx, q,
		`SELECT source_id FROM user_sources WHERE user_id = $1 ORDER BY source_id`, user.ID)
	return err
}

func scanIDs(ctx context.Context, q db.DBTX, query, userID string) ([]string, error) {
	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, shared.NewInternal(shared.KeyInternal, fmt.Errorf("users: load ids: %w", err))
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, shared.NewInternal(shared.KeyInternal, fmt.Errorf("users: scan id: %w", err))
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.NewInternal(shared.KeyInternal, fmt.Errorf("users: id rows: %w", err))
	}
	return ids, nil
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(
		&user.ID, &user.Version, &user.Status, &user.Name, &user.Email,
		&user.PasswordHash, &user.Role, &user.ClientID,
		&user.CreatedAt, &user.UpdatedAt, &user.DeletedAt,
	)
	return user, err
}
