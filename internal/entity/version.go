package entity

import (
	"context"
	"fmt"

	"github.com/tenaris-admin/tenaris-admin/internal/platform/db"
	"github.com/tenaris-admin/tenaris-admin/internal/shared"
)

// Exists reports whether a live (not soft-deleted) row with the id exists.
// Services use it as a pre-check so callers get a clean not-found instead of
// a leaked persistence error.
func Exists(ctx context.Context, q db.DBTX, table, id string) (bool, error) {
	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE id = $1 AND deleted_at IS NULL`, table)
	if err := q.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return false, fmt.Errorf("entity: exists %s: %w", table, err)
	}
	return count > 0, nil
}

// CheckVersion validates the caller-supplied version against the stored row.
// A nil version is a validation error. A live row with a different version
// is a conflict; no live row at all is not-found. The check is advisory: the
// mutating statement's own versioned WHERE clause is the source of truth,
// so callers must run both inside one transaction.
func CheckVersion(ctx context.Context, q db.DBTX, table, id string, version *int) error {
	if version == nil {
		return shared.NewValidation(shared.KeyVersionRequired)
	}

	var count int
	query := fmt.Sprintf(
		`SELECT COUNT(*) FROM %s WHERE id = $1 AND version = $2 AND deleted_at IS NULL`, table)
	if err := q.QueryRow(ctx, query, id, *version).Scan(&count); err != nil {
		return shared.NewInternal(shared.KeyInternal, fmt.Errorf("entity: check version %s: %w", table, err))
	}
	if count > 0 {
		return nil
	}

	live, err := Exists(ctx, q, table, id)
	if err != nil {
		return shared.NewInternal(shared.KeyInternal, err)
	}
	if !live {
		return shared.NewNotFound(shared.KeyNotFound)
	}
	return shared.NewConflict(shared.KeyVersionConflict)
}

// SoftDelete marks the row INACTIVE with a deletion timestamp and bumps the
// version, all guarded by the versioned WHERE clause. Zero rows affected
// after a successful CheckVersion means a concurrent writer won the race.
func SoftDelete(ctx context.Context, q db.DBTX, table, id string, version int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $3, deleted_at = NOW(), updated_at = NOW(), version = version + 1
		WHERE id = $1 AND version = $2 AND deleted_at IS NULL`, table)
	tag, err := q.Exec(ctx, query, id, version, StatusInactive)
	if err != nil {
		return shared.NewInternal(shared.KeyInternal, fmt.Errorf("entity: soft delete %s: %w", table, err))
	}
	if tag.RowsAffected() == 0 {
		return shared.NewConflict(shared.KeyVersionConflict)
	}
	return nil
}

// SetStatus flips the status without touching deleted_at, through the same
// versioned update path. Used by the activate/deactivate toggles.
func SetStatus(ctx context.Context, q db.DBTX, table, id string, version int, status Status) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $3, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND version = $2 AND deleted_at IS NULL`, table)
	tag, err := q.Exec(ctx, query, id, version, status)
	if err != nil {
		return shared.NewInternal(shared.KeyInternal, fmt.Errorf("entity: set status %s: %w", table, err))
	}
	if tag.RowsAffected() == 0 {
		return shared.NewConflict(shared.KeyVersionConflict)
	}
	return nil
}
