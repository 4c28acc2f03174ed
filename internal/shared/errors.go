package shared

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrorKind classifies a failure so the HTTP boundary can choose a status
// code deterministically.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindPermission
)

// AppError is the typed failure propagated from services and repositories.
// Key selects the localized message; CorrelationID ties log lines to the
// response the caller saw.
type AppError struct {
	Kind          ErrorKind
	Key           string
	CorrelationID string
	Err           error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Key, e.Err)
	}
	return e.Key
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, key string, err error) *AppError {
	return &AppError{
		Kind:          kind,
		Key:           key,
		CorrelationID: uuid.NewString(),
		Err:           err,
	}
}

// NewValidation reports missing or malformed caller input.
func NewValidation(key string) *AppError { return newError(KindValidation, key, nil) }

// NewNotFound reports a missing or invisible entity.
func NewNotFound(key string) *AppError { return newError(KindNotFound, key, nil) }

// NewConflict reports a version mismatch or uniqueness violation.
func NewConflict(key string) *AppError { return newError(KindConflict, key, nil) }

// NewPermission reports an unauthorized role/assignment/module combination.
func NewPermission(key string) *AppError { return newError(KindPermission, key, nil) }

// NewInternal reports a programming or infrastructure failure.
func NewInternal(key string, err error) *AppError { return newError(KindInternal, key, err) }

// KindOf extracts the kind from err, defaulting to KindInternal for
// untyped errors.
func KindOf(err error) ErrorKind {
	var app *AppError
	if errors.As(err, &app) {
		return app.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var app *AppError
	return errors.As(err, &app) && app.Kind == kind
}
