package repo

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	ErrNotFound         = errors.New("repo: not found")
	ErrConflict         = errors.New("repo: unique constraint violated")
	ErrInvalidReference = errors.New("repo: referenced row does not exist")
	// ErrStatusChanged is returned by SwapStatus when the row no longer
	// holds the expected status.
	ErrStatusChanged = errors.New("repo: status changed concurrently")
)

// Postgres SQLSTATE codes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsStatusChanged(err error) bool {
	return errors.Is(err, ErrStatusChanged)
}

func IsInvalidReference(err error) bool {
	return errors.Is(err, ErrInvalidReference)
}

// mapError translates driver errors into the package's sentinel errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return &constraintError{kind: ErrConflict, constraint: pqErr.Constraint, err: err}
		case pgForeignKeyViolation:
			return &constraintError{kind: ErrInvalidReference, constraint: pqErr.Constraint, err: err}
		}
	}
	return err
}

// constraintError keeps the violated constraint name next to the sentinel.
type constraintError struct {
	kind       error
	constraint string
	err        error
}

func (e *constraintError) Error() string {
	if e.constraint == "" {
		return e.kind.Error()
	}
	return e.kind.Error() + " (" + e.constraint + ")"
}

func (e *constraintError) Is(target error) bool { return target == e.kind }
func (e *constraintError) Unwrap() error        { return e.err }

// ConstraintName returns the violated constraint of a mapped error, if any.
func ConstraintName(err error) string {
	var ce *constraintError
	if errors.As(err, &ce) {
		return ce.constraint
	}
	return ""
}
