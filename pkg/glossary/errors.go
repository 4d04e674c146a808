package glossary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Sentinel errors for the failure kinds the HTTP layer maps to status codes.
var (
	// ErrNotFound indicates an entry lookup by id failed.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates a malformed id, empty query, or failed
	// field validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict indicates a unique or foreign-key constraint violation,
	// e.g. a like on a non-existent entry.
	ErrConflict = errors.New("conflict")
	// ErrUnprocessable indicates a well-formed but semantically invalid
	// payload.
	ErrUnprocessable = errors.New("unprocessable entity")
)

// NewInvalidInput tags a message as an input validation failure.
func NewInvalidInput(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

// NewNotFound tags a message as a missing-resource failure.
func NewNotFound(msg string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, msg)
}

// NewConflict tags a message as a constraint conflict.
func NewConflict(msg string) error {
	return fmt.Errorf("%w: %s", ErrConflict, msg)
}

// Postgres SQLSTATE codes surfaced as semantic errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// MapStorageError converts driver-level failures into the domain taxonomy.
// sql.ErrNoRows becomes ErrNotFound, constraint violations become
// ErrConflict, everything else is wrapped with op context and surfaces as an
// internal error upstream.
func MapStorageError(op string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", op, ErrConflict)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: referenced entry does not exist: %w", op, ErrConflict)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
