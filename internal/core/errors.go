package core

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Domain error kinds. Services return these so the transport layer can map
// failures onto status codes without parsing message text. All of them carry
// a complete human-readable message; wrapping with fmt.Errorf("...: %w", err)
// up the stack preserves the kind for errors.As.

// ValidationError is a rejected input: missing field, non-positive quantity,
// identical source and destination warehouse, and similar pre-checks that
// fail before any write happens.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError is a lookup that matched no row under the caller's ownership.
// A row owned by someone else is reported exactly like a missing row.
type NotFoundError struct{ Msg string }

func (e *NotFoundError) Error() string { return e.Msg }

// ConflictError is a business-rule rejection on otherwise valid input:
// duplicate SKU or warehouse code, insufficient stock, a delete blocked by
// references, or an illegal status transition.
type ConflictError struct{ Msg string }

func (e *ConflictError) Error() string { return e.Msg }

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...any) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...any) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505), used to turn raced duplicate inserts into
// ConflictError instead of a bare driver error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
