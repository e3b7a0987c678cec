package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// Kind tells callers which class of failure a repository call hit.
// "Not found" is not a Kind: reads return an empty result and writes
// return zero affected rows.
type Kind string

const (
	// KindConnection means the store was unreachable, rejected the session
	// or stayed locked by another writer past the busy timeout
	KindConnection Kind = "connection_failure"
	// KindQuery covers malformed statements, constraint violations and
	// dangling category/ingredient references
	KindQuery Kind = "query_failure"
	// KindCanceled means the caller's context was canceled or timed out
	KindCanceled Kind = "canceled"
)

var (
	// ErrCategoryNotFound is returned when a pizza references a category id
	// that has no row in categories.
	ErrCategoryNotFound = errors.New("repository: category not found")

	// ErrIngredientNotFound is returned when one or more ingredient ids have
	// no row in ingredients.
	ErrIngredientNotFound = errors.New("repository: ingredient not found")

	// ErrReferenceViolation is returned when the store itself rejects a
	// write on a foreign key.
	ErrReferenceViolation = errors.New("repository: foreign key violation")

	// ErrStoreBusy marks a write that could not get the store's lock in time.
	ErrStoreBusy = errors.New("repository: store is busy")

	// ErrInvalidLimit is returned when a list cap is zero or negative.
	ErrInvalidLimit = errors.New("repository: limit must be positive")
)

// Error is the wrapper every failing repository call returns
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Op == "" {
		return fmt.Sprintf("%v (%s)", e.Err, e.Kind)
	}
	return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err, or anything it wraps, is a repository Error of the given kind
func IsKind(err error, kind Kind) bool {
	var repoErr *Error
	if !errors.As(err, &repoErr) {
		return false
	}
	return repoErr.Kind == kind
}

// KindOf returns the Kind carried by err, or "" when err is not a repository error
func KindOf(err error) Kind {
	var repoErr *Error
	if !errors.As(err, &repoErr) {
		return ""
	}
	return repoErr.Kind
}

func newError(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// wrap classifies a driver or gorm error and annotates it with op
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var repoErr *Error
	if errors.As(err, &repoErr) {
		return err
	}
	kind, cause := classify(err)
	return newError(kind, op, cause)
}

func classify(err error) (Kind, error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled, err
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return KindConnection, err
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return KindQuery, fmt.Errorf("%w: %v", ErrReferenceViolation, err)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrCantOpen, sqlite3.ErrNotADB, sqlite3.ErrAuth:
			return KindConnection, err
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			// another writer held the lock past the busy timeout
			return KindConnection, fmt.Errorf("%w: %v", ErrStoreBusy, err)
		case sqlite3.ErrConstraint:
			if sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
				return KindQuery, fmt.Errorf("%w: %v", ErrReferenceViolation, err)
			}
		}
		return KindQuery, err
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return KindConnection, err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23503":
			return KindQuery, fmt.Errorf("%w: %v", ErrReferenceViolation, err)
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "28"):
			// connection exception / invalid authorization
			return KindConnection, err
		}
		return KindQuery, err
	}

	return KindQuery, err
}
