package storage

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"monev/internal/core"
)

// OperationError records which store operation failed. The wrapped error keeps
// the core category (ErrNotFound, ErrConflict) reachable through errors.Is.
type OperationError struct {
	Operation string
	Err       error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("database operation '%s' failed: %v", e.Operation, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// classify wraps a driver error for op and maps it onto the core error categories.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return &OperationError{Operation: op, Err: core.ErrNotFound}
	case isForeignKeyViolation(err):
		return &OperationError{Operation: op, Err: fmt.Errorf("%w: %v", core.ErrConflict, err)}
	default:
		return &OperationError{Operation: op, Err: err}
	}
}

func isForeignKeyViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		if se.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
			return true
		}
		return strings.Contains(se.Error(), "FOREIGN KEY constraint failed")
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		return pe.Code == "23503"
	}
	return false
}

// IsTransient reports whether err is worth retrying: lock contention,
// dropped connections and serialization failures.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, core.ErrValidation) || errors.Is(err, core.ErrNotFound) || errors.Is(err, core.ErrConflict) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		primary := se.Code() & 0xff
		return primary == sqlite3.SQLITE_BUSY || primary == sqlite3.SQLITE_LOCKED
	}

	var pe *pq.Error
	if errors.As(err, &pe) {
		switch {
		case pe.Code.Class() == "08": // connection exception
			return true
		case pe.Code == "40001", pe.Code == "40P01", pe.Code == "57P01":
			return true
		}
		return false
	}

	var opErr *net.OpError
	return errors.As(err, &opErr)
}
