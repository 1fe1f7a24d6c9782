package database

import (
	"errors"
	"fmt"
	"time"

	"dorm_maintenance/internal/domain/errs"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Custom errors returned by the repositories. Each wraps an errs kind.
var (
	ErrScheduleNotFound    = fmt.Errorf("maintenance schedule %w", errs.ErrNotFound)
	ErrSkipNotFound        = fmt.Errorf("maintenance notification skip %w", errs.ErrNotFound)
	ErrAssetGroupNotFound  = fmt.Errorf("asset group %w", errs.ErrNotFound)
	ErrDuplicateSkip       = fmt.Errorf("%w: skip already recorded for this schedule and due date", errs.ErrConflict)
	ErrDuplicateAssetGroup = fmt.Errorf("%w: asset group with this name already exists", errs.ErrConflict)
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqForeignKeyViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return false
}

// dbTime normalizes timestamps before they are written: UTC, whole seconds.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
