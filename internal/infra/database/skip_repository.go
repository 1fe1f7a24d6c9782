// internal/infra/database/skip_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"dorm_maintenance/internal/domain/maintenance"

	"github.com/lib/pq" // For pq.Array
)

// sqliteKeyBatch bounds the number of (schedule_id, due_date) pairs per SQLite lookup query.
const sqliteKeyBatch = 200

type SkipRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewSkipRepository(db *sql.DB, dialect Dialect) *SkipRepository {
	return &SkipRepository{db: db, dialect: dialect}
}

func (r *SkipRepository) Exists(ctx context.Context, scheduleID int64, dueDate maintenance.Date) (bool, error) {
	query := `SELECT COUNT(*) FROM maintenance_notification_skips WHERE schedule_id = $1 AND due_date = $2`
	var count int
	if err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), scheduleID, dueDate).Scan(&count); err != nil {
		return false, fmt.Errorf("error checking maintenance skip existence: %w", err)
	}
	return count > 0, nil
}

func (r *SkipRepository) Create(ctx context.Context, skip *maintenance.Skip) error {
	query := `INSERT INTO maintenance_notification_skips (schedule_id, due_date, skipped_at)
               VALUES ($1, $2, $3)
               RETURNING id`
	skip.SkippedAt = dbTime(skip.SkippedAt)
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), skip.ScheduleID, skip.DueDate, skip.SkippedAt).Scan(&skip.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSkip
		}
		if isForeignKeyViolation(err) {
			return ErrScheduleNotFound
		}
		return fmt.Errorf("error creating maintenance skip: %w", err)
	}
	return nil
}

func (r *SkipRepository) FindByKey(ctx context.Context, scheduleID int64, dueDate maintenance.Date) (*maintenance.Skip, error) {
	query := `SELECT id, schedule_id, due_date, skipped_at
               FROM maintenance_notification_skips
               WHERE schedule_id = $1 AND due_date = $2`
	skip := maintenance.Skip{}
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), scheduleID, dueDate).Scan(
		&skip.ID, &skip.ScheduleID, &skip.DueDate, &skip.SkippedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSkipNotFound
		}
		return nil, fmt.Errorf("error getting maintenance skip: %w", err)
	}
	return &skip, nil
}

func (r *SkipRepository) ListBySchedule(ctx context.Context, scheduleID int64) ([]*maintenance.Skip, error) {
	query := `SELECT id, schedule_id, due_date, skipped_at
               FROM maintenance_notification_skips
               WHERE schedule_id = $1 ORDER BY due_date, id`
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), scheduleID)
	if err != nil {
		return nil, fmt.Errorf("error listing maintenance skips: %w", err)
	}
	defer rows.Close()

	skips := make([]*maintenance.Skip, 0)
	for rows.Next() {
		skip := &maintenance.Skip{}
		if err := rows.Scan(&skip.ID, &skip.ScheduleID, &skip.DueDate, &skip.SkippedAt); err != nil {
			return nil, fmt.Errorf("error scanning maintenance skip row: %w", err)
		}
		skips = append(skips, skip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating maintenance skip rows: %w", err)
	}
	return skips, nil
}

func (r *SkipRepository) ExistingFor(ctx context.Context, keys []maintenance.SkipKey) (maintenance.SkipSet, error) {
	found := make(maintenance.SkipSet)
	if len(keys) == 0 {
		return found, nil
	}
	if r.dialect == Postgres {
		return found, r.existingForPostgres(ctx, keys, found)
	}
	for start := 0; start < len(keys); start += sqliteKeyBatch {
		end := min(start+sqliteKeyBatch, len(keys))
		if err := r.existingForSQLite(ctx, keys[start:end], found); err != nil {
			return nil, err
		}
	}
	return found, nil
}

func (r *SkipRepository) existingForPostgres(ctx context.Context, keys []maintenance.SkipKey, found maintenance.SkipSet) error {
	ids := make([]int64, len(keys))
	dates := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = k.ScheduleID
		dates[i] = k.DueDate.String()
	}

	query := `SELECT k.schedule_id, k.due_date
               FROM maintenance_notification_skips k
               JOIN unnest($1::bigint[], $2::date[]) AS wanted(schedule_id, due_date)
                 ON wanted.schedule_id = k.schedule_id AND wanted.due_date = k.due_date`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids), pq.Array(dates))
	if err != nil {
		return fmt.Errorf("error querying skipped occurrences: %w", err)
	}
	defer rows.Close()
	return collectSkipKeys(rows, found)
}

func (r *SkipRepository) existingForSQLite(ctx context.Context, keys []maintenance.SkipKey, found maintenance.SkipSet) error {
	conds := make([]string, len(keys))
	args := make([]any, 0, 2*len(keys))
	for i, k := range keys {
		conds[i] = "(schedule_id = ? AND due_date = ?)"
		args = append(args, k.ScheduleID, k.DueDate)
	}

	query := `SELECT schedule_id, due_date FROM maintenance_notification_skips WHERE ` + strings.Join(conds, " OR ")
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error querying skipped occurrences: %w", err)
	}
	defer rows.Close()
	return collectSkipKeys(rows, found)
}

func collectSkipKeys(rows *sql.Rows, found maintenance.SkipSet) error {
	for rows.Next() {
		var (
			scheduleID int64
			due        maintenance.Date
		)
		if err := rows.Scan(&scheduleID, &due); err != nil {
			return fmt.Errorf("error scanning skipped occurrence: %w", err)
		}
		found.Add(scheduleID, due)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating skipped occurrences: %w", err)
	}
	return nil
}
