// internal/infra/database/schedule_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dorm_maintenance/internal/domain/maintenance"
)

const selectSchedules = `SELECT s.id, s.scope, s.asset_group_id, g.name, s.cycle_months, s.last_done_at, s.next_due_at,
               s.notify_before_days, s.title, s.description, s.created_at, s.updated_at
               FROM maintenance_schedules s
               LEFT JOIN asset_groups g ON g.id = s.asset_group_id`

type ScheduleRepository struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

func NewScheduleRepository(db *sql.DB, dialect Dialect) *ScheduleRepository {
	return &ScheduleRepository{db: db, dialect: dialect, now: time.Now}
}

func (r *ScheduleRepository) Create(ctx context.Context, s *maintenance.Schedule) error {
	query := `INSERT INTO maintenance_schedules (scope, asset_group_id, cycle_months, last_done_at, next_due_at,
                   notify_before_days, title, description, created_at, updated_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
               RETURNING id`
	now := dbTime(r.now())
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query),
		string(s.Scope), s.AssetGroupID, s.CycleMonths, nullTime(s.LastDoneAt), nullTime(s.NextDueAt),
		s.NotifyBeforeDays, s.Title, s.Description, now, now,
	).Scan(&s.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrAssetGroupNotFound
		}
		return fmt.Errorf("error creating maintenance schedule: %w", err)
	}
	s.CreatedAt, s.UpdatedAt = now, now
	return nil
}

func (r *ScheduleRepository) Update(ctx context.Context, s *maintenance.Schedule) error {
	return r.update(ctx, r.db, s)
}

func (r *ScheduleRepository) update(ctx context.Context, q querier, s *maintenance.Schedule) error {
	query := `UPDATE maintenance_schedules
               SET scope = $1, asset_group_id = $2, cycle_months = $3, last_done_at = $4, next_due_at = $5,
                   notify_before_days = $6, title = $7, description = $8, updated_at = $9
               WHERE id = $10`
	now := dbTime(r.now())
	res, err := q.ExecContext(ctx, r.dialect.Rebind(query),
		string(s.Scope), s.AssetGroupID, s.CycleMonths, nullTime(s.LastDoneAt), nullTime(s.NextDueAt),
		s.NotifyBeforeDays, s.Title, s.Description, now, s.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrAssetGroupNotFound
		}
		return fmt.Errorf("error updating maintenance schedule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows for schedule update: %w", err)
	}
	if affected == 0 {
		return ErrScheduleNotFound
	}
	s.UpdatedAt = now
	return nil
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id int64) (*maintenance.Schedule, error) {
	return r.getByID(ctx, r.db, id, "")
}

func (r *ScheduleRepository) getByID(ctx context.Context, q querier, id int64, suffix string) (*maintenance.Schedule, error) {
	query := selectSchedules + ` WHERE s.id = $1` + suffix
	s, err := scanSchedule(q.QueryRowContext(ctx, r.dialect.Rebind(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("error getting maintenance schedule by ID: %w", err)
	}
	return s, nil
}

func (r *ScheduleRepository) ListAll(ctx context.Context) ([]*maintenance.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, selectSchedules+` ORDER BY s.id`)
	if err != nil {
		return nil, fmt.Errorf("error listing maintenance schedules: %w", err)
	}
	defer rows.Close()
	return scanSchedules(rows)
}

func (r *ScheduleRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM maintenance_schedules WHERE id = $1`), id)
	if err != nil {
		return fmt.Errorf("error deleting maintenance schedule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows for schedule delete: %w", err)
	}
	if affected == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

func (r *ScheduleRepository) FindUpcoming(ctx context.Context, from, to time.Time) ([]*maintenance.Schedule, error) {
	query := selectSchedules + `
               WHERE s.next_due_at IS NOT NULL AND s.next_due_at >= $1 AND s.next_due_at <= $2
               ORDER BY s.next_due_at, s.id`
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), dbTime(from), dbTime(to))
	if err != nil {
		return nil, fmt.Errorf("error querying upcoming maintenance schedules: %w", err)
	}
	defer rows.Close()
	return scanSchedules(rows)
}

func (r *ScheduleRepository) ListWithNextDue(ctx context.Context) ([]*maintenance.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, selectSchedules+` WHERE s.next_due_at IS NOT NULL ORDER BY s.next_due_at, s.id`)
	if err != nil {
		return nil, fmt.Errorf("error listing maintenance schedules with next due date: %w", err)
	}
	defer rows.Close()
	return scanSchedules(rows)
}

func (r *ScheduleRepository) Modify(ctx context.Context, id int64, fn func(s *maintenance.Schedule) error) (*maintenance.Schedule, error) {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for schedule modify: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	s, err := r.getByID(ctx, txn, id, r.dialect.lockRow())
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	if err := r.update(ctx, txn, s); err != nil {
		return nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit schedule modify: %w", err)
	}
	s.LastDoneAt = nullTime(s.LastDoneAt)
	s.NextDueAt = nullTime(s.NextDueAt)
	return s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (*maintenance.Schedule, error) {
	s := &maintenance.Schedule{}
	err := row.Scan(
		&s.ID, &s.Scope, &s.AssetGroupID, &s.AssetGroupName, &s.CycleMonths, &s.LastDoneAt, &s.NextDueAt,
		&s.NotifyBeforeDays, &s.Title, &s.Description, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Helper to scan multiple rows
func scanSchedules(rows *sql.Rows) ([]*maintenance.Schedule, error) {
	schedules := make([]*maintenance.Schedule, 0)
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning maintenance schedule row: %w", err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating maintenance schedule rows: %w", err)
	}
	return schedules, nil
}

func nullTime(t sql.NullTime) sql.NullTime {
	if !t.Valid {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: dbTime(t.Time), Valid: true}
}
