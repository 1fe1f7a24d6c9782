// internal/app/maintenance_service.go
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dorm_maintenance/internal/domain/asset"
	"dorm_maintenance/internal/domain/errs"
	"dorm_maintenance/internal/domain/maintenance"
	idb "dorm_maintenance/internal/infra/database"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// MaxUpcomingDays bounds the look-ahead window of ListUpcoming.
const (
	MaxUpcomingDays  = 3650
	upcomingDaysRule = "gte=0,lte=3650"
)

// ScheduleInput carries the mutable fields of a schedule for create and full update.
type ScheduleInput struct {
	Scope            maintenance.Scope `validate:"required,oneof=GLOBAL ASSET_GROUP"`
	AssetGroupID     *int64            `validate:"required_if=Scope ASSET_GROUP"`
	CycleMonths      *int              `validate:"omitempty,gte=0,lte=1200"` // nil or 0: non-recurring
	NotifyBeforeDays int               `validate:"gte=0,lte=3650"`
	Title            string            `validate:"required,max=255"`
	Description      string
	LastDoneAt       *time.Time
	NextDueAt        *time.Time
}

// MaintenanceService implements schedule CRUD, completion and per-occurrence skips.
type MaintenanceService struct {
	schedules maintenance.ScheduleRepository
	skips     maintenance.SkipRepository
	groups    asset.Repository
	clock     Clock
	loc       *time.Location
	validate  *validator.Validate
	logger    *logrus.Entry
}

func NewMaintenanceService(
	sr maintenance.ScheduleRepository,
	kr maintenance.SkipRepository,
	gr asset.Repository,
	clock Clock,
	loc *time.Location,
	logger *logrus.Entry,
) *MaintenanceService {
	if loc == nil {
		loc = time.Local
	}
	return &MaintenanceService{
		schedules: sr,
		skips:     kr,
		groups:    gr,
		clock:     clock,
		loc:       loc,
		validate:  validator.New(),
		logger:    logger,
	}
}

// CreateSchedule persists a new schedule. NextDueAt is stored exactly as supplied.
func (s *MaintenanceService) CreateSchedule(ctx context.Context, in ScheduleInput) (*maintenance.Schedule, error) {
	sch, err := s.buildSchedule(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.schedules.Create(ctx, sch); err != nil {
		return nil, fmt.Errorf("failed to create maintenance schedule: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"schedule_id": sch.ID, "scope": sch.Scope}).Info("Maintenance schedule created")
	return s.schedules.GetByID(ctx, sch.ID)
}

// UpdateSchedule replaces every mutable field of an existing schedule.
func (s *MaintenanceService) UpdateSchedule(ctx context.Context, id int64, in ScheduleInput) (*maintenance.Schedule, error) {
	sch, err := s.buildSchedule(ctx, in)
	if err != nil {
		return nil, err
	}
	sch.ID = id
	if err := s.schedules.Update(ctx, sch); err != nil {
		if errors.Is(err, idb.ErrScheduleNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update maintenance schedule %d: %w", id, err)
	}
	s.logger.WithField("schedule_id", id).Info("Maintenance schedule updated")
	return s.schedules.GetByID(ctx, id)
}

func (s *MaintenanceService) GetSchedule(ctx context.Context, id int64) (*maintenance.Schedule, error) {
	return s.schedules.GetByID(ctx, id)
}

func (s *MaintenanceService) ListSchedules(ctx context.Context) ([]*maintenance.Schedule, error) {
	return s.schedules.ListAll(ctx)
}

// DeleteSchedule removes the schedule; its skips go with it.
func (s *MaintenanceService) DeleteSchedule(ctx context.Context, id int64) error {
	if err := s.schedules.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("schedule_id", id).Info("Maintenance schedule deleted")
	return nil
}

// MarkDone records a completion now and advances the next due date by the cycle length.
// Non-recurring schedules become dormant. The skip ledger is not touched.
func (s *MaintenanceService) MarkDone(ctx context.Context, id int64) (*maintenance.Schedule, error) {
	now := s.clock.Now().In(s.loc).Truncate(time.Second)
	updated, err := s.schedules.Modify(ctx, id, func(sch *maintenance.Schedule) error {
		sch.Complete(now)
		return nil
	})
	if err != nil {
		if errors.Is(err, idb.ErrScheduleNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to mark maintenance schedule %d done: %w", id, err)
	}

	fields := logrus.Fields{"schedule_id": id, "last_done_at": now.Format(time.RFC3339)}
	if updated.NextDueAt.Valid {
		fields["next_due_at"] = updated.NextDueAt.Time.Format(time.RFC3339)
	} else {
		fields["next_due_at"] = nil
	}
	s.logger.WithFields(fields).Info("Maintenance schedule marked done")
	return updated, nil
}

// ListUpcoming returns schedules due from the start of today through the end of today+days,
// regardless of skips.
func (s *MaintenanceService) ListUpcoming(ctx context.Context, days int) ([]*maintenance.Schedule, error) {
	if err := s.validate.Var(days, upcomingDaysRule); err != nil {
		return nil, fmt.Errorf("%w: days must be between 0 and %d", errs.ErrInvalidArgument, MaxUpcomingDays)
	}
	today := maintenance.DateOf(s.clock.Now(), s.loc)
	from := today.Start(s.loc)
	to := today.AddDays(days + 1).Start(s.loc).Add(-time.Second)
	return s.schedules.FindUpcoming(ctx, from, to)
}

// SkipDueDate dismisses one occurrence of a schedule. Recording the same occurrence twice is
// not an error: the existing skip is returned with created=false.
func (s *MaintenanceService) SkipDueDate(ctx context.Context, scheduleID int64, dueDate maintenance.Date) (skip *maintenance.Skip, created bool, err error) {
	if dueDate.IsZero() {
		return nil, false, fmt.Errorf("%w: due date is required", errs.ErrInvalidArgument)
	}
	if _, err := s.schedules.GetByID(ctx, scheduleID); err != nil {
		return nil, false, err
	}

	logCtx := s.logger.WithFields(logrus.Fields{"schedule_id": scheduleID, "due_date": dueDate.String()})

	exists, err := s.skips.Exists(ctx, scheduleID, dueDate)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check existing skip: %w", err)
	}
	if exists {
		logCtx.Info("Due date already skipped. No action needed.")
		existing, err := s.skips.FindByKey(ctx, scheduleID, dueDate)
		return existing, false, err
	}

	skip = &maintenance.Skip{
		ScheduleID: scheduleID,
		DueDate:    dueDate,
		SkippedAt:  s.clock.Now(),
	}
	if err := s.skips.Create(ctx, skip); err != nil {
		if errors.Is(err, idb.ErrDuplicateSkip) {
			// Lost the race against a concurrent skip of the same occurrence.
			existing, findErr := s.skips.FindByKey(ctx, scheduleID, dueDate)
			return existing, false, findErr
		}
		return nil, false, fmt.Errorf("failed to record skip: %w", err)
	}
	logCtx.WithField("skip_id", skip.ID).Info("Due date skipped")
	return skip, true, nil
}

func (s *MaintenanceService) ListSkips(ctx context.Context, scheduleID int64) ([]*maintenance.Skip, error) {
	if _, err := s.schedules.GetByID(ctx, scheduleID); err != nil {
		return nil, err
	}
	return s.skips.ListBySchedule(ctx, scheduleID)
}

// buildSchedule validates input and resolves the asset group reference.
func (s *MaintenanceService) buildSchedule(ctx context.Context, in ScheduleInput) (*maintenance.Schedule, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidArgument, err)
	}

	sch := &maintenance.Schedule{
		Scope:            in.Scope,
		NotifyBeforeDays: in.NotifyBeforeDays,
		Title:            in.Title,
		Description:      in.Description,
	}
	if in.Scope == maintenance.ScopeAssetGroup {
		g, err := s.groups.GetByID(ctx, *in.AssetGroupID)
		if err != nil {
			return nil, err
		}
		sch.AssetGroupID = sql.NullInt64{Int64: g.ID, Valid: true}
	}
	if in.CycleMonths != nil {
		sch.CycleMonths = sql.NullInt32{Int32: int32(*in.CycleMonths), Valid: true}
	}
	if in.LastDoneAt != nil {
		sch.LastDoneAt = sql.NullTime{Time: in.LastDoneAt.Truncate(time.Second), Valid: true}
	}
	if in.NextDueAt != nil {
		sch.NextDueAt = sql.NullTime{Time: in.NextDueAt.Truncate(time.Second), Valid: true}
	}
	return sch, nil
}
