// internal/domain/maintenance/repository.go
package maintenance

import (
	"context"
	"time"
)

// ScheduleRepository defines persistence for MaintenanceSchedule.
type ScheduleRepository interface {
	Create(ctx context.Context, s *Schedule) error
	Update(ctx context.Context, s *Schedule) error // Full replace of mutable fields
	GetByID(ctx context.Context, id int64) (*Schedule, error)
	ListAll(ctx context.Context) ([]*Schedule, error)
	Delete(ctx context.Context, id int64) error // Skips are removed by ON DELETE CASCADE

	// FindUpcoming returns schedules whose next_due_at lies in [from, to].
	FindUpcoming(ctx context.Context, from, to time.Time) ([]*Schedule, error)
	// ListWithNextDue returns every schedule that has a next due date.
	ListWithNextDue(ctx context.Context) ([]*Schedule, error)
	// Modify loads the schedule, applies fn and persists the result in one transaction.
	Modify(ctx context.Context, id int64, fn func(s *Schedule) error) (*Schedule, error)
}

// SkipRepository defines persistence for MaintenanceNotificationSkip.
type SkipRepository interface {
	Exists(ctx context.Context, scheduleID int64, dueDate Date) (bool, error)
	Create(ctx context.Context, skip *Skip) error
	FindByKey(ctx context.Context, scheduleID int64, dueDate Date) (*Skip, error)
	ListBySchedule(ctx context.Context, scheduleID int64) ([]*Skip, error)
	// ExistingFor returns the subset of keys that have a skip row.
	ExistingFor(ctx context.Context, keys []SkipKey) (SkipSet, error)
}
