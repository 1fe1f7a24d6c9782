// internal/domain/maintenance/skip.go
package maintenance

import "time"

// Skip dismisses one due occurrence of a schedule without completing it.
// Corresponds to the 'maintenance_notification_skips' table.
type Skip struct {
	ID         int64
	ScheduleID int64 // Foreign Key to maintenance_schedules.id (ON DELETE CASCADE)
	DueDate    Date
	SkippedAt  time.Time
}

// SkipKey identifies one occurrence of a schedule.
type SkipKey struct {
	ScheduleID int64
	DueDate    Date
}

// SkipSet is the set of skipped occurrences.
type SkipSet map[SkipKey]struct{}

func (s SkipSet) Add(scheduleID int64, due Date) {
	s[SkipKey{ScheduleID: scheduleID, DueDate: due}] = struct{}{}
}

func (s SkipSet) Has(scheduleID int64, due Date) bool {
	_, ok := s[SkipKey{ScheduleID: scheduleID, DueDate: due}]
	return ok
}
