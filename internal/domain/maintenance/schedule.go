// internal/domain/maintenance/schedule.go
package maintenance

import (
	"database/sql"
	"time"
)

// Schedule is a recurring or one-off maintenance obligation.
// Corresponds to the 'maintenance_schedules' table.
type Schedule struct {
	ID               int64
	Scope            Scope
	AssetGroupID     sql.NullInt64  // Foreign Key to asset_groups.id, only for ScopeAssetGroup
	AssetGroupName   sql.NullString // Read-only, joined from asset_groups
	CycleMonths      sql.NullInt32  // NULL or 0 means non-recurring
	LastDoneAt       sql.NullTime
	NextDueAt        sql.NullTime
	NotifyBeforeDays int
	Title            string
	Description      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Recurring reports whether completing the schedule produces another occurrence.
func (s *Schedule) Recurring() bool {
	return s.CycleMonths.Valid && s.CycleMonths.Int32 > 0
}

// Complete records a completion at now and advances the next due date by the cycle length.
// Non-recurring schedules become dormant.
func (s *Schedule) Complete(now time.Time) {
	s.LastDoneAt = sql.NullTime{Time: now, Valid: true}
	if s.Recurring() {
		s.NextDueAt = sql.NullTime{Time: AddMonths(now, int(s.CycleMonths.Int32)), Valid: true}
		return
	}
	s.NextDueAt = sql.NullTime{}
}

// DueDate is the calendar date of NextDueAt in loc.
func (s *Schedule) DueDate(loc *time.Location) (Date, bool) {
	if !s.NextDueAt.Valid {
		return Date{}, false
	}
	return DateOf(s.NextDueAt.Time, loc), true
}

// NoticeStart is the first day on which the schedule is surfaced.
func (s *Schedule) NoticeStart(loc *time.Location) (Date, bool) {
	due, ok := s.DueDate(loc)
	if !ok {
		return Date{}, false
	}
	return due.AddDays(-s.NotifyBeforeDays), true
}

func (s *Schedule) State(today Date, loc *time.Location) State {
	due, ok := s.DueDate(loc)
	if !ok {
		return StateDormant
	}
	start, _ := s.NoticeStart(loc)
	switch {
	case today.Before(start):
		return StatePending
	case today.After(due):
		return StateOverdue
	default:
		return StateDue
	}
}
