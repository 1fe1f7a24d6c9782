package maintenance

import (
	"sort"
	"time"
)

// DueItem is one schedule surfaced by ComputeDue.
type DueItem struct {
	ScheduleID       int64     `json:"schedule_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Scope            Scope     `json:"scope"`
	AssetGroupID     *int64    `json:"asset_group_id,omitempty"`
	AssetGroupName   string    `json:"asset_group_name,omitempty"`
	NextDueAt        time.Time `json:"next_due_at"`
	DueDate          Date      `json:"due_date"`
	CycleMonths      *int      `json:"cycle_months,omitempty"`
	NotifyBeforeDays int       `json:"notify_before_days"`
	DaysUntilDue     int       `json:"days_until_due"` // negative when overdue
	Overdue          bool      `json:"overdue"`
}

// ComputeDue returns the schedules whose notice window has opened on today and whose current
// due date has not been skipped. There is no upper bound: overdue schedules stay in the result
// until completed or skipped. The result is ordered by due date, then schedule id.
func ComputeDue(today Date, schedules []*Schedule, skipped SkipSet, loc *time.Location) []DueItem {
	items := make([]DueItem, 0)
	for _, s := range schedules {
		if !s.State(today, loc).Notifiable() {
			continue
		}
		due, _ := s.DueDate(loc)
		if skipped.Has(s.ID, due) {
			continue
		}
		items = append(items, newDueItem(s, due, today))
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].DueDate.Equal(items[j].DueDate) {
			return items[i].DueDate.Before(items[j].DueDate)
		}
		return items[i].ScheduleID < items[j].ScheduleID
	})
	return items
}

func newDueItem(s *Schedule, due, today Date) DueItem {
	item := DueItem{
		ScheduleID:       s.ID,
		Title:            s.Title,
		Description:      s.Description,
		Scope:            s.Scope,
		NextDueAt:        s.NextDueAt.Time,
		DueDate:          due,
		NotifyBeforeDays: s.NotifyBeforeDays,
		DaysUntilDue:     today.DaysUntil(due),
		Overdue:          today.After(due),
	}
	if s.AssetGroupID.Valid {
		id := s.AssetGroupID.Int64
		item.AssetGroupID = &id
		item.AssetGroupName = s.AssetGroupName.String
	}
	if s.CycleMonths.Valid {
		c := int(s.CycleMonths.Int32)
		item.CycleMonths = &c
	}
	return item
}

// SkipKeysFor returns the occurrence keys to look up in the skip ledger for the given schedules.
func SkipKeysFor(schedules []*Schedule, loc *time.Location) []SkipKey {
	keys := make([]SkipKey, 0, len(schedules))
	for _, s := range schedules {
		if due, ok := s.DueDate(loc); ok {
			keys = append(keys, SkipKey{ScheduleID: s.ID, DueDate: due})
		}
	}
	return keys
}
