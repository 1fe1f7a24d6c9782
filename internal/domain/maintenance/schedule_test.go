package maintenance

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dueAt(y int, m time.Month, d int) sql.NullTime {
	return sql.NullTime{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

func cycle(months int32) sql.NullInt32 {
	return sql.NullInt32{Int32: months, Valid: true}
}

func TestSchedule_Complete_Recurring(t *testing.T) {
	s := &Schedule{CycleMonths: cycle(3), NextDueAt: dueAt(2025, 1, 15)}
	now := time.Date(2025, 1, 15, 11, 0, 0, 0, time.UTC)

	s.Complete(now)

	require.True(t, s.LastDoneAt.Valid)
	assert.True(t, now.Equal(s.LastDoneAt.Time))
	require.True(t, s.NextDueAt.Valid)
	assert.True(t, time.Date(2025, 4, 15, 11, 0, 0, 0, time.UTC).Equal(s.NextDueAt.Time))
}

func TestSchedule_Complete_NonRecurringBecomesDormant(t *testing.T) {
	for name, c := range map[string]sql.NullInt32{"null cycle": {}, "zero cycle": cycle(0)} {
		t.Run(name, func(t *testing.T) {
			s := &Schedule{CycleMonths: c, NextDueAt: dueAt(2025, 1, 15)}
			s.Complete(time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC))

			assert.True(t, s.LastDoneAt.Valid)
			assert.False(t, s.NextDueAt.Valid)
			assert.Equal(t, StateDormant, s.State(Date{2025, time.January, 16}, time.UTC))
		})
	}
}

func TestSchedule_Complete_UsesCompletionTimeNotOldDue(t *testing.T) {
	// Completed late: the next cycle counts from the completion, not from the missed due date.
	s := &Schedule{CycleMonths: cycle(1), NextDueAt: dueAt(2025, 1, 10)}
	s.Complete(time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC))

	assert.True(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC).Equal(s.NextDueAt.Time))
}

func TestSchedule_State(t *testing.T) {
	s := &Schedule{NextDueAt: dueAt(2025, 1, 15), NotifyBeforeDays: 3}
	d := func(day int) Date { return Date{2025, time.January, day} }

	assert.Equal(t, StatePending, s.State(d(11), time.UTC))
	assert.Equal(t, StateDue, s.State(d(12), time.UTC)) // notice window opens
	assert.Equal(t, StateDue, s.State(d(15), time.UTC)) // due day itself
	assert.Equal(t, StateOverdue, s.State(d(16), time.UTC))

	dormant := &Schedule{}
	assert.Equal(t, StateDormant, dormant.State(d(15), time.UTC))
	assert.False(t, StateDormant.Notifiable())
	assert.False(t, StatePending.Notifiable())
}

func TestSchedule_NoticeStart(t *testing.T) {
	s := &Schedule{NextDueAt: dueAt(2025, 3, 2), NotifyBeforeDays: 3}
	start, ok := s.NoticeStart(time.UTC)
	require.True(t, ok)
	assert.Equal(t, "2025-02-27", start.String())

	_, ok = (&Schedule{}).NoticeStart(time.UTC)
	assert.False(t, ok)
}

func TestScope_Valid(t *testing.T) {
	assert.True(t, ScopeGlobal.Valid())
	assert.True(t, ScopeAssetGroup.Valid())
	assert.False(t, Scope("BUILDING").Valid())
}
