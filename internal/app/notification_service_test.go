package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"dorm_maintenance/internal/domain/maintenance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	items  []maintenance.DueItem
	failOn map[int64]bool
}

func (n *recordingNotifier) NotifyDue(_ context.Context, item maintenance.DueItem) error {
	if n.failOn[item.ScheduleID] {
		return errors.New("telegram unavailable")
	}
	n.items = append(n.items, item)
	return nil
}

// Due 2025-01-15, three days notice, quarterly.
func TestDueNotifications_WorkedExample(t *testing.T) {
	env := newTestEnv(t, time.Date(2025, 1, 13, 9, 0, 0, 0, time.UTC), nil)
	ctx := context.Background()

	s, err := env.maintenance.CreateSchedule(ctx, globalInput("Boiler", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), 3, 3))
	require.NoError(t, err)

	items, err := env.notifications.DueNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, s.ID, items[0].ScheduleID)
	assert.Equal(t, "2025-01-15", items[0].DueDate.String())

	_, _, err = env.maintenance.SkipDueDate(ctx, s.ID, items[0].DueDate)
	require.NoError(t, err)

	items, err = env.notifications.DueNotifications(ctx)
	require.NoError(t, err)
	assert.Empty(t, items, "skipped occurrence is suppressed")

	env.setNow(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	updated, err := env.maintenance.MarkDone(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC).Equal(updated.NextDueAt.Time))

	// The old skip does not carry over to the next cycle.
	env.setNow(time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC))
	items, err = env.notifications.DueNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "2025-04-15", items[0].DueDate.String())
}

func TestDueNotifications_IsReadOnly(t *testing.T) {
	env := newTestEnv(t, time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), nil)
	ctx := context.Background()

	s, err := env.maintenance.CreateSchedule(ctx, globalInput("Boiler", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), 3, 3))
	require.NoError(t, err)

	first, err := env.notifications.DueNotifications(ctx)
	require.NoError(t, err)
	second, err := env.notifications.DueNotifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	require.Len(t, first, 1)
	assert.True(t, first[0].Overdue)

	skips, err := env.maintenance.ListSkips(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, skips)
}

func TestDispatchDueNotifications(t *testing.T) {
	notifier := &recordingNotifier{failOn: map[int64]bool{}}
	env := newTestEnv(t, time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC), notifier)
	ctx := context.Background()

	a, err := env.maintenance.CreateSchedule(ctx, globalInput("a", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), 1, 3))
	require.NoError(t, err)
	b, err := env.maintenance.CreateSchedule(ctx, globalInput("b", time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC), 1, 3))
	require.NoError(t, err)
	_, err = env.maintenance.CreateSchedule(ctx, globalInput("pending", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), 1, 3))
	require.NoError(t, err)

	notifier.failOn[a.ID] = true
	report, err := env.notifications.DispatchDueNotifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, DispatchReport{Due: 2, Sent: 1, Failed: 1}, report)
	require.Len(t, notifier.items, 1)
	assert.Equal(t, b.ID, notifier.items[0].ScheduleID)
}

func TestDispatchDueNotifications_WithoutNotifier(t *testing.T) {
	env := newTestEnv(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), nil)
	ctx := context.Background()

	_, err := env.maintenance.CreateSchedule(ctx, globalInput("a", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), 1, 0))
	require.NoError(t, err)

	report, err := env.notifications.DispatchDueNotifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, DispatchReport{Due: 1}, report)
}
