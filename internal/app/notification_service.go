// internal/app/notification_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"dorm_maintenance/internal/domain/maintenance"

	"github.com/sirupsen/logrus"
)

// Notifier delivers one due item to the operators.
type Notifier interface {
	NotifyDue(ctx context.Context, item maintenance.DueItem) error
}

// NotificationService computes and dispatches due-maintenance notifications.
type NotificationService interface {
	// DueNotifications returns the schedules that should be surfaced today, skipped occurrences excluded.
	DueNotifications(ctx context.Context) ([]maintenance.DueItem, error)
	// DispatchDueNotifications sends every current due item through the configured notifier.
	DispatchDueNotifications(ctx context.Context) (DispatchReport, error)
}

// DispatchReport summarises one dispatch run.
type DispatchReport struct {
	Due    int
	Sent   int
	Failed int
}

// NotificationServiceImpl implements the NotificationService interface.
type NotificationServiceImpl struct {
	scheduleRepo maintenance.ScheduleRepository
	skipRepo     maintenance.SkipRepository
	notifier     Notifier // nil when no delivery channel is configured
	clock        Clock
	loc          *time.Location
	logger       *logrus.Entry
}

func NewNotificationServiceImpl(
	sr maintenance.ScheduleRepository,
	kr maintenance.SkipRepository,
	notifier Notifier,
	clock Clock,
	loc *time.Location,
	logger *logrus.Entry,
) *NotificationServiceImpl {
	if loc == nil {
		loc = time.Local
	}
	return &NotificationServiceImpl{
		scheduleRepo: sr,
		skipRepo:     kr,
		notifier:     notifier,
		clock:        clock,
		loc:          loc,
		logger:       logger,
	}
}

// DueNotifications is read-only: it never records skips or completions.
func (s *NotificationServiceImpl) DueNotifications(ctx context.Context) ([]maintenance.DueItem, error) {
	today := maintenance.DateOf(s.clock.Now(), s.loc)

	schedules, err := s.scheduleRepo.ListWithNextDue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules with a next due date: %w", err)
	}

	skipped, err := s.skipRepo.ExistingFor(ctx, maintenance.SkipKeysFor(schedules, s.loc))
	if err != nil {
		return nil, fmt.Errorf("failed to load skipped occurrences: %w", err)
	}

	items := maintenance.ComputeDue(today, schedules, skipped, s.loc)
	s.logger.WithFields(logrus.Fields{
		"today":      today.String(),
		"candidates": len(schedules),
		"skipped":    len(skipped),
		"due":        len(items),
	}).Debug("Computed due notifications")
	return items, nil
}

// DispatchDueNotifications keeps going when a single delivery fails; failures are counted and logged.
func (s *NotificationServiceImpl) DispatchDueNotifications(ctx context.Context) (DispatchReport, error) {
	items, err := s.DueNotifications(ctx)
	if err != nil {
		return DispatchReport{}, err
	}

	report := DispatchReport{Due: len(items)}
	if s.notifier == nil {
		s.logger.WithField("due", report.Due).Info("No notifier configured. Due items computed but not delivered.")
		return report, nil
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		logCtx := s.logger.WithFields(logrus.Fields{
			"schedule_id": item.ScheduleID,
			"due_date":    item.DueDate.String(),
		})
		if err := s.notifier.NotifyDue(ctx, item); err != nil {
			report.Failed++
			logCtx.WithError(err).Error("Failed to deliver due notification")
			continue
		}
		report.Sent++
		logCtx.Debug("Due notification delivered")
	}

	s.logger.WithFields(logrus.Fields{
		"due":    report.Due,
		"sent":   report.Sent,
		"failed": report.Failed,
	}).Info("Due notification dispatch finished")
	return report, nil
}
