package scheduler

import (
	"context"
	"fmt"
	"time"

	"dorm_maintenance/internal/app" // For NotificationService interface
	"dorm_maintenance/internal/infra/metrics"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// dueScanTimeout bounds one dispatch run.
const dueScanTimeout = 2 * time.Minute

type NotificationScheduler struct {
	cronEngine      *cron.Cron
	notifService    app.NotificationService
	logger          *logrus.Entry
	cronSpecDueScan string
}

func NewNotificationScheduler(
	notifService app.NotificationService,
	logger *logrus.Entry,
	loc *time.Location,
	cronSpecDueScan string, // e.g., "0 9 * * *" (9 AM daily)
) *NotificationScheduler {
	if loc == nil {
		loc = time.Local
	}
	return &NotificationScheduler{
		// Cron fires in the service time zone, the same one used for "today".
		cronEngine:      cron.New(cron.WithLocation(loc)),
		notifService:    notifService,
		logger:          logger,
		cronSpecDueScan: cronSpecDueScan,
	}
}

// Start registers the due scan and starts the cron engine.
func (s *NotificationScheduler) Start() error {
	s.logger.Info("Starting notification scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpecDueScan, func() {
		s.logger.Info("Cron job triggered for due maintenance scan.")
		ctx, cancel := context.WithTimeout(context.Background(), dueScanTimeout)
		defer cancel()
		s.RunDueScan(ctx)
	})
	if err != nil {
		return fmt.Errorf("could not add due scan cron job %q: %w", s.cronSpecDueScan, err)
	}

	s.cronEngine.Start()
	s.logger.WithField("spec", s.cronSpecDueScan).Info("Notification scheduler started with jobs.")
	return nil
}

// RunDueScan dispatches the current due notifications once and records the outcome.
func (s *NotificationScheduler) RunDueScan(ctx context.Context) {
	report, err := s.notifService.DispatchDueNotifications(ctx)
	metrics.RecordDueScan(report.Due, report.Sent, report.Failed, err)
	if err != nil {
		s.logger.WithError(err).Error("Error during due maintenance scan")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"due":    report.Due,
		"sent":   report.Sent,
		"failed": report.Failed,
	}).Info("Due maintenance scan finished")
}

func (s *NotificationScheduler) Stop() {
	s.logger.Info("Stopping notification scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Notification scheduler gracefully stopped.")
}
