// internal/infra/telegram/maintenance_response_handlers.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dorm_maintenance/internal/app"
	"dorm_maintenance/internal/domain/errs"
	"dorm_maintenance/internal/infra/metrics"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterMaintenanceResponseHandlers wires the Done and Skip buttons of due notifications.
func RegisterMaintenanceResponseHandlers(
	ctx context.Context,
	b *telebot.Bot,
	maintenanceService *app.MaintenanceService,
	adminService *app.AdminService,
	loc *time.Location,
	baseLogger *logrus.Entry,
) {
	b.Handle(&telebot.Btn{Unique: uniqueDone}, func(c telebot.Context) error {
		data := c.Callback().Data
		logCtx := baseLogger.WithFields(logrus.Fields{"callback": uniqueDone, "data": data, "sender_id": c.Sender().ID})

		if err := adminService.Authorize(c.Sender().ID); err != nil {
			logCtx.Warn("Unauthorized callback attempt")
			return c.Respond(&telebot.CallbackResponse{Text: "У вас нет прав для этого действия."})
		}

		scheduleID, err := parseScheduleID(data)
		if err != nil {
			c.Bot().OnError(fmt.Errorf("invalid callback data format for 'done': %w", err), c)
			return c.Respond(&telebot.CallbackResponse{Text: "Ошибка обработки ответа."})
		}

		updated, err := maintenanceService.MarkDone(ctx, scheduleID)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				logCtx.Warn("Schedule for 'done' callback not found")
				return c.Respond(&telebot.CallbackResponse{Text: "Работа не найдена (возможно, удалена)."})
			}
			c.Bot().OnError(fmt.Errorf("error processing 'done' for schedule %d: %w", scheduleID, err), c)
			return c.Respond(&telebot.CallbackResponse{Text: "Произошла ошибка."})
		}
		metrics.Completions.WithLabelValues("telegram").Inc()
		logCtx.WithField("schedule_id", scheduleID).Info("Schedule marked done via callback")

		outcome := "Отмечено как выполненное. Следующий срок не назначен."
		if next, ok := updated.DueDate(loc); ok {
			outcome = fmt.Sprintf("Отмечено как выполненное. Следующий срок: %s.", next.String())
		}
		editOutcome(c, logCtx, outcome)
		return c.Respond(&telebot.CallbackResponse{Text: "Готово!"})
	})

	b.Handle(&telebot.Btn{Unique: uniqueSkip}, func(c telebot.Context) error {
		data := c.Callback().Data
		logCtx := baseLogger.WithFields(logrus.Fields{"callback": uniqueSkip, "data": data, "sender_id": c.Sender().ID})

		if err := adminService.Authorize(c.Sender().ID); err != nil {
			logCtx.Warn("Unauthorized callback attempt")
			return c.Respond(&telebot.CallbackResponse{Text: "У вас нет прав для этого действия."})
		}

		scheduleID, due, err := parseSkipPayload(data)
		if err != nil {
			c.Bot().OnError(fmt.Errorf("invalid callback data format for 'skip': %w", err), c)
			return c.Respond(&telebot.CallbackResponse{Text: "Ошибка обработки ответа."})
		}

		_, created, err := maintenanceService.SkipDueDate(ctx, scheduleID, due)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				logCtx.Warn("Schedule for 'skip' callback not found")
				return c.Respond(&telebot.CallbackResponse{Text: "Работа не найдена (возможно, удалена)."})
			}
			c.Bot().OnError(fmt.Errorf("error processing 'skip' for schedule %d: %w", scheduleID, err), c)
			return c.Respond(&telebot.CallbackResponse{Text: "Произошла ошибка."})
		}
		if created {
			metrics.Skips.WithLabelValues("telegram").Inc()
		}
		logCtx.WithFields(logrus.Fields{"schedule_id": scheduleID, "created": created}).Info("Due date skipped via callback")

		editOutcome(c, logCtx, fmt.Sprintf("Напоминание на %s пропущено.", due.String()))
		return c.Respond(&telebot.CallbackResponse{Text: "Пропущено."})
	})
}

// editOutcome appends the outcome to the notification and drops its buttons.
func editOutcome(c telebot.Context, logCtx *logrus.Entry, outcome string) {
	msg := c.Message()
	if msg == nil {
		return
	}
	if err := c.Edit(msg.Text + "\n\n" + outcome); err != nil {
		logCtx.WithError(err).Warn("Failed to edit notification message")
	}
}
