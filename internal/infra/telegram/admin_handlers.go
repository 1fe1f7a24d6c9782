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

// AdminHandlerDeps groups what the admin maintenance commands need.
type AdminHandlerDeps struct {
	AdminService        *app.AdminService
	MaintenanceService  *app.MaintenanceService
	NotificationService app.NotificationService
	Location            *time.Location
	UpcomingDefaultDays int
}

// RegisterAdminHandlers registers handlers for admin maintenance commands.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, deps AdminHandlerDeps, baseLogger *logrus.Entry) {
	b.Handle("/due", func(c telebot.Context) error {
		handlerLogger, ok := authorizeCommand(c, deps.AdminService, baseLogger, "/due")
		if !ok {
			return c.Send("Ошибка: У вас нет прав для выполнения этой команды.")
		}

		items, err := deps.NotificationService.DueNotifications(ctx)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to compute due notifications")
			return c.Send("Произошла ошибка при получении списка работ.")
		}
		handlerLogger.WithField("due_count", len(items)).Info("Due list sent")
		return c.Send(formatDueList(items))
	})

	b.Handle("/upcoming", func(c telebot.Context) error {
		handlerLogger, ok := authorizeCommand(c, deps.AdminService, baseLogger, "/upcoming")
		if !ok {
			return c.Send("Ошибка: У вас нет прав для выполнения этой команды.")
		}

		// Expected format: /upcoming [days]
		days, err := parseUpcomingArgs(c.Args(), deps.UpcomingDefaultDays)
		if err != nil {
			handlerLogger.WithError(err).Warn("Invalid command format")
			return c.Send("Неверный формат команды. Используйте: /upcoming [дней]")
		}

		schedules, err := deps.MaintenanceService.ListUpcoming(ctx, days)
		if err != nil {
			if errors.Is(err, errs.ErrInvalidArgument) {
				return c.Send(fmt.Sprintf("Количество дней должно быть от 0 до %d.", app.MaxUpcomingDays))
			}
			handlerLogger.WithError(err).Error("Failed to list upcoming schedules")
			return c.Send("Произошла ошибка при получении списка работ.")
		}
		return c.Send(formatUpcomingList(schedules, days, deps.Location))
	})

	b.Handle("/done", func(c telebot.Context) error {
		handlerLogger, ok := authorizeCommand(c, deps.AdminService, baseLogger, "/done")
		if !ok {
			return c.Send("Ошибка: У вас нет прав для выполнения этой команды.")
		}

		args := c.Args()
		// Expected format: /done <ScheduleID>
		if len(args) != 1 {
			return c.Send("Неверный формат команды. Используйте: /done <ID работы>")
		}
		scheduleID, err := parseScheduleID(args[0])
		if err != nil {
			return c.Send("Ошибка: ID работы должен быть положительным числом.")
		}
		handlerLogger = handlerLogger.WithField("schedule_id", scheduleID)

		updated, err := deps.MaintenanceService.MarkDone(ctx, scheduleID)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				handlerLogger.Warn("Schedule not found")
				return c.Send(fmt.Sprintf("Работа с ID %d не найдена.", scheduleID))
			}
			handlerLogger.WithError(err).Error("Failed to mark schedule done")
			return c.Send(fmt.Sprintf("Произошла ошибка: %s", err.Error()))
		}
		metrics.Completions.WithLabelValues("telegram").Inc()
		handlerLogger.Info("Schedule marked done")

		next, ok := updated.DueDate(deps.Location)
		if !ok {
			return c.Send(fmt.Sprintf("Работа #%d «%s» выполнена. Следующий срок не назначен.", updated.ID, updated.Title))
		}
		return c.Send(fmt.Sprintf("Работа #%d «%s» выполнена. Следующий срок: %s.", updated.ID, updated.Title, next.String()))
	})

	b.Handle("/skip", func(c telebot.Context) error {
		handlerLogger, ok := authorizeCommand(c, deps.AdminService, baseLogger, "/skip")
		if !ok {
			return c.Send("Ошибка: У вас нет прав для выполнения этой команды.")
		}

		// Expected format: /skip <ScheduleID> <YYYY-MM-DD>
		scheduleID, due, err := parseSkipArgs(c.Args())
		if err != nil {
			handlerLogger.WithError(err).Warn("Invalid command format")
			return c.Send("Неверный формат команды. Используйте: /skip <ID работы> <ГГГГ-ММ-ДД>")
		}
		handlerLogger = handlerLogger.WithFields(logrus.Fields{"schedule_id": scheduleID, "due_date": due.String()})

		_, created, err := deps.MaintenanceService.SkipDueDate(ctx, scheduleID, due)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				handlerLogger.Warn("Schedule not found")
				return c.Send(fmt.Sprintf("Работа с ID %d не найдена.", scheduleID))
			}
			handlerLogger.WithError(err).Error("Failed to skip due date")
			return c.Send(fmt.Sprintf("Произошла ошибка: %s", err.Error()))
		}
		if !created {
			return c.Send(fmt.Sprintf("Срок %s для работы #%d уже был пропущен.", due.String(), scheduleID))
		}
		metrics.Skips.WithLabelValues("telegram").Inc()
		handlerLogger.Info("Due date skipped")
		return c.Send(fmt.Sprintf("Напоминание о работе #%d на %s пропущено.", scheduleID, due.String()))
	})
}

func authorizeCommand(c telebot.Context, adminService *app.AdminService, baseLogger *logrus.Entry, command string) (*logrus.Entry, bool) {
	handlerLogger := baseLogger.WithFields(logrus.Fields{
		"handler":   command,
		"sender_id": c.Sender().ID,
	})
	handlerLogger.Info("Command received")

	if err := adminService.Authorize(c.Sender().ID); err != nil {
		handlerLogger.Warn("Unauthorized access attempt")
		return handlerLogger, false
	}
	return handlerLogger, true
}
