// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"fmt"
	"strings"

	"dorm_maintenance/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func RegisterBotCommands(
	b *telebot.Bot,
	adminService *app.AdminService,
	baseLogger *logrus.Entry, // For contextual logging
) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", senderID)
		logCtx.Info("Processing /start command")

		if adminService.Authorize(senderID) == nil {
			logCtx.Info("User identified as Admin")
			return c.Send(fmt.Sprintf("Привет, %s! Я слежу за плановым обслуживанием общежития. Используйте /help для списка команд.", c.Sender().FirstName))
		}

		logCtx.Info("User is unknown")
		return c.Send("Привет! Я бот планового обслуживания общежития. Команды доступны только администратору.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/help").WithField("sender_id", senderID)
		logCtx.Info("Processing /help command")

		if adminService.Authorize(senderID) != nil {
			logCtx.Info("User is unknown, sending restricted help.")
			return c.Send("Доступных команд для вас нет. Обратитесь к администратору.")
		}
		return c.Send(adminHelpText(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
}

func adminHelpText() string {
	var helpText strings.Builder
	helpText.WriteString("Доступные команды Администратора:\n\n")
	helpText.WriteString("`/due`\n - Работы, по которым пора напомнить (включая просроченные).\n\n")
	helpText.WriteString("`/upcoming [дней]`\n - Работы со сроком в ближайшие дни.\n\n")
	helpText.WriteString("`/done <ID>`\n - Отметить работу выполненной и перенести срок на следующий цикл.\n\n")
	helpText.WriteString("`/skip <ID> <ГГГГ-ММ-ДД>`\n - Пропустить напоминание для указанного срока.\n\n")
	helpText.WriteString("`/help`\n - Показать это справочное сообщение.")
	return helpText.String()
}
