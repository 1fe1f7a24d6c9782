package telegram

import "gopkg.in/telebot.v3"

// Client sends chat messages, optionally with an inline keyboard.
// Keeps notifier logic independent of the bot instance.
type Client interface {
	SendMessage(chatID int64, text string, markup *telebot.ReplyMarkup) error
}
