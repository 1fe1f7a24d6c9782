// internal/infra/telegram/client.go
package telegram

import (
	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements the Client interface using the gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendMessage sends a text message to a chat; markup may be nil.
func (tba *TelebotAdapter) SendMessage(chatID int64, text string, markup *telebot.ReplyMarkup) error {
	options := &telebot.SendOptions{DisableWebPagePreview: true}
	if markup != nil {
		options.ReplyMarkup = markup
	}

	recipient := &telebot.Chat{ID: chatID} // Operators' group chat or the admin's private chat
	_, err := tba.bot.Send(recipient, text, options)
	return err
}
