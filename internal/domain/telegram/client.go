package telegram

import "gopkg.in/telebot.v3"

// Client posts release announcements to a Telegram chat.
type Client interface {
	SendMessage(chatID int64, text string, options *telebot.SendOptions) error
}
