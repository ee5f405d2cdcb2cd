package telegram

import "gopkg.in/telebot.v3"

// Client is the outbound chat transport. Notification delivery and scenario
// prompts both go through it; options may be nil.
type Client interface {
	SendMessage(chatID int64, text string, options *telebot.SendOptions) error
}
