package dispatch

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramOptions configures alert delivery through a Telegram bot.
type TelegramOptions struct {
	// BotToken is the bot API token, supplied via environment.
	BotToken string
	// ChatID is the destination chat.
	ChatID int64
}

// errTelegramIncomplete is returned when the token or chat id is missing.
var errTelegramIncomplete = errors.New("telegram configuration incomplete")

// Telegram delivers alerts as bot messages to a fixed chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram authorizes the bot and verifies the connection.
func NewTelegram(opts TelegramOptions) (*Telegram, error) {
	if opts.BotToken == "" || opts.ChatID == 0 {
		return nil, errTelegramIncomplete
	}

	bot, err := tgbotapi.NewBotAPI(opts.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &Telegram{
		bot:    bot,
		chatID: opts.ChatID,
	}, nil
}

// Name identifies the transport in logs.
func (t *Telegram) Name() string {
	return "telegram"
}

// Deliver sends the alert as one plain-text message.
func (t *Telegram) Deliver(_ context.Context, subject, body string) error {
	msg := tgbotapi.NewMessage(t.chatID, subject+"\n\n"+body)
	msg.DisableWebPagePreview = true

	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	return nil
}
