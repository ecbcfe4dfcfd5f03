// Package telegram implements the Telegram Bot channel.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/initio-ai/initio/plugin/chat_apps"
	"github.com/initio-ai/initio/plugin/chat_apps/channels"
)

// Telegram allows roughly 30 messages per second bot-wide; stay under
// it so bursts of replies do not trip the API limiter.
const sendRateLimit = rate.Limit(25)

// Config holds configuration for the Telegram channel.
type Config struct {
	BotToken string
}

// Channel implements channels.ChatChannel for the Telegram Bot API.
type Channel struct {
	bot     *tgbotapi.BotAPI
	limiter *rate.Limiter
}

// NewChannel creates a new Telegram channel.
func NewChannel(config *Config) (*Channel, error) {
	bot, err := tgbotapi.NewBotAPI(config.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	return &Channel{
		bot:     bot,
		limiter: rate.NewLimiter(sendRateLimit, 5),
	}, nil
}

func (t *Channel) Name() chat_apps.Platform {
	return chat_apps.PlatformTelegram
}

// ValidateWebhook verifies the incoming webhook request. Telegram
// authenticates by the secret webhook path, so there is nothing to
// check in the body.
func (t *Channel) ValidateWebhook(_ context.Context, _ map[string]string, _ []byte) error {
	return nil
}

// ParseMessage parses a Telegram update into an IncomingMessage. Both
// plain text messages and inline-button callback queries are handled.
func (t *Channel) ParseMessage(_ context.Context, payload []byte) (*chat_apps.IncomingMessage, error) {
	var update tgbotapi.Update
	if err := json.Unmarshal(payload, &update); err != nil {
		slog.Warn("telegram: failed to parse webhook payload", "error", err)
		return nil, channels.ErrInvalidPayload
	}

	switch {
	case update.CallbackQuery != nil:
		query := update.CallbackQuery
		if query.Message == nil {
			return nil, channels.ErrInvalidPayload
		}
		return &chat_apps.IncomingMessage{
			Platform:       chat_apps.PlatformTelegram,
			PlatformUserID: strconv.FormatInt(query.From.ID, 10),
			PlatformChatID: strconv.FormatInt(query.Message.Chat.ID, 10),
			CallbackData:   query.Data,
			CallbackID:     query.ID,
			Timestamp:      time.Now(),
		}, nil
	case update.Message != nil:
		msg := update.Message
		return &chat_apps.IncomingMessage{
			Platform:       chat_apps.PlatformTelegram,
			PlatformUserID: strconv.FormatInt(msg.From.ID, 10),
			PlatformChatID: strconv.FormatInt(msg.Chat.ID, 10),
			Content:        msg.Text,
			Timestamp:      time.Now(),
		}, nil
	default:
		return nil, channels.ErrInvalidPayload
	}
}

// SendMessage sends a message, rendering buttons as a one-column
// inline keyboard.
func (t *Channel) SendMessage(ctx context.Context, msg *chat_apps.OutgoingMessage) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}

	chatID, err := strconv.ParseInt(msg.PlatformChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", msg.PlatformChatID, err)
	}

	message := tgbotapi.NewMessage(chatID, msg.Content)
	if len(msg.Buttons) > 0 {
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(msg.Buttons))
		for _, button := range msg.Buttons {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(button.Text, button.Data),
			))
		}
		message.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}

	if _, err := t.bot.Send(message); err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	return nil
}

// AckCallback answers a callback query so the client stops showing the
// progress indicator.
func (t *Channel) AckCallback(ctx context.Context, callbackID string) error {
	if callbackID == "" {
		return nil
	}
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := t.bot.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return fmt.Errorf("telegram callback ack failed: %w", err)
	}
	return nil
}

func (t *Channel) Close() error {
	t.bot.StopReceivingUpdates()
	return nil
}
