// Package bot serves the showtime digest over Telegram.
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/alexandermaffei/matera-film-scraper/internal/service"
)

const startMessage = "Ciao! Manda /film per la programmazione dei cinema di Matera."

// Bot is the Telegram bot. It answers /film with the current digest
// and pushes scheduled digests to the admin chat.
type Bot struct {
	api         *tgbotapi.BotAPI
	service     *service.Service
	adminChatID int64
	logger      *zap.Logger
}

// New creates the bot and verifies the token against the Telegram API.
func New(token string, adminChatID int64, svc *service.Service, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	logger.Info("Bot authorized", zap.String("username", api.Self.UserName))

	return &Bot{
		api:         api,
		service:     svc,
		adminChatID: adminChatID,
		logger:      logger,
	}, nil
}

// Start polls for updates until the context is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message"}

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("Listening for updates")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				b.logger.Info("Update channel closed")
				return nil
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			go b.handleCommand(ctx, update.Message)
		}
	}
}

// SendDigest pushes a digest to the admin chat. It implements
// service.Notifier.
func (b *Bot) SendDigest(text string) error {
	msg := tgbotapi.NewMessage(b.adminChatID, text)
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send digest: %w", err)
	}
	return nil
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	b.logger.Info("Received command",
		zap.String("command", message.Command()),
		zap.Int64("chat_id", message.Chat.ID))

	var text string
	switch message.Command() {
	case "start", "help":
		text = startMessage
	case "film":
		digest, err := b.service.Digest(ctx)
		if err != nil {
			b.logger.Error("Failed to build digest", zap.Error(err))
			text = "Non riesco a recuperare la programmazione, riprova più tardi."
		} else {
			text = digest
		}
	default:
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Int64("chat_id", message.Chat.ID),
			zap.Error(err))
	}
}
