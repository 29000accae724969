package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Config holds long-polling settings. The token is consumed by NewAPI.
type Config struct {
	// PollTimeout is the getUpdates timeout in seconds; zero selects 60.
	PollTimeout int
}

// Bot long-polls Telegram and feeds messages to a Handler one at a time.
type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	logger  *slog.Logger
	timeout int
}

// NewAPI authenticates with Telegram.
func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	return api, nil
}

// New creates a bot around an authenticated API client.
func New(api *tgbotapi.BotAPI, handler *Handler, cfg Config, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 60
	}
	return &Bot{api: api, handler: handler, logger: logger, timeout: timeout}
}

// Run processes updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.timeout
	u.AllowedUpdates = []string{"message"}

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	b.logger.Info("bot started", "username", b.api.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("bot stopping")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}
	b.logger.Debug("message received", "chat_id", msg.Chat.ID, "user_id", msg.From.ID)
	b.handler.HandleMessage(ctx, msg.Chat.ID, msg.From.ID, msg.Text)
}
