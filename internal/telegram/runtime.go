package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// WebhookPath is the route Telegram posts updates to. The token in the path
// keeps the endpoint unguessable.
func WebhookPath(token string) string {
	return "/webhook/" + token
}

// RegisterWebhook replaces any existing webhook with {baseURL}/webhook/{token}.
func RegisterWebhook(api API, baseURL, token string) error {
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	link := strings.TrimRight(baseURL, "/") + WebhookPath(token)
	wh, err := tgbotapi.NewWebhook(link)
	if err != nil {
		return fmt.Errorf("build webhook: %w", err)
	}
	if _, err := api.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

// RunPolling long-polls for updates until ctx is cancelled. Each update is
// handled on its own goroutine; in-flight handlers finish before it returns.
func RunPolling(ctx context.Context, api *tgbotapi.BotAPI, bot *Bot, logger *slog.Logger) error {
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)
	logger.Info("telegram polling started", "username", api.Self.UserName)

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				bot.HandleUpdate(ctx, update)
			}()
		case <-ctx.Done():
			api.StopReceivingUpdates()
			logger.Info("telegram polling stopped")
			return nil
		}
	}
}
