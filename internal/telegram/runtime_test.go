package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestRegisterWebhook(t *testing.T) {
	api := &fakeAPI{}
	if err := RegisterWebhook(api, "https://bot.example.com/", "123:abc"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(api.requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(api.requests))
	}
	if _, ok := api.requests[0].(tgbotapi.DeleteWebhookConfig); !ok {
		t.Fatalf("first request %T, want DeleteWebhookConfig", api.requests[0])
	}
	wh, ok := api.requests[1].(tgbotapi.WebhookConfig)
	if !ok {
		t.Fatalf("second request %T, want WebhookConfig", api.requests[1])
	}
	if got := wh.URL.String(); got != "https://bot.example.com/webhook/123:abc" {
		t.Fatalf("webhook url = %s", got)
	}
}
