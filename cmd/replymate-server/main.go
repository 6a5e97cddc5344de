package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"replymate/internal/config"
	"replymate/internal/domain"
	"replymate/internal/httpapi"
	"replymate/internal/llm"
	"replymate/internal/mqtt"
	"replymate/internal/relay"
	"replymate/internal/store"
	"replymate/internal/telegram"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	config.LoadEnvFiles(".env")
	cfg, err := config.LoadServerConfig()
	if err != nil {
		logger.Error("load config failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		logger.Error("open profile store failed", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	catalog := domain.DefaultStyleCatalog()
	profiles := store.New(backend, store.Config{MaxHistory: cfg.MaxHistory, Catalog: catalog})
	defer profiles.Close()
	logger.Info("profile store ready", "backend", cfg.StoreBackend, "max_history", cfg.MaxHistory)

	llmProvider, err := llm.NewProvider(llm.Config{
		Provider: cfg.LLMProvider,
		Model:    cfg.LLMModel,
		BaseURL:  cfg.GoogleBaseURL,
		APIKey:   cfg.GoogleAPIKey,
		Timeout:  cfg.LLMTimeout,
	})
	if err != nil {
		logger.Error("init llm provider failed", "error", err)
		os.Exit(1)
	}

	svc := relay.New(llmProvider, profiles, catalog, logger)

	var updates httpapi.UpdateHandler
	var botAPI *tgbotapi.BotAPI
	var bot *telegram.Bot
	if cfg.TelegramEnabled {
		botAPI, err = tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			logger.Error("connect telegram failed", "error", err)
			os.Exit(1)
		}
		bot = telegram.NewBot(botAPI, botAPI.Self.UserName, svc, profiles, relay.NewPendingMessages(cfg.PendingTTL), logger)
		logger.Info("telegram bot connected", "username", botAPI.Self.UserName, "mode", cfg.RuntimeMode)

		if cfg.RuntimeMode == config.RuntimeWebhook {
			if err := telegram.RegisterWebhook(botAPI, cfg.WebhookURL, cfg.TelegramToken); err != nil {
				logger.Error("register webhook failed", "error", err)
				os.Exit(1)
			}
			updates = bot
			logger.Info("telegram webhook registered", "base_url", cfg.WebhookURL)
		}
	}

	if cfg.MQTTBrokerURL != "" {
		hub := mqtt.NewHub(mqtt.HubConfig{
			BrokerURL:   cfg.MQTTBrokerURL,
			ClientID:    cfg.MQTTClientID,
			Username:    cfg.MQTTUsername,
			Password:    cfg.MQTTPassword,
			TopicPrefix: cfg.MQTTTopicPrefix,
		}, svc, logger)
		if err := hub.Start(ctx); err != nil {
			logger.Error("start mqtt hub failed", "error", err)
			os.Exit(1)
		}
		logger.Info("mqtt relay enabled", "broker", cfg.MQTTBrokerURL, "prefix", cfg.MQTTTopicPrefix)
	}

	router := httpapi.NewRouter(httpapi.Config{
		WebhookToken: cfg.TelegramToken,
		APIToken:     cfg.APIToken,
		Catalog:      catalog,
	}, svc, profiles, updates, logger)

	if cfg.APIToken == "" {
		logger.Info("API_TOKEN not set, /v1 reply and profile routes disabled")
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("replymate server started", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	pollDone := make(chan struct{})
	if bot != nil && cfg.RuntimeMode == config.RuntimePolling {
		go func() {
			defer close(pollDone)
			if err := telegram.RunPolling(ctx, botAPI, bot, logger); err != nil {
				logger.Error("telegram polling failed", "error", err)
				cancel()
			}
		}()
	} else {
		close(pollDone)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("received shutdown signal")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	select {
	case <-pollDone:
	case <-shutdownCtx.Done():
		logger.Warn("telegram handlers still running at shutdown")
	}
}

func openBackend(ctx context.Context, cfg config.ServerConfig) (store.Backend, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		pg, err := store.NewPostgres(ctx, cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return pg, nil
	case config.StoreRedis:
		return store.NewRedis(ctx, store.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisKeyPrefix,
		})
	default:
		return store.OpenFile(cfg.UserDataFile)
	}
}
