package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreRedis    = "redis"

	RuntimePolling = "polling"
	RuntimeWebhook = "webhook"
)

type ServerConfig struct {
	HTTPAddr string
	APIToken string

	TelegramEnabled bool
	TelegramToken   string
	RuntimeMode     string
	WebhookURL      string

	LLMProvider   string
	LLMModel      string
	GoogleBaseURL string
	GoogleAPIKey  string
	LLMTimeout    time.Duration

	StoreBackend   string
	UserDataFile   string
	DBDSN          string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	MaxHistory int
	PendingTTL time.Duration

	MQTTBrokerURL   string
	MQTTClientID    string
	MQTTUsername    string
	MQTTPassword    string
	MQTTTopicPrefix string
}

func LoadServerConfig() (ServerConfig, error) {
	cfg := ServerConfig{
		HTTPAddr:        getenvDefault("HTTP_ADDR", portAddr()),
		APIToken:        os.Getenv("API_TOKEN"),
		TelegramEnabled: getenvBoolDefault("TELEGRAM_ENABLED", true),
		TelegramToken:   os.Getenv("TELEGRAM_TOKEN"),
		RuntimeMode:     strings.ToLower(getenvDefault("RUNTIME_MODE", RuntimePolling)),
		WebhookURL:      strings.TrimRight(os.Getenv("WEBHOOK_URL"), "/"),
		LLMProvider:     strings.ToLower(getenvDefault("LLM_PROVIDER", "gemini")),
		LLMModel:        getenvDefault("LLM_MODEL", "gemini-1.5-flash"),
		GoogleBaseURL:   strings.TrimRight(getenvDefault("GOOGLE_API_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"), "/"),
		GoogleAPIKey:    os.Getenv("GOOGLE_API_KEY"),
		LLMTimeout:      time.Duration(getenvIntDefault("LLM_TIMEOUT_SECONDS", 60)) * time.Second,
		StoreBackend:    strings.ToLower(getenvDefault("STORE_BACKEND", StoreFile)),
		UserDataFile:    getenvDefault("USER_DATA_FILE", "user_data.json"),
		DBDSN:           os.Getenv("DB_DSN"),
		RedisAddr:       getenvDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         getenvIntDefault("REDIS_DB", 0),
		RedisKeyPrefix:  getenvDefault("REDIS_KEY_PREFIX", "replymate"),
		MaxHistory:      getenvIntDefault("MAX_HISTORY_LENGTH", 10),
		PendingTTL:      time.Duration(getenvIntDefault("PENDING_MESSAGE_TTL_SECONDS", 86400)) * time.Second,
		MQTTBrokerURL:   os.Getenv("MQTT_BROKER_URL"),
		MQTTClientID:    getenvDefault("MQTT_CLIENT_ID", "replymate-server"),
		MQTTUsername:    os.Getenv("MQTT_USERNAME"),
		MQTTPassword:    os.Getenv("MQTT_PASSWORD"),
		MQTTTopicPrefix: getenvDefault("MQTT_TOPIC_PREFIX", "replymate"),
	}

	if cfg.GoogleAPIKey == "" {
		return ServerConfig{}, fmt.Errorf("GOOGLE_API_KEY is required")
	}
	if cfg.TelegramEnabled {
		if cfg.TelegramToken == "" {
			return ServerConfig{}, fmt.Errorf("TELEGRAM_TOKEN is required when TELEGRAM_ENABLED=true")
		}
		switch cfg.RuntimeMode {
		case RuntimePolling:
		case RuntimeWebhook:
			if cfg.WebhookURL == "" {
				return ServerConfig{}, fmt.Errorf("WEBHOOK_URL is required when RUNTIME_MODE=webhook")
			}
		default:
			return ServerConfig{}, fmt.Errorf("unsupported RUNTIME_MODE: %s", cfg.RuntimeMode)
		}
	}

	switch cfg.StoreBackend {
	case StoreFile:
		if cfg.UserDataFile == "" {
			return ServerConfig{}, fmt.Errorf("USER_DATA_FILE is required when STORE_BACKEND=file")
		}
	case StorePostgres:
		if cfg.DBDSN == "" {
			return ServerConfig{}, fmt.Errorf("DB_DSN is required when STORE_BACKEND=postgres")
		}
	case StoreRedis:
		if cfg.RedisAddr == "" {
			return ServerConfig{}, fmt.Errorf("REDIS_ADDR is required when STORE_BACKEND=redis")
		}
	default:
		return ServerConfig{}, fmt.Errorf("unsupported STORE_BACKEND: %s", cfg.StoreBackend)
	}

	if cfg.MaxHistory <= 0 {
		return ServerConfig{}, fmt.Errorf("MAX_HISTORY_LENGTH must be positive")
	}

	return cfg, nil
}

// portAddr honours the PORT variable set by most container platforms.
func portAddr() string {
	if p := os.Getenv("PORT"); p != "" {
		return ":" + p
	}
	return ":8080"
}

func getenvDefault(key, val string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return val
}

func getenvIntDefault(key string, val int) int {
	v := os.Getenv(key)
	if v == "" {
		return val
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return val
	}
	return n
}

func getenvBoolDefault(key string, val bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return val
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return val
	}
	return b
}
