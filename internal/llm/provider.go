package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

type Provider interface {
	Complete(ctx context.Context, prompt string) (Completion, error)
}

// Completion is the outcome of a request the provider answered well-formed.
// Found is false when the response carried no usable candidate text.
type Completion struct {
	Text  string
	Found bool
	Raw   []byte
}

type Config struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

func NewProvider(cfg Config) (Provider, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	switch cfg.Provider {
	case "", "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini api key is required")
		}
		return NewGeminiProvider(client, cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// StatusError reports a non-2xx answer from the provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// DecodeError reports a 2xx answer whose body was not the expected JSON.
type DecodeError struct {
	Provider string
	Body     string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s decode response: %v", e.Provider, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
