package relay

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"replymate/internal/domain"
	"replymate/internal/language"
	"replymate/internal/llm"
	"replymate/internal/prompt"
	"replymate/internal/sanitize"
)

// FallbackReply is returned whenever the provider cannot produce usable text.
const FallbackReply = "I couldn't generate a good response. Please try again."

// ProfileStore is the part of the profile store the relay depends on.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (domain.UserProfile, error)
	AppendHistory(ctx context.Context, userID string, ex domain.Exchange) error
}

type Service struct {
	llmProvider llm.Provider
	store       ProfileStore
	catalog     domain.StyleCatalog
	logger      *slog.Logger
}

func New(llmProvider llm.Provider, store ProfileStore, catalog domain.StyleCatalog, logger *slog.Logger) *Service {
	if len(catalog.List()) == 0 {
		catalog = domain.DefaultStyleCatalog()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		llmProvider: llmProvider,
		store:       store,
		catalog:     catalog,
		logger:      logger,
	}
}

func (s *Service) Catalog() domain.StyleCatalog {
	return s.catalog
}

// GenerateResponse runs classify, build, complete and sanitize for one message.
// It never fails: provider problems collapse into FallbackReply.
func (s *Service) GenerateResponse(ctx context.Context, message string, profile domain.UserProfile) string {
	start := time.Now()
	variant := language.Classify(message)
	promptText := prompt.Build(message, profile, s.catalog)

	completion, err := s.llmProvider.Complete(ctx, promptText)
	llmDur := time.Since(start)
	if err != nil {
		attrs := []any{"message", message, "variant", variant.String(), "llm_ms", llmDur.Milliseconds(), "error", err}
		var statusErr *llm.StatusError
		var decodeErr *llm.DecodeError
		switch {
		case errors.As(err, &statusErr):
			attrs = append(attrs, "status", statusErr.StatusCode, "payload", statusErr.Body)
		case errors.As(err, &decodeErr):
			attrs = append(attrs, "payload", decodeErr.Body)
		}
		s.logger.Error("completion request failed", attrs...)
		return FallbackReply
	}
	if !completion.Found {
		s.logger.Warn("completion had no candidate text",
			"message", message,
			"variant", variant.String(),
			"payload", string(completion.Raw),
		)
		return FallbackReply
	}

	reply := sanitize.Reply(completion.Text)
	if strings.TrimSpace(reply) == "" {
		s.logger.Warn("completion empty after sanitizing",
			"message", message,
			"variant", variant.String(),
			"payload", string(completion.Raw),
		)
		return FallbackReply
	}

	s.logger.Info("reply generated",
		"variant", variant.String(),
		"llm_ms", llmDur.Milliseconds(),
		"total_ms", time.Since(start).Milliseconds(),
	)
	return reply
}

// Reply loads the user's profile, generates a reply and records the exchange.
func (s *Service) Reply(ctx context.Context, userID, message string) (string, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return "", err
	}
	reply := s.GenerateResponse(ctx, message, profile)
	if err := s.store.AppendHistory(ctx, userID, domain.Exchange{Incoming: message, Reply: reply}); err != nil {
		return "", err
	}
	return reply, nil
}
