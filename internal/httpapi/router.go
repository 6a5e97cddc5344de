package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"replymate/internal/domain"
)

type Replier interface {
	Reply(ctx context.Context, userID, message string) (string, error)
}

type ProfileReader interface {
	LoadProfile(ctx context.Context, userID string) (domain.UserProfile, bool, error)
}

type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

type Config struct {
	// WebhookToken guards /webhook/{token}. Empty disables the route.
	WebhookToken string
	// APIToken is the bearer token for the /v1 reply and profile routes.
	// Empty disables them.
	APIToken string
	Catalog      domain.StyleCatalog
}

type server struct {
	cfg      Config
	replier  Replier
	profiles ProfileReader
	updates  UpdateHandler
	logger   *slog.Logger
}

// NewRouter builds the HTTP surface. updates may be nil when Telegram runs in
// polling mode or is disabled.
func NewRouter(cfg Config, replier Replier, profiles ProfileReader, updates UpdateHandler, logger *slog.Logger) http.Handler {
	if len(cfg.Catalog.List()) == 0 {
		cfg.Catalog = domain.DefaultStyleCatalog()
	}
	s := &server{cfg: cfg, replier: replier, profiles: profiles, updates: updates, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Bot is running!"))
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	r.Get("/v1/styles", s.handleStyles)
	if cfg.APIToken != "" {
		r.Group(func(r chi.Router) {
			r.Use(s.requireAPIToken)
			r.Post("/v1/reply", s.handleReply)
			r.Get("/v1/profiles/{userID}", s.handleProfile)
			r.Get("/v1/ws", s.handleWS)
		})
	}
	r.Post("/webhook/{token}", s.handleWebhook)
	return r
}

func (s *server) requireAPIToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		token, ok := strings.CutPrefix(req.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(s.cfg.APIToken)) != 1 {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, req)
	})
}

func (s *server) handleStyles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"default": domain.DefaultStyle,
		"styles":  s.cfg.Catalog.List(),
	})
}

func (s *server) handleReply(w http.ResponseWriter, req *http.Request) {
	var body domain.ReplyRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return
	}
	body.UserID = strings.TrimSpace(body.UserID)
	if body.UserID == "" || strings.TrimSpace(body.Text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "user_id and text are required"})
		return
	}

	start := time.Now()
	reply, err := s.replier.Reply(req.Context(), body.UserID, body.Text)
	if err != nil {
		s.logger.Error("reply failed", "user_id", body.UserID, "request_id", middleware.GetReqID(req.Context()), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	s.logger.Info("http reply served", "user_id", body.UserID, "total_ms", time.Since(start).Milliseconds())
	writeJSON(w, http.StatusOK, domain.ReplyResponse{UserID: body.UserID, Reply: reply})
}

func (s *server) handleProfile(w http.ResponseWriter, req *http.Request) {
	userID := chi.URLParam(req, "userID")
	profile, found, err := s.profiles.LoadProfile(req.Context(), userID)
	if err != nil {
		s.logger.Error("load profile failed", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "profile not found"})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *server) handleWebhook(w http.ResponseWriter, req *http.Request) {
	token := chi.URLParam(req, "token")
	if s.updates == nil || s.cfg.WebhookToken == "" ||
		subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.WebhookToken)) != 1 {
		http.NotFound(w, req)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(req.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid update"})
		return
	}
	// Telegram retries on non-2xx, so the update is handled before answering
	// and failures stay inside the bot.
	s.updates.HandleUpdate(context.WithoutCancel(req.Context()), update)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
