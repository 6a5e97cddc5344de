package telegram

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"replymate/internal/domain"
	"replymate/internal/relay"
)

const (
	callbackStyle = "style_"
	callbackCopy  = "copy_"
	callbackRegen = "regen_"

	copyButtonText  = "📋 Copy Response"
	regenButtonText = "🔄 Regenerate Response"

	copyReadyText     = "Text ready to copy!"
	regenNotFoundText = "Sorry, I couldn't find the original message."
	emptyMentionText  = "Please include your girlfriend's message. For example: 'Hey, how was your day?'"
	inlineEmptyText   = "I couldn't generate a response. Please try a different message."
)

// API is the subset of *tgbotapi.BotAPI the bot calls.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (domain.UserProfile, error)
	UpdateStyle(ctx context.Context, userID, style string) error
	SetPartnerName(ctx context.Context, userID, name string) error
	AddPersonalDetail(ctx context.Context, userID, key, value string) error
}

type Bot struct {
	api      API
	username string
	relay    *relay.Service
	store    ProfileStore
	pending  *relay.PendingMessages
	logger   *slog.Logger
}

func NewBot(api API, username string, svc *relay.Service, store ProfileStore, pending *relay.PendingMessages, logger *slog.Logger) *Bot {
	if pending == nil {
		pending = relay.NewPendingMessages(0)
	}
	return &Bot{
		api:      api,
		username: username,
		relay:    svc,
		store:    store,
		pending:  pending,
		logger:   logger,
	}
}

// HandleUpdate dispatches one update. Failures are logged, never returned,
// so a bad update cannot stall polling or the webhook.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		if update.Message.IsCommand() {
			b.handleCommand(ctx, update.Message)
			return
		}
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.InlineQuery != nil:
		b.handleInlineQuery(ctx, update.InlineQuery)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || strings.TrimSpace(msg.Text) == "" {
		return
	}
	b.logger.Info("message received", "chat_id", msg.Chat.ID, "user_id", msg.From.ID)

	text, ok := b.extractIncoming(msg)
	if !ok {
		return
	}
	if text == "" {
		b.reply(msg.Chat.ID, emptyMentionText)
		return
	}

	userID := userKey(msg.From)
	id := b.pending.Remember(userID, text)

	b.typing(msg.Chat.ID)
	answer, err := b.relay.Reply(ctx, userID, text)
	if err != nil {
		b.logger.Error("reply failed", "user_id", userID, "error", err)
		b.reply(msg.Chat.ID, relay.FallbackReply)
		return
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, formatReply(answer))
	out.ParseMode = tgbotapi.ModeHTML
	out.ReplyMarkup = replyKeyboard(id)
	if _, err := b.api.Send(out); err != nil {
		b.logger.Warn("send reply failed", "chat_id", msg.Chat.ID, "error", err)
	}
}

// extractIncoming decides whether msg is addressed to the bot and returns the
// text with the @mention removed.
func (b *Bot) extractIncoming(msg *tgbotapi.Message) (string, bool) {
	mention := "@" + b.username
	mentioned := b.username != "" && strings.Contains(strings.ToLower(msg.Text), strings.ToLower(mention))
	private := msg.Chat != nil && msg.Chat.IsPrivate()
	if !private && !mentioned {
		return "", false
	}
	if mentioned {
		return strings.TrimSpace(strings.ReplaceAll(msg.Text, mention, "")), true
	}
	return msg.Text, true
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if q.From == nil {
		return
	}
	userID := userKey(q.From)

	switch {
	case strings.HasPrefix(q.Data, callbackStyle):
		b.answerCallback(q.ID, "")
		style := strings.TrimPrefix(q.Data, callbackStyle)
		text := fmt.Sprintf("Your response style has been updated to: %s", capitalize(style))
		if err := b.store.UpdateStyle(ctx, userID, style); err != nil {
			b.logger.Warn("update style failed", "user_id", userID, "style", style, "error", err)
			text = "Sorry, I couldn't update your style. Use /style to pick one of the listed styles."
		}
		b.editMessage(q.Message, text, nil)

	case strings.HasPrefix(q.Data, callbackCopy):
		b.answerCallback(q.ID, copyReadyText)

	case strings.HasPrefix(q.Data, callbackRegen):
		id := strings.TrimPrefix(q.Data, callbackRegen)
		pending, ok := b.pending.Lookup(id)
		if !ok || pending.UserID != userID {
			b.answerCallback(q.ID, regenNotFoundText)
			return
		}
		b.answerCallback(q.ID, "")

		answer, err := b.relay.Reply(ctx, userID, pending.Text)
		if err != nil {
			b.logger.Error("regenerate failed", "user_id", userID, "error", err)
			answer = relay.FallbackReply
		}
		markup := replyKeyboard(id)
		b.editMessage(q.Message, formatReply(answer), &markup)

	default:
		b.answerCallback(q.ID, "")
	}
}

func (b *Bot) handleInlineQuery(ctx context.Context, q *tgbotapi.InlineQuery) {
	query := q.Query
	if query == "" || q.From == nil {
		return
	}
	userID := userKey(q.From)
	b.logger.Info("inline query received", "user_id", userID)

	// Inline queries arrive per keystroke, so they are answered from the
	// profile without being recorded in history.
	var result tgbotapi.InlineQueryResultArticle
	profile, err := b.store.GetProfile(ctx, userID)
	if err != nil {
		b.logger.Error("inline reply failed", "user_id", userID, "error", err)
		result = tgbotapi.NewInlineQueryResultArticle("error", "Error generating response",
			"I encountered an error. Please try again with a different message.")
		result.Description = "Something went wrong. Please try again."
	} else {
		answer := b.relay.GenerateResponse(ctx, query, profile)
		if strings.TrimSpace(answer) == "" {
			answer = inlineEmptyText
		}
		result = tgbotapi.NewInlineQueryResultArticle("1", "AI Response", answer)
		result.Description = inlineDescription(query)
	}

	cfg := tgbotapi.InlineConfig{
		InlineQueryID: q.ID,
		Results:       []interface{}{result},
	}
	if _, err := b.api.Request(cfg); err != nil {
		b.logger.Warn("answer inline query failed", "user_id", userID, "error", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Warn("send message failed", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) typing(chatID int64) {
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.logger.Debug("chat action failed", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.logger.Warn("answer callback failed", "error", err)
	}
}

func (b *Bot) editMessage(msg *tgbotapi.Message, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	if msg == nil || msg.Chat == nil {
		return
	}
	edit := tgbotapi.NewEditMessageText(msg.Chat.ID, msg.MessageID, text)
	if markup != nil {
		edit.ParseMode = tgbotapi.ModeHTML
		edit.ReplyMarkup = markup
	}
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Warn("edit message failed", "chat_id", msg.Chat.ID, "error", err)
	}
}

func formatReply(answer string) string {
	return "Here's your response:\n\n<code>" + html.EscapeString(answer) + "</code>"
}

func replyKeyboard(id string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(copyButtonText, callbackCopy+id)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(regenButtonText, callbackRegen+id)),
	)
}

func inlineDescription(query string) string {
	runes := []rune(query)
	if len(runes) > 30 {
		return "Response to: " + string(runes[:30]) + "..."
	}
	return "Response to: " + query
}

func userKey(u *tgbotapi.User) string {
	return strconv.FormatInt(u.ID, 10)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
