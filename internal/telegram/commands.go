package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"replymate/internal/store"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	userID := userKey(msg.From)
	args := strings.Fields(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		b.reply(msg.Chat.ID, fmt.Sprintf(
			"Hi %s! I'm your AI-powered romantic reply assistant. "+
				"Tag me in a conversation with @%s followed by your girlfriend's message, "+
				"and I'll help you craft the perfect response.\n\n"+
				"Use /help to see all available commands.",
			msg.From.FirstName, b.username))

	case "help":
		b.reply(msg.Chat.ID, helpText(b.username))

	case "style":
		out := tgbotapi.NewMessage(msg.Chat.ID, "Choose your preferred response style:")
		out.ReplyMarkup = b.styleKeyboard()
		if _, err := b.api.Send(out); err != nil {
			b.logger.Warn("send style picker failed", "chat_id", msg.Chat.ID, "error", err)
		}

	case "setname":
		if len(args) == 0 {
			b.reply(msg.Chat.ID, "Please provide your girlfriend's name. Example: /setname Emma")
			return
		}
		name := strings.Join(args, " ")
		if err := b.store.SetPartnerName(ctx, userID, name); err != nil {
			b.logger.Error("set partner name failed", "user_id", userID, "error", err)
			b.reply(msg.Chat.ID, "Sorry, I couldn't save that right now. Please try again.")
			return
		}
		b.reply(msg.Chat.ID, fmt.Sprintf("Your girlfriend's name has been set to: %s", name))

	case "adddetail":
		if len(args) < 2 {
			b.reply(msg.Chat.ID, "Please provide a key and value. Example: /adddetail anniversary 'June 15th'")
			return
		}
		key := args[0]
		value := strings.Join(args[1:], " ")
		if err := b.store.AddPersonalDetail(ctx, userID, key, value); err != nil {
			if !errors.Is(err, store.ErrEmptyDetailKey) {
				b.logger.Error("add personal detail failed", "user_id", userID, "error", err)
			}
			b.reply(msg.Chat.ID, "Sorry, I couldn't save that right now. Please try again.")
			return
		}
		b.reply(msg.Chat.ID, fmt.Sprintf("Added personal detail: %s = %s", key, value))
	}
}

func (b *Bot) styleKeyboard() tgbotapi.InlineKeyboardMarkup {
	styles := b.relay.Catalog().List()
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(styles))
	for _, s := range styles {
		label := fmt.Sprintf("%s - %s", capitalize(s.Key), s.Description)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, callbackStyle+s.Key)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func helpText(username string) string {
	return "Here's how to use me:\n\n" +
		"1. Tag me in a conversation with @" + username + " followed by your girlfriend's message\n" +
		"2. I'll generate a thoughtful response for you\n\n" +
		"Available commands:\n" +
		"/start - Start the bot\n" +
		"/help - Show this help message\n" +
		"/style - Change your response style\n" +
		"/setname - Set your girlfriend's name\n" +
		"/adddetail - Add a personal detail to remember\n"
}
