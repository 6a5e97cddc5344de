package prompt

import (
	"fmt"
	"sort"
	"strings"

	"replymate/internal/domain"
	"replymate/internal/language"
)

const (
	// HistoryWindow is how many recent exchanges are shown to the model,
	// independent of how many the store keeps.
	HistoryWindow = 3

	PartnerPlaceholder = "your girlfriend"
	ResponseCue        = "My response:"
)

const (
	nativeDirective         = "Respond in Amharic using Amharic script (Fidel)."
	transliteratedDirective = "Respond in Amharic but write it using Latin alphabet (transliterated Amharic). Do not use Amharic script."
	defaultDirective        = "Respond in English."
)

var fixedInstructions = []string{
	"Keep your response short and direct (1-3 sentences only)",
	"Don't use markdown formatting, asterisks, or bullet points",
	"Don't provide multiple options - just give ONE perfect response",
	"Write as if you ARE the boyfriend (first person)",
	"Don't include explanations or notes",
	"Don't use phrases like 'you could say' or 'here's a response'",
	"Use appropriate emojis naturally (1-2 emojis max) if it fits the tone",
	"Make the response sound natural, like a real text from a boyfriend",
	"Never start with 'As your boyfriend' or similar phrases",
}

func LanguageDirective(v language.Variant) string {
	switch v {
	case language.Native:
		return nativeDirective
	case language.TransliteratedGuess:
		return transliteratedDirective
	default:
		return defaultDirective
	}
}

// Build assembles the single instruction block sent to the model for message.
func Build(message string, profile domain.UserProfile, catalog domain.StyleCatalog) string {
	name := profile.PartnerName
	if strings.TrimSpace(name) == "" {
		name = PartnerPlaceholder
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You are helping a boyfriend respond to his girlfriend named %s. ", name))
	sb.WriteString(fmt.Sprintf("Generate a %s response to her message.\n\n", catalog.Describe(profile.Style)))

	writeDetails(&sb, profile.PersonalDetails)
	sb.WriteString("\n")
	writeHistory(&sb, profile.History)
	sb.WriteString("\n")

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	for i, line := range fixedInstructions {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, line))
	}
	sb.WriteString(fmt.Sprintf("%d. %s\n\n", len(fixedInstructions)+1, LanguageDirective(language.Classify(message))))

	sb.WriteString(fmt.Sprintf("Her message: \"%s\"\n\n", message))
	sb.WriteString(ResponseCue)
	return sb.String()
}

func writeDetails(sb *strings.Builder, details map[string]string) {
	if len(details) == 0 {
		return
	}
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sb.WriteString("Important personal details to remember:\n")
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", k, details[k]))
	}
}

func writeHistory(sb *strings.Builder, history []domain.Exchange) {
	if len(history) == 0 {
		return
	}
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}

	sb.WriteString("Recent conversation:\n")
	for _, ex := range history {
		sb.WriteString(fmt.Sprintf("Girlfriend: %s\n", ex.Incoming))
		sb.WriteString(fmt.Sprintf("Boyfriend: %s\n\n", ex.Reply))
	}
}
