package prompt

import (
	"fmt"
	"strings"
	"testing"

	"replymate/internal/domain"
	"replymate/internal/language"
)

func TestBuildMatchesTemplateForEmptyProfile(t *testing.T) {
	got := Build("hi", domain.DefaultProfile(), domain.DefaultStyleCatalog())
	want := "You are helping a boyfriend respond to his girlfriend named your girlfriend. " +
		"Generate a warm, affectionate and romantic response to her message.\n\n" +
		"\n" +
		"\n" +
		"IMPORTANT INSTRUCTIONS:\n" +
		"1. Keep your response short and direct (1-3 sentences only)\n" +
		"2. Don't use markdown formatting, asterisks, or bullet points\n" +
		"3. Don't provide multiple options - just give ONE perfect response\n" +
		"4. Write as if you ARE the boyfriend (first person)\n" +
		"5. Don't include explanations or notes\n" +
		"6. Don't use phrases like 'you could say' or 'here's a response'\n" +
		"7. Use appropriate emojis naturally (1-2 emojis max) if it fits the tone\n" +
		"8. Make the response sound natural, like a real text from a boyfriend\n" +
		"9. Never start with 'As your boyfriend' or similar phrases\n" +
		"10. Respond in English.\n\n" +
		"Her message: \"hi\"\n\n" +
		"My response:"
	if got != want {
		t.Fatalf("prompt mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestBuildOmitsEmptyBlocks(t *testing.T) {
	got := Build("how was your day?", domain.DefaultProfile(), domain.DefaultStyleCatalog())
	if strings.Contains(got, "Important personal details") {
		t.Fatalf("unexpected details block")
	}
	if strings.Contains(got, "Recent conversation") {
		t.Fatalf("unexpected history block")
	}
	for i := 1; i <= 10; i++ {
		if !strings.Contains(got, fmt.Sprintf("\n%d. ", i)) {
			t.Fatalf("missing directive %d", i)
		}
	}
	if strings.Contains(got, "\n11. ") {
		t.Fatalf("more than ten directives")
	}
}

func TestBuildSelectsExactlyOneLanguageDirective(t *testing.T) {
	tests := []struct {
		message string
		variant language.Variant
	}{
		{message: "ene wedeshalew", variant: language.TransliteratedGuess},
		{message: "ሰላም how are you", variant: language.Native},
		{message: "I miss you", variant: language.Default},
	}
	all := []string{nativeDirective, transliteratedDirective, defaultDirective}

	for _, tt := range tests {
		t.Run(tt.variant.String(), func(t *testing.T) {
			got := Build(tt.message, domain.DefaultProfile(), domain.DefaultStyleCatalog())
			total := 0
			for _, d := range all {
				total += strings.Count(got, d)
			}
			if total != 1 {
				t.Fatalf("found %d language directives, want 1", total)
			}
			if !strings.Contains(got, "10. "+LanguageDirective(tt.variant)+"\n") {
				t.Fatalf("directive 10 is not %q", LanguageDirective(tt.variant))
			}
			if !strings.Contains(got, "\""+tt.message+"\"") {
				t.Fatalf("prompt missing quoted message")
			}
			if !strings.HasSuffix(got, ResponseCue) {
				t.Fatalf("prompt must end with the response cue")
			}
		})
	}
}

func TestBuildTransliteratedDirectiveForbidsNativeScript(t *testing.T) {
	got := Build("ene wedeshalew", domain.DefaultProfile(), domain.DefaultStyleCatalog())
	if !strings.Contains(got, "10. Respond in Amharic but write it using Latin alphabet (transliterated Amharic). Do not use Amharic script.") {
		t.Fatalf("expected latin-only directive, got:\n%s", got)
	}
}

func TestBuildUsesOnlyLastThreeExchanges(t *testing.T) {
	p := domain.DefaultProfile()
	for i := 1; i <= 10; i++ {
		p.History = append(p.History, domain.Exchange{
			Incoming: fmt.Sprintf("msg-%02d", i),
			Reply:    fmt.Sprintf("reply-%02d", i),
		})
	}

	got := Build("hello", p, domain.DefaultStyleCatalog())
	if strings.Count(got, "Girlfriend: ") != 3 || strings.Count(got, "Boyfriend: ") != 3 {
		t.Fatalf("expected exactly 3 history pairs:\n%s", got)
	}
	for i := 1; i <= 7; i++ {
		if strings.Contains(got, fmt.Sprintf("msg-%02d", i)) {
			t.Fatalf("old exchange %d leaked into prompt", i)
		}
	}
	want := "Recent conversation:\n" +
		"Girlfriend: msg-08\nBoyfriend: reply-08\n\n" +
		"Girlfriend: msg-09\nBoyfriend: reply-09\n\n" +
		"Girlfriend: msg-10\nBoyfriend: reply-10\n\n"
	if !strings.Contains(got, want) {
		t.Fatalf("history block not rendered oldest-first:\n%s", got)
	}
}

func TestBuildStyleFallback(t *testing.T) {
	catalog := domain.DefaultStyleCatalog()
	for _, style := range []string{"", "does-not-exist"} {
		p := domain.DefaultProfile()
		p.Style = style
		got := Build("hi", p, catalog)
		if !strings.Contains(got, "Generate a warm, affectionate and romantic response") {
			t.Fatalf("style %q did not fall back to default", style)
		}
	}

	p := domain.DefaultProfile()
	p.Style = "playful"
	if got := Build("hi", p, catalog); !strings.Contains(got, "Generate a playful, teasing and flirty response") {
		t.Fatalf("playful style not applied")
	}
}

func TestBuildRendersPartnerAndDetails(t *testing.T) {
	p := domain.DefaultProfile()
	p.PartnerName = "Emma"
	p.PersonalDetails = map[string]string{"pet": "a cat named Milo", "anniversary": "June 15th"}

	got := Build("hi", p, domain.DefaultStyleCatalog())
	if !strings.Contains(got, "girlfriend named Emma. ") {
		t.Fatalf("partner name missing")
	}
	want := "Important personal details to remember:\n- anniversary: June 15th\n- pet: a cat named Milo\n\n"
	if !strings.Contains(got, want) {
		t.Fatalf("details block mismatch:\n%s", got)
	}
}
