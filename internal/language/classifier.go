package language

import (
	"regexp"
	"strings"
)

type Variant int

const (
	Default Variant = iota
	TransliteratedGuess
	Native
)

func (v Variant) String() string {
	switch v {
	case Native:
		return "native"
	case TransliteratedGuess:
		return "transliterated"
	default:
		return "default"
	}
}

const (
	nativeBlockStart = '\u1200'
	nativeBlockEnd   = '\u137F'
)

// Marker groups are checked in this order; any single whole-word hit is enough.
var markerGroups = []struct {
	name   string
	tokens []string
}{
	{name: "pronouns", tokens: []string{"ene", "ante", "anchi", "esu", "esua", "egna", "enanet", "enante"}},
	{name: "phrases", tokens: []string{"selam", "tena yistilign", "dehna", "betam", "ameseginalehu"}},
	{name: "copula", tokens: []string{"new", "nesh", "nat", "nachew", "nen"}},
	{name: "demonstratives", tokens: []string{"yihe", "yih", "ya", "yehe", "esu"}},
	{name: "questions", tokens: []string{"min", "man", "yet", "meche", "sint"}},
	{name: "possession", tokens: []string{"alegn", "alesh", "ale", "alat", "alen", "alachihu", "alachew"}},
	{name: "love", tokens: []string{"ewedihalehu", "ewedishalehu", "ewedihalew", "ewediyatalew"}},
}

// A word character is a letter, a number or '_', in any script.
const nonWord = `[^\p{L}\p{N}_]`

var compiledGroups = compileGroups()

func compileGroups() []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(markerGroups))
	for _, g := range markerGroups {
		quoted := make([]string, 0, len(g.tokens))
		for _, tok := range g.tokens {
			quoted = append(quoted, regexp.QuoteMeta(tok))
		}
		expr := `(?:^|` + nonWord + `)(?:` + strings.Join(quoted, "|") + `)(?:$|` + nonWord + `)`
		out = append(out, regexp.MustCompile(expr))
	}
	return out
}

func Classify(text string) Variant {
	if HasNativeScript(text) {
		return Native
	}
	if LooksTransliterated(text) {
		return TransliteratedGuess
	}
	return Default
}

func HasNativeScript(text string) bool {
	for _, r := range text {
		if r >= nativeBlockStart && r <= nativeBlockEnd {
			return true
		}
	}
	return false
}

func LooksTransliterated(text string) bool {
	lowered := strings.ToLower(text)
	for _, re := range compiledGroups {
		if re.MatchString(lowered) {
			return true
		}
	}
	return false
}
