package sanitize

import (
	"strings"
	"unicode/utf8"
)

var optionLabels = []string{"Option 1:", "Option 2:", "Option 3:"}

var numberedMarkers = []string{"1.", "2.", "3."}

// Checked in order; only the first match is removed per pass.
var rolePrefixes = []string{"My response:", "Response:", "Boyfriend:", "Me:"}

// Reply turns a raw model completion into the text shown to the user.
// It never fails; an empty result is the caller's signal to fall back.
func Reply(raw string) string {
	s := strings.TrimSpace(raw)
	s = stripMarkers(s)

	for {
		next := stripRolePrefix(strings.TrimSpace(dropNumberedLines(s)))
		if next == s {
			return s
		}
		s = next
	}
}

func stripMarkers(s string) string {
	s = strings.ReplaceAll(s, "*", "")
	for {
		before := s
		for _, label := range optionLabels {
			s = strings.ReplaceAll(s, label, "")
		}
		if s == before {
			return s
		}
	}
}

// dropNumberedLines removes "1. ..." style option lines but keeps short lines
// such as a bare "1." that may be legitimate content.
func dropNumberedLines(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if hasAnyPrefix(trimmed, numberedMarkers) && utf8.RuneCountInString(trimmed) > 3 {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func stripRolePrefix(s string) string {
	for _, p := range rolePrefixes {
		if strings.HasPrefix(s, p) {
			return strings.TrimSpace(s[len(p):])
		}
	}
	return s
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
