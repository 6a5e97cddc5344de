package config

import (
	"os"
	"path/filepath"
	"strings"
)

// LoadEnvFiles reads KEY=VALUE lines from each existing file. Variables
// already set in the process environment win.
func LoadEnvFiles(paths ...string) {
	for _, p := range paths {
		path := p
		if !filepath.IsAbs(path) {
			if cwd, err := os.Getwd(); err == nil {
				path = filepath.Join(cwd, path)
			}
		}
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		for _, rawLine := range strings.Split(string(content), "\n") {
			key, val, ok := parseEnvLine(rawLine)
			if !ok || os.Getenv(key) != "" {
				continue
			}
			_ = os.Setenv(key, val)
		}
	}
}

// parseEnvLine understands KEY=VALUE with optional "export ", single quotes
// (literal), double quotes (\n \t \" \\ escapes) and " #" comments after an
// unquoted value.
func parseEnvLine(raw string) (string, string, bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")
	key, val, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" || strings.ContainsAny(key, " \t") {
		return "", "", false
	}
	val = strings.TrimSpace(val)

	switch {
	case strings.HasPrefix(val, "'"):
		if end := strings.IndexByte(val[1:], '\''); end >= 0 {
			return key, val[1 : end+1], true
		}
		return key, val[1:], true
	case strings.HasPrefix(val, `"`):
		return key, unquoteEnv(val[1:]), true
	}
	if i := strings.Index(val, " #"); i >= 0 {
		val = strings.TrimSpace(val[:i])
	}
	return key, val, true
}

// unquoteEnv reads a double-quoted value up to the closing quote.
func unquoteEnv(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			return sb.String()
		case c == '\\' && i+1 < len(s):
			i++
			switch s[i] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(s[i])
			}
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
