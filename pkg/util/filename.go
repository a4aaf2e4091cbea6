package util

import (
	"strings"
	"unicode"
)

// SanitizeFilename turns a note title into a filename safe for a
// Content-Disposition header. Path separators, control characters and
// reserved punctuation are replaced with underscores; an empty result
// falls back to "note".
func SanitizeFilename(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' ||
			r == '"' || r == '<' || r == '>' || r == '|':
			b.WriteRune('_')
		case unicode.IsControl(r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	name := strings.TrimSpace(b.String())
	if name == "" {
		return "note"
	}
	return name
}
