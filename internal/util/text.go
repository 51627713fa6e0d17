package util

import (
	"strings"
	"unicode"
)

// CleanText trims s and drops control and invisible formatting characters,
// so names and titles render the way they compare. Newlines and tabs are
// kept only when multiline is set.
func CleanText(s string, multiline bool) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}

	builder := strings.Builder{}
	builder.Grow(len(trimmed))

	for _, char := range trimmed {
		if multiline && (char == '\n' || char == '\t') {
			builder.WriteRune(char)
			continue
		}
		if unicode.IsControl(char) || isInvisibleUnicode(char) {
			continue
		}

		builder.WriteRune(char)
	}

	return strings.TrimSpace(builder.String())
}

// isInvisibleUnicode reports zero-width and other format characters.
func isInvisibleUnicode(r rune) bool {
	switch r {
	case
		'\u200B', // zero-width space
		'\u2060', // word joiner
		'\u2061', '\u2062', '\u2063', '\u2064',
		'\uFEFF', // BOM
		'\uFFF9', '\uFFFA', '\uFFFB':
		return true
	}

	return unicode.Is(unicode.Cf, r)
}
