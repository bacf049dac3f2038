// Package strcase converts Go identifiers to the casing used in API payloads.
package strcase

import (
	"strings"
	"unicode"
)

// ToLowerSnake converts a Go identifier to snake_case.
//
// Initialisms stay together: "UserID" becomes "user_id" and "HTTPServer"
// becomes "http_server". Spaces and dashes are treated as separators.
func ToLowerSnake(s string) string {
	if s == "" {
		return ""
	}

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, r := range runes {
		if r == ' ' || r == '-' || r == '_' {
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
			continue
		}

		if i > 0 && unicode.IsUpper(r) && wordStart(runes, i) && !strings.HasSuffix(b.String(), "_") {
			b.WriteByte('_')
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return strings.TrimSuffix(b.String(), "_")
}

func wordStart(runes []rune, i int) bool {
	prev := runes[i-1]
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}

	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
