// Package strcase holds small string-casing helpers.
package strcase

import (
	"strings"
	"unicode"
)

// ToLowerSnake converts a string to snake_case, keeping initialisms intact
// (userID -> user_id, HTTPServer -> http_server).
func ToLowerSnake(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s) + 4)

	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]

			var next rune
			if i+1 < len(runes) {
				next = runes[i+1]
			}

			// Break on lower/digit->upper and on the boundary between an
			// acronym and the following word.
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				b.WriteRune('_')
			} else if unicode.IsUpper(prev) && next != 0 && unicode.IsLower(next) {
				b.WriteRune('_')
			}
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}
