package triggers

import (
	"strings"
)

// Normalize lowercases text and keeps only Latin and Cyrillic letters and digits.
// Whitespace, punctuation and every other script are dropped, so "М н е  г-р" and
// "мнегр" compare equal. Normalize is idempotent.
func Normalize(text string) string {
	lowered := strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if isAllowed(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isAllowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'а' && r <= 'я':
		return true
	case r == 'ё':
		return true
	case r >= '0' && r <= '9':
		return true
	}
	return false
}
