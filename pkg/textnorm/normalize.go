// Package textnorm normalizes unit text for matching and maps offsets in the
// normalized form back to the text it came from.
//
// All offsets are rune offsets. Normalization keeps one rune for every rune
// it does not strip, which is what lets MapIndex walk both strings in step.
package textnorm

import (
	"strings"
	"unicode"
)

// Normalize strips punctuation and symbols, collapses whitespace runs to a
// single space, trims, and lower-cases rune by rune. Letters, numbers and
// underscores are kept.
func Normalize(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))

	pendingSpace := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = sb.Len() > 0
		case IsWordRune(r):
			if pendingSpace {
				sb.WriteByte(' ')
				pendingSpace = false
			}
			sb.WriteRune(unicode.ToLower(r))
		}
	}
	return sb.String()
}

// IsWordRune reports whether normalization keeps r
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
