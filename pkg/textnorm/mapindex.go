package textnorm

import "unicode"

// MapIndex returns the rune offset in original of the rune at index k of
// normalized, where normalized is Normalize(original).
//
// The walk advances a cursor through original until the lower-cased rune
// matches the next normalized rune; any whitespace matches a space and
// stripped runes are skipped. An index past the end of normalized, or one
// that cannot be matched, maps to the rune length of original.
func MapIndex(original, normalized string, k int) int {
	orig := []rune(original)
	norm := []rune(normalized)
	if k < 0 {
		return 0
	}
	if k >= len(norm) {
		return len(orig)
	}

	j := 0
	for i := 0; i <= k; i++ {
		for j < len(orig) && !runeMatches(orig[j], norm[i]) {
			j++
		}
		if j >= len(orig) {
			return len(orig)
		}
		if i == k {
			return j
		}
		j++
	}
	return len(orig)
}

// MapRange maps the half-open normalized range [start, end) to a half-open
// range in original. The end maps to one past the last mapped rune, so any
// punctuation trailing the range stays outside it.
func MapRange(original, normalized string, start, end int) (int, int) {
	from := MapIndex(original, normalized, start)
	if end <= start {
		return from, from
	}
	n := len([]rune(normalized))
	if end > n {
		return from, len([]rune(original))
	}
	to := MapIndex(original, normalized, end-1) + 1
	if to > len([]rune(original)) {
		to = len([]rune(original))
	}
	return from, to
}

func runeMatches(orig, norm rune) bool {
	if norm == ' ' {
		return unicode.IsSpace(orig)
	}
	return unicode.ToLower(orig) == norm
}
