package segment

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// splitLong cuts text into chunks of at most size runes, breaking between
// sentences where possible and between words otherwise.
func splitLong(text string, size int) []string {
	var chunks []string
	var cur []string
	curLen := 0

	flush := func() {
		if len(cur) > 0 {
			chunks = append(chunks, strings.Join(cur, " "))
		}
		cur = nil
		curLen = 0
	}

	for _, sentence := range splitSentences(text) {
		for _, piece := range fitWords(sentence, size) {
			n := utf8.RuneCountInString(piece)
			if curLen > 0 && curLen+1+n > size {
				flush()
			}
			if curLen > 0 {
				curLen++
			}
			cur = append(cur, piece)
			curLen += n
		}
	}
	flush()
	return chunks
}

// splitSentences breaks text after each run of terminal punctuation that is
// followed by whitespace or the end of the text.
func splitSentences(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}
		for i+1 < len(runes) && isTerminal(runes[i+1]) {
			i++
		}
		if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
			if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

// fitWords splits a sentence longer than size at word boundaries. A single
// word longer than size is cut into size-rune pieces.
func fitWords(sentence string, size int) []string {
	if utf8.RuneCountInString(sentence) <= size {
		return []string{sentence}
	}

	var out []string
	var cur []string
	curLen := 0
	for _, w := range strings.Fields(sentence) {
		for _, piece := range hardSplit(w, size) {
			n := utf8.RuneCountInString(piece)
			if curLen > 0 && curLen+1+n > size {
				out = append(out, strings.Join(cur, " "))
				cur, curLen = nil, 0
			}
			if curLen > 0 {
				curLen++
			}
			cur = append(cur, piece)
			curLen += n
		}
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, " "))
	}
	return out
}

func hardSplit(word string, size int) []string {
	runes := []rune(word)
	if len(runes) <= size {
		return []string{word}
	}
	var out []string
	for len(runes) > size {
		out = append(out, string(runes[:size]))
		runes = runes[size:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
