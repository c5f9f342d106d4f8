package segment

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gardar/ocrdiff/pkg/layout"
)

const rhymeSampleLines = 20

// Scores holds the evidence Classify weighed
type Scores struct {
	Verse int
	Prose int
}

// Genre resolves the scores; ties go to prose
func (s Scores) Genre() Genre {
	if s.Verse > s.Prose {
		return GenreVerse
	}
	return GenreProse
}

// Classify decides whether a batch of lines reads as prose or verse.
// Empty input is prose.
func Classify(lines []layout.Line) Genre {
	return Score(lines).Genre()
}

// Score computes the prose and verse scores for a batch of lines.
// Lengths are counted in runes on trimmed text; blank lines are ignored.
func Score(lines []layout.Line) Scores {
	var texts []string
	for _, l := range lines {
		if t := strings.TrimSpace(l.Text); t != "" {
			texts = append(texts, t)
		}
	}

	var s Scores
	if len(texts) == 0 {
		return s
	}

	total, short, long, open := 0, 0, 0, 0
	for _, t := range texts {
		n := utf8.RuneCountInString(t)
		total += n
		if n < 50 {
			short++
		}
		if n > 80 {
			long++
		}
		if !strings.ContainsAny(lastRune(t), ".!?;,") {
			open++
		}
	}

	mean := float64(total) / float64(len(texts))
	switch {
	case mean < 60:
		s.Verse += 2
	case mean > 90:
		s.Prose += 2
	}

	switch {
	case float64(short) > float64(long)*1.5:
		s.Verse += 2
	case long > short:
		s.Prose++
	}

	if float64(open) > float64(len(texts))*0.3 {
		s.Verse++
	}

	if repeatedEndings(texts) {
		s.Verse++
	}
	return s
}

// repeatedEndings is a weak rhyme test over the last two letters of the
// final word of the first lines.
func repeatedEndings(texts []string) bool {
	if len(texts) > rhymeSampleLines {
		texts = texts[:rhymeSampleLines]
	}

	counts := make(map[string]int)
	for _, t := range texts {
		words := strings.Fields(t)
		if len(words) == 0 {
			continue
		}
		var word []rune
		for _, r := range words[len(words)-1] {
			if r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) {
				word = append(word, unicode.ToLower(r))
			}
		}
		if len(word) >= 3 {
			counts[string(word[len(word)-2:])]++
		}
	}
	if len(counts) == 0 {
		return false
	}

	repeated := 0
	for _, n := range counts {
		if n > 1 {
			repeated++
		}
	}
	return float64(repeated) > float64(len(counts))*0.3
}

func lastRune(s string) string {
	r, _ := utf8.DecodeLastRuneInString(s)
	if r == utf8.RuneError {
		return ""
	}
	return string(r)
}
