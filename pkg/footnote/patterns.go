package footnote

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gardar/ocrdiff/pkg/layout"
)

// DefaultPatterns match lines that look like apparatus or note text
var DefaultPatterns = []string{
	`^\s*\d{1,2}\s+\p{Ll}`, // note number followed by a lowercase word
	`^\s*\|\|`,             // apparatus separator
	`^\s*\d+\s*$`,          // bare numbers
	`cf\.\s+`,
	`exscr\.`,
	`vulgo:`,
}

// CompilePatterns compiles note patterns, reporting the first invalid one
func CompilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid note pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// StripPatterns drops every line whose text matches one of the patterns
func StripPatterns(lines []layout.Line, patterns []*regexp.Regexp) []layout.Line {
	if len(patterns) == 0 {
		return lines
	}
	out := make([]layout.Line, 0, len(lines))
	for _, l := range lines {
		if matchesAny(l.Text, patterns) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func matchesAny(s string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

var (
	bareNumberRe  = regexp.MustCompile(`^\s*\d+\s*$`)
	leadingNumRe  = regexp.MustCompile(`^\s*\d{1,3}\s+(\p{Lu})`)
	punctuationRe = regexp.MustCompile(`^[^\p{L}\p{N}_\s]*$`)
)

// DropLineNumbers removes marginal line numbers that critical editions
// print beside the text. Bare number lines and punctuation-only lines are
// dropped; a 1-3 digit number before a capitalized word is cut from the
// line. Line boxes are left as extracted.
func DropLineNumbers(lines []layout.Line) []layout.Line {
	out := make([]layout.Line, 0, len(lines))
	for _, l := range lines {
		text := l.Text
		if bareNumberRe.MatchString(text) {
			continue
		}
		text = strings.TrimSpace(leadingNumRe.ReplaceAllString(text, "$1"))
		if text == "" || punctuationRe.MatchString(text) {
			continue
		}
		l.Text = text
		out = append(out, l)
	}
	return out
}
