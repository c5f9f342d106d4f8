// Package chardiff computes the edit script between the texts of two
// matched units.
//
// Ranges are rune offsets. Scripts computed over normalized text can be
// moved back onto the original text with Remap.
package chardiff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/gardar/ocrdiff/pkg/textnorm"
)

// Op is an edit operation
type Op string

const (
	OpEqual   Op = "equal"
	OpReplace Op = "replace"
	OpInsert  Op = "insert"
	OpDelete  Op = "delete"
)

// Granularity controls how far changes are widened
type Granularity string

const (
	GranularityRune Granularity = "rune"
	GranularityWord Granularity = "word"
)

// ParseGranularity converts a configuration value. Empty selects words.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(strings.ToLower(strings.TrimSpace(s))) {
	case "", GranularityWord:
		return GranularityWord, nil
	case GranularityRune, "char":
		return GranularityRune, nil
	}
	return "", fmt.Errorf("unknown diff granularity %q (want word or rune)", s)
}

// Options configures Script
type Options struct {
	Granularity Granularity `yaml:"granularity"`
}

// DefaultOptions returns word granularity
func DefaultOptions() Options {
	return Options{Granularity: GranularityWord}
}

// Range is a half-open rune range
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of runes covered
func (r Range) Len() int { return r.End - r.Start }

// CharDiff is one entry of an edit script
type CharDiff struct {
	Op     Op     `json:"op"`
	TextA  string `json:"text_a"`
	TextB  string `json:"text_b"`
	RangeA Range  `json:"range_a"`
	RangeB Range  `json:"range_b"`
}

// Diff returns the changes between a and b at word granularity. Equal
// stretches are left out.
func Diff(a, b string) []CharDiff {
	return DiffWith(a, b, DefaultOptions())
}

// DiffWith is Diff with explicit options
func DiffWith(a, b string, opts Options) []CharDiff {
	var out []CharDiff
	for _, d := range Script(a, b, opts) {
		if d.Op != OpEqual {
			out = append(out, d)
		}
	}
	return out
}

// Script returns the full edit script turning a into b, equal stretches
// included. Matching uses the longest matching blocks over runes with no
// junk heuristic.
func Script(a, b string, opts Options) []CharDiff {
	ra, rb := []rune(a), []rune(b)
	m := difflib.NewMatcherWithJunk(runeStrings(ra), runeStrings(rb), false, nil)

	var spans []span
	for _, oc := range m.GetOpCodes() {
		spans = append(spans, span{tag: oc.Tag, i1: oc.I1, i2: oc.I2, j1: oc.J1, j2: oc.J2})
	}
	if g, _ := ParseGranularity(string(opts.Granularity)); g != GranularityRune {
		spans = widen(spans, ra, rb)
	}

	out := make([]CharDiff, 0, len(spans))
	for _, s := range spans {
		out = append(out, CharDiff{
			Op:     s.op(),
			TextA:  string(ra[s.i1:s.i2]),
			TextB:  string(rb[s.j1:s.j2]),
			RangeA: Range{s.i1, s.i2},
			RangeB: Range{s.j1, s.j2},
		})
	}
	return out
}

// Apply rebuilds the second text from a and an edit script. The script may
// be complete or hold only the changes, in which case the gaps between them
// are copied from a.
func Apply(a string, ops []CharDiff) (string, error) {
	ra := []rune(a)
	var sb strings.Builder
	cur := 0
	for i, d := range ops {
		if d.RangeA.Start < cur || d.RangeA.End < d.RangeA.Start || d.RangeA.End > len(ra) {
			return "", fmt.Errorf("op %d: range [%d,%d) out of order or out of bounds", i, d.RangeA.Start, d.RangeA.End)
		}
		sb.WriteString(string(ra[cur:d.RangeA.Start]))
		if d.Op == OpEqual {
			sb.WriteString(string(ra[d.RangeA.Start:d.RangeA.End]))
		} else {
			sb.WriteString(d.TextB)
		}
		cur = d.RangeA.End
	}
	sb.WriteString(string(ra[cur:]))
	return sb.String(), nil
}

// Remap moves a diff computed over normalized text onto the original
// texts it was normalized from. Texts are replaced by the original slices.
func Remap(d CharDiff, origA, normA, origB, normB string) CharDiff {
	sa, ea := textnorm.MapRange(origA, normA, d.RangeA.Start, d.RangeA.End)
	sb, eb := textnorm.MapRange(origB, normB, d.RangeB.Start, d.RangeB.End)
	ra, rb := []rune(origA), []rune(origB)
	d.RangeA = Range{sa, ea}
	d.RangeB = Range{sb, eb}
	d.TextA = string(ra[sa:ea])
	d.TextB = string(rb[sb:eb])
	return d
}

type span struct {
	tag            byte
	i1, i2, j1, j2 int
}

func (s span) op() Op {
	switch {
	case s.tag == 'e':
		return OpEqual
	case s.i1 == s.i2:
		return OpInsert
	case s.j1 == s.j2:
		return OpDelete
	}
	return OpReplace
}

// widen grows every change over the equal text around it until it covers
// whole words, then merges changes that touch.
func widen(spans []span, ra, rb []rune) []span {
	var changes []span
	for k, s := range spans {
		if s.tag == 'e' {
			continue
		}
		c := span{tag: 'r', i1: s.i1, i2: s.i2, j1: s.j1, j2: s.j2}

		if k > 0 && spans[k-1].tag == 'e' && startsInWord(c, ra, rb) {
			t := 0
			for c.i1-t > spans[k-1].i1 && textnorm.IsWordRune(ra[c.i1-t-1]) {
				t++
			}
			c.i1 -= t
			c.j1 -= t
		}
		if k+1 < len(spans) && spans[k+1].tag == 'e' && endsInWord(c, ra, rb) {
			t := 0
			for c.i2+t < spans[k+1].i2 && textnorm.IsWordRune(ra[c.i2+t]) {
				t++
			}
			c.i2 += t
			c.j2 += t
		}

		if n := len(changes); n > 0 && c.i1 <= changes[n-1].i2 {
			changes[n-1].i2 = max(changes[n-1].i2, c.i2)
			changes[n-1].j2 = max(changes[n-1].j2, c.j2)
			continue
		}
		changes = append(changes, c)
	}

	var out []span
	i, j := 0, 0
	for _, c := range changes {
		if c.i1 > i {
			out = append(out, span{tag: 'e', i1: i, i2: c.i1, j1: j, j2: c.j1})
		}
		out = append(out, c)
		i, j = c.i2, c.j2
	}
	if i < len(ra) {
		out = append(out, span{tag: 'e', i1: i, i2: len(ra), j1: j, j2: len(rb)})
	}
	return out
}

// startsInWord reports whether the change begins with a word rune on
// either side, so that equal word runes before it belong to the same word.
func startsInWord(c span, ra, rb []rune) bool {
	return (c.i2 > c.i1 && textnorm.IsWordRune(ra[c.i1])) ||
		(c.j2 > c.j1 && textnorm.IsWordRune(rb[c.j1]))
}

func endsInWord(c span, ra, rb []rune) bool {
	return (c.i2 > c.i1 && textnorm.IsWordRune(ra[c.i2-1])) ||
		(c.j2 > c.j1 && textnorm.IsWordRune(rb[c.j2-1]))
}

func runeStrings(rs []rune) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}
