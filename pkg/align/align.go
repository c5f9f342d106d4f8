// Package align computes an order preserving correspondence between the
// units of two documents.
//
// The default strategy is a greedy scan with a cursor into the second
// document: each unit of the first document takes the first candidate whose
// similarity exceeds the accept threshold. A global dynamic programming
// strategy that maximises the summed similarity is available as an option.
package align

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/gardar/ocrdiff/pkg/chardiff"
	"github.com/gardar/ocrdiff/pkg/segment"
	"github.com/gardar/ocrdiff/pkg/textnorm"
)

// Strategy selects the alignment algorithm
type Strategy string

const (
	StrategyGreedy Strategy = "greedy"
	StrategyGlobal Strategy = "global"
)

// ParseStrategy converts a configuration value. Empty selects greedy.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case "", StrategyGreedy:
		return StrategyGreedy, nil
	case StrategyGlobal:
		return st, nil
	}
	return "", fmt.Errorf("unknown alignment strategy %q (want greedy or global)", s)
}

// Options holds the alignment thresholds
type Options struct {
	// AcceptThreshold is the similarity a candidate must exceed to match
	AcceptThreshold float64 `yaml:"accept_threshold"`

	// HighConfidenceThreshold is the similarity above which the greedy
	// cursor moves past the matched unit
	HighConfidenceThreshold float64 `yaml:"high_confidence_threshold"`

	Strategy Strategy `yaml:"strategy"`
}

// DefaultOptions returns the thresholds 0.7 and 0.93 with the greedy strategy
func DefaultOptions() Options {
	return Options{
		AcceptThreshold:         0.7,
		HighConfidenceThreshold: 0.93,
		Strategy:                StrategyGreedy,
	}
}

// Validate checks the thresholds and the strategy name
func (o Options) Validate() error {
	if o.AcceptThreshold < 0 || o.AcceptThreshold > 1 {
		return fmt.Errorf("accept threshold %.2f outside [0,1]", o.AcceptThreshold)
	}
	if o.HighConfidenceThreshold < 0 || o.HighConfidenceThreshold > 1 {
		return fmt.Errorf("high confidence threshold %.2f outside [0,1]", o.HighConfidenceThreshold)
	}
	if o.HighConfidenceThreshold < o.AcceptThreshold {
		return fmt.Errorf("high confidence threshold %.2f below accept threshold %.2f",
			o.HighConfidenceThreshold, o.AcceptThreshold)
	}
	_, err := ParseStrategy(string(o.Strategy))
	return err
}

// Match pairs a unit of the first document with one of the second.
// B is -1 when no unit of the second document qualified.
type Match struct {
	A     int                 `json:"a"`
	B     int                 `json:"b"`
	Score float64             `json:"score"`
	Diffs []chardiff.CharDiff `json:"diffs,omitempty"`
}

// Matched reports whether the match has a counterpart
func (m Match) Matched() bool { return m.B >= 0 }

// Align returns one Match per unit of a, in order. Across the result both
// the A indexes and the B indexes of matched pairs are non-decreasing.
func Align(a, b []segment.Unit, opts Options) []Match {
	na, nb := normalized(a), normalized(b)
	if st, _ := ParseStrategy(string(opts.Strategy)); st == StrategyGlobal {
		return alignGlobal(na, nb, opts)
	}
	return alignGreedy(na, nb, opts)
}

func alignGreedy(a, b []string, opts Options) []Match {
	matches := make([]Match, 0, len(a))
	j0 := 0
	for i, text := range a {
		m := Match{A: i, B: -1}
		s := newScorer(text)
		for j := j0; j < len(b); j++ {
			score, ok := s.score(b[j], opts.AcceptThreshold)
			if !ok {
				continue
			}
			m.B, m.Score = j, score
			if score > opts.HighConfidenceThreshold {
				j0 = j + 1
			} else {
				// j stays available to the next unit, but the search must
				// not restart before it or matches could cross
				j0 = j
			}
			break
		}
		matches = append(matches, m)
	}
	return matches
}

// alignGlobal maximises the summed similarity of accepted pairs over all
// order preserving one to one pairings.
func alignGlobal(a, b []string, opts Options) []Match {
	n, m := len(a), len(b)
	sim := make([][]float64, n)
	for i := range sim {
		sim[i] = make([]float64, m)
		s := newScorer(a[i])
		for j := range m {
			if score, ok := s.score(b[j], opts.AcceptThreshold); ok {
				sim[i][j] = score
			}
		}
	}

	best := make([][]float64, n+1)
	for i := range best {
		best[i] = make([]float64, m+1)
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			v := max(best[i-1][j], best[i][j-1])
			if s := sim[i-1][j-1]; s > 0 && best[i-1][j-1]+s > v {
				v = best[i-1][j-1] + s
			}
			best[i][j] = v
		}
	}

	matches := make([]Match, n)
	for i := range matches {
		matches[i] = Match{A: i, B: -1}
	}
	for i, j := n, m; i > 0 && j > 0; {
		s := sim[i-1][j-1]
		switch {
		case s > 0 && best[i][j] == best[i-1][j-1]+s:
			matches[i-1].B = j - 1
			matches[i-1].Score = s
			i--
			j--
		case best[i][j] == best[i-1][j]:
			i--
		default:
			j--
		}
	}
	return matches
}

// Similarity returns the longest matching blocks ratio of two normalized
// texts. It is 0 when either text is empty.
func Similarity(a, b string) float64 {
	score, _ := newScorer(a).score(b, -1)
	return score
}

// scorer holds a matcher with one side fixed so the second side's index
// is built once per unit.
type scorer struct {
	m     *difflib.SequenceMatcher
	empty bool
}

func newScorer(text string) *scorer {
	return &scorer{
		m:     difflib.NewMatcherWithJunk(nil, runeStrings(text), false, nil),
		empty: text == "",
	}
}

// score reports the ratio against other and whether it exceeds threshold.
// Candidates whose upper bounds cannot exceed threshold are not scored.
func (s *scorer) score(other string, threshold float64) (float64, bool) {
	if s.empty || other == "" {
		return 0, false
	}
	s.m.SetSeq1(runeStrings(other))
	if s.m.RealQuickRatio() <= threshold || s.m.QuickRatio() <= threshold {
		return 0, false
	}
	r := s.m.Ratio()
	return r, r > threshold
}

func normalized(units []segment.Unit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.Normalized
		if out[i] == "" && strings.TrimSpace(u.Text) != "" {
			out[i] = textnorm.Normalize(u.Text)
		}
	}
	return out
}

func runeStrings(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
