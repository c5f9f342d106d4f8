package compare

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/gardar/ocrdiff/pkg/align"
	"github.com/gardar/ocrdiff/pkg/chardiff"
	"github.com/gardar/ocrdiff/pkg/segment"
)

// Result is the outcome of one comparison run
type Result struct {
	ID      uuid.UUID      `json:"id"`
	PathA   string         `json:"path_a,omitempty"`
	PathB   string         `json:"path_b,omitempty"`
	UnitsA  []segment.Unit `json:"units_a"`
	UnitsB  []segment.Unit `json:"units_b"`
	Matches []align.Match  `json:"matches"` // One per unit of A, diffs in normalized offsets
	Entries []align.Entry  `json:"entries"`
	Stats   align.Stats    `json:"stats"`
	Summary string         `json:"summary"`
}

func newResult(unitsA, unitsB []segment.Unit, matches []align.Match) *Result {
	entries := align.Entries(matches, len(unitsB))
	stats := align.Summarize(entries, len(unitsA), len(unitsB))

	res := &Result{
		ID:      uuid.New(),
		UnitsA:  unitsA,
		UnitsB:  unitsB,
		Matches: matches,
		Entries: entries,
		Stats:   stats,
		Summary: stats.Summary(),
	}
	switch {
	case len(unitsA) == 0 && len(unitsB) == 0:
	case len(unitsA) == 0:
		res.Summary = "Nothing to compare: the first document has no text"
	case len(unitsB) == 0:
		res.Summary = "Nothing to compare: the second document has no text"
	}
	return res
}

// Empty reports whether either document produced no units
func (r *Result) Empty() bool {
	return len(r.UnitsA) == 0 || len(r.UnitsB) == 0
}

// DisplayDiffs returns the diffs of the match for unit a of the first
// document with their ranges moved onto the unit texts
func (r *Result) DisplayDiffs(a int) ([]chardiff.CharDiff, error) {
	if a < 0 || a >= len(r.Matches) {
		return nil, fmt.Errorf("no match for unit %d", a)
	}
	m := r.Matches[a]
	if !m.Matched() {
		return nil, nil
	}
	ua, ub := r.UnitsA[m.A], r.UnitsB[m.B]
	out := make([]chardiff.CharDiff, len(m.Diffs))
	for i, d := range m.Diffs {
		out[i] = chardiff.Remap(d, ua.Text, normalizedText(ua), ub.Text, normalizedText(ub))
	}
	return out, nil
}

// Changed returns the indexes of the units of each document that are not
// identical to a counterpart
func (r *Result) Changed() (a, b []int) {
	for _, e := range r.Entries {
		switch e.Status {
		case align.StatusMatched:
			a = append(a, e.A)
			b = append(b, e.B)
		case align.StatusDeleted:
			a = append(a, e.A)
		case align.StatusAdded:
			b = append(b, e.B)
		}
	}
	return a, b
}
