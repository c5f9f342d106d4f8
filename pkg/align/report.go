package align

import "fmt"

// Status classifies an entry of a comparison report
type Status string

const (
	StatusIdentical Status = "identical"
	StatusMatched   Status = "matched"
	StatusDeleted   Status = "deleted" // unit of A with no counterpart
	StatusAdded     Status = "added"   // unit of B nothing matched
)

// Entry is one line of a report. A or B is -1 when the side is absent.
type Entry struct {
	Status Status  `json:"status"`
	A      int     `json:"a"`
	B      int     `json:"b"`
	Score  float64 `json:"score"`
}

// Stats counts report entries by status
type Stats struct {
	Identical int `json:"identical"`
	Matched   int `json:"matched"`
	Deleted   int `json:"deleted"`
	Added     int `json:"added"`

	UnitsA int `json:"units_a"`
	UnitsB int `json:"units_b"`

	// Percentages of max(UnitsA, UnitsB)
	SimilarityPercent float64 `json:"similarity_percent"`
	DifferencePercent float64 `json:"difference_percent"`
}

// Entries expands matches into report entries. Units of B that no match
// refers to are reported as added, placed before the first match that
// refers to a later unit of B.
func Entries(matches []Match, unitsB int) []Entry {
	used := make([]bool, unitsB)
	for _, m := range matches {
		if m.B >= 0 && m.B < unitsB {
			used[m.B] = true
		}
	}

	var out []Entry
	next := 0
	addUpTo := func(limit int) {
		for ; next < limit && next < unitsB; next++ {
			if !used[next] {
				out = append(out, Entry{Status: StatusAdded, A: -1, B: next})
			}
		}
	}

	for _, m := range matches {
		if !m.Matched() {
			out = append(out, Entry{Status: StatusDeleted, A: m.A, B: -1})
			continue
		}
		addUpTo(m.B)
		status := StatusMatched
		if m.Score == 1 {
			status = StatusIdentical
		}
		out = append(out, Entry{Status: status, A: m.A, B: m.B, Score: m.Score})
	}
	addUpTo(unitsB)
	return out
}

// Summarize counts entries. With no units on either side both documents
// are considered identical.
func Summarize(entries []Entry, unitsA, unitsB int) Stats {
	st := Stats{UnitsA: unitsA, UnitsB: unitsB}
	for _, e := range entries {
		switch e.Status {
		case StatusIdentical:
			st.Identical++
		case StatusMatched:
			st.Matched++
		case StatusDeleted:
			st.Deleted++
		case StatusAdded:
			st.Added++
		}
	}

	total := max(unitsA, unitsB)
	if total == 0 {
		st.SimilarityPercent = 100
		return st
	}
	st.SimilarityPercent = float64(st.Identical+st.Matched) / float64(total) * 100
	st.DifferencePercent = float64(st.Deleted+st.Added) / float64(total) * 100
	return st
}

// Summary grades the similarity in one line
func (s Stats) Summary() string {
	sim := s.SimilarityPercent
	switch {
	case s.UnitsA == 0 && s.UnitsB == 0:
		return "Nothing to compare: both documents are empty"
	case sim >= 100:
		return "Documents are identical"
	case sim >= 90:
		return fmt.Sprintf("Documents are very similar (%.1f%% similarity)", sim)
	case sim >= 70:
		return fmt.Sprintf("Documents are similar with some differences (%.1f%% similarity)", sim)
	case sim >= 50:
		return fmt.Sprintf("Documents differ significantly (%.1f%% similarity)", sim)
	}
	return fmt.Sprintf("Documents are very different (%.1f%% similarity)", sim)
}
