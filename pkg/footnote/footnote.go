// Package footnote removes note and apparatus regions from reconstructed
// page lines.
//
// The main heuristic, Strip, looks at the vertical pitch between
// consecutive lines of a page. Body text keeps a steady pitch once past the
// page header; the first gap that is clearly wider than that pitch is taken
// as the start of the note block, which then runs to the end of the page.
//
// StripPatterns and DropLineNumbers are opt-in text filters for critical
// editions where notes are interleaved or numbered margins leak into lines.
package footnote

import (
	"sort"

	"github.com/gardar/ocrdiff/pkg/layout"
)

// Config holds the footnote detection thresholds
type Config struct {
	HeaderLines         int     `yaml:"header_lines"`         // Lines skipped at the top of each page
	MinTextLines        int     `yaml:"min_text_lines"`       // Lines used to estimate the body pitch
	ThresholdMultiplier float64 `yaml:"threshold_multiplier"` // Gap over pitch*multiplier starts the notes
}

// DefaultConfig returns the detection defaults
func DefaultConfig() Config {
	return Config{
		HeaderLines:         5,
		MinTextLines:        5,
		ThresholdMultiplier: 1.2,
	}
}

// Strip removes the trailing note block of every page.
// Lines must be in reading order; consecutive lines with the same page
// number form a page. Pages too short to estimate a pitch are kept whole.
// The input slice is not modified.
func Strip(lines []layout.Line, cfg Config) []layout.Line {
	out := make([]layout.Line, 0, len(lines))
	for start := 0; start < len(lines); {
		end := start + 1
		for end < len(lines) && lines[end].Page == lines[start].Page {
			end++
		}
		page := lines[start:end]
		out = append(out, page[:NoteStart(page, cfg)]...)
		start = end
	}
	return out
}

// NoteStart returns the index of the first note line on a single page, or
// len(page) when no note block is detected.
func NoteStart(page []layout.Line, cfg Config) int {
	h, m := cfg.HeaderLines, cfg.MinTextLines
	if h < 0 || m <= 0 || len(page) < h+m {
		return len(page)
	}

	deltas := make([]float64, len(page))
	for i := 1; i < len(page); i++ {
		deltas[i] = page[i].BBox.Y0 - page[i-1].BBox.Y0
	}

	pitch := median(deltas[h : h+m])
	if pitch <= 0 {
		return len(page)
	}

	limit := pitch * cfg.ThresholdMultiplier
	for k := h + 1; k < len(page); k++ {
		if deltas[k] > limit {
			return k
		}
	}
	return len(page)
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	s := make([]float64, len(values))
	copy(s, values)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}
