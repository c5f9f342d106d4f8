package layout

import (
	"math"
	"sort"
)

// FontBucket is one entry of a font size histogram
type FontBucket struct {
	Size  float64 // Font size rounded to 0.1pt
	Count int     // Number of spans with that size
}

// FontHistogram counts spans per font size, most frequent first.
// Sizes are rounded to a tenth of a point.
func FontHistogram(spans []Span) []FontBucket {
	counts := make(map[float64]int)
	for _, s := range spans {
		counts[roundSize(s.FontSize)]++
	}

	buckets := make([]FontBucket, 0, len(counts))
	for size, n := range counts {
		buckets = append(buckets, FontBucket{Size: size, Count: n})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Size < buckets[j].Size
	})
	return buckets
}

// BodyFontSize returns the most common font size, or 0 without spans
func BodyFontSize(spans []Span) float64 {
	h := FontHistogram(spans)
	if len(h) == 0 {
		return 0
	}
	return h[0].Size
}

// FilterSmallFonts drops spans whose font size is below minSize.
// Spans with an unknown (zero) size are kept.
func FilterSmallFonts(spans []Span, minSize float64) []Span {
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.FontSize > 0 && s.FontSize < minSize {
			continue
		}
		out = append(out, s)
	}
	return out
}

func roundSize(size float64) float64 {
	return math.Round(size*10) / 10
}
