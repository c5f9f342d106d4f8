package layout

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Config holds the geometry thresholds used when grouping spans into lines
type Config struct {
	OverlapThreshold float64 `yaml:"overlap_threshold"` // Minimum vertical overlap ratio for the same line
	CenterTolerance  float64 `yaml:"center_tolerance"`  // Maximum vertical center distance (pt) for the same line
	SpaceGap         float64 `yaml:"space_gap"`         // Horizontal gap (pt) above which a space is inserted
	MinFontSize      float64 `yaml:"min_font_size"`     // Spans below this size are dropped, 0 disables
}

// DefaultConfig returns the line grouping defaults
func DefaultConfig() Config {
	return Config{
		OverlapThreshold: 0.5,
		CenterTolerance:  2.0,
		SpaceGap:         5.0,
		MinFontSize:      0,
	}
}

// Reconstruct groups the spans of any number of pages into lines.
// The result is ordered by page, then top-to-bottom, then left-to-right.
func Reconstruct(spans []Span, cfg Config) []Line {
	if cfg.MinFontSize > 0 {
		spans = FilterSmallFonts(spans, cfg.MinFontSize)
	}

	byPage := make(map[int][]Span)
	var pages []int
	for _, s := range spans {
		if _, ok := byPage[s.Page]; !ok {
			pages = append(pages, s.Page)
		}
		byPage[s.Page] = append(byPage[s.Page], s)
	}
	sort.Ints(pages)

	var lines []Line
	for _, p := range pages {
		lines = append(lines, groupLines(byPage[p], cfg)...)
	}
	return lines
}

// ReconstructPage groups the spans of a single page into lines
func ReconstructPage(spans []Span, cfg Config) []Line {
	if cfg.MinFontSize > 0 {
		spans = FilterSmallFonts(spans, cfg.MinFontSize)
	}
	return groupLines(spans, cfg)
}

// lineBuilder accumulates the spans of one open line
type lineBuilder struct {
	bbox  BBox
	spans []Span
}

func groupLines(spans []Span, cfg Config) []Line {
	if len(spans) == 0 {
		return nil
	}

	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BBox.Y0 != sorted[j].BBox.Y0 {
			return sorted[i].BBox.Y0 < sorted[j].BBox.Y0
		}
		return sorted[i].BBox.X0 < sorted[j].BBox.X0
	})

	var open []*lineBuilder
	for _, s := range sorted {
		var target *lineBuilder
		// The most recently opened lines are the likeliest to match
		for i := len(open) - 1; i >= 0; i-- {
			if sameLine(open[i].bbox, s.BBox, cfg) {
				target = open[i]
				break
			}
		}
		if target == nil {
			target = &lineBuilder{}
			open = append(open, target)
		}
		target.spans = append(target.spans, s)
		target.bbox = target.bbox.Union(s.BBox)
	}

	lines := make([]Line, 0, len(open))
	for _, lb := range open {
		if line, ok := lb.build(cfg); ok {
			lines = append(lines, line)
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].BBox.Y0 != lines[j].BBox.Y0 {
			return lines[i].BBox.Y0 < lines[j].BBox.Y0
		}
		return lines[i].BBox.X0 < lines[j].BBox.X0
	})
	return lines
}

// sameLine tests whether a span box belongs on the line with box lb
func sameLine(lb, sb BBox, cfg Config) bool {
	overlap := math.Min(lb.Y1, sb.Y1) - math.Max(lb.Y0, sb.Y0)
	smaller := math.Min(lb.Height(), sb.Height())
	if smaller > 0 && overlap/smaller > cfg.OverlapThreshold {
		return true
	}
	return math.Abs(lb.CenterY()-sb.CenterY()) <= cfg.CenterTolerance
}

// build joins the spans left-to-right into a Line.
// It reports false when the line carries no visible text.
func (lb *lineBuilder) build(cfg Config) (Line, bool) {
	sort.SliceStable(lb.spans, func(i, j int) bool {
		return lb.spans[i].BBox.X0 < lb.spans[j].BBox.X0
	})

	var sb strings.Builder
	var right, fontSize float64
	for i, s := range lb.spans {
		text := norm.NFC.String(s.Text)
		if i > 0 && s.BBox.X0-right > cfg.SpaceGap {
			cur := sb.String()
			if !strings.HasSuffix(cur, " ") && !strings.HasPrefix(text, " ") {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(text)
		if i == 0 || s.BBox.X1 > right {
			right = s.BBox.X1
		}
		fontSize = math.Max(fontSize, s.FontSize)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return Line{}, false
	}
	return Line{
		Text:     text,
		BBox:     lb.bbox,
		Page:     lb.spans[0].Page,
		FontSize: fontSize,
	}, true
}
