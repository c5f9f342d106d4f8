// Package compare runs the full comparison pipeline over two documents.
//
// The pipeline extracts positioned text, rebuilds lines, strips footnotes,
// segments the lines into paragraphs or verses, aligns the two unit
// sequences and diffs every matched pair.
//
// Main Functions:
//
// - Compare: runs every stage on two files and returns a Result
// - ExtractLines, StripFootnotes, Segment, Align, Diff: the single stages
// - MapNormalizedIndexToOriginal: maps a diff offset back for display
package compare

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gardar/ocrdiff/pkg/align"
	"github.com/gardar/ocrdiff/pkg/chardiff"
	"github.com/gardar/ocrdiff/pkg/footnote"
	"github.com/gardar/ocrdiff/pkg/layout"
	"github.com/gardar/ocrdiff/pkg/segment"
	"github.com/gardar/ocrdiff/pkg/source"
	"github.com/gardar/ocrdiff/pkg/textnorm"
)

// ExtractLines opens a document and rebuilds the text lines of every page.
// A page that cannot be read is logged and skipped; only a document that
// cannot be opened is an error.
func ExtractLines(ctx context.Context, path string, cfg Config) ([]layout.Line, error) {
	log := cfg.logger().WithField("path", path)

	doc, err := source.Open(ctx, path, source.Options{Kind: cfg.Source, DocAI: cfg.DocAI})
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	var lines []layout.Line
	for i := 0; i < doc.PageCount(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		spans, err := doc.Spans(i)
		if err != nil {
			var pe *source.PageExtractionError
			if !errors.As(err, &pe) {
				return nil, fmt.Errorf("failed to extract page %d of %s: %w", i+1, path, err)
			}
			log.WithError(err).WithField("page", pe.Page).Warn("Skipping unreadable page")
			continue
		}
		page := layout.ReconstructPage(spans, cfg.Lines)
		log.WithFields(logrus.Fields{
			"page":  i + 1,
			"spans": len(spans),
			"lines": len(page),
		}).Debug("Reconstructed page")
		lines = append(lines, page...)
	}

	log.WithFields(logrus.Fields{
		"pages": doc.PageCount(),
		"lines": len(lines),
	}).Debug("Extracted lines")
	return lines, nil
}

// StripFootnotes removes the note block of each page, then applies the
// optional pattern and line number filters. Invalid patterns are logged
// and ignored; Config.Validate reports them up front.
func StripFootnotes(lines []layout.Line, cfg Config) []layout.Line {
	fc := cfg.Footnotes
	if !fc.Enabled {
		return lines
	}
	out := footnote.Strip(lines, fc.Config)

	if len(fc.Patterns) > 0 {
		patterns, err := footnote.CompilePatterns(fc.Patterns)
		if err != nil {
			cfg.logger().WithError(err).Warn("Ignoring note patterns")
		} else {
			out = footnote.StripPatterns(out, patterns)
		}
	}
	if fc.DropLineNumbers {
		out = footnote.DropLineNumbers(out)
	}

	cfg.logger().WithFields(logrus.Fields{
		"lines":   len(lines),
		"removed": len(lines) - len(out),
	}).Debug("Stripped footnotes")
	return out
}

// Segment groups lines into units, classifying them first for GenreAuto
func Segment(lines []layout.Line, genre segment.Genre) []segment.Unit {
	return segment.Segment(lines, genre)
}

// Align pairs the units of two documents. See align.DefaultOptions for
// the default thresholds.
func Align(unitsA, unitsB []segment.Unit, opts align.Options) []align.Match {
	return align.Align(unitsA, unitsB, opts)
}

// Diff returns the changes that turn textA into textB, expanded to whole
// words. Offsets are runes into the given texts.
func Diff(textA, textB string) []chardiff.CharDiff {
	return chardiff.Diff(textA, textB)
}

// MapNormalizedIndexToOriginal maps a rune offset in the normalized form of
// original back to a rune offset in original
func MapNormalizedIndexToOriginal(original, normalized string, index int) int {
	return textnorm.MapIndex(original, normalized, index)
}

// Units runs extraction, footnote removal and segmentation on one document
func Units(ctx context.Context, path string, cfg Config) ([]segment.Unit, error) {
	lines, err := ExtractLines(ctx, path, cfg)
	if err != nil {
		return nil, err
	}
	lines = StripFootnotes(lines, cfg)

	genre := cfg.Genre
	if genre == "" || genre == segment.GenreAuto {
		genre = segment.Classify(lines)
	}
	units := Segment(lines, genre)

	cfg.logger().WithFields(logrus.Fields{
		"path":  path,
		"genre": genre,
		"units": len(units),
	}).Debug("Segmented document")
	return units, nil
}

// Compare runs the whole pipeline on two documents. The context is checked
// between stages and passed to network backends.
func Compare(ctx context.Context, pathA, pathB string, cfg Config) (*Result, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}

	unitsA, err := Units(ctx, pathA, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to process first document: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unitsB, err := Units(ctx, pathB, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to process second document: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := CompareUnits(unitsA, unitsB, cfg)
	res.PathA, res.PathB = pathA, pathB
	return res, nil
}

// CompareUnits aligns two unit lists that are already segmented and diffs
// every matched pair that is not identical
func CompareUnits(unitsA, unitsB []segment.Unit, cfg Config) *Result {
	matches := Align(unitsA, unitsB, cfg.Align)
	for i, m := range matches {
		if !m.Matched() || m.Score >= 1 {
			continue
		}
		matches[i].Diffs = chardiff.DiffWith(normalizedText(unitsA[m.A]), normalizedText(unitsB[m.B]), cfg.Diff)
	}

	res := newResult(unitsA, unitsB, matches)
	cfg.logger().WithFields(logrus.Fields{
		"id":         res.ID,
		"units_a":    len(unitsA),
		"units_b":    len(unitsB),
		"similarity": fmt.Sprintf("%.1f", res.Stats.SimilarityPercent),
	}).Debug("Aligned documents")
	return res
}

func normalizedText(u segment.Unit) string {
	if u.Normalized != "" {
		return u.Normalized
	}
	return textnorm.Normalize(u.Text)
}
