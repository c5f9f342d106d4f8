// Package layout rebuilds reading-order text lines from the glyph runs a
// document backend extracts from a page.
//
// Coordinates use a top-left origin measured in PDF points, the same
// orientation hOCR bounding boxes use, so y grows downwards the page.
//
// Key Types:
//
// - Span: a contiguous glyph run with its bounding box and font
// - Line: one visual line assembled from spans
// - BBox: a rectangle with JSON form [x0, y0, x1, y1]
//
// Main Functions:
//
// - Reconstruct: groups spans of any number of pages into ordered lines
// - ReconstructPage: the same for the spans of a single page
// - FontHistogram / FilterSmallFonts: font size analysis before grouping
package layout

import (
	"encoding/json"
	"fmt"
)

// BBox represents a rectangle on a page
type BBox struct {
	X0 float64 // Left coordinate
	Y0 float64 // Top coordinate
	X1 float64 // Right coordinate
	Y1 float64 // Bottom coordinate
}

// NewBBox creates a bounding box from its corner coordinates
func NewBBox(x0, y0, x1, y1 float64) BBox {
	return BBox{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// Width of the box
func (b BBox) Width() float64 { return b.X1 - b.X0 }

// Height of the box
func (b BBox) Height() float64 { return b.Y1 - b.Y0 }

// CenterY returns the vertical center of the box
func (b BBox) CenterY() float64 { return (b.Y0 + b.Y1) / 2 }

// IsZero reports whether all coordinates are zero
func (b BBox) IsZero() bool { return b == BBox{} }

// Union returns the smallest box containing both b and o.
// A zero box is treated as empty.
func (b BBox) Union(o BBox) BBox {
	if b.IsZero() {
		return o
	}
	if o.IsZero() {
		return b
	}
	return BBox{
		X0: min(b.X0, o.X0),
		Y0: min(b.Y0, o.Y0),
		X1: max(b.X1, o.X1),
		Y1: max(b.Y1, o.Y1),
	}
}

// MarshalJSON writes the box as [x0, y0, x1, y1]
func (b BBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{b.X0, b.Y0, b.X1, b.Y1})
}

// UnmarshalJSON reads the [x0, y0, x1, y1] form
func (b *BBox) UnmarshalJSON(data []byte) error {
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("bbox: %w", err)
	}
	if len(v) != 4 {
		return fmt.Errorf("bbox: expected 4 coordinates, got %d", len(v))
	}
	*b = BBox{X0: v[0], Y0: v[1], X1: v[2], Y1: v[3]}
	return nil
}

// Span is a contiguous glyph run extracted from a page
type Span struct {
	Text     string  // Run text
	BBox     BBox    // Run coordinates
	FontSize float64 // Font size in points
	FontName string  // Font resource name, may be empty
	Page     int     // Page number (1-based)
}

// Line is a visual line assembled from one or more spans
type Line struct {
	Text     string  // Line text, trimmed
	BBox     BBox    // Union of the member span boxes
	Page     int     // Page number (1-based)
	FontSize float64 // Largest member font size
}
