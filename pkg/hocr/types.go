package hocr

import (
	"strings"

	"github.com/gardar/ocrdiff/pkg/layout"
)

// Document represents the entire hOCR document structure
type Document struct {
	Title    string            // Document title
	Language string            // Document language
	Metadata map[string]string // ocr-system, ocr-capabilities and similar
	Pages    []Page
}

// Page is one page of recognized text
// Corresponds to hOCR element with class: 'ocr_page'
type Page struct {
	ID      string
	Title   string      // Original title attribute
	Number  int         // ppageno, when present
	Image   string      // Source image filename
	ScanRes float64     // Horizontal scan resolution in DPI, 0 if unknown
	BBox    layout.BBox // Page box in image pixels
	Lines   []Line      // Lines in document order
}

// Line represents a line of text
// Corresponds to hOCR elements with class 'ocr_line', 'ocr_header',
// 'ocr_caption' or 'ocr_textfloat'
type Line struct {
	ID       string
	BBox     layout.BBox
	Baseline string
	Size     float64 // x_size: line height in pixels
	Words    []Word
}

// Text joins the words of the line with single spaces
func (l Line) Text() string {
	parts := make([]string, 0, len(l.Words))
	for _, w := range l.Words {
		if w.Text != "" {
			parts = append(parts, w.Text)
		}
	}
	return strings.Join(parts, " ")
}

// Word is a recognized word with bounding box
// Corresponds to hOCR element with class: 'ocrx_word'
type Word struct {
	ID         string
	Text       string
	BBox       layout.BBox
	Confidence float64 // x_wconf, 0-100
}

// Class names recognized as lines
var lineClasses = []string{"ocr_line", "ocr_header", "ocr_caption", "ocr_textfloat"}
