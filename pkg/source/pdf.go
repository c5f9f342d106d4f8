package source

import (
	"fmt"
	"math"
	"os"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/gardar/ocrdiff/pkg/layout"
)

const (
	glyphAscent  = 0.8  // Share of the font size above the baseline
	glyphDescent = 0.2  // and below it
	impliedSpace = 0.25 // Gap, in font sizes, read as a word break
	runBreak     = 2.0  // Gap, in font sizes, that ends a run
)

// pdfDocument reads the text layer of a PDF
type pdfDocument struct {
	f *os.File
	r *pdf.Reader
}

func openPDF(path string) (doc *pdfDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrParse, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if r.NumPage() == 0 {
		f.Close()
		return nil, fmt.Errorf("%w: no pages", ErrParse)
	}
	return &pdfDocument{f: f, r: r}, nil
}

func (d *pdfDocument) PageCount() int { return d.r.NumPage() }

func (d *pdfDocument) Close() error { return d.f.Close() }

func (d *pdfDocument) page(pageIndex int) (pdf.Page, error) {
	if err := checkPage(pageIndex, d.PageCount()); err != nil {
		return pdf.Page{}, err
	}
	p := d.r.Page(pageIndex + 1)
	if p.V.IsNull() {
		return pdf.Page{}, &PageExtractionError{Page: pageIndex + 1, Err: fmt.Errorf("%w: missing page object", ErrParse)}
	}
	return p, nil
}

// PageBox returns the media box, inherited from the page tree if needed,
// moved to a top-left origin.
func (d *pdfDocument) PageBox(pageIndex int) (layout.BBox, error) {
	p, err := d.page(pageIndex)
	if err != nil {
		return layout.BBox{}, err
	}
	mb, ok := mediaBox(p)
	if !ok {
		return layout.BBox{}, &PageExtractionError{Page: pageIndex + 1, Err: fmt.Errorf("%w: no media box", ErrParse)}
	}
	return layout.NewBBox(0, 0, mb.X1-mb.X0, mb.Y1-mb.Y0), nil
}

// Spans coalesces the glyphs of a page into runs. A panic in the content
// stream parser is returned as a PageExtractionError.
func (d *pdfDocument) Spans(pageIndex int) (spans []layout.Span, err error) {
	p, err := d.page(pageIndex)
	if err != nil {
		return nil, err
	}
	mb, ok := mediaBox(p)
	if !ok {
		return nil, &PageExtractionError{Page: pageIndex + 1, Err: fmt.Errorf("%w: no media box", ErrParse)}
	}

	defer func() {
		if r := recover(); r != nil {
			spans = nil
			err = &PageExtractionError{Page: pageIndex + 1, Err: fmt.Errorf("%w: content stream: %v", ErrParse, r)}
		}
	}()
	content := p.Content()
	return glyphRuns(content.Text, mb, pageIndex+1), nil
}

// mediaBox finds the MediaBox of a page or its nearest ancestor, in PDF
// coordinates (bottom-left origin)
func mediaBox(p pdf.Page) (layout.BBox, bool) {
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		box := v.Key("MediaBox")
		if box.IsNull() || box.Len() < 4 {
			continue
		}
		x0, y0 := box.Index(0).Float64(), box.Index(1).Float64()
		x1, y1 := box.Index(2).Float64(), box.Index(3).Float64()
		return layout.NewBBox(math.Min(x0, x1), math.Min(y0, y1), math.Max(x0, x1), math.Max(y0, y1)), true
	}
	return layout.BBox{}, false
}

// run is a span under construction
type run struct {
	text  strings.Builder
	box   layout.BBox
	size  float64
	font  string
	baseY float64
	endX  float64
}

// glyphRuns groups consecutive glyphs sharing a baseline and a font size
// into spans. A horizontal gap wider than impliedSpace font sizes adds a
// space; a gap wider than runBreak font sizes, or any move backwards,
// starts a new span.
func glyphRuns(glyphs []pdf.Text, mb layout.BBox, page int) []layout.Span {
	var spans []layout.Span
	var cur *run

	flush := func() {
		if cur == nil {
			return
		}
		if text := strings.TrimSpace(cur.text.String()); text != "" {
			spans = append(spans, layout.Span{
				Text:     text,
				BBox:     cur.box,
				FontSize: cur.size,
				FontName: cur.font,
				Page:     page,
			})
		}
		cur = nil
	}

	for _, g := range glyphs {
		if g.S == "" || g.S == "\n" {
			continue
		}
		size := math.Abs(g.FontSize)
		x := g.X - mb.X0
		baseline := mb.Y1 - g.Y
		box := layout.NewBBox(x, baseline-size*glyphAscent, x+g.W, baseline+size*glyphDescent)

		if cur != nil {
			gap := x - cur.endX
			sameLine := math.Abs(baseline-cur.baseY) <= cur.size*glyphDescent
			sameSize := math.Abs(size-cur.size) <= cur.size*0.1
			if !sameLine || !sameSize || gap > cur.size*runBreak || gap < -cur.size*0.5 {
				flush()
			} else if gap > cur.size*impliedSpace && !isBlank(g.S) && !endsBlank(cur.text.String()) {
				cur.text.WriteByte(' ')
			}
		}
		if cur == nil {
			if isBlank(g.S) {
				continue
			}
			cur = &run{size: size, font: g.Font, baseY: baseline}
		}

		cur.text.WriteString(g.S)
		cur.box = cur.box.Union(box)
		cur.endX = x + g.W
	}
	flush()
	return spans
}

func isBlank(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}

func endsBlank(s string) bool {
	return s != "" && unicode.IsSpace(rune(s[len(s)-1]))
}
