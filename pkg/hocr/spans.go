package hocr

import (
	"strings"

	"github.com/gardar/ocrdiff/pkg/layout"
)

// Scale returns the factors that map page pixels to points. With a
// non-zero target the page box is stretched onto it; otherwise the scan
// resolution is used, and pixels are kept as they are when it is unknown.
func (p Page) Scale(target layout.BBox) (sx, sy float64) {
	if !target.IsZero() && p.BBox.Width() > 0 && p.BBox.Height() > 0 {
		return target.Width() / p.BBox.Width(), target.Height() / p.BBox.Height()
	}
	if p.ScanRes > 0 {
		return 72 / p.ScanRes, 72 / p.ScanRes
	}
	return 1, 1
}

// Spans converts every line of the page into a span on page pageNum,
// scaled as Scale describes. The words of a line are joined with single
// spaces, since scanned word gaps are often narrower than the space gap
// of line reconstruction. The font size is the x_size of the line, or
// the height of its words when the line does not carry one.
func (p Page) Spans(pageNum int, target layout.BBox) []layout.Span {
	sx, sy := p.Scale(target)
	var spans []layout.Span
	for _, l := range p.Lines {
		words := make([]string, 0, len(l.Words))
		var box layout.BBox
		for _, w := range l.Words {
			text := strings.TrimSpace(w.Text)
			if text == "" {
				continue
			}
			words = append(words, text)
			box = box.Union(w.BBox)
		}
		if len(words) == 0 {
			continue
		}
		if box.IsZero() {
			box = l.BBox
		}
		size := l.Size
		if size == 0 {
			size = box.Height()
		}
		spans = append(spans, layout.Span{
			Text: strings.Join(words, " "),
			BBox: layout.NewBBox(
				(box.X0-p.BBox.X0)*sx, (box.Y0-p.BBox.Y0)*sy,
				(box.X1-p.BBox.X0)*sx, (box.Y1-p.BBox.Y0)*sy,
			),
			FontSize: size * sy,
			Page:     pageNum,
		})
	}
	return spans
}

// Text returns the text of every page, one line per hOCR line and pages
// separated by a blank line.
func (d *Document) Text() string {
	var sb strings.Builder
	for i, p := range d.Pages {
		if i > 0 {
			sb.WriteString("\n")
		}
		for _, l := range p.Lines {
			if t := l.Text(); t != "" {
				sb.WriteString(t)
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}
