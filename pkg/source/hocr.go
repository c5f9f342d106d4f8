package source

import (
	"fmt"
	"os"

	"github.com/gardar/ocrdiff/pkg/hocr"
	"github.com/gardar/ocrdiff/pkg/layout"
)

// hocrDocument serves the pages of a parsed hOCR document. Targets, when
// set, are the point boxes the pixel pages are stretched onto; otherwise
// the scan resolution decides the scale.
type hocrDocument struct {
	doc     *hocr.Document
	targets []layout.BBox
}

func openHOCR(path string) (*hocrDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := hocr.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return &hocrDocument{doc: doc}, nil
}

func (d *hocrDocument) PageCount() int { return len(d.doc.Pages) }

func (d *hocrDocument) Close() error { return nil }

func (d *hocrDocument) target(pageIndex int) layout.BBox {
	if pageIndex < len(d.targets) {
		return d.targets[pageIndex]
	}
	return layout.BBox{}
}

func (d *hocrDocument) PageBox(pageIndex int) (layout.BBox, error) {
	if err := checkPage(pageIndex, d.PageCount()); err != nil {
		return layout.BBox{}, err
	}
	if t := d.target(pageIndex); !t.IsZero() {
		return t, nil
	}
	p := d.doc.Pages[pageIndex]
	sx, sy := p.Scale(layout.BBox{})
	return layout.NewBBox(0, 0, p.BBox.Width()*sx, p.BBox.Height()*sy), nil
}

func (d *hocrDocument) Spans(pageIndex int) ([]layout.Span, error) {
	if err := checkPage(pageIndex, d.PageCount()); err != nil {
		return nil, err
	}
	return d.doc.Pages[pageIndex].Spans(pageIndex+1, d.target(pageIndex)), nil
}
