// Package highlight marks the differences found by a comparison on a copy
// of the compared document.
//
// Every changed, deleted or added unit is drawn as a translucent box on an
// optional content layer, one layer per page, so that PDF readers can
// toggle the marks on and off.
//
// Key Features:
//
// - Overlay difference boxes on the pages of an existing PDF
// - Assemble a new PDF from page images (for hOCR input) with the boxes
// - Detect an existing difference layer to avoid marking a file twice
//
// Main Functions:
//
// - Apply: adds the difference layer to an existing PDF
// - Assemble: creates a PDF from page images with the difference layer
// - ResultBoxes: turns a comparison result into boxes for both documents
package highlight

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"
	"github.com/sirupsen/logrus"

	"github.com/gardar/ocrdiff/pkg/layout"
)

// ErrLayerExists is returned when the input already carries a difference
// layer and Config.Force is not set
var ErrLayerExists = errors.New("difference layer already present")

// Config holds user options for the export
type Config struct {
	Force     bool    // Add the layer even if one already exists
	LayerName string  // Base name of the layer (page number will be appended)
	Labels    bool    // Print box labels above the boxes
	Opacity   float64 // Fill opacity of the boxes
	Debug     bool    // Log the PDF structure around existing layers

	Logger logrus.FieldLogger // nil = logrus standard logger
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{
		LayerName: "Differences", // Will be formatted as "Differences (Page X)" in the final PDF
		Labels:    true,
		Opacity:   0.3,
	}
}

// Kind tells what happened to a unit
type Kind string

const (
	KindChanged Kind = "changed"
	KindDeleted Kind = "deleted"
	KindAdded   Kind = "added"
)

// color returns the RGB fill of a kind
func (k Kind) color() (r, g, b int) {
	switch k {
	case KindDeleted:
		return 220, 40, 40
	case KindAdded:
		return 40, 160, 60
	}
	return 255, 190, 0
}

// Box is one mark on a page
type Box struct {
	Page  int         // 1-based
	BBox  layout.BBox // Points, top-left origin
	Kind  Kind
	Label string
}

// Apply takes an existing PDF and draws the boxes over its pages. Pages
// holds the page boxes of the input in points; every page is copied
// whether it has marks or not.
func Apply(pdfData []byte, pages []layout.BBox, boxes []Box, cfg Config) ([]byte, error) {
	if len(pdfData) == 0 {
		return nil, fmt.Errorf("input PDF data is empty")
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages to export")
	}
	log := getLogger(cfg)

	if cfg.Debug {
		dumpPDFStructure(pdfData, 2000, log)
	}

	check, err := CheckExistingLayers(pdfData, cfg.LayerName)
	if err != nil {
		return nil, fmt.Errorf("layer detection failed: %w", err)
	}
	if len(check.Layers) > 0 {
		log.WithField("layers", check.Layers).Debug("Existing layers detected in PDF")
	}
	for _, w := range check.Warnings {
		log.Warn(w)
	}

	// Enforce safety check unless force override is requested
	if check.HasLayer && !cfg.Force {
		return nil, fmt.Errorf("%w: layer '%s', use force to add another", ErrLayerExists, check.LayerName)
	} else if check.HasLayer {
		log.WithField("layer", check.LayerName).Warn("File already has a difference layer; adding another due to force")
	}

	out, err := overlayPDF(pdfData, pages, byPage(boxes), cfg)
	if err != nil {
		return nil, fmt.Errorf("error modifying existing PDF: %w", err)
	}
	return out, nil
}

// overlayPDF imports the pages of an existing PDF and draws the layers.
// The importer panics on unreadable input.
func overlayPDF(pdfData []byte, pages []layout.BBox, boxes map[int][]Box, cfg Config) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("failed to import PDF pages: %v", r)
		}
	}()

	pdf := fpdf.New("P", "pt", "", "")
	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(pdfData))

	for i, page := range pages {
		num := i + 1
		w, h := page.Width(), page.Height()
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})

		tpl := importer.ImportPageFromStream(pdf, &rs, num, "/MediaBox")
		importer.UseImportedTemplate(pdf, tpl, 0, 0, w, h)

		drawLayer(pdf, boxes[num], num, cfg)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Assemble builds a new PDF from page images, one image per page box,
// and draws the boxes over them. Images are stretched onto the page boxes.
// Scans in formats the PDF writer cannot embed (TIFF, BMP) are converted
// to PNG first.
func Assemble(images [][]byte, pages []layout.BBox, boxes []Box, cfg Config) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages to export")
	}
	if len(images) < len(pages) {
		return nil, fmt.Errorf("not enough images (%d) for pages (%d)", len(images), len(pages))
	}

	data := make([][]byte, len(pages))
	types := make([]string, len(pages))
	for i := range pages {
		if len(images[i]) == 0 {
			return nil, fmt.Errorf("image %d is empty", i+1)
		}
		img, t, err := pageImage(images[i])
		if err != nil {
			return nil, fmt.Errorf("image %d has invalid format: %w", i+1, err)
		}
		data[i], types[i] = img, t
	}

	pdf := fpdf.New("P", "pt", "", "")
	marks := byPage(boxes)
	for i, page := range pages {
		w, h := page.Width(), page.Height()
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})

		name := fmt.Sprintf("img%d", i)
		opts := fpdf.ImageOptions{ReadDpi: false, ImageType: types[i]}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data[i]))
		pdf.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")

		drawLayer(pdf, marks[i+1], i+1, cfg)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func byPage(boxes []Box) map[int][]Box {
	m := make(map[int][]Box)
	for _, b := range boxes {
		if b.BBox.IsZero() {
			continue
		}
		m[b.Page] = append(m[b.Page], b)
	}
	return m
}
