package highlight

import (
	"fmt"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
)

const labelFontSize = 7

// drawLayer draws the boxes of one page onto a new layer. Pages without
// boxes get no layer.
func drawLayer(pdf *fpdf.Fpdf, boxes []Box, pageNum int, cfg Config) {
	if len(boxes) == 0 {
		return
	}
	layer := pdf.AddLayer(fmt.Sprintf("%s (Page %d)", cfg.LayerName, pageNum), true)
	pdf.BeginLayer(layer)
	pdf.SetLineWidth(0.5)
	pdf.SetFont("Helvetica", "", labelFontSize)

	missing := 0
	for _, b := range boxes {
		r, g, bl := b.Kind.color()
		pdf.SetFillColor(r, g, bl)
		pdf.SetDrawColor(r, g, bl)

		pdf.SetAlpha(cfg.Opacity, "Multiply")
		pdf.Rect(b.BBox.X0, b.BBox.Y0, b.BBox.Width(), b.BBox.Height(), "F")
		pdf.SetAlpha(1, "Normal")
		pdf.Rect(b.BBox.X0, b.BBox.Y0, b.BBox.Width(), b.BBox.Height(), "D")

		if cfg.Labels && b.Label != "" {
			missing += drawLabel(pdf, b)
		}
	}
	pdf.EndLayer()

	if missing > 0 {
		getLogger(cfg).WithField("page", pageNum).
			Debugf("%d label characters outside Latin-1 were replaced", missing)
	}
}

// drawLabel prints the label above the box, or inside it at the top of the
// page, and returns the number of characters that could not be encoded
func drawLabel(pdf *fpdf.Fpdf, b Box) int {
	text, missing := toLatin1(b.Label)
	r, g, bl := b.Kind.color()
	pdf.SetTextColor(r, g, bl)

	y := b.BBox.Y0 - 1.5
	if y < labelFontSize {
		y = b.BBox.Y0 + labelFontSize
	}
	pdf.Text(b.BBox.X0, y, text)
	return missing
}

// toLatin1 converts text to ISO-8859-1 for the core fonts, replacing
// characters it cannot represent with '?'
func toLatin1(s string) (string, int) {
	var sb strings.Builder
	missing := 0
	for _, r := range s {
		c, ok := charmap.ISO8859_1.EncodeRune(r)
		if !ok {
			c = '?'
			missing++
		}
		sb.WriteByte(c)
	}
	return sb.String(), missing
}
