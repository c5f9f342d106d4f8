package gdocai

import (
	"fmt"
	"math"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/gardar/ocrdiff/pkg/hocr"
	"github.com/gardar/ocrdiff/pkg/layout"
)

// ToHOCR converts a Document AI response into the hOCR model. Boxes are
// in the page's pixel dimensions.
func ToHOCR(doc *documentaipb.Document) *hocr.Document {
	lang := documentLanguage(doc)
	out := &hocr.Document{
		Title:    "Document OCR",
		Language: lang,
		Metadata: map[string]string{
			"ocr-system":          "Document AI OCR",
			"ocr-number-of-pages": fmt.Sprintf("%d", len(doc.GetPages())),
			"ocr-langs":           lang,
		},
	}
	text := []rune(doc.GetText())
	for i, p := range doc.GetPages() {
		num := int(p.GetPageNumber())
		if num == 0 {
			num = i + 1
		}
		out.Pages = append(out.Pages, convertPage(p, text, num))
	}
	return out
}

// convertPage builds an hOCR page from the lines of a Document AI page.
// Tokens are assigned to the line whose text anchor contains them; tokens
// no line claims become single word lines.
func convertPage(page *documentaipb.Document_Page, text []rune, num int) hocr.Page {
	dim := page.GetDimension()
	out := hocr.Page{
		ID:     fmt.Sprintf("page_%d", num),
		Number: num,
		BBox:   layout.NewBBox(0, 0, float64(dim.GetWidth()), float64(dim.GetHeight())),
	}

	claimed := make([]bool, len(page.GetTokens()))
	for lidx, line := range page.GetLines() {
		l := hocr.Line{
			ID:   fmt.Sprintf("line_%d_%d", num, lidx),
			BBox: boundingBox(line.GetLayout(), dim),
		}
		for tidx, token := range page.GetTokens() {
			if claimed[tidx] || !isElementInParent(token.GetLayout(), line.GetLayout()) {
				continue
			}
			claimed[tidx] = true
			if w, ok := convertToken(token, text, dim, num, tidx); ok {
				l.Words = append(l.Words, w)
			}
		}
		if len(l.Words) > 0 {
			out.Lines = append(out.Lines, l)
		}
	}

	for tidx, token := range page.GetTokens() {
		if claimed[tidx] {
			continue
		}
		if w, ok := convertToken(token, text, dim, num, tidx); ok {
			out.Lines = append(out.Lines, hocr.Line{ID: w.ID, BBox: w.BBox, Words: []hocr.Word{w}})
		}
	}
	return out
}

func convertToken(token *documentaipb.Document_Page_Token, text []rune,
	dim *documentaipb.Document_Page_Dimension, num, tidx int) (hocr.Word, bool) {
	clean := strings.Join(strings.Fields(textFromLayout(token.GetLayout(), text)), " ")
	if clean == "" {
		return hocr.Word{}, false
	}
	return hocr.Word{
		ID:         fmt.Sprintf("word_%d_%d", num, tidx),
		Text:       clean,
		BBox:       boundingBox(token.GetLayout(), dim),
		Confidence: float64(token.GetLayout().GetConfidence() * 100),
	}, true
}

// boundingBox converts normalized vertices (0-1) to the page's pixel
// dimensions, falling back to absolute vertices
func boundingBox(l *documentaipb.Document_Page_Layout, dim *documentaipb.Document_Page_Dimension) layout.BBox {
	poly := l.GetBoundingPoly()
	if poly == nil {
		return layout.BBox{}
	}

	var xs, ys []float64
	if nv := poly.GetNormalizedVertices(); len(nv) > 0 && dim != nil {
		for _, v := range nv {
			xs = append(xs, float64(v.GetX())*float64(dim.GetWidth()))
			ys = append(ys, float64(v.GetY())*float64(dim.GetHeight()))
		}
	} else {
		for _, v := range poly.GetVertices() {
			xs = append(xs, float64(v.GetX()))
			ys = append(ys, float64(v.GetY()))
		}
	}
	if len(xs) == 0 {
		return layout.BBox{}
	}

	x0, y0, x1, y1 := math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)
	for i := range xs {
		x0, x1 = math.Min(x0, xs[i]), math.Max(x1, xs[i])
		y0, y1 = math.Min(y0, ys[i]), math.Max(y1, ys[i])
	}
	return layout.NewBBox(x0, y0, x1, y1)
}

// documentLanguage finds the most common language in the document
// by counting language occurrences across pages and tokens
func documentLanguage(doc *documentaipb.Document) string {
	counts := make(map[string]int)
	for _, page := range doc.GetPages() {
		for _, lang := range page.GetDetectedLanguages() {
			counts[lang.GetLanguageCode()]++
		}
		for _, token := range page.GetTokens() {
			for _, lang := range token.GetDetectedLanguages() {
				counts[lang.GetLanguageCode()]++
			}
		}
	}

	best, highest := "", 0
	for lang, n := range counts {
		if n > highest || (n == highest && lang < best) {
			best, highest = lang, n
		}
	}
	return best
}
