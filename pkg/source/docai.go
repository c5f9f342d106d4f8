package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/gardar/ocrdiff/pkg/gdocai"
	"github.com/gardar/ocrdiff/pkg/layout"
)

var mimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
}

// MimeType returns the Document AI input type of a file by extension
func MimeType(path string) (string, bool) {
	mime, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]
	return mime, ok
}

// openDocAI runs the file through Document AI and serves the result as
// hOCR. For a PDF the pixel pages are stretched onto the PDF page boxes.
func openDocAI(ctx context.Context, path string, cfg gdocai.Config) (*hocrDocument, error) {
	mime, ok := MimeType(path)
	if !ok {
		return nil, ErrUnsupported
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	resp, err := gdocai.ProcessDocument(ctx, data, mime, cfg)
	if err != nil {
		return nil, err
	}
	doc := &hocrDocument{doc: gdocai.ToHOCR(resp)}

	if mime == "application/pdf" {
		doc.targets = pdfPageBoxes(path)
	}
	return doc, nil
}

// pdfPageBoxes returns the page boxes of a PDF, or nil if it cannot be read
func pdfPageBoxes(path string) []layout.BBox {
	p, err := openPDF(path)
	if err != nil {
		return nil
	}
	defer p.Close()

	boxes := make([]layout.BBox, p.PageCount())
	for i := range boxes {
		boxes[i], _ = p.PageBox(i)
	}
	return boxes
}
