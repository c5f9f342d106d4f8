// Package source opens documents and yields the positioned text spans of
// each page.
//
// Three backends are available: the text layer of a PDF, an hOCR file,
// and Google Document AI OCR of a PDF or image. All of them report boxes
// in points with a top-left origin.
//
// Main Functions:
//
// - Open: opens a document with the backend selected by Options.Kind
// - DetectKind: picks a backend from the file name
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gardar/ocrdiff/pkg/gdocai"
	"github.com/gardar/ocrdiff/pkg/layout"
)

// Document is an open document
type Document interface {
	// PageCount returns the number of pages
	PageCount() int

	// Spans returns the text spans of a page. pageIndex is 0-based; the
	// spans carry the 1-based page number.
	Spans(pageIndex int) ([]layout.Span, error)

	// PageBox returns the page box in points
	PageBox(pageIndex int) (layout.BBox, error)

	Close() error
}

// Kind selects a backend
type Kind string

const (
	KindAuto  Kind = "auto"
	KindPDF   Kind = "pdf"
	KindHOCR  Kind = "hocr"
	KindDocAI Kind = "docai"
)

// ParseKind converts a configuration value. Empty selects KindAuto.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindAuto, nil
	case KindAuto, KindPDF, KindHOCR, KindDocAI:
		return k, nil
	}
	return "", fmt.Errorf("%w: source %q (want auto, pdf, hocr or docai)", ErrUnsupported, s)
}

// Options configures Open
type Options struct {
	Kind  Kind
	DocAI gdocai.Config // Used by KindDocAI
}

// DetectKind picks a backend from the file extension
func DetectKind(path string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return KindPDF, nil
	case ".hocr", ".html", ".htm", ".xhtml":
		return KindHOCR, nil
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".gif", ".bmp", ".webp":
		return KindDocAI, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(path))
}

// Open opens the document at path. Failures are returned as a
// *DocumentOpenError wrapping ErrNotFound, ErrParse or ErrUnsupported.
func Open(ctx context.Context, path string, opts Options) (Document, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &DocumentOpenError{Path: path, Err: ErrNotFound}
		}
		return nil, &DocumentOpenError{Path: path, Err: err}
	}

	kind := opts.Kind
	if kind == "" || kind == KindAuto {
		k, err := DetectKind(path)
		if err != nil {
			return nil, &DocumentOpenError{Path: path, Err: err}
		}
		kind = k
	}

	var (
		doc Document
		err error
	)
	switch kind {
	case KindPDF:
		doc, err = openPDF(path)
	case KindHOCR:
		doc, err = openHOCR(path)
	case KindDocAI:
		doc, err = openDocAI(ctx, path, opts.DocAI)
	default:
		err = fmt.Errorf("%w: source %q", ErrUnsupported, kind)
	}
	if err != nil {
		return nil, &DocumentOpenError{Path: path, Err: err}
	}
	return doc, nil
}

func checkPage(pageIndex, count int) error {
	if pageIndex < 0 || pageIndex >= count {
		return &PageExtractionError{Page: pageIndex + 1, Err: fmt.Errorf("page out of range (document has %d)", count)}
	}
	return nil
}
