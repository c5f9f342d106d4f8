package source

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the document file does not exist
	ErrNotFound = errors.New("document not found")

	// ErrParse means the document could not be read as its format
	ErrParse = errors.New("document could not be parsed")

	// ErrUnsupported means no backend handles the document
	ErrUnsupported = errors.New("unsupported document type")
)

// DocumentOpenError reports a document that could not be opened.
// It is fatal for that document.
type DocumentOpenError struct {
	Path string
	Err  error
}

func (e *DocumentOpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Path, e.Err)
}

func (e *DocumentOpenError) Unwrap() error { return e.Err }

// PageExtractionError reports a page whose content could not be read.
// Callers skip the page and carry on.
type PageExtractionError struct {
	Page int // 1-based
	Err  error
}

func (e *PageExtractionError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Page, e.Err)
}

func (e *PageExtractionError) Unwrap() error { return e.Err }
