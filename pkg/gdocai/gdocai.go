// Package gdocai runs scanned documents through Google Document AI and
// converts the recognized token layout into the hOCR model, so OCR output
// from the service goes through the same line reconstruction as any other
// source.
//
// Main Functions:
//
// - ProcessDocument: sends a document to a Document AI processor
// - ToHOCR: converts the response into an hocr.Document
// - ToJSON: dumps a raw response for debugging
//
// Usage Requirements:
//
// - Google Cloud project with Document AI API enabled
// - Document AI processor configured for OCR
// - Authentication via GOOGLE_APPLICATION_CREDENTIALS environment variable
// or application default credentials
package gdocai

import (
	"errors"
	"fmt"
)

// Config identifies the Document AI processor to call
type Config struct {
	ProjectID   string `yaml:"project_id"`
	Location    string `yaml:"location"`
	ProcessorID string `yaml:"processor_id"`
}

// DefaultConfig returns a config for the "us" location with no processor
func DefaultConfig() Config {
	return Config{Location: "us"}
}

// ErrNotConfigured is returned when the project or processor is missing
var ErrNotConfigured = errors.New("document ai is not configured")

// Validate checks that the processor can be addressed
func (c Config) Validate() error {
	if c.ProjectID == "" || c.ProcessorID == "" || c.Location == "" {
		return fmt.Errorf("%w: project_id, location and processor_id are required", ErrNotConfigured)
	}
	return nil
}

// ProcessorName returns the resource name of the processor
func (c Config) ProcessorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", c.ProjectID, c.Location, c.ProcessorID)
}
