// Package segment classifies reconstructed lines as prose or verse and
// groups them into the units two documents are compared by.
//
// Key Types:
//
// - Genre: prose, verse, or auto (classify first)
// - Unit: a paragraph or verse with its page, box and normalized text
//
// Main Functions:
//
// - Classify: scores a batch of lines as prose or verse
// - Segment: groups lines into units for a genre
package segment

import (
	"fmt"
	"strings"

	"github.com/gardar/ocrdiff/pkg/layout"
)

// Genre selects the segmentation mode
type Genre string

const (
	GenreAuto  Genre = "auto"
	GenreProse Genre = "prose"
	GenreVerse Genre = "verse"
)

// ParseGenre converts a user supplied name into a Genre.
// An empty name selects GenreAuto.
func ParseGenre(s string) (Genre, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return GenreAuto, nil
	case "prose":
		return GenreProse, nil
	case "verse", "poetry":
		return GenreVerse, nil
	}
	return "", fmt.Errorf("unknown genre %q (want auto, prose or verse)", s)
}

// UnitType tells paragraphs and verses apart
type UnitType string

const (
	TypeParagraph UnitType = "paragraph"
	TypeVerse     UnitType = "verse"
)

// Unit is a paragraph or verse, the granularity documents are compared at.
// Its JSON form carries exactly id, text, type, page and bbox.
type Unit struct {
	ID         int         `json:"id"`   // Position in reading order, starting at 1
	Text       string      `json:"text"` // Text with whitespace collapsed
	Normalized string      `json:"-"`    // Text prepared for matching
	Type       UnitType    `json:"type"`
	Page       int         `json:"page"` // Page number (1-based)
	BBox       layout.BBox `json:"bbox"` // Union of the source line boxes
	Lines      []int       `json:"-"`    // Indexes of the source lines
}
