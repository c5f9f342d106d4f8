package segment

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gardar/ocrdiff/pkg/layout"
	"github.com/gardar/ocrdiff/pkg/textnorm"
)

const (
	verseShortLine     = 60   // Verse lines shorter than this start a new verse
	paragraphMaxLines  = 10   // Paragraphs close after this many lines
	paragraphLongLine  = 50   // A line longer than this followed by one
	paragraphShortLine = 30   // shorter than this ends the paragraph
	paragraphSplitAt   = 1000 // Paragraphs longer than this are split
	paragraphChunkSize = 800  // into sentence chunks of at most this size
)

// Segment groups lines into units. GenreAuto, or a name ParseGenre does
// not know, classifies the lines first. Unit IDs start at 1 and increase
// in reading order.
func Segment(lines []layout.Line, genre Genre) []Unit {
	genre, _ = ParseGenre(string(genre))
	if genre == GenreAuto || genre == "" {
		genre = Classify(lines)
	}
	if genre == GenreVerse {
		return segmentVerse(lines)
	}
	return segmentProse(lines)
}

// unitBuilder accumulates lines for the unit being built
type unitBuilder struct {
	kind  UnitType
	texts []string
	idx   []int
	boxes []layout.BBox
	bbox  layout.BBox
	page  int
	units []Unit
}

func (b *unitBuilder) empty() bool { return len(b.texts) == 0 }

func (b *unitBuilder) add(i int, l layout.Line) {
	if b.empty() {
		b.page = l.Page
		b.bbox = layout.BBox{}
	}
	b.texts = append(b.texts, strings.TrimSpace(l.Text))
	b.idx = append(b.idx, i)
	b.boxes = append(b.boxes, l.BBox)
	b.bbox = b.bbox.Union(l.BBox)
}

// close emits the accumulated lines as one unit, or several for an
// oversized paragraph, and resets the buffer. Each chunk of a split
// paragraph keeps only the lines its text overlaps.
func (b *unitBuilder) close() {
	if b.empty() {
		return
	}
	// ends[k] is the byte offset in text just past line k
	var sb strings.Builder
	ends := make([]int, len(b.texts))
	for k, t := range b.texts {
		if f := strings.Fields(t); len(f) > 0 {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strings.Join(f, " "))
		}
		ends[k] = sb.Len()
	}
	text := sb.String()

	if b.kind != TypeParagraph || utf8.RuneCountInString(text) <= paragraphSplitAt {
		b.emit(text, b.bbox, b.idx)
	} else {
		pos := 0
		for _, c := range splitLong(text, paragraphChunkSize) {
			start := pos
			if at := strings.Index(text[pos:], c); at >= 0 {
				start = pos + at
			}
			end := start + len(c)
			pos = end

			// Lines overlapping [start, end)
			var idx []int
			var box layout.BBox
			lineStart := 0
			for k, e := range ends {
				if e > start && lineStart < end {
					idx = append(idx, b.idx[k])
					box = box.Union(b.boxes[k])
				}
				lineStart = e + 1
			}
			if len(idx) == 0 {
				idx, box = b.idx, b.bbox
			}
			b.emit(c, box, idx)
		}
	}
	b.texts = nil
	b.idx = nil
	b.boxes = nil
}

func (b *unitBuilder) emit(text string, box layout.BBox, idx []int) {
	b.units = append(b.units, Unit{
		ID:         len(b.units) + 1,
		Text:       text,
		Normalized: textnorm.Normalize(text),
		Type:       b.kind,
		Page:       b.page,
		BBox:       box,
		Lines:      append([]int(nil), idx...),
	})
}

// segmentVerse treats every line as a verse candidate. A short or
// unterminated line starts a new verse; a long line ending a sentence
// continues the current one.
func segmentVerse(lines []layout.Line) []Unit {
	b := &unitBuilder{kind: TypeVerse}
	for i, l := range lines {
		text := strings.TrimSpace(l.Text)
		if text == "" {
			b.close()
			continue
		}
		if !b.empty() && l.Page != b.page {
			b.close()
		}
		if utf8.RuneCountInString(text) < verseShortLine || !endsSentence(text) {
			b.close()
		}
		b.add(i, l)
	}
	b.close()
	return b.units
}

// segmentProse accumulates lines into paragraphs
func segmentProse(lines []layout.Line) []Unit {
	b := &unitBuilder{kind: TypeParagraph}
	prevLen := 0
	for i, l := range lines {
		text := strings.TrimSpace(l.Text)
		if text == "" {
			b.close()
			prevLen = 0
			continue
		}
		n := utf8.RuneCountInString(text)

		if !b.empty() {
			last := b.texts[len(b.texts)-1]
			switch {
			case l.Page != b.page:
				b.close()
			case endsSentence(last) && startsUpper(text):
				b.close()
			}
		}

		b.add(i, l)
		switch {
		case len(b.texts) >= paragraphMaxLines:
			b.close()
		case prevLen > paragraphLongLine && n < paragraphShortLine:
			// a short line after a long one is the tail of the paragraph
			b.close()
		}
		prevLen = n
	}
	b.close()
	return b.units
}

func endsSentence(s string) bool {
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}

func startsUpper(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return unicode.IsUpper(r)
		}
		if !unicode.IsPunct(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return false
}
