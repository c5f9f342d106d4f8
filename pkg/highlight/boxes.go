package highlight

import (
	"fmt"

	"github.com/gardar/ocrdiff/pkg/align"
	"github.com/gardar/ocrdiff/pkg/compare"
	"github.com/gardar/ocrdiff/pkg/segment"
)

// ResultBoxes returns the marks of a comparison for the first and the
// second document. Identical units are not marked.
func ResultBoxes(res *compare.Result) (a, b []Box) {
	for _, e := range res.Entries {
		switch e.Status {
		case align.StatusMatched:
			label := fmt.Sprintf("changed %.0f%%", e.Score*100)
			a = appendBox(a, res.UnitsA, e.A, KindChanged, label)
			b = appendBox(b, res.UnitsB, e.B, KindChanged, label)
		case align.StatusDeleted:
			a = appendBox(a, res.UnitsA, e.A, KindDeleted, "deleted")
		case align.StatusAdded:
			b = appendBox(b, res.UnitsB, e.B, KindAdded, "added")
		}
	}
	return a, b
}

func appendBox(boxes []Box, units []segment.Unit, i int, kind Kind, label string) []Box {
	if i < 0 || i >= len(units) {
		return boxes
	}
	u := units[i]
	return append(boxes, Box{
		Page:  u.Page,
		BBox:  u.BBox,
		Kind:  kind,
		Label: fmt.Sprintf("#%d %s", u.ID, label),
	})
}
