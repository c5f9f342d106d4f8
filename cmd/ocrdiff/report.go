package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/gardar/ocrdiff/pkg/align"
	"github.com/gardar/ocrdiff/pkg/chardiff"
	"github.com/gardar/ocrdiff/pkg/compare"
)

const excerptLen = 60

// writeTextReport prints one line per report entry followed by the summary
func writeTextReport(w io.Writer, res *compare.Result, showDiffs bool) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Comparison %s\n", res.ID)
	fmt.Fprintf(bw, "A: %s (%d units)\n", res.PathA, len(res.UnitsA))
	fmt.Fprintf(bw, "B: %s (%d units)\n\n", res.PathB, len(res.UnitsB))

	for _, e := range res.Entries {
		switch e.Status {
		case align.StatusIdentical:
			fmt.Fprintf(bw, "[identical] A#%d = B#%d\n", res.UnitsA[e.A].ID, res.UnitsB[e.B].ID)
		case align.StatusMatched:
			fmt.Fprintf(bw, "[matched %.1f%%] A#%d ~ B#%d: %s\n", e.Score*100,
				res.UnitsA[e.A].ID, res.UnitsB[e.B].ID, excerpt(res.UnitsA[e.A].Text))
			if showDiffs {
				diffs, err := res.DisplayDiffs(e.A)
				if err != nil {
					return err
				}
				writeDiffs(bw, diffs)
			}
		case align.StatusDeleted:
			fmt.Fprintf(bw, "[deleted] A#%d (page %d): %s\n", res.UnitsA[e.A].ID, res.UnitsA[e.A].Page,
				excerpt(res.UnitsA[e.A].Text))
		case align.StatusAdded:
			fmt.Fprintf(bw, "[added] B#%d (page %d): %s\n", res.UnitsB[e.B].ID, res.UnitsB[e.B].Page,
				excerpt(res.UnitsB[e.B].Text))
		}
	}

	st := res.Stats
	fmt.Fprintf(bw, "\n%s\n", res.Summary)
	fmt.Fprintf(bw, "Identical: %d  Matched: %d  Deleted: %d  Added: %d\n",
		st.Identical, st.Matched, st.Deleted, st.Added)
	return bw.Flush()
}

func writeDiffs(w io.Writer, diffs []chardiff.CharDiff) {
	for _, d := range diffs {
		switch d.Op {
		case chardiff.OpDelete:
			fmt.Fprintf(w, "    - %q\n", d.TextA)
		case chardiff.OpInsert:
			fmt.Fprintf(w, "    + %q\n", d.TextB)
		case chardiff.OpReplace:
			fmt.Fprintf(w, "    %q -> %q\n", d.TextA, d.TextB)
		}
	}
}

// excerpt shortens text to excerptLen runes
func excerpt(text string) string {
	if utf8.RuneCountInString(text) <= excerptLen {
		return text
	}
	r := []rune(text)
	return strings.TrimSpace(string(r[:excerptLen])) + "..."
}
