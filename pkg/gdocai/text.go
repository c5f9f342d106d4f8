package gdocai

import (
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
)

// textFromLayout extracts text from a layout's text anchor segments
func textFromLayout(layout *documentaipb.Document_Page_Layout, fullText []rune) string {
	if layout == nil || layout.TextAnchor == nil {
		return ""
	}
	var sb strings.Builder
	total := len(fullText)
	for _, seg := range layout.TextAnchor.TextSegments {
		start := int(seg.StartIndex)
		end := int(seg.EndIndex)
		if start < 0 {
			start = 0
		}
		if end > total {
			end = total
		}
		if start > end {
			start = end
		}
		sb.WriteString(string(fullText[start:end]))
	}
	return sb.String()
}

// anchorRange returns the span of the first text segment of a layout
func anchorRange(layout *documentaipb.Document_Page_Layout) (start, end int64, ok bool) {
	if layout == nil || layout.TextAnchor == nil || len(layout.TextAnchor.TextSegments) == 0 {
		return 0, 0, false
	}
	seg := layout.TextAnchor.TextSegments[0]
	return seg.StartIndex, seg.EndIndex, true
}

// isElementInParent reports whether the text of element lies within the
// text of parent
func isElementInParent(element, parent *documentaipb.Document_Page_Layout) bool {
	es, ee, ok := anchorRange(element)
	if !ok {
		return false
	}
	ps, pe, ok := anchorRange(parent)
	if !ok {
		return false
	}
	return es >= ps && ee <= pe
}
