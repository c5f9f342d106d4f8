package hocr

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"

	"github.com/gardar/ocrdiff/pkg/layout"
)

// ErrNoPages is returned when the input holds no ocr_page element
var ErrNoPages = errors.New("no ocr_page elements found in hOCR data")

// Parse converts raw hOCR data into a Document.
// Input declaring a non UTF-8 charset is decoded as ISO-8859-1.
func Parse(data []byte) (*Document, error) {
	doc := &Document{Metadata: make(map[string]string)}

	if cs := declaredCharset(data); cs != "" && cs != "utf-8" && cs != "utf8" {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", cs, err)
		}
		data = decoded
	}

	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse hOCR HTML: %w", err)
	}

	extractDocumentMeta(doc, root)

	var findPages func(*html.Node)
	findPages = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "ocr_page") {
			doc.Pages = append(doc.Pages, processPage(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findPages(c)
		}
	}
	findPages(root)

	if len(doc.Pages) == 0 {
		return nil, ErrNoPages
	}
	return doc, nil
}

// ParseTitle breaks down an hOCR title attribute into its components
// Example input: "bbox 100 200 300 400; x_wconf 95"
func ParseTitle(title string) map[string][]string {
	result := make(map[string][]string)
	for _, part := range strings.Split(title, ";") {
		items := strings.Fields(part)
		if len(items) > 0 {
			result[items[0]] = items[1:]
		}
	}
	return result
}

// ParseBBox extracts the bbox property of a title attribute
func ParseBBox(title string) (layout.BBox, bool) {
	v, ok := ParseTitle(title)["bbox"]
	if !ok || len(v) < 4 {
		return layout.BBox{}, false
	}
	var c [4]float64
	for i := range c {
		f, err := strconv.ParseFloat(v[i], 64)
		if err != nil {
			return layout.BBox{}, false
		}
		c[i] = f
	}
	return layout.NewBBox(c[0], c[1], c[2], c[3]), true
}

// declaredCharset finds a charset= declaration near the top of the data
func declaredCharset(data []byte) string {
	head := data
	if len(head) > 4096 {
		head = head[:4096]
	}
	s := strings.ToLower(string(head))
	i := strings.Index(s, "charset=")
	if i < 0 {
		return ""
	}
	rest := strings.TrimLeft(s[i+len("charset="):], `"'`)
	end := strings.IndexAny(rest, `"'; />`)
	if end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// extractDocumentMeta extracts document level metadata from the head section
func extractDocumentMeta(doc *Document, root *html.Node) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "html":
				if lang := attr(n, "lang"); lang != "" {
					doc.Language = lang
				} else if lang := attr(n, "xml:lang"); lang != "" {
					doc.Language = lang
				}
			case "title":
				if n.FirstChild != nil {
					doc.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				name, content := attr(n, "name"), attr(n, "content")
				switch {
				case name == "" || content == "":
				case strings.HasPrefix(name, "ocr-"):
					doc.Metadata[name] = content
				case name == "dc.language" && doc.Language == "":
					doc.Language = content
				}
			case "body":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
}

// processPage extracts page properties and every line below the page,
// whatever areas or paragraphs sit in between. Words outside any line
// become single word lines.
func processPage(n *html.Node) Page {
	page := Page{ID: attr(n, "id"), Title: attr(n, "title")}

	if bbox, ok := ParseBBox(page.Title); ok {
		page.BBox = bbox
	}
	props := ParseTitle(page.Title)
	if image, ok := props["image"]; ok && len(image) > 0 {
		page.Image = strings.Trim(strings.Join(image, " "), `"`)
	}
	if ppageno, ok := props["ppageno"]; ok && len(ppageno) > 0 {
		page.Number, _ = strconv.Atoi(ppageno[0])
	}
	if res, ok := props["scan_res"]; ok && len(res) > 0 {
		page.ScanRes, _ = strconv.ParseFloat(res[0], 64)
	}

	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.ElementNode {
			switch {
			case isLine(node):
				page.Lines = append(page.Lines, processLine(node))
				return
			case hasClass(node, "ocrx_word"):
				w := processWord(node)
				page.Lines = append(page.Lines, Line{ID: w.ID, BBox: w.BBox, Words: []Word{w}})
				return
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c)
	}
	return page
}

// processLine extracts line information and its words
func processLine(n *html.Node) Line {
	line := Line{ID: attr(n, "id")}
	title := attr(n, "title")
	if bbox, ok := ParseBBox(title); ok {
		line.BBox = bbox
	}
	props := ParseTitle(title)
	if baseline, ok := props["baseline"]; ok {
		line.Baseline = strings.Join(baseline, " ")
	}
	if size, ok := props["x_size"]; ok && len(size) > 0 {
		line.Size, _ = strconv.ParseFloat(size[0], 64)
	}

	var extractWords func(*html.Node)
	extractWords = func(node *html.Node) {
		if node.Type == html.ElementNode && hasClass(node, "ocrx_word") {
			line.Words = append(line.Words, processWord(node))
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			extractWords(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractWords(c)
	}

	// Some engines emit lines with bare text and no word elements
	if len(line.Words) == 0 {
		if text := textContent(n); text != "" {
			line.Words = []Word{{ID: line.ID, Text: text, BBox: line.BBox}}
		}
	}
	return line
}

// processWord extracts a word's text, box and confidence
func processWord(n *html.Node) Word {
	word := Word{ID: attr(n, "id"), Text: textContent(n)}
	title := attr(n, "title")
	if bbox, ok := ParseBBox(title); ok {
		word.BBox = bbox
	}
	if conf, ok := ParseTitle(title)["x_wconf"]; ok && len(conf) > 0 {
		word.Confidence, _ = strconv.ParseFloat(conf[0], 64)
	}
	return word
}

// textContent gets all text from a node and its children with whitespace
// collapsed
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func isLine(n *html.Node) bool {
	for _, c := range lineClasses {
		if hasClass(n, c) {
			return true
		}
	}
	return false
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// attr gets the value of a specific attribute from a node
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
