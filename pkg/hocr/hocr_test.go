package hocr

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding/charmap"

	"github.com/gardar/ocrdiff/pkg/layout"
)

const sample = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd">
<html xmlns="http://www.w3.org/1999/xhtml" xml:lang="it" lang="it">
 <head>
  <title>scan</title>
  <meta http-equiv="Content-Type" content="text/html;charset=utf-8"/>
  <meta name="ocr-system" content="tesseract 5.3.0"/>
  <meta name="ocr-capabilities" content="ocr_page ocr_carea ocr_par ocr_line ocrx_word"/>
 </head>
 <body>
  <div class="ocr_page" id="page_1" title='image "p1.png"; bbox 0 0 1200 1600; ppageno 0; scan_res 144 144'>
   <div class="ocr_carea" id="block_1_1" title="bbox 100 100 1100 300">
    <p class="ocr_par" id="par_1_1" title="bbox 100 100 1100 300">
     <span class="ocr_line" id="line_1_1" title="bbox 100 100 700 140; baseline 0 -8; x_size 40">
      <span class="ocrx_word" id="word_1_1" title="bbox 100 100 300 140; x_wconf 96">Nel</span>
      <span class="ocrx_word" id="word_1_2" title="bbox 320 100 700 140; x_wconf 91">mezzo</span>
     </span>
     <span class="ocr_header" id="line_1_2" title="bbox 100 200 500 240; x_size 40">
      <span class="ocrx_word" id="word_1_3" title="bbox 100 200 500 240; x_wconf 88">Canto</span>
     </span>
    </p>
   </div>
   <span class="ocrx_word" id="word_1_9" title="bbox 100 1500 160 1530">12</span>
  </div>
  <div class="ocr_page" id="page_2" title="bbox 0 0 1200 1600">
   <span class="ocr_line" id="line_2_1" title="bbox 10 10 50 30">bare text</span>
  </div>
 </body>
</html>`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Language != "it" || doc.Title != "scan" {
		t.Errorf("language %q, title %q", doc.Language, doc.Title)
	}
	if doc.Metadata["ocr-system"] != "tesseract 5.3.0" {
		t.Errorf("metadata = %v", doc.Metadata)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(doc.Pages))
	}

	p := doc.Pages[0]
	if p.Image != "p1.png" || p.ScanRes != 144 || p.BBox != layout.NewBBox(0, 0, 1200, 1600) {
		t.Errorf("page properties = %+v", p)
	}

	var texts []string
	for _, l := range p.Lines {
		texts = append(texts, l.Text())
	}
	if diff := cmp.Diff([]string{"Nel mezzo", "Canto", "12"}, texts); diff != "" {
		t.Errorf("line texts mismatch (-want +got):\n%s", diff)
	}
	if p.Lines[0].Size != 40 || p.Lines[0].Baseline != "0 -8" {
		t.Errorf("line properties = %+v", p.Lines[0])
	}
	if p.Lines[0].Words[0].Confidence != 96 {
		t.Errorf("confidence = %v", p.Lines[0].Words[0].Confidence)
	}

	if got := doc.Pages[1].Lines[0].Text(); got != "bare text" {
		t.Errorf("bare line text = %q", got)
	}
}

func TestParseLatin1(t *testing.T) {
	src := `<html><head><meta http-equiv="Content-Type" content="text/html; charset=iso-8859-1"></head><body>` +
		`<div class="ocr_page" title="bbox 0 0 100 100"><span class="ocrx_word" title="bbox 0 0 10 10">città</span></div></body></html>`
	data, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	doc, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.Pages[0].Lines[0].Text(); got != "città" {
		t.Errorf("decoded word = %q", got)
	}
}

func TestParseNoPages(t *testing.T) {
	_, err := Parse([]byte("<html><body><p>plain</p></body></html>"))
	if !errors.Is(err, ErrNoPages) {
		t.Errorf("err = %v, want ErrNoPages", err)
	}
}

func TestParseTitle(t *testing.T) {
	got := ParseTitle("bbox 100 200 300 400; x_wconf 95;  ; baseline 0.01 -5")
	want := map[string][]string{
		"bbox":     {"100", "200", "300", "400"},
		"x_wconf":  {"95"},
		"baseline": {"0.01", "-5"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseTitle() mismatch (-want +got):\n%s", diff)
	}

	if _, ok := ParseBBox("bbox 1 2 3"); ok {
		t.Error("ParseBBox accepted three coordinates")
	}
	if _, ok := ParseBBox("bbox 1 2 x 4"); ok {
		t.Error("ParseBBox accepted a non numeric coordinate")
	}
}

func TestSpans(t *testing.T) {
	doc, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	p := doc.Pages[0]

	// 144 DPI scan: half a point per pixel
	spans := p.Spans(1, layout.BBox{})
	if len(spans) != 3 {
		t.Fatalf("got %d spans, want 3", len(spans))
	}
	want := layout.Span{Text: "Nel mezzo", BBox: layout.NewBBox(50, 50, 350, 70), FontSize: 20, Page: 1}
	if diff := cmp.Diff(want, spans[0]); diff != "" {
		t.Errorf("first span mismatch (-want +got):\n%s", diff)
	}
	// The orphan word has no line size and takes its own height
	if spans[2].FontSize != 15 {
		t.Errorf("orphan word font size = %v", spans[2].FontSize)
	}

	// Stretched onto a 600x800 point page box
	sx, sy := p.Scale(layout.NewBBox(0, 0, 600, 800))
	if sx != 0.5 || sy != 0.5 {
		t.Errorf("Scale() = %v, %v", sx, sy)
	}
	sx, sy = Page{}.Scale(layout.BBox{})
	if sx != 1 || sy != 1 {
		t.Errorf("unknown resolution Scale() = %v, %v", sx, sy)
	}
}

func TestSpansKeepNarrowWordGaps(t *testing.T) {
	// 300 DPI scan, 11pt text, word gaps of 13px (about 3pt)
	src := `<html><body>
<div class="ocr_page" title="bbox 0 0 2480 3508; scan_res 300 300">
 <span class="ocr_line" title="bbox 300 400 820 446; x_size 46">
  <span class="ocrx_word" title="bbox 300 400 372 446">Nel</span>
  <span class="ocrx_word" title="bbox 385 400 530 446">mezzo</span>
  <span class="ocrx_word" title="bbox 543 400 610 446">del</span>
  <span class="ocrx_word" title="bbox 623 400 820 446">cammin</span>
 </span>
</div></body></html>`
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	lines := layout.ReconstructPage(doc.Pages[0].Spans(1, layout.BBox{}), layout.DefaultConfig())
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if got := lines[0].Text; got != "Nel mezzo del cammin" {
		t.Errorf("line text = %q", got)
	}
}

func TestDocumentText(t *testing.T) {
	doc, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	want := "Nel mezzo\nCanto\n12\n\nbare text\n"
	if got := doc.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}
