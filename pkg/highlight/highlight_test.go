package highlight

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"codeberg.org/go-pdf/fpdf"
	"github.com/disintegration/imaging"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/gardar/ocrdiff/pkg/align"
	"github.com/gardar/ocrdiff/pkg/compare"
	"github.com/gardar/ocrdiff/pkg/layout"
	"github.com/gardar/ocrdiff/pkg/segment"
)

var a4 = layout.NewBBox(0, 0, 595.28, 841.89)

func samplePDF(t *testing.T, pages int) []byte {
	t.Helper()
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for i := 0; i < pages; i++ {
		doc.AddPage()
		doc.Text(72, 100, "The cat sat on the mat.")
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Logger, _ = test.NewNullLogger()
	return cfg
}

func TestApply(t *testing.T) {
	input := samplePDF(t, 2)
	boxes := []Box{
		{Page: 1, BBox: layout.NewBBox(72, 90, 200, 102), Kind: KindChanged, Label: "#1 changed 95%"},
		{Page: 2, BBox: layout.NewBBox(72, 90, 200, 102), Kind: KindDeleted, Label: "#2 Ĉu deleted"},
		{Page: 2, Kind: KindAdded, Label: "no box, skipped"},
	}
	cfg := testConfig()

	out, err := Apply(input, []layout.BBox{a4, a4}, boxes, cfg)
	if err != nil {
		t.Fatal(err)
	}

	layers, err := DetectLayers(out)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Differences (Page 1)", "Differences (Page 2)"}, layers); diff != "" {
		t.Errorf("layers mismatch (-want +got):\n%s", diff)
	}

	r, err := pdf.NewReader(bytes.NewReader(out), int64(len(out)))
	if err != nil {
		t.Fatal(err)
	}
	if r.NumPage() != 2 {
		t.Errorf("output has %d pages, want 2", r.NumPage())
	}

	if _, err := Apply(out, []layout.BBox{a4, a4}, boxes, cfg); !errors.Is(err, ErrLayerExists) {
		t.Errorf("second Apply() = %v, want ErrLayerExists", err)
	}
	cfg.Force = true
	if _, err := Apply(out, []layout.BBox{a4, a4}, boxes, cfg); err != nil {
		t.Errorf("forced Apply() = %v", err)
	}
}

func TestApplyErrors(t *testing.T) {
	cfg := testConfig()
	if _, err := Apply(nil, []layout.BBox{a4}, nil, cfg); err == nil {
		t.Error("empty input accepted")
	}
	if _, err := Apply(samplePDF(t, 1), nil, nil, cfg); err == nil {
		t.Error("missing page boxes accepted")
	}
	if _, err := Apply([]byte("%PDF-1.4 garbage"), []layout.BBox{a4}, nil, cfg); err == nil {
		t.Error("unreadable PDF accepted")
	}
}

func pngImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 20, 20))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetGray(5, 5, color.Gray{})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestAssemble(t *testing.T) {
	page := layout.NewBBox(0, 0, 200, 200)
	boxes := []Box{{Page: 1, BBox: layout.NewBBox(10, 10, 100, 30), Kind: KindAdded, Label: "#1 added"}}
	cfg := testConfig()

	out, err := Assemble([][]byte{pngImage(t)}, []layout.BBox{page}, boxes, cfg)
	if err != nil {
		t.Fatal(err)
	}
	layers, err := DetectLayers(out)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Differences (Page 1)"}, layers); diff != "" {
		t.Errorf("layers mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		name   string
		images [][]byte
		pages  []layout.BBox
	}{
		{"no pages", [][]byte{pngImage(t)}, nil},
		{"too few images", nil, []layout.BBox{page}},
		{"empty image", [][]byte{{}}, []layout.BBox{page}},
		{"not an image", [][]byte{[]byte("hello")}, []layout.BBox{page}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Assemble(tt.images, tt.pages, nil, cfg); err == nil {
				t.Error("Assemble() succeeded")
			}
		})
	}
}

func TestPageImage(t *testing.T) {
	src, err := png.Decode(bytes.NewReader(pngImage(t)))
	if err != nil {
		t.Fatal(err)
	}
	var tiff bytes.Buffer
	if err := imaging.Encode(&tiff, src, imaging.TIFF); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		data     []byte
		wantType string
		same     bool
	}{
		{"png kept", pngImage(t), "PNG", true},
		{"tiff converted", tiff.Bytes(), "PNG", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, typ, err := pageImage(tt.data)
			if err != nil {
				t.Fatal(err)
			}
			if typ != tt.wantType {
				t.Errorf("type = %q, want %q", typ, tt.wantType)
			}
			if got := bytes.Equal(data, tt.data); got != tt.same {
				t.Errorf("data unchanged = %v, want %v", got, tt.same)
			}
			conf, err := png.DecodeConfig(bytes.NewReader(data))
			if err != nil {
				t.Fatal(err)
			}
			if conf.Width != 20 || conf.Height != 20 {
				t.Errorf("size = %dx%d, want 20x20", conf.Width, conf.Height)
			}
		})
	}

	page := layout.NewBBox(0, 0, 200, 200)
	if _, err := Assemble([][]byte{tiff.Bytes()}, []layout.BBox{page}, nil, testConfig()); err != nil {
		t.Errorf("Assemble() with a TIFF scan: %v", err)
	}
}

func TestCheckExistingLayers(t *testing.T) {
	utf16Name := []byte("\xfe\xff\x00N\x00o\x00t\x00e\x00s\x00 \x00\\(\x001\x00\\)")
	tests := []struct {
		name     string
		data     []byte
		layers   []string
		has      bool
		warnings int
	}{
		{
			name:   "page layer",
			data:   []byte(`1 0 obj <</Type /OCG /Name (Differences \(Page 3\))>> endobj`),
			layers: []string{"Differences (Page 3)"},
			has:    true,
		},
		{
			name:   "bare layer",
			data:   []byte(`<</Name (Differences) /Type /OCG>>`),
			layers: []string{"Differences"},
			has:    true,
		},
		{
			name:   "utf-16 name",
			data:   append(append([]byte(`<</Type /OCG /Name (`), utf16Name...), []byte(`)>>`)...),
			layers: []string{"Notes (1)"},
		},
		{
			name:     "lookalike",
			data:     []byte(`<</Type /OCG /Name (Old diff marks)>>`),
			layers:   []string{"Old diff marks"},
			warnings: 1,
		},
		{
			name: "no layers",
			data: []byte(`%PDF-1.4`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CheckExistingLayers(tt.data, "Differences")
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.layers, got.Layers, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("layers mismatch (-want +got):\n%s", diff)
			}
			if got.HasLayer != tt.has || len(got.Warnings) != tt.warnings {
				t.Errorf("HasLayer = %v, warnings = %q", got.HasLayer, got.Warnings)
			}
		})
	}

	if _, err := CheckExistingLayers(nil, "Differences"); err == nil {
		t.Error("empty data accepted")
	}
}

func TestResultBoxes(t *testing.T) {
	unit := func(id, page int) segment.Unit {
		return segment.Unit{ID: id, Text: "x", Type: segment.TypeParagraph, Page: page,
			BBox: layout.NewBBox(72, float64(id*20), 300, float64(id*20+10))}
	}
	res := &compare.Result{
		UnitsA: []segment.Unit{unit(1, 1), unit(2, 1), unit(3, 2)},
		UnitsB: []segment.Unit{unit(1, 1), unit(2, 1), unit(3, 2)},
		Entries: []align.Entry{
			{Status: align.StatusIdentical, A: 0, B: 0, Score: 1},
			{Status: align.StatusMatched, A: 1, B: 1, Score: 0.85},
			{Status: align.StatusDeleted, A: 2, B: -1},
			{Status: align.StatusAdded, A: -1, B: 2},
		},
	}
	a, b := ResultBoxes(res)
	wantA := []Box{
		{Page: 1, BBox: res.UnitsA[1].BBox, Kind: KindChanged, Label: "#2 changed 85%"},
		{Page: 2, BBox: res.UnitsA[2].BBox, Kind: KindDeleted, Label: "#3 deleted"},
	}
	wantB := []Box{
		{Page: 1, BBox: res.UnitsB[1].BBox, Kind: KindChanged, Label: "#2 changed 85%"},
		{Page: 2, BBox: res.UnitsB[2].BBox, Kind: KindAdded, Label: "#3 added"},
	}
	if diff := cmp.Diff(wantA, a); diff != "" {
		t.Errorf("boxes of A mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantB, b); diff != "" {
		t.Errorf("boxes of B mismatch (-want +got):\n%s", diff)
	}
}

func TestToLatin1(t *testing.T) {
	got, missing := toLatin1("Þór Ĉu")
	if want := "\xde\xf3r ?u"; got != want || missing != 1 {
		t.Errorf("toLatin1() = %q, %d", got, missing)
	}
}
