package footnote

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gardar/ocrdiff/pkg/layout"
)

// pageLines builds lines on one page at the given top coordinates
func pageLines(page int, ys ...float64) []layout.Line {
	lines := make([]layout.Line, len(ys))
	for i, y := range ys {
		lines[i] = layout.Line{
			Text: fmt.Sprintf("p%d line %d", page, i),
			BBox: layout.NewBBox(50, y, 400, y+10),
			Page: page,
		}
	}
	return lines
}

// steady returns n positions starting at y with a fixed pitch
func steady(y, pitch float64, n int) []float64 {
	ys := make([]float64, n)
	for i := range ys {
		ys[i] = y + float64(i)*pitch
	}
	return ys
}

func TestStripTwoLinePage(t *testing.T) {
	lines := []layout.Line{
		{Text: "Hello world.", BBox: layout.NewBBox(50, 100, 200, 112), Page: 1},
		{Text: "Goodbye.", BBox: layout.NewBBox(50, 114, 120, 126), Page: 1},
	}
	got := Strip(lines, DefaultConfig())
	if diff := cmp.Diff(lines, got); diff != "" {
		t.Errorf("Strip() changed a short page (-want +got):\n%s", diff)
	}
}

func TestStripNoteBlock(t *testing.T) {
	ys := steady(100, 12, 10)
	ys = append(ys, ys[9]+30, ys[9]+40, ys[9]+50)
	lines := pageLines(1, ys...)

	got := Strip(lines, DefaultConfig())
	if diff := cmp.Diff(lines[:10], got); diff != "" {
		t.Errorf("Strip() mismatch (-want +got):\n%s", diff)
	}
}

func TestStripPerPage(t *testing.T) {
	first := pageLines(1, append(steady(100, 12, 10), 250, 260)...)
	second := pageLines(2, steady(100, 12, 12)...)
	third := pageLines(3, 100, 200, 300)

	var lines []layout.Line
	lines = append(lines, first...)
	lines = append(lines, second...)
	lines = append(lines, third...)

	got := Strip(lines, DefaultConfig())

	var want []layout.Line
	want = append(want, first[:10]...)
	want = append(want, second...)
	want = append(want, third...)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Strip() mismatch (-want +got):\n%s", diff)
	}
}

func TestStripIdempotent(t *testing.T) {
	cases := [][]float64{
		append(steady(100, 12, 10), 200, 212, 224),
		append(steady(100, 12, 7), 300, 312, 324, 336),
		steady(100, 14, 20),
		{100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 150},
	}
	for i, ys := range cases {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			once := Strip(pageLines(1, ys...), DefaultConfig())
			twice := Strip(once, DefaultConfig())
			if diff := cmp.Diff(once, twice); diff != "" {
				t.Errorf("second Strip() changed output (-once +twice):\n%s", diff)
			}
		})
	}
}

func TestNoteStart(t *testing.T) {
	cfg := Config{HeaderLines: 2, MinTextLines: 3, ThresholdMultiplier: 1.5}

	tests := []struct {
		name string
		ys   []float64
		want int
	}{
		{"too short", []float64{0, 10, 20, 30}, 4},
		{"no jump", steady(0, 10, 8), 8},
		{"jump after body", []float64{0, 10, 20, 30, 40, 50, 80, 90}, 6},
		{"small jump ignored", []float64{0, 10, 20, 30, 40, 50, 64, 74}, 8},
		{"flat pitch", []float64{0, 0, 0, 0, 0, 0, 20}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NoteStart(pageLines(1, tt.ys...), cfg); got != tt.want {
				t.Errorf("NoteStart() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStripPatterns(t *testing.T) {
	patterns, err := CompilePatterns(DefaultPatterns)
	if err != nil {
		t.Fatal(err)
	}

	lines := []layout.Line{
		{Text: "Arma virumque cano, Troiae qui primus ab oris"},
		{Text: "12 codd. plerique omittunt"},
		{Text: "|| 3 Lavinia] Lavina M"},
		{Text: "42"},
		{Text: "cf. Hom. Od. 1.1"},
		{Text: "Italiam fato profugus Laviniaque venit"},
	}
	got := StripPatterns(lines, patterns)

	want := []layout.Line{lines[0], lines[5]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("StripPatterns() mismatch (-want +got):\n%s", diff)
	}

	if _, err := CompilePatterns([]string{"("}); err == nil {
		t.Error("CompilePatterns() accepted an invalid pattern")
	}
}

func TestDropLineNumbers(t *testing.T) {
	lines := []layout.Line{
		{Text: "5"},
		{Text: "10 Arma virumque cano"},
		{Text: "1234"},
		{Text: "—*—"},
		{Text: "12 apples"},
		{Text: "Troiae qui primus"},
	}
	got := DropLineNumbers(lines)

	var texts []string
	for _, l := range got {
		texts = append(texts, l.Text)
	}
	want := []string{"Arma virumque cano", "12 apples", "Troiae qui primus"}
	if diff := cmp.Diff(want, texts); diff != "" {
		t.Errorf("DropLineNumbers() mismatch (-want +got):\n%s", diff)
	}
}
