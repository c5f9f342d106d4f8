package layout

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func span(text string, page int, x0, y0, x1, y1 float64) Span {
	return Span{Text: text, BBox: NewBBox(x0, y0, x1, y1), FontSize: y1 - y0, Page: page}
}

func TestReconstructPage(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name  string
		spans []Span
		want  []string
	}{
		{
			name: "spans on one baseline with a wide gap",
			spans: []Span{
				span("world.", 1, 60, 100, 90, 112),
				span("Hello", 1, 20, 100, 50, 112),
			},
			want: []string{"Hello world."},
		},
		{
			name: "narrow gap concatenates",
			spans: []Span{
				span("Hel", 1, 20, 100, 35, 112),
				span("lo", 1, 37, 100, 47, 112),
			},
			want: []string{"Hello"},
		},
		{
			name: "two lines ordered top to bottom",
			spans: []Span{
				span("Goodbye.", 1, 20, 120, 70, 132),
				span("Hello world.", 1, 20, 100, 90, 112),
			},
			want: []string{"Hello world.", "Goodbye."},
		},
		{
			name: "small vertical jitter stays on the line",
			spans: []Span{
				span("a", 1, 20, 100, 30, 112),
				span("b", 1, 40, 101.5, 50, 113.5),
			},
			want: []string{"a b"},
		},
		{
			name: "zero-height span joins by its center",
			spans: []Span{
				span("word", 1, 20, 100, 60, 112),
				span("1", 1, 60, 105, 64, 105),
			},
			want: []string{"word1"},
		},
		{
			name: "whitespace-only line dropped",
			spans: []Span{
				span("   ", 1, 20, 100, 30, 112),
				span("text", 1, 20, 130, 50, 142),
			},
			want: []string{"text"},
		},
		{
			name: "no double space when span carries one",
			spans: []Span{
				span("Hello ", 1, 20, 100, 50, 112),
				span("world", 1, 60, 100, 90, 112),
			},
			want: []string{"Hello world"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := ReconstructPage(tt.spans, cfg)
			var got []string
			for _, l := range lines {
				got = append(got, l.Text)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ReconstructPage() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReconstructBBoxIsUnion(t *testing.T) {
	lines := ReconstructPage([]Span{
		span("Hello", 1, 20, 100, 50, 112),
		span("world", 1, 60, 99, 90, 113),
	}, DefaultConfig())
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	want := NewBBox(20, 99, 90, 113)
	if lines[0].BBox != want {
		t.Errorf("bbox = %+v, want %+v", lines[0].BBox, want)
	}
}

func TestReconstructOrdering(t *testing.T) {
	spans := []Span{
		span("p2 second", 2, 20, 140, 90, 152),
		span("p1 second", 1, 20, 140, 90, 152),
		span("p2 first", 2, 20, 100, 90, 112),
		span("p1 first", 1, 20, 100, 90, 112),
		span(" ", 1, 20, 160, 22, 172),
	}
	lines := Reconstruct(spans, DefaultConfig())

	want := []string{"p1 first", "p1 second", "p2 first", "p2 second"}
	var got []string
	for i, l := range lines {
		got = append(got, l.Text)
		if strings.TrimSpace(l.Text) == "" {
			t.Errorf("line %d is blank", i)
		}
		if i > 0 {
			prev := lines[i-1]
			if l.Page < prev.Page || (l.Page == prev.Page && l.BBox.Y0 < prev.BBox.Y0) {
				t.Errorf("line %d out of order: %+v after %+v", i, l, prev)
			}
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Reconstruct() mismatch (-want +got):\n%s", diff)
	}
}

func TestReconstructComposesNFC(t *testing.T) {
	lines := ReconstructPage([]Span{span("cafe\u0301", 1, 0, 0, 40, 12)}, DefaultConfig())
	if len(lines) != 1 || lines[0].Text != "caf\u00e9" {
		t.Errorf("got %+v, want composed text", lines)
	}
}

func TestFontHistogramAndFilter(t *testing.T) {
	spans := []Span{
		{Text: "a", FontSize: 12},
		{Text: "b", FontSize: 12.04},
		{Text: "c", FontSize: 8},
		{Text: "d", FontSize: 0},
	}

	h := FontHistogram(spans)
	if h[0].Size != 12 || h[0].Count != 2 {
		t.Errorf("top bucket = %+v, want 12pt x2", h[0])
	}
	if got := BodyFontSize(spans); got != 12 {
		t.Errorf("BodyFontSize() = %v, want 12", got)
	}

	filtered := FilterSmallFonts(spans, 9)
	var texts []string
	for _, s := range filtered {
		texts = append(texts, s.Text)
	}
	if diff := cmp.Diff([]string{"a", "b", "d"}, texts); diff != "" {
		t.Errorf("FilterSmallFonts() mismatch (-want +got):\n%s", diff)
	}

	cfg := DefaultConfig()
	cfg.MinFontSize = 9
	lines := ReconstructPage([]Span{
		span("body", 1, 0, 0, 40, 12),
		span("tiny", 1, 0, 50, 40, 56),
	}, cfg)
	if len(lines) != 1 || lines[0].Text != "body" {
		t.Errorf("MinFontSize not applied: %+v", lines)
	}
}

func TestBBoxJSON(t *testing.T) {
	b := NewBBox(1, 2, 3.5, 4)
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[1,2,3.5,4]" {
		t.Errorf("Marshal = %s", data)
	}

	var back BBox
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back != b {
		t.Errorf("Unmarshal = %+v, want %+v", back, b)
	}

	if err := json.Unmarshal([]byte("[1,2]"), &back); err == nil {
		t.Error("expected error for short bbox")
	}
}
