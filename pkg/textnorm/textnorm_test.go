package textnorm

import (
	"testing"
	"unicode"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello world"},
		{"  The   cat\tsat.\n", "the cat sat"},
		{"a , b", "a b"},
		{"snake_case id-42", "snake_case id42"},
		{"Città È BELLA", "città è bella"},
		{"...", ""},
		{"", ""},
		{"«Arma» virumque—cano", "arma virumquecano"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, s := range []string{"Hello, World!", "  x  y ", "Ärger über Öl"} {
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", s, once, twice)
		}
	}
}

func TestMapIndex(t *testing.T) {
	original := "Hello, World!"
	normalized := Normalize(original) // "hello world"

	tests := []struct {
		k    int
		want int
	}{
		{-1, 0},
		{0, 0},
		{4, 4},
		{5, 6},  // the space after the comma
		{6, 7},  // 'w'
		{10, 11}, // 'd'
		{11, len([]rune(original))},
		{50, len([]rune(original))},
	}
	for _, tt := range tests {
		if got := MapIndex(original, normalized, tt.k); got != tt.want {
			t.Errorf("MapIndex(%d) = %d, want %d", tt.k, got, tt.want)
		}
	}
}

func TestMapIndexProperty(t *testing.T) {
	texts := []string{
		"Hello, World!",
		"  «Nel mezzo» del cammin di nostra vita,\n mi ritrovai...",
		"It's -- a   test; of (punctuation) & SPACES.",
		"Über-Straße: 12,5 % Ärger",
	}
	for _, original := range texts {
		orig := []rune(original)
		norm := []rune(Normalize(original))
		for k, r := range norm {
			if r == ' ' {
				continue
			}
			j := MapIndex(original, string(norm), k)
			if j >= len(orig) {
				t.Fatalf("%q: index %d mapped past the end", original, k)
			}
			if got := unicode.ToLower(orig[j]); got != r {
				t.Errorf("%q: original[%d] = %q, want %q (k=%d)", original, j, got, r, k)
			}
		}
	}
}

func TestMapRange(t *testing.T) {
	original := "The cat, sat."
	normalized := Normalize(original) // "the cat sat"

	from, to := MapRange(original, normalized, 4, 7)
	if got := string([]rune(original)[from:to]); got != "cat" {
		t.Errorf("MapRange(4,7) covers %q, want %q", got, "cat")
	}

	from, to = MapRange(original, normalized, 8, 11)
	if got := string([]rune(original)[from:to]); got != "sat" {
		t.Errorf("MapRange(8,11) covers %q, want %q", got, "sat")
	}

	from, to = MapRange(original, normalized, 3, 3)
	if from != to || from != 3 {
		t.Errorf("empty range mapped to [%d,%d), want [3,3)", from, to)
	}

	if _, to = MapRange(original, normalized, 8, 99); to != len([]rune(original)) {
		t.Errorf("range past the end should reach len(original), got %d", to)
	}
}
