package search

import (
	"math"
	"testing"
)

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"pump", "sump", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			if got := editDistance(tt.a, tt.b); got != tt.want {
				t.Errorf("editDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			// Distance is symmetric
			if got := editDistance(tt.b, tt.a); got != tt.want {
				t.Errorf("editDistance(%q, %q) = %d, want %d", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestSimilarity_EmptyInputs(t *testing.T) {
	if similarity("", "skimmer") != 0 {
		t.Error("empty query must score 0")
	}
	if similarity("skimmer", "") != 0 {
		t.Error("empty target must score 0")
	}
	if similarity("", "") != 0 {
		t.Error("both empty must score 0")
	}
}

func TestSimilarity_Containment(t *testing.T) {
	tests := []struct {
		name          string
		query, target string
	}{
		{"exact", "skimmer", "skimmer"},
		{"substring", "skim", "protein skimmer deluxe"},
		{"case-insensitive", "SKIMMER", "protein skimmer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := similarity(tt.query, tt.target); got != 1 {
				t.Errorf("similarity(%q, %q) = %g, want 1", tt.query, tt.target, got)
			}
		})
	}
}

func TestSimilarity_Levenshtein(t *testing.T) {
	// No containment: fall back to 1 - dist/maxLen.
	got := similarity("kitten", "sitting")
	want := 1 - 3.0/7.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("similarity = %g, want %g", got, want)
	}
}

func TestSimilarity_Bounds(t *testing.T) {
	pairs := [][2]string{
		{"a", "zzzzzzzzzz"},
		{"skimmer", "press"},
		{"flow", "rate"},
	}
	for _, p := range pairs {
		got := similarity(p[0], p[1])
		if got < 0 || got > 1 {
			t.Errorf("similarity(%q, %q) = %g, out of [0, 1]", p[0], p[1], got)
		}
	}
}
