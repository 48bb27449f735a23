package label

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want Label
	}{
		{"  James  ", "james"},
		{"Coffee!", "coffee"},
		{"evermore, is", "evermore is"},
		{"O'Brien's Pub.", "obriens pub"},
		{"", ""},
		{"i", "i"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestEmpty(t *testing.T) {
	if !Normalize("   ").Empty() {
		t.Fatal("expected blank input to normalize to an empty label")
	}
	if Normalize("x").Empty() {
		t.Fatal("expected non-blank input to be non-empty")
	}
}
