// Package label defines the normalized string identity used as both node
// name and hash key throughout the graph.
package label

import "strings"

// Label is a normalized, trimmed, lowercased, punctuation-stripped string.
// Normalization is applied once at ingest and once at query-time to every
// literal extracted from the AST; internal comparisons assume the value is
// already normalized.
type Label string

// punctuation mirrors Python's string.punctuation, stripped from the
// original KGL implementation's triples on add.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var stripper = strings.NewReplacer(explode(punctuation)...)

func explode(s string) []string {
	out := make([]string, 0, len(s)*2)
	for _, r := range s {
		out = append(out, string(r), "")
	}
	return out
}

// Normalize trims, lowercases and strips punctuation from s, returning the
// canonical Label form.
func Normalize(s string) Label {
	s = strings.ToLower(strings.TrimSpace(s))
	s = stripper.Replace(s)
	return Label(strings.TrimSpace(s))
}

// String satisfies fmt.Stringer.
func (l Label) String() string { return string(l) }

// Empty reports whether the label normalizes to the empty string.
func (l Label) Empty() bool { return len(l) == 0 }
