package store

import (
	"strings"

	"github.com/cayleygraph/kgl/label"
)

// substringIndex backs the "+" (enumerate) and "++" (subsequence) node
// flags with an exact-match posting map, grounded on
// original_source/kgl/graph.py's add_node/search_index: each key is either
// a whitespace token of an indexed subject's text or one of its
// word-level suffixes (reading the subject starting from its second word
// onward). lookup is a plain map access against that key, never a
// substring or character-subsequence scan.
type substringIndex struct {
	seen     map[label.Label]struct{}
	postings map[string][]label.Label
}

func newSubstringIndex() *substringIndex {
	return &substringIndex{
		seen:     make(map[label.Label]struct{}),
		postings: make(map[string][]label.Label),
	}
}

// index posts subject under every key postingKeys derives from its text.
// A subject already indexed is skipped, so a label appearing as the
// subject of many triples is only posted once.
func (idx *substringIndex) index(subject label.Label) {
	if subject.Empty() {
		return
	}
	if _, ok := idx.seen[subject]; ok {
		return
	}
	idx.seen[subject] = struct{}{}

	for _, key := range postingKeys(string(subject)) {
		idx.postings[key] = append(idx.postings[key], subject)
	}
}

// postingKeys returns every whitespace token of text plus every
// word-level suffix of it (dropping the leading 1..len(words)-1 words),
// mirroring add_node's `for word in item.split()` plus its `ngrams` loop.
// A single-word text contributes only that one token. Each distinct key is
// returned once, so the last word (both a token and a suffix) does not post
// the subject twice.
func postingKeys(text string) []string {
	words := strings.Fields(text)
	seen := make(map[string]struct{}, 2*len(words))
	var keys []string
	add := func(k string) {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	for _, w := range words {
		add(w)
	}
	for i := 1; i < len(words); i++ {
		add(strings.Join(words[i:], " "))
	}
	return keys
}

// lookup returns every subject posted under query's exact normalized
// text.
func (idx *substringIndex) lookup(query string) []label.Label {
	q := string(label.Normalize(query))
	if q == "" {
		return nil
	}
	return idx.postings[q]
}
