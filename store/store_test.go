package store

import (
	"math/rand"
	"testing"
)

func newTestStore() *Store {
	return New(Config{
		EnableSubstringIndex:  true,
		EnableSimilarityIndex: true,
		Rand:                  rand.New(rand.NewSource(1)),
	})
}

func TestAddAndNeighbors(t *testing.T) {
	s := newTestStore()
	if err := s.Add(DefaultNamespace, "James", "likes", "Coffee"); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(DefaultNamespace, "James", "likes", "Tea"); err != nil {
		t.Fatal(err)
	}

	got := s.NeighborsByPredicate(DefaultNamespace, "James", "likes")
	if len(got) != 2 || got[0] != "coffee" || got[1] != "tea" {
		t.Fatalf("unexpected neighbors: %+v", got)
	}

	// Symmetric: the object side also resolves the edge.
	back := s.NeighborsByPredicate(DefaultNamespace, "Coffee", "likes")
	if len(back) != 1 || back[0] != "james" {
		t.Fatalf("expected symmetric edge, got %+v", back)
	}
}

func TestNeighborsByPredicateFallback(t *testing.T) {
	s := newTestStore()
	_ = s.Add(DefaultNamespace, "Anna", "likes", "Tea")
	_ = s.Add(DefaultNamespace, "Anna", "dislikes", "Coffee")

	got := s.NeighborsByPredicate(DefaultNamespace, "Anna", "owns")
	if len(got) != 2 {
		t.Fatalf("expected fallback to all neighbors, got %+v", got)
	}
}

func TestAddListObject(t *testing.T) {
	s := newTestStore()
	if err := s.Add(DefaultNamespace, "Anna", "likes", []string{"Tea", "Coffee"}); err != nil {
		t.Fatal(err)
	}
	got := s.NeighborsByPredicate(DefaultNamespace, "Anna", "likes")
	if len(got) != 2 {
		t.Fatalf("expected 2 neighbors from list expansion, got %+v", got)
	}
}

func TestAddInvalidTripleSilent(t *testing.T) {
	s := newTestStore()
	if err := s.Add(DefaultNamespace, "", "likes", "Coffee"); err != nil {
		t.Fatalf("expected silent drop, got %v", err)
	}
	if s.Size(DefaultNamespace) != 0 {
		t.Fatal("expected no triples recorded")
	}
}

func TestAddInvalidTripleStrict(t *testing.T) {
	s := New(Config{Strict: true})
	if err := s.Add(DefaultNamespace, "", "likes", "Coffee"); err != ErrInvalidTriple {
		t.Fatalf("expected ErrInvalidTriple, got %v", err)
	}
}

func TestMostConnected(t *testing.T) {
	s := newTestStore()
	_ = s.Add(DefaultNamespace, "James", "likes", "Coffee")
	_ = s.Add(DefaultNamespace, "James", "owns", "Car")
	_ = s.Add(DefaultNamespace, "Anna", "likes", "Tea")

	l, degree, ok := s.MostConnected(DefaultNamespace)
	if !ok || l != "james" || degree != 2 {
		t.Fatalf("expected james with degree 2, got %q degree %d ok %v", l, degree, ok)
	}
}

func TestRemove(t *testing.T) {
	s := newTestStore()
	_ = s.Add(DefaultNamespace, "James", "likes", "Coffee")
	s.Remove(DefaultNamespace, "Coffee")
	if s.Has(DefaultNamespace, "Coffee") {
		t.Fatal("expected coffee to be removed from adjacency")
	}
	if s.Size(DefaultNamespace) != 0 {
		t.Fatal("expected triple log entry to be removed")
	}
}

func TestSubstringExactTokenLookup(t *testing.T) {
	s := newTestStore()
	_ = s.Add(DefaultNamespace, "Coffeehouse", "is_a", "Place")

	got := s.Substring(DefaultNamespace, "coffeehouse")
	if len(got) != 1 || got[0] != "coffeehouse" {
		t.Fatalf("expected exact token match, got %+v", got)
	}
}

func TestSubstringRejectsNonKeySubstring(t *testing.T) {
	s := newTestStore()
	_ = s.Add(DefaultNamespace, "Coffeehouse", "is_a", "Place")

	// "coffeehouse" is a single word: its only posting key is the whole
	// word itself. "house" is neither a token nor a suffix n-gram of it,
	// so it must not match, even though it is a contiguous substring.
	got := s.Substring(DefaultNamespace, "house")
	if len(got) != 0 {
		t.Fatalf("expected no match for non-key substring, got %+v", got)
	}
}

func TestSubstringSuffixNgram(t *testing.T) {
	s := newTestStore()
	_ = s.Add(DefaultNamespace, "Big Red House", "is_a", "Place")

	got := s.Substring(DefaultNamespace, "red house")
	if len(got) != 1 || got[0] != "big red house" {
		t.Fatalf("expected word-level suffix match, got %+v", got)
	}

	got = s.Substring(DefaultNamespace, "house")
	if len(got) != 1 || got[0] != "big red house" {
		t.Fatalf("expected token match on last word, got %+v", got)
	}

	// The full text is reachable through its own first token plus
	// suffixes, but "big" alone is also a valid token key.
	got = s.Substring(DefaultNamespace, "big")
	if len(got) != 1 || got[0] != "big red house" {
		t.Fatalf("expected token match on first word, got %+v", got)
	}
}

func TestSubstringOnlyIndexesSubjects(t *testing.T) {
	s := newTestStore()
	_ = s.Add(DefaultNamespace, "James", "likes", "Coffeehouse")

	// "Coffeehouse" here is an object, never a subject, so it must not
	// appear in the posting list even though it would if it were indexed.
	got := s.Substring(DefaultNamespace, "coffeehouse")
	if len(got) != 0 {
		t.Fatalf("expected object label not to be posted, got %+v", got)
	}
}

func TestSimilarResolvesToSubject(t *testing.T) {
	s := newTestStore()
	_ = s.Add(DefaultNamespace, "James", "likes", "Coffee")
	_ = s.Add(DefaultNamespace, "Anna", "likes", "Coffee2")
	_ = s.Add(DefaultNamespace, "Anna", "likes", "Tea")

	got := s.Similar(DefaultNamespace, "Coffee", 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %+v", got)
	}
	for _, l := range got {
		if l != "james" && l != "anna" {
			t.Fatalf("expected a triple subject, got %q", l)
		}
	}
}

func TestSimilarityIndexSizeMatchesTripleLog(t *testing.T) {
	s := newTestStore()
	_ = s.Add(DefaultNamespace, "James", "likes", "Coffee")
	_ = s.Add(DefaultNamespace, "Anna", "likes", "Tea")
	_ = s.Add(DefaultNamespace, "Anna", "likes", "Coffee")

	g := s.namespace(DefaultNamespace, false)
	if len(g.similarity.entries) != len(g.triples) {
		t.Fatalf("expected similarity index size %d to match triple log size %d",
			len(g.similarity.entries), len(g.triples))
	}
}

func TestRandomSubject(t *testing.T) {
	s := newTestStore()
	if _, ok := s.RandomSubject(DefaultNamespace); ok {
		t.Fatal("expected no random subject on empty namespace")
	}
	_ = s.Add(DefaultNamespace, "James", "likes", "Coffee")
	l, ok := s.RandomSubject(DefaultNamespace)
	if !ok || l != "james" {
		t.Fatalf("expected james, got %q ok %v", l, ok)
	}
}
