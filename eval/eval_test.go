package eval

import (
	"context"
	"strings"
	"testing"

	"github.com/cayleygraph/kgl/store"
)

func newTestEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	s := store.New(store.Config{})
	if err := s.Add(store.DefaultNamespace, "James", "Likes", "Coffee"); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(store.DefaultNamespace, "Anna", "Likes", "Tea"); err != nil {
		t.Fatal(err)
	}
	return New(s)
}

func TestEvaluateNodeLookup(t *testing.T) {
	e := newTestEvaluator(t)
	res, elapsed, err := e.Evaluate(context.Background(), "{ James }")
	if err != nil {
		t.Fatal(err)
	}
	if elapsed <= 0 {
		t.Fatal("expected positive elapsed duration")
	}
	if res.Kind != KindPipeline || len(res.Blocks) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	likes := res.Blocks[0].Dict["likes"]
	if len(likes) != 1 || likes[0] != "coffee" {
		t.Fatalf("expected {likes: [coffee]}, got %+v", res.Blocks[0].Dict)
	}
}

func TestEvaluateRelation(t *testing.T) {
	e := newTestEvaluator(t)
	res, _, err := e.Evaluate(context.Background(), "{ James -> Likes }")
	if err != nil {
		t.Fatal(err)
	}
	set := res.Blocks[0].Set
	if len(set) != 1 || set[0] != "coffee" {
		t.Fatalf("expected [coffee], got %+v", set)
	}
}

func TestEvaluateCountModifier(t *testing.T) {
	e := newTestEvaluator(t)
	res, _, err := e.Evaluate(context.Background(), "{ James -> Likes }#")
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != KindInt || res.Int != 1 {
		t.Fatalf("expected count 1, got %+v", res)
	}
}

func TestEvaluateExistsModifier(t *testing.T) {
	e := newTestEvaluator(t)
	res, _, err := e.Evaluate(context.Background(), "{ James -> Likes }?")
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != KindBool || !res.Bool {
		t.Fatalf("expected true, got %+v", res)
	}
}

func TestEvaluateInterrelation(t *testing.T) {
	e := newTestEvaluator(t)
	res, _, err := e.Evaluate(context.Background(), "{ James <-> Coffee }")
	if err != nil {
		t.Fatal(err)
	}
	path := res.Blocks[0].Path
	if len(path) != 2 || path[0].Label != "james" || path[1].Label != "coffee" || path[1].Predicate != "likes" {
		t.Fatalf("unexpected path: %+v", path)
	}
}

func TestEvaluateUnion(t *testing.T) {
	e := newTestEvaluator(t)
	res, _, err := e.Evaluate(context.Background(), "{ James -> Likes } + { Anna -> Likes }")
	if err != nil {
		t.Fatal(err)
	}
	set := res.Blocks[0].Set
	if len(set) != 2 {
		t.Fatalf("expected union of 2 labels, got %+v", set)
	}
}

func TestEvaluateIntersectionEmpty(t *testing.T) {
	e := newTestEvaluator(t)
	res, _, err := e.Evaluate(context.Background(), "{ James -> Likes } INTERSECTION { Anna -> Likes }")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Blocks[0].Set) != 0 {
		t.Fatalf("expected empty intersection, got %+v", res.Blocks[0].Set)
	}
}

func TestEvaluateCommaTripleInsertThenQuery(t *testing.T) {
	e := newTestEvaluator(t)
	if _, _, err := e.Evaluate(context.Background(), "{evermore, is, amazing}"); err != nil {
		t.Fatal(err)
	}
	res, _, err := e.Evaluate(context.Background(), "{ evermore }")
	if err != nil {
		t.Fatal(err)
	}
	is := res.Blocks[0].Dict["is"]
	if len(is) != 1 || is[0] != "amazing" {
		t.Fatalf("expected {is: [amazing]}, got %+v", res.Blocks[0].Dict)
	}
}

func TestEvaluateDepthExceeded(t *testing.T) {
	s := store.New(store.Config{})
	// A self-loop so every "-> is" hop resolves instead of failing on a
	// missing property before the depth cap is ever reached.
	if err := s.Add(store.DefaultNamespace, "coffee", "is", "coffee"); err != nil {
		t.Fatal(err)
	}
	e := New(s)
	e.MaxDepth = 50

	q := "{ " + strings.Repeat("coffee -> is -> ", 60) + "coffee }"
	_, _, err := e.Evaluate(context.Background(), q)
	if err != ErrQueryDepthExceeded {
		t.Fatalf("expected ErrQueryDepthExceeded, got %v", err)
	}
}

func TestEvaluateMissingPropertyLeafError(t *testing.T) {
	e := newTestEvaluator(t)
	_, _, err := e.Evaluate(context.Background(), "{ James -> Owns }")
	if err == nil {
		t.Fatal("expected a missing property error")
	}
	if _, ok := err.(*MissingPropertyError); !ok {
		t.Fatalf("expected *MissingPropertyError, got %T", err)
	}
}

func TestEvaluateRootMissingPropertySilent(t *testing.T) {
	e := newTestEvaluator(t)
	res, _, err := e.Evaluate(context.Background(), "{ Unknown }")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Blocks[0].Dict) != 0 {
		t.Fatalf("expected empty dict for unknown root node, got %+v", res.Blocks[0].Dict)
	}
}

func TestEvaluateMostConnected(t *testing.T) {
	e := newTestEvaluator(t)
	res, _, err := e.Evaluate(context.Background(), "*")
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != KindMostConnected || res.Most.Label != "james" {
		t.Fatalf("unexpected most connected result: %+v", res)
	}
}

func TestEvaluateCountAll(t *testing.T) {
	e := newTestEvaluator(t)
	res, _, err := e.Evaluate(context.Background(), "#")
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != KindInt || res.Int != 4 {
		t.Fatalf("expected total degree 4 (2 symmetric edges), got %+v", res)
	}
}

func TestEvaluateCountAllCountsPredicatesNotEdges(t *testing.T) {
	s := store.New(store.Config{})
	if err := s.Add(store.DefaultNamespace, "James", "Likes", []string{"Coffee", "Tea"}); err != nil {
		t.Fatal(err)
	}
	e := New(s)
	res, _, err := e.Evaluate(context.Background(), "#")
	if err != nil {
		t.Fatal(err)
	}
	// James has exactly one predicate ("likes") even though it points at
	// two objects; Coffee and Tea each have exactly one predicate
	// ("likes") back to James. The correct total is 3 distinct predicates,
	// not the 4 edges a sum-of-neighbor-set-sizes count would produce.
	if res.Kind != KindInt || res.Int != 3 {
		t.Fatalf("expected total predicate count 3, got %+v", res)
	}
}

func TestEvaluateEnumerateExactKeyOnly(t *testing.T) {
	s := store.New(store.Config{EnableSubstringIndex: true})
	if err := s.Add(store.DefaultNamespace, "Coffeehouse", "is_a", "Place"); err != nil {
		t.Fatal(err)
	}
	e := New(s)

	res, _, err := e.Evaluate(context.Background(), "{ coffeehouse+ }")
	if err != nil {
		t.Fatal(err)
	}
	set := res.Blocks[0].Set
	if len(set) != 1 || set[0] != "coffeehouse" {
		t.Fatalf("expected exact token match on coffeehouse, got %+v", set)
	}

	// "house" is a contiguous substring of "coffeehouse" but neither a
	// whitespace token nor a word-level suffix of it, so it must not
	// match.
	res, _, err = e.Evaluate(context.Background(), "{ house+ }")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Blocks[0].Set) != 0 {
		t.Fatalf("expected no match for non-key substring, got %+v", res.Blocks[0].Set)
	}
}

func TestEvaluateSubsequenceExpandsExactMatches(t *testing.T) {
	s := store.New(store.Config{EnableSubstringIndex: true})
	if err := s.Add(store.DefaultNamespace, "Big Red House", "is_a", "Place"); err != nil {
		t.Fatal(err)
	}
	e := New(s)

	res, _, err := e.Evaluate(context.Background(), "{ house++ }")
	if err != nil {
		t.Fatal(err)
	}
	expanded := res.Blocks[0].Expanded
	if len(expanded) != 1 || expanded[0].Label != "big red house" {
		t.Fatalf("expected expanded match on big red house, got %+v", expanded)
	}
	// "is_a" normalizes to "isa": underscore is punctuation, stripped on
	// ingest, matching string.punctuation's own inclusion of '_'.
	if expanded[0].Neighbors["isa"][0] != "place" {
		t.Fatalf("expected isa: place, got %+v", expanded[0].Neighbors)
	}
}

func TestEvaluateRandomWalk(t *testing.T) {
	e := newTestEvaluator(t)
	res, _, err := e.Evaluate(context.Background(), "{}")
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != KindPipeline || len(res.Blocks) != 1 {
		t.Fatalf("expected a single-block pipeline from random walk, got %+v", res)
	}
}
