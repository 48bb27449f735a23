// Package store holds the in-memory triple store: per-namespace symmetric
// adjacency, the append-only triple log, and the optional substring and
// similarity indexes built on top of them.
package store

import (
	"math/rand"
	"sync"
	"time"

	"github.com/cayleygraph/kgl/label"
	"github.com/cayleygraph/kgl/triple"
)

// Namespace partitions the store into independent graphs, mirroring the
// reference implementation's named-graph concept ("the default graph vs.
// one loaded from a file").
type Namespace string

// DefaultNamespace is used whenever a caller does not specify one.
const DefaultNamespace Namespace = "default"

// Config controls which derived indexes a Store maintains and how its
// randomized operation (random_walk) is seeded.
type Config struct {
	// EnableSubstringIndex turns on the suffix/token index backing the
	// "+"/"++" node flags. Off by default: it roughly triples the memory
	// footprint of a namespace and most queries never need it.
	EnableSubstringIndex bool

	// EnableSimilarityIndex turns on the "~" (near) node flag's kNN index.
	EnableSimilarityIndex bool

	// Embedder overrides the default HashEmbed embedder used by the
	// similarity index. Nil selects HashEmbed with 64 dimensions.
	Embedder Embedder

	// Strict makes Add return ErrInvalidTriple instead of silently
	// dropping invalid triples. Off by default, matching the reference
	// implementation's permissive add_node.
	Strict bool

	// Rand seeds the store's random_walk subject selection (RandomSubject).
	// kNN ties are broken by insertion order, not by Rand. A nil Rand uses
	// a time-seeded source.
	Rand *rand.Rand
}

// Store is the top-level in-memory triple store. It is safe for
// concurrent use: each namespace is guarded by its own RWMutex, so
// queries against unrelated namespaces never contend.
type Store struct {
	cfg Config

	mu         sync.RWMutex
	namespaces map[Namespace]*namespaceGraph

	randMu sync.Mutex
	rand   *rand.Rand
}

// namespaceGraph is the per-namespace state: symmetric adjacency, the
// triple log, first-seen order for tie-breaking, and derived indexes. A
// single RWMutex guards all of it -- the index set here is far smaller
// than cayley's sharded quadstore, so the split-lock style of
// graph/memstore/quadstore.go isn't warranted.
type namespaceGraph struct {
	mu sync.RWMutex

	// adjacency[x][p] is the set of labels y such that the triple (x, p, y)
	// or (y, p, x) was added -- i.e. adjacency is maintained symmetrically,
	// so a lookup from either endpoint of an edge finds it.
	adjacency map[label.Label]map[label.Label]*labelSet

	// edgeOrder records, per label, the (predicate, neighbor) pairs first
	// reached from it in the order they were added -- adjacency's map
	// iteration order is randomized, but the path finder needs a
	// deterministic enumeration order to break ties reproducibly.
	edgeOrder map[label.Label][]edge

	triples   []triple.Triple
	firstSeen map[label.Label]int

	substring  *substringIndex
	similarity *similarityIndex
}

// New constructs an empty Store.
func New(cfg Config) *Store {
	r := cfg.Rand
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Store{
		cfg:        cfg,
		namespaces: make(map[Namespace]*namespaceGraph),
		rand:       r,
	}
}

func (s *Store) namespace(ns Namespace, create bool) *namespaceGraph {
	s.mu.RLock()
	g, ok := s.namespaces[ns]
	s.mu.RUnlock()
	if ok {
		return g
	}
	if !create {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.namespaces[ns]; ok {
		return g
	}
	g = &namespaceGraph{
		adjacency: make(map[label.Label]map[label.Label]*labelSet),
		edgeOrder: make(map[label.Label][]edge),
		firstSeen: make(map[label.Label]int),
	}
	if s.cfg.EnableSubstringIndex {
		g.substring = newSubstringIndex()
	}
	if s.cfg.EnableSimilarityIndex {
		g.similarity = newSimilarityIndex(s.cfg.Embedder)
	}
	s.namespaces[ns] = g
	return g
}

// SubstringIndexEnabled reports whether this store builds substring
// indexes, independent of whether any given namespace has data yet.
func (s *Store) SubstringIndexEnabled() bool { return s.cfg.EnableSubstringIndex }

// SimilarityIndexEnabled reports whether this store builds similarity
// indexes, independent of whether any given namespace has data yet.
func (s *Store) SimilarityIndexEnabled() bool { return s.cfg.EnableSimilarityIndex }

// Namespaces returns the set of namespaces that currently hold data, in no
// particular order.
func (s *Store) Namespaces() []Namespace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Namespace, 0, len(s.namespaces))
	for ns := range s.namespaces {
		out = append(out, ns)
	}
	return out
}

// Add validates, normalizes and records a triple. object may be a string
// for a single edge or a []string for the list-valued form, which expands
// to one edge per element sharing subject and predicate.
//
// An invalid triple is dropped silently unless Config.Strict is set, in
// which case ErrInvalidTriple is returned.
func (s *Store) Add(ns Namespace, subject, predicate string, object interface{}) error {
	var triples []triple.Triple
	var err error
	switch o := object.(type) {
	case string:
		var t triple.Triple
		t, err = triple.New(subject, predicate, o)
		if err == nil {
			triples = []triple.Triple{t}
		}
	case []string:
		triples, err = triple.Expand(subject, predicate, o)
	default:
		err = ErrInvalidTriple
	}
	if err != nil {
		if s.cfg.Strict {
			return ErrInvalidTriple
		}
		return nil
	}

	g := s.namespace(ns, true)
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, t := range triples {
		g.addOne(t)
	}
	return nil
}

func (g *namespaceGraph) addOne(t triple.Triple) {
	g.touch(t.Subject)
	g.touch(t.Object)
	g.link(t.Subject, t.Predicate, t.Object)
	g.link(t.Object, t.Predicate, t.Subject)
	g.triples = append(g.triples, t)
	if g.substring != nil {
		// Only the subject is posted: a posting list must contain only
		// labels that actually exist as a subject in the triple log, per
		// original_source/kgl/graph.py's add_node, which indexes `item`
		// (the subject) and never `value`/`val` (the object).
		g.substring.index(t.Subject)
	}
	if g.similarity != nil {
		g.similarity.index(t.Subject, t.Object)
	}
}

func (g *namespaceGraph) touch(l label.Label) {
	if _, ok := g.firstSeen[l]; !ok {
		g.firstSeen[l] = len(g.firstSeen)
	}
}

// edge is one (predicate, neighbor) pair reachable from some label.
type edge struct {
	predicate label.Label
	neighbor  label.Label
}

func (g *namespaceGraph) link(from, predicate, to label.Label) {
	byPred, ok := g.adjacency[from]
	if !ok {
		byPred = make(map[label.Label]*labelSet)
		g.adjacency[from] = byPred
	}
	set, ok := byPred[predicate]
	if !ok {
		set = newLabelSet()
		byPred[predicate] = set
	}
	if set.Add(to) {
		g.edgeOrder[from] = append(g.edgeOrder[from], edge{predicate: predicate, neighbor: to})
	}
}

// Remove deletes every edge touching label from the namespace's adjacency
// and its entry in the triple log. Derived indexes are left untouched: a
// removed label's tokens may still appear in the substring index and its
// vector in the similarity index, matching the reference implementation's
// own behavior of never compacting those structures on delete.
func (s *Store) Remove(ns Namespace, l string) {
	g := s.namespace(ns, false)
	if g == nil {
		return
	}
	target := label.Normalize(l)
	g.mu.Lock()
	defer g.mu.Unlock()

	for other, byPred := range g.adjacency {
		if other == target {
			continue
		}
		for p, set := range byPred {
			set.Remove(target)
			if set.Len() == 0 {
				delete(byPred, p)
			}
		}
		kept := g.edgeOrder[other][:0]
		for _, e := range g.edgeOrder[other] {
			if e.neighbor != target {
				kept = append(kept, e)
			}
		}
		g.edgeOrder[other] = kept
		if len(byPred) == 0 {
			delete(g.adjacency, other)
			delete(g.edgeOrder, other)
		}
	}
	delete(g.adjacency, target)
	delete(g.edgeOrder, target)

	kept := g.triples[:0]
	for _, t := range g.triples {
		if t.Subject == target || t.Object == target {
			continue
		}
		kept = append(kept, t)
	}
	g.triples = kept
}

// NeighborMap is a predicate-keyed view of a label's edges, each value
// deduplicated and in first-insertion order.
type NeighborMap map[label.Label][]label.Label

// Neighbors returns every predicate->neighbor-set edge recorded for label,
// from either endpoint (adjacency is symmetric).
func (s *Store) Neighbors(ns Namespace, l string) NeighborMap {
	g := s.namespace(ns, false)
	if g == nil {
		return nil
	}
	target := label.Normalize(l)
	g.mu.RLock()
	defer g.mu.RUnlock()
	byPred, ok := g.adjacency[target]
	if !ok {
		return nil
	}
	out := make(NeighborMap, len(byPred))
	for p, set := range byPred {
		out[p] = set.Slice()
	}
	return out
}

// NeighborsByPredicate returns the neighbors of label reachable by
// predicate. If predicate is empty or no edge with that predicate exists,
// it falls back to the union of every neighbor of label across all
// predicates -- the reference implementation's get_nodes_by_connection
// fallback, preserved here deliberately rather than treated as a bug.
func (s *Store) NeighborsByPredicate(ns Namespace, l, predicate string) []label.Label {
	g := s.namespace(ns, false)
	if g == nil {
		return nil
	}
	target := label.Normalize(l)
	pred := label.Normalize(predicate)
	g.mu.RLock()
	defer g.mu.RUnlock()
	byPred, ok := g.adjacency[target]
	if !ok {
		return nil
	}
	if !pred.Empty() {
		if set, ok := byPred[pred]; ok {
			return set.Slice()
		}
	}
	lists := make([][]label.Label, 0, len(byPred))
	for _, set := range byPred {
		lists = append(lists, set.Slice())
	}
	return unionDedup(lists...)
}

// Has reports whether label has any recorded edge in the namespace.
func (s *Store) Has(ns Namespace, l string) bool {
	g := s.namespace(ns, false)
	if g == nil {
		return false
	}
	target := label.Normalize(l)
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.adjacency[target]
	return ok
}

// Labels returns every label with at least one recorded edge, in
// first-insertion order.
func (s *Store) Labels(ns Namespace) []label.Label {
	g := s.namespace(ns, false)
	if g == nil {
		return nil
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]label.Label, 0, len(g.firstSeen))
	for _, l := range orderedLabels(g.firstSeen) {
		if _, ok := g.adjacency[l]; ok {
			out = append(out, l)
		}
	}
	return out
}

// MostConnected returns the label with the largest number of distinct
// predicates attached to it, ties broken by first-insertion order. ok is
// false when the namespace is empty.
func (s *Store) MostConnected(ns Namespace) (l label.Label, degree int, ok bool) {
	g := s.namespace(ns, false)
	if g == nil {
		return "", 0, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	best := -1
	for _, candidate := range orderedLabels(g.firstSeen) {
		d := len(g.adjacency[candidate])
		if d > best {
			best = d
			l = candidate
			ok = true
		}
	}
	degree = best
	return
}

func orderedLabels(firstSeen map[label.Label]int) []label.Label {
	out := make([]label.Label, len(firstSeen))
	for l, i := range firstSeen {
		out[i] = l
	}
	return out
}

// Triples returns the namespace's append-only triple log in insertion
// order. The returned slice must not be mutated.
func (s *Store) Triples(ns Namespace) []triple.Triple {
	g := s.namespace(ns, false)
	if g == nil {
		return nil
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.triples
}

// Size returns the number of recorded triples in the namespace.
func (s *Store) Size(ns Namespace) int {
	g := s.namespace(ns, false)
	if g == nil {
		return 0
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.triples)
}

// RandomSubject draws a uniformly random subject from the namespace's
// triple log, for the random_walk query form. ok is false on an empty
// namespace.
func (s *Store) RandomSubject(ns Namespace) (l label.Label, ok bool) {
	g := s.namespace(ns, false)
	if g == nil {
		return "", false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if len(g.triples) == 0 {
		return "", false
	}
	s.randMu.Lock()
	i := s.rand.Intn(len(g.triples))
	s.randMu.Unlock()
	return g.triples[i].Subject, true
}

// Substring returns every subject posted under query's exact normalized
// text -- a whitespace token or word-level suffix match, per
// substringIndex -- or nil if the namespace has no substring index
// enabled.
func (s *Store) Substring(ns Namespace, query string) []label.Label {
	g := s.namespace(ns, false)
	if g == nil || g.substring == nil {
		return nil
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.substring.lookup(query)
}

// Similar returns the k labels whose indexed embedding is closest to
// label's, or nil if the namespace has no similarity index enabled.
func (s *Store) Similar(ns Namespace, l string, k int) []label.Label {
	g := s.namespace(ns, false)
	if g == nil || g.similarity == nil {
		return nil
	}
	target := label.Normalize(l)
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.similarity.knn(target, k)
}
