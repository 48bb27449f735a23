package store

import "github.com/cayleygraph/kgl/label"

// labelSet is an insertion-ordered set of labels. The store keeps adjacency
// as sets rather than lists throughout (see design note in SPEC_FULL.md
// §4.1): this removes the implicit, scattered deduplication the reference
// implementation relied on and flattens to a slice only when a caller
// needs one, preserving discovery order for path tie-breaking along the
// way.
type labelSet struct {
	order []label.Label
	index map[label.Label]int
}

func newLabelSet() *labelSet {
	return &labelSet{index: make(map[label.Label]int)}
}

// Add inserts l if absent and reports whether it was newly added.
func (s *labelSet) Add(l label.Label) bool {
	if _, ok := s.index[l]; ok {
		return false
	}
	s.index[l] = len(s.order)
	s.order = append(s.order, l)
	return true
}

func (s *labelSet) Contains(l label.Label) bool {
	_, ok := s.index[l]
	return ok
}

func (s *labelSet) Remove(l label.Label) {
	i, ok := s.index[l]
	if !ok {
		return
	}
	delete(s.index, l)
	s.order = append(s.order[:i], s.order[i+1:]...)
	for j := i; j < len(s.order); j++ {
		s.index[s.order[j]] = j
	}
}

func (s *labelSet) Len() int { return len(s.order) }

// Slice returns the set's members in insertion order. The returned slice is
// a copy; callers may mutate it freely.
func (s *labelSet) Slice() []label.Label {
	out := make([]label.Label, len(s.order))
	copy(out, s.order)
	return out
}

// unionDedup flattens and deduplicates a list of label slices while
// preserving the order each label was first seen in.
func unionDedup(lists ...[]label.Label) []label.Label {
	seen := make(map[label.Label]struct{})
	var out []label.Label
	for _, l := range lists {
		for _, v := range l {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
