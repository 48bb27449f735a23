package eval

import (
	"github.com/cayleygraph/kgl/label"
	"github.com/cayleygraph/kgl/store"
)

// Kind identifies which of the evaluator's five output shapes a Result
// carries.
type Kind int

const (
	KindEmpty Kind = iota
	KindPipeline
	KindInt
	KindBool
	KindMostConnected
)

// ExpandedEntry is one element of a "subsequence" lookup or an expand
// ("!") modifier: a label paired with its own neighbor mapping.
type ExpandedEntry struct {
	Label     label.Label
	Neighbors store.NeighborMap
}

// BlockValue is the value "current" holds at the end of one block's
// evaluation. Exactly one field is populated at a time; which one
// depends on the last step the block executed (a bare node lookup
// produces Dict, a relation or enumerate/near lookup produces Set, a
// subsequence lookup or expand modifier produces Expanded, an
// interrelation produces Path).
type BlockValue struct {
	Dict     store.NeighborMap
	Set      []label.Label
	Expanded []ExpandedEntry
	Path     []store.PathStep
}

func (v BlockValue) isEmpty() bool {
	return len(v.Dict) == 0 && len(v.Set) == 0 && len(v.Expanded) == 0 && len(v.Path) == 0
}

// Labels flattens whatever shape the value holds into a label list, for
// set-algebra folding between blocks and for evaluating conditions against
// a collection of candidates. A Dict's values are deduplicated; the other
// shapes are returned in the order they hold, so a Set that repeats a label
// (as a "~" near lookup can) repeats it here too.
func (v BlockValue) Labels() []label.Label {
	switch {
	case v.Dict != nil:
		seen := make(map[label.Label]struct{})
		var out []label.Label
		for _, neighbors := range v.Dict {
			for _, l := range neighbors {
				if _, ok := seen[l]; ok {
					continue
				}
				seen[l] = struct{}{}
				out = append(out, l)
			}
		}
		return out
	case v.Expanded != nil:
		out := make([]label.Label, len(v.Expanded))
		for i, e := range v.Expanded {
			out[i] = e.Label
		}
		return out
	case v.Path != nil:
		out := make([]label.Label, len(v.Path))
		for i, s := range v.Path {
			out[i] = s.Label
		}
		return out
	default:
		return v.Set
	}
}

// MostConnectedResult is the payload of a KindMostConnected Result.
type MostConnectedResult struct {
	Label  label.Label
	Degree int
}

// Result is the evaluator's tagged-union output.
type Result struct {
	Kind   Kind
	Blocks []BlockValue
	Int    int
	Bool   bool
	Most   *MostConnectedResult
}
