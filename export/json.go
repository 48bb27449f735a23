package export

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/cayleygraph/kgl/store"
)

// jsonTriple mirrors one triple.Triple as plain strings for encoding.
type jsonTriple struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
}

// graphIndex is the full JSON dump shape: the triple log, the resolved
// adjacency dict per label, and the set of labels covered by the
// substring index (empty if the index isn't enabled for this store).
type graphIndex struct {
	Triples        []jsonTriple        `json:"triples"`
	Adjacency      map[string][]string `json:"adjacency"`
	SubstringIndex []string            `json:"substring_index,omitempty"`
}

// WriteJSON dumps ns's full graph index: its triple log, per-label
// adjacency (flattened across predicates, deduped, sorted), and the
// labels covered by the substring index when enabled.
func WriteJSON(w io.Writer, s *store.Store, ns store.Namespace) error {
	triples := s.Triples(ns)
	jt := make([]jsonTriple, 0, len(triples))
	for _, t := range triples {
		jt = append(jt, jsonTriple{
			Subject:   string(t.Subject),
			Predicate: string(t.Predicate),
			Object:    string(t.Object),
		})
	}

	labels := s.Labels(ns)
	adjacency := make(map[string][]string, len(labels))
	for _, l := range labels {
		neighbors := s.Neighbors(ns, string(l))
		seen := make(map[string]struct{})
		var flat []string
		for _, objs := range neighbors {
			for _, o := range objs {
				if _, ok := seen[string(o)]; ok {
					continue
				}
				seen[string(o)] = struct{}{}
				flat = append(flat, string(o))
			}
		}
		sort.Strings(flat)
		adjacency[string(l)] = flat
	}

	var substringIdx []string
	if s.SubstringIndexEnabled() {
		// Only triple subjects are posted in the substring index.
		posted := make(map[string]struct{})
		for _, t := range triples {
			if _, ok := posted[string(t.Subject)]; ok {
				continue
			}
			posted[string(t.Subject)] = struct{}{}
			substringIdx = append(substringIdx, string(t.Subject))
		}
		sort.Strings(substringIdx)
	}

	idx := graphIndex{
		Triples:        jt,
		Adjacency:      adjacency,
		SubstringIndex: substringIdx,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(idx)
}
