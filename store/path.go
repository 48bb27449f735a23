package store

import "github.com/cayleygraph/kgl/label"

// PathStep is one hop of a discovered path: the label arrived at, and the
// predicate of the edge used to reach it from the previous step. Predicate
// is empty for the first step, which is the path's starting label.
type PathStep struct {
	Label     label.Label
	Predicate label.Label
}

// ErrPathLimitExceeded is returned by ShortestPath when the breadth-first
// search would need to visit more labels than the caller's maxVisits
// budget allows before either finding the target or exhausting the
// reachable set.
var ErrPathLimitExceeded = errCause("store: path search exceeded visit limit")

type errCause string

func (e errCause) Error() string { return string(e) }

// ShortestPath finds the shortest path from `from` to `to` by breadth-first
// search over the symmetric adjacency graph. It replaces the reference
// implementation's unbounded depth-first search: BFS both guarantees
// shortest-path length and gives a natural, low visit count for the depth
// cap to bound.
//
// Ties among equally-short paths are broken by the order in which edges
// were originally added (see namespaceGraph.edgeOrder), so the result is
// deterministic for a given sequence of Add calls.
//
// maxVisits bounds the number of labels the search may dequeue; exceeding
// it without finding the target returns ErrPathLimitExceeded. A path that
// simply does not exist (search exhausts the reachable component under
// the cap) returns a nil step slice and a nil error.
func (s *Store) ShortestPath(ns Namespace, from, to string, maxVisits int) ([]PathStep, error) {
	g := s.namespace(ns, false)
	if g == nil {
		return nil, nil
	}
	start := label.Normalize(from)
	target := label.Normalize(to)

	g.mu.RLock()
	defer g.mu.RUnlock()

	if start == target {
		return []PathStep{{Label: start}}, nil
	}
	if _, ok := g.adjacency[start]; !ok {
		return nil, nil
	}

	cameFrom := map[label.Label]pathVisit{start: {}}
	queue := []label.Label{start}
	visited := 0

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		visited++
		if maxVisits > 0 && visited > maxVisits {
			return nil, ErrPathLimitExceeded
		}

		for _, e := range g.edgeOrder[cur] {
			if _, seen := cameFrom[e.neighbor]; seen {
				continue
			}
			cameFrom[e.neighbor] = pathVisit{label: cur, via: e.predicate}
			if e.neighbor == target {
				return reconstructPath(cameFrom, target), nil
			}
			queue = append(queue, e.neighbor)
		}
	}
	return nil, nil
}

type pathVisit struct {
	label label.Label
	via   label.Label
}

func reconstructPath(cameFrom map[label.Label]pathVisit, target label.Label) []PathStep {
	var rev []PathStep
	cur := target
	for {
		v := cameFrom[cur]
		rev = append(rev, PathStep{Label: cur, Predicate: v.via})
		if v.label == "" {
			break
		}
		cur = v.label
	}
	out := make([]PathStep, len(rev))
	for i, step := range rev {
		out[len(rev)-1-i] = step
	}
	return out
}
