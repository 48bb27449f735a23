// Package eval walks a parsed KGL query against a store.Store, producing
// one of the five result shapes described by the grammar's evaluation
// rules.
package eval

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	"github.com/cayleygraph/kgl/klog"
	"github.com/cayleygraph/kgl/label"
	"github.com/cayleygraph/kgl/lang"
	"github.com/cayleygraph/kgl/lang/ast"
	"github.com/cayleygraph/kgl/store"
)

// DefaultMaxDepth is the query depth cap used when Evaluator.MaxDepth is
// left at its zero value.
const DefaultMaxDepth = 50

// existsAnySampleSize bounds the brute-force sampling ExistsAny performs.
const existsAnySampleSize = 1000

// knnDefaultK is the number of neighbors a "~" near-flagged node requests
// from the similarity index.
const knnDefaultK = 3

// Evaluator walks a parsed AST against a *store.Store.
type Evaluator struct {
	Store *store.Store

	// MaxDepth bounds the number of step invocations a single Evaluate
	// call may perform. Zero selects DefaultMaxDepth.
	MaxDepth int

	// Rand seeds ExistsAny sampling. A nil Rand uses a time-seeded source.
	// RandomWalk draws its subject from the store, seeded by the store's
	// own Config.Rand.
	Rand *rand.Rand
}

// New constructs an Evaluator over s with default depth and a
// time-seeded random source.
func New(s *store.Store) *Evaluator {
	return &Evaluator{Store: s}
}

func (e *Evaluator) maxDepth() int {
	if e.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return e.MaxDepth
}

func (e *Evaluator) rng() *rand.Rand {
	if e.Rand == nil {
		e.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return e.Rand
}

// Evaluate parses and runs query against namespace (store.DefaultNamespace
// when blocks don't override it via a graph prefix), returning the result,
// the elapsed wall time, and any error.
func (e *Evaluator) Evaluate(ctx context.Context, query string) (Result, time.Duration, error) {
	start := time.Now()
	node, err := lang.Parse(query)
	if err != nil {
		return Result{}, time.Since(start), err
	}
	res, err := e.evalNode(ctx, node)
	return res, time.Since(start), err
}

type evalState struct {
	ctx      context.Context
	steps    int
	maxDepth int
}

func (s *evalState) tick() error {
	s.steps++
	if s.steps > s.maxDepth {
		return ErrQueryDepthExceeded
	}
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return nil
	}
}

func (e *Evaluator) evalNode(ctx context.Context, node ast.Node) (Result, error) {
	st := &evalState{ctx: ctx, maxDepth: e.maxDepth()}

	switch n := node.(type) {
	case ast.Empty:
		return Result{Kind: KindPipeline}, nil

	case ast.RandomWalk:
		subj, ok := e.Store.RandomSubject(store.DefaultNamespace)
		if !ok {
			return Result{Kind: KindPipeline}, nil
		}
		block := ast.Block{Steps: []ast.Step{ast.StepNode{Label: string(subj)}}}
		bv, err := e.evalBlock(st, block)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: KindPipeline, Blocks: []BlockValue{bv}}, nil

	case ast.CountAll:
		return Result{Kind: KindInt, Int: e.countAll(store.DefaultNamespace)}, nil

	case ast.ExistsAny:
		return Result{Kind: KindBool, Bool: e.existsAny(store.DefaultNamespace)}, nil

	case ast.MostConnected:
		l, degree, ok := e.Store.MostConnected(store.DefaultNamespace)
		if !ok {
			return Result{Kind: KindMostConnected, Most: &MostConnectedResult{}}, nil
		}
		return Result{Kind: KindMostConnected, Most: &MostConnectedResult{Label: l, Degree: degree}}, nil

	case ast.CommaTriple:
		_ = e.Store.Add(store.DefaultNamespace, n.Subject, n.Predicate, n.Object)
		return Result{Kind: KindPipeline}, nil

	case ast.Pipeline:
		return e.evalPipeline(st, n)

	default:
		return Result{Kind: KindPipeline}, nil
	}
}

func (e *Evaluator) evalPipeline(st *evalState, p ast.Pipeline) (Result, error) {
	values := make([]BlockValue, len(p.Blocks))
	modifiers := make([]ast.Modifier, len(p.Blocks))
	for i, b := range p.Blocks {
		v, err := e.evalBlock(st, b)
		if err != nil {
			return Result{}, err
		}
		values[i] = v
		modifiers[i] = b.Modifier
	}

	if len(p.Ops) == 0 {
		if len(values) == 1 {
			switch modifiers[0] {
			case ast.ModCount:
				return Result{Kind: KindInt, Int: len(values[0].Labels())}, nil
			case ast.ModExists:
				return Result{Kind: KindBool, Bool: !values[0].isEmpty()}, nil
			}
		}
		return Result{Kind: KindPipeline, Blocks: values}, nil
	}

	folded := values[0].Labels()
	for i, op := range p.Ops {
		folded = foldOperand(op, folded, values[i+1].Labels())
	}
	return Result{Kind: KindPipeline, Blocks: []BlockValue{{Set: folded}}}, nil
}

func foldOperand(op ast.Operand, a, b []label.Label) []label.Label {
	switch op {
	case ast.OpUnion:
		return unionLabels(a, b)
	case ast.OpDifference:
		return differenceLabels(a, b)
	case ast.OpIntersection:
		return intersectionLabels(a, b)
	default:
		return a
	}
}

func unionLabels(a, b []label.Label) []label.Label {
	seen := make(map[label.Label]struct{}, len(a)+len(b))
	var out []label.Label
	for _, l := range append(append([]label.Label{}, a...), b...) {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

func differenceLabels(a, b []label.Label) []label.Label {
	exclude := make(map[label.Label]struct{}, len(b))
	for _, l := range b {
		exclude[l] = struct{}{}
	}
	var out []label.Label
	for _, l := range a {
		if _, ok := exclude[l]; !ok {
			out = append(out, l)
		}
	}
	return out
}

func intersectionLabels(a, b []label.Label) []label.Label {
	in := make(map[label.Label]struct{}, len(b))
	for _, l := range b {
		in[l] = struct{}{}
	}
	var out []label.Label
	for _, l := range a {
		if _, ok := in[l]; ok {
			out = append(out, l)
		}
	}
	return out
}

// countAll sums, over every label, the number of distinct predicates
// attached to it (spec.md §4.6: "sum of len(neighbors(x))", grounded on
// original_source/kgl/graph.py's `sum(len(get_nodes(item)) ...)`, where
// get_nodes(item) is a dict keyed by predicate). It is not a count of
// edges: a node with one predicate pointing at a list of ten objects
// still contributes 1, not 10.
func (e *Evaluator) countAll(ns store.Namespace) int {
	total := 0
	for _, l := range e.Store.Labels(ns) {
		neighbors := e.Store.Neighbors(ns, string(l))
		total += len(neighbors)
	}
	return total
}

func (e *Evaluator) existsAny(ns store.Namespace) bool {
	labels := e.Store.Labels(ns)
	if len(labels) < 2 {
		return false
	}
	r := e.rng()
	for i := 0; i < existsAnySampleSize; i++ {
		a := labels[r.Intn(len(labels))]
		b := labels[r.Intn(len(labels))]
		if a == b {
			continue
		}
		path, err := e.Store.ShortestPath(ns, string(a), string(b), e.maxDepth())
		if err != nil {
			continue
		}
		if path != nil {
			return true
		}
	}
	return false
}

// namespaceOf resolves a block's effective namespace.
func namespaceOf(b ast.Block) store.Namespace {
	if b.Graph != nil {
		return store.Namespace(*b.Graph)
	}
	return store.DefaultNamespace
}

func (e *Evaluator) evalBlock(st *evalState, b ast.Block) (BlockValue, error) {
	ns := namespaceOf(b)
	if len(b.Steps) == 0 {
		return applyModifier(e.Store, ns, BlockValue{}, b.Modifier), nil
	}

	first, ok := b.Steps[0].(ast.StepNode)
	if !ok {
		return BlockValue{}, &MissingPropertyError{Property: "block must begin with a node"}
	}
	if err := st.tick(); err != nil {
		return BlockValue{}, err
	}

	cur, lastLabel, err := e.evalFirstNode(ns, first)
	if err != nil {
		return BlockValue{}, err
	}
	cur, err = applyConditions(e.Store, ns, cur, first.Conditions)
	if err != nil {
		return BlockValue{}, err
	}

	i := 1
	for i < len(b.Steps) {
		connector := b.Steps[i]
		i++
		if i >= len(b.Steps) {
			break
		}
		node, ok := b.Steps[i].(ast.StepNode)
		if !ok {
			return BlockValue{}, &MissingPropertyError{Property: "relation/interrelation must be followed by a node"}
		}
		i++

		if err := st.tick(); err != nil {
			return BlockValue{}, err
		}

		switch connector.(type) {
		case ast.StepRelation:
			predicate := label.Normalize(node.Label)
			cur, err = applyRelation(e.Store, ns, cur, predicate)
			if err != nil {
				return BlockValue{}, err
			}
			lastLabel = predicate
		case ast.StepInterrelation:
			second := label.Normalize(node.Label)
			path, perr := e.Store.ShortestPath(ns, string(lastLabel), string(second), e.maxDepth())
			if perr != nil {
				return BlockValue{}, perr
			}
			cur = BlockValue{Path: path}
			lastLabel = second
		}

		cur, err = applyConditions(e.Store, ns, cur, node.Conditions)
		if err != nil {
			return BlockValue{}, err
		}
	}

	return applyModifier(e.Store, ns, cur, b.Modifier), nil
}

// evalFirstNode resolves the first node of a block: a plain label lookup,
// or a near/enumerate/subsequence override when the node carries one of
// those flags and the backing index is available.
func (e *Evaluator) evalFirstNode(ns store.Namespace, n ast.StepNode) (BlockValue, label.Label, error) {
	l := label.Normalize(n.Label)

	if n.Near {
		if !e.Store.SimilarityIndexEnabled() {
			klog.Warningf("near search is not allowed without similarity index; ignoring '~' on %q", n.Label)
		} else {
			return BlockValue{Set: e.Store.Similar(ns, string(l), knnDefaultK)}, l, nil
		}
	}
	if n.Subsequence {
		if !e.Store.SubstringIndexEnabled() {
			klog.Warningf("subsequence and enumerate options are not allowed without substring search; ignoring '++' on %q", n.Label)
		} else {
			matches := e.Store.Substring(ns, string(l))
			entries := make([]ExpandedEntry, len(matches))
			for i, m := range matches {
				entries[i] = ExpandedEntry{Label: m, Neighbors: e.Store.Neighbors(ns, string(m))}
			}
			return BlockValue{Expanded: entries}, l, nil
		}
	}
	if n.Enumerate {
		if !e.Store.SubstringIndexEnabled() {
			klog.Warningf("subsequence and enumerate options are not allowed without substring search; ignoring '+' on %q", n.Label)
		} else {
			return BlockValue{Set: dedupeLabels(e.Store.Substring(ns, string(l)))}, l, nil
		}
	}

	return BlockValue{Dict: e.Store.Neighbors(ns, string(l))}, l, nil
}

func dedupeLabels(in []label.Label) []label.Label {
	seen := make(map[label.Label]struct{}, len(in))
	var out []label.Label
	for _, l := range in {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// applyRelation implements step 2 of spec.md §4.6: when current is a set
// of candidates, each is resolved through the store's forgiving
// neighbors_by_predicate (silent fallback to all neighbors on a missing
// predicate); when current is the root node's own neighbor dict, the
// predicate is looked up directly and a miss raises MissingPropertyError.
func applyRelation(s *store.Store, ns store.Namespace, cur BlockValue, predicate label.Label) (BlockValue, error) {
	if cur.Dict != nil {
		neighbors, ok := cur.Dict[predicate]
		if !ok {
			return BlockValue{}, &MissingPropertyError{Property: string(predicate)}
		}
		return BlockValue{Set: append([]label.Label{}, neighbors...)}, nil
	}

	members := cur.Labels()
	var lists [][]label.Label
	for _, m := range members {
		lists = append(lists, s.NeighborsByPredicate(ns, string(m), string(predicate)))
	}
	return BlockValue{Set: flattenDedup(lists)}, nil
}

func flattenDedup(lists [][]label.Label) []label.Label {
	seen := make(map[label.Label]struct{})
	var out []label.Label
	for _, list := range lists {
		for _, l := range list {
			if _, ok := seen[l]; ok {
				continue
			}
			seen[l] = struct{}{}
			out = append(out, l)
		}
	}
	return out
}

// applyConditions implements step 4 of spec.md §4.6.
func applyConditions(s *store.Store, ns store.Namespace, cur BlockValue, conds []ast.Condition) (BlockValue, error) {
	for _, c := range conds {
		var err error
		cur, err = applyCondition(s, ns, cur, c)
		if err != nil {
			return BlockValue{}, err
		}
	}
	return cur, nil
}

func applyCondition(s *store.Store, ns store.Namespace, cur BlockValue, c ast.Condition) (BlockValue, error) {
	term1 := label.Normalize(c.Term1)

	// Singleton dict: the condition is checked once, against the node's
	// own neighbor mapping, rather than filtering a candidate list.
	if cur.Dict != nil {
		values, ok := cur.Dict[term1]
		if !ok || len(values) == 0 {
			return BlockValue{}, nil
		}
		if compareLabel(values[0], c.Comp, c.Term2) {
			return cur, nil
		}
		return BlockValue{}, nil
	}

	candidates := cur.Labels()
	var kept []label.Label
	for _, cand := range candidates {
		neighbors := s.Neighbors(ns, string(cand))
		values, ok := neighbors[term1]
		if !ok || len(values) == 0 {
			continue
		}
		if compareLabel(values[0], c.Comp, c.Term2) {
			kept = append(kept, cand)
		}
	}
	return BlockValue{Set: kept}, nil
}

func compareLabel(value label.Label, comp, term2 string) bool {
	switch comp {
	case "=":
		return string(value) == string(label.Normalize(term2))
	case "!=":
		return string(value) != string(label.Normalize(term2))
	case "<":
		return compareOrdered(string(value), term2) < 0
	case ">":
		return compareOrdered(string(value), term2) > 0
	default:
		return false
	}
}

// compareOrdered compares numerically when both sides parse as integers,
// else falls back to lexicographic comparison, per spec.md §4.6
// ("lexicographic for </>; literal for =/!=").
func compareOrdered(a, b string) int {
	an, aerr := strconv.Atoi(a)
	bn, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// applyModifier implements step 5 of spec.md §4.6. Expand ("!") replaces
// a non-mapping current with one {label: neighbors(label)} entry per
// candidate that actually has neighbors, sorted by label.
func applyModifier(s *store.Store, ns store.Namespace, cur BlockValue, mod ast.Modifier) BlockValue {
	if mod != ast.ModExpand {
		return cur
	}
	if cur.Dict != nil {
		return cur
	}
	var entries []ExpandedEntry
	for _, l := range sortLabels(cur.Labels()) {
		neighbors := s.Neighbors(ns, string(l))
		if len(neighbors) == 0 {
			continue
		}
		entries = append(entries, ExpandedEntry{Label: l, Neighbors: neighbors})
	}
	return BlockValue{Expanded: entries}
}

func sortLabels(in []label.Label) []label.Label {
	out := append([]label.Label{}, in...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
