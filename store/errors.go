package store

import "errors"

// ErrInvalidTriple is returned by Add in strict mode when the candidate
// triple fails validation. In non-strict mode (the default, matching the
// reference implementation) Add instead drops the triple silently.
var ErrInvalidTriple = errors.New("store: invalid triple")

// ErrNamespaceNotFound names a read from a namespace that has never had a
// triple added to it. No Store method returns it: such reads return empty
// results.
var ErrNamespaceNotFound = errors.New("store: namespace not found")

// ErrLabelNotFound names a lookup against a label with no recorded edges in
// the namespace. No Store method returns it: such lookups return empty
// results.
var ErrLabelNotFound = errors.New("store: label not found")

// MissingPropertyError reports that a predicate lookup on Label found no
// matching edge. No Store method returns it; the evaluator reports a
// missing leaf property with its own eval.MissingPropertyError.
type MissingPropertyError struct {
	Label     string
	Predicate string
}

func (e *MissingPropertyError) Error() string {
	return "store: " + e.Label + " has no property " + e.Predicate
}
