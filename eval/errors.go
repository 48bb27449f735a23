package eval

import "errors"

// ErrQueryDepthExceeded is returned when a single Evaluate call performs
// more step invocations than the evaluator's configured MaxDepth.
var ErrQueryDepthExceeded = errors.New("kgl: query depth exceeded")

// MissingPropertyError reports a leaf predicate lookup against a node
// that doesn't carry that property -- raised loudly, per spec.md §7,
// in contrast to a root node's silent empty result.
type MissingPropertyError struct {
	Property string
}

func (e *MissingPropertyError) Error() string {
	return "kgl: node does not have property " + e.Property
}
