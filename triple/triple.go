// Package triple defines the store's primitive edge type: an ordered
// (subject, predicate, object) tuple of normalized labels.
package triple

import (
	"errors"

	"github.com/cayleygraph/kgl/label"
)

// ErrInvalidTriple is returned by New when a candidate triple fails the
// structural checks in force at ingest time.
var ErrInvalidTriple = errors.New("triple: invalid triple")

// Triple is an edge (subject, predicate, object) where all three fields are
// normalized labels.
type Triple struct {
	Subject   label.Label
	Predicate label.Label
	Object    label.Label
}

// New validates and normalizes a candidate triple.
//
// Validation fails if subject or predicate are empty, or if the subject
// normalizes to the empty label -- with the single exception of the
// literal "i", which the reference implementation special-cased to allow
// through despite being a single character.
func New(subject, predicate, object string) (Triple, error) {
	if subject == "" || predicate == "" {
		return Triple{}, ErrInvalidTriple
	}
	s := label.Normalize(subject)
	if s.Empty() && subject != "i" {
		return Triple{}, ErrInvalidTriple
	}
	return Triple{
		Subject:   s,
		Predicate: label.Normalize(predicate),
		Object:    label.Normalize(object),
	}, nil
}

// Expand turns a (subject, predicate, []object) triple into one Triple per
// object element, as spec'd for list-valued objects: "each element is added
// as an independent edge with the same subject and predicate."
func Expand(subject, predicate string, objects []string) ([]Triple, error) {
	out := make([]Triple, 0, len(objects))
	for _, o := range objects {
		t, err := New(subject, predicate, o)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
