// Package export serializes a store.Store's triples back out to CSV/TSV,
// DOT (graphviz) and a JSON graph-index dump.
package export

import (
	"encoding/csv"
	"io"

	"github.com/cayleygraph/kgl/store"
)

// WriteCSV writes every triple in ns, in store insertion order, as
// subject,predicate,object rows using the given delimiter.
func WriteCSV(w io.Writer, delimiter rune, s *store.Store, ns store.Namespace) error {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter
	defer cw.Flush()

	for _, t := range s.Triples(ns) {
		if err := cw.Write([]string{string(t.Subject), string(t.Predicate), string(t.Object)}); err != nil {
			return err
		}
	}
	return cw.Error()
}
