package export

import (
	"io"
	"strings"

	"github.com/cayleygraph/kgl/eval"
	"github.com/cayleygraph/kgl/label"
	"github.com/cayleygraph/kgl/store"
)

// DotWriter serializes triples to the DOT language, one edge statement per
// triple, accumulating a sticky error the way the teacher's quad/dot
// writer does.
type DotWriter struct {
	w       io.Writer
	header  string
	written bool
	err     error
}

// NewDotWriter wraps w.
func NewDotWriter(w io.Writer) *DotWriter {
	return &DotWriter{w: w, header: dotHeader}
}

// NewTitledDotWriter wraps w, labelling the emitted digraph with title.
func NewTitledDotWriter(w io.Writer, title string) *DotWriter {
	return &DotWriter{w: w, header: dotHeaderWithTitle(title)}
}

var dotEscaper = strings.NewReplacer(`"`, `\"`)

func dotEscape(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

func (w *DotWriter) writeString(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

const dotHeader = "digraph kgl_graph {\n"
const dotFooter = "}\n"

func dotHeaderWithTitle(title string) string {
	return "digraph kgl_graph {\n\tlabel = " + dotEscape(title) + ";\n"
}

// WriteTriple emits one edge statement. The header is written lazily on
// first call so an empty graph still closes out to a valid empty digraph.
func (w *DotWriter) WriteTriple(subject, predicate, object string) error {
	if w.err != nil {
		return w.err
	}
	if !w.written {
		w.writeString(w.header)
		w.written = true
	}
	w.writeString("\t")
	w.writeString(dotEscape(subject))
	w.writeString(" -> ")
	w.writeString(dotEscape(object))
	w.writeString(" [ label = ")
	w.writeString(dotEscape(predicate))
	w.writeString(" ];\n")
	return w.err
}

// Close writes the footer and returns any accumulated error.
func (w *DotWriter) Close() error {
	if w.err != nil {
		return w.err
	}
	if !w.written {
		w.writeString(w.header)
	}
	w.writeString(dotFooter)
	return w.err
}

// WriteDot serializes every triple in ns to DOT format.
func WriteDot(w io.Writer, s *store.Store, ns store.Namespace) error {
	dw := NewDotWriter(w)
	for _, t := range s.Triples(ns) {
		if err := dw.WriteTriple(string(t.Subject), string(t.Predicate), string(t.Object)); err != nil {
			return err
		}
	}
	return dw.Close()
}

// WriteDOT emits a Graphviz document titled with the original query
// string and one edge per adjacency the result actually carries: a
// Path's consecutive hops, an Expanded entry's own neighbor map, or --
// for a bare Dict/Set result, which carries no subject of its own --
// the induced subgraph the store holds among the result's labels.
func WriteDOT(w io.Writer, s *store.Store, ns store.Namespace, query string, res eval.Result) error {
	dw := NewTitledDotWriter(w, query)

	induced := make(map[label.Label]struct{})
	wroteDirectEdge := false

	for _, b := range res.Blocks {
		switch {
		case b.Path != nil:
			for i := 1; i < len(b.Path); i++ {
				from, to := b.Path[i-1], b.Path[i]
				if err := dw.WriteTriple(string(from.Label), string(to.Predicate), string(to.Label)); err != nil {
					return err
				}
				wroteDirectEdge = true
			}
		case b.Expanded != nil:
			for _, entry := range b.Expanded {
				for predicate, objects := range entry.Neighbors {
					for _, o := range objects {
						if err := dw.WriteTriple(string(entry.Label), string(predicate), string(o)); err != nil {
							return err
						}
						wroteDirectEdge = true
					}
				}
			}
		default:
			for _, l := range b.Labels() {
				induced[l] = struct{}{}
			}
		}
	}

	if !wroteDirectEdge && len(induced) > 0 {
		for _, t := range s.Triples(ns) {
			_, sok := induced[t.Subject]
			_, ook := induced[t.Object]
			if sok && ook {
				if err := dw.WriteTriple(string(t.Subject), string(t.Predicate), string(t.Object)); err != nil {
					return err
				}
			}
		}
	}

	return dw.Close()
}
