// Package ingest adapts external row-oriented formats (CSV, TSV, JSON)
// into triples added to a store.Store.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"

	"github.com/cayleygraph/kgl/store"
)

// ErrInvalidJSONInput is returned when a JSON ingest object lacks the
// "Entity" key spec.md §6 requires.
var ErrInvalidJSONInput = errors.New("kgl: json input missing Entity key")

// LoadCSV reads subject,predicate,object rows from r using the given
// delimiter ("," for CSV, '\t' for TSV) and adds each to s under ns.
// Empty rows and rows that fail triple validation are skipped, matching
// spec.md §6's permissive ingest contract.
func LoadCSV(r io.Reader, delimiter rune, s *store.Store, ns store.Namespace) (int, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	added := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return added, err
		}
		if len(record) == 0 || isBlankRow(record) {
			continue
		}
		if len(record) < 3 {
			continue
		}
		if err := s.Add(ns, record[0], record[1], record[2]); err != nil {
			continue
		}
		added++
	}
	return added, nil
}

func isBlankRow(record []string) bool {
	for _, f := range record {
		if f != "" {
			return false
		}
	}
	return true
}

// jsonEntity is one object in a JSON ingest document: an "Entity" subject
// key plus arbitrary predicate keys, each a string or list of strings.
type jsonEntity map[string]interface{}

// LoadJSON reads a JSON array of entity objects from r. Each object must
// carry an "Entity" key naming the subject; every other key is a
// predicate whose value (string or array of strings) becomes the object.
// An object missing "Entity" fails the whole load with
// ErrInvalidJSONInput.
func LoadJSON(r io.Reader, s *store.Store, ns store.Namespace) (int, error) {
	var entities []jsonEntity
	if err := json.NewDecoder(r).Decode(&entities); err != nil {
		return 0, err
	}

	added := 0
	for _, e := range entities {
		subject, ok := e["Entity"].(string)
		if !ok || subject == "" {
			return added, ErrInvalidJSONInput
		}
		for predicate, value := range e {
			if predicate == "Entity" {
				continue
			}
			switch v := value.(type) {
			case string:
				if err := s.Add(ns, subject, predicate, v); err == nil {
					added++
				}
			case []interface{}:
				objs := make([]string, 0, len(v))
				for _, item := range v {
					if str, ok := item.(string); ok {
						objs = append(objs, str)
					}
				}
				if err := s.Add(ns, subject, predicate, objs); err == nil {
					added++
				}
			}
		}
	}
	return added, nil
}
