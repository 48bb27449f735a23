package lang

import "fmt"

// SyntaxError is returned by Parse on malformed input, carrying the
// position (a rune offset into the query) at which the parser gave up --
// spec's InvalidQuery.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("kgl: syntax error at position %d: %s", e.Pos, e.Msg)
}
