package lang

import "testing"

// FuzzParse checks that Parse never panics on arbitrary input: it must
// either return a valid AST or a *SyntaxError, nothing else.
func FuzzParse(f *testing.F) {
	seeds := []string{
		"", "{}", "#", "?", "*",
		"{ James }",
		"{ James -> Likes }",
		"{ James <-> Coffee }",
		"{evermore, is, amazing}",
		`{ James("likes" = "coffee") }`,
		"{ James -> Likes } + { Anna -> Likes }",
		"{ mygraph| James }",
		"{ James~ }",
		"{ James++ }",
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, src string) {
		n, err := Parse(src)
		if err != nil {
			if _, ok := err.(*SyntaxError); !ok {
				t.Fatalf("Parse(%q) returned non-SyntaxError error: %v (%T)", src, err, err)
			}
			return
		}
		if n == nil {
			t.Fatalf("Parse(%q) returned nil AST with nil error", src)
		}
	})
}
