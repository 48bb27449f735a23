package lang

import (
	"testing"

	"github.com/cayleygraph/kgl/lang/ast"
)

func TestParseEmpty(t *testing.T) {
	n, err := Parse("   ")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := n.(ast.Empty); !ok {
		t.Fatalf("expected ast.Empty, got %T", n)
	}
}

func TestParseRandomWalk(t *testing.T) {
	n, err := Parse("{}")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := n.(ast.RandomWalk); !ok {
		t.Fatalf("expected ast.RandomWalk, got %T", n)
	}
}

func TestParseCountAll(t *testing.T) {
	n, err := Parse("#")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := n.(ast.CountAll); !ok {
		t.Fatalf("expected ast.CountAll, got %T", n)
	}
}

func TestParseExistsAny(t *testing.T) {
	n, err := Parse("?")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := n.(ast.ExistsAny); !ok {
		t.Fatalf("expected ast.ExistsAny, got %T", n)
	}
}

func TestParseMostConnected(t *testing.T) {
	n, err := Parse("*")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := n.(ast.MostConnected); !ok {
		t.Fatalf("expected ast.MostConnected, got %T", n)
	}
}

func TestParseCommaTriple(t *testing.T) {
	n, err := Parse("{evermore, is, amazing}")
	if err != nil {
		t.Fatal(err)
	}
	ct, ok := n.(ast.CommaTriple)
	if !ok {
		t.Fatalf("expected ast.CommaTriple, got %T", n)
	}
	if ct.Subject != "evermore" || ct.Predicate != "is" || ct.Object != "amazing" {
		t.Fatalf("unexpected triple: %+v", ct)
	}
}

func TestParseSingleNode(t *testing.T) {
	n, err := Parse("{ James }")
	if err != nil {
		t.Fatal(err)
	}
	pipe, ok := n.(ast.Pipeline)
	if !ok || len(pipe.Blocks) != 1 {
		t.Fatalf("expected single-block pipeline, got %T", n)
	}
	steps := pipe.Blocks[0].Steps
	if len(steps) != 1 {
		t.Fatalf("expected single step, got %+v", steps)
	}
	node, ok := steps[0].(ast.StepNode)
	if !ok || node.Label != "James" {
		t.Fatalf("unexpected node: %+v", steps[0])
	}
}

func TestParseRelationChain(t *testing.T) {
	n, err := Parse("{ James -> Likes }")
	if err != nil {
		t.Fatal(err)
	}
	pipe := n.(ast.Pipeline)
	steps := pipe.Blocks[0].Steps
	if len(steps) != 3 {
		t.Fatalf("expected 3 steps (node, relation, node), got %d: %+v", len(steps), steps)
	}
	if _, ok := steps[1].(ast.StepRelation); !ok {
		t.Fatalf("expected relation step, got %T", steps[1])
	}
}

func TestParseInterrelation(t *testing.T) {
	n, err := Parse("{ James <-> Coffee }")
	if err != nil {
		t.Fatal(err)
	}
	pipe := n.(ast.Pipeline)
	steps := pipe.Blocks[0].Steps
	if _, ok := steps[1].(ast.StepInterrelation); !ok {
		t.Fatalf("expected interrelation step, got %T", steps[1])
	}
}

func TestParseModifiers(t *testing.T) {
	cases := map[string]ast.Modifier{
		"{ James -> Likes }!": ast.ModExpand,
		"{ James -> Likes }?": ast.ModExists,
		"{ James -> Likes }#": ast.ModCount,
	}
	for src, want := range cases {
		n, err := Parse(src)
		if err != nil {
			t.Fatalf("%s: %v", src, err)
		}
		pipe := n.(ast.Pipeline)
		if pipe.Blocks[0].Modifier != want {
			t.Fatalf("%s: expected modifier %v, got %v", src, want, pipe.Blocks[0].Modifier)
		}
	}
}

func TestParseOperands(t *testing.T) {
	n, err := Parse("{ James -> Likes } + { Anna -> Likes }")
	if err != nil {
		t.Fatal(err)
	}
	pipe := n.(ast.Pipeline)
	if len(pipe.Blocks) != 2 || len(pipe.Ops) != 1 || pipe.Ops[0] != ast.OpUnion {
		t.Fatalf("unexpected pipeline: %+v", pipe)
	}
}

func TestParseIntersection(t *testing.T) {
	n, err := Parse("{ James -> Likes } INTERSECTION { Anna -> Likes }")
	if err != nil {
		t.Fatal(err)
	}
	pipe := n.(ast.Pipeline)
	if pipe.Ops[0] != ast.OpIntersection {
		t.Fatalf("expected intersection operand, got %v", pipe.Ops[0])
	}
}

func TestParseGraphPrefix(t *testing.T) {
	n, err := Parse("{ mygraph| James }")
	if err != nil {
		t.Fatal(err)
	}
	pipe := n.(ast.Pipeline)
	if pipe.Blocks[0].Graph == nil || *pipe.Blocks[0].Graph != "mygraph" {
		t.Fatalf("expected graph prefix mygraph, got %+v", pipe.Blocks[0].Graph)
	}
}

func TestParseNodeFlags(t *testing.T) {
	n, err := Parse("{ James~ }")
	if err != nil {
		t.Fatal(err)
	}
	pipe := n.(ast.Pipeline)
	node := pipe.Blocks[0].Steps[0].(ast.StepNode)
	if !node.Near {
		t.Fatalf("expected near flag set: %+v", node)
	}
}

func TestParseCondition(t *testing.T) {
	n, err := Parse(`{ James("likes" = "coffee") }`)
	if err != nil {
		t.Fatal(err)
	}
	pipe := n.(ast.Pipeline)
	node := pipe.Blocks[0].Steps[0].(ast.StepNode)
	if len(node.Conditions) != 1 {
		t.Fatalf("expected 1 condition, got %+v", node.Conditions)
	}
	c := node.Conditions[0]
	if c.Term1 != "likes" || c.Comp != "=" || c.Term2 != "coffee" {
		t.Fatalf("unexpected condition: %+v", c)
	}
}

func TestParseMultiWordLabel(t *testing.T) {
	n, err := Parse("{ evermore is amazing }")
	if err != nil {
		t.Fatal(err)
	}
	pipe := n.(ast.Pipeline)
	node := pipe.Blocks[0].Steps[0].(ast.StepNode)
	if node.Label != "evermore is amazing" {
		t.Fatalf("expected joined multi-word label, got %q", node.Label)
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse("{ James ->")
	if err == nil {
		t.Fatal("expected a syntax error")
	}
	if _, ok := err.(*SyntaxError); !ok {
		t.Fatalf("expected *SyntaxError, got %T", err)
	}
}

func TestParseUnexpectedCharacter(t *testing.T) {
	_, err := Parse("{ James @ }")
	if err == nil {
		t.Fatal("expected a syntax error for unexpected character")
	}
}
