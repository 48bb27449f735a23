// Package lang implements the KGL grammar: a hand-written lexer and
// recursive-descent parser producing a lang/ast syntax tree.
package lang

import (
	"strings"

	"github.com/cayleygraph/kgl/lang/ast"
)

// Parse tokenizes and parses a KGL query string, returning its AST. A
// malformed query returns a *SyntaxError carrying the offending position.
func Parse(src string) (ast.Node, error) {
	if strings.TrimSpace(src) == "" {
		return ast.Empty{}, nil
	}

	toks, err := lex(src)
	if err != nil {
		return nil, err
	}

	if len(toks) == 2 {
		switch toks[0].kind {
		case tokHash:
			return ast.CountAll{}, nil
		case tokQuestion:
			return ast.ExistsAny{}, nil
		case tokStar:
			return ast.MostConnected{}, nil
		}
	}

	p := &parser{toks: toks}

	if ct, ok := p.tryCommaTriple(); ok {
		return ct, nil
	}

	pipeline, err := p.parsePipeline()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, &SyntaxError{Pos: p.peek().pos, Msg: "unexpected trailing input"}
	}

	if len(pipeline.Blocks) == 1 && len(pipeline.Ops) == 0 {
		b := pipeline.Blocks[0]
		if b.Graph == nil && len(b.Steps) == 0 && b.Modifier == ast.ModNone {
			return ast.RandomWalk{}, nil
		}
	}
	return pipeline, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

// tryCommaTriple attempts the "{ s, p, o }" production, which is only
// valid as the entire input (it's an alternative at the `start` rule, not
// reusable inside a pipeline). On any mismatch it restores the parser
// position so the caller can fall back to the general query grammar.
func (p *parser) tryCommaTriple() (ast.CommaTriple, bool) {
	save := p.pos
	fail := func() (ast.CommaTriple, bool) {
		p.pos = save
		return ast.CommaTriple{}, false
	}

	if p.peek().kind != tokLBrace {
		return fail()
	}
	p.next()

	if p.peek().kind != tokWord {
		return fail()
	}
	s := p.next().text

	if p.peek().kind != tokComma {
		return fail()
	}
	p.next()

	if p.peek().kind != tokWord {
		return fail()
	}
	pr := p.next().text

	if p.peek().kind != tokComma {
		return fail()
	}
	p.next()

	if p.peek().kind != tokWord {
		return fail()
	}
	o := p.next().text

	if p.peek().kind != tokRBrace {
		return fail()
	}
	p.next()

	if p.peek().kind != tokEOF {
		return fail()
	}
	return ast.CommaTriple{Subject: s, Predicate: pr, Object: o}, true
}

func (p *parser) parsePipeline() (ast.Pipeline, error) {
	first, err := p.parseBlock()
	if err != nil {
		return ast.Pipeline{}, err
	}
	blocks := []ast.Block{first}
	var ops []ast.Operand

	for {
		op, ok := p.peekOperand()
		if !ok {
			break
		}
		p.next()
		b, err := p.parseBlock()
		if err != nil {
			return ast.Pipeline{}, err
		}
		blocks = append(blocks, b)
		ops = append(ops, op)
	}
	return ast.Pipeline{Blocks: blocks, Ops: ops}, nil
}

func (p *parser) peekOperand() (ast.Operand, bool) {
	switch p.peek().kind {
	case tokPlus:
		return ast.OpUnion, true
	case tokMinus:
		return ast.OpDifference, true
	case tokWord:
		if p.peek().text == "INTERSECTION" {
			return ast.OpIntersection, true
		}
	}
	return 0, false
}

func (p *parser) parseBlock() (ast.Block, error) {
	if p.peek().kind != tokLBrace {
		return ast.Block{}, &SyntaxError{Pos: p.peek().pos, Msg: "expected '{'"}
	}
	p.next()

	var graph *string
	if p.peek().kind == tokWord {
		save := p.pos
		name := p.next().text
		if p.peek().kind == tokPipe {
			p.next()
			graph = &name
		} else {
			p.pos = save
		}
	}

	var steps []ast.Step
	if p.peek().kind == tokRBrace {
		p.next()
	} else {
		for {
			node, err := p.parseNode()
			if err != nil {
				return ast.Block{}, err
			}
			steps = append(steps, node)

			switch p.peek().kind {
			case tokArrow:
				p.next()
				steps = append(steps, ast.StepRelation{})
				continue
			case tokDArrow:
				p.next()
				steps = append(steps, ast.StepInterrelation{})
				continue
			case tokRBrace:
				p.next()
			default:
				return ast.Block{}, &SyntaxError{Pos: p.peek().pos, Msg: "expected '->', '<->', or '}'"}
			}
			break
		}
	}

	modifier := ast.ModNone
	switch p.peek().kind {
	case tokBang:
		p.next()
		modifier = ast.ModExpand
	case tokQuestion:
		p.next()
		modifier = ast.ModExists
	case tokHash:
		p.next()
		modifier = ast.ModCount
	}

	return ast.Block{Graph: graph, Steps: steps, Modifier: modifier}, nil
}

func (p *parser) parseNode() (ast.StepNode, error) {
	label, ok := p.parseLabel()
	if !ok {
		return ast.StepNode{}, &SyntaxError{Pos: p.peek().pos, Msg: "expected a label"}
	}
	node := ast.StepNode{Label: label}

	switch p.peek().kind {
	case tokPlusPlus:
		p.next()
		node.Subsequence = true
	case tokPlus:
		p.next()
		node.Enumerate = true
	case tokTilde:
		p.next()
		node.Near = true
	}

	for p.peek().kind == tokLParen {
		cond, err := p.parseCondition()
		if err != nil {
			return ast.StepNode{}, err
		}
		node.Conditions = append(node.Conditions, cond)
	}
	return node, nil
}

// parseLabel joins consecutive word tokens with a single space, giving
// IDENT_WITH_SPACES semantics without any special-casing in the lexer.
func (p *parser) parseLabel() (string, bool) {
	if p.peek().kind != tokWord {
		return "", false
	}
	var words []string
	for p.peek().kind == tokWord {
		words = append(words, p.next().text)
	}
	return strings.Join(words, " "), true
}

func (p *parser) parseCondition() (ast.Condition, error) {
	p.next() // consume '('

	term1, ok := p.parseConditionTerm()
	if !ok {
		return ast.Condition{}, &SyntaxError{Pos: p.peek().pos, Msg: "expected condition term"}
	}
	comp, ok := p.parseComparator()
	if !ok {
		return ast.Condition{}, &SyntaxError{Pos: p.peek().pos, Msg: "expected comparator"}
	}
	term2, ok := p.parseConditionTerm()
	if !ok {
		return ast.Condition{}, &SyntaxError{Pos: p.peek().pos, Msg: "expected condition term"}
	}
	if p.peek().kind != tokRParen {
		return ast.Condition{}, &SyntaxError{Pos: p.peek().pos, Msg: "expected ')'"}
	}
	p.next()

	return ast.Condition{Term1: term1, Comp: comp, Term2: term2}, nil
}

func (p *parser) parseConditionTerm() (string, bool) {
	switch p.peek().kind {
	case tokString, tokWord:
		return p.next().text, true
	}
	return "", false
}

func (p *parser) parseComparator() (string, bool) {
	switch p.peek().kind {
	case tokEq:
		p.next()
		return "=", true
	case tokNeq:
		p.next()
		return "!=", true
	case tokGt:
		p.next()
		return ">", true
	case tokLt:
		p.next()
		return "<", true
	}
	return "", false
}
