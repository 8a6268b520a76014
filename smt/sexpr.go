// Package smt is a thin adapter between the constraint language's SMT
// leaves and github.com/expr-lang/expr, standing in for the opaque SMT
// decision procedure the surrounding system treats as an external
// collaborator. An SMT leaf's surface form is the s-expression syntax SMT-LIB
// users expect ("(= v1 v2)", "(> (str.len v1) 3)"); internally it is
// represented as an expr-lang ast.Node tree so that compilation and
// evaluation can be delegated to expr-lang's own compiler and VM.
package smt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/expr-lang/expr/ast"
)

type token struct {
	kind tokenKind
	text string
}

type tokenKind int

const (
	tokLParen tokenKind = iota
	tokRParen
	tokAtom
	tokString
	tokEOF
)

func tokenize(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen})
			i++
		case c == '"':
			j := i + 1
			var sb strings.Builder
			closed := false
			for j < len(src) {
				if src[j] == '\\' && j+1 < len(src) {
					sb.WriteByte(src[j+1])
					j += 2
					continue
				}
				if src[j] == '"' {
					closed = true
					j++
					break
				}
				sb.WriteByte(src[j])
				j++
			}
			if !closed {
				return nil, fmt.Errorf("smt: unterminated string literal in %q", src)
			}
			toks = append(toks, token{kind: tokString, text: sb.String()})
			i = j
		default:
			j := i
			for j < len(src) && !isDelim(src[j]) {
				j++
			}
			if j == i {
				return nil, fmt.Errorf("smt: unexpected character %q in %q", src[i], src)
			}
			toks = append(toks, token{kind: tokAtom, text: src[i:j]})
			i = j
		}
	}
	toks = append(toks, token{kind: tokEOF})
	return toks, nil
}

func isDelim(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '(' || c == ')' || c == '"'
}

type sexprParser struct {
	toks []token
	pos  int
}

func (p *sexprParser) peek() token { return p.toks[p.pos] }
func (p *sexprParser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

// parseSExpr parses the SMT leaf surface syntax into an expr-lang AST node.
// A leaf is either an atom (identifier, integer, string, or boolean literal)
// or a parenthesized "(op arg...)" application; ops are resolved against the
// table in ops.go and built directly as the matching expr-lang node shape.
func parseSExpr(src string) (ast.Node, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &sexprParser{toks: toks}
	node, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, fmt.Errorf("smt: trailing input after expression in %q", src)
	}
	return node, nil
}

func (p *sexprParser) parseNode() (ast.Node, error) {
	t := p.peek()
	switch t.kind {
	case tokLParen:
		p.next()
		return p.parseApplication()
	case tokAtom:
		p.next()
		return atomNode(t.text), nil
	case tokString:
		p.next()
		return &ast.StringNode{Value: t.text}, nil
	default:
		return nil, fmt.Errorf("smt: unexpected end of expression")
	}
}

func (p *sexprParser) parseApplication() (ast.Node, error) {
	if p.peek().kind != tokAtom {
		return nil, fmt.Errorf("smt: expected operator after '('")
	}
	op := p.next().text
	var args []ast.Node
	for p.peek().kind != tokRParen {
		if p.peek().kind == tokEOF {
			return nil, fmt.Errorf("smt: unterminated s-expression for operator %q", op)
		}
		arg, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	p.next() // consume ')'
	build, ok := operators[op]
	if !ok {
		return nil, fmt.Errorf("smt: unknown operator %q", op)
	}
	return build(args)
}

func atomNode(text string) ast.Node {
	switch text {
	case "true":
		return &ast.BoolNode{Value: true}
	case "false":
		return &ast.BoolNode{Value: false}
	}
	if n, err := strconv.Atoi(text); err == nil {
		return &ast.IntegerNode{Value: n}
	}
	return &ast.IdentifierNode{Value: text}
}
