package parser

import (
	"strings"

	"github.com/synthgrammar/isla/bindexpr"
	islaerr "github.com/synthgrammar/isla/error"
)

// parseMExpr parses a match expression's contents (the text between the
// quantifier's quotes, already unescaped for `\"`) into a BindExpression.
// `{<nt> id}` declares a bound variable of type nt; `[...]` marks an
// optional group; `{{` and `}}` escape a literal brace; everything else is
// literal text, coalesced into dummy elements by bindexpr itself.
func parseMExpr(content string, mgr *VariableManager) (*bindexpr.BindExpression, error) {
	p := &mexprParser{src: content, mgr: mgr}
	elems, err := p.parseElements(false)
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return nil, &islaerr.SyntaxError{Cause: islaerr.CauseSyntax, Text: content}
	}
	return bindexpr.New(elems...), nil
}

type mexprParser struct {
	src string
	pos int
	mgr *VariableManager
}

// parseElements parses a run of elements, stopping at the string's end (top
// level) or at an unescaped ']' (inside an optional group, which the caller
// consumes).
func (p *mexprParser) parseElements(inGroup bool) ([]bindexpr.Element, error) {
	var elems []bindexpr.Element
	var literal strings.Builder
	flush := func() {
		if literal.Len() > 0 {
			elems = append(elems, bindexpr.Dummy(literal.String()))
			literal.Reset()
		}
	}

	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case inGroup && c == ']':
			flush()
			return elems, nil
		case c == '{' && p.peekAt(1) == '{':
			literal.WriteByte('{')
			p.pos += 2
		case c == '}' && p.peekAt(1) == '}':
			literal.WriteByte('}')
			p.pos += 2
		case c == '{':
			flush()
			elem, err := p.parseBoundVar()
			if err != nil {
				return nil, err
			}
			elems = append(elems, elem)
		case c == '[':
			flush()
			p.pos++
			inner, err := p.parseElements(true)
			if err != nil {
				return nil, err
			}
			if p.pos >= len(p.src) || p.src[p.pos] != ']' {
				return nil, &islaerr.SyntaxError{Cause: islaerr.CauseSyntax, Text: p.src}
			}
			p.pos++
			elems = append(elems, bindexpr.Group(inner...))
		default:
			literal.WriteByte(c)
			p.pos++
		}
	}
	flush()
	if inGroup {
		return nil, &islaerr.SyntaxError{Cause: islaerr.CauseSyntax, Text: p.src}
	}
	return elems, nil
}

func (p *mexprParser) peekAt(off int) byte {
	if p.pos+off >= len(p.src) {
		return 0
	}
	return p.src[p.pos+off]
}

// parseBoundVar parses "{<nt> id}" starting at the opening brace.
func (p *mexprParser) parseBoundVar() (bindexpr.Element, error) {
	p.pos++ // consume '{'
	if p.pos >= len(p.src) || p.src[p.pos] != '<' {
		return bindexpr.Element{}, &islaerr.SyntaxError{Cause: islaerr.CauseSyntax, Text: p.src}
	}
	ntStart := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != '>' {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return bindexpr.Element{}, &islaerr.SyntaxError{Cause: islaerr.CauseSyntax, Text: p.src}
	}
	nt := p.src[ntStart+1 : p.pos]
	p.pos++ // consume '>'

	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
	idStart := p.pos
	for p.pos < len(p.src) && isIdentPart(p.src[p.pos]) {
		p.pos++
	}
	id := p.src[idStart:p.pos]
	if id == "" {
		return bindexpr.Element{}, &islaerr.SyntaxError{Cause: islaerr.CauseSyntax, Text: p.src}
	}

	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
	if p.pos >= len(p.src) || p.src[p.pos] != '}' {
		return bindexpr.Element{}, &islaerr.SyntaxError{Cause: islaerr.CauseSyntax, Text: p.src}
	}
	p.pos++ // consume '}'

	v, err := p.mgr.Declare(id, "<"+nt+">")
	if err != nil {
		return bindexpr.Element{}, err
	}
	return bindexpr.Bound(v), nil
}
