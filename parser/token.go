// Package parser implements the concrete-syntax front end: a hand-written
// tokenizer and recursive-descent parser that turn the surface constraint
// language into a formula.Formula, plus the match-expression sub-parser
// mexpr.go relies on. It resolves predicate names against a
// predicate.Registry and, where given a grammar.Grammar, checks that every
// nonterminal a variable is declared with actually exists.
package parser

import (
	"fmt"
	"strings"

	islaerr "github.com/synthgrammar/isla/error"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokConst
	tokForall
	tokExists
	tokInt
	tokIn
	tokNot
	tokAnd
	tokOr
	tokImplies
	tokIff
	tokXor
	tokID
	tokNT
	tokString
	tokInt_ // integer literal
	tokColon
	tokSemi
	tokComma
	tokEquals
	tokDot
	tokLParen
	tokRParen
	tokInvalid
)

var keywords = map[string]tokenKind{
	"const":    tokConst,
	"forall":   tokForall,
	"exists":   tokExists,
	"int":      tokInt,
	"in":       tokIn,
	"not":      tokNot,
	"and":      tokAnd,
	"or":       tokOr,
	"implies":  tokImplies,
	"iff":      tokIff,
	"xor":      tokXor,
}

type token struct {
	kind  tokenKind
	text  string // identifier text, nonterminal's name (without angles), string contents, or int digits
	start int    // byte offset of the token's first rune in src
	end   int    // byte offset just past the token's last rune in src
	row   int
}

func (t token) String() string {
	if t.text != "" {
		return fmt.Sprintf("%v(%q)", t.kind, t.text)
	}
	return fmt.Sprintf("%v", t.kind)
}

// lexer scans src into tokens on demand, tracking byte offsets so the parser
// can re-slice the raw source for an SMT leaf (handed to smt.Parse verbatim)
// without needing its own SMT-LIB tokenizer.
type lexer struct {
	src string
	pos int
	row int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, row: 1}
}

func (l *lexer) next() (token, error) {
	l.skipWSAndComments()
	start := l.pos
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, start: start, end: start, row: l.row}, nil
	}

	c := l.src[l.pos]
	switch {
	case c == '<':
		return l.lexNonterminal()
	case c == '"':
		return l.lexString()
	case c == ':':
		l.pos++
		return token{kind: tokColon, start: start, end: l.pos, row: l.row}, nil
	case c == ';':
		l.pos++
		return token{kind: tokSemi, start: start, end: l.pos, row: l.row}, nil
	case c == ',':
		l.pos++
		return token{kind: tokComma, start: start, end: l.pos, row: l.row}, nil
	case c == '=':
		l.pos++
		return token{kind: tokEquals, start: start, end: l.pos, row: l.row}, nil
	case c == '.':
		l.pos++
		return token{kind: tokDot, start: start, end: l.pos, row: l.row}, nil
	case c == '(':
		l.pos++
		return token{kind: tokLParen, start: start, end: l.pos, row: l.row}, nil
	case c == ')':
		l.pos++
		return token{kind: tokRParen, start: start, end: l.pos, row: l.row}, nil
	case isDigit(c):
		return l.lexNumber()
	case isIdentStart(c):
		return l.lexIdentOrKeyword()
	default:
		l.pos++
		return token{kind: tokInvalid, text: string(c), start: start, end: l.pos, row: l.row}, nil
	}
}

func (l *lexer) skipWSAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.row++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) lexNonterminal() (token, error) {
	start := l.pos
	j := l.pos + 1
	for j < len(l.src) && l.src[j] != '>' && l.src[j] != '<' && !strings.ContainsRune(" \t\r\n()\"", rune(l.src[j])) {
		j++
	}
	if j >= len(l.src) || l.src[j] != '>' {
		// Not a "<name>" token: a lone "<" (as in the SMT comparisons "<"
		// and "<=") is passed on as a single-character token.
		l.pos = start + 1
		return token{kind: tokInvalid, text: "<", start: start, end: l.pos, row: l.row}, nil
	}
	name := l.src[start+1 : j]
	l.pos = j + 1
	return token{kind: tokNT, text: name, start: start, end: l.pos, row: l.row}, nil
}

func (l *lexer) lexString() (token, error) {
	start := l.pos
	j := l.pos + 1
	var b strings.Builder
	for j < len(l.src) {
		c := l.src[j]
		if c == '\\' && j+1 < len(l.src) {
			b.WriteByte(l.src[j+1])
			j += 2
			continue
		}
		if c == '"' {
			l.pos = j + 1
			return token{kind: tokString, text: b.String(), start: start, end: l.pos, row: l.row}, nil
		}
		b.WriteByte(c)
		j++
	}
	return token{}, &islaerr.SyntaxError{Cause: islaerr.CauseSyntax, Row: l.row, Text: l.src[start:]}
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	j := l.pos
	for j < len(l.src) && isDigit(l.src[j]) {
		j++
	}
	l.pos = j
	return token{kind: tokInt_, text: l.src[start:j], start: start, end: j, row: l.row}, nil
}

func (l *lexer) lexIdentOrKeyword() (token, error) {
	start := l.pos
	j := l.pos
	for j < len(l.src) && isIdentPart(l.src[j]) {
		j++
	}
	l.pos = j
	text := l.src[start:j]
	if kind, ok := keywords[text]; ok {
		return token{kind: kind, text: text, start: start, end: j, row: l.row}, nil
	}
	return token{kind: tokID, text: text, start: start, end: j, row: l.row}, nil
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }
