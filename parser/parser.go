package parser

import (
	"strings"

	"github.com/synthgrammar/isla/ast"
	"github.com/synthgrammar/isla/bindexpr"
	islaerr "github.com/synthgrammar/isla/error"
	"github.com/synthgrammar/isla/formula"
	"github.com/synthgrammar/isla/grammar"
	"github.com/synthgrammar/isla/predicate"
	"github.com/synthgrammar/isla/smt"
)

// Parse turns the concrete constraint syntax in src into a formula.Formula.
// g, if non-nil, is consulted to check that every nonterminal a variable is
// declared against actually exists. preds resolves predicate calls by name;
// Parse uses predicate.Builtins() if preds is nil.
func Parse(src string, g *grammar.Grammar, preds *predicate.Registry) (formula.Formula, error) {
	if preds == nil {
		preds = predicate.Builtins()
	}
	p := &parser{lex: newLexer(src), src: src, g: g, preds: preds}
	if err := p.advance(); err != nil {
		return nil, err
	}

	constVar := ast.NewConstant("start", "<start>")
	if p.cur.kind == tokConst {
		v, err := p.parseConstDecl()
		if err != nil {
			return nil, err
		}
		constVar = v
	}

	mgr := NewVariableManager(g)
	mgr.registerConstant(constVar)
	p.mgr = mgr

	root := newScope(nil, mgr)
	root.ownVar = &constVar

	body, err := p.parseXor(root)
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokEOF {
		return nil, p.syntaxErr(p.cur.text)
	}

	f, err := mgr.Create(body)
	if err != nil {
		return nil, err
	}
	return root.wrap(f), nil
}

// parser is a single-use recursive-descent parser over one source string.
// It carries a one-token lookahead buffer and the variable manager every
// parseX method threads through scope construction.
type parser struct {
	lex    *lexer
	src    string
	g      *grammar.Grammar
	preds  *predicate.Registry
	mgr    *VariableManager
	cur    token
	peeked *token
}

func (p *parser) advance() error {
	if p.peeked != nil {
		p.cur = *p.peeked
		p.peeked = nil
		return nil
	}
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

func (p *parser) peek() (token, error) {
	if p.peeked == nil {
		t, err := p.lex.next()
		if err != nil {
			return token{}, err
		}
		p.peeked = &t
	}
	return *p.peeked, nil
}

func (p *parser) syntaxErr(text string) error {
	return &islaerr.SyntaxError{Cause: islaerr.CauseSyntax, Row: p.cur.row, Text: text}
}

func (p *parser) expect(k tokenKind, text string) error {
	if p.cur.kind != k {
		return p.syntaxErr(text)
	}
	return p.advance()
}

// parseConstDecl parses "const" ID ":" NT ";", p.cur already on "const".
func (p *parser) parseConstDecl() (ast.Variable, error) {
	if err := p.advance(); err != nil {
		return ast.Variable{}, err
	}
	if p.cur.kind != tokID {
		return ast.Variable{}, p.syntaxErr(p.cur.text)
	}
	name := p.cur.text
	if err := p.advance(); err != nil {
		return ast.Variable{}, err
	}
	if err := p.expect(tokColon, ":"); err != nil {
		return ast.Variable{}, err
	}
	if p.cur.kind != tokNT {
		return ast.Variable{}, p.syntaxErr(p.cur.text)
	}
	nt := "<" + p.cur.text + ">"
	if p.g != nil && !p.g.IsDefined(nt) {
		return ast.Variable{}, p.syntaxErr(nt)
	}
	if err := p.advance(); err != nil {
		return ast.Variable{}, err
	}
	if err := p.expect(tokSemi, ";"); err != nil {
		return ast.Variable{}, err
	}
	return ast.NewConstant(name, nt), nil
}

// The binary combinators form a precedence chain, loosest first: xor > iff >
// implies > or > and > unary-not > atom, each level left-associative.

func (p *parser) parseXor(s *scope) (formula.Formula, error) {
	left, err := p.parseIff(s)
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokXor {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseIff(s)
		if err != nil {
			return nil, err
		}
		left = formula.Or(formula.And(left, formula.Not(right)), formula.And(formula.Not(left), right))
	}
	return left, nil
}

func (p *parser) parseIff(s *scope) (formula.Formula, error) {
	left, err := p.parseImplies(s)
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokIff {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseImplies(s)
		if err != nil {
			return nil, err
		}
		left = formula.Or(formula.And(formula.Not(left), formula.Not(right)), formula.And(left, right))
	}
	return left, nil
}

func (p *parser) parseImplies(s *scope) (formula.Formula, error) {
	left, err := p.parseOr(s)
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokImplies {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseOr(s)
		if err != nil {
			return nil, err
		}
		left = formula.Or(formula.Not(left), right)
	}
	return left, nil
}

func (p *parser) parseOr(s *scope) (formula.Formula, error) {
	left, err := p.parseAnd(s)
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd(s)
		if err != nil {
			return nil, err
		}
		left = formula.Or(left, right)
	}
	return left, nil
}

func (p *parser) parseAnd(s *scope) (formula.Formula, error) {
	left, err := p.parseUnary(s)
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary(s)
		if err != nil {
			return nil, err
		}
		left = formula.And(left, right)
	}
	return left, nil
}

func (p *parser) parseUnary(s *scope) (formula.Formula, error) {
	if p.cur.kind == tokNot {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseUnary(s)
		if err != nil {
			return nil, err
		}
		return formula.Not(inner), nil
	}
	return p.parseAtom(s)
}

func (p *parser) parseAtom(s *scope) (formula.Formula, error) {
	switch p.cur.kind {
	case tokForall, tokExists:
		return p.parseQuantifier(s)
	case tokLParen:
		return p.parseParenAtom(s)
	case tokID:
		return p.parsePredicateCall(s)
	default:
		return nil, p.syntaxErr(p.cur.text)
	}
}

// parseParenAtom handles the two ways a formula can start with "(": a
// grouped sub-formula ("(" formula ")"), recognized by a one-token
// lookahead past the "(" for something only a formula can start with, or an
// SMT leaf ("(" sexpr ")"), captured as the raw source text between the
// matching parens and handed to smt.Parse.
func (p *parser) parseParenAtom(s *scope) (formula.Formula, error) {
	open := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.startsNestedFormula() {
		inner, err := p.parseXor(s)
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, ")"); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return p.parseSMTLeaf(s, open)
}

// startsNestedFormula reports whether p.cur (the token right after an
// unconsumed "(") can only begin a formula, not an SMT s-expression: a
// quantifier, a negation, another grouped formula, or a predicate call
// (an identifier immediately followed by "(").
func (p *parser) startsNestedFormula() bool {
	switch p.cur.kind {
	case tokForall, tokExists, tokNot, tokLParen:
		return true
	case tokID:
		next, err := p.peek()
		return err == nil && next.kind == tokLParen
	default:
		return false
	}
}

// parseSMTLeaf consumes tokens up to the ")" that matches open, then
// re-slices the raw source between them (so quoted strings and operators
// like "<=" pass through untouched) and hands it to smt.Parse after
// substituting any bare "<nt>" XPath shorthand with its resolved variable's
// name.
func (p *parser) parseSMTLeaf(s *scope, open token) (formula.Formula, error) {
	depth := 1
	var closeTok token
	for depth > 0 {
		if p.cur.kind == tokEOF {
			return nil, p.syntaxErr(p.src[open.start:])
		}
		switch p.cur.kind {
		case tokLParen:
			depth++
		case tokRParen:
			depth--
			if depth == 0 {
				closeTok = p.cur
			}
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	raw := p.src[open.start:closeTok.end]
	resolved := substituteBareNonterminals(raw, s)

	expr, err := smt.Parse(resolved)
	if err != nil {
		return nil, &islaerr.SyntaxError{Cause: islaerr.CauseSMTParse, Row: open.row, Text: raw, Wrap: err}
	}
	var freeVars []ast.Variable
	for _, sym := range expr.FreeSymbols() {
		freeVars = append(freeVars, p.mgr.Ref(sym))
	}
	return formula.NewSMTFormula(expr, freeVars...), nil
}

// substituteBareNonterminals replaces every "<nt>" run in raw, outside of a
// quoted string, with the name of the variable it resolves to in s (reusing
// an enclosing quantifier's own bound variable, or introducing a fresh
// top-level default binding). A chain of the form "<nt>.<child>.<grandchild>"
// resolves one XPath step at a time, the same as "var.<child>" does in an
// "in" clause or predicate argument, just rooted at a bare nonterminal
// instead of a named variable.
func substituteBareNonterminals(raw string, s *scope) string {
	var b strings.Builder
	inStr := false
	for i := 0; i < len(raw); {
		c := raw[i]
		if c == '"' {
			inStr = !inStr
			b.WriteByte(c)
			i++
			continue
		}
		if !inStr && c == '<' {
			if v, next, ok := resolveBareChain(raw, i, s); ok {
				b.WriteString(v.Name)
				i = next
				continue
			}
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

// resolveBareChain parses a "<nt>" ("." "<nt>")* chain starting at raw[i]
// (raw[i] == '<'), resolving each step against s. Returns the final
// variable, the offset just past the consumed chain, and whether raw[i]
// actually began a well-formed nonterminal token.
func resolveBareChain(raw string, i int, s *scope) (ast.Variable, int, bool) {
	j := i + 1
	for j < len(raw) && raw[j] != '>' && raw[j] != '<' && !strings.ContainsRune(" \t\r\n()\"", rune(raw[j])) {
		j++
	}
	if j >= len(raw) || raw[j] != '>' {
		return ast.Variable{}, i, false
	}
	v := s.resolveBareNonterminal("<" + raw[i+1:j] + ">")
	i = j + 1
	for i < len(raw) && raw[i] == '.' && i+1 < len(raw) && raw[i+1] == '<' {
		j = i + 2
		for j < len(raw) && raw[j] != '>' && raw[j] != '<' {
			j++
		}
		if j >= len(raw) || raw[j] != '>' {
			break
		}
		v = s.resolveXPathChild(v, "<"+raw[i+2:j]+">")
		i = j + 1
	}
	return v, i, true
}

// parseQuantifier handles both the nonterminal-ranged form ("forall" NT
// [ID] ["=" STRING] ["in" xpath] ":" formula) and the "int" form ("forall"
// "int" ID ":" formula), for both "forall" and "exists".
func (p *parser) parseQuantifier(s *scope) (formula.Formula, error) {
	isForall := p.cur.kind == tokForall
	if err := p.advance(); err != nil {
		return nil, err
	}

	if p.cur.kind == tokInt {
		return p.parseIntQuantifier(s, isForall)
	}

	if p.cur.kind != tokNT {
		return nil, p.syntaxErr(p.cur.text)
	}
	nt := "<" + p.cur.text + ">"
	if err := p.advance(); err != nil {
		return nil, err
	}

	name := ""
	if p.cur.kind == tokID {
		name = p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	hasMExpr := false
	var mexprText string
	if p.cur.kind == tokEquals {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.kind != tokString {
			return nil, p.syntaxErr(p.cur.text)
		}
		mexprText = p.cur.text
		hasMExpr = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	inVar := *s.rootConstant()
	if p.cur.kind == tokIn {
		if err := p.advance(); err != nil {
			return nil, err
		}
		v, err := p.parseXPathRef(s)
		if err != nil {
			return nil, err
		}
		inVar = v
	}

	if name == "" {
		name = defaultName(p.mgr, nt)
	}
	bv, err := p.mgr.Declare(name, nt)
	if err != nil {
		return nil, err
	}

	var bindExprVal *bindexpr.BindExpression
	if hasMExpr {
		bindExprVal, err = parseMExpr(mexprText, p.mgr)
		if err != nil {
			return nil, err
		}
	}

	if err := p.expect(tokColon, ":"); err != nil {
		return nil, err
	}

	child := newScope(s, p.mgr)
	child.ownVar = &bv
	inner, err := p.parseXor(child)
	if err != nil {
		return nil, err
	}
	inner = child.wrap(inner)

	if isForall {
		return formula.NewForall(bv, inVar, inner, bindExprVal), nil
	}
	return formula.NewExists(bv, inVar, inner, bindExprVal), nil
}

func (p *parser) parseIntQuantifier(s *scope, isForall bool) (formula.Formula, error) {
	if err := p.advance(); err != nil { // consume "int"
		return nil, err
	}
	if p.cur.kind != tokID {
		return nil, p.syntaxErr(p.cur.text)
	}
	name := p.cur.text
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(tokColon, ":"); err != nil {
		return nil, err
	}
	bv, err := p.mgr.Declare(name, ast.NumType)
	if err != nil {
		return nil, err
	}
	child := newScope(s, p.mgr)
	inner, err := p.parseXor(child)
	if err != nil {
		return nil, err
	}
	inner = child.wrap(inner)
	if isForall {
		return &formula.ForallIntFormula{BoundVar: bv, Inner: inner}, nil
	}
	return &formula.ExistsIntFormula{BoundVar: bv, Inner: inner}, nil
}

// parseXPathRef parses the target of an "in" clause: an identifier,
// optionally followed by one or more ".<nt>" child steps.
func (p *parser) parseXPathRef(s *scope) (ast.Variable, error) {
	if p.cur.kind != tokID {
		return ast.Variable{}, p.syntaxErr(p.cur.text)
	}
	v := p.mgr.Ref(p.cur.text)
	if err := p.advance(); err != nil {
		return ast.Variable{}, err
	}
	for p.cur.kind == tokDot {
		if err := p.advance(); err != nil {
			return ast.Variable{}, err
		}
		if p.cur.kind != tokNT {
			return ast.Variable{}, p.syntaxErr(p.cur.text)
		}
		v = s.resolveXPathChild(v, "<"+p.cur.text+">")
		if err := p.advance(); err != nil {
			return ast.Variable{}, err
		}
	}
	return v, nil
}

// parsePredicateCall parses "ID" "(" arg ("," arg)* ")" and resolves the
// name against the predicate registry.
func (p *parser) parsePredicateCall(s *scope) (formula.Formula, error) {
	name := p.cur.text
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}

	var args []formula.PredArg
	if p.cur.kind != tokRParen {
		for {
			arg, err := p.parsePredArg(s)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.cur.kind != tokComma {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expect(tokRParen, ")"); err != nil {
		return nil, err
	}

	if sp, ok := p.preds.Structural[name]; ok {
		if sp.Arity >= 0 && len(args) != sp.Arity {
			return nil, &islaerr.SemanticError{Cause: islaerr.CauseArityMismatch, Names: []string{name}}
		}
		return &formula.StructuralPredicateFormula{Pred: sp, Args: args}, nil
	}
	if semp, ok := p.preds.Semantic[name]; ok {
		if semp.Arity >= 0 && len(args) != semp.Arity {
			return nil, &islaerr.SemanticError{Cause: islaerr.CauseArityMismatch, Names: []string{name}}
		}
		return &formula.SemanticPredicateFormula{Pred: semp, Args: args, Order: semp.Order}, nil
	}
	return nil, &islaerr.SemanticError{Cause: islaerr.CauseUnknownPredicate, Names: []string{name}}
}

func (p *parser) parsePredArg(s *scope) (formula.PredArg, error) {
	switch p.cur.kind {
	case tokNT:
		nt := "<" + p.cur.text + ">"
		if err := p.advance(); err != nil {
			return formula.PredArg{}, err
		}
		v := s.resolveBareNonterminal(nt)
		for p.cur.kind == tokDot {
			if err := p.advance(); err != nil {
				return formula.PredArg{}, err
			}
			if p.cur.kind != tokNT {
				return formula.PredArg{}, p.syntaxErr(p.cur.text)
			}
			v = s.resolveXPathChild(v, "<"+p.cur.text+">")
			if err := p.advance(); err != nil {
				return formula.PredArg{}, err
			}
		}
		return formula.VarArg(v), nil
	case tokID:
		v := p.mgr.Ref(p.cur.text)
		if err := p.advance(); err != nil {
			return formula.PredArg{}, err
		}
		for p.cur.kind == tokDot {
			if err := p.advance(); err != nil {
				return formula.PredArg{}, err
			}
			if p.cur.kind != tokNT {
				return formula.PredArg{}, p.syntaxErr(p.cur.text)
			}
			v = s.resolveXPathChild(v, "<"+p.cur.text+">")
			if err := p.advance(); err != nil {
				return formula.PredArg{}, err
			}
		}
		return formula.VarArg(v), nil
	case tokString:
		lit := p.cur.text
		if err := p.advance(); err != nil {
			return formula.PredArg{}, err
		}
		return formula.LitArg(lit), nil
	case tokInt_:
		lit := p.cur.text
		if err := p.advance(); err != nil {
			return formula.PredArg{}, err
		}
		return formula.LitArg(lit), nil
	default:
		return formula.PredArg{}, p.syntaxErr(p.cur.text)
	}
}
