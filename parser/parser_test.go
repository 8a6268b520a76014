package parser

import (
	"testing"

	"github.com/synthgrammar/isla/ast"
	"github.com/synthgrammar/isla/formula"
	"github.com/synthgrammar/isla/grammar"
)

// langGrammar mirrors the assignment language the original ISLa test suite
// parses constraints against: semicolon-separated "var := rhs" statements.
func langGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	g, err := grammar.NewGrammar(map[string][]string{
		"<start>": {"<stmt>"},
		"<stmt>":  {"<assgn> ; <stmt>", "<assgn>"},
		"<assgn>": {"<var> := <rhs>"},
		"<rhs>":   {"<var>", "<digit>"},
		"<var>":   {"x", "y", "z"},
		"<digit>": {"0", "1", "2"},
	})
	if err != nil {
		t.Fatalf("NewGrammar: %v", err)
	}
	return g
}

func mustParse(t *testing.T, src string, g *grammar.Grammar) formula.Formula {
	t.Helper()
	f, err := Parse(src, g, nil)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return f
}

// Scenario 1: simple equality between two independently bound <var>s.
func TestParseSimpleEquality(t *testing.T) {
	g := langGrammar(t)
	f := mustParse(t, `forall <var> var_1 in start: forall <var> var_2 in start: (= var_1 var_2)`, g)

	forall1, ok := f.(*formula.ForallFormula)
	if !ok {
		t.Fatalf("top level = %T, want *ForallFormula", f)
	}
	if forall1.BoundVar.Name != "var_1" || forall1.BoundVar.NType != "<var>" {
		t.Fatalf("outer bound var = %+v", forall1.BoundVar)
	}
	forall2, ok := forall1.Inner.(*formula.ForallFormula)
	if !ok {
		t.Fatalf("inner = %T, want *ForallFormula", forall1.Inner)
	}
	if forall2.BoundVar.Name != "var_2" {
		t.Fatalf("inner bound var = %+v", forall2.BoundVar)
	}
	smt, ok := forall2.Inner.(*formula.SMTFormula)
	if !ok {
		t.Fatalf("leaf = %T, want *SMTFormula", forall2.Inner)
	}
	free := smt.FreeVariables()
	if len(free) != 2 {
		t.Fatalf("leaf free vars = %v, want 2", free)
	}
}

// Round trip requires unparse+reparse later, but Parse alone must already
// settle on a stable AST shape for an unparse step to round-trip through.
func TestParseSimpleEqualityIsDeterministic(t *testing.T) {
	g := langGrammar(t)
	const src = `forall <var> var_1 in start: forall <var> var_2 in start: (= var_1 var_2)`
	a := mustParse(t, src, g)
	b := mustParse(t, src, g)
	if !a.Equal(b) {
		t.Fatalf("two parses of the same source produced unequal formulas:\n%v\n%v", a, b)
	}
}

// Scenario 2: match expression with declared-before-used, nested
// quantifiers, a structural predicate call, and an "in" clause rooted at a
// bound variable rather than "start".
func TestParseMatchExpressionDeclaredBeforeUsed(t *testing.T) {
	g := langGrammar(t)
	const src = `forall <assgn> a1="{<var> l1} := {<rhs> r1}" in start: ` +
		`forall <var> v in r1: ` +
		`exists <assgn> a2="{<var> l2} := {<rhs> r2}" in start: ` +
		`(before(a2, a1) and (= l2 v))`
	f := mustParse(t, src, g)

	outer, ok := f.(*formula.ForallFormula)
	if !ok {
		t.Fatalf("top level = %T, want *ForallFormula", f)
	}
	if outer.BindExpr == nil {
		t.Fatalf("outer quantifier lost its bind expression")
	}
	mid, ok := outer.Inner.(*formula.ForallFormula)
	if !ok {
		t.Fatalf("middle = %T, want *ForallFormula", outer.Inner)
	}
	if mid.InVar == nil || mid.InVar.Name != "r1" {
		t.Fatalf("middle quantifier's in-clause = %+v, want r1", mid.InVar)
	}
	inner, ok := mid.Inner.(*formula.ExistsFormula)
	if !ok {
		t.Fatalf("inner = %T, want *ExistsFormula", mid.Inner)
	}
	if inner.BindExpr == nil {
		t.Fatalf("inner quantifier lost its bind expression")
	}
	conj, ok := inner.Inner.(*formula.ConjunctiveFormula)
	if !ok {
		t.Fatalf("body = %T, want *ConjunctiveFormula", inner.Inner)
	}
	if _, ok := conj.Args[0].(*formula.StructuralPredicateFormula); !ok {
		t.Fatalf("first conjunct = %T, want *StructuralPredicateFormula", conj.Args[0])
	}
	if _, ok := conj.Args[1].(*formula.SMTFormula); !ok {
		t.Fatalf("second conjunct = %T, want *SMTFormula", conj.Args[1])
	}
}

// Scenario 5: an omitted name and an omitted "in" clause both default, and
// the two spellings parse to equal formulas.
func TestParseDefaultNameAndOmittedIn(t *testing.T) {
	g := langGrammar(t)
	shorthand := mustParse(t, `forall <var>: (= <var> "x")`, g)
	explicit := mustParse(t, `forall <var> var in start: (= var "x")`, g)

	if !shorthand.Equal(explicit) {
		t.Fatalf("shorthand = %v, explicit = %v, want equal", shorthand, explicit)
	}
}

// A bare "<nt>" used as a predicate argument, with no enclosing quantifier
// of that type, lifts to a fresh top-level forall over start — exercising
// the parser's other bare-nonterminal path (predicate calls, not just SMT
// leaves).
func TestParseBareNonterminalPredicateArgument(t *testing.T) {
	g := langGrammar(t)
	f, err := Parse(`before(<var>, <rhs>)`, g, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	outer, ok := f.(*formula.ForallFormula)
	if !ok {
		t.Fatalf("top level = %T, want *ForallFormula", f)
	}
	if outer.BoundVar.NType != "<var>" {
		t.Fatalf("outer bound nonterminal = %v, want <var>", outer.BoundVar.NType)
	}
	inner, ok := outer.Inner.(*formula.ForallFormula)
	if !ok {
		t.Fatalf("inner = %T, want *ForallFormula", outer.Inner)
	}
	if inner.BoundVar.NType != "<rhs>" {
		t.Fatalf("inner bound nonterminal = %v, want <rhs>", inner.BoundVar.NType)
	}
	pred, ok := inner.Inner.(*formula.StructuralPredicateFormula)
	if !ok {
		t.Fatalf("body = %T, want *StructuralPredicateFormula", inner.Inner)
	}
	if pred.Pred.Name != "before" {
		t.Fatalf("predicate = %q, want before", pred.Pred.Name)
	}
}

// Unknown predicate names and arity mismatches both surface as errors
// rather than panicking or silently accepting the call.
func TestParseUnknownPredicateIsAnError(t *testing.T) {
	g := langGrammar(t)
	if _, err := Parse(`nosuchpredicate(<var>, <rhs>)`, g, nil); err == nil {
		t.Fatalf("Parse of an unknown predicate succeeded, want error")
	}
}

func TestParseArityMismatchIsAnError(t *testing.T) {
	g := langGrammar(t)
	if _, err := Parse(`before(<var>)`, g, nil); err == nil {
		t.Fatalf("Parse of before/1 succeeded, want arity error")
	}
}

// "and"/"or"/"not"/"implies"/"iff"/"xor" all parse, with "not" binding
// tighter than every binary combinator.
func TestParseCombinators(t *testing.T) {
	g := langGrammar(t)
	const src = `forall <var> v in start: ` +
		`not (= v "x") and (= v "y") or (= v "z") implies (= v "x") iff (= v "y") xor (= v "z")`
	if _, err := Parse(src, g, nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}
}

// A redeclared variable name is a parser-level error, not a silent rebind.
func TestParseRedeclaredVariableIsAnError(t *testing.T) {
	g := langGrammar(t)
	const src = `forall <var> v in start: forall <rhs> v in start: (= v "x")`
	if _, err := Parse(src, g, nil); err == nil {
		t.Fatalf("Parse with a redeclared variable succeeded, want error")
	}
}

// forall int / exists int quantify over NUM rather than any nonterminal.
func TestParseIntQuantifier(t *testing.T) {
	g := langGrammar(t)
	f := mustParse(t, `forall int n: forall <var> v in start: (>= n 0)`, g)
	outer, ok := f.(*formula.ForallIntFormula)
	if !ok {
		t.Fatalf("top level = %T, want *ForallIntFormula", f)
	}
	if outer.BoundVar.NType != ast.NumType {
		t.Fatalf("bound var type = %q, want %q", outer.BoundVar.NType, ast.NumType)
	}
}

// An explicit "const" declaration overrides the implicit "start" constant
// as the top-level free variable.
func TestParseConstDeclaration(t *testing.T) {
	g := langGrammar(t)
	f := mustParse(t, `const prog: <stmt>; forall <var> v in prog: (= v "x")`, g)
	outer, ok := f.(*formula.ForallFormula)
	if !ok {
		t.Fatalf("top level = %T, want *ForallFormula", f)
	}
	if outer.InVar == nil || outer.InVar.Name != "prog" || outer.InVar.NType != "<stmt>" {
		t.Fatalf("in-clause = %+v, want the declared constant prog:<stmt>", outer.InVar)
	}
}
