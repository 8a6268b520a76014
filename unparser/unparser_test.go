package unparser

import (
	"strings"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/synthgrammar/isla/formula"
	"github.com/synthgrammar/isla/grammar"
	"github.com/synthgrammar/isla/parser"
)

// langGrammar mirrors parser_test.go's assignment-language fixture: the
// unparser round-trips through the same parser, so it needs the same
// grammar to resolve bare nonterminals and XPath shorthand against.
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

// roundTrip parses src, unparses the result, and reparses the unparsed
// text, asserting the two formulas are equal: unparse is only required to
// produce text the parser accepts back into an equal AST, not to reproduce
// src verbatim. It also asserts unparsing is idempotent on its own output:
// since Unparse never renames a bound variable, reparsing canonical output
// and unparsing it again must reproduce exactly the same text, and a
// mismatch there is reported as a diff rather than a bare "not equal".
func roundTrip(t *testing.T, src string, g *grammar.Grammar) (formula.Formula, string, formula.Formula) {
	t.Helper()
	f, err := parser.Parse(src, g, nil)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	out := Unparse(f)
	reparsed, err := parser.Parse(out, g, nil)
	if err != nil {
		t.Fatalf("Parse of unparsed text failed: %v\nunparsed text:\n%s", err, out)
	}
	requireStableUnparse(t, out, Unparse(reparsed))
	return f, out, reparsed
}

func requireStableUnparse(t *testing.T, out, reunparsed string) {
	t.Helper()
	if out == reunparsed {
		return
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(out, reunparsed, false)
	t.Fatalf("unparse is not idempotent on its own output:\n%s", dmp.DiffPrettyText(diffs))
}

func TestUnparseRoundTripsSimpleEquality(t *testing.T) {
	g := langGrammar(t)
	const src = `forall <var> var_1 in start: forall <var> var_2 in start: (= var_1 var_2)`
	f, out, reparsed := roundTrip(t, src, g)
	if !f.Equal(reparsed) {
		t.Fatalf("round trip did not preserve the formula:\nunparsed:\n%s", out)
	}
}

func TestUnparseRoundTripsMatchExpression(t *testing.T) {
	g := langGrammar(t)
	const src = `forall <assgn> a1="{<var> l1} := {<rhs> r1}" in start: ` +
		`forall <var> v in r1: ` +
		`exists <assgn> a2="{<var> l2} := {<rhs> r2}" in start: ` +
		`(before(a2, a1) and (= l2 v))`
	f, out, reparsed := roundTrip(t, src, g)
	if !f.Equal(reparsed) {
		t.Fatalf("round trip did not preserve the formula:\nunparsed:\n%s", out)
	}
}

func TestUnparseRoundTripsCombinatorsAndIntQuantifiers(t *testing.T) {
	g := langGrammar(t)
	const src = `forall int n: forall <var> v in start: not (= v "x") and (= v "y") or (>= n 0)`
	f, out, reparsed := roundTrip(t, src, g)
	if !f.Equal(reparsed) {
		t.Fatalf("round trip did not preserve the formula:\nunparsed:\n%s", out)
	}
}

func TestUnparseOmitsConstLineForImplicitStart(t *testing.T) {
	g := langGrammar(t)
	f, err := parser.Parse(`forall <var>: (= <var> "x")`, g, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out := Unparse(f)
	if strings.Contains(out, "const ") {
		t.Fatalf("unparse of a formula over the implicit start constant emitted a const line:\n%s", out)
	}
}

func TestUnparseEmitsConstLineForExplicitConstant(t *testing.T) {
	g := langGrammar(t)
	const src = `const prog: <stmt>; forall <var> v in prog: (= v "x")`
	f, err := parser.Parse(src, g, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out := Unparse(f)
	if !strings.Contains(out, "const prog: <stmt>;") {
		t.Fatalf("unparse of a formula over an explicit constant omitted the const line:\n%s", out)
	}
	reparsed, err := parser.Parse(out, g, nil)
	if err != nil {
		t.Fatalf("Parse of unparsed text failed: %v\nunparsed text:\n%s", err, out)
	}
	if !f.Equal(reparsed) {
		t.Fatalf("round trip did not preserve the formula:\nunparsed:\n%s", out)
	}
}
