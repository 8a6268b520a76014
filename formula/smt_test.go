package formula

import (
	"testing"

	"github.com/synthgrammar/isla/ast"
)

func TestSMTFormulaSubstituteExpressionsDefersOpenTree(t *testing.T) {
	x := ast.NewConstant("x", "<expr>")
	f := smtLeaf(t, "(= x 1)", x)

	open := ast.NewOpenLeaf("<expr>")
	got, ok := f.SubstituteExpressions(map[ast.Variable]*ast.Tree{x: open}).(*SMTFormula)
	if !ok {
		t.Fatalf("SubstituteExpressions on an open tree = %T, want *SMTFormula (deferred)", got)
	}
	if _, stillDeferred := got.Substitutions[x]; !stillDeferred {
		t.Fatalf("expected x's substitution to still be recorded, got %+v", got.Substitutions)
	}
	if len(got.FreeVars) != 0 {
		t.Fatalf("FreeVars after substitution = %v, want empty", got.FreeVars)
	}
}

func TestSMTFormulaSubstituteExpressionsAutoEvalsWhenClosed(t *testing.T) {
	x := ast.NewConstant("x", "<expr>")
	f := smtLeaf(t, "(= x 1)", x)

	closed := ast.NewLeaf("1")
	got := f.SubstituteExpressions(map[ast.Variable]*ast.Tree{x: closed})
	smtGot, ok := got.(*SMTFormula)
	if !ok {
		t.Fatalf("SubstituteExpressions on a closed tree = %T, want *SMTFormula", got)
	}
	if !smtGot.IsTrue() {
		t.Fatalf("substituting x=1 into (= x 1) = %v, want ground true", smtGot)
	}
}

func TestSMTFormulaSubstituteExpressionsAutoEvalFalse(t *testing.T) {
	x := ast.NewConstant("x", "<expr>")
	f := smtLeaf(t, "(= x 1)", x)

	closed := ast.NewLeaf("2")
	got := f.SubstituteExpressions(map[ast.Variable]*ast.Tree{x: closed}).(*SMTFormula)
	if !got.IsFalse() {
		t.Fatalf("substituting x=2 into (= x 1) = %v, want ground false", got)
	}
}

func TestSMTFormulaSubstituteVariablesRenames(t *testing.T) {
	x := ast.NewConstant("x", "<expr>")
	y := ast.NewConstant("y", "<expr>")
	f := smtLeaf(t, "(= x 1)", x)

	got := f.SubstituteVariables(map[ast.Variable]ast.Variable{x: y}).(*SMTFormula)
	if want := "(= y 1)"; got.Expr.String() != want {
		t.Fatalf("SubstituteVariables renamed expr = %q, want %q", got.Expr.String(), want)
	}
	if len(got.FreeVars) != 1 || got.FreeVars[0] != y {
		t.Fatalf("FreeVars after rename = %v, want [y]", got.FreeVars)
	}
}

func TestSMTFormulaTreeArguments(t *testing.T) {
	x := ast.NewConstant("x", "<expr>")
	f := smtLeaf(t, "(= x 1)", x)
	closed := ast.NewLeaf("1")
	// AutoEval: false keeps the substitution recorded instead of collapsing
	// straight to a ground constant, so TreeArguments has something to report.
	f2 := &SMTFormula{
		Expr:          f.Expr,
		Substitutions: map[ast.Variable]*ast.Tree{x: closed},
		AutoEval:      false,
	}
	trees := f2.TreeArguments()
	if len(trees) != 1 || trees[0].ID() != closed.ID() {
		t.Fatalf("TreeArguments() = %v, want [closed]", trees)
	}
}

func TestSMTFormulaEqualIgnoresSyntacticDifferences(t *testing.T) {
	a := smtLeaf(t, "(= x 1)", ast.NewConstant("x", "<expr>"))
	b := smtLeaf(t, "(= x 1)", ast.NewConstant("x", "<expr>"))
	if !a.Equal(b) {
		t.Fatalf("two SMTFormulas built from the same source should be Equal")
	}
	c := smtLeaf(t, "(= x 2)", ast.NewConstant("x", "<expr>"))
	if a.Equal(c) {
		t.Fatalf("SMTFormulas with different expressions should not be Equal")
	}
}

func TestBoolSMTRoundTrip(t *testing.T) {
	if !boolSMT(true).IsTrue() {
		t.Fatalf("boolSMT(true) is not recognized as true")
	}
	if !boolSMT(false).IsFalse() {
		t.Fatalf("boolSMT(false) is not recognized as false")
	}
}
