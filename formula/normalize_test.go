package formula

import (
	"testing"

	"github.com/synthgrammar/isla/ast"
)

func TestToNNFPushesNegationThroughConjunction(t *testing.T) {
	x := ast.NewConstant("x", "<expr>")
	y := ast.NewConstant("y", "<expr>")
	a := smtLeaf(t, "(= x 1)", x)
	b := smtLeaf(t, "(= y 2)", y)
	conj := And(a, b)

	nnf := ToNNF(Not(conj))
	disj, ok := nnf.(*DisjunctiveFormula)
	if !ok {
		t.Fatalf("ToNNF(¬(a ∧ b)) = %T, want *DisjunctiveFormula", nnf)
	}
	for _, arg := range disj.Args {
		if _, isNegated := arg.(*NegatedFormula); isNegated {
			t.Fatalf("ToNNF left a NegatedFormula above a leaf: %v", arg)
		}
	}
}

func TestToNNFQuantifierSwapsUnderNegation(t *testing.T) {
	bv := ast.NewBoundVariable("e", "<expr>")
	start := ast.NewConstant("start", "<start>")
	inner := smtLeaf(t, "(= e 1)", bv)
	forall := NewForall(bv, start, inner, nil)

	nnf := ToNNF(Not(forall))
	exists, ok := nnf.(*ExistsFormula)
	if !ok {
		t.Fatalf("ToNNF(¬Forall) = %T, want *ExistsFormula", nnf)
	}
	smtInner, ok := exists.Inner.(*SMTFormula)
	if !ok {
		t.Fatalf("ToNNF(¬Forall).Inner = %T, want *SMTFormula", exists.Inner)
	}
	if want := "(!= e 1)"; smtInner.Expr.String() != want {
		t.Fatalf("inner SMT formula = %q, want %q (negated)", smtInner.Expr.String(), want)
	}
}

func TestToDNFDistributesConjunctionOverDisjunction(t *testing.T) {
	a := smtLeaf(t, "(= x 1)", ast.NewConstant("x", "<expr>"))
	b := smtLeaf(t, "(= x 2)", ast.NewConstant("x", "<expr>"))
	c := smtLeaf(t, "(= x 3)", ast.NewConstant("x", "<expr>"))

	// (a ∨ b) ∧ c
	formula := And(Or(a, b), c)
	dnf := ToDNF(formula)

	disjuncts := SplitDisjunction(dnf)
	if len(disjuncts) != 2 {
		t.Fatalf("ToDNF((a ∨ b) ∧ c) has %d top-level disjuncts, want 2", len(disjuncts))
	}
	for _, d := range disjuncts {
		if _, ok := d.(*ConjunctiveFormula); !ok {
			if !d.Equal(c) {
				t.Fatalf("unexpected disjunct shape: %v", d)
			}
		}
	}
}

func TestEnsureUniqueBoundVariablesRenamesCollision(t *testing.T) {
	bv := ast.NewBoundVariable("e", "<expr>")
	start := ast.NewConstant("start", "<start>")

	innerInner := smtLeaf(t, "(= e 1)", bv)
	innerForall := NewForall(bv, start, innerInner, nil)
	outerForall := NewForall(bv, start, innerForall, nil)

	unique := EnsureUniqueBoundVariables(outerForall, nil).(*ForallFormula)
	innerUnique, ok := unique.Inner.(*ForallFormula)
	if !ok {
		t.Fatalf("EnsureUniqueBoundVariables changed the nesting shape: %T", unique.Inner)
	}
	if unique.BoundVar.Name == innerUnique.BoundVar.Name {
		t.Fatalf("nested binders still share a name: %q", unique.BoundVar.Name)
	}
}

func TestReplaceSubstitutesMatchingSubformula(t *testing.T) {
	a := smtLeaf(t, "(= x 1)", ast.NewConstant("x", "<expr>"))
	b := smtLeaf(t, "(= y 2)", ast.NewConstant("y", "<expr>"))
	replacement := smtLeaf(t, "(= z 3)", ast.NewConstant("z", "<expr>"))

	conj := And(a, b)
	got := Replace(conj, a, replacement)

	conjuncts := SplitConjunction(got)
	found := false
	for _, c := range conjuncts {
		if c.Equal(replacement) {
			found = true
		}
		if c.Equal(a) {
			t.Fatalf("Replace left the original subformula in place: %v", got)
		}
	}
	if !found {
		t.Fatalf("Replace did not install the replacement: %v", got)
	}
}

func TestReplaceFuncPredicateForm(t *testing.T) {
	a := smtLeaf(t, "(= x 1)", ast.NewConstant("x", "<expr>"))
	b := smtLeaf(t, "(= y 2)", ast.NewConstant("y", "<expr>"))
	replacement := smtLeaf(t, "(= z 3)", ast.NewConstant("z", "<expr>"))

	conj := And(a, b)
	// The predicate-only form: pred reports whether to replace, never
	// supplying a rewrite itself, so every match becomes withFormula.
	got := ReplaceFunc(conj, func(f Formula) (Formula, bool) {
		return nil, f.Equal(a)
	}, replacement)

	conjuncts := SplitConjunction(got)
	found := false
	for _, c := range conjuncts {
		if c.Equal(replacement) {
			found = true
		}
		if c.Equal(a) {
			t.Fatalf("ReplaceFunc left the original subformula in place: %v", got)
		}
	}
	if !found {
		t.Fatalf("ReplaceFunc did not install the replacement: %v", got)
	}
}

func TestReplaceFuncRewriteForm(t *testing.T) {
	a := smtLeaf(t, "(= x 1)", ast.NewConstant("x", "<expr>"))
	b := smtLeaf(t, "(= y 2)", ast.NewConstant("y", "<expr>"))

	conj := And(a, b)
	// The rewrite-function form: pred itself returns the formula to
	// substitute (here, every non-ground SMT leaf becomes the literal
	// "true"), so withFormula is irrelevant and can be left nil. The
	// IsTrue() guard keeps the rewrite from matching its own output when
	// ReplaceFunc reprocesses it.
	got := ReplaceFunc(conj, func(f Formula) (Formula, bool) {
		if s, ok := f.(*SMTFormula); ok && !s.IsTrue() {
			return trueSMT(), true
		}
		return nil, false
	}, nil)

	if !got.(*SMTFormula).IsTrue() {
		t.Fatalf("ReplaceFunc rewrite form = %v, want true (both leaves rewritten to true and absorbed)", got)
	}
}

func TestReplaceInsideNegationShortCircuits(t *testing.T) {
	a := smtLeaf(t, "(= x 1)", ast.NewConstant("x", "<expr>"))
	negated := &NegatedFormula{Arg: a}
	got := Replace(negated, a, falseSMT())
	if !got.(*SMTFormula).IsTrue() {
		t.Fatalf("Replace(¬a, a, false) = %v, want true (¬false)", got)
	}
}

func TestInstantiateTopConstantReplacesFreeConstant(t *testing.T) {
	start := ast.NewConstant("start", "<start>")
	f := smtLeaf(t, "(= start 1)", start)

	tree := ast.NewLeaf("1")
	got, err := InstantiateTopConstant(f, tree)
	if err != nil {
		t.Fatalf("InstantiateTopConstant: %v", err)
	}
	if !got.(*SMTFormula).IsTrue() {
		t.Fatalf("InstantiateTopConstant result = %v, want ground true", got)
	}
}

func TestInstantiateTopConstantErrorsWithoutFreeConstant(t *testing.T) {
	bv := ast.NewBoundVariable("e", "<expr>")
	start := ast.NewConstant("start", "<start>")
	inner := smtLeaf(t, "(= e 1)", bv)
	forall := NewForall(bv, start, inner, nil)
	// start is still free here, so this should succeed; swap in a formula
	// with no free constant at all to exercise the error path.
	closed := forall.SubstituteExpressions(map[ast.Variable]*ast.Tree{start: ast.NewLeaf("x")})
	if _, err := InstantiateTopConstant(closed, ast.NewLeaf("y")); err == nil {
		t.Fatalf("expected an error when no free constant remains")
	}
}
