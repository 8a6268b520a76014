package formula

import (
	"testing"

	"github.com/synthgrammar/isla/ast"
)

func TestForallFreeVariablesExcludesBound(t *testing.T) {
	bv := ast.NewBoundVariable("e", "<expr>")
	start := ast.NewConstant("start", "<start>")
	inner := smtLeaf(t, "(= e 1)", bv)
	forall := NewForall(bv, start, inner, nil)

	free := forall.FreeVariables()
	if len(free) != 1 || free[0] != start {
		t.Fatalf("FreeVariables() = %v, want [start]", free)
	}
	bound := forall.BoundVariables()
	if len(bound) != 1 || bound[0] != bv {
		t.Fatalf("BoundVariables() = %v, want [e]", bound)
	}
}

func TestForallSubstituteExpressionsDropsUnusedBoundVariable(t *testing.T) {
	bv := ast.NewBoundVariable("e", "<expr>")
	start := ast.NewConstant("start", "<start>")
	// Inner formula never mentions e, so substituting start away should
	// simplify the whole quantifier to the inner formula.
	other := ast.NewConstant("other", "<expr>")
	inner := smtLeaf(t, "(= other 1)", other)
	forall := NewForall(bv, start, inner, nil)

	tree := ast.NewLeaf("irrelevant")
	got := forall.SubstituteExpressions(map[ast.Variable]*ast.Tree{start: tree})
	if _, stillQuantified := got.(*ForallFormula); stillQuantified {
		t.Fatalf("expected the quantifier to simplify away, got %T", got)
	}
	if !got.Equal(inner) {
		t.Fatalf("SubstituteExpressions() = %v, want inner formula %v", got, inner)
	}
}

func TestForallAddAlreadyMatchedPreservesID(t *testing.T) {
	bv := ast.NewBoundVariable("e", "<expr>")
	start := ast.NewConstant("start", "<start>")
	inner := smtLeaf(t, "(= e 1)", bv)
	forall := NewForall(bv, start, inner, nil)

	tree := ast.NewLeaf("x")
	matched := forall.AddAlreadyMatched(tree)
	if matched.ID != forall.ID {
		t.Fatalf("AddAlreadyMatched changed ID: got %d, want %d", matched.ID, forall.ID)
	}
	if !matched.IsAlreadyMatched(tree) {
		t.Fatalf("IsAlreadyMatched(tree) = false, want true")
	}
	if forall.IsAlreadyMatched(tree) {
		t.Fatalf("original ForallFormula was mutated by AddAlreadyMatched")
	}
}

func TestExistsIntFreeVariablesExcludesBound(t *testing.T) {
	bv := ast.NewBoundVariable("n", ast.NumType)
	inner := smtLeaf(t, "(> n 0)", bv)
	exists := &ExistsIntFormula{BoundVar: bv, Inner: inner}

	if free := exists.FreeVariables(); len(free) != 0 {
		t.Fatalf("FreeVariables() = %v, want empty", free)
	}
	if bound := exists.BoundVariables(); len(bound) != 1 || bound[0] != bv {
		t.Fatalf("BoundVariables() = %v, want [n]", bound)
	}
}
