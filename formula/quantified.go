package formula

import (
	"fmt"
	"sync/atomic"

	"github.com/synthgrammar/isla/ast"
	"github.com/synthgrammar/isla/bindexpr"
)

// quantified holds the fields ForallFormula and ExistsFormula share: the
// bound variable, the "in" target (a variable before instantiation, a
// concrete tree afterward — exactly one of InVar/InTree is set), the
// quantifier's inner formula, and an optional match expression.
type quantified struct {
	BoundVar ast.Variable
	InVar    *ast.Variable
	InTree   *ast.Tree
	Inner    Formula
	BindExpr *bindexpr.BindExpression
}

func (q quantified) boundVariables() []ast.Variable {
	vars := []ast.Variable{q.BoundVar}
	if q.BindExpr != nil {
		vars = append(vars, q.BindExpr.BoundVariables()...)
	}
	return dedupVars(vars)
}

func (q quantified) freeVariables() []ast.Variable {
	var vars []ast.Variable
	if q.InVar != nil {
		vars = append(vars, *q.InVar)
	}
	vars = append(vars, q.Inner.FreeVariables()...)
	return subtractVars(dedupVars(vars), q.boundVariables())
}

func (q quantified) treeArguments() []*ast.Tree {
	var trees []*ast.Tree
	if q.InTree != nil {
		trees = append(trees, q.InTree)
	}
	trees = append(trees, q.Inner.TreeArguments()...)
	return dedupTrees(trees)
}

func (q quantified) substituteVariables(subst map[ast.Variable]ast.Variable) quantified {
	newInVar := q.InVar
	if q.InVar != nil {
		renamed := renameVar(*q.InVar, subst)
		newInVar = &renamed
	}
	var bindExpr *bindexpr.BindExpression
	if q.BindExpr != nil {
		bindExpr = q.BindExpr.SubstituteVariables(subst)
	}
	return quantified{
		BoundVar: renameVar(q.BoundVar, subst),
		InVar:    newInVar,
		InTree:   q.InTree,
		Inner:    q.Inner.SubstituteVariables(subst),
		BindExpr: bindExpr,
	}
}

// substituteExpressions applies subst to the "in" target and the inner
// formula, returning the updated quantified fields plus whether the bound
// variable still occurs free in the rewritten inner formula (used by the
// caller to decide whether the quantifier can be dropped).
func (q quantified) substituteExpressions(subst map[ast.Variable]*ast.Tree) (quantified, bool) {
	newInVar, newInTree := q.InVar, q.InTree
	if q.InVar != nil {
		if t, ok := subst[*q.InVar]; ok {
			newInVar, newInTree = nil, t
		}
	}
	newInner := q.Inner.SubstituteExpressions(subst)
	stillFree := false
	for _, v := range newInner.FreeVariables() {
		if v == q.BoundVar {
			stillFree = true
			break
		}
	}
	return quantified{
		BoundVar: q.BoundVar,
		InVar:    newInVar,
		InTree:   newInTree,
		Inner:    newInner,
		BindExpr: q.BindExpr,
	}, stillFree
}

func (q quantified) inVariableString() string {
	if q.InTree != nil {
		return q.InTree.String()
	}
	return q.InVar.String()
}

func quantifiedEqual(a, b quantified) bool {
	if a.BoundVar != b.BoundVar || !a.Inner.Equal(b.Inner) {
		return false
	}
	if (a.InVar == nil) != (b.InVar == nil) || (a.InVar != nil && *a.InVar != *b.InVar) {
		return false
	}
	if (a.InTree == nil) != (b.InTree == nil) || (a.InTree != nil && a.InTree.ID() != b.InTree.ID()) {
		return false
	}
	if (a.BindExpr == nil) != (b.BindExpr == nil) {
		return false
	}
	if a.BindExpr != nil && a.BindExpr.String() != b.BindExpr.String() {
		return false
	}
	return true
}

var nextForallID int64 = -1

// freshForallID hands out the next universal-quantifier ID, used whenever a
// rewrite produces a new ForallFormula with no natural predecessor to carry
// an ID forward from (e.g. negating an ExistsFormula into a ForallFormula).
func freshForallID() int64 { return atomic.AddInt64(&nextForallID, 1) }

// ForallFormula is universal quantification over expansions of BoundVar's
// nonterminal within InVar/InTree. AlreadyMatched records the tree IDs the
// quantifier has already been instantiated for, so a solver can avoid
// re-firing on the same subtree forever; ID distinguishes two otherwise
// structurally equal copies of the same quantifier during vacuity
// bookkeeping (a solver must not double-count satisfaction through two
// ForallFormula values that happen to compare equal).
type ForallFormula struct {
	quantified
	AlreadyMatched map[int64]bool
	ID             int64
}

// NewForall builds a fresh universal formula with an auto-assigned ID and an
// empty AlreadyMatched set, mirroring the source language's per-process
// quantifier counter.
func NewForall(bv ast.Variable, inVar ast.Variable, inner Formula, bindExpr *bindexpr.BindExpression) *ForallFormula {
	return &ForallFormula{
		quantified: quantified{BoundVar: bv, InVar: &inVar, Inner: inner, BindExpr: bindExpr},
		ID:         freshForallID(),
	}
}

// AddAlreadyMatched returns a copy of f with trees' IDs added to
// AlreadyMatched, keeping the same ID (it is still "the same" quantifier
// instance for vacuity bookkeeping purposes).
func (f *ForallFormula) AddAlreadyMatched(trees ...*ast.Tree) *ForallFormula {
	matched := map[int64]bool{}
	for id := range f.AlreadyMatched {
		matched[id] = true
	}
	for _, t := range trees {
		matched[t.ID()] = true
	}
	return &ForallFormula{quantified: f.quantified, AlreadyMatched: matched, ID: f.ID}
}

// IsAlreadyMatched reports whether t's ID has previously been recorded via
// AddAlreadyMatched.
func (f *ForallFormula) IsAlreadyMatched(t *ast.Tree) bool {
	return f.AlreadyMatched[t.ID()]
}

func (f *ForallFormula) BoundVariables() []ast.Variable { return f.boundVariables() }
func (f *ForallFormula) FreeVariables() []ast.Variable  { return f.freeVariables() }
func (f *ForallFormula) TreeArguments() []*ast.Tree     { return f.treeArguments() }

func (f *ForallFormula) SubstituteVariables(subst map[ast.Variable]ast.Variable) Formula {
	return &ForallFormula{quantified: f.quantified.substituteVariables(subst), AlreadyMatched: f.AlreadyMatched, ID: f.ID}
}

func (f *ForallFormula) SubstituteExpressions(subst map[ast.Variable]*ast.Tree) Formula {
	q, stillFree := f.quantified.substituteExpressions(subst)
	if !stillFree && f.BindExpr == nil {
		return q.Inner
	}
	return &ForallFormula{quantified: q, AlreadyMatched: f.AlreadyMatched, ID: f.ID}
}

func (f *ForallFormula) Accept(v Visitor) {
	v.VisitForall(f)
	if v.Continue(f) {
		f.Inner.Accept(v)
	}
}

func (f *ForallFormula) Equal(other Formula) bool {
	o, ok := other.(*ForallFormula)
	return ok && quantifiedEqual(f.quantified, o.quantified)
}

func (f *ForallFormula) String() string {
	bind := ""
	if f.BindExpr != nil {
		bind = fmt.Sprintf("%q = ", f.BindExpr.String())
	}
	return fmt.Sprintf("∀ %s%s ∈ %s: (%s)", bind, f.BoundVar.String(), f.inVariableString(), f.Inner.String())
}

// ExistsFormula is existential quantification, the dual of ForallFormula.
// It carries no vacuity-bookkeeping fields since a solver only ever needs to
// find one witness, not track which have already been tried.
type ExistsFormula struct {
	quantified
}

// NewExists builds an existential formula.
func NewExists(bv ast.Variable, inVar ast.Variable, inner Formula, bindExpr *bindexpr.BindExpression) *ExistsFormula {
	return &ExistsFormula{quantified{BoundVar: bv, InVar: &inVar, Inner: inner, BindExpr: bindExpr}}
}

func (f *ExistsFormula) BoundVariables() []ast.Variable { return f.boundVariables() }
func (f *ExistsFormula) FreeVariables() []ast.Variable  { return f.freeVariables() }
func (f *ExistsFormula) TreeArguments() []*ast.Tree     { return f.treeArguments() }

func (f *ExistsFormula) SubstituteVariables(subst map[ast.Variable]ast.Variable) Formula {
	return &ExistsFormula{f.quantified.substituteVariables(subst)}
}

func (f *ExistsFormula) SubstituteExpressions(subst map[ast.Variable]*ast.Tree) Formula {
	q, stillFree := f.quantified.substituteExpressions(subst)
	if !stillFree && f.BindExpr == nil {
		return q.Inner
	}
	return &ExistsFormula{q}
}

func (f *ExistsFormula) Accept(v Visitor) {
	v.VisitExists(f)
	if v.Continue(f) {
		f.Inner.Accept(v)
	}
}

func (f *ExistsFormula) Equal(other Formula) bool {
	o, ok := other.(*ExistsFormula)
	return ok && quantifiedEqual(f.quantified, o.quantified)
}

func (f *ExistsFormula) String() string {
	bind := ""
	if f.BindExpr != nil {
		bind = fmt.Sprintf("%q = ", f.BindExpr.String())
	}
	return fmt.Sprintf("∃ %s%s ∈ %s: (%s)", bind, f.BoundVar.String(), f.inVariableString(), f.Inner.String())
}

// ForallIntFormula and ExistsIntFormula quantify over integers (NType ==
// ast.NumType) rather than over nonterminal expansions: there is no "in"
// target, since the domain is all integers, not the leaves of some tree.
type ForallIntFormula struct {
	BoundVar ast.Variable
	Inner    Formula
}

func (f *ForallIntFormula) BoundVariables() []ast.Variable { return []ast.Variable{f.BoundVar} }
func (f *ForallIntFormula) FreeVariables() []ast.Variable {
	return subtractVars(f.Inner.FreeVariables(), []ast.Variable{f.BoundVar})
}
func (f *ForallIntFormula) TreeArguments() []*ast.Tree { return f.Inner.TreeArguments() }

func (f *ForallIntFormula) SubstituteVariables(subst map[ast.Variable]ast.Variable) Formula {
	return &ForallIntFormula{BoundVar: renameVar(f.BoundVar, subst), Inner: f.Inner.SubstituteVariables(subst)}
}

func (f *ForallIntFormula) SubstituteExpressions(subst map[ast.Variable]*ast.Tree) Formula {
	return &ForallIntFormula{BoundVar: f.BoundVar, Inner: f.Inner.SubstituteExpressions(subst)}
}

func (f *ForallIntFormula) Accept(v Visitor) {
	v.VisitForallInt(f)
	if v.Continue(f) {
		f.Inner.Accept(v)
	}
}

func (f *ForallIntFormula) Equal(other Formula) bool {
	o, ok := other.(*ForallIntFormula)
	return ok && f.BoundVar == o.BoundVar && f.Inner.Equal(o.Inner)
}

func (f *ForallIntFormula) String() string {
	return fmt.Sprintf("∀ int %s: %s", f.BoundVar.Name, f.Inner.String())
}

type ExistsIntFormula struct {
	BoundVar ast.Variable
	Inner    Formula
}

func (f *ExistsIntFormula) BoundVariables() []ast.Variable { return []ast.Variable{f.BoundVar} }
func (f *ExistsIntFormula) FreeVariables() []ast.Variable {
	return subtractVars(f.Inner.FreeVariables(), []ast.Variable{f.BoundVar})
}
func (f *ExistsIntFormula) TreeArguments() []*ast.Tree { return f.Inner.TreeArguments() }

func (f *ExistsIntFormula) SubstituteVariables(subst map[ast.Variable]ast.Variable) Formula {
	return &ExistsIntFormula{BoundVar: renameVar(f.BoundVar, subst), Inner: f.Inner.SubstituteVariables(subst)}
}

func (f *ExistsIntFormula) SubstituteExpressions(subst map[ast.Variable]*ast.Tree) Formula {
	return &ExistsIntFormula{BoundVar: f.BoundVar, Inner: f.Inner.SubstituteExpressions(subst)}
}

func (f *ExistsIntFormula) Accept(v Visitor) {
	v.VisitExistsInt(f)
	if v.Continue(f) {
		f.Inner.Accept(v)
	}
}

func (f *ExistsIntFormula) Equal(other Formula) bool {
	o, ok := other.(*ExistsIntFormula)
	return ok && f.BoundVar == o.BoundVar && f.Inner.Equal(o.Inner)
}

func (f *ExistsIntFormula) String() string {
	return fmt.Sprintf("∃ int %s: %s", f.BoundVar.Name, f.Inner.String())
}
