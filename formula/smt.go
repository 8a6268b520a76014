package formula

import (
	"github.com/synthgrammar/isla/ast"
	"github.com/synthgrammar/isla/smt"
)

// SMTFormula is a leaf constraint in the SMT theory of strings and
// integers. Substitutions defers variable-to-tree instantiations whose tree
// is still open (has unexpanded leaves): once every substituted tree is
// closed, AutoEval allows collapsing the formula straight to a ground
// True/False constant instead of carrying the substitution forward.
type SMTFormula struct {
	Expr         *smt.Expr
	FreeVars     []ast.Variable
	Instantiated []ast.Variable // free vars already replaced by a (possibly still-open) tree
	Substitutions map[ast.Variable]*ast.Tree
	AutoEval     bool
}

// NewSMTFormula wraps a parsed SMT expression together with the set of
// variables it is free in. AutoEval defaults to true, matching the source
// language's default.
func NewSMTFormula(expr *smt.Expr, freeVars ...ast.Variable) *SMTFormula {
	return &SMTFormula{Expr: expr, FreeVars: dedupVars(freeVars), AutoEval: true}
}

func boolSMT(b bool) *SMTFormula {
	lit := "(= 0 0)"
	if !b {
		lit = "(= 0 1)"
	}
	e, _ := smt.Parse(lit)
	return &SMTFormula{Expr: e, AutoEval: true}
}

func trueSMT() Formula  { return boolSMT(true) }
func falseSMT() Formula { return boolSMT(false) }

// IsTrue reports whether this leaf is already the ground literal "true".
func (f *SMTFormula) IsTrue() bool {
	r, err := f.Expr.Evaluate(nil)
	return err == nil && r == smt.True && len(f.Expr.FreeSymbols()) == 0
}

// IsFalse reports whether this leaf is already the ground literal "false".
func (f *SMTFormula) IsFalse() bool {
	r, err := f.Expr.Evaluate(nil)
	return err == nil && r == smt.False && len(f.Expr.FreeSymbols()) == 0
}

func (f *SMTFormula) BoundVariables() []ast.Variable { return nil }

func (f *SMTFormula) FreeVariables() []ast.Variable { return f.FreeVars }

func (f *SMTFormula) TreeArguments() []*ast.Tree {
	var trees []*ast.Tree
	for _, t := range f.Substitutions {
		trees = append(trees, t)
	}
	return dedupTrees(trees)
}

func (f *SMTFormula) SubstituteVariables(subst map[ast.Variable]ast.Variable) Formula {
	renamed := make([]ast.Variable, len(f.FreeVars))
	for i, v := range f.FreeVars {
		renamed[i] = renameVar(v, subst)
	}
	renameMap := map[string]string{}
	for old, new := range subst {
		renameMap[old.Name] = new.Name
	}
	expr, err := f.Expr.Substitute(renameMap)
	if err != nil {
		expr = f.Expr
	}
	instantiated := make([]ast.Variable, len(f.Instantiated))
	for i, v := range f.Instantiated {
		instantiated[i] = renameVar(v, subst)
	}
	subs := map[ast.Variable]*ast.Tree{}
	for v, t := range f.Substitutions {
		subs[renameVar(v, subst)] = t
	}
	return &SMTFormula{
		Expr:          expr,
		FreeVars:      dedupVars(renamed),
		Instantiated:  instantiated,
		Substitutions: subs,
		AutoEval:      f.AutoEval,
	}
}

// SubstituteExpressions implements the deferred-substitution mechanism: a
// variable being replaced by a still-open tree is recorded in Substitutions
// rather than evaluated; once every recorded tree is closed and AutoEval is
// set, the leaf is ground-evaluated immediately and collapsed to a constant.
func (f *SMTFormula) SubstituteExpressions(subst map[ast.Variable]*ast.Tree) Formula {
	newFree := make([]ast.Variable, 0, len(f.FreeVars))
	newInstantiated := append([]ast.Variable{}, f.Instantiated...)
	newSubs := map[ast.Variable]*ast.Tree{}
	for v, t := range f.Substitutions {
		newSubs[v] = t
	}

	for _, v := range f.FreeVars {
		tree, ok := subst[v]
		if !ok {
			newFree = append(newFree, v)
			continue
		}
		newSubs[v] = tree
		newInstantiated = append(newInstantiated, v)
	}

	allClosed := true
	bindings := map[string]any{}
	for v, t := range newSubs {
		if t.IsOpen() {
			allClosed = false
		}
		bindings[v.Name] = t.String()
	}

	result := &SMTFormula{
		Expr:          f.Expr,
		FreeVars:      dedupVars(newFree),
		Instantiated:  dedupVars(newInstantiated),
		Substitutions: newSubs,
		AutoEval:      f.AutoEval,
	}

	if f.AutoEval && allClosed && len(newFree) == 0 && len(newSubs) > 0 {
		r, err := f.Expr.Evaluate(bindings)
		if err == nil && r != smt.Unknown {
			return boolSMT(r == smt.True)
		}
	}

	return result
}

func (f *SMTFormula) negate() Formula {
	return &SMTFormula{
		Expr:          f.Expr.Negate(),
		FreeVars:      f.FreeVars,
		Instantiated:  f.Instantiated,
		Substitutions: f.Substitutions,
		AutoEval:      f.AutoEval,
	}
}

func (f *SMTFormula) Accept(v Visitor) { v.VisitSMT(f) }

func (f *SMTFormula) Equal(other Formula) bool {
	o, ok := other.(*SMTFormula)
	if !ok {
		return false
	}
	return f.Expr.String() == o.Expr.String() && substitutionsEqual(f.Substitutions, o.Substitutions)
}

func substitutionsEqual(a, b map[ast.Variable]*ast.Tree) bool {
	if len(a) != len(b) {
		return false
	}
	for v, t := range a {
		ot, ok := b[v]
		if !ok || ot.ID() != t.ID() {
			return false
		}
	}
	return true
}

func (f *SMTFormula) String() string { return f.Expr.String() }
