package formula

import (
	"fmt"

	"github.com/synthgrammar/isla/ast"
	"github.com/synthgrammar/isla/predicate"
)

// PredArg is a predicate-call argument: a variable (free until substituted),
// a concrete derivation tree, or a literal string, exactly the three kinds
// spec.md allows for StructuralPredicateFormula/SemanticPredicateFormula
// arguments.
type PredArg struct {
	Var  *ast.Variable
	Tree *ast.Tree
	Lit  string
	isLit bool
}

func VarArg(v ast.Variable) PredArg  { return PredArg{Var: &v} }
func TreeArg(t *ast.Tree) PredArg    { return PredArg{Tree: t} }
func LitArg(s string) PredArg        { return PredArg{Lit: s, isLit: true} }

func (a PredArg) String() string {
	switch {
	case a.Var != nil:
		return a.Var.String()
	case a.Tree != nil:
		return a.Tree.String()
	default:
		return fmt.Sprintf("%q", a.Lit)
	}
}

func (a PredArg) equal(other PredArg) bool {
	switch {
	case a.Var != nil:
		return other.Var != nil && *a.Var == *other.Var
	case a.Tree != nil:
		return other.Tree != nil && a.Tree.ID() == other.Tree.ID()
	default:
		return other.isLit && a.Lit == other.Lit
	}
}

func substituteVarArg(a PredArg, subst map[ast.Variable]ast.Variable) PredArg {
	if a.Var == nil {
		return a
	}
	return VarArg(renameVar(*a.Var, subst))
}

func substituteExprArg(a PredArg, subst map[ast.Variable]*ast.Tree) PredArg {
	if a.Var == nil {
		return a
	}
	if t, ok := subst[*a.Var]; ok {
		return TreeArg(t)
	}
	return a
}

func argsFreeVariables(args []PredArg) []ast.Variable {
	var vars []ast.Variable
	for _, a := range args {
		if a.Var != nil {
			vars = append(vars, *a.Var)
		}
	}
	return dedupVars(vars)
}

func argsTreeArguments(args []PredArg) []*ast.Tree {
	var trees []*ast.Tree
	for _, a := range args {
		if a.Tree != nil {
			trees = append(trees, a.Tree)
		}
	}
	return dedupTrees(trees)
}

// StructuralPredicateFormula is a call to a pure, grammar-independent
// predicate (e.g. before) over resolved arguments.
type StructuralPredicateFormula struct {
	Pred predicate.StructuralPredicate
	Args []PredArg
}

func (f *StructuralPredicateFormula) BoundVariables() []ast.Variable { return nil }
func (f *StructuralPredicateFormula) FreeVariables() []ast.Variable  { return argsFreeVariables(f.Args) }
func (f *StructuralPredicateFormula) TreeArguments() []*ast.Tree     { return argsTreeArguments(f.Args) }

func (f *StructuralPredicateFormula) SubstituteVariables(subst map[ast.Variable]ast.Variable) Formula {
	args := make([]PredArg, len(f.Args))
	for i, a := range f.Args {
		args[i] = substituteVarArg(a, subst)
	}
	return &StructuralPredicateFormula{Pred: f.Pred, Args: args}
}

func (f *StructuralPredicateFormula) SubstituteExpressions(subst map[ast.Variable]*ast.Tree) Formula {
	args := make([]PredArg, len(f.Args))
	for i, a := range f.Args {
		args[i] = substituteExprArg(a, subst)
	}
	return &StructuralPredicateFormula{Pred: f.Pred, Args: args}
}

func (f *StructuralPredicateFormula) Accept(v Visitor) { v.VisitStructuralPredicate(f) }

func (f *StructuralPredicateFormula) Equal(other Formula) bool {
	o, ok := other.(*StructuralPredicateFormula)
	if !ok || f.Pred.Name != o.Pred.Name || len(f.Args) != len(o.Args) {
		return false
	}
	for i, a := range f.Args {
		if !a.equal(o.Args[i]) {
			return false
		}
	}
	return true
}

func (f *StructuralPredicateFormula) String() string {
	return predicateCallString(f.Pred.Name, f.Args)
}

// SemanticPredicateFormula is a call to a predicate that additionally
// consults the grammar and may propose a tree repair. Order mirrors the
// predicate's own Order (the number of leading configuration arguments that
// are never repair targets), carried on the formula so a formula built from
// a predicate whose Order the caller wants to override can still record it.
type SemanticPredicateFormula struct {
	Pred  predicate.SemanticPredicate
	Args  []PredArg
	Order int
}

func (f *SemanticPredicateFormula) BoundVariables() []ast.Variable { return nil }
func (f *SemanticPredicateFormula) FreeVariables() []ast.Variable  { return argsFreeVariables(f.Args) }
func (f *SemanticPredicateFormula) TreeArguments() []*ast.Tree     { return argsTreeArguments(f.Args) }

func (f *SemanticPredicateFormula) SubstituteVariables(subst map[ast.Variable]ast.Variable) Formula {
	args := make([]PredArg, len(f.Args))
	for i, a := range f.Args {
		args[i] = substituteVarArg(a, subst)
	}
	return &SemanticPredicateFormula{Pred: f.Pred, Args: args, Order: f.Order}
}

func (f *SemanticPredicateFormula) SubstituteExpressions(subst map[ast.Variable]*ast.Tree) Formula {
	args := make([]PredArg, len(f.Args))
	for i, a := range f.Args {
		args[i] = substituteExprArg(a, subst)
	}
	return &SemanticPredicateFormula{Pred: f.Pred, Args: args, Order: f.Order}
}

func (f *SemanticPredicateFormula) Accept(v Visitor) { v.VisitSemanticPredicate(f) }

func (f *SemanticPredicateFormula) Equal(other Formula) bool {
	o, ok := other.(*SemanticPredicateFormula)
	if !ok || f.Pred.Name != o.Pred.Name || len(f.Args) != len(o.Args) {
		return false
	}
	for i, a := range f.Args {
		if !a.equal(o.Args[i]) {
			return false
		}
	}
	return true
}

func (f *SemanticPredicateFormula) String() string {
	return predicateCallString(f.Pred.Name, f.Args)
}

func predicateCallString(name string, args []PredArg) string {
	s := name + "("
	for i, a := range args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}
