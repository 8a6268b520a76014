// Package formula is the constraint AST: quantified formulas, propositional
// combinators, SMT leaves, and structural/semantic predicate calls, with
// free-variable tracking, variable and expression substitution, and the
// normal-form rewriters (NNF, DNF, bound-variable uniquification) that the
// parser and solver build on.
package formula

import "github.com/synthgrammar/isla/ast"

// Formula is the sum type every constraint AST node implements. Values are
// immutable; every transformation returns a new Formula.
type Formula interface {
	// BoundVariables returns the variables this node itself binds
	// (non-recursive: empty except for quantified formulas).
	BoundVariables() []ast.Variable
	// FreeVariables returns the variables reachable by recursion that are
	// not bound by an enclosing quantifier.
	FreeVariables() []ast.Variable
	// TreeArguments returns every tree substituted into this formula or a
	// subformula, used to compute the set of trees a formula "is about".
	TreeArguments() []*ast.Tree
	// SubstituteVariables renames bound and free variables.
	SubstituteVariables(subst map[ast.Variable]ast.Variable) Formula
	// SubstituteExpressions replaces free variables by derivation trees.
	SubstituteExpressions(subst map[ast.Variable]*ast.Tree) Formula
	// Accept drives the visitor protocol: every composite calls back into
	// visitor.Continue to decide whether to descend into its children.
	Accept(v Visitor)
	// Equal is structural equality (same variant, same fields), not
	// pointer identity.
	Equal(other Formula) bool
	String() string
}

// And builds a conjunction, applying the short-circuit table: a formula
// conjoined with itself or with its own negation collapses, and a
// known-false/known-true SMT leaf absorbs or is absorbed.
func And(left, right Formula) Formula {
	if left.Equal(right) {
		return left
	}
	if isFalseSMT(left) {
		return left
	}
	if isFalseSMT(right) {
		return right
	}
	if isTrueSMT(left) {
		return right
	}
	if isTrueSMT(right) {
		return left
	}
	if negates(left, right) || negates(right, left) {
		return falseSMT()
	}
	return &ConjunctiveFormula{Args: []Formula{left, right}}
}

// Or builds a disjunction with the mirror-image short-circuit table of And.
func Or(left, right Formula) Formula {
	if left.Equal(right) {
		return left
	}
	if isTrueSMT(left) {
		return left
	}
	if isTrueSMT(right) {
		return right
	}
	if isFalseSMT(left) {
		return right
	}
	if isFalseSMT(right) {
		return left
	}
	if negates(left, right) || negates(right, left) {
		return trueSMT()
	}
	return &DisjunctiveFormula{Args: []Formula{left, right}}
}

// Not builds the negation of f, pushing through every variant the way De
// Morgan's laws require rather than always wrapping in NegatedFormula:
// double negation cancels, conjunctions/disjunctions swap and recurse,
// quantifiers swap kind, and SMT leaves delegate to the adapter's own
// negation.
func Not(f Formula) Formula {
	switch n := f.(type) {
	case *SMTFormula:
		return n.negate()
	case *NegatedFormula:
		return n.Arg
	case *ConjunctiveFormula:
		result := Not(n.Args[0])
		for _, arg := range n.Args[1:] {
			result = Or(result, Not(arg))
		}
		return result
	case *DisjunctiveFormula:
		result := Not(n.Args[0])
		for _, arg := range n.Args[1:] {
			result = And(result, Not(arg))
		}
		return result
	case *ForallFormula:
		q := n.quantified
		q.Inner = Not(q.Inner)
		return &ExistsFormula{q}
	case *ExistsFormula:
		q := n.quantified
		q.Inner = Not(q.Inner)
		return &ForallFormula{quantified: q, ID: freshForallID()}
	case *ForallIntFormula:
		return &ExistsIntFormula{BoundVar: n.BoundVar, Inner: Not(n.Inner)}
	case *ExistsIntFormula:
		return &ForallIntFormula{BoundVar: n.BoundVar, Inner: Not(n.Inner)}
	default:
		return &NegatedFormula{Arg: f}
	}
}

func negates(f, maybeNegation Formula) bool {
	if s, ok := f.(*SMTFormula); ok {
		if o, ok := maybeNegation.(*SMTFormula); ok {
			return s.negate().Equal(o)
		}
	}
	n, ok := maybeNegation.(*NegatedFormula)
	return ok && n.Arg.Equal(f)
}

func isTrueSMT(f Formula) bool {
	s, ok := f.(*SMTFormula)
	return ok && s.IsTrue()
}

func isFalseSMT(f Formula) bool {
	s, ok := f.(*SMTFormula)
	return ok && s.IsFalse()
}

// Substitute is the entry point callers use instead of the two
// variable/expression methods directly: it splits subst by value type (a
// variable-to-variable rename vs. a variable-to-tree instantiation) and
// applies each half with the right method, mirroring how the surface
// language's single substitution map covers both cases.
func Substitute(f Formula, subst map[ast.Variable]any) Formula {
	varSubst := map[ast.Variable]ast.Variable{}
	treeSubst := map[ast.Variable]*ast.Tree{}
	for k, v := range subst {
		switch val := v.(type) {
		case ast.Variable:
			varSubst[k] = val
		case *ast.Tree:
			treeSubst[k] = val
		case string:
			treeSubst[k] = ast.NewLeaf(val)
		}
	}
	result := f.SubstituteVariables(varSubst)
	return result.SubstituteExpressions(treeSubst)
}

func dedupVars(vars []ast.Variable) []ast.Variable {
	seen := map[ast.Variable]bool{}
	out := make([]ast.Variable, 0, len(vars))
	for _, v := range vars {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func subtractVars(vars, remove []ast.Variable) []ast.Variable {
	skip := map[ast.Variable]bool{}
	for _, v := range remove {
		skip[v] = true
	}
	out := make([]ast.Variable, 0, len(vars))
	for _, v := range vars {
		if !skip[v] {
			out = append(out, v)
		}
	}
	return out
}

func renameVar(v ast.Variable, subst map[ast.Variable]ast.Variable) ast.Variable {
	if r, ok := subst[v]; ok {
		return r
	}
	return v
}

func dedupTrees(trees []*ast.Tree) []*ast.Tree {
	seen := map[int64]bool{}
	out := make([]*ast.Tree, 0, len(trees))
	for _, t := range trees {
		if t == nil || seen[t.ID()] {
			continue
		}
		seen[t.ID()] = true
		out = append(out, t)
	}
	return out
}
