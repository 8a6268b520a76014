package formula

import (
	"fmt"

	"github.com/synthgrammar/isla/ast"
)

// ToNNF pushes negation to the leaves: past propositional combinators by De
// Morgan's, past quantifiers by swapping Forall/Exists (tracking
// AlreadyMatched only for the universal case, since an existential carries
// none), and into SMT leaves via the adapter's own push-in, recomputing the
// leaf's free-variable set from the rewritten expression in case
// simplification dropped one.
func ToNNF(f Formula) Formula { return toNNF(f, false) }

func toNNF(f Formula, negate bool) Formula {
	switch n := f.(type) {
	case *NegatedFormula:
		return toNNF(n.Arg, !negate)
	case *ConjunctiveFormula:
		result := toNNF(n.Args[0], negate)
		for _, a := range n.Args[1:] {
			next := toNNF(a, negate)
			if negate {
				result = Or(result, next)
			} else {
				result = And(result, next)
			}
		}
		return result
	case *DisjunctiveFormula:
		result := toNNF(n.Args[0], negate)
		for _, a := range n.Args[1:] {
			next := toNNF(a, negate)
			if negate {
				result = And(result, next)
			} else {
				result = Or(result, next)
			}
		}
		return result
	case *StructuralPredicateFormula, *SemanticPredicateFormula:
		if negate {
			return Not(f)
		}
		return f
	case *SMTFormula:
		return nnfSMT(n, negate)
	case *ForallIntFormula:
		inner := toNNF(n.Inner, negate)
		if negate {
			return &ExistsIntFormula{BoundVar: n.BoundVar, Inner: inner}
		}
		return &ForallIntFormula{BoundVar: n.BoundVar, Inner: inner}
	case *ExistsIntFormula:
		inner := toNNF(n.Inner, negate)
		if !negate {
			return &ExistsIntFormula{BoundVar: n.BoundVar, Inner: inner}
		}
		return &ForallIntFormula{BoundVar: n.BoundVar, Inner: inner}
	case *ForallFormula:
		inner := toNNF(n.Inner, negate)
		q := n.quantified
		q.Inner = inner
		if negate {
			return &ExistsFormula{q}
		}
		return &ForallFormula{quantified: q, AlreadyMatched: n.AlreadyMatched, ID: n.ID}
	case *ExistsFormula:
		inner := toNNF(n.Inner, negate)
		q := n.quantified
		q.Inner = inner
		if !negate {
			return &ExistsFormula{q}
		}
		return &ForallFormula{quantified: q, ID: freshForallID()}
	default:
		panic(fmt.Sprintf("formula: unexpected type %T in ToNNF", f))
	}
}

func nnfSMT(f *SMTFormula, negate bool) *SMTFormula {
	expr := f.Expr
	if negate {
		expr = f.Expr.Negate()
	}
	actual := map[string]bool{}
	for _, s := range expr.FreeSymbols() {
		actual[s] = true
	}
	var freeVars []ast.Variable
	for _, v := range f.FreeVars {
		if actual[v.Name] {
			freeVars = append(freeVars, v)
		}
	}
	var instantiated []ast.Variable
	for _, v := range f.Instantiated {
		if actual[v.Name] {
			instantiated = append(instantiated, v)
		}
	}
	subs := map[ast.Variable]*ast.Tree{}
	for v, t := range f.Substitutions {
		if actual[v.Name] {
			subs[v] = t
		}
	}
	return &SMTFormula{Expr: expr, FreeVars: freeVars, Instantiated: instantiated, Substitutions: subs, AutoEval: f.AutoEval}
}

// ToDNF rewrites an NNF formula into a disjunction of conjunctions of
// literals and quantified formulas (whose inner formulas are themselves
// DNF-ed, but the quantifier itself is left in place rather than
// distributed over). Call ToNNF first; ToDNF assumes no negation sits above
// a propositional combinator.
func ToDNF(f Formula) Formula {
	switch n := f.(type) {
	case *ConjunctiveFormula:
		disjunctsPerArg := make([][]Formula, len(n.Args))
		for i, a := range n.Args {
			disjunctsPerArg[i] = SplitDisjunction(ToDNF(a))
		}
		return distributeConjunction(disjunctsPerArg)
	case *DisjunctiveFormula:
		result := Formula(falseSMT())
		for _, a := range n.Args {
			result = Or(result, ToDNF(a))
		}
		return result
	case *ForallFormula:
		q := n.quantified
		q.Inner = ToDNF(q.Inner)
		return &ForallFormula{quantified: q, AlreadyMatched: n.AlreadyMatched, ID: n.ID}
	case *ExistsFormula:
		q := n.quantified
		q.Inner = ToDNF(q.Inner)
		return &ExistsFormula{q}
	default:
		return f
	}
}

func distributeConjunction(disjunctsPerArg [][]Formula) Formula {
	combos := [][]Formula{{}}
	for _, choices := range disjunctsPerArg {
		var next [][]Formula
		for _, combo := range combos {
			for _, choice := range choices {
				extended := append(append([]Formula{}, combo...), choice)
				next = append(next, extended)
			}
		}
		combos = next
	}
	result := Formula(falseSMT())
	for _, combo := range combos {
		var conj Formula
		seen := map[string]bool{}
		var conjuncts []Formula
		for _, part := range combo {
			for _, lit := range SplitConjunction(part) {
				key := lit.String()
				if seen[key] {
					continue
				}
				seen[key] = true
				conjuncts = append(conjuncts, lit)
			}
		}
		if len(conjuncts) == 0 {
			conj = trueSMT()
		} else {
			conj = conjuncts[0]
			for _, c := range conjuncts[1:] {
				conj = And(conj, c)
			}
		}
		result = Or(result, conj)
	}
	return result
}

// EnsureUniqueBoundVariables alpha-renames bound variables so that no two
// nested binders share a name, appending "_0", "_1", ... to whichever
// occurrence collides with an already-used name. usedNames may be nil.
func EnsureUniqueBoundVariables(f Formula, usedNames map[string]bool) Formula {
	if usedNames == nil {
		usedNames = map[string]bool{}
	}
	switch n := f.(type) {
	case *ForallFormula:
		renamed := freshBoundVars(n.BoundVariables(), usedNames)
		renamedFormula := n.SubstituteVariables(renamed).(*ForallFormula)
		q := renamedFormula.quantified
		q.Inner = EnsureUniqueBoundVariables(q.Inner, usedNames)
		return &ForallFormula{quantified: q, AlreadyMatched: n.AlreadyMatched, ID: n.ID}
	case *ExistsFormula:
		renamed := freshBoundVars(n.BoundVariables(), usedNames)
		renamedFormula := n.SubstituteVariables(renamed).(*ExistsFormula)
		q := renamedFormula.quantified
		q.Inner = EnsureUniqueBoundVariables(q.Inner, usedNames)
		return &ExistsFormula{q}
	case *NegatedFormula:
		return &NegatedFormula{Arg: EnsureUniqueBoundVariables(n.Arg, usedNames)}
	case *ConjunctiveFormula:
		result := EnsureUniqueBoundVariables(n.Args[0], usedNames)
		for _, a := range n.Args[1:] {
			result = And(result, EnsureUniqueBoundVariables(a, usedNames))
		}
		return result
	case *DisjunctiveFormula:
		result := EnsureUniqueBoundVariables(n.Args[0], usedNames)
		for _, a := range n.Args[1:] {
			result = Or(result, EnsureUniqueBoundVariables(a, usedNames))
		}
		return result
	default:
		return f
	}
}

func freshBoundVars(origVars []ast.Variable, usedNames map[string]bool) map[ast.Variable]ast.Variable {
	result := map[ast.Variable]ast.Variable{}
	for _, v := range origVars {
		if !usedNames[v.Name] {
			usedNames[v.Name] = true
			result[v] = v
			continue
		}
		idx := 0
		for usedNames[fmt.Sprintf("%s_%d", v.Name, idx)] {
			idx++
		}
		newName := fmt.Sprintf("%s_%d", v.Name, idx)
		usedNames[newName] = true
		result[v] = ast.NewBoundVariable(newName, v.NType)
	}
	return result
}

// Replace walks in looking for toReplace (compared by Equal) and substitutes
// withFormula wherever found, short-circuiting ¬true/¬false inside a
// negation the replacement produces. It is ReplaceFunc specialized to an
// equality check, mirroring the source language's to_replace-as-formula case.
func Replace(in Formula, toReplace Formula, withFormula Formula) Formula {
	return ReplaceFunc(in, func(f Formula) (Formula, bool) {
		if f.Equal(toReplace) {
			return nil, true
		}
		return nil, false
	}, withFormula)
}

// ReplaceFunc generalizes Replace to the source language's callable
// to_replace: pred is consulted at every node before descending into its
// children. Returning (nil, false) leaves the node alone and recurses as
// usual. Returning (nil, true) replaces the node with withFormula (which
// must be non-nil, the "predicate" case). Returning (replacement, true)
// installs replacement in the node's place and reprocesses it through pred
// again, rather than descending into its children (the "rewrite function"
// case) — this lets pred rewrite a subformula into something that itself
// still matches, exactly as language.py's replace_formula recurses on a
// callable's Formula-valued result before falling through to the
// conjunction/disjunction/quantifier traversal.
func ReplaceFunc(in Formula, pred func(Formula) (Formula, bool), withFormula Formula) Formula {
	if result, matched := pred(in); matched {
		if result != nil {
			return ReplaceFunc(result, pred, withFormula)
		}
		if withFormula == nil {
			panic("formula: ReplaceFunc predicate matched with no replacement formula")
		}
		return withFormula
	}

	switch n := in.(type) {
	case *ConjunctiveFormula:
		result := ReplaceFunc(n.Args[0], pred, withFormula)
		for _, a := range n.Args[1:] {
			result = And(result, ReplaceFunc(a, pred, withFormula))
		}
		return result
	case *DisjunctiveFormula:
		result := ReplaceFunc(n.Args[0], pred, withFormula)
		for _, a := range n.Args[1:] {
			result = Or(result, ReplaceFunc(a, pred, withFormula))
		}
		return result
	case *NegatedFormula:
		childResult := ReplaceFunc(n.Arg, pred, withFormula)
		if isFalseSMT(childResult) {
			return trueSMT()
		}
		if isTrueSMT(childResult) {
			return falseSMT()
		}
		return &NegatedFormula{Arg: childResult}
	case *ForallFormula:
		q := n.quantified
		q.Inner = ReplaceFunc(q.Inner, pred, withFormula)
		return &ForallFormula{quantified: q, AlreadyMatched: n.AlreadyMatched, ID: n.ID}
	case *ExistsFormula:
		q := n.quantified
		q.Inner = ReplaceFunc(q.Inner, pred, withFormula)
		return &ExistsFormula{q}
	case *ForallIntFormula:
		return &ForallIntFormula{BoundVar: n.BoundVar, Inner: ReplaceFunc(n.Inner, pred, withFormula)}
	case *ExistsIntFormula:
		return &ExistsIntFormula{BoundVar: n.BoundVar, Inner: ReplaceFunc(n.Inner, pred, withFormula)}
	default:
		return in
	}
}

// InstantiateTopConstant replaces the unique non-numeric free constant in f
// with tree — the entry point every consumer uses to evaluate or solve a
// formula against a concrete start tree.
func InstantiateTopConstant(f Formula, tree *ast.Tree) (Formula, error) {
	var top *ast.Variable
	for _, v := range CollectVariables(f) {
		if v.Kind == ast.KindConstant && !v.IsNumeric() {
			v := v
			top = &v
			break
		}
	}
	if top == nil {
		return nil, fmt.Errorf("formula: no non-numeric free constant to instantiate")
	}
	return f.SubstituteExpressions(map[ast.Variable]*ast.Tree{*top: tree}), nil
}
