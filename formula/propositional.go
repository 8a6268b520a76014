package formula

import "github.com/synthgrammar/isla/ast"

// NegatedFormula wraps a formula this package's smart constructors couldn't
// push the negation through (a predicate call, or a quantifier whose
// negation would otherwise require a kind the caller didn't ask for). Most
// negations never reach this type: And/Or/Not already fold negation into
// SMT leaves, propositional combinators, and quantifiers.
type NegatedFormula struct {
	Arg Formula
}

func (f *NegatedFormula) BoundVariables() []ast.Variable { return f.Arg.BoundVariables() }
func (f *NegatedFormula) FreeVariables() []ast.Variable  { return f.Arg.FreeVariables() }
func (f *NegatedFormula) TreeArguments() []*ast.Tree     { return f.Arg.TreeArguments() }

func (f *NegatedFormula) SubstituteVariables(subst map[ast.Variable]ast.Variable) Formula {
	return &NegatedFormula{Arg: f.Arg.SubstituteVariables(subst)}
}

func (f *NegatedFormula) SubstituteExpressions(subst map[ast.Variable]*ast.Tree) Formula {
	return &NegatedFormula{Arg: f.Arg.SubstituteExpressions(subst)}
}

func (f *NegatedFormula) Accept(v Visitor) {
	v.VisitNegated(f)
	if v.Continue(f) {
		f.Arg.Accept(v)
	}
}

func (f *NegatedFormula) Equal(other Formula) bool {
	o, ok := other.(*NegatedFormula)
	return ok && f.Arg.Equal(o.Arg)
}

func (f *NegatedFormula) String() string { return "¬(" + f.Arg.String() + ")" }

// ConjunctiveFormula is an n-ary (n >= 2) conjunction. And builds it from
// its two arguments after its short-circuit checks and does not flatten an
// argument that is itself a conjunction; direct literal construction is for
// internal use by the normal-form rewriters.
type ConjunctiveFormula struct {
	Args []Formula
}

func (f *ConjunctiveFormula) BoundVariables() []ast.Variable {
	var vars []ast.Variable
	for _, a := range f.Args {
		vars = append(vars, a.BoundVariables()...)
	}
	return dedupVars(vars)
}

func (f *ConjunctiveFormula) FreeVariables() []ast.Variable {
	var vars []ast.Variable
	for _, a := range f.Args {
		vars = append(vars, a.FreeVariables()...)
	}
	return dedupVars(vars)
}

func (f *ConjunctiveFormula) TreeArguments() []*ast.Tree {
	var trees []*ast.Tree
	for _, a := range f.Args {
		trees = append(trees, a.TreeArguments()...)
	}
	return dedupTrees(trees)
}

func (f *ConjunctiveFormula) SubstituteVariables(subst map[ast.Variable]ast.Variable) Formula {
	result := f.Args[0].SubstituteVariables(subst)
	for _, a := range f.Args[1:] {
		result = And(result, a.SubstituteVariables(subst))
	}
	return result
}

func (f *ConjunctiveFormula) SubstituteExpressions(subst map[ast.Variable]*ast.Tree) Formula {
	result := f.Args[0].SubstituteExpressions(subst)
	for _, a := range f.Args[1:] {
		result = And(result, a.SubstituteExpressions(subst))
	}
	return result
}

func (f *ConjunctiveFormula) Accept(v Visitor) {
	v.VisitConjunctive(f)
	if v.Continue(f) {
		for _, a := range f.Args {
			a.Accept(v)
		}
	}
}

func (f *ConjunctiveFormula) Equal(other Formula) bool {
	o, ok := other.(*ConjunctiveFormula)
	if !ok {
		return false
	}
	return formulaSetsEqual(SplitConjunction(f), SplitConjunction(o))
}

func (f *ConjunctiveFormula) String() string { return joinFormulas(f.Args, " ∧ ") }

// DisjunctiveFormula is an n-ary (n >= 2) disjunction, the mirror image of
// ConjunctiveFormula.
type DisjunctiveFormula struct {
	Args []Formula
}

func (f *DisjunctiveFormula) BoundVariables() []ast.Variable {
	var vars []ast.Variable
	for _, a := range f.Args {
		vars = append(vars, a.BoundVariables()...)
	}
	return dedupVars(vars)
}

func (f *DisjunctiveFormula) FreeVariables() []ast.Variable {
	var vars []ast.Variable
	for _, a := range f.Args {
		vars = append(vars, a.FreeVariables()...)
	}
	return dedupVars(vars)
}

func (f *DisjunctiveFormula) TreeArguments() []*ast.Tree {
	var trees []*ast.Tree
	for _, a := range f.Args {
		trees = append(trees, a.TreeArguments()...)
	}
	return dedupTrees(trees)
}

func (f *DisjunctiveFormula) SubstituteVariables(subst map[ast.Variable]ast.Variable) Formula {
	result := f.Args[0].SubstituteVariables(subst)
	for _, a := range f.Args[1:] {
		result = Or(result, a.SubstituteVariables(subst))
	}
	return result
}

func (f *DisjunctiveFormula) SubstituteExpressions(subst map[ast.Variable]*ast.Tree) Formula {
	result := f.Args[0].SubstituteExpressions(subst)
	for _, a := range f.Args[1:] {
		result = Or(result, a.SubstituteExpressions(subst))
	}
	return result
}

func (f *DisjunctiveFormula) Accept(v Visitor) {
	v.VisitDisjunctive(f)
	if v.Continue(f) {
		for _, a := range f.Args {
			a.Accept(v)
		}
	}
}

func (f *DisjunctiveFormula) Equal(other Formula) bool {
	o, ok := other.(*DisjunctiveFormula)
	if !ok {
		return false
	}
	return formulaSetsEqual(SplitDisjunction(f), SplitDisjunction(o))
}

func (f *DisjunctiveFormula) String() string { return joinFormulas(f.Args, " ∨ ") }

func joinFormulas(args []Formula, sep string) string {
	s := "("
	for i, a := range args {
		if i > 0 {
			s += sep
		}
		s += a.String()
	}
	return s + ")"
}

// SplitConjunction flattens nested conjunctions into their leaf conjuncts;
// a non-conjunction formula splits to itself.
func SplitConjunction(f Formula) []Formula {
	c, ok := f.(*ConjunctiveFormula)
	if !ok {
		return []Formula{f}
	}
	var out []Formula
	for _, a := range c.Args {
		out = append(out, SplitConjunction(a)...)
	}
	return out
}

// SplitDisjunction is SplitConjunction's mirror image for disjunctions.
func SplitDisjunction(f Formula) []Formula {
	d, ok := f.(*DisjunctiveFormula)
	if !ok {
		return []Formula{f}
	}
	var out []Formula
	for _, a := range d.Args {
		out = append(out, SplitDisjunction(a)...)
	}
	return out
}

func formulaSetsEqual(a, b []Formula) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, fa := range a {
		found := false
		for i, fb := range b {
			if !used[i] && fa.Equal(fb) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
