package formula

import "github.com/synthgrammar/isla/ast"

// variableCollector implements Visitor to gather every variable mentioned
// anywhere in a formula, bound and free alike, matching VariablesCollector's
// traversal: quantifiers contribute their "in" variable (when not yet
// instantiated to a tree), their bound variable, and their bind expression's
// bound variables; predicate calls contribute their variable arguments; SMT
// leaves contribute their free variables.
type variableCollector struct {
	BaseVisitor
	result []ast.Variable
}

func (c *variableCollector) add(vars ...ast.Variable) { c.result = append(c.result, vars...) }

func (c *variableCollector) VisitForall(f *ForallFormula) {
	c.add(f.BoundVar)
	if f.InVar != nil {
		c.add(*f.InVar)
	}
	if f.BindExpr != nil {
		c.add(f.BindExpr.BoundVariables()...)
	}
}

func (c *variableCollector) VisitExists(f *ExistsFormula) {
	c.add(f.BoundVar)
	if f.InVar != nil {
		c.add(*f.InVar)
	}
	if f.BindExpr != nil {
		c.add(f.BindExpr.BoundVariables()...)
	}
}

func (c *variableCollector) VisitForallInt(f *ForallIntFormula) { c.add(f.BoundVar) }
func (c *variableCollector) VisitExistsInt(f *ExistsIntFormula) { c.add(f.BoundVar) }

func (c *variableCollector) VisitStructuralPredicate(f *StructuralPredicateFormula) {
	c.add(argsFreeVariables(f.Args)...)
}

func (c *variableCollector) VisitSemanticPredicate(f *SemanticPredicateFormula) {
	c.add(argsFreeVariables(f.Args)...)
}

func (c *variableCollector) VisitSMT(f *SMTFormula) { c.add(f.FreeVariables()...) }

// CollectVariables returns every variable mentioned anywhere in f, bound or
// free, in first-encountered order.
func CollectVariables(f Formula) []ast.Variable {
	c := &variableCollector{}
	f.Accept(c)
	return dedupVars(c.result)
}

// filterVisitor implements Visitor to collect every subformula for which
// match holds, used by FindSubformulas.
type filterVisitor struct {
	BaseVisitor
	match  func(Formula) bool
	result []Formula
}

func (v *filterVisitor) visit(f Formula) {
	if v.match(f) {
		v.result = append(v.result, f)
	}
}

func (v *filterVisitor) VisitSMT(f *SMTFormula)                                 { v.visit(f) }
func (v *filterVisitor) VisitStructuralPredicate(f *StructuralPredicateFormula) { v.visit(f) }
func (v *filterVisitor) VisitSemanticPredicate(f *SemanticPredicateFormula)     { v.visit(f) }
func (v *filterVisitor) VisitNegated(f *NegatedFormula)                        { v.visit(f) }
func (v *filterVisitor) VisitConjunctive(f *ConjunctiveFormula)                { v.visit(f) }
func (v *filterVisitor) VisitDisjunctive(f *DisjunctiveFormula)                { v.visit(f) }
func (v *filterVisitor) VisitForall(f *ForallFormula)                         { v.visit(f) }
func (v *filterVisitor) VisitExists(f *ExistsFormula)                         { v.visit(f) }
func (v *filterVisitor) VisitForallInt(f *ForallIntFormula)                   { v.visit(f) }
func (v *filterVisitor) VisitExistsInt(f *ExistsIntFormula)                   { v.visit(f) }

// FindSubformulas walks f (including f itself) and returns every subformula
// for which match returns true, in traversal order.
func FindSubformulas(f Formula, match func(Formula) bool) []Formula {
	v := &filterVisitor{match: match}
	f.Accept(v)
	return v.result
}
