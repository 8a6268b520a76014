package formula

// Visitor gives every Formula variant a VisitXxx entry point and every
// composite node a Continue gate, so collectors, rewriters and evaluators
// can share one traversal idiom instead of each reimplementing recursion.
type Visitor interface {
	VisitSMT(*SMTFormula)
	VisitStructuralPredicate(*StructuralPredicateFormula)
	VisitSemanticPredicate(*SemanticPredicateFormula)
	VisitNegated(*NegatedFormula)
	VisitConjunctive(*ConjunctiveFormula)
	VisitDisjunctive(*DisjunctiveFormula)
	VisitForall(*ForallFormula)
	VisitExists(*ExistsFormula)
	VisitForallInt(*ForallIntFormula)
	VisitExistsInt(*ExistsIntFormula)
	// Continue reports whether the visitor wants to descend into f's
	// children; returning false prunes that subtree.
	Continue(f Formula) bool
}

// BaseVisitor implements every Visitor method as a no-op and always
// continues, so a caller that only cares about one or two node kinds can
// embed BaseVisitor and override just those.
type BaseVisitor struct{}

func (BaseVisitor) VisitSMT(*SMTFormula)                                   {}
func (BaseVisitor) VisitStructuralPredicate(*StructuralPredicateFormula)   {}
func (BaseVisitor) VisitSemanticPredicate(*SemanticPredicateFormula)       {}
func (BaseVisitor) VisitNegated(*NegatedFormula)                           {}
func (BaseVisitor) VisitConjunctive(*ConjunctiveFormula)                   {}
func (BaseVisitor) VisitDisjunctive(*DisjunctiveFormula)                   {}
func (BaseVisitor) VisitForall(*ForallFormula)                             {}
func (BaseVisitor) VisitExists(*ExistsFormula)                             {}
func (BaseVisitor) VisitForallInt(*ForallIntFormula)                       {}
func (BaseVisitor) VisitExistsInt(*ExistsIntFormula)                       {}
func (BaseVisitor) Continue(Formula) bool { return true }
