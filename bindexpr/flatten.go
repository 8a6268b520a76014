package bindexpr

import "github.com/synthgrammar/isla/ast"

// rawFlattenings enumerates the power set of optional-group inclusion
// decisions, yielding every resulting element sequence as a plain variable
// list with consecutive terminal dummies coalesced into one fragment. The
// result is cached: the expansion only depends on the expression's own
// shape, not on any grammar or anchor.
func (b *BindExpression) rawFlattenings() [][]ast.Variable {
	b.flatOnce.Do(func() {
		raw := flattenElements(b.elements)
		out := make([][]ast.Variable, len(raw))
		for i, seq := range raw {
			out[i] = coalesceDummies(seq)
		}
		b.flatVal = out
	})
	return b.flatVal
}

// flattenElements recursively expands optional groups into every inclusion
// choice, cartesian-producted with the continuation after the group.
func flattenElements(elements []Element) [][]ast.Variable {
	if len(elements) == 0 {
		return [][]ast.Variable{{}}
	}
	head, rest := elements[0], elements[1:]
	restFlats := flattenElements(rest)

	if !head.isOptional() {
		out := make([][]ast.Variable, 0, len(restFlats))
		for _, r := range restFlats {
			seq := make([]ast.Variable, 0, len(r)+1)
			seq = append(seq, *head.Var)
			seq = append(seq, r...)
			out = append(out, seq)
		}
		return out
	}

	var out [][]ast.Variable
	// Excluded: the group contributes nothing.
	out = append(out, restFlats...)
	// Included: the group's own flattenings, each followed by a continuation.
	innerFlats := flattenElements(head.Optional)
	for _, inner := range innerFlats {
		for _, r := range restFlats {
			seq := make([]ast.Variable, 0, len(inner)+len(r))
			seq = append(seq, inner...)
			seq = append(seq, r...)
			out = append(out, seq)
		}
	}
	return out
}

// coalesceDummies merges runs of adjacent terminal-fragment dummies into a
// single dummy carrying their concatenated text, keeping matching greedy
// but well-defined (spec: "consecutive terminal dummies are coalesced").
func coalesceDummies(seq []ast.Variable) []ast.Variable {
	var out []ast.Variable
	for _, v := range seq {
		if v.Kind == ast.KindDummy && len(out) > 0 && out[len(out)-1].Kind == ast.KindDummy {
			merged := out[len(out)-1].NType + v.NType
			out[len(out)-1] = ast.NewDummyVariable(merged)
			continue
		}
		out = append(out, v)
	}
	return out
}
