// Package bindexpr implements match expressions: a sequence of bound
// variables, terminal-fragment dummies, and optional groups, attached to a
// quantifier's nonterminal. It computes representative "tree prefixes" for
// otherwise-unconstrained quantification, and matches a flattened sequence
// against the leaves of a concrete derivation tree, backtracking when a
// recursive nonterminal makes the first greedy assignment wrong.
package bindexpr

import (
	"sync"

	"github.com/synthgrammar/isla/ast"
)

// Element is one item of a bind expression's surface sequence: either a
// variable (bound or a terminal-fragment dummy) or a nested optional group.
// Exactly one of Var or Optional is set.
type Element struct {
	Var      *ast.Variable
	Optional []Element
}

// Bound constructs a bound-variable element.
func Bound(v ast.Variable) Element {
	return Element{Var: &v}
}

// Dummy constructs a terminal-fragment element: text is matched literally
// against the leaves of a concrete tree.
func Dummy(text string) Element {
	v := ast.NewDummyVariable(text)
	return Element{Var: &v}
}

// Group constructs an optional group: during flattening it is either
// entirely included or entirely omitted.
func Group(elements ...Element) Element {
	return Element{Optional: elements}
}

func (e Element) isOptional() bool { return e.Var == nil }

// BindExpression is an immutable sequence of Elements, attached to whichever
// quantifier declared it. It lazily computes and caches flattenings and tree
// prefixes, keyed by the quantifier's anchor nonterminal, since different
// anchors can validate different subsets of optional groups.
type BindExpression struct {
	elements []Element

	flatOnce sync.Once
	flatVal  [][]ast.Variable

	validMu    sync.Mutex
	validCache map[string][][]ast.Variable

	prefixMu    sync.Mutex
	prefixCache map[string][]*PrefixEntry
}

// New builds a BindExpression from its surface elements.
func New(elements ...Element) *BindExpression {
	return &BindExpression{elements: elements}
}

// BoundVariables returns every bound variable mentioned anywhere in the
// expression (including inside optional groups), in declaration order.
func (b *BindExpression) BoundVariables() []ast.Variable {
	var out []ast.Variable
	var walk func([]Element)
	walk = func(elements []Element) {
		for _, e := range elements {
			switch {
			case e.isOptional():
				walk(e.Optional)
			case e.Var.Kind == ast.KindBound:
				out = append(out, *e.Var)
			}
		}
	}
	walk(b.elements)
	return out
}

// SubstituteVariables returns a copy of b with every bound variable renamed
// per subst (dummy elements are never renamed, since their identity is the
// terminal text they carry, not a declared name).
func (b *BindExpression) SubstituteVariables(subst map[ast.Variable]ast.Variable) *BindExpression {
	var rename func([]Element) []Element
	rename = func(elements []Element) []Element {
		out := make([]Element, len(elements))
		for i, e := range elements {
			switch {
			case e.isOptional():
				out[i] = Group(rename(e.Optional)...)
			case e.Var.Kind == ast.KindBound:
				if r, ok := subst[*e.Var]; ok {
					out[i] = Bound(r)
				} else {
					out[i] = e
				}
			default:
				out[i] = e
			}
		}
		return out
	}
	return New(rename(b.elements)...)
}

// String renders the surface form of the bind expression: bound variables
// and dummy fragments are shown literally, optional groups in brackets. The
// unparser emits this text as a quantifier's match expression, and
// quantifier equality compares it; braces and brackets inside dummy
// fragments are not escaped.
func (b *BindExpression) String() string {
	var render func([]Element) string
	render = func(elements []Element) string {
		var out string
		for _, e := range elements {
			switch {
			case e.isOptional():
				out += "[" + render(e.Optional) + "]"
			case e.Var.Kind == ast.KindDummy:
				out += e.Var.NType
			default:
				out += "{" + e.Var.NType + " " + e.Var.Name + "}"
			}
		}
		return out
	}
	return render(b.elements)
}
