// Package unparser turns a formula.Formula back into the concrete
// constraint syntax parser.Parse accepts: the round-trip the surface
// language is built around is parse(unparse(f)) == f up to alpha-renaming
// of bound variables, not byte-identical text.
package unparser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/synthgrammar/isla/ast"
	"github.com/synthgrammar/isla/bindexpr"
	"github.com/synthgrammar/isla/formula"
)

var defaultStart = ast.NewConstant("start", "<start>")

// Unparse renders f as concrete syntax. When f's unique non-numeric free
// constant differs from the implicit "start: <start>", a leading "const"
// declaration names it explicitly, exactly as the surface language requires
// for anything parsed against a custom top constant.
func Unparse(f formula.Formula) string {
	var b strings.Builder
	if c, ok := topConstant(f); ok && c != defaultStart {
		fmt.Fprintf(&b, "const %s: %s;\n", c.Name, c.NType)
	}
	b.WriteString(unparseAt(f, 0))
	return b.String()
}

// topConstant returns f's one non-numeric free constant, if it has exactly
// one. A formula parsed by this package's parser always does (either the
// implicit "start" or a declared "const"); a formula assembled some other
// way might not, in which case the caller falls back to the default.
func topConstant(f formula.Formula) (ast.Variable, bool) {
	var found ast.Variable
	n := 0
	for _, v := range f.FreeVariables() {
		if v.Kind == ast.KindConstant && !v.IsNumeric() {
			found = v
			n++
		}
	}
	return found, n == 1
}

func indent(level int) string { return strings.Repeat("  ", level) }

func unparseAt(f formula.Formula, level int) string {
	pad := indent(level)
	switch n := f.(type) {
	case *formula.ForallFormula:
		return pad + quantifierHeader("forall", n.BoundVar, n.BindExpr, inTarget(n.InVar, n.InTree)) +
			"\n" + unparseAt(n.Inner, level+1)
	case *formula.ExistsFormula:
		return pad + quantifierHeader("exists", n.BoundVar, n.BindExpr, inTarget(n.InVar, n.InTree)) +
			"\n" + unparseAt(n.Inner, level+1)
	case *formula.ForallIntFormula:
		return pad + fmt.Sprintf("forall int %s:", n.BoundVar.Name) + "\n" + unparseAt(n.Inner, level+1)
	case *formula.ExistsIntFormula:
		return pad + fmt.Sprintf("exists int %s:", n.BoundVar.Name) + "\n" + unparseAt(n.Inner, level+1)
	case *formula.ConjunctiveFormula:
		return pad + "(" + joinArgs(n.Args, " and ") + ")"
	case *formula.DisjunctiveFormula:
		return pad + "(" + joinArgs(n.Args, " or ") + ")"
	case *formula.NegatedFormula:
		return pad + "not(" + inline(n.Arg) + ")"
	case *formula.SMTFormula:
		return pad + n.Expr.String()
	default:
		// StructuralPredicateFormula and SemanticPredicateFormula already
		// render as valid "name(arg, ...)" concrete syntax via String().
		return pad + f.String()
	}
}

// inline unparses f with no leading indentation, for embedding inside a
// single-line "and"/"or"/"not" group.
func inline(f formula.Formula) string {
	return strings.TrimLeft(unparseAt(f, 0), " ")
}

func joinArgs(args []formula.Formula, sep string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = inline(a)
	}
	return strings.Join(parts, sep)
}

func quantifierHeader(kind string, bv ast.Variable, bindExpr *bindexpr.BindExpression, in string) string {
	mexpr := ""
	if bindExpr != nil {
		mexpr = "=" + strconv.Quote(bindExpr.String())
	}
	return fmt.Sprintf("%s %s %s%s in %s:", kind, bv.NType, bv.Name, mexpr, in)
}

func inTarget(v *ast.Variable, t *ast.Tree) string {
	switch {
	case t != nil:
		return t.String()
	case v != nil:
		return v.Name
	default:
		return "start"
	}
}
