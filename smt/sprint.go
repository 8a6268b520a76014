package smt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/expr-lang/expr/ast"
)

var binaryToSExpr = map[string]string{
	"&&": "and", "||": "or",
	"==": "=", "!=": "!=",
	"<": "<", "<=": "<=", ">": ">", ">=": ">=",
	"+": "+", "-": "-", "*": "*", "/": "div", "%": "mod",
}

var callToSExpr = map[string]string{
	"len": "str.len", "contains": "str.contains", "replace": "str.replace",
	"int": "str.to.int", "string": "str.from.int", "indexOf": "str.indexof",
}

// sprint renders node back to the adapter's compact s-expression form. It is
// not guaranteed to reproduce the exact source text an Expr was Parsed from
// (ops.go desugars "(str.at s i)" into a slice, which prints back as
// "(str.substr s i 1)"), only an equivalent expression in the same syntax.
func sprint(node ast.Node) string {
	switch n := node.(type) {
	case *ast.IdentifierNode:
		return n.Value
	case *ast.StringNode:
		return strconv.Quote(n.Value)
	case *ast.IntegerNode:
		return strconv.Itoa(n.Value)
	case *ast.BoolNode:
		if n.Value {
			return "true"
		}
		return "false"
	case *ast.UnaryNode:
		return fmt.Sprintf("(%s %s)", n.Operator, sprint(n.Node))
	case *ast.BinaryNode:
		op, ok := binaryToSExpr[n.Operator]
		if !ok {
			op = n.Operator
		}
		return fmt.Sprintf("(%s %s %s)", op, sprint(n.Left), sprint(n.Right))
	case *ast.ConditionalNode:
		return fmt.Sprintf("(ite %s %s %s)", sprint(n.Cond), sprint(n.Exp1), sprint(n.Exp2))
	case *ast.SliceNode:
		// str.substr takes a length; ops.go builds the slice end as from+length.
		if to, ok := n.To.(*ast.BinaryNode); ok && to.Operator == "+" && sprint(to.Left) == sprint(n.From) {
			return fmt.Sprintf("(str.substr %s %s %s)", sprint(n.Node), sprint(n.From), sprint(to.Right))
		}
		return fmt.Sprintf("(str.substr %s %s (- %s %s))", sprint(n.Node), sprint(n.From), sprint(n.To), sprint(n.From))
	case *ast.CallNode:
		name := "?"
		if callee, ok := n.Callee.(*ast.IdentifierNode); ok {
			name = callee.Value
			switch name {
			case "hasPrefix":
				if len(n.Arguments) == 2 {
					return fmt.Sprintf("(str.prefixof %s %s)", sprint(n.Arguments[1]), sprint(n.Arguments[0]))
				}
			case "hasSuffix":
				if len(n.Arguments) == 2 {
					return fmt.Sprintf("(str.suffixof %s %s)", sprint(n.Arguments[1]), sprint(n.Arguments[0]))
				}
			}
			if sexpr, ok := callToSExpr[name]; ok {
				name = sexpr
			}
		}
		args := make([]string, len(n.Arguments))
		for i, a := range n.Arguments {
			args[i] = sprint(a)
		}
		if len(args) == 0 {
			return fmt.Sprintf("(%s)", name)
		}
		return fmt.Sprintf("(%s %s)", name, strings.Join(args, " "))
	default:
		return fmt.Sprintf("<%T>", node)
	}
}
