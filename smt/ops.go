package smt

import (
	"fmt"

	"github.com/expr-lang/expr/ast"
)

// opBuilder turns an s-expression operator's already-parsed arguments into
// the expr-lang node that evaluates it. Keeping this as a table rather than
// a long type switch over the operator string mirrors the declarative
// "operator name to node shape" mapping the surface grammar implies.
type opBuilder func(args []ast.Node) (ast.Node, error)

func binary(operator string) opBuilder {
	return func(args []ast.Node) (ast.Node, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("smt: operator %q wants 2 arguments, got %d", operator, len(args))
		}
		return &ast.BinaryNode{Operator: operator, Left: args[0], Right: args[1]}, nil
	}
}

// chain left-folds a variadic s-expression operator ("(and a b c)") into a
// left-associative tree of the binary expr-lang operator it corresponds to.
func chain(operator string) opBuilder {
	return func(args []ast.Node) (ast.Node, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("smt: operator %q wants at least 2 arguments, got %d", operator, len(args))
		}
		acc := args[0]
		for _, a := range args[1:] {
			acc = &ast.BinaryNode{Operator: operator, Left: acc, Right: a}
		}
		return acc, nil
	}
}

func unary(operator string) opBuilder {
	return func(args []ast.Node) (ast.Node, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("smt: operator %q wants 1 argument, got %d", operator, len(args))
		}
		return &ast.UnaryNode{Operator: operator, Node: args[0]}, nil
	}
}

// call turns a variadic s-expression operator into a call to the named
// expr-lang builtin function, e.g. "(str.len v1)" -> "len(v1)".
func call(name string, arity int) opBuilder {
	return func(args []ast.Node) (ast.Node, error) {
		if arity >= 0 && len(args) != arity {
			return nil, fmt.Errorf("smt: operator %q wants %d arguments, got %d", name, arity, len(args))
		}
		return &ast.CallNode{
			Callee:    &ast.IdentifierNode{Value: name},
			Arguments: args,
		}, nil
	}
}

var operators = map[string]opBuilder{
	// Propositional connectives.
	"and": chain("&&"),
	"or":  chain("||"),
	"not": unary("not"),
	"=>":  binary("or"), // patched below to ¬a || b, see init()

	// Comparisons.
	"=":  binary("=="),
	"!=": binary("!="),
	"<":  binary("<"),
	"<=": binary("<="),
	">":  binary(">"),
	">=": binary(">="),

	// Arithmetic.
	"+":   chain("+"),
	"-":   chain("-"),
	"*":   chain("*"),
	"div": binary("/"),
	"mod": binary("%"),

	// String theory.
	"str.++":      chain("+"),
	"str.len":     call("len", 1),
	"str.contains": call("contains", 2),
	"str.replace": call("replace", 3),
	"str.to.int":  call("int", 1),
	"str.from.int": call("string", 1),
	"str.at":      sliceOne,
	"str.substr":  substr,
	"str.indexof": indexOf,
	"str.prefixof": prefixOf,
	"str.suffixof": suffixOf,

	"ite": ite,
}

func init() {
	// "=>" (implication) has no direct expr-lang binary operator; build it as
	// ¬a || b by hand instead of a plain binary() entry.
	operators["=>"] = func(args []ast.Node) (ast.Node, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("smt: operator \"=>\" wants 2 arguments, got %d", len(args))
		}
		return &ast.BinaryNode{
			Operator: "||",
			Left:     &ast.UnaryNode{Operator: "not", Node: args[0]},
			Right:    args[1],
		}, nil
	}
}

func ite(args []ast.Node) (ast.Node, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("smt: operator \"ite\" wants 3 arguments, got %d", len(args))
	}
	return &ast.ConditionalNode{Cond: args[0], Exp1: args[1], Exp2: args[2]}, nil
}

// sliceOne builds "(str.at s i)" as the single-character slice s[i:i+1].
func sliceOne(args []ast.Node) (ast.Node, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("smt: operator \"str.at\" wants 2 arguments, got %d", len(args))
	}
	to := &ast.BinaryNode{Operator: "+", Left: args[1], Right: &ast.IntegerNode{Value: 1}}
	return &ast.SliceNode{Node: args[0], From: args[1], To: to}, nil
}

// substr builds "(str.substr s i n)" (SMT-LIB: start index + length) as the
// expr-lang slice s[i:i+n].
func substr(args []ast.Node) (ast.Node, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("smt: operator \"str.substr\" wants 3 arguments, got %d", len(args))
	}
	to := &ast.BinaryNode{Operator: "+", Left: args[1], Right: args[2]}
	return &ast.SliceNode{Node: args[0], From: args[1], To: to}, nil
}

// indexOf builds "(str.indexof s sub start)" as a call to the indexOf
// builtin, dropping the start-offset argument when absent (SMT-LIB allows a
// two-argument form too).
func indexOf(args []ast.Node) (ast.Node, error) {
	if len(args) != 2 && len(args) != 3 {
		return nil, fmt.Errorf("smt: operator \"str.indexof\" wants 2 or 3 arguments, got %d", len(args))
	}
	return &ast.CallNode{
		Callee:    &ast.IdentifierNode{Value: "indexOf"},
		Arguments: args[:2],
	}, nil
}

// prefixOf builds "(str.prefixof prefix s)" as "hasPrefix(s, prefix)",
// SMT-LIB's argument order reversed to match expr-lang's builtin.
func prefixOf(args []ast.Node) (ast.Node, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("smt: operator \"str.prefixof\" wants 2 arguments, got %d", len(args))
	}
	return &ast.CallNode{
		Callee:    &ast.IdentifierNode{Value: "hasPrefix"},
		Arguments: []ast.Node{args[1], args[0]},
	}, nil
}

// suffixOf builds "(str.suffixof suffix s)" as "hasSuffix(s, suffix)".
func suffixOf(args []ast.Node) (ast.Node, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("smt: operator \"str.suffixof\" wants 2 arguments, got %d", len(args))
	}
	return &ast.CallNode{
		Callee:    &ast.IdentifierNode{Value: "hasSuffix"},
		Arguments: []ast.Node{args[1], args[0]},
	}, nil
}
