package smt

import "github.com/expr-lang/expr/ast"

// collectIdentifiers walks node the same way patchTree does in the pack's
// own expr-lang consumer, recording every distinct identifier name reached.
func collectIdentifiers(node ast.Node, seen map[string]bool) {
	if node == nil {
		return
	}
	switch n := node.(type) {
	case *ast.IdentifierNode:
		seen[n.Value] = true
	case *ast.BinaryNode:
		collectIdentifiers(n.Left, seen)
		collectIdentifiers(n.Right, seen)
	case *ast.UnaryNode:
		collectIdentifiers(n.Node, seen)
	case *ast.ConditionalNode:
		collectIdentifiers(n.Cond, seen)
		collectIdentifiers(n.Exp1, seen)
		collectIdentifiers(n.Exp2, seen)
	case *ast.CallNode:
		// The callee of a CallNode built by this package is always a fixed
		// builtin function name (len, contains, hasPrefix, ...), never a
		// bound variable, so it is not itself a free symbol.
		for _, a := range n.Arguments {
			collectIdentifiers(a, seen)
		}
	case *ast.SliceNode:
		collectIdentifiers(n.Node, seen)
		collectIdentifiers(n.From, seen)
		collectIdentifiers(n.To, seen)
	}
	// StringNode, IntegerNode, FloatNode, BoolNode carry no children.
}

// cloneNode deep-copies node, so that substitution never mutates a tree a
// caller still holds a reference to (the smt.Expr type is immutable, in the
// same spirit as the ast package's derivation trees).
func cloneNode(node ast.Node) ast.Node {
	if node == nil {
		return nil
	}
	switch n := node.(type) {
	case *ast.IdentifierNode:
		cp := *n
		return &cp
	case *ast.StringNode:
		cp := *n
		return &cp
	case *ast.IntegerNode:
		cp := *n
		return &cp
	case *ast.BoolNode:
		cp := *n
		return &cp
	case *ast.BinaryNode:
		return &ast.BinaryNode{Operator: n.Operator, Left: cloneNode(n.Left), Right: cloneNode(n.Right)}
	case *ast.UnaryNode:
		return &ast.UnaryNode{Operator: n.Operator, Node: cloneNode(n.Node)}
	case *ast.ConditionalNode:
		return &ast.ConditionalNode{Cond: cloneNode(n.Cond), Exp1: cloneNode(n.Exp1), Exp2: cloneNode(n.Exp2)}
	case *ast.CallNode:
		args := make([]ast.Node, len(n.Arguments))
		for i, a := range n.Arguments {
			args[i] = cloneNode(a)
		}
		return &ast.CallNode{Callee: cloneNode(n.Callee), Arguments: args}
	case *ast.SliceNode:
		return &ast.SliceNode{Node: cloneNode(n.Node), From: cloneNode(n.From), To: cloneNode(n.To)}
	default:
		return node
	}
}

// substituteNode rewrites every IdentifierNode matching a key of repl to the
// corresponding replacement node, mirroring patchTree's identifier-rewrite
// pattern but building a fresh tree instead of patching in place.
func substituteNode(node ast.Node, repl map[string]ast.Node) ast.Node {
	if node == nil {
		return nil
	}
	if id, ok := node.(*ast.IdentifierNode); ok {
		if r, ok := repl[id.Value]; ok {
			return cloneNode(r)
		}
		return node
	}
	switch n := node.(type) {
	case *ast.BinaryNode:
		return &ast.BinaryNode{Operator: n.Operator, Left: substituteNode(n.Left, repl), Right: substituteNode(n.Right, repl)}
	case *ast.UnaryNode:
		return &ast.UnaryNode{Operator: n.Operator, Node: substituteNode(n.Node, repl)}
	case *ast.ConditionalNode:
		return &ast.ConditionalNode{
			Cond: substituteNode(n.Cond, repl),
			Exp1: substituteNode(n.Exp1, repl),
			Exp2: substituteNode(n.Exp2, repl),
		}
	case *ast.CallNode:
		args := make([]ast.Node, len(n.Arguments))
		for i, a := range n.Arguments {
			args[i] = substituteNode(a, repl)
		}
		return &ast.CallNode{Callee: substituteNode(n.Callee, repl), Arguments: args}
	case *ast.SliceNode:
		return &ast.SliceNode{
			Node: substituteNode(n.Node, repl),
			From: substituteNode(n.From, repl),
			To:   substituteNode(n.To, repl),
		}
	default:
		return node
	}
}

// pushNegation returns ¬node with negation pushed as far toward the leaves
// as the node's own shape allows: De Morgan's laws over "&&"/"||" (recursing
// into both sides), double-negation elimination, and flipping the six
// comparison operators ("==" to "!=", "<" to ">=", and so on). Any other
// node (a string predicate call, ite, an identifier) is wrapped in a single
// "not" unary node.
func pushNegation(node ast.Node) ast.Node {
	switch n := node.(type) {
	case *ast.UnaryNode:
		if n.Operator == "not" {
			// Double negation: ¬¬x = x.
			return n.Node
		}
	case *ast.BinaryNode:
		switch n.Operator {
		case "&&":
			return &ast.BinaryNode{Operator: "||", Left: pushNegation(n.Left), Right: pushNegation(n.Right)}
		case "||":
			return &ast.BinaryNode{Operator: "&&", Left: pushNegation(n.Left), Right: pushNegation(n.Right)}
		case "==":
			return &ast.BinaryNode{Operator: "!=", Left: n.Left, Right: n.Right}
		case "!=":
			return &ast.BinaryNode{Operator: "==", Left: n.Left, Right: n.Right}
		case "<":
			return &ast.BinaryNode{Operator: ">=", Left: n.Left, Right: n.Right}
		case "<=":
			return &ast.BinaryNode{Operator: ">", Left: n.Left, Right: n.Right}
		case ">":
			return &ast.BinaryNode{Operator: "<=", Left: n.Left, Right: n.Right}
		case ">=":
			return &ast.BinaryNode{Operator: "<", Left: n.Left, Right: n.Right}
		}
	}
	return &ast.UnaryNode{Operator: "not", Node: node}
}
