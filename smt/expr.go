package smt

import (
	"fmt"
	"sort"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/compiler"
	"github.com/expr-lang/expr/conf"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

// Result is the three-valued outcome of checking an SMT leaf's validity: a
// ground leaf settles to True or False, one with a still-unbound symbol
// settles to Unknown rather than erroring.
type Result int

const (
	False Result = iota
	True
	Unknown
)

func (r Result) String() string {
	switch r {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// Expr is an opaque handle onto a parsed SMT leaf. It is immutable: every
// operation below returns a new Expr rather than mutating the receiver, the
// same discipline the ast package's derivation trees follow.
type Expr struct {
	node ast.Node
}

// Parse reads an SMT leaf's s-expression surface syntax ("(= v1 v2)",
// "(> (str.len v1) 3)", or a bare atom) into an Expr.
func Parse(src string) (*Expr, error) {
	node, err := parseSExpr(src)
	if err != nil {
		return nil, err
	}
	return &Expr{node: node}, nil
}

// FreeSymbols returns the distinct variable names Expr references, sorted
// for deterministic output (formula.Formula's own free-variable computation
// needs a stable order to dedupe against bound variable names by text).
func (e *Expr) FreeSymbols() []string {
	seen := make(map[string]bool)
	collectIdentifiers(e.node, seen)
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Substitute returns a new Expr with every free symbol matching a key of
// repl rewritten to the corresponding replacement text (itself a symbol name
// or a literal, parsed the same way a leaf atom is). Symbols absent from
// repl are left untouched.
func (e *Expr) Substitute(repl map[string]string) (*Expr, error) {
	nodes := make(map[string]ast.Node, len(repl))
	for k, v := range repl {
		n, err := parseSExpr(v)
		if err != nil {
			return nil, fmt.Errorf("smt: substituting %q: %w", k, err)
		}
		nodes[k] = n
	}
	return &Expr{node: substituteNode(e.node, nodes)}, nil
}

// Negate returns ¬Expr with negation pushed as far toward the leaves as the
// expression's own shape allows (De Morgan's laws over "and"/"or", flipped
// comparison operators, double-negation elimination).
func (e *Expr) Negate() *Expr {
	return &Expr{node: pushNegation(e.node)}
}

// Evaluate is the adapter's three-valued is_valid: Unknown if any free
// symbol is absent from bindings, otherwise the expression's ground boolean
// result under bindings (built via expr-lang's compiler/vm, the same
// low-level path the rest of the pack uses to evaluate a patched AST).
func (e *Expr) Evaluate(bindings map[string]any) (Result, error) {
	for _, sym := range e.FreeSymbols() {
		if _, ok := bindings[sym]; !ok {
			return Unknown, nil
		}
	}

	config := conf.New(bindings)
	program, err := compiler.Compile(&parser.Tree{Node: e.node}, config)
	if err != nil {
		return Unknown, fmt.Errorf("smt: compiling %q: %w", e.String(), err)
	}
	out, err := vm.Run(program, bindings)
	if err != nil {
		return Unknown, fmt.Errorf("smt: evaluating %q: %w", e.String(), err)
	}
	b, ok := out.(bool)
	if !ok {
		return Unknown, fmt.Errorf("smt: expression %q evaluated to %T, want bool", e.String(), out)
	}
	if b {
		return True, nil
	}
	return False, nil
}

// String renders Expr back to its compact s-expression form.
func (e *Expr) String() string {
	return sprint(e.node)
}
