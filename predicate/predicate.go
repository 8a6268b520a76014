// Package predicate holds the structural and semantic predicate registries
// the formula AST's StructuralPredicateFormula and SemanticPredicateFormula
// variants call into. Structural predicates are pure functions of tree
// positions; semantic predicates additionally consult the grammar and may
// propose a tree repair when the predicate does not currently hold.
package predicate

import (
	"fmt"

	"github.com/synthgrammar/isla/ast"
	"github.com/synthgrammar/isla/grammar"
)

// Arg is a resolved predicate argument. A tree argument also carries the
// path it sits at within whatever larger context tree the formula is being
// evaluated against, since structural predicates like Before compare
// positions rather than tree content.
type Arg struct {
	Tree  *ast.Tree
	Path  ast.Path
	Str   string
	IsStr bool
}

// TreeArg is a derivation-tree argument at the given path within the
// enclosing context tree.
func TreeArg(t *ast.Tree, path ast.Path) Arg {
	return Arg{Tree: t, Path: path}
}

// StringArg is a literal-string argument (a predicate's width, fill
// character, or needle parameter — never itself a tree position).
func StringArg(s string) Arg {
	return Arg{Str: s, IsStr: true}
}

// Text returns the argument's string content, whether it came from a
// literal or a tree's own serialization.
func (a Arg) Text() string {
	if a.IsStr {
		return a.Str
	}
	if a.Tree != nil {
		return a.Tree.String()
	}
	return ""
}

// StructuralPredicate is a named, fixed-arity boolean test over resolved
// arguments, with no grammar dependency.
type StructuralPredicate struct {
	Name  string
	Arity int
	Eval  func(args []Arg) (bool, error)
}

// Repair proposes replacing Target (a tree argument passed to the predicate)
// with With, so that re-evaluating the predicate against the replacement
// would hold.
type Repair struct {
	Target *ast.Tree
	With   *ast.Tree
}

// SemanticPredicate is a named, fixed-arity test that additionally consults
// the grammar and, when unsatisfied, may propose a Repair. Order is a rank
// carried with the predicate and copied onto every formula built from it:
// 1 for the four padding predicates, 0 for count and checksum. Nothing in
// this package interprets it.
type SemanticPredicate struct {
	Name  string
	Arity int
	Order int
	Eval  func(g *grammar.Grammar, args []Arg) (bool, []Repair, error)
}

func checkArity(name string, want, got int) error {
	if want >= 0 && got != want {
		return fmt.Errorf("predicate: %s wants %d arguments, got %d", name, want, got)
	}
	return nil
}

// Before is the structural predicate "var occurs strictly before
// before_var" in the preorder leaf ordering of their shared context tree:
// comparing the two paths index by index, the first place they diverge, the
// Before argument's index is the smaller one. A path that is a strict prefix
// of the other precedes it (an ancestor is visited before its descendants in
// preorder).
var Before = StructuralPredicate{
	Name:  "before",
	Arity: 2,
	Eval: func(args []Arg) (bool, error) {
		if err := checkArity("before", 2, len(args)); err != nil {
			return false, err
		}
		return pathBefore(args[0].Path, args[1].Path), nil
	},
}

func pathBefore(a, b ast.Path) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	// One is a prefix of the other (or they're equal): the shorter/equal
	// path names an ancestor-or-self position, which precedes a strictly
	// longer descendant path but is not "before" itself or an ancestor of
	// itself.
	return len(a) < len(b)
}

// Level is the structural predicate "rel holds between the number of
// levelNT ancestors of a and the number of levelNT ancestors of b", used to
// constrain relative nesting depth, e.g. a declaration's enclosing <block>
// count against a use's. rel is one of EQ, NE, LT, LE, GT, GE. a and b must
// each carry the shared context tree they were resolved against, since
// counting ancestors requires walking from the root down to their paths.
var Level = StructuralPredicate{
	Name:  "level",
	Arity: 4,
	Eval: func(args []Arg) (bool, error) {
		if err := checkArity("level", 4, len(args)); err != nil {
			return false, err
		}
		rel, levelNT, a, b := args[0].Text(), args[1].Text(), args[2], args[3]
		if a.Tree == nil || b.Tree == nil {
			return false, fmt.Errorf("predicate: level's tree arguments must carry their context tree")
		}
		return compareLevel(rel, countAncestors(a.Tree, a.Path, levelNT), countAncestors(b.Tree, b.Path, levelNT))
	},
}

// countAncestors counts the proper ancestors of path within root (not
// including path's own node) whose value equals nt.
func countAncestors(root *ast.Tree, path ast.Path, nt string) int {
	n := 0
	for i := 0; i < len(path); i++ {
		if sub := root.GetSubtree(path[:i]); sub != nil && sub.Value() == nt {
			n++
		}
	}
	return n
}

func compareLevel(rel string, la, lb int) (bool, error) {
	switch rel {
	case "EQ":
		return la == lb, nil
	case "NE":
		return la != lb, nil
	case "LT":
		return la < lb, nil
	case "LE":
		return la <= lb, nil
	case "GT":
		return la > lb, nil
	case "GE":
		return la >= lb, nil
	default:
		return false, fmt.Errorf("predicate: level: unknown relation %q", rel)
	}
}

// Registry is a name-keyed table of built-in predicates, used by the parser
// to resolve a predicate call's name to its implementation.
type Registry struct {
	Structural map[string]StructuralPredicate
	Semantic   map[string]SemanticPredicate
}

// Builtins returns the registry of predicates this package ships, ready for
// the parser to consult when resolving a predicate call by name.
func Builtins() *Registry {
	r := &Registry{
		Structural: map[string]StructuralPredicate{
			Before.Name: Before,
			Level.Name:  Level,
		},
		Semantic: map[string]SemanticPredicate{
			Count.Name:      Count,
			LJust.Name:      LJust,
			LJustCrop.Name:  LJustCrop,
			RJust.Name:      RJust,
			RJustCrop.Name:  RJustCrop,
			Checksum.Name:   Checksum,
		},
	}
	return r
}
