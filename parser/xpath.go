package parser

import (
	"strconv"
	"strings"

	"github.com/synthgrammar/isla/ast"
	"github.com/synthgrammar/isla/formula"
)

// scope tracks the quantifiers a formula body implicitly introduces through
// XPath shorthand while that body is being parsed: a bare "<nt>" reference
// becomes a top-level default binding over "start"; a "var.<child>" chain
// introduces a forall nested directly around the body that referenced it,
// so that its bound variable is in scope exactly where the shorthand was
// used. Every recursive descent into a quantifier's own body starts a fresh
// scope, since that body is itself a complete formula the new quantifier's
// variable is in scope for.
type scope struct {
	parent *scope
	mgr    *VariableManager
	// ownVar is the variable the quantifier owning this scope declared, if
	// any (the formula's top constant for the top-level scope; nil for
	// "forall int" scopes, which bind a NUM variable no "<nt>" shorthand
	// could ever mean).
	ownVar *ast.Variable
	// chain caches "var.<nt>.<nt>..." XPath keys already resolved within
	// this body, so repeated occurrences share one introduced quantifier
	// instead of each getting its own.
	chain map[string]ast.Variable
	// lifts are the foralls this scope's body must be wrapped in, applied
	// outermost-last (the first shorthand encountered wraps outermost).
	lifts []pendingLift
}

type pendingLift struct {
	bound ast.Variable
	in    ast.Variable
}

func newScope(parent *scope, mgr *VariableManager) *scope {
	return &scope{parent: parent, mgr: mgr, chain: map[string]ast.Variable{}}
}

// rootConstant returns the top-level "const" declaration (or the implicit
// "start" constant), used as a quantifier's default "in" target when its
// clause is omitted.
func (s *scope) rootConstant() *ast.Variable {
	root := s
	for root.parent != nil {
		root = root.parent
	}
	return root.ownVar
}

// resolveBareNonterminal handles "<nt>" used directly where a variable is
// expected: spec.md's "XPath-style shorthand where <nt> may appear in place
// of a variable". If a variable of that nonterminal type is already bound
// by an enclosing quantifier, the shorthand refers to it; otherwise it is a
// genuinely free "<nt>", lifted to a fresh "forall <nt> nt in start:"
// wrapping the whole formula (spec.md's default-bindings rule).
func (s *scope) resolveBareNonterminal(nType string) ast.Variable {
	for anc := s; anc != nil; anc = anc.parent {
		if anc.ownVar != nil && anc.ownVar.NType == nType {
			return *anc.ownVar
		}
	}

	root := s
	for root.parent != nil {
		root = root.parent
	}
	key := "start:" + nType
	if v, ok := root.chain[key]; ok {
		return v
	}
	name := defaultName(root.mgr, nType)
	v, err := root.mgr.Declare(name, nType)
	if err != nil {
		// defaultName already avoided every declared name; a collision here
		// would be a VariableManager bug, not a surface syntax error.
		panic(err)
	}
	root.chain[key] = v
	root.lifts = append(root.lifts, pendingLift{bound: v, in: ast.NewConstant("start", "<start>")})
	return v
}

// resolveXPathChild handles "base.<child>": base must already be a resolved
// variable, and the new forall is introduced on s (the nearest enclosing
// formula body), not the root, since base is only in scope there.
func (s *scope) resolveXPathChild(base ast.Variable, childNT string) ast.Variable {
	key := base.Name + "." + childNT
	for anc := s; anc != nil; anc = anc.parent {
		if v, ok := anc.chain[key]; ok {
			return v
		}
	}
	name := defaultName(s.mgr, childNT)
	v, err := s.mgr.Declare(name, childNT)
	if err != nil {
		panic(err)
	}
	s.chain[key] = v
	s.lifts = append(s.lifts, pendingLift{bound: v, in: base})
	return v
}

// wrap applies every lift this scope accumulated to body, innermost lift
// (the last one discovered) closest to body.
func (s *scope) wrap(body formula.Formula) formula.Formula {
	for i := len(s.lifts) - 1; i >= 0; i-- {
		l := s.lifts[i]
		body = formula.NewForall(l.bound, l.in, body, nil)
	}
	return body
}

// defaultName derives a quantifier's implicit variable name from its
// nonterminal ("<assgn>" -> "assgn"), suffixing _0, _1, ... on collision
// with any name the manager has already handed out.
func defaultName(mgr *VariableManager, nType string) string {
	base := strings.TrimSuffix(strings.TrimPrefix(nType, "<"), ">")
	if !mgr.Declared(base) {
		return base
	}
	for i := 0; ; i++ {
		candidate := base + "_" + strconv.Itoa(i)
		if !mgr.Declared(candidate) {
			return candidate
		}
	}
}
