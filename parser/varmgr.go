package parser

import (
	"sort"

	"github.com/synthgrammar/isla/ast"
	islaerr "github.com/synthgrammar/isla/error"
	"github.com/synthgrammar/isla/formula"
	"github.com/synthgrammar/isla/grammar"
)

// VariableManager resolves a variable name to a Variable value across a
// single parse, following forward references the way a quantifier's scope
// can't: a name used before its declaring quantifier is seen becomes a
// placeholder (no type yet); once the declaring "forall"/"exists" is parsed,
// the name is promoted to a declared variable and every formula built
// against the placeholder is rewritten at Create time.
type VariableManager struct {
	g            *grammar.Grammar
	placeholders map[string]ast.Variable
	declared     map[string]ast.Variable
}

// NewVariableManager returns a manager. g may be nil, in which case variable
// nonterminal types are never checked against a grammar.
func NewVariableManager(g *grammar.Grammar) *VariableManager {
	return &VariableManager{
		g:            g,
		placeholders: map[string]ast.Variable{},
		declared:     map[string]ast.Variable{},
	}
}

// Declare registers name as a bound variable of the given type, promoting
// any existing placeholder of the same name. It errors if name is already
// declared.
func (m *VariableManager) Declare(name, nType string) (ast.Variable, error) {
	if _, ok := m.declared[name]; ok {
		return ast.Variable{}, &islaerr.SyntaxError{Cause: islaerr.CauseRedeclaredVariable, Text: name}
	}
	if m.g != nil && nType != ast.NumType && !m.g.IsDefined(nType) {
		return ast.Variable{}, &islaerr.SyntaxError{Cause: islaerr.CauseSyntax, Text: nType}
	}
	v := ast.NewBoundVariable(name, nType)
	m.declared[name] = v
	delete(m.placeholders, name)
	return v, nil
}

// registerConstant registers v (a free variable, not bound by any
// quantifier) under its own name, the way the top-level "const" declaration
// or the implicit "start" constant does. Unlike Declare it performs no
// redeclaration or grammar check: it runs once, before any parsing, against
// a manager with nothing declared yet.
func (m *VariableManager) registerConstant(v ast.Variable) {
	m.declared[v.Name] = v
}

// Declared reports whether name has already been declared (not merely
// referenced as a placeholder).
func (m *VariableManager) Declared(name string) bool {
	_, ok := m.declared[name]
	return ok
}

// Ref resolves name, returning its declared variable if known, or an
// untyped placeholder otherwise (created on first reference).
func (m *VariableManager) Ref(name string) ast.Variable {
	if v, ok := m.declared[name]; ok {
		return v
	}
	if v, ok := m.placeholders[name]; ok {
		return v
	}
	v := ast.NewBoundVariable(name, "")
	m.placeholders[name] = v
	return v
}

// Create finalizes the parse: every placeholder must by now have a
// same-named declared variable, or Create fails with the list of names that
// never got declared. On success it substitutes every placeholder reference
// inside f with its declared counterpart.
func (m *VariableManager) Create(f formula.Formula) (formula.Formula, error) {
	var undeclared []string
	subst := map[ast.Variable]ast.Variable{}
	for name, ph := range m.placeholders {
		if v, ok := m.declared[name]; ok {
			subst[ph] = v
			continue
		}
		undeclared = append(undeclared, name)
	}
	if len(undeclared) > 0 {
		sort.Strings(undeclared)
		return nil, &islaerr.SemanticError{Cause: islaerr.CauseUndeclaredVariable, Names: undeclared}
	}
	if len(subst) == 0 {
		return f, nil
	}
	return f.SubstituteVariables(subst), nil
}
