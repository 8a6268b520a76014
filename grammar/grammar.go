// Package grammar is the read-only grammar façade the rest of isla-go builds
// on: alternatives of a nonterminal, reachability between nonterminals, a
// utility "expand to some tree" fuzzer for placeholder generation, and a
// backtracking recognizer used to parse a bind expression's tree prefix back
// into a *ast.Tree. It is deliberately small: the real parsing and k-path
// engines (Earley, grammar-graph) are out of scope and treated as external
// collaborators.
package grammar

import (
	"strings"

	islaerr "github.com/synthgrammar/isla/error"
)

// StartSymbol is the grammar's reserved entry nonterminal.
const StartSymbol = "<start>"

// Symbol is one element of an alternative: either a terminal string or a
// nonterminal reference.
type Symbol struct {
	Name          string
	IsNonterminal bool
}

// Alternative is one right-hand side of a production, as a flat sequence of
// terminal and nonterminal symbols.
type Alternative []Symbol

// String reconstructs the alternative's surface form ("<a>b<c>").
func (a Alternative) String() string {
	var b strings.Builder
	for _, s := range a {
		b.WriteString(s.Name)
	}
	return b.String()
}

// Grammar maps nonterminal labels to an ordered list of alternatives. It is
// built once (via NewGrammar) and never mutated afterward.
type Grammar struct {
	rules map[string][]Alternative
	order []string
}

// NewGrammar builds a Grammar from raw right-hand sides, each given as a
// surface string in which nonterminals appear as "<name>" tokens (exactly
// the concrete form spec.md §6 describes). Within-rule alternative order is
// preserved as given, since match-expression flattening and fuzzing both
// depend on trying alternatives in a stable order. The rules arrive as a
// map, so the order of the rules themselves is not preserved.
func NewGrammar(rules map[string][]string) (*Grammar, error) {
	g := &Grammar{rules: make(map[string][]Alternative, len(rules))}
	for nonterminal := range rules {
		g.order = append(g.order, nonterminal)
	}
	for _, nonterminal := range g.order {
		alts := make([]Alternative, 0, len(rules[nonterminal]))
		for _, raw := range rules[nonterminal] {
			alt, err := ParseAlternative(raw)
			if err != nil {
				return nil, err
			}
			alts = append(alts, alt)
		}
		g.rules[nonterminal] = alts
	}
	return g, nil
}

// ParseAlternative splits a surface right-hand side into symbols, treating
// any "<...>" run as a nonterminal reference and everything else as literal
// terminal text, coalescing adjacent terminal runs into a single Symbol.
func ParseAlternative(raw string) (Alternative, error) {
	var alt Alternative
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			alt = append(alt, Symbol{Name: lit.String()})
			lit.Reset()
		}
	}
	i := 0
	for i < len(raw) {
		if raw[i] == '<' {
			end := strings.IndexByte(raw[i:], '>')
			if end < 0 {
				return nil, &islaerr.SyntaxError{
					Cause: islaerr.CauseSyntax,
					Text:  raw,
					Wrap:  errUnterminatedNonterminal,
				}
			}
			flush()
			alt = append(alt, Symbol{Name: raw[i : i+end+1], IsNonterminal: true})
			i += end + 1
			continue
		}
		lit.WriteByte(raw[i])
		i++
	}
	flush()
	return alt, nil
}

var errUnterminatedNonterminal = strErr("unterminated nonterminal reference")

type strErr string

func (e strErr) Error() string { return string(e) }

// Alternatives returns the ordered right-hand sides of nonterminal, or nil
// if it is undefined.
func (g *Grammar) Alternatives(nonterminal string) []Alternative {
	return g.rules[nonterminal]
}

// Nonterminals returns every defined nonterminal, in no particular order.
func (g *Grammar) Nonterminals() []string {
	return g.order
}

// IsDefined reports whether nonterminal has a rule in g (possibly one with
// no alternatives).
func (g *Grammar) IsDefined(nonterminal string) bool {
	_, ok := g.rules[nonterminal]
	return ok
}
