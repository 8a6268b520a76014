package grammar

import (
	"strings"

	"github.com/synthgrammar/isla/ast"
)

// maxParseSteps bounds the total number of parseSymbol/parseSeq calls in a
// single Parse, guarding against runaway backtracking on a pathological
// (e.g. epsilon-recursive) grammar; the façade is meant for the small
// grammars used to build bind-expression tree prefixes and to parse test
// inputs, not production-scale inputs.
const maxParseSteps = 200000

// Parse recognizes input against nonterminal start's alternatives by
// backtracking recursive descent, returning the first derivation tree (in
// alternative-declaration order) whose concatenated terminals equal input
// exactly. This stands in for the out-of-scope Earley engine: it is
// deliberately simple, trying alternatives in order and backtracking on
// failure, which is sufficient for the small grammars and short strings a
// bind-expression tree prefix or a hand-authored test input involve.
func (g *Grammar) Parse(input, start string) (*ast.Tree, bool) {
	p := &parseState{g: g}
	var result *ast.Tree
	p.parseSymbol(Symbol{Name: start, IsNonterminal: true}, input, func(tree *ast.Tree, rest string) bool {
		if rest == "" {
			result = tree
			return true
		}
		return false
	})
	return result, result != nil
}

type parseState struct {
	g     *Grammar
	steps int
}

func (p *parseState) parseSymbol(sym Symbol, s string, k func(*ast.Tree, string) bool) bool {
	p.steps++
	if p.steps > maxParseSteps {
		return false
	}
	if !sym.IsNonterminal {
		if strings.HasPrefix(s, sym.Name) {
			return k(ast.NewLeaf(sym.Name), s[len(sym.Name):])
		}
		return false
	}
	for _, alt := range p.g.rules[sym.Name] {
		if p.parseSeq(alt, 0, s, nil, func(children []*ast.Tree, rest string) bool {
			return k(ast.NewNode(sym.Name, children), rest)
		}) {
			return true
		}
	}
	return false
}

func (p *parseState) parseSeq(alt Alternative, idx int, s string, acc []*ast.Tree, k func([]*ast.Tree, string) bool) bool {
	p.steps++
	if p.steps > maxParseSteps {
		return false
	}
	if idx == len(alt) {
		if len(acc) == 0 {
			acc = []*ast.Tree{}
		}
		return k(acc, s)
	}
	return p.parseSymbol(alt[idx], s, func(tree *ast.Tree, rest string) bool {
		next := make([]*ast.Tree, len(acc)+1)
		copy(next, acc)
		next[len(acc)] = tree
		return p.parseSeq(alt, idx+1, rest, next, k)
	})
}
