package grammar

import (
	"math/rand"

	"github.com/synthgrammar/isla/ast"
)

// DefaultFuzzDepth bounds how many nonterminal expansions Fuzz will chase
// down a single branch before it starts preferring whichever alternative
// has the fewest nonterminal symbols, guaranteeing termination even for a
// grammar with only recursive productions for some nonterminal.
const DefaultFuzzDepth = 40

// Fuzz expands nonterminal into a fully closed, syntactically valid tree by
// repeatedly picking one of its alternatives. rng, if non-nil, is consulted
// for the choice among alternatives of equal suitability; a nil rng makes
// the expansion deterministic (always the first applicable alternative),
// useful for tests that need a stable tree-prefix fixture.
//
// This backs bind-expression "tree prefix" construction (spec.md §4.2): fill
// every still-free nonterminal with *some* concrete expansion so the
// flattening can be matched back onto a parse.
func (g *Grammar) Fuzz(nonterminal string, rng *rand.Rand, maxDepth int) *ast.Tree {
	if maxDepth <= 0 {
		maxDepth = DefaultFuzzDepth
	}
	return g.fuzzSymbol(Symbol{Name: nonterminal, IsNonterminal: true}, 0, maxDepth, rng)
}

func (g *Grammar) fuzzSymbol(sym Symbol, depth, maxDepth int, rng *rand.Rand) *ast.Tree {
	if !sym.IsNonterminal {
		return ast.NewLeaf(sym.Name)
	}
	alts := g.rules[sym.Name]
	if len(alts) == 0 {
		return ast.NewOpenLeaf(sym.Name)
	}

	choice := 0
	if depth >= maxDepth {
		choice = shortestAlternative(alts)
	} else if rng != nil {
		choice = rng.Intn(len(alts))
	}

	alt := alts[choice]
	children := make([]*ast.Tree, len(alt))
	for i, s := range alt {
		children[i] = g.fuzzSymbol(s, depth+1, maxDepth, rng)
	}
	return ast.NewNode(sym.Name, children)
}

// shortestAlternative picks the alternative with the fewest nonterminal
// symbols, a cheap termination-favoring heuristic once the depth budget is
// exhausted.
func shortestAlternative(alts []Alternative) int {
	best, bestCount := 0, -1
	for i, alt := range alts {
		n := 0
		for _, s := range alt {
			if s.IsNonterminal {
				n++
			}
		}
		if bestCount < 0 || n < bestCount {
			best, bestCount = i, n
		}
	}
	return best
}
