package bindexpr

import (
	"strings"

	"github.com/synthgrammar/isla/ast"
	"github.com/synthgrammar/isla/grammar"
)

// PrefixEntry pairs a representative tree with the path each bound variable
// of the flattening that produced it sits at.
type PrefixEntry struct {
	Flattening []ast.Variable
	Tree       *ast.Tree
	Bindings   map[ast.Variable]ast.Path
}

// flattenings returns the flattenings of b that are valid for anchor: a
// flattening is valid if some assignment of its still-free nonterminal
// variables yields a string the grammar can parse as anchor. The result (and
// the work of finding it) is memoized per anchor.
func (b *BindExpression) flattenings(g *grammar.Grammar, anchor string) [][]ast.Variable {
	b.validMu.Lock()
	defer b.validMu.Unlock()
	if b.validCache == nil {
		b.validCache = make(map[string][][]ast.Variable)
	}
	if cached, ok := b.validCache[anchor]; ok {
		return cached
	}

	var valid [][]ast.Variable
	for _, seq := range b.rawFlattenings() {
		if _, _, ok := buildPrefix(g, anchor, seq); ok {
			valid = append(valid, seq)
		}
	}
	b.validCache[anchor] = valid
	return valid
}

// TreePrefixes returns, for anchor, the representative tree and bound
// variable bindings of every valid flattening, building and caching them on
// first use. The free expansion of nonterminal-typed bound variables is
// deterministic (grammar.Fuzz with a nil rng), so the same anchor always
// yields the same cached template.
func (b *BindExpression) TreePrefixes(g *grammar.Grammar, anchor string) []*PrefixEntry {
	b.prefixMu.Lock()
	defer b.prefixMu.Unlock()
	if b.prefixCache == nil {
		b.prefixCache = make(map[string][]*PrefixEntry)
	}
	if cached, ok := b.prefixCache[anchor]; ok {
		return cloneEntries(cached)
	}

	var entries []*PrefixEntry
	for _, seq := range b.flattenings(g, anchor) {
		tree, bindings, ok := buildPrefix(g, anchor, seq)
		if !ok {
			continue
		}
		entries = append(entries, &PrefixEntry{Flattening: seq, Tree: tree, Bindings: bindings})
	}
	b.prefixCache[anchor] = entries
	return cloneEntries(entries)
}

// cloneEntries hands callers a tree with fresh IDs, since a cached template
// must never be inserted into more than one place sharing IDs (spec.md §3:
// "new_ids() ... needed to insert a template tree multiple times"). Paths
// address by child index, not by ID, so the cached bindings stay valid
// unchanged against the freshly-ID'd tree.
func cloneEntries(entries []*PrefixEntry) []*PrefixEntry {
	out := make([]*PrefixEntry, len(entries))
	for i, e := range entries {
		bindings := make(map[ast.Variable]ast.Path, len(e.Bindings))
		for v, p := range e.Bindings {
			bindings[v] = p
		}
		out[i] = &PrefixEntry{Flattening: e.Flattening, Tree: e.Tree.NewIDs(), Bindings: bindings}
	}
	return out
}

// buildPrefix fills every nonterminal-typed bound variable in seq with a
// freely-fuzzed expansion, concatenates the resulting string, parses it with
// anchor as the start symbol, and matches seq back onto the parse to recover
// every bound variable's path.
func buildPrefix(g *grammar.Grammar, anchor string, seq []ast.Variable) (*ast.Tree, map[ast.Variable]ast.Path, bool) {
	var sb strings.Builder
	for _, v := range seq {
		if v.Kind == ast.KindDummy {
			sb.WriteString(v.NType)
			continue
		}
		expansion := g.Fuzz(v.NType, nil, grammar.DefaultFuzzDepth)
		sb.WriteString(expansion.String())
	}

	tree, ok := g.Parse(sb.String(), anchor)
	if !ok {
		return nil, nil, false
	}

	leaves, spans := leavesAndSpans(tree)
	paths := tree.Paths()
	bindings := make(map[ast.Variable]ast.Path, len(seq))
	if !matchFrom(seq, 0, 0, leaves, spans, paths, bindings) {
		return nil, nil, false
	}
	return tree, bindings, true
}
