package bindexpr

import (
	"fmt"
	"strings"

	"github.com/synthgrammar/isla/ast"
	"github.com/synthgrammar/isla/grammar"
)

type leafPos struct {
	path ast.Path
	text string
}

type span struct {
	start, end int // half-open range over leafPos indices
}

// leavesAndSpans computes, for every node of tree, the contiguous range of
// leaf indices it covers, keyed by a stable string encoding of its path. It
// is the basis both for locating where a bound variable's subtree could
// start, and for checking a candidate subtree covers exactly the leaves it
// claims to.
func leavesAndSpans(tree *ast.Tree) (leaves []leafPos, spans map[string]span) {
	lvs := tree.Leaves()
	leaves = make([]leafPos, len(lvs))
	spans = make(map[string]span)
	for i, pt := range lvs {
		leaves[i] = leafPos{path: pt.Path, text: pt.Tree.Value()}
		for l := 0; l <= len(pt.Path); l++ {
			key := pathKey(pt.Path[:l])
			s, ok := spans[key]
			if !ok {
				spans[key] = span{start: i, end: i + 1}
				continue
			}
			if i < s.start {
				s.start = i
			}
			if i+1 > s.end {
				s.end = i + 1
			}
			spans[key] = s
		}
	}
	return leaves, spans
}

func pathKey(p ast.Path) string {
	var b strings.Builder
	for _, idx := range p {
		fmt.Fprintf(&b, "%d.", idx)
	}
	return b.String()
}

// Match tries every flattening of the bind expression (richest first)
// against tree, returning the variable-to-path bindings of the first one
// that accounts for every leaf of tree. anchor is the nonterminal tree is
// rooted at, used only to pick which flattenings are even grammatically
// possible there (see flattenings in prefix.go).
func (b *BindExpression) Match(g *grammar.Grammar, tree *ast.Tree, anchor string) (map[ast.Variable]ast.Path, bool) {
	flats := b.flattenings(g, anchor)
	leaves, spans := leavesAndSpans(tree)
	paths := tree.Paths()

	// Prefer richer (longer) flattenings first: a flattening that included
	// more optional groups pins down more of the match, so if it succeeds
	// it is the more informative answer.
	ordered := make([][]ast.Variable, len(flats))
	copy(ordered, flats)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && len(ordered[j]) > len(ordered[j-1]); j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}

	for _, seq := range ordered {
		bindings := make(map[ast.Variable]ast.Path, len(seq))
		if matchFrom(seq, 0, 0, leaves, spans, paths, bindings) {
			return bindings, true
		}
	}
	return nil, false
}

func matchFrom(seq []ast.Variable, seqIdx, leafIdx int, leaves []leafPos, spans map[string]span, paths []ast.PathTree, bindings map[ast.Variable]ast.Path) bool {
	if seqIdx == len(seq) {
		return leafIdx == len(leaves)
	}
	v := seq[seqIdx]

	if v.Kind == ast.KindDummy {
		nextIdx, ok := matchDummyText(v.NType, leafIdx, leaves)
		if !ok {
			return false
		}
		return matchFrom(seq, seqIdx+1, nextIdx, leaves, spans, paths, bindings)
	}

	// Bound nonterminal variable: try candidate subtrees starting exactly at
	// leafIdx, outermost (shallowest, encountered first in preorder) first,
	// backtracking into progressively deeper/later candidates when the
	// greedy outer choice makes the rest of the sequence unmatchable.
	for _, pt := range paths {
		s, ok := spans[pathKey(pt.Path)]
		if !ok || s.start != leafIdx || pt.Tree.Value() != v.NType {
			continue
		}
		bindings[v] = pt.Path
		if matchFrom(seq, seqIdx+1, s.end, leaves, spans, paths, bindings) {
			return true
		}
		delete(bindings, v)
	}
	return false
}

// matchDummyText consumes leaves starting at leafIdx to cover text exactly.
// When text strictly begins with the current leaf's own text (the dummy is
// longer than one leaf), the excess is matched against subsequent leaves —
// effectively splitting the dummy at the leaf boundary. When a single leaf's
// text is longer than the remaining dummy text but has it as a prefix, the
// whole leaf is consumed (a leaf is atomic and cannot itself be split).
func matchDummyText(text string, leafIdx int, leaves []leafPos) (int, bool) {
	remaining := text
	idx := leafIdx
	for remaining != "" {
		if idx >= len(leaves) {
			return 0, false
		}
		leafText := leaves[idx].text
		switch {
		case leafText == remaining:
			idx++
			remaining = ""
		case leafText != "" && strings.HasPrefix(remaining, leafText):
			remaining = remaining[len(leafText):]
			idx++
		case strings.HasPrefix(leafText, remaining):
			idx++
			remaining = ""
		default:
			return 0, false
		}
	}
	return idx, true
}
