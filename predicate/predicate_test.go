package predicate

import (
	"testing"

	"github.com/synthgrammar/isla/ast"
	"github.com/synthgrammar/isla/grammar"
)

func paddingGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	g, err := grammar.NewGrammar(map[string][]string{
		"<start>": {"<field>"},
		"<field>": {"<char><field>", ""},
		"<char>":  {"a", "b", "c", "d", "e", "f", "0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "*"},
	})
	if err != nil {
		t.Fatalf("NewGrammar: %v", err)
	}
	return g
}

func TestBeforeAncestorPrecedesDescendant(t *testing.T) {
	ok, err := Before.Eval([]Arg{
		{Path: ast.Path{0}},
		{Path: ast.Path{0, 1}},
	})
	if err != nil {
		t.Fatalf("Before.Eval: %v", err)
	}
	if !ok {
		t.Fatalf("Before(ancestor, descendant) = false, want true")
	}
}

func TestBeforeSiblingOrder(t *testing.T) {
	ok, err := Before.Eval([]Arg{
		{Path: ast.Path{0, 0}},
		{Path: ast.Path{0, 1}},
	})
	if err != nil {
		t.Fatalf("Before.Eval: %v", err)
	}
	if !ok {
		t.Fatalf("Before(0.0, 0.1) = false, want true")
	}

	ok, err = Before.Eval([]Arg{
		{Path: ast.Path{0, 1}},
		{Path: ast.Path{0, 0}},
	})
	if err != nil {
		t.Fatalf("Before.Eval: %v", err)
	}
	if ok {
		t.Fatalf("Before(0.1, 0.0) = true, want false")
	}
}

func blockGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	g, err := grammar.NewGrammar(map[string][]string{
		"<start>": {"<block>"},
		"<block>": {"{<decl><block>}", "{<decl>}"},
		"<decl>":  {"x", "y"},
	})
	if err != nil {
		t.Fatalf("NewGrammar: %v", err)
	}
	return g
}

func TestLevelComparesAncestorCounts(t *testing.T) {
	g := blockGrammar(t)
	tree, ok := g.Parse("{x{y}}", "<block>")
	if !ok {
		t.Fatalf("Parse failed")
	}

	// tree: <block> -> { <decl>(x) <block> -> { <decl>(y) } }
	outerDecl := ast.Path{1}    // x, one <block> ancestor (the root)
	innerDecl := ast.Path{2, 1} // y, two <block> ancestors (root + nested block)

	ok, err := Level.Eval([]Arg{
		StringArg("GE"),
		StringArg("<block>"),
		TreeArg(tree, innerDecl),
		TreeArg(tree, outerDecl),
	})
	if err != nil {
		t.Fatalf("Level.Eval: %v", err)
	}
	if !ok {
		t.Fatalf("Level(GE, <block>, y, x) = false, want true (y is more deeply nested)")
	}

	ok, err = Level.Eval([]Arg{
		StringArg("EQ"),
		StringArg("<block>"),
		TreeArg(tree, innerDecl),
		TreeArg(tree, outerDecl),
	})
	if err != nil {
		t.Fatalf("Level.Eval: %v", err)
	}
	if ok {
		t.Fatalf("Level(EQ, <block>, y, x) = true, want false")
	}
}

func TestLevelRejectsMissingContextTree(t *testing.T) {
	_, err := Level.Eval([]Arg{
		StringArg("GE"),
		StringArg("<block>"),
		{Path: ast.Path{0}},
		{Path: ast.Path{1, 0}},
	})
	if err == nil {
		t.Fatalf("expected an error when a tree argument has no context tree")
	}
}

func TestCountMatches(t *testing.T) {
	g := paddingGrammar(t)
	tree, ok := g.Parse("aabaa", "<field>")
	if !ok {
		t.Fatalf("Parse failed")
	}
	sat, repairs, err := Count.Eval(g, []Arg{
		TreeArg(tree, nil),
		StringArg("a"),
		StringArg("4"),
	})
	if err != nil {
		t.Fatalf("Count.Eval: %v", err)
	}
	if !sat {
		t.Fatalf("Count(aabaa, \"a\", 4) unsatisfied, want satisfied")
	}
	if repairs != nil {
		t.Fatalf("satisfied Count proposed a repair: %v", repairs)
	}
}

func TestCountMismatchHasNoSynthesizedRepair(t *testing.T) {
	g := paddingGrammar(t)
	tree, ok := g.Parse("aabaa", "<field>")
	if !ok {
		t.Fatalf("Parse failed")
	}
	_, _, err := Count.Eval(g, []Arg{
		TreeArg(tree, nil),
		StringArg("a"),
		StringArg("1"),
	})
	if err == nil {
		t.Fatalf("expected an error for a mismatched count (synthesis is out of scope)")
	}
}

func TestLJustProposesPaddingForShortString(t *testing.T) {
	g := paddingGrammar(t)
	tree, ok := g.Parse("aaaba", "<field>")
	if !ok {
		t.Fatalf("Parse failed")
	}
	sat, repairs, err := LJust.Eval(g, []Arg{
		TreeArg(tree, nil),
		StringArg("7"),
		StringArg("*"),
	})
	if err != nil {
		t.Fatalf("LJust.Eval: %v", err)
	}
	if sat {
		t.Fatalf("LJust(aaaba, width=7) reported satisfied, want a padding repair")
	}
	if len(repairs) != 1 {
		t.Fatalf("expected exactly one repair, got %d", len(repairs))
	}
	if got, want := repairs[0].With.String(), "aaaba**"; got != want {
		t.Fatalf("repaired text = %q, want %q", got, want)
	}
}

func TestLJustAlreadySatisfied(t *testing.T) {
	g := paddingGrammar(t)
	tree, ok := g.Parse("aabaa", "<field>")
	if !ok {
		t.Fatalf("Parse failed")
	}
	sat, repairs, err := LJust.Eval(g, []Arg{
		TreeArg(tree, nil),
		StringArg("5"),
		StringArg("*"),
	})
	if err != nil {
		t.Fatalf("LJust.Eval: %v", err)
	}
	if !sat || repairs != nil {
		t.Fatalf("LJust already at width: sat=%v repairs=%v, want sat=true repairs=nil", sat, repairs)
	}
}

func TestRJustCropKeepsTrailingRunes(t *testing.T) {
	g := paddingGrammar(t)
	tree, ok := g.Parse("aabaa", "<field>")
	if !ok {
		t.Fatalf("Parse failed")
	}
	sat, repairs, err := RJustCrop.Eval(g, []Arg{
		TreeArg(tree, nil),
		StringArg("3"),
		StringArg("*"),
	})
	if err != nil {
		t.Fatalf("RJustCrop.Eval: %v", err)
	}
	if sat {
		t.Fatalf("RJustCrop(aabaa, width=3) satisfied, want a crop repair")
	}
	if len(repairs) != 1 || repairs[0].With.String() != "baa" {
		t.Fatalf("RJustCrop repair = %+v, want With.String() == \"baa\"", repairs)
	}
}

func TestChecksumProposesRecomputedValue(t *testing.T) {
	g := paddingGrammar(t)
	data, ok := g.Parse("aabaa", "<field>")
	if !ok {
		t.Fatalf("Parse data failed")
	}
	sum, ok := g.Parse("00", "<field>")
	if !ok {
		t.Fatalf("Parse checksum failed")
	}
	sat, repairs, err := Checksum.Eval(g, []Arg{
		TreeArg(data, nil),
		TreeArg(sum, nil),
	})
	if err != nil {
		t.Fatalf("Checksum.Eval: %v", err)
	}
	if sat {
		t.Fatalf("Checksum(aabaa, 00) satisfied unexpectedly")
	}
	if len(repairs) != 1 {
		t.Fatalf("expected a repair proposal, got %d", len(repairs))
	}
	want := computeChecksum("aabaa")
	if repairs[0].With.String() != want {
		t.Fatalf("repair = %q, want %q", repairs[0].With.String(), want)
	}
}

func TestBuiltinsRegistersEveryPredicate(t *testing.T) {
	r := Builtins()
	if _, ok := r.Structural["before"]; !ok {
		t.Fatalf("before missing from structural registry")
	}
	for _, name := range []string{"count", "ljust", "ljust_crop", "rjust", "rjust_crop", "checksum"} {
		if _, ok := r.Semantic[name]; !ok {
			t.Fatalf("%s missing from semantic registry", name)
		}
	}
}
