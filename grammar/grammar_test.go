package grammar

import (
	"math/rand"
	"testing"
)

func assignmentGrammar(t *testing.T) *Grammar {
	t.Helper()
	g, err := NewGrammar(map[string][]string{
		"<start>": {"<stmt>"},
		"<stmt>":  {"<assgn>", "<assgn> ; <stmt>"},
		"<assgn>": {"<var> := <rhs>"},
		"<rhs>":   {"<var>", "<digit>"},
		"<var>":   {"x", "y", "z"},
		"<digit>": {"0", "1"},
	})
	if err != nil {
		t.Fatalf("NewGrammar: %v", err)
	}
	return g
}

func TestParseAlternative(t *testing.T) {
	alt, err := ParseAlternative("<var> := <rhs>")
	if err != nil {
		t.Fatalf("ParseAlternative: %v", err)
	}
	want := Alternative{
		{Name: "<var>", IsNonterminal: true},
		{Name: " := "},
		{Name: "<rhs>", IsNonterminal: true},
	}
	if len(alt) != len(want) {
		t.Fatalf("len(alt) = %d, want %d (%v)", len(alt), len(want), alt)
	}
	for i := range want {
		if alt[i] != want[i] {
			t.Fatalf("alt[%d] = %+v, want %+v", i, alt[i], want[i])
		}
	}
}

func TestParseAlternativeUnterminated(t *testing.T) {
	if _, err := ParseAlternative("<var"); err == nil {
		t.Fatalf("expected an error for an unterminated nonterminal reference")
	}
}

func TestAlternatives(t *testing.T) {
	g := assignmentGrammar(t)
	alts := g.Alternatives("<var>")
	if len(alts) != 3 {
		t.Fatalf("len(Alternatives(<var>)) = %d, want 3", len(alts))
	}
	if g.Alternatives("<nope>") != nil {
		t.Fatalf("expected nil alternatives for an undefined nonterminal")
	}
}

func TestReachable(t *testing.T) {
	g := assignmentGrammar(t)
	if !g.Reachable("<start>", "<digit>") {
		t.Fatalf("<digit> should be reachable from <start>")
	}
	if g.Reachable("<digit>", "<start>") {
		t.Fatalf("<start> should not be reachable from <digit>")
	}
	if !g.Reachable("<start>", "<start>") {
		t.Fatalf("a nonterminal should trivially reach itself")
	}
}

func TestIsRecursive(t *testing.T) {
	g := assignmentGrammar(t)
	if !g.IsRecursive("<stmt>") {
		t.Fatalf("<stmt> is self-recursive via its second alternative")
	}
	if g.IsRecursive("<var>") {
		t.Fatalf("<var> has no recursive alternative")
	}
}

func TestFuzzProducesClosedTree(t *testing.T) {
	g := assignmentGrammar(t)
	tree := g.Fuzz("<assgn>", rand.New(rand.NewSource(1)), 10)
	if tree.IsOpen() {
		t.Fatalf("Fuzz should return a fully closed tree, got %q", tree.String())
	}
	if !g.IsDefined("<assgn>") {
		t.Fatalf("<assgn> should be defined")
	}
}

func TestFuzzDeterministicWithNilRNG(t *testing.T) {
	g := assignmentGrammar(t)
	a := g.Fuzz("<assgn>", nil, 10)
	b := g.Fuzz("<assgn>", nil, 10)
	if a.String() != b.String() {
		t.Fatalf("Fuzz with a nil rng should be deterministic: %q vs %q", a, b)
	}
}

func TestParseRoundTripsFuzzedTree(t *testing.T) {
	g := assignmentGrammar(t)
	tree := g.Fuzz("<assgn>", rand.New(rand.NewSource(7)), 10)
	parsed, ok := g.Parse(tree.String(), "<assgn>")
	if !ok {
		t.Fatalf("Parse(%q, <assgn>) failed to recognize a string produced by Fuzz", tree.String())
	}
	if parsed.String() != tree.String() {
		t.Fatalf("Parse round trip mismatch: got %q, want %q", parsed.String(), tree.String())
	}
}

func TestParseRejectsNonMember(t *testing.T) {
	g := assignmentGrammar(t)
	if _, ok := g.Parse("x := w", "<assgn>"); ok {
		t.Fatalf("Parse should reject a string not in the language")
	}
}
