package smt

import "testing"

func TestParseAndString(t *testing.T) {
	e, err := Parse("(= v1 v2)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got, want := e.String(), "(= v1 v2)"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestFreeSymbols(t *testing.T) {
	e, err := Parse("(> (str.len v1) 3)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := e.FreeSymbols()
	if len(got) != 1 || got[0] != "v1" {
		t.Fatalf("FreeSymbols() = %v, want [v1]", got)
	}
}

func TestFreeSymbolsExcludesCallees(t *testing.T) {
	e, err := Parse("(str.contains v1 v2)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := e.FreeSymbols()
	if len(got) != 2 || got[0] != "v1" || got[1] != "v2" {
		t.Fatalf("FreeSymbols() = %v, want [v1 v2]", got)
	}
}

func TestSubstituteRenamesSymbol(t *testing.T) {
	e, err := Parse("(= v1 v2)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	e2, err := e.Substitute(map[string]string{"v1": "v3"})
	if err != nil {
		t.Fatalf("Substitute: %v", err)
	}
	if got, want := e2.String(), "(= v3 v2)"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	// The original must be untouched.
	if got, want := e.String(), "(= v1 v2)"; got != want {
		t.Fatalf("original mutated: String() = %q, want %q", got, want)
	}
}

func TestSubstituteWithLiteral(t *testing.T) {
	e, err := Parse("(= v1 v2)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	e2, err := e.Substitute(map[string]string{"v1": `"hello"`})
	if err != nil {
		t.Fatalf("Substitute: %v", err)
	}
	if got, want := e2.String(), `(= "hello" v2)`; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestNegateComparisonFlipsOperator(t *testing.T) {
	e, err := Parse("(= v1 v2)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got, want := e.Negate().String(), "(!= v1 v2)"; got != want {
		t.Fatalf("Negate().String() = %q, want %q", got, want)
	}
}

func TestNegateDeMorgan(t *testing.T) {
	e, err := Parse("(and a b)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got, want := e.Negate().String(), "(or (not a) (not b))"; got != want {
		t.Fatalf("Negate().String() = %q, want %q", got, want)
	}
}

func TestNegateDoubleNegationElimination(t *testing.T) {
	e, err := Parse("(not a)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got, want := e.Negate().String(), "a"; got != want {
		t.Fatalf("Negate().String() = %q, want %q", got, want)
	}
}

func TestEvaluateGroundTrueFalse(t *testing.T) {
	e, err := Parse("(= v1 v2)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r, err := e.Evaluate(map[string]any{"v1": "x", "v2": "x"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if r != True {
		t.Fatalf("Evaluate(x, x) = %v, want true", r)
	}

	r, err = e.Evaluate(map[string]any{"v1": "x", "v2": "y"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if r != False {
		t.Fatalf("Evaluate(x, y) = %v, want false", r)
	}
}

func TestEvaluateUnknownWhenUnbound(t *testing.T) {
	e, err := Parse("(= v1 v2)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r, err := e.Evaluate(map[string]any{"v1": "x"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if r != Unknown {
		t.Fatalf("Evaluate with v2 unbound = %v, want unknown", r)
	}
}

func TestEvaluateStringLength(t *testing.T) {
	e, err := Parse("(> (str.len v1) 3)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r, err := e.Evaluate(map[string]any{"v1": "hello"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if r != True {
		t.Fatalf("Evaluate(str.len(hello) > 3) = %v, want true", r)
	}

	r, err = e.Evaluate(map[string]any{"v1": "ab"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if r != False {
		t.Fatalf("Evaluate(str.len(ab) > 3) = %v, want false", r)
	}
}

func TestEvaluatePrefixOf(t *testing.T) {
	e, err := Parse(`(str.prefixof "ab" v1)`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r, err := e.Evaluate(map[string]any{"v1": "abcdef"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if r != True {
		t.Fatalf("Evaluate(prefixof ab abcdef) = %v, want true", r)
	}
}

func TestEvaluateNestedAndOr(t *testing.T) {
	e, err := Parse("(and (or (= v1 1) (= v1 2)) (!= v1 2))")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r, err := e.Evaluate(map[string]any{"v1": 1})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if r != True {
		t.Fatalf("Evaluate(v1=1) = %v, want true", r)
	}

	r, err = e.Evaluate(map[string]any{"v1": 2})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if r != False {
		t.Fatalf("Evaluate(v1=2) = %v, want false", r)
	}
}

func TestEvaluateIte(t *testing.T) {
	e, err := Parse(`(= (ite (> v1 0) "pos" "nonpos") "pos")`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r, err := e.Evaluate(map[string]any{"v1": 5})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if r != True {
		t.Fatalf("Evaluate(v1=5) = %v, want true", r)
	}

	r, err = e.Evaluate(map[string]any{"v1": -1})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if r != False {
		t.Fatalf("Evaluate(v1=-1) = %v, want false", r)
	}
}
