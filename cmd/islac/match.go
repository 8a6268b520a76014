package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/synthgrammar/isla/bindexpr"
	"github.com/synthgrammar/isla/formula"
	"github.com/synthgrammar/isla/parser"
)

var matchFlags = struct {
	grammar *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "match <constraint file path> <input text>",
		Short:   "Match a constraint's first match expression against concrete input",
		Example: `  islac match --grammar assignment.json constraint.isla "x := 1"`,
		Args:    cobra.ExactArgs(2),
		RunE:    runMatch,
	}
	matchFlags.grammar = cmd.Flags().StringP("grammar", "g", "", "grammar file path (required)")
	cmd.MarkFlagRequired("grammar")
	rootCmd.AddCommand(cmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	g, err := readGrammar(*matchFlags.grammar)
	if err != nil {
		return err
	}
	src, err := readSource(args[0])
	if err != nil {
		return err
	}

	f, err := parser.Parse(src, g, nil)
	if err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		return err
	}

	nType, be, err := firstMatchExpression(f)
	if err != nil {
		return err
	}

	tree, ok := g.Parse(args[1], nType)
	if !ok {
		return fmt.Errorf("input %q does not derive from %v", args[1], nType)
	}

	bindings, ok := be.Match(g, tree, nType)
	if !ok {
		color.New(color.FgRed).Println("no match")
		return fmt.Errorf("%q does not match the bind expression", args[1])
	}

	color.New(color.FgGreen).Println("bindings:")
	for v, path := range bindings {
		fmt.Printf("  %v -> %v (%q)\n", v.Name, path, tree.GetSubtree(path).String())
	}
	return nil
}

// firstMatchExpression finds the first quantifier in f carrying a bind
// expression, depth first, and returns the nonterminal it quantifies over
// alongside the bind expression itself.
func firstMatchExpression(f formula.Formula) (string, *bindexpr.BindExpression, error) {
	var nType string
	var be *bindexpr.BindExpression
	var walk func(formula.Formula) bool
	walk = func(n formula.Formula) bool {
		switch n := n.(type) {
		case *formula.ForallFormula:
			if n.BindExpr != nil {
				nType, be = n.BoundVar.NType, n.BindExpr
				return true
			}
			return walk(n.Inner)
		case *formula.ExistsFormula:
			if n.BindExpr != nil {
				nType, be = n.BoundVar.NType, n.BindExpr
				return true
			}
			return walk(n.Inner)
		case *formula.ForallIntFormula:
			return walk(n.Inner)
		case *formula.ExistsIntFormula:
			return walk(n.Inner)
		case *formula.ConjunctiveFormula:
			for _, a := range n.Args {
				if walk(a) {
					return true
				}
			}
			return false
		case *formula.DisjunctiveFormula:
			for _, a := range n.Args {
				if walk(a) {
					return true
				}
			}
			return false
		case *formula.NegatedFormula:
			return walk(n.Arg)
		}
		return false
	}
	if !walk(f) {
		return "", nil, fmt.Errorf("constraint has no quantifier with a match expression")
	}
	return nType, be, nil
}
