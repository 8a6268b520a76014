package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/synthgrammar/isla/ast"
	"github.com/synthgrammar/isla/formula"
	"github.com/synthgrammar/isla/parser"
)

var instFlags = struct {
	grammar *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "inst <constraint file path> <input text>",
		Short:   "Instantiate a constraint's top constant against a parsed derivation tree",
		Example: `  islac inst --grammar assignment.json constraint.isla "x := 1"`,
		Args:    cobra.ExactArgs(2),
		RunE:    runInst,
	}
	instFlags.grammar = cmd.Flags().StringP("grammar", "g", "", "grammar file path (required)")
	cmd.MarkFlagRequired("grammar")
	rootCmd.AddCommand(cmd)
}

func runInst(cmd *cobra.Command, args []string) error {
	g, err := readGrammar(*instFlags.grammar)
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

	top, err := topConstant(f)
	if err != nil {
		return err
	}

	tree, ok := g.Parse(args[1], top.NType)
	if !ok {
		return fmt.Errorf("input %q does not derive from %v", args[1], top.NType)
	}

	inst, err := formula.InstantiateTopConstant(f, tree)
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Println("free variables:")
	for _, v := range inst.FreeVariables() {
		fmt.Printf("  %v\n", v)
	}

	color.New(color.FgGreen).Println("ground SMT leaves:")
	for _, leaf := range collectSMTLeaves(inst) {
		fmt.Printf("  %v\n", leaf.Expr)
	}

	return nil
}

// topConstant finds f's one free, non-numeric constant, the variable
// InstantiateTopConstant substitutes a concrete derivation tree for.
func topConstant(f formula.Formula) (ast.Variable, error) {
	for _, v := range formula.CollectVariables(f) {
		if v.Kind == ast.KindConstant && !v.IsNumeric() {
			return v, nil
		}
	}
	return ast.Variable{}, fmt.Errorf("constraint has no free constant to instantiate")
}

// collectSMTLeaves walks f for its SMT leaves, the formulas instcmd reports
// as "ground" once every free variable they mention has been substituted
// away by InstantiateTopConstant.
func collectSMTLeaves(f formula.Formula) []*formula.SMTFormula {
	var leaves []*formula.SMTFormula
	var walk func(formula.Formula)
	walk = func(n formula.Formula) {
		switch n := n.(type) {
		case *formula.SMTFormula:
			leaves = append(leaves, n)
		case *formula.ConjunctiveFormula:
			for _, a := range n.Args {
				walk(a)
			}
		case *formula.DisjunctiveFormula:
			for _, a := range n.Args {
				walk(a)
			}
		case *formula.NegatedFormula:
			walk(n.Arg)
		case *formula.ForallFormula:
			walk(n.Inner)
		case *formula.ExistsFormula:
			walk(n.Inner)
		case *formula.ForallIntFormula:
			walk(n.Inner)
		case *formula.ExistsIntFormula:
			walk(n.Inner)
		}
	}
	walk(f)
	return leaves
}
