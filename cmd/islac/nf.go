package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/synthgrammar/isla/formula"
	"github.com/synthgrammar/isla/parser"
	"github.com/synthgrammar/isla/unparser"
)

var nfFlags = struct {
	grammar *string
	form    *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "nf <constraint file path>",
		Short:   "Print a constraint rewritten into negation or disjunctive normal form",
		Example: `  islac nf --grammar assignment.json --form dnf constraint.isla`,
		Args:    cobra.ExactArgs(1),
		RunE:    runNF,
	}
	nfFlags.grammar = cmd.Flags().StringP("grammar", "g", "", "grammar file path (required)")
	nfFlags.form = cmd.Flags().StringP("form", "f", "nnf", "normal form to compute: one of nnf|dnf")
	cmd.MarkFlagRequired("grammar")
	rootCmd.AddCommand(cmd)
}

func runNF(cmd *cobra.Command, args []string) error {
	if *nfFlags.form != "nnf" && *nfFlags.form != "dnf" {
		return fmt.Errorf("invalid normal form: %v", *nfFlags.form)
	}

	g, err := readGrammar(*nfFlags.grammar)
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

	var rewritten formula.Formula
	switch *nfFlags.form {
	case "dnf":
		rewritten = formula.ToDNF(formula.ToNNF(f))
	default:
		rewritten = formula.ToNNF(f)
	}

	fmt.Println(unparser.Unparse(rewritten))
	return nil
}
