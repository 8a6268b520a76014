package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/synthgrammar/isla/parser"
)

var parseFlags = struct {
	grammar *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "parse <constraint file path>",
		Short:   "Parse a constraint's concrete syntax into its formula AST",
		Example: `  islac parse --grammar assignment.json constraint.isla`,
		Args:    cobra.ExactArgs(1),
		RunE:    runParse,
	}
	parseFlags.grammar = cmd.Flags().StringP("grammar", "g", "", "grammar file path (required)")
	cmd.MarkFlagRequired("grammar")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	g, err := readGrammar(*parseFlags.grammar)
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

	fmt.Println(f.String())
	return nil
}
