package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/synthgrammar/isla/parser"
	"github.com/synthgrammar/isla/unparser"
)

var unparseFlags = struct {
	grammar *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "unparse <constraint file path>",
		Short:   "Round-trip a constraint through the formula AST and back to concrete syntax",
		Example: `  islac unparse --grammar assignment.json constraint.isla`,
		Args:    cobra.ExactArgs(1),
		RunE:    runUnparse,
	}
	unparseFlags.grammar = cmd.Flags().StringP("grammar", "g", "", "grammar file path (required)")
	cmd.MarkFlagRequired("grammar")
	rootCmd.AddCommand(cmd)
}

func runUnparse(cmd *cobra.Command, args []string) error {
	g, err := readGrammar(*unparseFlags.grammar)
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

	fmt.Println(unparser.Unparse(f))
	return nil
}
