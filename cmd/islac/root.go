package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "islac",
	Short: "Parse, unparse, and inspect grammar-aware input constraints",
	Long: `islac provides:
- Parsing a constraint's concrete syntax into its formula AST.
- Unparsing a formula AST back into concrete syntax.
- Normal-form rewriting (NNF, DNF) of a constraint.
- Instantiating a constraint's top constant against a parsed derivation tree.
- Matching a constraint's match expression against concrete input.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
