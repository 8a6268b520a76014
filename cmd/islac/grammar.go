package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/synthgrammar/isla/grammar"
)

// readGrammar loads a grammar from a JSON file mapping each nonterminal
// ("<nt>") to its list of alternatives, given as surface strings in which
// nonterminal references appear as "<name>" tokens, exactly the form
// grammar.NewGrammar accepts.
func readGrammar(path string) (*grammar.Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open the grammar file %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	rules := map[string][]string{}
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("cannot parse the grammar file %s: %w", path, err)
	}

	return grammar.NewGrammar(rules)
}

// readSource returns path's contents, or stdin's when path is "-".
func readSource(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
