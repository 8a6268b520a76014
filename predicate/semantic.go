package predicate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/synthgrammar/isla/grammar"
)

// errNoRepairSynthesis marks the one class of proposal this package
// deliberately does not attempt: synthesizing a brand-new subtree (as
// opposed to reformatting an existing one) requires searching the grammar
// graph for an alternative with the right shape, which spec.md §1 places
// out of scope as the external search solver's job.
var errNoRepairSynthesis = fmt.Errorf("predicate: repair requires grammar-graph subtree synthesis, out of scope here")

// Count holds iff needle occurs exactly num times (as a non-overlapping
// substring count) in in_tree's serialized form. Both the needle and the
// expected count must already be ground; proposing a repair that inserts or
// removes occurrences would require synthesizing new subtrees from the
// grammar, which this predicate does not attempt (see errNoRepairSynthesis).
var Count = SemanticPredicate{
	Name:  "count",
	Arity: 3,
	Order: 0,
	Eval: func(g *grammar.Grammar, args []Arg) (bool, []Repair, error) {
		if err := checkArity("count", 3, len(args)); err != nil {
			return false, nil, err
		}
		inTree, needle, numArg := args[0], args[1], args[2]
		want, err := strconv.Atoi(strings.TrimSpace(numArg.Text()))
		if err != nil {
			return false, nil, fmt.Errorf("predicate: count's num argument %q is not an integer: %w", numArg.Text(), err)
		}
		got := strings.Count(inTree.Text(), needle.Text())
		if got == want {
			return true, nil, nil
		}
		return false, nil, errNoRepairSynthesis
	},
}

// LJust holds iff tree's text is already left-justified to width with
// fillchar (Python str.ljust semantics: pad on the right when shorter, leave
// untouched when already at least width long). When unsatisfied, it
// proposes replacing tree with the padded string reparsed as the same
// nonterminal.
var LJust = SemanticPredicate{
	Name:  "ljust",
	Arity: 3,
	Order: 1,
	Eval:  justify(sideLeft, false),
}

// LJustCrop additionally truncates text longer than width, keeping its
// leading width characters.
var LJustCrop = SemanticPredicate{
	Name:  "ljust_crop",
	Arity: 3,
	Order: 1,
	Eval:  justify(sideLeft, true),
}

// RJust holds iff tree's text is already right-justified to width with
// fillchar (pad on the left when shorter, leave untouched when longer).
var RJust = SemanticPredicate{
	Name:  "rjust",
	Arity: 3,
	Order: 1,
	Eval:  justify(sideRight, false),
}

// RJustCrop additionally truncates text longer than width, keeping its
// trailing width characters.
var RJustCrop = SemanticPredicate{
	Name:  "rjust_crop",
	Arity: 3,
	Order: 1,
	Eval:  justify(sideRight, true),
}

// side picks which edge of the string a justify predicate pads (and, for
// the crop variants, which edge's content survives a truncation).
type side int

const (
	sideLeft side = iota
	sideRight
)

func (s side) pad(text string, width int, fill rune) string {
	r := []rune(text)
	if len(r) >= width {
		return text
	}
	padding := strings.Repeat(string(fill), width-len(r))
	if s == sideLeft {
		return text + padding
	}
	return padding + text
}

func (s side) crop(text string, width int) string {
	r := []rune(text)
	if len(r) <= width {
		return text
	}
	if s == sideLeft {
		return string(r[:width])
	}
	return string(r[len(r)-width:])
}

// justify builds a SemanticPredicate.Eval for one of the four padding
// predicates: s picks which edge is padded/kept, and crop, when true,
// additionally truncates an over-length result to exactly width runes.
func justify(s side, crop bool) func(*grammar.Grammar, []Arg) (bool, []Repair, error) {
	return func(g *grammar.Grammar, args []Arg) (bool, []Repair, error) {
		if err := checkArity("justify", 3, len(args)); err != nil {
			return false, nil, err
		}
		treeArg, widthArg, fillArg := args[0], args[1], args[2]
		if treeArg.Tree == nil {
			return false, nil, fmt.Errorf("predicate: justify's first argument must be a tree")
		}
		width, err := strconv.Atoi(strings.TrimSpace(widthArg.Text()))
		if err != nil {
			return false, nil, fmt.Errorf("predicate: justify's width argument %q is not an integer: %w", widthArg.Text(), err)
		}
		fillText := fillArg.Text()
		if len([]rune(fillText)) != 1 {
			return false, nil, fmt.Errorf("predicate: justify's fill-character argument %q is not a single character", fillText)
		}
		fill := []rune(fillText)[0]

		original := treeArg.Tree.String()
		target := s.pad(original, width, fill)
		if crop {
			target = s.crop(target, width)
		}

		if target == original {
			return true, nil, nil
		}

		replacement, ok := g.Parse(target, treeArg.Tree.Value())
		if !ok {
			return false, nil, fmt.Errorf("predicate: justify's padded text %q does not parse as <%s>", target, treeArg.Tree.Value())
		}
		return false, []Repair{{Target: treeArg.Tree, With: replacement}}, nil
	}
}

// Checksum holds iff checksumTree's text already equals the two-hex-digit
// checksum of dataTree's text (sum of byte values mod 256). When
// unsatisfied, it proposes replacing checksumTree with the computed value
// reparsed as the same nonterminal — the "recomputed checksum substring"
// repair spec.md §1's "checksum" mention calls for, generalized from the
// padding predicates' repair shape.
var Checksum = SemanticPredicate{
	Name:  "checksum",
	Arity: 2,
	Order: 0,
	Eval: func(g *grammar.Grammar, args []Arg) (bool, []Repair, error) {
		if err := checkArity("checksum", 2, len(args)); err != nil {
			return false, nil, err
		}
		dataArg, checksumArg := args[0], args[1]
		if checksumArg.Tree == nil {
			return false, nil, fmt.Errorf("predicate: checksum's second argument must be a tree")
		}
		want := computeChecksum(dataArg.Text())
		got := checksumArg.Tree.String()
		if got == want {
			return true, nil, nil
		}
		replacement, ok := g.Parse(want, checksumArg.Tree.Value())
		if !ok {
			return false, nil, fmt.Errorf("predicate: computed checksum %q does not parse as <%s>", want, checksumArg.Tree.Value())
		}
		return false, []Repair{{Target: checksumArg.Tree, With: replacement}}, nil
	},
}

func computeChecksum(s string) string {
	var sum byte
	for i := 0; i < len(s); i++ {
		sum += s[i]
	}
	return fmt.Sprintf("%02x", sum)
}
