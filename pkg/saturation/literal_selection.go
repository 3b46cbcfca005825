package saturation

import (
	"github.com/gokando-lab/saturn/pkg/clause"
	"github.com/gokando-lab/saturn/pkg/term"
)

// LiteralSelector names a selection-function policy (spec §4.4 step 4,
// spec §6's "literal-selector enum"). Binary resolution restricts its
// search to c.SelectedLiterals(); the other generating rules
// (superposition, equality resolution and factoring, UR resolution)
// consider every literal of the clause.
type LiteralSelector int

const (
	// SelectAll treats every literal as selected — the conservative
	// default that changes nothing about which literals participate.
	SelectAll LiteralSelector = iota
	// SelectNegativeFirst selects every negative literal of a clause that
	// has at least one, else falls back to selecting all of them.
	SelectNegativeFirst
	// SelectMaximalWeight selects the single heaviest literal, using
	// term.Literal.Weight as the maximality ordering — the same
	// weight-based stand-in calculus.Superposition uses in place of a
	// full term ordering (see DESIGN.md).
	SelectMaximalWeight
	// SelectSizeBased selects the single lightest literal, favoring
	// whichever disjunct is cheapest to resolve away first.
	SelectSizeBased
)

func (s LiteralSelector) String() string {
	switch s {
	case SelectAll:
		return "all"
	case SelectNegativeFirst:
		return "negative_first"
	case SelectMaximalWeight:
		return "maximal_weight"
	case SelectSizeBased:
		return "size_based"
	default:
		return "unknown_literal_selector"
	}
}

// Select applies policy to c, reordering its literals so the chosen ones
// come first and recording the selected-prefix length (spec §4.4 step 4).
func Select(policy LiteralSelector, c *clause.Clause) {
	lits := c.Literals()
	if len(lits) == 0 {
		c.SetSelectedPrefixLen(0)
		return
	}

	switch policy {
	case SelectNegativeFirst:
		selectNegativeFirst(c, lits)
	case SelectMaximalWeight:
		movePrefix(c, lits, []int{extremum(lits, func(a, b int) bool { return a > b })})
	case SelectSizeBased:
		movePrefix(c, lits, []int{extremum(lits, func(a, b int) bool { return a < b })})
	default:
		c.ReorderLiterals(identity(len(lits)))
		c.SetSelectedPrefixLen(len(lits))
	}
}

// selectNegativeFirst selects every negative literal if the clause has
// one, else falls back to selecting the whole clause.
func selectNegativeFirst(c *clause.Clause, lits []*term.Literal) {
	var negative []int
	for i, l := range lits {
		if !l.Positive() {
			negative = append(negative, i)
		}
	}
	if len(negative) == 0 {
		c.ReorderLiterals(identity(len(lits)))
		c.SetSelectedPrefixLen(len(lits))
		return
	}
	movePrefix(c, lits, negative)
}

// extremum returns the index of the literal that is "better" than every
// other literal's weight under better(candidate, current).
func extremum(lits []*term.Literal, better func(a, b int) bool) int {
	best := 0
	for i, l := range lits {
		if better(l.Weight(), lits[best].Weight()) {
			best = i
		}
	}
	return best
}

// movePrefix reorders c's literals so selected comes first (in its given
// order), then every other literal in its original relative order, and
// records the selected-prefix length.
func movePrefix(c *clause.Clause, lits []*term.Literal, selected []int) {
	chosen := make(map[int]bool, len(selected))
	order := make([]int, 0, len(lits))
	for _, i := range selected {
		chosen[i] = true
		order = append(order, i)
	}
	for i := range lits {
		if !chosen[i] {
			order = append(order, i)
		}
	}
	c.ReorderLiterals(order)
	c.SetSelectedPrefixLen(len(selected))
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
