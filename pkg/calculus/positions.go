package calculus

import "github.com/gokando-lab/saturn/pkg/term"

// LiteralSubterms flattens every subterm of lit's arguments, concatenated
// argument by argument, into the single ordinal space index.Entry.Extra
// names when the term index (spec §2.2/§2.4's rewriting indices) records
// an occurrence inside a literal. ReplaceInLiteral is the inverse: given
// the same literal and one of these ordinals, it rewrites exactly that
// subterm.
func LiteralSubterms(lit *term.Literal) []*term.Term {
	var out []*term.Term
	for _, a := range lit.Args() {
		out = append(out, SubtermsPreorder(a)...)
	}
	return out
}

// ReplaceInLiteral rewrites the subterm named by ordinal (as produced by
// LiteralSubterms) to replacement, preserving the literal's predicate,
// polarity and (for equalities) sort.
func ReplaceInLiteral(table *term.SharingTable, lit *term.Literal, ordinal int, replacement *term.Term) *term.Literal {
	args := make([]*term.Term, lit.Arity())
	copy(args, lit.Args())
	remaining := ordinal
	rewritten := false
	for i, a := range lit.Args() {
		n := len(SubtermsPreorder(a))
		if !rewritten && remaining < n {
			args[i] = ReplaceSubterm(table, a, remaining, replacement)
			rewritten = true
			continue
		}
		remaining -= n
	}
	if !rewritten {
		panic("calculus: CORRUPT_INDEX subterm ordinal out of range for literal")
	}
	if lit.IsEquality() {
		return term.NewEquality(lit.Positive(), lit.EqualitySort(), args[0], args[1])
	}
	return term.NewLiteral(lit.Predicate(), lit.Positive(), args...)
}

// SubtermsPreorder flattens t into every subterm reachable from it,
// including t itself, in a deterministic preorder (root first, then each
// argument's own preorder left to right). The position of a subterm in
// this list is its ordinal, a stable identifier spec §4.3's superposition
// rule needs to name "a unifiable subterm occurrence" without keeping a
// live pointer into the clause's term graph — the term index's leaf data
// (index.Entry.Extra) stores exactly this ordinal, and ReplaceSubterm
// recomputes the same traversal to apply a rewrite at it.
func SubtermsPreorder(t *term.Term) []*term.Term {
	out := []*term.Term{t}
	for _, a := range t.Args() {
		out = append(out, SubtermsPreorder(a)...)
	}
	return out
}

// ReplaceSubterm rebuilds t with the subterm at preorder ordinal replaced
// by replacement, re-sharing every unaffected node through table. Panics
// (an invariant violation, spec §7) if ordinal does not name a subterm of
// t — the caller is expected to have derived ordinal from this same t via
// SubtermsPreorder or a term index entry recorded against it.
func ReplaceSubterm(table *term.SharingTable, t *term.Term, ordinal int, replacement *term.Term) *term.Term {
	counter := 0
	found := false

	var rebuild func(*term.Term) *term.Term
	rebuild = func(cur *term.Term) *term.Term {
		mine := counter
		counter++
		if mine == ordinal {
			found = true
			return replacement
		}
		if cur.Arity() == 0 {
			return cur
		}
		args := make([]*term.Term, cur.Arity())
		changed := false
		for i, a := range cur.Args() {
			r := rebuild(a)
			args[i] = r
			if !term.Eq(r, a) {
				changed = true
			}
		}
		if !changed {
			return cur
		}
		return table.Func(cur.Functor(), cur.Sort(), args...)
	}

	result := rebuild(t)
	if !found {
		panic("calculus: CORRUPT_INDEX subterm ordinal out of range for term")
	}
	return result
}
