package calculus

import (
	"github.com/gokando-lab/saturn/pkg/clause"
	"github.com/gokando-lab/saturn/pkg/index"
	"github.com/gokando-lab/saturn/pkg/term"
)

// Superposition implements spec §4.3's left/right superposition: for
// each positive equality `s ≈ t` of the given clause, in each
// orientation, query the term index for a unifiable subterm occurrence
// `u` inside another clause's literal, and emit the rewritten clause
// `(other \ {L[u]}) ∪ {L[t']} ∪ (given \ {s ≈ t})` under the shared
// unifier, where `t'` is `t` walked through the unifier. The
// ordering/literal-selection constraints spec §4.3 mentions as filtering
// candidates are approximated here by a weight-non-increase check on the
// rewrite (rewriting must not strictly increase the literal's weight),
// standing in for a full term ordering (KBO/LPO), which core spec §4.3
// leaves unspecified beyond naming that such constraints exist.
type Superposition struct{}

func (Superposition) Name() string { return "superposition" }

func (Superposition) Apply(ctx *Context, given *clause.Clause) []Derived {
	var out []Derived
	for gi, eq := range given.Literals() {
		if !eq.IsEquality() || !eq.Positive() {
			continue
		}
		out = append(out, superposeOrientation(ctx, given, gi, eq, eq.Args()[0], eq.Args()[1])...)
		out = append(out, superposeOrientation(ctx, given, gi, eq, eq.Args()[1], eq.Args()[0])...)
	}
	return out
}

func superposeOrientation(ctx *Context, given *clause.Clause, eqPos int, eq *term.Literal, from, to *term.Term) []Derived {
	if from.IsVar() || from.Weight() < to.Weight() {
		return nil // rewriting must not increase weight along `from` (approximated ordering constraint)
	}

	var out []Derived
	sub := index.NewSubstitution(ctx.Table)
	qr := term.NewRenamer(ctx.Table, term.BankQuery)
	renamedFrom := qr.Rename(from)
	it := ctx.TermIndex.Retrieve(index.TermRoot(renamedFrom.Functor()), index.ModeUnification, sub, []*term.Term{renamedFrom}, ctx.OccursCheck)
	defer it.Close()

	for {
		entry, ok := it.Next()
		if !ok {
			break
		}
		if entry.ClauseID == given.ID() {
			continue
		}
		other, found := ctx.ClauseByID(entry.ClauseID)
		if !found {
			continue
		}
		target := other.Literals()[entry.Literal]

		// it.Substitution() only carries bindings against the term index's
		// own one-off per-subterm insert-time renaming (engine.indexGenerating
		// renames every subterm with its own fresh renamer), which does not
		// correlate with other's remaining literals sharing a variable with
		// target. Re-unify the rewrite occurrence in a renaming that is
		// consistent across given's and other's whole clauses before
		// building the resolvent.
		resultRenamer := term.NewRenamer(ctx.Table, term.BankResult)
		renamedTarget := resultRenamer.RenameLiteral(target)
		renamedOccurrence := LiteralSubterms(renamedTarget)[entry.Extra]
		resolveSub := index.NewSubstitution(ctx.Table)
		if !resolveSub.Unify(renamedFrom, renamedOccurrence, ctx.OccursCheck) {
			continue
		}

		norm := term.NewRenamer(ctx.Table, term.BankOrdinary)
		renamedTo := qr.Rename(to)
		rewritten := ReplaceInLiteral(ctx.Table, renamedTarget, entry.Extra, renamedTo)
		newTarget := resolveLiteral(resolveSub, norm, rewritten)

		lits := make([]*term.Literal, 0, len(given.Literals())+len(other.Literals()))
		for i, l := range given.Literals() {
			if i == eqPos {
				continue
			}
			lits = append(lits, resolveLiteral(resolveSub, norm, qr.RenameLiteral(l)))
		}
		for i, l := range other.Literals() {
			if i == entry.Literal {
				continue
			}
			lits = append(lits, resolveLiteral(resolveSub, norm, resultRenamer.RenameLiteral(l)))
		}
		lits = append(lits, newTarget)
		derived := newClause(ctx, dedupeLiterals(lits), maxAge(given.Age(), other.Age())+1)
		out = append(out, Derived{Clause: derived, Parents: []uint64{given.ID(), other.ID()}})
	}
	return out
}
