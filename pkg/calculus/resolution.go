package calculus

import (
	"github.com/gokando-lab/saturn/pkg/clause"
	"github.com/gokando-lab/saturn/pkg/index"
	"github.com/gokando-lab/saturn/pkg/term"
)

// BinaryResolution implements spec §4.3's binary resolution: for each
// selected literal L of the given clause, query the literal index for
// unifiers L' such that L and ¬L' unify, and emit the σ-image of the
// remaining literals of both parents.
type BinaryResolution struct{}

func (BinaryResolution) Name() string { return "binary_resolution" }

func (BinaryResolution) Apply(ctx *Context, given *clause.Clause) []Derived {
	var out []Derived
	selected := given.SelectedLiterals()
	if len(selected) == 0 {
		selected = given.Literals()
	}
	for li, l := range selected {
		out = append(out, resolveAgainstIndex(ctx, given, l, li)...)
	}
	return out
}

// resolveAgainstIndex queries ctx.LiteralIndex for every literal sharing
// l's predicate that unifies with l, then keeps only the opposite-polarity
// matches (spec §4.3: "L and ¬L' unify").
func resolveAgainstIndex(ctx *Context, given *clause.Clause, l *term.Literal, litPos int) []Derived {
	var out []Derived

	sub := index.NewSubstitution(ctx.Table)
	queryRenamer := term.NewRenamer(ctx.Table, term.BankQuery)
	it := index.RetrieveLiteral(ctx.LiteralIndex, queryRenamer, sub, l, index.ModeUnification, ctx.OccursCheck)
	defer it.Close()

	for {
		entry, ok := it.Next()
		if !ok {
			break
		}
		other, found := ctx.ClauseByID(entry.ClauseID)
		if !found || entry.ClauseID == given.ID() {
			continue
		}
		l2 := other.Literals()[entry.Literal]
		if l2.Positive() == l.Positive() {
			continue // same polarity never resolves
		}

		// it.Substitution() only carries bindings against the index's own
		// one-off per-literal insert-time renaming of l2 (engine.indexGenerating
		// renames every literal with its own fresh renamer), which does not
		// correlate with other's remaining literals sharing a variable with
		// l2. Re-unify l/l2 in a renaming that is consistent across given's
		// and other's whole clauses before building the resolvent.
		resultRenamer := term.NewRenamer(ctx.Table, term.BankResult)
		resolveSub := index.NewSubstitution(ctx.Table)
		if !unifyLiteralArgs(resolveSub, ctx.OccursCheck, queryRenamer.RenameLiteral(l), resultRenamer.RenameLiteral(l2)) {
			continue
		}

		norm := term.NewRenamer(ctx.Table, term.BankOrdinary)
		lits := make([]*term.Literal, 0, len(given.Literals())+len(other.Literals())-2)
		for i, gl := range given.Literals() {
			if i == litPos {
				continue
			}
			lits = append(lits, resolveLiteral(resolveSub, norm, queryRenamer.RenameLiteral(gl)))
		}
		for i, ol := range other.Literals() {
			if i == entry.Literal {
				continue
			}
			lits = append(lits, resolveLiteral(resolveSub, norm, resultRenamer.RenameLiteral(ol)))
		}
		derived := newClause(ctx, dedupeLiterals(lits), maxAge(given.Age(), other.Age())+1)
		out = append(out, Derived{Clause: derived, Parents: []uint64{given.ID(), other.ID()}})
	}
	return out
}

// EqualityResolution is the intra-clause generating rule of spec §4.3:
// for a negative equality literal `s ≉ t` of the given clause that
// unifies (s = t), emit the clause with that literal removed and the
// unifier applied to the rest — it never consults an external index.
type EqualityResolution struct{}

func (EqualityResolution) Name() string { return "equality_resolution" }

func (EqualityResolution) Apply(ctx *Context, given *clause.Clause) []Derived {
	var out []Derived
	for i, l := range given.Literals() {
		if !l.IsEquality() || l.Positive() {
			continue
		}
		sub := index.NewSubstitution(ctx.Table)
		if !sub.Unify(l.Args()[0], l.Args()[1], ctx.OccursCheck) {
			continue
		}
		norm := term.NewRenamer(ctx.Table, term.BankOrdinary)
		lits := make([]*term.Literal, 0, len(given.Literals())-1)
		for _, gl := range without(given.Literals(), i) {
			lits = append(lits, resolveLiteral(sub, norm, gl))
		}
		derived := newClause(ctx, dedupeLiterals(lits), given.Age()+1)
		out = append(out, Derived{Clause: derived, Parents: []uint64{given.ID()}})
	}
	return out
}

// EqualityFactoring implements spec §4.3's intra-clause equality
// factoring: given two positive equality literals `s ≈ t` and `s' ≈ t'`
// of the given clause where `s` and `s'` unify, emit the clause formed by
// dropping the first and adding `t ≉ t'` (the standard superposition-
// calculus factoring rule), applying the unifier throughout.
type EqualityFactoring struct{}

func (EqualityFactoring) Name() string { return "equality_factoring" }

func (EqualityFactoring) Apply(ctx *Context, given *clause.Clause) []Derived {
	var out []Derived
	lits := given.Literals()
	for i, a := range lits {
		if !a.IsEquality() || !a.Positive() {
			continue
		}
		for j, b := range lits {
			if i == j || !b.IsEquality() || !b.Positive() {
				continue
			}
			sub := index.NewSubstitution(ctx.Table)
			if !sub.Unify(a.Args()[0], b.Args()[0], ctx.OccursCheck) {
				continue
			}
			norm := term.NewRenamer(ctx.Table, term.BankOrdinary)
			result := make([]*term.Literal, 0, len(lits))
			for k, l := range lits {
				if k == i {
					continue
				}
				if k == j {
					result = append(result, term.NewEquality(false, a.EqualitySort(),
						norm.Rename(sub.Resolve(a.Args()[1])), norm.Rename(sub.Resolve(b.Args()[1]))))
				}
				result = append(result, resolveLiteral(sub, norm, l))
			}
			derived := newClause(ctx, dedupeLiterals(result), given.Age()+1)
			out = append(out, Derived{Clause: derived, Parents: []uint64{given.ID()}})
		}
	}
	return out
}
