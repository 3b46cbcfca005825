package calculus

import (
	"github.com/gokando-lab/saturn/pkg/clause"
	"github.com/gokando-lab/saturn/pkg/index"
	"github.com/gokando-lab/saturn/pkg/term"
)

// URResolution implements spec §4.3's unit-resulting resolution: starting
// from a non-unit given clause, successively resolve away literals against
// unit clauses from the literal index until a single literal remains. It is
// grounded on the teacher's tabling.go breadth-first subgoal expansion
// (pkg/minikanren/tabling.go's SLG worklist) — structurally the same shape,
// a frontier of partial states expanded one step at a time, queued rather
// than recursed, so that every way of discharging a layer is explored
// before any way of discharging the next.
//
// Each queued state holds only the still-unresolved literals, already
// normalized (σ-applied and renamed) by the step that produced it; no
// substitution is carried between layers, so a later layer's unifier query
// is independent of how an earlier layer happened to name its fresh
// variables.
type URResolution struct{}

func (URResolution) Name() string { return "ur_resolution" }

type urState struct {
	lits    []*term.Literal
	age     int
	parents []uint64
}

func (URResolution) Apply(ctx *Context, given *clause.Clause) []Derived {
	if len(given.Literals()) < 2 {
		return nil // UR resolution only discharges non-unit clauses
	}

	var out []Derived
	queue := []urState{{lits: append([]*term.Literal(nil), given.Literals()...), age: given.Age(), parents: []uint64{given.ID()}}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if len(cur.lits) == 1 {
			derived := newClause(ctx, cur.lits, cur.age+1)
			out = append(out, Derived{Clause: derived, Parents: append([]uint64(nil), cur.parents...)})
			continue
		}

		target := cur.lits[0]
		rest := cur.lits[1:]

		sub := index.NewSubstitution(ctx.Table)
		qr := term.NewRenamer(ctx.Table, term.BankQuery)
		it := index.RetrieveLiteral(ctx.LiteralIndex, qr, sub, target, index.ModeUnification, ctx.OccursCheck)

		for {
			entry, ok := it.Next()
			if !ok {
				break
			}
			other, found := ctx.ClauseByID(entry.ClauseID)
			if !found || len(other.Literals()) != 1 {
				continue // UR resolution only resolves against unit clauses
			}
			unit := other.Literals()[0]
			if unit.Positive() == target.Positive() {
				continue
			}

			// it.Substitution() only binds qr's BankQuery variables (and the
			// unit clause's own BankResult renaming of target); rest must be
			// renamed through the same qr before resolving, or any variable
			// rest shares with target keeps its pre-unification value (spec
			// §8 property 4's retrieval-soundness requirement, here applied
			// to the clause UR resolution emits).
			norm := term.NewRenamer(ctx.Table, term.BankOrdinary)
			next := make([]*term.Literal, len(rest))
			for i, l := range rest {
				next[i] = resolveLiteral(it.Substitution(), norm, qr.RenameLiteral(l))
			}
			nextParents := append(append([]uint64(nil), cur.parents...), other.ID())
			queue = append(queue, urState{lits: dedupeLiterals(next), age: maxAge(cur.age, other.Age()) + 1, parents: nextParents})
		}
		it.Close()
	}
	return out
}
