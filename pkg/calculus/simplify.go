package calculus

import (
	"github.com/gokando-lab/saturn/pkg/clause"
	"github.com/gokando-lab/saturn/pkg/index"
	"github.com/gokando-lab/saturn/pkg/term"
)

// TautologyDeletion wraps isTautology as a SimplifyingRule (spec §4.3): a
// clause containing a reflexive positive equality or a complementary
// literal pair is discarded outright, with no replacement.
type TautologyDeletion struct{}

func (TautologyDeletion) Name() string { return "tautology_deletion" }

func (TautologyDeletion) Perform(_ *Context, c *clause.Clause) Result {
	if isTautology(c.Literals()) {
		return Result{Keep: false, RedundantPremises: []uint64{c.ID()}}
	}
	return Result{Keep: true}
}

// SubsumptionResolution implements the unit-clause special case of spec
// §4.3's subsumption resolution: if some non-discarded unit clause `l` has
// a literal that is a generalization of `¬m` for a literal `m` of c, then m
// is redundant in the context of l and is dropped from c. Full multi-
// literal subsumption resolution (matching several literals of a
// non-unit side clause at once) is not attempted; the unit case already
// covers the common "one fact rules out one disjunct" simplification and
// keeps the search over the simplification index a single generalization
// query per literal of c, mirroring BinaryResolution's shape. It searches
// ctx.SimplifyIndex rather than ctx.LiteralIndex: the latter holds only
// Active clauses (spec §4.4 step 5's generating indices), while forward
// simplification (step 3) must also see clauses still waiting in Passive.
type SubsumptionResolution struct{}

func (SubsumptionResolution) Name() string { return "subsumption_resolution" }

func (SubsumptionResolution) Perform(ctx *Context, c *clause.Clause) Result {
	for i, l := range c.Literals() {
		neg := l.Negate()

		sub := index.NewSubstitution(ctx.Table)
		qr := term.NewRenamer(ctx.Table, term.BankQuery)
		it := index.RetrieveLiteral(ctx.SimplifyIndex, qr, sub, neg, index.ModeGeneralization, ctx.OccursCheck)

		var matchedID uint64
		match := false
		for {
			entry, ok := it.Next()
			if !ok {
				break
			}
			if entry.ClauseID == c.ID() {
				continue
			}
			other, found := ctx.ClauseByID(entry.ClauseID)
			if !found || len(other.Literals()) != 1 {
				continue // unit clauses only
			}
			if other.Literals()[entry.Literal].Positive() != neg.Positive() {
				continue // index is keyed by predicate only; polarity is checked here
			}
			matchedID = entry.ClauseID
			match = true
			break
		}
		it.Close()
		if !match {
			continue
		}

		// Dropping c's only literal yields the empty clause — the
		// refutation witness (spec §4.4 step 1) — not mere deletion: the
		// saturation loop must still see it pushed back to Unprocessed.
		remaining := without(c.Literals(), i)
		simplified := newClause(ctx, remaining, c.Age())
		return Result{Keep: false, Replacements: []*clause.Clause{simplified}, RedundantPremises: []uint64{c.ID()}, Premises: []uint64{matchedID}}
	}
	return Result{Keep: true}
}

// Demodulation implements spec §4.3's rewriting simplification: a positive
// unit equality `lhs ≈ rhs` held in the rewrite index (every kept unit
// equality, whether Passive or Active, oriented lhs-heavier-or-equal per
// the same weight-based approximation Superposition uses) rewrites any
// instance of `lhs` occurring as a subterm of c into the corresponding
// instance of `rhs`. Only one rewrite is applied per Perform call; this
// rule does not loop internally. The engine re-runs the rules on the
// result: forward simplification repeats until no rule applies, and
// backward-simplification replacements go back through Unprocessed.
type Demodulation struct{}

func (Demodulation) Name() string { return "demodulation" }

func (Demodulation) Perform(ctx *Context, c *clause.Clause) Result {
	for li, l := range c.Literals() {
		subterms := LiteralSubterms(l)
		for ord, u := range subterms {
			if u.IsVar() {
				continue
			}

			sub := index.NewSubstitution(ctx.Table)
			qr := term.NewRenamer(ctx.Table, term.BankQuery)
			renamedU := qr.Rename(u)
			it := ctx.RewriteIndex.Retrieve(index.TermRoot(renamedU.Functor()), index.ModeGeneralization, sub, []*term.Term{renamedU}, ctx.OccursCheck)

			entry, ok := it.Next()
			if !ok {
				it.Close()
				continue
			}
			rule, found := ctx.ClauseByID(entry.ClauseID)
			if !found || entry.ClauseID == c.ID() {
				it.Close()
				continue
			}
			eq := rule.Literals()[0]

			// sub binds only the rewrite index's own insert-time renaming of
			// the left-hand side. Match the rule, renamed once as a whole,
			// against u itself so rhs is instantiated with u's subterms.
			rr := term.NewRenamer(ctx.Table, term.BankResult)
			ruleSub := index.NewSubstitution(ctx.Table)
			if !ruleSub.Match(rr.Rename(eq.Args()[0]), u) {
				it.Close()
				continue
			}
			replacement := ruleSub.Resolve(rr.Rename(eq.Args()[1]))
			rewrittenLit := ReplaceInLiteral(ctx.Table, l, ord, replacement)
			it.Close()

			lits := make([]*term.Literal, 0, len(c.Literals()))
			for k, orig := range c.Literals() {
				if k == li {
					lits = append(lits, rewrittenLit)
					continue
				}
				lits = append(lits, orig)
			}
			simplified := newClause(ctx, dedupeLiterals(lits), c.Age())
			return Result{Keep: false, Replacements: []*clause.Clause{simplified}, RedundantPremises: []uint64{c.ID()}, Premises: []uint64{rule.ID()}}
		}
	}
	return Result{Keep: true}
}
