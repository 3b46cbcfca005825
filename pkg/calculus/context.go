// Package calculus implements the generating and simplifying inference
// rules of spec §4.3: pure functions from a given clause and a read-only
// index to a stream of derived clauses, generalizing the teacher's
// Conj/Disj/Eq goal combinators (pkg/minikanren/primitives.go) — which
// read an index-like constraint store and produce a stream of successor
// stores — into rules that read a substitution-tree index and produce a
// stream of successor clauses.
package calculus

import (
	"github.com/gokando-lab/saturn/pkg/clause"
	"github.com/gokando-lab/saturn/pkg/index"
	"github.com/gokando-lab/saturn/pkg/term"
)

// Context is the read-only environment every inference rule closes over:
// the term-sharing table, the four indices described on the fields below
// (resolution partners, superposition partners, demodulation rewrite
// rules, subsumption-resolution partners), and a clause lookup so a
// retrieved index Entry (clause id +
// literal position) can be turned back into the literal it names. It
// generalizes the teacher's implicit global `ConstraintStore` parameter
// into an explicit value threaded by the caller, per spec §9's
// "Environment handle, not module-level state" design note.
type Context struct {
	Table *term.SharingTable

	// LiteralIndex holds every Active clause's literals, keyed by
	// predicate (spec §4.4 step 5) — binary resolution and UR
	// resolution's unifier queries.
	LiteralIndex *index.Index

	// TermIndex holds every Active clause's literal subterms (spec §2.2/
	// §2.4's "rewriting indices by subterm top"), keyed by the subterm's
	// own functor, for superposition's "unifiable subterm occurrence"
	// search. Entry.Extra is the subterm's LiteralSubterms ordinal.
	TermIndex *index.Index

	// RewriteIndex holds the left-hand sides of every non-discarded unit
	// equality (the oriented rewrite rules demodulation consumes), keyed
	// by the left-hand side's own functor. Entry.Literal is always 0
	// (unit clauses have one literal); Entry.Extra is unused. Populated
	// at spec §4.4 step 3 ("insert c ... into the simplification
	// container"), so a clause still waiting in Passive can already
	// simplify a later arrival, not only an Active one.
	RewriteIndex *index.Index

	// SimplifyIndex holds every non-discarded clause's literals, keyed by
	// predicate, for SubsumptionResolution's queries. It is the other
	// half of spec §4.4 step 3's "simplification container" — distinct
	// from LiteralIndex, which only ever holds Active clauses (step 5's
	// "generating indices"), so a Passive clause can still participate in
	// simplifying a later arrival before it is ever selected as given.
	SimplifyIndex *index.Index

	ClauseByID   func(uint64) (*clause.Clause, bool)
	NextClauseID func() uint64

	// OccursCheck controls whether retrieval and intra-clause unification
	// apply the occurs check, per spec §6's unification-with-abstraction
	// option (disabled relaxes it uniformly, see index.Substitution.Unify).
	OccursCheck bool
}

// Result is a simplifying rule's verdict (spec §4.3): whether the clause
// may stay, what it should be replaced by, and which other clauses its
// application makes redundant (and therefore removable from whichever
// container currently holds them).
type Result struct {
	Keep              bool
	Replacements      []*clause.Clause
	RedundantPremises []uint64

	// Premises names any OTHER clause the rule consulted to reach its
	// verdict (e.g. the unit clause SubsumptionResolution matched against,
	// or the rewrite rule Demodulation applied) — distinct from c itself,
	// which the caller already has. A caller recording derivations must
	// include these alongside c as the replacement's parents, or the
	// derivation DAG silently loses the clause that did the simplifying.
	Premises []uint64
}

// Derived pairs a clause a generating rule produced with every clause that
// contributed to it (including given itself), for the derivation ledger
// spec §6 requires a REFUTATION outcome to carry.
type Derived struct {
	Clause  *clause.Clause
	Parents []uint64
}

// GeneratingRule derives zero or more new clauses from a given clause
// against the read-only indices.
type GeneratingRule interface {
	Name() string
	Apply(ctx *Context, given *clause.Clause) []Derived
}

// SimplifyingRule inspects a single clause against the simplification
// container (reached indirectly via ctx's indices) and reports whether it
// survives.
type SimplifyingRule interface {
	Name() string
	Perform(ctx *Context, c *clause.Clause) Result
}

func newClause(ctx *Context, lits []*term.Literal, age int) *clause.Clause {
	return clause.New(ctx.NextClauseID(), lits, age, clause.Axiom)
}

func maxAge(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// resolveLiteral walks lit fully through sub and renames the result into
// out's bank, producing a clean literal suitable for a freshly emitted
// clause (spec §4.3: "emit the σ-image of the remaining literals").
func resolveLiteral(sub *index.Substitution, out *term.Renamer, lit *term.Literal) *term.Literal {
	args := make([]*term.Term, lit.Arity())
	for i, a := range lit.Args() {
		args[i] = out.Rename(sub.Resolve(a))
	}
	if lit.IsEquality() {
		return term.NewEquality(lit.Positive(), lit.EqualitySort(), args[0], args[1])
	}
	return term.NewLiteral(lit.Predicate(), lit.Positive(), args...)
}

// unifyLiteralArgs unifies a's and b's arguments pairwise. Callers already
// know a and b share a predicate and arity (both came from the same
// index root), so this is only the data-level half of admission: the
// atoms' arguments must actually unify, not just pass the index's shallow
// discriminator test.
func unifyLiteralArgs(sub *index.Substitution, occursCheck bool, a, b *term.Literal) bool {
	for i := range a.Args() {
		if !sub.Unify(a.Args()[i], b.Args()[i], occursCheck) {
			return false
		}
	}
	return true
}

// literalEq reports structural identity of two literals up to the
// perfect sharing of their arguments (spec §4.1: shared terms compare by
// id), used to deduplicate a derived clause's literal multiset (spec
// §4.3: "emit ... deduplicated").
func literalEq(a, b *term.Literal) bool {
	if a.Predicate() != b.Predicate() || a.Positive() != b.Positive() || a.Arity() != b.Arity() {
		return false
	}
	for i, aa := range a.Args() {
		if !term.Eq(aa, b.Args()[i]) {
			return false
		}
	}
	return true
}

// dedupeLiterals removes structurally duplicate literals, preserving
// first-occurrence order.
func dedupeLiterals(lits []*term.Literal) []*term.Literal {
	out := make([]*term.Literal, 0, len(lits))
	for _, l := range lits {
		dup := false
		for _, seen := range out {
			if literalEq(seen, l) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, l)
		}
	}
	return out
}

// isTautology reports whether lits contains a reflexive positive equality
// `s ≈ s`, or both a literal and its exact negation — the simplest
// tautology-deletion test (spec §4.3), not a full equational-theory check.
func isTautology(lits []*term.Literal) bool {
	for _, a := range lits {
		if a.IsEquality() && a.Positive() && term.Eq(a.Args()[0], a.Args()[1]) {
			return true
		}
	}
	for i, a := range lits {
		for j := i + 1; j < len(lits); j++ {
			b := lits[j]
			if a.Predicate() == b.Predicate() && a.Positive() != b.Positive() && a.Arity() == b.Arity() && literalEq(a, b.Negate()) {
				return true
			}
		}
	}
	return false
}

func without(lits []*term.Literal, skip int) []*term.Literal {
	out := make([]*term.Literal, 0, len(lits)-1)
	for i, l := range lits {
		if i != skip {
			out = append(out, l)
		}
	}
	return out
}
