package calculus

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gokando-lab/saturn/pkg/clause"
	"github.com/gokando-lab/saturn/pkg/index"
	"github.com/gokando-lab/saturn/pkg/term"
)

// fixture wires a Context with its own term table, signature and clause
// registry, mirroring the teacher's test-fixture style of one small struct
// built fresh per test (pkg/index/index_test.go's `fixture`).
type fixture struct {
	table *term.SharingTable
	sig   *term.Signature
	ctx   *Context

	clauses map[uint64]*clause.Clause
	nextID  uint64
}

func newFixture() *fixture {
	fx := &fixture{
		table:   term.NewSharingTable(),
		sig:     term.NewSignature(),
		clauses: make(map[uint64]*clause.Clause),
		nextID:  1,
	}
	fx.ctx = &Context{
		Table:        fx.table,
		LiteralIndex: index.NewIndex(fx.table, index.DefaultThresholds()),
		TermIndex:    index.NewIndex(fx.table, index.DefaultThresholds()),
		RewriteIndex: index.NewIndex(fx.table, index.DefaultThresholds()),
		ClauseByID:   fx.lookup,
		NextClauseID: fx.allocID,
		OccursCheck:  true,
	}
	// Tests activate a clause once and expect it visible to both
	// generating and simplifying rules, so the fixture aliases the two
	// indices the engine otherwise populates at different loop steps.
	fx.ctx.SimplifyIndex = fx.ctx.LiteralIndex
	return fx
}

func (fx *fixture) lookup(id uint64) (*clause.Clause, bool) {
	c, ok := fx.clauses[id]
	return c, ok
}

func (fx *fixture) allocID() uint64 {
	id := fx.nextID
	fx.nextID++
	return id
}

// activate registers c (already built with a chosen id) and indexes every
// literal into the literal index, mirroring spec §4.4 step 5's "insert the
// clause becoming Active into the generating indices".
func (fx *fixture) activate(c *clause.Clause) {
	fx.clauses[c.ID()] = c
	for i, l := range c.Literals() {
		renamer := term.NewRenamer(fx.table, term.BankResult)
		index.InsertLiteral(fx.ctx.LiteralIndex, renamer, l, index.Entry{ClauseID: c.ID(), Literal: i})

		if l.IsEquality() && l.Positive() && l.Args()[0].Weight() >= l.Args()[1].Weight() && len(c.Literals()) == 1 {
			rr := term.NewRenamer(fx.table, term.BankResult)
			lhs := rr.Rename(l.Args()[0])
			fx.ctx.RewriteIndex.Insert(index.TermRoot(lhs.Functor()), []*term.Term{lhs}, index.Entry{ClauseID: c.ID(), Literal: 0})
		}

		for ord, sub := range LiteralSubterms(l) {
			if sub.IsVar() {
				continue
			}
			tr := term.NewRenamer(fx.table, term.BankResult)
			fx.ctx.TermIndex.Insert(index.TermRoot(sub.Functor()), []*term.Term{tr.Rename(sub)}, index.Entry{ClauseID: c.ID(), Literal: i, Extra: ord})
		}
	}
}

func (fx *fixture) newClause(lits []*term.Literal) *clause.Clause {
	c := clause.New(fx.allocID(), lits, 0, clause.Axiom)
	return c
}

func TestBinaryResolutionProducesEmptyClause(t *testing.T) {
	fx := newFixture()
	p := fx.sig.InternPredicate("p", 1)
	aFn := fx.sig.Intern("a", 0, term.DefaultSort)
	a := fx.table.Const(aFn, term.DefaultSort)
	v := fx.table.FreshVar(term.BankOrdinary, term.DefaultSort)

	// pa: p(a)
	pa := fx.newClause([]*term.Literal{term.NewLiteral(p, true, a)})
	fx.activate(pa)

	// notPX: ~p(X), selected
	notPX := fx.newClause([]*term.Literal{term.NewLiteral(p, false, v)})
	notPX.SetSelectedPrefixLen(1)

	derived := BinaryResolution{}.Apply(fx.ctx, notPX)
	require.Len(t, derived, 1)
	require.True(t, derived[0].Clause.IsEmpty())
	require.ElementsMatch(t, []uint64{notPX.ID(), pa.ID()}, derived[0].Parents)
}

// TestBinaryResolutionAppliesUnifierToSurvivingLiterals resolves
// {p(X) ∨ q(X)} against the unit {¬p(a)}: the surviving literal must be
// q(a), the query-side unifier applied, not q(X) left untouched. A
// renaming bug here that instead leaves q(X) would go on to resolve
// against an unrelated unit ¬q(b) and report an unsound refutation.
func TestBinaryResolutionAppliesUnifierToSurvivingLiterals(t *testing.T) {
	fx := newFixture()
	p := fx.sig.InternPredicate("p", 1)
	q := fx.sig.InternPredicate("q", 1)
	aFn := fx.sig.Intern("a", 0, term.DefaultSort)
	bFn := fx.sig.Intern("b", 0, term.DefaultSort)
	a := fx.table.Const(aFn, term.DefaultSort)
	b := fx.table.Const(bFn, term.DefaultSort)
	v := fx.table.FreshVar(term.BankOrdinary, term.DefaultSort)

	// ~p(a)
	notPa := fx.newClause([]*term.Literal{term.NewLiteral(p, false, a)})
	fx.activate(notPa)

	// p(X) | q(X), selecting p(X)
	given := fx.newClause([]*term.Literal{
		term.NewLiteral(p, true, v),
		term.NewLiteral(q, true, v),
	})
	given.SetSelectedPrefixLen(1)

	derived := BinaryResolution{}.Apply(fx.ctx, given)
	require.Len(t, derived, 1)
	require.ElementsMatch(t, []uint64{given.ID(), notPa.ID()}, derived[0].Parents)

	lits := derived[0].Clause.Literals()
	require.Len(t, lits, 1)
	require.Equal(t, q, lits[0].Predicate())
	require.True(t, lits[0].Positive())
	require.True(t, term.Eq(lits[0].Args()[0], a), "surviving literal must be q(a), the unifier applied")
	require.False(t, term.Eq(lits[0].Args()[0], b))
}

func TestBinaryResolutionSkipsSamePolarity(t *testing.T) {
	fx := newFixture()
	p := fx.sig.InternPredicate("p", 1)
	aFn := fx.sig.Intern("a", 0, term.DefaultSort)
	a := fx.table.Const(aFn, term.DefaultSort)

	pa := fx.newClause([]*term.Literal{term.NewLiteral(p, true, a)})
	fx.activate(pa)

	pb := fx.newClause([]*term.Literal{term.NewLiteral(p, true, a)})
	derived := BinaryResolution{}.Apply(fx.ctx, pb)
	require.Empty(t, derived)
}

func TestEqualityResolutionRemovesUnifyingDisequality(t *testing.T) {
	fx := newFixture()
	aFn := fx.sig.Intern("a", 0, term.DefaultSort)
	a := fx.table.Const(aFn, term.DefaultSort)
	v := fx.table.FreshVar(term.BankOrdinary, term.DefaultSort)
	p := fx.sig.InternPredicate("p", 1)

	// ~(X = a) | p(X)
	lits := []*term.Literal{
		term.NewEquality(false, term.DefaultSort, v, a),
		term.NewLiteral(p, true, v),
	}
	given := fx.newClause(lits)

	derived := EqualityResolution{}.Apply(fx.ctx, given)
	require.Len(t, derived, 1)
	require.Len(t, derived[0].Clause.Literals(), 1)
	require.True(t, derived[0].Clause.Literals()[0].Positive())
}

func TestEqualityFactoringDropsAndAddsDisequality(t *testing.T) {
	fx := newFixture()
	v := fx.table.FreshVar(term.BankOrdinary, term.DefaultSort)
	aFn := fx.sig.Intern("a", 0, term.DefaultSort)
	bFn := fx.sig.Intern("b", 0, term.DefaultSort)
	a := fx.table.Const(aFn, term.DefaultSort)
	b := fx.table.Const(bFn, term.DefaultSort)

	// X = a | X = b
	lits := []*term.Literal{
		term.NewEquality(true, term.DefaultSort, v, a),
		term.NewEquality(true, term.DefaultSort, v, b),
	}
	given := fx.newClause(lits)

	derived := EqualityFactoring{}.Apply(fx.ctx, given)
	require.NotEmpty(t, derived)
	found := false
	for _, d := range derived {
		require.Len(t, d.Clause.Literals(), 2)
		for _, l := range d.Clause.Literals() {
			if l.IsEquality() && !l.Positive() {
				found = true
			}
		}
	}
	require.True(t, found, "factoring must add a negative equality between the two right-hand sides")
}

func TestSuperpositionRewritesActiveClause(t *testing.T) {
	fx := newFixture()
	fFn := fx.sig.Intern("f", 1, term.DefaultSort)
	aFn := fx.sig.Intern("a", 0, term.DefaultSort)
	bFn := fx.sig.Intern("b", 0, term.DefaultSort)
	p := fx.sig.InternPredicate("p", 1)
	a := fx.table.Const(aFn, term.DefaultSort)
	b := fx.table.Const(bFn, term.DefaultSort)
	fa := fx.table.Func(fFn, term.DefaultSort, a)

	// p(f(a))
	target := fx.newClause([]*term.Literal{term.NewLiteral(p, true, fa)})
	fx.activate(target)

	// f(a) = b (heavier LHS, orientable left to right)
	eqClause := fx.newClause([]*term.Literal{term.NewEquality(true, term.DefaultSort, fa, b)})

	derived := Superposition{}.Apply(fx.ctx, eqClause)
	require.NotEmpty(t, derived)

	sawRewrite := false
	for _, d := range derived {
		for _, l := range d.Clause.Literals() {
			if !l.IsEquality() && l.Predicate() == p && term.Eq(l.Args()[0], b) {
				sawRewrite = true
			}
		}
	}
	require.True(t, sawRewrite, "superposition should rewrite p(f(a)) into p(b)")
}

func TestURResolutionDischargesAllButOneLiteralAgainstUnits(t *testing.T) {
	fx := newFixture()
	p := fx.sig.InternPredicate("p", 1)
	q := fx.sig.InternPredicate("q", 1)
	aFn := fx.sig.Intern("a", 0, term.DefaultSort)
	a := fx.table.Const(aFn, term.DefaultSort)
	v := fx.table.FreshVar(term.BankOrdinary, term.DefaultSort)

	pa := fx.newClause([]*term.Literal{term.NewLiteral(p, true, a)})
	fx.activate(pa)

	// ~p(X) | q(X)
	given := fx.newClause([]*term.Literal{
		term.NewLiteral(p, false, v),
		term.NewLiteral(q, true, v),
	})

	derived := URResolution{}.Apply(fx.ctx, given)
	require.NotEmpty(t, derived)
	for _, d := range derived {
		lits := d.Clause.Literals()
		require.Len(t, lits, 1)
		require.Contains(t, d.Parents, given.ID())
		require.Contains(t, d.Parents, pa.ID())

		// The surviving literal must be q(a) (the X/a unifier carried
		// over to q(X)), not q(X) left unbound by a dropped substitution.
		require.Equal(t, q, lits[0].Predicate())
		require.True(t, lits[0].Positive())
		require.True(t, term.Eq(lits[0].Args()[0], a), "surviving literal must be q(a), the unifier applied")
	}
}

func TestURResolutionChainRecordsEveryLayersUnitClause(t *testing.T) {
	fx := newFixture()
	p := fx.sig.InternPredicate("p", 1)
	q := fx.sig.InternPredicate("q", 1)
	r := fx.sig.InternPredicate("r", 1)
	aFn := fx.sig.Intern("a", 0, term.DefaultSort)
	a := fx.table.Const(aFn, term.DefaultSort)
	v := fx.table.FreshVar(term.BankOrdinary, term.DefaultSort)

	pa := fx.newClause([]*term.Literal{term.NewLiteral(p, true, a)})
	fx.activate(pa)
	qa := fx.newClause([]*term.Literal{term.NewLiteral(q, true, a)})
	fx.activate(qa)

	// ~p(X) | ~q(X) | r(X)
	given := fx.newClause([]*term.Literal{
		term.NewLiteral(p, false, v),
		term.NewLiteral(q, false, v),
		term.NewLiteral(r, true, v),
	})

	derived := URResolution{}.Apply(fx.ctx, given)
	require.NotEmpty(t, derived)
	for _, d := range derived {
		require.ElementsMatch(t, []uint64{given.ID(), pa.ID(), qa.ID()}, d.Parents)
	}
}

func TestURResolutionSkipsUnitGivenClause(t *testing.T) {
	fx := newFixture()
	p := fx.sig.InternPredicate("p", 1)
	aFn := fx.sig.Intern("a", 0, term.DefaultSort)
	a := fx.table.Const(aFn, term.DefaultSort)
	given := fx.newClause([]*term.Literal{term.NewLiteral(p, true, a)})
	require.Nil(t, URResolution{}.Apply(fx.ctx, given))
}

func TestTautologyDeletionDetectsComplementaryPair(t *testing.T) {
	fx := newFixture()
	p := fx.sig.InternPredicate("p", 1)
	aFn := fx.sig.Intern("a", 0, term.DefaultSort)
	a := fx.table.Const(aFn, term.DefaultSort)
	c := fx.newClause([]*term.Literal{
		term.NewLiteral(p, true, a),
		term.NewLiteral(p, false, a),
	})

	res := TautologyDeletion{}.Perform(fx.ctx, c)
	require.False(t, res.Keep)
	require.Equal(t, []uint64{c.ID()}, res.RedundantPremises)
}

func TestTautologyDeletionKeepsNonTautology(t *testing.T) {
	fx := newFixture()
	p := fx.sig.InternPredicate("p", 1)
	aFn := fx.sig.Intern("a", 0, term.DefaultSort)
	a := fx.table.Const(aFn, term.DefaultSort)
	c := fx.newClause([]*term.Literal{term.NewLiteral(p, true, a)})
	require.True(t, TautologyDeletion{}.Perform(fx.ctx, c).Keep)
}

func TestSubsumptionResolutionDropsRuledOutDisjunct(t *testing.T) {
	fx := newFixture()
	p := fx.sig.InternPredicate("p", 1)
	q := fx.sig.InternPredicate("q", 1)
	aFn := fx.sig.Intern("a", 0, term.DefaultSort)
	a := fx.table.Const(aFn, term.DefaultSort)

	notPA := fx.newClause([]*term.Literal{term.NewLiteral(p, false, a)})
	fx.activate(notPA)

	// p(a) | q(a): the unit ~p(a) rules out the p(a) disjunct.
	c := fx.newClause([]*term.Literal{
		term.NewLiteral(p, true, a),
		term.NewLiteral(q, true, a),
	})

	res := SubsumptionResolution{}.Perform(fx.ctx, c)
	require.False(t, res.Keep)
	require.Len(t, res.Replacements, 1)
	require.Len(t, res.Replacements[0].Literals(), 1)
	require.Equal(t, q, res.Replacements[0].Literals()[0].Predicate())
}

func TestDemodulationRewritesWithActiveRule(t *testing.T) {
	fx := newFixture()
	fFn := fx.sig.Intern("f", 1, term.DefaultSort)
	aFn := fx.sig.Intern("a", 0, term.DefaultSort)
	bFn := fx.sig.Intern("b", 0, term.DefaultSort)
	p := fx.sig.InternPredicate("p", 1)
	a := fx.table.Const(aFn, term.DefaultSort)
	b := fx.table.Const(bFn, term.DefaultSort)
	fa := fx.table.Func(fFn, term.DefaultSort, a)

	rule := fx.newClause([]*term.Literal{term.NewEquality(true, term.DefaultSort, fa, b)})
	fx.activate(rule)

	target := fx.newClause([]*term.Literal{term.NewLiteral(p, true, fa)})

	res := Demodulation{}.Perform(fx.ctx, target)
	require.False(t, res.Keep)
	require.Len(t, res.Replacements, 1)
	rewritten := res.Replacements[0].Literals()[0]
	require.True(t, term.Eq(rewritten.Args()[0], b))
}

func TestSubtermOrdinalRoundTrip(t *testing.T) {
	fx := newFixture()
	fFn := fx.sig.Intern("f", 2, term.DefaultSort)
	aFn := fx.sig.Intern("a", 0, term.DefaultSort)
	bFn := fx.sig.Intern("b", 0, term.DefaultSort)
	a := fx.table.Const(aFn, term.DefaultSort)
	b := fx.table.Const(bFn, term.DefaultSort)
	fab := fx.table.Func(fFn, term.DefaultSort, a, b)

	subs := SubtermsPreorder(fab)
	require.Len(t, subs, 3)
	require.True(t, term.Eq(subs[0], fab))
	require.True(t, term.Eq(subs[1], a))
	require.True(t, term.Eq(subs[2], b))

	cFn := fx.sig.Intern("c", 0, term.DefaultSort)
	c := fx.table.Const(cFn, term.DefaultSort)
	replaced := ReplaceSubterm(fx.table, fab, 1, c)
	require.True(t, term.Eq(replaced.Args()[0], c))
	require.True(t, term.Eq(replaced.Args()[1], b))
}

func TestReplaceSubtermPanicsOutOfRange(t *testing.T) {
	fx := newFixture()
	aFn := fx.sig.Intern("a", 0, term.DefaultSort)
	a := fx.table.Const(aFn, term.DefaultSort)
	require.Panics(t, func() {
		ReplaceSubterm(fx.table, a, 5, a)
	})
}
