package saturation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gokando-lab/saturn/pkg/clause"
	"github.com/gokando-lab/saturn/pkg/term"
)

// harness wires one Engine over a fresh Environment, mirroring the
// teacher's test-fixture style of one small struct built fresh per test.
type harness struct {
	env *Environment
	eng *Engine
	sig *term.Signature
}

func newHarness(opts Options) *harness {
	env := NewEnvironment(opts)
	return &harness{env: env, eng: NewEngine(env), sig: env.Signature}
}

func TestRunFindsRefutationFromComplementaryUnitClauses(t *testing.T) {
	h := newHarness(DefaultOptions())
	p := h.sig.InternPredicate("p", 1)
	aFn := h.sig.Intern("a", 0, term.DefaultSort)
	a := h.env.Table.Const(aFn, term.DefaultSort)
	x := h.env.Table.FreshVar(term.BankOrdinary, term.DefaultSort)

	h.eng.AddInput([]*term.Literal{term.NewLiteral(p, true, a)}, clause.Axiom)
	h.eng.AddInput([]*term.Literal{term.NewLiteral(p, false, x)}, clause.NegatedConjecture)

	outcome, empty := h.eng.Run(context.Background())
	require.Equal(t, Refutation, outcome)
	require.NotNil(t, empty)
	require.True(t, empty.IsEmpty())
}

func TestRunReportsSatisfiableWhenNoContradictionExists(t *testing.T) {
	h := newHarness(DefaultOptions())
	p := h.sig.InternPredicate("p", 1)
	q := h.sig.InternPredicate("q", 1)
	aFn := h.sig.Intern("a", 0, term.DefaultSort)
	a := h.env.Table.Const(aFn, term.DefaultSort)

	h.eng.AddInput([]*term.Literal{term.NewLiteral(p, true, a)}, clause.Axiom)
	h.eng.AddInput([]*term.Literal{term.NewLiteral(q, true, a)}, clause.Axiom)

	outcome, empty := h.eng.Run(context.Background())
	require.Equal(t, Satisfiable, outcome)
	require.Nil(t, empty)
	require.NotEmpty(t, h.eng.Active())
}

func TestRunHonorsContextCancellation(t *testing.T) {
	h := newHarness(DefaultOptions())
	p := h.sig.InternPredicate("p", 1)
	aFn := h.sig.Intern("a", 0, term.DefaultSort)
	a := h.env.Table.Const(aFn, term.DefaultSort)
	h.eng.AddInput([]*term.Literal{term.NewLiteral(p, true, a)}, clause.Axiom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, empty := h.eng.Run(ctx)
	require.Equal(t, Timeout, outcome)
	require.Nil(t, empty)
}

func TestRunHonorsOptionsTimeout(t *testing.T) {
	opts := DefaultOptions()
	opts.Timeout = time.Nanosecond
	h := newHarness(opts)
	p := h.sig.InternPredicate("p", 1)
	aFn := h.sig.Intern("a", 0, term.DefaultSort)
	a := h.env.Table.Const(aFn, term.DefaultSort)
	h.eng.AddInput([]*term.Literal{term.NewLiteral(p, true, a)}, clause.Axiom)

	time.Sleep(time.Millisecond)
	outcome, _ := h.eng.Run(context.Background())
	require.Equal(t, Timeout, outcome)
}

func TestRunRecordsDerivationOfRefutation(t *testing.T) {
	h := newHarness(DefaultOptions())
	p := h.sig.InternPredicate("p", 1)
	aFn := h.sig.Intern("a", 0, term.DefaultSort)
	a := h.env.Table.Const(aFn, term.DefaultSort)
	x := h.env.Table.FreshVar(term.BankOrdinary, term.DefaultSort)

	axiom := h.eng.AddInput([]*term.Literal{term.NewLiteral(p, true, a)}, clause.Axiom)
	negated := h.eng.AddInput([]*term.Literal{term.NewLiteral(p, false, x)}, clause.NegatedConjecture)

	outcome, empty := h.eng.Run(context.Background())
	require.Equal(t, Refutation, outcome)

	ancestors := h.eng.Derivations().Ancestors(empty.ID())
	require.Contains(t, ancestors, axiom.ID())
	require.Contains(t, ancestors, negated.ID())
}

func TestSelectAllMarksEveryLiteralSelected(t *testing.T) {
	h := newHarness(DefaultOptions())
	p := h.sig.InternPredicate("p", 1)
	q := h.sig.InternPredicate("q", 1)
	aFn := h.sig.Intern("a", 0, term.DefaultSort)
	a := h.env.Table.Const(aFn, term.DefaultSort)

	c := clause.New(1, []*term.Literal{
		term.NewLiteral(p, true, a),
		term.NewLiteral(q, false, a),
	}, 0, clause.Axiom)

	Select(SelectAll, c)
	require.Equal(t, 2, c.SelectedPrefixLen())
}

func TestSelectNegativeFirstBringsNegativeLiteralsForward(t *testing.T) {
	h := newHarness(DefaultOptions())
	p := h.sig.InternPredicate("p", 1)
	q := h.sig.InternPredicate("q", 1)
	aFn := h.sig.Intern("a", 0, term.DefaultSort)
	a := h.env.Table.Const(aFn, term.DefaultSort)

	c := clause.New(1, []*term.Literal{
		term.NewLiteral(p, true, a),
		term.NewLiteral(q, false, a),
	}, 0, clause.Axiom)

	Select(SelectNegativeFirst, c)
	require.Equal(t, 1, c.SelectedPrefixLen())
	require.False(t, c.SelectedLiterals()[0].Positive())
}

func TestSelectNegativeFirstFallsBackToAllWhenNoneNegative(t *testing.T) {
	p := DefaultOptions()
	_ = p
	sig := term.NewSignature()
	tbl := term.NewSharingTable()
	pred := sig.InternPredicate("p", 1)
	aFn := sig.Intern("a", 0, term.DefaultSort)
	a := tbl.Const(aFn, term.DefaultSort)

	c := clause.New(1, []*term.Literal{term.NewLiteral(pred, true, a)}, 0, clause.Axiom)
	Select(SelectNegativeFirst, c)
	require.Equal(t, 1, c.SelectedPrefixLen())
}
