package term

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSharingIdempotence(t *testing.T) {
	st := NewSharingTable()
	sig := NewSignature()
	f := sig.Intern("f", 2, DefaultSort)
	a := sig.Intern("a", 0, DefaultSort)

	t.Run("equal constants share identity", func(t *testing.T) {
		c1 := st.Const(a, DefaultSort)
		c2 := st.Const(a, DefaultSort)
		require.True(t, Eq(c1, c2))
		require.Equal(t, c1.ID(), c2.ID())
	})

	t.Run("equal compounds share identity", func(t *testing.T) {
		c := st.Const(a, DefaultSort)
		t1 := st.Func(f, DefaultSort, c, c)
		t2 := st.Func(f, DefaultSort, c, c)
		require.True(t, Eq(t1, t2))
	})

	t.Run("structurally different compounds do not share identity", func(t *testing.T) {
		c := st.Const(a, DefaultSort)
		v := st.FreshVar(BankOrdinary, DefaultSort)
		t1 := st.Func(f, DefaultSort, c, c)
		t2 := st.Func(f, DefaultSort, c, v)
		require.False(t, Eq(t1, t2))
	})

	t.Run("fresh variables never collide", func(t *testing.T) {
		v1 := st.FreshVar(BankOrdinary, DefaultSort)
		v2 := st.FreshVar(BankOrdinary, DefaultSort)
		require.False(t, Eq(v1, v2))
	})
}

func TestWeightAndGroundness(t *testing.T) {
	st := NewSharingTable()
	sig := NewSignature()
	f := sig.Intern("f", 2, DefaultSort)
	a := sig.Intern("a", 0, DefaultSort)

	c := st.Const(a, DefaultSort)
	require.True(t, c.Ground())
	require.Equal(t, 1, c.Weight())

	v := st.FreshVar(BankOrdinary, DefaultSort)
	require.False(t, v.Ground())
	require.Equal(t, 1, v.Weight())

	compound := st.Func(f, DefaultSort, c, v)
	require.False(t, compound.Ground())
	require.Equal(t, 3, compound.Weight())
	require.Equal(t, 1, compound.FreeVars().Len())
	require.True(t, compound.FreeVars().Contains(v.VarKey()))
}

func TestRenamerPreservesSharing(t *testing.T) {
	st := NewSharingTable()
	sig := NewSignature()
	f := sig.Intern("f", 2, DefaultSort)

	v := st.FreshVar(BankOrdinary, DefaultSort)
	term := st.Func(f, DefaultSort, v, v)

	r := NewRenamer(st, BankQuery)
	renamed := r.Rename(term)

	require.NotEqual(t, term.Arg(0).VarKey().Bank, renamed.Arg(0).VarKey().Bank)
	require.True(t, Eq(renamed.Arg(0), renamed.Arg(1)), "repeated variable must rename to the same fresh variable")
}

func TestLiteralComplement(t *testing.T) {
	st := NewSharingTable()
	sig := NewSignature()
	p := sig.InternPredicate("p", 1)
	a := sig.Intern("a", 0, DefaultSort)
	c := st.Const(a, DefaultSort)

	pos := NewLiteral(p, true, c)
	neg := NewLiteral(p, false, c)

	require.True(t, pos.ComplementOf(neg))
	require.True(t, neg.ComplementOf(pos))
	require.False(t, pos.ComplementOf(pos))
}
