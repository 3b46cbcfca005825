// Package index implements the substitution tree of spec §3/§4.2: a forest
// of discrimination trees keyed on argument positions supporting insert,
// delete, and unification/generalization/instance retrieval with
// backtracking iterators, plus the union-find working substitution that
// backs all three.
package index

import (
	"fmt"

	"github.com/gokando-lab/saturn/pkg/term"
)

// mutationKind tags which field of a cell a mutation record reverts.
type mutationKind uint8

const (
	mutParent mutationKind = iota
	mutRank
	mutBound
)

type mutation struct {
	kind   mutationKind
	c      *cell
	parent *cell
	rank   int
	bound  *term.Term
}

// cell is one union-find node, one per variable key ever touched by this
// substitution.
type cell struct {
	key    term.VarKey
	parent *cell // nil marks a root
	rank   int
	bound  *term.Term // non-nil only on a root: the term the class is bound to
}

// Substitution is the working substitution of spec §4.2.4: a union-find
// over (bank, id) variable keys, augmented so every link, rank and binding
// change is appended to the frame on top of the frame stack, and a
// rollback replays those records in reverse to restore the exact prior
// structure. It generalizes the teacher's copy-on-write binding maps
// (LocalConstraintStoreImpl.bindings in local_constraint_store.go, cloned
// wholesale on every branch) into an in-place structure that undoes
// exactly the mutations a branch made, which is what makes retrieval
// iteration over a shared index affordable.
type Substitution struct {
	table  *term.SharingTable
	cells  map[term.VarKey]*cell
	frames [][]mutation

	// borrowed implements the Open Question decision recorded in
	// SPEC_FULL.md §4.1: only one retrieval iterator may be live over a
	// given Substitution at a time. A second concurrent Retrieve call is
	// an invariant violation (spec §7), not a retry-able failure.
	borrowed bool
}

// NewSubstitution returns an empty working substitution with its base
// frame already pushed, so that top-level Unify/Match calls made without
// an explicit PushFrame still have somewhere to record mutations.
func NewSubstitution(table *term.SharingTable) *Substitution {
	return &Substitution{
		table:  table,
		cells:  make(map[term.VarKey]*cell),
		frames: [][]mutation{nil},
	}
}

// Depth returns the number of frames currently on the stack, including the
// base frame. PushFrame/Rollback pairs are identified by this number, the
// way the retrieval iterator's stack-of-siblings indexes align with it
// (spec §3's "Retrieval iterator state" invariant).
func (s *Substitution) Depth() int { return len(s.frames) }

// PushFrame starts a new backtrack frame and returns the depth the
// substitution was at immediately before — pass that value to Rollback
// to undo exactly the mutations recorded since this call, including the
// frame it just pushed.
func (s *Substitution) PushFrame() int {
	d := len(s.frames)
	s.frames = append(s.frames, nil)
	return d
}

// Rollback undoes every mutation recorded at depth > toDepth, in reverse
// chronological order, and pops those frames. Rolling back to the current
// depth is a no-op.
func (s *Substitution) Rollback(toDepth int) {
	for len(s.frames) > toDepth {
		top := s.frames[len(s.frames)-1]
		for i := len(top) - 1; i >= 0; i-- {
			undo(top[i])
		}
		s.frames = s.frames[:len(s.frames)-1]
	}
}

func undo(m mutation) {
	switch m.kind {
	case mutParent:
		m.c.parent = m.parent
	case mutRank:
		m.c.rank = m.rank
	case mutBound:
		m.c.bound = m.bound
	}
}

func (s *Substitution) record(m mutation) {
	top := len(s.frames) - 1
	s.frames[top] = append(s.frames[top], m)
}

// Borrow marks the substitution as having a live retrieval iterator.
// Panics (spec §7 invariant violation) if already borrowed.
func (s *Substitution) Borrow() {
	if s.borrowed {
		panic(fmt.Sprintf("index: substitution already borrowed by another iterator"))
	}
	s.borrowed = true
}

// Release ends the current borrow. It is safe to call even if nothing
// rolled the substitution back first, but callers should roll back before
// releasing so the substitution is left structurally unchanged (spec §8
// property 6, backtrack neutrality).
func (s *Substitution) Release() {
	s.borrowed = false
}

func (s *Substitution) cellOf(key term.VarKey) *cell {
	c, ok := s.cells[key]
	if !ok {
		c = &cell{key: key}
		s.cells[key] = c
	}
	return c
}

func (s *Substitution) find(c *cell) *cell {
	root := c
	for root.parent != nil {
		root = root.parent
	}
	// Path compression, with every redirected link recorded so a rollback
	// restores the exact prior chain (spec §4.2.4).
	cur := c
	for cur != root && cur.parent != root {
		next := cur.parent
		s.record(mutation{kind: mutParent, c: cur, parent: cur.parent})
		cur.parent = root
		cur = next
	}
	return root
}

// union merges the equivalence classes of two currently-unbound roots by
// rank. Callers must ensure both arguments are roots with bound == nil.
func (s *Substitution) union(r1, r2 *cell) *cell {
	if r1 == r2 {
		return r1
	}
	if r1.rank < r2.rank {
		r1, r2 = r2, r1
	}
	s.record(mutation{kind: mutParent, c: r2, parent: r2.parent})
	r2.parent = r1
	if r1.rank == r2.rank {
		s.record(mutation{kind: mutRank, c: r1, rank: r1.rank})
		r1.rank++
	}
	return r1
}

func (s *Substitution) setBound(root *cell, t *term.Term) {
	s.record(mutation{kind: mutBound, c: root, bound: root.bound})
	root.bound = t
}

// Walk resolves t through the current substitution one level: if t is an
// unbound or already-bound variable it returns the root's binding (or a
// canonical representative of the root variable if still unbound);
// non-variable terms are returned unchanged. Walk does not recurse into
// the returned term's own subterms — it is the "get-top" primitive spec
// §4.2.4 names, used by tree descent to decide which child to enter.
func (s *Substitution) Walk(t *term.Term) *term.Term {
	if !t.IsVar() {
		return t
	}
	root := s.find(s.cellOf(t.VarKey()))
	if root.bound != nil {
		return root.bound
	}
	if root.key == t.VarKey() {
		return t
	}
	return s.table.Var(root.key.Bank, root.key.ID, t.Sort())
}

// Resolve fully dereferences t and every subterm through the current
// substitution, producing the σ-image spec §4.3 needs when an inference
// engine emits a derived clause.
func (s *Substitution) Resolve(t *term.Term) *term.Term {
	w := s.Walk(t)
	if w.IsVar() || w.Arity() == 0 {
		return w
	}
	args := make([]*term.Term, w.Arity())
	changed := false
	for i, a := range w.Args() {
		r := s.Resolve(a)
		args[i] = r
		if !term.Eq(r, a) {
			changed = true
		}
	}
	if !changed {
		return w
	}
	return s.table.Func(w.Functor(), w.Sort(), args...)
}

func (s *Substitution) occursIn(key term.VarKey, t *term.Term) bool {
	w := s.Walk(t)
	if w.IsVar() {
		return w.VarKey() == key
	}
	for _, a := range w.Args() {
		if s.occursIn(key, a) {
			return true
		}
	}
	return false
}

func (s *Substitution) bind(key term.VarKey, t *term.Term) bool {
	root := s.find(s.cellOf(key))
	if t.IsVar() {
		other := s.find(s.cellOf(t.VarKey()))
		s.union(root, other)
		return true
	}
	if root.bound != nil {
		return termsIdentical(root.bound, t)
	}
	s.setBound(root, t)
	return true
}

func termsIdentical(a, b *term.Term) bool { return term.Eq(a, b) }

// Unify performs full two-way unification of t1 and t2 under the current
// substitution, recording every mutation in the frame on top of the
// stack. occursCheck disabled corresponds to the unification-with-
// abstraction option (spec §6) relaxing the occurs-check for theory
// symbols; saturn applies it uniformly rather than symbol-by-symbol since
// the core spec does not define a theory-symbol table.
func (s *Substitution) Unify(t1, t2 *term.Term, occursCheck bool) bool {
	a := s.Walk(t1)
	b := s.Walk(t2)
	if term.Eq(a, b) {
		return true
	}
	if a.IsVar() {
		if occursCheck && s.occursIn(a.VarKey(), b) {
			return false
		}
		return s.bind(a.VarKey(), b)
	}
	if b.IsVar() {
		if occursCheck && s.occursIn(b.VarKey(), a) {
			return false
		}
		return s.bind(b.VarKey(), a)
	}
	if a.Functor() != b.Functor() || a.Arity() != b.Arity() || a.Sort() != b.Sort() {
		return false
	}
	for i, aa := range a.Args() {
		if !s.Unify(aa, b.Arg(i), occursCheck) {
			return false
		}
	}
	return true
}

// Match performs one-way matching: variables on pattern may be bound to
// any term (including rigid's variables); rigid's own variables are never
// bound and act as opaque constants. A pattern variable that is already
// bound only matches a rigid term identical to its binding. Because
// pattern and rigid always live in different variable banks (spec §4.2),
// a pattern variable can never occur inside the rigid term it is bound
// to, so no occurs-check is needed for matching.
//
// Generalization mode calls Match(nodeTerm, queryTerm) ("node ⊒ query");
// instance mode calls Match(queryTerm, nodeTerm) ("query ⊒ node").
func (s *Substitution) Match(pattern, rigid *term.Term) bool {
	if pattern.IsVar() {
		root := s.find(s.cellOf(pattern.VarKey()))
		if root.bound != nil {
			return term.Eq(root.bound, rigid)
		}
		s.setBound(root, rigid)
		return true
	}
	p := pattern
	if rigid.IsVar() {
		return false
	}
	if p.Functor() != rigid.Functor() || p.Arity() != rigid.Arity() || p.Sort() != rigid.Sort() {
		return false
	}
	for i, pa := range p.Args() {
		if !s.Match(pa, rigid.Arg(i)) {
			return false
		}
	}
	return true
}
