// Package clause implements the clause data model of spec §3: an
// unordered multiset of literals plus the bookkeeping the saturation loop
// needs to track where a clause lives and whether it may still be used.
package clause

import (
	"sync/atomic"

	"github.com/gokando-lab/saturn/pkg/term"
)

// InputType tags how a clause entered the problem (spec §3).
type InputType uint8

const (
	Axiom InputType = iota
	Conjecture
	NegatedConjecture
)

func (t InputType) String() string {
	switch t {
	case Axiom:
		return "axiom"
	case Conjecture:
		return "conjecture"
	case NegatedConjecture:
		return "negated_conjecture"
	default:
		return "unknown_input_type"
	}
}

// Store names the single container a live clause belongs to (spec §3's
// "store location is exactly one at a time"). NONE marks a clause that has
// been discarded by forward simplification or has not yet been placed.
type Store uint8

const (
	None Store = iota
	Unprocessed
	Passive
	Active
	Reduced
)

func (s Store) String() string {
	switch s {
	case None:
		return "none"
	case Unprocessed:
		return "unprocessed"
	case Passive:
		return "passive"
	case Active:
		return "active"
	case Reduced:
		return "reduced"
	default:
		return "unknown_store"
	}
}

// Clause is an unordered multiset of literals together with the metadata
// spec §3 requires: age, weight, input type, store location, reference
// count, selected-literals prefix length, and an opaque split-dependency
// set. The inference record (rule + parents) spec §3 also lists is kept
// out-of-band in package derivation, per spec §9's design note — a
// Clause itself carries only its id and refcount, never a pointer back
// into its own derivation history, so derivations can form a DAG without
// clauses holding cyclic references.
//
// refCount mirrors the teacher's SolverState.refCount (solver.go): an
// atomic.Int64 incremented by every container and inference-store record
// that references the clause, decremented on release, with zero meaning
// the clause may be freed. The saturation loop is single-threaded
// (spec §5) so the atomicity is not load-bearing for concurrency here; it
// is kept because the teacher's pooled-state pattern this is grounded on
// uses atomic.Int64 for the same field, and spec §3 phrases "reference
// count" the same way the teacher's comment does ("number of active
// references").
type Clause struct {
	id        uint64
	literals  []*term.Literal
	age       int
	weight    int
	inputType InputType

	store Store

	refCount atomic.Int64

	selectedPrefix int

	// splitSet is the opaque split-dependency set spec §3 names for the
	// external SAT-splitting collaborator (core spec §1's explicit
	// non-goal); saturn never inspects its contents, only carries it.
	splitSet map[uint32]struct{}
}

// New builds a clause from already-shared literals. The clause starts
// with refcount 1 (its creator's reference) and store None.
func New(id uint64, literals []*term.Literal, age int, inputType InputType) *Clause {
	c := &Clause{
		id:        id,
		literals:  append([]*term.Literal(nil), literals...),
		age:       age,
		weight:    sumWeights(literals),
		inputType: inputType,
		store:     None,
	}
	c.refCount.Store(1)
	return c
}

func sumWeights(lits []*term.Literal) int {
	w := 0
	for _, l := range lits {
		w += l.Weight()
	}
	return w
}

// ID returns the clause's stable identity, the key derivation.Store and
// every index entry's Entry.ClauseID reference it by.
func (c *Clause) ID() uint64 { return c.id }

// Literals returns the clause's literals. Callers must not mutate the
// returned slice.
func (c *Clause) Literals() []*term.Literal { return c.literals }

// IsEmpty reports whether the clause has no literals — the refutation
// witness (spec §4.4 step 1).
func (c *Clause) IsEmpty() bool { return len(c.literals) == 0 }

// Age is the clause's derivation depth.
func (c *Clause) Age() int { return c.age }

// Weight is the sum of the weights of the clause's literals.
func (c *Clause) Weight() int { return c.weight }

// InputType reports how the clause entered the problem.
func (c *Clause) InputType() InputType { return c.inputType }

// Store reports the clause's current container.
func (c *Clause) Store() Store { return c.store }

// SetStore moves the clause's store field. Panics (spec §7 invariant
// violation) if the clause is REDUCED: spec §3 says "once REDUCED it may
// not be selected again", and the only legitimate way back from REDUCED
// would be a new clause (the replacement), never the same one.
func (c *Clause) SetStore(s Store) {
	if c.store == Reduced {
		panic("clause: CORRUPT_INDEX cannot move a REDUCED clause to another store")
	}
	c.store = s
}

// SelectedPrefixLen returns the length of the selected-literals prefix a
// literal-selection policy chose (spec §4.4 step 4); selected literals are
// conventionally stored first.
func (c *Clause) SelectedPrefixLen() int { return c.selectedPrefix }

// SetSelectedPrefixLen records the selection policy's choice.
func (c *Clause) SetSelectedPrefixLen(n int) {
	if n < 0 || n > len(c.literals) {
		panic("clause: CORRUPT_INDEX selected prefix length out of range")
	}
	c.selectedPrefix = n
}

// SelectedLiterals returns the prefix of literals the last selection
// policy marked as selected.
func (c *Clause) SelectedLiterals() []*term.Literal {
	return c.literals[:c.selectedPrefix]
}

// ReorderLiterals permutes the clause's literal list in place, order being
// a permutation of [0,len(literals)). A literal-selection policy uses this
// to bring its chosen literals to the front before calling
// SetSelectedPrefixLen (spec §4.4 step 4: selected literals are
// conventionally stored first). Panics (spec §7) if order is not a
// permutation of the clause's current literal indices.
func (c *Clause) ReorderLiterals(order []int) {
	if len(order) != len(c.literals) {
		panic("clause: CORRUPT_INDEX reorder permutation length mismatch")
	}
	seen := make([]bool, len(order))
	next := make([]*term.Literal, len(order))
	for i, idx := range order {
		if idx < 0 || idx >= len(c.literals) || seen[idx] {
			panic("clause: CORRUPT_INDEX reorder argument is not a permutation")
		}
		seen[idx] = true
		next[i] = c.literals[idx]
	}
	c.literals = next
}

// SplitSet returns the clause's opaque split-dependency set, creating it
// lazily so a clause nothing ever splits pays no allocation.
func (c *Clause) SplitSet() map[uint32]struct{} {
	if c.splitSet == nil {
		c.splitSet = make(map[uint32]struct{})
	}
	return c.splitSet
}

// Retain increments the reference count, mirroring the teacher's
// SolverState pooling discipline: every container and derivation record
// that keeps a pointer to this clause must retain it first.
func (c *Clause) Retain() { c.refCount.Add(1) }

// Release decrements the reference count and reports whether it reached
// zero, at which point the caller owns the clause's disposal. Spec §3
// invariant: "a live clause has refcount ≥ 1" — Release panics if called
// on an already-zero clause, since that would mean some caller held a
// reference it never retained.
func (c *Clause) Release() bool {
	n := c.refCount.Add(-1)
	if n < 0 {
		panic("clause: CORRUPT_INDEX refcount dropped below zero")
	}
	return n == 0
}

// RefCount returns the current reference count, for diagnostics and
// tests.
func (c *Clause) RefCount() int64 { return c.refCount.Load() }
