package index

import "github.com/gokando-lab/saturn/pkg/term"

// Entry is the leaf data of spec §3: a (clause, literal-position) pair,
// plus a caller-defined Extra slot. The term index uses it to record the
// indexed subterm's ordinal within its literal (in the order
// calculus.LiteralSubterms lists them); the literal and rewrite indices
// leave it zero.
type Entry struct {
	ClauseID uint64
	Literal  int
	Extra    int
}

// topKey is the top-symbol a child is keyed by: either "this subtree
// starts with a variable" or "this subtree starts with this functor".
// Invariant (b) of spec §3 — no two sibling children share a top-symbol —
// is enforced by using topKey as the child collection's lookup key.
type topKey struct {
	variable bool
	functor  term.FunctorID
}

// rank orders topKeys for the skip-list representation: the variable
// bucket sorts first, then functors in ascending FunctorID order.
func (k topKey) rank() uint64 {
	if k.variable {
		return 0
	}
	return uint64(k.functor) + 1
}

func topKeyOf(t *term.Term) topKey {
	if t.IsVar() {
		return topKey{variable: true}
	}
	return topKey{functor: t.Functor()}
}

// node is one position in the substitution tree. A node is a leaf (it
// holds entries and no children) or internal (it holds children and no
// entries) — never both; see DESIGN.md for the proof sketch that the
// shallow, fixed-arity decomposition insertion uses (§4.2.1) makes this
// dichotomy unconditional rather than merely typical.
type node struct {
	discriminator *term.Term
	children      *childCollection
	leaf          map[Entry]struct{}

	// full holds, for every leaf entry, the complete original argument
	// list it was inserted with (renamed into BankResult). Retrieval
	// verifies soundness with one full Unify/Match over this list rather
	// than reconstructing the term from discriminators — see DESIGN.md
	// "Shallow discriminators", point 3, for why.
	full map[Entry][]*term.Term
}

func newInternalNode(discriminator *term.Term) *node {
	return &node{discriminator: discriminator, children: newChildCollection()}
}

func (n *node) isLeaf() bool { return n.leaf != nil }

func (n *node) isEmpty() bool {
	if n.isLeaf() {
		return len(n.leaf) == 0
	}
	return n.children.len() == 0
}
