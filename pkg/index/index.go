package index

import "github.com/gokando-lab/saturn/pkg/term"

// Index is a forest of Trees keyed by an opaque root symbol — a
// PredicateID for a literal index, a FunctorID for the term indices
// demodulation and superposition use to find rewrite/paramodulation
// partners (spec §3's "forest of discrimination trees"). One Index
// instance owns one root-symbol namespace; callers keep separate Index
// values for literal indices and term indices rather than tagging roots,
// since the two id spaces are never compared against each other.
type Index struct {
	table      *term.SharingTable
	thresholds Thresholds
	trees      map[uint64]*Tree
}

// NewIndex returns an empty forest using the given child-collection
// promotion thresholds (DefaultThresholds() if the caller has no
// opinion).
func NewIndex(table *term.SharingTable, thresholds Thresholds) *Index {
	return &Index{table: table, thresholds: thresholds, trees: make(map[uint64]*Tree)}
}

func (idx *Index) treeFor(root uint64) *Tree {
	t, ok := idx.trees[root]
	if !ok {
		t = newTree(idx.table, idx.thresholds)
		idx.trees[root] = t
	}
	return t
}

// Insert adds entry under root, keyed by args (already renamed into
// BankResult by the caller).
func (idx *Index) Insert(root uint64, args []*term.Term, entry Entry) {
	idx.treeFor(root).Insert(args, entry)
}

// Delete removes entry previously inserted under root with args. Panics
// (spec §7) if root has no tree at all — a structurally stronger
// CORRUPT_INDEX signal than an empty tree, which Tree.Delete already
// catches.
func (idx *Index) Delete(root uint64, args []*term.Term, entry Entry) {
	t, ok := idx.trees[root]
	if !ok {
		panic("index: CORRUPT_INDEX delete under root with no tree")
	}
	t.Delete(args, entry)
	if t.Len() == 0 {
		delete(idx.trees, root)
	}
}

var emptyTree = &Tree{root: &node{children: newChildCollection()}}

// Retrieve starts an iterator over root's tree in mode, matching
// queryArgs (already renamed into BankQuery by the caller) against every
// indexed argument list under root. If root has never been inserted
// into, the returned iterator is immediately exhausted rather than nil,
// so callers can always range over it uniformly.
func (idx *Index) Retrieve(root uint64, mode Mode, sub *Substitution, queryArgs []*term.Term, occursCheck bool) *Iterator {
	t, ok := idx.trees[root]
	if !ok {
		t = emptyTree
	}
	return NewIterator(t, sub, mode, queryArgs, occursCheck)
}

// LiteralRoot is the root-symbol key for a literal index entry.
func LiteralRoot(predicate term.PredicateID) uint64 { return uint64(predicate) }

// TermRoot is the root-symbol key for a term index entry (demodulation
// and superposition subterm indices, keyed by the subterm's own
// functor).
func TermRoot(functor term.FunctorID) uint64 { return uint64(functor) }

// InsertLiteral renames lit's arguments into BankResult via renamer and
// inserts them under lit's predicate.
func InsertLiteral(idx *Index, renamer *term.Renamer, lit *term.Literal, entry Entry) {
	renamed := renamer.RenameLiteral(lit)
	idx.Insert(LiteralRoot(lit.Predicate()), renamed.Args(), entry)
}

// DeleteLiteral mirrors InsertLiteral's renaming so the stored argument
// list (which Delete matches path-for-path) lines up exactly.
func DeleteLiteral(idx *Index, renamer *term.Renamer, lit *term.Literal, entry Entry) {
	renamed := renamer.RenameLiteral(lit)
	idx.Delete(LiteralRoot(lit.Predicate()), renamed.Args(), entry)
}

// RetrieveLiteral renames lit's arguments into BankQuery via renamer and
// starts a retrieval under lit's predicate. The index is keyed by
// predicate only, so entries of both polarities are returned; callers
// check the polarity of each retrieved literal themselves.
func RetrieveLiteral(idx *Index, renamer *term.Renamer, sub *Substitution, lit *term.Literal, mode Mode, occursCheck bool) *Iterator {
	renamed := renamer.RenameLiteral(lit)
	return idx.Retrieve(LiteralRoot(lit.Predicate()), mode, sub, renamed.Args(), occursCheck)
}
