package index

import "github.com/gokando-lab/saturn/pkg/term"

// Tree is one discrimination tree of the forest, rooted at a single
// predicate or functor symbol (spec §3: "each top-level tree is keyed by
// a root symbol"). Its root node has no discriminator of its own — it is
// the virtual entry point whose children are keyed by the top-symbol of
// the first argument position.
type Tree struct {
	table      *term.SharingTable
	thresholds Thresholds
	root       *node
	size       int
}

func newTree(table *term.SharingTable, thresholds Thresholds) *Tree {
	return &Tree{table: table, thresholds: thresholds, root: &node{children: newChildCollection()}}
}

// Len reports the number of entries currently indexed in this tree.
func (t *Tree) Len() int { return t.size }

// makeNode allocates the node a fresh argument position needs: an exact
// constant node, a generic special-variable placeholder for a query/result
// variable, or a shell whose direct arguments are fresh special variables
// for a compound. The shell carries no real information past one level —
// see DESIGN.md "shallow discriminators" for why every node in this tree
// decomposes compounds immediately instead of storing and later
// retroactively anti-unifying whole subterms.
func makeNode(t *term.Term, table *term.SharingTable) *node {
	if t.IsVar() {
		placeholder := table.FreshVar(term.BankSpecial, t.Sort())
		return newInternalNode(placeholder)
	}
	if t.Arity() == 0 {
		return newInternalNode(t)
	}
	shellArgs := make([]*term.Term, t.Arity())
	for i, a := range t.Args() {
		shellArgs[i] = table.FreshVar(term.BankSpecial, a.Sort())
	}
	return newInternalNode(table.Func(t.Functor(), t.Sort(), shellArgs...))
}

// promoteThresholdFor picks the leaf/internal threshold for a node's own
// children collection, based on whether the NEXT level down terminates in
// leaves (all further queue items are about to be exhausted) or continues
// into further internal nodes. Insert always knows this from whether the
// queue is empty after the current item, so callers pass it explicitly.
func (t *Tree) promoteThresholdFor(childrenAreLeaves bool) int {
	if childrenAreLeaves {
		return t.thresholds.Leaf
	}
	return t.thresholds.Internal
}

// Insert adds entry under args (the literal's or rewrite side's argument
// list, already renamed into BankResult) following spec §4.2.1's
// split-insert loop, re-expressed as a straight loop over an explicit
// work queue (a compound item's arguments are pushed onto its front, so
// positions are visited in preorder) rather than the original goto-driven
// recursion (spec §9 design note).
func (t *Tree) Insert(args []*term.Term, entry Entry) {
	cur := t.root
	queue := append([]*term.Term(nil), args...)
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		key := topKeyOf(item)
		child, found := cur.children.find(key)
		if !found {
			child = makeNode(item, t.table)
			cur.children.insert(key, child, t.promoteThresholdFor(len(queue) == 0 && item.Arity() == 0))
		}
		if !item.IsVar() && item.Arity() > 0 {
			queue = append(append([]*term.Term(nil), item.Args()...), queue...)
		}
		cur = child
	}
	if cur.leaf == nil {
		cur.leaf = make(map[Entry]struct{})
		cur.full = make(map[Entry][]*term.Term)
	}
	cur.leaf[entry] = struct{}{}
	cur.full[entry] = append([]*term.Term(nil), args...)
	t.size++
}

// Delete removes entry, previously inserted under args, pruning any
// internal nodes left childless along the way (spec §4.2.2). It panics
// with a CORRUPT_INDEX-style diagnostic if the path or the entry itself
// is not present, per spec §7's stance that invariant violations abort
// rather than fail soft.
func (t *Tree) Delete(args []*term.Term, entry Entry) {
	path := []*node{t.root}
	keys := []topKey{}
	cur := t.root
	queue := append([]*term.Term(nil), args...)
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		key := topKeyOf(item)
		child, found := cur.children.find(key)
		if !found {
			panic("index: CORRUPT_INDEX delete of entry not present (missing path node)")
		}
		if !item.IsVar() && item.Arity() > 0 {
			queue = append(append([]*term.Term(nil), item.Args()...), queue...)
		}
		path = append(path, child)
		keys = append(keys, key)
		cur = child
	}
	if cur.leaf == nil {
		panic("index: CORRUPT_INDEX delete of entry not present (not a leaf)")
	}
	if _, ok := cur.leaf[entry]; !ok {
		panic("index: CORRUPT_INDEX delete of entry not present (missing leaf entry)")
	}
	delete(cur.leaf, entry)
	delete(cur.full, entry)
	t.size--

	// Walk back up, pruning any node that became empty.
	for i := len(path) - 1; i > 0; i-- {
		n := path[i]
		if !n.isEmpty() {
			break
		}
		parent := path[i-1]
		parent.children.remove(keys[i-1])
	}
}
