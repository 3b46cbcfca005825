package index

import "github.com/gokando-lab/saturn/pkg/term"

// Mode selects which of the three admissibility relations of spec
// §4.2.3 a retrieval iterator enforces.
type Mode uint8

const (
	// ModeUnification retrieves leaves whose stored term unifies with
	// the query.
	ModeUnification Mode = iota
	// ModeGeneralization retrieves leaves whose stored term generalizes
	// the query ("node ⊒ query").
	ModeGeneralization
	// ModeInstance retrieves leaves whose stored term is an instance of
	// the query ("query ⊒ node").
	ModeInstance
)

// frame is one level of the retrieval iterator's explicit backtracking
// stack — spec §9's "pull-style stateful iterator with explicit
// enter/advance/yield methods" re-expression of the traversal.
//
// A frame is either a normal frame, filtering candidates by topKey
// against a concrete query item, or a wildcard frame, exhaustively
// enumerating every child of a subtree that a free query variable must
// be allowed to match regardless of its internal shape. owed tracks how
// many more argument-positions the wildcard subtree still has to close
// before control returns to the normal frame stack; see DESIGN.md
// "wildcard descent" for the balance argument showing owed reaching zero
// closes exactly one argument position, which is a leaf when no query
// items follow it.
type frame struct {
	node       *node
	candidates []childEntry
	idx        int
	after      []*term.Term
	queryItem  *term.Term // nil for wildcard frames

	wildcard bool
	owed     int
}

// Iterator retrieves entries from a Tree under a borrowed Substitution.
// Exactly one Iterator may be live over a Substitution at a time (spec
// §4.2.4's nested-iterator ban, SPEC_FULL.md §4.1); NewIterator borrows
// the substitution and Close releases it.
type Iterator struct {
	tree *Tree
	sub  *Substitution
	mode Mode

	occursCheck bool
	queryArgs   []*term.Term // full query args, renamed into BankQuery, for the leaf-level recheck

	frames    []frame
	started   bool
	depthBase int

	haveResult  bool
	resultDepth int

	// pending holds the not-yet-tried entries of the leaf most recently
	// returned by next(), so a leaf holding more than one entry (two
	// α-equivalent literals from different clauses land at the same leaf
	// under shallow discriminators) gets every entry visited before
	// descent moves on, per spec §4.2.3's "each leaf entry is visited
	// exactly once."
	pending []leafCandidate
}

// leafCandidate pairs one leaf entry with the full argument list it was
// inserted with, so Next can verify and yield entries one at a time
// without re-ranging over the leaf's map.
type leafCandidate struct {
	entry Entry
	args  []*term.Term
}

func leafCandidatesOf(n *node) []leafCandidate {
	out := make([]leafCandidate, 0, len(n.full))
	for entry, args := range n.full {
		out = append(out, leafCandidate{entry: entry, args: args})
	}
	return out
}

// NewIterator borrows sub and starts a retrieval of mode over tree for
// the given query arguments (already renamed into BankQuery by the
// caller — an Index wraps this so callers never see raw banks).
func NewIterator(tree *Tree, sub *Substitution, mode Mode, queryArgs []*term.Term, occursCheck bool) *Iterator {
	sub.Borrow()
	return &Iterator{
		tree:        tree,
		sub:         sub,
		mode:        mode,
		occursCheck: occursCheck,
		queryArgs:   queryArgs,
		depthBase:   sub.Depth(),
	}
}

// Close releases the borrowed substitution. It must be called exactly
// once, and the substitution must already be rolled back to the depth it
// had when the iterator was constructed — Close enforces that by rolling
// back itself, satisfying spec §8 property 6 (backtrack neutrality).
func (it *Iterator) Close() {
	it.sub.Rollback(it.depthBase)
	it.sub.Release()
}

func admissible(mode Mode, children []childEntry, queryTop *term.Term) []childEntry {
	isVar := queryTop.IsVar()
	var functor term.FunctorID
	if !isVar {
		functor = queryTop.Functor()
	}
	out := make([]childEntry, 0, len(children))
	for _, c := range children {
		switch mode {
		case ModeUnification:
			if isVar || c.key.variable || c.key.functor == functor {
				out = append(out, c)
			}
		case ModeGeneralization:
			if isVar {
				if c.key.variable {
					out = append(out, c)
				}
			} else if c.key.variable || c.key.functor == functor {
				out = append(out, c)
			}
		case ModeInstance:
			if isVar || (!c.key.variable && c.key.functor == functor) {
				out = append(out, c)
			}
		}
	}
	return out
}

// pushNormalFrame installs a frame that filters node's children against
// the next pending query item, popped from the front of stack.
// Returns false if stack is empty (caller must already be sitting on a
// leaf in that case) or if no child is admissible.
func (it *Iterator) pushNormalFrame(n *node, stack []*term.Term) bool {
	if len(stack) == 0 {
		return false
	}
	item := stack[0]
	after := stack[1:]
	cands := admissible(it.mode, n.children.all(), item)
	if len(cands) == 0 {
		return false
	}
	it.frames = append(it.frames, frame{node: n, candidates: cands, idx: 0, after: after, queryItem: item})
	return true
}

func (it *Iterator) pushWildcardFrame(n *node, owed int, after []*term.Term) {
	it.frames = append(it.frames, frame{node: n, candidates: n.children.all(), idx: 0, after: after, wildcard: true, owed: owed})
}

// next advances the search and returns the next candidate leaf node, or
// nil if the tree is exhausted. It does not perform the leaf-level
// soundness recheck — callers (Next) do that.
func (it *Iterator) next() *node {
	if !it.started {
		it.started = true
		if len(it.queryArgs) == 0 {
			if it.tree.root.isLeaf() {
				return it.tree.root
			}
			return nil
		}
		if !it.pushNormalFrame(it.tree.root, it.queryArgs) {
			return nil
		}
	}
	for len(it.frames) > 0 {
		top := &it.frames[len(it.frames)-1]
		if top.idx >= len(top.candidates) {
			it.frames = it.frames[:len(it.frames)-1]
			continue
		}
		cand := top.candidates[top.idx]
		top.idx++

		if top.wildcard {
			owed := top.owed - 1
			if !cand.key.variable {
				// cand is a functor child; its own arity adds that many
				// more positions still to be closed.
				owed += functorArityOf(cand)
			}
			if owed == 0 {
				if len(top.after) == 0 {
					if cand.node.isLeaf() {
						return cand.node
					}
					panic("index: CORRUPT_INDEX wildcard descent closed without reaching a leaf")
				}
				if !it.pushNormalFrame(cand.node, top.after) {
					continue
				}
				continue
			}
			it.pushWildcardFrame(cand.node, owed, top.after)
			continue
		}

		// Normal frame: the query item that selected these candidates.
		queryItem := top.queryItem
		if cand.key.variable {
			if len(top.after) == 0 {
				if cand.node.isLeaf() {
					return cand.node
				}
				panic("index: CORRUPT_INDEX normal descent closed without reaching a leaf")
			}
			if !it.pushNormalFrame(cand.node, top.after) {
				continue
			}
			continue
		}
		if queryItem.IsVar() {
			// Candidate is a concrete functor subtree but the query is
			// unconstrained here: must exhaustively explore it.
			arity := functorArityOf(cand)
			if arity == 0 {
				if len(top.after) == 0 {
					if cand.node.isLeaf() {
						return cand.node
					}
					panic("index: CORRUPT_INDEX wildcard-entry closed without reaching a leaf")
				}
				if !it.pushNormalFrame(cand.node, top.after) {
					continue
				}
				continue
			}
			it.pushWildcardFrame(cand.node, arity, top.after)
			continue
		}
		// Same concrete top on both sides: descend through the query's
		// real arguments, then whatever followed this position.
		next := append(append([]*term.Term(nil), queryItem.Args()...), top.after...)
		if len(next) == 0 {
			if cand.node.isLeaf() {
				return cand.node
			}
			panic("index: CORRUPT_INDEX same-top descent closed without reaching a leaf")
		}
		if !it.pushNormalFrame(cand.node, next) {
			continue
		}
	}
	return nil
}

func functorArityOf(c childEntry) int {
	return c.node.discriminator.Arity()
}

// Substitution exposes the working substitution carrying the bindings of
// the most recently yielded result, valid until the next Next() or Close.
func (it *Iterator) Substitution() *Substitution { return it.sub }

// Next advances to the next entry admissible under mode and returns it
// together with the bindings now live in Substitution(). Descent (next)
// only filters by top-symbol; Next performs the one full soundness check
// spec §8 property 4 requires — one Unify or Match call over the entire
// stored argument list against the entire query argument list — because
// the shallow per-position descent never verifies repeated-variable
// constraints or deep structure inside a wildcard-admitted subtree on its
// own. See DESIGN.md "Shallow discriminators", point 3, for the completeness
// argument: descent only ever over-approximates candidates, so the final
// check can reject but never needs to compensate for a wrongly pruned
// branch.
func (it *Iterator) Next() (Entry, bool) {
	if it.haveResult {
		it.sub.Rollback(it.resultDepth)
		it.haveResult = false
	}
	for {
		if len(it.pending) == 0 {
			n := it.next()
			if n == nil {
				return Entry{}, false
			}
			it.pending = leafCandidatesOf(n)
			continue
		}
		cand := it.pending[0]
		it.pending = it.pending[1:]
		depth := it.sub.PushFrame()
		if it.verify(cand.args, cand.entry) {
			it.haveResult = true
			it.resultDepth = depth
			return cand.entry, true
		}
		it.sub.Rollback(depth)
	}
}

func (it *Iterator) verify(leafArgs []*term.Term, entry Entry) bool {
	if len(leafArgs) != len(it.queryArgs) {
		panic("index: CORRUPT_INDEX leaf argument arity mismatch")
	}
	for i, la := range leafArgs {
		qa := it.queryArgs[i]
		var ok bool
		switch it.mode {
		case ModeUnification:
			ok = it.sub.Unify(la, qa, it.occursCheck)
		case ModeGeneralization:
			ok = it.sub.Match(la, qa)
		case ModeInstance:
			ok = it.sub.Match(qa, la)
		}
		if !ok {
			return false
		}
	}
	return true
}
