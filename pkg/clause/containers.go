package clause

import "container/heap"

// Unprocessed is the FIFO container of spec §3/§4.4: fresh arrivals (input
// clauses and the output of generating inferences) wait here until the
// saturation loop drains them one at a time. A plain slice-backed queue is
// enough — unlike Passive, Unprocessed has no priority ordering to
// maintain, only arrival order (spec §4.4 step 1: "while Unprocessed
// non-empty, pop a clause").
type UnprocessedQueue struct {
	items []*Clause
}

// NewUnprocessed returns an empty Unprocessed container.
func NewUnprocessed() *UnprocessedQueue { return &UnprocessedQueue{} }

// Push enqueues c, setting its store to Unprocessed.
func (u *UnprocessedQueue) Push(c *Clause) {
	c.SetStore(Unprocessed)
	u.items = append(u.items, c)
}

// Pop dequeues the oldest clause, or reports ok=false if empty. The
// clause's store is left as Unprocessed; the caller (the saturation loop)
// is responsible for the next store transition.
func (u *UnprocessedQueue) Pop() (c *Clause, ok bool) {
	if len(u.items) == 0 {
		return nil, false
	}
	c = u.items[0]
	u.items[0] = nil
	u.items = u.items[1:]
	return c, true
}

// Len reports the number of clauses waiting.
func (u *UnprocessedQueue) Len() int { return len(u.items) }

// passiveEntry is Passive's bookkeeping wrapper: each clause is a member
// of two concurrently-maintained heaps (age-ordered, weight-ordered) so
// either selection strategy is O(log n), and carries its index in each
// so heap.Fix/heap.Remove can find it without a linear scan.
type passiveEntry struct {
	c        *Clause
	ageIdx   int
	weightIdx int
}

type ageHeap []*passiveEntry

func (h ageHeap) Len() int { return len(h) }
func (h ageHeap) Less(i, j int) bool {
	if h[i].c.age != h[j].c.age {
		return h[i].c.age < h[j].c.age
	}
	return h[i].c.id < h[j].c.id // spec §5: "stable tie-breaking is by clause id"
}
func (h ageHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].ageIdx, h[j].ageIdx = i, j
}
func (h *ageHeap) Push(x any) {
	e := x.(*passiveEntry)
	e.ageIdx = len(*h)
	*h = append(*h, e)
}
func (h *ageHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

type weightHeap []*passiveEntry

func (h weightHeap) Len() int { return len(h) }
func (h weightHeap) Less(i, j int) bool {
	if h[i].c.weight != h[j].c.weight {
		return h[i].c.weight < h[j].c.weight
	}
	return h[i].c.id < h[j].c.id
}
func (h weightHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].weightIdx, h[j].weightIdx = i, j
}
func (h *weightHeap) Push(x any) {
	e := x.(*passiveEntry)
	e.weightIdx = len(*h)
	*h = append(*h, e)
}
func (h *weightHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Passive is the selectable-but-not-indexed container of spec §3/§4.4,
// keyed for retrieval by the age-weight-ratio priority of spec §4.4 step
// 3 and spec §6's age-weight-ratio option: selection alternates AgeRatio
// times choosing the minimum-age clause, then WeightRatio times choosing
// the minimum-weight clause, repeating. No third-party priority-queue
// library appears anywhere in the retrieval pack (see DESIGN.md), so this
// is built on the standard library's container/heap, maintaining two
// parallel heaps over the same entries rather than one heap re-keyed on
// every selection-policy switch.
type PassiveQueue struct {
	byID   map[uint64]*passiveEntry
	byAge  ageHeap
	byWt   weightHeap

	ageRatio, weightRatio int
	cycle                 int
}

// NewPassive returns an empty Passive container using the given
// age-weight ratio (spec §6); ratios must both be positive for the
// saturation-completeness guarantee of spec §8 property 8 ("fair
// selection").
func NewPassive(ageRatio, weightRatio int) *PassiveQueue {
	if ageRatio <= 0 || weightRatio <= 0 {
		panic("clause: CORRUPT_INDEX age-weight ratio components must be positive")
	}
	return &PassiveQueue{
		byID:        make(map[uint64]*passiveEntry),
		ageRatio:    ageRatio,
		weightRatio: weightRatio,
	}
}

// Insert adds c to Passive, setting its store to Passive.
func (p *PassiveQueue) Insert(c *Clause) {
	c.SetStore(Passive)
	e := &passiveEntry{c: c}
	p.byID[c.ID()] = e
	heap.Push(&p.byAge, e)
	heap.Push(&p.byWt, e)
}

// Remove evicts clause id from Passive without selecting it — used by
// simplification (spec §4.4 step 1) when a clause in the simplification
// indices makes a Passive clause redundant. Reports whether id was present.
func (p *PassiveQueue) Remove(id uint64) bool {
	e, ok := p.byID[id]
	if !ok {
		return false
	}
	delete(p.byID, id)
	heap.Remove(&p.byAge, e.ageIdx)
	heap.Remove(&p.byWt, e.weightIdx)
	return true
}

// Len reports the number of clauses awaiting selection.
func (p *PassiveQueue) Len() int { return len(p.byID) }

// Select pops the next given clause per the age-weight-ratio policy
// (spec §4.4 step 3), or reports ok=false if Passive is empty. The
// clause's store is left as Passive; the caller transitions it to
// Active.
func (p *PassiveQueue) Select() (c *Clause, ok bool) {
	if len(p.byID) == 0 {
		return nil, false
	}
	useAge := p.cycle < p.ageRatio
	p.cycle++
	if p.cycle >= p.ageRatio+p.weightRatio {
		p.cycle = 0
	}

	var e *passiveEntry
	if useAge {
		e = p.byAge[0]
	} else {
		e = p.byWt[0]
	}
	p.Remove(e.c.ID())
	return e.c, true
}

// All returns every clause currently awaiting selection, in no particular
// order — used by backward simplification (spec §4.4 step 2), which must
// check each Passive clause against the newly-kept clause regardless of
// priority.
func (p *PassiveQueue) All() []*Clause {
	out := make([]*Clause, 0, len(p.byID))
	for _, e := range p.byID {
		out = append(out, e.c)
	}
	return out
}

// ActiveSet tombstones deleted positions rather than shifting the
// slice, mirroring the teacher's relationData fact storage (pldb.go):
// stable positions let Active hand out slices of "all current members"
// cheaply while backward simplification removes individual clauses by
// id in between scans.
type ActiveSet struct {
	clauses    []*Clause
	posByID    map[uint64]int
	tombstoned map[int]bool
	liveCount  int
}

// NewActive returns an empty Active container.
func NewActive() *ActiveSet {
	return &ActiveSet{
		posByID:    make(map[uint64]int),
		tombstoned: make(map[int]bool),
	}
}

// Insert adds c to Active, setting its store to Active. Spec §4.4's
// invariant that "a clause in Active is fully indexed" is the caller's
// responsibility (the saturation loop inserts into the term/literal
// indices in the same step); Active itself only tracks membership.
func (a *ActiveSet) Insert(c *Clause) {
	c.SetStore(Active)
	pos := len(a.clauses)
	a.clauses = append(a.clauses, c)
	a.posByID[c.ID()] = pos
	a.liveCount++
}

// Remove evicts clause id from Active (spec §4.4's backward
// simplification step). Reports whether id was present.
func (a *ActiveSet) Remove(id uint64) bool {
	pos, ok := a.posByID[id]
	if !ok {
		return false
	}
	delete(a.posByID, id)
	a.tombstoned[pos] = true
	a.liveCount--
	return true
}

// Len reports the number of live (non-removed) clauses.
func (a *ActiveSet) Len() int { return a.liveCount }

// All returns every live clause, in insertion order.
func (a *ActiveSet) All() []*Clause {
	out := make([]*Clause, 0, a.liveCount)
	for i, c := range a.clauses {
		if !a.tombstoned[i] {
			out = append(out, c)
		}
	}
	return out
}

// Contains reports whether id is currently live in Active.
func (a *ActiveSet) Contains(id uint64) bool {
	pos, ok := a.posByID[id]
	return ok && !a.tombstoned[pos]
}
