// Package derivation is the out-of-band proof record spec §9 calls for:
// "store derivations out-of-band in a DAG table keyed by clause id;
// clauses carry only their id and refcount." The teacher discards
// inference history once a Run completes (pkg/minikanren has nothing like
// this at all); the design is instead supplemented from
// original_source/Kernel/InferenceStore.cpp, which keeps exactly this
// shape: a map from unit id to (rule, premise ids), with premise clauses
// retained for as long as the record referencing them exists.
package derivation

import (
	"fmt"
	"sync"

	"github.com/gokando-lab/saturn/pkg/clause"
)

// Record is one entry of the derivation DAG: the rule that produced a
// clause and the ids of the parent clauses it was derived from. An input
// clause (axiom or (negated) conjecture) has an empty Rule and no
// Parents — the base case of the DAG.
type Record struct {
	Rule    string
	Parents []uint64
}

// Store is an append-only table mapping clause id to the Record that
// produced it, mirroring InferenceStore.cpp's `_data` map.
type Store struct {
	mu      sync.RWMutex
	records map[uint64]Record
}

// NewStore returns an empty derivation store.
func NewStore() *Store {
	return &Store{records: make(map[uint64]Record)}
}

// Record records that derived was produced from parents by rule, and
// retains every parent clause (InferenceStore.cpp's
// `increasePremiseRefCounters`): once a derivation names a parent, that
// parent must outlive the record referencing it. Panics (spec §7) if
// derived already has a record — the store is append-only, a clause is
// derived exactly once.
func (s *Store) Record(derived uint64, rule string, parents []*clause.Clause) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[derived]; exists {
		panic(fmt.Sprintf("derivation: CORRUPT_INDEX clause %d already has a derivation record", derived))
	}
	ids := make([]uint64, len(parents))
	for i, p := range parents {
		p.Retain()
		ids[i] = p.ID()
	}
	s.records[derived] = Record{Rule: rule, Parents: ids}
}

// RecordInput records id as an input clause: no rule, no parents.
func (s *Store) RecordInput(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[id]; exists {
		panic(fmt.Sprintf("derivation: CORRUPT_INDEX clause %d already has a derivation record", id))
	}
	s.records[id] = Record{}
}

// Lookup returns the record for id, if any.
func (s *Store) Lookup(id uint64) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	return r, ok
}

// Ancestors returns every clause id reachable from id by following parent
// edges, id included, in deterministic breadth-first first-seen order —
// the flattened id set a proof printer (out of scope here, per spec §1)
// would walk to render "the empty clause with its full derivation DAG"
// (spec §6) on REFUTATION.
func (s *Store) Ancestors(id uint64) []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[uint64]struct{}{id: {}}
	order := []uint64{id}
	queue := []uint64{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		rec, ok := s.records[cur]
		if !ok {
			continue
		}
		for _, p := range rec.Parents {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			order = append(order, p)
			queue = append(queue, p)
		}
	}
	return order
}
