package term

import (
	"encoding/binary"
	"sync"

	"github.com/spaolacci/murmur3"
)

// SharingTable is the arena-owned hash-consing table of spec §4.1: it
// assigns the canonical representative for every structural equivalence
// class of terms built through it and never mutates a Term once returned.
// It generalizes the teacher's per-relation fact hashing in pldb.go
// (hash/fnv over a formatted string) into a single run-wide table hashing
// already-canonical child ids with murmur3 (see SPEC_FULL.md §1.6), so
// hashing a compound term never re-walks its subterms.
type SharingTable struct {
	mu sync.Mutex

	nextID    uint64
	varCursor map[VarBank]uint32
	buckets   map[uint64][]*Term
}

// NewSharingTable returns an empty, arena-backed sharing table.
func NewSharingTable() *SharingTable {
	return &SharingTable{
		nextID:    1,
		varCursor: make(map[VarBank]uint32),
		buckets:   make(map[uint64][]*Term),
	}
}

// FreshVar allocates a new variable in the given bank, distinct from every
// previously allocated variable in that bank, and shares it.
func (st *SharingTable) FreshVar(bank VarBank, sort SortID) *Term {
	st.mu.Lock()
	id := st.varCursor[bank]
	st.varCursor[bank] = id + 1
	st.mu.Unlock()
	return st.Var(bank, id, sort)
}

// Var returns the canonical term for the variable (bank, id). Calling Var
// twice with the same key returns the identical *Term.
func (st *SharingTable) Var(bank VarBank, id uint32, sort SortID) *Term {
	key := VarKey{Bank: bank, ID: id}
	h := varHash(key)

	st.mu.Lock()
	defer st.mu.Unlock()

	for _, cand := range st.buckets[h] {
		if cand.IsVar() && cand.varKey == key {
			return cand
		}
	}

	t := &Term{
		id:     st.allocID(),
		kind:   KindVar,
		varKey: key,
		sort:   sort,
		weight: 1,
		free:   SingletonVarSet(key),
		ground: false,
	}
	st.buckets[h] = append(st.buckets[h], t)
	return t
}

// Func returns the canonical term for functor(args...). args must already
// be canonical (obtained from this table); sharing a term built from
// foreign terms is undefined.
func (st *SharingTable) Func(functor FunctorID, sort SortID, args ...*Term) *Term {
	h := funcHash(functor, args)

	st.mu.Lock()
	defer st.mu.Unlock()

	for _, cand := range st.buckets[h] {
		if sameFunc(cand, functor, args) {
			return cand
		}
	}

	weight := 1
	free := make([]VarSet, 0, len(args))
	ground := true
	for _, a := range args {
		weight += a.weight
		if !a.ground {
			ground = false
		}
		free = append(free, a.free)
	}

	t := &Term{
		id:      st.allocID(),
		kind:    KindFunc,
		functor: functor,
		sort:    sort,
		args:    append([]*Term(nil), args...),
		weight:  weight,
		free:    Union(free...),
		ground:  ground,
	}
	st.buckets[h] = append(st.buckets[h], t)
	return t
}

// Const is shorthand for Func with no arguments.
func (st *SharingTable) Const(functor FunctorID, sort SortID) *Term {
	return st.Func(functor, sort)
}

func (st *SharingTable) allocID() uint64 {
	id := st.nextID
	st.nextID++
	return id
}

func sameFunc(cand *Term, functor FunctorID, args []*Term) bool {
	if cand.IsVar() || cand.functor != functor || len(cand.args) != len(args) {
		return false
	}
	for i, a := range args {
		if !Eq(cand.args[i], a) {
			return false
		}
	}
	return true
}

func varHash(key VarKey) uint64 {
	var buf [8]byte
	buf[0] = byte(key.Bank)
	binary.LittleEndian.PutUint32(buf[4:], key.ID)
	return murmur3.Sum64(buf[:])
}

func funcHash(functor FunctorID, args []*Term) uint64 {
	buf := make([]byte, 4+8*len(args))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(functor))
	for i, a := range args {
		binary.LittleEndian.PutUint64(buf[4+8*i:12+8*i], a.id)
	}
	return murmur3.Sum64(buf)
}
