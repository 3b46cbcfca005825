// Package term implements perfectly shared first-order terms: hash-consed
// variables and function applications with cached functor, arity, weight,
// free-variable set, and groundness, plus the signature table that assigns
// dense functor and predicate ids.
package term

import "sync"

// SortID names a first-order sort by its dense interned id.
type SortID uint32

// DefaultSort is used when a caller does not care about sorts.
const DefaultSort SortID = 0

// FunctorID is the dense id of an interned (name, arity, sort) function
// symbol. Two calls to Signature.Intern with equal arguments return the
// same FunctorID.
type FunctorID uint32

// PredicateID is the dense id of an interned (name, arity) predicate
// symbol, kept in a namespace separate from FunctorID so that a symbol can
// be used both as a function and, unusually, as a predicate name without
// collision.
type PredicateID uint32

// EqualityPredicate is the builtin predicate id used by every equality
// literal `s ≈ t`; it is interned eagerly so that superposition and
// demodulation can test for it without a signature lookup.
const EqualityPredicate PredicateID = 0

type functorKey struct {
	name  string
	arity int
	sort  SortID
}

// FunctorEntry describes an interned function symbol.
type FunctorEntry struct {
	Name  string
	Arity int
	Sort  SortID
}

// PredicateEntry describes an interned predicate symbol.
type PredicateEntry struct {
	Name  string
	Arity int
}

// Signature is the run-scoped table of interned sorts, functors and
// predicates. It is safe for concurrent reads; interning under concurrent
// writes is serialized by mu, mirroring the teacher's pldb.Database
// copy-on-write discipline except that the signature only ever grows, so a
// plain mutex (no copy-on-write) suffices.
type Signature struct {
	mu sync.RWMutex

	sortNames []string
	sortIDs   map[string]SortID

	functorKeys []functorKey
	functorIDs  map[functorKey]FunctorID

	predicateKeys []PredicateEntry
	predicateIDs  map[PredicateEntry]PredicateID
}

// NewSignature returns a signature with the builtin sorts and the `=`
// predicate already interned.
func NewSignature() *Signature {
	s := &Signature{
		sortIDs:      make(map[string]SortID),
		functorIDs:   make(map[functorKey]FunctorID),
		predicateIDs: make(map[PredicateEntry]PredicateID),
	}
	s.InternSort("$default")
	id := s.internPredicateLocked("=", 2)
	if id != EqualityPredicate {
		panic("term: equality predicate must be the first interned predicate")
	}
	return s
}

// InternSort returns the dense id for a sort name, interning it if new.
func (s *Signature) InternSort(name string) SortID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.sortIDs[name]; ok {
		return id
	}
	id := SortID(len(s.sortNames))
	s.sortNames = append(s.sortNames, name)
	s.sortIDs[name] = id
	return id
}

// SortName returns the name a sort id was interned with.
func (s *Signature) SortName(id SortID) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortNames[id]
}

// Intern returns the dense FunctorID for (name, arity, sort), interning it
// if new. Constants are functors of arity 0.
func (s *Signature) Intern(name string, arity int, sort SortID) FunctorID {
	key := functorKey{name: name, arity: arity, sort: sort}
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.functorIDs[key]; ok {
		return id
	}
	id := FunctorID(len(s.functorKeys))
	s.functorKeys = append(s.functorKeys, key)
	s.functorIDs[key] = id
	return id
}

// Functor returns the entry a FunctorID was interned with.
func (s *Signature) Functor(id FunctorID) FunctorEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k := s.functorKeys[id]
	return FunctorEntry{Name: k.name, Arity: k.arity, Sort: k.sort}
}

// InternPredicate returns the dense PredicateID for (name, arity).
func (s *Signature) InternPredicate(name string, arity int) PredicateID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.internPredicateLocked(name, arity)
}

func (s *Signature) internPredicateLocked(name string, arity int) PredicateID {
	key := PredicateEntry{Name: name, Arity: arity}
	if id, ok := s.predicateIDs[key]; ok {
		return id
	}
	id := PredicateID(len(s.predicateKeys))
	s.predicateKeys = append(s.predicateKeys, key)
	s.predicateIDs[key] = id
	return id
}

// Predicate returns the entry a PredicateID was interned with.
func (s *Signature) Predicate(id PredicateID) PredicateEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.predicateKeys[id]
}
