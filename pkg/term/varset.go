package term

// VarSet is the compact encoding of a term's free variables that spec
// §3 requires every shared term to cache. It generalizes the teacher's
// ad-hoc "walk the whole term looking for *Var" pattern (primitives.go's
// unify recurses without ever caching which variables occur) into a value
// computed once at share time and reused for every later groundness or
// occurs-check test.
//
// A map-backed set is used rather than a literal machine bitmask: clause
// variable counts are small (single digits to low hundreds) and sparse
// across banks, so a map is the "compact encoding" spec §3 asks for
// without forcing a global upper bound on variable ids.
type VarSet struct {
	vars map[VarKey]struct{}
}

// EmptyVarSet is the free-variable set of every ground term.
var EmptyVarSet = VarSet{}

// SingletonVarSet returns the free-variable set of a single variable.
func SingletonVarSet(k VarKey) VarSet {
	return VarSet{vars: map[VarKey]struct{}{k: {}}}
}

// Union returns the set of variables free in either operand. Neither
// operand is mutated.
func Union(sets ...VarSet) VarSet {
	size := 0
	for _, s := range sets {
		size += len(s.vars)
	}
	if size == 0 {
		return EmptyVarSet
	}
	out := make(map[VarKey]struct{}, size)
	for _, s := range sets {
		for k := range s.vars {
			out[k] = struct{}{}
		}
	}
	return VarSet{vars: out}
}

// Contains reports whether k is free in the set.
func (s VarSet) Contains(k VarKey) bool {
	if s.vars == nil {
		return false
	}
	_, ok := s.vars[k]
	return ok
}

// IsEmpty reports whether the set has no free variables, i.e. the term it
// was computed from is ground.
func (s VarSet) IsEmpty() bool {
	return len(s.vars) == 0
}

// Len returns the number of distinct free variables.
func (s VarSet) Len() int {
	return len(s.vars)
}

// Slice returns the free variables in unspecified order.
func (s VarSet) Slice() []VarKey {
	out := make([]VarKey, 0, len(s.vars))
	for k := range s.vars {
		out = append(out, k)
	}
	return out
}
