package term

// Renamer maps the variables of one or more terms into a single target
// bank, giving each distinct source variable a fresh bank-tagged variable
// the first time it is seen and reusing that mapping for every later
// occurrence (so `p(X,X)` renames to `p(Y,Y)`, never `p(Y,Z)`). This is
// what spec §4.2's "query-normalized" / "result-normalized" banks are for:
// a retrieval renames the query term into BankQuery and compares it
// against indexed terms that were themselves renamed into BankResult at
// insertion time, so the two sides never collide on a raw variable id even
// if the clauses they came from numbered their own variables independently.
type Renamer struct {
	table  *SharingTable
	bank   VarBank
	seen   map[uint64]*Term
	cursor uint32
}

// NewRenamer returns a renamer that allocates fresh variables in bank.
func NewRenamer(table *SharingTable, bank VarBank) *Renamer {
	return &Renamer{table: table, bank: bank, seen: make(map[uint64]*Term)}
}

// Rename returns t with every free variable replaced by its (memoized)
// fresh variable in the renamer's bank. Ground subterms are returned
// unchanged (they are already canonical and contain no variables to map).
func (r *Renamer) Rename(t *Term) *Term {
	if t.Ground() {
		return t
	}
	if t.IsVar() {
		if mapped, ok := r.seen[t.id]; ok {
			return mapped
		}
		fresh := r.table.Var(r.bank, r.cursor, t.sort)
		r.cursor++
		r.seen[t.id] = fresh
		return fresh
	}
	args := make([]*Term, len(t.args))
	changed := false
	for i, a := range t.args {
		renamed := r.Rename(a)
		args[i] = renamed
		if !Eq(renamed, a) {
			changed = true
		}
	}
	if !changed {
		return t
	}
	return r.table.Func(t.functor, t.sort, args...)
}

// RenameLiteral renames every argument of lit through the renamer's
// mapping, preserving shared variable occurrences across arguments.
func (r *Renamer) RenameLiteral(lit *Literal) *Literal {
	args := make([]*Term, len(lit.args))
	for i, a := range lit.args {
		args[i] = r.Rename(a)
	}
	out := NewLiteral(lit.predicate, lit.positive, args...)
	out.eqSort = lit.eqSort
	return out
}
