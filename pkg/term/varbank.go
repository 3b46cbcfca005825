package term

// VarBank tags which of the substitution tree's disjoint variable
// namespaces a variable belongs to (spec §4.2): query-normalized terms,
// result-normalized terms (the indexed side) and special variables
// introduced by node splitting. Ordinary clause variables use BankOrdinary
// and are renamed into BankQuery/BankResult before a retrieval so that two
// unrelated clauses never collide on a raw variable id.
type VarBank uint8

const (
	// BankOrdinary holds the variables of clauses as they sit in the
	// clause containers, before any retrieval normalizes them.
	BankOrdinary VarBank = iota
	// BankQuery holds the query term's variables during a retrieval.
	BankQuery
	// BankResult holds the indexed term's variables during a retrieval.
	BankResult
	// BankSpecial holds tree-internal variables introduced by splitting.
	BankSpecial
)

func (b VarBank) String() string {
	switch b {
	case BankOrdinary:
		return "ordinary"
	case BankQuery:
		return "query"
	case BankResult:
		return "result"
	case BankSpecial:
		return "special"
	default:
		return "unknown-bank"
	}
}

// VarKey identifies a variable uniquely within a run: its bank plus a
// per-bank dense counter.
type VarKey struct {
	Bank VarBank
	ID   uint32
}
