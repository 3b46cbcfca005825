package index

import "sort"

// childRepr tags which of the three representations spec §3 names a
// childCollection is currently using.
type childRepr uint8

const (
	reprArray childRepr = iota
	reprList
	reprSkip
)

// arrayToList is the fixed (non-configurable) point at which a small
// unsorted array becomes an unsorted list, per spec §3 "(i) a small
// unsorted array (≤4 entries)". Go slices already back both tiers
// identically — see DESIGN.md "child collection representations" for why
// reprArray/reprList stay distinct tags over one underlying scan-by-slice
// implementation rather than two different Go types.
const arrayToList = 4

type childEntry struct {
	key  topKey
	node *node
}

// Thresholds configures the list→skip-list promotion point, separately
// for nodes whose children are leaves versus nodes whose children are
// further internal nodes — the Open Question decision recorded in
// SPEC_FULL.md §4.2 (defaults leaf>5, internal>3).
type Thresholds struct {
	Leaf     int
	Internal int
}

// DefaultThresholds returns the defaults named in spec §6's option table.
func DefaultThresholds() Thresholds {
	return Thresholds{Leaf: 5, Internal: 3}
}

type childCollection struct {
	repr    childRepr
	entries []childEntry
}

func newChildCollection() *childCollection {
	return &childCollection{repr: reprArray}
}

func (c *childCollection) len() int { return len(c.entries) }

func (c *childCollection) find(key topKey) (*node, bool) {
	if c.repr == reprSkip {
		i := c.search(key)
		if i < len(c.entries) && c.entries[i].key == key {
			return c.entries[i].node, true
		}
		return nil, false
	}
	for _, e := range c.entries {
		if e.key == key {
			return e.node, true
		}
	}
	return nil, false
}

func (c *childCollection) search(key topKey) int {
	r := key.rank()
	return sort.Search(len(c.entries), func(i int) bool { return c.entries[i].key.rank() >= r })
}

// insert adds a new child under key, which must not already be present
// (substitution-tree insertion only calls insert after a failed find).
// promoteThreshold is Thresholds.Leaf or Thresholds.Internal depending on
// whether the children being collected are leaves.
func (c *childCollection) insert(key topKey, n *node, promoteThreshold int) {
	switch c.repr {
	case reprArray:
		c.entries = append(c.entries, childEntry{key: key, node: n})
		if len(c.entries) > arrayToList {
			c.repr = reprList
		}
	case reprList:
		c.entries = append(c.entries, childEntry{key: key, node: n})
		if len(c.entries) > promoteThreshold {
			c.promoteToSkip()
		}
	case reprSkip:
		i := c.search(key)
		c.entries = append(c.entries, childEntry{})
		copy(c.entries[i+1:], c.entries[i:])
		c.entries[i] = childEntry{key: key, node: n}
	}
}

func (c *childCollection) promoteToSkip() {
	sort.Slice(c.entries, func(i, j int) bool { return c.entries[i].key.rank() < c.entries[j].key.rank() })
	c.repr = reprSkip
}

func (c *childCollection) remove(key topKey) {
	if c.repr == reprSkip {
		i := c.search(key)
		if i < len(c.entries) && c.entries[i].key == key {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
		}
		return
	}
	for i, e := range c.entries {
		if e.key == key {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return
		}
	}
}

// all returns the children in the collection's storage order — insertion
// order for the array/list tiers, ascending top-symbol for the skip tier,
// matching spec §3's "ordered representations yield by ascending
// top-symbol" retrieval-order guarantee.
func (c *childCollection) all() []childEntry { return c.entries }
