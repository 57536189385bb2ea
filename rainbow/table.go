package rainbow

import "sort"

// Table is a sorted collection of chains sharing identical parameters (spec
// §3, §4.5). Ordering and equality are by Tail only — duplicate tails are
// removed regardless of Head, because chains with the same tail cover
// overlapping suffixes and the shorter one is wasted coverage.
type Table struct {
	KeySpace   *KeySpace
	ChainLen   uint64
	Rho        uint64
	TableIndex uint64
	Chains     []Chain
}

// Sort orders Chains by Tail ascending. Chains compare only on Tail, so a
// stable sort buys nothing here: ties are resolved arbitrarily and then
// removed by Dedup.
func (t *Table) Sort() {
	sort.Slice(t.Chains, func(i, j int) bool {
		return t.Chains[i].Tail < t.Chains[j].Tail
	})
}

// Dedup removes adjacent chains with equal tails. Table must already be
// sorted. Returns the number of chains removed.
func (t *Table) Dedup() int {
	if len(t.Chains) == 0 {
		return 0
	}
	kept := t.Chains[:1]
	for _, c := range t.Chains[1:] {
		if c.Tail != kept[len(kept)-1].Tail {
			kept = append(kept, c)
		}
	}
	removed := len(t.Chains) - len(kept)
	t.Chains = kept
	return removed
}

// Probe binary-searches the sorted, deduped table for a chain whose Tail
// equals tail (spec §4.5, "Lookup probe"). The Head field plays no part in
// the comparison.
func (t *Table) Probe(tail uint64) (Chain, int, bool) {
	i := sort.Search(len(t.Chains), func(i int) bool {
		return t.Chains[i].Tail >= tail
	})
	if i < len(t.Chains) && t.Chains[i].Tail == tail {
		return t.Chains[i], i, true
	}
	return Chain{}, -1, false
}
