package rainbow

import "github.com/sm3rainbow/sm3rainbow/sm3"

// Chain is a rainbow chain, the pair (Head, Tail) described in spec §3.
// Table orders, dedups and probes chains by Tail only (see Table), while Go's
// == on Chain compares both Head and Tail; the tail-only comparison is
// written out at the call sites that depend on it rather than hidden behind
// an Equal method.
type Chain struct {
	Head uint64
	Tail uint64
}

// Observer inspects each digest produced while traversing a chain. It
// returns true to stop traversal early, in which case Traverse returns the
// index that produced h (i.e. it does not apply the reduction for that
// step). Lookup uses this to recover the plaintext that hashes to a target
// digest; chain construction passes a nil observer that never stops.
type Observer func(h *[sm3.Size]byte, plaintext []byte, length int) (stop bool)

// Scratch holds the per-task buffers a chain traversal needs: a plaintext
// buffer sized for the widest plaintext in the key space, and a digest
// buffer. Callers create one Scratch per goroutine and reuse it across
// traversals — this is the bound in spec §5 ("per-task scratch buffers...
// all stack-allocable").
type Scratch struct {
	Plaintext []byte
	Digest    [sm3.Size]byte
}

// NewScratch allocates a Scratch sized for ks.
func NewScratch(ks *KeySpace) *Scratch {
	return &Scratch{Plaintext: make([]byte, ks.MaxLen)}
}

// Traverse runs H∘R from head for length steps, starting at column
// startPos, and returns the resulting index (spec §4.4). observe may be nil.
func Traverse(ks *KeySpace, head uint64, startPos, length uint64, rho uint64, observe Observer, scratch *Scratch) uint64 {
	index := head
	for pos := startPos; pos < startPos+length; pos++ {
		n := ks.Plaintext(index, scratch.Plaintext)
		sm3.SumInto(scratch.Plaintext[:n], &scratch.Digest)

		if observe != nil && observe(&scratch.Digest, scratch.Plaintext[:n], n) {
			return index
		}
		index = Reduce(scratch.Digest[:], rho, ks.N, pos)
	}
	return index
}

// Build constructs the chain rooted at head by traversing length steps from
// column 0 (spec §4.4, Chain::build).
func Build(ks *KeySpace, head uint64, length uint64, rho uint64, scratch *Scratch) Chain {
	tail := Traverse(ks, head, 0, length, rho, nil, scratch)
	return Chain{Head: head, Tail: tail}
}
