package rainbow

import "encoding/binary"

// Reduce maps a digest back into the key space for chain column pos (spec
// §4.3). rho is the table-wide reduction offset. The addition is computed in
// natural wrapping uint64 arithmetic before the final mod N, matching the
// spec's "wrapping arithmetic... mod N then corrects".
func Reduce(h []byte, rho uint64, n uint64, pos uint64) uint64 {
	x := binary.LittleEndian.Uint64(h[:8])
	return (x + rho + pos) % n
}
