// Package rainbow implements the key-space bijection, reduction function,
// chain traversal and table algebra for SM3 rainbow tables (spec §3, §4.2-§4.5).
package rainbow

import "fmt"

// KeySpace is a bijection between a scalar index in [0, N) and a variable
// length plaintext drawn from Charset, for lengths in [MinLen, MaxLen].
//
// Cumulative holds the spec's L table: Cumulative[i] is the number of
// plaintexts of length <= i within the window, so len(Cumulative) ==
// MaxLen+1 and Cumulative[MaxLen] == N.
type KeySpace struct {
	Charset    []byte
	MinLen     int
	MaxLen     int
	Cumulative []uint64
	N          uint64

	index map[byte]int // Charset byte -> position, built lazily by Encode
}

// NewKeySpace builds the cumulative length table L for the given charset and
// [min, max] window and returns the resulting KeySpace.
func NewKeySpace(charset []byte, minLen, maxLen int) (*KeySpace, error) {
	if len(charset) == 0 {
		return nil, fmt.Errorf("rainbow: empty charset")
	}
	if minLen < 1 || minLen > maxLen {
		return nil, fmt.Errorf("rainbow: invalid length window [%d, %d]", minLen, maxLen)
	}

	c := uint64(len(charset))
	cumulative := make([]uint64, maxLen+1)
	for i := 1; i <= maxLen; i++ {
		cumulative[i] = cumulative[i-1]
		if i >= minLen {
			cumulative[i] += pow(c, uint64(i))
		}
	}

	return &KeySpace{
		Charset:    charset,
		MinLen:     minLen,
		MaxLen:     maxLen,
		Cumulative: cumulative,
		N:          cumulative[maxLen],
	}, nil
}

func pow(base, exp uint64) uint64 {
	result := uint64(1)
	for i := uint64(0); i < exp; i++ {
		result *= base
	}
	return result
}

// Plaintext decodes index into out (which must have length >= MaxLen) and
// returns the number of bytes written. Bytes in out beyond the returned
// length are left unspecified, per spec §4.2.
func (ks *KeySpace) Plaintext(index uint64, out []byte) int {
	length := ks.MaxLen
	for l := ks.MaxLen; l >= ks.MinLen; l-- {
		if index >= ks.Cumulative[l-1] {
			length = l
			break
		}
	}

	rem := index - ks.Cumulative[length-1]
	c := uint64(len(ks.Charset))
	for k := 0; k < length; k++ {
		out[k] = ks.Charset[rem%c]
		rem /= c
	}
	return length
}

// Encode is the inverse of Plaintext: it recovers the index for a plaintext
// of the given length. Used by tests to check the KeySpace bijection.
func (ks *KeySpace) Encode(plaintext []byte) (uint64, error) {
	length := len(plaintext)
	if length < ks.MinLen || length > ks.MaxLen {
		return 0, fmt.Errorf("rainbow: plaintext length %d outside window [%d, %d]", length, ks.MinLen, ks.MaxLen)
	}
	if ks.index == nil {
		ks.index = make(map[byte]int, len(ks.Charset))
		for i, b := range ks.Charset {
			ks.index[b] = i
		}
	}

	c := uint64(len(ks.Charset))
	var index uint64
	var multiplier uint64 = 1
	for k := 0; k < length; k++ {
		pos, ok := ks.index[plaintext[k]]
		if !ok {
			return 0, fmt.Errorf("rainbow: byte %q not in charset", plaintext[k])
		}
		index += uint64(pos) * multiplier
		multiplier *= c
	}
	return ks.Cumulative[length-1] + index, nil
}
