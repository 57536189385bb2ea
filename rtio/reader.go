package rtio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sort"

	"github.com/edsrzf/mmap-go"

	"github.com/sm3rainbow/sm3rainbow/rainbow"
)

// MappedTable is a table file opened read-only and memory-mapped, per spec
// §4.7 step 1. The chain array is never copied into a Go slice; ChainAt and
// Probe index straight into the mapping.
type MappedTable struct {
	Path    string
	Header  Header
	Charset []byte

	data   mmap.MMap // whole file
	file   *os.File
	chains []byte // the chain-array region of data
}

// Open opens and memory-maps path, reads its header and charset, and
// validates the header (spec §4.7 step 1).
func Open(path string) (*MappedTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rtio: open %s: %w", path, err)
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("rtio: mmap %s: %w", path, err)
	}

	header, err := UnmarshalHeader(m)
	if err != nil {
		m.Unmap()
		f.Close()
		return nil, fmt.Errorf("rtio: %s: %w", path, err)
	}
	if !header.IsValid() {
		m.Unmap()
		f.Close()
		return nil, fmt.Errorf("rtio: %s: %w", path, ErrHeaderInvalid)
	}

	charsetStart := HeaderSize
	charsetEnd := charsetStart + int(header.CharsetLength)
	dataOffset := int(DataOffset(int(header.CharsetLength)))
	wantLen := dataOffset + int(header.NumChain)*chainRecordSize
	if charsetEnd > len(m) || wantLen > len(m) {
		m.Unmap()
		f.Close()
		return nil, fmt.Errorf("rtio: %s: %w: file too short for declared chain count", path, ErrHeaderInvalid)
	}

	charset := make([]byte, header.CharsetLength)
	copy(charset, m[charsetStart:charsetEnd])

	return &MappedTable{
		Path:    path,
		Header:  header,
		Charset: charset,
		data:    m,
		file:    f,
		chains:  m[dataOffset:wantLen],
	}, nil
}

// Close releases the mapping and the underlying file descriptor. The
// mapping must outlive every task that views it (spec §5); callers are
// responsible for joining outstanding lookups before calling Close.
func (t *MappedTable) Close() error {
	if err := t.data.Unmap(); err != nil {
		t.file.Close()
		return fmt.Errorf("rtio: unmap %s: %w", t.Path, err)
	}
	return t.file.Close()
}

// Len returns the number of chains in the table.
func (t *MappedTable) Len() int {
	return len(t.chains) / chainRecordSize
}

// ChainAt decodes the chain at index i directly from the mapping.
func (t *MappedTable) ChainAt(i int) rainbow.Chain {
	off := i * chainRecordSize
	return rainbow.Chain{
		Head: binary.LittleEndian.Uint64(t.chains[off : off+8]),
		Tail: binary.LittleEndian.Uint64(t.chains[off+8 : off+16]),
	}
}

// Probe binary-searches the mapped, tail-sorted chain array (spec §4.5
// "Lookup probe"), without materializing the table in memory.
func (t *MappedTable) Probe(tail uint64) (rainbow.Chain, int, bool) {
	n := t.Len()
	i := sort.Search(n, func(i int) bool {
		return t.ChainAt(i).Tail >= tail
	})
	if i < n {
		if c := t.ChainAt(i); c.Tail == tail {
			return c, i, true
		}
	}
	return rainbow.Chain{}, -1, false
}

// SameParameters reports whether t and other share identical header
// parameters and charset, the consistency check spec §4.7 step 1 requires
// across a batch of tables.
func (t *MappedTable) SameParameters(other *MappedTable) bool {
	return t.Header == other.Header && bytes.Equal(t.Charset, other.Charset)
}
