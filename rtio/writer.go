package rtio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/sm3rainbow/sm3rainbow/rainbow"
)

// CheckOutputPath implements spec §4.6 step 2 ("resolve output path; refuse
// to overwrite unless forced") as an up-front check, so a caller can reject a
// pre-existing output file before doing any of step 3's chain generation
// work, matching the original `generate_rt.rs`'s `Path::exists` check before
// it ever builds a chain. CreateTable re-checks this atomically at write
// time regardless; this is a fail-fast probe, not the sole guard.
func CheckOutputPath(path string, force bool) error {
	if force {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("rtio: %s: %w", path, ErrOutputExists)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("rtio: stat %s: %w", path, err)
	}
	return nil
}

// CreateTable resolves path per spec §4.6 step 2: it refuses to overwrite an
// existing file unless force is set, then writes t to it.
func CreateTable(path string, force bool, t *rainbow.Table) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("rtio: %s: %w", path, ErrOutputExists)
		}
		return fmt.Errorf("rtio: create %s: %w", path, err)
	}
	if err := WriteTable(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteTable serializes t (header, charset, padding, chain array) to w in
// the format spec §6.1 describes.
func WriteTable(w io.Writer, t *rainbow.Table) error {
	header := Header{
		Magic:         Magic,
		NumChain:      uint64(len(t.Chains)),
		ChainLen:      t.ChainLen,
		TableIndex:    t.TableIndex,
		MinLength:     uint32(t.KeySpace.MinLen),
		MaxLength:     uint32(t.KeySpace.MaxLen),
		CharsetLength: uint64(len(t.KeySpace.Charset)),
	}
	if !header.IsValid() {
		return fmt.Errorf("%w: %+v", ErrHeaderInvalid, header)
	}

	charset := t.KeySpace.Charset
	if _, err := w.Write(header.Marshal()); err != nil {
		return fmt.Errorf("rtio: write header: %w", err)
	}
	if _, err := w.Write(charset); err != nil {
		return fmt.Errorf("rtio: write charset: %w", err)
	}
	if p := padding(len(charset)); p > 0 {
		if _, err := w.Write(make([]byte, p)); err != nil {
			return fmt.Errorf("rtio: write padding: %w", err)
		}
	}

	buf := make([]byte, chainRecordSize)
	for _, c := range t.Chains {
		binary.LittleEndian.PutUint64(buf[0:8], c.Head)
		binary.LittleEndian.PutUint64(buf[8:16], c.Tail)
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("rtio: write chain record: %w", err)
		}
	}
	return nil
}
