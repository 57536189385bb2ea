package rtio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sm3rainbow/sm3rainbow/rainbow"
)

func testTable(t *testing.T) *rainbow.Table {
	t.Helper()
	ks, err := rainbow.NewKeySpace([]byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"), 5, 6)
	if err != nil {
		t.Fatal(err)
	}
	chains := make([]rainbow.Chain, 0, 1000)
	scratch := rainbow.NewScratch(ks)
	for i := uint64(0); i < 1000; i++ {
		chains = append(chains, rainbow.Build(ks, i, 200, 0, scratch))
	}
	tb := &rainbow.Table{KeySpace: ks, ChainLen: 200, TableIndex: 0, Chains: chains}
	tb.Sort()
	tb.Dedup()
	return tb
}

func TestWriteOpenRoundTrip(t *testing.T) {
	tb := testTable(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "table.dat")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteTable(f, tb); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	mapped, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer mapped.Close()

	if !mapped.Header.IsValid() {
		t.Fatal("mapped header is not valid")
	}
	if mapped.Header.NumChain != uint64(len(tb.Chains)) {
		t.Fatalf("NumChain = %d, want %d", mapped.Header.NumChain, len(tb.Chains))
	}
	if !bytes.Equal(mapped.Charset, tb.KeySpace.Charset) {
		t.Fatalf("charset mismatch: %q != %q", mapped.Charset, tb.KeySpace.Charset)
	}
	if mapped.Len() != len(tb.Chains) {
		t.Fatalf("Len() = %d, want %d", mapped.Len(), len(tb.Chains))
	}

	// (a) tails strictly increasing in file order.
	for i := 1; i < mapped.Len(); i++ {
		if mapped.ChainAt(i-1).Tail >= mapped.ChainAt(i).Tail {
			t.Fatalf("tails not strictly increasing at %d", i)
		}
	}

	// (c) re-reading the file yields the same chain sequence bit-for-bit.
	for i, want := range tb.Chains {
		got := mapped.ChainAt(i)
		if got != want {
			t.Fatalf("chain %d: got %+v, want %+v", i, got, want)
		}
	}
}

func TestOpenRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.dat")
	buf := make([]byte, HeaderSize+8)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Fatal("expected error opening table with zeroed header")
	}
}

func TestProbe(t *testing.T) {
	tb := testTable(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "table.dat")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteTable(f, tb); err != nil {
		t.Fatal(err)
	}
	f.Close()

	mapped, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer mapped.Close()

	want := tb.Chains[len(tb.Chains)/2]
	got, idx, ok := mapped.Probe(want.Tail)
	if !ok || got != want {
		t.Fatalf("Probe(%d) = %+v, %d, %v; want %+v", want.Tail, got, idx, ok, want)
	}
}
