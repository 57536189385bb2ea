package sm3

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"testing"
)

type vector struct {
	input string // hex
	want  string // hex
}

// Source: the OSCCA/CFRG draft example, and the zero-length empty-input case.
var testVectors = []vector{
	{
		input: "616263",
		want:  "66c7f0f462eeedd9d1f2d46bdc10e4e24167c4875cf2f7a2297da02b8f4ba8e0",
	},
	{
		input: "",
		want:  "1ab21d8355cfa17f8e61194831e81a8f22bec8c728fefb747ed035eb5082aa2b",
	},
}

func TestVectors(t *testing.T) {
	for _, v := range testVectors {
		in, err := hex.DecodeString(v.input)
		if err != nil {
			t.Fatal(err)
		}
		want, err := hex.DecodeString(v.want)
		if err != nil {
			t.Fatal(err)
		}
		got := Sum(in)
		if !bytes.Equal(got[:], want) {
			t.Errorf("Sum(%q) = %x, want %x", v.input, got, want)
		}
		gotRef := ReferenceSum(in)
		if !bytes.Equal(gotRef[:], want) {
			t.Errorf("ReferenceSum(%q) = %x, want %x", v.input, gotRef, want)
		}
	}
}

func TestTwoBlockPadding(t *testing.T) {
	// A 64-byte input exercises the two-block padding path: the message
	// alone fills the first block and padding spills into a second.
	data := bytes.Repeat([]byte{0x61}, 64)
	got := Sum(data)
	want := ReferenceSum(data)
	if got != want {
		t.Errorf("Sum/ReferenceSum disagree on 64-byte input: %x != %x", got, want)
	}
}

func TestSumIntoMatchesSum(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	want := Sum(data)
	var got [Size]byte
	SumInto(data, &got)
	if got != want {
		t.Errorf("SumInto = %x, want %x", got, want)
	}
}

func TestNativeMatchesReferenceRandom(t *testing.T) {
	for i := 0; i < 100; i++ {
		var lenBuf [2]byte
		if _, err := rand.Read(lenBuf[:]); err != nil {
			t.Fatal(err)
		}
		n := int(lenBuf[0])<<8 | int(lenBuf[1])
		data := make([]byte, n)
		if n > 0 {
			if _, err := rand.Read(data); err != nil {
				t.Fatal(err)
			}
		}
		native := Sum(data)
		reference := ReferenceSum(data)
		if native != reference {
			t.Fatalf("mismatch at length %d: native=%x reference=%x", n, native, reference)
		}
	}
}
