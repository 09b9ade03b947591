package hbfi

import (
	"bytes"
	"testing"

	"github.com/narrowmesh/core/identity"
)

func testPublic(b byte) identity.Public {
	var p identity.Public
	for i := range p {
		p[i] = b
	}
	return p
}

func TestComputeBFIDeterministic(t *testing.T) {
	a := computeBFI("hello")
	b := computeBFI("hello")
	if a != b {
		t.Fatalf("computeBFI not deterministic: %v != %v", a, b)
	}

	c := computeBFI("world")
	if a == c {
		t.Fatalf("computeBFI collided on distinct inputs (statistically unexpected): %v", a)
	}
}

func TestHBFICleartextRoundTrip(t *testing.T) {
	producer := testPublic(0x01)
	h := New(producer, "app", "mod", "fun", "arg", 42)

	if h.IsEncrypted() {
		t.Fatalf("fresh HBFI from New must be cleartext")
	}
	if h.ReqBFI != (BFI{}) {
		t.Fatalf("cleartext HBFI must have a zero ReqBFI")
	}

	encoded := h.Encode()
	if len(encoded) != Size {
		t.Fatalf("encoded length = %d, want %d", len(encoded), Size)
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !decoded.Equal(h) {
		t.Fatalf("decoded HBFI does not equal original")
	}
}

func TestHBFIEncryptFor(t *testing.T) {
	producer := testPublic(0x01)
	requester := testPublic(0x02)

	clear := New(producer, "app", "mod", "fun", "arg", 0)
	enc := clear.EncryptFor(requester)

	if !enc.IsEncrypted() {
		t.Fatalf("EncryptFor result must report IsEncrypted")
	}
	if enc.RequestPID != requester {
		t.Fatalf("EncryptFor must set RequestPID")
	}
	if enc.ReqBFI == (BFI{}) {
		t.Fatalf("EncryptFor must recompute a non-zero ReqBFI")
	}

	back := enc.CleartextRepr()
	if back.IsEncrypted() {
		t.Fatalf("CleartextRepr must zero the requester")
	}
	if !back.Equal(clear) {
		t.Fatalf("CleartextRepr round trip does not match original cleartext form")
	}
}

func TestHBFIKeysOnlyIgnoresOffset(t *testing.T) {
	producer := testPublic(0x03)
	h0 := New(producer, "app", "mod", "fun", "arg", 0)
	h1 := New(producer, "app", "mod", "fun", "arg", 1)

	if h0.Equal(h1) {
		t.Fatalf("Equal must distinguish different offsets")
	}
	if h0.KeysOnly() != h1.KeysOnly() {
		t.Fatalf("KeysOnly must ignore the offset")
	}
}

func TestDecodeRejectsShortBuffer(t *testing.T) {
	if _, err := Decode(make([]byte, Size-1)); err != ErrShortBuffer {
		t.Fatalf("Decode on short buffer = %v, want ErrShortBuffer", err)
	}
}

func TestBFIEncodeDecodeRoundTrip(t *testing.T) {
	b := computeBFI("round-trip")
	encoded := b.Encode()
	decoded, err := DecodeBFI(encoded)
	if err != nil {
		t.Fatalf("DecodeBFI: %v", err)
	}
	if decoded != b {
		t.Fatalf("decoded BFI = %v, want %v", decoded, b)
	}
	if !bytes.Equal(encoded, decoded.Encode()) {
		t.Fatalf("re-encoding decoded BFI produced different bytes")
	}
}
