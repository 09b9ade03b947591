package packet

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/narrowmesh/core/hbfi"
	"github.com/narrowmesh/core/identity"
)

func mustIdentity(t *testing.T) identity.Private {
	t.Helper()
	id, err := identity.Generate(rand.Reader)
	if err != nil {
		t.Fatalf("identity.Generate: %v", err)
	}
	return id
}

func TestTransmuteCleartextRoundTrip(t *testing.T) {
	producer := mustIdentity(t)
	h := hbfi.New(producer.Public(), "app", "mod", "fun", "arg", 0)
	req := NewRequest(h)

	payload := bytes.Repeat([]byte{0xAB}, 100)
	resp, err := Transmute(producer, req, payload, 0, 1, rand.Reader)
	if err != nil {
		t.Fatalf("Transmute: %v", err)
	}
	if resp.Kind != KindResponseCleartext {
		t.Fatalf("Kind = %v, want KindResponseCleartext", resp.Kind)
	}

	if err := Verify(resp, producer.Public()); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	out, err := Open(resp, producer)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Fatalf("Open payload mismatch")
	}
}

func TestTransmuteEncryptedRoundTrip(t *testing.T) {
	producer := mustIdentity(t)
	consumer := mustIdentity(t)

	h := hbfi.New(producer.Public(), "app", "mod", "fun", "arg", 0).EncryptFor(consumer.Public())
	req := NewRequest(h)

	payload := []byte("secret fragment")
	resp, err := Transmute(producer, req, payload, 0, 1, rand.Reader)
	if err != nil {
		t.Fatalf("Transmute: %v", err)
	}
	if resp.Kind != KindResponseCiphertext {
		t.Fatalf("Kind = %v, want KindResponseCiphertext", resp.Kind)
	}

	if err := Verify(resp, producer.Public()); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	out, err := Open(resp, consumer)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Fatalf("Open payload mismatch")
	}

	if _, err := Open(resp, producer); err != ErrNotEncryptedForMe {
		t.Fatalf("Open by wrong identity = %v, want ErrNotEncryptedForMe", err)
	}
}

func TestResponseOnWireSizeEqualRegardlessOfEncryption(t *testing.T) {
	producer := mustIdentity(t)
	consumer := mustIdentity(t)

	clearHBFI := hbfi.New(producer.Public(), "app", "mod", "fun", "arg", 0)
	encHBFI := clearHBFI.EncryptFor(consumer.Public())

	clearResp, err := Transmute(producer, NewRequest(clearHBFI), []byte("x"), 0, 1, rand.Reader)
	if err != nil {
		t.Fatalf("Transmute cleartext: %v", err)
	}
	encResp, err := Transmute(producer, NewRequest(encHBFI), []byte("x"), 0, 1, rand.Reader)
	if err != nil {
		t.Fatalf("Transmute encrypted: %v", err)
	}

	clearBytes, err := Encode(NarrowWaist{Kind: clearResp.Kind, Response: &clearResp})
	if err != nil {
		t.Fatalf("Encode cleartext: %v", err)
	}
	encBytes, err := Encode(NarrowWaist{Kind: encResp.Kind, Response: &encResp})
	if err != nil {
		t.Fatalf("Encode encrypted: %v", err)
	}

	if len(clearBytes) != len(encBytes) {
		t.Fatalf("on-wire sizes differ: cleartext=%d ciphertext=%d", len(clearBytes), len(encBytes))
	}
}

func TestTransmutePayloadBoundary(t *testing.T) {
	producer := mustIdentity(t)
	h := hbfi.New(producer.Public(), "app", "mod", "fun", "arg", 0)
	req := NewRequest(h)

	ok := bytes.Repeat([]byte{1}, MaxPayload)
	if _, err := Transmute(producer, req, ok, 0, 1, rand.Reader); err != nil {
		t.Fatalf("Transmute at MaxPayload: %v", err)
	}

	tooBig := bytes.Repeat([]byte{1}, MaxPayload+1)
	if _, err := Transmute(producer, req, tooBig, 0, 1, rand.Reader); err != ErrPayloadTooLarge {
		t.Fatalf("Transmute over MaxPayload = %v, want ErrPayloadTooLarge", err)
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	producer := mustIdentity(t)
	other := mustIdentity(t)
	h := hbfi.New(producer.Public(), "app", "mod", "fun", "arg", 0)

	resp, err := Transmute(producer, NewRequest(h), []byte("x"), 0, 1, rand.Reader)
	if err != nil {
		t.Fatalf("Transmute: %v", err)
	}

	if err := Verify(resp, other.Public()); err != ErrInvalidSignature {
		t.Fatalf("Verify with wrong public key = %v, want ErrInvalidSignature", err)
	}
}

func TestNarrowWaistEncodeDecodeRequest(t *testing.T) {
	producer := mustIdentity(t)
	h := hbfi.New(producer.Public(), "app", "mod", "fun", "arg", 5)
	req := NewRequest(h)

	encoded, err := Encode(NarrowWaist{Kind: KindRequest, Request: &req})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Kind != KindRequest || decoded.Request == nil {
		t.Fatalf("decoded NarrowWaist is not a Request")
	}
	if !decoded.Request.HBFI.Equal(h) {
		t.Fatalf("decoded Request HBFI mismatch")
	}
}

func TestNarrowWaistEncodeDecodeResponse(t *testing.T) {
	producer := mustIdentity(t)
	h := hbfi.New(producer.Public(), "app", "mod", "fun", "arg", 0)
	resp, err := Transmute(producer, NewRequest(h), []byte("hello"), 0, 1, rand.Reader)
	if err != nil {
		t.Fatalf("Transmute: %v", err)
	}

	encoded, err := Encode(NarrowWaist{Kind: resp.Kind, Response: &resp})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Response == nil {
		t.Fatalf("decoded NarrowWaist is not a Response")
	}
	if err := Verify(*decoded.Response, producer.Public()); err != nil {
		t.Fatalf("Verify decoded response: %v", err)
	}
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	producer := mustIdentity(t)
	h := hbfi.New(producer.Public(), "app", "mod", "fun", "arg", 0)
	req := NewRequest(h)
	encoded, err := Encode(NarrowWaist{Kind: KindRequest, Request: &req})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	encoded[1] = 0xFF // corrupt the low byte of the kind tag

	if _, err := Decode(encoded); err != ErrTypeTagUnknown {
		t.Fatalf("Decode with unknown kind = %v, want ErrTypeTagUnknown", err)
	}
}
