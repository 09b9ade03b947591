/*
File Name:  AEAD.go

Payload AEAD seals a Response's data field to the requester that asked
for it. This is independent of the link-layer AEAD the wire package
applies (see the design note on not conflating the two keys): each
uses its own HKDF info string over the same underlying X25519 shared
secret shape, so a compromise of one derived key says nothing about
the other.
*/

package packet

import (
	"crypto/cipher"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// newXChaCha constructs an XChaCha20-Poly1305 AEAD from a derived key.
func newXChaCha(key []byte) (cipher.AEAD, error) {
	return chacha20poly1305.NewX(key)
}

const aeadKeyInfo = "narrowwaist/packet/payload-aead"

// deriveAEADKey turns a raw X25519 shared secret into a symmetric key
// for payload AEAD via HKDF-SHA256.
func deriveAEADKey(secret [32]byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, secret[:], nil, []byte(aeadKeyInfo))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// expandNonce widens an 8-byte wire nonce to the 24 bytes
// XChaCha20-Poly1305 requires. The wire format fixes the on-wire nonce
// at 8 bytes (§6); uniqueness per encryption is the caller's
// responsibility (transmute always draws a fresh 8-byte nonce), so
// zero-extension is sufficient and keeps the expansion reversible for
// inspection.
func expandNonce(nonce [NonceSize]byte) []byte {
	out := make([]byte, chacha20poly1305.NonceSizeX)
	copy(out, nonce[:])
	return out
}
