/*
File Name:  AEAD.go

Link-layer AEAD seals the narrow-waist payload between two brokers
that know each other's public identity, for traffic-analysis
resistance independent of any payload-level AEAD applied by a
producer (see the design note on not conflating the two keys). It uses
its own HKDF info string over the X25519 shared secret so this key is
never equal to packet.deriveAEADKey's.
*/

package wire

import (
	"crypto/cipher"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

func newXChaCha(key []byte) (cipher.AEAD, error) {
	return chacha20poly1305.NewX(key)
}

const linkAEADKeyInfo = "narrowwaist/wire/link-aead"

func deriveLinkKey(secret [32]byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, secret[:], nil, []byte(linkAEADKeyInfo))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

func expandLinkNonce(nonce [8]byte) []byte {
	out := make([]byte, chacha20poly1305.NonceSizeX)
	copy(out, nonce[:])
	return out
}
