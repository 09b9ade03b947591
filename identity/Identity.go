/*
File Name:  Identity.go

Identity derives a signing keypair and a key-agreement keypair from a
single 32-byte seed. A long-term identity is one Ed25519 keypair (the
routable name fed into HBFI hashing and the Ed25519 verification key
for Response signatures) plus one X25519 keypair used for
Diffie-Hellman key agreement (link-layer AEAD and payload AEAD to a
requester). The two keypairs are independently derived: the Ed25519
key follows RFC 8032's own seed expansion, while the X25519 scalar is
pulled from a domain-separated HKDF-SHA256 stream over the same seed,
so the two private scalars never share a bit of derivation material
even though both trace back to one seed. Public therefore carries both
public keys concatenated (64 bytes): a peer cannot derive one from the
other, so both travel together wherever a producer/consumer/link
identity is published.
*/

package identity

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"io"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

// signingSize and agreementSize are the two halves of a Public value.
const (
	signingSize   = 32
	agreementSize = 32
	// Size is the length in bytes of a Public identity: the Ed25519
	// verification key followed by the X25519 agreement key.
	Size = signingSize + agreementSize
	// SeedSize is the length in bytes of the seed FromSeed and Generate
	// consume, the standard Ed25519 seed length.
	SeedSize = signingSize
)

// agreementInfo domain-separates the X25519 scalar's HKDF stream from
// every other use of the seed, so it shares no derivation step with
// the Ed25519 signing scalar RFC 8032 computes from the same seed.
var agreementInfo = []byte("narrowmesh/identity/x25519-agreement/v1")

// Public is a 64-byte public identity: a 32-byte Ed25519 public key
// (used as a routable producer/consumer name component and fed into
// HBFI hashing) followed by a 32-byte X25519 public key (used for key
// agreement). The two halves are independently derived and neither is
// recoverable from the other.
type Public [Size]byte

func (p Public) signingKey() ed25519.PublicKey {
	return ed25519.PublicKey(p[:signingSize])
}

func (p Public) agreementKey() []byte {
	return p[signingSize:]
}

// String returns the lower-case hex encoding, the canonical textual
// form referenced by spec.md §4.1 for HBFI hashing inputs.
func (p Public) String() string {
	return hex.EncodeToString(p[:])
}

// IsZero reports whether the public identity is the zero value, used
// to detect an absent (cleartext) request_pid.
func (p Public) IsZero() bool {
	return p == Public{}
}

// Private is a long-term private identity: its Ed25519 signing key,
// its independently-derived X25519 agreement scalar, and the combined
// Public the two correspond to.
type Private struct {
	signing   ed25519.PrivateKey
	agreement [agreementSize]byte
	public    Public
}

// FromSeed derives a Private identity from a 32-byte seed. The same
// seed always derives the same Private identity (determinism is
// required so peers can be re-instantiated from a saved seed).
func FromSeed(seed [SeedSize]byte) (Private, error) {
	signingKey := ed25519.NewKeyFromSeed(seed[:])

	// Independent of the Ed25519 scalar above: a fresh HKDF-SHA256
	// stream over the seed, domain-separated by agreementInfo, so
	// nothing the signing derivation computes leaks into this one.
	var agreement [agreementSize]byte
	kdf := hkdf.New(sha256.New, seed[:], nil, agreementInfo)
	if _, err := io.ReadFull(kdf, agreement[:]); err != nil {
		return Private{}, err
	}

	agreementPublic, err := curve25519.X25519(agreement[:], curve25519.Basepoint)
	if err != nil {
		return Private{}, err
	}

	var pub Public
	copy(pub[:signingSize], signingKey.Public().(ed25519.PublicKey))
	copy(pub[signingSize:], agreementPublic)

	return Private{signing: signingKey, agreement: agreement, public: pub}, nil
}

// Generate creates a new random Private identity.
func Generate(rand io.Reader) (Private, error) {
	var seed [SeedSize]byte
	if _, err := io.ReadFull(rand, seed[:]); err != nil {
		return Private{}, err
	}
	return FromSeed(seed)
}

// Public returns the public identity (Ed25519 + X25519 public keys).
func (p Private) Public() Public {
	return p.public
}

// Sign signs data with the Ed25519 signing key, returning a 64-byte
// signature as required by the wire format (§6).
func (p Private) Sign(data []byte) []byte {
	return ed25519.Sign(p.signing, data)
}

// SharedSecret performs X25519 key agreement between this identity's
// agreement scalar and a remote public identity's agreement key,
// returning a 32-byte raw DH output. Callers must run this through
// HKDF before using it as an AEAD key (see packet.deriveAEADKey and
// wire.deriveLinkKey).
func (p Private) SharedSecret(remote Public) ([32]byte, error) {
	out, err := curve25519.X25519(p.agreement[:], remote.agreementKey())
	if err != nil {
		return [32]byte{}, err
	}
	var secret [32]byte
	copy(secret[:], out)
	return secret, nil
}

// Verify checks an Ed25519 signature against a claimed public
// identity. The core never implies verification; callers must call
// this explicitly (spec.md §3 Identity invariant).
func Verify(signer Public, data, signature []byte) bool {
	if len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(signer.signingKey(), data, signature)
}
