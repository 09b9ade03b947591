/*
File Name:  Packet.go

Packet defines the Narrow-Waist contract: Request and Response, the
only two packet shapes every component in the forwarding core agrees
on. Construction, verification and opening are kept as free functions
rather than methods with side effects, mirroring the producer/consumer
split in the component design: a producer builds and signs, a router
only ever reads, and a consumer alone can open.
*/

package packet

import "errors"

// FragmentSize is the fixed size of a Response's data field. Every
// Response serializes to the same number of bytes regardless of
// whether its data field holds cleartext or AEAD ciphertext, which is
// what defeats size-based traffic analysis on the wire.
const FragmentSize = 1024

// MaxPayload is the largest payload transmute() accepts: two bytes of
// FragmentSize are reserved for the big-endian effective-length tail.
const MaxPayload = FragmentSize - 2

// NonceSize is the wire size of a Response's nonce field.
const NonceSize = 8

// SignatureSize is the wire size of a Response's Ed25519 signature.
const SignatureSize = 64

// TagSize is the wire size of a Response's AEAD tag field. It is
// present and zero-filled even for cleartext Responses, preserving
// the uniform on-wire size invariant.
const TagSize = 16

// Kind discriminates a Narrow-Waist packet's wire shape.
type Kind uint16

const (
	KindRequest            Kind = 0
	KindResponseCleartext  Kind = 1
	KindResponseCiphertext Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "Request"
	case KindResponseCleartext:
		return "ResponseCleartext"
	case KindResponseCiphertext:
		return "ResponseCiphertext"
	default:
		return "Unknown"
	}
}

var (
	// ErrPayloadTooLarge is returned by Transmute when the payload
	// exceeds MaxPayload.
	ErrPayloadTooLarge = errors.New("packet: payload exceeds maximum fragment payload size")

	// ErrInvalidSignature is returned by Verify on a bad Ed25519 signature.
	ErrInvalidSignature = errors.New("packet: invalid signature")

	// ErrSizeMismatch is returned when a wire buffer does not match an
	// expected fixed size.
	ErrSizeMismatch = errors.New("packet: size mismatch")

	// ErrTypeTagUnknown is returned on an unrecognized kind tag.
	ErrTypeTagUnknown = errors.New("packet: unknown type tag")

	// ErrAeadAuth is returned by Open when the AEAD tag fails to verify.
	ErrAeadAuth = errors.New("packet: AEAD authentication failed")

	// ErrNotEncryptedForMe is returned by Open when the Response is not
	// an encrypted Response addressed to the caller's identity.
	ErrNotEncryptedForMe = errors.New("packet: response not encrypted for this identity")
)
