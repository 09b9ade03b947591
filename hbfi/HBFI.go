/*
File Name:  HBFI.go

HBFI is the Hierarchical Bloom-Filter Index: the name every Request
and Response carries. Only the hashed form travels on the wire (six
BFIs plus the two public identities and the fragment offset); the
cleartext name components (app/module/function/argument) exist only
at the peer that constructs the HBFI and are never reconstructible
from the wire form.
*/

package hbfi

import (
	"encoding/binary"
	"errors"

	"github.com/narrowmesh/core/identity"
)

// ErrShortBuffer is returned when a wire buffer is too small to decode.
var ErrShortBuffer = errors.New("hbfi: buffer too short")

// Size is the exact wire-encoded length of an HBFI: two public
// identities (each identity.Size bytes: an Ed25519 verification key
// plus an independently-derived X25519 agreement key), six 8-byte
// BFIs, one 8-byte offset.
const Size = 2*identity.Size + 6*BFISize + 8

// HBFI is the hierarchical bloom-filter index of a name.
type HBFI struct {
	ResponsePID identity.Public // producer identity; always present
	RequestPID  identity.Public // requester identity; zero value means absent (cleartext)

	ReqBFI BFI // fingerprint of RequestPID's textual form, zero when cleartext
	ResBFI BFI // fingerprint of ResponsePID's textual form
	AppBFI BFI
	ModBFI BFI
	FunBFI BFI
	ArgBFI BFI

	Offset uint64
}

// New constructs a cleartext HBFI (no requester identity) from a
// producer identity, the four name levels, and a fragment offset.
func New(responsePID identity.Public, app, module, function, argument string, offset uint64) HBFI {
	return HBFI{
		ResponsePID: responsePID,
		ResBFI:      computeBFI(responsePID.String()),
		AppBFI:      computeBFI(app),
		ModBFI:      computeBFI(module),
		FunBFI:      computeBFI(function),
		ArgBFI:      computeBFI(argument),
		Offset:      offset,
	}
}

// EncryptFor returns a copy of h with the requester identity filled in
// and the request-pid BFI recomputed. The producer, on receiving a
// Request with this HBFI, must encrypt the Response to requester.
func (h HBFI) EncryptFor(requester identity.Public) HBFI {
	out := h
	out.RequestPID = requester
	out.ReqBFI = computeBFI(requester.String())
	return out
}

// CleartextRepr returns a copy of h with the requester identity and
// its BFI zeroed, the canonical form for an unencrypted fetch.
func (h HBFI) CleartextRepr() HBFI {
	out := h
	out.RequestPID = identity.Public{}
	out.ReqBFI = BFI{}
	return out
}

// IsEncrypted reports whether this HBFI names an encrypted Response.
func (h HBFI) IsEncrypted() bool {
	return !h.RequestPID.IsZero()
}

// Key is the keys-only view of an HBFI: all six BFIs, ignoring offset.
// Adjacent fragments of one stream share a Key, which is how
// per-neighbor blooms treat a whole stream as one slot.
type Key [6]BFI

// KeysOnly returns the keys-only view used by per-neighbor blooms.
func (h HBFI) KeysOnly() Key {
	return Key{h.ReqBFI, h.ResBFI, h.AppBFI, h.ModBFI, h.FunBFI, h.ArgBFI}
}

// FullKey is the exact-match view used by the Response Cache: the
// keys-only view plus the fragment offset.
type FullKey struct {
	Keys   Key
	Offset uint64
}

// Full returns the exact-match key used by the Response Cache.
func (h HBFI) Full() FullKey {
	return FullKey{Keys: h.KeysOnly(), Offset: h.Offset}
}

// Vector returns the six BFIs in a fixed order, the input to the
// classifier's classify/train/super_train operations.
func (h HBFI) Vector() [6]BFI {
	return [6]BFI{h.ReqBFI, h.ResBFI, h.AppBFI, h.ModBFI, h.FunBFI, h.ArgBFI}
}

// Equal compares two HBFIs by their keys-only view plus offset, the
// "all BFIs and the offset" equality the data model calls for.
func (h HBFI) Equal(other HBFI) bool {
	return h.Full() == other.Full()
}

// Encode serializes h to its Size-byte wire form.
func (h HBFI) Encode() []byte {
	out := make([]byte, Size)
	o := 0
	copy(out[o:o+identity.Size], h.ResponsePID[:])
	o += identity.Size
	copy(out[o:o+identity.Size], h.RequestPID[:])
	o += identity.Size
	for _, b := range []BFI{h.ReqBFI, h.ResBFI, h.AppBFI, h.ModBFI, h.FunBFI, h.ArgBFI} {
		copy(out[o:o+BFISize], b.Encode())
		o += BFISize
	}
	binary.BigEndian.PutUint64(out[o:o+8], h.Offset)
	return out
}

// Decode reads an HBFI from its Size-byte wire form.
func Decode(buf []byte) (HBFI, error) {
	if len(buf) != Size {
		return HBFI{}, ErrShortBuffer
	}
	var h HBFI
	o := 0
	copy(h.ResponsePID[:], buf[o:o+identity.Size])
	o += identity.Size
	copy(h.RequestPID[:], buf[o:o+identity.Size])
	o += identity.Size

	fields := []*BFI{&h.ReqBFI, &h.ResBFI, &h.AppBFI, &h.ModBFI, &h.FunBFI, &h.ArgBFI}
	for _, f := range fields {
		v, err := DecodeBFI(buf[o : o+BFISize])
		if err != nil {
			return HBFI{}, err
		}
		*f = v
		o += BFISize
	}
	h.Offset = binary.BigEndian.Uint64(buf[o : o+8])
	return h, nil
}
