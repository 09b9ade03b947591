/*
File Name:  LinkPacket.go

LinkPacket is the on-wire frame carried between two Links: a reply-to
address, the sender's link public identity, a nonce, and a
Narrow-Waist payload that is link-layer AEAD sealed whenever the
caller supplies the peer's public identity, and sent in the clear
otherwise. Headers (reply-to, link_tx_pid, nonce) are always
cleartext; a recipient needs them before it can derive the key to open
a sealed payload.
*/

package wire

import (
	"crypto/rand"
	"io"

	"github.com/narrowmesh/core/identity"
	"github.com/narrowmesh/core/packet"
)

// HeaderSize is the size of a LinkPacket's always-cleartext header:
// reply-to tag + body, the sender's link public identity, and the
// nonce.
const HeaderSize = 2 + ReplyToBodySize + identity.Size + 8

// MaxFrameSize is the IPv6-MTU-derived ceiling from §6. FRAGMENT_SIZE
// Responses routinely exceed it once FEC and headers are added; Encode
// does not refuse to build an oversize frame (dropping a Response a
// consumer is waiting on is worse than sending one fragmented at the
// UDP layer), but callers should log when EncodedSize() exceeds this so
// operators can see the overage (see DESIGN.md).
const MaxFrameSize = 1472

// LinkPacket is the decoded form of an on-wire frame.
type LinkPacket struct {
	ReplyTo   ReplyTo
	LinkTxPID identity.Public
	Nonce     [8]byte
	Payload   packet.NarrowWaist
}

// EncodedSize reports the pre-FEC byte size Encode will produce for a
// LinkPacket carrying payload, sealed or not (sealing adds a 16-byte
// Poly1305 tag).
func EncodedSize(payload packet.NarrowWaist, sealed bool) int {
	n := HeaderSize + payload.EncodedSize()
	if sealed {
		n += 16
	}
	return n
}

// Encode serializes lp. When peerPublic is non-nil, the Narrow-Waist
// payload is sealed under link-layer AEAD using the shared secret
// between localPrivate and peerPublic; otherwise it is sent in the
// clear (still to be FEC-coded by the caller).
func Encode(lp LinkPacket, localPrivate identity.Private, peerPublic *identity.Public) ([]byte, error) {
	payloadBytes, err := packet.Encode(lp.Payload)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, HeaderSize+len(payloadBytes)+16)
	out = append(out, lp.ReplyTo.Encode()...)
	out = append(out, lp.LinkTxPID[:]...)
	out = append(out, lp.Nonce[:]...)

	if peerPublic != nil {
		secret, err := localPrivate.SharedSecret(*peerPublic)
		if err != nil {
			return nil, err
		}
		key, err := deriveLinkKey(secret)
		if err != nil {
			return nil, err
		}
		aead, err := newXChaCha(key)
		if err != nil {
			return nil, err
		}
		sealed := aead.Seal(nil, expandLinkNonce(lp.Nonce), payloadBytes, nil)
		out = append(out, sealed...)
	} else {
		out = append(out, payloadBytes...)
	}

	return out, nil
}

// Decode parses a LinkPacket. When peerPublic is non-nil, the payload
// is assumed sealed under link-layer AEAD and is opened before
// parsing; a failed open returns ErrAeadAuth.
func Decode(buf []byte, localPrivate identity.Private, peerPublic *identity.Public) (LinkPacket, error) {
	if len(buf) < HeaderSize {
		return LinkPacket{}, ErrSizeMismatch
	}

	replyTo, err := DecodeReplyTo(buf[0 : 2+ReplyToBodySize])
	if err != nil {
		return LinkPacket{}, err
	}
	o := 2 + ReplyToBodySize

	var lp LinkPacket
	lp.ReplyTo = replyTo
	copy(lp.LinkTxPID[:], buf[o:o+identity.Size])
	o += identity.Size
	copy(lp.Nonce[:], buf[o:o+8])
	o += 8

	body := buf[o:]
	var payloadBytes []byte
	if peerPublic != nil {
		secret, err := localPrivate.SharedSecret(*peerPublic)
		if err != nil {
			return LinkPacket{}, err
		}
		key, err := deriveLinkKey(secret)
		if err != nil {
			return LinkPacket{}, err
		}
		aead, err := newXChaCha(key)
		if err != nil {
			return LinkPacket{}, err
		}
		plain, err := aead.Open(nil, expandLinkNonce(lp.Nonce), body, nil)
		if err != nil {
			return LinkPacket{}, ErrAeadAuth
		}
		payloadBytes = plain
	} else {
		payloadBytes = body
	}

	nw, err := packet.Decode(payloadBytes)
	if err != nil {
		return LinkPacket{}, err
	}
	lp.Payload = nw

	return lp, nil
}

// FreshNonce draws a random 8-byte nonce for a new LinkPacket.
func FreshNonce() ([8]byte, error) {
	var n [8]byte
	if _, err := io.ReadFull(rand.Reader, n[:]); err != nil {
		return n, err
	}
	return n, nil
}
