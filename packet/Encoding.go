/*
File Name:  Encoding.go

Encoding implements the NarrowWaistPacket wire layout from §6: a
16-bit kind tag followed by either a bare HBFI (Request) or the full
Response body. This is the payload the wire package's LinkPacket
carries, optionally under link-layer AEAD.
*/

package packet

import (
	"encoding/binary"

	"github.com/narrowmesh/core/hbfi"
)

// ResponseBodySize is the wire size of a Response's body, everything
// after kind_tag and hbfi.
const ResponseBodySize = NonceSize + FragmentSize + 8 + 8 + SignatureSize + TagSize

// NarrowWaist is the tagged union of Request and Response. Exactly one
// of Request or Response is set, selected by Kind.
type NarrowWaist struct {
	Kind     Kind
	Request  *Request
	Response *Response
}

// EncodedSize returns the wire size of nw.
func (nw NarrowWaist) EncodedSize() int {
	if nw.Kind == KindRequest {
		return 2 + hbfi.Size
	}
	return 2 + hbfi.Size + ResponseBodySize
}

// Encode serializes nw to its wire form.
func Encode(nw NarrowWaist) ([]byte, error) {
	out := make([]byte, 0, nw.EncodedSize())
	var kindBuf [2]byte

	switch nw.Kind {
	case KindRequest:
		if nw.Request == nil {
			return nil, ErrTypeTagUnknown
		}
		binary.BigEndian.PutUint16(kindBuf[:], uint16(KindRequest))
		out = append(out, kindBuf[:]...)
		out = append(out, nw.Request.HBFI.Encode()...)
		return out, nil

	case KindResponseCleartext, KindResponseCiphertext:
		if nw.Response == nil {
			return nil, ErrTypeTagUnknown
		}
		r := nw.Response
		binary.BigEndian.PutUint16(kindBuf[:], uint16(r.Kind))
		out = append(out, kindBuf[:]...)
		out = append(out, r.HBFI.Encode()...)
		out = append(out, r.Nonce[:]...)
		out = append(out, r.Data[:]...)
		var offsetBuf, totalBuf [8]byte
		binary.BigEndian.PutUint64(offsetBuf[:], r.Offset)
		binary.BigEndian.PutUint64(totalBuf[:], r.Total)
		out = append(out, offsetBuf[:]...)
		out = append(out, totalBuf[:]...)
		out = append(out, r.Signature[:]...)
		out = append(out, r.Tag[:]...)
		return out, nil

	default:
		return nil, ErrTypeTagUnknown
	}
}

// Decode parses a wire-encoded NarrowWaistPacket.
func Decode(buf []byte) (NarrowWaist, error) {
	if len(buf) < 2+hbfi.Size {
		return NarrowWaist{}, ErrSizeMismatch
	}
	kind := Kind(binary.BigEndian.Uint16(buf[0:2]))
	h, err := hbfi.Decode(buf[2 : 2+hbfi.Size])
	if err != nil {
		return NarrowWaist{}, err
	}

	switch kind {
	case KindRequest:
		if len(buf) != 2+hbfi.Size {
			return NarrowWaist{}, ErrSizeMismatch
		}
		req := Request{HBFI: h}
		return NarrowWaist{Kind: kind, Request: &req}, nil

	case KindResponseCleartext, KindResponseCiphertext:
		if len(buf) != 2+hbfi.Size+ResponseBodySize {
			return NarrowWaist{}, ErrSizeMismatch
		}
		o := 2 + hbfi.Size
		var resp Response
		resp.Kind = kind
		resp.HBFI = h
		copy(resp.Nonce[:], buf[o:o+NonceSize])
		o += NonceSize
		copy(resp.Data[:], buf[o:o+FragmentSize])
		o += FragmentSize
		resp.Offset = binary.BigEndian.Uint64(buf[o : o+8])
		o += 8
		resp.Total = binary.BigEndian.Uint64(buf[o : o+8])
		o += 8
		copy(resp.Signature[:], buf[o:o+SignatureSize])
		o += SignatureSize
		copy(resp.Tag[:], buf[o:o+TagSize])
		return NarrowWaist{Kind: kind, Response: &resp}, nil

	default:
		return NarrowWaist{}, ErrTypeTagUnknown
	}
}
