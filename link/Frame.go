/*
File Name:  Frame.go

frameBytes/unframeBytes add the one piece of on-wire bookkeeping the
spec's abstract frame format is silent on: Reed-Solomon codeword
padding is not self-describing, so a receiver that FEC-decodes a frame
has no way to know how many trailing zero bytes the last codeword
carries. A 4-byte big-endian length prefix ahead of the wire.LinkPacket
bytes, itself inside the FEC envelope, resolves this without changing
anything at the NarrowWaist/LinkPacket layer.
*/

package link

import (
	"encoding/binary"

	"github.com/narrowmesh/core/fec"
)

const lengthPrefixSize = 4

// errFrameTooShort is returned when a decoded frame is too small to
// hold the length prefix or the length it announces.
var errFrameTooShort = fec.ErrMalformedFrame

func frameBytes(payload []byte) []byte {
	out := make([]byte, lengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(out[:lengthPrefixSize], uint32(len(payload)))
	copy(out[lengthPrefixSize:], payload)
	return out
}

func unframeBytes(buf []byte) ([]byte, error) {
	if len(buf) < lengthPrefixSize {
		return nil, errFrameTooShort
	}
	n := binary.BigEndian.Uint32(buf[:lengthPrefixSize])
	if int(n) > len(buf)-lengthPrefixSize {
		return nil, errFrameTooShort
	}
	return buf[lengthPrefixSize : lengthPrefixSize+int(n)], nil
}

// encodeFrame length-prefixes then FEC-encodes an already wire-encoded
// LinkPacket's bytes, ready for transmission.
func encodeFrame(codec *fec.Codec, payload []byte) ([]byte, error) {
	framed := frameBytes(payload)
	return codec.Encode(framed)
}

// decodeFrame FEC-decodes a received frame back to the wire.LinkPacket
// bytes it carries.
func decodeFrame(codec *fec.Codec, raw []byte) ([]byte, error) {
	numCodewords := len(raw) / fec.CodewordSize
	capacity := numCodewords * fec.DataShards
	framed, err := codec.Decode(raw, capacity)
	if err != nil {
		return nil, err
	}
	return unframeBytes(framed)
}
