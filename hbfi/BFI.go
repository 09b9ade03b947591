/*
File Name:  BFI.go

A BFI (bloom-filter index) reduces a UTF-8 name component to four
small integers by iterated Blake2b-256 hashing. The algorithm must
produce the same four integers on every peer for the same input
string; it never reads peer-local state.
*/

package hbfi

import (
	"encoding/binary"
	"encoding/hex"
	"strconv"

	"golang.org/x/crypto/blake2b"
)

// slotCount is the number of uint16 slots in a BFI.
const slotCount = 4

// universe is the modulus each slot value is reduced into.
const universe = 1 << 16

// BFI is a fixed-size fingerprint of a name component.
type BFI [slotCount]uint16

// BFISize is the encoded length of a BFI in bytes.
const BFISize = slotCount * 2

// computeBFI hashes input into a BFI per the two-stage Blake2b scheme:
// first a 32-byte digest of the raw input, then for each of four
// slots a second digest of (hex(digest) || slot index), whose own hex
// representation is split into four 16-character chunks, parsed as
// base-16 integers and summed modulo 65536.
func computeBFI(input string) BFI {
	digest := blake2b.Sum256([]byte(input))
	digestHex := hex.EncodeToString(digest[:])

	var out BFI
	for slot := 0; slot < slotCount; slot++ {
		slotDigest := blake2b.Sum256([]byte(digestHex + strconv.Itoa(slot)))
		slotHex := hex.EncodeToString(slotDigest[:])

		var sum uint64
		for chunk := 0; chunk < slotCount; chunk++ {
			piece := slotHex[chunk*16 : chunk*16+16]
			v, err := strconv.ParseUint(piece, 16, 64)
			if err != nil {
				// Hex-decoding a hex.EncodeToString output can never fail.
				panic("hbfi: malformed hex chunk: " + err.Error())
			}
			sum += v
		}
		out[slot] = uint16(sum % universe)
	}
	return out
}

// Encode writes the BFI in big-endian form.
func (b BFI) Encode() []byte {
	out := make([]byte, BFISize)
	for i, v := range b {
		binary.BigEndian.PutUint16(out[i*2:i*2+2], v)
	}
	return out
}

// DecodeBFI reads a BFI from its big-endian wire encoding.
func DecodeBFI(buf []byte) (BFI, error) {
	if len(buf) != BFISize {
		return BFI{}, ErrShortBuffer
	}
	var b BFI
	for i := range b {
		b[i] = binary.BigEndian.Uint16(buf[i*2 : i*2+2])
	}
	return b, nil
}
