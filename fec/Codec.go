/*
File Name:  Codec.go

Codec implements the wire format's forward-error-correction envelope:
the payload is chunked into 249-byte groups, each Reed-Solomon encoded
into a 255-byte codeword (249 data symbols + 6 parity symbols), one
symbol per byte over GF(256). Decoding verifies each codeword and, on
mismatch, searches for up to MaxCorrectable erased symbol positions
whose reconstruction satisfies the parity check — the standard way to
recover from a bounded number of unlocated symbol errors when the only
available primitive is erasure reconstruction (see DESIGN.md for why
github.com/klauspost/reedsolomon, an erasure-coding library, is used
this way rather than a dedicated syndrome decoder).
*/

package fec

import (
	"errors"

	"github.com/klauspost/reedsolomon"
)

const (
	// DataShards is the number of payload bytes per codeword.
	DataShards = 249
	// ParityShards is the number of parity bytes per codeword.
	ParityShards = 6
	// CodewordSize is the total size of one Reed-Solomon codeword.
	CodewordSize = DataShards + ParityShards
	// MaxCorrectable is the number of symbol errors per codeword the
	// code can recover from (half the parity shard count).
	MaxCorrectable = ParityShards / 2
)

var (
	// ErrMalformedFrame is returned when a frame's length is not a
	// multiple of CodewordSize, or decodes shorter than the caller's
	// expected original length.
	ErrMalformedFrame = errors.New("fec: malformed frame")

	// ErrUncorrectable is returned when a codeword has more corrupted
	// symbols than MaxCorrectable can recover.
	ErrUncorrectable = errors.New("fec: codeword has too many errors to correct")
)

// Codec encodes and decodes Reed-Solomon codewords.
type Codec struct {
	enc reedsolomon.Encoder
}

// New builds a Codec for the fixed DataShards/ParityShards split.
func New() (*Codec, error) {
	enc, err := reedsolomon.New(DataShards, ParityShards)
	if err != nil {
		return nil, err
	}
	return &Codec{enc: enc}, nil
}

// Encode FEC-frames payload, returning a concatenation of 255-byte
// codewords. The last codeword is zero-padded if payload's length is
// not a multiple of DataShards; callers must retain the original
// length to pass to Decode.
func (c *Codec) Encode(payload []byte) ([]byte, error) {
	numCodewords := (len(payload) + DataShards - 1) / DataShards
	if numCodewords == 0 {
		numCodewords = 1
	}

	out := make([]byte, 0, numCodewords*CodewordSize)
	for i := 0; i < numCodewords; i++ {
		start := i * DataShards
		end := start + DataShards
		if end > len(payload) {
			end = len(payload)
		}

		shards := make([][]byte, CodewordSize)
		for j := 0; j < DataShards; j++ {
			shards[j] = make([]byte, 1)
			if start+j < end {
				shards[j][0] = payload[start+j]
			}
		}
		for j := DataShards; j < CodewordSize; j++ {
			shards[j] = make([]byte, 1)
		}

		if err := c.enc.Encode(shards); err != nil {
			return nil, err
		}
		for _, s := range shards {
			out = append(out, s[0])
		}
	}
	return out, nil
}

// Decode recovers the original payload from an FEC frame, correcting
// up to MaxCorrectable symbol errors per codeword. originalLen trims
// the zero padding Encode may have added to the final codeword.
func (c *Codec) Decode(frame []byte, originalLen int) ([]byte, error) {
	if len(frame) == 0 || len(frame)%CodewordSize != 0 {
		return nil, ErrMalformedFrame
	}

	numCodewords := len(frame) / CodewordSize
	payload := make([]byte, 0, numCodewords*DataShards)
	for i := 0; i < numCodewords; i++ {
		codeword := frame[i*CodewordSize : (i+1)*CodewordSize]
		corrected, err := c.correct(codeword)
		if err != nil {
			return nil, err
		}
		payload = append(payload, corrected[:DataShards]...)
	}

	if originalLen < 0 || originalLen > len(payload) {
		return nil, ErrMalformedFrame
	}
	return payload[:originalLen], nil
}

func splitShards(codeword []byte) [][]byte {
	shards := make([][]byte, CodewordSize)
	for i := range shards {
		shards[i] = []byte{codeword[i]}
	}
	return shards
}

func joinShards(shards [][]byte) []byte {
	out := make([]byte, len(shards))
	for i, s := range shards {
		out[i] = s[0]
	}
	return out
}

// correct returns codeword unchanged if it already satisfies the
// parity check, or the smallest erasure-position guess (up to
// MaxCorrectable symbols) whose reconstruction does.
func (c *Codec) correct(codeword []byte) ([]byte, error) {
	if len(codeword) != CodewordSize {
		return nil, ErrMalformedFrame
	}

	shards := splitShards(codeword)
	if ok, err := c.enc.Verify(shards); err == nil && ok {
		return codeword, nil
	}

	for k := 1; k <= MaxCorrectable; k++ {
		if fixed := c.tryErasures(codeword, k); fixed != nil {
			return fixed, nil
		}
	}
	return nil, ErrUncorrectable
}

// maxTrials bounds the combinatorial erasure search. It is set above
// C(255,3), the largest combination count this codec ever searches
// (MaxCorrectable=3), so a genuinely ≤3-symbol error is always found;
// the cap exists only to guarantee termination, not to trade away
// correctness for speed. This exhaustive search is the reference
// decoder's acknowledged cost: a production decoder would replace it
// with syndrome-based error-location (see DESIGN.md).
const maxTrials = 3000000

// tryErasures searches combinations of k candidate error positions,
// marking each combination as an erasure set and checking whether
// Reed-Solomon reconstruction of exactly those positions restores a
// valid codeword.
func (c *Codec) tryErasures(codeword []byte, k int) []byte {
	trials := 0
	var result []byte

	forEachCombination(CodewordSize, k, func(positions []int) bool {
		trials++
		if trials > maxTrials {
			return false
		}

		shards := splitShards(codeword)
		for _, p := range positions {
			shards[p] = nil
		}
		if err := c.enc.Reconstruct(shards); err != nil {
			return true
		}
		if ok, err := c.enc.Verify(shards); err != nil || !ok {
			return true
		}
		result = joinShards(shards)
		return false
	})

	return result
}
