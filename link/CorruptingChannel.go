/*
File Name:  CorruptingChannel.go

NewCorruptingChannel builds a Channel that flips a fixed set of byte
positions in every frame it receives before FEC-decoding it, exercising
the fec package's erasure-search correction path end to end the way a
lossy radio or Wi-Fi link would in production.
*/

package link

// NewCorruptingChannel builds a Channel that XORs 0xFF into each of
// positions (ignoring any outside the frame's bounds) on every inbound
// frame before decoding. Kept within fec.MaxCorrectable positions, the
// frame still decodes correctly and exercises Codec.Decode's
// correction path rather than its failure path.
func NewCorruptingChannel(cfg Config, ep Endpoint, wireOut chan []byte, wireIn <-chan []byte, positions []int) (*Channel, error) {
	c, err := NewChannel(cfg, ep, wireOut, wireIn)
	if err != nil {
		return nil, err
	}
	c.corrupt = func(raw []byte) []byte {
		corrupted := make([]byte, len(raw))
		copy(corrupted, raw)
		for _, p := range positions {
			if p >= 0 && p < len(corrupted) {
				corrupted[p] ^= 0xFF
			}
		}
		return corrupted
	}
	return c, nil
}
