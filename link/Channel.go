/*
File Name:  Channel.go

Channel is the in-process Link used for application attach and testing
(§6: "In-process channel: used for application attach and testing.").
It still FEC-codes and wire-codes each packet so the same corruption
and AEAD behavior observable over UDP is exercised in tests; it simply
hands the resulting bytes to a peer Channel's inbound loop directly
instead of through a socket.
*/

package link

import (
	"context"
	"sync"

	"github.com/narrowmesh/core/fec"
	"github.com/narrowmesh/core/packet"
	"github.com/narrowmesh/core/wire"
)

// Channel is a Link that exchanges framed bytes with a paired Channel
// in the same process over a Go channel, rather than a socket.
type Channel struct {
	cfg     Config
	codec   *fec.Codec
	ingress chan<- InterLink
	egress  <-chan InterLink
	wire    chan []byte // bytes this Channel "transmits"; a peer Channel's recv end
	recv    <-chan []byte

	// corrupt, when non-nil, mutates a frame after it is received and
	// before FEC decoding. Set by NewCorruptingChannel; nil for a
	// normal Channel.
	corrupt func([]byte) []byte
}

// NewChannel builds a Channel Link. wireOut is where this Channel
// writes its transmitted frames; wireIn is where it reads frames
// addressed to it, typically another Channel's wireOut.
func NewChannel(cfg Config, ep Endpoint, wireOut chan []byte, wireIn <-chan []byte) (*Channel, error) {
	codec, err := fec.New()
	if err != nil {
		return nil, err
	}
	return &Channel{
		cfg:     cfg,
		codec:   codec,
		ingress: ep.IngressFromLink,
		egress:  ep.EgressToLink,
		wire:    wireOut,
		recv:    wireIn,
	}, nil
}

// ID implements Link.
func (c *Channel) ID() ID {
	return c.cfg.ID
}

// Run implements Link. Both workers run under a recover-and-restart
// supervisor (§7) so a panic in one is contained.
func (c *Channel) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runSupervised(ctx, c.cfg.Logger, c.cfg.ID, "inbound", func() { c.inboundLoop(ctx) })
	}()
	runSupervised(ctx, c.cfg.Logger, c.cfg.ID, "outbound", func() { c.outboundLoop(ctx) })
	wg.Wait()
	return ctx.Err()
}

func (c *Channel) inboundLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-c.recv:
			if !ok {
				return
			}
			if c.corrupt != nil {
				raw = c.corrupt(raw)
			}
			payload, err := decodeFrame(c.codec, raw)
			if err != nil {
				continue
			}
			lp, err := wire.Decode(payload, c.cfg.Local, c.cfg.Peer)
			if err != nil {
				continue
			}
			if resp := lp.Payload.Response; resp != nil {
				if err := packet.Verify(*resp, resp.HBFI.ResponsePID); err != nil {
					continue
				}
			}
			select {
			case c.ingress <- NewInterLink(c.cfg.ID, lp):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (c *Channel) outboundLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case il, ok := <-c.egress:
			if !ok {
				return
			}
			lp := il.Packet
			lp.ReplyTo = c.cfg.ReplyTo

			encoded, err := wire.Encode(lp, c.cfg.Local, c.cfg.Peer)
			if err != nil {
				continue
			}
			frame, err := encodeFrame(c.codec, encoded)
			if err != nil {
				continue
			}
			select {
			case c.wire <- frame:
			case <-ctx.Done():
				return
			}
		}
	}
}
