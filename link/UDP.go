/*
File Name:  UDP.go

UDP implements Link over a UDP socket, for both the UDPv4 and UDPv6
reply-to variants (§6: "one socket per Link, bound to the reply-to
address"). The inbound/outbound worker split follows the original
udpipv4 link directly: inbound recv -> FEC-decode -> wire-decode ->
wrap in InterLink -> send to broker; outbound recv from broker ->
overwrite reply-to with this link's own address -> wire-encode ->
FEC-encode -> transmit.
*/

package link

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/narrowmesh/core/fec"
	"github.com/narrowmesh/core/packet"
	"github.com/narrowmesh/core/wire"
)

// maxDatagramSize bounds a single recvfrom read; wire.MaxFrameSize is
// the post-FEC ceiling a well-behaved peer targets, but a receiver must
// still size its buffer generously against a misbehaving one.
const maxDatagramSize = 2048

// UDP is a Link bound to a UDPv4 or UDPv6 socket.
type UDP struct {
	cfg     Config
	conn    *net.UDPConn
	codec   *fec.Codec
	ingress chan<- InterLink
	egress  <-chan InterLink
}

// NewUDP binds a UDP socket at cfg.ReplyTo's address and returns the
// Link. The caller supplies the broker-facing channel pair from
// peer_with_link.
func NewUDP(cfg Config, ep Endpoint) (*UDP, error) {
	if cfg.ReplyTo.UDP == nil {
		return nil, fmt.Errorf("link: UDP transport requires a UDP reply-to address")
	}
	if cfg.RemoteAddr.UDP == nil {
		return nil, fmt.Errorf("link: UDP transport requires a remote address")
	}
	conn, err := net.ListenUDP(udpNetwork(cfg.ReplyTo.UDP), cfg.ReplyTo.UDP)
	if err != nil {
		return nil, err
	}
	codec, err := fec.New()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &UDP{cfg: cfg, conn: conn, codec: codec, ingress: ep.IngressFromLink, egress: ep.EgressToLink}, nil
}

func udpNetwork(addr *net.UDPAddr) string {
	if addr.IP.To4() != nil {
		return "udp4"
	}
	return "udp6"
}

// ID implements Link.
func (u *UDP) ID() ID {
	return u.cfg.ID
}

// Run implements Link. It launches the inbound and outbound workers,
// each under a recover-and-restart supervisor (§7), and blocks until
// ctx is cancelled.
func (u *UDP) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		runSupervised(ctx, u.cfg.Logger, u.cfg.ID, "inbound", func() { u.inboundLoop(ctx) })
	}()
	go func() {
		defer wg.Done()
		runSupervised(ctx, u.cfg.Logger, u.cfg.ID, "outbound", func() { u.outboundLoop(ctx) })
	}()

	<-ctx.Done()
	u.conn.Close()
	wg.Wait()
	return ctx.Err()
}

func (u *UDP) inboundLoop(ctx context.Context) {
	buf := make([]byte, maxDatagramSize)
	for {
		n, _, err := u.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				continue
			}
		}

		payload, err := decodeFrame(u.codec, buf[:n])
		if err != nil {
			continue // MalformedPacket: dropped at the Link, per §7
		}
		lp, err := wire.Decode(payload, u.cfg.Local, u.cfg.Peer)
		if err != nil {
			continue // MalformedPacket or AuthFailure: dropped at the Link
		}
		if resp := lp.Payload.Response; resp != nil {
			if err := packet.Verify(*resp, resp.HBFI.ResponsePID); err != nil {
				continue // AuthFailure: invalid signature, dropped at the Link
			}
		}

		select {
		case u.ingress <- NewInterLink(u.cfg.ID, lp):
		case <-ctx.Done():
			return
		}
	}
}

func (u *UDP) outboundLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case il, ok := <-u.egress:
			if !ok {
				return
			}
			lp := il.Packet
			lp.ReplyTo = u.cfg.ReplyTo

			encoded, err := wire.Encode(lp, u.cfg.Local, u.cfg.Peer)
			if err != nil {
				continue
			}
			frame, err := encodeFrame(u.codec, encoded)
			if err != nil {
				continue
			}
			u.conn.WriteToUDP(frame, u.cfg.RemoteAddr.UDP)
		}
	}
}
