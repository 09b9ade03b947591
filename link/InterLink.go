/*
File Name:  InterLink.go

InterLink is the in-process envelope pairing a Link Identifier with a
decoded Link Packet (§3): the broker's ingress and egress channels both
carry InterLink values, using the ID to know which neighbor originated
or should receive the packet. It lives here rather than in wire to
avoid a wire-to-link import cycle: a Link Packet belongs to wire, but
naming the Link that sent or should receive one is a link-layer
concern.
*/

package link

import "github.com/narrowmesh/core/wire"

// InterLink pairs the Link Identifier a packet arrived on or is bound
// for with the decoded Link Packet itself.
type InterLink struct {
	Link   ID
	Packet wire.LinkPacket
}

// NewInterLink builds an InterLink envelope.
func NewInterLink(l ID, p wire.LinkPacket) InterLink {
	return InterLink{Link: l, Packet: p}
}
