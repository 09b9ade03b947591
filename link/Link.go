/*
File Name:  Link.go

Link is the transport-agnostic contract every neighbor binding (UDPv4,
UDPv6, in-process Channel, Radio) implements: a pair of inbound/outbound
workers moving InterLink envelopes between the wire and the broker's
ingress/per-link-egress channels (§4.8, §5 "Each Link runs two
workers"). Concrete transports differ only in how they turn an
InterLink into bytes on the wire and back.
*/

package link

import (
	"context"
	"log"

	"github.com/narrowmesh/core/identity"
	"github.com/narrowmesh/core/wire"
)

// Link is a running neighbor binding. Run blocks until ctx is
// cancelled or a fatal transport error occurs, and must launch both
// the inbound and outbound workers described in §5.
type Link interface {
	// ID returns this Link's identifier, stable for its lifetime.
	ID() ID
	// Run starts the inbound and outbound workers and blocks until ctx
	// is done or a fatal error occurs.
	Run(ctx context.Context) error
}

// Endpoint is the channel pair a broker hands a Link worker via
// peer_with_link (§4.8): egressToLink carries InterLink envelopes the
// broker wants sent on this Link; ingressFromLink is where the Link
// delivers everything it receives to the broker.
type Endpoint struct {
	EgressToLink    <-chan InterLink
	IngressFromLink chan<- InterLink
}

// Config bundles the per-Link identity material every transport needs:
// the local link keypair (used for link-layer AEAD key agreement), the
// peer's public key once it is known (nil until then, per §3's
// "optional peer public link identity"), this link's own reply-to
// (stamped into every outgoing LinkPacket so the peer knows where to
// answer), and the remote address frames are actually transmitted to.
type Config struct {
	ID         ID
	Local      identity.Private
	Peer       *identity.Public
	ReplyTo    wire.ReplyTo
	RemoteAddr wire.ReplyTo

	// Logger receives worker-panic reports (§7). Defaults to
	// log.Default() when nil.
	Logger *log.Logger
}
