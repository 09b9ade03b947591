/*
File Name:  ID.go

ID is the Link Identifier sum type (§3, design note §9): either a real
neighbor — a unique lookup id plus the local link identity, the peer's
link identity once known, and a reply-to address — or the distinguished
Choke sentinel the classifier uses to mean "drop". Choke is a distinct
variant, not a null/zero Identity, so the classifier and router can
never mistake an unknown peer for the choke decision.

Two IDs are equal iff their lookup ids match (§3), so ID is kept small
and comparable (usable as a map key) by carrying only the lookup id and
a tag; the richer fields live in the Identity struct below (and in a
Link's Config), while the broker keys its per-neighbor maps by ID alone.
*/

package link

import (
	"fmt"

	"github.com/narrowmesh/core/identity"
	"github.com/narrowmesh/core/wire"
)

// kind discriminates an ID's variant.
type kind uint8

const (
	kindIdentity kind = iota
	kindChoke
)

// ID is a comparable Link Identifier. Use NewIdentity to build a real
// neighbor's ID; Choke is the single pseudo-neighbor sentinel.
type ID struct {
	kind     kind
	lookupID uint64
}

// Choke is the never-forward pseudo-neighbor the classifier scores
// every Request against.
var Choke = ID{kind: kindChoke}

// NewIdentity builds a real neighbor's ID from a process-unique lookup
// id. Two IDs built from the same lookupID compare equal.
func NewIdentity(lookupID uint64) ID {
	return ID{kind: kindIdentity, lookupID: lookupID}
}

// IsChoke reports whether id is the Choke sentinel.
func (id ID) IsChoke() bool {
	return id.kind == kindChoke
}

// LookupID returns id's numeric lookup id. Meaningless for Choke.
func (id ID) LookupID() uint64 {
	return id.lookupID
}

// String renders id for logs and statusapi's JSON views.
func (id ID) String() string {
	if id.kind == kindChoke {
		return "choke"
	}
	return fmt.Sprintf("link-%d", id.lookupID)
}

// Identity is the full neighbor record a Link registers with the
// broker: the ID used for equality/classification, this side's link
// keypair, the peer's link public key once learned (nil until then),
// and the reply-to address used to reach the peer.
type Identity struct {
	ID       ID
	Local    identity.Private
	Peer     *identity.Public
	ReplyTo  wire.ReplyTo
}
