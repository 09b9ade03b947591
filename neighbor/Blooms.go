/*
File Name:  Blooms.go

Blooms holds the two per-neighbor LRUs the router consults on every
packet: pending_request records names this neighbor is downstream for,
forwarded_request records names we sent upstream on this neighbor.
Both use the keys-only HBFI view so that every fragment of one stream
shares a single slot, and both are bounded LRUs so a noisy or
malicious neighbor cannot grow unbounded broker memory.
*/

package neighbor

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/narrowmesh/core/hbfi"
)

// DefaultCapacity is the per-bloom LRU capacity (§3: "capacity ≈ 4096").
const DefaultCapacity = 4096

// Blooms is the pending/forwarded bloom pair for one neighbor link.
type Blooms struct {
	pending   *lru.Cache[hbfi.Key, struct{}]
	forwarded *lru.Cache[hbfi.Key, struct{}]
}

// NewBlooms builds a Blooms pair with the given per-bloom capacity.
func NewBlooms(capacity int) (*Blooms, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	pending, err := lru.New[hbfi.Key, struct{}](capacity)
	if err != nil {
		return nil, err
	}
	forwarded, err := lru.New[hbfi.Key, struct{}](capacity)
	if err != nil {
		return nil, err
	}
	return &Blooms{pending: pending, forwarded: forwarded}, nil
}

// CreatePendingRequest records that h's keys-only name is downstream
// on this neighbor.
func (b *Blooms) CreatePendingRequest(h hbfi.HBFI) {
	b.pending.Add(h.KeysOnly(), struct{}{})
}

// ContainsPendingRequest reports and touch-to-front refreshes whether
// h's keys-only name is recorded as downstream on this neighbor.
func (b *Blooms) ContainsPendingRequest(h hbfi.HBFI) bool {
	_, ok := b.pending.Get(h.KeysOnly())
	return ok
}

// CreateForwardedRequest records that we sent h's keys-only name
// upstream on this neighbor.
func (b *Blooms) CreateForwardedRequest(h hbfi.HBFI) {
	b.forwarded.Add(h.KeysOnly(), struct{}{})
}

// ContainsForwardedRequest reports and touch-to-front refreshes
// whether we sent h's keys-only name upstream on this neighbor.
func (b *Blooms) ContainsForwardedRequest(h hbfi.HBFI) bool {
	_, ok := b.forwarded.Get(h.KeysOnly())
	return ok
}

// PendingLen returns the current occupancy of the pending_request bloom.
func (b *Blooms) PendingLen() int {
	return b.pending.Len()
}

// ForwardedLen returns the current occupancy of the forwarded_request bloom.
func (b *Blooms) ForwardedLen() int {
	return b.forwarded.Len()
}
