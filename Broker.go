/*
File Name:  Broker.go

Broker owns the ingress channel every attached Link feeds, the map
from Link Identifier to its egress channel and bloom pair, the Response
Cache, and the classifier (§4.8). Its single dispatch worker drains
ingress, auto-registering first-contact links, and routes the Router's
outbound envelopes to the right egress channels. Grounded on
original_source/copernica-broker/src/broker.rs's peer/run split.
*/

package core

import (
	"context"
	"log"
	"sync"

	"github.com/narrowmesh/core/cache"
	"github.com/narrowmesh/core/classifier"
	"github.com/narrowmesh/core/link"
	"github.com/narrowmesh/core/neighbor"
)

// DefaultIngressBuffer is the ingress channel's buffer size. Channels
// are bounded per §5; a full egress channel blocks the dispatch
// worker, the natural backpressure the spec calls for.
const DefaultIngressBuffer = 256

// DefaultEgressBuffer is the per-link egress channel buffer size.
const DefaultEgressBuffer = 64

// Broker is the per-node forwarding core.
type Broker struct {
	Logger  *log.Logger
	Router  *Router
	Cache   *cache.Cache
	Bayes   *classifier.Classifier

	ingress chan link.InterLink

	mu     sync.Mutex
	blooms map[link.ID]*neighbor.Blooms
	egress map[link.ID]chan link.InterLink

	bloomCapacity int
}

// Option configures a Broker at construction.
type Option func(*Broker)

// WithLogger overrides the broker's logger (default log.Default()).
func WithLogger(logger *log.Logger) Option {
	return func(b *Broker) { b.Logger = logger }
}

// WithBloomCapacity overrides the per-neighbor bloom LRU capacity.
func WithBloomCapacity(capacity int) Option {
	return func(b *Broker) { b.bloomCapacity = capacity }
}

// WithChokeDefenseThresholds overrides the router's litmus tier
// boundaries, e.g. to lower DropAt for a replay-defense test.
func WithChokeDefenseThresholds(t classifier.DefenseThresholds) Option {
	return func(b *Broker) { b.Router.Thresholds = t }
}

// NewBroker builds a Broker with an empty neighbor set.
func NewBroker(cacheCapacity int, filters *Filters, opts ...Option) (*Broker, error) {
	respCache, err := cache.New(cacheCapacity)
	if err != nil {
		return nil, err
	}

	b := &Broker{
		Logger:        log.Default(),
		Router:        NewRouter(filters),
		Cache:         respCache,
		Bayes:         classifier.New(),
		ingress:       make(chan link.InterLink, DefaultIngressBuffer),
		blooms:        make(map[link.ID]*neighbor.Blooms),
		egress:        make(map[link.ID]chan link.InterLink),
		bloomCapacity: neighbor.DefaultCapacity,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// NewBrokerFromConfig builds a Broker using cfg's cache/bloom capacities
// and choke-defense thresholds, with opts applied afterward so callers
// can still override individual fields (e.g. WithLogger).
func NewBrokerFromConfig(cfg Config, filters *Filters, opts ...Option) (*Broker, error) {
	cfg = cfg.Defaulted()
	base := []Option{
		WithBloomCapacity(cfg.BloomCapacity),
		WithChokeDefenseThresholds(classifier.DefenseThresholds{
			FlagSigningAt: cfg.ChokeDefense.FlagSigningAt,
			FlagReviewAt:  cfg.ChokeDefense.FlagReviewAt,
			DropAt:        cfg.ChokeDefense.DropAt,
		}),
	}
	return NewBroker(cfg.CacheCapacity, filters, append(base, opts...)...)
}

// PeerWithLink registers a new neighbor: creates its bloom pair, adds
// it to the classifier, and returns the channel pair a Link worker
// uses (the broker's ingress sender, and this neighbor's own egress
// receiver). Safe to call concurrently with Run.
func (b *Broker) PeerWithLink(id link.ID) (link.Endpoint, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.blooms[id]; exists {
		return link.Endpoint{}, errAlreadyPeered
	}

	blooms, err := neighbor.NewBlooms(b.bloomCapacity)
	if err != nil {
		return link.Endpoint{}, err
	}
	b.blooms[id] = blooms
	egressCh := make(chan link.InterLink, DefaultEgressBuffer)
	b.egress[id] = egressCh
	b.Bayes.AddLink(id)
	b.Router.Filters.NewLink(id)

	return link.Endpoint{EgressToLink: egressCh, IngressFromLink: b.ingress}, nil
}

// Run starts the broker's dispatch worker and blocks until ctx is
// cancelled. A panic while dispatching one packet is recovered and
// logged rather than taking down the loop, per §7: a bug triggered by
// one malformed packet must not strand every other neighbor link
// blocked writing to ingress.
func (b *Broker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case il := <-b.ingress:
			b.dispatchRecovered(il)
		}
	}
}

func (b *Broker) dispatchRecovered(il link.InterLink) {
	defer func() {
		if r := recover(); r != nil {
			b.Router.Filters.LogError("Broker.dispatch", "dispatch worker panicked on packet from link %v, recovered: %v", il.Link, r)
		}
	}()
	b.dispatch(il)
}

func (b *Broker) dispatch(il link.InterLink) {
	b.mu.Lock()
	if _, known := b.blooms[il.Link]; !known {
		blooms, err := neighbor.NewBlooms(b.bloomCapacity)
		if err != nil {
			b.mu.Unlock()
			b.Logger.Printf("Broker.dispatch: failed to register first-contact link %v: %v", il.Link, err)
			return
		}
		b.blooms[il.Link] = blooms
		if _, ok := b.egress[il.Link]; !ok {
			b.egress[il.Link] = make(chan link.InterLink, DefaultEgressBuffer)
		}
		b.Bayes.AddLink(il.Link)
		b.Router.Filters.NewLink(il.Link)
	}
	blooms := cloneBloomsMap(b.blooms)
	egress := cloneEgressMap(b.egress)
	b.mu.Unlock()

	outbound := b.Router.HandlePacket(il, blooms, b.Cache, b.Bayes)
	for _, out := range outbound {
		ch, ok := egress[out.Link]
		if !ok {
			continue
		}
		ch <- out // bounded channel: full egress blocks the dispatch worker (§5 backpressure)
	}
}

// NeighborSnapshot is a read-only view of one registered neighbor,
// exposed by Snapshot for statusapi's introspection endpoints.
type NeighborSnapshot struct {
	Link             string
	PendingLen       int
	ForwardedLen     int
	ClassifierWeight float64
}

// Snapshot returns the current neighbor set with bloom occupancy and
// classifier weight, safe to call concurrently with Run.
func (b *Broker) Snapshot() []NeighborSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]NeighborSnapshot, 0, len(b.blooms))
	for id, blooms := range b.blooms {
		out = append(out, NeighborSnapshot{
			Link:             id.String(),
			PendingLen:       blooms.PendingLen(),
			ForwardedLen:     blooms.ForwardedLen(),
			ClassifierWeight: b.Bayes.WeightSum(id),
		})
	}
	return out
}

// CacheLen returns the Response Cache's current occupancy.
func (b *Broker) CacheLen() int {
	return b.Cache.Len()
}

func cloneBloomsMap(m map[link.ID]*neighbor.Blooms) map[link.ID]*neighbor.Blooms {
	out := make(map[link.ID]*neighbor.Blooms, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneEgressMap(m map[link.ID]chan link.InterLink) map[link.ID]chan link.InterLink {
	out := make(map[link.ID]chan link.InterLink, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
