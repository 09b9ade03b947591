/*
File Name:  Cache.go

Cache is the Response Cache: a bounded LRU keyed by full HBFI, plus a
prefix-subscription mechanism for the application-facing "notify me
when this name appears" contract (§6). The subscriber bookkeeping
mirrors the teacher's multiWriter pattern (Filter.go): a uuid-keyed map
guarded by a mutex, because unlike the router's single-writer
Blooms/Classifier, the cache is read by the broker worker and
subscribed to by application threads (§5: "If exposed to application
threads, wrap in a mutex.").
*/

package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/google/uuid"

	"github.com/narrowmesh/core/hbfi"
	"github.com/narrowmesh/core/packet"
)

// DefaultCapacity is the Response Cache's default LRU capacity.
const DefaultCapacity = 8192

// PrefixLevel selects how many of an HBFI's hierarchical components a
// subscription's prefix must match, from the producer identity alone
// up to the full name excluding offset.
type PrefixLevel int

const (
	LevelProducer PrefixLevel = iota
	LevelApp
	LevelModule
	LevelFunction
	LevelArgument
)

type subscription struct {
	prefix hbfi.HBFI
	level  PrefixLevel
	ch     chan packet.Response
}

// Cache is the bounded Response Cache.
type Cache struct {
	mu   sync.Mutex
	lru  *lru.Cache[hbfi.FullKey, packet.Response]
	subs map[uuid.UUID]subscription
}

// New builds a Cache with the given LRU capacity.
func New(capacity int) (*Cache, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	backing, err := lru.New[hbfi.FullKey, packet.Response](capacity)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: backing, subs: make(map[uuid.UUID]subscription)}, nil
}

// Insert inserts resp under its exact HBFI, evicting the least
// recently used entry if the cache is at capacity, and notifies every
// subscription whose prefix matches.
func (c *Cache) Insert(resp packet.Response) {
	c.mu.Lock()
	c.lru.Add(resp.HBFI.Full(), resp)
	matching := make([]subscription, 0)
	for _, sub := range c.subs {
		if matchesPrefix(resp.HBFI, sub.prefix, sub.level) {
			matching = append(matching, sub)
		}
	}
	c.mu.Unlock()

	for _, sub := range matching {
		select {
		case sub.ch <- resp:
		default:
			// A slow subscriber must not block cache insertion; it
			// misses this notification and can re-request.
		}
	}
}

// Find performs a linear scan for the first cached Response matching
// predicate, used to service a Request when the exact offset may be
// implicit.
func (c *Cache) Find(predicate func(packet.Response) bool) (packet.Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range c.lru.Keys() {
		resp, ok := c.lru.Peek(key)
		if ok && predicate(resp) {
			return resp, true
		}
	}
	return packet.Response{}, false
}

// Get performs an exact lookup by full HBFI (keys-only plus offset).
func (c *Cache) Get(h hbfi.HBFI) (packet.Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Get(h.Full())
}

// Len returns the number of cached Responses, used by statusapi.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Subscribe registers a channel that receives every Response whose
// HBFI matches prefix up to level. The channel is buffered (capacity
// 1) so a fast producer does not need Insert to block.
func (c *Cache) Subscribe(prefix hbfi.HBFI, level PrefixLevel) (uuid.UUID, <-chan packet.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := uuid.New()
	ch := make(chan packet.Response, 1)
	c.subs[id] = subscription{prefix: prefix, level: level, ch: ch}
	return id, ch
}

// Unsubscribe removes a subscription registered with Subscribe.
func (c *Cache) Unsubscribe(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subs, id)
}

func matchesPrefix(h, prefix hbfi.HBFI, level PrefixLevel) bool {
	if h.ResBFI != prefix.ResBFI {
		return false
	}
	if level >= LevelApp && h.AppBFI != prefix.AppBFI {
		return false
	}
	if level >= LevelModule && h.ModBFI != prefix.ModBFI {
		return false
	}
	if level >= LevelFunction && h.FunBFI != prefix.FunBFI {
		return false
	}
	if level >= LevelArgument && h.ArgBFI != prefix.ArgBFI {
		return false
	}
	return true
}
