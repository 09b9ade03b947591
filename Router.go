/*
File Name:  Router.go

Router implements handle_packet (§4.7): the packet-handling state
machine the broker's dispatch worker runs to completion, uncooperative,
for every InterLink it dequeues. Grounded directly on
original_source/copernica-broker/src/router.rs: cache lookup on Request
arrival, pending-bloom insertion, classify + train(choke) +
choke-defense + fan-out forward loop (including the "a link with
negative weight still gets one forward" exploration rule), and on
Response arrival, forwarded-bloom check, cache insert, super_train, and
downstream fan-out to every other pending-bloom match.
*/

package core

import (
	"github.com/narrowmesh/core/cache"
	"github.com/narrowmesh/core/classifier"
	"github.com/narrowmesh/core/link"
	"github.com/narrowmesh/core/neighbor"
	"github.com/narrowmesh/core/packet"
	"github.com/narrowmesh/core/wire"
)

// Router is stateless; all state (cache, blooms, classifier) is owned
// by the Broker and passed in on each call, matching the teacher's
// convention of free functions operating on injected state rather than
// a router carrying its own mutable fields.
type Router struct {
	Filters    *Filters
	Thresholds classifier.DefenseThresholds
}

// NewRouter builds a Router. filters may be nil; NewRouter installs
// blank defaults for any unset hook via Filters.init. Thresholds
// default to classifier.DefaultThresholds; use WithThresholds to
// override (e.g. from Config.ChokeDefense).
func NewRouter(filters *Filters) *Router {
	if filters == nil {
		filters = &Filters{}
	}
	filters.init()
	return &Router{Filters: filters, Thresholds: classifier.DefaultThresholds}
}

// WithThresholds overrides the router's choke-defense tier boundaries
// and returns the receiver for chaining.
func (rt *Router) WithThresholds(t classifier.DefenseThresholds) *Router {
	rt.Thresholds = t
	return rt
}

// HandlePacket runs handle_packet for one arriving InterLink and
// returns the InterLink envelopes the broker's dispatch worker must
// route to the correct egress channels. blooms must already contain an
// entry for il.Link (the broker auto-registers first contact before
// calling HandlePacket).
func (rt *Router) HandlePacket(il link.InterLink, blooms map[link.ID]*neighbor.Blooms, c *cache.Cache, bayes *classifier.Classifier) []link.InterLink {
	arrival := il.Link
	nw := il.Packet.Payload

	arrivalBloom, ok := blooms[arrival]
	if !ok {
		rt.Filters.LogError("Router.HandlePacket", "no bloom pair registered for arrival link %v", arrival)
		return nil
	}

	switch nw.Kind {
	case packet.KindRequest:
		return rt.handleRequest(arrival, arrivalBloom, nw, blooms, c, bayes)
	case packet.KindResponseCleartext, packet.KindResponseCiphertext:
		return rt.handleResponse(arrival, arrivalBloom, nw, blooms, c, bayes)
	default:
		return nil
	}
}

func (rt *Router) handleRequest(arrival link.ID, arrivalBloom *neighbor.Blooms, nw packet.NarrowWaist, blooms map[link.ID]*neighbor.Blooms, c *cache.Cache, bayes *classifier.Classifier) []link.InterLink {
	h := nw.Request.HBFI

	if resp, found := c.Get(h); found {
		envelope := packet.NarrowWaist{Kind: resp.Kind, Response: &resp}
		return []link.InterLink{link.NewInterLink(arrival, wire.LinkPacket{Payload: envelope})}
	}

	arrivalBloom.CreatePendingRequest(h)

	vector := h.KeysOnly()
	ranked := bayes.Classify(vector)
	bayes.Train(vector, link.Choke)

	if len(ranked) > 0 && ranked[0].Link.IsChoke() {
		litmus := classifier.Litmus(ranked[0].Weight)
		tier := rt.Thresholds.Tier(litmus)
		if tier != classifier.TierPermit {
			rt.Filters.ChokeDefense(tier, litmus)
		}
		if tier == classifier.TierDrop {
			return nil
		}
	}

	// Non-probabilistic fan-out (§4.6e): every eligible candidate is
	// forwarded to, including one whose top weight is negative
	// (unexplored or recently negative), so exploration continues
	// rather than starving a link that simply hasn't answered yet.
	var out []link.InterLink
	for _, w := range ranked {
		candidate := w.Link
		if candidate.IsChoke() {
			continue
		}
		if candidate == arrival {
			continue
		}
		candidateBloom, ok := blooms[candidate]
		if !ok {
			continue
		}
		if candidateBloom.ContainsPendingRequest(h) {
			continue
		}
		candidateBloom.CreateForwardedRequest(h)
		out = append(out, link.NewInterLink(candidate, wire.LinkPacket{Payload: nw}))
	}
	return out
}

func (rt *Router) handleResponse(arrival link.ID, arrivalBloom *neighbor.Blooms, nw packet.NarrowWaist, blooms map[link.ID]*neighbor.Blooms, c *cache.Cache, bayes *classifier.Classifier) []link.InterLink {
	h := nw.Response.HBFI

	if !arrivalBloom.ContainsForwardedRequest(h) {
		return nil // UnsolicitedResponse: dropped by router, §7
	}

	c.Insert(*nw.Response)
	bayes.SuperTrain(h.KeysOnly(), arrival)

	var out []link.InterLink
	for candidate, candidateBloom := range blooms {
		if candidate == arrival {
			continue
		}
		if !candidateBloom.ContainsPendingRequest(h) {
			continue
		}
		out = append(out, link.NewInterLink(candidate, wire.LinkPacket{Payload: nw}))
	}
	return out
}
