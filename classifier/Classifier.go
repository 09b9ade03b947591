/*
File Name:  Classifier.go

Classifier is the Bayesian link classifier (§4.6): for each (link, BFI
component) pair it maintains a log-likelihood weight, learned online
from forward/receive events, and ranks links by how well a BFI vector
matches what has arrived on them in the past.

The exact update rule is not uniquely determined by the source; this
one is a standard online log-odds accumulation, chosen because it is
simple, numerically stable (every weight is clamped, so the logistic
squash in Litmus never saturates to exactly 0 or 100 from one event),
and satisfies the tier-4 choke-defense convergence required by §8's
replay scenario: a BFI vector that is repeatedly requested but never
answered drives choke's own weight up roughly linearly in the number
of forwards, crossing into tier 4 well before 1,000 repetitions. A
vector that does get answered moves every subsequent request onto the
Response Cache's hit path, so choke's weight for it never climbs
further.
*/

package classifier

import (
	"math"
	"sort"
	"sync"

	"github.com/narrowmesh/core/hbfi"
	"github.com/narrowmesh/core/link"
)

// Component weighting rates. weakDelta is added to a component's
// weight on train (one more unresolved forward round for this
// vector); strongDelta is added on super_train (a verified Response
// observed arriving on a real link).
const (
	weakDelta   = 0.05
	strongDelta = 0.6
	clampBound  = 8.0
)

// Weighted pairs a link with its classification weight, returned by
// Classify in descending weight order.
type Weighted struct {
	Link   link.ID
	Weight float64
}

// Classifier is the per-broker Bayesian link classifier. It is
// single-writer from the broker dispatch worker per §5; the mutex here
// exists only to make it also safe for statusapi's read-only snapshot.
type Classifier struct {
	mu      sync.Mutex
	weights map[link.ID]map[hbfi.BFI]float64
	order   []link.ID
}

// New builds an empty Classifier. The choke pseudo-link is registered
// automatically, per §4.6: "the pseudo-link choke is always in the set."
func New() *Classifier {
	c := &Classifier{weights: make(map[link.ID]map[hbfi.BFI]float64)}
	c.AddLink(link.Choke)
	return c
}

// AddLink registers a new neighbor with neutral (zero) weights across
// every BFI component seen so far. A no-op if already registered.
func (c *Classifier) AddLink(l link.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addLinkLocked(l)
}

func (c *Classifier) addLinkLocked(l link.ID) {
	if _, ok := c.weights[l]; ok {
		return
	}
	c.weights[l] = make(map[hbfi.BFI]float64)
	c.order = append(c.order, l)
}

// Classify scores every registered link (including choke) against
// vector, the sum of its per-component weights, and returns them
// sorted by weight descending.
func (c *Classifier) Classify(vector hbfi.Key) []Weighted {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Weighted, 0, len(c.order))
	for _, l := range c.order {
		out = append(out, Weighted{Link: l, Weight: c.scoreLocked(l, vector)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	return out
}

func (c *Classifier) scoreLocked(l link.ID, vector hbfi.Key) float64 {
	weights, ok := c.weights[l]
	if !ok {
		return 0
	}
	var sum float64
	for _, component := range vector {
		sum += weights[component]
	}
	return sum
}

// Train applies the weak positive update used once per Request-forward
// event on a cache miss: l's weight for vector nudges up a little,
// modeling rising baseline suspicion the longer a name goes unresolved.
// Called with link.Choke so that a name which is repeatedly requested
// but never answered drives choke's own weight up over time; a name
// that gets answered moves to the Response Cache's fast path on every
// subsequent request, so its choke weight never climbs further.
func (c *Classifier) Train(vector hbfi.Key, l link.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addLinkLocked(l)
	c.update(l, vector, weakDelta)
}

// SuperTrain applies the strong positive update used when a matching
// verified Response is observed arriving on link.
func (c *Classifier) SuperTrain(vector hbfi.Key, l link.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addLinkLocked(l)
	c.update(l, vector, strongDelta)
}

func (c *Classifier) update(l link.ID, vector hbfi.Key, delta float64) {
	weights := c.weights[l]
	for _, component := range vector {
		w := weights[component] + delta
		if w > clampBound {
			w = clampBound
		}
		if w < -clampBound {
			w = -clampBound
		}
		weights[component] = w
	}
}

// Links returns every registered link in registration order (including
// choke), for statusapi's read-only snapshot.
func (c *Classifier) Links() []link.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]link.ID, len(c.order))
	copy(out, c.order)
	return out
}

// WeightSum returns the sum of every component weight recorded for l,
// a coarse relevance score exposed by statusapi; not itself used for
// routing decisions, which always score against a specific vector.
func (c *Classifier) WeightSum(l link.ID) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var sum float64
	for _, w := range c.weights[l] {
		sum += w
	}
	return sum
}

// Litmus scales a choke weight onto 0-100 per §4.6, using a logistic
// squash so an unbounded log-odds sum lands in a finite defense range.
func Litmus(chokeWeight float64) int {
	squashed := 1.0 / (1.0 + math.Exp(-chokeWeight))
	v := int(squashed * 100)
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return v
}

// DefenseTier is the four-level choke-defense action from §4.6.
type DefenseTier int

const (
	TierPermit DefenseTier = iota
	TierFlagSigning
	TierFlagReview
	TierDrop
)

// DefenseThresholds are the three litmus boundaries that separate the
// four defense tiers. DefaultThresholds matches §4.6 (36/60/90); a
// broker may lower them (e.g. for the replay-defense test scenario) by
// constructing its own DefenseThresholds.
type DefenseThresholds struct {
	FlagSigningAt int
	FlagReviewAt  int
	DropAt        int
}

// DefaultThresholds is the §4.6 default: 0-35 permit, 36-59 flag
// signing, 60-89 flag review, 90-100 drop.
var DefaultThresholds = DefenseThresholds{FlagSigningAt: 36, FlagReviewAt: 60, DropAt: 90}

// Tier maps litmus onto its defense tier under t.
func (t DefenseThresholds) Tier(litmus int) DefenseTier {
	switch {
	case litmus >= t.DropAt:
		return TierDrop
	case litmus >= t.FlagReviewAt:
		return TierFlagReview
	case litmus >= t.FlagSigningAt:
		return TierFlagSigning
	default:
		return TierPermit
	}
}

// Tier maps a litmus value (0-100) onto its defense tier using
// DefaultThresholds.
func Tier(litmus int) DefenseTier {
	return DefaultThresholds.Tier(litmus)
}
