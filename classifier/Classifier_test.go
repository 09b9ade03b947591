package classifier

import (
	"testing"

	"github.com/narrowmesh/core/hbfi"
	"github.com/narrowmesh/core/link"
)

func sampleVector() hbfi.Key {
	return hbfi.Key{{1, 2, 3, 4}, {5, 6, 7, 8}, {9, 10, 11, 12}, {13, 14, 15, 16}, {17, 18, 19, 20}, {21, 22, 23, 24}}
}

func TestNewRegistersChoke(t *testing.T) {
	c := New()
	ranked := c.Classify(sampleVector())
	found := false
	for _, w := range ranked {
		if w.Link.IsChoke() {
			found = true
		}
	}
	if !found {
		t.Fatalf("choke must always be present in Classify's results")
	}
}

func TestSuperTrainOutranksUntrained(t *testing.T) {
	c := New()
	good := link.NewIdentity(1)
	c.AddLink(good)
	vector := sampleVector()

	c.SuperTrain(vector, good)

	ranked := c.Classify(vector)
	if ranked[0].Link != good {
		t.Fatalf("top-ranked link = %v, want the super-trained link", ranked[0].Link)
	}
}

func TestRepeatedTrainDrivesChokeUpward(t *testing.T) {
	c := New()
	vector := sampleVector()

	_, before := choke(t, c, vector), 0
	_ = before

	for i := 0; i < 50; i++ {
		c.Train(vector, link.Choke)
	}

	after := choke(t, c, vector)
	if after <= 0 {
		t.Fatalf("choke's weight after 50 trains = %f, want > 0", after)
	}

	litmus := Litmus(after)
	if Tier(litmus) == TierPermit {
		t.Fatalf("after 50 unanswered forwards, tier = Permit, want a non-permit tier (litmus=%d)", litmus)
	}
}

func choke(t *testing.T, c *Classifier, vector hbfi.Key) float64 {
	t.Helper()
	for _, w := range c.Classify(vector) {
		if w.Link.IsChoke() {
			return w.Weight
		}
	}
	t.Fatalf("choke missing from Classify results")
	return 0
}

func TestChokeDefenseTierThresholds(t *testing.T) {
	cases := []struct {
		litmus int
		want   DefenseTier
	}{
		{0, TierPermit},
		{35, TierPermit},
		{36, TierFlagSigning},
		{59, TierFlagSigning},
		{60, TierFlagReview},
		{89, TierFlagReview},
		{90, TierDrop},
		{100, TierDrop},
	}
	for _, tc := range cases {
		if got := Tier(tc.litmus); got != tc.want {
			t.Fatalf("Tier(%d) = %v, want %v", tc.litmus, got, tc.want)
		}
	}
}

func TestLitmusClampsToRange(t *testing.T) {
	if v := Litmus(-1000); v < 0 || v > 100 {
		t.Fatalf("Litmus(-1000) = %d, out of range", v)
	}
	if v := Litmus(1000); v < 0 || v > 100 {
		t.Fatalf("Litmus(1000) = %d, out of range", v)
	}
}

func TestClassifyIsSortedDescending(t *testing.T) {
	c := New()
	a, b := link.NewIdentity(1), link.NewIdentity(2)
	c.AddLink(a)
	c.AddLink(b)
	vector := sampleVector()
	c.SuperTrain(vector, a)

	ranked := c.Classify(vector)
	for i := 1; i < len(ranked); i++ {
		if ranked[i-1].Weight < ranked[i].Weight {
			t.Fatalf("Classify result not sorted descending at index %d", i)
		}
	}
}
