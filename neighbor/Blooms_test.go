package neighbor

import (
	"crypto/rand"
	"testing"

	"github.com/narrowmesh/core/hbfi"
	"github.com/narrowmesh/core/identity"
)

func sampleHBFI(t *testing.T, offset uint64) hbfi.HBFI {
	t.Helper()
	id, err := identity.Generate(rand.Reader)
	if err != nil {
		t.Fatalf("identity.Generate: %v", err)
	}
	return hbfi.New(id.Public(), "app", "mod", "fun", "arg", offset)
}

func TestPendingRequestLifecycle(t *testing.T) {
	b, err := NewBlooms(4)
	if err != nil {
		t.Fatalf("NewBlooms: %v", err)
	}

	h := sampleHBFI(t, 0)
	if b.ContainsPendingRequest(h) {
		t.Fatalf("fresh Blooms must not contain any pending request")
	}
	b.CreatePendingRequest(h)
	if !b.ContainsPendingRequest(h) {
		t.Fatalf("pending request not recorded")
	}
}

func TestForwardedRequestLifecycle(t *testing.T) {
	b, err := NewBlooms(4)
	if err != nil {
		t.Fatalf("NewBlooms: %v", err)
	}

	h := sampleHBFI(t, 0)
	if b.ContainsForwardedRequest(h) {
		t.Fatalf("fresh Blooms must not contain any forwarded request")
	}
	b.CreateForwardedRequest(h)
	if !b.ContainsForwardedRequest(h) {
		t.Fatalf("forwarded request not recorded")
	}
}

func TestBloomsKeysOnlyShareSlotAcrossOffsets(t *testing.T) {
	b, err := NewBlooms(4)
	if err != nil {
		t.Fatalf("NewBlooms: %v", err)
	}

	id, err := identity.Generate(rand.Reader)
	if err != nil {
		t.Fatalf("identity.Generate: %v", err)
	}
	h0 := hbfi.New(id.Public(), "app", "mod", "fun", "arg", 0)
	h1 := hbfi.New(id.Public(), "app", "mod", "fun", "arg", 1)

	b.CreatePendingRequest(h0)
	if !b.ContainsPendingRequest(h1) {
		t.Fatalf("fragments of the same stream must share one bloom slot regardless of offset")
	}
}

func TestBloomsEvictsUnderCapacity(t *testing.T) {
	b, err := NewBlooms(1)
	if err != nil {
		t.Fatalf("NewBlooms: %v", err)
	}

	h0 := sampleHBFI(t, 0)
	h1 := sampleHBFI(t, 0)

	b.CreatePendingRequest(h0)
	b.CreatePendingRequest(h1)

	if b.ContainsPendingRequest(h0) {
		t.Fatalf("capacity-1 bloom should have evicted the first entry")
	}
	if !b.ContainsPendingRequest(h1) {
		t.Fatalf("capacity-1 bloom should still contain the most recent entry")
	}
}
