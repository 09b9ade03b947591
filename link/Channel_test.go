package link

import (
	"context"
	"crypto/rand"
	"testing"
	"time"

	"github.com/narrowmesh/core/hbfi"
	"github.com/narrowmesh/core/identity"
	"github.com/narrowmesh/core/packet"
	"github.com/narrowmesh/core/wire"
)

func mustIdentity(t *testing.T) identity.Private {
	t.Helper()
	id, err := identity.Generate(rand.Reader)
	if err != nil {
		t.Fatalf("identity.Generate: %v", err)
	}
	return id
}

func TestChannelRoundTripsRequest(t *testing.T) {
	aLocal := mustIdentity(t)
	bLocal := mustIdentity(t)
	aPub, bPub := aLocal.Public(), bLocal.Public()

	aToB := make(chan []byte, 1)
	bToA := make(chan []byte, 1)

	aIngress := make(chan InterLink, 1)
	aEgress := make(chan InterLink, 1)
	bIngress := make(chan InterLink, 1)
	bEgress := make(chan InterLink, 1)

	a, err := NewChannel(Config{ID: NewIdentity(1), Local: aLocal, Peer: &bPub}, Endpoint{EgressToLink: aEgress, IngressFromLink: aIngress}, aToB, bToA)
	if err != nil {
		t.Fatalf("NewChannel a: %v", err)
	}
	b, err := NewChannel(Config{ID: NewIdentity(2), Local: bLocal, Peer: &aPub}, Endpoint{EgressToLink: bEgress, IngressFromLink: bIngress}, bToA, aToB)
	if err != nil {
		t.Fatalf("NewChannel b: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)
	go b.Run(ctx)

	producer := mustIdentity(t)
	h := hbfi.New(producer.Public(), "app", "mod", "fun", "arg", 0)
	req := packet.NewRequest(h)
	lp := wire.LinkPacket{
		LinkTxPID: aLocal.Public(),
		Payload:   packet.NarrowWaist{Kind: packet.KindRequest, Request: &req},
	}
	nonce, err := wire.FreshNonce()
	if err != nil {
		t.Fatalf("FreshNonce: %v", err)
	}
	lp.Nonce = nonce

	aEgress <- NewInterLink(NewIdentity(1), lp)

	select {
	case il := <-bIngress:
		if il.Packet.Payload.Request == nil || !il.Packet.Payload.Request.HBFI.Equal(h) {
			t.Fatalf("received HBFI mismatch")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for b to receive the Request")
	}
}

func TestCorruptingChannelStillDeliversWithinCorrectableBound(t *testing.T) {
	aLocal := mustIdentity(t)
	bLocal := mustIdentity(t)

	aToB := make(chan []byte, 1)
	bToA := make(chan []byte, 1)

	aIngress := make(chan InterLink, 1)
	aEgress := make(chan InterLink, 1)
	bIngress := make(chan InterLink, 1)
	bEgress := make(chan InterLink, 1)

	a, err := NewChannel(Config{ID: NewIdentity(1), Local: aLocal}, Endpoint{EgressToLink: aEgress, IngressFromLink: aIngress}, aToB, bToA)
	if err != nil {
		t.Fatalf("NewChannel a: %v", err)
	}
	b, err := NewCorruptingChannel(Config{ID: NewIdentity(2), Local: bLocal}, Endpoint{EgressToLink: bEgress, IngressFromLink: bIngress}, bToA, aToB, []int{10, 50})
	if err != nil {
		t.Fatalf("NewCorruptingChannel b: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)
	go b.Run(ctx)

	producer := mustIdentity(t)
	h := hbfi.New(producer.Public(), "app", "mod", "fun", "arg", 0)
	req := packet.NewRequest(h)
	nonce, err := wire.FreshNonce()
	if err != nil {
		t.Fatalf("FreshNonce: %v", err)
	}
	lp := wire.LinkPacket{
		LinkTxPID: aLocal.Public(),
		Nonce:     nonce,
		Payload:   packet.NarrowWaist{Kind: packet.KindRequest, Request: &req},
	}

	aEgress <- NewInterLink(NewIdentity(1), lp)

	select {
	case il := <-bIngress:
		if !il.Packet.Payload.Request.HBFI.Equal(h) {
			t.Fatalf("received HBFI mismatch after correctable corruption")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("corrupted frame within correctable bound was not delivered")
	}
}

func TestChokeIsNotARealLink(t *testing.T) {
	if !Choke.IsChoke() {
		t.Fatalf("Choke.IsChoke() = false, want true")
	}
	real := NewIdentity(7)
	if real.IsChoke() {
		t.Fatalf("a real Identity must never report IsChoke() == true")
	}
	if real == Choke {
		t.Fatalf("a real Identity must never compare equal to Choke")
	}
}
