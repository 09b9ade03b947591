package cache

import (
	"crypto/rand"
	"testing"

	"github.com/narrowmesh/core/hbfi"
	"github.com/narrowmesh/core/identity"
	"github.com/narrowmesh/core/packet"
)

func sampleResponse(t *testing.T, app string, offset uint64) packet.Response {
	t.Helper()
	producer, err := identity.Generate(rand.Reader)
	if err != nil {
		t.Fatalf("identity.Generate: %v", err)
	}
	h := hbfi.New(producer.Public(), app, "mod", "fun", "arg", offset)
	req := packet.NewRequest(h)
	resp, err := packet.Transmute(producer, req, []byte("hello"), offset, 1, rand.Reader)
	if err != nil {
		t.Fatalf("Transmute: %v", err)
	}
	return resp
}

func TestCacheInsertAndGet(t *testing.T) {
	c, err := New(4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	resp := sampleResponse(t, "app", 0)
	c.Insert(resp)

	got, ok := c.Get(resp.HBFI)
	if !ok {
		t.Fatalf("Get did not find inserted Response")
	}
	if got.HBFI.Offset != resp.HBFI.Offset {
		t.Fatalf("Get returned wrong Response")
	}
}

func TestCacheFindByPredicate(t *testing.T) {
	c, err := New(4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	resp := sampleResponse(t, "app", 0)
	c.Insert(resp)

	_, ok := c.Find(func(r packet.Response) bool {
		return r.HBFI.ResBFI == resp.HBFI.ResBFI
	})
	if !ok {
		t.Fatalf("Find did not locate matching Response")
	}
}

func TestCacheEvictsUnderCapacity(t *testing.T) {
	c, err := New(1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r0 := sampleResponse(t, "app", 0)
	r1 := sampleResponse(t, "app", 0)

	c.Insert(r0)
	c.Insert(r1)

	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
	if _, ok := c.Get(r0.HBFI); ok {
		t.Fatalf("capacity-1 cache should have evicted the first entry")
	}
}

func TestCacheSubscribeNotifiesOnMatch(t *testing.T) {
	c, err := New(4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	resp := sampleResponse(t, "app", 0)

	id, ch := c.Subscribe(resp.HBFI, LevelApp)
	defer c.Unsubscribe(id)

	c.Insert(resp)

	select {
	case got := <-ch:
		if got.HBFI.AppBFI != resp.HBFI.AppBFI {
			t.Fatalf("notified Response has wrong AppBFI")
		}
	default:
		t.Fatalf("subscriber was not notified of matching insert")
	}
}

func TestCacheSubscribeIgnoresNonMatch(t *testing.T) {
	c, err := New(4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	subject := sampleResponse(t, "app-a", 0)
	other := sampleResponse(t, "app-b", 0)

	id, ch := c.Subscribe(subject.HBFI, LevelApp)
	defer c.Unsubscribe(id)

	c.Insert(other)

	select {
	case <-ch:
		t.Fatalf("subscriber should not be notified of a non-matching insert")
	default:
	}
}

func TestCacheUnsubscribeStopsNotifications(t *testing.T) {
	c, err := New(4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	resp := sampleResponse(t, "app", 0)

	id, ch := c.Subscribe(resp.HBFI, LevelApp)
	c.Unsubscribe(id)

	c.Insert(resp)

	select {
	case <-ch:
		t.Fatalf("unsubscribed channel must not receive notifications")
	default:
	}
}
