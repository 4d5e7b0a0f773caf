package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLayeredPromotesDurableHits(t *testing.T) {
	ctx := context.Background()
	fast := NewMemory(10)
	durable := NewMemory(10)
	l := NewLayered(fast, durable)
	key := Key{Entity: EntityCards, OwnerID: "u1", Filters: "{}"}
	written := time.Now().Add(-10 * time.Second)

	_ = durable.Put(ctx, key, Entry{Value: []byte(`[]`), WrittenAt: written})

	e, ok, err := l.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if !e.WrittenAt.Equal(written) {
		t.Fatal("promotion must keep the original write time")
	}
	if _, ok, _ := fast.Get(ctx, key); !ok {
		t.Fatal("expected promotion into the fast tier")
	}
}

func TestLayeredWritesAndDeletesBoth(t *testing.T) {
	ctx := context.Background()
	fast := NewMemory(10)
	durable := NewMemory(10)
	l := NewLayered(fast, durable)
	key := Key{Entity: EntityCards, OwnerID: "u1", Filters: "{}"}

	_ = l.Put(ctx, key, Entry{Value: []byte(`[]`), WrittenAt: time.Now()})
	if fast.Len() != 1 || durable.Len() != 1 {
		t.Fatal("Put should write both tiers")
	}

	keys, _ := l.Keys(ctx, "u1")
	if len(keys) != 1 {
		t.Fatalf("Keys should dedupe, got %v", keys)
	}

	_ = l.Delete(ctx, key)
	if fast.Len() != 0 || durable.Len() != 0 {
		t.Fatal("Delete should clear both tiers")
	}
}

func TestCacheOverLayeredRespectsTTL(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}
	durable := NewMemory(10)
	c := New(NewLayered(NewMemory(10), durable), time.Minute, clock.Now)
	key := Key{Entity: EntityBalance, OwnerID: "u1", Filters: "{}"}

	_ = durable.Put(ctx, key, Entry{Value: []byte(`1`), WrittenAt: clock.now.Add(-2 * time.Minute)})

	if _, ok := c.Get(ctx, key); ok {
		t.Fatal("stale durable entry must be a miss")
	}
	if durable.Len() != 0 {
		t.Fatal("stale entry should be removed from the durable tier")
	}
}

// brokenDurable stores entries but fails to list or delete them.
type brokenDurable struct {
	*Memory
}

func (b brokenDurable) Keys(context.Context, string) ([]Key, error) {
	return nil, errors.New("disk I/O error")
}

func (b brokenDurable) Delete(context.Context, ...Key) error {
	return errors.New("disk I/O error")
}

func TestInvalidateOwnerSurvivesFailingDurableTier(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	fast := NewMemory(10)
	durable := brokenDurable{NewMemory(10)}
	l := NewLayered(fast, durable)
	l.clockNow = clock.Now
	c := New(l, time.Minute, clock.Now)
	key := Key{Entity: EntityTransactions, OwnerID: "u1", Filters: "{}"}

	c.Put(ctx, key, []byte(`[1]`))
	clock.Advance(time.Second)

	c.InvalidateOwner(ctx, EntityTransactions, "u1")

	if fast.Len() != 0 {
		t.Fatalf("fast tier still holds %d entries", fast.Len())
	}
	if _, ok := c.Get(ctx, key); ok {
		t.Fatal("invalidated entry still served from the durable tier")
	}

	clock.Advance(time.Second)
	c.Put(ctx, key, []byte(`[2]`))
	_ = fast.Delete(ctx, key)
	e, ok := c.Get(ctx, key)
	if !ok || string(e.Value) != `[2]` {
		t.Fatalf("entry written after the failure should be served, got %q ok=%v", e.Value, ok)
	}
}

func TestSweepClearsStaleMarks(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := NewLayered(NewMemory(10), brokenDurable{NewMemory(10)})
	l.clockNow = clock.Now

	_, _ = l.Keys(ctx, "u1")
	if len(l.stale) != 1 {
		t.Fatalf("expected u1 marked stale, got %v", l.stale)
	}

	clock.Advance(2 * time.Minute)
	if _, err := l.Sweep(ctx, clock.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(l.stale) != 0 {
		t.Fatalf("stale marks not cleared: %v", l.stale)
	}
}
