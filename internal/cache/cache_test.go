package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GregMSThompson/wallet-api/pkg/helpers"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCache(t *testing.T) (*Cache, *Memory, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	mem := NewMemory(100)
	return New(mem, 60*time.Second, clock.Now), mem, clock
}

func mustKey(t *testing.T, entity, owner string, filters any) Key {
	t.Helper()
	k, err := NewKey(entity, owner, filters)
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}
	return k
}

func TestCacheTTLBoundary(t *testing.T) {
	ctx := helpers.TestCtx()
	c, mem, clock := newTestCache(t)
	key := mustKey(t, EntityTransactions, "u1", map[string]any{"userId": "u1"})

	c.Put(ctx, key, []byte(`[1]`))

	clock.Advance(59*time.Second + 999*time.Millisecond)
	if _, ok := c.Get(ctx, key); !ok {
		t.Fatal("expected hit just before TTL")
	}

	clock.Advance(time.Millisecond)
	if _, ok := c.Get(ctx, key); ok {
		t.Fatal("expected miss at exactly TTL")
	}
	if mem.Len() != 0 {
		t.Fatalf("expired entry should be deleted on read, %d left", mem.Len())
	}
}

func TestCacheInvalidateOwner(t *testing.T) {
	ctx := helpers.TestCtx()
	c, _, _ := newTestCache(t)

	u1Tx := mustKey(t, EntityTransactions, "u1", map[string]any{"pageSize": 10})
	u1TxPage2 := mustKey(t, EntityTransactions, "u1", map[string]any{"pageSize": 10, "lastDocId": "abc"})
	u1Cards := mustKey(t, EntityCards, "u1", nil)
	u2Tx := mustKey(t, EntityTransactions, "u2", map[string]any{"pageSize": 10})

	for _, k := range []Key{u1Tx, u1TxPage2, u1Cards, u2Tx} {
		c.Put(ctx, k, []byte(`{}`))
	}

	if n := c.InvalidateOwner(ctx, EntityTransactions, "u1"); n != 2 {
		t.Fatalf("removed %d, want 2", n)
	}

	if _, ok := c.Get(ctx, u1Tx); ok {
		t.Fatal("u1 transactions still cached")
	}
	if _, ok := c.Get(ctx, u1TxPage2); ok {
		t.Fatal("u1 transactions page 2 still cached")
	}
	if _, ok := c.Get(ctx, u1Cards); !ok {
		t.Fatal("u1 cards should survive")
	}
	if _, ok := c.Get(ctx, u2Tx); !ok {
		t.Fatal("u2 entries should survive")
	}

	c.InvalidateOwner(ctx, "", "u1")
	if _, ok := c.Get(ctx, u1Cards); ok {
		t.Fatal("empty entity should clear every entity of the owner")
	}
}

type recordingNotifier struct {
	calls []string
	err   error
}

func (n *recordingNotifier) Notify(_ context.Context, entity, owner string) error {
	n.calls = append(n.calls, entity+"/"+owner)
	return n.err
}

func TestCacheInvalidateOwnerNotifies(t *testing.T) {
	ctx := helpers.TestCtx()
	c, _, _ := newTestCache(t)
	n := &recordingNotifier{err: errors.New("broker down")}
	c.SetNotifier(n)

	c.InvalidateOwner(ctx, EntityCards, "u1")
	c.InvalidateLocal(ctx, EntityCards, "u2")

	if len(n.calls) != 1 || n.calls[0] != "cards/u1" {
		t.Fatalf("unexpected notifications %v", n.calls)
	}
}

func TestCacheInvalidatePredicate(t *testing.T) {
	ctx := helpers.TestCtx()
	c, _, _ := newTestCache(t)

	c.Put(ctx, mustKey(t, EntityBalance, "u1", nil), []byte(`1`))
	c.Put(ctx, mustKey(t, EntityBalance, "u2", nil), []byte(`2`))
	c.Put(ctx, mustKey(t, EntityCards, "u1", nil), []byte(`[]`))

	n := c.Invalidate(ctx, func(k Key) bool { return k.Entity == EntityBalance })
	if n != 2 {
		t.Fatalf("removed %d, want 2", n)
	}
}

func TestCacheSweep(t *testing.T) {
	ctx := helpers.TestCtx()
	c, mem, clock := newTestCache(t)

	c.Put(ctx, mustKey(t, EntityCards, "old", nil), []byte(`[]`))
	clock.Advance(2 * time.Minute)
	c.Put(ctx, mustKey(t, EntityCards, "new", nil), []byte(`[]`))

	if n := c.Sweep(ctx); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
	if mem.Len() != 1 {
		t.Fatalf("%d entries left", mem.Len())
	}
}

func TestGetPutJSON(t *testing.T) {
	ctx := helpers.TestCtx()
	c, _, _ := newTestCache(t)
	key := mustKey(t, EntityBalance, "u1", nil)

	type balance struct {
		Value float64 `json:"value"`
	}
	PutJSON(ctx, c, key, balance{Value: 12.5})

	got, ok := GetJSON[balance](ctx, c, key)
	if !ok || got.Value != 12.5 {
		t.Fatalf("got %+v ok=%v", got, ok)
	}

	c.Put(ctx, key, []byte(`not json`))
	if _, ok := GetJSON[balance](ctx, c, key); ok {
		t.Fatal("undecodable entry should be a miss")
	}
}
