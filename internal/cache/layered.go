package cache

import (
	"context"
	"errors"
	"sync"
	"time"
)

// allOwners marks a failure that was not scoped to one owner.
const allOwners = ""

// Layered reads the fast tier first and falls back to the durable tier,
// promoting hits. Writes and deletes go to both.
//
// When the durable tier fails to list or delete an owner's keys, the owner
// is marked stale: durable entries written before the failure are treated
// as misses until a sweep has removed them.
type Layered struct {
	fast     Backend
	durable  Backend
	clockNow func() time.Time

	mu    sync.Mutex
	stale map[string]time.Time
}

func NewLayered(fast, durable Backend) *Layered {
	return &Layered{
		fast:     fast,
		durable:  durable,
		clockNow: time.Now,
		stale:    make(map[string]time.Time),
	}
}

func (l *Layered) Get(ctx context.Context, key Key) (Entry, bool, error) {
	if e, ok, err := l.fast.Get(ctx, key); err == nil && ok {
		return e, true, nil
	}

	e, ok, err := l.durable.Get(ctx, key)
	if err != nil || !ok {
		return Entry{}, false, err
	}
	if l.isStale(key.OwnerID, e.WrittenAt) {
		_ = l.durable.Delete(ctx, key)
		return Entry{}, false, nil
	}

	// keep the original write time so the TTL is not extended
	_ = l.fast.Put(ctx, key, e)
	return e, true, nil
}

func (l *Layered) Put(ctx context.Context, key Key, entry Entry) error {
	return errors.Join(l.fast.Put(ctx, key, entry), l.durable.Put(ctx, key, entry))
}

func (l *Layered) Delete(ctx context.Context, keys ...Key) error {
	errFast := l.fast.Delete(ctx, keys...)
	errDurable := l.durable.Delete(ctx, keys...)
	if errDurable != nil {
		for _, k := range keys {
			l.markStale(k.OwnerID)
		}
	}
	return errors.Join(errFast, errDurable)
}

// Keys merges both tiers. A failing tier does not hide the other tier's
// keys: they are returned together with the error.
func (l *Layered) Keys(ctx context.Context, ownerID string) ([]Key, error) {
	fast, errFast := l.fast.Keys(ctx, ownerID)
	durable, errDurable := l.durable.Keys(ctx, ownerID)
	if errDurable != nil {
		l.markStale(ownerID)
	}

	seen := make(map[Key]struct{}, len(fast)+len(durable))
	keys := make([]Key, 0, len(fast)+len(durable))
	for _, k := range append(fast, durable...) {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys, errors.Join(errFast, errDurable)
}

func (l *Layered) Sweep(ctx context.Context, before time.Time) (int, error) {
	a, errA := l.fast.Sweep(ctx, before)
	b, errB := l.durable.Sweep(ctx, before)
	if errB == nil {
		l.clearStale(before)
	}
	return max(a, b), errors.Join(errA, errB)
}

func (l *Layered) markStale(ownerID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stale[ownerID] = l.clockNow()
}

func (l *Layered) isStale(ownerID string, written time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, owner := range []string{ownerID, allOwners} {
		if at, ok := l.stale[owner]; ok && !written.After(at) {
			return true
		}
	}
	return false
}

// clearStale drops marks older than the sweep cutoff; every durable entry
// they covered is gone.
func (l *Layered) clearStale(before time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for owner, at := range l.stale {
		if at.Before(before) {
			delete(l.stale, owner)
		}
	}
}
