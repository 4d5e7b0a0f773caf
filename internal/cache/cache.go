// Package cache is a TTL cache for query results. The freshness policy
// lives in Cache; backends only store entries.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/GregMSThompson/wallet-api/pkg/logger"
)

type Entry struct {
	Value     []byte
	WrittenAt time.Time
}

type Backend interface {
	Get(ctx context.Context, key Key) (Entry, bool, error)
	Put(ctx context.Context, key Key, entry Entry) error
	Delete(ctx context.Context, keys ...Key) error
	// Keys lists stored keys, all of them when ownerID is empty. On error it
	// may return the keys it could still read.
	Keys(ctx context.Context, ownerID string) ([]Key, error)
	// Sweep removes entries written before the cutoff.
	Sweep(ctx context.Context, before time.Time) (int, error)
}

// Notifier propagates an owner invalidation to other instances.
type Notifier interface {
	Notify(ctx context.Context, entity, ownerID string) error
}

type Cache struct {
	backend  Backend
	ttl      time.Duration
	clockNow func() time.Time
	notifier Notifier
}

func New(backend Backend, ttl time.Duration, clockNow func() time.Time) *Cache {
	if clockNow == nil {
		clockNow = time.Now
	}
	return &Cache{backend: backend, ttl: ttl, clockNow: clockNow}
}

func (c *Cache) SetNotifier(n Notifier) {
	c.notifier = n
}

func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns the entry when it is younger than the TTL. Stale entries are
// deleted. Backend failures are logged and reported as a miss.
func (c *Cache) Get(ctx context.Context, key Key) (Entry, bool) {
	log := logger.FromContext(ctx)

	entry, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		log.Warn("cache read failed", "key", key.String(), "error", err)
		return Entry{}, false
	}
	if !ok {
		log.Debug("cache miss", "key", key.String())
		return Entry{}, false
	}

	if !c.fresh(entry) {
		log.Debug("cache entry expired", "key", key.String(), "written_at", entry.WrittenAt)
		if err := c.backend.Delete(ctx, key); err != nil {
			log.Warn("cache delete failed", "key", key.String(), "error", err)
		}
		return Entry{}, false
	}

	log.Debug("cache hit", "key", key.String())
	return entry, true
}

func (c *Cache) fresh(e Entry) bool {
	return c.clockNow().Sub(e.WrittenAt) < c.ttl
}

// Put stores value stamped with the current time.
func (c *Cache) Put(ctx context.Context, key Key, value []byte) {
	entry := Entry{Value: value, WrittenAt: c.clockNow()}
	if err := c.backend.Put(ctx, key, entry); err != nil {
		logger.FromContext(ctx).Warn("cache write failed", "key", key.String(), "error", err)
	}
}

// Invalidate deletes every entry whose key matches pred and returns the
// number removed.
func (c *Cache) Invalidate(ctx context.Context, pred func(Key) bool) int {
	return c.invalidate(ctx, "", pred)
}

func (c *Cache) invalidate(ctx context.Context, ownerID string, pred func(Key) bool) int {
	log := logger.FromContext(ctx)

	// a failed scan may still return keys; drop what was found
	keys, err := c.backend.Keys(ctx, ownerID)
	if err != nil {
		log.Warn("cache key scan failed", "error", err, "keys", len(keys))
	}

	var doomed []Key
	for _, k := range keys {
		if pred(k) {
			doomed = append(doomed, k)
		}
	}
	if len(doomed) == 0 {
		return 0
	}

	if err := c.backend.Delete(ctx, doomed...); err != nil {
		log.Warn("cache invalidation failed", "error", err, "keys", len(doomed))
		return 0
	}
	return len(doomed)
}

// InvalidateOwner drops an owner's entries for one entity, or for every
// entity when entity is empty, and notifies other instances.
func (c *Cache) InvalidateOwner(ctx context.Context, entity, ownerID string) int {
	n := c.InvalidateLocal(ctx, entity, ownerID)

	if c.notifier != nil {
		if err := c.notifier.Notify(ctx, entity, ownerID); err != nil {
			logger.FromContext(ctx).Warn("cache invalidation broadcast failed",
				"entity", entity, "owner", ownerID, "error", err)
		}
	}
	return n
}

// InvalidateLocal is InvalidateOwner without the broadcast. The event
// consumer uses it for invalidations received from other instances.
func (c *Cache) InvalidateLocal(ctx context.Context, entity, ownerID string) int {
	n := c.invalidate(ctx, ownerID, func(k Key) bool {
		return k.OwnerID == ownerID && (entity == "" || k.Entity == entity)
	})
	logger.FromContext(ctx).Debug("cache invalidated", "entity", entity, "owner", ownerID, "removed", n)
	return n
}

// Sweep drops entries older than the TTL.
func (c *Cache) Sweep(ctx context.Context) int {
	n, err := c.backend.Sweep(ctx, c.clockNow().Add(-c.ttl))
	if err != nil {
		logger.FromContext(ctx).Warn("cache sweep failed", "error", err)
	}
	return n
}

// GetJSON decodes a fresh entry into T. Undecodable entries count as a miss.
func GetJSON[T any](ctx context.Context, c *Cache, key Key) (T, bool) {
	var out T
	entry, ok := c.Get(ctx, key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(entry.Value, &out); err != nil {
		logger.FromContext(ctx).Warn("cache entry undecodable", "key", key.String(), "error", err)
		var zero T
		return zero, false
	}
	return out, true
}

func PutJSON(ctx context.Context, c *Cache, key Key, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		logger.FromContext(ctx).Warn("cache entry unencodable", "key", key.String(), "error", err)
		return
	}
	c.Put(ctx, key, raw)
}
