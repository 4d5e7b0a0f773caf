package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Memory is a size-bounded LRU backend. Freshness is decided by Cache, so
// the LRU itself carries no expiry.
type Memory struct {
	lru *lru.Cache[Key, Entry]
}

func NewMemory(maxSize int) *Memory {
	if maxSize < 1 {
		maxSize = 1
	}
	// New only fails for a non-positive size
	c, _ := lru.New[Key, Entry](maxSize)
	return &Memory{lru: c}
}

func (m *Memory) Get(_ context.Context, key Key) (Entry, bool, error) {
	e, ok := m.lru.Get(key)
	return e, ok, nil
}

func (m *Memory) Put(_ context.Context, key Key, entry Entry) error {
	m.lru.Add(key, entry)
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...Key) error {
	for _, k := range keys {
		m.lru.Remove(k)
	}
	return nil
}

func (m *Memory) Keys(_ context.Context, ownerID string) ([]Key, error) {
	all := m.lru.Keys()
	if ownerID == "" {
		return all, nil
	}
	keys := make([]Key, 0, len(all))
	for _, k := range all {
		if k.OwnerID == ownerID {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *Memory) Sweep(_ context.Context, before time.Time) (int, error) {
	n := 0
	for _, k := range m.lru.Keys() {
		if e, ok := m.lru.Peek(k); ok && e.WrittenAt.Before(before) {
			if m.lru.Remove(k) {
				n++
			}
		}
	}
	return n, nil
}

func (m *Memory) Len() int {
	return m.lru.Len()
}
