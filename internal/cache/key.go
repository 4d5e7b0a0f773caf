package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	EntityTransactions = "transactions"
	EntityCards        = "cards"
	EntityBalance      = "balance"
)

// Key identifies a cached result. Filters is the canonical JSON of the
// filter set, so Key is comparable and equal filter sets give equal keys.
type Key struct {
	Entity  string
	OwnerID string
	Filters string
}

// NewKey builds a key from any JSON-encodable filter value. Object keys are
// sorted and empty values dropped before encoding.
func NewKey(entity, ownerID string, filters any) (Key, error) {
	canonical, err := canonicalJSON(filters)
	if err != nil {
		return Key{}, fmt.Errorf("cache key for %s: %w", entity, err)
	}
	return Key{Entity: entity, OwnerID: ownerID, Filters: canonical}, nil
}

// String renders the persisted form <entity>:<ownerId>:<filters>.
func (k Key) String() string {
	return k.Entity + ":" + k.OwnerID + ":" + k.Filters
}

// ParseKey reverses String. Owner ids never contain ':'; filters may.
func ParseKey(s string) (Key, bool) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 || parts[0] == "" {
		return Key{}, false
	}
	return Key{Entity: parts[0], OwnerID: parts[1], Filters: parts[2]}, true
}

func canonicalJSON(v any) (string, error) {
	if v == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return "", err
	}

	pruned := prune(generic)
	if pruned == nil {
		return "{}", nil
	}
	// encoding/json writes map keys in sorted order
	out, err := json.Marshal(pruned)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func prune(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		return t
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if p := prune(val); p != nil {
				out[k] = p
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case []any:
		if len(t) == 0 {
			return nil
		}
		out := make([]any, 0, len(t))
		for _, val := range t {
			out = append(out, prune(val))
		}
		return out
	default:
		return t
	}
}
