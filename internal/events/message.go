package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Invalidation tells other instances to drop an owner's cached entries.
// An empty Entity means every entity.
type Invalidation struct {
	Entity  string    `json:"entity,omitempty"`
	OwnerID string    `json:"ownerId"`
	Origin  string    `json:"origin"`
	At      time.Time `json:"at"`
}

func (m Invalidation) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func InvalidationFromJSON(data []byte) (*Invalidation, error) {
	var m Invalidation
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m.OwnerID == "" {
		return nil, fmt.Errorf("invalidation without owner")
	}
	return &m, nil
}
