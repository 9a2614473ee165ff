package feed

import (
	"encoding/json"

	"github.com/cockroachdb/pebble"

	pebblestore "github.com/rzbill/ora/internal/storage/pebble"
)

// Meta holds feed metadata and optional limits/overrides.
type Meta struct {
	Name            string `json:"name"`
	CreatedAtMs     int64  `json:"createdAtMs"`
	LifetimeMs      int64  `json:"lifetimeMs"`
	PayloadMaxBytes int    `json:"payloadMaxBytes"`
}

// DefaultMeta returns baseline settings for new feeds.
func DefaultMeta() Meta {
	return Meta{
		LifetimeMs:      3_600_000, // keep the last hour
		PayloadMaxBytes: 1 << 20,   // 1 MiB
	}
}

// EnsureMeta creates a feed registry record if absent, returning the
// effective meta. Idempotent: returns the existing record when present.
func EnsureMeta(db *pebblestore.DB, name string, defaults Meta, nowMs int64) (Meta, error) {
	key := KeyFeedRegistry(name)
	if b, err := db.Get(key); err == nil && len(b) > 0 {
		var m Meta
		if err := json.Unmarshal(b, &m); err == nil {
			return m, nil
		}
		// fallthrough to rewrite if corrupted
	}
	m := defaults
	m.Name = name
	m.CreatedAtMs = nowMs
	if m.LifetimeMs <= 0 {
		m.LifetimeMs = DefaultMeta().LifetimeMs
	}
	if m.PayloadMaxBytes <= 0 {
		m.PayloadMaxBytes = DefaultMeta().PayloadMaxBytes
	}
	bytes, err := json.Marshal(m)
	if err != nil {
		return Meta{}, err
	}
	if err := db.Set(key, bytes); err != nil {
		return Meta{}, err
	}
	return m, nil
}

// ListMeta returns every registered feed's metadata, ordered by name.
func ListMeta(db *pebblestore.DB) ([]Meta, error) {
	low := append([]byte(nil), regPrefix...)
	high := append(append([]byte(nil), regPrefix...), 0xff)
	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: high})
	if err != nil {
		return nil, err
	}
	var out []Meta
	for ok := iter.First(); ok; ok = iter.Next() {
		var m Meta
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMeta loads the registry record for a feed.
func GetMeta(db *pebblestore.DB, name string) (Meta, bool) {
	b, err := db.Get(KeyFeedRegistry(name))
	if err != nil || len(b) == 0 {
		return Meta{}, false
	}
	var m Meta
	if err := json.Unmarshal(b, &m); err != nil {
		return Meta{}, false
	}
	return m, true
}
