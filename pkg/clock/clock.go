// Package clock provides the time source abstraction used by Ora feeds.
// Feeds never read the wall clock directly; they are handed a Clock so tests
// and embedders control the notion of "now".
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current time in milliseconds since the Unix epoch.
type Clock interface {
	NowMs() int64
}

// Wall reads the system clock.
type Wall struct{}

// NowMs returns time.Now in Unix milliseconds.
func (Wall) NowMs() int64 { return time.Now().UnixMilli() }

// Manual is a settable clock for tests and deterministic runs.
type Manual struct {
	mu sync.Mutex
	ms int64
}

// NewManual returns a Manual clock starting at ms.
func NewManual(ms int64) *Manual { return &Manual{ms: ms} }

// NowMs returns the current manual time.
func (m *Manual) NowMs() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ms
}

// Set moves the clock to ms. Moving backwards is allowed; feeds reject
// stale times themselves.
func (m *Manual) Set(ms int64) {
	m.mu.Lock()
	m.ms = ms
	m.mu.Unlock()
}

// Advance moves the clock forward by d milliseconds.
func (m *Manual) Advance(d int64) {
	m.mu.Lock()
	m.ms += d
	m.mu.Unlock()
}
