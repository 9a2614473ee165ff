package log

import (
	"log/slog"
	"strconv"
	"sync"
)

// sampler suppresses repeats of the same message at the same level: the
// first initial occurrences always pass, after that every thereafter-th.
type sampler struct {
	initial    uint64
	thereafter uint64

	mu     sync.Mutex
	counts map[string]uint64
}

func newSampler(initial, thereafter int) *sampler {
	if initial < 0 {
		initial = 0
	}
	if thereafter <= 0 {
		thereafter = 1
	}
	return &sampler{
		initial:    uint64(initial),
		thereafter: uint64(thereafter),
		counts:     make(map[string]uint64),
	}
}

func (s *sampler) allow(level slog.Level, message string) bool {
	key := strconv.Itoa(int(level)) + ":" + message

	s.mu.Lock()
	n := s.counts[key]
	s.counts[key] = n + 1
	s.mu.Unlock()

	if n < s.initial {
		return true
	}
	return (n-s.initial)%s.thereafter == 0
}
