package window

import (
	"errors"
	"iter"
	"sort"
)

// Moment is any integer timestamp type: totally ordered and subtractable.
// Millisecond counts are typical but the log only relies on order and
// difference, not on any particular epoch or unit.
type Moment interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// ErrHistoricalData is returned when the supplied `now` is older than the
// newest stored entry. Accepting it would break the non-decreasing timestamp
// order the log depends on, so the operation aborts without mutating.
var ErrHistoricalData = errors.New("attempt to insert historical data")

type entry[M Moment] struct {
	payload    []byte
	recordedAt M
}

// Log is an ordered sequence of (payload, recordedAt) entries with a fixed
// retention lifetime. The zero value is not usable; construct with New.
type Log[M Moment] struct {
	lifetime M
	entries  []entry[M]
}

// New returns an empty log that retains entries younger than lifetime.
func New[M Moment](lifetime M) *Log[M] {
	return &Log[M]{lifetime: lifetime}
}

// Lifetime returns the retention window the log was built with.
func (l *Log[M]) Lifetime() M { return l.lifetime }

// Len returns the number of physically stored entries, expired or not.
func (l *Log[M]) Len() int { return len(l.entries) }

// Latest returns the recording time of the newest entry, if any.
func (l *Log[M]) Latest() (M, bool) {
	if len(l.entries) == 0 {
		var zero M
		return zero, false
	}
	return l.entries[len(l.entries)-1].recordedAt, true
}

// expired reports whether an entry recorded at `at` has aged out by `now`.
// The boundary is inclusive: age exactly equal to the lifetime is expired.
// Entries newer than `now` count as live so the predicate stays monotone
// along the sequence.
func (l *Log[M]) expired(at, now M) bool {
	return at <= now && now-at >= l.lifetime
}

// partitionPoint returns the index of the first live entry at `now`.
// Expired entries form a prefix, so binary search applies.
func (l *Log[M]) partitionPoint(now M) int {
	return sort.Search(len(l.entries), func(i int) bool {
		return !l.expired(l.entries[i].recordedAt, now)
	})
}

// ExpiredCount returns how many entries EvictExpired(now) would remove,
// without mutating the log or checking `now` against the newest entry.
func (l *Log[M]) ExpiredCount(now M) int {
	return l.partitionPoint(now)
}

// EvictExpired removes every entry whose age at `now` has reached the
// lifetime and returns how many were dropped. A `now` older than the newest
// stored entry is rejected with ErrHistoricalData before any mutation.
func (l *Log[M]) EvictExpired(now M) (int, error) {
	if last, ok := l.Latest(); ok && last > now {
		return 0, ErrHistoricalData
	}
	p := l.partitionPoint(now)
	if p == 0 {
		return 0, nil
	}
	keep := copy(l.entries, l.entries[p:])
	for i := keep; i < len(l.entries); i++ {
		l.entries[i] = entry[M]{}
	}
	l.entries = l.entries[:keep]
	return p, nil
}

// Push appends payload recorded at `now`, evicting expired entries first.
// The embedded eviction is the single enforcement point for timestamp order:
// a stale `now` fails with ErrHistoricalData and nothing is inserted. The
// payload is stored as given, not copied.
func (l *Log[M]) Push(now M, payload []byte) error {
	if _, err := l.EvictExpired(now); err != nil {
		return err
	}
	l.entries = append(l.entries, entry[M]{payload: payload, recordedAt: now})
	return nil
}

// Live returns a lazy, restartable iteration over the payloads of entries
// still live at `now`, oldest first. It never mutates the log: entries that
// have expired stay physically present until Push or EvictExpired removes
// them. Yielded slices are views into the log; see the package doc.
func (l *Log[M]) Live(now M) iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for i := l.partitionPoint(now); i < len(l.entries); i++ {
			if !yield(l.entries[i].payload) {
				return
			}
		}
	}
}

// Entries is Live with recording times, for callers that need entry ages.
func (l *Log[M]) Entries(now M) iter.Seq2[M, []byte] {
	return func(yield func(M, []byte) bool) {
		for i := l.partitionPoint(now); i < len(l.entries); i++ {
			if !yield(l.entries[i].recordedAt, l.entries[i].payload) {
				return
			}
		}
	}
}
