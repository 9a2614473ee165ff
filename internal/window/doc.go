// Package window implements Ora's time-windowed ordered log.
//
// # Overview
//
// A Log holds (payload, recordedAt) entries ordered by recording time and
// retains each entry for a fixed lifetime. Timestamps are supplied by the
// caller on every operation; the log never reads a clock. The sequence of
// recorded times is non-decreasing by construction: Push routes through the
// same eviction path that rejects a `now` older than the newest stored entry,
// so an out-of-order insert can never land.
//
// Because timestamps are non-decreasing, entry age is non-increasing along
// the sequence and expired entries always form a prefix. Eviction locates the
// first live entry with a binary search and drops the prefix in one move.
//
// API surface (internal)
//
//	l := window.New[int64](3_600_000) // one hour, milliseconds
//	err := l.Push(nowMs, payload)     // evicts expired, then appends
//	n, err := l.EvictExpired(nowMs)   // explicit cleanup, returns count
//	for p := range l.Live(nowMs) {    // read-only, oldest first
//	    _ = p
//	}
//
// An entry is expired once its age reaches the lifetime: age >= L, inclusive.
// Live returns views into the log's backing storage; they are valid until the
// next Push or EvictExpired. Callers that hold payloads across mutations must
// copy them out.
//
// The log performs no locking. A single mutator at a time is assumed; the
// owning component provides exclusion.
package window
