// Package feed implements Ora's durable oracle feed.
//
// # Overview
//
// A Feed pairs the in-memory time-windowed log (internal/window) with a
// Pebble-backed mirror so the retained entry set survives restarts. Entries
// are keyed by a contiguous big-endian sequence:
//   - feed/{name}/m            (counters: lastSeq)
//   - feed/{name}/e/{seq_be8}  (entries)
//   - feedmeta/{name}          (registry metadata, JSON)
//
// Records are stored as: recordedAtMs(8B BE) | payload | crc32c(ts|payload).
//
// API surface (internal)
//
//	meta, _ := feed.EnsureMeta(db, "prices", feed.DefaultMeta(), nowMs)
//	f, _ := feed.Open(db, meta, feed.Options{Authority: "oracle-1"})
//
//	// Producer push: authority-checked, monotone in time, atomic commit
//	res, err := f.Push(ctx, "oracle-1", payload)
//
//	// Anyone may trigger cleanup of aged-out entries
//	n, _ := f.Cleanup(ctx)
//
//	// Chronological live payloads, optionally CEL-filtered
//	flt, _ := feed.NewFilter(`age_ms < 60000`)
//	data := f.Data(flt)
//
//	// Blocking wait/notify for subscribers
//	woke := f.WaitForPush(200 * time.Millisecond)
//	_ = woke
//
// # Time and ordering
//
// The feed takes `now` from its Clock on every operation and hands it to the
// window, which rejects any time older than the newest retained entry. Both
// Push and Cleanup share that gate, so a clock that regressed can neither
// insert nor evict until it catches back up. Expiry is inclusive: an entry
// whose age equals the lifetime is gone from reads.
//
// # Notification
//
// After a push commits, the EmitterHook fires with the entry and waiters
// blocked in WaitForPush wake. Delivery is best-effort and outside the
// storage transaction.
package feed
