package feed

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/rzbill/ora/internal/metrics"
	pebblestore "github.com/rzbill/ora/internal/storage/pebble"
	"github.com/rzbill/ora/internal/window"
	"github.com/rzbill/ora/pkg/clock"
	"github.com/rzbill/ora/pkg/id"
	logpkg "github.com/rzbill/ora/pkg/log"
)

var (
	// ErrWrongAuthority is returned when the pushing producer does not match
	// the configured feed authority.
	ErrWrongAuthority = errors.New("producer is not the feed authority")
	// ErrPayloadTooLarge is returned when a payload exceeds the feed's limit.
	ErrPayloadTooLarge = errors.New("payload exceeds feed limit")
)

// Options configures a Feed beyond its persisted Meta.
type Options struct {
	// Clock supplies `now` for every operation. Defaults to the wall clock.
	Clock clock.Clock
	// Authority is the only producer identity allowed to push. Empty allows
	// any producer.
	Authority string
	// Emitter observes committed pushes. Defaults to a no-op.
	Emitter EmitterHook
	// Logger for feed events. Defaults to a discard-level logger.
	Logger logpkg.Logger
	// IDs stamps pushed entries for notifications. Defaults to a generator
	// on Clock.
	IDs *id.Generator
}

// Feed is a durable time-windowed oracle feed. The live entry set lives in
// an in-memory window log; every retained entry is mirrored in Pebble under
// sequence-ordered keys so the window can be rebuilt on open.
//
// Entry sequences are contiguous: the window holds exactly the entries with
// sequence in (firstSeq, lastSeq], oldest first. Eviction only removes a
// prefix and push only appends, so the alignment is maintained by
// construction.
type Feed struct {
	db        *pebblestore.DB
	meta      Meta
	clk       clock.Clock
	authority string
	logger    logpkg.Logger
	ids       *id.Generator

	mu       sync.Mutex
	win      *window.Log[int64]
	firstSeq uint64
	lastSeq  uint64
	notifyCh chan struct{}
	emitter  EmitterHook
}

// PushResult describes a committed push.
type PushResult struct {
	ID           id.ID
	Seq          uint64
	RecordedAtMs int64
	Evicted      int
}

// Entry is one retained feed entry with its sequence and recording time.
type Entry struct {
	Seq          uint64
	RecordedAtMs int64
	Payload      []byte
}

// Stats summarizes a feed's retained state.
type Stats struct {
	Name       string `json:"name"`
	LifetimeMs int64  `json:"lifetimeMs"`
	Stored     int    `json:"stored"`
	Live       int    `json:"live"`
	FirstSeq   uint64 `json:"firstSeq"`
	LastSeq    uint64 `json:"lastSeq"`
	OldestMs   int64  `json:"oldestMs"`
	NewestMs   int64  `json:"newestMs"`
}

// Open loads a feed from storage, rebuilding the in-memory window from the
// persisted entries. Records that fail checksum or have aged out relative to
// the newest stored entry are dropped and the keyspace is compacted.
func Open(db *pebblestore.DB, meta Meta, opts Options) (*Feed, error) {
	if opts.Clock == nil {
		opts.Clock = clock.Wall{}
	}
	if opts.Emitter == nil {
		opts.Emitter = noopEmitter{}
	}
	if opts.Logger == nil {
		opts.Logger = logpkg.NewLogger(logpkg.WithLevel(logpkg.ErrorLevel), logpkg.WithOutput(logpkg.NewNullOutput()))
	}
	if opts.IDs == nil {
		opts.IDs = id.NewGenerator(opts.Clock)
	}
	f := &Feed{
		db:        db,
		meta:      meta,
		clk:       opts.Clock,
		authority: opts.Authority,
		logger:    opts.Logger.WithComponent("feed").With(logpkg.Str("feed", meta.Name)),
		ids:       opts.IDs,
		win:       window.New[int64](meta.LifetimeMs),
		notifyCh:  make(chan struct{}),
		emitter:   opts.Emitter,
	}

	// Load lastSeq from the counter record if present.
	if b, err := db.Get(KeyFeedMeta(meta.Name)); err == nil && len(b) >= 8 {
		f.lastSeq = binary.BigEndian.Uint64(b[:8])
	}

	if err := f.load(); err != nil {
		return nil, err
	}
	metrics.SetLiveEntries(f.meta.Name, f.win.Len())
	return f, nil
}

// load scans the feed keyspace into the window and compacts it when any
// record was dropped along the way.
func (f *Feed) load() error {
	low, high := entryBounds(f.meta.Name)
	iter, err := f.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: high})
	if err != nil {
		return err
	}

	scanned := 0
	for ok := iter.First(); ok; ok = iter.Next() {
		scanned++
		if seq := seqFromEntryKey(iter.Key()); seq > f.lastSeq {
			f.lastSeq = seq
		}
		at, payload, okDec := DecodeEntry(iter.Value())
		if !okDec {
			f.logger.Warn("dropping undecodable feed record", logpkg.Str("key", string(iter.Key())))
			continue
		}
		// Stored entries are non-decreasing by construction; pushing in key
		// order also drops any prefix that aged out before shutdown.
		if err := f.win.Push(at, payload); err != nil {
			f.logger.Warn("dropping out-of-order feed record", logpkg.Int64("recorded_at_ms", at))
		}
	}
	if err := iter.Close(); err != nil {
		return err
	}

	if f.win.Len() != scanned {
		if err := f.compact(low, high); err != nil {
			return err
		}
	}
	f.firstSeq = f.lastSeq - uint64(f.win.Len())
	return nil
}

// compact rewrites the surviving window entries under fresh sequences after
// load dropped records, keeping sequences contiguous and strictly increasing
// across restarts.
func (f *Feed) compact(low, high []byte) error {
	b := f.db.NewBatch()
	defer b.Close()
	if err := b.DeleteRange(low, high, nil); err != nil {
		return err
	}
	seq := f.lastSeq
	if latest, ok := f.win.Latest(); ok {
		for at, p := range f.win.Entries(latest) {
			seq++
			if err := b.Set(KeyFeedEntry(f.meta.Name, seq), EncodeEntry(at, p), nil); err != nil {
				return err
			}
		}
	}
	var mb [8]byte
	binary.BigEndian.PutUint64(mb[:], seq)
	if err := b.Set(KeyFeedMeta(f.meta.Name), mb[:], nil); err != nil {
		return err
	}
	if err := f.db.CommitBatch(context.Background(), b); err != nil {
		return err
	}
	f.lastSeq = seq
	f.logger.Info("compacted feed keyspace", logpkg.Int("entries", f.win.Len()))
	return nil
}

// Name returns the feed name.
func (f *Feed) Name() string { return f.meta.Name }

// Meta returns the feed's registry metadata.
func (f *Feed) Meta() Meta { return f.meta }

// SetEmitter installs the push notification hook.
func (f *Feed) SetEmitter(e EmitterHook) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e == nil {
		e = noopEmitter{}
	}
	f.emitter = e
}

// Push validates the producer, records payload at the clock's current time,
// and commits the mutation (evicted prefix deletes plus the new entry) as one
// atomic batch. The in-memory window is only updated after the commit
// succeeds, so a storage failure leaves the feed unchanged.
func (f *Feed) Push(ctx context.Context, producer string, payload []byte) (PushResult, error) {
	if f.authority != "" && producer != f.authority {
		metrics.IncPushRejected("authority")
		return PushResult{}, ErrWrongAuthority
	}
	if f.meta.PayloadMaxBytes > 0 && len(payload) > f.meta.PayloadMaxBytes {
		metrics.IncPushRejected("too_large")
		return PushResult{}, ErrPayloadTooLarge
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.clk.NowMs()
	if last, ok := f.win.Latest(); ok && last > now {
		metrics.IncPushRejected("historical")
		return PushResult{}, window.ErrHistoricalData
	}
	evicted := f.win.ExpiredCount(now)
	stored := append([]byte(nil), payload...)
	seq := f.lastSeq + 1

	b := f.db.NewBatch()
	defer b.Close()
	for i := 0; i < evicted; i++ {
		if err := b.Delete(KeyFeedEntry(f.meta.Name, f.firstSeq+1+uint64(i)), nil); err != nil {
			return PushResult{}, err
		}
	}
	if err := b.Set(KeyFeedEntry(f.meta.Name, seq), EncodeEntry(now, stored), nil); err != nil {
		return PushResult{}, err
	}
	var mb [8]byte
	binary.BigEndian.PutUint64(mb[:], seq)
	if err := b.Set(KeyFeedMeta(f.meta.Name), mb[:], nil); err != nil {
		return PushResult{}, err
	}
	if err := f.db.CommitBatch(ctx, b); err != nil {
		return PushResult{}, err
	}

	// Durable; now mirror in memory. Push cannot fail: the stale-time check
	// above is the same gate the window applies.
	if err := f.win.Push(now, stored); err != nil {
		return PushResult{}, err
	}
	f.firstSeq += uint64(evicted)
	f.lastSeq = seq

	// notify waiters
	close(f.notifyCh)
	f.notifyCh = make(chan struct{})

	metrics.IncEntriesPushed()
	metrics.AddEntriesEvicted(evicted)
	metrics.SetLiveEntries(f.meta.Name, f.win.Len())

	res := PushResult{ID: f.ids.Next(), Seq: seq, RecordedAtMs: now, Evicted: evicted}
	f.emitter.EmitPushed(f.meta.Name, seq, now, append([]byte(nil), stored...))
	f.logger.Debug("pushed entry",
		logpkg.Int64("recorded_at_ms", now),
		logpkg.Int("evicted", evicted),
		logpkg.Int("bytes", len(stored)),
	)
	return res, nil
}

// Cleanup removes entries that have aged out at the clock's current time.
// Callable by anyone; it shares the stale-time gate with Push, so a clock
// running behind the newest entry is rejected rather than evicted against.
func (f *Feed) Cleanup(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.clk.NowMs()
	if last, ok := f.win.Latest(); ok && last > now {
		return 0, window.ErrHistoricalData
	}
	metrics.IncCleanupRuns()

	evicted := f.win.ExpiredCount(now)
	if evicted == 0 {
		return 0, nil
	}

	b := f.db.NewBatch()
	defer b.Close()
	for i := 0; i < evicted; i++ {
		if err := b.Delete(KeyFeedEntry(f.meta.Name, f.firstSeq+1+uint64(i)), nil); err != nil {
			return 0, err
		}
	}
	if err := f.db.CommitBatch(ctx, b); err != nil {
		return 0, err
	}

	if _, err := f.win.EvictExpired(now); err != nil {
		return 0, err
	}
	f.firstSeq += uint64(evicted)

	metrics.AddEntriesEvicted(evicted)
	metrics.SetLiveEntries(f.meta.Name, f.win.Len())
	f.logger.Debug("cleaned up entries", logpkg.Int("evicted", evicted))
	return evicted, nil
}

// Data returns copies of the live payloads in chronological order, filtered
// by flt when enabled. This is the read surface external callers should use;
// it never mutates the feed.
func (f *Feed) Data(flt Filter) [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.clk.NowMs()
	out := make([][]byte, 0, f.win.Len())
	for at, p := range f.win.Entries(now) {
		if !flt.Eval(at, now, p) {
			continue
		}
		out = append(out, append([]byte(nil), p...))
	}
	return out
}

// Since returns copies of the live entries with sequence greater than
// afterSeq, plus the current last sequence for resumption.
func (f *Feed) Since(afterSeq uint64) ([]Entry, uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.clk.NowMs()
	seq := f.firstSeq + uint64(f.win.ExpiredCount(now))
	var out []Entry
	for at, p := range f.win.Entries(now) {
		seq++
		if seq <= afterSeq {
			continue
		}
		out = append(out, Entry{Seq: seq, RecordedAtMs: at, Payload: append([]byte(nil), p...)})
	}
	return out, f.lastSeq
}

// Stats returns a snapshot of the feed's retained state.
func (f *Feed) Stats() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.clk.NowMs()
	s := Stats{
		Name:       f.meta.Name,
		LifetimeMs: f.meta.LifetimeMs,
		Stored:     f.win.Len(),
		Live:       f.win.Len() - f.win.ExpiredCount(now),
		FirstSeq:   f.firstSeq,
		LastSeq:    f.lastSeq,
	}
	first := true
	for at := range f.win.Entries(now) {
		if first {
			s.OldestMs = at
			first = false
		}
		s.NewestMs = at
	}
	return s
}
