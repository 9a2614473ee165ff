package window

import (
	"errors"
	"fmt"
	"slices"
	"testing"
)

func collect(l *Log[uint64], now uint64) []string {
	var out []string
	for p := range l.Live(now) {
		out = append(out, string(p))
	}
	return out
}

func mustPush(t *testing.T, l *Log[uint64], now uint64, payload string) {
	t.Helper()
	if err := l.Push(now, []byte(payload)); err != nil {
		t.Fatalf("push at %d: %v", now, err)
	}
}

func TestPushKeepsChronologicalOrder(t *testing.T) {
	l := New[uint64](10)
	mustPush(t, l, 0, "0")
	mustPush(t, l, 1, "1")
	mustPush(t, l, 2, "2")

	got := collect(l, 2)
	if !slices.Equal(got, []string{"0", "1", "2"}) {
		t.Fatalf("unexpected live set: %v", got)
	}
	if l.Len() != 3 {
		t.Fatalf("want 3 stored entries, got %d", l.Len())
	}
}

func TestPushRejectsHistoricalTime(t *testing.T) {
	l := New[uint64](10)
	mustPush(t, l, 10, "first")

	err := l.Push(0, []byte("late"))
	if !errors.Is(err, ErrHistoricalData) {
		t.Fatalf("want ErrHistoricalData, got %v", err)
	}
	// rejected push must leave the log untouched
	if got := collect(l, 10); !slices.Equal(got, []string{"first"}) {
		t.Fatalf("log mutated by rejected push: %v", got)
	}
}

func TestPushEvictsAgedOutPrefix(t *testing.T) {
	l := New[uint64](10)
	mustPush(t, l, 0, "0")
	mustPush(t, l, 10, "10")
	// the t=0 entry is exactly lifetime old: expired, not live
	if got := collect(l, 10); !slices.Equal(got, []string{"10"}) {
		t.Fatalf("want only t=10 entry, got %v", got)
	}
	if l.Len() != 1 {
		t.Fatalf("expired entry not removed by push, len=%d", l.Len())
	}

	mustPush(t, l, 100, "100")
	if got := collect(l, 100); !slices.Equal(got, []string{"100"}) {
		t.Fatalf("want only t=100 entry, got %v", got)
	}
}

func TestExpiryBoundaryInclusive(t *testing.T) {
	l := New[uint64](10)
	mustPush(t, l, 5, "x")

	if got := collect(l, 14); len(got) != 1 {
		t.Fatalf("age 9 should be live, got %v", got)
	}
	if got := collect(l, 15); len(got) != 0 {
		t.Fatalf("age 10 (== lifetime) should be expired, got %v", got)
	}
}

func TestLiveWindowSlides(t *testing.T) {
	l := New[uint64](10)
	for m := uint64(0); m < 10; m++ {
		mustPush(t, l, m, fmt.Sprint(m))
	}
	// at now=10..19 the window shrinks by one from the front each step
	for now := uint64(10); now < 20; now++ {
		want := make([]string, 0, 10)
		for m := now - 10 + 1; m < 10; m++ {
			want = append(want, fmt.Sprint(m))
		}
		got := collect(l, now)
		if len(got) != len(want) || (len(want) > 0 && !slices.Equal(got, want)) {
			t.Fatalf("now=%d: want %v, got %v", now, want, got)
		}
	}
	if got := collect(l, 20); len(got) != 0 {
		t.Fatalf("window should be empty at now=20, got %v", got)
	}
}

func TestLiveDoesNotMutate(t *testing.T) {
	l := New[uint64](10)
	mustPush(t, l, 0, "old")
	mustPush(t, l, 5, "new")

	_ = collect(l, 12) // t=0 expired from view
	if l.Len() != 2 {
		t.Fatalf("read-only query removed entries, len=%d", l.Len())
	}
}

func TestEvictExpired(t *testing.T) {
	l := New[uint64](10)
	mustPush(t, l, 0, "0")
	mustPush(t, l, 5, "5")

	n, err := l.EvictExpired(12)
	if err != nil {
		t.Fatalf("evict: %v", err)
	}
	if n != 1 {
		t.Fatalf("want 1 evicted, got %d", n)
	}
	if got := collect(l, 12); !slices.Equal(got, []string{"5"}) {
		t.Fatalf("unexpected survivors: %v", got)
	}
}

func TestEvictExpiredIdempotent(t *testing.T) {
	l := New[uint64](10)
	mustPush(t, l, 0, "0")
	mustPush(t, l, 5, "5")

	if _, err := l.EvictExpired(12); err != nil {
		t.Fatalf("first evict: %v", err)
	}
	n, err := l.EvictExpired(12)
	if err != nil {
		t.Fatalf("second evict: %v", err)
	}
	if n != 0 {
		t.Fatalf("second evict removed %d entries", n)
	}
	if l.Len() != 1 {
		t.Fatalf("len after double evict: %d", l.Len())
	}
}

func TestEvictExpiredRejectsHistoricalTime(t *testing.T) {
	l := New[uint64](10)
	mustPush(t, l, 50, "x")

	if _, err := l.EvictExpired(49); !errors.Is(err, ErrHistoricalData) {
		t.Fatalf("want ErrHistoricalData, got %v", err)
	}
	if l.Len() != 1 {
		t.Fatalf("rejected evict mutated the log")
	}
}

func TestEvictExpiredOnEmptyLog(t *testing.T) {
	l := New[uint64](10)
	n, err := l.EvictExpired(1000)
	if err != nil || n != 0 {
		t.Fatalf("empty evict: n=%d err=%v", n, err)
	}
}

// Read-only query and explicit cleanup must agree on what counts as live.
func TestReadEvictEquivalence(t *testing.T) {
	build := func() *Log[uint64] {
		l := New[uint64](10)
		for _, m := range []uint64{0, 3, 7, 11, 15} {
			mustPush(t, l, m, fmt.Sprint(m))
		}
		return l
	}
	const now = 18

	viewed := collect(build(), now)

	evicted := build()
	if _, err := evicted.EvictExpired(now); err != nil {
		t.Fatalf("evict: %v", err)
	}
	var survived []string
	for p := range evicted.Live(now) {
		survived = append(survived, string(p))
	}
	if !slices.Equal(viewed, survived) {
		t.Fatalf("live view %v != post-evict survivors %v", viewed, survived)
	}
	if evicted.Len() != len(survived) {
		t.Fatalf("evicted log still holds expired entries")
	}
}

func TestLiveIsRestartable(t *testing.T) {
	l := New[uint64](10)
	mustPush(t, l, 1, "a")
	mustPush(t, l, 2, "b")

	seq := l.Live(5)
	first := func() []string {
		var out []string
		for p := range seq {
			out = append(out, string(p))
		}
		return out
	}
	if a, b := first(), first(); !slices.Equal(a, b) {
		t.Fatalf("iteration not restartable: %v vs %v", a, b)
	}
}

func TestLiveEarlyStop(t *testing.T) {
	l := New[uint64](100)
	for m := uint64(0); m < 5; m++ {
		mustPush(t, l, m, fmt.Sprint(m))
	}
	var got []string
	for p := range l.Live(5) {
		got = append(got, string(p))
		if len(got) == 2 {
			break
		}
	}
	if !slices.Equal(got, []string{"0", "1"}) {
		t.Fatalf("early stop: %v", got)
	}
}

func TestEntriesYieldsRecordingTimes(t *testing.T) {
	l := New[uint64](10)
	mustPush(t, l, 3, "a")
	mustPush(t, l, 4, "b")

	var times []uint64
	for at, p := range l.Entries(5) {
		times = append(times, at)
		if len(p) == 0 {
			t.Fatalf("empty payload")
		}
	}
	if !slices.Equal(times, []uint64{3, 4}) {
		t.Fatalf("times: %v", times)
	}
}

func TestLatest(t *testing.T) {
	l := New[int64](10)
	if _, ok := l.Latest(); ok {
		t.Fatalf("empty log has no latest")
	}
	if err := l.Push(42, []byte("x")); err != nil {
		t.Fatalf("push: %v", err)
	}
	if at, ok := l.Latest(); !ok || at != 42 {
		t.Fatalf("latest: %d %v", at, ok)
	}
}

func TestSignedMoments(t *testing.T) {
	l := New[int64](1000)
	if err := l.Push(-500, []byte("a")); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := l.Push(0, []byte("b")); err != nil {
		t.Fatalf("push: %v", err)
	}
	var got []string
	for p := range l.Live(400) {
		got = append(got, string(p))
	}
	// age of "a" at 400 is 900 < 1000: still live
	if !slices.Equal(got, []string{"a", "b"}) {
		t.Fatalf("signed live set: %v", got)
	}
	if _, err := l.EvictExpired(501); err != nil {
		t.Fatalf("evict: %v", err)
	}
	got = got[:0]
	for p := range l.Live(501) {
		got = append(got, string(p))
	}
	if !slices.Equal(got, []string{"b"}) {
		t.Fatalf("after evict: %v", got)
	}
}
