package clock

import (
	"testing"
	"time"
)

func TestWallTracksSystemTime(t *testing.T) {
	before := time.Now().UnixMilli()
	got := Wall{}.NowMs()
	after := time.Now().UnixMilli()
	if got < before || got > after {
		t.Fatalf("wall time %d outside [%d, %d]", got, before, after)
	}
}

func TestManual(t *testing.T) {
	m := NewManual(100)
	if m.NowMs() != 100 {
		t.Fatalf("start: %d", m.NowMs())
	}
	m.Advance(50)
	if m.NowMs() != 150 {
		t.Fatalf("advance: %d", m.NowMs())
	}
	m.Set(10)
	if m.NowMs() != 10 {
		t.Fatalf("set: %d", m.NowMs())
	}
}
