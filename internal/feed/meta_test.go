package feed

import (
	"testing"
)

func TestEnsureMetaCreatesWithDefaults(t *testing.T) {
	db := newTestDB(t, t.TempDir())
	defer db.Close()

	m, err := EnsureMeta(db, "prices", Meta{}, 5000)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if m.Name != "prices" || m.CreatedAtMs != 5000 {
		t.Fatalf("unexpected meta: %+v", m)
	}
	if m.LifetimeMs != DefaultMeta().LifetimeMs || m.PayloadMaxBytes != DefaultMeta().PayloadMaxBytes {
		t.Fatalf("defaults not applied: %+v", m)
	}
}

func TestEnsureMetaIdempotent(t *testing.T) {
	db := newTestDB(t, t.TempDir())
	defer db.Close()

	first, err := EnsureMeta(db, "prices", Meta{LifetimeMs: 250}, 5000)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	// a second call with different defaults returns the stored record
	second, err := EnsureMeta(db, "prices", Meta{LifetimeMs: 9999}, 6000)
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if second != first {
		t.Fatalf("meta changed across calls: %+v vs %+v", second, first)
	}
}

func TestGetMeta(t *testing.T) {
	db := newTestDB(t, t.TempDir())
	defer db.Close()

	if _, ok := GetMeta(db, "absent"); ok {
		t.Fatalf("found meta for absent feed")
	}
	want, err := EnsureMeta(db, "prices", Meta{}, 5000)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	got, ok := GetMeta(db, "prices")
	if !ok || got != want {
		t.Fatalf("get: ok=%v got=%+v want=%+v", ok, got, want)
	}
}
