package pebblestore

import (
	"bytes"
	"context"
	"testing"
	"time"
)

// ioRecorder tallies hook observations so tests can assert on them.
type ioRecorder struct {
	readBytes   int
	writeBytes  int
	commits     int
	commitOps   int
	commitBytes int
}

func (r *ioRecorder) ObserveWrite(_ time.Duration, n int) { r.writeBytes += n }
func (r *ioRecorder) ObserveRead(_ time.Duration, n int)  { r.readBytes += n }
func (r *ioRecorder) ObserveBatchCommit(_ time.Duration, ops, n int) {
	r.commits++
	r.commitOps += ops
	r.commitBytes += n
}

func openStore(t *testing.T, mode FsyncMode) (*DB, *ioRecorder) {
	t.Helper()
	rec := &ioRecorder{}
	db, err := Open(Options{
		DataDir:       t.TempDir(),
		Fsync:         mode,
		FsyncInterval: 2 * time.Millisecond,
		Metrics:       rec,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, rec
}

func TestOpenRequiresDataDir(t *testing.T) {
	if _, err := Open(Options{}); err == nil {
		t.Fatalf("want error for empty data dir")
	}
}

func TestSetGetDelete(t *testing.T) {
	db, _ := openStore(t, FsyncModeInterval)

	if err := db.Set([]byte("greeting"), []byte("hello")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := db.Get([]byte("greeting"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q", got)
	}

	if err := db.Delete([]byte("greeting")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := db.Get([]byte("greeting")); err == nil {
		t.Fatalf("deleted key still readable")
	}
}

func TestGetReturnsOwnedCopy(t *testing.T) {
	db, _ := openStore(t, FsyncModeNever)

	key := []byte("k")
	if err := db.Set(key, []byte("before")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := db.Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := db.Set(key, []byte("after!")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if !bytes.Equal(got, []byte("before")) {
		t.Fatalf("returned value changed under a later write: %q", got)
	}
}

func TestMetricsHookSeesPointOps(t *testing.T) {
	db, rec := openStore(t, FsyncModeInterval)

	key, val := []byte("k1"), []byte("v1")
	if err := db.Set(key, val); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := db.Get(key); err != nil {
		t.Fatalf("get: %v", err)
	}

	if rec.writeBytes != len(key)+len(val) {
		t.Fatalf("write bytes: want %d got %d", len(key)+len(val), rec.writeBytes)
	}
	if rec.readBytes != len(val) {
		t.Fatalf("read bytes: want %d got %d", len(val), rec.readBytes)
	}
	// Set rides a single-op internal batch
	if rec.commits != 1 || rec.commitOps != 1 {
		t.Fatalf("commit counts: %+v", rec)
	}
}

func TestCommitBatchReportsOps(t *testing.T) {
	db, rec := openStore(t, FsyncModeAlways)

	b := db.NewBatch()
	if err := b.Set([]byte("a"), []byte("1"), nil); err != nil {
		t.Fatalf("batch set: %v", err)
	}
	if err := b.Set([]byte("b"), []byte("2"), nil); err != nil {
		t.Fatalf("batch set: %v", err)
	}
	if err := b.Delete([]byte("a"), nil); err != nil {
		t.Fatalf("batch delete: %v", err)
	}
	if err := db.CommitBatch(context.Background(), b); err != nil {
		t.Fatalf("commit: %v", err)
	}
	b.Close()

	if rec.commits != 1 {
		t.Fatalf("want 1 commit, got %d", rec.commits)
	}
	if rec.commitOps != 3 {
		t.Fatalf("want 3 batch ops, got %d", rec.commitOps)
	}
	if rec.commitBytes <= 0 {
		t.Fatalf("want positive batch bytes, got %d", rec.commitBytes)
	}

	// the whole batch applied, delete included
	if _, err := db.Get([]byte("a")); err == nil {
		t.Fatalf("deleted key survived the commit")
	}
	v, err := db.Get([]byte("b"))
	if err != nil || string(v) != "2" {
		t.Fatalf("get b: %q %v", v, err)
	}
}

func TestCommitBatchRejectsNil(t *testing.T) {
	db, _ := openStore(t, FsyncModeNever)
	if err := db.CommitBatch(context.Background(), nil); err == nil {
		t.Fatalf("want error for nil batch")
	}
}

func TestSnapshotSeesFrozenState(t *testing.T) {
	db, _ := openStore(t, FsyncModeInterval)

	key := []byte("seq")
	if err := db.Set(key, []byte("1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	snap := db.NewSnapshot()
	defer snap.Close()

	if err := db.Set(key, []byte("2")); err != nil {
		t.Fatalf("set: %v", err)
	}

	val, closer, err := snap.Get(key)
	if err != nil {
		t.Fatalf("snapshot get: %v", err)
	}
	if string(val) != "1" {
		t.Fatalf("snapshot drifted: %q", val)
	}
	closer.Close()

	cur, err := db.Get(key)
	if err != nil {
		t.Fatalf("db get: %v", err)
	}
	if string(cur) != "2" {
		t.Fatalf("db read stale value: %q", cur)
	}
}
