// Package pebblestore wraps Pebble behind the small surface the rest of the
// node writes through: a per-store fsync policy, batches for atomic
// multi-key updates, snapshots, and a MetricsHook that observes every read,
// write, and batch commit together with the batch's operation count and
// encoded size.
//
// Get copies the value out before releasing Pebble's closer, so returned
// slices belong to the caller and stay valid across later writes. Set and
// Delete go through single-op internal batches, which keeps all writes on
// the configured fsync path.
//
//	db, err := pebblestore.Open(pebblestore.Options{
//		DataDir: dir,
//		Fsync:   pebblestore.FsyncModeInterval,
//		Metrics: hook,
//	})
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//
//	b := db.NewBatch()
//	_ = b.Set(k1, v1, nil)
//	_ = b.Delete(k2, nil)
//	err = db.CommitBatch(ctx, b)
//	b.Close()
package pebblestore
