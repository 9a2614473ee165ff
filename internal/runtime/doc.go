// Package runtime wires storage, config, and feeds into a single-node
// Ora instance. It exposes Open/Close, basic health checks, and feed
// lifecycle helpers used by the HTTP server and CLI.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: cfg})
//	defer rt.Close()
//	// Health
//	_ = rt.CheckHealth(context.Background())
//	// Open a feed and push
//	f, _ := rt.EnsureFeed("prices")
//	_, _ = f.Push(context.Background(), "", []byte(`{"eth":2000}`))
package runtime
