// Package metrics exposes Prometheus instrumentation for the feed node:
// push/eviction counters and storage latency observations wired into the
// pebblestore MetricsHook seam. Counters are process-global; Init registers
// the standard Go and process collectors once.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	entriesPushed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ora_entries_pushed_total",
		Help: "Total number of feed entries successfully pushed.",
	})
	pushRejects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ora_push_rejects_total",
		Help: "Total number of rejected pushes, by reason.",
	}, []string{"reason"})
	entriesEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ora_entries_evicted_total",
		Help: "Total number of feed entries removed after aging out.",
	})
	cleanupRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ora_cleanup_runs_total",
		Help: "Total number of explicit cleanup executions.",
	})
	liveEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ora_live_entries",
		Help: "Number of entries currently retained, per feed.",
	}, []string{"feed"})

	storageCommitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ora_storage_commit_seconds",
		Help:    "Latency of storage batch commits.",
		Buckets: prometheus.DefBuckets,
	})
	storageReadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ora_storage_read_bytes_total",
		Help: "Bytes read from storage point lookups.",
	})
	storageWriteBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ora_storage_write_bytes_total",
		Help: "Bytes written by storage point writes.",
	})

	collectorsOnce sync.Once
)

// Init registers default Go/process collectors. It is safe to call multiple times.
func Init() {
	collectorsOnce.Do(func() {
		registerCollector(collectors.NewGoCollector())
		registerCollector(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

func registerCollector(c prometheus.Collector) {
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			_ = are.ExistingCollector
			return
		}
		panic(err)
	}
}

// IncEntriesPushed increments the successful push counter.
func IncEntriesPushed() {
	entriesPushed.Inc()
}

// IncPushRejected counts a rejected push by reason ("authority",
// "historical", "too_large").
func IncPushRejected(reason string) {
	pushRejects.WithLabelValues(reason).Inc()
}

// AddEntriesEvicted adds n to the eviction counter.
func AddEntriesEvicted(n int) {
	if n <= 0 {
		return
	}
	entriesEvicted.Add(float64(n))
}

// IncCleanupRuns increments the explicit cleanup counter.
func IncCleanupRuns() {
	cleanupRuns.Inc()
}

// SetLiveEntries records the current retained entry count for a feed.
func SetLiveEntries(feed string, n int) {
	if n < 0 {
		n = 0
	}
	liveEntries.WithLabelValues(feed).Set(float64(n))
}

// StoreHook implements the pebblestore MetricsHook seam.
type StoreHook struct{}

func (StoreHook) ObserveWrite(elapsed time.Duration, bytes int) {
	storageWriteBytes.Add(float64(bytes))
}

func (StoreHook) ObserveRead(elapsed time.Duration, bytes int) {
	storageReadBytes.Add(float64(bytes))
}

func (StoreHook) ObserveBatchCommit(elapsed time.Duration, numOps int, bytes int) {
	storageCommitSeconds.Observe(elapsed.Seconds())
}
