package runtime

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	cfgpkg "github.com/rzbill/ora/internal/config"
	"github.com/rzbill/ora/internal/feed"
	"github.com/rzbill/ora/internal/metrics"
	pebblestore "github.com/rzbill/ora/internal/storage/pebble"
	"github.com/rzbill/ora/pkg/clock"
	logpkg "github.com/rzbill/ora/pkg/log"
)

var (
	// ErrInvalidFeedName is returned when a feed name fails the configured pattern.
	ErrInvalidFeedName = errors.New("invalid feed name")
	// ErrFeedNotAllowed is returned when the feed is outside the allow-list.
	ErrFeedNotAllowed = errors.New("feed not allowed")
	// ErrTooManyFeeds is returned when creating a feed would exceed MaxFeeds.
	ErrTooManyFeeds = errors.New("feed limit reached")
	// ErrFeedNotFound is returned when opening a feed with no registry record.
	ErrFeedNotFound = errors.New("feed not found")
)

// Options for building the Runtime.
type Options struct {
	DataDir       string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
	// Clock supplies `now` to every feed. Defaults to the wall clock.
	Clock clock.Clock
	// Logger for runtime and feed events. Defaults to a null logger.
	Logger logpkg.Logger
}

// Runtime wires storage, config, and feeds for a single-node instance.
type Runtime struct {
	db     *pebblestore.DB
	config cfgpkg.Config
	clk    clock.Clock
	logger logpkg.Logger
	nameRe *regexp.Regexp

	mu    sync.Mutex
	feeds map[string]*feed.Feed
}

// Open initializes the underlying storage and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	metrics.Init()

	pattern := opts.Config.FeedNameRegex
	if pattern == "" {
		pattern = cfgpkg.Default().FeedNameRegex
	}
	nameRe, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("feed name regex: %w", err)
	}

	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       opts.DataDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
		Metrics:       metrics.StoreHook{},
	})
	if err != nil {
		return nil, err
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.Wall{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithLevel(logpkg.ErrorLevel), logpkg.WithOutput(logpkg.NewNullOutput()))
	}

	rt := &Runtime{
		db:     db,
		config: opts.Config,
		clk:    clk,
		logger: logger.WithComponent("runtime"),
		nameRe: nameRe,
		feeds:  make(map[string]*feed.Feed),
	}
	return rt, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CheckHealth performs a simple health check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	it.Close()
	return nil
}

// validateName checks a feed name against the configured pattern and allow-list.
func (r *Runtime) validateName(name string) error {
	if name == "" || !r.nameRe.MatchString(name) {
		return ErrInvalidFeedName
	}
	if len(r.config.AllowedFeeds) > 0 {
		allowed := false
		for _, a := range r.config.AllowedFeeds {
			if a == name {
				allowed = true
				break
			}
		}
		if !allowed {
			return ErrFeedNotAllowed
		}
	}
	return nil
}

// EnsureFeed validates the name and opens the feed, creating its registry
// record if absent. Idempotent; repeated calls return the cached instance.
func (r *Runtime) EnsureFeed(name string) (*feed.Feed, error) {
	if err := r.validateName(name); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.feeds[name]; ok {
		return f, nil
	}

	if _, exists := feed.GetMeta(r.db, name); !exists && r.config.MaxFeeds > 0 {
		metas, err := feed.ListMeta(r.db)
		if err != nil {
			return nil, err
		}
		if len(metas) >= r.config.MaxFeeds {
			return nil, ErrTooManyFeeds
		}
	}

	defaults := feed.Meta{
		LifetimeMs:      r.config.FeedDefaults.LifetimeMs,
		PayloadMaxBytes: r.config.FeedDefaults.PayloadMaxBytes,
	}
	meta, err := feed.EnsureMeta(r.db, name, defaults, r.clk.NowMs())
	if err != nil {
		return nil, err
	}
	return r.openLocked(meta)
}

// OpenFeed opens an already-registered feed. Unlike EnsureFeed it never
// creates a registry record.
func (r *Runtime) OpenFeed(name string) (*feed.Feed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.feeds[name]; ok {
		return f, nil
	}
	meta, ok := feed.GetMeta(r.db, name)
	if !ok {
		return nil, ErrFeedNotFound
	}
	return r.openLocked(meta)
}

func (r *Runtime) openLocked(meta feed.Meta) (*feed.Feed, error) {
	f, err := feed.Open(r.db, meta, feed.Options{
		Clock:     r.clk,
		Authority: r.config.Authority,
		Logger:    r.logger,
	})
	if err != nil {
		return nil, err
	}
	r.feeds[meta.Name] = f
	r.logger.Info("opened feed", logpkg.Str("feed", meta.Name), logpkg.Int64("lifetime_ms", meta.LifetimeMs))
	return f, nil
}

// ListFeeds returns registry metadata for every feed, ordered by name.
func (r *Runtime) ListFeeds() ([]feed.Meta, error) {
	return feed.ListMeta(r.db)
}

// DefaultFeedName returns the configured default feed name.
func (r *Runtime) DefaultFeedName() string {
	if r.config.DefaultFeedName != "" {
		return r.config.DefaultFeedName
	}
	return cfgpkg.Default().DefaultFeedName
}

// DB exposes the underlying DB for advanced operations (internal use only).
func (r *Runtime) DB() *pebblestore.DB { return r.db }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
