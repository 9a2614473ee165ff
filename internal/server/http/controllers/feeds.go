package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rzbill/ora/internal/feed"
	"github.com/rzbill/ora/internal/runtime"
	"github.com/rzbill/ora/internal/window"
	logpkg "github.com/rzbill/ora/pkg/log"
)

// FeedsController handles all feed-related HTTP endpoints: lifecycle,
// producer pushes, windowed reads, cleanup, stats, and SSE subscriptions.
type FeedsController struct {
	rt     *runtime.Runtime
	logger logpkg.Logger
}

// NewFeedsController creates a new feeds controller.
func NewFeedsController(rt *runtime.Runtime, logger logpkg.Logger) *FeedsController {
	return &FeedsController{rt: rt, logger: logger}
}

// RegisterRoutes registers all feed-related routes with the given mux.
func (c *FeedsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/feeds", c.handleList)
	mux.HandleFunc("/v1/feeds/create", c.handleCreate)
	mux.HandleFunc("/v1/feeds/push", c.handlePush)
	mux.HandleFunc("/v1/feeds/data", c.handleData)
	mux.HandleFunc("/v1/feeds/cleanup", c.handleCleanup)
	mux.HandleFunc("/v1/feeds/stats", c.handleStats)
	mux.HandleFunc("/v1/feeds/subscribe", c.handleSubscribeSSE)
}

// feedFromQuery resolves the feed named in the query, falling back to the
// configured default name.
func (c *FeedsController) feedFromQuery(r *http.Request) (*feed.Feed, error) {
	name := r.URL.Query().Get("feed")
	if name == "" {
		name = c.rt.DefaultFeedName()
	}
	return c.rt.OpenFeed(name)
}

// writeFeedError maps feed/runtime errors onto HTTP statuses.
func writeFeedError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, runtime.ErrInvalidFeedName):
		writeError(w, http.StatusBadRequest, "invalid feed name")
	case errors.Is(err, runtime.ErrFeedNotAllowed):
		writeError(w, http.StatusForbidden, "feed not allowed")
	case errors.Is(err, runtime.ErrTooManyFeeds):
		writeError(w, http.StatusConflict, "feed limit reached")
	case errors.Is(err, runtime.ErrFeedNotFound):
		writeError(w, http.StatusNotFound, "feed not found")
	case errors.Is(err, feed.ErrWrongAuthority):
		writeError(w, http.StatusForbidden, "producer is not the feed authority")
	case errors.Is(err, feed.ErrPayloadTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
	case errors.Is(err, window.ErrHistoricalData):
		writeError(w, http.StatusConflict, "attempt to insert historical data")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// handleList lists all registered feeds.
func (c *FeedsController) handleList(w http.ResponseWriter, r *http.Request) {
	metas, err := c.rt.ListFeeds()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list feeds")
		return
	}
	writeJSON(w, map[string]any{"feeds": metas})
}

type createReq struct {
	Feed string `json:"feed"`
}

// handleCreate registers a feed, creating its registry record if absent.
func (c *FeedsController) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req createReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := c.rt.EnsureFeed(req.Feed); err != nil {
		writeFeedError(w, err)
		return
	}
	writeCreated(w)
}

type pushReq struct {
	Feed    string `json:"feed"`
	Payload []byte `json:"payload"`
}

type pushResp struct {
	ID           string `json:"id"`
	Seq          uint64 `json:"seq"`
	RecordedAtMs int64  `json:"recordedAtMs"`
	Evicted      int    `json:"evicted"`
}

// handlePush records a payload on a feed. The producer identity comes from
// the Authorization bearer token and is checked against the feed authority.
func (c *FeedsController) handlePush(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req pushReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := req.Feed
	if name == "" {
		name = c.rt.DefaultFeedName()
	}
	f, err := c.rt.EnsureFeed(name)
	if err != nil {
		writeFeedError(w, err)
		return
	}
	res, err := f.Push(r.Context(), producerFromRequest(r), req.Payload)
	if err != nil {
		writeFeedError(w, err)
		return
	}
	writeJSON(w, pushResp{ID: res.ID.String(), Seq: res.Seq, RecordedAtMs: res.RecordedAtMs, Evicted: res.Evicted})
}

// handleData returns the live payloads of a feed in chronological order.
// Optional query params: filter (CEL expression), limit.
func (c *FeedsController) handleData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	f, err := c.feedFromQuery(r)
	if err != nil {
		writeFeedError(w, err)
		return
	}
	flt, err := feed.NewFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter: "+err.Error())
		return
	}
	data := f.Data(flt)
	if limit := parseLimit(r.URL.Query().Get("limit")); limit > 0 && limit < len(data) {
		// keep the newest entries
		data = data[len(data)-limit:]
	}
	writeJSON(w, map[string]any{"feed": f.Name(), "entries": data})
}

type cleanupReq struct {
	Feed string `json:"feed"`
}

// handleCleanup evicts aged-out entries. Callable by anyone.
func (c *FeedsController) handleCleanup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req cleanupReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := req.Feed
	if name == "" {
		name = c.rt.DefaultFeedName()
	}
	f, err := c.rt.OpenFeed(name)
	if err != nil {
		writeFeedError(w, err)
		return
	}
	evicted, err := f.Cleanup(r.Context())
	if err != nil {
		writeFeedError(w, err)
		return
	}
	writeJSON(w, map[string]any{"feed": f.Name(), "evicted": evicted})
}

// handleStats returns a snapshot of the feed's retained state.
func (c *FeedsController) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	f, err := c.feedFromQuery(r)
	if err != nil {
		writeFeedError(w, err)
		return
	}
	writeJSON(w, f.Stats())
}

// sseEvent is the JSON body of one subscription event.
type sseEvent struct {
	Seq          uint64 `json:"seq"`
	RecordedAtMs int64  `json:"recordedAtMs"`
	Payload      []byte `json:"payload"`
}

// handleSubscribeSSE streams committed entries as Server-Sent Events.
// Optional query params: feed, after (resume after a sequence number).
func (c *FeedsController) handleSubscribeSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	f, err := c.feedFromQuery(r)
	if err != nil {
		writeFeedError(w, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	after := parseSeq(r.URL.Query().Get("after"))
	for {
		entries, last := f.Since(after)
		for _, e := range entries {
			b, _ := json.Marshal(sseEvent{Seq: e.Seq, RecordedAtMs: e.RecordedAtMs, Payload: e.Payload})
			if _, err := w.Write([]byte("data: ")); err != nil {
				return
			}
			if _, err := w.Write(b); err != nil {
				return
			}
			if _, err := w.Write([]byte("\n\n")); err != nil {
				return
			}
		}
		if len(entries) > 0 {
			flusher.Flush()
		}
		if last > after {
			after = last
		}

		select {
		case <-r.Context().Done():
			return
		default:
		}
		f.WaitForPush(time.Second)
	}
}
