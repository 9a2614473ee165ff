package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	cfgpkg "github.com/rzbill/ora/internal/config"
	"github.com/rzbill/ora/internal/runtime"
	pebblestore "github.com/rzbill/ora/internal/storage/pebble"
	logpkg "github.com/rzbill/ora/pkg/log"
)

func newTestServer(t *testing.T, cfg cfgpkg.Config) *Server {
	t.Helper()
	rt, err := runtime.Open(runtime.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways, Config: cfg})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	t.Cleanup(func() { rt.Close() })
	logger, _ := logpkg.ApplyConfig(&logpkg.Config{Level: "error", Format: "text", Output: "null"})
	return New(rt, logger)
}

func do(t *testing.T, s *Server, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthHandler(t *testing.T) {
	s := newTestServer(t, cfgpkg.Default())
	w := do(t, s, http.MethodGet, "/v1/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
}

func TestCreateAndListFeeds(t *testing.T) {
	s := newTestServer(t, cfgpkg.Default())

	w := do(t, s, http.MethodPost, "/v1/feeds/create", `{"feed":"prices"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status: %d body=%s", w.Code, w.Body.String())
	}

	w = do(t, s, http.MethodGet, "/v1/feeds", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status: %d", w.Code)
	}
	var resp struct {
		Feeds []struct {
			Name string `json:"name"`
		} `json:"feeds"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Feeds) != 1 || resp.Feeds[0].Name != "prices" {
		t.Fatalf("unexpected feeds: %+v", resp.Feeds)
	}
}

func TestCreateRejectsInvalidName(t *testing.T) {
	s := newTestServer(t, cfgpkg.Default())
	w := do(t, s, http.MethodPost, "/v1/feeds/create", `{"feed":"Not Valid"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", w.Code)
	}
}

func TestPushAndData(t *testing.T) {
	s := newTestServer(t, cfgpkg.Default())

	w := do(t, s, http.MethodPost, "/v1/feeds/push", `{"feed":"prices","payload":"aGVsbG8="}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("push status: %d body=%s", w.Code, w.Body.String())
	}
	var pr struct {
		Seq          uint64 `json:"seq"`
		RecordedAtMs int64  `json:"recordedAtMs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &pr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if pr.Seq != 1 || pr.RecordedAtMs == 0 {
		t.Fatalf("unexpected push result: %+v", pr)
	}

	w = do(t, s, http.MethodGet, "/v1/feeds/data?feed=prices", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("data status: %d", w.Code)
	}
	var dr struct {
		Feed    string   `json:"feed"`
		Entries [][]byte `json:"entries"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &dr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dr.Feed != "prices" || len(dr.Entries) != 1 || string(dr.Entries[0]) != "hello" {
		t.Fatalf("unexpected data: %+v", dr)
	}
}

func TestPushAuthorityEnforced(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Authority = "oracle-1"
	s := newTestServer(t, cfg)

	w := do(t, s, http.MethodPost, "/v1/feeds/push", `{"feed":"prices","payload":"eA=="}`, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("anonymous push status: %d", w.Code)
	}
	w = do(t, s, http.MethodPost, "/v1/feeds/push", `{"feed":"prices","payload":"eA=="}`,
		map[string]string{"Authorization": "Bearer oracle-1"})
	if w.Code != http.StatusOK {
		t.Fatalf("authority push status: %d body=%s", w.Code, w.Body.String())
	}
}

func TestDataRejectsBadFilter(t *testing.T) {
	s := newTestServer(t, cfgpkg.Default())
	do(t, s, http.MethodPost, "/v1/feeds/create", `{"feed":"prices"}`, nil)

	w := do(t, s, http.MethodGet, "/v1/feeds/data?feed=prices&filter=size+%3E", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", w.Code)
	}
}

func TestDataUnknownFeed(t *testing.T) {
	s := newTestServer(t, cfgpkg.Default())
	w := do(t, s, http.MethodGet, "/v1/feeds/data?feed=absent", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status: %d", w.Code)
	}
}

func TestCleanupHandler(t *testing.T) {
	s := newTestServer(t, cfgpkg.Default())
	do(t, s, http.MethodPost, "/v1/feeds/push", `{"feed":"prices","payload":"eA=="}`, nil)

	w := do(t, s, http.MethodPost, "/v1/feeds/cleanup", `{"feed":"prices"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("cleanup status: %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Evicted int `json:"evicted"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Evicted != 0 {
		t.Fatalf("fresh entry evicted: %+v", resp)
	}
}

func TestStatsHandler(t *testing.T) {
	s := newTestServer(t, cfgpkg.Default())
	do(t, s, http.MethodPost, "/v1/feeds/push", `{"feed":"prices","payload":"eA=="}`, nil)

	w := do(t, s, http.MethodGet, "/v1/feeds/stats?feed=prices", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats status: %d", w.Code)
	}
	var resp struct {
		Name   string `json:"name"`
		Stored int    `json:"stored"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Name != "prices" || resp.Stored != 1 {
		t.Fatalf("unexpected stats: %+v", resp)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, cfgpkg.Default())
	w := do(t, s, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ora_entries_pushed_total") {
		t.Fatalf("metrics body missing counters")
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, cfgpkg.Default())
	w := do(t, s, http.MethodOptions, "/v1/feeds/data", "", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status: %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS headers")
	}
}
