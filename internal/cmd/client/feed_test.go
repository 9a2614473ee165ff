package client

import (
	"bytes"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func stubBaseURL(s *httptest.Server) BaseURLFunc {
	return func() string { return s.URL }
}

func TestFeedCreatePrintsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/feeds/create" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	cmd := newFeedCreateCommand(stubBaseURL(srv))
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--name", "prices"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(buf.String(), "status:") {
		t.Fatalf("expected status in output, got: %s", buf.String())
	}
}

func TestFeedPushSendsProducer(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"seq":1,"recordedAtMs":1000,"evicted":0}`))
	}))
	defer srv.Close()

	cmd := newFeedPushCommand(stubBaseURL(srv))
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--feed", "prices", "--data", "hi", "--producer", "oracle-1"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if gotAuth != "Bearer oracle-1" {
		t.Fatalf("authorization header: %q", gotAuth)
	}
	if !strings.Contains(buf.String(), `"seq":1`) {
		t.Fatalf("expected push result in output, got: %s", buf.String())
	}
}

func TestFeedPushReportsRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"producer is not the feed authority"}`))
	}))
	defer srv.Close()

	cmd := newFeedPushCommand(stubBaseURL(srv))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--feed", "prices", "--data", "hi"})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "authority") {
		t.Fatalf("expected authority error, got: %v", err)
	}
}

func TestFeedDataDecodesEntries(t *testing.T) {
	jsonEntry := base64.StdEncoding.EncodeToString([]byte(`{"eth":2000}`))
	textEntry := base64.StdEncoding.EncodeToString([]byte("plain"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"feed":"prices","entries":["` + jsonEntry + `","` + textEntry + `"]}`))
	}))
	defer srv.Close()

	cmd := newFeedDataCommand(stubBaseURL(srv))
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--feed", "prices"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "payload_json") || !strings.Contains(out, "payload_text") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestFeedSubscribeReadsSSE(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"seq\":1}\n\ndata: {\"seq\":2}\n\n"))
	}))
	defer srv.Close()

	cmd := newFeedSubscribeCommand(stubBaseURL(srv))
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--feed", "prices", "--limit", "2"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	lines := strings.Count(strings.TrimSpace(buf.String()), "\n") + 1
	if lines != 2 {
		t.Fatalf("want 2 events, got %d: %s", lines, buf.String())
	}
}

func TestDecodedPayload(t *testing.T) {
	if m := decodedPayload([]byte(`{"a":1}`)); m["payload_json"] == nil {
		t.Fatalf("json payload not decoded: %v", m)
	}
	if m := decodedPayload([]byte("hello")); m["payload_text"] != "hello" {
		t.Fatalf("text payload not decoded: %v", m)
	}
	if m := decodedPayload([]byte{0xff, 0xfe}); m["payload_b64"] == nil {
		t.Fatalf("binary payload not encoded: %v", m)
	}
}
