package opensearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mkweon/rollcall/internal/history"
)

func TestOpenSearchSink_Send(t *testing.T) {
	var gotBody []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/idx/_doc" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		b, _ := io.ReadAll(r.Body)
		gotBody = b
		w.WriteHeader(201)
	}))
	defer ts.Close()

	sink := New(ts.URL, "idx")
	e := history.Event{Type: history.EventSave, OccurredAt: time.Now().UTC(), Process: "Team A", Mode: "on", Finished: 1}
	if err := sink.Send(context.Background(), e); err != nil {
		t.Fatalf("send: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(gotBody, &m); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if m["process"] != "Team A" || m["type"] != "save" {
		t.Fatalf("unexpected payload: %v", m)
	}
}

func TestOpenSearchSink_DefaultIndex(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(201)
	}))
	defer ts.Close()

	sink := New(ts.URL, "")
	if err := sink.Send(context.Background(), history.Event{Type: history.EventSave}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotPath != "/"+DefaultIndex+"/_doc" {
		t.Fatalf("path = %s, want /%s/_doc", gotPath, DefaultIndex)
	}
}

func TestOpenSearchSink_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer ts.Close()

	sink := New(ts.URL, "idx")
	if err := sink.Send(context.Background(), history.Event{Type: history.EventSave}); err == nil {
		t.Fatal("expected error for 500 response")
	}
}
