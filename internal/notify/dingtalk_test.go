package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSignMatchesReferenceVector(t *testing.T) {
	// Reference value computed independently with HMAC-SHA256 + base64
	// over "1717574400123\nSEConfig123".
	got := Sign("SEConfig123", 1717574400123)
	want := "rJW41E7yaXyYgPZG1fwRTwk50rLIOtobOeoPsIxOHA4="
	if got != want {
		t.Fatalf("sign = %q, want %q", got, want)
	}
	if again := Sign("SEConfig123", 1717574400123); again != got {
		t.Fatal("signature must be deterministic for fixed secret and timestamp")
	}
}

func TestSignedURLAppendsQueryParams(t *testing.T) {
	u := SignedURL("https://oapi.dingtalk.com/robot/send?access_token=tok", "SEConfig123", 1717574400123)
	if !strings.Contains(u, "&timestamp=1717574400123&") {
		t.Fatalf("missing timestamp param: %s", u)
	}
	if !strings.HasSuffix(u, "&sign=rJW41E7yaXyYgPZG1fwRTwk50rLIOtobOeoPsIxOHA4%3D") {
		t.Fatalf("missing URL-encoded sign param: %s", u)
	}

	// No query string yet: first separator must be '?'.
	u = SignedURL("http://example.test/hook", "s", 1)
	if !strings.Contains(u, "/hook?timestamp=1") {
		t.Fatalf("expected '?' separator: %s", u)
	}
}

func newTestSink(serverURL string) *DingTalkSink {
	s := NewDingTalkSink(serverURL+"?access_token=x", "secret")
	s.backoff = time.Millisecond
	return s
}

func testMessage() Message {
	return Message{
		Process:     "Team A",
		AtNames:     []string{"13800000000"},
		NewFinished: []string{"Alice"},
		Unfinished:  []string{"Bob"},
		Finished:    []string{"Alice"},
		GeneratedAt: time.Now(),
	}
}

func TestSendRetriesThenSucceeds(t *testing.T) {
	var attempts int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"errcode":0,"errmsg":"ok"}`))
	}))
	defer ts.Close()

	if err := newTestSink(ts.URL).Send(context.Background(), testMessage()); err != nil {
		t.Fatalf("send: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestSendExhaustsRetries(t *testing.T) {
	var attempts int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	err := newTestSink(ts.URL).Send(context.Background(), testMessage())
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestSendDoesNotRetryClientError(t *testing.T) {
	var attempts int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	err := newTestSink(ts.URL).Send(context.Background(), testMessage())
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1 (no retry)", attempts)
	}
}

func TestSendDoesNotRetryRobotRejection(t *testing.T) {
	// HTTP 200 with a non-zero errcode means the platform rejected the
	// request (e.g. bad signature); retrying cannot help.
	var attempts int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		_, _ = w.Write([]byte(`{"errcode":310000,"errmsg":"sign not match"}`))
	}))
	defer ts.Close()

	err := newTestSink(ts.URL).Send(context.Background(), testMessage())
	if err == nil || !strings.Contains(err.Error(), "310000") {
		t.Fatalf("expected errcode failure, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}

func TestSendSignsEveryRequest(t *testing.T) {
	var gotTS, gotSign string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTS = r.URL.Query().Get("timestamp")
		gotSign = r.URL.Query().Get("sign")
		_, _ = w.Write([]byte(`{"errcode":0,"errmsg":"ok"}`))
	}))
	defer ts.Close()

	sink := newTestSink(ts.URL)
	fixed := time.UnixMilli(1717574400123)
	sink.now = func() time.Time { return fixed }
	sink.secret = "SEConfig123"
	if err := sink.Send(context.Background(), testMessage()); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotTS != "1717574400123" {
		t.Fatalf("timestamp = %q", gotTS)
	}
	// Query() already URL-decodes the value.
	if gotSign != Sign("SEConfig123", 1717574400123) {
		t.Fatalf("sign = %q", gotSign)
	}
}

func TestSendBodyListsAllCollections(t *testing.T) {
	var body map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = jsonDecode(r, &body)
		_, _ = w.Write([]byte(`{"errcode":0,"errmsg":"ok"}`))
	}))
	defer ts.Close()

	m := testMessage()
	m.NewUnfinished = nil
	if err := newTestSink(ts.URL).Send(context.Background(), m); err != nil {
		t.Fatalf("send: %v", err)
	}
	md, _ := body["markdown"].(map[string]any)
	text, _ := md["text"].(string)
	for _, want := range []string{"Team A", "Alice", "Bob", "newly unfinished: none"} {
		if !strings.Contains(text, want) {
			t.Fatalf("body missing %q:\n%s", want, text)
		}
	}
	if body["msgtype"] != "markdown" {
		t.Fatalf("msgtype = %v", body["msgtype"])
	}
}

func TestSendEmptyProcessUsesPlaceholder(t *testing.T) {
	var text string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = jsonDecode(r, &body)
		md, _ := body["markdown"].(map[string]any)
		text, _ = md["text"].(string)
		_, _ = w.Write([]byte(`{"errcode":0,"errmsg":"ok"}`))
	}))
	defer ts.Close()

	m := testMessage()
	m.Process = ""
	if err := newTestSink(ts.URL).Send(context.Background(), m); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(text, NoProcessLabel) {
		t.Fatalf("expected %q placeholder in body:\n%s", NoProcessLabel, text)
	}
}

func jsonDecode(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(v)
}
