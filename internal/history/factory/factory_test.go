package factory

import (
	"testing"

	"github.com/mkweon/rollcall/internal/history/opensearch"
	"github.com/mkweon/rollcall/internal/history/sqlite"
)

func TestNewSinkFromDSN_SQLite(t *testing.T) {
	for _, dsn := range []string{":memory:", "sqlite://:memory:"} {
		sink, err := NewSinkFromDSN(dsn)
		if err != nil {
			t.Fatalf("dsn %q: %v", dsn, err)
		}
		s, ok := sink.(*sqlite.Sink)
		if !ok {
			t.Fatalf("dsn %q: sink type %T, want *sqlite.Sink", dsn, sink)
		}
		_ = s.Close()
	}
}

func TestNewSinkFromDSN_OpenSearch(t *testing.T) {
	sink, err := NewSinkFromDSN("opensearch://localhost:9200/my-index")
	if err != nil {
		t.Fatalf("opensearch dsn: %v", err)
	}
	if _, ok := sink.(*opensearch.Sink); !ok {
		t.Fatalf("sink type %T, want *opensearch.Sink", sink)
	}
}

func TestNewSinkFromDSN_Invalid(t *testing.T) {
	if _, err := NewSinkFromDSN(""); err == nil {
		t.Fatal("expected error for empty DSN")
	}
	if _, err := NewSinkFromDSN("ftp://nope"); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
}
