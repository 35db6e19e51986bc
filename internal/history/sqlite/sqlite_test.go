package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/mkweon/rollcall/internal/history"
)

func TestSQLiteSinkSendAndCount(t *testing.T) {
	sink, err := New(":memory:")
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	defer func() { _ = sink.Close() }()

	e := history.Event{
		Type:          history.EventSave,
		OccurredAt:    time.Now().UTC(),
		Process:       "Team A",
		Mode:          "on",
		Finished:      1,
		Unfinished:    2,
		NewFinished:   1,
		NewUnfinished: 0,
	}
	if err := sink.Send(context.Background(), e); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := sink.Send(context.Background(), e); err != nil {
		t.Fatalf("second send: %v", err)
	}

	var n int
	row := sink.db.QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM rollcall_history WHERE process = ? AND event = ?`, "Team A", "save")
	if err := row.Scan(&n); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if n != 2 {
		t.Fatalf("rows = %d, want 2", n)
	}
}

func TestSQLiteSinkRejectsEmptyDSN(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}
