package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type recordingSink struct {
	mu   sync.Mutex
	got  []Message
	fail bool
}

func (s *recordingSink) Send(_ context.Context, m Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, m)
	if s.fail {
		return errors.New("boom")
	}
	return nil
}

func TestDispatchDeliversSnapshotCopy(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, slog.Default(), time.Second)

	m := Message{Process: "p", Finished: []string{"a"}}
	d.Dispatch(m)
	// Mutating the caller's message after dispatch must not affect the
	// delivered copy.
	m.Process = "changed"
	d.Wait()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.got) != 1 || sink.got[0].Process != "p" {
		t.Fatalf("delivered = %+v", sink.got)
	}
}

func TestDispatchSwallowsSinkFailure(t *testing.T) {
	sink := &recordingSink{fail: true}
	d := NewDispatcher(sink, slog.Default(), time.Second)
	d.Dispatch(Message{Process: "p"})
	d.Wait() // must return; the failure is logged, never propagated
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.got) != 1 {
		t.Fatalf("sink called %d times, want 1", len(sink.got))
	}
}

func TestNilDispatcherAndNilSinkAreNoOps(t *testing.T) {
	var d *Dispatcher
	d.Dispatch(Message{})
	d.Wait()

	d = NewDispatcher(nil, nil, 0)
	d.Dispatch(Message{})
	d.Wait()
}
