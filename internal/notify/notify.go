// Package notify delivers save notifications to a chat webhook. Delivery
// is fire-and-forget: the dispatcher runs each send on its own goroutine
// with an immutable message copy, logs every outcome and never reports
// back to the saver.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mkweon/rollcall/internal/metrics"
)

// NoProcessLabel is used in outbound messages when a save happened with
// no real project selected.
const NoProcessLabel = "no project"

// Message is an immutable snapshot of just-committed state.
type Message struct {
	Process       string
	AtNames       []string
	NewFinished   []string
	NewUnfinished []string
	Finished      []string
	Unfinished    []string
	GeneratedAt   time.Time
}

// Sink sends one message to its destination. Implementations must be
// safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, m Message) error
}

// Dispatcher fans messages out to a sink in the background.
type Dispatcher struct {
	sink    Sink
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher wires a sink to a logger. timeout bounds one whole
// delivery including retries; zero means a 40s default.
func NewDispatcher(sink Sink, logger *slog.Logger, timeout time.Duration) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 40 * time.Second
	}
	return &Dispatcher{sink: sink, logger: logger, timeout: timeout}
}

// Dispatch sends m asynchronously. It never blocks beyond spawning the
// goroutine and never surfaces delivery errors to the caller.
func (d *Dispatcher) Dispatch(m Message) {
	if d == nil || d.sink == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.sink.Send(ctx, m); err != nil {
			metrics.IncNotification("failure")
			d.logger.Error("notification failed", "process", m.Process, "error", err)
			return
		}
		metrics.IncNotification("success")
		d.logger.Info("notification sent", "process", m.Process,
			"new_finished", len(m.NewFinished), "new_unfinished", len(m.NewUnfinished))
	}()
}

// Wait blocks until all in-flight deliveries finish. Used on shutdown
// and in tests.
func (d *Dispatcher) Wait() {
	if d != nil {
		d.wg.Wait()
	}
}
