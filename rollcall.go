// Package rollcall is a checklist/roll-call manager: named processes of
// participants split between finished and unfinished, persisted as a
// JSON document, with baseline-relative delta tracking and signed
// webhook notifications on save. This file is the stable public facade
// for embedding; the CLI in cmd/rollcall builds on the same surface.
package rollcall

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	cfg "github.com/mkweon/rollcall/internal/config"
	"github.com/mkweon/rollcall/internal/history"
	"github.com/mkweon/rollcall/internal/history/factory"
	"github.com/mkweon/rollcall/internal/logger"
	"github.com/mkweon/rollcall/internal/manager"
	"github.com/mkweon/rollcall/internal/metrics"
	"github.com/mkweon/rollcall/internal/notify"
	"github.com/mkweon/rollcall/internal/roster"
	iapi "github.com/mkweon/rollcall/internal/server"
	"github.com/mkweon/rollcall/internal/store"
	"github.com/prometheus/client_golang/prometheus"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Record = roster.Record

type Info = roster.Info

type Mode = roster.Mode

type Data = roster.Data

type Status = manager.Status

type Config = cfg.Config

type LoggerConfig = logger.Config

type HistorySink = history.Sink

type HistoryEvent = history.Event

const (
	ModeOn  = roster.ModeOn
	ModeOff = roster.ModeOff
)

// Sentinel errors surfaced by Manager operations.
var (
	ErrUnsavedChanges = manager.ErrUnsavedChanges
	ErrDuplicateName  = manager.ErrDuplicateName
	ErrNotFound       = manager.ErrNotFound
)

// Manager is a thin facade over internal/manager.Manager.
// It provides a stable public API for embedding.

type Manager struct{ inner *manager.Manager }

// New builds a manager over the JSON document at dataFile. Call Load
// before using it.
func New(dataFile string) *Manager {
	return &Manager{inner: manager.New(store.NewFileStore(dataFile))}
}

func (m *Manager) SetLogger(l *slog.Logger) { m.inner.SetLogger(l) }

// EnableDingTalk wires the signed-webhook notifier invoked after each
// successful save. timeout bounds one whole delivery including retries;
// zero means the default.
func (m *Manager) EnableDingTalk(webhookURL, secret string, l *slog.Logger, timeout time.Duration) {
	sink := notify.NewDingTalkSink(webhookURL, secret)
	m.inner.SetNotifier(notify.NewDispatcher(sink, l, timeout))
}

// SetHistorySinks configures audit sinks fed on every save and
// lifecycle mutation.
func (m *Manager) SetHistorySinks(sinks ...HistorySink) { m.inner.SetHistorySinks(sinks...) }

func (m *Manager) Load() error                        { return m.inner.Load() }
func (m *Manager) Current() (string, bool)            { return m.inner.Current() }
func (m *Manager) Names() []string                    { return m.inner.Names() }
func (m *Manager) Record(name string) (*Record, bool) { return m.inner.Record(name) }
func (m *Manager) Status() Status                     { return m.inner.Status() }
func (m *Manager) Pending() bool                      { return m.inner.Pending() }
func (m *Manager) Toggle(participant string) bool     { return m.inner.Toggle(participant) }
func (m *Manager) Save(ctx context.Context) error     { return m.inner.Save(ctx) }
func (m *Manager) Discard()                           { m.inner.Discard() }
func (m *Manager) Switch(name string) error           { return m.inner.Switch(name) }
func (m *Manager) SetMode(name string, mode Mode) error {
	return m.inner.SetMode(name, mode)
}
func (m *Manager) Create(name string, unfinished, atNames []string, description string) error {
	return m.inner.Create(name, unfinished, atNames, description)
}
func (m *Manager) Delete(name string) error { return m.inner.Delete(name) }

// Wait blocks until background notification and history deliveries have
// drained. Call on shutdown.
func (m *Manager) Wait() { m.inner.Wait() }

// LoadConfig reads the JSON configuration document. A missing file
// yields the defaults.
func LoadConfig(path string) (Config, error) { return cfg.Load(path) }

// NewLogger builds the application logger from config.
func NewLogger(c LoggerConfig) *slog.Logger { return logger.New(c) }

// NewHistorySink builds an audit sink from a DSN. Supported schemes:
// sqlite://, postgres://, clickhouse://, opensearch:// and bare file
// paths (sqlite).
func NewHistorySink(dsn string) (HistorySink, error) { return factory.NewSinkFromDSN(dsn) }

// NewHTTPServer starts an HTTP server exposing the internal API using the given manager.
func NewHTTPServer(addr, basePath string, m *Manager) (*http.Server, error) {
	return iapi.NewServer(addr, basePath, m.inner)
}

// NewHTTPHandler returns the API handler for mounting in an existing
// server or mux.
func NewHTTPHandler(basePath string, m *Manager) http.Handler {
	return iapi.NewRouter(m.inner, basePath).Handler()
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }

// ServeMetrics starts an HTTP server on addr exposing /metrics using the default registry.
// It returns any immediate listen error; otherwise it runs the server in the caller goroutine.
func ServeMetrics(addr string) error {
	http.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           nil,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv.ListenAndServe()
}
