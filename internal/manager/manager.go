// Package manager owns the loaded checklist document and drives every
// operation on it: loading, toggling, saving, discarding, and the
// process lifecycle (create, mode switch, delete). A single Manager
// serializes all access; concurrent external writers to the data file
// are out of scope.
package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mkweon/rollcall/internal/history"
	"github.com/mkweon/rollcall/internal/metrics"
	"github.com/mkweon/rollcall/internal/notify"
	"github.com/mkweon/rollcall/internal/roster"
	"github.com/mkweon/rollcall/internal/store"
	"github.com/mkweon/rollcall/internal/tracker"
)

var (
	// ErrUnsavedChanges is returned by Switch, Create, SetMode and Delete
	// while toggles are pending. Those operations can move the active
	// selection, so they refuse until the caller Saves or Discards.
	ErrUnsavedChanges = errors.New("unsaved changes pending")
	// ErrDuplicateName is returned by Create for an existing name.
	ErrDuplicateName = errors.New("process already exists")
	// ErrNotFound is returned for operations on an unknown process.
	ErrNotFound = errors.New("process not found")
)

const exportTimeout = 10 * time.Second

// Manager loads the checklist document from a store, tracks edits for
// the active process, and persists mutations.
type Manager struct {
	mu        sync.RWMutex
	st        store.Store
	logger    *slog.Logger
	notifier  *notify.Dispatcher
	histSinks []history.Sink
	now       func() time.Time
	wg        sync.WaitGroup

	data    roster.Data
	active  string
	session *tracker.Session
}

func New(st store.Store) *Manager {
	return &Manager{
		st:     st,
		logger: slog.Default(),
		now:    time.Now,
		data:   roster.Data{},
	}
}

func (m *Manager) SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	m.mu.Lock()
	m.logger = l
	m.mu.Unlock()
}

// SetNotifier configures the webhook dispatcher invoked after each
// successful save. Passing nil disables notifications.
func (m *Manager) SetNotifier(d *notify.Dispatcher) {
	m.mu.Lock()
	m.notifier = d
	m.mu.Unlock()
}

// SetHistorySinks configures external history sinks (SQLite, Postgres,
// ClickHouse, OpenSearch). Passing nil or no sinks clears the list.
func (m *Manager) SetHistorySinks(sinks ...history.Sink) {
	m.mu.Lock()
	m.histSinks = append([]history.Sink(nil), sinks...)
	m.mu.Unlock()
}

// Load reads the document from the store, selects the active process,
// and opens a fresh editing session over it. Any pending toggles from a
// previous session are dropped.
func (m *Manager) Load() error {
	d, err := m.st.Load()
	if err != nil {
		return fmt.Errorf("load %s: %w", m.st.Path(), err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, rec := range d {
		if err := rec.Validate(); err != nil {
			m.logger.Warn("loaded record failed validation", "process", name, "error", err)
		}
	}
	m.data = d
	m.active = ""
	m.session = nil
	m.recomputeActive()
	m.refreshGauges()
	m.logger.Info("document loaded", "path", m.st.Path(), "processes", len(d), "active", m.active)
	return nil
}

// Current returns the active process name, or false when none is
// selected. No active process is a valid steady state.
func (m *Manager) Current() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active, m.active != ""
}

// Names returns all process names, sorted.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return roster.SortedNames(m.data)
}

// Record returns a deep copy of the named record.
func (m *Manager) Record(name string) (*roster.Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.data[name]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Pending reports whether the active session carries un-saved toggles.
func (m *Manager) Pending() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session != nil && m.session.Pending()
}

// Status reports the active process and its working lists as currently
// edited. With no active process the Process field is empty.
type Status struct {
	Process       string   `json:"process"`
	Mode          string   `json:"mode"`
	Description   string   `json:"description"`
	AtNames       []string `json:"at_names"`
	Unfinished    []string `json:"unfinished"`
	Finished      []string `json:"finished"`
	NewFinished   []string `json:"new_finished"`
	NewUnfinished []string `json:"new_unfinished"`
	Pending       bool     `json:"pending"`
	UpdateTime    string   `json:"update_time"`
}

func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == "" || m.session == nil {
		return Status{AtNames: []string{}, Unfinished: []string{}, Finished: []string{},
			NewFinished: []string{}, NewUnfinished: []string{}}
	}
	rec := m.data[m.active]
	snap := m.session.Snapshot()
	return Status{
		Process:       m.active,
		Mode:          string(rec.Info.Mode),
		Description:   rec.Info.Description,
		AtNames:       append([]string{}, rec.Info.AtNames...),
		Unfinished:    snap.Unfinished,
		Finished:      snap.Finished,
		NewFinished:   snap.NewFinished,
		NewUnfinished: snap.NewUnfinished,
		Pending:       m.session.Pending(),
		UpdateTime:    rec.UpdateTime,
	}
}

// Toggle flips one participant of the active process between the
// unfinished and finished lists. Without an active process, or for an
// unknown participant, it reports false and changes nothing.
func (m *Manager) Toggle(participant string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return false
	}
	if !m.session.Toggle(participant) {
		return false
	}
	metrics.IncToggle(m.active)
	return true
}

// Discard drops all pending toggles and restores the last committed
// lists. It never touches storage and sends no notification.
func (m *Manager) Discard() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		m.session.Discard()
	}
}

// Save commits the session's working lists into the active record,
// stamps update_time, persists the whole document atomically, and
// re-baselines the session. Notification and history export run in the
// background after the write succeeds; their outcome never affects the
// save. A write failure leaves the in-memory edits pending and returns
// the error. Without an active process Save is a no-op.
func (m *Manager) Save(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == "" || m.session == nil {
		return nil
	}
	name := m.active
	snap := m.session.Snapshot()
	now := m.now()

	updated := m.data[name].Clone()
	updated.Unfinished = append([]string{}, snap.Unfinished...)
	updated.Finished = append([]string{}, snap.Finished...)
	updated.Change = roster.Change{
		NewFinished:   append([]string{}, snap.NewFinished...),
		NewUnfinished: append([]string{}, snap.NewUnfinished...),
	}
	updated.UpdateTime = now.Format(roster.TimeLayout)

	out := m.cloneMap()
	out[name] = updated
	if err := m.st.Save(out); err != nil {
		metrics.IncSaveFailure(name)
		m.logger.Error("save failed, edits kept in memory", "process", name, "error", err)
		return fmt.Errorf("save %s: %w", m.st.Path(), err)
	}
	m.data = out
	m.session.Commit()
	metrics.IncSave(name)
	metrics.SetParticipants(name, len(updated.Finished), len(updated.Unfinished))
	m.logger.Info("saved", "process", name,
		"finished", len(updated.Finished), "unfinished", len(updated.Unfinished),
		"new_finished", snap.NewFinished, "new_unfinished", snap.NewUnfinished)

	if m.notifier != nil {
		m.notifier.Dispatch(notify.Message{
			Process:       name,
			AtNames:       append([]string{}, updated.Info.AtNames...),
			NewFinished:   snap.NewFinished,
			NewUnfinished: snap.NewUnfinished,
			Finished:      snap.Finished,
			Unfinished:    snap.Unfinished,
			GeneratedAt:   now,
		})
	}
	m.export(history.Event{
		Type:          history.EventSave,
		OccurredAt:    now.UTC(),
		Process:       name,
		Mode:          string(updated.Info.Mode),
		Finished:      len(updated.Finished),
		Unfinished:    len(updated.Unfinished),
		NewFinished:   len(snap.NewFinished),
		NewUnfinished: len(snap.NewUnfinished),
	})
	return nil
}

// Switch makes another process active. It refuses while toggles are
// pending; the caller must Save or Discard first. The choice is not
// persisted: on restart the active process is recomputed from mode and
// update_time.
func (m *Manager) Switch(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil && m.session.Pending() {
		return ErrUnsavedChanges
	}
	rec, ok := m.data[name]
	if !ok {
		return fmt.Errorf("switch to %q: %w", name, ErrNotFound)
	}
	m.active = name
	m.session = tracker.NewSession(rec)
	m.logger.Info("switched process", "process", name)
	return nil
}

// Create inserts a new enabled process with the given unfinished seed.
// The insert is persisted before it becomes visible; a duplicate name or
// a write failure leaves storage and memory unchanged. Refused while
// toggles are pending: the new record would win the active recompute and
// the pending edits would be lost without a save.
func (m *Manager) Create(name string, unfinished, atNames []string, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil && m.session.Pending() {
		return ErrUnsavedChanges
	}
	if _, exists := m.data[name]; exists {
		return fmt.Errorf("create %q: %w", name, ErrDuplicateName)
	}
	now := m.now()
	rec := roster.NewRecord(unfinished, atNames, description, now)
	out := m.cloneMap()
	out[name] = rec
	if err := m.st.Save(out); err != nil {
		metrics.IncSaveFailure(name)
		return fmt.Errorf("create %q: %w", name, err)
	}
	m.data = out
	m.recomputeActive()
	metrics.IncSave(name)
	metrics.SetParticipants(name, 0, len(rec.Unfinished))
	m.logger.Info("process created", "process", name, "participants", len(rec.Unfinished))
	m.export(history.Event{
		Type: history.EventCreate, OccurredAt: now.UTC(), Process: name,
		Mode: string(rec.Info.Mode), Unfinished: len(rec.Unfinished),
	})
	return nil
}

// SetMode enables or disables a process. Disabling removes it from the
// active candidates without deleting its data; the active selection is
// recomputed afterwards. Refused while toggles are pending.
func (m *Manager) SetMode(name string, mode roster.Mode) error {
	if mode != roster.ModeOn && mode != roster.ModeOff {
		return fmt.Errorf("invalid mode %q", mode)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil && m.session.Pending() {
		return ErrUnsavedChanges
	}
	rec, ok := m.data[name]
	if !ok {
		return fmt.Errorf("set mode on %q: %w", name, ErrNotFound)
	}
	updated := rec.Clone()
	updated.Info.Mode = mode
	out := m.cloneMap()
	out[name] = updated
	if err := m.st.Save(out); err != nil {
		metrics.IncSaveFailure(name)
		return fmt.Errorf("set mode on %q: %w", name, err)
	}
	m.data = out
	m.recomputeActive()
	m.logger.Info("mode changed", "process", name, "mode", mode)
	m.export(history.Event{
		Type: history.EventMode, OccurredAt: m.now().UTC(), Process: name,
		Mode: string(mode), Finished: len(updated.Finished), Unfinished: len(updated.Unfinished),
	})
	return nil
}

// Delete removes a process entirely. Irreversible; the caller must have
// confirmed intent already. Refused while toggles are pending.
func (m *Manager) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil && m.session.Pending() {
		return ErrUnsavedChanges
	}
	if _, ok := m.data[name]; !ok {
		return fmt.Errorf("delete %q: %w", name, ErrNotFound)
	}
	out := m.cloneMap()
	delete(out, name)
	if err := m.st.Save(out); err != nil {
		metrics.IncSaveFailure(name)
		return fmt.Errorf("delete %q: %w", name, err)
	}
	m.data = out
	m.recomputeActive()
	m.logger.Info("process deleted", "process", name)
	m.export(history.Event{Type: history.EventDelete, OccurredAt: m.now().UTC(), Process: name})
	return nil
}

// Wait blocks until background notification and history deliveries
// spawned so far have finished. Intended for shutdown and tests.
func (m *Manager) Wait() {
	m.wg.Wait()
	m.mu.RLock()
	n := m.notifier
	m.mu.RUnlock()
	if n != nil {
		n.Wait()
	}
}

// recomputeActive re-picks the active process after a mutation. When the
// pick is unchanged the current session, including pending toggles,
// survives. Callers hold the lock.
func (m *Manager) recomputeActive() {
	name, ok := roster.ActiveProcess(m.data)
	if !ok {
		m.active = ""
		m.session = nil
		return
	}
	if name == m.active && m.session != nil {
		return
	}
	m.active = name
	m.session = tracker.NewSession(m.data[name])
}

func (m *Manager) cloneMap() roster.Data {
	out := make(roster.Data, len(m.data)+1)
	for k, v := range m.data {
		out[k] = v
	}
	return out
}

func (m *Manager) refreshGauges() {
	for name, rec := range m.data {
		metrics.SetParticipants(name, len(rec.Finished), len(rec.Unfinished))
	}
}

// export ships one event to all configured history sinks in the
// background. Failures are counted and logged, never returned.
func (m *Manager) export(evt history.Event) {
	if len(m.histSinks) == 0 {
		return
	}
	sinks := append([]history.Sink(nil), m.histSinks...)
	logger := m.logger
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()
		for _, s := range sinks {
			if err := s.Send(ctx, evt); err != nil {
				label := fmt.Sprintf("%T", s)
				metrics.IncHistoryExportFailure(label)
				logger.Warn("history export failed", "sink", label, "type", evt.Type, "error", err)
			}
		}
	}()
}
