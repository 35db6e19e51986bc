// Package tracker keeps the in-memory editing state for one active
// process: the working finished/unfinished lists as the user toggles
// participants, and the delta of those toggles relative to the baseline
// captured at the last load or save.
package tracker

import (
	"sort"

	"github.com/mkweon/rollcall/internal/roster"
)

// Session tracks edits against a baseline. It is not safe for concurrent
// use; the manager serializes access.
type Session struct {
	// working lists, order preserved for display; a toggled participant
	// is appended to the end of the target list
	unfinished []string
	finished   []string

	// committed membership at the last load/save; the ordered copies are
	// kept so Discard can restore the exact baseline lists
	baseUnfinished     map[string]struct{}
	baseFinished       map[string]struct{}
	baseUnfinishedList []string
	baseFinishedList   []string

	// baseline-relative delta; a name is never in both sets
	newFinished   map[string]struct{}
	newUnfinished map[string]struct{}
}

// Snapshot is an immutable copy of the session state, safe to hand to a
// background task while editing continues.
type Snapshot struct {
	Unfinished    []string
	Finished      []string
	NewFinished   []string
	NewUnfinished []string
}

// NewSession starts a session over the committed record state.
func NewSession(rec *roster.Record) *Session {
	s := &Session{}
	s.rebase(rec.Unfinished, rec.Finished)
	return s
}

func (s *Session) rebase(unfinished, finished []string) {
	s.baseUnfinishedList = append([]string(nil), unfinished...)
	s.baseFinishedList = append([]string(nil), finished...)
	s.unfinished = append([]string(nil), unfinished...)
	s.finished = append([]string(nil), finished...)
	s.baseUnfinished = toSet(unfinished)
	s.baseFinished = toSet(finished)
	s.newFinished = make(map[string]struct{})
	s.newUnfinished = make(map[string]struct{})
}

// Toggle flips one participant between unfinished and finished. The
// delta is classified against the baseline, not the previous toggle: a
// participant toggled back to their baseline side drops out of both
// delta sets. Unknown names report false.
func (s *Session) Toggle(name string) bool {
	if i := index(s.unfinished, name); i >= 0 {
		s.unfinished = append(s.unfinished[:i], s.unfinished[i+1:]...)
		s.finished = append(s.finished, name)
		if _, already := s.baseFinished[name]; !already {
			s.newFinished[name] = struct{}{}
		}
		delete(s.newUnfinished, name)
		return true
	}
	if i := index(s.finished, name); i >= 0 {
		s.finished = append(s.finished[:i], s.finished[i+1:]...)
		s.unfinished = append(s.unfinished, name)
		if _, already := s.baseUnfinished[name]; !already {
			s.newUnfinished[name] = struct{}{}
		}
		delete(s.newFinished, name)
		return true
	}
	return false
}

// Pending reports whether any un-saved toggles exist.
func (s *Session) Pending() bool {
	return len(s.newFinished) > 0 || len(s.newUnfinished) > 0
}

// Commit re-baselines the session onto its own working lists. Called
// after the working state has been durably saved.
func (s *Session) Commit() {
	s.rebase(s.unfinished, s.finished)
}

// Discard throws away all toggles and returns to the exact baseline
// lists.
func (s *Session) Discard() {
	s.rebase(s.baseUnfinishedList, s.baseFinishedList)
}

// Snapshot copies the current working lists and delta. Delta lists come
// out sorted so payloads and persisted change fields are stable.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Unfinished:    append([]string(nil), s.unfinished...),
		Finished:      append([]string(nil), s.finished...),
		NewFinished:   sortedKeys(s.newFinished),
		NewUnfinished: sortedKeys(s.newUnfinished),
	}
}

func toSet(names []string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

func index(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
