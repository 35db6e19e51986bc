package roster

import (
	"fmt"
	"sort"
	"time"
)

// TimeLayout is the timestamp format used throughout the persisted document.
const TimeLayout = "2006-01-02 15:04:05"

// DefaultProcessName is the placeholder record written when no process
// exists yet. It signals "no project" to outer layers.
const DefaultProcessName = "process_1"

// Mode controls whether a process is selectable as the active one.
type Mode string

const (
	ModeOn  Mode = "on"
	ModeOff Mode = "off"
)

// Info holds the descriptive part of a process record.
type Info struct {
	AtNames     []string `json:"at_name"`
	CreateTime  string   `json:"create_time"`
	Description string   `json:"description"`
	Mode        Mode     `json:"mode"`
}

// Change is the delta committed at the last save. It is informational
// only; the authoritative membership lives in Unfinished/Finished.
type Change struct {
	NewFinished   []string `json:"new_finished"`
	NewUnfinished []string `json:"new_unfinished"`
}

// Record is one checklist process. Unfinished and Finished are disjoint
// at every committed state; order is insignificant for logic but kept
// for display.
type Record struct {
	Info       Info     `json:"info"`
	Unfinished []string `json:"unfinished"`
	Finished   []string `json:"finished"`
	Change     Change   `json:"change"`
	UpdateTime string   `json:"update_time"`
}

// Data is the whole persisted document: process name -> record.
type Data map[string]*Record

// NewRecord builds a fresh record with the given unfinished seed. Both
// create_time and update_time are stamped from now.
func NewRecord(unfinished, atNames []string, description string, now time.Time) *Record {
	ts := now.Format(TimeLayout)
	return &Record{
		Info: Info{
			AtNames:     append([]string(nil), atNames...),
			CreateTime:  ts,
			Description: description,
			Mode:        ModeOn,
		},
		Unfinished: append([]string(nil), unfinished...),
		Finished:   []string{},
		Change:     Change{NewFinished: []string{}, NewUnfinished: []string{}},
		UpdateTime: ts,
	}
}

// DefaultData returns the bootstrap document used when storage is absent
// or empty: a single enabled placeholder with no participants.
func DefaultData() Data {
	return Data{
		DefaultProcessName: {
			Info:       Info{AtNames: []string{}, Mode: ModeOn},
			Unfinished: []string{},
			Finished:   []string{},
			Change:     Change{NewFinished: []string{}, NewUnfinished: []string{}},
		},
	}
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Info.AtNames = append([]string(nil), r.Info.AtNames...)
	c.Unfinished = append([]string(nil), r.Unfinished...)
	c.Finished = append([]string(nil), r.Finished...)
	c.Change.NewFinished = append([]string(nil), r.Change.NewFinished...)
	c.Change.NewUnfinished = append([]string(nil), r.Change.NewUnfinished...)
	return &c
}

// Validate reports a record whose finished and unfinished sets overlap
// or that carries duplicate participants within one set.
func (r *Record) Validate() error {
	seen := make(map[string]string, len(r.Unfinished)+len(r.Finished))
	for _, n := range r.Unfinished {
		if _, dup := seen[n]; dup {
			return fmt.Errorf("participant %q listed twice", n)
		}
		seen[n] = "unfinished"
	}
	for _, n := range r.Finished {
		if where, dup := seen[n]; dup {
			if where == "finished" {
				return fmt.Errorf("participant %q listed twice", n)
			}
			return fmt.Errorf("participant %q is both finished and unfinished", n)
		}
		seen[n] = "finished"
	}
	return nil
}

// ActiveProcess picks the process that should be selected after a load
// or refresh: among mode=on records the one with the latest parseable
// update_time wins; a record with an empty or unparseable update_time is
// kept only as the first-encountered fallback and never displaces a
// timed candidate. Names are walked in sorted order so the fallback pick
// is stable across runs. With no mode=on records there is no active
// process, which is a valid steady state for callers.
func ActiveProcess(d Data) (string, bool) {
	var (
		latest     time.Time
		hasTimed   bool
		candidate  string
		hasDefault bool
	)
	for _, name := range SortedNames(d) {
		rec := d[name]
		if rec == nil || rec.Info.Mode != ModeOn {
			continue
		}
		ts, err := time.Parse(TimeLayout, rec.UpdateTime)
		if rec.UpdateTime == "" || err != nil {
			if !hasTimed && !hasDefault {
				candidate = name
				hasDefault = true
			}
			continue
		}
		if !hasTimed || ts.After(latest) {
			latest = ts
			candidate = name
			hasTimed = true
		}
	}
	if !hasTimed && !hasDefault {
		return "", false
	}
	return candidate, true
}

// SortedNames returns the process names in sorted order.
func SortedNames(d Data) []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
