package roster

import (
	"testing"
	"time"
)

func TestNewRecordStampsBothTimes(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	r := NewRecord([]string{"Alice", "Bob"}, []string{"13800000000"}, "daily standup", now)
	if r.Info.CreateTime != "2025-03-14 09:30:00" {
		t.Fatalf("create_time = %q", r.Info.CreateTime)
	}
	if r.UpdateTime != r.Info.CreateTime {
		t.Fatalf("update_time %q != create_time %q", r.UpdateTime, r.Info.CreateTime)
	}
	if r.Info.Mode != ModeOn {
		t.Fatalf("mode = %q, want on", r.Info.Mode)
	}
	if len(r.Finished) != 0 || len(r.Unfinished) != 2 {
		t.Fatalf("unexpected sets: finished=%v unfinished=%v", r.Finished, r.Unfinished)
	}
}

func TestValidateRejectsOverlap(t *testing.T) {
	r := &Record{Unfinished: []string{"a", "b"}, Finished: []string{"b"}}
	if err := r.Validate(); err == nil {
		t.Fatal("expected overlap error")
	}
	r = &Record{Unfinished: []string{"a", "a"}}
	if err := r.Validate(); err == nil {
		t.Fatal("expected duplicate error")
	}
	r = &Record{Unfinished: []string{"a"}, Finished: []string{"b"}}
	if err := r.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestActiveProcessPicksLatestEnabled(t *testing.T) {
	d := Data{
		"A": {Info: Info{Mode: ModeOn}, UpdateTime: "2025-01-01 10:00:00"},
		"B": {Info: Info{Mode: ModeOn}, UpdateTime: "2025-01-02 10:00:00"},
		"C": {Info: Info{Mode: ModeOff}, UpdateTime: "2025-01-03 10:00:00"},
	}
	name, ok := ActiveProcess(d)
	if !ok || name != "B" {
		t.Fatalf("active = %q/%v, want B/true", name, ok)
	}
}

func TestActiveProcessFallbackOnlyWithoutTimedCandidate(t *testing.T) {
	d := Data{
		"x": {Info: Info{Mode: ModeOn}, UpdateTime: ""},
		"y": {Info: Info{Mode: ModeOn}, UpdateTime: "not-a-time"},
	}
	name, ok := ActiveProcess(d)
	if !ok || name != "x" {
		t.Fatalf("active = %q/%v, want first fallback x", name, ok)
	}

	// A timed record always beats an untimed one, regardless of order.
	d["z"] = &Record{Info: Info{Mode: ModeOn}, UpdateTime: "2020-05-05 05:05:05"}
	name, ok = ActiveProcess(d)
	if !ok || name != "z" {
		t.Fatalf("active = %q/%v, want timed z", name, ok)
	}
}

func TestActiveProcessNoneEnabled(t *testing.T) {
	d := Data{
		"A": {Info: Info{Mode: ModeOff}, UpdateTime: "2025-01-01 10:00:00"},
	}
	if name, ok := ActiveProcess(d); ok {
		t.Fatalf("expected no active process, got %q", name)
	}
	if _, ok := ActiveProcess(Data{}); ok {
		t.Fatal("expected no active process for empty data")
	}
}

func TestActiveProcessTreatsMissingModeAsOff(t *testing.T) {
	d := Data{
		"legacy": {UpdateTime: "2025-01-01 10:00:00"},
		"on":     {Info: Info{Mode: ModeOn}, UpdateTime: "2024-01-01 10:00:00"},
	}
	name, ok := ActiveProcess(d)
	if !ok || name != "on" {
		t.Fatalf("active = %q/%v, want on/true", name, ok)
	}
}

func TestCloneIsDeep(t *testing.T) {
	r := NewRecord([]string{"a"}, []string{"h"}, "", time.Now())
	c := r.Clone()
	c.Unfinished[0] = "changed"
	c.Info.AtNames[0] = "changed"
	if r.Unfinished[0] != "a" || r.Info.AtNames[0] != "h" {
		t.Fatal("clone shares backing arrays with original")
	}
}
