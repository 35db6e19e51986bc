package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLevelParsing(t *testing.T) {
	cases := map[string]string{
		"debug":   "DEBUG",
		"info":    "INFO",
		"":        "INFO",
		"warn":    "WARN",
		"warning": "WARN",
		"error":   "ERROR",
		"bogus":   "INFO",
	}
	for in, want := range cases {
		if got := (Config{Level: in}).slogLevel().String(); got != want {
			t.Fatalf("level %q parsed as %s, want %s", in, got, want)
		}
	}
}

func TestWriterNilWithoutFile(t *testing.T) {
	if w := (Config{}).Writer(); w != nil {
		t.Fatal("expected nil writer with no file configured")
	}
}

func TestFileLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rollcall.log")
	lg := New(Config{File: path, Level: "debug"})
	lg.Info("hello", "process", "Team A")

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"msg":"hello"`) || !strings.Contains(s, `"process":"Team A"`) {
		t.Fatalf("unexpected log content: %s", s)
	}
}

func TestDebugFilteredAtInfoLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rollcall.log")
	lg := New(Config{File: path})
	lg.Debug("invisible")
	b, _ := os.ReadFile(path)
	if strings.Contains(string(b), "invisible") {
		t.Fatal("debug record written at info level")
	}
}
