package main

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	mng "github.com/mkweon/rollcall/internal/manager"
	"github.com/mkweon/rollcall/internal/server"
	"github.com/mkweon/rollcall/internal/store"
)

func startTestDaemon(t *testing.T) (string, *mng.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st := store.NewFileStore(filepath.Join(t.TempDir(), "process.json"))
	mgr := mng.New(st)
	mgr.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := mgr.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	srv := httptest.NewServer(server.NewRouter(mgr, "/api").Handler())
	t.Cleanup(srv.Close)
	return srv.URL + "/api", mgr
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	root := buildRoot()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	return root.Execute()
}

func TestCLIAgainstDaemon(t *testing.T) {
	api, _ := startTestDaemon(t)

	if err := run(t, "create", "--name=Team A", "--participant=Alice", "--participant=Bob", "--api-url="+api); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := run(t, "toggle", "Alice", "--api-url="+api); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := run(t, "save", "--api-url="+api); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := run(t, "status", "--api-url="+api); err != nil {
		t.Fatalf("status: %v", err)
	}
	if err := run(t, "list", "--api-url="+api); err != nil {
		t.Fatalf("list: %v", err)
	}
	if err := run(t, "mode", "Team A", "off", "--api-url="+api); err != nil {
		t.Fatalf("mode: %v", err)
	}
}

func TestCLIDeleteRequiresYes(t *testing.T) {
	api, _ := startTestDaemon(t)
	if err := run(t, "create", "--name=Team A", "--api-url="+api); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := run(t, "delete", "Team A", "--api-url="+api)
	if err == nil || !strings.Contains(err.Error(), "--yes") {
		t.Fatalf("delete without --yes = %v", err)
	}
	if err := run(t, "delete", "Team A", "--yes", "--api-url="+api); err != nil {
		t.Fatalf("delete with --yes: %v", err)
	}
}

func TestCLITemplateAndCreateFromFile(t *testing.T) {
	api, _ := startTestDaemon(t)
	path := filepath.Join(t.TempDir(), "standup.json")

	if err := run(t, "template", "--type=standup", "--name=Team A", "--output="+path); err != nil {
		t.Fatalf("template: %v", err)
	}
	if err := run(t, "template", "--type=standup", "--output="+path); err == nil {
		t.Fatal("overwrite without --force must fail")
	}
	if err := run(t, "create", "--file="+path, "--api-url="+api); err != nil {
		t.Fatalf("create from file: %v", err)
	}
	if err := run(t, "switch", "Team A", "--api-url="+api); err != nil {
		t.Fatalf("switch: %v", err)
	}
}

func TestCLICreateUsesConfigPool(t *testing.T) {
	api, mgr := startTestDaemon(t)
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	cfg := `{"name": ["Alice", "Bob"], "dingtalk_bot": "off"}`
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	// no --participant: the config pool seeds the list
	if err := run(t, "create", "--name=Pool", "--config="+cfgPath, "--api-url="+api); err != nil {
		t.Fatalf("create: %v", err)
	}
	rec, ok := mgr.Record("Pool")
	if !ok {
		t.Fatal("Pool missing")
	}
	if len(rec.Unfinished) != 2 || rec.Unfinished[0] != "Alice" || rec.Unfinished[1] != "Bob" {
		t.Fatalf("unfinished = %v, want config pool", rec.Unfinished)
	}

	// explicit --participant wins over the pool
	if err := run(t, "create", "--name=Solo", "--participant=Carol", "--config="+cfgPath, "--api-url="+api); err != nil {
		t.Fatalf("create: %v", err)
	}
	rec, _ = mgr.Record("Solo")
	if len(rec.Unfinished) != 1 || rec.Unfinished[0] != "Carol" {
		t.Fatalf("unfinished = %v, want [Carol]", rec.Unfinished)
	}
}

func TestCLIUnreachableDaemon(t *testing.T) {
	err := run(t, "status", "--api-url=http://127.0.0.1:1/api", "--api-timeout=200ms")
	if err == nil || !strings.Contains(err.Error(), "not reachable") {
		t.Fatalf("expected unreachable error, got %v", err)
	}
}
