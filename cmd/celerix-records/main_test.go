package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/celerix-dev/celerix-records/internal/api"
	"github.com/celerix-dev/celerix-records/internal/engine"
	pkgengine "github.com/celerix-dev/celerix-records/pkg/engine"
	"github.com/celerix-dev/celerix-records/pkg/schema"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestClockInCommands(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(api.NewEngine(&api.Handler{Store: engine.NewMemStore(nil, nil)}))
	defer srv.Close()

	out, err := run(t, "--addr", srv.URL, "clockin", "create", "--email", "a@x.com", "--location", "NYC")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	var rec schema.ClockIn
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("Unexpected output %q: %v", out, err)
	}

	out, err = run(t, "--addr", srv.URL, "clockin", "filter", "--email", "a@x.com")
	if err != nil || !strings.Contains(out, rec.ID) {
		t.Errorf("filter returned %q, %v", out, err)
	}

	out, err = run(t, "--addr", srv.URL, "clockin", "update", rec.ID, "--email", "a@x.com", "--location", "NYC", "--at", "2030-01-01")
	if err != nil || !strings.Contains(out, "2030-01-01T00:00:00Z") {
		t.Errorf("update returned %q, %v", out, err)
	}

	if _, err := run(t, "--addr", srv.URL, "clockin", "delete", rec.ID); err != nil {
		t.Errorf("delete failed: %v", err)
	}
	if _, err := run(t, "--addr", srv.URL, "clockin", "get", rec.ID); err == nil {
		t.Error("Expected error for deleted record")
	}
}

func TestItemCommands(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(api.NewEngine(&api.Handler{Store: engine.NewMemStore(nil, nil)}))
	defer srv.Close()

	out, err := run(t, "--addr", srv.URL, "item", "create",
		"--email", "a@x.com", "--name", "groceries", "--item-name", "milk",
		"--expiry-date", "2025-01-01", "--quantity", "2")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	var item schema.Item
	json.Unmarshal([]byte(out), &item)

	out, err = run(t, "--addr", srv.URL, "item", "update", item.ID, "--quantity", "8")
	if err != nil || !strings.Contains(out, `"quantity": 8`) || !strings.Contains(out, `"name": "groceries"`) {
		t.Errorf("update returned %q, %v", out, err)
	}

	out, err = run(t, "--addr", srv.URL, "item", "filter", "--min-quantity", "5")
	if err != nil || !strings.Contains(out, item.ID) {
		t.Errorf("filter returned %q, %v", out, err)
	}

	out, err = run(t, "--addr", srv.URL, "item", "count-by-email")
	if err != nil || !strings.Contains(out, `"count": 1`) {
		t.Errorf("count-by-email returned %q, %v", out, err)
	}

	if _, err := run(t, "--addr", srv.URL, "item", "create", "--email", "a@x.com"); err == nil {
		t.Error("Expected error for missing flags")
	}
}

func TestMigrateCommand(t *testing.T) {
	srcDir, dstDir := t.TempDir(), t.TempDir()
	ctx := context.Background()

	p, _ := engine.NewPersistence(srcDir)
	src := engine.NewMemStore(nil, p)
	doc, _ := pkgengine.NewDocument(map[string]any{"email": "a@x.com"})
	src.InsertOne(ctx, pkgengine.ClockInCollection, pkgengine.NewID(), doc)
	src.Close()

	out, err := run(t, "migrate", "--from-data-dir", srcDir, "--to-data-dir", dstDir)
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out, "migrated 1 records") {
		t.Errorf("Unexpected output %q", out)
	}
	if _, err := os.Stat(filepath.Join(dstDir, "user.json")); err != nil {
		t.Errorf("Expected destination file: %v", err)
	}
}
