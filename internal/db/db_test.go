package db

import (
	"path/filepath"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := d.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return d
}

func TestMigrate(t *testing.T) {
	d := testDB(t)

	// Idempotent.
	if err := d.Migrate(); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	var version int
	if err := d.conn.QueryRow("SELECT version FROM schema_version").Scan(&version); err != nil {
		t.Fatalf("query schema_version: %v", err)
	}
	if version != 1 {
		t.Errorf("version = %d, want 1", version)
	}
}

func TestReset(t *testing.T) {
	d := testDB(t)
	if err := d.StartRun("run-1", "en", "family_mansion", "modern", 6, false); err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if err := d.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	runs, err := d.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("got %d runs after reset, want 0", len(runs))
	}
}

func TestStartRun_FinishRun(t *testing.T) {
	d := testDB(t)
	if err := d.StartRun("run-1", "es", "cruise", "1920s", 8, true); err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	r, err := d.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if r == nil {
		t.Fatal("GetRun returned nil")
	}
	if r.Status != "running" {
		t.Errorf("Status = %q, want running", r.Status)
	}
	if r.Language != "es" || r.Theme != "cruise" || r.Epoch != "1920s" || r.Players != 8 {
		t.Errorf("unexpected run fields: %+v", r)
	}
	if !r.DryRun {
		t.Error("DryRun = false, want true")
	}
	if r.FinishedAt != "" {
		t.Errorf("FinishedAt = %q, want empty while running", r.FinishedAt)
	}

	if err := d.FinishRun("run-1", "completed", "/out/mystery_game_ab12cd34.zip", ""); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	r, err = d.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if r.Status != "completed" {
		t.Errorf("Status = %q, want completed", r.Status)
	}
	if r.OutputPath != "/out/mystery_game_ab12cd34.zip" {
		t.Errorf("OutputPath = %q", r.OutputPath)
	}
	if r.FinishedAt == "" {
		t.Error("FinishedAt empty after finish")
	}
}

func TestFinishRun_NotFound(t *testing.T) {
	d := testDB(t)
	if err := d.FinishRun("missing", "failed", "", "boom"); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestGetRun_NotFound(t *testing.T) {
	d := testDB(t)
	r, err := d.GetRun("missing")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if r != nil {
		t.Errorf("GetRun = %+v, want nil", r)
	}
}

func TestListRuns(t *testing.T) {
	d := testDB(t)
	for _, id := range []string{"run-1", "run-2", "run-3"} {
		if err := d.StartRun(id, "en", "train", "victorian", 5, false); err != nil {
			t.Fatalf("StartRun %s: %v", id, err)
		}
	}

	runs, err := d.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	// Newest first; same-second inserts fall back to id ordering.
	if runs[0].ID != "run-3" {
		t.Errorf("runs[0].ID = %q, want run-3", runs[0].ID)
	}
}

func TestLogRunEvent_GetRunHistory(t *testing.T) {
	d := testDB(t)
	if err := d.StartRun("run-1", "en", "family_mansion", "modern", 6, false); err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	if err := d.LogRunEvent("run-1", "world", "started", 0, 0, ""); err != nil {
		t.Fatalf("LogRunEvent: %v", err)
	}
	if err := d.LogRunEvent("run-1", "world", "completed", 0, 4200, ""); err != nil {
		t.Fatalf("LogRunEvent: %v", err)
	}
	if err := d.LogRunEvent("run-1", "world_validate", "retry", 1, 0, "world not coherent"); err != nil {
		t.Fatalf("LogRunEvent: %v", err)
	}

	events, err := d.GetRunHistory("run-1")
	if err != nil {
		t.Fatalf("GetRunHistory: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Stage != "world_validate" || events[0].Event != "retry" {
		t.Errorf("events[0] = %+v, want latest retry event first", events[0])
	}
	if events[0].Detail != "world not coherent" {
		t.Errorf("Detail = %q", events[0].Detail)
	}
	if events[0].Attempt != 1 {
		t.Errorf("Attempt = %d, want 1", events[0].Attempt)
	}
}

func TestLogBatchItem_GetBatchItems(t *testing.T) {
	d := testDB(t)
	if err := d.StartRun("run-1", "en", "family_mansion", "modern", 6, false); err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	if err := d.LogBatchItem("run-1", "character_images", "char-1a2b3c4d", true, 1, ""); err != nil {
		t.Fatalf("LogBatchItem: %v", err)
	}
	if err := d.LogBatchItem("run-1", "character_images", "char-5e6f7a8b", false, 3, "rate limit exceeded"); err != nil {
		t.Fatalf("LogBatchItem: %v", err)
	}
	if err := d.LogBatchItem("run-1", "content", "clue-1", true, 2, ""); err != nil {
		t.Fatalf("LogBatchItem: %v", err)
	}

	items, err := d.GetBatchItems("run-1", "character_images")
	if err != nil {
		t.Fatalf("GetBatchItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Item != "char-1a2b3c4d" || !items[0].OK {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[1].OK || items[1].Attempts != 3 || items[1].Error != "rate limit exceeded" {
		t.Errorf("items[1] = %+v", items[1])
	}
}

func TestRunIsolation(t *testing.T) {
	d := testDB(t)
	for _, id := range []string{"run-a", "run-b"} {
		if err := d.StartRun(id, "en", "corporate_retreat", "modern", 4, false); err != nil {
			t.Fatalf("StartRun %s: %v", id, err)
		}
	}
	if err := d.LogRunEvent("run-a", "world", "started", 0, 0, ""); err != nil {
		t.Fatalf("LogRunEvent: %v", err)
	}

	events, err := d.GetRunHistory("run-b")
	if err != nil {
		t.Fatalf("GetRunHistory: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("run-b has %d events, want 0", len(events))
	}
}
