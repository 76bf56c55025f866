package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil database handle")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	ctx := context.Background()
	if err := s1.SettingsRepo().Set(ctx, "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s2.Close()

	v, ok, err := s2.SettingsRepo().Get(ctx, "k")
	if err != nil || !ok || v != "v" {
		t.Errorf("Get after reopen = (%q, %v, %v), want (\"v\", true, nil)", v, ok, err)
	}
}

func TestSettingsGetMissing(t *testing.T) {
	s := openTestStore(t)

	v, ok, err := s.SettingsRepo().Get(context.Background(), KeyFirstLoad)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok || v != "" {
		t.Errorf("expected missing key, got (%q, %v)", v, ok)
	}
}

func TestSettingsSetOverwrites(t *testing.T) {
	s := openTestStore(t)
	repo := s.SettingsRepo()
	ctx := context.Background()

	for _, v := range []string{"true", "false"} {
		if err := repo.Set(ctx, KeyFirstLoad, v); err != nil {
			t.Fatalf("set %q: %v", v, err)
		}
	}

	v, ok, err := repo.Get(ctx, KeyFirstLoad)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || v != "false" {
		t.Errorf("got (%q, %v), want (\"false\", true)", v, ok)
	}
}

func TestSettingsDelete(t *testing.T) {
	s := openTestStore(t)
	repo := s.SettingsRepo()
	ctx := context.Background()

	if err := repo.Set(ctx, KeyUserInfo, `{"email":"a@b.c"}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.Delete(ctx, KeyUserInfo); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, KeyUserInfo); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	if _, ok, _ := repo.Get(ctx, KeyUserInfo); ok {
		t.Error("key should be gone after delete")
	}
}

func TestRequestAppendAndRecent(t *testing.T) {
	s := openTestStore(t)
	repo := s.RequestRepo()
	ctx := context.Background()

	events := []RequestEventData{
		{RequestID: "r1", Op: "questions.page", Method: "GET", Path: "/questions", Status: 200, LatencyMs: 12, Success: true},
		{RequestID: "r2", Op: "results.list", Method: "GET", Path: "/results", Status: 401, LatencyMs: 8, ErrorMessage: "unauthorized"},
		{RequestID: "r3", Op: "questions.page", Method: "GET", Path: "/questions", Status: 500, LatencyMs: 30, ErrorMessage: "boom"},
	}
	for _, e := range events {
		if err := repo.Append(ctx, e); err != nil {
			t.Fatalf("append %s: %v", e.RequestID, err)
		}
	}

	all, err := repo.Recent(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}
	if all[0].RequestID != "r3" {
		t.Errorf("expected newest first, got %q", all[0].RequestID)
	}
	if all[2].Success != true || all[2].Status != 200 {
		t.Errorf("unexpected oldest event: %+v", all[2])
	}
	if all[0].Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}

	failed, err := repo.Recent(ctx, QueryOpts{Failed: true, Op: "questions.page"})
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if len(failed) != 1 || failed[0].RequestID != "r3" {
		t.Errorf("expected only r3, got %+v", failed)
	}

	limited, err := repo.Recent(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("recent limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 events, got %d", len(limited))
	}

	future, err := repo.Recent(ctx, QueryOpts{From: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("recent from: %v", err)
	}
	if len(future) != 0 {
		t.Errorf("expected no events after now+1h, got %d", len(future))
	}
}

func TestReset(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SettingsRepo().Set(ctx, KeyFirstLoad, "false"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.RequestRepo().Append(ctx, RequestEventData{RequestID: "r", Op: "x", Method: "GET", Path: "/"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if _, ok, _ := s.SettingsRepo().Get(ctx, KeyFirstLoad); ok {
		t.Error("settings should be empty after reset")
	}
	events, err := s.RequestRepo().Recent(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events after reset, got %d", len(events))
	}
}

func TestDefaultDBPathFromEnv(t *testing.T) {
	want := filepath.Join(t.TempDir(), "nested", "custom.db")
	t.Setenv("TOEIC_DB", want)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDefaultDBPathXDG(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("TOEIC_DB", "")
	t.Setenv("XDG_DATA_HOME", dataHome)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if want := filepath.Join(dataHome, "toeic", "toeic.db"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
