package database

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

func newTestRepository(t *testing.T) *RunRepository {
	t.Helper()

	db, err := Open()
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewRunRepository(db)
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	db, err := Open()
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("Second migration run failed: %v", err)
	}
	if version != 1 || dirty {
		t.Errorf("Expected version 1 clean, got %d dirty=%v", version, dirty)
	}
}

func TestSaveAndGetRun(t *testing.T) {
	repo := newTestRepository(t)

	run := &Run{
		Profile:     "filmmaking",
		Status:      "ok",
		ItemCount:   12,
		TargetCount: 5,
		Failures:    []string{"youtube: quota exceeded"},
		Payload:     json.RawMessage(`{"targets":[]}`),
	}
	if err := repo.SaveRun(run); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if run.ID == "" {
		t.Fatal("Expected id to be assigned")
	}
	if run.CreatedAt.IsZero() {
		t.Fatal("Expected creation time to be assigned")
	}

	got, err := repo.GetRun(run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected run, got nil")
	}
	if got.Profile != "filmmaking" || got.Status != "ok" || got.ItemCount != 12 || got.TargetCount != 5 {
		t.Errorf("Unexpected run: %+v", got)
	}
	if len(got.Failures) != 1 || got.Failures[0] != "youtube: quota exceeded" {
		t.Errorf("Unexpected failures: %v", got.Failures)
	}
	if string(got.Payload) != `{"targets":[]}` {
		t.Errorf("Unexpected payload: %s", got.Payload)
	}
}

func TestGetRunMissing(t *testing.T) {
	repo := newTestRepository(t)

	got, err := repo.GetRun("does-not-exist")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil, got %+v", got)
	}
}

func TestListAndPrune(t *testing.T) {
	repo := newTestRepository(t)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		run := &Run{
			ID:        fmt.Sprintf("run-%d", i),
			Profile:   "general",
			Status:    "ok",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.SaveRun(run); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	runs, err := repo.ListRuns(3)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-4" || runs[2].ID != "run-2" {
		t.Errorf("Expected newest first, got %s..%s", runs[0].ID, runs[2].ID)
	}
	if runs[0].Payload != nil {
		t.Errorf("Expected list without payload, got %s", runs[0].Payload)
	}

	removed, err := repo.Prune(2)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 3 {
		t.Errorf("Expected 3 removed, got %d", removed)
	}

	runs, err = repo.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-4" || runs[1].ID != "run-3" {
		t.Errorf("Unexpected runs after prune: %+v", runs)
	}
}
