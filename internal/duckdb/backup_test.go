package duckdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/seaguardian/seaguardian/internal/model"
)

func TestSnapshotTo_CreatesBackupFile(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "seaguardian.duckdb")
	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if _, err := store.RaiseAlert(context.Background(), model.Alert{Message: "snapshot test"}); err != nil {
		t.Fatalf("RaiseAlert: %v", err)
	}

	snapshotPath := filepath.Join(t.TempDir(), "backups", "snapshot.duckdb")
	if err := store.SnapshotTo(snapshotPath); err != nil {
		t.Fatalf("SnapshotTo: %v", err)
	}

	info, err := os.Stat(snapshotPath)
	if err != nil {
		t.Fatalf("stat snapshot: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("snapshot file is empty")
	}
}

func TestSnapshotTo_InMemoryStore(t *testing.T) {
	t.Parallel()

	store, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	err = store.SnapshotTo(filepath.Join(t.TempDir(), "snapshot.duckdb"))
	if err == nil {
		t.Fatal("expected error for in-memory store")
	}
	if err != ErrInMemoryStore {
		t.Fatalf("err = %v, want %v", err, ErrInMemoryStore)
	}
}

func TestSnapshotTo_Reopenable(t *testing.T) {
	t.Parallel()

	store, err := NewStore(filepath.Join(t.TempDir(), "seaguardian.duckdb"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if _, err := store.AddCatch(context.Background(), model.CatchRecord{Species: "Rockfish", WeightKg: 4, Quantity: 2}); err != nil {
		t.Fatalf("AddCatch: %v", err)
	}

	snapshotPath := filepath.Join(t.TempDir(), "snapshot.duckdb")
	if err := store.SnapshotTo(snapshotPath); err != nil {
		t.Fatalf("SnapshotTo: %v", err)
	}

	restored, err := NewStore(snapshotPath)
	if err != nil {
		t.Fatalf("NewStore(snapshot): %v", err)
	}
	t.Cleanup(func() { _ = restored.Close() })

	catches, err := restored.ListCatches(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListCatches: %v", err)
	}
	if len(catches) != 1 || catches[0].Species != "Rockfish" {
		t.Errorf("restored catches = %+v, want the Rockfish record", catches)
	}
}
