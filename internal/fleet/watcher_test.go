package fleet

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/seaguardian/seaguardian/internal/model"
)

type recordingWriter struct {
	mu      sync.Mutex
	batches [][]model.Vessel
}

func (r *recordingWriter) UpsertVessels(_ context.Context, vessels []model.Vessel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, vessels)
	return nil
}

func (r *recordingWriter) UpdateVesselPosition(context.Context, string, float64, float64, float64, float64) error {
	return nil
}

func (r *recordingWriter) last() []model.Vessel {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.batches) == 0 {
		return nil
	}
	return r.batches[len(r.batches)-1]
}

func writeFleet(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write fleet file: %v", err)
	}
}

func TestWatcher_Sync(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fleet.yaml")
	writeFleet(t, path, "vessels:\n  - id: SG-001\n    name: Sea Breeze\n")

	store := &recordingWriter{}
	w := NewWatcher(path, store, nil)
	if err := w.Sync(context.Background()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if got := store.last(); len(got) != 1 || got[0].ID != "SG-001" {
		t.Errorf("upserted = %+v", got)
	}
	if n, err := w.Reloads(); n != 1 || err != nil {
		t.Errorf("Reloads() = %d, %v", n, err)
	}
}

func TestWatcher_SyncMissingFile(t *testing.T) {
	t.Parallel()

	w := NewWatcher(filepath.Join(t.TempDir(), "missing.yaml"), &recordingWriter{}, nil)
	if err := w.Sync(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fleet.yaml")
	writeFleet(t, path, "vessels:\n  - id: SG-001\n")

	store := &recordingWriter{}
	w := NewWatcher(path, store, nil)
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for {
		// Rewrite until the watcher has picked up a change; Run may not be
		// subscribed yet on the first write.
		writeFleet(t, path, "vessels:\n  - id: SG-001\n  - id: SG-002\n")
		time.Sleep(50 * time.Millisecond)
		if got := store.last(); len(got) == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for reload")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
