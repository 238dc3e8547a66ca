package socketrpc_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/seaguardian/seaguardian/internal/duckdb"
	"github.com/seaguardian/seaguardian/internal/model"
	"github.com/seaguardian/seaguardian/internal/socketrpc"

	"github.com/google/go-cmp/cmp"
)

func startTestServer(t *testing.T) (string, *duckdb.Store) {
	t.Helper()
	store, err := duckdb.NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	err = store.UpsertVessels(context.Background(), []model.Vessel{
		{ID: "SG-001", Name: "Sea Breeze", Callsign: "WDC1234", Lat: 37.77, Lon: -122.41},
	})
	if err != nil {
		t.Fatalf("UpsertVessels: %v", err)
	}

	sockPath := filepath.Join(t.TempDir(), "test.sock")
	srv := socketrpc.NewServer(sockPath, store, nil)
	if err := srv.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(srv.Stop)
	return sockPath, store
}

func dialTest(t *testing.T, sockPath string) *socketrpc.Client {
	t.Helper()
	client, err := socketrpc.Dial(context.Background(), sockPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRoundtrip(t *testing.T) {
	sockPath, store := startTestServer(t)
	client := dialTest(t, sockPath)
	ctx := context.Background()

	var sos model.Alert
	t.Run("TriggerSOS", func(t *testing.T) {
		var err error
		sos, err = client.TriggerSOS(ctx, "SG-001")
		if err != nil {
			t.Fatal(err)
		}
		if sos.ID == 0 || sos.Kind != model.AlertSOS {
			t.Fatalf("unexpected alert: %+v", sos)
		}
	})

	t.Run("AcknowledgeAlert", func(t *testing.T) {
		if err := client.AcknowledgeAlert(ctx, sos.ID); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("AddCatch", func(t *testing.T) {
		rec, err := client.AddCatch(ctx, model.CatchRecord{VesselID: "SG-001", Species: "Salmon", WeightKg: 6.1, Quantity: 2})
		if err != nil {
			t.Fatal(err)
		}
		if rec.ID == "" {
			t.Fatal("catch ID not assigned")
		}
	})

	t.Run("Snapshot", func(t *testing.T) {
		got, err := client.Snapshot(ctx)
		if err != nil {
			t.Fatal(err)
		}
		want, err := store.Snapshot(ctx)
		if err != nil {
			t.Fatal(err)
		}
		opts := cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })
		if diff := cmp.Diff(want.Vessels, got.Vessels, opts); diff != "" {
			t.Errorf("vessels mismatch (-store +rpc):\n%s", diff)
		}
		if diff := cmp.Diff(want.Alerts, got.Alerts, opts); diff != "" {
			t.Errorf("alerts mismatch (-store +rpc):\n%s", diff)
		}
		if diff := cmp.Diff(want.Catches, got.Catches, opts); diff != "" {
			t.Errorf("catches mismatch (-store +rpc):\n%s", diff)
		}
		if len(got.Alerts) != 1 || !got.Alerts[0].Acknowledged {
			t.Errorf("alerts = %+v, want one acknowledged alert", got.Alerts)
		}
	})
}

func TestClient_SentinelErrors(t *testing.T) {
	sockPath, _ := startTestServer(t)
	client := dialTest(t, sockPath)
	ctx := context.Background()

	if _, err := client.TriggerSOS(ctx, "ghost"); !errors.Is(err, model.ErrVesselNotFound) {
		t.Errorf("TriggerSOS err = %v, want ErrVesselNotFound", err)
	}
	if err := client.AcknowledgeAlert(ctx, 12345); !errors.Is(err, model.ErrAlertNotFound) {
		t.Errorf("AcknowledgeAlert err = %v, want ErrAlertNotFound", err)
	}
	if _, err := client.AddCatch(ctx, model.CatchRecord{Species: "Cod"}); !errors.Is(err, model.ErrInvalidCatch) {
		t.Errorf("AddCatch err = %v, want ErrInvalidCatch", err)
	}

	// Connection stays usable after application errors.
	if _, err := client.Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot after errors: %v", err)
	}
}

func TestClient_Unavailable(t *testing.T) {
	_, err := socketrpc.Dial(context.Background(), filepath.Join(t.TempDir(), "missing.sock"))
	if !errors.Is(err, model.ErrUnavailable) {
		t.Fatalf("Dial err = %v, want ErrUnavailable", err)
	}

	sockPath := filepath.Join(t.TempDir(), "stop.sock")
	store, err := duckdb.NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()
	srv := socketrpc.NewServer(sockPath, store, nil)
	if err := srv.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	client := dialTest(t, sockPath)
	srv.Stop()

	if _, err := client.Snapshot(context.Background()); !errors.Is(err, model.ErrUnavailable) {
		t.Fatalf("Snapshot after stop err = %v, want ErrUnavailable", err)
	}
}

func TestServer_RejectsSecondListener(t *testing.T) {
	sockPath, _ := startTestServer(t)

	store, err := duckdb.NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()
	if err := socketrpc.NewServer(sockPath, store, nil).Start(); err == nil {
		t.Fatal("expected error when another server is listening")
	}
}
