package provider

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/seaguardian/seaguardian/internal/journal"
	"github.com/seaguardian/seaguardian/internal/model"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeService is an in-memory state service reachable through fakeRemote.
type fakeService struct {
	mu      sync.Mutex
	down    bool
	vessels []model.Vessel
	alerts  []model.Alert
	catches []model.CatchRecord
	nextID  int64
	calls   []string
	dials   int
}

func newFakeService() *fakeService {
	return &fakeService{
		vessels: []model.Vessel{{ID: "SG-001", Name: "Sea Breeze", Status: model.VesselActive}},
		alerts:  []model.Alert{{ID: 1, Kind: model.AlertWeather, Message: "Small craft advisory"}},
		nextID:  1,
	}
}

func (s *fakeService) setDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

func (s *fakeService) dial(context.Context) (Remote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dials++
	if s.down {
		return nil, fmt.Errorf("dial: %w", model.ErrUnavailable)
	}
	return &fakeRemote{svc: s}, nil
}

type fakeRemote struct {
	svc    *fakeService
	closed bool
}

func (r *fakeRemote) check() error {
	if r.closed || r.svc.down {
		return fmt.Errorf("read: %w", model.ErrUnavailable)
	}
	return nil
}

func (r *fakeRemote) Snapshot(context.Context) (model.Snapshot, error) {
	r.svc.mu.Lock()
	defer r.svc.mu.Unlock()
	if err := r.check(); err != nil {
		return model.Snapshot{}, err
	}
	return model.Snapshot{
		Vessels: append([]model.Vessel(nil), r.svc.vessels...),
		Alerts:  append([]model.Alert(nil), r.svc.alerts...),
		Catches: append([]model.CatchRecord(nil), r.svc.catches...),
	}, nil
}

func (r *fakeRemote) TriggerSOS(_ context.Context, vesselID string) (model.Alert, error) {
	r.svc.mu.Lock()
	defer r.svc.mu.Unlock()
	if err := r.check(); err != nil {
		return model.Alert{}, err
	}
	r.svc.calls = append(r.svc.calls, "sos:"+vesselID)
	found := false
	for i := range r.svc.vessels {
		if r.svc.vessels[i].ID == vesselID {
			r.svc.vessels[i].Status = model.VesselSOS
			found = true
		}
	}
	if !found {
		return model.Alert{}, model.ErrVesselNotFound
	}
	r.svc.nextID++
	a := model.Alert{ID: r.svc.nextID, VesselID: vesselID, Kind: model.AlertSOS, Severity: model.SeverityCritical}
	r.svc.alerts = append([]model.Alert{a}, r.svc.alerts...)
	return a, nil
}

func (r *fakeRemote) AcknowledgeAlert(_ context.Context, alertID int64) error {
	r.svc.mu.Lock()
	defer r.svc.mu.Unlock()
	if err := r.check(); err != nil {
		return err
	}
	r.svc.calls = append(r.svc.calls, fmt.Sprintf("ack:%d", alertID))
	for i := range r.svc.alerts {
		if r.svc.alerts[i].ID == alertID {
			r.svc.alerts[i].Acknowledged = true
			return nil
		}
	}
	return model.ErrAlertNotFound
}

func (r *fakeRemote) AddCatch(_ context.Context, rec model.CatchRecord) (model.CatchRecord, error) {
	r.svc.mu.Lock()
	defer r.svc.mu.Unlock()
	if err := r.check(); err != nil {
		return model.CatchRecord{}, err
	}
	r.svc.calls = append(r.svc.calls, "catch:"+rec.Species)
	r.svc.catches = append([]model.CatchRecord{rec}, r.svc.catches...)
	return rec, nil
}

func (r *fakeRemote) Close() error {
	r.closed = true
	return nil
}

func newTestProvider(t *testing.T, svc *fakeService, size int) *Provider {
	t.Helper()
	clock := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	p := New(svc.dial, Options{OutboxSize: size, Now: func() time.Time { return clock }})
	t.Cleanup(func() { p.Close() })
	return p
}

func TestSnapshot_Online(t *testing.T) {
	svc := newFakeService()
	p := newTestProvider(t, svc, 0)

	snap, err := p.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if !snap.IsOnline {
		t.Error("IsOnline = false, want true")
	}
	if len(snap.Vessels) != 1 || len(snap.Alerts) != 1 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
	st := p.Status()
	if !st.Online || st.ConsecutiveFailures != 0 || st.LastOnline.IsZero() {
		t.Errorf("status = %+v", st)
	}
}

func TestSnapshot_OfflineReturnsCache(t *testing.T) {
	svc := newFakeService()
	p := newTestProvider(t, svc, 0)
	ctx := context.Background()

	online, err := p.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	svc.setDown(true)
	for i := 0; i < 2; i++ {
		snap, err := p.Snapshot(ctx)
		if err != nil {
			t.Fatalf("offline Snapshot returned error: %v", err)
		}
		if snap.IsOnline {
			t.Error("IsOnline = true while service is down")
		}
		if diff := cmp.Diff(online.Alerts, snap.Alerts); diff != "" {
			t.Errorf("cached alerts mismatch (-want +got):\n%s", diff)
		}
	}
	if got := p.Status().ConsecutiveFailures; got != 2 {
		t.Errorf("ConsecutiveFailures = %d, want 2", got)
	}
}

func TestSnapshot_NeverConnected(t *testing.T) {
	svc := newFakeService()
	svc.setDown(true)
	p := newTestProvider(t, svc, 0)

	snap, err := p.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.IsOnline || len(snap.Vessels) != 0 {
		t.Errorf("snapshot = %+v, want empty offline snapshot", snap)
	}
}

func TestOfflineActions_FlushInOrder(t *testing.T) {
	svc := newFakeService()
	p := newTestProvider(t, svc, 0)
	ctx := context.Background()

	if _, err := p.Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	svc.setDown(true)

	if err := p.AcknowledgeAlert(ctx, 1); err != nil {
		t.Fatalf("offline AcknowledgeAlert: %v", err)
	}
	sos, err := p.TriggerSOS(ctx, "SG-001")
	if err != nil {
		t.Fatalf("offline TriggerSOS: %v", err)
	}
	if sos.ID >= 0 {
		t.Errorf("provisional alert ID = %d, want negative", sos.ID)
	}
	if err := p.AcknowledgeAlert(ctx, sos.ID); err != nil {
		t.Fatalf("offline ack of provisional alert: %v", err)
	}
	if _, err := p.AddCatch(ctx, model.CatchRecord{Species: "Cod", WeightKg: 2, Quantity: 1}); err != nil {
		t.Fatalf("offline AddCatch: %v", err)
	}

	// Optimistic view while offline.
	offline, _ := p.Snapshot(ctx)
	if got := len(offline.Catches); got != 1 {
		t.Errorf("offline catches = %d, want 1", got)
	}
	if v, _ := offline.VesselByID("SG-001"); v.Status != model.VesselSOS {
		t.Errorf("offline vessel status = %q, want sos", v.Status)
	}
	for _, a := range offline.Alerts {
		if !a.Acknowledged {
			t.Errorf("alert %d not optimistically acknowledged", a.ID)
		}
	}
	if got := p.Status().Pending; got != 4 {
		t.Errorf("Pending = %d, want 4", got)
	}

	svc.setDown(false)
	snap, err := p.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot after reconnect: %v", err)
	}
	if !snap.IsOnline {
		t.Error("IsOnline = false after reconnect")
	}

	want := []string{"ack:1", "sos:SG-001", "ack:2", "catch:Cod"}
	if diff := cmp.Diff(want, svc.calls); diff != "" {
		t.Errorf("flush order mismatch (-want +got):\n%s", diff)
	}
	if got := p.Status().Pending; got != 0 {
		t.Errorf("Pending = %d after flush, want 0", got)
	}
	for _, a := range snap.Alerts {
		if !a.Acknowledged {
			t.Errorf("alert %d not acknowledged on the service", a.ID)
		}
	}
}

func TestOfflineActions_Validation(t *testing.T) {
	svc := newFakeService()
	p := newTestProvider(t, svc, 0)
	ctx := context.Background()

	if _, err := p.Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	svc.setDown(true)

	if _, err := p.TriggerSOS(ctx, "ghost"); !errors.Is(err, model.ErrVesselNotFound) {
		t.Errorf("TriggerSOS err = %v, want ErrVesselNotFound", err)
	}
	if err := p.AcknowledgeAlert(ctx, 99); !errors.Is(err, model.ErrAlertNotFound) {
		t.Errorf("AcknowledgeAlert err = %v, want ErrAlertNotFound", err)
	}
	if _, err := p.AddCatch(ctx, model.CatchRecord{Species: "Cod"}); !errors.Is(err, model.ErrInvalidCatch) {
		t.Errorf("AddCatch err = %v, want ErrInvalidCatch", err)
	}
	if got := p.Status().Pending; got != 0 {
		t.Errorf("Pending = %d, want 0", got)
	}
}

func TestOutboxFull(t *testing.T) {
	svc := newFakeService()
	svc.setDown(true)
	p := newTestProvider(t, svc, 2)
	ctx := context.Background()

	rec := model.CatchRecord{Species: "Cod", WeightKg: 1, Quantity: 1}
	for i := 0; i < 2; i++ {
		if _, err := p.AddCatch(ctx, rec); err != nil {
			t.Fatalf("AddCatch #%d: %v", i+1, err)
		}
	}
	if _, err := p.AddCatch(ctx, rec); !errors.Is(err, ErrOutboxFull) {
		t.Fatalf("err = %v, want ErrOutboxFull", err)
	}
}

func TestOnlineActions_PassThroughErrors(t *testing.T) {
	svc := newFakeService()
	p := newTestProvider(t, svc, 0)
	ctx := context.Background()

	if err := p.AcknowledgeAlert(ctx, 42); !errors.Is(err, model.ErrAlertNotFound) {
		t.Errorf("err = %v, want ErrAlertNotFound", err)
	}
	if got := p.Status().Pending; got != 0 {
		t.Errorf("application errors must not queue; Pending = %d", got)
	}

	rec, err := p.AddCatch(ctx, model.CatchRecord{Species: "Tuna", WeightKg: 12, Quantity: 1})
	if err != nil {
		t.Fatalf("AddCatch: %v", err)
	}
	if rec.ID == "" {
		t.Error("catch ID not assigned")
	}
}

func TestReconnectAfterDrop(t *testing.T) {
	svc := newFakeService()
	p := newTestProvider(t, svc, 0)
	ctx := context.Background()

	if _, err := p.Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	svc.setDown(true)
	p.Snapshot(ctx)
	if p.Status().Online {
		t.Error("Online = true after drop")
	}
	svc.setDown(false)
	if snap, _ := p.Snapshot(ctx); !snap.IsOnline {
		t.Error("IsOnline = false after service came back")
	}
	if svc.dials != 2 {
		t.Errorf("dials = %d, want 2", svc.dials)
	}
}

func TestOutboxJournal_SurvivesRestart(t *testing.T) {
	svc := newFakeService()
	svc.setDown(true)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "outbox.journal")

	j1, err := journal.Open(path)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	p1 := New(svc.dial, Options{Journal: j1})
	alert, err := p1.TriggerSOS(ctx, "SG-001")
	if err != nil {
		t.Fatalf("TriggerSOS: %v", err)
	}
	if err := p1.AcknowledgeAlert(ctx, alert.ID); err != nil {
		t.Fatalf("AcknowledgeAlert: %v", err)
	}
	if _, err := p1.AddCatch(ctx, model.CatchRecord{Species: "Cod", WeightKg: 2, Quantity: 1}); err != nil {
		t.Fatalf("AddCatch: %v", err)
	}
	p1.Close()
	if err := j1.Close(); err != nil {
		t.Fatalf("journal Close: %v", err)
	}

	j2, err := journal.Open(path)
	if err != nil {
		t.Fatalf("journal reopen: %v", err)
	}
	t.Cleanup(func() { _ = j2.Close() })
	p2 := New(svc.dial, Options{Journal: j2})
	t.Cleanup(func() { p2.Close() })
	if got := p2.Status().Pending; got != 3 {
		t.Fatalf("restored Pending = %d, want 3", got)
	}

	svc.setDown(false)
	if _, err := p2.Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	svc.mu.Lock()
	calls := append([]string(nil), svc.calls...)
	svc.mu.Unlock()
	if diff := cmp.Diff([]string{"sos:SG-001", "ack:2", "catch:Cod"}, calls); diff != "" {
		t.Fatalf("replayed calls (-want +got):\n%s", diff)
	}

	var left int
	if err := j2.Replay(func(uint64, journal.Action) error { left++; return nil }); err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if left != 0 {
		t.Fatalf("%d journal entries left uncommitted after flush", left)
	}
}

// stallingRemote blocks Snapshot until the caller's context ends.
type stallingRemote struct {
	*fakeRemote
	entered chan struct{}
}

func (r *stallingRemote) Snapshot(ctx context.Context) (model.Snapshot, error) {
	close(r.entered)
	<-ctx.Done()
	return model.Snapshot{}, ctx.Err()
}

func TestStatus_DoesNotWaitForInFlightFetch(t *testing.T) {
	svc := newFakeService()
	remote := &stallingRemote{fakeRemote: &fakeRemote{svc: svc}, entered: make(chan struct{})}
	p := New(func(context.Context) (Remote, error) { return remote, nil }, Options{})
	t.Cleanup(func() { p.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Snapshot(ctx)
	}()
	<-remote.entered

	got := make(chan Status, 1)
	go func() { got <- p.Status() }()
	select {
	case st := <-got:
		if !st.Online {
			t.Errorf("status = %+v, want online while connected", st)
		}
	case <-time.After(time.Second):
		t.Error("Status blocked while a snapshot fetch was in flight")
		cancel()
		<-got
	}

	cancel()
	<-done
}
