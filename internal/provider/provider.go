// Package provider wraps a remote state provider with a snapshot cache and an
// outbox so the dashboard keeps working while the service is unreachable.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/seaguardian/seaguardian/internal/journal"
	"github.com/seaguardian/seaguardian/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrOutboxFull is returned when an offline action cannot be queued.
var ErrOutboxFull = errors.New("provider: outbox full")

// Remote is a connected state provider that can be closed.
type Remote interface {
	model.StateProvider
	io.Closer
}

// Dialer opens a new connection to the state service.
type Dialer func(ctx context.Context) (Remote, error)

// Options configures a Provider.
type Options struct {
	OutboxSize int
	Logger     *zap.Logger
	Now        func() time.Time
	// Journal persists the outbox across restarts. Optional; the caller closes it.
	Journal *journal.Journal
}

// Status summarizes connectivity for the status bar.
type Status struct {
	Online              bool
	ConsecutiveFailures int
	LastOnline          time.Time
	Pending             int
}

// Provider implements model.StateProvider on top of a Dialer.
// Reads fall back to the last snapshot; writes are queued while offline.
type Provider struct {
	dial    Dialer
	log     *zap.Logger
	now     func() time.Time
	journal *journal.Journal

	mu            sync.Mutex
	remote        Remote
	cache         model.Snapshot
	hasCache      bool
	outbox        []action
	outboxSize    int
	provisionalID int64
	synced        map[int64]int64 // provisional alert ID -> service ID
	failures      int
	lastOnline    time.Time

	// statusMu is never held across I/O, so Status stays cheap for the UI.
	statusMu sync.Mutex
	status   Status
}

// New returns a provider that connects lazily on first use.
func New(dial Dialer, opts Options) *Provider {
	if opts.OutboxSize <= 0 {
		opts.OutboxSize = model.DefaultOutboxSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	p := &Provider{
		dial:       dial,
		log:        opts.Logger,
		now:        opts.Now,
		journal:    opts.Journal,
		outboxSize: opts.OutboxSize,
		synced:     make(map[int64]int64),
	}
	if p.journal != nil {
		p.restoreOutbox()
	}
	p.publishStatus()
	return p
}

// Snapshot flushes queued actions and reads fresh state. When the service is
// unreachable it returns the cached snapshot marked offline instead of an error.
func (p *Provider) Snapshot(ctx context.Context) (model.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	remote, ok := p.connect(ctx)
	if ok && p.flush(ctx, remote) {
		snap, err := remote.Snapshot(ctx)
		if err == nil {
			p.markOnline()
			snap.IsOnline = true
			if snap.FetchedAt.IsZero() {
				snap.FetchedAt = p.now()
			}
			p.cache = snap
			p.hasCache = true
			return p.reapplyOutbox(), nil
		}
		if !p.handleErr(err) {
			p.log.Warn("provider: snapshot failed", zap.Error(err))
		}
	}
	return p.offlineSnapshot(), nil
}

// TriggerSOS raises an SOS, or queues it with a provisional negative alert ID.
func (p *Provider) TriggerSOS(ctx context.Context, vesselID string) (model.Alert, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if remote, ok := p.ready(ctx); ok {
		alert, err := remote.TriggerSOS(ctx, vesselID)
		if !p.handleErr(err) {
			return alert, err
		}
	}

	if p.hasCache {
		if _, found := p.cache.VesselByID(vesselID); !found {
			return model.Alert{}, fmt.Errorf("trigger sos %q: %w", vesselID, model.ErrVesselNotFound)
		}
	}
	p.provisionalID--
	a := action{kind: actionSOS, vesselID: vesselID, provisionalID: p.provisionalID, at: p.now().UTC()}
	if err := p.enqueue(a); err != nil {
		return model.Alert{}, err
	}
	return a.optimisticAlert(p.cache), nil
}

// AcknowledgeAlert acknowledges the alert, or queues the acknowledgement.
func (p *Provider) AcknowledgeAlert(ctx context.Context, alertID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if remote, ok := p.ready(ctx); ok {
		id := alertID
		if id < 0 {
			synced, found := p.synced[id]
			if !found {
				return fmt.Errorf("acknowledge %d: %w", alertID, model.ErrAlertNotFound)
			}
			id = synced
		}
		err := remote.AcknowledgeAlert(ctx, id)
		if !p.handleErr(err) {
			return err
		}
	}

	if p.hasCache && !p.cacheHasAlert(alertID) {
		return fmt.Errorf("acknowledge %d: %w", alertID, model.ErrAlertNotFound)
	}
	return p.enqueue(action{kind: actionAck, alertID: alertID, at: p.now().UTC()})
}

// AddCatch stores the catch, or queues it with a client-assigned ID.
func (p *Provider) AddCatch(ctx context.Context, rec model.CatchRecord) (model.CatchRecord, error) {
	if err := model.ValidateCatch(rec); err != nil {
		return model.CatchRecord{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CaughtAt.IsZero() {
		rec.CaughtAt = p.now().UTC()
	}

	if remote, ok := p.ready(ctx); ok {
		saved, err := remote.AddCatch(ctx, rec)
		if !p.handleErr(err) {
			return saved, err
		}
	}

	if err := p.enqueue(action{kind: actionCatch, record: rec, at: rec.CaughtAt}); err != nil {
		return model.CatchRecord{}, err
	}
	return rec, nil
}

// Status reports connectivity history and the number of queued actions.
// It does not wait for in-flight calls.
func (p *Provider) Status() Status {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	return p.status
}

// publishStatus copies the connectivity fields for Status. Callers hold p.mu.
func (p *Provider) publishStatus() {
	st := Status{
		Online:              p.remote != nil,
		ConsecutiveFailures: p.failures,
		LastOnline:          p.lastOnline,
		Pending:             len(p.outbox),
	}
	p.statusMu.Lock()
	p.status = st
	p.statusMu.Unlock()
}

// Close drops the current connection.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.remote == nil {
		return nil
	}
	err := p.remote.Close()
	p.remote = nil
	p.publishStatus()
	return err
}

// connect returns the live remote, dialing when needed.
func (p *Provider) connect(ctx context.Context) (Remote, bool) {
	if p.remote != nil {
		return p.remote, true
	}
	remote, err := p.dial(ctx)
	if err != nil {
		p.markOffline(err)
		return nil, false
	}
	p.remote = remote
	p.publishStatus()
	p.log.Info("provider: connected")
	return remote, true
}

// ready connects and drains the outbox so a direct call keeps action order.
func (p *Provider) ready(ctx context.Context) (Remote, bool) {
	remote, ok := p.connect(ctx)
	if !ok || !p.flush(ctx, remote) {
		return nil, false
	}
	return remote, true
}

// handleErr reports whether err is a connectivity failure, dropping the
// connection if so. Callers fall back to the offline path on true.
func (p *Provider) handleErr(err error) bool {
	if err == nil || !errors.Is(err, model.ErrUnavailable) {
		if err == nil {
			p.markOnline()
		}
		return false
	}
	p.disconnect(err)
	return true
}

func (p *Provider) disconnect(err error) {
	if p.remote != nil {
		p.remote.Close()
		p.remote = nil
	}
	p.markOffline(err)
}

func (p *Provider) markOnline() {
	if p.failures > 0 {
		p.log.Info("provider: connection restored", zap.Int("failures", p.failures))
	}
	p.failures = 0
	p.lastOnline = p.now()
	p.publishStatus()
}

func (p *Provider) markOffline(err error) {
	p.failures++
	p.publishStatus()
	if p.failures == 1 {
		p.log.Warn("provider: service unreachable", zap.Error(err))
	}
}

func (p *Provider) offlineSnapshot() model.Snapshot {
	snap := p.reapplyOutbox()
	snap.IsOnline = false
	return snap
}

func (p *Provider) cacheHasAlert(id int64) bool {
	if _, ok := p.synced[id]; ok {
		return true
	}
	for _, a := range p.cache.Alerts {
		if a.ID == id {
			return true
		}
	}
	for _, a := range p.outbox {
		if a.kind == actionSOS && a.provisionalID == id {
			return true
		}
	}
	return false
}
