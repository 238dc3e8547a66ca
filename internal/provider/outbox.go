package provider

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/seaguardian/seaguardian/internal/journal"
	"github.com/seaguardian/seaguardian/internal/model"

	"go.uber.org/zap"
)

type actionKind int

const (
	actionSOS actionKind = iota
	actionAck
	actionCatch
)

func (k actionKind) String() string {
	switch k {
	case actionSOS:
		return "sos"
	case actionAck:
		return "ack"
	case actionCatch:
		return "catch"
	}
	return "unknown"
}

// action is one queued mutation.
type action struct {
	kind          actionKind
	vesselID      string
	alertID       int64
	record        model.CatchRecord
	provisionalID int64
	at            time.Time
	seq           uint64 // journal sequence, 0 when not journaled
}

var journalKinds = map[actionKind]string{
	actionSOS:   journal.KindSOS,
	actionAck:   journal.KindAck,
	actionCatch: journal.KindCatch,
}

func (a action) toJournal() journal.Action {
	ja := journal.Action{
		Kind:          journalKinds[a.kind],
		VesselID:      a.vesselID,
		AlertID:       a.alertID,
		ProvisionalID: a.provisionalID,
		At:            a.at,
	}
	if a.kind == actionCatch {
		rec := a.record
		ja.Record = &rec
	}
	return ja
}

func actionFromJournal(seq uint64, ja journal.Action) (action, bool) {
	a := action{
		vesselID:      ja.VesselID,
		alertID:       ja.AlertID,
		provisionalID: ja.ProvisionalID,
		at:            ja.At,
		seq:           seq,
	}
	switch ja.Kind {
	case journal.KindSOS:
		a.kind = actionSOS
	case journal.KindAck:
		a.kind = actionAck
	case journal.KindCatch:
		if ja.Record == nil {
			return action{}, false
		}
		a.kind = actionCatch
		a.record = *ja.Record
	default:
		return action{}, false
	}
	return a, true
}

func (a action) optimisticAlert(snap model.Snapshot) model.Alert {
	label := a.vesselID
	if v, ok := snap.VesselByID(a.vesselID); ok {
		label = v.Name
		if v.Callsign != "" {
			label = fmt.Sprintf("%s (%s)", v.Name, v.Callsign)
		}
	}
	return model.Alert{
		ID:        a.provisionalID,
		VesselID:  a.vesselID,
		Kind:      model.AlertSOS,
		Severity:  model.SeverityCritical,
		Message:   fmt.Sprintf("SOS from %s (queued, awaiting connection)", label),
		CreatedAt: a.at,
	}
}

func (p *Provider) enqueue(a action) error {
	if len(p.outbox) >= p.outboxSize {
		p.log.Warn("provider: outbox full, action rejected",
			zap.Stringer("kind", a.kind), zap.Int("size", p.outboxSize))
		return ErrOutboxFull
	}
	if p.journal != nil {
		seq, err := p.journal.Append(a.toJournal())
		if err != nil {
			return fmt.Errorf("provider: journal %s: %w", a.kind, err)
		}
		a.seq = seq
	}
	p.outbox = append(p.outbox, a)
	p.publishStatus()
	p.log.Info("provider: action queued",
		zap.Stringer("kind", a.kind), zap.Int("pending", len(p.outbox)))
	return nil
}

// flush replays queued actions in order. It reports false when the
// connection dropped; the remaining actions stay queued.
func (p *Provider) flush(ctx context.Context, remote Remote) bool {
	for len(p.outbox) > 0 {
		a := p.outbox[0]
		var err error
		switch a.kind {
		case actionSOS:
			var alert model.Alert
			alert, err = remote.TriggerSOS(ctx, a.vesselID)
			if err == nil {
				p.synced[a.provisionalID] = alert.ID
			}
		case actionAck:
			id := a.alertID
			if id < 0 {
				synced, ok := p.synced[id]
				if !ok {
					p.log.Warn("provider: dropping ack for unsynced alert", zap.Int64("alert_id", id))
					p.dequeue()
					continue
				}
				id = synced
			}
			err = remote.AcknowledgeAlert(ctx, id)
		case actionCatch:
			_, err = remote.AddCatch(ctx, a.record)
		}

		if p.handleErr(err) {
			return false
		}
		if err != nil {
			p.log.Warn("provider: dropping queued action",
				zap.Stringer("kind", a.kind), zap.Error(err))
		}
		p.dequeue()
	}
	p.outbox = nil
	return true
}

// dequeue drops the head of the outbox and commits it to the journal.
func (p *Provider) dequeue() {
	a := p.outbox[0]
	p.outbox = p.outbox[1:]
	p.publishStatus()
	if p.journal == nil || a.seq == 0 {
		return
	}
	if err := p.journal.Commit(a.seq); err != nil {
		p.log.Warn("provider: journal commit failed", zap.Uint64("seq", a.seq), zap.Error(err))
	}
}

// restoreOutbox loads actions left in the journal by a previous run.
func (p *Provider) restoreOutbox() {
	err := p.journal.Replay(func(seq uint64, ja journal.Action) error {
		a, ok := actionFromJournal(seq, ja)
		if !ok {
			p.log.Warn("provider: skipping unreadable journal entry", zap.Uint64("seq", seq), zap.String("kind", ja.Kind))
			return nil
		}
		p.outbox = append(p.outbox, a)
		p.provisionalID = min(p.provisionalID, a.provisionalID)
		return nil
	})
	if err != nil {
		p.log.Warn("provider: journal replay failed", zap.Error(err))
	}
	if n := len(p.outbox); n > 0 {
		p.log.Info("provider: restored queued actions", zap.Int("pending", n))
	}
}

// reapplyOutbox returns a copy of the cache with queued actions applied.
func (p *Provider) reapplyOutbox() model.Snapshot {
	snap := p.cache
	snap.Vessels = slices.Clone(p.cache.Vessels)
	snap.Alerts = slices.Clone(p.cache.Alerts)
	snap.Catches = slices.Clone(p.cache.Catches)

	for _, a := range p.outbox {
		switch a.kind {
		case actionSOS:
			for i := range snap.Vessels {
				if snap.Vessels[i].ID == a.vesselID {
					snap.Vessels[i].Status = model.VesselSOS
				}
			}
			// Newest first, matching the service ordering.
			snap.Alerts = append([]model.Alert{a.optimisticAlert(snap)}, snap.Alerts...)
		case actionAck:
			for i := range snap.Alerts {
				if snap.Alerts[i].ID == a.alertID && !snap.Alerts[i].Acknowledged {
					snap.Alerts[i].Acknowledged = true
					snap.Alerts[i].AcknowledgedAt = a.at
				}
			}
		case actionCatch:
			snap.Catches = append([]model.CatchRecord{a.record}, snap.Catches...)
		}
	}
	return snap
}
