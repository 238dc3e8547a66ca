package duckdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/seaguardian/seaguardian/internal/model"

	"go.uber.org/zap"
)

// Snapshot reads vessels, alerts and catches under one read lock.
// IsOnline is always true: the store is the source of truth.
func (s *Store) Snapshot(ctx context.Context) (model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	vessels, err := s.listVessels(ctx)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("list vessels: %w", err)
	}
	alerts, err := s.listAlerts(ctx, 0)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("list alerts: %w", err)
	}
	catches, err := s.listCatches(ctx, 0)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("list catches: %w", err)
	}

	return model.Snapshot{
		Vessels:   vessels,
		Alerts:    alerts,
		Catches:   catches,
		IsOnline:  true,
		FetchedAt: s.now().UTC(),
	}, nil
}

// ListVessels returns every vessel ordered by name.
func (s *Store) ListVessels(ctx context.Context) ([]model.Vessel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()
	return s.listVessels(ctx)
}

// ListAlerts returns alerts newest first. limit <= 0 means no limit.
func (s *Store) ListAlerts(ctx context.Context, limit int) ([]model.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()
	return s.listAlerts(ctx, limit)
}

// ListCatches returns catches newest first. limit <= 0 means no limit.
func (s *Store) ListCatches(ctx context.Context, limit int) ([]model.CatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()
	return s.listCatches(ctx, limit)
}

// UnacknowledgedAlertCount is used by the health endpoint.
func (s *Store) UnacknowledgedAlertCount(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM alerts WHERE NOT acknowledged`).Scan(&n)
	return n, err
}

func limitClause(limit int) string {
	if limit > 0 {
		return fmt.Sprintf(" LIMIT %d", limit)
	}
	return ""
}

func (s *Store) listVessels(ctx context.Context) ([]model.Vessel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, callsign, lat, lon, speed_knots, heading, status, updated_at
		FROM vessels
		ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Vessel
	for rows.Next() {
		var v model.Vessel
		var status string
		if err := rows.Scan(&v.ID, &v.Name, &v.Callsign, &v.Lat, &v.Lon, &v.SpeedKnots, &v.Heading, &status, &v.UpdatedAt); err != nil {
			s.log.Warn("duckdb scan error", zap.String("query", "vessels"), zap.Error(err))
			continue
		}
		v.Status = model.VesselStatus(status)
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) listAlerts(ctx context.Context, limit int) ([]model.Alert, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, vessel_id, kind, severity, message, acknowledged, created_at, acknowledged_at
		FROM alerts
		ORDER BY created_at DESC, id DESC`+limitClause(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Alert
	for rows.Next() {
		var a model.Alert
		var kind, severity string
		var ackAt sql.NullTime
		if err := rows.Scan(&a.ID, &a.VesselID, &kind, &severity, &a.Message, &a.Acknowledged, &a.CreatedAt, &ackAt); err != nil {
			s.log.Warn("duckdb scan error", zap.String("query", "alerts"), zap.Error(err))
			continue
		}
		a.Kind = model.AlertKind(kind)
		a.Severity = model.Severity(severity)
		if ackAt.Valid {
			a.AcknowledgedAt = ackAt.Time
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) listCatches(ctx context.Context, limit int) ([]model.CatchRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, vessel_id, species, weight_kg, quantity, lat, lon, caught_at, notes
		FROM catches
		ORDER BY caught_at DESC, id`+limitClause(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CatchRecord
	for rows.Next() {
		var c model.CatchRecord
		if err := rows.Scan(&c.ID, &c.VesselID, &c.Species, &c.WeightKg, &c.Quantity, &c.Lat, &c.Lon, &c.CaughtAt, &c.Notes); err != nil {
			s.log.Warn("duckdb scan error", zap.String("query", "catches"), zap.Error(err))
			continue
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
