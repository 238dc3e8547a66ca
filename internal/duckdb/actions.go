package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/seaguardian/seaguardian/internal/model"

	"github.com/google/uuid"
)

// TriggerSOS raises a critical SOS alert for the vessel and flags it as in distress.
func (s *Store) TriggerSOS(ctx context.Context, vesselID string) (model.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Alert{}, err
	}
	defer tx.Rollback()

	var name, callsign string
	var lat, lon float64
	err = tx.QueryRowContext(ctx, `SELECT name, callsign, lat, lon FROM vessels WHERE id = ?`, vesselID).
		Scan(&name, &callsign, &lat, &lon)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Alert{}, fmt.Errorf("trigger sos %q: %w", vesselID, model.ErrVesselNotFound)
	}
	if err != nil {
		return model.Alert{}, err
	}

	now := s.now().UTC()
	if _, err := tx.ExecContext(ctx, `UPDATE vessels SET status = ?, updated_at = ? WHERE id = ?`,
		string(model.VesselSOS), now, vesselID); err != nil {
		return model.Alert{}, fmt.Errorf("flag vessel: %w", err)
	}

	label := name
	if callsign != "" {
		label = fmt.Sprintf("%s (%s)", name, callsign)
	}
	alert := model.Alert{
		VesselID:  vesselID,
		Kind:      model.AlertSOS,
		Severity:  model.SeverityCritical,
		Message:   fmt.Sprintf("SOS from %s at %.4f, %.4f", label, lat, lon),
		CreatedAt: now,
	}
	if err := insertAlert(ctx, tx, &alert); err != nil {
		return model.Alert{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Alert{}, err
	}
	return alert, nil
}

// RaiseAlert stores an alert produced outside the dashboard (weather feeds, operators).
func (s *Store) RaiseAlert(ctx context.Context, a model.Alert) (model.Alert, error) {
	if strings.TrimSpace(a.Message) == "" {
		return model.Alert{}, fmt.Errorf("%w: message is required", model.ErrInvalidAlert)
	}
	if a.Kind == "" {
		a.Kind = model.AlertSystem
	}
	if a.Severity == "" {
		a.Severity = model.SeverityInfo
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now().UTC()
	}
	a.Acknowledged = false
	a.AcknowledgedAt = time.Time{}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	if err := insertAlert(ctx, s.db, &a); err != nil {
		return model.Alert{}, err
	}
	return a, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertAlert(ctx context.Context, q queryRower, a *model.Alert) error {
	err := q.QueryRowContext(ctx, `
		INSERT INTO alerts (vessel_id, kind, severity, message, acknowledged, created_at)
		VALUES (?, ?, ?, ?, false, ?)
		RETURNING id`,
		a.VesselID, string(a.Kind), string(a.Severity), a.Message, a.CreatedAt).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// AcknowledgeAlert marks the alert acknowledged. Acknowledging twice is a no-op.
func (s *Store) AcknowledgeAlert(ctx context.Context, alertID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var acknowledged bool
	err := s.db.QueryRowContext(ctx, `SELECT acknowledged FROM alerts WHERE id = ?`, alertID).Scan(&acknowledged)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("acknowledge %d: %w", alertID, model.ErrAlertNotFound)
	}
	if err != nil {
		return err
	}
	if acknowledged {
		return nil
	}

	_, err = s.db.ExecContext(ctx, `UPDATE alerts SET acknowledged = true, acknowledged_at = ? WHERE id = ?`,
		s.now().UTC(), alertID)
	return err
}

// AddCatch validates and stores a catch. Missing ID and CaughtAt are filled in.
func (s *Store) AddCatch(ctx context.Context, rec model.CatchRecord) (model.CatchRecord, error) {
	rec.Species = strings.TrimSpace(rec.Species)
	if err := model.ValidateCatch(rec); err != nil {
		return model.CatchRecord{}, err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CaughtAt.IsZero() {
		rec.CaughtAt = s.now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO catches (id, vessel_id, species, weight_kg, quantity, lat, lon, caught_at, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.VesselID, rec.Species, rec.WeightKg, rec.Quantity, rec.Lat, rec.Lon, rec.CaughtAt, rec.Notes)
	if err != nil {
		return model.CatchRecord{}, fmt.Errorf("insert catch: %w", err)
	}
	return rec, nil
}

// UpsertVessels inserts new vessels and refreshes identity fields of known ones.
// Positions of known vessels are only overwritten when the incoming row has one.
func (s *Store) UpsertVessels(ctx context.Context, vessels []model.Vessel) error {
	if len(vessels) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := s.now().UTC()
	for _, v := range vessels {
		status := v.Status
		if status == "" {
			status = model.VesselActive
		}
		hasPos := v.Lat != 0 || v.Lon != 0
		_, err := tx.ExecContext(ctx, `
			INSERT INTO vessels (id, name, callsign, lat, lon, speed_knots, heading, status, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name,
				callsign = excluded.callsign,
				lat = CASE WHEN ? THEN excluded.lat ELSE lat END,
				lon = CASE WHEN ? THEN excluded.lon ELSE lon END,
				status = CASE WHEN status = 'sos' THEN status ELSE excluded.status END,
				updated_at = excluded.updated_at`,
			v.ID, v.Name, v.Callsign, v.Lat, v.Lon, v.SpeedKnots, v.Heading, string(status), now, hasPos, hasPos)
		if err != nil {
			return fmt.Errorf("upsert vessel %q: %w", v.ID, err)
		}
	}
	return tx.Commit()
}

// UpdateVesselPosition records a position report for a known vessel.
func (s *Store) UpdateVesselPosition(ctx context.Context, id string, lat, lon, speedKnots, heading float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `
		UPDATE vessels SET lat = ?, lon = ?, speed_knots = ?, heading = ?, updated_at = ?
		WHERE id = ?`, lat, lon, speedKnots, heading, s.now().UTC(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update position %q: %w", id, model.ErrVesselNotFound)
	}
	return nil
}

// DeleteAcknowledgedBefore removes acknowledged alerts acknowledged before cutoff.
func (s *Store) DeleteAcknowledgedBefore(cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(context.Background())
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM alerts WHERE acknowledged AND acknowledged_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
