package model

import "context"

// StateReader provides the read side of the fleet state.
type StateReader interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// StateActions are the three mutations the dashboard may request.
// Implementations own the data; callers never edit a Snapshot in place.
type StateActions interface {
	// TriggerSOS raises a critical SOS alert for the vessel and flags it.
	TriggerSOS(ctx context.Context, vesselID string) (Alert, error)
	// AcknowledgeAlert marks the alert acknowledged in subsequent snapshots.
	AcknowledgeAlert(ctx context.Context, alertID int64) error
	// AddCatch stores the record; subsequent snapshots include it.
	AddCatch(ctx context.Context, rec CatchRecord) (CatchRecord, error)
}

// StateProvider is the full contract the dashboard consumes.
type StateProvider interface {
	StateReader
	StateActions
}

// FleetWriter is used by the fleet registry and the HTTP API to keep vessel rows current.
type FleetWriter interface {
	UpsertVessels(ctx context.Context, vessels []Vessel) error
	UpdateVesselPosition(ctx context.Context, id string, lat, lon, speedKnots, heading float64) error
}
