package model

import "time"

// Shared defaults used by both the service and dashboard binaries.
const (
	DefaultUpdateInterval = 5 * time.Second
	DefaultOutboxSize     = 256
	DefaultVesselID       = "SG-001"
	DefaultGeofenceKm     = 1
)

// UpdateIntervals are the refresh choices offered on the settings pane.
var UpdateIntervals = []time.Duration{5 * time.Second, 30 * time.Second, 60 * time.Second}

// GeofenceDistancesKm are the geofence alert distances offered on the settings pane.
var GeofenceDistancesKm = []int{1, 2, 5}
