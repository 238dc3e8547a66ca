package model

import "time"

// VesselStatus is the operating state reported for a vessel.
type VesselStatus string

const (
	VesselActive VesselStatus = "active"
	VesselDocked VesselStatus = "docked"
	VesselSOS    VesselStatus = "sos"
)

// Vessel is one tracked boat in the fleet.
// It is the canonical type for storage, transport (socket RPC), and display.
type Vessel struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Callsign   string       `json:"callsign"`
	Lat        float64      `json:"lat"`
	Lon        float64      `json:"lon"`
	SpeedKnots float64      `json:"speed_knots"`
	Heading    float64      `json:"heading"` // degrees clockwise from true north
	Status     VesselStatus `json:"status"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// AlertKind classifies where an alert came from.
type AlertKind string

const (
	AlertSOS      AlertKind = "sos"
	AlertWeather  AlertKind = "weather"
	AlertGeofence AlertKind = "geofence"
	AlertSystem   AlertKind = "system"
)

// Severity orders alerts for display.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Alert is a notification raised for a vessel or the whole fleet.
type Alert struct {
	ID             int64     `json:"id"`
	VesselID       string    `json:"vessel_id"` // empty = fleet-wide
	Kind           AlertKind `json:"kind"`
	Severity       Severity  `json:"severity"`
	Message        string    `json:"message"`
	Acknowledged   bool      `json:"acknowledged"`
	CreatedAt      time.Time `json:"created_at"`
	AcknowledgedAt time.Time `json:"acknowledged_at,omitzero"` // zero value = not acknowledged yet
}

// CatchRecord is one entry in the catch log.
type CatchRecord struct {
	ID       string    `json:"id"`
	VesselID string    `json:"vessel_id"`
	Species  string    `json:"species"`
	WeightKg float64   `json:"weight_kg"`
	Quantity int       `json:"quantity"`
	Lat      float64   `json:"lat"`
	Lon      float64   `json:"lon"`
	CaughtAt time.Time `json:"caught_at"`
	Notes    string    `json:"notes"`
}

// Snapshot is a read-only copy of everything the dashboard renders.
type Snapshot struct {
	Vessels   []Vessel      `json:"vessels"`
	Alerts    []Alert       `json:"alerts"`
	Catches   []CatchRecord `json:"catches"`
	IsOnline  bool          `json:"is_online"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// VesselByID returns the vessel with the given id, if present.
func (s Snapshot) VesselByID(id string) (Vessel, bool) {
	for _, v := range s.Vessels {
		if v.ID == id {
			return v, true
		}
	}
	return Vessel{}, false
}
