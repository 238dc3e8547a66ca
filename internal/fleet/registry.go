// Package fleet loads the vessel registry file and keeps the store in sync with it.
package fleet

import (
	"fmt"
	"os"
	"strings"

	"github.com/seaguardian/seaguardian/internal/model"

	"gopkg.in/yaml.v3"
)

// File is the on-disk registry layout.
type File struct {
	Vessels []VesselEntry `yaml:"vessels"`
}

// VesselEntry is one vessel as written in the registry file.
type VesselEntry struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Callsign string  `yaml:"callsign"`
	Lat      float64 `yaml:"lat"`
	Lon      float64 `yaml:"lon"`
	Status   string  `yaml:"status"`
}

// Load reads and validates the registry at path.
func Load(path string) ([]model.Vessel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fleet file %s: %w", path, err)
	}
	vessels, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fleet file %s: %w", path, err)
	}
	return vessels, nil
}

// Parse decodes registry YAML. IDs must be unique and non-empty.
func Parse(data []byte) ([]model.Vessel, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fleet YAML: %w", err)
	}

	seen := make(map[string]bool, len(f.Vessels))
	vessels := make([]model.Vessel, 0, len(f.Vessels))
	for i, e := range f.Vessels {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			return nil, fmt.Errorf("vessel at index %d missing id", i)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate vessel id %q", id)
		}
		seen[id] = true

		name := strings.TrimSpace(e.Name)
		if name == "" {
			name = id
		}
		if e.Lat < -90 || e.Lat > 90 || e.Lon < -180 || e.Lon > 180 {
			return nil, fmt.Errorf("vessel %q has position out of range", id)
		}

		status := model.VesselStatus(strings.ToLower(strings.TrimSpace(e.Status)))
		switch status {
		case "":
			status = model.VesselActive
		case model.VesselActive, model.VesselDocked:
		default:
			// SOS is raised through TriggerSOS, never declared in the registry.
			return nil, fmt.Errorf("vessel %q has invalid status %q", id, e.Status)
		}

		vessels = append(vessels, model.Vessel{
			ID:       id,
			Name:     name,
			Callsign: strings.TrimSpace(e.Callsign),
			Lat:      e.Lat,
			Lon:      e.Lon,
			Status:   status,
		})
	}
	return vessels, nil
}
