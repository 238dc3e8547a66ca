package fleet

import (
	"strings"
	"testing"

	"github.com/seaguardian/seaguardian/internal/model"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	t.Parallel()

	data := []byte(`
vessels:
  - id: SG-001
    name: Sea Breeze
    callsign: WDC1234
    lat: 37.7749
    lon: -122.4194
  - id: SG-002
    name: Ocean Star
    status: Docked
  - id: SG-003
`)
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []model.Vessel{
		{ID: "SG-001", Name: "Sea Breeze", Callsign: "WDC1234", Lat: 37.7749, Lon: -122.4194, Status: model.VesselActive},
		{ID: "SG-002", Name: "Ocean Star", Status: model.VesselDocked},
		{ID: "SG-003", Name: "SG-003", Status: model.VesselActive},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"malformed", "vessels: [", "unmarshal"},
		{"missing id", "vessels:\n  - name: Nameless\n", "missing id"},
		{"duplicate id", "vessels:\n  - id: A\n  - id: A\n", "duplicate vessel id"},
		{"bad status", "vessels:\n  - id: A\n    status: sos\n", "invalid status"},
		{"bad position", "vessels:\n  - id: A\n    lat: 120\n", "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	got, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil): %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d vessels, want 0", len(got))
	}
}
