package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/seaguardian/seaguardian/internal/model"

	"github.com/google/go-cmp/cmp"
)

func TestProject(t *testing.T) {
	t.Parallel()

	b := bounds{minLat: 60, maxLat: 61, minLon: 4, maxLon: 6}
	tests := []struct {
		name     string
		lat, lon float64
		b        bounds
		col, row int
	}{
		{name: "north west corner", lat: 61, lon: 4, b: b, col: 0, row: 0},
		{name: "south east corner", lat: 60, lon: 6, b: b, col: 19, row: 9},
		{name: "center", lat: 60.5, lon: 5, b: b, col: 10, row: 5},
		{name: "outside is clamped", lat: 70, lon: -10, b: b, col: 0, row: 0},
		{name: "zero span", lat: 60, lon: 5, b: bounds{minLat: 60, maxLat: 60, minLon: 5, maxLon: 5}, col: 10, row: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			col, row := project(tt.lat, tt.lon, tt.b, 20, 10)
			if col != tt.col || row != tt.row {
				t.Fatalf("project() = (%d, %d), want (%d, %d)", col, row, tt.col, tt.row)
			}
		})
	}
}

func TestLiveMap_MarksOpenSOS(t *testing.T) {
	t.Parallel()

	p := NewLiveMap(DefaultKeyMap(), "SG-001", false, nil)
	p.SetData(
		[]model.Vessel{{ID: "SG-001", Name: "Northern Star", Status: model.VesselSOS}},
		[]model.Alert{{ID: 1, VesselID: "SG-001", Kind: model.AlertSOS}},
	)
	if !strings.Contains(p.View(100, 30), "SOS!") {
		t.Fatal("vessel with open SOS not marked")
	}

	p.SetData(p.vessels, []model.Alert{{ID: 1, VesselID: "SG-001", Kind: model.AlertSOS, Acknowledged: true}})
	if strings.Contains(p.View(100, 30), "SOS!") {
		t.Fatal("acknowledged SOS still marked")
	}
}

func TestSortAlertsNewestFirst(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	in := []model.Alert{
		{ID: 1, CreatedAt: base},
		{ID: 2, CreatedAt: base.Add(time.Hour)},
		{ID: 3, CreatedAt: base},
	}
	got := sortAlertsNewestFirst(in)

	ids := make([]int64, 0, len(got))
	for _, a := range got {
		ids = append(ids, a.ID)
	}
	if diff := cmp.Diff([]int64{2, 3, 1}, ids); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
	if in[0].ID != 1 || in[1].ID != 2 {
		t.Fatal("input slice was reordered")
	}
}

func TestAlertsPanel_CursorFollowsSelection(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	p := NewAlertsPanel(DefaultKeyMap(), nil)
	p.SetAlerts([]model.Alert{{ID: 1, CreatedAt: base}, {ID: 2, CreatedAt: base.Add(time.Minute)}})
	p.cursor = 1

	p.SetAlerts([]model.Alert{
		{ID: 1, CreatedAt: base},
		{ID: 2, CreatedAt: base.Add(time.Minute)},
		{ID: 3, CreatedAt: base.Add(time.Hour)},
	})
	if a, _ := p.selected(); a.ID != 1 {
		t.Fatalf("selected alert = %d, want 1", a.ID)
	}

	p.SetAlerts(nil)
	if p.cursor != 0 {
		t.Fatalf("cursor = %d after clearing, want 0", p.cursor)
	}
}

func TestCatchAggregates(t *testing.T) {
	t.Parallel()

	catches := []model.CatchRecord{
		{Species: "Cod", WeightKg: 10, Quantity: 2},
		{Species: "Haddock", WeightKg: 4, Quantity: 1},
		{Species: "cod ", WeightKg: 6, Quantity: 3},
	}

	totals := summarizeCatches(catches)
	want := CatchTotals{Count: 3, TotalWeightKg: 20, AvgWeightKg: 20.0 / 3, TotalQuantity: 6}
	if diff := cmp.Diff(want, totals); diff != "" {
		t.Fatalf("totals (-want +got):\n%s", diff)
	}

	species := weightBySpecies(catches)
	wantSpecies := []SpeciesWeight{
		{Species: "Cod", WeightKg: 16, Quantity: 5},
		{Species: "Haddock", WeightKg: 4, Quantity: 1},
	}
	if diff := cmp.Diff(wantSpecies, species); diff != "" {
		t.Fatalf("species (-want +got):\n%s", diff)
	}

	if got := summarizeCatches(nil); got != (CatchTotals{}) {
		t.Fatalf("empty totals = %+v", got)
	}
}

func TestAnalytics_View(t *testing.T) {
	t.Parallel()

	p := NewAnalytics()
	p.SetCatches([]model.CatchRecord{
		{Species: "Cod", WeightKg: 10, Quantity: 2},
		{Species: "Haddock", WeightKg: 5, Quantity: 1},
	})
	view := p.View(110, 30)
	for _, want := range []string{"Weight by species", "15.0 kg", "7.5 kg", "Haddock"} {
		if !strings.Contains(view, want) {
			t.Errorf("analytics view missing %q", want)
		}
	}
}

func TestSettings_HighlightsConfiguredValues(t *testing.T) {
	t.Parallel()

	p := NewSettings(DefaultKeyMap(), SettingsValues{
		UpdateInterval: 30 * time.Second,
		GeofenceKm:     5,
		WeatherAlerts:  true,
		SOSTestMode:    false,
	})
	content := p.content()
	for _, want := range []string{
		"(•) 30 seconds (Normal)",
		"( ) 5 seconds (Real-time)",
		"(•) 5 km (Early Warning)",
		"( ) 1 km (Default)",
		"[x] Weather alerts",
		"[ ] SOS test mode",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("settings missing %q", want)
		}
	}
}

func TestComms_ListsChannels(t *testing.T) {
	t.Parallel()

	view := NewComms().View(100, 20)
	for _, want := range []string{"Multi-Channel Communications", "4G Active", "LoRa Ready", "Sat Standby", "Emergency backup"} {
		if !strings.Contains(view, want) {
			t.Errorf("comms view missing %q", want)
		}
	}
}

func TestNavigation_View(t *testing.T) {
	t.Parallel()

	nav := NewNavigation(DefaultKeyMap(), func(Tab) {})
	view := nav.View(TabAlerts, 3, 12)
	if !strings.Contains(view, "> 2 Alerts") {
		t.Fatalf("active tab not highlighted:\n%s", view)
	}
	if !strings.Contains(view, " 3 ") {
		t.Fatalf("alert badge missing:\n%s", view)
	}
	if strings.Contains(nav.View(TabMap, 0, 12), " 0 ") {
		t.Fatal("badge shown with no open alerts")
	}
}

func TestTabLabel(t *testing.T) {
	t.Parallel()

	if got := TabCatches.Label(); got != "Catch Log" {
		t.Fatalf("Label() = %q", got)
	}
	if got := Tab("radar").Label(); got != "radar" {
		t.Fatalf("unknown Label() = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in    string
		width int
		want  string
	}{
		{in: "Northern Star", width: 20, want: "Northern Star"},
		{in: "Northern Star", width: 5, want: "Nort~"},
		{in: "Northern Star", width: 1, want: "~"},
		{in: "Northern Star", width: 0, want: ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
