package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/seaguardian/seaguardian/internal/model"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LiveMap plots vessel positions on a character grid and raises SOS.
type LiveMap struct {
	keys        KeyMap
	onSOS       func(vesselID string) tea.Cmd
	ownVessel   string
	sosTestMode bool

	vessels    []model.Vessel
	alerts     []model.Alert
	cursor     int
	cursorSet  bool
	confirming bool
}

// NewLiveMap returns the map pane. The cursor starts on ownVessel once it reports.
func NewLiveMap(keys KeyMap, ownVessel string, sosTestMode bool, onSOS func(vesselID string) tea.Cmd) *LiveMap {
	return &LiveMap{
		keys:        keys,
		onSOS:       onSOS,
		ownVessel:   ownVessel,
		sosTestMode: sosTestMode,
	}
}

func (p *LiveMap) Title() string { return "Live Map" }

// SetData replaces the vessels and alerts shown.
func (p *LiveMap) SetData(vessels []model.Vessel, alerts []model.Alert) {
	p.vessels = vessels
	p.alerts = alerts
	if !p.cursorSet && len(vessels) > 0 {
		for i, v := range vessels {
			if v.ID == p.ownVessel {
				p.cursor = i
			}
		}
		p.cursorSet = true
	}
	if p.cursor >= len(vessels) {
		p.cursor = max(len(vessels)-1, 0)
	}
}

// Capturing reports whether an SOS confirmation is pending.
func (p *LiveMap) Capturing() bool { return p.confirming }

func (p *LiveMap) selected() (model.Vessel, bool) {
	if p.cursor < 0 || p.cursor >= len(p.vessels) {
		return model.Vessel{}, false
	}
	return p.vessels[p.cursor], true
}

func (p *LiveMap) Update(msg tea.KeyMsg) tea.Cmd {
	if p.confirming {
		switch {
		case key.Matches(msg, p.keys.Confirm):
			p.confirming = false
			v, ok := p.selected()
			if !ok {
				return nil
			}
			if p.sosTestMode {
				return noticeCmd(fmt.Sprintf("SOS test mode: no alert raised for %s", v.Name))
			}
			return p.onSOS(v.ID)
		case key.Matches(msg, p.keys.Cancel):
			p.confirming = false
		}
		return nil
	}

	switch {
	case key.Matches(msg, p.keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, p.keys.Down):
		if p.cursor < len(p.vessels)-1 {
			p.cursor++
		}
	case key.Matches(msg, p.keys.SOS):
		if _, ok := p.selected(); ok {
			p.confirming = true
		}
	}
	return nil
}

func (p *LiveMap) View(width, height int) string {
	title := renderPaneTitle(p.Title())
	if len(p.vessels) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title,
			renderLoadingPlaceholder(width, max(height-2, 1)))
	}

	tableHeight := len(p.vessels) + 1
	footer := p.renderFooter()
	gridHeight := height - lipgloss.Height(title) - tableHeight - lipgloss.Height(footer) - 2
	if gridHeight < 3 {
		gridHeight = 3
	}
	gridWidth := max(width-2, 10)

	grid := sectionStyle.Render(p.renderGrid(gridWidth-2, gridHeight))
	return lipgloss.JoinVertical(lipgloss.Left, title, grid, p.renderTable(width), footer)
}

func (p *LiveMap) renderFooter() string {
	if !p.confirming {
		return helpStyle.Render("S: send SOS for the selected vessel")
	}
	v, _ := p.selected()
	prompt := fmt.Sprintf("Send SOS for %s? Press S or y to confirm, n/esc to cancel", v.Name)
	if p.sosTestMode {
		prompt = "[TEST] " + prompt
	}
	return lipgloss.NewStyle().Foreground(ColorWhite).Background(ColorRed).Bold(true).Render(" " + prompt + " ")
}

// bounds is the lat/lon extent of the plotted vessels.
type bounds struct {
	minLat, maxLat, minLon, maxLon float64
}

func fleetBounds(vessels []model.Vessel) bounds {
	b := bounds{minLat: math.Inf(1), maxLat: math.Inf(-1), minLon: math.Inf(1), maxLon: math.Inf(-1)}
	for _, v := range vessels {
		b.minLat = math.Min(b.minLat, v.Lat)
		b.maxLat = math.Max(b.maxLat, v.Lat)
		b.minLon = math.Min(b.minLon, v.Lon)
		b.maxLon = math.Max(b.maxLon, v.Lon)
	}
	return b
}

// project maps a position onto a width x height grid. North is row 0.
// A zero span places every vessel in the middle of that axis.
func project(lat, lon float64, b bounds, width, height int) (col, row int) {
	col, row = width/2, height/2
	if span := b.maxLon - b.minLon; span > 0 {
		col = int(math.Round((lon - b.minLon) / span * float64(width-1)))
	}
	if span := b.maxLat - b.minLat; span > 0 {
		row = int(math.Round((b.maxLat - lat) / span * float64(height-1)))
	}
	return min(max(col, 0), width-1), min(max(row, 0), height-1)
}

func (p *LiveMap) renderGrid(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	cells := make([][]string, height)
	for r := range cells {
		cells[r] = make([]string, width)
		for c := range cells[r] {
			cells[r][c] = lipgloss.NewStyle().Foreground(ColorNavy).Render("·")
		}
	}

	b := fleetBounds(p.vessels)
	for i, v := range p.vessels {
		col, row := project(v.Lat, v.Lon, b, width, height)
		marker := "*"
		if i < 9 {
			marker = fmt.Sprintf("%d", i+1)
		}
		style := lipgloss.NewStyle().Bold(true).Foreground(vesselColor(v, p.alerts))
		if i == p.cursor {
			style = style.Reverse(true)
		}
		cells[row][col] = style.Render(marker)
	}

	rows := make([]string, height)
	for r := range cells {
		rows[r] = strings.Join(cells[r], "")
	}
	return strings.Join(rows, "\n")
}

func (p *LiveMap) renderTable(width int) string {
	header := fmt.Sprintf("  %-3s %-18s %-9s %-7s %6s %5s  %s", "#", "Vessel", "Callsign", "Status", "Knots", "Hdg", "Position")
	lines := []string{helpStyle.Render(truncate(header, width))}
	for i, v := range p.vessels {
		status := string(v.Status)
		if hasOpenSOS(v.ID, p.alerts) {
			status = "SOS!"
		}
		line := fmt.Sprintf("%-3d %-18s %-9s %-7s %6.1f %5.0f  %.4f, %.4f",
			i+1, truncate(v.Name, 18), truncate(v.Callsign, 9), status, v.SpeedKnots, v.Heading, v.Lat, v.Lon)
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(vesselColor(v, p.alerts))
		if i == p.cursor {
			prefix = "> "
			style = style.Bold(true)
		}
		lines = append(lines, style.Render(truncate(prefix+line, width)))
	}
	return strings.Join(lines, "\n")
}

// hasOpenSOS reports whether the vessel has an unacknowledged SOS alert.
func hasOpenSOS(vesselID string, alerts []model.Alert) bool {
	for _, a := range alerts {
		if a.Kind == model.AlertSOS && a.VesselID == vesselID && !a.Acknowledged {
			return true
		}
	}
	return false
}

func vesselColor(v model.Vessel, alerts []model.Alert) lipgloss.Color {
	if hasOpenSOS(v.ID, alerts) {
		return ColorRed
	}
	if c, ok := vesselStatusColors[string(v.Status)]; ok {
		return c
	}
	return ColorWhite
}
