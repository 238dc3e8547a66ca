package tui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/seaguardian/seaguardian/internal/model"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// AlertsPanel lists alerts newest first and acknowledges the selected one.
type AlertsPanel struct {
	keys          KeyMap
	onAcknowledge func(alertID int64) tea.Cmd

	alerts []model.Alert
	cursor int
}

// NewAlertsPanel returns the alerts pane.
func NewAlertsPanel(keys KeyMap, onAcknowledge func(alertID int64) tea.Cmd) *AlertsPanel {
	return &AlertsPanel{keys: keys, onAcknowledge: onAcknowledge}
}

func (p *AlertsPanel) Title() string { return "Alerts" }

// SetAlerts replaces the alerts shown. The cursor follows the selected alert ID.
func (p *AlertsPanel) SetAlerts(alerts []model.Alert) {
	var selectedID int64
	if a, ok := p.selected(); ok {
		selectedID = a.ID
	}

	p.alerts = sortAlertsNewestFirst(alerts)

	p.cursor = min(p.cursor, max(len(p.alerts)-1, 0))
	for i, a := range p.alerts {
		if a.ID == selectedID {
			p.cursor = i
			break
		}
	}
}

// sortAlertsNewestFirst returns a sorted copy; the input is never reordered.
func sortAlertsNewestFirst(alerts []model.Alert) []model.Alert {
	sorted := slices.Clone(alerts)
	slices.SortStableFunc(sorted, func(a, b model.Alert) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return sorted
}

func (p *AlertsPanel) selected() (model.Alert, bool) {
	if p.cursor < 0 || p.cursor >= len(p.alerts) {
		return model.Alert{}, false
	}
	return p.alerts[p.cursor], true
}

func (p *AlertsPanel) Update(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, p.keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, p.keys.Down):
		if p.cursor < len(p.alerts)-1 {
			p.cursor++
		}
	case key.Matches(msg, p.keys.Acknowledge):
		a, ok := p.selected()
		if !ok || a.Acknowledged {
			return nil
		}
		return p.onAcknowledge(a.ID)
	}
	return nil
}

func (p *AlertsPanel) View(width, height int) string {
	active := ActiveAlertCount(p.alerts)
	title := renderPaneTitle(fmt.Sprintf("%s (%d active)", p.Title(), active))

	if len(p.alerts) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, helpStyle.Render("No alerts. All clear."))
	}

	listHeight := max(height-lipgloss.Height(title)-1, 1)
	start := 0
	if p.cursor >= listHeight {
		start = p.cursor - listHeight + 1
	}
	end := min(start+listHeight, len(p.alerts))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, p.renderRow(p.alerts[i], i == p.cursor, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n"))
}

func (p *AlertsPanel) renderRow(a model.Alert, selected bool, width int) string {
	sevColor, ok := severityColors[string(a.Severity)]
	if !ok {
		sevColor = ColorGray
	}
	badge := lipgloss.NewStyle().Foreground(sevColor).Bold(true).
		Render(fmt.Sprintf("%-8s", strings.ToUpper(string(a.Severity))))

	state := lipgloss.NewStyle().Foreground(ColorYellow).Render("● open ")
	if a.Acknowledged {
		state = lipgloss.NewStyle().Foreground(ColorGray).Render("✓ acked")
	}

	when := a.CreatedAt.Local().Format("Jan 02 15:04")
	vessel := a.VesselID
	if vessel == "" {
		vessel = "fleet"
	}
	prefix := "  "
	if selected {
		prefix = "> "
	}
	used := 2 + 8 + 1 + 7 + 1 + len(when) + 1 + 10 + 1 + 8
	msg := truncate(a.Message, max(width-used, 10))
	text := fmt.Sprintf("%s %s %s %-10s %-8s %s", badge, state, when, truncate(vessel, 10), a.Kind, msg)

	row := prefix + text
	if selected {
		return lipgloss.NewStyle().Bold(true).Render(row)
	}
	if a.Acknowledged {
		return lipgloss.NewStyle().Faint(true).Render(row)
	}
	return row
}
