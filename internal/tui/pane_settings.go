package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/seaguardian/seaguardian/internal/model"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SettingsValues are the configured values the settings pane highlights.
type SettingsValues struct {
	UpdateInterval time.Duration
	GeofenceKm     int
	WeatherAlerts  bool
	SOSTestMode    bool
}

type settingsOption struct {
	label    string
	selected bool
}

// Settings shows the client configuration. It is read-only; values come from config.
type Settings struct {
	keys     KeyMap
	values   SettingsValues
	viewport viewport.Model
}

func NewSettings(keys KeyMap, values SettingsValues) *Settings {
	return &Settings{keys: keys, values: values, viewport: viewport.New(0, 0)}
}

func (p *Settings) Title() string { return "Settings" }

func (p *Settings) Update(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, p.keys.Up):
		p.viewport.ScrollUp(1)
	case key.Matches(msg, p.keys.Down):
		p.viewport.ScrollDown(1)
	}
	return nil
}

func updateFrequencyOptions(current time.Duration) []settingsOption {
	labels := map[time.Duration]string{
		5 * time.Second:  "5 seconds (Real-time)",
		30 * time.Second: "30 seconds (Normal)",
		60 * time.Second: "60 seconds (Power Save)",
	}
	opts := make([]settingsOption, 0, len(model.UpdateIntervals))
	for _, d := range model.UpdateIntervals {
		opts = append(opts, settingsOption{label: labels[d], selected: d == current})
	}
	return opts
}

func geofenceOptions(current int) []settingsOption {
	labels := map[int]string{1: "1 km (Default)", 2: "2 km (Extended)", 5: "5 km (Early Warning)"}
	opts := make([]settingsOption, 0, len(model.GeofenceDistancesKm))
	for _, km := range model.GeofenceDistancesKm {
		opts = append(opts, settingsOption{label: labels[km], selected: km == current})
	}
	return opts
}

func renderOptions(heading string, opts []settingsOption) string {
	lines := []string{chartTitleStyle.Render(heading)}
	for _, o := range opts {
		if o.selected {
			lines = append(lines, lipgloss.NewStyle().Foreground(ColorBlue).Bold(true).Render("(•) "+o.label))
		} else {
			lines = append(lines, helpStyle.Render("( ) "+o.label))
		}
	}
	return strings.Join(lines, "\n")
}

func renderCheckbox(label string, checked bool) string {
	if checked {
		return lipgloss.NewStyle().Foreground(ColorGreen).Render("[x] " + label)
	}
	return helpStyle.Render("[ ] " + label)
}

func (p *Settings) content() string {
	v := p.values
	sections := []string{
		helpStyle.Render("System Configuration"),
		"",
		renderOptions("Update Frequency", updateFrequencyOptions(v.UpdateInterval)),
		"",
		renderOptions("Geofence Alert Distance", geofenceOptions(v.GeofenceKm)),
		"",
		chartTitleStyle.Render("Notifications"),
		renderCheckbox("Weather alerts", v.WeatherAlerts),
		renderCheckbox("SOS test mode", v.SOSTestMode),
	}
	if v.UpdateInterval > 0 && !isListedInterval(v.UpdateInterval) {
		sections = append(sections, "", helpStyle.Render(fmt.Sprintf("Custom update interval: %s", v.UpdateInterval)))
	}
	sections = append(sections, "", helpStyle.Render("Edit the config file to change these values."))
	return strings.Join(sections, "\n")
}

func isListedInterval(d time.Duration) bool {
	for _, listed := range model.UpdateIntervals {
		if d == listed {
			return true
		}
	}
	return false
}

func (p *Settings) View(width, height int) string {
	title := renderPaneTitle(p.Title())
	p.viewport.Width = max(width, 1)
	p.viewport.Height = max(height-lipgloss.Height(title), 1)
	p.viewport.SetContent(p.content())
	return lipgloss.JoinVertical(lipgloss.Left, title, p.viewport.View())
}
