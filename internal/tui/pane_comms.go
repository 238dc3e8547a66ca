package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type commsChannel struct {
	name   string
	status string
	role   string
	color  lipgloss.Color
}

var commsChannels = []commsChannel{
	{name: "4G", status: "Active", role: "Primary connection", color: ColorGreen},
	{name: "LoRa", status: "Ready", role: "Mesh network", color: ColorBlue},
	{name: "Sat", status: "Standby", role: "Emergency backup", color: ColorYellow},
}

// Comms describes the communication channels available to the fleet.
type Comms struct{}

func NewComms() *Comms { return &Comms{} }

func (p *Comms) Title() string { return "Communication Hub" }

func (p *Comms) Update(tea.KeyMsg) tea.Cmd { return nil }

func (p *Comms) View(width, _ int) string {
	header := lipgloss.JoinVertical(lipgloss.Left,
		chartTitleStyle.Render("Multi-Channel Communications"),
		helpStyle.Render("4G/Wi-Fi • LoRa Mesh • Satellite Backup"),
	)

	cardWidth := max(min((width-6)/3, 28), 16)
	cards := make([]string, 0, len(commsChannels))
	for _, ch := range commsChannels {
		body := strings.Join([]string{
			lipgloss.NewStyle().Bold(true).Foreground(ch.color).Render(ch.name + " " + ch.status),
			helpStyle.Render(ch.role),
		}, "\n")
		cards = append(cards, sectionStyle.Width(cardWidth).Render(body))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		renderPaneTitle(p.Title()),
		header,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, cards...),
	)
}
