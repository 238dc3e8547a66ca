package tui

import "github.com/charmbracelet/lipgloss"

// Palette shared by every pane.
var (
	ColorNavy   = lipgloss.Color("#0B1F3A")
	ColorWhite  = lipgloss.Color("#F5F7FA")
	ColorGray   = lipgloss.Color("245")
	ColorBlue   = lipgloss.Color("39")
	ColorGreen  = lipgloss.Color("#4ADE80")
	ColorRed    = lipgloss.Color("#F87171")
	ColorOrange = lipgloss.Color("#FB923C")
	ColorYellow = lipgloss.Color("220")
)

var (
	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)

	paneTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBlue).
			MarginBottom(1)

	chartTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite)

	helpStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Italic(true)

	errorStyle = lipgloss.NewStyle().Foreground(ColorRed)

	selectedRowStyle = lipgloss.NewStyle().
				Background(ColorBlue).
				Foreground(ColorWhite)

	bannerStyle = lipgloss.NewStyle().
			Foreground(ColorOrange).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(ColorOrange).
			Padding(0, 1)
)

var severityColors = map[string]lipgloss.Color{
	"critical": ColorRed,
	"warning":  ColorOrange,
	"info":     ColorBlue,
}

var vesselStatusColors = map[string]lipgloss.Color{
	"active": ColorGreen,
	"docked": ColorGray,
	"sos":    ColorRed,
}

// truncate shortens s to width runes, marking the cut with "~".
func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 {
		return ""
	}
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "~"
	}
	return string(r[:width-1]) + "~"
}
