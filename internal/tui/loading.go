package tui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// syncIndicator renders a spinner frame while a snapshot fetch is in flight.
// The frame is selected from the current time so it animates on re-render.
func syncIndicator(inFlight bool) string {
	if !inFlight {
		return ""
	}
	frame := spinnerFrames[time.Now().UnixMilli()/120%int64(len(spinnerFrames))]
	return lipgloss.NewStyle().Foreground(ColorBlue).Render(frame) + " "
}

// renderLoadingPlaceholder renders an animated loading indicator.
func renderLoadingPlaceholder(width, height int) string {
	text := lipgloss.NewStyle().
		Foreground(ColorGray).
		Italic(true).
		Render(syncIndicator(true) + "Waiting for fleet data...")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, text)
}
