package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// offlineBannerText is shown under the connectivity bar while offline.
const offlineBannerText = "Offline Mode - Data will sync when connection is restored"

// renderBranding renders "SeaGuardian" with a deep to light blue gradient.
func renderBranding() string {
	colors := []string{
		"#1E3A8A", "#1D4ED8", "#2563EB", "#3B82F6", "#0EA5E9", "#06B6D4",
		"#14B8A6", "#22D3EE", "#38BDF8", "#60A5FA", "#93C5FD",
	}

	var b strings.Builder
	for i, char := range "SeaGuardian" {
		style := lipgloss.NewStyle().
			Foreground(lipgloss.Color(colors[i%len(colors)])).
			Bold(true)
		b.WriteString(style.Render(string(char)))
	}
	return b.String()
}

// renderConnectivityBar renders the one-line strip above the content.
// Its colour depends on online alone.
func renderConnectivityBar(online bool, width int) string {
	color, label := ColorGreen, "● ONLINE"
	if !online {
		color, label = ColorRed, "● OFFLINE"
	}
	return lipgloss.NewStyle().
		Background(color).
		Foreground(ColorNavy).
		Bold(true).
		Width(max(width, 0)).
		Render(" " + label)
}

// renderOfflineBanner renders the warning shown while offline.
func renderOfflineBanner(width int) string {
	return bannerStyle.Width(max(width, 0)).Render("⚠ " + offlineBannerText)
}

// renderStatusLine renders the status/help line at the bottom of the screen.
func (r *Router) renderStatusLine(width int) string {
	baseStyle := lipgloss.NewStyle().
		Background(ColorNavy).
		Foreground(ColorWhite)

	leftText := fmt.Sprintf("[%s]", r.activeTab.Label())

	var centerText string
	switch {
	case r.notice != "":
		centerText = r.notice
	case width < 80:
		centerText = r.help.ShortHelpView(r.keys.ShortHelp())
	default:
		centerText = r.paneHint()
	}

	var rightParts []string
	if st, ok := r.connectivity(); ok {
		if st.Pending > 0 {
			rightParts = append(rightParts, fmt.Sprintf("%d queued", st.Pending))
		}
		if !st.Online && st.ConsecutiveFailures > 1 {
			rightParts = append(rightParts, fmt.Sprintf("%d failed syncs", st.ConsecutiveFailures))
		}
	}
	if !r.snapshot.FetchedAt.IsZero() {
		rightParts = append(rightParts, "synced "+r.snapshot.FetchedAt.Local().Format("15:04:05"))
	}
	rightText := syncIndicator(r.fetchInFlight) + strings.Join(rightParts, " · ")

	noticeStyle := baseStyle
	if r.noticeIsError {
		noticeStyle = noticeStyle.Foreground(ColorRed)
	}

	left := baseStyle.Bold(true).Render(" " + leftText + " ")
	right := baseStyle.Render(" " + rightText + " ")
	centerWidth := width - lipgloss.Width(left) - lipgloss.Width(right)
	if centerWidth < 0 {
		centerWidth = 0
	}
	center := noticeStyle.Width(centerWidth).MaxWidth(centerWidth).MaxHeight(1).Render(centerText)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, center, right)
}

// paneHint returns the key hints for the active pane.
func (r *Router) paneHint() string {
	switch r.activeTab {
	case TabMap:
		return "↑↓: Select vessel • S: Send SOS • Tab/1-6: Switch pane • ?: Help • q: Quit"
	case TabAlerts:
		return "↑↓: Select alert • Enter/a: Acknowledge • Tab/1-6: Switch pane • q: Quit"
	case TabCatches:
		return "n: Log catch • ↑↓: Scroll • Tab/1-6: Switch pane • q: Quit"
	}
	return "Tab/1-6: Switch pane • r: Refresh • ?: Help • q: Quit"
}
