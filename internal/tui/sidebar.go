package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const sidebarWidth = 22

// Navigation is the pane sidebar. It only reports tab requests through
// onTabChange; the router owns the selection.
type Navigation struct {
	keys        KeyMap
	onTabChange func(Tab)
}

// NewNavigation returns a sidebar that reports tab requests to onTabChange.
func NewNavigation(keys KeyMap, onTabChange func(Tab)) *Navigation {
	return &Navigation{keys: keys, onTabChange: onTabChange}
}

// HandleKey handles number keys and tab cycling. It reports whether the key was consumed.
func (n *Navigation) HandleKey(active Tab, msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, n.keys.SelectTab):
		idx, err := strconv.Atoi(msg.String())
		if err != nil || idx < 1 || idx > len(Tabs) {
			return false
		}
		n.onTabChange(Tabs[idx-1])
		return true
	case key.Matches(msg, n.keys.NextTab):
		n.onTabChange(Tabs[(tabIndex(active)+1)%len(Tabs)])
		return true
	case key.Matches(msg, n.keys.PrevTab):
		idx := tabIndex(active)
		if idx < 0 {
			idx = 0
		}
		n.onTabChange(Tabs[(idx-1+len(Tabs))%len(Tabs)])
		return true
	}
	return false
}

// HandleClick selects the tab rendered at row y, if any.
func (n *Navigation) HandleClick(y int) bool {
	tab, ok := n.tabAtRow(y)
	if !ok {
		return false
	}
	n.onTabChange(tab)
	return true
}

func (n *Navigation) buildLines(active Tab, alertCount int) ([]string, map[int]Tab) {
	rowToTab := make(map[int]Tab, len(Tabs))
	lines := make([]string, 0, len(Tabs)+4)

	lines = append(lines, renderBranding(), "")

	for i, tab := range Tabs {
		label := fmt.Sprintf("  %d %s", i+1, tab.Label())
		if tab == active {
			label = lipgloss.NewStyle().Foreground(ColorBlue).Bold(true).
				Render(fmt.Sprintf("> %d %s", i+1, tab.Label()))
		}
		if tab == TabAlerts && alertCount > 0 {
			label += " " + lipgloss.NewStyle().
				Background(ColorRed).
				Foreground(ColorWhite).
				Bold(true).
				Render(fmt.Sprintf(" %d ", alertCount))
		}
		rowToTab[len(lines)] = tab
		lines = append(lines, label)
	}
	return lines, rowToTab
}

func (n *Navigation) tabAtRow(y int) (Tab, bool) {
	_, rowToTab := n.buildLines("", 0)

	// The border adds one row above the content.
	tab, ok := rowToTab[y-1]
	return tab, ok
}

// View renders the sidebar with the active tab highlighted and the alert badge.
func (n *Navigation) View(active Tab, alertCount int, height int) string {
	style := lipgloss.NewStyle().
		Width(sidebarWidth-2).
		Height(height).
		Border(lipgloss.NormalBorder()).
		BorderForeground(ColorGray).
		Padding(0, 1)

	lines, _ := n.buildLines(active, alertCount)
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
