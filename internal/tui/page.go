package tui

import tea "github.com/charmbracelet/bubbletea"

// Pane is one content area selected by the router.
type Pane interface {
	// Title is the heading rendered at the top of the pane.
	Title() string
	// Update handles a key while the pane is active.
	Update(msg tea.KeyMsg) tea.Cmd
	// View renders the pane into the given area.
	View(width, height int) string
}

// InputCapturer is implemented by panes that temporarily own all keys
// (forms, confirmations) so global navigation does not steal them.
type InputCapturer interface {
	Capturing() bool
}

func renderPaneTitle(title string) string {
	return paneTitleStyle.Render(title)
}
