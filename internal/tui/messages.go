package tui

import (
	"time"

	"github.com/seaguardian/seaguardian/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

// tickMsg drives snapshot polling.
type tickMsg time.Time

// snapshotMsg carries the result of a snapshot fetch.
type snapshotMsg struct {
	snap model.Snapshot
	err  error
}

// actionResultMsg reports the outcome of a pane action (SOS, acknowledge, catch).
// An empty action is an informational notice that does not touch the provider.
type actionResultMsg struct {
	action string
	err    error
	notice string
}

// clearNoticeMsg hides the status line notice if it has not been replaced since.
type clearNoticeMsg struct {
	seq int
}

// noticeCmd shows text in the status line without calling the provider.
func noticeCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return actionResultMsg{notice: text}
	}
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
