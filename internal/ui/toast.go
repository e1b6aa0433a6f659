package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Toast durations.
const (
	ToastShort = 2500 * time.Millisecond
	ToastLong  = 4 * time.Second
)

// ToastMsg asks the root model to show a transient notification in the
// status bar.
type ToastMsg struct {
	Text     string
	Err      bool
	Duration time.Duration
}

// ShowToast returns a command emitting a success toast.
func ShowToast(text string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return ToastMsg{Text: text, Duration: d}
	}
}

// ShowError returns a command emitting an error toast.
func ShowError(text string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return ToastMsg{Text: text, Err: true, Duration: d}
	}
}
