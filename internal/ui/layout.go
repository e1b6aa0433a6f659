package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/pdf-prints/internal/theme"
)

// Layout tracks the terminal dimensions shared by every view.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with one-line header and status bar.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentHeight returns the rows left between the header and the status bar.
func (l Layout) ContentHeight() int {
	h := l.Height - l.HeaderHeight - l.StatusBarHeight
	if h < 0 {
		return 0
	}
	return h
}

// RenderHeader renders the title on the left and info right-aligned.
func (l Layout) RenderHeader(title, info string) string {
	left := theme.HeaderStyle.Render(title)
	right := theme.HeaderStyle.Render(info)
	return joinFilled(theme.HeaderStyle, l.Width, left, right)
}

// RenderStatusBar renders the bottom bar. msg is either a toast or the key
// hints of the active view.
func (l Layout) RenderStatusBar(msg string) string {
	return joinFilled(theme.StatusBarStyle, l.Width, theme.StatusBarStyle.Render(msg), "")
}

// RenderWithFrame stacks header, content and status bar.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	content = lipgloss.NewStyle().
		Height(l.ContentHeight()).
		MaxHeight(l.ContentHeight()).
		Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

// joinFilled places left and right on one line of the given width, painting
// the gap with the background of style.
func joinFilled(style lipgloss.Style, width int, left, right string) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")
	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}
