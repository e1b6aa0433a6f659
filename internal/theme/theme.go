package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// ToolbarStyle frames the filter toolbar above the grid.
var ToolbarStyle = lipgloss.NewStyle().
	Padding(0, 1)

// TotalStyle renders the "Total: N" label.
var TotalStyle = lipgloss.NewStyle().
	Bold(true)

// PanelStyle wraps full-screen panels such as help.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// SuccessToastStyle and ErrorToastStyle color transient notifications.
var (
	SuccessToastStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorGreen)
	ErrorToastStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorRed)
)

// StatusStyle returns a color-coded style for the given PDF status.
func StatusStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch status {
	case "PENDING":
		return base.Foreground(ColorYellow)
	case "PRINTED":
		return base.Foreground(ColorBlue)
	case "SENT":
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// DueBadgeStyle returns the badge style for a due bucket.
func DueBadgeStyle(bucket string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch bucket {
	case "OVERDUE":
		return base.Foreground(ColorWhite).Background(ColorRed)
	case "DUE_TODAY":
		return base.Foreground(ColorWhite).Background(ColorSubtle)
	case "UPCOMING":
		return base.Foreground(ColorWhite).Background(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}
