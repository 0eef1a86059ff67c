package styles

import (
	"github.com/allbin/serialterm/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

var (
	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colors.Surface1)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Surface2).
			Padding(0, 1)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(colors.Yellow).
			Italic(true)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Red)
)

// LinkState is the connection state shown in the status bar
type LinkState int

const (
	LinkConnecting LinkState = iota
	LinkConnected
	LinkLost
	LinkClosed
)

// Indicator returns the status bar glyph and color for a link state
func Indicator(state LinkState) (string, lipgloss.Style) {
	switch state {
	case LinkConnected:
		return "●", lipgloss.NewStyle().Foreground(colors.Green)
	case LinkConnecting:
		return "○", lipgloss.NewStyle().Foreground(colors.Yellow)
	case LinkLost:
		return "✗", lipgloss.NewStyle().Foreground(colors.Red)
	default:
		return "○", lipgloss.NewStyle().Foreground(colors.Red)
	}
}
