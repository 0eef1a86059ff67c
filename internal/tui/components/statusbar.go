package components

import (
	"fmt"

	"github.com/allbin/serialterm"
	"github.com/allbin/serialterm/internal/tui/colors"
	"github.com/allbin/serialterm/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

type StatusBar struct {
	port   string
	config serial.Config
	state  styles.LinkState
	width  int
}

func NewStatusBar(port string, config serial.Config) *StatusBar {
	return &StatusBar{
		port:   port,
		config: config,
		state:  styles.LinkConnecting,
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetState(state styles.LinkState) {
	sb.state = state
}

func (sb *StatusBar) State() styles.LinkState {
	return sb.state
}

// View renders mode, port and link state on the left and the line
// settings and clock on the right, nvim style.
func (sb *StatusBar) View(inputMode, sendingMode, clock string, following bool) string {
	width := sb.width
	if width <= 0 {
		width = 80
	}

	modeBg := colors.Blue
	if inputMode == "INSERT" {
		modeBg = colors.Green
	}
	mode := lipgloss.NewStyle().
		Foreground(colors.Base).
		Background(modeBg).
		Bold(true).
		Padding(0, 1).
		Render(inputMode)

	port := lipgloss.NewStyle().
		Foreground(colors.Mauve).
		Bold(true).
		Padding(0, 1).
		Render(sb.port)

	glyph, glyphStyle := styles.Indicator(sb.state)
	indicator := glyphStyle.Render(glyph)

	divider := lipgloss.NewStyle().
		Foreground(colors.Surface2).
		Padding(0, 1).
		Render("│")

	left := []string{mode, port, indicator}
	if inputMode == "INSERT" {
		left = append(left, lipgloss.NewStyle().
			Foreground(colors.Peach).
			Bold(true).
			Padding(0, 1).
			Render(fmt.Sprintf("[%s] Tab to toggle", sendingMode)))
	}
	if !following {
		left = append(left, lipgloss.NewStyle().
			Foreground(colors.Yellow).
			Padding(0, 1).
			Render("SCROLL"))
	}
	left = append(left, divider)
	leftSide := lipgloss.JoinHorizontal(lipgloss.Left, left...)

	details := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1).
		Render("⚡ " + sb.config.String())
	clockView := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Padding(0, 1).
		Render(clock)
	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, details, divider, clockView)

	spacerWidth := max(width-lipgloss.Width(leftSide)-lipgloss.Width(rightSide), 1)
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	return lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Surface0).
		Width(width).
		Render(lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide))
}
