package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Terminal is the scrolling session log. While following it stays pinned
// to the newest record; scrolling up stops following.
type Terminal struct {
	viewport  viewport.Model
	formatter *DataFormatter
	lines     []string
	follow    bool
}

func NewTerminal(width, height int, formatter *DataFormatter) *Terminal {
	return &Terminal{
		viewport:  viewport.New(width, height),
		formatter: formatter,
		follow:    true,
	}
}

func (t *Terminal) SetSize(width, height int) {
	t.viewport.Width = width
	t.viewport.Height = max(height, 1)
	if t.follow {
		t.viewport.GotoBottom()
	}
}

func (t *Terminal) Width() int {
	return t.viewport.Width
}

func (t *Terminal) Following() bool {
	return t.follow
}

func (t *Terminal) Append(r Record) {
	t.lines = append(t.lines, t.formatter.Format(r))
	t.render()
}

// Refresh re-renders every record, e.g. after a display mode change
func (t *Terminal) Refresh(records []Record) {
	t.lines = t.formatter.FormatAll(records)
	t.render()
}

func (t *Terminal) render() {
	t.viewport.SetContent(strings.Join(t.lines, "\n"))
	if t.follow {
		t.viewport.GotoBottom()
	}
}

func (t *Terminal) Clear() {
	t.lines = nil
	t.viewport.SetContent("")
	t.follow = true
}

func (t *Terminal) ScrollUp() {
	t.follow = false
	t.viewport.LineUp(1)
}

func (t *Terminal) ScrollDown() {
	t.viewport.LineDown(1)
	t.follow = t.viewport.AtBottom()
}

func (t *Terminal) GotoTop() {
	t.follow = false
	t.viewport.GotoTop()
}

func (t *Terminal) GotoBottom() {
	t.follow = true
	t.viewport.GotoBottom()
}

func (t *Terminal) Update(msg tea.Msg) tea.Cmd {
	// Key messages stay with the model's bindings
	if _, ok := msg.(tea.WindowSizeMsg); !ok {
		return nil
	}
	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return cmd
}

func (t *Terminal) View() string {
	return t.viewport.View()
}
