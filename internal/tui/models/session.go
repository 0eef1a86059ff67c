// Package models holds the bubbletea model of the interactive session.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/allbin/serialterm"
	"github.com/allbin/serialterm/internal/tui/components"
	"github.com/allbin/serialterm/internal/tui/keys"
	"github.com/allbin/serialterm/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// InputMode represents the current input mode (vim-like)
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModeInsert
)

func (m InputMode) String() string {
	if m == InputModeInsert {
		return "INSERT"
	}
	return "NORMAL"
}

// Link is the part of a serial session the model drives. It is satisfied
// by *serial.Session after a successful Open.
type Link interface {
	Name() string
	Config() serial.Config
	Start() error
	Lines() <-chan string
	Err() error
	Send(text string) error
	Write(data []byte) (int, error)
	Close() error
}

var _ Link = (*serial.Session)(nil)

// LineMsg carries one line received from the device
type LineMsg struct {
	Timestamp time.Time
	Text      string
}

// LinkClosedMsg is sent once the inbound stream ends; Err is nil when the
// session was closed deliberately
type LinkClosedMsg struct {
	Err error
}

// SentMsg reports the outcome of a write started from the input field
type SentMsg struct {
	Seq int
	Err error
}

type SessionModel struct {
	link Link
	quit string

	records []components.Record
	seq     int

	formatter *components.DataFormatter
	terminal  *components.Terminal
	statusBar *components.StatusBar
	input     *components.Input
	help      help.Model
	keys      keys.SessionKeys

	inputMode InputMode
	ready     bool
	closed    bool
	now       func() time.Time
}

func NewSessionModel(link Link, quitCommand string) *SessionModel {
	formatter := components.NewDataFormatter(components.DisplayMode{
		ShowASCII:      true,
		ShowTimestamps: true,
	})
	m := &SessionModel{
		link:      link,
		quit:      quitCommand,
		formatter: formatter,
		terminal:  components.NewTerminal(0, 0, formatter),
		statusBar: components.NewStatusBar(link.Name(), link.Config()),
		input:     components.NewInput(),
		help:      help.New(),
		keys:      keys.NewSessionKeys(),
		now:       time.Now,
	}
	m.statusBar.SetState(styles.LinkConnected)
	return m
}

func (m *SessionModel) Init() tea.Cmd {
	if err := m.link.Start(); err != nil {
		return func() tea.Msg { return LinkClosedMsg{Err: err} }
	}
	return waitForLine(m.link)
}

func waitForLine(link Link) tea.Cmd {
	return func() tea.Msg {
		line, ok := <-link.Lines()
		if !ok {
			return LinkClosedMsg{Err: link.Err()}
		}
		return LineMsg{Timestamp: time.Now(), Text: line}
	}
}

// recordLimit bounds the session log; the oldest tenth is dropped at once
const recordLimit = 2000

func (m *SessionModel) add(r components.Record) {
	m.records = append(m.records, r)
	if len(m.records) <= recordLimit {
		m.terminal.Append(r)
		return
	}
	m.records = append(m.records[:0:0], m.records[recordLimit/10:]...)
	m.terminal.Refresh(m.records)
}

func (m *SessionModel) notice(text string) {
	m.add(components.Record{
		Timestamp: m.now(),
		Data:      []byte(text),
		Direction: components.DirectionNotice,
	})
}

// Records returns the session log
func (m *SessionModel) Records() []components.Record {
	return m.records
}

func (m *SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// input box (3) and status bar (1)
		m.terminal.SetSize(msg.Width, msg.Height-4)
		m.input.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.help.Width = msg.Width
		m.ready = true
		cmds = append(cmds, m.terminal.Update(msg))

	case LineMsg:
		m.add(components.Record{
			Timestamp: msg.Timestamp,
			Data:      []byte(msg.Text),
			Direction: components.DirectionRX,
		})
		return m, waitForLine(m.link)

	case LinkClosedMsg:
		if msg.Err != nil {
			m.statusBar.SetState(styles.LinkLost)
			m.notice(fmt.Sprintf("Connection lost, closing console ... (%v)", msg.Err))
		}

	case SentMsg:
		for i := len(m.records) - 1; i >= 0; i-- {
			if m.records[i].Direction != components.DirectionTX || m.records[i].Seq != msg.Seq {
				continue
			}
			m.records[i].Status = components.TxWritten
			if msg.Err != nil {
				m.records[i].Status = components.TxFailed
				m.records[i].Err = msg.Err
			}
			m.terminal.Refresh(m.records)
			break
		}

	case tea.KeyMsg:
		if m.inputMode == InputModeInsert {
			switch {
			case key.Matches(msg, m.keys.Escape):
				m.inputMode = InputModeNormal
				m.input.Blur()
				return m, nil
			case key.Matches(msg, m.keys.Enter):
				return m, m.submit()
			case key.Matches(msg, m.keys.HistoryUp):
				m.input.NavigateHistoryUp()
				return m, nil
			case key.Matches(msg, m.keys.HistoryDown):
				m.input.NavigateHistoryDown()
				return m, nil
			case key.Matches(msg, m.keys.ToggleSendMode):
				m.input.ToggleSendingMode()
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, m.closeAndQuit()
		case key.Matches(msg, m.keys.InsertMode):
			m.inputMode = InputModeInsert
			m.input.Focus()
		case key.Matches(msg, m.keys.Clear):
			m.records = nil
			m.terminal.Clear()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.ToggleHex):
			m.formatter.ToggleHex()
			m.terminal.Refresh(m.records)
		case key.Matches(msg, m.keys.ToggleASCII):
			m.formatter.ToggleASCII()
			m.terminal.Refresh(m.records)
		case key.Matches(msg, m.keys.ToggleTimestamps):
			m.formatter.ToggleTimestamps()
			m.terminal.Refresh(m.records)
		case key.Matches(msg, m.keys.ToggleSendMode):
			m.input.ToggleSendingMode()
		case key.Matches(msg, m.keys.Up):
			m.terminal.ScrollUp()
		case key.Matches(msg, m.keys.Down):
			m.terminal.ScrollDown()
		case key.Matches(msg, m.keys.GotoTop):
			m.terminal.GotoTop()
		case key.Matches(msg, m.keys.GotoBottom):
			m.terminal.GotoBottom()
		}
	}

	return m, tea.Batch(cmds...)
}

// submit sends the input field. The quit command closes the session the
// same way it does on the line console.
func (m *SessionModel) submit() tea.Cmd {
	value := m.input.Value()
	if strings.TrimSpace(value) == "" {
		return nil
	}
	if strings.EqualFold(strings.TrimSpace(value), m.quit) {
		return m.closeAndQuit()
	}

	var (
		data  []byte
		write func() error
	)
	switch m.input.SendingMode() {
	case components.SendingModeHex:
		raw, err := components.ParseHex(value)
		if err != nil {
			m.notice(err.Error())
			return nil
		}
		data = raw
		write = func() error {
			_, err := m.link.Write(raw)
			return err
		}
	default:
		data = []byte(value)
		write = func() error { return m.link.Send(value) }
	}

	m.seq++
	seq := m.seq
	m.add(components.Record{
		Timestamp: m.now(),
		Data:      data,
		Direction: components.DirectionTX,
		Status:    components.TxPending,
		Seq:       seq,
	})
	m.input.AddToHistory(value)
	m.input.SetValue("")

	return func() tea.Msg {
		return SentMsg{Seq: seq, Err: write()}
	}
}

func (m *SessionModel) closeAndQuit() tea.Cmd {
	if !m.closed {
		m.closed = true
		m.link.Close()
		m.statusBar.SetState(styles.LinkClosed)
	}
	return tea.Quit
}

func (m *SessionModel) View() string {
	content := "Initializing..."
	if m.ready {
		content = m.terminal.View()
	}

	mode := m.inputMode.String()
	input := m.input.View(m.inputMode == InputModeInsert)
	status := m.statusBar.View(mode, m.input.SendingMode().String(), m.now().Format("15:04:05"), m.terminal.Following())

	views := []string{styles.ContentBorderStyle.Render(content), input, status}
	if m.help.ShowAll {
		views = append(views, m.help.View(m.keys))
	}
	return lipgloss.JoinVertical(lipgloss.Left, views...)
}
