// Package console renders a serial session for a line-oriented terminal.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/allbin/serialterm"
	"github.com/allbin/serialterm/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PromptMarker prefixes the prompt and every status line
const PromptMarker = "::> "

// Printer writes localized, styled session output. Output from the inbound
// and outbound goroutines is serialized by a mutex.
type Printer struct {
	mu   sync.Mutex
	out  io.Writer
	msg  *message.Printer
	quit string

	prompt  lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	notice  lipgloss.Style
	label   lipgloss.Style
	title   lipgloss.Style
	muted   lipgloss.Style
}

var _ serial.Console = (*Printer)(nil)

// New returns a printer writing to out in the given language. Colors are
// only emitted when out is a color-capable terminal.
func New(out io.Writer, lang language.Tag) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out:  out,
		msg:  message.NewPrinter(lang),
		quit: serial.DefaultQuitCommand,

		prompt:  r.NewStyle().Foreground(colors.Mauve).Bold(true),
		success: r.NewStyle().Foreground(colors.Green).Bold(true),
		failure: r.NewStyle().Foreground(colors.Red).Bold(true),
		notice:  r.NewStyle().Foreground(colors.Yellow),
		label:   r.NewStyle().Foreground(colors.Subtext0),
		title:   r.NewStyle().Foreground(colors.Mauve).Bold(true),
		muted:   r.NewStyle().Foreground(colors.Overlay1).Italic(true),
	}
}

// SetQuitCommand changes the command named in the connection hint
func (p *Printer) SetQuitCommand(cmd string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quit = cmd
}

// Sprintf translates and formats a message
func (p *Printer) Sprintf(key string, args ...any) string {
	return p.msg.Sprintf(key, args...)
}

func (p *Printer) status(style lipgloss.Style, key string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, p.prompt.Render(PromptMarker)+style.Render(p.msg.Sprintf(key, args...)))
}

func (p *Printer) Connected(port string, cfg serial.Config) {
	p.status(p.success, msgConnected, port, cfg.String())
	p.status(p.muted, msgQuitHint, p.quitCommand())
}

func (p *Printer) quitCommand() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.quit
}

func (p *Printer) ConnectionFailed(port string, err error) {
	p.status(p.failure, msgConnectionFailed, port, err)
}

// Prompt writes the prompt marker without a newline
func (p *Printer) Prompt() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.out, p.prompt.Render(PromptMarker))
}

// Line writes a device line verbatim
func (p *Printer) Line(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, text)
}

func (p *Printer) WriteError(err error) {
	p.status(p.failure, msgWriteError, err)
}

func (p *Printer) ConnectionLost(port string, err error) {
	p.status(p.notice, msgConnectionLost, port, err)
}

// PortLocated reports the pattern that selected a port
func (p *Printer) PortLocated(port, pattern string) {
	p.status(p.success, msgPortLocated, pattern)
}

// PortUnavailable reports a candidate that failed its probe
func (p *Printer) PortUnavailable(port string) {
	p.status(p.notice, msgPortUnavailable, port)
}

// NoPorts reports an empty catalog
func (p *Printer) NoPorts() {
	p.status(p.notice, msgNoPorts)
}

// Error reports a failure that ends the program
func (p *Printer) Error(err error) {
	p.status(p.failure, msgError, err)
}

// Banner prints the program name, version and tagline
func (p *Printer) Banner(name, version string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, p.title.Render(fmt.Sprintf("%s v%s", name, version)))
	fmt.Fprintln(p.out, p.muted.Render(p.msg.Sprintf(msgTagline)))
	fmt.Fprintln(p.out)
}

// Parameters echoes the settings a session will use. port may be empty
// when the port is still to be resolved from patterns.
func (p *Printer) Parameters(port string, patterns []string, cfg serial.Config, eol string) {
	if port == "" {
		port = p.msg.Sprintf(msgAutoPort, strings.Join(patterns, ", "))
	}

	rows := [][2]string{
		{msgPort, port},
		{msgSpeed, fmt.Sprint(cfg.BaudRate)},
		{msgParity, cfg.Parity.String()},
		{msgDataBits, fmt.Sprint(cfg.DataBits)},
		{msgStopBits, cfg.StopBits.String()},
		{msgLineEnding, fmt.Sprintf("%q", eol)},
	}

	width := 0
	labels := make([]string, len(rows))
	for i, row := range rows {
		labels[i] = p.msg.Sprintf(row[0])
		width = max(width, lipgloss.Width(labels[i]))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, p.title.Render(p.msg.Sprintf(msgParameters)))
	for i, row := range rows {
		pad := strings.Repeat(" ", width-lipgloss.Width(labels[i]))
		fmt.Fprintf(p.out, "  %s%s  %s\n", p.label.Render(labels[i]), pad, row[1])
	}
}

// TableHeaders returns the localized port table column titles
func (p *Printer) TableHeaders() (id, device, description, usb string) {
	return p.msg.Sprintf(msgTableID), p.msg.Sprintf(msgTableDevice),
		p.msg.Sprintf(msgTableDesc), p.msg.Sprintf(msgTableUSB)
}

// Writeln writes pre-rendered text such as a table
func (p *Printer) Writeln(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, text)
}
