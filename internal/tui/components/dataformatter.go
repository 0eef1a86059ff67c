package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/allbin/serialterm/internal/tui/colors"
	"github.com/allbin/serialterm/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// Direction tells where a record came from
type Direction int

const (
	DirectionRX Direction = iota
	DirectionTX
	DirectionNotice
)

// TxStatus tracks a transmitted record until the write returns
type TxStatus int

const (
	TxPending TxStatus = iota
	TxWritten
	TxFailed
)

// Record is one entry of the session log
type Record struct {
	Timestamp time.Time
	Data      []byte
	Direction Direction
	Status    TxStatus
	Err       error
	Seq       int // matches a TX record to its write result
}

type DisplayMode struct {
	ShowHex        bool
	ShowASCII      bool
	ShowTimestamps bool
}

type DataFormatter struct {
	mode DisplayMode
}

func NewDataFormatter(mode DisplayMode) *DataFormatter {
	return &DataFormatter{mode: mode}
}

func (df *DataFormatter) GetDisplayMode() DisplayMode {
	return df.mode
}

func (df *DataFormatter) ToggleHex() {
	df.mode.ShowHex = !df.mode.ShowHex
}

func (df *DataFormatter) ToggleASCII() {
	df.mode.ShowASCII = !df.mode.ShowASCII
}

func (df *DataFormatter) ToggleTimestamps() {
	df.mode.ShowTimestamps = !df.mode.ShowTimestamps
}

func (df *DataFormatter) indicator(r Record) string {
	switch r.Direction {
	case DirectionTX:
		color, text := colors.Peach, "TX"
		switch r.Status {
		case TxPending:
			color, text = colors.Yellow, "TX ○"
		case TxWritten:
			color, text = colors.Green, "TX ✓"
		case TxFailed:
			color, text = colors.Red, "TX ✗"
		}
		return lipgloss.NewStyle().Foreground(color).Bold(true).Render("↗ " + text)
	case DirectionNotice:
		return lipgloss.NewStyle().Foreground(colors.Mauve).Bold(true).Render("::>")
	default:
		return lipgloss.NewStyle().Foreground(colors.Sky).Bold(true).Render("↙ RX")
	}
}

// printable replaces control and non-ASCII bytes with dots
func printable(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		if c >= 32 && c <= 126 {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

func (df *DataFormatter) Format(r Record) string {
	var prefix string
	if df.mode.ShowTimestamps {
		prefix = lipgloss.NewStyle().
			Foreground(colors.Subtext0).
			Render(fmt.Sprintf("[%s] ", r.Timestamp.Format("15:04:05.000")))
	}

	if r.Direction == DirectionNotice {
		return prefix + df.indicator(r) + " " + styles.NoticeStyle.Render(string(r.Data))
	}

	var parts []string
	if df.mode.ShowHex {
		parts = append(parts, fmt.Sprintf("HEX: % X", r.Data))
	}
	if df.mode.ShowASCII {
		parts = append(parts, printable(r.Data))
	}
	if !df.mode.ShowHex && !df.mode.ShowASCII {
		parts = append(parts, fmt.Sprintf("BYTES: %d", len(r.Data)))
	}

	line := fmt.Sprintf("%s%s %s", prefix, df.indicator(r), strings.Join(parts, "  "))
	if r.Err != nil {
		line += " " + styles.ErrorStyle.Render(r.Err.Error())
	}
	return line
}

func (df *DataFormatter) FormatAll(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = df.Format(r)
	}
	return out
}
