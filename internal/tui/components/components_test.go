package components

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/allbin/serialterm"
	"github.com/allbin/serialterm/internal/tui/styles"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    []byte
		wantErr bool
	}{
		{in: "48656C6C6F", want: []byte("Hello")},
		{in: "48 65 6c 6c 6f", want: []byte("Hello")},
		{in: "  0d0a ", want: []byte{0x0d, 0x0a}},
		{in: "", wantErr: true},
		{in: "486", wantErr: true},
		{in: "zz", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestInputHistory(t *testing.T) {
	in := NewInput()
	in.AddToHistory("first")
	in.AddToHistory("second")
	in.AddToHistory("second")
	in.AddToHistory("   ")

	in.SetValue("draft")
	in.NavigateHistoryUp()
	require.Equal(t, "second", in.Value())
	in.NavigateHistoryUp()
	require.Equal(t, "first", in.Value())
	in.NavigateHistoryUp()
	require.Equal(t, "first", in.Value())

	in.NavigateHistoryDown()
	require.Equal(t, "second", in.Value())
	in.NavigateHistoryDown()
	require.Equal(t, "draft", in.Value())
}

func TestInputHistoryLimit(t *testing.T) {
	in := NewInput()
	for i := range historyLimit + 5 {
		in.AddToHistory(fmt.Sprintf("cmd%d", i))
	}
	require.Len(t, in.history, historyLimit)
	require.Equal(t, "cmd5", in.history[0])
}

func TestInputSendingMode(t *testing.T) {
	in := NewInput()
	require.Equal(t, SendingModeText, in.SendingMode())
	in.ToggleSendingMode()
	require.Equal(t, SendingModeHex, in.SendingMode())
	require.Equal(t, "HEX", in.SendingMode().String())
	in.ToggleSendingMode()
	require.Equal(t, "TEXT", in.SendingMode().String())
}

func TestPrintable(t *testing.T) {
	require.Equal(t, "Hi..~.", printable([]byte{'H', 'i', 0x00, 0x1b, '~', 0xff}))
}

func TestFormatterModes(t *testing.T) {
	r := Record{
		Timestamp: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Data:      []byte("AB"),
		Direction: DirectionRX,
	}

	df := NewDataFormatter(DisplayMode{ShowASCII: true})
	require.Contains(t, df.Format(r), "AB")
	require.NotContains(t, df.Format(r), "03:04:05")

	df.ToggleHex()
	require.Contains(t, df.Format(r), "HEX: 41 42")

	df.ToggleHex()
	df.ToggleASCII()
	require.Contains(t, df.Format(r), "BYTES: 2")

	df.ToggleTimestamps()
	require.Contains(t, df.Format(r), "[03:04:05.000]")
}

func TestFormatterTxStatus(t *testing.T) {
	df := NewDataFormatter(DisplayMode{ShowASCII: true})
	r := Record{Data: []byte("m"), Direction: DirectionTX}

	require.Contains(t, df.Format(r), "TX ○")
	r.Status = TxWritten
	require.Contains(t, df.Format(r), "TX ✓")
	r.Status, r.Err = TxFailed, errors.New("broken pipe")
	line := df.Format(r)
	require.Contains(t, line, "TX ✗")
	require.Contains(t, line, "broken pipe")
}

func TestTerminalFollow(t *testing.T) {
	term := NewTerminal(40, 3, NewDataFormatter(DisplayMode{ShowASCII: true}))
	for i := range 10 {
		term.Append(Record{Data: []byte(fmt.Sprintf("line%d", i))})
	}
	require.True(t, term.Following())
	require.Contains(t, term.View(), "line9")

	term.GotoTop()
	require.False(t, term.Following())
	require.Contains(t, term.View(), "line0")

	term.Append(Record{Data: []byte("line10")})
	require.NotContains(t, term.View(), "line10")

	term.GotoBottom()
	require.True(t, term.Following())
	require.Contains(t, term.View(), "line10")

	term.Clear()
	require.Empty(t, strings.TrimSpace(term.View()))
}

func TestStatusBar(t *testing.T) {
	sb := NewStatusBar("/dev/ttyUSB0", serial.DefaultConfig())
	require.Equal(t, styles.LinkConnecting, sb.State())
	sb.SetWidth(100)
	sb.SetState(styles.LinkConnected)

	view := sb.View("NORMAL", "TEXT", "12:00:00", false)
	require.Contains(t, view, "/dev/ttyUSB0")
	require.Contains(t, view, "115200 8N1")
	require.Contains(t, view, "SCROLL")
	require.Contains(t, view, "●")
}
