package serial

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const waitFor = time.Second

func newTestSession(t *testing.T, name string, opts ...SessionOption) (*Session, *fakeOpener, *recordingConsole) {
	t.Helper()
	opener := newFakeOpener()
	console := &recordingConsole{}
	opts = append([]SessionOption{WithOpener(opener.Open)}, opts...)
	return NewSession(name, DefaultConfig(), console, opts...), opener, console
}

// runAsync runs the session against an input pipe the test types into
func runAsync(s *Session) (*io.PipeWriter, <-chan error) {
	r, w := io.Pipe()
	result := make(chan error, 1)
	go func() { result <- s.Run(context.Background(), r) }()
	return w, result
}

func TestSessionOpenFailure(t *testing.T) {
	s, opener, console := newTestSession(t, "COM3")
	opener.fail("COM3", errors.New("I/O error"))

	err := s.Open()
	require.ErrorIs(t, err, ErrOpenFailure)
	require.Contains(t, err.Error(), "I/O error")
	require.Equal(t, StateClosed, s.State())
	require.Equal(t, []string{"failed COM3"}, console.Events())

	// no relay tasks start on a failed session
	require.ErrorIs(t, s.Run(context.Background(), strings.NewReader("hello\n")), ErrSessionNotOpen)
	require.ErrorIs(t, s.Send("hello"), ErrSessionNotOpen)
	require.ErrorIs(t, s.Open(), ErrSessionUsed)
	require.Equal(t, []string{"COM3"}, opener.Calls())
}

func TestSessionOpenUsesExactConfig(t *testing.T) {
	cfg := Config{BaudRate: 9600, DataBits: 7, Parity: ParityMark, StopBits: StopBitsTwo}
	opener := newFakeOpener()
	console := &recordingConsole{}
	s := NewSession("/dev/ttyUSB0", cfg, console, WithOpener(opener.Open))

	require.NoError(t, s.Open())
	require.Equal(t, StateOpen, s.State())
	require.Equal(t, cfg, opener.port("/dev/ttyUSB0").Config())
	require.Equal(t, []string{"connected /dev/ttyUSB0 9600 7M2"}, console.Events())
	require.NoError(t, s.Close())
}

func TestSessionQuitClosesOnce(t *testing.T) {
	for _, quit := range []string{"quit", "QUIT", "  Quit  "} {
		t.Run(quit, func(t *testing.T) {
			s, opener, _ := newTestSession(t, "/dev/ttyUSB0")
			require.NoError(t, s.Open())

			in := strings.NewReader("hello\n" + quit + "\nafter\n")
			require.NoError(t, s.Run(context.Background(), in))

			port := opener.port("/dev/ttyUSB0")
			require.Equal(t, int32(1), port.closes.Load())
			require.Equal(t, "hello\n", port.Written())
			require.Equal(t, StateClosed, s.State())

			require.NoError(t, s.Close())
			require.Equal(t, int32(1), port.closes.Load())
		})
	}
}

func TestSessionRelaysDeviceLines(t *testing.T) {
	s, opener, console := newTestSession(t, "/dev/ttyUSB0")
	require.NoError(t, s.Open())

	input, result := runAsync(s)
	port := opener.port("/dev/ttyUSB0")

	_, err := port.deviceOut.Write([]byte("Bus Pirate v3.5\r\nHiZ>\n"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return console.Has("line Bus Pirate v3.5") && console.Has("line HiZ>")
	}, waitFor, 10*time.Millisecond)

	_, err = io.WriteString(input, "i\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return port.Written() == "i\n" }, waitFor, 10*time.Millisecond)

	_, err = io.WriteString(input, "quit\n")
	require.NoError(t, err)

	select {
	case err := <-result:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("timeout waiting for Run to return after quit")
	}
	require.NoError(t, s.Err())
	require.False(t, console.Has("lost /dev/ttyUSB0"))
}

func TestSessionConnectionLostKeepsAcceptingInput(t *testing.T) {
	s, opener, console := newTestSession(t, "/dev/ttyUSB0")
	require.NoError(t, s.Open())

	input, result := runAsync(s)
	port := opener.port("/dev/ttyUSB0")

	require.NoError(t, port.deviceOut.CloseWithError(errUnplugged))
	require.Eventually(t, func() bool { return console.Has("lost /dev/ttyUSB0") }, waitFor, 10*time.Millisecond)

	select {
	case <-s.Done():
	case <-time.After(waitFor):
		t.Fatal("inbound task still running after read failure")
	}
	require.ErrorIs(t, s.Err(), ErrConnectionLost)
	require.ErrorIs(t, s.Err(), errUnplugged)
	require.Equal(t, StateOpen, s.State())

	_, err := io.WriteString(input, "still here\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return port.Written() == "still here\n" }, waitFor, 10*time.Millisecond)

	select {
	case <-result:
		t.Fatal("Run returned before quit")
	default:
	}

	_, err = io.WriteString(input, "QUIT\n")
	require.NoError(t, err)

	select {
	case err := <-result:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("timeout waiting for Run to return after quit")
	}
	require.Equal(t, int32(1), port.closes.Load())
}

func TestSessionWriteErrorIsNotFatal(t *testing.T) {
	s, opener, console := newTestSession(t, "/dev/ttyUSB0")
	require.NoError(t, s.Open())
	opener.port("/dev/ttyUSB0").failWrites(errors.New("write timeout"))

	require.NoError(t, s.Run(context.Background(), strings.NewReader("a\nb\nquit\n")))

	writeErrors := 0
	for _, e := range console.Events() {
		if e == "write error" {
			writeErrors++
		}
	}
	require.Equal(t, 2, writeErrors)
	require.Equal(t, StateClosed, s.State())
}

func TestSessionConsoleEOF(t *testing.T) {
	s, opener, _ := newTestSession(t, "/dev/ttyUSB0")
	require.NoError(t, s.Open())

	require.NoError(t, s.Run(context.Background(), strings.NewReader("last line without newline")))

	port := opener.port("/dev/ttyUSB0")
	require.Equal(t, "last line without newline\n", port.Written())
	require.Equal(t, int32(1), port.closes.Load())
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestSessionConsoleReadError(t *testing.T) {
	s, opener, _ := newTestSession(t, "/dev/ttyUSB0")
	require.NoError(t, s.Open())

	broken := errors.New("console gone")
	err := s.Run(context.Background(), failingReader{err: broken})
	require.ErrorIs(t, err, broken)
	require.Equal(t, int32(1), opener.port("/dev/ttyUSB0").closes.Load())
}

func TestSessionContextCancel(t *testing.T) {
	s, opener, _ := newTestSession(t, "/dev/ttyUSB0")
	require.NoError(t, s.Open())

	ctx, cancel := context.WithCancel(context.Background())
	r, w := io.Pipe()
	defer w.Close()

	result := make(chan error, 1)
	go func() { result <- s.Run(ctx, r) }()

	cancel()
	select {
	case err := <-result:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(waitFor):
		t.Fatal("timeout waiting for Run to return after cancel")
	}
	require.Equal(t, int32(1), opener.port("/dev/ttyUSB0").closes.Load())
	require.Equal(t, StateClosed, s.State())
}

func TestSessionLineEndingAndQuitCommand(t *testing.T) {
	s, opener, _ := newTestSession(t, "COM3", WithLineEnding("\r\n"), WithQuitCommand("exit"))
	require.NoError(t, s.Open())

	require.NoError(t, s.Run(context.Background(), strings.NewReader("m\nquit\nexit\nnever\n")))
	require.Equal(t, "m\r\nquit\r\n", opener.port("COM3").Written())
}

func TestSessionStartLinesAndClose(t *testing.T) {
	s, opener, _ := newTestSession(t, "/dev/ttyACM0")
	require.ErrorIs(t, s.Start(), ErrSessionNotOpen)
	require.NoError(t, s.Open())
	require.NoError(t, s.Start())
	require.NoError(t, s.Start())

	port := opener.port("/dev/ttyACM0")
	go port.deviceOut.Write([]byte("ready\n"))

	select {
	case line := <-s.Lines():
		require.Equal(t, "ready", line)
	case <-time.After(waitFor):
		t.Fatal("timeout waiting for device line")
	}

	require.NoError(t, s.Send("status"))
	require.Equal(t, "status\n", port.Written())

	// nobody drains Lines any more; Close must still return
	go port.deviceOut.Write([]byte("one\ntwo\n"))
	require.NoError(t, s.Close())

	select {
	case <-s.Done():
	case <-time.After(waitFor):
		t.Fatal("inbound task still running after Close")
	}
	require.NoError(t, s.Err())
	require.ErrorIs(t, s.Send("late"), ErrSessionNotOpen)
}

func TestStateString(t *testing.T) {
	require.Equal(t, "closed", StateClosed.String())
	require.Equal(t, "open", StateOpen.String())
	require.Equal(t, "closing", StateClosing.String())
	require.Equal(t, "State(9)", State(9).String())
}
