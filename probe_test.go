package serial

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProbeAvailableClosesHandle(t *testing.T) {
	opener := newFakeOpener()
	probe := NewProbe(WithProbeOpener(opener.Open))

	require.True(t, probe.IsAvailable("/dev/ttyUSB0", DefaultConfig()))
	require.Equal(t, int32(1), opener.port("/dev/ttyUSB0").closes.Load())
}

func TestProbeFailureIsUnavailable(t *testing.T) {
	for _, cause := range []error{ErrDeviceNotFound, ErrDeviceInUse, ErrPermissionDenied, ErrInvalidConfig} {
		opener := newFakeOpener()
		opener.fail("COM3", cause)
		probe := NewProbe(WithProbeOpener(opener.Open))

		require.False(t, probe.IsAvailable("COM3", DefaultConfig()), "cause %v", cause)
	}
}

func TestProbeIsIdempotent(t *testing.T) {
	opener := newFakeOpener()
	opener.fail("/dev/ttyS1", ErrDeviceInUse)
	probe := NewProbe(WithProbeOpener(opener.Open))

	for _, name := range []string{"/dev/ttyS0", "/dev/ttyS1"} {
		first := probe.IsAvailable(name, DefaultConfig())
		second := probe.IsAvailable(name, DefaultConfig())
		require.Equal(t, first, second, name)
	}
}

func TestProbePassesConfig(t *testing.T) {
	opener := newFakeOpener()
	probe := NewProbe(WithProbeOpener(opener.Open))
	cfg := Config{BaudRate: 9600, DataBits: 7, Parity: ParityOdd, StopBits: StopBitsTwo}

	require.True(t, probe.IsAvailable("/dev/ttyACM0", cfg))
	require.Equal(t, cfg, opener.port("/dev/ttyACM0").Config())
}

func TestIsAvailableMissingDevice(t *testing.T) {
	require.False(t, IsAvailable("/dev/nonexistent", DefaultConfig()))
}
