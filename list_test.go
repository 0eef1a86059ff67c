package serial

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetPortDescription(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"ttyUSB0", "USB Serial Port"},
		{"/dev/ttyUSB3", "USB Serial Port"},
		{"/dev/tty.usbserial-A505M5LI", "USB Serial Port"},
		{"ttyACM0", "USB CDC/ACM Device"},
		{"/dev/cu.usbmodem1101", "USB CDC/ACM Device"},
		{"ttyS0", "Standard Serial Port"},
		{"ttyAMA0", "ARM Serial Port"},
		{"ttymxc0", "i.MX Serial Port"},
		{"ttyO0", "OMAP Serial Port"},
		{"ttySAC0", "Samsung Serial Port"},
		{"ttyTHS0", "Tegra Serial Port"},
		{"COM3", "Communications Port"},
		{"unknown", "Serial Port"},
	}

	for _, test := range tests {
		result := getPortDescription(test.name)
		if result != test.expected {
			t.Errorf("getPortDescription(%s) = %s, expected %s", test.name, result, test.expected)
		}
	}
}

func TestPortInfoMatchKeys(t *testing.T) {
	info := PortInfo{
		Name:        "ttyUSB0",
		Path:        "/dev/ttyUSB0",
		Description: "USB Serial Port",
		Product:     "FT232R USB UART",
	}

	keys := info.MatchKeys()
	for _, want := range []string{"/dev/ttyUSB0", "ttyUSB0", "usbserialport", "ft232rusbuart"} {
		if !slices.Contains(keys, want) {
			t.Errorf("MatchKeys() = %v, missing %q", keys, want)
		}
	}

	// Windows names have no separate base name
	com := PortInfo{Name: "COM3", Path: "COM3", Description: "Communications Port"}
	keys = com.MatchKeys()
	if len(keys) != 2 || keys[0] != "COM3" || keys[1] != "communicationsport" {
		t.Errorf("MatchKeys() = %v, expected [COM3 communicationsport]", keys)
	}
}

func TestPortInfoIsUSB(t *testing.T) {
	if (&PortInfo{Name: "ttyS0"}).IsUSB() {
		t.Error("ttyS0 without USB metadata reported as USB")
	}
	if !(&PortInfo{Name: "ttyUSB0", VendorID: "0403"}).IsUSB() {
		t.Error("port with a vendor id not reported as USB")
	}
}

func TestCatalogFunc(t *testing.T) {
	want := []string{"/dev/ttyS0", "/dev/ttyUSB0"}
	var c Catalog = CatalogFunc(func() ([]string, error) { return want, nil })

	got, err := c.ListPorts()
	if err != nil {
		t.Fatalf("ListPorts failed: %v", err)
	}
	if !slices.Equal(got, want) {
		t.Errorf("ListPorts() = %v, expected %v", got, want)
	}
}

func TestListPortInfoCatalogError(t *testing.T) {
	boom := errors.New("scan failed")
	_, err := ListPortInfo(CatalogFunc(func() ([]string, error) { return nil, boom }))
	if !errors.Is(err, boom) {
		t.Errorf("expected catalog error, got %v", err)
	}
}

func TestListPortsIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ports, err := SystemCatalog.ListPorts()
	if err != nil {
		t.Fatalf("ListPorts failed: %v", err)
	}

	t.Logf("Found %d serial ports:", len(ports))
	for i, port := range ports {
		info, err := GetPortInfo(port)
		if err != nil {
			t.Logf("  %d. %s (error getting info: %v)", i+1, port, err)
		} else {
			t.Logf("  %d. %s (%s)", i+1, port, info.Description)
		}
	}
}

func BenchmarkListPorts(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := ListPorts(); err != nil {
			b.Errorf("ListPorts failed: %v", err)
		}
	}
}

func TestListPortInfoIDsMatchIndexResolution(t *testing.T) {
	catalog := staticCatalog("/nonexistent/ttyUSB0", "/nonexistent/ttyS1", "/nonexistent/ttyACM2")

	infos, err := ListPortInfo(catalog)
	require.NoError(t, err)
	require.Len(t, infos, 3)

	r, _ := newTestResolver(catalog)
	for i, info := range infos {
		name, err := r.ResolveByIndex(i + 1)
		require.NoError(t, err)
		require.Equal(t, info.Path, name, "row %d", i+1)
	}
	require.Equal(t, "USB Serial Port", infos[0].Description)
}

func TestDescribePortFallsBack(t *testing.T) {
	failing := PortDescriber(func(string) (*PortInfo, error) { return nil, ErrDeviceNotFound })

	info := describePort(failing, "/dev/ttyACM3")
	require.Equal(t, &PortInfo{Name: "ttyACM3", Path: "/dev/ttyACM3", Description: "USB CDC/ACM Device"}, info)
}
