//go:build !linux

package serial

import (
	"path/filepath"

	bugst "go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// ListPorts returns the serial ports reported by the OS, in the order the
// OS reports them (COM*, /dev/tty.*, /dev/cu.*).
func ListPorts() ([]string, error) {
	ports, err := bugst.GetPortsList()
	if err != nil {
		return nil, err
	}
	return ports, nil
}

// newPortDescriber enumerates the ports once and answers every lookup from
// that snapshot
func newPortDescriber() PortDescriber {
	details, err := enumerator.GetDetailedPortsList()
	byName := make(map[string]*enumerator.PortDetails, len(details))
	for _, d := range details {
		byName[d.Name] = d
	}

	return func(name string) (*PortInfo, error) {
		if err != nil {
			return nil, err
		}
		d, ok := byName[name]
		if !ok {
			return nil, ErrDeviceNotFound
		}
		return portInfoFromDetails(d), nil
	}
}

// GetPortInfo returns detailed information about a specific port
func GetPortInfo(portPath string) (*PortInfo, error) {
	return newPortDescriber()(portPath)
}

func portInfoFromDetails(d *enumerator.PortDetails) *PortInfo {
	info := &PortInfo{
		Name:        filepath.Base(d.Name),
		Path:        d.Name,
		Description: getPortDescription(d.Name),
	}
	if d.IsUSB {
		info.VendorID = d.VID
		info.ProductID = d.PID
		info.SerialNumber = d.SerialNumber
		info.Product = d.Product
		if info.Description == "Serial Port" || info.Description == "Communications Port" {
			info.Description = "USB Serial Port"
		}
	}
	return info
}
