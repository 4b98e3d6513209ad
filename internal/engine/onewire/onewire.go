// Package onewire abstracts the 1-Wire/DS18B20 probe bus (SPEC_FULL
// §4.8): a Bus interface with a deterministic fake for tests and a
// Linux sysfs-backed implementation for real hardware.
package onewire

import "context"

// DeviceAddress is a probe's 1-Wire ROM address, used as the stable
// models.Probe.ID once parsed to a uint64.
type DeviceAddress string

// Bus scans for, converts, and reads DS18B20-class devices.
type Bus interface {
	// Scan enumerates devices currently present on the bus.
	Scan(ctx context.Context) ([]DeviceAddress, error)

	// Convert triggers a temperature conversion on addr. May block up
	// to ~750ms for 12-bit resolution, per SPEC_FULL §5.
	Convert(ctx context.Context, addr DeviceAddress) error

	// Read returns the most recently converted temperature in
	// Celsius.
	Read(ctx context.Context, addr DeviceAddress) (float64, error)
}
