//go:build linux

package onewire

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const w1BusPath = "/sys/bus/w1/devices"

// sysfsBus reads the kernel's w1-gpio/w1-therm driver tree. There is
// no ecosystem Go client for this (the original firmware's 1-Wire
// master is the ESP32 RMT peripheral, which has no Linux analogue);
// the kernel's virtual filesystem is the idiomatic Linux answer and
// needs nothing beyond os.ReadFile — see DESIGN.md for why this is the
// one stdlib-only component in the repository.
type sysfsBus struct {
	basePath string
}

// NewLinuxBus returns a Bus backed by the kernel's 1-Wire sysfs tree.
func NewLinuxBus() Bus {
	return &sysfsBus{basePath: w1BusPath}
}

func (b *sysfsBus) Scan(ctx context.Context) ([]DeviceAddress, error) {
	entries, err := os.ReadDir(b.basePath)
	if err != nil {
		return nil, fmt.Errorf("scan 1-wire bus: %w", err)
	}
	var out []DeviceAddress
	for _, e := range entries {
		// DS18B20-family devices have the "28-" family prefix.
		if strings.HasPrefix(e.Name(), "28-") {
			out = append(out, DeviceAddress(e.Name()))
		}
	}
	return out, nil
}

// Convert triggers a conversion by reading w1_slave, which the kernel
// driver performs synchronously on read; it may block up to ~750ms
// for 12-bit resolution.
func (b *sysfsBus) Convert(ctx context.Context, addr DeviceAddress) error {
	_, err := os.ReadFile(filepath.Join(b.basePath, string(addr), "w1_slave"))
	if err != nil {
		return fmt.Errorf("convert %s: %w", addr, err)
	}
	return nil
}

func (b *sysfsBus) Read(ctx context.Context, addr DeviceAddress) (float64, error) {
	data, err := os.ReadFile(filepath.Join(b.basePath, string(addr), "w1_slave"))
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", addr, err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) < 2 {
		return 0, fmt.Errorf("read %s: malformed w1_slave output", addr)
	}
	const marker = "t="
	idx := strings.Index(lines[1], marker)
	if idx < 0 {
		return 0, fmt.Errorf("read %s: no temperature field", addr)
	}
	milliC, err := strconv.Atoi(lines[1][idx+len(marker):])
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", addr, err)
	}
	return float64(milliC) / 1000, nil
}
