package onewire

import (
	"context"
	"sync"
)

// FakeBus is a deterministic, in-memory test double. Readings are set
// directly by tests rather than produced by any simulated physics.
type FakeBus struct {
	mu        sync.Mutex
	devices   []DeviceAddress
	readings  map[DeviceAddress]float64
	ConvertErr error
	ReadErr   error
}

func NewFakeBus() *FakeBus {
	return &FakeBus{readings: make(map[DeviceAddress]float64)}
}

func (f *FakeBus) Scan(ctx context.Context) ([]DeviceAddress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]DeviceAddress, len(f.devices))
	copy(out, f.devices)
	return out, nil
}

func (f *FakeBus) Convert(ctx context.Context, addr DeviceAddress) error {
	return f.ConvertErr
}

func (f *FakeBus) Read(ctx context.Context, addr DeviceAddress) (float64, error) {
	if f.ReadErr != nil {
		return 0, f.ReadErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readings[addr], nil
}

// AddDevice registers addr with an initial reading and makes it
// visible to Scan.
func (f *FakeBus) AddDevice(addr DeviceAddress, reading float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.devices = append(f.devices, addr)
	f.readings[addr] = reading
}

// SetReading updates addr's reading for the next Read call.
func (f *FakeBus) SetReading(addr DeviceAddress, reading float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readings[addr] = reading
}
