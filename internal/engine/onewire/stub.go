//go:build !linux

package onewire

import (
	"context"
	"errors"
)

type unsupportedBus struct{}

// NewLinuxBus is not available on non-Linux platforms.
func NewLinuxBus() Bus { return unsupportedBus{} }

func (unsupportedBus) Scan(ctx context.Context) ([]DeviceAddress, error) {
	return nil, errors.New("onewire: not supported on this platform (requires Linux)")
}

func (unsupportedBus) Convert(ctx context.Context, addr DeviceAddress) error {
	return errors.New("onewire: not supported on this platform (requires Linux)")
}

func (unsupportedBus) Read(ctx context.Context, addr DeviceAddress) (float64, error) {
	return 0, errors.New("onewire: not supported on this platform (requires Linux)")
}
