//go:build !linux

package gpio

import "errors"

func newRealWriter(pins []int, invert bool) (Writer, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}
