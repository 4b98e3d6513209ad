//go:build linux

package gpio

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

// RealWriter drives actual GPIO lines via the Linux GPIO character
// device, grounded on sweeney-boiler-sensor/internal/gpio/real.go's
// RealReader (same chip-open/line-request/close shape, as an output
// writer instead of an input reader).
type RealWriter struct {
	mu     sync.Mutex
	chip   *gpiocdev.Chip
	lines  map[int]*gpiocdev.Line
	invert bool
}

func newRealWriter(pins []int, invert bool) (Writer, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	w := &RealWriter{chip: chip, lines: make(map[int]*gpiocdev.Line), invert: invert}
	for _, pin := range pins {
		initial := rawLevel(invert, false)
		line, err := chip.RequestLine(pin, gpiocdev.AsOutput(initial))
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("request pin %d: %w", pin, err)
		}
		w.lines[pin] = line
	}
	return w, nil
}

func rawLevel(invert, on bool) int {
	if on != invert {
		return 1
	}
	return 0
}

func (w *RealWriter) Set(pin int, on bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	line, ok := w.lines[pin]
	if !ok {
		return fmt.Errorf("gpio: pin %d not requested", pin)
	}
	return line.SetValue(rawLevel(w.invert, on))
}

func (w *RealWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var errs []error
	for pin, line := range w.lines {
		if err := line.SetValue(rawLevel(w.invert, false)); err != nil {
			errs = append(errs, fmt.Errorf("reset pin %d: %w", pin, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", pin, err))
		}
	}
	if w.chip != nil {
		if err := w.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
