package engine

import (
	"context"
	"time"

	"brewctl/internal/engine/onewire"
	"brewctl/internal/engine/telemetry"
	"brewctl/internal/models"
)

// probeConvertTimeout bounds a single 1-Wire conversion, per SPEC_FULL
// §5's note that the sensor reader yields synchronously to the bus for
// up to ~750ms at 12-bit resolution.
const probeConvertTimeout = 800 * time.Millisecond

// tickSensors is the sensor reader (C1). It reads every configured
// probe, applies calibration and scale conversion, computes the
// control-fused average, and (while controlRun) appends to the temp
// log every 5th cycle and publishes a telemetry sample every cycle.
func (c *Core) tickSensors(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.SkipTempLoop {
		return
	}

	for i := range c.probes {
		p := &c.probes[i]
		addr, ok := c.probeAddr[p.ID]
		if !ok || !p.Connected {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), probeConvertTimeout)
		reading, err := c.readProbe(ctx, addr)
		cancel()
		if err != nil {
			p.Connected = false
			p.LastReading = 0
			delete(c.state.Probes, p.ID)
			continue
		}

		temp := p.Calibrate(reading)
		if c.sysSettings.TempScale == models.Fahrenheit {
			temp = temp*9/5 + 32
		}
		p.LastReading = temp
		if p.Show {
			c.state.Probes[p.ID] = temp
		}
	}

	c.state.Temperature = fusedControlTemperature(c.probes)

	if c.state.ControlRun {
		c.cycle++
		if c.cycle%5 == 0 {
			c.state.TempLog = appendTempLog(c.state.TempLog, now, c.state.Temperature)
		}
		if c.pub != nil {
			_ = c.pub.PublishSample(telemetry.Sample{
				Time:   now,
				Temp:   c.state.Temperature,
				Target: c.state.TargetTemperature,
				Output: c.state.OutputPercent,
			})
		}
	} else {
		c.cycle = 0
	}
}

func (c *Core) readProbe(ctx context.Context, addr onewire.DeviceAddress) (float64, error) {
	if err := c.bus.Convert(ctx, addr); err != nil {
		return 0, err
	}
	return c.bus.Read(ctx, addr)
}

// fusedControlTemperature averages every connected, useForControl
// probe's last reading. With no control probe configured the fused
// value is zero (SPEC_FULL §4.1 / Open Question resolved: no division
// by zero, no stale iterator read).
func fusedControlTemperature(probes []models.Probe) float64 {
	var sum float64
	var n int
	for _, p := range probes {
		if p.UseForControl && p.Connected {
			sum += p.LastReading
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
