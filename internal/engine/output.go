package engine

import "time"

// statusLEDPin mirrors the OR of every heater's burn state, per
// SPEC_FULL §6.3. It is a fixed debug pin, not user-configurable,
// matching the original firmware's hardcoded status LED.
const statusLEDPin = 2

// tickOutput is the output driver (C4): reflect each heater's burn
// flag onto its GPIO, and mirror the OR of all heater states onto the
// status LED. On the tick controlRun transitions to false, every
// heater GPIO is forced off.
func (c *Core) tickOutput(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.prevControlRun && !c.state.ControlRun {
		for _, h := range c.heaters {
			_ = c.gpioW.Set(h.Pin, false)
		}
		_ = c.gpioW.Set(statusLEDPin, false)
		c.prevControlRun = c.state.ControlRun
		return
	}
	c.prevControlRun = c.state.ControlRun

	anyOn := false
	for _, h := range c.heaters {
		_ = c.gpioW.Set(h.Pin, h.Burn)
		anyOn = anyOn || h.Burn
	}
	_ = c.gpioW.Set(statusLEDPin, anyOn)
}
