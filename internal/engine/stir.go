package engine

import "time"

// stirOnDuration and stirOffDuration define the fixed cycle the stir
// motor runs while enabled. StartStir/StopStir are out of core scope
// per SPEC_FULL §4.7; this is the minimal stand-in the runner and
// telemetry snapshot can still observe through stirStatus.
const (
	stirOnDuration  = 10 * time.Second
	stirOffDuration = 50 * time.Second
)

func (c *Core) tickStir(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.stirEnabled || !c.state.ControlRun {
		if c.stirOn {
			c.stirOn = false
			_ = c.gpioW.Set(c.sysSettings.StirPin, false)
		}
		c.state.StirStatus = "Off"
		return
	}

	if c.stirNext.IsZero() || now.After(c.stirNext) {
		c.stirOn = !c.stirOn
		_ = c.gpioW.Set(c.sysSettings.StirPin, c.stirOn)
		if c.stirOn {
			c.stirNext = now.Add(stirOnDuration)
		} else {
			c.stirNext = now.Add(stirOffDuration)
		}
	}

	if c.stirOn {
		c.state.StirStatus = "On"
	} else {
		c.state.StirStatus = "Idle"
	}
}
