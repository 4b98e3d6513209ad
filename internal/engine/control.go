package engine

import (
	"time"

	"brewctl/internal/models"
)

// tickControl is the combined PID+duty loop (C2/C3). It recomputes the
// PID output once per pidLoopTime-second window and re-derives each
// heater's per-second burn flag from the window's duty plan every
// tick, per SPEC_FULL §4.2/§4.3.
func (c *Core) tickControl(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.ControlRun {
		if c.pid != nil {
			c.pid.reset()
		}
		c.windowSecond = 0
		c.state.PIDOutput = 0
		c.state.OutputPercent = 0
		for i := range c.heaters {
			c.heaters[i].Burn = false
		}
		return
	}

	loopTime := c.pidSettings.PidLoopTime
	if loopTime <= 0 {
		loopTime = 1
	}

	newWindow := c.windowStart.IsZero() || c.state.ResetPidTimer || now.Sub(c.windowStart) >= time.Duration(loopTime)*time.Second
	if newWindow {
		c.windowStart = now
		c.windowSecond = 0
		c.state.ResetPidTimer = false

		raw := c.pid.calculate(c.state.Temperature, c.state.TargetTemperature, now)
		output := raw

		switch {
		case c.state.ManualOverrideOutput != nil:
			output = *c.state.ManualOverrideOutput
		case c.state.BoostStatus == models.Boost:
			output = 100
			raw = 100
		case raw > c.pidSettings.HeaterLimit:
			output = c.pidSettings.HeaterLimit
			raw = c.pidSettings.HeaterLimit
		case c.state.BoostStatus == models.Rest:
			output = 0
		}

		c.state.PIDOutput = raw
		c.state.OutputPercent = output

		enabled := enabledHeaters(c.heaters, c.state.BoilRun)
		total := totalWattage(enabled)
		planned := planDuty(enabled, c.state.OutputPercent, total, c.pidSettings.RelayGuard)
		applyDutyPlan(c.heaters, planned)
	}

	for i := range c.heaters {
		c.heaters[i].Burn = burnAt(c.heaters[i].BurnTime, loopTime, c.pidSettings.HeaterCycles, c.windowSecond)
		if c.heaters[i].Burn {
			c.state.PowerUsageJ += c.heaters[i].Watt
		}
	}
	c.windowSecond++
}

// applyDutyPlan writes BurnTime/Enabled from a preference-sorted plan
// back onto heaters in their original order, matched by ID.
func applyDutyPlan(heaters []models.Heater, plan []models.Heater) {
	byID := make(map[int]models.Heater, len(plan))
	for _, h := range plan {
		byID[h.ID] = h
	}
	for i := range heaters {
		if p, ok := byID[heaters[i].ID]; ok {
			heaters[i].BurnTime = p.BurnTime
			heaters[i].Enabled = p.Enabled
		}
	}
}
