package engine

import (
	"time"

	"brewctl/internal/engine/telemetry"
	"brewctl/internal/models"
)

// tickRunner drives the schedule runner state machine (C6). A "no
// delay" result re-enters the state machine immediately within the
// same tick rather than waiting for the next 1s period, per SPEC_FULL
// §4.6 and Design Note "per-tick no delay". Boost/overtime/step
// transitions and fired notifications are persisted to the event
// trail (SPEC_FULL §7) once mu is released, so a SQLite write never
// blocks another loop's tick.
func (c *Core) tickRunner(now time.Time) {
	c.mu.Lock()

	if !c.state.ControlRun || c.runner == nil {
		c.mu.Unlock()
		return
	}

	var events []models.Event
	for {
		prevBoost := c.state.BoostStatus
		prevOverTime := c.state.InOverTime
		prevStep := c.state.CurrentMashStep

		noDelay, terminate, fired := c.runner.tick(&c.state, now)

		if c.state.BoostStatus != prevBoost {
			events = append(events, boostEvent(c.state.BoostStatus, now))
		}
		if c.state.InOverTime != prevOverTime {
			events = append(events, overTimeEvent(c.state.InOverTime, now))
			if c.pub != nil {
				event := "overtime_exit"
				if c.state.InOverTime {
					event = "overtime_enter"
				}
				_ = c.pub.PublishSystem(telemetry.SystemEvent{Time: now, Event: event})
			}
		}
		if c.state.CurrentMashStep != prevStep {
			events = append(events, stepAdvanceEvent(prevStep, c.state.CurrentMashStep, now))
		}

		for _, n := range fired {
			select {
			case c.notifyCh <- n:
			default:
			}
			if c.pub != nil {
				_ = c.pub.PublishSystem(telemetry.SystemEvent{Time: now, Event: "notification", Detail: n.Name})
			}
			events = append(events, notificationEvent(n, now))
		}

		if terminate {
			events = append(events, c.stopRunLocked(now))
			break
		}
		if !noDelay {
			break
		}
	}

	c.mu.Unlock()

	for _, ev := range events {
		c.recordEvent(ev)
	}
}

// stopRunLocked ends the active run (SPEC_FULL §4.6 termination / the
// Stop command). Caller must already hold mu, and is responsible for
// persisting the returned event once mu is released.
func (c *Core) stopRunLocked(now time.Time) models.Event {
	schedule := c.state.SelectedSchedule
	runVersion := c.state.RunningVersion
	c.state.ControlRun = false
	c.state.BoostStatus = models.BoostOff
	c.state.InOverTime = false
	c.state.Status = "Idle"
	c.runner = nil
	if c.pub != nil {
		_ = c.pub.PublishSystem(telemetry.SystemEvent{Time: now, Event: "stop"})
	}
	if c.log != nil {
		c.log.With("schedule", schedule, "runVersion", runVersion).Infow("run_stopped")
	}
	return models.Event{Type: models.EventRunStop, Description: "run stopped", Metadata: map[string]any{"schedule": schedule}, OccurredAt: now}
}

func boostEvent(status models.BoostStatus, now time.Time) models.Event {
	if status == models.Boost {
		return models.Event{Type: models.EventBoostOn, Description: "boost engaged", OccurredAt: now}
	}
	return models.Event{Type: models.EventBoostOff, Description: "boost disengaged", OccurredAt: now}
}

func overTimeEvent(inOverTime bool, now time.Time) models.Event {
	if inOverTime {
		return models.Event{Type: models.EventOverTimeEnter, Description: "entered overtime", OccurredAt: now}
	}
	return models.Event{Type: models.EventOverTimeExit, Description: "exited overtime", OccurredAt: now}
}

func stepAdvanceEvent(prevStep, step int, now time.Time) models.Event {
	return models.Event{
		Type:        models.EventStepAdvance,
		Description: "advanced to next mash step",
		Metadata:    map[string]any{"from": prevStep, "to": step},
		OccurredAt:  now,
	}
}

func notificationEvent(n models.Notification, now time.Time) models.Event {
	return models.Event{
		Type:        models.EventNotificationFired,
		Description: n.Name,
		Metadata:    map[string]any{"message": n.Message},
		OccurredAt:  now,
	}
}
