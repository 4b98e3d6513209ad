package engine

import "time"

// speakerAnnounceDuration bounds how long the speaker pins stay driven
// for a fired notification; the buzzer's own duration is configured
// per-installation via SystemSettings.BuzzerTime.
const speakerAnnounceDuration = 3 * time.Second

// tickBuzzer is the sole consumer of notifyCh (SPEC_FULL §5's
// single-writer convention, applied here to the notification
// channel): it drains at most one fired notification per tick, arms
// the buzzer window when the notification requests it, and always
// arms the speaker window so a spoken announcement is never dropped
// just because its buzzer flag was false.
func (c *Core) tickBuzzer(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case n := <-c.notifyCh:
		if n.Buzzer {
			c.buzzerUntil = now.Add(time.Duration(c.sysSettings.BuzzerTime) * time.Second)
		}
		c.speakerUntil = now.Add(speakerAnnounceDuration)
	default:
	}

	_ = c.gpioW.Set(c.sysSettings.BuzzerPin, now.Before(c.buzzerUntil))
}

func (c *Core) tickSpeaker(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	on := now.Before(c.speakerUntil)
	_ = c.gpioW.Set(c.sysSettings.Speaker1Pin, on)
	_ = c.gpioW.Set(c.sysSettings.Speaker2Pin, on)
}
