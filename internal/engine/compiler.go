package engine

import (
	"time"

	"brewctl/internal/models"
)

// compileSchedule turns a mash schedule into an ordered list of
// execution steps plus notification time points (SPEC_FULL §4.5).
// currentTemp anchors the synthetic index-0 step.
func compileSchedule(schedule models.MashSchedule, now time.Time, currentTemp float64) ([]models.ExecutionStep, []models.Notification) {
	steps := make([]models.ExecutionStep, 0, len(schedule.Steps)*2+1)
	steps = append(steps, models.ExecutionStep{
		Time:        now,
		Temperature: currentTemp,
	})

	prevTime := now
	for _, step := range schedule.Steps {
		prevTime = prevTime.Add(time.Duration(step.StepTime) * time.Minute)
		steps = append(steps, models.ExecutionStep{
			Time:           prevTime,
			Temperature:    step.Temperature,
			AllowBoost:     step.AllowBoost,
			ExtendIfNeeded: step.ExtendStepTimeIfNeeded,
		})

		prevTime = prevTime.Add(time.Duration(step.Time) * time.Minute)
		steps = append(steps, models.ExecutionStep{
			Time:        prevTime,
			Temperature: step.Temperature,
		})
	}

	schedule.RecalculateNotificationTimes()
	notifications := make([]models.Notification, len(schedule.Notifications))
	copy(notifications, schedule.Notifications)
	for i := range notifications {
		notifications[i].TimePoint = now.Add(time.Duration(notifications[i].TimeAbsolute) * time.Minute)
		notifications[i].Done = false
	}

	return steps, notifications
}
