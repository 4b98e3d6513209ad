package models

import "time"

// MashStep is one stage of a mash schedule: a ramp to Temperature over
// StepTime minutes, followed by Time minutes holding at that
// temperature.
type MashStep struct {
	Index                  int     `json:"index"`
	Name                   string  `json:"name"`
	Temperature            float64 `json:"temperature"`
	StepTime               int     `json:"stepTime" yaml:"stepTime"`
	Time                   int     `json:"time"`
	AllowBoost             bool    `json:"allowBoost" yaml:"allowBoost"`
	ExtendStepTimeIfNeeded bool    `json:"extendStepTimeIfNeeded" yaml:"extendStepTimeIfNeeded"`
}

// Notification fires a buzzer/speaker alert at a point in the schedule,
// anchored to the start of RefStepIndex plus TimeFromStart minutes.
type Notification struct {
	Name          string    `json:"name"`
	Message       string    `json:"message"`
	TimeFromStart int       `json:"timeFromStart" yaml:"timeFromStart"`
	RefStepIndex  int       `json:"refStepIndex" yaml:"refStepIndex"`
	Buzzer        bool      `json:"buzzer"`
	TimeAbsolute  int       `json:"timeAbsolute"`
	TimePoint     time.Time `json:"timePoint"`
	Done          bool      `json:"done"`
}

// MashSchedule is a named, ordered recipe: steps sorted by Index,
// notifications sorted by TimeAbsolute. Temporary schedules are
// excluded from persistence.
type MashSchedule struct {
	Name          string         `json:"name"`
	Boil          bool           `json:"boil"`
	Steps         []MashStep     `json:"steps"`
	Notifications []Notification `json:"notifications"`
	Temporary     bool           `json:"temporary"`
}

// RecalculateNotificationTimes recomputes every notification's
// TimeAbsolute from the current step list, per SPEC_FULL §4.5 step 4:
// TimeAbsolute = Σ(stepTime+time) of steps with index < RefStepIndex,
// plus TimeFromStart.
func (s *MashSchedule) RecalculateNotificationTimes() {
	prefix := make([]int, len(s.Steps)+1)
	for i, step := range s.Steps {
		prefix[i+1] = prefix[i] + step.StepTime + step.Time
	}
	for i := range s.Notifications {
		n := &s.Notifications[i]
		offset := 0
		if n.RefStepIndex >= 0 && n.RefStepIndex < len(prefix) {
			offset = prefix[n.RefStepIndex]
		} else if n.RefStepIndex >= len(prefix) {
			offset = prefix[len(prefix)-1]
		}
		n.TimeAbsolute = offset + n.TimeFromStart
	}
}
