package engine

import (
	"testing"
	"time"

	"brewctl/internal/models"
)

func sampleSchedule() models.MashSchedule {
	sched := models.MashSchedule{
		Name: "Test",
		Steps: []models.MashStep{
			{Index: 0, Name: "Dough In", Temperature: 67, StepTime: 5, Time: 45, AllowBoost: true},
			{Index: 1, Name: "Mash Out", Temperature: 75, StepTime: 5, Time: 10},
		},
		Notifications: []models.Notification{
			{Name: "Add Grains", TimeFromStart: 5, RefStepIndex: 0, Buzzer: true},
		},
	}
	return sched
}

func TestCompileSchedule_AnchorsSyntheticIndexZero(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	steps, _ := compileSchedule(sampleSchedule(), now, 20)

	if len(steps) != 5 {
		t.Fatalf("got %d steps, want 5 (1 anchor + 2 per mash step)", len(steps))
	}
	if steps[0].Time != now || steps[0].Temperature != 20 {
		t.Fatalf("anchor step = %+v, want {Time: %v, Temperature: 20}", steps[0], now)
	}
}

func TestCompileSchedule_RampAndHoldTimesAccumulate(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	steps, _ := compileSchedule(sampleSchedule(), now, 20)

	rampEnd := now.Add(5 * time.Minute)
	holdEnd := rampEnd.Add(45 * time.Minute)

	if !steps[1].Time.Equal(rampEnd) {
		t.Fatalf("ramp end = %v, want %v", steps[1].Time, rampEnd)
	}
	if steps[1].Temperature != 67 {
		t.Fatalf("ramp target = %.0f, want 67", steps[1].Temperature)
	}
	if !steps[2].Time.Equal(holdEnd) {
		t.Fatalf("hold end = %v, want %v", steps[2].Time, holdEnd)
	}
}

func TestCompileSchedule_NotificationTimePointsAreAbsolute(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	_, notifications := compileSchedule(sampleSchedule(), now, 20)

	if len(notifications) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifications))
	}
	want := now.Add(5 * time.Minute)
	if !notifications[0].TimePoint.Equal(want) {
		t.Fatalf("notification time point = %v, want %v", notifications[0].TimePoint, want)
	}
	if notifications[0].Done {
		t.Fatalf("freshly compiled notification must start undone")
	}
}
