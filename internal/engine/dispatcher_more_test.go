package engine

import (
	"context"
	"testing"

	"brewctl/internal/engine/onewire"
	"brewctl/internal/models"
)

func TestDispatch_Data_ReturnsSnapshot(t *testing.T) {
	c := newTestCore()
	c.state.Temperature = 65.4
	c.state.TargetTemperature = 66

	res := c.Dispatch(context.Background(), "Data", nil)
	if !res.Success {
		t.Fatalf("Data failed: %+v", res)
	}
	snap, ok := res.Data.(models.Snapshot)
	if !ok || snap.Temp != 65.4 || snap.TargetTemp != 66 {
		t.Fatalf("got %+v, want a snapshot of the current temperature/target", res.Data)
	}
}

func TestDispatch_GetRunningSchedule_NoActiveRun_Fails(t *testing.T) {
	c := newTestCore()
	res := c.Dispatch(context.Background(), "GetRunningSchedule", nil)
	if res.Success {
		t.Fatalf("expected failure with no active run")
	}
}

func TestDispatch_GetRunningSchedule_AfterStart_ReturnsSteps(t *testing.T) {
	c := newTestCore()
	ctx := context.Background()
	c.Dispatch(ctx, "Start", mustJSON(map[string]any{"targetTemp": 65.0}))

	res := c.Dispatch(ctx, "GetRunningSchedule", nil)
	if !res.Success {
		t.Fatalf("GetRunningSchedule failed: %+v", res)
	}
}

func TestDispatch_SetOverrideOutput_SetsManualOverrideAndResetsPidTimer(t *testing.T) {
	c := newTestCore()
	value := 55.0
	res := c.Dispatch(context.Background(), "SetOverrideOutput", mustJSON(map[string]*float64{"value": &value}))
	if !res.Success {
		t.Fatalf("SetOverrideOutput failed: %+v", res)
	}
	if c.state.ManualOverrideOutput == nil || *c.state.ManualOverrideOutput != 55 {
		t.Fatalf("got ManualOverrideOutput=%v, want 55", c.state.ManualOverrideOutput)
	}
	if !c.state.ResetPidTimer {
		t.Fatalf("expected ResetPidTimer to be set so the next window picks up the override")
	}
}

func TestDispatch_StartStirStopStir_TogglesStirEnabled(t *testing.T) {
	c := newTestCore()
	ctx := context.Background()

	if res := c.Dispatch(ctx, "StartStir", nil); !res.Success || !c.stirEnabled {
		t.Fatalf("expected StartStir to enable stirring, got success=%v enabled=%v", res.Success, c.stirEnabled)
	}
	if res := c.Dispatch(ctx, "StopStir", nil); !res.Success || c.stirEnabled {
		t.Fatalf("expected StopStir to disable stirring, got success=%v enabled=%v", res.Success, c.stirEnabled)
	}
}

func TestDispatch_SetMashSchedule_StagesTemporarySchedule(t *testing.T) {
	c := newTestCore()
	sched := models.MashSchedule{Name: "Staged", Steps: []models.MashStep{{Index: 0, Temperature: 50, Time: 10}}}

	res := c.Dispatch(context.Background(), "SetMashSchedule", mustJSON(sched))
	if !res.Success {
		t.Fatalf("SetMashSchedule failed: %+v", res)
	}
	got, ok := res.Data.(models.MashSchedule)
	if !ok || !got.Temporary {
		t.Fatalf("got %+v, want a schedule staged as temporary", res.Data)
	}
	if len(c.schedules) != 1 {
		t.Fatalf("got %d schedules, want 1 staged in memory", len(c.schedules))
	}
}

func TestDispatch_DeleteMashSchedule(t *testing.T) {
	c := newTestCore()
	ctx := context.Background()
	c.Dispatch(ctx, "SaveMashSchedule", mustJSON(models.MashSchedule{Name: "Disposable"}))

	res := c.Dispatch(ctx, "DeleteMashSchedule", mustJSON(map[string]string{"name": "Disposable"}))
	if !res.Success {
		t.Fatalf("DeleteMashSchedule failed: %+v", res)
	}
	if len(c.schedules) != 0 {
		t.Fatalf("got %d schedules after delete, want 0", len(c.schedules))
	}

	missing := c.Dispatch(ctx, "DeleteMashSchedule", mustJSON(map[string]string{"name": "Disposable"}))
	if missing.Success {
		t.Fatalf("expected deleting an already-removed schedule to fail")
	}
}

func TestDispatch_GetTempSettings_SaveTempSettings_RoundTrips(t *testing.T) {
	c := newTestCore()
	ctx := context.Background()
	probes := []models.Probe{{ID: 1, Name: "Mash Tun", Gain: 1}}

	saveRes := c.Dispatch(ctx, "SaveTempSettings", mustJSON(probes))
	if !saveRes.Success {
		t.Fatalf("SaveTempSettings failed: %+v", saveRes)
	}

	getRes := c.Dispatch(ctx, "GetTempSettings", nil)
	got, ok := getRes.Data.([]models.Probe)
	if !ok || len(got) != 1 || got[0].Name != "Mash Tun" {
		t.Fatalf("got %+v, want the saved probe list back", getRes.Data)
	}
}

func TestDispatch_DetectTempSensors_AddsNewProbeAndTracksItsAddress(t *testing.T) {
	bus := onewire.NewFakeBus()
	addr := onewire.DeviceAddress("28-0000000000ab")
	bus.AddDevice(addr, 21)

	c := NewCore(nil, nil, bus, nil, nil, nil, nil, nil, models.PIDSettings{}, models.SystemSettings{})

	res := c.Dispatch(context.Background(), "DetectTempSensors", nil)
	if !res.Success {
		t.Fatalf("DetectTempSensors failed: %+v", res)
	}
	got, ok := res.Data.([]models.Probe)
	if !ok || len(got) != 1 || !got[0].Connected {
		t.Fatalf("got %+v, want one newly connected probe", res.Data)
	}
	wantID, _ := addressToID(addr)
	if got[0].ID != wantID {
		t.Fatalf("got ID=%d, want %d (parsed from the 1-Wire address)", got[0].ID, wantID)
	}
	if _, tracked := c.probeAddr[wantID]; !tracked {
		t.Fatalf("expected the detected probe's address to be tracked for future reads")
	}
}

func TestDispatch_DetectTempSensors_RemovedDeviceStaysKnownButDisconnected(t *testing.T) {
	bus := onewire.NewFakeBus()
	c := NewCore(nil, nil, bus, nil, nil, nil, []models.Probe{{ID: 99, Name: "Stale", Connected: true}}, nil, models.PIDSettings{}, models.SystemSettings{})

	res := c.Dispatch(context.Background(), "DetectTempSensors", nil)
	if !res.Success {
		t.Fatalf("DetectTempSensors failed: %+v", res)
	}
	got := res.Data.([]models.Probe)
	if len(got) != 1 || got[0].Connected {
		t.Fatalf("got %+v, want the stale probe kept but marked disconnected", got)
	}
}

func TestDispatch_GetSystemSettings_SaveSystemSettings_RoundTrips(t *testing.T) {
	c := newTestCore()
	ctx := context.Background()
	sys := models.SystemSettings{StirPin: 7, BuzzerPin: 8}

	saveRes := c.Dispatch(ctx, "SaveSystemSettings", mustJSON(sys))
	if !saveRes.Success {
		t.Fatalf("SaveSystemSettings failed: %+v", saveRes)
	}
	if saveRes.Message == "" {
		t.Fatalf("expected SaveSystemSettings to warn that a reboot is required")
	}

	getRes := c.Dispatch(ctx, "GetSystemSettings", nil)
	got, ok := getRes.Data.(models.SystemSettings)
	if !ok || got != sys {
		t.Fatalf("got %+v, want %+v", got, sys)
	}
}

func TestDispatch_PlatformCommands_Succeed(t *testing.T) {
	c := newTestCore()
	for _, cmd := range []string{"Reboot", "FactoryReset", "BootIntoRecovery"} {
		if res := c.Dispatch(context.Background(), cmd, nil); !res.Success {
			t.Fatalf("%s failed: %+v", cmd, res)
		}
	}
}
