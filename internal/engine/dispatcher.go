package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"brewctl/internal/engine/onewire"
	"brewctl/internal/engine/telemetry"
	"brewctl/internal/models"
)

// Result is the framed command response, matching spec.md §4.7:
// {data, success, message?}.
type Result struct {
	Data    any    `json:"data,omitempty"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func ok(data any) Result { return Result{Data: data, Success: true} }

func fail(format string, args ...any) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...)}
}

// Dispatch is the transport-free command dispatcher (C7): it accepts
// the command name and its raw JSON payload and mutates/reads Core
// state, holding no HTTP types so it is directly callable from tests
// (SPEC_FULL §4.11).
func (c *Core) Dispatch(ctx context.Context, command string, raw json.RawMessage) Result {
	switch command {
	case "Data":
		return c.cmdData(raw)
	case "GetRunningSchedule":
		return c.cmdGetRunningSchedule()
	case "SetTemp":
		return c.cmdSetTemp(raw)
	case "SetOverrideOutput":
		return c.cmdSetOverrideOutput(raw)
	case "Start":
		return c.cmdStart(ctx, raw)
	case "Stop":
		return c.cmdStop(ctx)
	case "StartStir":
		return c.cmdStartStir()
	case "StopStir":
		return c.cmdStopStir()
	case "GetMashSchedule":
		return c.cmdGetMashSchedule(raw)
	case "SaveMashSchedule":
		return c.cmdSaveMashSchedule(ctx, raw)
	case "SetMashSchedule":
		return c.cmdSetMashSchedule(raw)
	case "DeleteMashSchedule":
		return c.cmdDeleteMashSchedule(ctx, raw)
	case "GetPIDSettings":
		return c.cmdGetPIDSettings()
	case "SavePIDSettings":
		return c.cmdSavePIDSettings(ctx, raw)
	case "GetTempSettings":
		return c.cmdGetTempSettings()
	case "SaveTempSettings":
		return c.cmdSaveTempSettings(ctx, raw)
	case "DetectTempSensors":
		return c.cmdDetectTempSensors(ctx)
	case "GetHeaterSettings":
		return c.cmdGetHeaterSettings()
	case "SaveHeaterSettings":
		return c.cmdSaveHeaterSettings(ctx, raw)
	case "GetSystemSettings":
		return c.cmdGetSystemSettings()
	case "SaveSystemSettings":
		return c.cmdSaveSystemSettings(ctx, raw)
	case "Reboot", "FactoryReset", "BootIntoRecovery":
		return c.cmdPlatform(command)
	default:
		return fail("unknown command: %s", command)
	}
}

func unmarshal[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, nil
	}
	err := json.Unmarshal(raw, &v)
	return v, err
}

// --- Data / telemetry ---

type dataPayload struct {
	LastDate string `json:"lastDate"`
}

func (c *Core) cmdData(raw json.RawMessage) Result {
	p, err := unmarshal[dataPayload](raw)
	if err != nil {
		return fail("bad Data payload: %v", err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := c.snapshotLocked()
	if p.LastDate != "" {
		cursor, err := time.Parse(time.RFC3339, p.LastDate)
		if err == nil {
			snap.TempLog = tempLogSince(c.state.TempLog, cursor)
		}
	}
	return ok(snap)
}

// snapshotLocked is Snapshot's body, reusable by callers that already
// hold mu (RLock is sufficient; Snapshot takes its own).
func (c *Core) snapshotLocked() models.Snapshot {
	temps := make(map[string]float64, len(c.state.Probes))
	for id, v := range c.state.Probes {
		temps[probeKey(id)] = v
	}
	var lastLog string
	var tempLog []models.TempLogEntry
	if e, ok := lastTempLogEntry(c.state.TempLog); ok {
		lastLog = e.Time.UTC().Format(time.RFC3339)
		tempLog = append(tempLog, e)
	}
	return models.Snapshot{
		Temp:                     c.state.Temperature,
		Temps:                    temps,
		TargetTemp:               c.state.TargetTemperature,
		ManualOverrideTargetTemp: c.state.OverrideTargetTemperature,
		Output:                   c.state.PIDOutput,
		ManualOverrideOutput:     c.state.ManualOverrideOutput,
		Status:                   c.state.Status,
		StirStatus:               c.state.StirStatus,
		LastLogDateTime:          lastLog,
		TempLog:                  tempLog,
		RunningVersion:           c.state.RunningVersion,
		InOverTime:               c.state.InOverTime,
		BoostStatus:              c.state.BoostStatus.String(),
		PowerUsage:               c.state.PowerUsageJ,
	}
}

func probeKey(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func (c *Core) cmdGetRunningSchedule() Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.runner == nil {
		return fail("no schedule running")
	}
	return ok(struct {
		Steps          []models.ExecutionStep `json:"steps"`
		Notifications  []models.Notification  `json:"notifications"`
		RunningVersion uint64                 `json:"runningVersion"`
	}{c.runner.steps, c.runner.notifications, c.state.RunningVersion})
}

// --- Override commands ---

type overridePayload struct {
	Value *float64 `json:"value"`
}

func (c *Core) cmdSetTemp(raw json.RawMessage) Result {
	p, err := unmarshal[overridePayload](raw)
	if err != nil {
		return fail("bad SetTemp payload: %v", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.OverrideTargetTemperature = p.Value
	if c.runner == nil && p.Value != nil {
		c.state.TargetTemperature = *p.Value
	}
	c.state.ResetPidTimer = true
	return ok(nil)
}

func (c *Core) cmdSetOverrideOutput(raw json.RawMessage) Result {
	p, err := unmarshal[overridePayload](raw)
	if err != nil {
		return fail("bad SetOverrideOutput payload: %v", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.ManualOverrideOutput = p.Value
	c.state.ResetPidTimer = true
	return ok(nil)
}

// --- Run lifecycle ---

type startPayload struct {
	Schedule   string   `json:"schedule"`
	Boil       bool     `json:"boil"`
	TargetTemp *float64 `json:"targetTemp,omitempty"`
}

func (c *Core) cmdStart(ctx context.Context, raw json.RawMessage) Result {
	p, err := unmarshal[startPayload](raw)
	if err != nil {
		return fail("bad Start payload: %v", err)
	}

	c.mu.Lock()

	if c.state.ControlRun {
		c.mu.Unlock()
		return fail("a run is already active")
	}

	var sched models.MashSchedule
	if p.Schedule != "" {
		found, ok := findScheduleByName(c.schedules, p.Schedule)
		if !ok {
			c.mu.Unlock()
			return fail("schedule not found: %s", p.Schedule)
		}
		sched = found
	} else {
		target := 0.0
		if p.TargetTemp != nil {
			target = *p.TargetTemp
		}
		sched = freeRunSchedule(target, p.Boil)
	}

	now := time.Now()
	steps, notifications := compileSchedule(sched, now, c.state.Temperature)

	c.state.ControlRun = true
	c.state.BoilRun = p.Boil || sched.Boil
	c.state.CurrentMashStep = 1
	c.state.SelectedSchedule = sched.Name
	c.state.Status = "Running"
	c.state.RunningVersion++
	c.state.TargetTemperature = steps[1].Temperature
	c.state.TargetReached = false
	c.state.InOverTime = false
	c.state.ResetPidTimer = true
	c.state.OverrideTargetTemperature = nil
	c.state.ManualOverrideOutput = nil
	c.state.BoostStatus = models.BoostOff
	c.cycle = 0
	c.windowStart = time.Time{}

	kp, ki, kd := c.pidSettings.SelectGains(c.state.BoilRun)
	c.pid = newPIDController(kp, ki, kd, 0, 100, 100)
	c.runner = newRunner(steps, notifications, runnerConfig{
		PidLoopTime:     c.pidSettings.PidLoopTime,
		OverTimeTrigger: c.pidSettings.OverTimeTrigger,
		OverTimeStep:    c.pidSettings.OverTimeStep,
		BoostModeUntil:  c.pidSettings.BoostModeUntil,
		TempMargin:      c.pidSettings.TempMargin,
	})

	if c.pub != nil {
		_ = c.pub.PublishSystem(telemetry.SystemEvent{Time: now, Event: "start", Detail: sched.Name})
	}
	boilRun := c.state.BoilRun
	runVersion := c.state.RunningVersion
	actor := actorFromContext(ctx)
	c.mu.Unlock()

	if c.log != nil {
		c.log.With("schedule", sched.Name, "runVersion", runVersion, "actor", actor).Infow("run_started", "boil", boilRun)
	}
	c.recordEvent(models.Event{
		Type:        models.EventRunStart,
		Description: "run started",
		Actor:       actor,
		Metadata:    map[string]any{"schedule": sched.Name, "boil": boilRun},
		OccurredAt:  now,
	})
	return ok(nil)
}

func (c *Core) cmdStop(ctx context.Context) Result {
	c.mu.Lock()
	if !c.state.ControlRun {
		c.mu.Unlock()
		return fail("no run is active")
	}
	ev := c.stopRunLocked(time.Now())
	ev.Actor = actorFromContext(ctx)
	c.mu.Unlock()

	c.recordEvent(ev)
	return ok(nil)
}

func (c *Core) cmdStartStir() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stirEnabled = true
	return ok(nil)
}

func (c *Core) cmdStopStir() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stirEnabled = false
	return ok(nil)
}

func findScheduleByName(schedules []models.MashSchedule, name string) (models.MashSchedule, bool) {
	for _, s := range schedules {
		if s.Name == name {
			return s, true
		}
	}
	return models.MashSchedule{}, false
}

// freeRunSchedule builds a one-step, effectively indefinite hold at
// target, used when Start is issued without a named schedule.
func freeRunSchedule(target float64, boil bool) models.MashSchedule {
	return models.MashSchedule{
		Name:      "",
		Boil:      boil,
		Temporary: true,
		Steps: []models.MashStep{
			{Index: 0, Name: "Free Run", Temperature: target, StepTime: 0, Time: 60 * 24 * 365},
		},
	}
}

// --- Mash schedule CRUD ---

type scheduleNamePayload struct {
	Name string `json:"name"`
}

func (c *Core) cmdGetMashSchedule(raw json.RawMessage) Result {
	p, err := unmarshal[scheduleNamePayload](raw)
	if err != nil {
		return fail("bad GetMashSchedule payload: %v", err)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if p.Name == "" {
		return ok(c.schedules)
	}
	sched, found := findScheduleByName(c.schedules, p.Name)
	if !found {
		return fail("schedule not found: %s", p.Name)
	}
	return ok(sched)
}

func (c *Core) cmdSaveMashSchedule(ctx context.Context, raw json.RawMessage) Result {
	sched, err := unmarshal[models.MashSchedule](raw)
	if err != nil {
		return fail("bad SaveMashSchedule payload: %v", err)
	}
	if sched.Name == "" {
		return fail("schedule name is required")
	}
	sort.SliceStable(sched.Steps, func(i, j int) bool { return sched.Steps[i].Index < sched.Steps[j].Index })
	sched.RecalculateNotificationTimes()
	sort.SliceStable(sched.Notifications, func(i, j int) bool {
		return sched.Notifications[i].TimeAbsolute < sched.Notifications[j].TimeAbsolute
	})

	c.mu.Lock()
	replaced := false
	for i, s := range c.schedules {
		if s.Name == sched.Name {
			c.schedules[i] = sched
			replaced = true
			break
		}
	}
	if !replaced {
		c.schedules = append(c.schedules, sched)
	}
	snapshot := make([]models.MashSchedule, len(c.schedules))
	copy(snapshot, c.schedules)
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Settings.SaveMashSchedules(ctx, snapshot); err != nil {
			return fail("save mash schedule: %v", err)
		}
	}
	return ok(sched)
}

// cmdSetMashSchedule installs a schedule as the in-memory current one
// without persisting it, for ad-hoc edits staged before Start
// (spec.md §4.7's "Set" verb, distinct from the persisting "Save").
func (c *Core) cmdSetMashSchedule(raw json.RawMessage) Result {
	sched, err := unmarshal[models.MashSchedule](raw)
	if err != nil {
		return fail("bad SetMashSchedule payload: %v", err)
	}
	sched.Temporary = true
	sched.RecalculateNotificationTimes()

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, s := range c.schedules {
		if s.Name == sched.Name {
			c.schedules[i] = sched
			return ok(sched)
		}
	}
	c.schedules = append(c.schedules, sched)
	return ok(sched)
}

func (c *Core) cmdDeleteMashSchedule(ctx context.Context, raw json.RawMessage) Result {
	p, err := unmarshal[scheduleNamePayload](raw)
	if err != nil {
		return fail("bad DeleteMashSchedule payload: %v", err)
	}

	c.mu.Lock()
	idx := -1
	for i, s := range c.schedules {
		if s.Name == p.Name {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return fail("schedule not found: %s", p.Name)
	}
	c.schedules = append(c.schedules[:idx], c.schedules[idx+1:]...)
	snapshot := make([]models.MashSchedule, len(c.schedules))
	copy(snapshot, c.schedules)
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Settings.SaveMashSchedules(ctx, snapshot); err != nil {
			return fail("delete mash schedule: %v", err)
		}
	}
	return ok(nil)
}

// --- PID settings ---

func (c *Core) cmdGetPIDSettings() Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ok(c.pidSettings)
}

func (c *Core) cmdSavePIDSettings(ctx context.Context, raw json.RawMessage) Result {
	p, err := unmarshal[models.PIDSettings](raw)
	if err != nil {
		return fail("bad SavePIDSettings payload: %v", err)
	}
	c.mu.Lock()
	c.pidSettings = p
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Settings.SavePIDSettings(ctx, p); err != nil {
			return fail("save pid settings: %v", err)
		}
	}
	return ok(p)
}

// --- Probe settings ---

func (c *Core) cmdGetTempSettings() Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ok(c.probes)
}

func (c *Core) cmdSaveTempSettings(ctx context.Context, raw json.RawMessage) Result {
	probes, err := unmarshal[[]models.Probe](raw)
	if err != nil {
		return fail("bad SaveTempSettings payload: %v", err)
	}

	c.mu.Lock()
	c.state.SkipTempLoop = true
	c.probes = probes
	c.state.SkipTempLoop = false
	snapshot := make([]models.Probe, len(c.probes))
	copy(snapshot, c.probes)
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Settings.SaveProbes(ctx, snapshot); err != nil {
			return fail("save temp settings: %v", err)
		}
	}
	return ok(snapshot)
}

func (c *Core) cmdDetectTempSensors(ctx context.Context) Result {
	scanCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	addrs, err := c.bus.Scan(scanCtx)
	if err != nil {
		return fail("probe bus scan: %v", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.SkipTempLoop = true
	defer func() { c.state.SkipTempLoop = false }()

	for i := range c.probes {
		c.probes[i].Connected = false
	}

	for _, addr := range addrs {
		id, err := addressToID(addr)
		if err != nil {
			continue
		}
		c.probeAddr[id] = addr
		found := false
		for i := range c.probes {
			if c.probes[i].ID == id {
				c.probes[i].Connected = true
				found = true
				break
			}
		}
		if !found {
			c.probes = append(c.probes, models.Probe{
				ID:        id,
				Name:      fmt.Sprintf("Probe %d", len(c.probes)+1),
				Show:      true,
				Gain:      1,
				Connected: true,
			})
		}
	}

	snapshot := make([]models.Probe, len(c.probes))
	copy(snapshot, c.probes)
	if c.store != nil {
		_ = c.store.Settings.SaveProbes(ctx, snapshot)
	}
	return ok(snapshot)
}

// addressToID derives a probe's stable numeric ID from its 1-Wire ROM
// address ("family-serial" hex, e.g. "28-000005d1c791") by parsing the
// hex digits as a uint64.
func addressToID(addr onewire.DeviceAddress) (uint64, error) {
	s := strings.ReplaceAll(string(addr), "-", "")
	return strconv.ParseUint(s, 16, 64)
}

// --- Heater settings ---

func (c *Core) cmdGetHeaterSettings() Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ok(c.heaters)
}

const maxHeaters = 10

func (c *Core) cmdSaveHeaterSettings(ctx context.Context, raw json.RawMessage) Result {
	heaters, err := unmarshal[[]models.Heater](raw)
	if err != nil {
		return fail("bad SaveHeaterSettings payload: %v", err)
	}

	c.mu.Lock()
	if c.state.ControlRun {
		c.mu.Unlock()
		return fail("cannot save heater settings while a run is active")
	}
	if len(heaters) > maxHeaters {
		heaters = heaters[:maxHeaters]
	}
	for i := range heaters {
		heaters[i].ID = i + 1
	}
	sort.Sort(models.ByPreference(heaters))
	c.heaters = heaters
	snapshot := make([]models.Heater, len(c.heaters))
	copy(snapshot, c.heaters)
	c.mu.Unlock()

	// GPIO lines are opened once for the pin set NewCore was given;
	// a pin change here takes effect on next process start, not
	// immediately, since Writer exposes no way to add a line.

	if c.store != nil {
		if err := c.store.Settings.SaveHeaters(ctx, snapshot); err != nil {
			return fail("save heater settings: %v", err)
		}
	}
	return ok(snapshot)
}

// --- System settings ---

func (c *Core) cmdGetSystemSettings() Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ok(c.sysSettings)
}

func (c *Core) cmdSaveSystemSettings(ctx context.Context, raw json.RawMessage) Result {
	sys, err := unmarshal[models.SystemSettings](raw)
	if err != nil {
		return fail("bad SaveSystemSettings payload: %v", err)
	}

	c.mu.Lock()
	c.sysSettings = sys
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Settings.SaveSystemSettings(ctx, sys); err != nil {
			return fail("save system settings: %v", err)
		}
	}
	return Result{Data: sys, Success: true, Message: "reboot required for new settings to take effect"}
}

// --- Platform delegation ---

func (c *Core) cmdPlatform(command string) Result {
	if c.log != nil {
		c.log.Infow("platform command requested", "command", command)
	}
	return ok(nil)
}
