// Package engine implements the control core: sensor reading, PID
// regulation, heater duty planning, output mirroring, schedule
// compilation and running, and command dispatch (SPEC_FULL §2, C1-C9).
package engine

import (
	"context"
	"sync"
	"time"

	"brewctl/internal/engine/gpio"
	"brewctl/internal/engine/onewire"
	"brewctl/internal/engine/telemetry"
	"brewctl/internal/logger"
	"brewctl/internal/models"
	"brewctl/internal/store"
)

// Core owns every piece of mutable run state plus the hardware and
// persistence collaborators. One Core per process; its cooperating
// loops coordinate through mu rather than per-field atomics, per
// SPEC_FULL §5's explicit allowance.
type Core struct {
	mu sync.RWMutex

	log   *logger.Logger
	store *store.Store
	bus   onewire.Bus
	gpioW gpio.Writer
	pub   telemetry.Publisher

	// probeAddr maps a probe's stable ID to its live 1-Wire bus
	// address, populated only by DetectTempSensors (C7). Probes loaded
	// at startup have no entry, and are not read, until a detection
	// pass has recorded their address.
	probeAddr map[uint64]onewire.DeviceAddress

	heaters     []models.Heater
	probes      []models.Probe
	schedules   []models.MashSchedule
	pidSettings models.PIDSettings
	sysSettings models.SystemSettings

	state models.RuntimeState

	pid    *pidController
	runner *runner

	cycle        int       // sensor-read cycles since controlRun went true; drives tempLog gating
	windowStart  time.Time // start of the current PID window
	windowSecond int       // seconds elapsed since windowStart, drives heater time-slicing

	notifyCh     chan models.Notification // fired notifications, drained by the buzzer/speaker loops
	buzzerUntil  time.Time
	speakerUntil time.Time

	prevControlRun bool

	stirEnabled bool
	stirOn      bool
	stirNext    time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCore assembles a Core from its collaborators and the settings
// loaded at startup (SPEC_FULL §6.1). The caller is responsible for
// loading heaters/probes/schedules/settings from the store first; this
// mirrors the teacher's constructor-injection shape in
// internal/service, generalized from two repositories to the full
// collaborator set this domain needs.
func NewCore(
	log *logger.Logger,
	st *store.Store,
	bus onewire.Bus,
	gpioW gpio.Writer,
	pub telemetry.Publisher,
	heaters []models.Heater,
	probes []models.Probe,
	schedules []models.MashSchedule,
	pidSettings models.PIDSettings,
	sysSettings models.SystemSettings,
) *Core {
	return &Core{
		log:         log,
		store:       st,
		bus:         bus,
		gpioW:       gpioW,
		pub:         pub,
		probeAddr:   make(map[uint64]onewire.DeviceAddress),
		notifyCh:    make(chan models.Notification, 16),
		heaters:     heaters,
		probes:      probes,
		schedules:   schedules,
		pidSettings: pidSettings,
		sysSettings: sysSettings,
		state: models.RuntimeState{
			Probes: make(map[uint64]float64),
			Status: "idle",
		},
	}
}

// Run starts one goroutine per cooperating loop (SPEC_FULL §5: sensor
// read, PID+duty, output mirror, schedule runner, stir, notify) and
// returns immediately. Stop cancels them and waits for exit.
func (c *Core) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	loops := []struct {
		name   string
		period time.Duration
		fn     func(time.Time)
	}{
		{"sensors", time.Second, c.tickSensors},
		{"control", time.Second, c.tickControl},
		{"output", time.Second, c.tickOutput},
		{"runner", time.Second, c.tickRunner},
		{"stir", time.Second, c.tickStir},
		{"buzzer", time.Second, c.tickBuzzer},
		{"speaker", time.Second, c.tickSpeaker},
	}
	for _, l := range loops {
		c.wg.Add(1)
		go c.loop(ctx, l.name, l.period, l.fn)
	}
}

// loop is the teacher's SimulatorService.Run ticker shape (ticker +
// select on ctx.Done/ticker.C), generalized to run an arbitrary
// per-cycle function and recover a panicking tick instead of taking
// the whole loop down with it.
func (c *Core) loop(ctx context.Context, name string, period time.Duration, fn func(time.Time)) {
	defer c.wg.Done()
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			c.runTick(name, fn, now)
		}
	}
}

func (c *Core) runTick(name string, fn func(time.Time), now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Errorw("engine loop panic", "loop", name, "panic", r)
		}
	}()
	fn(now)
}

// Stop cancels every loop and blocks until all have exited.
func (c *Core) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

// Snapshot copies the fields the Data command and websocket stream
// need into a wire Snapshot, under a read lock held only for the copy
// (Design Note 9) so neither caller blocks the engine loops while an
// HTTP response is being written.
func (c *Core) Snapshot() models.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}
