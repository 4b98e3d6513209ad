package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brewctl/internal/auth"
	"brewctl/internal/config"
	"brewctl/internal/engine"
	"brewctl/internal/engine/gpio"
	"brewctl/internal/engine/onewire"
	"brewctl/internal/engine/telemetry"
	"brewctl/internal/handlers"
	"brewctl/internal/logger"
	"brewctl/internal/models"
	"brewctl/internal/server"
	"brewctl/internal/store"
)

func main() {
	log := logger.Get(logger.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	db, err := openDB(cfg.DBPath, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	st := store.New(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	heaters, probes, schedules, pidSettings, sysSettings, err := loadOrSeed(ctx, st, cfg.SeedPath, log)
	if err != nil {
		log.Fatalw("failed to load settings", "err", err)
	}

	bus := onewire.NewLinuxBus()

	gpioW, err := gpio.NewWriter(outputPins(heaters, sysSettings), sysSettings.InvertOutputs)
	if err != nil {
		log.Fatalw("failed to init gpio", "err", err)
	}
	defer func() {
		if cerr := gpioW.Close(); cerr != nil {
			log.Errorw("failed to close gpio", "err", cerr)
		}
	}()

	pub := newPublisher(cfg.MQTTBroker, sysSettings.MqttURI, log)
	defer func() {
		if cerr := pub.Close(); cerr != nil {
			log.Errorw("failed to close telemetry publisher", "err", cerr)
		}
	}()

	core := engine.NewCore(log.Named("engine"), st, bus, gpioW, pub, heaters, probes, schedules, pidSettings, sysSettings)
	core.Run(ctx)
	defer core.Stop()

	authSvc := auth.NewService(st.Auth, cfg.JWTSigningKey)
	apiHandler := handlers.NewHandler(core, authSvc, log.Named("http"))

	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	waitForShutdown(cancel, srv, log)
}

// openDB initializes the SQLite database at path.
func openDB(path string, log *logger.Logger) (*sql.DB, error) {
	if path == "" {
		log.Infow("db path not set in config; using default file", "default", "brewctl.db")
		path = "brewctl.db"
	}
	return store.InitDB(path)
}

// loadOrSeed loads every persisted settings bundle from st, falling
// back to the bundled seed (heaters, mash schedules) and the built-in
// PID/system defaults on a fresh installation (SPEC_FULL §6.1).
func loadOrSeed(ctx context.Context, st *store.Store, seedPath string, log *logger.Logger) (
	heaters []models.Heater,
	probes []models.Probe,
	schedules []models.MashSchedule,
	pidSettings models.PIDSettings,
	sysSettings models.SystemSettings,
	err error,
) {
	heaters, err = st.Settings.LoadHeaters(ctx)
	if err != nil {
		return
	}
	schedules, err = st.Settings.LoadMashSchedules(ctx)
	if err != nil {
		return
	}
	probes, err = st.Settings.LoadProbes(ctx)
	if err != nil {
		return
	}

	if len(heaters) == 0 || len(schedules) == 0 {
		seed, serr := config.LoadSeed(seedPath)
		if serr != nil {
			err = serr
			return
		}
		if len(heaters) == 0 {
			heaters = seed.Heaters
			if serr := st.Settings.SaveHeaters(ctx, heaters); serr != nil {
				err = serr
				return
			}
		}
		if len(schedules) == 0 {
			schedules = seed.Schedules
			if serr := st.Settings.SaveMashSchedules(ctx, schedules); serr != nil {
				err = serr
				return
			}
		}
	}

	if _, ok, gerr := st.Settings.GetUint16(ctx, "pidLoopTime"); gerr != nil {
		err = gerr
		return
	} else if ok {
		pidSettings, err = st.Settings.LoadPIDSettings(ctx)
		if err != nil {
			return
		}
	} else {
		pidSettings = config.DefaultPIDSettings()
		if serr := st.Settings.SavePIDSettings(ctx, pidSettings); serr != nil {
			err = serr
			return
		}
	}

	if _, ok, gerr := st.Settings.GetUint8(ctx, "onewirePin"); gerr != nil {
		err = gerr
		return
	} else if ok {
		sysSettings, err = st.Settings.LoadSystemSettings(ctx)
		if err != nil {
			return
		}
	} else {
		sysSettings = config.DefaultSystemSettings()
		if serr := st.Settings.SaveSystemSettings(ctx, sysSettings); serr != nil {
			err = serr
			return
		}
	}

	log.Infow("settings loaded", "heaters", len(heaters), "probes", len(probes), "schedules", len(schedules))
	return
}

// outputPins collects every GPIO line the engine drives: heater pins
// plus the fixed stir/buzzer/speaker/status-LED pins.
func outputPins(heaters []models.Heater, sys models.SystemSettings) []int {
	// statusLEDPin matches the engine's fixed debug status-LED pin.
	const statusLEDPin = 2
	pins := []int{sys.StirPin, sys.BuzzerPin, sys.Speaker1Pin, sys.Speaker2Pin, statusLEDPin}
	for _, h := range heaters {
		pins = append(pins, h.Pin)
	}
	return pins
}

// newPublisher connects to the configured MQTT broker, preferring the
// runtime system setting over the bootstrap default, or returns a
// no-op publisher when neither names a broker.
func newPublisher(bootstrapBroker, settingsBroker string, log *logger.Logger) telemetry.Publisher {
	broker := settingsBroker
	if broker == "" {
		broker = bootstrapBroker
	}
	if broker == "" {
		return telemetry.NoopPublisher{}
	}
	pub, err := telemetry.NewRealPublisher(broker)
	if err != nil {
		log.Errorw("failed to connect to mqtt broker; telemetry disabled", "broker", broker, "err", err)
		return telemetry.NoopPublisher{}
	}
	return pub
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
