package config

import (
	"os"
	"path/filepath"
	"testing"

	"brewctl/internal/models"
)

func TestDefaultSeed_HasDefaultHeatersAndSchedule(t *testing.T) {
	seed := DefaultSeed()
	if len(seed.Heaters) != 2 {
		t.Fatalf("got %d default heaters, want 2", len(seed.Heaters))
	}
	if len(seed.Schedules) != 1 || seed.Schedules[0].Name != "Default" {
		t.Fatalf("got %+v, want a single schedule named Default", seed.Schedules)
	}
	if seed.Schedules[0].Notifications[0].TimeAbsolute != 5 {
		t.Fatalf("got TimeAbsolute=%d, want 5 (RefStepIndex 0, TimeFromStart 5)", seed.Schedules[0].Notifications[0].TimeAbsolute)
	}
}

func TestDefaultPIDSettings_SeparatesMashAndBoilGains(t *testing.T) {
	p := DefaultPIDSettings()
	if p.KP == p.BoilKP && p.KI == p.BoilKI && p.KD == p.BoilKD {
		t.Fatalf("expected mash and boil gains to differ")
	}
	if p.PidLoopTime <= 0 || p.HeaterCycles <= 0 {
		t.Fatalf("got %+v, want positive loop time and heater cycle count", p)
	}
}

func TestDefaultSystemSettings_UsesCelsiusByDefault(t *testing.T) {
	sys := DefaultSystemSettings()
	if sys.TempScale != models.Celsius {
		t.Fatalf("got TempScale=%v, want Celsius", sys.TempScale)
	}
}

func TestLoadSeed_MissingFile_ReturnsDefaultSeed(t *testing.T) {
	dir := t.TempDir()
	seed, err := LoadSeed(filepath.Join(dir, "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	if len(seed.Heaters) != len(DefaultSeed().Heaters) {
		t.Fatalf("got %d heaters, want the default seed", len(seed.Heaters))
	}
}

func TestLoadSeed_PartialFile_KeepsDefaultScheduleUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	contents := `
heaters:
  - id: 1
    name: "Custom Element"
    pin: 20
    preference: 1
    watt: 2000
    useForMash: true
    useForBoil: false
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}

	seed, err := LoadSeed(path)
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	if len(seed.Heaters) != 1 || seed.Heaters[0].Name != "Custom Element" {
		t.Fatalf("got %+v, want the single custom heater from the file", seed.Heaters)
	}
	if len(seed.Schedules) != 1 || seed.Schedules[0].Name != "Default" {
		t.Fatalf("got %+v, want the default schedule preserved since the file didn't set one", seed.Schedules)
	}
}
