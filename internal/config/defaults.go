package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"brewctl/internal/models"
)

// Seed is the set of heaters and mash schedules a fresh installation
// starts with, grounded on the original firmware's addDefaultHeaters
// and addDefaultMash seed data.
type Seed struct {
	Heaters   []models.Heater      `yaml:"heaters"`
	Schedules seedScheduleList     `yaml:"schedules"`
}

type seedScheduleList []models.MashSchedule

// yamlSchedule mirrors models.MashSchedule but keeps the YAML tags
// local to this package, the way itohio-golpm's config.go keeps every
// yaml tag beside its Default().
type yamlSchedule struct {
	Name          string                `yaml:"name"`
	Boil          bool                  `yaml:"boil"`
	Steps         []models.MashStep     `yaml:"steps"`
	Notifications []models.Notification `yaml:"notifications"`
}

func (l *seedScheduleList) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw []yamlSchedule
	if err := unmarshal(&raw); err != nil {
		return err
	}
	out := make([]models.MashSchedule, 0, len(raw))
	for _, s := range raw {
		sched := models.MashSchedule{
			Name:          s.Name,
			Boil:          s.Boil,
			Steps:         s.Steps,
			Notifications: s.Notifications,
		}
		sched.RecalculateNotificationTimes()
		out = append(out, sched)
	}
	*l = out
	return nil
}

// DefaultSeed returns the built-in seed data, used when no seed file
// is present on disk (mirrors itohio-golpm's Default()).
func DefaultSeed() Seed {
	seed := Seed{
		Heaters: []models.Heater{
			{ID: 1, Name: "Element 1", Pin: 5, Preference: 1, Watt: 1500, UseForMash: true, UseForBoil: true},
			{ID: 2, Name: "Element 2", Pin: 6, Preference: 2, Watt: 1500, UseForMash: true, UseForBoil: true},
		},
		Schedules: []models.MashSchedule{
			{
				Name: "Default",
				Steps: []models.MashStep{
					{Index: 0, Name: "Dough In", Temperature: 67, StepTime: 5, Time: 45, AllowBoost: true, ExtendStepTimeIfNeeded: true},
					{Index: 1, Name: "Mash Out", Temperature: 75, StepTime: 5, Time: 10},
				},
				Notifications: []models.Notification{
					{Name: "Add Grains", Message: "Add the grain bill now", TimeFromStart: 5, RefStepIndex: 0, Buzzer: true},
				},
			},
		},
	}
	for i := range seed.Schedules {
		seed.Schedules[i].RecalculateNotificationTimes()
	}
	return seed
}

// DefaultPIDSettings returns the gains and timing a fresh installation
// starts with, grounded on the original firmware's addDefaultSettings.
func DefaultPIDSettings() models.PIDSettings {
	return models.PIDSettings{
		KP: 8, KI: 0.05, KD: 2,
		BoilKP: 4, BoilKI: 0.02, BoilKD: 1,
		PidLoopTime:     5,
		StepInterval:    1,
		BoostModeUntil:  80,
		HeaterLimit:     100,
		HeaterCycles:    4,
		RelayGuard:      5,
		OverTimeTrigger: 30,
		OverTimeStep:    30,
		TempMargin:      0.3,
	}
}

// DefaultSystemSettings returns the pin map a fresh installation starts
// with.
func DefaultSystemSettings() models.SystemSettings {
	return models.SystemSettings{
		OnewirePin:  4,
		StirPin:     13,
		BuzzerPin:   12,
		BuzzerTime:  5,
		Speaker1Pin: 14,
		Speaker2Pin: 15,
		TempScale:   models.Celsius,
	}
}

// LoadSeed reads seed data from path, falling back to DefaultSeed if
// the file does not exist (itohio-golpm's Load() semantics).
func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSeed(), nil
		}
		return Seed{}, fmt.Errorf("read seed file %q: %w", path, err)
	}

	seed := DefaultSeed()
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("parse seed file %q: %w", path, err)
	}
	for i := range seed.Schedules {
		seed.Schedules[i].RecalculateNotificationTimes()
	}
	return seed, nil
}
