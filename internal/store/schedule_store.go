package store

import (
	"context"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"brewctl/internal/models"
)

// Recognized blob keys (SPEC_FULL §6.1).
const (
	keyMashSchedules = "mashschedules"
	keyHeaters       = "heaters"
	keyTempSensors   = "tempsensors"
)

// SaveMashSchedules MessagePack-encodes every non-temporary schedule
// and stores it under the "mashschedules" key. Temporary schedules are
// excluded from persistence per SPEC_FULL §3.
func (s *SettingsStore) SaveMashSchedules(ctx context.Context, schedules []models.MashSchedule) error {
	persist := make([]models.MashSchedule, 0, len(schedules))
	for _, sched := range schedules {
		if !sched.Temporary {
			persist = append(persist, sched)
		}
	}
	blob, err := msgpack.Marshal(persist)
	if err != nil {
		return fmt.Errorf("encode mash schedules: %w", err)
	}
	return s.SetBlob(ctx, keyMashSchedules, blob)
}

// LoadMashSchedules decodes the "mashschedules" blob, returning an
// empty slice if nothing has been saved yet.
func (s *SettingsStore) LoadMashSchedules(ctx context.Context) ([]models.MashSchedule, error) {
	blob, ok, err := s.GetBlob(ctx, keyMashSchedules)
	if err != nil {
		return nil, fmt.Errorf("load mash schedules: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var schedules []models.MashSchedule
	if err := msgpack.Unmarshal(blob, &schedules); err != nil {
		return nil, fmt.Errorf("decode mash schedules: %w", err)
	}
	return schedules, nil
}

// SaveHeaters MessagePack-encodes the heater list under the "heaters"
// key.
func (s *SettingsStore) SaveHeaters(ctx context.Context, heaters []models.Heater) error {
	blob, err := msgpack.Marshal(heaters)
	if err != nil {
		return fmt.Errorf("encode heaters: %w", err)
	}
	return s.SetBlob(ctx, keyHeaters, blob)
}

// LoadHeaters decodes the "heaters" blob.
func (s *SettingsStore) LoadHeaters(ctx context.Context) ([]models.Heater, error) {
	blob, ok, err := s.GetBlob(ctx, keyHeaters)
	if err != nil {
		return nil, fmt.Errorf("load heaters: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var heaters []models.Heater
	if err := msgpack.Unmarshal(blob, &heaters); err != nil {
		return nil, fmt.Errorf("decode heaters: %w", err)
	}
	return heaters, nil
}

// SaveProbes MessagePack-encodes the probe list under the
// "tempsensors" key.
func (s *SettingsStore) SaveProbes(ctx context.Context, probes []models.Probe) error {
	blob, err := msgpack.Marshal(probes)
	if err != nil {
		return fmt.Errorf("encode probes: %w", err)
	}
	return s.SetBlob(ctx, keyTempSensors, blob)
}

// LoadProbes decodes the "tempsensors" blob.
func (s *SettingsStore) LoadProbes(ctx context.Context) ([]models.Probe, error) {
	blob, ok, err := s.GetBlob(ctx, keyTempSensors)
	if err != nil {
		return nil, fmt.Errorf("load probes: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var probes []models.Probe
	if err := msgpack.Unmarshal(blob, &probes); err != nil {
		return nil, fmt.Errorf("decode probes: %w", err)
	}
	return probes, nil
}

// SavePIDSettings and LoadPIDSettings persist the gain/timing scalars
// under their individual short keys rather than one blob, matching
// SPEC_FULL §6.1's key list (kP/kI/kD etc. as uint16 ×10 fixed-point,
// mirroring the original firmware's storage of gains as scaled
// integers).
func (s *SettingsStore) SavePIDSettings(ctx context.Context, p models.PIDSettings) error {
	sets := []struct {
		key string
		val float64
	}{
		{"kP", p.KP}, {"kI", p.KI}, {"kD", p.KD},
		{"boilkP", p.BoilKP}, {"boilkI", p.BoilKI}, {"boilkD", p.BoilKD},
	}
	for _, kv := range sets {
		if err := s.SetUint16(ctx, kv.key, uint16(kv.val*10)); err != nil {
			return fmt.Errorf("save pid setting %q: %w", kv.key, err)
		}
	}
	if err := s.SetUint16(ctx, "pidLoopTime", uint16(p.PidLoopTime)); err != nil {
		return err
	}
	if err := s.SetUint16(ctx, "stepInterval", uint16(p.StepInterval)); err != nil {
		return err
	}
	if err := s.SetUint16(ctx, "boostModeUntil", uint16(p.BoostModeUntil)); err != nil {
		return err
	}
	if err := s.SetUint8(ctx, "heaterLimit", uint8(p.HeaterLimit)); err != nil {
		return err
	}
	if err := s.SetUint8(ctx, "heaterCycles", uint8(p.HeaterCycles)); err != nil {
		return err
	}
	if err := s.SetUint8(ctx, "relayGuard", uint8(p.RelayGuard)); err != nil {
		return err
	}
	if err := s.SetUint16(ctx, "overTimeTrigger", uint16(p.OverTimeTrigger)); err != nil {
		return err
	}
	if err := s.SetUint16(ctx, "overTimeStep", uint16(p.OverTimeStep)); err != nil {
		return err
	}
	return s.SetUint8(ctx, "tempMargin", uint8(p.TempMargin*10))
}

func (s *SettingsStore) LoadPIDSettings(ctx context.Context) (models.PIDSettings, error) {
	get16 := func(key string) (float64, error) {
		v, _, err := s.GetUint16(ctx, key)
		return float64(v) / 10, err
	}
	kp, err := get16("kP")
	if err != nil {
		return models.PIDSettings{}, err
	}
	ki, err := get16("kI")
	if err != nil {
		return models.PIDSettings{}, err
	}
	kd, err := get16("kD")
	if err != nil {
		return models.PIDSettings{}, err
	}
	bkp, err := get16("boilkP")
	if err != nil {
		return models.PIDSettings{}, err
	}
	bki, err := get16("boilkI")
	if err != nil {
		return models.PIDSettings{}, err
	}
	bkd, err := get16("boilkD")
	if err != nil {
		return models.PIDSettings{}, err
	}
	pidLoopTime, _, err := s.GetUint16(ctx, "pidLoopTime")
	if err != nil {
		return models.PIDSettings{}, err
	}
	stepInterval, _, err := s.GetUint16(ctx, "stepInterval")
	if err != nil {
		return models.PIDSettings{}, err
	}
	boostModeUntil, _, err := s.GetUint16(ctx, "boostModeUntil")
	if err != nil {
		return models.PIDSettings{}, err
	}
	heaterLimit, _, err := s.GetUint8(ctx, "heaterLimit")
	if err != nil {
		return models.PIDSettings{}, err
	}
	heaterCycles, _, err := s.GetUint8(ctx, "heaterCycles")
	if err != nil {
		return models.PIDSettings{}, err
	}
	relayGuard, _, err := s.GetUint8(ctx, "relayGuard")
	if err != nil {
		return models.PIDSettings{}, err
	}
	overTimeTrigger, _, err := s.GetUint16(ctx, "overTimeTrigger")
	if err != nil {
		return models.PIDSettings{}, err
	}
	overTimeStep, _, err := s.GetUint16(ctx, "overTimeStep")
	if err != nil {
		return models.PIDSettings{}, err
	}
	tempMargin, _, err := s.GetUint8(ctx, "tempMargin")
	if err != nil {
		return models.PIDSettings{}, err
	}
	return models.PIDSettings{
		KP: kp, KI: ki, KD: kd,
		BoilKP: bkp, BoilKI: bki, BoilKD: bkd,
		PidLoopTime:     int(pidLoopTime),
		StepInterval:    int(stepInterval),
		BoostModeUntil:  int(boostModeUntil),
		HeaterLimit:     float64(heaterLimit),
		HeaterCycles:    int(heaterCycles),
		RelayGuard:      float64(relayGuard),
		OverTimeTrigger: int(overTimeTrigger),
		OverTimeStep:    int(overTimeStep),
		TempMargin:      float64(tempMargin) / 10,
	}, nil
}

// SaveSystemSettings persists pin assignments and global toggles under
// their individual keys.
func (s *SettingsStore) SaveSystemSettings(ctx context.Context, sys models.SystemSettings) error {
	if err := s.SetUint8(ctx, "onewirePin", uint8(sys.OnewirePin)); err != nil {
		return err
	}
	if err := s.SetUint8(ctx, "stirPin", uint8(sys.StirPin)); err != nil {
		return err
	}
	if err := s.SetUint8(ctx, "buzzerPin", uint8(sys.BuzzerPin)); err != nil {
		return err
	}
	if err := s.SetUint16(ctx, "buzzerTime", uint16(sys.BuzzerTime)); err != nil {
		return err
	}
	if err := s.SetUint8(ctx, "speaker1Pin", uint8(sys.Speaker1Pin)); err != nil {
		return err
	}
	// speaker2Pin is persisted under its own key; this is the fix for
	// the original firmware's speaker2-save typo noted in SPEC_FULL §9.
	if err := s.SetUint8(ctx, "speaker2Pin", uint8(sys.Speaker2Pin)); err != nil {
		return err
	}
	if err := s.SetBool(ctx, "invertOutputs", sys.InvertOutputs); err != nil {
		return err
	}
	if err := s.SetString(ctx, "mqttUri", sys.MqttURI); err != nil {
		return err
	}
	return s.SetUint8(ctx, "tempScale", uint8(sys.TempScale))
}

func (s *SettingsStore) LoadSystemSettings(ctx context.Context) (models.SystemSettings, error) {
	onewirePin, _, err := s.GetUint8(ctx, "onewirePin")
	if err != nil {
		return models.SystemSettings{}, err
	}
	stirPin, _, err := s.GetUint8(ctx, "stirPin")
	if err != nil {
		return models.SystemSettings{}, err
	}
	buzzerPin, _, err := s.GetUint8(ctx, "buzzerPin")
	if err != nil {
		return models.SystemSettings{}, err
	}
	buzzerTime, _, err := s.GetUint16(ctx, "buzzerTime")
	if err != nil {
		return models.SystemSettings{}, err
	}
	speaker1Pin, _, err := s.GetUint8(ctx, "speaker1Pin")
	if err != nil {
		return models.SystemSettings{}, err
	}
	speaker2Pin, _, err := s.GetUint8(ctx, "speaker2Pin")
	if err != nil {
		return models.SystemSettings{}, err
	}
	invertOutputs, _, err := s.GetBool(ctx, "invertOutputs")
	if err != nil {
		return models.SystemSettings{}, err
	}
	mqttURI, _, err := s.GetString(ctx, "mqttUri")
	if err != nil {
		return models.SystemSettings{}, err
	}
	tempScale, _, err := s.GetUint8(ctx, "tempScale")
	if err != nil {
		return models.SystemSettings{}, err
	}
	return models.SystemSettings{
		OnewirePin:    int(onewirePin),
		StirPin:       int(stirPin),
		BuzzerPin:     int(buzzerPin),
		BuzzerTime:    int(buzzerTime),
		Speaker1Pin:   int(speaker1Pin),
		Speaker2Pin:   int(speaker2Pin),
		InvertOutputs: invertOutputs,
		MqttURI:       mqttURI,
		TempScale:     models.TemperatureScale(tempScale),
	}, nil
}
