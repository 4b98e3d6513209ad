package models

import (
	"encoding/json"
	"strconv"
)

// Probe is one 1-Wire temperature sensor on the shared bus. It exists
// once detected or loaded from the settings store; its lifecycle is
// independent of any schedule run.
type Probe struct {
	ID            uint64  `json:"id"`
	Name          string  `json:"name"`
	Color         string  `json:"color"`
	UseForControl bool    `json:"useForControl"`
	Show          bool    `json:"show"`
	Bias          float64 `json:"bias"`
	Gain          float64 `json:"gain"`
	Connected     bool    `json:"connected"`
	LastReading   float64 `json:"lastReading"`
}

// probeWire mirrors Probe but carries ID as a decimal string, matching
// the command channel's "probe ids are emitted and accepted as decimal
// strings (64-bit clean)" contract.
type probeWire struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Color         string  `json:"color"`
	UseForControl bool    `json:"useForControl"`
	Show          bool    `json:"show"`
	Bias          float64 `json:"bias"`
	Gain          float64 `json:"gain"`
	Connected     bool    `json:"connected"`
	LastReading   float64 `json:"lastReading"`
}

func (p Probe) MarshalJSON() ([]byte, error) {
	return json.Marshal(probeWire{
		ID:            strconv.FormatUint(p.ID, 10),
		Name:          p.Name,
		Color:         p.Color,
		UseForControl: p.UseForControl,
		Show:          p.Show,
		Bias:          p.Bias,
		Gain:          p.Gain,
		Connected:     p.Connected,
		LastReading:   p.LastReading,
	})
}

func (p *Probe) UnmarshalJSON(data []byte) error {
	var w probeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	id, err := strconv.ParseUint(w.ID, 10, 64)
	if err != nil {
		return err
	}
	p.ID = id
	p.Name = w.Name
	p.Color = w.Color
	p.UseForControl = w.UseForControl
	p.Show = w.Show
	p.Bias = w.Bias
	p.Gain = w.Gain
	p.Connected = w.Connected
	p.LastReading = w.LastReading
	return nil
}

// Calibrate applies the probe's additive bias and multiplicative gain
// to a raw bus reading, per SPEC_FULL §4.1.
func (p Probe) Calibrate(raw float64) float64 {
	v := raw + p.Bias
	if p.Gain != 0 && p.Gain != 1 {
		v *= p.Gain
	}
	return v
}
