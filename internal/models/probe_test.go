package models

import (
	"encoding/json"
	"testing"
)

func TestProbe_MarshalJSON_EncodesIDAsDecimalString(t *testing.T) {
	p := Probe{ID: 18374686479671623680, Name: "Mash Tun", Bias: 0.5, Gain: 1.02}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal into map: %v", err)
	}
	id, ok := raw["id"].(string)
	if !ok {
		t.Fatalf("got id of type %T, want string", raw["id"])
	}
	if id != "18374686479671623680" {
		t.Fatalf("got id=%q, want the full 64-bit value as a decimal string", id)
	}
}

func TestProbe_UnmarshalJSON_RoundTrips(t *testing.T) {
	want := Probe{
		ID:            18374686479671623680,
		Name:          "Mash Tun",
		Color:         "#ff0000",
		UseForControl: true,
		Show:          true,
		Bias:          0.5,
		Gain:          1.02,
		Connected:     true,
		LastReading:   67.3,
	}

	data, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got Probe
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestProbe_UnmarshalJSON_RejectsNonNumericID(t *testing.T) {
	var p Probe
	err := json.Unmarshal([]byte(`{"id":"not-a-number"}`), &p)
	if err == nil {
		t.Fatalf("expected an error decoding a non-numeric id")
	}
}

func TestProbe_Calibrate_AppliesBiasThenGain(t *testing.T) {
	p := Probe{Bias: 1.0, Gain: 2.0}
	if got := p.Calibrate(10); got != 22 {
		t.Fatalf("got %.2f, want 22 ((10+1)*2)", got)
	}
}

func TestProbe_Calibrate_SkipsGainWhenZeroOrOne(t *testing.T) {
	zero := Probe{Bias: 1.0, Gain: 0}
	if got := zero.Calibrate(10); got != 11 {
		t.Fatalf("gain=0: got %.2f, want 11 (gain treated as a no-op)", got)
	}

	one := Probe{Bias: 1.0, Gain: 1}
	if got := one.Calibrate(10); got != 11 {
		t.Fatalf("gain=1: got %.2f, want 11", got)
	}
}
