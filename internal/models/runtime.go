package models

// RuntimeState is the process-wide run state shared across the
// cooperating tasks (SPEC_FULL §3). Optional fields are pointers: nil
// means "no override", never a sentinel magic number.
type RuntimeState struct {
	Run                       bool
	ControlRun                bool
	BoilRun                   bool
	InOverTime                bool
	BoostStatus               BoostStatus
	CurrentMashStep           int
	RunningVersion            uint64
	OverrideTargetTemperature *float64
	ManualOverrideOutput      *float64
	SkipTempLoop              bool
	ResetPidTimer             bool
	TempLog                   []TempLogEntry
	PowerUsageJ               float64

	// Derived/observed fields consulted and written by C1/C2/C6, not
	// part of the persisted run state but owned by the same struct per
	// Design Note 9 (a single Core value, not scattered globals).
	Temperature        float64
	Probes             map[uint64]float64
	TargetTemperature  float64
	PIDOutput          float64
	OutputPercent       float64
	SelectedSchedule   string
	TargetReached      bool
	Status             string
	StirStatus         string
}

// Snapshot is the wire-format telemetry returned by the Data command,
// using the field names in SPEC_FULL §6.2.
type Snapshot struct {
	Temp                      float64          `json:"temp"`
	Temps                     map[string]float64 `json:"temps"`
	TargetTemp                float64          `json:"targetTemp"`
	ManualOverrideTargetTemp  *float64         `json:"manualOverrideTargetTemp,omitempty"`
	Output                    float64          `json:"output"`
	ManualOverrideOutput      *float64         `json:"manualOverrideOutput,omitempty"`
	Status                    string           `json:"status"`
	StirStatus                string           `json:"stirStatus"`
	LastLogDateTime           string           `json:"lastLogDateTime,omitempty"`
	TempLog                   []TempLogEntry   `json:"tempLog,omitempty"`
	RunningVersion            uint64           `json:"runningVersion"`
	InOverTime                bool             `json:"inOverTime"`
	BoostStatus               string           `json:"boostStatus"`
	PowerUsage                float64          `json:"powerUsage"`
}
