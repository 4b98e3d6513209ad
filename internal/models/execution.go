package models

import "time"

// ExecutionStep is one entry of a compiled schedule: an absolute
// wall-clock Time by which Temperature should be reached or held.
// Execution steps form a 1-based ordered list; index 0 is the
// synthetic anchor containing "now" and the temperature at compile
// time.
type ExecutionStep struct {
	Time           time.Time `json:"time"`
	Temperature    float64   `json:"temperature"`
	AllowBoost     bool      `json:"allowBoost"`
	ExtendIfNeeded bool      `json:"extendIfNeeded"`
}

// TempLogEntry is one sample in the temperature log ring buffer.
type TempLogEntry struct {
	Time time.Time `json:"time"`
	Temp int       `json:"temp"`
}
