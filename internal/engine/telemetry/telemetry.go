// Package telemetry publishes control-loop samples and lifecycle
// events to MQTT, grounded on sweeney-boiler-sensor/internal/mqtt's
// Publisher/SystemEvent split.
package telemetry

import "time"

// Sample is one per-second reading published while a run is active
// (SPEC_FULL §4.1).
type Sample struct {
	Time   time.Time
	Temp   float64
	Target float64
	Output float64
}

// SystemEvent is a lifecycle event: run start/stop, overtime
// enter/exit, notification fired.
type SystemEvent struct {
	Time   time.Time
	Event  string
	Detail string
}

// Publisher publishes samples and system events. A publish failure is
// always best-effort: it never blocks or aborts a control loop.
type Publisher interface {
	PublishSample(s Sample) error
	PublishSystem(e SystemEvent) error
	Close() error
}

const (
	TopicSample = "brewctl/sample"
	TopicSystem = "brewctl/system"
)

// NoopPublisher discards every publish, used when no broker is
// configured (MQTT is optional).
type NoopPublisher struct{}

func (NoopPublisher) PublishSample(Sample) error     { return nil }
func (NoopPublisher) PublishSystem(SystemEvent) error { return nil }
func (NoopPublisher) Close() error                    { return nil }
