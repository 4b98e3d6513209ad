package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// RealPublisher publishes to an actual MQTT broker, grounded on
// sweeney-boiler-sensor/internal/mqtt/real.go's RealPublisher: same
// connect/WaitTimeout pattern (publishes are not awaited), same QoS split (best-effort samples at
// QoS 0, lifecycle events at QoS 1).
type RealPublisher struct {
	client paho.Client
}

func NewRealPublisher(broker string) (*RealPublisher, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("brewctl").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &RealPublisher{client: client}, nil
}

func (p *RealPublisher) PublishSample(s Sample) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal sample: %w", err)
	}
	// QoS 0: best-effort, never blocks a control loop; delivery is not
	// awaited, only an already-failed token is reported.
	token := p.client.Publish(TopicSample, 0, false, payload)
	select {
	case <-token.Done():
		return token.Error()
	default:
		return nil
	}
}

func (p *RealPublisher) PublishSystem(e SystemEvent) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal system event: %w", err)
	}
	// QoS 1: at-least-once for lifecycle events; like samples, delivery
	// is not awaited so a control loop never blocks here.
	token := p.client.Publish(TopicSystem, 1, false, payload)
	select {
	case <-token.Done():
		return token.Error()
	default:
		return nil
	}
}

func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}
