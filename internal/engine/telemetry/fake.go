package telemetry

import "sync"

// FakePublisher records every publish for tests.
type FakePublisher struct {
	mu      sync.Mutex
	Samples []Sample
	Events  []SystemEvent
	Closed  bool
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

func (f *FakePublisher) PublishSample(s Sample) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Samples = append(f.Samples, s)
	return nil
}

func (f *FakePublisher) PublishSystem(e SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Events = append(f.Events, e)
	return nil
}

func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}
