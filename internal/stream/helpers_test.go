package stream

import (
	"context"
	"perfoverlay/internal/telemetry"
	"sync/atomic"
	"testing"
	"time"
)

type manualTicks struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func newManualTicks() *manualTicks {
	return &manualTicks{ch: make(chan time.Time)}
}

func (ticks *manualTicks) C() <-chan time.Time { return ticks.ch }
func (ticks *manualTicks) Stop()               { ticks.stopped.Store(true) }

type chanPublisher struct {
	batches chan *Batch
}

func newChanPublisher(size int) *chanPublisher {
	return &chanPublisher{batches: make(chan *Batch, size)}
}

func (publisher *chanPublisher) Push(batch *Batch) bool {
	select {
	case publisher.batches <- batch:
		return true
	default:
		return false
	}
}

func (publisher *chanPublisher) next(t *testing.T) *Batch {
	t.Helper()
	select {
	case batch := <-publisher.batches:
		return batch
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for batch")
	}
	return nil
}

func valueProbe(group string, value float64) ProbeFunc {
	return func(ctx context.Context, now time.Time) ([]telemetry.Sample, error) {
		sample, err := telemetry.NewSample(group, []telemetry.DataPoint{{Timestamp: now, Value: value}})
		if err != nil {
			return nil, err
		}
		return []telemetry.Sample{sample}, nil
	}
}

func staticBuilder(probe Probe) ProbeBuilder {
	return func(deviceID, packageID string) (Probe, error) {
		return probe, nil
	}
}

func newTestFactory(t *testing.T, channel string, probe Probe, out Publisher) (*BaseFactory, *[]*manualTicks) {
	t.Helper()
	var sources []*manualTicks
	factory, err := NewFactory(context.Background(), FactoryConfig{
		Channel:  channel,
		NewProbe: staticBuilder(probe),
		NewTicks: func() TickSource {
			source := newManualTicks()
			sources = append(sources, source)
			return source
		},
		Output: out,
	})
	if err != nil {
		t.Fatalf("unexpected error creating factory: %v", err)
	}
	return factory, &sources
}
