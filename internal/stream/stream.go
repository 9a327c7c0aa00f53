package stream

import (
	"context"
	"fmt"
	"perfoverlay/internal/global"
	"perfoverlay/internal/logctx"
	"perfoverlay/internal/telemetry"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
)

func (fn ProbeFunc) Sample(ctx context.Context, now time.Time) ([]telemetry.Sample, error) {
	return fn(ctx, now)
}

// Creates a stream that is not yet ticking
func newStream(channel, deviceID, packageID string, offset time.Duration, probe Probe, ticks TickSource, out Publisher) (new *Stream) {
	new = &Stream{
		ID:               uuid.New(),
		DeviceID:         deviceID,
		PackageID:        packageID,
		Channel:          channel,
		DeviceTimeOffset: offset,
		probe:            probe,
		ticks:            ticks,
		out:              out,
		done:             make(chan struct{}),
	}
	return
}

// Begins reacting to ticks in a dedicated goroutine
func (stream *Stream) start(ctx context.Context) {
	ctx, stream.cancel = context.WithCancel(ctx)

	stream.gate.Lock()
	stream.running = true
	stream.StartedAt = time.Now()
	stream.gate.Unlock()

	go stream.run(ctx)
}

func (stream *Stream) run(ctx context.Context) {
	defer close(stream.done)
	if stream.ticks == nil {
		<-ctx.Done()
		return
	}
	defer stream.ticks.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now, ok := <-stream.ticks.C():
			if !ok {
				<-ctx.Done()
				return
			}
			stream.Tick(ctx, now)
		}
	}
}

// Runs the probe once and publishes the result. Failures are logged and do not affect later ticks.
func (stream *Stream) Tick(ctx context.Context, now time.Time) (published bool) {
	if !stream.IsRunning() {
		return
	}
	stream.Metrics.Ticks.Add(1)

	samples, err := stream.sample(ctx, now)
	if err != nil {
		stream.Metrics.Failures.Add(1)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
			"stream %s (device %q package %q): %v\n", stream.ID, stream.DeviceID, stream.PackageID, err)
		return
	}
	if len(samples) == 0 {
		return
	}

	// Move device timestamps into host time
	if stream.DeviceTimeOffset != 0 {
		for i := range samples {
			samples[i] = samples[i].Shift(stream.DeviceTimeOffset)
		}
	}

	batch := &Batch{
		StreamID:  stream.ID,
		DeviceID:  stream.DeviceID,
		PackageID: stream.PackageID,
		Channel:   stream.Channel,
		Samples:   samples,
		origin:    stream,
	}

	published = stream.out.Push(batch)
	if !published {
		stream.Metrics.Dropped.Add(1)
		logctx.LogEvent(ctx, global.VerbosityData, global.WarnLog,
			"stream %s: output full, dropped batch of %d sample(s)\n", stream.ID, len(samples))
		return
	}
	stream.Metrics.Batches.Add(1)
	return
}

// Calls probe with panic recovery
func (stream *Stream) sample(ctx context.Context, now time.Time) (samples []telemetry.Sample, err error) {
	defer func() {
		if fatalError := recover(); fatalError != nil {
			err = fmt.Errorf("panic in probe: %v\n%s", fatalError, debug.Stack())
		}
	}()

	samples, err = stream.probe.Sample(ctx, now)
	if err != nil {
		err = fmt.Errorf("probe failed: %v", err)
	}
	return
}

func (stream *Stream) IsRunning() (running bool) {
	stream.gate.RLock()
	running = stream.running
	stream.gate.RUnlock()
	return
}

// Runs fn only while the stream is running. Stop waits for an in-flight fn to return.
func (stream *Stream) Deliver(fn func()) (delivered bool) {
	stream.gate.RLock()
	defer stream.gate.RUnlock()
	if !stream.running {
		return
	}
	fn()
	delivered = true
	return
}

// Stops ticking. After return no batch from this stream is delivered. Safe to call repeatedly.
func (stream *Stream) Stop() {
	stream.gate.Lock()
	stream.running = false
	stream.gate.Unlock()

	if stream.cancel != nil {
		stream.cancel()
		<-stream.done
	}
}

// Applies fn through the originating stream delivery gate
func (batch *Batch) Deliver(fn func()) (delivered bool) {
	if batch.origin == nil {
		fn()
		delivered = true
		return
	}
	delivered = batch.origin.Deliver(fn)
	return
}
