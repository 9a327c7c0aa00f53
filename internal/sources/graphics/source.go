// Frame rate probe fed by the presentation surfaces
package graphics

import (
	"context"
	"perfoverlay/internal/stream"
	"perfoverlay/internal/telemetry"
	"sync"
	"time"
)

const Group string = "graphics"

type Source struct {
	mu       sync.Mutex
	counter  *FrameCounter
	lastTick time.Time
}

func New(counter *FrameCounter) (new *Source) {
	new = &Source{
		counter:  counter,
		lastTick: time.Now().UTC(),
	}
	return
}

// Probe builder where every stream reads the same counter
func NewProbeBuilder(counter *FrameCounter) (builder stream.ProbeBuilder) {
	builder = func(deviceID, packageID string) (probe stream.Probe, err error) {
		probe = New(counter)
		return
	}
	return
}

// Frames per second and dropped frames since the previous tick
func (source *Source) Sample(ctx context.Context, now time.Time) (samples []telemetry.Sample, err error) {
	source.mu.Lock()
	defer source.mu.Unlock()

	now = now.UTC()
	painted, dropped := source.counter.Swap()

	elapsed := now.Sub(source.lastTick)
	source.lastTick = now

	var fps float64
	if elapsed > 0 {
		fps = float64(painted) / elapsed.Seconds()
	}

	sample, err := telemetry.NewSample(Group, []telemetry.DataPoint{
		{Timestamp: now, Value: fps, Annotation: "fps"},
		{Timestamp: now, Value: float64(dropped), Annotation: "dropped"},
	})
	if err != nil {
		return
	}
	samples = []telemetry.Sample{sample}
	return
}
