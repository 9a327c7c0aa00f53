package stream

import (
	"context"
	"perfoverlay/internal/telemetry"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Produces the samples for one stream tick
type Probe interface {
	Sample(ctx context.Context, now time.Time) (samples []telemetry.Sample, err error)
}

// Adapter to use ordinary functions as probes
type ProbeFunc func(ctx context.Context, now time.Time) (samples []telemetry.Sample, err error)

// Builds the probe for a single device/package pair
type ProbeBuilder func(deviceID, packageID string) (probe Probe, err error)

// External timer driving a stream
type TickSource interface {
	C() <-chan time.Time
	Stop()
}

// Builds one tick source per stream
type TickBuilder func() TickSource

// Destination for stream batches (non-blocking)
type Publisher interface {
	Push(batch *Batch) (accepted bool)
}

// One stream tick worth of samples and where they came from
type Batch struct {
	StreamID  uuid.UUID
	DeviceID  string
	PackageID string
	Channel   string
	Samples   []telemetry.Sample
	origin    *Stream
}

// Long-lived producer bound to a device/package/channel
type Stream struct {
	ID               uuid.UUID
	DeviceID         string
	PackageID        string
	Channel          string
	DeviceTimeOffset time.Duration // device clock minus host clock
	StartedAt        time.Time
	Metrics          MetricStorage

	probe   Probe
	ticks   TickSource
	out     Publisher
	gate    sync.RWMutex // Held shared while a batch is applied, exclusively by Stop
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

type MetricStorage struct {
	Ticks    atomic.Uint64 // probe invocations
	Failures atomic.Uint64 // probe errors and panics
	Batches  atomic.Uint64 // batches accepted by publisher
	Dropped  atomic.Uint64 // batches rejected by publisher
}

// Per-channel producer of streams
type Factory interface {
	Channel() string
	Start(deviceID, packageID string, deviceTimeOffset time.Duration) (stream *Stream, err error)
	Stop(stream *Stream)
	Streams() (streams []*Stream)
}

// Construction parameters for the standard factory
type FactoryConfig struct {
	Channel  string
	NewProbe ProbeBuilder
	NewTicks TickBuilder
	Output   Publisher
}

// Standard factory: one goroutine per stream, at most one stream per device/package pair
type BaseFactory struct {
	channel  string
	newProbe ProbeBuilder
	newTicks TickBuilder
	output   Publisher
	mu       sync.Mutex
	streams  map[streamKey]*Stream
	ctx      context.Context
}

type streamKey struct {
	deviceID  string
	packageID string
}

// Channel name to factory index
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	ctx       context.Context
}
