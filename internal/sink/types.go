package sink

import (
	"context"
	"perfoverlay/internal/stream"
	"perfoverlay/internal/telemetry"
	"sync"
	"sync/atomic"
	"time"
)

// One retained point and its origin
type Record struct {
	telemetry.DataPoint
	Group     string
	DeviceID  string
	PackageID string
}

// Inclusive time bounds. Zero values are unbounded.
type Window struct {
	Start time.Time
	End   time.Time
}

// Notification that a channel history was modified
type Change struct {
	Channel string
	At      time.Time
}

// Source of batches for sink workers
type Inbox interface {
	Pop(ctx context.Context) (batch *stream.Batch, success bool)
}

// Bounded per-channel history with time based eviction
type Sink struct {
	retention time.Duration
	now       func() time.Time

	mu       sync.RWMutex // Guards channels map
	channels map[string]*history

	subMu sync.Mutex
	subs  map[*Subscription]struct{}

	Metrics MetricStorage
}

type history struct {
	mu      sync.RWMutex
	records []Record // ascending by timestamp
}

// Receiving side of change notifications
type Subscription struct {
	C    <-chan Change
	ch   chan Change
	sink *Sink
	once sync.Once
}

type MetricStorage struct {
	Batches       atomic.Uint64 // batches applied
	Rejected      atomic.Uint64 // batches from stopped streams
	Points        atomic.Uint64 // points inserted
	Evicted       atomic.Uint64 // points evicted
	NotifyDropped atomic.Uint64 // change notifications not delivered to a full subscriber
}
