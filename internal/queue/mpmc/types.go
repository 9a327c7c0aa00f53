package mpmc

import "sync/atomic"

type cell[T any] struct {
	seq  atomic.Uint64
	data T
}

// Fixed capacity ring buffer. Producers never block, consumers block on Pop until data or context end.
type Queue[T any] struct {
	Size     int
	mask     uint64
	buf      []cell[T]
	head     atomic.Uint64
	tail     atomic.Uint64
	notEmpty chan struct{}
	Metrics  *MetricStorage
}

type MetricStorage struct {
	PushSuccess    atomic.Uint64 // accepted items
	PushFull       atomic.Uint64 // rejected items (queue full)
	PushCASRetries atomic.Uint64 // CAS failed (seq==pos but CAS failed)

	PopSuccess    atomic.Uint64 // items handed to consumers
	PopCASRetries atomic.Uint64 // CAS failed
	PopWaits      atomic.Uint64 // consumer parked on empty queue
}

// Point-in-time copy of queue counters
type Snapshot struct {
	Depth    uint64
	Capacity int
	Pushed   uint64
	Dropped  uint64
	Popped   uint64
}
