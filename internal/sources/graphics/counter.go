package graphics

import "sync/atomic"

// Frame counters shared between presentation surfaces and the graphics probe
type FrameCounter struct {
	painted atomic.Uint64
	dropped atomic.Uint64
}

// Records a completed paint
func (counter *FrameCounter) Painted() {
	counter.painted.Add(1)
}

// Records a paint that was skipped
func (counter *FrameCounter) Dropped() {
	counter.dropped.Add(1)
}

// Returns and resets both counters
func (counter *FrameCounter) Swap() (painted, dropped uint64) {
	painted = counter.painted.Swap(0)
	dropped = counter.dropped.Swap(0)
	return
}
