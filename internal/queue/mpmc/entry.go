// Multi-producer Multi-Consumer lock-free ring buffer queue with power-of-two capacity
package mpmc

import (
	"context"
	"fmt"
	"runtime"
)

// Creates a new queue
func New[T any](capacity uint64) (new *Queue[T], err error) {
	if capacity < 2 {
		err = fmt.Errorf("capacity must be greater than or equal to 2")
		return
	}
	if (capacity & (capacity - 1)) != 0 {
		err = fmt.Errorf("capacity must be a power of two")
		return
	}

	buf := make([]cell[T], capacity)
	for i := uint64(0); i < capacity; i++ {
		buf[i].seq.Store(i)
	}

	new = &Queue[T]{
		Size:     int(capacity),
		mask:     capacity - 1,
		buf:      buf,
		notEmpty: make(chan struct{}, 1),
		Metrics:  &MetricStorage{},
	}
	return
}

// Attempts to write an element (non success = queue full)
func (queue *Queue[T]) Push(value T) (success bool) {
	var pos, seq uint64
	var cell *cell[T]

	for {
		pos = queue.tail.Load()
		cell = &queue.buf[pos&queue.mask]
		seq = cell.seq.Load()

		if seq == pos {
			if queue.tail.CompareAndSwap(pos, pos+1) {
				queue.Metrics.PushSuccess.Add(1)
				break
			}
			queue.Metrics.PushCASRetries.Add(1)
		} else if seq < pos {
			queue.Metrics.PushFull.Add(1)
			return
		} else {
			runtime.Gosched() // yield then retry
		}
	}

	cell.data = value
	cell.seq.Store(pos + 1)

	// notify blocked consumers, non-blocking
	select {
	case queue.notEmpty <- struct{}{}:
	default:
	}

	success = true
	return
}

// Attempts to read an element without waiting. Returns false if empty.
func (queue *Queue[T]) TryPop() (out T, success bool) {
	for {
		pos := queue.head.Load()
		cell := &queue.buf[pos&queue.mask]
		seq := cell.seq.Load()
		readySeq := pos + 1

		if seq == readySeq {
			if queue.head.CompareAndSwap(pos, pos+1) {
				out = cell.data
				var zero T
				cell.data = zero
				cell.seq.Store(pos + queue.mask + 1)

				queue.Metrics.PopSuccess.Add(1)
				success = true
				return
			}
			queue.Metrics.PopCASRetries.Add(1)
			continue
		}
		if seq < readySeq {
			// empty
			return
		}
		// seq > readySeq, another consumer ahead, retry
	}
}

// Reads an element, waiting for one to arrive. Returns false only when ctx ends with the queue empty.
func (queue *Queue[T]) Pop(ctx context.Context) (out T, success bool) {
	for {
		out, success = queue.TryPop()
		if success {
			// Pass the wakeup along when more items remain
			if queue.Depth() > 0 {
				select {
				case queue.notEmpty <- struct{}{}:
				default:
				}
			}
			return
		}

		queue.Metrics.PopWaits.Add(1)
		select {
		case <-ctx.Done():
			return
		case <-queue.notEmpty:
			continue // retry after being signaled
		}
	}
}

// Number of items currently held
func (queue *Queue[T]) Depth() (depth uint64) {
	head := queue.head.Load()
	tail := queue.tail.Load()
	if tail > head {
		depth = tail - head
	}
	return
}
