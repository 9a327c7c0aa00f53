package mpmc

// Reads current counters. Counters are cumulative since queue creation.
func (queue *Queue[T]) CollectMetrics() (snap Snapshot) {
	snap = Snapshot{
		Depth:    queue.Depth(),
		Capacity: queue.Size,
		Pushed:   queue.Metrics.PushSuccess.Load(),
		Dropped:  queue.Metrics.PushFull.Load(),
		Popped:   queue.Metrics.PopSuccess.Load(),
	}
	return
}
