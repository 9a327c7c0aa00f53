package sink

import "perfoverlay/internal/global"

// Registers for change notifications. Slow subscribers miss notifications rather than block the sink.
func (sink *Sink) Subscribe(buffer int) (sub *Subscription) {
	if buffer <= 0 {
		buffer = global.DefaultSubscriberBuffer
	}

	ch := make(chan Change, buffer)
	sub = &Subscription{
		C:    ch,
		ch:   ch,
		sink: sink,
	}

	sink.subMu.Lock()
	sink.subs[sub] = struct{}{}
	sink.subMu.Unlock()
	return
}

// Removes the registration and closes C. Safe to call repeatedly.
func (sub *Subscription) Close() {
	if sub == nil {
		return
	}
	sub.once.Do(func() {
		sub.sink.subMu.Lock()
		delete(sub.sink.subs, sub)
		close(sub.ch)
		sub.sink.subMu.Unlock()
	})
}

func (sink *Sink) notify(change Change) {
	sink.subMu.Lock()
	defer sink.subMu.Unlock()

	for sub := range sink.subs {
		select {
		case sub.ch <- change:
		default:
			sink.Metrics.NotifyDropped.Add(1)
		}
	}
}
