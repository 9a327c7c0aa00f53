// Aggregation and retention point for all stream samples
package sink

import (
	"perfoverlay/internal/telemetry"
	"sort"
	"strings"
	"time"
)

// Creates an empty sink keeping retention worth of history per channel
func New(retention time.Duration) (new *Sink) {
	if retention < 0 {
		retention = 0
	}
	new = &Sink{
		retention: retention,
		now:       time.Now,
		channels:  make(map[string]*history),
		subs:      make(map[*Subscription]struct{}),
	}
	return
}

func (sink *Sink) Retention() time.Duration {
	return sink.retention
}

// Merges sample points into the channel history in timestamp order, then evicts expired points from it
func (sink *Sink) OnSamplesReceived(channel, deviceID, packageID string, samples []telemetry.Sample) (err error) {
	if strings.TrimSpace(channel) == "" {
		err = &telemetry.ValidationError{Field: "channel", Reason: "must not be empty"}
		return
	}

	var incoming []Record
	for _, sample := range samples {
		for _, point := range sample.Data() {
			incoming = append(incoming, Record{
				DataPoint: point,
				Group:     sample.Group(),
				DeviceID:  deviceID,
				PackageID: packageID,
			})
		}
	}
	if len(incoming) == 0 {
		return
	}
	sort.SliceStable(incoming, func(i, j int) bool {
		return incoming[i].Timestamp.Before(incoming[j].Timestamp)
	})

	hist := sink.getOrCreate(channel)
	now := sink.now()

	hist.mu.Lock()
	hist.records = mergeRecords(hist.records, incoming)
	evicted := sink.evictLocked(hist, now)
	hist.mu.Unlock()

	sink.Metrics.Points.Add(uint64(len(incoming)))
	sink.Metrics.Evicted.Add(uint64(evicted))
	sink.notify(Change{Channel: channel, At: now})
	return
}

// Removes every point at or before now minus retention from all channels
func (sink *Sink) Evict(now time.Time) (evicted int) {
	sink.mu.RLock()
	defer sink.mu.RUnlock()

	for channel, hist := range sink.channels {
		hist.mu.Lock()
		removed := sink.evictLocked(hist, now)
		hist.mu.Unlock()

		if removed > 0 {
			evicted += removed
			sink.notify(Change{Channel: channel, At: now})
		}
	}
	sink.Metrics.Evicted.Add(uint64(evicted))
	return
}

// Copy of channel history clipped to window. Unknown channels return an empty slice.
func (sink *Sink) GetHistory(channel string, window Window) (records []Record) {
	records = []Record{}

	sink.mu.RLock()
	hist, exists := sink.channels[channel]
	sink.mu.RUnlock()
	if !exists {
		return
	}

	hist.mu.RLock()
	defer hist.mu.RUnlock()

	start := 0
	if !window.Start.IsZero() {
		start = sort.Search(len(hist.records), func(i int) bool {
			return !hist.records[i].Timestamp.Before(window.Start)
		})
	}
	end := len(hist.records)
	if !window.End.IsZero() {
		end = sort.Search(len(hist.records), func(i int) bool {
			return hist.records[i].Timestamp.After(window.End)
		})
	}
	if start >= end {
		return
	}

	records = make([]Record, end-start)
	copy(records, hist.records[start:end])
	return
}

// Sorted list of channels that have been observed
func (sink *Sink) Channels() (channels []string) {
	sink.mu.RLock()
	channels = make([]string, 0, len(sink.channels))
	for channel := range sink.channels {
		channels = append(channels, channel)
	}
	sink.mu.RUnlock()

	sort.Strings(channels)
	return
}

// Number of retained points for channel
func (sink *Sink) Len(channel string) (count int) {
	sink.mu.RLock()
	hist, exists := sink.channels[channel]
	sink.mu.RUnlock()
	if !exists {
		return
	}

	hist.mu.RLock()
	count = len(hist.records)
	hist.mu.RUnlock()
	return
}

// Drops all retained history
func (sink *Sink) Clear() {
	sink.mu.Lock()
	cleared := make([]string, 0, len(sink.channels))
	for channel := range sink.channels {
		cleared = append(cleared, channel)
	}
	sink.channels = make(map[string]*history)
	sink.mu.Unlock()

	now := sink.now()
	for _, channel := range cleared {
		sink.notify(Change{Channel: channel, At: now})
	}
}

func (sink *Sink) getOrCreate(channel string) (hist *history) {
	sink.mu.RLock()
	hist, exists := sink.channels[channel]
	sink.mu.RUnlock()
	if exists {
		return
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	hist, exists = sink.channels[channel]
	if !exists {
		hist = &history{}
		sink.channels[channel] = hist
	}
	return
}
