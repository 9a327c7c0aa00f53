package sink

import (
	"sort"
	"time"
)

// Merges two ascending record slices. Existing records stay ahead of incoming ones with equal timestamps.
func mergeRecords(existing, incoming []Record) (merged []Record) {
	if len(existing) == 0 {
		merged = append(existing, incoming...)
		return
	}

	// Fast path: everything new is at or after the current tail
	if !incoming[0].Timestamp.Before(existing[len(existing)-1].Timestamp) {
		merged = append(existing, incoming...)
		return
	}

	merged = make([]Record, 0, len(existing)+len(incoming))
	i, j := 0, 0
	for i < len(existing) && j < len(incoming) {
		if incoming[j].Timestamp.Before(existing[i].Timestamp) {
			merged = append(merged, incoming[j])
			j++
		} else {
			merged = append(merged, existing[i])
			i++
		}
	}
	merged = append(merged, existing[i:]...)
	merged = append(merged, incoming[j:]...)
	return
}

// Evicts expired records from a locked history. Returns number removed.
func (sink *Sink) evictLocked(hist *history, now time.Time) (removed int) {
	count := len(hist.records)
	if count == 0 {
		return
	}

	var keepFrom int
	if sink.retention == 0 {
		// Latest value only: everything sharing the newest timestamp
		latest := hist.records[count-1].Timestamp
		keepFrom = sort.Search(count, func(i int) bool {
			return !hist.records[i].Timestamp.Before(latest)
		})
	} else {
		cutoff := now.Add(-sink.retention)
		keepFrom = sort.Search(count, func(i int) bool {
			return hist.records[i].Timestamp.After(cutoff)
		})
	}
	if keepFrom == 0 {
		return
	}

	kept := copy(hist.records, hist.records[keepFrom:])
	clear(hist.records[kept:])
	hist.records = hist.records[:kept]
	removed = keepFrom
	return
}
