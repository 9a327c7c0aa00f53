package telemetry

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Creates a new sample from the supplied points. Capture time is the earliest point timestamp.
func NewSample(group string, data []DataPoint) (sample Sample, err error) {
	if strings.TrimSpace(group) == "" {
		err = &ValidationError{Field: "group", Reason: "must not be empty"}
		return
	}
	if len(data) == 0 {
		err = &ValidationError{Field: "data", Reason: "must contain at least one data point"}
		return
	}
	for i, point := range data {
		if math.IsNaN(point.Value) || math.IsInf(point.Value, 0) {
			err = &ValidationError{Field: "data", Reason: fmt.Sprintf("point %d has non-finite value %v", i, point.Value)}
			return
		}
	}

	sample.group = group
	sample.data = make([]DataPoint, len(data))
	copy(sample.data, data)

	sample.capturedAt = sample.data[0].Timestamp
	for _, point := range sample.data[1:] {
		if point.Timestamp.Before(sample.capturedAt) {
			sample.capturedAt = point.Timestamp
		}
	}
	return
}

func (sample Sample) Group() string {
	return sample.group
}

func (sample Sample) CapturedAt() time.Time {
	return sample.capturedAt
}

// Returns a copy of the sample points in construction order
func (sample Sample) Data() (data []DataPoint) {
	data = make([]DataPoint, len(sample.data))
	copy(data, sample.data)
	return
}

// Number of points in sample
func (sample Sample) Len() int {
	return len(sample.data)
}

// Returns a copy of the sample with every timestamp moved back by offset
func (sample Sample) Shift(offset time.Duration) (shifted Sample) {
	if offset == 0 {
		shifted = sample
		return
	}
	shifted.group = sample.group
	shifted.capturedAt = sample.capturedAt.Add(-offset)
	shifted.data = make([]DataPoint, len(sample.data))
	for i, point := range sample.data {
		point.Timestamp = point.Timestamp.Add(-offset)
		shifted.data[i] = point
	}
	return
}
