package telemetry

import "time"

// Single reading of a metric
type DataPoint struct {
	Timestamp  time.Time // UTC
	Value      float64
	Annotation string // e.g. "process", "system", series name when present
}

// Named group of co-timed data points. Built only through NewSample.
type Sample struct {
	group      string
	capturedAt time.Time
	data       []DataPoint
}

// Construction or lookup argument was not acceptable
type ValidationError struct {
	Field  string
	Reason string
}

// Factory registration collided with an existing channel
type DuplicateChannelError struct {
	Channel string
}

// Stream start collided with a running stream for the same device/package pair
type DuplicateStreamError struct {
	Channel   string
	DeviceID  string
	PackageID string
}
