// Probe wrapping an arbitrary named-value reader
package custom

import (
	"context"
	"fmt"
	"perfoverlay/internal/stream"
	"perfoverlay/internal/telemetry"
	"sort"
	"time"
)

// Returns current values keyed by series name
type ReadFunc func(ctx context.Context) (values map[string]float64, err error)

type Source struct {
	group string
	read  ReadFunc
}

func New(group string, read ReadFunc) (new *Source) {
	new = &Source{
		group: group,
		read:  read,
	}
	return
}

func NewProbeBuilder(group string, read ReadFunc) (builder stream.ProbeBuilder) {
	builder = func(deviceID, packageID string) (probe stream.Probe, err error) {
		if read == nil {
			err = fmt.Errorf("no reader supplied for group %q", group)
			return
		}
		probe = New(group, read)
		return
	}
	return
}

// One point per returned value, ordered by name. No values means no sample.
func (source *Source) Sample(ctx context.Context, now time.Time) (samples []telemetry.Sample, err error) {
	values, err := source.read(ctx)
	if err != nil {
		return
	}
	if len(values) == 0 {
		return
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	now = now.UTC()
	points := make([]telemetry.DataPoint, 0, len(names))
	for _, name := range names {
		points = append(points, telemetry.DataPoint{Timestamp: now, Value: values[name], Annotation: name})
	}

	sample, err := telemetry.NewSample(source.group, points)
	if err != nil {
		return
	}
	samples = []telemetry.Sample{sample}
	return
}
