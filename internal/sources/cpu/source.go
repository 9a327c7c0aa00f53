// CPU utilisation probe: this process and the whole system
package cpu

import (
	"context"
	"fmt"
	"perfoverlay/internal/stream"
	"perfoverlay/internal/telemetry"
	"runtime"
	"sync"
	"time"

	psutil "github.com/shirou/gopsutil/cpu"
	"golang.org/x/sys/unix"
)

const Group string = "cpu"

type Source struct {
	mu          sync.Mutex
	cores       int
	lastWall    time.Time
	lastCPU     time.Duration
	readProcess func() (used time.Duration, err error)
	readSystem  func() (percent float64, err error)
}

// Creates a probe reading real process and system counters
func New() (new *Source) {
	new = &Source{
		cores:       runtime.NumCPU(),
		readProcess: processTime,
		readSystem:  systemPercent,
	}
	if logical, err := psutil.Counts(true); err == nil && logical > 0 {
		new.cores = logical
	}
	return
}

// Probe builder for stream factories. Every stream tracks its own deltas.
func NewProbe(deviceID, packageID string) (probe stream.Probe, err error) {
	probe = New()
	return
}

// Process CPU percentage is normalised over all cores and needs a previous tick, so the first tick reports system only
func (source *Source) Sample(ctx context.Context, now time.Time) (samples []telemetry.Sample, err error) {
	source.mu.Lock()
	defer source.mu.Unlock()

	now = now.UTC()
	var points []telemetry.DataPoint

	used, err := source.readProcess()
	if err != nil {
		err = fmt.Errorf("failed to read process cpu time: %v", err)
		return
	}
	if !source.lastWall.IsZero() {
		wall := now.Sub(source.lastWall)
		if wall > 0 {
			percent := float64(used-source.lastCPU) / float64(wall) / float64(source.cores) * 100
			if percent < 0 {
				percent = 0
			}
			points = append(points, telemetry.DataPoint{Timestamp: now, Value: percent, Annotation: "process"})
		}
	}
	source.lastWall = now
	source.lastCPU = used

	system, err := source.readSystem()
	if err != nil {
		err = fmt.Errorf("failed to read system cpu usage: %v", err)
		return
	}
	points = append(points, telemetry.DataPoint{Timestamp: now, Value: system, Annotation: "system"})

	sample, err := telemetry.NewSample(Group, points)
	if err != nil {
		return
	}
	samples = []telemetry.Sample{sample}
	return
}

// User plus system time consumed by this process
func processTime() (used time.Duration, err error) {
	var usage unix.Rusage
	err = unix.Getrusage(unix.RUSAGE_SELF, &usage)
	if err != nil {
		return
	}
	used = time.Duration(usage.Utime.Nano() + usage.Stime.Nano())
	return
}

// System wide utilisation since the previous call
func systemPercent() (percent float64, err error) {
	percents, err := psutil.Percent(0, false)
	if err != nil {
		return
	}
	if len(percents) == 0 {
		err = fmt.Errorf("no cpu statistics available")
		return
	}
	percent = percents[0]
	return
}
