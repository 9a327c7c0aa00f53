// Memory probe: resident size of this process and memory available to the system, in KB
package memory

import (
	"context"
	"fmt"
	"os"
	"perfoverlay/internal/stream"
	"perfoverlay/internal/telemetry"
	"time"

	sysmem "github.com/pbnjay/memory"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
)

const Group string = "memory"

type Source struct {
	readResident  func() (bytes uint64, err error)
	readAvailable func() (bytes uint64, err error)
}

// Creates a probe for the current process
func New() (new *Source, err error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		err = fmt.Errorf("failed to open process statistics: %v", err)
		return
	}

	new = &Source{
		readResident: func() (bytes uint64, err error) {
			info, err := proc.MemoryInfo()
			if err != nil {
				return
			}
			bytes = info.RSS
			return
		},
		readAvailable: availableMemory,
	}
	return
}

func NewProbe(deviceID, packageID string) (probe stream.Probe, err error) {
	probe, err = New()
	return
}

func (source *Source) Sample(ctx context.Context, now time.Time) (samples []telemetry.Sample, err error) {
	now = now.UTC()

	resident, err := source.readResident()
	if err != nil {
		err = fmt.Errorf("failed to read process memory: %v", err)
		return
	}
	available, err := source.readAvailable()
	if err != nil {
		err = fmt.Errorf("failed to read available memory: %v", err)
		return
	}

	sample, err := telemetry.NewSample(Group, []telemetry.DataPoint{
		{Timestamp: now, Value: float64(resident) / 1024, Annotation: "process"},
		{Timestamp: now, Value: float64(available) / 1024, Annotation: "available"},
	})
	if err != nil {
		return
	}
	samples = []telemetry.Sample{sample}
	return
}

// Available memory from the kernel, or free memory where that is not reported
func availableMemory() (bytes uint64, err error) {
	stat, err := mem.VirtualMemory()
	if err == nil && stat != nil && stat.Available > 0 {
		bytes = stat.Available
		return
	}

	bytes = sysmem.FreeMemory()
	if bytes == 0 {
		err = fmt.Errorf("free memory not reported by platform")
		return
	}
	err = nil
	return
}
