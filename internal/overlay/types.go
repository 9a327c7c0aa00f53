package overlay

import (
	"context"
	"io"
	"net/http"
	"perfoverlay/internal/externalio/terminal"
	"perfoverlay/internal/queue/mpmc"
	"perfoverlay/internal/render"
	"perfoverlay/internal/sink"
	"perfoverlay/internal/sources/graphics"
	"perfoverlay/internal/stream"
	"sync"
	"time"

	"golang.org/x/text/language"
)

type JSONConfig struct {
	DeviceID         string   `json:"deviceId,omitempty"`
	PackageID        string   `json:"packageId,omitempty"`
	DeviceTimeOffset string   `json:"deviceTimeOffset,omitempty"`
	Channels         []string `json:"channels"`
	Locale           string   `json:"locale,omitempty"`
	Pipeline         struct {
		SampleInterval  string `json:"sampleInterval"`
		RetentionPeriod string `json:"retentionPeriod"`
		SweepInterval   string `json:"sweepInterval,omitempty"`
		QueueSize       int    `json:"queueSize,omitempty"`
		SinkWorkers     int    `json:"sinkWorkers,omitempty"`
	} `json:"pipeline"`
	Terminal struct {
		Enabled bool   `json:"enabled"`
		Refresh string `json:"refreshInterval,omitempty"`
		Width   int    `json:"width,omitempty"`
		Height  int    `json:"height,omitempty"`
		Clear   bool   `json:"clearScreen"`
	} `json:"terminal"`
	Server struct {
		Enabled bool `json:"enabled"`
		Port    int  `json:"port,omitempty"`
	} `json:"chartServer"`
}

type Config struct {
	// Stream identity
	DeviceID         string
	PackageID        string
	DeviceTimeOffset time.Duration

	// Pipeline
	Channels        []string
	SampleInterval  time.Duration
	RetentionPeriod time.Duration
	SweepInterval   time.Duration
	QueueSize       int
	SinkWorkers     int

	// Presentation
	Locale          language.Tag
	TerminalEnabled bool
	TerminalOutput  io.Writer
	RefreshInterval time.Duration
	TerminalWidth   int
	TerminalHeight  int
	TerminalClear   bool
	ServerEnabled   bool
	ServerPort      int

	// Replacement probes/ticks per channel (not loaded from file)
	Probes map[string]stream.ProbeBuilder
	Ticks  stream.TickBuilder
}

type Daemon struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc

	wg           sync.WaitGroup
	ready        chan struct{}
	shutdownOnce sync.Once

	Queue        *mpmc.Queue[*stream.Batch]
	Sink         *sink.Sink
	Registry     *stream.Registry
	Frames       *graphics.FrameCounter
	Terminal     *terminal.Surface
	ChartServer  *http.Server
	channels     []string
	renderers    map[string]*render.Renderer
	subscription *sink.Subscription
}
