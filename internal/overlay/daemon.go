// Diagnostics overlay daemon: stream producers, shared queue, retaining sink and presentation surfaces
package overlay

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"perfoverlay/internal/atomics"
	"perfoverlay/internal/externalio/server"
	"perfoverlay/internal/externalio/terminal"
	"perfoverlay/internal/global"
	"perfoverlay/internal/logctx"
	"perfoverlay/internal/queue/mpmc"
	"perfoverlay/internal/render"
	"perfoverlay/internal/sink"
	"perfoverlay/internal/sources/cpu"
	"perfoverlay/internal/sources/custom"
	"perfoverlay/internal/sources/graphics"
	"perfoverlay/internal/sources/memory"
	"perfoverlay/internal/stream"
	"perfoverlay/internal/telemetry"
	"time"
)

// Create new overlay daemon instance
func NewDaemon(cfg Config) (new *Daemon) {
	ctx, cancel := context.WithCancel(context.Background())
	new = &Daemon{
		cfg:       cfg,
		ctx:       ctx,
		cancel:    cancel,
		ready:     make(chan struct{}),
		renderers: make(map[string]*render.Renderer),
	}
	return
}

// Starts pipeline workers and surfaces in background - gracefully shuts down if startup error is encountered
func (daemon *Daemon) Start(globalCtx context.Context) (err error) {
	// New context for the daemon
	daemon.ctx, daemon.cancel = context.WithCancel(context.Background())
	daemon.ctx = logctx.WithLogger(daemon.ctx, logctx.GetLogger(globalCtx))

	// Top level tag for daemon logs
	daemon.ctx = logctx.AppendCtxTag(daemon.ctx, global.NSOverlay)

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog, "Starting...\n")

	// Pre-startup
	global.Hostname, _ = os.Hostname()
	global.PID = os.Getpid()
	daemon.cfg.setDefaults()

	// Transport between streams and sink
	daemon.Queue, err = mpmc.New[*stream.Batch](uint64(daemon.cfg.QueueSize))
	if err != nil {
		err = fmt.Errorf("failed creating batch queue: %v", err)
		daemon.Shutdown()
		return
	}

	daemon.Sink = sink.New(daemon.cfg.RetentionPeriod)
	daemon.Registry = stream.NewRegistry(daemon.ctx)
	daemon.Frames = &graphics.FrameCounter{}

	// One factory and renderer per enabled channel
	for _, channel := range daemon.cfg.Channels {
		probe := daemon.probeFor(channel)
		if probe == nil {
			err = &telemetry.ValidationError{Field: "channels", Reason: "unknown channel " + channel}
			daemon.Shutdown()
			return
		}

		var factory *stream.BaseFactory
		factory, err = stream.NewFactory(daemon.ctx, stream.FactoryConfig{
			Channel:  channel,
			NewProbe: probe,
			NewTicks: daemon.ticks(),
			Output:   daemon.Queue,
		})
		if err != nil {
			err = fmt.Errorf("failed creating stream factory for channel '%s': %v", channel, err)
			daemon.Shutdown()
			return
		}
		err = daemon.Registry.Register(factory)
		if err != nil {
			daemon.Shutdown()
			return
		}

		daemon.renderers[channel] = render.New(channel, daemon.Sink, daemon.formatterFor(channel), render.Options{})
		daemon.channels = append(daemon.channels, channel)
	}

	// Sink workers and sweeper
	workerCtx := daemon.ctx
	daemon.wg.Add(1)
	go func() {
		defer daemon.wg.Done()
		daemon.Sink.Run(workerCtx, daemon.Queue, daemon.cfg.SinkWorkers, daemon.cfg.SweepInterval)
	}()

	// Producers for the configured device/package
	for _, channel := range daemon.channels {
		_, err = daemon.StartStream(channel, daemon.cfg.DeviceID, daemon.cfg.PackageID, daemon.cfg.DeviceTimeOffset)
		if err != nil {
			err = fmt.Errorf("failed starting stream for channel '%s': %v", channel, err)
			daemon.Shutdown()
			return
		}
	}

	// Terminal surface
	if daemon.cfg.TerminalEnabled {
		renderers := make([]*render.Renderer, 0, len(daemon.channels))
		for _, channel := range daemon.channels {
			renderers = append(renderers, daemon.renderers[channel])
		}
		daemon.Terminal = terminal.New(daemon.cfg.TerminalOutput, renderers, daemon.Frames, terminal.Config{
			Refresh: daemon.cfg.RefreshInterval,
			Width:   daemon.cfg.TerminalWidth,
			Height:  daemon.cfg.TerminalHeight,
			Clear:   daemon.cfg.TerminalClear,
		})
		daemon.subscription = daemon.Sink.Subscribe(0)

		changes := daemon.subscription.C
		daemon.wg.Add(1)
		go func() {
			defer daemon.wg.Done()
			daemon.Terminal.Run(workerCtx, changes)
		}()
	}

	// Chart server
	if daemon.cfg.ServerEnabled {
		// Copy so server ns tags stay local
		serverCtx := logctx.AppendCtxTag(daemon.ctx, global.NSServer)

		daemon.ChartServer, err = server.SetupListener(serverCtx, daemon.cfg.ServerPort, daemon.Sink, daemon)
		if err != nil {
			err = fmt.Errorf("failed setting up chart server: %v", err)
			daemon.Shutdown()
			return
		}
		chartServer := daemon.ChartServer
		daemon.wg.Add(1)
		go func() {
			defer daemon.wg.Done()
			server.Start(serverCtx, chartServer)
		}()
	}

	close(daemon.ready)
	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
		"Startup complete (%d channel(s), retention %s).\n", len(daemon.channels), daemon.cfg.RetentionPeriod)
	return
}

// Closed once startup completed successfully
func (daemon *Daemon) Ready() <-chan struct{} {
	return daemon.ready
}

// Blocking daemon waiter
func (daemon *Daemon) Run() {
	<-daemon.ctx.Done()
}

// Gracefully shutdown streams, sink workers and surfaces (errors are printed to program log buffer)
func (daemon *Daemon) Shutdown() {
	daemon.shutdownOnce.Do(daemon.shutdown)
}

func (daemon *Daemon) shutdown() {
	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
		"Daemon shutdown started...\n")

	// Stop chart server
	if daemon.ChartServer != nil {
		shutdownCtx, cancel := context.WithTimeout(daemon.ctx, global.ShutdownTimeout)
		err := daemon.ChartServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil && err != http.ErrServerClosed {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"chart HTTP server did not shutdown gracefully: %v\n", err)
		}
	}

	// Stop producers first so the queue can only shrink
	if daemon.Registry != nil {
		daemon.Registry.StopAll()
	}

	// Let sink workers drain what was already published
	if daemon.Queue != nil {
		success, last := atomics.WaitUntilZero(daemon.Queue.Depth, global.QueueDrainTimeout)
		if !success {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"batch queue did not empty in time: dropped %d batches\n", last)
		}
	}

	// Stop workers, sweeper and surfaces
	daemon.cancel()
	daemon.subscription.Close()

	// Wait for all workers to finish (with timeout)
	done := make(chan struct{})
	go func() {
		daemon.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
			"Daemon shutdown completed successfully\n")
	case <-time.After(global.ShutdownTimeout):
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
			"Timeout: overlay daemon did not shutdown within %v seconds\n",
			global.ShutdownTimeout.Seconds())
	}
}

// Probe builder for a channel: configured replacement first, then built-in sources
func (daemon *Daemon) probeFor(channel string) (builder stream.ProbeBuilder) {
	if replacement, ok := daemon.cfg.Probes[channel]; ok {
		builder = replacement
		return
	}

	switch channel {
	case global.ChannelCPU:
		builder = cpu.NewProbe
	case global.ChannelMemory:
		builder = memory.NewProbe
	case global.ChannelGraphics:
		builder = graphics.NewProbeBuilder(daemon.Frames)
	case global.ChannelOverlay:
		builder = custom.NewProbeBuilder(global.ChannelOverlay, daemon.readSelf)
	}
	return
}

// Tick source shared by every factory
func (daemon *Daemon) ticks() (builder stream.TickBuilder) {
	builder = daemon.cfg.Ticks
	if builder == nil {
		builder = stream.SystemTicks(daemon.cfg.SampleInterval)
	}
	return
}

// Value formatting per channel unit
func (daemon *Daemon) formatterFor(channel string) (formatter render.Formatter) {
	switch channel {
	case global.ChannelCPU:
		formatter = render.Percent(daemon.cfg.Locale)
	case global.ChannelMemory:
		formatter = render.ByteSize(daemon.cfg.Locale)
	default:
		formatter = render.Integer(daemon.cfg.Locale)
	}
	return
}

// Pipeline self-observation for the overlay channel
func (daemon *Daemon) readSelf(ctx context.Context) (values map[string]float64, err error) {
	queueStats := daemon.Queue.CollectMetrics()
	values = map[string]float64{
		"depth":   float64(queueStats.Depth),
		"dropped": float64(queueStats.Dropped),
		"evicted": float64(daemon.Sink.Metrics.Evicted.Load()),
		"streams": float64(len(daemon.Registry.ActiveStreams())),
	}
	return
}
