package overlay

import (
	"perfoverlay/internal/global"
	"perfoverlay/internal/logctx"
	"perfoverlay/internal/render"
	"perfoverlay/internal/stream"
	"time"
)

// Starts a producer for a device/package pair on an enabled channel
func (daemon *Daemon) StartStream(channel, deviceID, packageID string, deviceTimeOffset time.Duration) (started *stream.Stream, err error) {
	started, err = daemon.Registry.Start(channel, deviceID, packageID, deviceTimeOffset)
	if err != nil {
		return
	}
	logctx.LogEvent(daemon.ctx, global.VerbosityProgress, global.InfoLog,
		"started stream %s on channel '%s' for device '%s' package '%s'\n",
		started.ID, channel, deviceID, packageID)
	return
}

// Stops one producer. Batches it already published are rejected by the sink.
func (daemon *Daemon) StopStream(target *stream.Stream) {
	if target == nil {
		return
	}
	daemon.Registry.Stop(target)
	logctx.LogEvent(daemon.ctx, global.VerbosityProgress, global.InfoLog,
		"stopped stream %s on channel '%s'\n", target.ID, target.Channel)
}

// Stops every producer, retained history is kept
func (daemon *Daemon) StopAll() {
	daemon.Registry.StopAll()
}

// Drops all retained history
func (daemon *Daemon) Clear() {
	daemon.Sink.Clear()
	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog, "Cleared retained history\n")
}

// Running producers across all channels
func (daemon *Daemon) Streams() (streams []*stream.Stream) {
	streams = daemon.Registry.ActiveStreams()
	return
}

// Enabled channels in configured order
func (daemon *Daemon) Channels() (channels []string) {
	channels = append([]string(nil), daemon.channels...)
	return
}

func (daemon *Daemon) Renderer(channel string) (renderer *render.Renderer, found bool) {
	renderer, found = daemon.renderers[channel]
	return
}
