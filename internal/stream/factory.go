package stream

import (
	"context"
	"fmt"
	"perfoverlay/internal/global"
	"perfoverlay/internal/logctx"
	"perfoverlay/internal/telemetry"
	"sort"
	"strings"
	"time"
)

// Creates the standard stream factory for a channel
func NewFactory(ctx context.Context, conf FactoryConfig) (new *BaseFactory, err error) {
	if strings.TrimSpace(conf.Channel) == "" {
		err = &telemetry.ValidationError{Field: "channel", Reason: "must not be empty"}
		return
	}
	if conf.NewProbe == nil {
		err = fmt.Errorf("factory for channel %q: probe builder is required", conf.Channel)
		return
	}
	if conf.Output == nil {
		err = fmt.Errorf("factory for channel %q: output is required", conf.Channel)
		return
	}

	new = &BaseFactory{
		channel:  conf.Channel,
		newProbe: conf.NewProbe,
		newTicks: conf.NewTicks,
		output:   conf.Output,
		streams:  make(map[streamKey]*Stream),
		ctx:      logctx.AppendCtxTag(ctx, global.NSStream, conf.Channel),
	}
	if new.newTicks == nil {
		new.newTicks = SystemTicks(global.DefaultSampleInterval)
	}
	return
}

func (factory *BaseFactory) Channel() string {
	return factory.channel
}

// Starts a stream for the pair. A second start for a running pair fails with DuplicateStreamError.
// A pair whose stream was stopped directly is free again.
func (factory *BaseFactory) Start(deviceID, packageID string, deviceTimeOffset time.Duration) (stream *Stream, err error) {
	if strings.TrimSpace(deviceID) == "" {
		err = &telemetry.ValidationError{Field: "deviceID", Reason: "must not be empty"}
		return
	}
	if strings.TrimSpace(packageID) == "" {
		err = &telemetry.ValidationError{Field: "packageID", Reason: "must not be empty"}
		return
	}

	factory.mu.Lock()
	defer factory.mu.Unlock()

	key := streamKey{deviceID: deviceID, packageID: packageID}
	if existing, exists := factory.streams[key]; exists {
		if existing.IsRunning() {
			err = &telemetry.DuplicateStreamError{
				Channel:   factory.channel,
				DeviceID:  deviceID,
				PackageID: packageID,
			}
			return
		}
		// Stopped directly through Stream.Stop, pair is free
		delete(factory.streams, key)
	}

	probe, err := factory.newProbe(deviceID, packageID)
	if err != nil {
		err = fmt.Errorf("failed to create probe for channel %q: %v", factory.channel, err)
		return
	}

	stream = newStream(factory.channel, deviceID, packageID, deviceTimeOffset, probe, factory.newTicks(), factory.output)
	stream.start(factory.ctx)
	factory.streams[key] = stream

	logctx.LogEvent(factory.ctx, global.VerbosityProgress, global.InfoLog,
		"started stream %s for device %q package %q\n", stream.ID, deviceID, packageID)
	return
}

// Stops and discards a stream owned by this factory. Unknown or already stopped streams are ignored.
func (factory *BaseFactory) Stop(stream *Stream) {
	if stream == nil {
		return
	}

	factory.mu.Lock()
	key := streamKey{deviceID: stream.DeviceID, packageID: stream.PackageID}
	owned, exists := factory.streams[key]
	if !exists || owned != stream {
		factory.mu.Unlock()
		return
	}
	delete(factory.streams, key)
	factory.mu.Unlock()

	stream.Stop()

	logctx.LogEvent(factory.ctx, global.VerbosityProgress, global.InfoLog,
		"stopped stream %s\n", stream.ID)
}

// Snapshot of running streams ordered by device then package
func (factory *BaseFactory) Streams() (streams []*Stream) {
	factory.mu.Lock()
	streams = make([]*Stream, 0, len(factory.streams))
	for key, stream := range factory.streams {
		if !stream.IsRunning() {
			delete(factory.streams, key)
			continue
		}
		streams = append(streams, stream)
	}
	factory.mu.Unlock()

	sort.Slice(streams, func(i, j int) bool {
		if streams[i].DeviceID != streams[j].DeviceID {
			return streams[i].DeviceID < streams[j].DeviceID
		}
		return streams[i].PackageID < streams[j].PackageID
	})
	return
}
