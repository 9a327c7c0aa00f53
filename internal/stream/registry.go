package stream

import (
	"context"
	"perfoverlay/internal/global"
	"perfoverlay/internal/logctx"
	"perfoverlay/internal/telemetry"
	"sort"
	"strings"
	"time"
)

// Creates an empty registry
func NewRegistry(ctx context.Context) (new *Registry) {
	new = &Registry{
		factories: make(map[string]Factory),
		ctx:       logctx.AppendCtxTag(ctx, global.NSRegistry),
	}
	return
}

// Adds a factory. Channel names are unique.
func (registry *Registry) Register(factory Factory) (err error) {
	channel := factory.Channel()
	if strings.TrimSpace(channel) == "" {
		err = &telemetry.ValidationError{Field: "channel", Reason: "must not be empty"}
		return
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, exists := registry.factories[channel]; exists {
		err = &telemetry.DuplicateChannelError{Channel: channel}
		return
	}
	registry.factories[channel] = factory

	logctx.LogEvent(registry.ctx, global.VerbosityProgress, global.InfoLog,
		"registered factory for channel %q\n", channel)
	return
}

// Finds the factory for a channel. Unknown channels are reported through found, not err.
func (registry *Registry) GetFactoryForChannel(channel string) (factory Factory, found bool, err error) {
	if strings.TrimSpace(channel) == "" {
		err = &telemetry.ValidationError{Field: "channel", Reason: "must not be empty"}
		return
	}

	registry.mu.RLock()
	factory, found = registry.factories[channel]
	registry.mu.RUnlock()
	return
}

// Sorted list of registered channels
func (registry *Registry) Channels() (channels []string) {
	registry.mu.RLock()
	channels = make([]string, 0, len(registry.factories))
	for channel := range registry.factories {
		channels = append(channels, channel)
	}
	registry.mu.RUnlock()

	sort.Strings(channels)
	return
}

// Snapshot of running streams across all factories, ordered by channel
func (registry *Registry) ActiveStreams() (streams []*Stream) {
	for _, channel := range registry.Channels() {
		factory, found, _ := registry.GetFactoryForChannel(channel)
		if !found {
			continue
		}
		for _, stream := range factory.Streams() {
			if stream.IsRunning() {
				streams = append(streams, stream)
			}
		}
	}
	return
}

// Starts a stream on the factory registered for channel
func (registry *Registry) Start(channel, deviceID, packageID string, deviceTimeOffset time.Duration) (stream *Stream, err error) {
	factory, found, err := registry.GetFactoryForChannel(channel)
	if err != nil {
		return
	}
	if !found {
		err = &telemetry.ValidationError{Field: "channel", Reason: "no factory registered for " + channel}
		return
	}
	stream, err = factory.Start(deviceID, packageID, deviceTimeOffset)
	return
}

// Routes stop to the owning factory. Unknown streams are ignored.
func (registry *Registry) Stop(stream *Stream) {
	if stream == nil {
		return
	}
	factory, found, err := registry.GetFactoryForChannel(stream.Channel)
	if err != nil || !found {
		return
	}
	factory.Stop(stream)
}

// Stops every stream of every factory
func (registry *Registry) StopAll() {
	registry.mu.RLock()
	factories := make([]Factory, 0, len(registry.factories))
	for _, factory := range registry.factories {
		factories = append(factories, factory)
	}
	registry.mu.RUnlock()

	var stopped int
	for _, factory := range factories {
		for _, stream := range factory.Streams() {
			factory.Stop(stream)
			stopped++
		}
	}

	if stopped > 0 {
		logctx.LogEvent(registry.ctx, global.VerbosityStandard, global.InfoLog,
			"stopped %d stream(s)\n", stopped)
	}
}
