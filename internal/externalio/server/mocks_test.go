package server

import (
	"perfoverlay/internal/render"
	"perfoverlay/internal/sink"
	"perfoverlay/internal/telemetry"
	"sort"
	"testing"
	"time"

	"golang.org/x/text/language"
)

type mockCatalog struct {
	renderers map[string]*render.Renderer
}

func (catalog *mockCatalog) Channels() []string {
	var channels []string
	for channel := range catalog.renderers {
		channels = append(channels, channel)
	}
	sort.Strings(channels)
	return channels
}

func (catalog *mockCatalog) Renderer(channel string) (*render.Renderer, bool) {
	renderer, found := catalog.renderers[channel]
	return renderer, found
}

// Sink with cpu history at now-30s, now-20s, now-10s and an empty memory channel
func newFixture(t *testing.T) (*sink.Sink, *mockCatalog, time.Time) {
	t.Helper()
	history := sink.New(time.Hour)
	now := time.Now().UTC()

	var points []telemetry.DataPoint
	for i, seconds := range []int{30, 20, 10} {
		at := now.Add(-time.Duration(seconds) * time.Second)
		points = append(points,
			telemetry.DataPoint{Timestamp: at, Value: float64(10 * (i + 1)), Annotation: "system"},
			telemetry.DataPoint{Timestamp: at, Value: 37.5, Annotation: "process"},
		)
	}
	sample, err := telemetry.NewSample("cpu", points)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := history.OnSamplesReceived("cpu", "device-1", "pkg", []telemetry.Sample{sample}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	catalog := &mockCatalog{renderers: map[string]*render.Renderer{
		"cpu":    render.New("cpu", history, render.Percent(language.English), render.Options{}),
		"memory": render.New("memory", history, render.ByteSize(language.English), render.Options{}),
	}}
	return history, catalog, now
}
