package terminal

import (
	"bytes"
	"context"
	"perfoverlay/internal/render"
	"perfoverlay/internal/sink"
	"perfoverlay/internal/sources/graphics"
	"perfoverlay/internal/telemetry"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/text/language"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSurface_Size(t *testing.T) {
	surface := New(&bytes.Buffer{}, nil, nil, Config{})
	if w, h := surface.Size(); w != fallbackWidth || h != fallbackHeight {
		t.Fatalf("expected fallback size, got %dx%d", w, h)
	}

	fixed := New(&bytes.Buffer{}, nil, nil, Config{Width: 40, Height: 12})
	if w, h := fixed.Size(); w != 40 || h != 12 {
		t.Fatalf("expected configured size, got %dx%d", w, h)
	}
}

func TestSurface_Frame(t *testing.T) {
	history := sink.New(time.Hour)
	now := time.Now().UTC()
	sample, err := telemetry.NewSample("cpu", []telemetry.DataPoint{
		{Timestamp: now.Add(-2 * time.Second), Value: 20, Annotation: "system"},
		{Timestamp: now.Add(-time.Second), Value: 40, Annotation: "system"},
		{Timestamp: now, Value: 30, Annotation: "system"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := history.OnSamplesReceived("cpu", "d", "p", []telemetry.Sample{sample}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	renderers := []*render.Renderer{
		render.New("cpu", history, render.Percent(language.English), render.Options{}),
		render.New("memory", history, render.ByteSize(language.English), render.Options{}),
	}
	surface := New(&bytes.Buffer{}, renderers, nil, Config{Width: 80, Height: 30})

	frame := surface.Frame(80, 30)
	for _, want := range []string{"CPU", "MEMORY", "system: 30.00%", "waiting for samples", "*"} {
		if !strings.Contains(frame, want) {
			t.Fatalf("expected frame to contain %q:\n%s", want, frame)
		}
	}
	if lines := strings.Count(frame, "\n") + 1; lines != 30 {
		t.Fatalf("expected 30 rows, got %d", lines)
	}
}

func TestSurface_RunCountsFrames(t *testing.T) {
	history := sink.New(time.Hour)
	renderers := []*render.Renderer{render.New("cpu", history, render.Percent(language.English), render.Options{})}
	frames := &graphics.FrameCounter{}
	out := &lockedBuffer{}

	surface := New(out, renderers, frames, Config{Refresh: 10 * time.Millisecond, Width: 40, Height: 10})

	changes := make(chan sink.Change, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		surface.Run(ctx, changes)
		close(done)
	}()

	changes <- sink.Change{Channel: "cpu", At: time.Now()}
	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	painted, _ := frames.Swap()
	if painted == 0 {
		t.Fatalf("expected painted frames to be counted")
	}
	if !strings.Contains(out.String(), "CPU") {
		t.Fatalf("expected frames written to output")
	}
}
