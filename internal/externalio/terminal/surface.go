// Text terminal presentation surface
package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"perfoverlay/internal/global"
	"perfoverlay/internal/logctx"
	"perfoverlay/internal/render"
	"perfoverlay/internal/sink"
	"perfoverlay/internal/sources/graphics"
	"runtime/debug"
	"strings"
	"time"

	"golang.org/x/term"
)

const (
	fallbackWidth  int    = 100
	fallbackHeight int    = 30
	clearScreen    string = "\x1b[H\x1b[2J"
)

// Creates a surface writing to out. frames may be nil.
func New(out io.Writer, renderers []*render.Renderer, frames *graphics.FrameCounter, conf Config) (new *Surface) {
	if conf.Refresh <= 0 {
		conf.Refresh = global.DefaultRefreshInterval
	}
	new = &Surface{
		out:       out,
		fd:        -1,
		renderers: renderers,
		frames:    frames,
		conf:      conf,
	}
	if file, ok := out.(*os.File); ok {
		new.fd = int(file.Fd())
	}
	return
}

// Terminal size, configured size or fallback
func (surface *Surface) Size() (width, height int) {
	width, height = surface.conf.Width, surface.conf.Height
	if width > 0 && height > 0 {
		return
	}
	if surface.fd >= 0 && term.IsTerminal(surface.fd) {
		w, h, err := term.GetSize(surface.fd)
		if err == nil && w > 0 && h > 0 {
			width, height = w, h
			return
		}
	}
	width, height = fallbackWidth, fallbackHeight
	return
}

// Renders every channel stacked vertically into one frame
func (surface *Surface) Frame(width, height int) (frame string) {
	canvas := NewCanvas(width, height)
	if len(surface.renderers) == 0 {
		canvas.DrawText("no channels enabled", render.Point{}, render.Color{})
		frame = canvas.String()
		return
	}

	// Header row per chart, chart below it
	slot := float64(height) / float64(len(surface.renderers))
	for i, renderer := range surface.renderers {
		top := float64(i) * slot
		canvas.DrawText(strings.ToUpper(renderer.Channel()), render.Point{X: 0, Y: top}, render.Color{})

		bounds := render.Rect{X: 0, Y: top + 1, Width: float64(width - 1), Height: slot - 2}
		geometry := renderer.Draw(canvas, bounds)
		if geometry.Empty() {
			canvas.DrawText("waiting for samples", render.Point{X: 2, Y: top + 1}, render.Color{})
		}
	}
	frame = canvas.String()
	return
}

// Paints one frame to the output
func (surface *Surface) Paint() (err error) {
	width, height := surface.Size()
	frame := surface.Frame(width, height)

	if surface.conf.Clear {
		frame = clearScreen + frame
	}
	_, err = io.WriteString(surface.out, frame+"\n")
	if err != nil {
		err = fmt.Errorf("failed to write frame: %v", err)
		return
	}
	return
}

// Repaints on every refresh tick and on history changes (at most once per refresh interval) until ctx is cancelled
func (surface *Surface) Run(ctx context.Context, changes <-chan sink.Change) {
	ctx = logctx.AppendCtxTag(ctx, global.NSTerminal)

	ticker := time.NewTicker(surface.conf.Refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			surface.paintFrame(ctx)
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			if time.Since(surface.lastPaint) >= surface.conf.Refresh {
				surface.paintFrame(ctx)
			}
		}
	}
}

// Paints with panic recovery and frame accounting
func (surface *Surface) paintFrame(ctx context.Context) {
	start := time.Now()
	defer func() {
		if fatalError := recover(); fatalError != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic painting terminal frame: %v\n%s", fatalError, debug.Stack())
			surface.countDropped(1)
		}
	}()

	// Intervals missed since previous paint are dropped frames
	if !surface.lastPaint.IsZero() {
		missed := int(start.Sub(surface.lastPaint)/surface.conf.Refresh) - 1
		if missed > 0 {
			surface.countDropped(missed)
		}
	}
	surface.lastPaint = start

	err := surface.Paint()
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "%v\n", err)
		surface.countDropped(1)
		return
	}
	if surface.frames != nil {
		surface.frames.Painted()
	}
}

func (surface *Surface) countDropped(count int) {
	if surface.frames == nil {
		return
	}
	for i := 0; i < count; i++ {
		surface.frames.Dropped()
	}
}
