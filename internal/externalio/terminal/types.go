package terminal

import (
	"io"
	"perfoverlay/internal/render"
	"perfoverlay/internal/sources/graphics"
	"time"
)

type Config struct {
	Refresh time.Duration // repaint cadence
	Width   int           // fixed columns, 0 = detect
	Height  int           // fixed rows, 0 = detect
	Clear   bool          // emit ANSI clear before each frame
}

// Repaints channel charts onto a terminal
type Surface struct {
	out       io.Writer
	fd        int
	renderers []*render.Renderer
	frames    *graphics.FrameCounter
	conf      Config
	lastPaint time.Time
}
