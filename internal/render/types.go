package render

import (
	"perfoverlay/internal/sink"
	"time"
)

// Position in canvas units. Y grows downward.
type Point struct {
	X float64
	Y float64
}

// Drawing area in canvas units
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

type Color struct {
	R uint8
	G uint8
	B uint8
}

// Minimal drawing surface. A path with a single point is drawn as a marker.
type Canvas interface {
	DrawLine(from, to Point, color Color)
	DrawPath(points []Point, color Color)
	DrawText(text string, at Point, color Color)
}

// Read access to retained history
type HistorySource interface {
	GetHistory(channel string, window sink.Window) (records []sink.Record)
}

// Turns raw channel values into display strings
type Formatter interface {
	Format(value float64, axisLabel bool) (text string)
}

// Adapter to use ordinary functions as formatters
type FormatterFunc func(value float64, axisLabel bool) string

type Options struct {
	Padding     *float64 // fraction of the value span added above and below, nil for 0.1
	XTicks      int      // target number of time ticks
	YTicks      int      // number of value intervals
	MaxPoints   int      // newest points laid out per series
	TrimPercent float64  // trimmed from each end for legend average
	Margins     Margins
	Palette     []Color
	AxisColor   Color
	TextColor   Color
}

// Fractions of the target rect reserved around the plot
type Margins struct {
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
}

// Shared chart renderer, specialised per channel only by its formatter
type Renderer struct {
	channel   string
	source    HistorySource
	formatter Formatter
	opts      Options
}

// Drawable result of one layout pass. Recomputed on every paint.
type Geometry struct {
	Channel string
	Bounds  Rect
	Plot    Rect
	XMin    time.Time
	XMax    time.Time
	YMin    float64
	YMax    float64
	Series  []Series
	XTicks  []Tick
	YTicks  []Tick
	Legend  []LegendEntry
}

// One line in the chart
type Series struct {
	Name    string
	Color   Color
	Points  []Point
	Samples []SeriesSample
}

// Source value behind a series point
type SeriesSample struct {
	At    time.Time
	Value float64
}

type Tick struct {
	At    Point
	Label string
}

type LegendEntry struct {
	Name    string
	Color   Color
	Latest  string
	Average string
	At      Point
}
