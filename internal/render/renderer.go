// Converts retained channel history into chart geometry
package render

import (
	"math"
	"perfoverlay/internal/calc"
	"perfoverlay/internal/sink"
	"sort"
	"strconv"
	"time"
)

var defaultPalette = []Color{
	{R: 0x4e, G: 0x79, B: 0xa7},
	{R: 0xf2, G: 0x8e, B: 0x2b},
	{R: 0x59, G: 0xa1, B: 0x4f},
	{R: 0xe1, G: 0x57, B: 0x59},
	{R: 0x76, G: 0xb7, B: 0xb2},
	{R: 0xed, G: 0xc9, B: 0x48},
}

// Creates a renderer for channel reading from source. Zero option fields use defaults.
func New(channel string, source HistorySource, formatter Formatter, opts Options) (new *Renderer) {
	new = &Renderer{
		channel:   channel,
		source:    source,
		formatter: formatter,
		opts:      opts,
	}
	new.setDefaults()
	return
}

// Option value for fractional fields where zero is meaningful
func Fraction(value float64) *float64 {
	return &value
}

func (renderer *Renderer) setDefaults() {
	if renderer.opts.Padding == nil || *renderer.opts.Padding < 0 || math.IsNaN(*renderer.opts.Padding) {
		renderer.opts.Padding = Fraction(0.1)
	}
	if renderer.opts.XTicks <= 0 {
		renderer.opts.XTicks = 5
	}
	if renderer.opts.YTicks <= 0 {
		renderer.opts.YTicks = 4
	}
	if renderer.opts.MaxPoints <= 0 {
		renderer.opts.MaxPoints = 300
	}
	if renderer.opts.TrimPercent <= 0 {
		renderer.opts.TrimPercent = 0.05
	}
	if renderer.opts.Margins == (Margins{}) {
		renderer.opts.Margins = Margins{Left: 0.14, Right: 0.02, Top: 0.15, Bottom: 0.1}
	}
	if len(renderer.opts.Palette) == 0 {
		renderer.opts.Palette = defaultPalette
	}
	if renderer.opts.AxisColor == (Color{}) {
		renderer.opts.AxisColor = Color{R: 0x9e, G: 0x9e, B: 0x9e}
	}
	if renderer.opts.TextColor == (Color{}) {
		renderer.opts.TextColor = Color{R: 0xe0, G: 0xe0, B: 0xe0}
	}
	if renderer.formatter == nil {
		renderer.formatter = FormatterFunc(func(value float64, axisLabel bool) string {
			return strconv.FormatFloat(value, 'f', 2, 64)
		})
	}
}

func (renderer *Renderer) Channel() string {
	return renderer.channel
}

// Display string for a channel value
func (renderer *Renderer) GetLabelledValue(value float64, axisLabel bool) string {
	return renderer.formatter.Format(value, axisLabel)
}

// Computes geometry for the current history snapshot. Empty history gives geometry without series.
func (renderer *Renderer) Layout(bounds Rect) (geometry Geometry) {
	geometry.Channel = renderer.channel
	geometry.Bounds = bounds

	margins := renderer.opts.Margins
	geometry.Plot = Rect{
		X:      bounds.X + bounds.Width*margins.Left,
		Y:      bounds.Y + bounds.Height*margins.Top,
		Width:  bounds.Width * (1 - margins.Left - margins.Right),
		Height: bounds.Height * (1 - margins.Top - margins.Bottom),
	}

	records := renderer.source.GetHistory(renderer.channel, sink.Window{})
	if len(records) == 0 {
		return
	}

	grouped := groupSeries(records, renderer.opts.MaxPoints)
	if len(grouped) == 0 {
		return
	}

	// Visible ranges cover only what is laid out
	var values []float64
	geometry.XMin = grouped[0].samples[0].At
	geometry.XMax = geometry.XMin
	for _, group := range grouped {
		for _, sample := range group.samples {
			values = append(values, sample.Value)
			if sample.At.Before(geometry.XMin) {
				geometry.XMin = sample.At
			}
			if sample.At.After(geometry.XMax) {
				geometry.XMax = sample.At
			}
		}
	}
	geometry.YMin, geometry.YMax = paddedRange(values, *renderer.opts.Padding)

	for i, group := range grouped {
		series := Series{
			Name:    group.name,
			Color:   renderer.opts.Palette[i%len(renderer.opts.Palette)],
			Points:  make([]Point, len(group.samples)),
			Samples: group.samples,
		}
		seriesValues := make([]float64, len(group.samples))
		for j, sample := range group.samples {
			series.Points[j] = geometry.project(sample)
			seriesValues[j] = sample.Value
		}
		geometry.Series = append(geometry.Series, series)

		geometry.Legend = append(geometry.Legend, LegendEntry{
			Name:    group.name,
			Color:   series.Color,
			Latest:  renderer.GetLabelledValue(seriesValues[len(seriesValues)-1], false),
			Average: renderer.GetLabelledValue(calc.TrimmedMeanFloat64(seriesValues, renderer.opts.TrimPercent), false),
		})
	}

	// Legend rows share the top margin
	rowHeight := (geometry.Plot.Y - bounds.Y) / float64(len(geometry.Legend))
	for i := range geometry.Legend {
		geometry.Legend[i].At = Point{X: geometry.Plot.X, Y: bounds.Y + float64(i)*rowHeight}
	}

	geometry.XTicks = renderer.timeTicks(geometry)
	geometry.YTicks = renderer.valueTicks(geometry)
	return
}

// True when there is nothing to draw
func (geometry Geometry) Empty() bool {
	return len(geometry.Series) == 0
}

// Maps a sample to plot coordinates
func (geometry Geometry) project(sample SeriesSample) (point Point) {
	plot := geometry.Plot

	span := geometry.XMax.Sub(geometry.XMin)
	if span <= 0 {
		point.X = plot.X + plot.Width/2
	} else {
		point.X = plot.X + float64(sample.At.Sub(geometry.XMin))/float64(span)*plot.Width
	}

	valueSpan := geometry.YMax - geometry.YMin
	point.Y = plot.Y + plot.Height - (sample.Value-geometry.YMin)/valueSpan*plot.Height
	return
}

type seriesGroup struct {
	name    string
	samples []SeriesSample
}

// Splits records by annotation (falling back to group), keeping the newest maxPoints of each
func groupSeries(records []sink.Record, maxPoints int) (groups []seriesGroup) {
	index := make(map[string]int)
	for _, record := range records {
		// Unplottable
		if math.IsNaN(record.Value) || math.IsInf(record.Value, 0) {
			continue
		}
		name := record.Annotation
		if name == "" {
			name = record.Group
		}
		pos, exists := index[name]
		if !exists {
			pos = len(groups)
			index[name] = pos
			groups = append(groups, seriesGroup{name: name})
		}
		groups[pos].samples = append(groups[pos].samples, SeriesSample{At: record.Timestamp, Value: record.Value})
	}

	for i := range groups {
		if len(groups[i].samples) > maxPoints {
			groups[i].samples = groups[i].samples[len(groups[i].samples)-maxPoints:]
		}
	}

	// Stable colours across paints
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].name < groups[j].name
	})
	return
}

// Observed min/max widened by padding. Never returns an empty range.
func paddedRange(values []float64, padding float64) (min, max float64) {
	min, max = calc.MinMaxFloat64(values)

	base := max - min
	if base == 0 {
		base = min
		if base < 0 {
			base = -base
		}
		if base == 0 {
			base = 1
		}
	}
	min -= base * padding
	max += base * padding
	if max <= min {
		min -= base / 2
		max += base / 2
	}
	return
}

var niceSteps = []time.Duration{
	time.Second, 2 * time.Second, 5 * time.Second, 10 * time.Second, 15 * time.Second, 30 * time.Second,
	time.Minute, 2 * time.Minute, 5 * time.Minute, 10 * time.Minute, 15 * time.Minute, 30 * time.Minute,
	time.Hour, 2 * time.Hour, 3 * time.Hour, 6 * time.Hour, 12 * time.Hour, 24 * time.Hour,
}

// Smallest nice step giving at most target intervals over span
func niceTimeStep(span time.Duration, target int) (step time.Duration) {
	if target <= 0 {
		target = 1
	}
	for _, candidate := range niceSteps {
		step = candidate
		if span/candidate <= time.Duration(target) {
			return
		}
	}
	return
}

func (renderer *Renderer) timeTicks(geometry Geometry) (ticks []Tick) {
	labelY := geometry.Plot.Y + geometry.Plot.Height

	span := geometry.XMax.Sub(geometry.XMin)
	if span <= 0 {
		x := geometry.Plot.X + geometry.Plot.Width/2
		ticks = append(ticks, Tick{At: Point{X: x, Y: labelY}, Label: geometry.XMin.Local().Format("15:04:05")})
		return
	}

	step := niceTimeStep(span, renderer.opts.XTicks)
	first := geometry.XMin.Truncate(step)
	if first.Before(geometry.XMin) {
		first = first.Add(step)
	}
	for at := first; !at.After(geometry.XMax); at = at.Add(step) {
		x := geometry.Plot.X + float64(at.Sub(geometry.XMin))/float64(span)*geometry.Plot.Width
		ticks = append(ticks, Tick{At: Point{X: x, Y: labelY}, Label: at.Local().Format("15:04:05")})
	}
	return
}

func (renderer *Renderer) valueTicks(geometry Geometry) (ticks []Tick) {
	intervals := renderer.opts.YTicks
	step := (geometry.YMax - geometry.YMin) / float64(intervals)
	for i := 0; i <= intervals; i++ {
		value := geometry.YMin + float64(i)*step
		y := geometry.Plot.Y + geometry.Plot.Height - float64(i)/float64(intervals)*geometry.Plot.Height
		ticks = append(ticks, Tick{
			At:    Point{X: geometry.Bounds.X, Y: y},
			Label: renderer.GetLabelledValue(value, true),
		})
	}
	return
}
