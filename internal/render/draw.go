package render

import "fmt"

// Lays out and draws the channel chart into bounds. Nothing is drawn for empty history.
func (renderer *Renderer) Draw(canvas Canvas, bounds Rect) (geometry Geometry) {
	geometry = renderer.Layout(bounds)
	if geometry.Empty() {
		return
	}

	plot := geometry.Plot
	bottomLeft := Point{X: plot.X, Y: plot.Y + plot.Height}
	canvas.DrawLine(Point{X: plot.X, Y: plot.Y}, bottomLeft, renderer.opts.AxisColor)
	canvas.DrawLine(bottomLeft, Point{X: plot.X + plot.Width, Y: plot.Y + plot.Height}, renderer.opts.AxisColor)

	for _, tick := range geometry.YTicks {
		canvas.DrawText(tick.Label, tick.At, renderer.opts.TextColor)
	}
	for _, tick := range geometry.XTicks {
		canvas.DrawText(tick.Label, tick.At, renderer.opts.TextColor)
	}

	for _, series := range geometry.Series {
		canvas.DrawPath(series.Points, series.Color)
	}

	for _, entry := range geometry.Legend {
		text := fmt.Sprintf("%s: %s (avg %s)", entry.Name, entry.Latest, entry.Average)
		canvas.DrawText(text, entry.At, entry.Color)
	}
	return
}
