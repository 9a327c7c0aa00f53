package terminal

import (
	"math"
	"perfoverlay/internal/render"
	"strings"
)

// Character grid implementing render.Canvas. One canvas unit is one cell. Colour is ignored.
type Canvas struct {
	width  int
	height int
	cells  [][]rune
}

func NewCanvas(width, height int) (new *Canvas) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	new = &Canvas{
		width:  width,
		height: height,
		cells:  make([][]rune, height),
	}
	for row := range new.cells {
		new.cells[row] = []rune(strings.Repeat(" ", width))
	}
	return
}

func (canvas *Canvas) Width() int  { return canvas.width }
func (canvas *Canvas) Height() int { return canvas.height }

func (canvas *Canvas) set(x, y int, glyph rune) {
	if x < 0 || y < 0 || x >= canvas.width || y >= canvas.height {
		return
	}
	canvas.cells[y][x] = glyph
}

// Cell content at column x, row y (space when outside)
func (canvas *Canvas) At(x, y int) rune {
	if x < 0 || y < 0 || x >= canvas.width || y >= canvas.height {
		return ' '
	}
	return canvas.cells[y][x]
}

func cell(point render.Point) (x, y int) {
	x = int(math.Round(point.X))
	y = int(math.Round(point.Y))
	return
}

func finite(point render.Point) bool {
	return !math.IsNaN(point.X) && !math.IsInf(point.X, 0) && !math.IsNaN(point.Y) && !math.IsInf(point.Y, 0)
}

// Cuts a segment down to the part covering the grid (Liang-Barsky). Segments with non-finite ends are not visible.
func (canvas *Canvas) clip(from, to render.Point) (start, end render.Point, visible bool) {
	if !finite(from) || !finite(to) {
		return
	}
	dx := to.X - from.X
	dy := to.Y - from.Y
	if math.IsInf(dx, 0) || math.IsInf(dy, 0) {
		return
	}

	minX, minY := -0.5, -0.5
	maxX, maxY := float64(canvas.width)-0.5, float64(canvas.height)-0.5
	edges := [4][2]float64{
		{-dx, from.X - minX},
		{dx, maxX - from.X},
		{-dy, from.Y - minY},
		{dy, maxY - from.Y},
	}

	enter, leave := 0.0, 1.0
	for _, edge := range edges {
		p, q := edge[0], edge[1]
		if p == 0 {
			if q < 0 {
				return
			}
			continue
		}
		ratio := q / p
		if p < 0 {
			if ratio > leave {
				return
			}
			if ratio > enter {
				enter = ratio
			}
		} else {
			if ratio < enter {
				return
			}
			if ratio < leave {
				leave = ratio
			}
		}
	}

	start = render.Point{X: from.X + enter*dx, Y: from.Y + enter*dy}
	end = render.Point{X: from.X + leave*dx, Y: from.Y + leave*dy}
	visible = true
	return
}

func (canvas *Canvas) DrawLine(from, to render.Point, color render.Color) {
	from, to, visible := canvas.clip(from, to)
	if !visible {
		return
	}
	x0, y0 := cell(from)
	x1, y1 := cell(to)

	glyph := '*'
	switch {
	case y0 == y1:
		glyph = '-'
	case x0 == x1:
		glyph = '|'
	}
	canvas.bresenham(x0, y0, x1, y1, glyph)
}

// Connects consecutive points. A single point is drawn as a marker.
func (canvas *Canvas) DrawPath(points []render.Point, color render.Color) {
	if len(points) == 0 {
		return
	}
	if len(points) == 1 {
		if !finite(points[0]) {
			return
		}
		x, y := cell(points[0])
		canvas.set(x, y, 'o')
		return
	}
	for i := 1; i < len(points); i++ {
		from, to, visible := canvas.clip(points[i-1], points[i])
		if !visible {
			continue
		}
		x0, y0 := cell(from)
		x1, y1 := cell(to)
		canvas.bresenham(x0, y0, x1, y1, '*')
	}
}

// Writes text left to right starting at the given cell, clipped to the grid
func (canvas *Canvas) DrawText(text string, at render.Point, color render.Color) {
	if !finite(at) {
		return
	}
	x, y := cell(at)
	for _, glyph := range text {
		canvas.set(x, y, glyph)
		x++
	}
}

func (canvas *Canvas) bresenham(x0, y0, x1, y1 int, glyph rune) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	errAcc := dx + dy

	for {
		canvas.set(x0, y0, glyph)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * errAcc
		if e2 >= dy {
			errAcc += dy
			x0 += sx
		}
		if e2 <= dx {
			errAcc += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Grid rows joined by newlines with trailing spaces removed
func (canvas *Canvas) String() string {
	var builder strings.Builder
	for row, cells := range canvas.cells {
		if row > 0 {
			builder.WriteByte('\n')
		}
		builder.WriteString(strings.TrimRight(string(cells), " "))
	}
	return builder.String()
}
