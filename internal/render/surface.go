// Package render defines the drawing surface the graph engine and
// visualizer paint onto, with a PNG rasterizer and a recorder for tests.
package render

import "github.com/intelligrit/fitment/internal/plot"

// Paint describes how a shape is drawn. Alpha of 0 means fully opaque.
type Paint struct {
	Color string
	Fill  bool
	Alpha float64
}

// Outline is an opaque stroke in color.
func Outline(color string) Paint {
	return Paint{Color: color}
}

// Solid is an opaque fill in color.
func Solid(color string) Paint {
	return Paint{Color: color, Fill: true}
}

// Surface is a 2D drawing target with its origin at the top left.
type Surface interface {
	Size() plot.Size
	Clear()
	Line(a, b plot.Point, color string)
	Polyline(pts []plot.Point, color string)
	Rect(x, y, w, h float64, p Paint)
	Polygon(pts []plot.Point, p Paint)
	Circle(c plot.Point, r float64, p Paint)
	// Text draws s with its baseline starting at p. A non-empty background
	// fills the text's box first.
	Text(p plot.Point, s, color, background string)
	TextWidth(s string) float64
}
