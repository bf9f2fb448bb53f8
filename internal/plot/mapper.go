// Package plot maps wheel widths (inches) and offsets (mm) onto a drawing
// surface and back.
package plot

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrDegenerateRange is returned when an axis has equal min and max, which
// leaves the mapping undefined.
var ErrDegenerateRange = errors.New("axis range has zero width")

// Bounds is a closed [Min, Max] interval.
type Bounds struct {
	Min, Max float64
}

// Span is Max - Min.
func (b Bounds) Span() float64 {
	return b.Max - b.Min
}

// Contains reports whether v lies inside the bounds.
func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Range holds the bounds of both axes.
type Range struct {
	Width  Bounds
	Offset Bounds
}

// Size is the pixel size of a drawing surface.
type Size struct {
	W, H float64
}

// Point is a pixel position.
type Point struct {
	X, Y float64
}

// Union returns the smallest bounds covering every input, or the zero
// Bounds when there are none.
func Union(bs []Bounds) Bounds {
	if len(bs) == 0 {
		return Bounds{}
	}
	mins := make([]float64, len(bs))
	maxs := make([]float64, len(bs))
	for i, b := range bs {
		mins[i], maxs[i] = b.Min, b.Max
	}
	return Bounds{Min: floats.Min(mins), Max: floats.Max(maxs)}
}

// RangeOf combines the per-set slider bounds of each axis independently.
func RangeOf(widths, offsets []Bounds) Range {
	return Range{Width: Union(widths), Offset: Union(offsets)}
}

// MapRange linearly maps v from [fromMin, fromMax] onto [toMin, toMax].
func MapRange(v, fromMin, fromMax, toMin, toMax float64) float64 {
	return toMin + (toMax-toMin)/(fromMax-fromMin)*(v-fromMin)
}

// Mapper converts between physical units and surface pixels. Width grows
// to the right; offset grows upward, so y is inverted.
type Mapper struct {
	Range Range
	Size  Size
}

// NewMapper validates the range and returns a mapper for the surface.
func NewMapper(r Range, s Size) (Mapper, error) {
	if r.Width.Span() == 0 {
		return Mapper{}, fmt.Errorf("width: %w", ErrDegenerateRange)
	}
	if r.Offset.Span() == 0 {
		return Mapper{}, fmt.Errorf("offset: %w", ErrDegenerateRange)
	}
	return Mapper{Range: r, Size: s}, nil
}

// XFromWidth maps a wheel width (in) to an x pixel.
func (m Mapper) XFromWidth(w float64) float64 {
	return MapRange(w, m.Range.Width.Min, m.Range.Width.Max, 0, m.Size.W)
}

// WidthFromX maps an x pixel to a wheel width (in).
func (m Mapper) WidthFromX(x float64) float64 {
	return MapRange(x, 0, m.Size.W, m.Range.Width.Min, m.Range.Width.Max)
}

// YFromOffset maps an offset (mm) to a y pixel.
func (m Mapper) YFromOffset(o float64) float64 {
	return MapRange(o, m.Range.Offset.Min, m.Range.Offset.Max, m.Size.H, 0)
}

// OffsetFromY maps a y pixel to an offset (mm).
func (m Mapper) OffsetFromY(y float64) float64 {
	return MapRange(y, m.Size.H, 0, m.Range.Offset.Min, m.Range.Offset.Max)
}

// Point maps a (width, offset) pair to a pixel.
func (m Mapper) Point(width, offset float64) Point {
	return Point{X: m.XFromWidth(width), Y: m.YFromOffset(offset)}
}

// Snap rounds a width to the nearest half inch and an offset to the
// nearest millimeter. Halves round up, toward positive infinity.
func Snap(width, offset float64) (float64, float64) {
	return roundHalfUp(width*2) / 2, roundHalfUp(offset)
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// HitTest returns the index of the point nearest p within radius pixels.
func HitTest(points []Point, p Point, radius float64) (int, bool) {
	best, bestDist := -1, math.Inf(1)
	for i, q := range points {
		d := math.Hypot(q.X-p.X, q.Y-p.Y)
		if d <= radius && d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, best >= 0
}
