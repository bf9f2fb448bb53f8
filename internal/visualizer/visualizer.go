// Package visualizer draws a head-on cross-section of one or more wheel and
// tire setups relative to the hub mounting face.
package visualizer

import (
	"errors"
	"fmt"
	"slices"

	"github.com/intelligrit/fitment/internal/geometry"
	"github.com/intelligrit/fitment/internal/model"
	"github.com/intelligrit/fitment/internal/plot"
	"github.com/intelligrit/fitment/internal/render"
)

// DefaultScale is pixels per millimeter.
const DefaultScale = 0.333

const (
	fillAlpha = 0.2
	labelPad  = 3
	labelSize = 10
)

// ErrNoSet is returned by UpdateSet for an index that was never added.
var ErrNoSet = errors.New("no such set")

// Set is one wheel and tire setup.
type Set struct {
	Wheel  model.WheelDescriptor
	Tire   model.TireDescriptor
	Spacer float64
	Color  string
}

// Update carries the fields of a set to change. Nil fields are left alone.
// RideHeight applies to the whole visualizer.
type Update struct {
	WheelWidth    *float64
	WheelOffset   *float64
	WheelDiameter *float64
	TireWidth     *float64
	TireAspect    *float64
	Spacer        *float64
	RideHeight    *float64
}

// MountingPoint is the guide drawn at the hub face on every visualizer.
var MountingPoint = model.VerticalAt("Mounting Point", "black", 0)

// Visualizer is not safe for concurrent use.
type Visualizer struct {
	surface    render.Surface
	scale      float64
	sets       []Set
	lines      []model.LineDescriptor
	rideHeight float64
}

// New returns a visualizer drawing at scale pixels per mm. A non-positive
// scale means DefaultScale.
func New(surface render.Surface, scale, rideHeight float64) *Visualizer {
	if scale <= 0 {
		scale = DefaultScale
	}
	return &Visualizer{surface: surface, scale: scale, rideHeight: rideHeight}
}

// Sets returns the tracked setups.
func (v *Visualizer) Sets() []Set { return v.sets }

// AddSet draws another setup.
func (v *Visualizer) AddSet(s Set) {
	v.sets = append(v.sets, s)
	v.Redraw()
}

// UpdateSet applies u to the set at index.
func (v *Visualizer) UpdateSet(index int, u Update) error {
	if index < 0 || index >= len(v.sets) {
		return fmt.Errorf("set %d: %w", index, ErrNoSet)
	}
	s := &v.sets[index]
	apply(&s.Wheel.Width, u.WheelWidth)
	apply(&s.Wheel.Offset, u.WheelOffset)
	apply(&s.Wheel.Diameter, u.WheelDiameter)
	apply(&s.Tire.Width, u.TireWidth)
	apply(&s.Tire.Aspect, u.TireAspect)
	apply(&s.Spacer, u.Spacer)
	apply(&v.rideHeight, u.RideHeight)
	v.Redraw()
	return nil
}

func apply(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

// UpdateLines replaces the vehicle guide lines. The mounting point is
// always drawn.
func (v *Visualizer) UpdateLines(lines []model.LineDescriptor) {
	v.lines = slices.Clone(lines)
	v.Redraw()
}

// UpdateRideHeight changes the ride height fed to guide equations.
func (v *Visualizer) UpdateRideHeight(rh float64) {
	v.rideHeight = rh
	v.Redraw()
}

// Rect is an axis-aligned box in pixels.
type Rect struct {
	X, Y, W, H float64
}

// Shape is the projection of one set.
type Shape struct {
	Color string
	Wheel Rect
	// TireTop and TireBottom trace the tire outline above and below the
	// rim, from the inner bead to the outer bead.
	TireTop    []plot.Point
	TireBottom []plot.Point
}

// GuideMark is one guide line placed for one set.
type GuideMark struct {
	Label string
	Color string
	X     float64
	// Row is the guide's position in the label stack, counted from the
	// bottom.
	Row int
}

// Projection is everything Redraw paints, in pixels.
type Projection struct {
	Shapes []Shape
	Guides []GuideMark
}

// Project computes the drawing without touching the surface.
func (v *Visualizer) Project() Projection {
	size := v.surface.Size()
	var p Projection

	lines := append([]model.LineDescriptor{MountingPoint}, v.lines...)
	for row, l := range lines {
		for _, s := range v.sets {
			p.Guides = append(p.Guides, GuideMark{
				Label: l.Label,
				Color: l.Color,
				X:     v.guideX(l, s, size),
				Row:   row,
			})
		}
	}

	for _, s := range v.sets {
		p.Shapes = append(p.Shapes, v.shape(s, size))
	}
	return p
}

// guideX places a guide in pixels. Vertical guides measure millimeters
// inboard of the hub face; equation guides give the flush offset, which
// for a zero-width wheel is the outboard distance of the fender lip.
func (v *Visualizer) guideX(l model.LineDescriptor, s Set, size plot.Size) float64 {
	if l.Vertical() {
		return size.W/2 - l.X(s.Wheel.Width, s.Wheel.Offset)*v.scale
	}
	return size.W/2 - l.Offset(0, v.rideHeight)*v.scale
}

func (v *Visualizer) shape(s Set, size plot.Size) Shape {
	wheelWidth := geometry.MM(s.Wheel.Width)
	diameter := geometry.MM(s.Wheel.Diameter)

	r := Rect{
		X: size.W/2 - (wheelWidth/2+s.Wheel.Offset-s.Spacer)*v.scale,
		Y: (size.H - diameter*v.scale) / 2,
		W: wheelWidth * v.scale,
		H: diameter * v.scale,
	}

	a := geometry.Stretch(s.Wheel, s.Tire) * v.scale
	b := geometry.Bulge(s.Wheel, s.Tire) * v.scale
	bottom := r.Y + r.H

	return Shape{
		Color: s.Color,
		Wheel: r,
		TireTop: []plot.Point{
			{X: r.X, Y: r.Y},
			{X: r.X + a, Y: r.Y - b},
			{X: r.X + r.W - a, Y: r.Y - b},
			{X: r.X + r.W, Y: r.Y},
		},
		TireBottom: []plot.Point{
			{X: r.X, Y: bottom},
			{X: r.X + a, Y: bottom + b},
			{X: r.X + r.W - a, Y: bottom + b},
			{X: r.X + r.W, Y: bottom},
		},
	}
}

// Redraw repaints the surface.
func (v *Visualizer) Redraw() {
	sf := v.surface
	size := sf.Size()
	sf.Clear()

	p := v.Project()
	for _, g := range p.Guides {
		sf.Line(plot.Point{X: g.X}, plot.Point{X: g.X, Y: size.H}, g.Color)
	}
	// Labels go on top of every line.
	for _, g := range p.Guides {
		y := size.H - labelPad - float64(g.Row)*(labelPad*3+labelSize)
		sf.Text(plot.Point{X: g.X + labelPad, Y: y - labelPad}, g.Label, "white", g.Color)
	}

	for _, s := range p.Shapes {
		translucent := render.Paint{Color: s.Color, Fill: true, Alpha: fillAlpha}
		sf.Polygon(s.TireTop, translucent)
		sf.Polygon(s.TireBottom, translucent)
		sf.Rect(s.Wheel.X, s.Wheel.Y, s.Wheel.W, s.Wheel.H, translucent)

		sf.Polyline(s.TireTop, s.Color)
		sf.Polyline(s.TireBottom, s.Color)
		sf.Rect(s.Wheel.X, s.Wheel.Y, s.Wheel.W, s.Wheel.H, render.Outline(s.Color))
	}
}
