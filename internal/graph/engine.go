// Package graph is the interactive width/offset chart: a pointer moves a
// crosshair that writes wheel width and offset into every tracked set, and
// a click freezes it in place.
package graph

import (
	"math"
	"slices"
	"sort"

	"github.com/intelligrit/fitment/internal/logging"
	"github.com/intelligrit/fitment/internal/model"
	"github.com/intelligrit/fitment/internal/plot"
	"github.com/intelligrit/fitment/internal/render"
	"github.com/pterm/pterm"
)

// DataSet is one wheel setup tracked on the graph.
type DataSet struct {
	Width  *Slider
	Offset *Slider
	Spacer *Slider
	Color  string
}

// Options tunes engine behavior.
type Options struct {
	// ZeroWidthOnSpacer forces a set's width to its minimum on every
	// pointer move while that set has a spacer fitted.
	ZeroWidthOnSpacer bool

	Log *pterm.Logger
}

// DefaultOptions matches the shipped calculator.
func DefaultOptions() Options {
	return Options{ZeroWidthOnSpacer: true}
}

const (
	gridLines     = 12
	reticleRadius = 6
	exampleRadius = 3
	labelSize     = 8
	labelPad      = 4
)

// Engine owns the graph state. It is not safe for concurrent use.
type Engine struct {
	surface render.Surface
	opts    Options
	log     *pterm.Logger

	sets       []DataSet
	lines      []model.LineDescriptor
	examples   map[float64][]float64
	rideHeight float64

	frozen  bool
	hovered *plot.Point

	changeListeners []func(width, offset, spacer float64)
	freezeListeners []func()
}

// New creates an unfrozen engine drawing onto surface.
func New(surface render.Surface, rideHeight float64, opts Options) *Engine {
	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}
	return &Engine{
		surface:    surface,
		opts:       opts,
		log:        log,
		examples:   map[float64][]float64{},
		rideHeight: rideHeight,
	}
}

// Frozen reports whether the crosshair is pinned.
func (e *Engine) Frozen() bool { return e.frozen }

// Hovered returns the last pointer position, if the pointer is tracked.
func (e *Engine) Hovered() (plot.Point, bool) {
	if e.hovered == nil {
		return plot.Point{}, false
	}
	return *e.hovered, true
}

// Sets returns the tracked sets in registration order.
func (e *Engine) Sets() []DataSet { return e.sets }

// RideHeight returns the ride height used for guide equations.
func (e *Engine) RideHeight() float64 { return e.rideHeight }

// Lines returns the current guide lines.
func (e *Engine) Lines() []model.LineDescriptor { return e.lines }

// Examples returns the example dots, keyed by wheel width.
func (e *Engine) Examples() map[float64][]float64 { return e.examples }

// Mapper returns the pixel mapping spanning every set's slider bounds.
func (e *Engine) Mapper() (plot.Mapper, error) {
	widths := make([]plot.Bounds, len(e.sets))
	offsets := make([]plot.Bounds, len(e.sets))
	for i, s := range e.sets {
		widths[i] = s.Width.Bounds()
		offsets[i] = s.Offset.Bounds()
	}
	return plot.NewMapper(plot.RangeOf(widths, offsets), e.surface.Size())
}

// OnChange registers fn to receive a set's width, offset and spacer each
// time a pointer move changes that set. Writes made outside the engine do
// not fire it.
func (e *Engine) OnChange(fn func(width, offset, spacer float64)) {
	e.changeListeners = append(e.changeListeners, fn)
}

// OnFreeze registers fn to run when a click freezes the crosshair.
func (e *Engine) OnFreeze(fn func()) {
	e.freezeListeners = append(e.freezeListeners, fn)
}

// AddSet starts tracking s and redraws whenever one of its sliders changes.
func (e *Engine) AddSet(s DataSet) {
	redraw := func(float64, float64) { e.Redraw() }
	s.Width.OnChange(redraw)
	s.Offset.OnChange(redraw)
	s.Spacer.OnChange(redraw)
	e.sets = append(e.sets, s)
	e.Redraw()
}

// UpdateRideHeight changes the ride height fed to guide equations.
func (e *Engine) UpdateRideHeight(v float64) {
	e.rideHeight = v
	e.Redraw()
}

// UpdateLines replaces the guide lines. Nil clears them.
func (e *Engine) UpdateLines(lines []model.LineDescriptor) {
	e.lines = slices.Clone(lines)
	e.Redraw()
}

// UpdateExamples replaces the example dots, or with replace false appends
// the new offsets to those already shown at each width.
func (e *Engine) UpdateExamples(examples map[float64][]float64, replace bool) {
	if replace {
		e.examples = make(map[float64][]float64, len(examples))
	}
	for w, offsets := range examples {
		e.examples[w] = append(slices.Clone(e.examples[w]), offsets...)
	}
	e.Redraw()
}

// PointerMove tracks the pointer at p. While unfrozen, the snapped width
// and offset under the pointer are written to every set.
func (e *Engine) PointerMove(p plot.Point) {
	if e.frozen {
		return
	}
	m, err := e.Mapper()
	if err != nil {
		e.log.Warn("cannot map pointer", e.log.Args("error", err.Error()))
		return
	}
	e.hovered = &p

	width, offset := plot.Snap(m.WidthFromX(p.X), m.OffsetFromY(p.Y))
	for i, s := range e.sets {
		if width != s.Width.Value() && e.write(s.Width, width) {
			e.broadcastChange(i)
		}
		if offset != s.Offset.Value() && e.write(s.Offset, offset) {
			e.broadcastChange(i)
		}
		if e.opts.ZeroWidthOnSpacer && s.Spacer.Value() != 0 && s.Width.Value() != s.Width.Min() && e.write(s.Width, 0) {
			e.broadcastChange(i)
		}
	}
	e.Redraw()
}

// Click toggles the frozen state. Freezing drops the crosshair and fires
// freeze listeners; unfreezing moves every set to the clicked point
// without firing change listeners.
func (e *Engine) Click(p plot.Point) {
	e.frozen = !e.frozen
	if e.frozen {
		e.hovered = nil
		for _, fn := range e.freezeListeners {
			fn()
		}
		e.Redraw()
		return
	}

	m, err := e.Mapper()
	if err != nil {
		e.log.Warn("cannot map click", e.log.Args("error", err.Error()))
		return
	}
	width, offset := plot.Snap(m.WidthFromX(p.X), m.OffsetFromY(p.Y))
	for _, s := range e.sets {
		e.write(s.Width, width)
		e.write(s.Offset, offset)
	}
	e.Redraw()
}

// write reports whether the slider accepted v.
func (e *Engine) write(s *Slider, v float64) bool {
	return s.SetValue(v) == nil
}

func (e *Engine) broadcastChange(i int) {
	s := e.sets[i]
	for _, fn := range e.changeListeners {
		fn(s.Width.Value(), s.Offset.Value(), s.Spacer.Value())
	}
}

// Redraw repaints the whole graph. With no sets, only the grid is drawn.
func (e *Engine) Redraw() {
	sf := e.surface
	size := sf.Size()
	sf.Clear()

	for i := 1; i < gridLines; i++ {
		x := float64(i) * size.W / gridLines
		sf.Line(plot.Point{X: x}, plot.Point{X: x, Y: size.H}, "#eee")
	}

	m, err := e.Mapper()
	if err != nil {
		return
	}

	if e.hovered != nil {
		e.drawCrosshair(m, *e.hovered)
	}

	for _, s := range e.sets {
		c := m.Point(s.Width.Value(), s.Offset.Value()+s.Spacer.Value())
		sf.Circle(c, reticleRadius, render.Outline(s.Color))
	}

	widths := make([]float64, 0, len(e.examples))
	for w := range e.examples {
		widths = append(widths, w)
	}
	sort.Float64s(widths)
	for _, w := range widths {
		for _, o := range e.examples[w] {
			sf.Circle(m.Point(w, o), exampleRadius, render.Solid("gray"))
		}
	}

	e.drawAxisLabels(size)

	for _, l := range e.lines {
		if l.Vertical() {
			for _, s := range e.sets {
				x := m.XFromWidth(l.X(s.Width.Value(), s.Offset.Value()))
				sf.Line(plot.Point{X: x}, plot.Point{X: x, Y: size.H}, l.Color)
			}
			continue
		}
		e.drawEquation(m, l)
	}
}

// Reticles returns the pixel position of each set's reticle.
func (e *Engine) Reticles() []plot.Point {
	m, err := e.Mapper()
	if err != nil {
		return nil
	}
	out := make([]plot.Point, len(e.sets))
	for i, s := range e.sets {
		out[i] = m.Point(s.Width.Value(), s.Offset.Value()+s.Spacer.Value())
	}
	return out
}

// HoveredSet returns the set whose reticle lies under the pointer.
func (e *Engine) HoveredSet() (int, bool) {
	if e.hovered == nil {
		return -1, false
	}
	return plot.HitTest(e.Reticles(), *e.hovered, reticleRadius)
}

func (e *Engine) drawCrosshair(m plot.Mapper, p plot.Point) {
	sf := e.surface
	size := sf.Size()
	s := e.sets[0]
	w, o, sp := s.Width.Value(), s.Offset.Value(), s.Spacer.Value()

	// Leave a gap around the reticle.
	sf.Line(plot.Point{X: p.X}, plot.Point{X: p.X, Y: m.YFromOffset(o + 1)}, "black")
	sf.Line(plot.Point{X: p.X, Y: m.YFromOffset(o - 1)}, plot.Point{X: p.X, Y: size.H}, "black")

	y := p.Y + m.YFromOffset(sp) - m.YFromOffset(0)
	sf.Line(plot.Point{Y: y}, plot.Point{X: m.XFromWidth(w - 0.25), Y: y}, "black")
	sf.Line(plot.Point{X: m.XFromWidth(w + 0.25), Y: y}, plot.Point{X: size.W, Y: y}, "black")
}

func (e *Engine) drawAxisLabels(size plot.Size) {
	sf := e.surface
	sf.Text(plot.Point{X: labelPad, Y: size.H / 2}, "Wheel offset", "black", "")
	sf.Text(plot.Point{X: labelPad, Y: 2 * labelPad * 3}, "More Suck", "black", "")
	sf.Text(plot.Point{X: labelPad, Y: size.H - 2*labelPad*3}, "More Poke", "black", "")

	const label = "Wheel Width"
	sf.Text(plot.Point{X: (size.W - sf.TextWidth(label)) / 2, Y: size.H - labelPad}, label, "black", "")
}

// drawEquation samples the line at every pixel column and tags it with
// its label near the narrowest width.
func (e *Engine) drawEquation(m plot.Mapper, l model.LineDescriptor) {
	sf := e.surface
	size := sf.Size()

	pts := make([]plot.Point, 0, int(size.W)+1)
	for x := 0.0; x <= size.W; x++ {
		y := m.YFromOffset(l.Offset(m.WidthFromX(x), e.rideHeight))
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		pts = append(pts, plot.Point{X: x, Y: y})
	}
	sf.Polyline(pts, l.Color)

	if l.Label == "" {
		return
	}
	w := m.Range.Width.Min + 0.5
	at := plot.Point{
		X: m.XFromWidth(w) + labelPad,
		Y: m.YFromOffset(l.Offset(w, e.rideHeight)) + labelPad + labelSize + labelPad/2 + labelSize/2,
	}
	sf.Text(at, l.Label, "white", l.Color)
}
