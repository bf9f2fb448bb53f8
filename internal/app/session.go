// Package app composes the calculator: two editable setups sharing one
// graph, a combined visualizer and one visualizer per setup, backed by the
// example catalog.
package app

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/intelligrit/fitment/internal/catalog"
	"github.com/intelligrit/fitment/internal/fitment"
	"github.com/intelligrit/fitment/internal/geometry"
	"github.com/intelligrit/fitment/internal/graph"
	"github.com/intelligrit/fitment/internal/logging"
	"github.com/intelligrit/fitment/internal/model"
	"github.com/intelligrit/fitment/internal/plot"
	"github.com/intelligrit/fitment/internal/render"
	"github.com/intelligrit/fitment/internal/visualizer"
	"github.com/pterm/pterm"
)

// Side indexes.
const (
	SideA = 0
	SideB = 1
)

// Errors returned for bad session input.
var (
	ErrUnknownControl = errors.New("unknown control")
	ErrNoSide         = errors.New("no such side")
	ErrNoMatch        = errors.New("no such example")
)

// Surfaces are the drawing targets of a session.
type Surfaces struct {
	Graph    render.Surface
	Combined render.Surface
	Sides    [2]render.Surface
}

// Options configures a session.
type Options struct {
	Catalog  *catalog.Catalog
	Vehicles *fitment.Vehicles
	// Vehicle is the initial selection; empty means fitment.DefaultVehicle.
	Vehicle string

	Graph graph.Options
	Scale float64
	Log   *pterm.Logger

	Surfaces Surfaces
}

// Session is one user's calculator state. Methods are safe for concurrent
// use; catalog lookups triggered by freezing the graph run in the
// background and are applied only if no newer lookup has started.
type Session struct {
	mu sync.Mutex

	ctx      context.Context
	cat      *catalog.Catalog
	vehicles *fitment.Vehicles
	vehicle  model.VehicleDescriptor
	name     string
	log      *pterm.Logger

	rideHeight *graph.Slider
	sides      [2]*Side
	graph      *graph.Engine
	combined   *visualizer.Visualizer

	matches []model.RequiredFitmentDescriptor
	pending sync.WaitGroup
}

// New builds a session with both sides at the selected vehicle's stock
// setup. ctx bounds background catalog lookups.
func New(ctx context.Context, opts Options) (*Session, error) {
	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}
	name := opts.Vehicle
	if name == "" {
		name = fitment.DefaultVehicle
	}
	v, err := opts.Vehicles.Get(name)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ctx:      ctx,
		cat:      opts.Catalog,
		vehicles: opts.Vehicles,
		vehicle:  v,
		name:     name,
		log:      log,
	}

	stock := v.Stock
	s.rideHeight = graph.NewSlider(RideHeight, stock.RideHeight, rideHeightRange[0], rideHeightRange[1]).WithLogger(log)
	s.sides = [2]*Side{
		newSide("A", "blue", stock.Wheel.Front, stock.Tire.Front, stock.Front.Spacer),
		newSide("B", "red", stock.Wheel.Back, stock.Tire.Back, stock.Back.Spacer),
	}

	graphOpts := opts.Graph
	if graphOpts.Log == nil {
		graphOpts.Log = log
	}
	s.graph = graph.New(opts.Surfaces.Graph, s.rideHeight.Value(), graphOpts)
	s.graph.UpdateLines(v.Guides)
	s.combined = visualizer.New(opts.Surfaces.Combined, opts.Scale, s.rideHeight.Value())
	s.combined.UpdateLines(v.Guides)

	for i, side := range s.sides {
		for _, sl := range side.sliders() {
			sl.WithLogger(log)
		}
		s.graph.AddSet(side.dataSet())
		s.combined.AddSet(side.set())

		side.visualizer = visualizer.New(opts.Surfaces.Sides[i], opts.Scale, s.rideHeight.Value())
		side.visualizer.UpdateLines(v.Guides)
		side.visualizer.AddSet(side.set())

		// Spacer stays per side: the broadcast carries the changed set's
		// spacer, which belongs to that set only.
		s.graph.OnChange(func(width, offset, _ float64) {
			write(side.WheelWidth, width)
			write(side.WheelOffset, offset)
		})

		update := func(float64, float64) { s.syncVisualizers(i) }
		for _, sl := range side.sliders() {
			sl.OnChange(update)
		}
	}

	s.rideHeight.OnChange(func(v, _ float64) {
		s.graph.UpdateRideHeight(v)
		s.combined.UpdateRideHeight(v)
		for _, side := range s.sides {
			side.visualizer.UpdateRideHeight(v)
		}
	})
	s.graph.OnFreeze(s.requery)

	if s.cat != nil {
		s.graph.UpdateExamples(s.cat.Index().Offsets(name), true)
	}
	return s, nil
}

func (s *Session) syncVisualizers(i int) {
	set := s.sides[i].set()
	u := visualizer.Update{
		WheelWidth:    &set.Wheel.Width,
		WheelOffset:   &set.Wheel.Offset,
		WheelDiameter: &set.Wheel.Diameter,
		TireWidth:     &set.Tire.Width,
		TireAspect:    &set.Tire.Aspect,
		Spacer:        &set.Spacer,
	}
	if err := s.sides[i].visualizer.UpdateSet(0, u); err != nil {
		s.log.Error("updating visualizer", s.log.Args("side", s.sides[i].Name, "error", err.Error()))
	}
	if err := s.combined.UpdateSet(i, u); err != nil {
		s.log.Error("updating combined visualizer", s.log.Args("side", s.sides[i].Name, "error", err.Error()))
	}
}

// Do runs fn while holding the session lock, for reading surfaces.
func (s *Session) Do(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// Wait blocks until background catalog lookups have finished.
func (s *Session) Wait() {
	s.pending.Wait()
}

// PointerMove forwards pointer tracking to the graph.
func (s *Session) PointerMove(p plot.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph.PointerMove(p)
}

// Click toggles the graph freeze. Freezing starts a catalog lookup for the
// frozen setups.
func (s *Session) Click(p plot.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph.Click(p)
}

// SelectVehicle switches vehicles: guide lines and example dots follow,
// and previous matches are cleared.
func (s *Session) SelectVehicle(name string) error {
	v, err := s.vehicles.Get(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.name, s.vehicle = name, v
	s.matches = nil
	if s.cat != nil {
		s.cat.Begin()
		s.graph.UpdateExamples(s.cat.Index().Offsets(name), true)
	}
	s.graph.UpdateLines(v.Guides)
	s.combined.UpdateLines(v.Guides)
	for _, side := range s.sides {
		side.visualizer.UpdateLines(v.Guides)
	}
	return nil
}

// Reset puts a side back to the vehicle's stock setup, along with the
// shared ride height.
func (s *Session) Reset(side int) error {
	sd, err := s.side(side)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stock := s.vehicle.Stock
	wheel, tire, align := stock.Wheel.Front, stock.Tire.Front, stock.Front
	if side == SideB {
		wheel, tire, align = stock.Wheel.Back, stock.Tire.Back, stock.Back
	}
	write(sd.WheelOffset, wheel.Offset)
	write(sd.WheelWidth, wheel.Width)
	write(s.rideHeight, stock.RideHeight)
	write(sd.Spacer, align.Spacer)
	write(sd.TireWidth, tire.Width)
	write(sd.TireAspect, tire.Aspect)
	write(sd.WheelDiameter, wheel.Diameter)
	return nil
}

// Set writes one control. RideHeight ignores side.
func (s *Session) Set(side int, control string, v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, err := s.control(side, control)
	if err != nil {
		return err
	}
	return sl.SetValue(v)
}

// Lock locks or unlocks one control against writes.
func (s *Session) Lock(side int, control string, locked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, err := s.control(side, control)
	if err != nil {
		return err
	}
	sl.Lock(locked)
	return nil
}

// Apply copies the wheel or tire ("wheel" or "tire") from one axle
// ("front" or "back") of a listed match onto a side.
func (s *Session) Apply(side, match int, axle, part string) error {
	sd, err := s.side(side)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if match < 0 || match >= len(s.matches) {
		return fmt.Errorf("%w: %d", ErrNoMatch, match)
	}
	ex := s.matches[match]

	wheel, tire, align := ex.Wheel.Front, ex.Tire.Front, ex.Front
	switch axle {
	case "front":
	case "back":
		wheel, tire, align = ex.Wheel.Back, ex.Tire.Back, ex.Back
	default:
		return fmt.Errorf("unknown axle %q", axle)
	}

	switch part {
	case "wheel":
		write(sd.WheelWidth, wheel.Width)
		write(sd.WheelOffset, wheel.Offset)
		write(sd.WheelDiameter, wheel.Diameter)
		write(sd.Spacer, align.Spacer)
	case "tire":
		write(sd.TireWidth, tire.Width)
		write(sd.TireAspect, tire.Aspect)
	default:
		return fmt.Errorf("unknown part %q", part)
	}
	return nil
}

func (s *Session) side(i int) (*Side, error) {
	if i < 0 || i >= len(s.sides) {
		return nil, fmt.Errorf("%w: %d", ErrNoSide, i)
	}
	return s.sides[i], nil
}

func (s *Session) control(side int, control string) (*graph.Slider, error) {
	if control == RideHeight {
		return s.rideHeight, nil
	}
	sd, err := s.side(side)
	if err != nil {
		return nil, err
	}
	return sd.slider(control)
}

// requery runs with the session lock held, from the graph's freeze
// listener.
func (s *Session) requery() {
	if s.cat == nil {
		return
	}
	a, b := s.sides[SideA], s.sides[SideB]
	name := s.name
	aw, ao := a.WheelWidth.Value(), a.WheelOffset.Value()
	bw, bo := b.WheelWidth.Value(), b.WheelOffset.Value()
	staggered := aw != bw || ao != bo
	setup := Setup{
		A: Pair{Width: aw, Offset: ao},
		B: Pair{Width: bw, Offset: bo},
	}

	token := s.cat.Begin()
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		exs := s.cat.Fetch(s.ctx, name, aw, ao)
		if staggered {
			exs = appendUnique(exs, s.cat.Fetch(s.ctx, name, bw, bo))
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.cat.Current(token) {
			s.log.Debug("dropping stale lookup", s.log.Args("vehicle", name, "token", token))
			return
		}
		s.matches = s.matches[:0]
		for _, ex := range exs {
			if MatchesSetup(ex, setup) {
				s.matches = append(s.matches, ex)
			}
		}
		s.log.Debug("examples updated", s.log.Args("vehicle", name, "fetched", len(exs), "shown", len(s.matches)))
	}()
}

func appendUnique(dst, src []model.RequiredFitmentDescriptor) []model.RequiredFitmentDescriptor {
	for _, ex := range src {
		dup := false
		for _, have := range dst {
			if reflect.DeepEqual(have, ex) {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, ex)
		}
	}
	return dst
}

// Pair is a wheel width and offset.
type Pair struct {
	Width  float64 `json:"width"`
	Offset float64 `json:"offset"`
}

// Setup is the pair of user setups examples are matched against.
type Setup struct {
	A Pair `json:"a"`
	B Pair `json:"b"`
}

// MatchesSetup reports whether an example's front wheel matches setup A or
// its back wheel matches setup B.
func MatchesSetup(ex model.RequiredFitmentDescriptor, s Setup) bool {
	front := Pair{Width: ex.Wheel.Front.Width, Offset: ex.Wheel.Front.Offset}
	back := Pair{Width: ex.Wheel.Back.Width, Offset: ex.Wheel.Back.Offset}
	return front == s.A || back == s.B
}

// SideState is the JSON view of one side.
type SideState struct {
	Name          string                `json:"name"`
	Color         string                `json:"color"`
	Wheel         model.WheelDescriptor `json:"wheel"`
	Tire          model.TireDescriptor  `json:"tire"`
	Spacer        float64               `json:"spacer"`
	OuterDiameter float64               `json:"outer_diameter"`
	// SpeedoVsStock is the speedometer error against the stock front
	// assembly, omitted when not finite.
	SpeedoVsStock *float64        `json:"speedo_vs_stock,omitempty"`
	Locked        map[string]bool `json:"locked,omitempty"`
}

// State is the JSON view of a session.
type State struct {
	Vehicle    string                            `json:"vehicle"`
	RideHeight float64                           `json:"rideheight"`
	Frozen     bool                              `json:"frozen"`
	Staggered  bool                              `json:"staggered"`
	Sides      [2]SideState                      `json:"sides"`
	SpeedoBVsA *float64                          `json:"speedo_b_vs_a,omitempty"`
	Matches    []model.RequiredFitmentDescriptor `json:"matches"`
	// Hover is the side whose reticle is under the pointer.
	Hover *int `json:"hover,omitempty"`
}

// State snapshots the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	stock := geometry.Assembly{Wheel: s.vehicle.Stock.Wheel.Front, Tire: s.vehicle.Stock.Tire.Front}
	st := State{
		Vehicle:    s.name,
		RideHeight: s.rideHeight.Value(),
		Frozen:     s.graph.Frozen(),
		Staggered:  !s.sides[SideA].same(s.sides[SideB]),
		Matches:    append([]model.RequiredFitmentDescriptor{}, s.matches...),
	}

	var asm [2]geometry.Assembly
	for i, side := range s.sides {
		asm[i] = geometry.Assembly{Wheel: side.Wheel(), Tire: side.Tire()}
		ss := SideState{
			Name:          side.Name,
			Color:         side.Color,
			Wheel:         asm[i].Wheel,
			Tire:          asm[i].Tire,
			Spacer:        side.Spacer.Value(),
			OuterDiameter: geometry.OuterDiameter(asm[i].Wheel, asm[i].Tire),
			SpeedoVsStock: finite(geometry.SpeedometerError(stock, asm[i])),
		}
		for _, sl := range side.sliders() {
			if sl.Locked() {
				if ss.Locked == nil {
					ss.Locked = map[string]bool{}
				}
				ss.Locked[sl.Name] = true
			}
		}
		st.Sides[i] = ss
	}
	if i, ok := s.graph.HoveredSet(); ok {
		st.Hover = &i
	}
	st.SpeedoBVsA = finite(geometry.SpeedometerError(asm[SideA], asm[SideB]))
	return st
}

func finite(v float64) *float64 {
	if !geometry.IsFinite(v) {
		return nil
	}
	return &v
}
