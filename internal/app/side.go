package app

import (
	"fmt"

	"github.com/intelligrit/fitment/internal/graph"
	"github.com/intelligrit/fitment/internal/model"
	"github.com/intelligrit/fitment/internal/visualizer"
)

// Control names accepted by Session.Set and Session.Lock.
const (
	WheelWidth    = "wheel.width"
	WheelOffset   = "wheel.offset"
	WheelDiameter = "wheel.diameter"
	TireWidth     = "tire.width"
	TireAspect    = "tire.aspect"
	Spacer        = "spacer"
	RideHeight    = "rideheight"
)

// Slider ranges shared by both sides.
var (
	wheelWidthRange    = [2]float64{5, 12}
	wheelOffsetRange   = [2]float64{-50, 70}
	wheelDiameterRange = [2]float64{13, 22}
	tireWidthRange     = [2]float64{145, 355}
	tireAspectRange    = [2]float64{25, 80}
	spacerRange        = [2]float64{0, 50}
	rideHeightRange    = [2]float64{0, 4}
)

// Side is one user-editable setup.
type Side struct {
	Name  string
	Color string

	WheelWidth    *graph.Slider
	WheelOffset   *graph.Slider
	WheelDiameter *graph.Slider
	TireWidth     *graph.Slider
	TireAspect    *graph.Slider
	Spacer        *graph.Slider

	visualizer *visualizer.Visualizer
}

func newSide(name, color string, wheel model.WheelDescriptor, tire model.TireDescriptor, spacer float64) *Side {
	slider := func(control string, v float64, r [2]float64) *graph.Slider {
		return graph.NewSlider(control, v, r[0], r[1])
	}
	return &Side{
		Name:          name,
		Color:         color,
		WheelWidth:    slider(WheelWidth, wheel.Width, wheelWidthRange),
		WheelOffset:   slider(WheelOffset, wheel.Offset, wheelOffsetRange),
		WheelDiameter: slider(WheelDiameter, wheel.Diameter, wheelDiameterRange),
		TireWidth:     slider(TireWidth, tire.Width, tireWidthRange),
		TireAspect:    slider(TireAspect, tire.Aspect, tireAspectRange),
		Spacer:        slider(Spacer, spacer, spacerRange),
	}
}

func (s *Side) sliders() []*graph.Slider {
	return []*graph.Slider{s.WheelWidth, s.WheelOffset, s.WheelDiameter, s.TireWidth, s.TireAspect, s.Spacer}
}

func (s *Side) slider(control string) (*graph.Slider, error) {
	switch control {
	case WheelWidth:
		return s.WheelWidth, nil
	case WheelOffset:
		return s.WheelOffset, nil
	case WheelDiameter:
		return s.WheelDiameter, nil
	case TireWidth:
		return s.TireWidth, nil
	case TireAspect:
		return s.TireAspect, nil
	case Spacer:
		return s.Spacer, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownControl, control)
}

// Wheel returns the side's current wheel.
func (s *Side) Wheel() model.WheelDescriptor {
	return model.WheelDescriptor{
		Width:    s.WheelWidth.Value(),
		Offset:   s.WheelOffset.Value(),
		Diameter: s.WheelDiameter.Value(),
	}
}

// Tire returns the side's current tire.
func (s *Side) Tire() model.TireDescriptor {
	return model.TireDescriptor{Width: s.TireWidth.Value(), Aspect: s.TireAspect.Value()}
}

func (s *Side) set() visualizer.Set {
	return visualizer.Set{Wheel: s.Wheel(), Tire: s.Tire(), Spacer: s.Spacer.Value(), Color: s.Color}
}

func (s *Side) dataSet() graph.DataSet {
	return graph.DataSet{Width: s.WheelWidth, Offset: s.WheelOffset, Spacer: s.Spacer, Color: s.Color}
}

// same reports whether both sides describe the same setup.
func (s *Side) same(o *Side) bool {
	return s.Wheel() == o.Wheel() && s.Tire() == o.Tire() && s.Spacer.Value() == o.Spacer.Value()
}

// write sets a slider and drops ErrLocked; the slider already logged it.
func write(s *graph.Slider, v float64) {
	_ = s.SetValue(v)
}
