package graph

import (
	"errors"
	"math"

	"github.com/intelligrit/fitment/internal/logging"
	"github.com/intelligrit/fitment/internal/plot"
	"github.com/pterm/pterm"
)

// ErrLocked is returned when writing to a locked slider.
var ErrLocked = errors.New("slider is locked")

// Slider is a bounded numeric value source, the model behind one UI
// control. Values written are clamped to [Min, Max].
type Slider struct {
	Name string

	value, min, max float64
	locked          bool
	listeners       []func(newValue, oldValue float64)
	log             *pterm.Logger
}

// NewSlider returns an unlocked slider.
func NewSlider(name string, value, min, max float64) *Slider {
	s := &Slider{Name: name, min: min, max: max, log: logging.Discard()}
	s.value = s.clamp(value)
	return s
}

// WithLogger sets where locked-write warnings go.
func (s *Slider) WithLogger(log *pterm.Logger) *Slider {
	s.log = log
	return s
}

func (s *Slider) Value() float64 { return s.value }
func (s *Slider) Min() float64   { return s.min }
func (s *Slider) Max() float64   { return s.max }
func (s *Slider) Locked() bool   { return s.locked }

// Bounds returns the slider's configured range.
func (s *Slider) Bounds() plot.Bounds {
	return plot.Bounds{Min: s.min, Max: s.max}
}

// Lock stops SetValue from changing the value.
func (s *Slider) Lock(locked bool) {
	s.locked = locked
}

// SetValue stores v and notifies listeners. On a locked slider it logs a
// warning, leaves the value unchanged and returns ErrLocked.
func (s *Slider) SetValue(v float64) error {
	if s.locked {
		s.log.Warn("attempted to set value, but slider is locked", s.log.Args("slider", s.Name, "value", v))
		return ErrLocked
	}
	old := s.value
	s.value = s.clamp(v)
	for _, fn := range s.listeners {
		fn(s.value, old)
	}
	return nil
}

// OnChange registers fn to run after every successful SetValue.
func (s *Slider) OnChange(fn func(newValue, oldValue float64)) {
	s.listeners = append(s.listeners, fn)
}

func (s *Slider) clamp(v float64) float64 {
	if s.min > s.max {
		return v
	}
	return math.Min(math.Max(v, s.min), s.max)
}
