package fitment

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/intelligrit/fitment/internal/model"
)

// ErrMissingPassThrough is returned by Normalize when a record lacks one of
// the descriptive fields that have no stock default.
var ErrMissingPassThrough = errors.New("missing pass-through field")

// Normalize fills a loose record into canonical form, taking every absent
// optional value from stock. The returned descriptor is always fully
// populated; a non-nil error only reports missing pass-through fields so
// the caller can decide whether to keep the record.
func Normalize(in model.FitmentDescriptor, stock model.RequiredFitmentDescriptor) (model.RequiredFitmentDescriptor, error) {
	out := model.RequiredFitmentDescriptor{
		Source:      in.Source,
		Images:      slices.Clone(in.Images),
		Link:        in.Link,
		Description: in.Description,

		RideHeight: valueOr(in.RideHeight, stock.RideHeight),
		Suspension: valueOr(in.Suspension, stock.Suspension),

		Wheel: in.Wheel.Axles,
		Tire:  in.Tire.Axles,

		Front: resolveAlignment(in.Front, stock.Front),
		Back:  resolveAlignment(in.Rear, stock.Back),
	}

	return out, CheckPassThrough(in)
}

// CheckPassThrough reports the descriptive fields a record lacks. An absent
// images list is missing; an explicit empty one is not.
func CheckPassThrough(in model.FitmentDescriptor) error {
	var missing []string
	if in.Source == "" {
		missing = append(missing, "source")
	}
	if in.Images == nil {
		missing = append(missing, "images")
	}
	if in.Link == "" {
		missing = append(missing, "link")
	}
	if in.Description == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingPassThrough, strings.Join(missing, ", "))
	}
	return nil
}

// Canonical converts an already-canonical descriptor back into loose form,
// marking both axles as split so nothing is lost on a round trip.
func Canonical(d model.RequiredFitmentDescriptor) model.FitmentDescriptor {
	front, back := d.Front, d.Back
	return model.FitmentDescriptor{
		Source:      d.Source,
		Images:      slices.Clone(d.Images),
		Link:        d.Link,
		Description: d.Description,
		RideHeight:  &d.RideHeight,
		Suspension:  &d.Suspension,
		Front:       looseAlignment(front),
		Rear:        looseAlignment(back),
		Wheel:       model.WheelSpec{Axles: d.Wheel, Split: true},
		Tire:        model.TireSpec{Axles: d.Tire, Split: true},
	}
}

// Staggered reports which parts of a setup differ between the axles.
type Staggered struct {
	Wheel bool
	Tire  bool
}

// Any reports whether either wheel or tire is staggered.
func (s Staggered) Any() bool {
	return s.Wheel || s.Tire
}

// IsStaggered compares the front and back of a canonical descriptor.
func IsStaggered(d model.RequiredFitmentDescriptor) Staggered {
	return Staggered{
		Wheel: d.Wheel.Front != d.Wheel.Back,
		Tire:  d.Tire.Front != d.Tire.Back,
	}
}

func resolveAlignment(in *model.Alignment, stock model.ResolvedAlignment) model.ResolvedAlignment {
	if in == nil {
		return stock
	}
	return model.ResolvedAlignment{
		Camber: valueOr(in.Camber, stock.Camber),
		Toe:    valueOr(in.Toe, stock.Toe),
		Caster: valueOr(in.Caster, stock.Caster),
		Spacer: valueOr(in.Spacer, stock.Spacer),
	}
}

func looseAlignment(a model.ResolvedAlignment) *model.Alignment {
	return &model.Alignment{Camber: &a.Camber, Toe: &a.Toe, Caster: &a.Caster, Spacer: &a.Spacer}
}

func valueOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
