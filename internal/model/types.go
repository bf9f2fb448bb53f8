package model

import (
	"encoding/json"
	"fmt"
)

// WheelDescriptor describes one wheel. Width and diameter are in inches,
// offset in millimeters (positive toward the outside of the vehicle).
type WheelDescriptor struct {
	Width    float64 `json:"width" toml:"width"`
	Offset   float64 `json:"offset" toml:"offset"`
	Diameter float64 `json:"diameter" toml:"diameter"`
	Make     string  `json:"make,omitempty" toml:"make"`
	Model    string  `json:"model,omitempty" toml:"model"`
	Weight   float64 `json:"weight,omitempty" toml:"weight"`
}

// TireDescriptor describes one tire. Width is in millimeters, aspect is the
// sidewall height as a percentage of the width.
type TireDescriptor struct {
	Width  float64 `json:"width" toml:"width"`
	Aspect float64 `json:"aspect" toml:"aspect"`
	Make   string  `json:"make,omitempty" toml:"make"`
	Model  string  `json:"model,omitempty" toml:"model"`
}

// Axles holds a front and back value of the same kind.
type Axles[T any] struct {
	Front T `json:"front" toml:"front"`
	Back  T `json:"back" toml:"back"`
}

// Square returns an Axles with the same value on both ends.
func Square[T any](v T) Axles[T] {
	return Axles[T]{Front: v, Back: v}
}

// WheelSpec is a wheel as authored in a catalog record: either a single
// descriptor used on both axles or an explicit front/back pair.
type WheelSpec struct {
	Axles Axles[WheelDescriptor]
	Split bool
}

// TireSpec is the tire counterpart of WheelSpec.
type TireSpec struct {
	Axles Axles[TireDescriptor]
	Split bool
}

func (w *WheelSpec) UnmarshalJSON(data []byte) error {
	axles, split, err := decodeSplit[WheelDescriptor](data)
	if err != nil {
		return fmt.Errorf("decoding wheel: %w", err)
	}
	w.Axles, w.Split = axles, split
	return nil
}

func (w WheelSpec) MarshalJSON() ([]byte, error) {
	if !w.Split {
		return json.Marshal(w.Axles.Front)
	}
	return json.Marshal(w.Axles)
}

func (t *TireSpec) UnmarshalJSON(data []byte) error {
	axles, split, err := decodeSplit[TireDescriptor](data)
	if err != nil {
		return fmt.Errorf("decoding tire: %w", err)
	}
	t.Axles, t.Split = axles, split
	return nil
}

func (t TireSpec) MarshalJSON() ([]byte, error) {
	if !t.Split {
		return json.Marshal(t.Axles.Front)
	}
	return json.Marshal(t.Axles)
}

// decodeSplit reads either a bare descriptor or a {front, back} object. When
// only one side of a split is present it is used for both.
func decodeSplit[T any](data []byte) (Axles[T], bool, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Axles[T]{}, false, err
	}

	front, hasFront := probe["front"]
	back, hasBack := probe["back"]
	if !hasFront && !hasBack {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return Axles[T]{}, false, err
		}
		return Square(v), false, nil
	}
	if !hasFront {
		front = back
	}
	if !hasBack {
		back = front
	}

	var out Axles[T]
	if err := json.Unmarshal(front, &out.Front); err != nil {
		return out, true, fmt.Errorf("front: %w", err)
	}
	if err := json.Unmarshal(back, &out.Back); err != nil {
		return out, true, fmt.Errorf("back: %w", err)
	}
	return out, true, nil
}

// Alignment is the per-axle alignment of a loose record. Nil fields fall back
// to the vehicle's stock values.
type Alignment struct {
	Camber *float64 `json:"camber,omitempty"`
	Toe    *float64 `json:"toe,omitempty"`
	Caster *float64 `json:"caster,omitempty"`
	Spacer *float64 `json:"spacer,omitempty"`
}

// ResolvedAlignment is Alignment with every value present.
type ResolvedAlignment struct {
	Camber float64 `json:"camber" toml:"camber"`
	Toe    float64 `json:"toe" toml:"toe"`
	Caster float64 `json:"caster" toml:"caster"`
	Spacer float64 `json:"spacer" toml:"spacer"`
}

// FitmentDescriptor is a real-world example fitment as authored.
type FitmentDescriptor struct {
	Source      string   `json:"source"`
	Images      []string `json:"images"`
	Link        string   `json:"link"`
	Description string   `json:"description"`

	RideHeight *float64 `json:"rideheight,omitempty"`
	Suspension *string  `json:"suspension,omitempty"`

	Front *Alignment `json:"front,omitempty"`
	Rear  *Alignment `json:"rear,omitempty"`

	Wheel WheelSpec `json:"wheel"`
	Tire  TireSpec  `json:"tire"`
}

// UnmarshalJSON accepts "back" as an alias for the "rear" alignment block.
func (f *FitmentDescriptor) UnmarshalJSON(data []byte) error {
	type plain FitmentDescriptor
	var aux struct {
		plain
		Back *Alignment `json:"back,omitempty"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*f = FitmentDescriptor(aux.plain)
	if f.Rear == nil {
		f.Rear = aux.Back
	}
	return nil
}

// RequiredFitmentDescriptor is the canonical form of a fitment: every
// field is present and both axles are spelled out.
type RequiredFitmentDescriptor struct {
	Source      string   `json:"source" toml:"source"`
	Images      []string `json:"images" toml:"images"`
	Link        string   `json:"link" toml:"link"`
	Description string   `json:"description" toml:"description"`

	RideHeight float64 `json:"rideheight" toml:"rideheight"`
	Suspension string  `json:"suspension" toml:"suspension"`

	Wheel Axles[WheelDescriptor] `json:"wheel" toml:"wheel"`
	Tire  Axles[TireDescriptor]  `json:"tire" toml:"tire"`

	Front ResolvedAlignment `json:"front" toml:"front"`
	Back  ResolvedAlignment `json:"back" toml:"back"`
}

// OffsetEquation gives a guide line's offset (mm) for a wheel width (in) and
// ride height (in of drop).
type OffsetEquation func(wheelWidth, rideHeight float64) float64

// XPosition gives a vertical guide line's position for a wheel.
type XPosition func(wheelWidth, offset float64) float64

// LineDescriptor is a named, colored reference line. Exactly one of Offset
// or X is set.
type LineDescriptor struct {
	Label string
	Color string

	Offset OffsetEquation
	X      XPosition
}

// Vertical reports whether the line is drawn at a fixed x position.
func (l LineDescriptor) Vertical() bool {
	return l.Offset == nil
}

// VerticalAt returns a vertical line at a constant position.
func VerticalAt(label, color string, x float64) LineDescriptor {
	return LineDescriptor{
		Label: label,
		Color: color,
		X:     func(float64, float64) float64 { return x },
	}
}

// VehicleDescriptor is one supported vehicle.
type VehicleDescriptor struct {
	Stock  RequiredFitmentDescriptor
	Guides []LineDescriptor
}
