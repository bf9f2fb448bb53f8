// Package geometry computes the closed-form wheel and tire quantities the
// calculator displays: sidewall height, stretch bulge, outer diameter and
// speedometer error.
package geometry

import (
	"math"

	"github.com/intelligrit/fitment/internal/model"
)

// MMPerInch converts inches to millimeters.
const MMPerInch = 25.4

// Assembly is a wheel and tire mounted together.
type Assembly struct {
	Wheel model.WheelDescriptor
	Tire  model.TireDescriptor
}

// MM converts inches to millimeters.
func MM(inches float64) float64 {
	return inches * MMPerInch
}

// Inches converts millimeters to inches.
func Inches(mm float64) float64 {
	return mm / MMPerInch
}

// SidewallHeight is the tire's sidewall height in mm.
func SidewallHeight(tire model.TireDescriptor) float64 {
	return tire.Width * tire.Aspect / 100
}

// Stretch is the horizontal distance (mm) between the tire bead and the
// edge of the tread on each side. Negative when the tire is wider than the
// wheel.
func Stretch(wheel model.WheelDescriptor, tire model.TireDescriptor) float64 {
	return (MM(wheel.Width) - tire.Width) / 2
}

// Bulge is the vertical height (mm) the tire adds above the rim. It is the
// leg of the right triangle whose hypotenuse is the sidewall and whose other
// leg is the stretch. A sidewall too short to bridge the stretch yields 0.
func Bulge(wheel model.WheelDescriptor, tire model.TireDescriptor) float64 {
	c := SidewallHeight(tire)
	a := Stretch(wheel, tire)
	r := c*c - a*a
	if r <= 0 {
		return 0
	}
	return math.Sqrt(r)
}

// OuterDiameter is the overall rolling diameter of the assembly in mm.
func OuterDiameter(wheel model.WheelDescriptor, tire model.TireDescriptor) float64 {
	return 2*Bulge(wheel, tire) + MM(wheel.Diameter)
}

// Circumference is the rolling circumference of the assembly in mm.
func Circumference(a Assembly) float64 {
	return math.Pi * OuterDiameter(a.Wheel, a.Tire)
}

// SpeedometerError is the fractional difference in rolling circumference of
// b relative to a. Positive means b travels further per revolution, so a
// speedometer calibrated for a under-reads on b. The result is NaN or
// infinite when a has zero circumference.
func SpeedometerError(a, b Assembly) float64 {
	ca := Circumference(a)
	cb := Circumference(b)
	if ca == 0 {
		if cb == 0 {
			return math.NaN()
		}
		return math.Inf(int(math.Copysign(1, cb)))
	}
	return (cb - ca) / ca
}

// ActualSpeed is the true speed when the speedometer, calibrated for the
// original assembly, shows indicated on an assembly with the given error.
func ActualSpeed(indicated, speedoErr float64) float64 {
	return indicated * (1 + speedoErr)
}

// IsFinite reports whether v is safe to display.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
