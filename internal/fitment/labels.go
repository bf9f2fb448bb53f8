package fitment

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/intelligrit/fitment/internal/model"
)

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WheelLabel renders a wheel the way it is sold: "17x7 +48".
func WheelLabel(w model.WheelDescriptor) string {
	sign := "+"
	if w.Offset < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%sx%s %s%s", num(w.Diameter), num(w.Width), sign, num(math.Abs(w.Offset)))
}

// TireLabel renders a tire size for a rim diameter: "215/45 R17".
func TireLabel(t model.TireDescriptor, rimDiameter float64) string {
	return fmt.Sprintf("%s/%s R%s", num(t.Width), num(t.Aspect), num(rimDiameter))
}

// Product joins a make and model, skipping blanks.
func Product(maker, name string) string {
	return strings.TrimSpace(maker + " " + name)
}
