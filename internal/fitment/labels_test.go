package fitment

import (
	"testing"

	"github.com/intelligrit/fitment/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestWheelLabel(t *testing.T) {
	assert.Equal(t, "17x7 +48", WheelLabel(model.WheelDescriptor{Diameter: 17, Width: 7, Offset: 48}))
	assert.Equal(t, "18x9.5 -5", WheelLabel(model.WheelDescriptor{Diameter: 18, Width: 9.5, Offset: -5}))
	assert.Equal(t, "17x8 +0", WheelLabel(model.WheelDescriptor{Diameter: 17, Width: 8}))
}

func TestTireLabel(t *testing.T) {
	assert.Equal(t, "215/45 R17", TireLabel(model.TireDescriptor{Width: 215, Aspect: 45}, 17))
	assert.Equal(t, "Michelin Primacy HP", Product("Michelin", "Primacy HP"))
	assert.Equal(t, "Enkei", Product("Enkei", ""))
}
