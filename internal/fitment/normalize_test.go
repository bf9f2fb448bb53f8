package fitment

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/intelligrit/fitment/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stock() model.RequiredFitmentDescriptor {
	return Builtin()[DefaultVehicle].Stock
}

func decode(t *testing.T, raw string) model.FitmentDescriptor {
	t.Helper()
	var f model.FitmentDescriptor
	require.NoError(t, json.Unmarshal([]byte(raw), &f))
	return f
}

func TestNormalizeSquare(t *testing.T) {
	in := decode(t, `{
		"source": "forum", "link": "https://example.com/1", "description": "square", "images": [],
		"wheel": {"width": 8, "offset": 20, "diameter": 18},
		"tire": {"width": 225, "aspect": 40}
	}`)

	got, err := Normalize(in, stock())
	require.NoError(t, err)

	assert.Equal(t, got.Wheel.Front, got.Wheel.Back)
	assert.Equal(t, got.Tire.Front, got.Tire.Back)
	assert.Equal(t, 8.0, got.Wheel.Front.Width)
	assert.False(t, IsStaggered(got).Any())
}

func TestNormalizeSplitPreservesSides(t *testing.T) {
	in := decode(t, `{
		"source": "forum", "link": "https://example.com/2", "description": "staggered", "images": [],
		"wheel": {"front": {"width": 8, "offset": 20, "diameter": 18}, "back": {"width": 9, "offset": 15, "diameter": 18}},
		"tire": {"front": {"width": 225, "aspect": 40}, "back": {"width": 255, "aspect": 35}}
	}`)

	got, err := Normalize(in, stock())
	require.NoError(t, err)

	assert.Equal(t, model.WheelDescriptor{Width: 8, Offset: 20, Diameter: 18}, got.Wheel.Front)
	assert.Equal(t, model.WheelDescriptor{Width: 9, Offset: 15, Diameter: 18}, got.Wheel.Back)
	assert.Equal(t, model.TireDescriptor{Width: 225, Aspect: 40}, got.Tire.Front)
	assert.Equal(t, model.TireDescriptor{Width: 255, Aspect: 35}, got.Tire.Back)
	assert.Equal(t, Staggered{Wheel: true, Tire: true}, IsStaggered(got))
}

func TestNormalizeSplitTireOnly(t *testing.T) {
	in := decode(t, `{
		"source": "s", "link": "l", "description": "d", "images": [],
		"wheel": {"width": 8, "offset": 20, "diameter": 18},
		"tire": {"front": {"width": 225, "aspect": 40}, "back": {"width": 245, "aspect": 40}}
	}`)

	got, err := Normalize(in, stock())
	require.NoError(t, err)
	assert.Equal(t, Staggered{Tire: true}, IsStaggered(got))
}

func TestNormalizeDefaultsFromStock(t *testing.T) {
	s := stock()
	s.RideHeight = 1.5
	s.Front = model.ResolvedAlignment{Camber: -1, Toe: 0.1, Caster: 6, Spacer: 3}
	s.Back = model.ResolvedAlignment{Camber: -1.5, Toe: 0.2, Caster: 0, Spacer: 5}

	in := decode(t, `{
		"source": "s", "link": "l", "description": "d", "images": [],
		"rear": {"camber": -2.5},
		"wheel": {"width": 8, "offset": 20, "diameter": 18},
		"tire": {"width": 225, "aspect": 40}
	}`)

	got, err := Normalize(in, s)
	require.NoError(t, err)

	assert.Equal(t, 1.5, got.RideHeight)
	assert.Equal(t, "None", got.Suspension)
	assert.Equal(t, s.Front, got.Front)
	assert.Equal(t, model.ResolvedAlignment{Camber: -2.5, Toe: 0.2, Caster: 0, Spacer: 5}, got.Back)
}

func TestNormalizeBackAlias(t *testing.T) {
	in := decode(t, `{
		"source": "s", "link": "l", "description": "d", "images": [],
		"back": {"spacer": 10},
		"wheel": {"width": 8, "offset": 20, "diameter": 18},
		"tire": {"width": 225, "aspect": 40}
	}`)

	got, err := Normalize(in, stock())
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.Back.Spacer)
}

func TestNormalizeMissingPassThrough(t *testing.T) {
	in := decode(t, `{
		"source": "s",
		"wheel": {"width": 8, "offset": 20, "diameter": 18},
		"tire": {"width": 225, "aspect": 40}
	}`)

	got, err := Normalize(in, stock())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingPassThrough))
	assert.Contains(t, err.Error(), "images, link, description")
	assert.Equal(t, 8.0, got.Wheel.Front.Width, "result is still populated")
}

func TestNormalizeMissingImages(t *testing.T) {
	in := decode(t, `{
		"source": "s", "link": "l", "description": "d",
		"wheel": {"width": 8, "offset": 20, "diameter": 18},
		"tire": {"width": 225, "aspect": 40}
	}`)

	_, err := Normalize(in, stock())
	require.ErrorIs(t, err, ErrMissingPassThrough)
	assert.Contains(t, err.Error(), "images")

	in.Images = []string{}
	_, err = Normalize(in, stock())
	assert.NoError(t, err, "an empty list is present")
}

func TestNormalizeDoesNotAlias(t *testing.T) {
	s := stock()
	in := decode(t, `{
		"source": "s", "link": "l", "description": "d", "images": ["a.jpg"],
		"wheel": {"width": 8, "offset": 20, "diameter": 18},
		"tire": {"width": 225, "aspect": 40}
	}`)

	got, err := Normalize(in, s)
	require.NoError(t, err)
	got.Images[0] = "changed.jpg"
	got.Wheel.Front.Width = 99

	assert.Equal(t, "a.jpg", in.Images[0])
	assert.Equal(t, 8.0, in.Wheel.Axles.Front.Width)
	assert.Equal(t, stock(), s)
}

func TestCanonicalRoundTrip(t *testing.T) {
	s := stock()
	got, err := Normalize(Canonical(s), s)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestWheelSpecJSONRoundTrip(t *testing.T) {
	in := decode(t, `{
		"source": "s", "link": "l", "description": "d", "images": [],
		"wheel": {"width": 8, "offset": 20, "diameter": 18},
		"tire": {"front": {"width": 225, "aspect": 40}, "back": {"width": 245, "aspect": 40}}
	}`)

	b, err := json.Marshal(in)
	require.NoError(t, err)

	var shape struct {
		Wheel map[string]any `json:"wheel"`
		Tire  map[string]any `json:"tire"`
	}
	require.NoError(t, json.Unmarshal(b, &shape))
	assert.Contains(t, shape.Wheel, "width", "square wheel stays a bare descriptor")
	assert.Contains(t, shape.Tire, "front")

	var back model.FitmentDescriptor
	require.NoError(t, json.Unmarshal(b, &back))
	assert.False(t, back.Wheel.Split)
	assert.True(t, back.Tire.Split)
	assert.Equal(t, in.Tire.Axles, back.Tire.Axles)
}
