package visualizer

import (
	"testing"

	"github.com/intelligrit/fitment/internal/fitment"
	"github.com/intelligrit/fitment/internal/model"
	"github.com/intelligrit/fitment/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stockSet() Set {
	return Set{
		Wheel: model.WheelDescriptor{Width: 7, Offset: 48, Diameter: 17},
		Tire:  model.TireDescriptor{Width: 215, Aspect: 45},
		Color: "blue",
	}
}

func TestProjectStock(t *testing.T) {
	v := New(render.NewRecorder(400, 300), 0, 0)
	v.AddSet(stockSet())

	p := v.Project()
	require.Len(t, p.Shapes, 1)
	r := p.Shapes[0].Wheel
	assert.InDelta(t, 200-(88.9+48)*DefaultScale, r.X, 1e-9)
	assert.InDelta(t, 177.8*DefaultScale, r.W, 1e-9)
	assert.InDelta(t, (300-431.8*DefaultScale)/2, r.Y, 1e-9)

	// 215/45 on a 7in rim: sidewall 96.75mm, stretch -18.6mm.
	top := p.Shapes[0].TireTop
	require.Len(t, top, 4)
	assert.InDelta(t, r.X-18.6*DefaultScale, top[1].X, 1e-9)
	assert.Less(t, top[1].Y, r.Y)
	assert.Greater(t, p.Shapes[0].TireBottom[1].Y, r.Y+r.H)
}

func TestMountingPointAlwaysDrawn(t *testing.T) {
	v := New(render.NewRecorder(400, 300), 0, 0)
	v.AddSet(stockSet())

	p := v.Project()
	require.Len(t, p.Guides, 1)
	assert.Equal(t, "Mounting Point", p.Guides[0].Label)
	assert.Equal(t, 200.0, p.Guides[0].X)
}

func TestFlushGuideMeetsOuterLip(t *testing.T) {
	brz, err := fitment.NewVehicles(fitment.Builtin()).Get(fitment.DefaultVehicle)
	require.NoError(t, err)
	front := brz.Guides[0]

	for _, rh := range []float64{0, 1.5} {
		v := New(render.NewRecorder(400, 300), 0, rh)
		s := stockSet()
		s.Wheel.Width = 8
		s.Wheel.Offset = front.Offset(8, rh)
		v.AddSet(s)
		v.UpdateLines([]model.LineDescriptor{front})

		p := v.Project()
		require.Len(t, p.Guides, 2)
		lip := p.Shapes[0].Wheel.X + p.Shapes[0].Wheel.W
		assert.InDelta(t, lip, p.Guides[1].X, 1e-9, "ride height %v", rh)
		assert.Equal(t, 1, p.Guides[1].Row)
	}
}

func TestSpacerPushesWheelOut(t *testing.T) {
	v := New(render.NewRecorder(400, 300), 1, 0)
	v.AddSet(stockSet())
	before := v.Project().Shapes[0].Wheel.X

	spacer := 15.0
	require.NoError(t, v.UpdateSet(0, Update{Spacer: &spacer}))
	assert.InDelta(t, before+15, v.Project().Shapes[0].Wheel.X, 1e-9)
}

func TestBulgeClampsWhenOverStretched(t *testing.T) {
	v := New(render.NewRecorder(400, 300), 0, 0)
	v.AddSet(Set{
		Wheel: model.WheelDescriptor{Width: 10, Offset: 20, Diameter: 17},
		Tire:  model.TireDescriptor{Width: 215, Aspect: 5},
	})

	s := v.Project().Shapes[0]
	assert.Equal(t, s.Wheel.Y, s.TireTop[1].Y)
	assert.Equal(t, s.Wheel.Y+s.Wheel.H, s.TireBottom[2].Y)
}

func TestUpdateSet(t *testing.T) {
	v := New(render.NewRecorder(400, 300), 0, 0)
	v.AddSet(stockSet())

	width, rh := 9.5, 2.0
	require.NoError(t, v.UpdateSet(0, Update{WheelWidth: &width, RideHeight: &rh}))
	assert.Equal(t, 9.5, v.Sets()[0].Wheel.Width)
	assert.Equal(t, 48.0, v.Sets()[0].Wheel.Offset)
	assert.Equal(t, 2.0, v.rideHeight)

	assert.ErrorIs(t, v.UpdateSet(3, Update{}), ErrNoSet)
}

func TestRedrawPaintsTranslucentFillsAndOutlines(t *testing.T) {
	rec := render.NewRecorder(400, 300)
	v := New(rec, 0, 0)
	v.AddSet(stockSet())

	rects := rec.Find("rect")
	require.Len(t, rects, 2)
	assert.True(t, rects[0].Paint.Fill)
	assert.Equal(t, fillAlpha, rects[0].Paint.Alpha)
	assert.False(t, rects[1].Paint.Fill)
	assert.Zero(t, rects[1].Paint.Alpha)

	assert.Len(t, rec.Find("polygon"), 2)
	assert.Len(t, rec.Find("polyline"), 2)

	texts := rec.Find("text")
	require.Len(t, texts, 1)
	assert.Equal(t, "Mounting Point", texts[0].Text)
}
