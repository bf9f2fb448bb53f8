package plot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
)

func testMapper(t *testing.T) Mapper {
	t.Helper()
	r := RangeOf(
		[]Bounds{{Min: 6, Max: 10}, {Min: 5, Max: 11}},
		[]Bounds{{Min: -20, Max: 60}, {Min: 0, Max: 55}},
	)
	m, err := NewMapper(r, Size{W: 600, H: 400})
	require.NoError(t, err)
	return m
}

func TestRangeOfUsesSliderBounds(t *testing.T) {
	m := testMapper(t)
	assert.Equal(t, Bounds{Min: 5, Max: 11}, m.Range.Width)
	assert.Equal(t, Bounds{Min: -20, Max: 60}, m.Range.Offset)
}

func TestEndpoints(t *testing.T) {
	m := testMapper(t)

	assert.Equal(t, 0.0, m.XFromWidth(5))
	assert.Equal(t, 600.0, m.XFromWidth(11))
	assert.Equal(t, 400.0, m.YFromOffset(-20), "smallest offset at the bottom")
	assert.Equal(t, 0.0, m.YFromOffset(60), "largest offset at the top")
}

func TestRoundTrip(t *testing.T) {
	m := testMapper(t)

	for w := 5.0; w <= 11; w += 0.25 {
		got := m.WidthFromX(m.XFromWidth(w))
		assert.True(t, scalar.EqualWithinAbs(w, got, 1e-9), "width %v round-tripped to %v", w, got)
	}
	for o := -20.0; o <= 60; o += 0.5 {
		got := m.OffsetFromY(m.YFromOffset(o))
		assert.True(t, scalar.EqualWithinAbs(o, got, 1e-9), "offset %v round-tripped to %v", o, got)
	}
}

func TestDegenerateRange(t *testing.T) {
	r := RangeOf([]Bounds{{Min: 8, Max: 8}}, []Bounds{{Min: 0, Max: 50}})
	_, err := NewMapper(r, Size{W: 100, H: 100})
	assert.True(t, errors.Is(err, ErrDegenerateRange))

	_, err = NewMapper(RangeOf(nil, nil), Size{W: 100, H: 100})
	assert.True(t, errors.Is(err, ErrDegenerateRange))
}

func TestSnap(t *testing.T) {
	cases := []struct {
		w, o         float64
		wantW, wantO float64
	}{
		{8.2, 20.4, 8, 20},
		{8.3, 20.5, 8.5, 21},
		{8.74, -2.5, 8.5, -2},
		{8.75, -2.6, 9, -3},
	}
	for _, c := range cases {
		w, o := Snap(c.w, c.o)
		assert.Equal(t, c.wantW, w, "width %v", c.w)
		assert.Equal(t, c.wantO, o, "offset %v", c.o)
	}
}

func TestHitTest(t *testing.T) {
	pts := []Point{{X: 10, Y: 10}, {X: 14, Y: 10}, {X: 100, Y: 100}}

	i, ok := HitTest(pts, Point{X: 13, Y: 10}, 6)
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = HitTest(pts, Point{X: 50, Y: 50}, 6)
	assert.False(t, ok)
}
