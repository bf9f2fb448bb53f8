package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliderClamps(t *testing.T) {
	s := NewSlider("width", 20, 5, 11)
	assert.Equal(t, 11.0, s.Value())

	require.NoError(t, s.SetValue(0))
	assert.Equal(t, 5.0, s.Value())
}

func TestSliderListeners(t *testing.T) {
	s := NewSlider("offset", 48, -20, 60)
	var got [][2]float64
	s.OnChange(func(n, o float64) { got = append(got, [2]float64{n, o}) })

	require.NoError(t, s.SetValue(35))
	require.NoError(t, s.SetValue(35))
	assert.Equal(t, [][2]float64{{35, 48}, {35, 35}}, got)
}

func TestSliderLocked(t *testing.T) {
	s := NewSlider("offset", 48, -20, 60)
	fired := false
	s.OnChange(func(float64, float64) { fired = true })
	s.Lock(true)

	assert.ErrorIs(t, s.SetValue(35), ErrLocked)
	assert.Equal(t, 48.0, s.Value())
	assert.False(t, fired)

	s.Lock(false)
	assert.NoError(t, s.SetValue(35))
	assert.True(t, fired)
}
