package fitment

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vehiclesTOML = `
[[vehicle]]
name = "Mazda MX-5 Miata (ND)"

[vehicle.stock]
source = "miata.net"
link = "https://example.com/nd"
description = "Stock ND"
images = []
rideheight = 0
suspension = "None"

[vehicle.stock.wheel.front]
width = 6.5
offset = 45
diameter = 16

[vehicle.stock.wheel.back]
width = 6.5
offset = 45
diameter = 16

[vehicle.stock.tire.front]
width = 195
aspect = 50

[vehicle.stock.tire.back]
width = 195
aspect = 50

[[vehicle.guide]]
label = "Flush"
color = "red"
per_width = 12.7
base = -50
per_ride_height = -3

[[vehicle.guide]]
label = "Fender"
color = "blue"
vertical = true
base = 10
per_offset = -1
`

func TestLoadVehiclesMissingFile(t *testing.T) {
	v, err := LoadVehicles(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultVehicle}, v.Names())
}

func TestLoadVehiclesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vehicles.toml")
	require.NoError(t, os.WriteFile(path, []byte(vehiclesTOML), 0o644))

	v, err := LoadVehicles(path)
	require.NoError(t, err)
	assert.Len(t, v.Names(), 2)

	nd, err := v.Get("Mazda MX-5 Miata (ND)")
	require.NoError(t, err)
	assert.Equal(t, 6.5, nd.Stock.Wheel.Back.Width)
	assert.Equal(t, 50.0, nd.Stock.Tire.Front.Aspect)

	require.Len(t, nd.Guides, 2)
	assert.False(t, nd.Guides[0].Vertical())
	assert.InDelta(t, 12.7*8-50-3*2, nd.Guides[0].Offset(8, 2), 1e-9)
	assert.True(t, nd.Guides[1].Vertical())
	assert.InDelta(t, 10-40, nd.Guides[1].X(8, 40), 1e-9)
}

func TestGetUnknownVehicle(t *testing.T) {
	v := NewVehicles(Builtin())
	_, err := v.Get("UnknownVehicle")
	assert.True(t, errors.Is(err, ErrUnknownVehicle))
}

func TestSearch(t *testing.T) {
	v := NewVehicles(Builtin())

	assert.Equal(t, []string{DefaultVehicle}, v.Search("brz", 0))
	assert.Equal(t, []string{DefaultVehicle}, v.Search("", 5))
	assert.Empty(t, v.Search("civic", 0))
}

func TestBuiltinGuides(t *testing.T) {
	d := Builtin()[DefaultVehicle]
	require.Len(t, d.Guides, 2)
	// 7" wheel at stock height: 12.7*7 - 64.3
	assert.InDelta(t, 24.6, d.Guides[0].Offset(7, 0), 1e-9)
}
