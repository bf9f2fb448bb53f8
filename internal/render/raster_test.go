package render

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/intelligrit/fitment/internal/plot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, ParseColor("red"))
	assert.Equal(t, color.NRGBA{R: 0xee, G: 0xee, B: 0xee, A: 255}, ParseColor("#eee"))
	assert.Equal(t, color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 255}, ParseColor("#123456"))
	assert.Equal(t, color.NRGBA{A: 255}, ParseColor("chartreuse-ish"))
}

func TestRasterFillsRect(t *testing.T) {
	r := NewRaster(40, 20)
	r.Rect(10, 5, 10, 10, Solid("blue"))

	inside := r.Image().RGBAAt(15, 10)
	outside := r.Image().RGBAAt(2, 2)
	assert.Equal(t, uint8(255), inside.B)
	assert.Zero(t, inside.R)
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, outside)
}

func TestRasterTranslucentFill(t *testing.T) {
	r := NewRaster(20, 20)
	r.Rect(0, 0, 20, 20, Paint{Color: "black", Fill: true, Alpha: 0.2})

	px := r.Image().RGBAAt(10, 10)
	assert.InDelta(t, 204, int(px.R), 2)
}

func TestRasterOutlineCircleHasHole(t *testing.T) {
	r := NewRaster(40, 40)
	r.Circle(plot.Point{X: 20, Y: 20}, 10, Outline("red"))

	center := r.Image().RGBAAt(20, 20)
	edge := r.Image().RGBAAt(29, 20)
	assert.Equal(t, uint8(255), center.G, "center left white")
	assert.Less(t, edge.G, uint8(200), "ring painted")
}

func TestWritePNG(t *testing.T) {
	r := NewRaster(30, 30)
	r.Text(plot.Point{X: 2, Y: 15}, "8x20", "black", "white")
	r.Line(plot.Point{X: 0, Y: 0}, plot.Point{X: 30, Y: 30}, "green")

	var buf bytes.Buffer
	require.NoError(t, r.WritePNG(&buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 30, img.Bounds().Dx())
}
