package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strings"

	"github.com/intelligrit/fitment/internal/plot"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const (
	strokeWidth  = 1.5
	circleSteps  = 32
	textPadding  = 2
	fallbackName = "black"
)

var named = map[string]drawing.Color{
	"black":  drawing.ColorBlack,
	"white":  drawing.ColorWhite,
	"red":    drawing.ColorRed,
	"green":  drawing.ColorGreen,
	"blue":   drawing.ColorBlue,
	"gray":   drawing.ColorFromHex("808080"),
	"grey":   drawing.ColorFromHex("808080"),
	"orange": drawing.ColorFromHex("ffa500"),
}

// ParseColor resolves a CSS-style color name or #rgb / #rrggbb hex string.
// Unknown names resolve to black.
func ParseColor(s string) color.NRGBA {
	s = strings.ToLower(strings.TrimSpace(s))
	c, ok := named[s]
	if !ok {
		hex := strings.TrimPrefix(s, "#")
		if (len(hex) == 3 || len(hex) == 6) && strings.HasPrefix(s, "#") {
			c = drawing.ColorFromHex(hex)
		} else {
			c = named[fallbackName]
		}
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

func paintColor(p Paint) color.NRGBA {
	c := ParseColor(p.Color)
	if p.Alpha > 0 && p.Alpha < 1 {
		c.A = uint8(math.Round(p.Alpha * 255))
	}
	return c
}

// Raster is a Surface backed by an in-memory RGBA image.
type Raster struct {
	img  *image.RGBA
	face font.Face
}

// NewRaster returns a white raster of w×h pixels.
func NewRaster(w, h int) *Raster {
	r := &Raster{
		img:  image.NewRGBA(image.Rect(0, 0, w, h)),
		face: basicfont.Face7x13,
	}
	r.Clear()
	return r
}

// Image returns the backing image.
func (r *Raster) Image() *image.RGBA { return r.img }

// WritePNG encodes the current image.
func (r *Raster) WritePNG(w io.Writer) error {
	return png.Encode(w, r.img)
}

func (r *Raster) Size() plot.Size {
	b := r.img.Bounds()
	return plot.Size{W: float64(b.Dx()), H: float64(b.Dy())}
}

func (r *Raster) Clear() {
	draw.Draw(r.img, r.img.Bounds(), image.White, image.Point{}, draw.Src)
}

func (r *Raster) Line(a, b plot.Point, c string) {
	r.fill(segment(a, b, strokeWidth), ParseColor(c))
}

func (r *Raster) Polyline(pts []plot.Point, c string) {
	col := ParseColor(c)
	for i := 1; i < len(pts); i++ {
		if !finite(pts[i-1]) || !finite(pts[i]) {
			continue
		}
		r.fill(segment(pts[i-1], pts[i], strokeWidth), col)
	}
}

func (r *Raster) Rect(x, y, w, h float64, p Paint) {
	r.Polygon([]plot.Point{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}, p)
}

func (r *Raster) Polygon(pts []plot.Point, p Paint) {
	if len(pts) < 2 {
		return
	}
	col := paintColor(p)
	if p.Fill {
		r.fill(pts, col)
		return
	}
	for i := range pts {
		next := pts[(i+1)%len(pts)]
		r.fill(segment(pts[i], next, strokeWidth), col)
	}
}

func (r *Raster) Circle(c plot.Point, radius float64, p Paint) {
	ring := circlePoints(c, radius)
	if p.Fill {
		r.fill(ring, paintColor(p))
		return
	}
	inner := circlePoints(c, math.Max(radius-strokeWidth, 0))
	z := r.rasterizer()
	path(z, ring)
	// reversed inner ring cuts the hole
	for i, j := 0, len(inner)-1; i < j; i, j = i+1, j-1 {
		inner[i], inner[j] = inner[j], inner[i]
	}
	path(z, inner)
	z.Draw(r.img, r.img.Bounds(), image.NewUniform(paintColor(p)), image.Point{})
}

func (r *Raster) Text(p plot.Point, s, c, background string) {
	if background != "" {
		h := float64(r.face.Metrics().Ascent.Ceil())
		r.Rect(p.X-textPadding, p.Y-h-textPadding, r.TextWidth(s)+2*textPadding, h+2*textPadding+1, Solid(background))
	}
	d := font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(ParseColor(c)),
		Face: r.face,
		Dot:  fixed.P(int(math.Round(p.X)), int(math.Round(p.Y))),
	}
	d.DrawString(s)
}

func (r *Raster) TextWidth(s string) float64 {
	return float64(font.MeasureString(r.face, s).Ceil())
}

func (r *Raster) rasterizer() *vector.Rasterizer {
	b := r.img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	return z
}

func (r *Raster) fill(pts []plot.Point, col color.NRGBA) {
	z := r.rasterizer()
	path(z, pts)
	z.Draw(r.img, r.img.Bounds(), image.NewUniform(col), image.Point{})
}

func path(z *vector.Rasterizer, pts []plot.Point) {
	for i, p := range pts {
		x, y := float32(p.X), float32(p.Y)
		if i == 0 {
			z.MoveTo(x, y)
			continue
		}
		z.LineTo(x, y)
	}
	z.ClosePath()
}

// segment returns the quad covering a stroke of width w from a to b.
func segment(a, b plot.Point, w float64) []plot.Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return []plot.Point{{X: a.X - w/2, Y: a.Y - w/2}, {X: a.X + w/2, Y: a.Y - w/2}, {X: a.X + w/2, Y: a.Y + w/2}, {X: a.X - w/2, Y: a.Y + w/2}}
	}
	nx, ny := -dy/l*w/2, dx/l*w/2
	return []plot.Point{
		{X: a.X + nx, Y: a.Y + ny},
		{X: b.X + nx, Y: b.Y + ny},
		{X: b.X - nx, Y: b.Y - ny},
		{X: a.X - nx, Y: a.Y - ny},
	}
}

func circlePoints(c plot.Point, radius float64) []plot.Point {
	pts := make([]plot.Point, circleSteps)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / circleSteps
		pts[i] = plot.Point{X: c.X + radius*math.Cos(a), Y: c.Y + radius*math.Sin(a)}
	}
	return pts
}

func finite(p plot.Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}
