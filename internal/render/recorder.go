package render

import (
	"slices"

	"github.com/intelligrit/fitment/internal/plot"
)

// Op is one recorded drawing call.
type Op struct {
	Kind   string
	Points []plot.Point
	Paint  Paint
	Text   string
	Radius float64
}

// Recorder is a Surface that remembers what was drawn since the last Clear.
type Recorder struct {
	W, H float64
	Ops  []Op
}

// NewRecorder returns a recorder of the given size.
func NewRecorder(w, h float64) *Recorder {
	return &Recorder{W: w, H: h}
}

func (r *Recorder) Size() plot.Size { return plot.Size{W: r.W, H: r.H} }

func (r *Recorder) Clear() { r.Ops = r.Ops[:0] }

func (r *Recorder) Line(a, b plot.Point, color string) {
	r.Ops = append(r.Ops, Op{Kind: "line", Points: []plot.Point{a, b}, Paint: Outline(color)})
}

func (r *Recorder) Polyline(pts []plot.Point, color string) {
	r.Ops = append(r.Ops, Op{Kind: "polyline", Points: slices.Clone(pts), Paint: Outline(color)})
}

func (r *Recorder) Rect(x, y, w, h float64, p Paint) {
	r.Ops = append(r.Ops, Op{Kind: "rect", Points: []plot.Point{{X: x, Y: y}, {X: x + w, Y: y + h}}, Paint: p})
}

func (r *Recorder) Polygon(pts []plot.Point, p Paint) {
	r.Ops = append(r.Ops, Op{Kind: "polygon", Points: slices.Clone(pts), Paint: p})
}

func (r *Recorder) Circle(c plot.Point, radius float64, p Paint) {
	r.Ops = append(r.Ops, Op{Kind: "circle", Points: []plot.Point{c}, Radius: radius, Paint: p})
}

func (r *Recorder) Text(p plot.Point, s, color, background string) {
	r.Ops = append(r.Ops, Op{Kind: "text", Points: []plot.Point{p}, Text: s, Paint: Paint{Color: color}})
}

// TextWidth assumes a 7px monospace face, matching Raster.
func (r *Recorder) TextWidth(s string) float64 { return float64(7 * len([]rune(s))) }

// Find returns the recorded ops of a kind.
func (r *Recorder) Find(kind string) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}
