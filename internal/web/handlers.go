package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/intelligrit/fitment/internal/app"
	"github.com/intelligrit/fitment/internal/fitment"
	"github.com/intelligrit/fitment/internal/geometry"
	"github.com/intelligrit/fitment/internal/graph"
	"github.com/intelligrit/fitment/internal/model"
	"github.com/intelligrit/fitment/internal/plot"
	"github.com/intelligrit/fitment/internal/render"
)

func (s *Server) handleVehicles(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			http.Error(w, "invalid 'limit' parameter", http.StatusBadRequest)
			return
		}
		limit = n
	}
	writeJSON(w, s.Vehicles.Search(r.URL.Query().Get("q"), limit))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	idx := s.Catalog.Index()
	vehicle := r.URL.Query().Get("vehicle")
	if vehicle == "" {
		writeJSON(w, idx)
		return
	}
	widths, ok := idx[vehicle]
	if !ok {
		http.Error(w, fmt.Sprintf("no examples for %q", vehicle), http.StatusNotFound)
		return
	}
	writeJSON(w, widths)
}

// exampleQuery reads vehicle, width and offset from the query string.
func exampleQuery(r *http.Request) (vehicle string, width, offset float64, err error) {
	q := r.URL.Query()
	vehicle = q.Get("vehicle")
	if vehicle == "" {
		vehicle = fitment.DefaultVehicle
	}
	if width, err = floatParam(r, "width"); err != nil {
		return
	}
	offset, err = floatParam(r, "offset")
	return
}

func floatParam(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("missing '%s' parameter", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !geometry.IsFinite(v) {
		return 0, fmt.Errorf("invalid '%s' parameter", name)
	}
	return v, nil
}

func (s *Server) handleExamples(w http.ResponseWriter, r *http.Request) {
	vehicle, width, offset, err := exampleQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, s.Catalog.Fetch(r.Context(), vehicle, width, offset))
}

var examplesTable = template.Must(template.New("examples").Parse(`<table class="examples">
{{- range .}}
<tr class="front">
  <td><a href="{{.Link}}">{{.Description}}</a></td>
  <td>F:</td>
  <td class="wheel">{{.FrontWheel}}</td>
  <td>{{.FrontWheelProduct}}</td>
  <td>Spacer: {{.FrontSpacer}}</td>
  <td class="tire">{{.FrontTire}}</td>
  <td>{{.FrontTireProduct}}</td>
</tr>
<tr class="back">
  <td>{{.Suspension}}</td>
  <td>R:</td>
  <td class="wheel">{{.BackWheel}}</td>
  <td>{{.BackWheelProduct}}</td>
  <td>Spacer: {{.BackSpacer}}</td>
  <td class="tire">{{.BackTire}}</td>
  <td>{{.BackTireProduct}}</td>
</tr>
{{- end}}
</table>
`))

type exampleRow struct {
	Link, Description, Suspension string
	FrontWheel, FrontWheelProduct string
	FrontTire, FrontTireProduct   string
	BackWheel, BackWheelProduct   string
	BackTire, BackTireProduct     string
	FrontSpacer, BackSpacer       float64
}

func newExampleRow(ex model.RequiredFitmentDescriptor) exampleRow {
	suspension := ex.Suspension
	if ex.RideHeight != 0 {
		suspension += fmt.Sprintf(` (%s")`, strconv.FormatFloat(ex.RideHeight, 'f', -1, 64))
	}
	f, b := ex.Wheel.Front, ex.Wheel.Back
	return exampleRow{
		Link:              ex.Link,
		Description:       ex.Description,
		Suspension:        suspension,
		FrontWheel:        fitment.WheelLabel(f),
		FrontWheelProduct: fitment.Product(f.Make, f.Model),
		FrontTire:         fitment.TireLabel(ex.Tire.Front, f.Diameter),
		FrontTireProduct:  fitment.Product(ex.Tire.Front.Make, ex.Tire.Front.Model),
		BackWheel:         fitment.WheelLabel(b),
		BackWheelProduct:  fitment.Product(b.Make, b.Model),
		BackTire:          fitment.TireLabel(ex.Tire.Back, b.Diameter),
		BackTireProduct:   fitment.Product(ex.Tire.Back.Make, ex.Tire.Back.Model),
		FrontSpacer:       ex.Front.Spacer,
		BackSpacer:        ex.Back.Spacer,
	}
}

func (s *Server) handleExamplesHTML(w http.ResponseWriter, r *http.Request) {
	vehicle, width, offset, err := exampleQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	exs := s.Catalog.Fetch(r.Context(), vehicle, width, offset)
	rows := make([]exampleRow, len(exs))
	for i, ex := range exs {
		rows[i] = newExampleRow(ex)
	}

	var buf bytes.Buffer
	if err := examplesTable.Execute(&buf, rows); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// calcResult describes one assembly, and when a second is given, how it
// compares to the first.
type calcResult struct {
	OuterDiameter float64  `json:"outer_diameter"`
	Circumference float64  `json:"circumference"`
	Sidewall      float64  `json:"sidewall"`
	Bulge         float64  `json:"bulge"`
	Compare       *calcCmp `json:"compare,omitempty"`
}

type calcCmp struct {
	OuterDiameter float64 `json:"outer_diameter"`
	// SpeedoError is omitted when the first assembly has no circumference.
	SpeedoError *float64 `json:"speedo_error,omitempty"`
	ActualAt60  *float64 `json:"actual_at_60,omitempty"`
}

func assemblyParams(r *http.Request, prefix string) (geometry.Assembly, error) {
	var a geometry.Assembly
	fields := []struct {
		name string
		dst  *float64
	}{
		{"wheel_width", &a.Wheel.Width},
		{"wheel_diameter", &a.Wheel.Diameter},
		{"tire_width", &a.Tire.Width},
		{"tire_aspect", &a.Tire.Aspect},
	}
	for _, f := range fields {
		v, err := floatParam(r, prefix+f.name)
		if err != nil {
			return a, err
		}
		*f.dst = v
	}
	return a, nil
}

func (s *Server) handleCalc(w http.ResponseWriter, r *http.Request) {
	a, err := assemblyParams(r, "")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res := calcResult{
		OuterDiameter: geometry.OuterDiameter(a.Wheel, a.Tire),
		Circumference: geometry.Circumference(a),
		Sidewall:      geometry.SidewallHeight(a.Tire),
		Bulge:         geometry.Bulge(a.Wheel, a.Tire),
	}

	if r.URL.Query().Has("b_wheel_width") {
		b, err := assemblyParams(r, "b_")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		cmp := &calcCmp{OuterDiameter: geometry.OuterDiameter(b.Wheel, b.Tire)}
		if e := geometry.SpeedometerError(a, b); geometry.IsFinite(e) {
			actual := geometry.ActualSpeed(60, e)
			cmp.SpeedoError, cmp.ActualAt60 = &e, &actual
		}
		res.Compare = cmp
	}
	writeJSON(w, res)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Session.State())
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var p plot.Point
	if !decode(w, r, &p) {
		return
	}
	s.Session.PointerMove(p)
	writeJSON(w, s.Session.State())
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var p plot.Point
	if !decode(w, r, &p) {
		return
	}
	s.Session.Click(p)
	writeJSON(w, s.Session.State())
}

type sideRequest struct {
	Side    int     `json:"side"`
	Control string  `json:"control"`
	Value   float64 `json:"value"`
	Locked  bool    `json:"locked"`
	Match   int     `json:"match"`
	Axle    string  `json:"axle"`
	Part    string  `json:"part"`
	Name    string  `json:"name"`
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req sideRequest
	if !decode(w, r, &req) {
		return
	}
	s.respond(w, s.Session.Reset(req.Side))
}

func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	var req sideRequest
	if !decode(w, r, &req) {
		return
	}
	s.respond(w, s.Session.Set(req.Side, req.Control, req.Value))
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	var req sideRequest
	if !decode(w, r, &req) {
		return
	}
	s.respond(w, s.Session.Lock(req.Side, req.Control, req.Locked))
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req sideRequest
	if !decode(w, r, &req) {
		return
	}
	s.respond(w, s.Session.Apply(req.Side, req.Match, req.Axle, req.Part))
}

func (s *Server) handleSelectVehicle(w http.ResponseWriter, r *http.Request) {
	var req sideRequest
	if !decode(w, r, &req) {
		return
	}
	s.respond(w, s.Session.SelectVehicle(req.Name))
}

// respond maps session errors to a status and otherwise returns the new
// session state.
func (s *Server) respond(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSON(w, s.Session.State())
	case errors.Is(err, graph.ErrLocked):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, fitment.ErrUnknownVehicle), errors.Is(err, app.ErrNoMatch):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

// handleSidePNG serves one side's cross section; side is 0 (A) or 1 (B).
func (s *Server) handleSidePNG(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(r.PathValue("side"))
	if err != nil || i < 0 || i >= len(s.Sides) {
		http.NotFound(w, r)
		return
	}
	s.handlePNG(func() *render.Raster { return s.Sides[i] })(w, r)
}

func (s *Server) handlePNG(surface func() *render.Raster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raster := surface()
		if raster == nil {
			http.NotFound(w, r)
			return
		}
		var buf bytes.Buffer
		var err error
		s.Session.Do(func() { err = raster.WritePNG(&buf) })
		if err != nil {
			s.logger().Error("encoding png", s.logger().Args("error", err.Error()))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(buf.Bytes())
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	// Wildcard CORS: this is a local tool, not a public API.
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if v == nil {
		_, _ = w.Write([]byte("[]"))
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}
