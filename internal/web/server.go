package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/intelligrit/fitment/internal/app"
	"github.com/intelligrit/fitment/internal/catalog"
	"github.com/intelligrit/fitment/internal/fitment"
	"github.com/intelligrit/fitment/internal/logging"
	"github.com/intelligrit/fitment/internal/render"
	"github.com/pterm/pterm"
)

//go:embed all:static
var staticFS embed.FS

// Server serves the calculator page, the catalog API and one shared
// interactive session.
type Server struct {
	Catalog  *catalog.Catalog
	Vehicles *fitment.Vehicles
	Session  *app.Session

	// Graph, Visualizer and Sides are the session's surfaces, encoded on
	// request. Sides holds the per-side cross sections, A then B.
	Graph      *render.Raster
	Visualizer *render.Raster
	Sides      [2]*render.Raster

	// ExamplesDir, when set, is served at /examples/ so a browser can read
	// shards directly.
	ExamplesDir string

	Addr string
	Log  *pterm.Logger
}

// Handler builds the route table.
func (s *Server) Handler() (http.Handler, error) {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("GET /api/vehicles", s.handleVehicles)
	mux.HandleFunc("GET /api/index", s.handleIndex)
	mux.HandleFunc("GET /api/examples", s.handleExamples)
	mux.HandleFunc("GET /api/examples.html", s.handleExamplesHTML)
	mux.HandleFunc("GET /api/calc", s.handleCalc)

	// Session endpoints
	mux.HandleFunc("GET /api/session", s.handleSession)
	mux.HandleFunc("POST /api/session/pointer", s.handlePointer)
	mux.HandleFunc("POST /api/session/click", s.handleClick)
	mux.HandleFunc("POST /api/session/reset", s.handleReset)
	mux.HandleFunc("POST /api/session/set", s.handleSet)
	mux.HandleFunc("POST /api/session/lock", s.handleLock)
	mux.HandleFunc("POST /api/session/apply", s.handleApply)
	mux.HandleFunc("POST /api/session/vehicle", s.handleSelectVehicle)
	mux.HandleFunc("GET /api/session/graph.png", s.handlePNG(func() *render.Raster { return s.Graph }))
	mux.HandleFunc("GET /api/session/visualizer.png", s.handlePNG(func() *render.Raster { return s.Visualizer }))
	mux.HandleFunc("GET /api/session/sides/{side}/visualizer.png", s.handleSidePNG)

	if s.ExamplesDir != "" {
		mux.Handle("/examples/", http.StripPrefix("/examples/", http.FileServer(http.Dir(s.ExamplesDir))))
	}

	// Static files
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("creating sub filesystem: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(staticSub)))
	return mux, nil
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	h, err := s.Handler()
	if err != nil {
		return err
	}
	s.logger().Info("serving", s.logger().Args("url", "http://"+s.Addr))
	return http.ListenAndServe(s.Addr, h)
}

func (s *Server) logger() *pterm.Logger {
	if s.Log == nil {
		return logging.Discard()
	}
	return s.Log
}
