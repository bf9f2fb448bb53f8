package cmd

import (
	"fmt"

	"github.com/intelligrit/fitment/internal/app"
	"github.com/intelligrit/fitment/internal/graph"
	"github.com/intelligrit/fitment/internal/render"
	"github.com/intelligrit/fitment/internal/web"
	"github.com/spf13/cobra"
)

var (
	serveHost    string
	servePort    int
	serveVehicle string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive fitment calculator",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("host") {
			serveHost = cfg.Server.Host
		}
		if !cmd.Flags().Changed("port") {
			servePort = cfg.Server.Port
		}

		ctx := cmd.Context()
		cat, vehicles, closeFn, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		g := render.NewRaster(cfg.Graph.Width, cfg.Graph.Height)
		v := render.NewRaster(cfg.Visualizer.Width, cfg.Visualizer.Height)
		sides := [2]*render.Raster{
			render.NewRaster(cfg.Visualizer.Width, cfg.Visualizer.Height),
			render.NewRaster(cfg.Visualizer.Width, cfg.Visualizer.Height),
		}
		sess, err := app.New(ctx, app.Options{
			Catalog:  cat,
			Vehicles: vehicles,
			Vehicle:  serveVehicle,
			Graph:    graph.Options{ZeroWidthOnSpacer: cfg.Graph.ZeroWidthOnSpacer, Log: log},
			Scale:    cfg.Visualizer.Scale,
			Log:      log,
			Surfaces: app.Surfaces{
				Graph:    g,
				Combined: v,
				Sides:    [2]render.Surface{sides[0], sides[1]},
			},
		})
		if err != nil {
			return err
		}

		srv := &web.Server{
			Catalog:    cat,
			Vehicles:   vehicles,
			Session:    sess,
			Graph:      g,
			Visualizer: v,
			Sides:      sides,
			Addr:       fmt.Sprintf("%s:%d", serveHost, servePort),
			Log:        log,
		}
		if cfg.Catalog.Source == "dir" {
			srv.ExamplesDir = cfg.Catalog.Dir
		}
		return srv.ListenAndServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "Host to listen on")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveVehicle, "vehicle", "", "Vehicle selected at startup")
	rootCmd.AddCommand(serveCmd)
}
