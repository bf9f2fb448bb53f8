package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/intelligrit/fitment/internal/catalog"
	"github.com/intelligrit/fitment/internal/config"
	"github.com/intelligrit/fitment/internal/fitment"
	"github.com/intelligrit/fitment/internal/logging"
	"github.com/intelligrit/fitment/internal/store"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	verbose    bool
	configPath string
	cfg        *config.Config
	log        *pterm.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fitment",
	Short: "Explore wheel and tire fitment against real-world examples",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if !cmd.Flags().Changed("data-dir") {
			dataDir = cfg.Data.Dir
		}
		cfg.Data.Dir = dataDir

		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		if cfg.Log.Format == "json" {
			log = logging.JSON(level, os.Stderr)
		} else {
			log = logging.New(level, os.Stderr)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "fitment.toml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "data", "Directory holding example sources and the vehicle table")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

func Execute() error {
	return rootCmd.Execute()
}

func loadVehicles() (*fitment.Vehicles, error) {
	v, err := fitment.LoadVehicles(cfg.VehiclesPath())
	if err != nil {
		return nil, fmt.Errorf("loading vehicles: %w", err)
	}
	return v, nil
}

// retriever is a catalog backend that can also produce its index.
type retriever interface {
	catalog.Retriever
	catalog.IndexSource
}

// openRetriever opens the configured catalog backend. The returned func
// releases it.
func openRetriever() (retriever, func(), error) {
	switch cfg.Catalog.Source {
	case "http":
		return catalog.NewHTTPRetriever(cfg.Catalog.BaseURL, cfg.Catalog.RateLimit), func() {}, nil
	case "sql":
		s, err := openStore()
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		return catalog.DirRetriever{Dir: cfg.Catalog.Dir}, func() {}, nil
	}
}

// openStore opens the SQL catalog. Without a DSN it is the DuckDB file in
// the data dir.
func openStore() (*store.Store, error) {
	if cfg.Catalog.DSN == "" {
		return store.New(dataDir)
	}
	return store.Open(cfg.Catalog.Driver, cfg.Catalog.DSN)
}

// openCatalog loads the index and vehicle table and returns a ready
// catalog.
func openCatalog(ctx context.Context) (*catalog.Catalog, *fitment.Vehicles, func(), error) {
	vehicles, err := loadVehicles()
	if err != nil {
		return nil, nil, nil, err
	}
	r, closeFn, err := openRetriever()
	if err != nil {
		return nil, nil, nil, err
	}
	idx, err := r.LoadIndex(ctx)
	if err != nil {
		closeFn()
		return nil, nil, nil, fmt.Errorf("loading %s catalog index: %w", cfg.Catalog.Source, err)
	}
	log.Debug("catalog loaded", log.Args("source", cfg.Catalog.Source, "vehicles", len(idx.Vehicles())))
	cat, err := catalog.New(idx, vehicles, r, log)
	if err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	return cat, vehicles, closeFn, nil
}
