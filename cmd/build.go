package cmd

import (
	"fmt"
	"time"

	"github.com/intelligrit/fitment/internal/catalog"
	"github.com/intelligrit/fitment/internal/fitment"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	buildSrc          string
	buildOut          string
	buildStrict       bool
	buildIncludeStock bool
	buildStore        bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the example catalog from per-vehicle source files",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("src") {
			buildSrc = cfg.SourcesPath()
		}
		if !cmd.Flags().Changed("out") {
			buildOut = cfg.Catalog.Dir
		}
		if !cmd.Flags().Changed("strict") {
			buildStrict = cfg.Catalog.Strict
		}

		b := catalog.NewBuilder(buildStrict)
		if err := b.AddDir(buildSrc); err != nil {
			return err
		}

		if buildIncludeStock {
			vehicles, err := loadVehicles()
			if err != nil {
				return err
			}
			for _, name := range vehicles.Names() {
				v, err := vehicles.Get(name)
				if err != nil {
					return err
				}
				if err := b.Add(name, fitment.Canonical(v.Stock)); err != nil {
					return err
				}
			}
		}

		built := b.Built()
		for _, r := range built.Rejected {
			log.Warn("rejected example", log.Args("vehicle", r.Vehicle, "position", r.Position, "error", r.Err.Error()))
		}

		if err := catalog.WriteLayout(buildOut, built); err != nil {
			return fmt.Errorf("writing catalog: %w", err)
		}
		pterm.Success.Printf("Wrote %d shards for %d vehicles to %s\n", len(built.Shards), len(built.Index.Vehicles()), buildOut)

		if buildStore {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.WriteBuilt(built, time.Now().UTC().Format(time.RFC3339)); err != nil {
				return fmt.Errorf("saving catalog to %s: %w", s.Driver, err)
			}
			pterm.Success.Printf("Stored %d examples in %s\n", s.ExampleCount(), s.Driver)
		}

		if len(built.Rejected) > 0 {
			pterm.Warning.Printf("%d examples rejected\n", len(built.Rejected))
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&buildSrc, "src", "data/examples", "Directory of <vehicle>.json example arrays")
	buildCmd.Flags().StringVar(&buildOut, "out", "build/examples", "Output directory for the catalog layout")
	buildCmd.Flags().BoolVar(&buildStrict, "strict", false, "Reject examples missing source, link or description")
	buildCmd.Flags().BoolVar(&buildIncludeStock, "include-stock", false, "Add each vehicle's stock setup as an example")
	buildCmd.Flags().BoolVar(&buildStore, "store", false, "Also load the catalog into the SQL store")
	rootCmd.AddCommand(buildCmd)
}
