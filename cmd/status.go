package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show catalog contents",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, vehicles, closeFn, err := openCatalog(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		idx := cat.Index()
		fmt.Printf("Catalog Status (%s)\n", cfg.Catalog.Source)
		fmt.Printf("==============\n")
		fmt.Printf("Known vehicles:   %d\n", len(vehicles.Names()))
		fmt.Printf("Cataloged:        %d\n", len(idx.Vehicles()))

		if len(idx.Vehicles()) > 0 {
			fmt.Printf("\nPer-Vehicle Breakdown\n")
			fmt.Printf("---------------------\n")
			for _, v := range idx.Vehicles() {
				offsets := idx.Offsets(v)
				widths := make([]float64, 0, len(offsets))
				for w := range offsets {
					widths = append(widths, w)
				}
				sort.Float64s(widths)
				known := "unknown vehicle"
				if _, err := vehicles.Get(v); err == nil {
					known = "ok"
				}
				fmt.Printf("  %-45s  entries: %4d  widths: %v  (%s)\n", v, idx.Total(v), widths, known)
			}
		}

		if cfg.Catalog.Source == "sql" {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			fmt.Printf("\nStore (%s)\n", s.Driver)
			fmt.Printf("-----\n")
			if at := s.BuiltAt(); at != "" {
				fmt.Printf("Built at:  %s\n", at)
			}
			fmt.Printf("Entries:   %d\n", s.ExampleCount())
			for v, n := range s.CountByVehicle() {
				fmt.Printf("  %-45s  %4d  widths: %v\n", v, n, s.WidthsByVehicle(v))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
