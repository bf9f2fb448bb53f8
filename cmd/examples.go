package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/intelligrit/fitment/internal/fitment"
	"github.com/intelligrit/fitment/internal/model"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var examplesVehicle string

var examplesCmd = &cobra.Command{
	Use:   "examples <width> <offset>",
	Short: "List real-world examples at a wheel width and offset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		width, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid width %q", args[0])
		}
		offset, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid offset %q", args[1])
		}

		cat, _, closeFn, err := openCatalog(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		exs := cat.Fetch(cmd.Context(), examplesVehicle, width, offset)
		if len(exs) == 0 {
			pterm.Info.Printf("No examples for %s at %sx%s\n", examplesVehicle, args[0], args[1])
			return nil
		}

		data := pterm.TableData{{"Description", "Axle", "Wheel", "Tire", "Spacer", "Suspension"}}
		for _, ex := range exs {
			data = append(data,
				exampleRow(ex.Description, "F", ex.Wheel.Front, ex.Tire.Front, ex.Front.Spacer, ex.Suspension),
				exampleRow("", "R", ex.Wheel.Back, ex.Tire.Back, ex.Back.Spacer, ""),
			)
		}
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		pterm.Info.Printf("%d example(s)\n", len(exs))
		return nil
	},
}

func exampleRow(desc, axle string, w model.WheelDescriptor, t model.TireDescriptor, spacer float64, suspension string) []string {
	return []string{
		desc,
		axle,
		strings.TrimSpace(fitment.WheelLabel(w) + " " + fitment.Product(w.Make, w.Model)),
		strings.TrimSpace(fitment.TireLabel(t, w.Diameter) + " " + fitment.Product(t.Make, t.Model)),
		strconv.FormatFloat(spacer, 'f', -1, 64),
		suspension,
	}
}

func init() {
	examplesCmd.Flags().StringVar(&examplesVehicle, "vehicle", fitment.DefaultVehicle, "Vehicle to query")
	rootCmd.AddCommand(examplesCmd)
}
