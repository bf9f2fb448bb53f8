package cmd

import (
	"strings"

	"github.com/intelligrit/fitment/internal/fitment"
	"github.com/intelligrit/fitment/internal/model"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var vehiclesLimit int

var vehiclesCmd = &cobra.Command{
	Use:   "vehicles [query]",
	Short: "List vehicles, fuzzily matching an optional query",
	RunE: func(cmd *cobra.Command, args []string) error {
		vehicles, err := loadVehicles()
		if err != nil {
			return err
		}

		names := vehicles.Search(strings.Join(args, " "), vehiclesLimit)
		if len(names) == 0 {
			pterm.Info.Println("No matching vehicles")
			return nil
		}

		data := pterm.TableData{{"Vehicle", "Stock wheel", "Guides"}}
		for _, name := range names {
			v, err := vehicles.Get(name)
			if err != nil {
				return err
			}
			var guides []string
			for _, g := range v.Guides {
				guides = append(guides, g.Label)
			}
			data = append(data, []string{name, stockLabel(v.Stock), strings.Join(guides, ", ")})
		}
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		return nil
	},
}

func stockLabel(d model.RequiredFitmentDescriptor) string {
	label := fitment.WheelLabel(d.Wheel.Front) + " " + fitment.TireLabel(d.Tire.Front, d.Wheel.Front.Diameter)
	if fitment.IsStaggered(d).Any() {
		label += " / " + fitment.WheelLabel(d.Wheel.Back) + " " + fitment.TireLabel(d.Tire.Back, d.Wheel.Back.Diameter)
	}
	return label
}

func init() {
	vehiclesCmd.Flags().IntVar(&vehiclesLimit, "limit", 10, "Maximum results (0 for all)")
	rootCmd.AddCommand(vehiclesCmd)
}
