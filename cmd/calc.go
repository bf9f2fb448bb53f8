package cmd

import (
	"fmt"

	"github.com/intelligrit/fitment/internal/fitment"
	"github.com/intelligrit/fitment/internal/geometry"
	"github.com/intelligrit/fitment/internal/model"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	calcA, calcB   model.WheelDescriptor
	calcTA, calcTB model.TireDescriptor
	calcSpeed      float64
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Compare outer diameter and speedometer error of two setups",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := geometry.Assembly{Wheel: calcA, Tire: calcTA}
		b := geometry.Assembly{Wheel: calcB, Tire: calcTB}

		data := pterm.TableData{{"", "A", "B"}}
		row := func(label string, f func(geometry.Assembly) string) {
			data = append(data, []string{label, f(a), f(b)})
		}
		row("Wheel", func(x geometry.Assembly) string { return fitment.WheelLabel(x.Wheel) })
		row("Tire", func(x geometry.Assembly) string { return fitment.TireLabel(x.Tire, x.Wheel.Diameter) })
		row("Sidewall (mm)", func(x geometry.Assembly) string { return mm(geometry.SidewallHeight(x.Tire)) })
		row("Outer diameter (mm)", func(x geometry.Assembly) string { return mm(geometry.OuterDiameter(x.Wheel, x.Tire)) })
		row("Circumference (mm)", func(x geometry.Assembly) string { return mm(geometry.Circumference(x)) })
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()

		e := geometry.SpeedometerError(a, b)
		if !geometry.IsFinite(e) {
			pterm.Warning.Println("Setup A has no circumference; speedometer error is undefined")
			return nil
		}
		pterm.Info.Printf("Speedometer error: %+.2f%%\n", e*100)
		pterm.Info.Printf("Indicated %.0f is actually %.1f\n", calcSpeed, geometry.ActualSpeed(calcSpeed, e))
		return nil
	},
}

func mm(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func init() {
	f := calcCmd.Flags()
	f.Float64Var(&calcA.Width, "wheel-width", 7, "Setup A wheel width (in)")
	f.Float64Var(&calcA.Diameter, "wheel-diameter", 17, "Setup A wheel diameter (in)")
	f.Float64Var(&calcA.Offset, "wheel-offset", 48, "Setup A wheel offset (mm)")
	f.Float64Var(&calcTA.Width, "tire-width", 215, "Setup A tire width (mm)")
	f.Float64Var(&calcTA.Aspect, "tire-aspect", 45, "Setup A tire aspect (%)")
	f.Float64Var(&calcB.Width, "b-wheel-width", 7, "Setup B wheel width (in)")
	f.Float64Var(&calcB.Diameter, "b-wheel-diameter", 17, "Setup B wheel diameter (in)")
	f.Float64Var(&calcB.Offset, "b-wheel-offset", 48, "Setup B wheel offset (mm)")
	f.Float64Var(&calcTB.Width, "b-tire-width", 215, "Setup B tire width (mm)")
	f.Float64Var(&calcTB.Aspect, "b-tire-aspect", 45, "Setup B tire aspect (%)")
	f.Float64Var(&calcSpeed, "speed", 60, "Indicated speed to convert")
	rootCmd.AddCommand(calcCmd)
}
