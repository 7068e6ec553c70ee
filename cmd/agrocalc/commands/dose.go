package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yanqian/agrocalc/internal/domain/dose"
)

func doseCmd(e *env) *cobra.Command {
	var (
		req    dose.DoseRequest
		factor float64
		stock  float64
	)
	cmd := &cobra.Command{
		Use:   "dose",
		Short: "Compute the total product needed for an application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireFlags(cmd, "rate", "area"); err != nil {
				return err
			}
			if cmd.Flags().Changed("factor") {
				req.AdjustmentFactor = &factor
			}
			if cmd.Flags().Changed("stock") {
				req.StockAvailable = &stock
			}
			resp, err := e.dose.CalculateDose(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "total: %s %s (factor %s)\n", num(resp.TotalQuantity), resp.QuantityUnit, num(resp.AdjustmentFactor))
			if resp.StockSufficient != nil {
				fmt.Fprintf(out, "stock sufficient: %s\n", yesNo(*resp.StockSufficient))
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&req.DoseRatePerHectare, "rate", 0, "dose per hectare")
	cmd.Flags().StringVar(&req.DoseUnit, "unit", "L/ha", "dose unit (e.g. L/ha, kg/ha)")
	cmd.Flags().Float64Var(&req.AreaHectares, "area", 0, "treated area in hectares")
	cmd.Flags().Float64Var(&factor, "factor", 1, "adjustment factor applied to the dose")
	cmd.Flags().Float64Var(&stock, "stock", 0, "available stock, in the dose total unit")
	return cmd
}

func riskCmd(e *env) *cobra.Command {
	var req dose.RiskRequest
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Classify spray risk from temperature, humidity and wind",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireFlags(cmd, "temperature", "humidity", "wind"); err != nil {
				return err
			}
			resp, err := e.dose.ClassifyRisk(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "risk: %s (factor %s)\n%s\n", resp.Level, num(resp.AdjustmentFactor), resp.Advisory)
			return nil
		},
	}
	cmd.Flags().Float64Var(&req.Temperature, "temperature", 0, "air temperature in °C")
	cmd.Flags().Float64Var(&req.Humidity, "humidity", 0, "relative humidity in %")
	cmd.Flags().Float64Var(&req.WindSpeed, "wind", 0, "wind speed in km/h")
	return cmd
}
