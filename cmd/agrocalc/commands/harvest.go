package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yanqian/agrocalc/internal/domain/harvest"
)

func convertCmd(e *env) *cobra.Command {
	var req harvest.ConversionRequest
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a quantity between kg, tn and qq (1 qq = 46 kg)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireFlags(cmd, "amount", "from", "to"); err != nil {
				return err
			}
			resp, err := e.harvest.Convert(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s %s (%s kg)\n",
				num(resp.Amount), resp.SourceUnit, num(resp.Result), resp.TargetUnit, num(resp.Kilograms))
			return nil
		},
	}
	cmd.Flags().Float64Var(&req.Amount, "amount", 0, "quantity to convert")
	cmd.Flags().StringVar(&req.SourceUnit, "from", "", "source unit (kg, tn, qq)")
	cmd.Flags().StringVar(&req.TargetUnit, "to", "", "target unit (kg, tn, qq)")
	return cmd
}

func yieldCmd(e *env) *cobra.Command {
	var req harvest.YieldRequest
	cmd := &cobra.Command{
		Use:   "yield",
		Short: "Compute realized yield per hectare and compare it with the expected yield",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireFlags(cmd, "amount", "area"); err != nil {
				return err
			}
			resp, err := e.harvest.CalculateYield(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "realized yield: %s %s/ha\n", num(resp.RealizedYield), resp.YieldUnit)
			fmt.Fprintf(out, "completion: %s %%\n", num(resp.CompletionPercent))
			fmt.Fprintf(out, "deviation: %s %s/ha\n", num(resp.Deviation), resp.YieldUnit)
			return nil
		},
	}
	cmd.Flags().Float64Var(&req.HarvestedAmount, "amount", 0, "harvested quantity")
	cmd.Flags().StringVar(&req.HarvestedUnit, "unit", "kg", "unit of the harvested quantity")
	cmd.Flags().Float64Var(&req.AreaHectares, "area", 0, "harvested area in hectares")
	cmd.Flags().StringVar(&req.CropYieldUnit, "crop-unit", "kg/ha", "yield unit label of the crop (e.g. tn/ha, qq/ha)")
	cmd.Flags().Float64Var(&req.ExpectedYield, "expected", 0, "expected yield in the crop unit")
	return cmd
}
