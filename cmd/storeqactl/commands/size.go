package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	assistantuc "github.com/kailas-cloud/storeqa/internal/usecase/assistant"
)

var sizeBust, sizeWaist, sizeHip float64

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Recommend a size from body measurements",
	Long: "Recommend a size from bust, waist and hip measurements. " +
		"Values of 60 or more are read as centimeters, smaller values as inches.",
	Example: "  storeqactl size --bust 86 --waist 70 --hip 96",
	RunE: func(cmd *cobra.Command, _ []string) error {
		chart, err := cfg.Sizing.LoadChart()
		if err != nil {
			return err
		}
		// Sizing needs neither the catalog nor the completion service.
		sizer, err := assistantuc.New(nil, nil, chart, assistantuc.Persona{})
		if err != nil {
			return fmt.Errorf("size chart: %w", err)
		}

		ans, err := sizer.RecommendSize(sizeBust, sizeWaist, sizeHip)
		if err != nil {
			return err
		}
		return printSize(cmd.OutOrStdout(), ans, jsonOut)
	},
}

func init() {
	sizeCmd.Flags().Float64Var(&sizeBust, "bust", 0, "bust measurement")
	sizeCmd.Flags().Float64Var(&sizeWaist, "waist", 0, "waist measurement")
	sizeCmd.Flags().Float64Var(&sizeHip, "hip", 0, "hip measurement")
	rootCmd.AddCommand(sizeCmd)
}
