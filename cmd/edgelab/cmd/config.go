package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/edgelab/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create and inspect run configurations",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default config file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "edgelab.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.Default().SaveToFile(path); err != nil {
			return err
		}
		fmt.Printf("Wrote default config to %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show <path>",
	Short: "Load, validate and print a config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFromFile(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Account:  capital %.2f, fee rate %.4f\n", cfg.Account.InitialCapital, cfg.Account.FeeRate)
		fmt.Printf("Strategy: %s on %s, params %v\n", cfg.Strategy.Name, cfg.Strategy.Market, cfg.Strategy.Params)
		fmt.Printf("Risk:     %.2f%%/trade, %.1fR/day, %d concurrent\n",
			cfg.Risk.PerTradeRiskPct, cfg.Risk.MaxDailyLossR, cfg.Risk.MaxConcurrent)
		fmt.Printf("Research: %dd/%dd step %dd, %d sims, metric %s\n",
			cfg.Research.TrainDays, cfg.Research.TestDays, cfg.Research.StepDays,
			cfg.Research.Simulations, cfg.Research.Metric)
		fmt.Printf("Journal:  %s\n", cfg.Journal.Type)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
