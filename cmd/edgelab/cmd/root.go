package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "edgelab",
	Short: "A strategy backtesting and validation toolkit",
	Long: `Edgelab evaluates rules-based trading strategies before capital is risked.

It provides tools for:
  - Bar-by-bar backtesting with risk-based position sizing
  - Walk-forward (train/test) validation against overfitting
  - Monte-Carlo trade shuffling to bound equity outcomes
  - Grid-search parameter optimization ranked by out-of-sample metrics
  - Trade journaling to SQLite or CSV

Complete documentation is available at https://github.com/rustyeddy/edgelab`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
