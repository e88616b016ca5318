package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/edgelab/backtest"
	"github.com/rustyeddy/edgelab/optimize"
	"github.com/rustyeddy/edgelab/strategies"
	"github.com/rustyeddy/edgelab/strategy"
	"github.com/rustyeddy/edgelab/walkforward"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Grid-search strategy parameters, ranked out-of-sample",
	Long: `Optimize walks the full Cartesian product of the parameter grid, runs a
walk-forward analysis for each combination, and ranks strictly by an
out-of-sample metric. In-sample results are shown but never used for
ranking.

Example:
  edgelab optimize --data data/btc_1d.csv -g don_break=10,15,20,25 -g don_exit=5,10,15`,
	RunE: runOptimizeCmd,
}

var (
	opDataPath string
	opMarket   string
	opStrategy string
	opGrid     []string
	opCapital  float64
	opRiskPct  float64
	opFeeRate  float64
	opInterval time.Duration
	opTrain    int
	opTest     int
	opStep     int
	opMetric   string
	opTopN     int
)

func init() {
	rootCmd.AddCommand(optimizeCmd)

	optimizeCmd.Flags().StringVarP(&opDataPath, "data", "d", "", "path to bar CSV (required)")
	optimizeCmd.Flags().StringVarP(&opMarket, "market", "m", "BTC-PERP", "market id")
	optimizeCmd.Flags().StringVarP(&opStrategy, "strategy", "s", "breakout", "strategy name")
	optimizeCmd.Flags().StringArrayVarP(&opGrid, "grid", "g", nil, "grid entry name=v1,v2,... (repeatable, required)")
	optimizeCmd.Flags().Float64VarP(&opCapital, "capital", "c", 10_000, "starting capital per window")
	optimizeCmd.Flags().Float64Var(&opRiskPct, "risk", 1.0, "risk percent per trade")
	optimizeCmd.Flags().Float64Var(&opFeeRate, "fee", 0.0005, "fee rate per fill")
	optimizeCmd.Flags().DurationVar(&opInterval, "interval", 24*time.Hour, "expected bar spacing, 0 disables the gap check")
	optimizeCmd.Flags().IntVar(&opTrain, "train", 90, "walk-forward train window in bars")
	optimizeCmd.Flags().IntVar(&opTest, "test", 30, "walk-forward test window in bars")
	optimizeCmd.Flags().IntVar(&opStep, "step", 30, "walk-forward step in bars")
	optimizeCmd.Flags().StringVar(&opMetric, "metric", "oos_sharpe", "ranking metric (oos_sharpe, oos_return, oos_consistency)")
	optimizeCmd.Flags().IntVar(&opTopN, "top", 5, "shortlist size")

	optimizeCmd.MarkFlagRequired("data")
	optimizeCmd.MarkFlagRequired("grid")
}

func runOptimizeCmd(cmd *cobra.Command, args []string) error {
	bars, err := loadBars(opDataPath, opMarket, opInterval)
	if err != nil {
		return err
	}

	grid, err := parseGrid(opGrid)
	if err != nil {
		return err
	}

	switch optimize.Metric(opMetric) {
	case optimize.OOSSharpe, optimize.OOSReturn, optimize.OOSConsistency:
	default:
		return fmt.Errorf("unknown metric %q", opMetric)
	}

	construct, err := strategyFactory(opStrategy, []string{opMarket})
	if err != nil {
		return err
	}

	o := &optimize.Optimizer{
		Factory: func(params map[string]float64) strategy.Strategy {
			return construct(strategies.Params(params))
		},
		Splitter: walkforward.NewSplitter(opTrain, opTest, opStep, false),
		Config: backtest.Config{
			InitialCapital:  opCapital,
			RiskPerTradePct: opRiskPct,
			FeeRate:         opFeeRate,
		},
		Metric: optimize.Metric(opMetric),
		TopN:   opTopN,
	}

	res, err := o.Run(opMarket, bars, grid)
	if err != nil {
		return err
	}

	fmt.Printf("Optimize %s (%s, %d combinations, metric %s)\n",
		opStrategy, opMarket, len(res.Ranked), opMetric)

	if res.Best == nil {
		fmt.Println("  No combination succeeded.")
		for _, c := range res.Ranked {
			fmt.Printf("  %v: FAILED: %v\n", c.Params, c.Err)
		}
		return nil
	}

	fmt.Printf("Best: %v (score %.3f)\n", res.Best.Params, res.Best.Score)
	fmt.Println("Top:")
	for i, c := range res.Top {
		if c.Err != nil {
			fmt.Printf("  %2d. %v FAILED: %v\n", i+1, c.Params, c.Err)
			continue
		}
		fmt.Printf("  %2d. %v  score %.3f  OOS %+.2f%% (consistency %.0f%%)\n",
			i+1, c.Params, c.Score, c.Summary.OOSAvgReturnPct, c.Summary.OOSConsistency)
	}

	fmt.Println("Sensitivity (spread of the metric across each parameter's values):")
	names := make([]string, 0, len(res.Sensitivity))
	for name := range res.Sensitivity {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-12s %.3f\n", name, res.Sensitivity[name])
	}
	return nil
}
